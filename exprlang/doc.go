// Package exprlang implements the ESI expression language used by
// when test="..." attributes: a small boolean expression grammar over
// numbers, quoted strings, the literals true/false and $(...) variable
// references, with comparison, negation, and and/or operators.
package exprlang
