package exprlang_test

import (
	"net/http"
	"testing"

	"github.com/esi-edge/esi/exprlang"
	"github.com/esi-edge/esi/variables"
)

func eval(t *testing.T, expr string, vars variables.Variables) bool {
	t.Helper()
	got, err := exprlang.Evaluate(expr, vars)
	if err != nil {
		t.Fatalf("Evaluate(%q) error: %v", expr, err)
	}
	return got
}

func TestEvaluateLiterals(t *testing.T) {
	reg := variables.FromRequest("http://example.com/", http.Header{})

	cases := map[string]bool{
		"1 == 1":          true,
		"1 == 2":          false,
		"1 != 2":          true,
		"2 > 1":           true,
		"1 >= 1":          true,
		"1 < 2 & 2 < 3":   true,
		"1 < 2 & 2 > 3":   false,
		"1 < 2 | 2 > 3":   true,
		"!(1 == 2)":       true,
		"'abc' == 'abc'":  true,
		"'abc' == 'abd'":  false,
		"true":            true,
		"false":           false,
		"!false":          true,
		"(1 == 1) & true": true,
	}

	for expr, want := range cases {
		if got := eval(t, expr, reg); got != want {
			t.Errorf("Evaluate(%q) = %v, want %v", expr, got, want)
		}
	}
}

func TestEvaluateOperatorPrecedence(t *testing.T) {
	reg := variables.FromRequest("http://example.com/", http.Header{})

	// | binds loosest: this parses as (1==2) | (2==2), which is true.
	if got := eval(t, "1 == 2 | 2 == 2", reg); !got {
		t.Fatalf("expected or of comparisons to be true")
	}

	// & binds tighter than |.
	if got := eval(t, "1 == 1 | 1 == 2 & 1 == 2", reg); !got {
		t.Fatalf("expected (1==1) | ((1==2)&(1==2)) to be true")
	}
}

func TestEvaluateVariableUndefinedComparesFalse(t *testing.T) {
	reg := variables.FromRequest("http://example.com/", http.Header{})
	if got := eval(t, "$(HTTP_HOST) == 'example.com'", reg); got {
		t.Fatalf("missing HTTP_HOST should be Undefined and compare false")
	}
}

func TestEvaluateVariableScalarComparison(t *testing.T) {
	header := http.Header{}
	header.Set("Host", "example.com")
	reg := variables.FromRequest("http://example.com/", header)

	if !eval(t, "$(HTTP_HOST) == 'example.com'", reg) {
		t.Fatalf("expected HTTP_HOST to equal example.com")
	}
	if eval(t, "$(HTTP_HOST) == 'other.com'", reg) {
		t.Fatalf("expected mismatch")
	}
}

func TestEvaluateVariableDefaultAndCookie(t *testing.T) {
	header := http.Header{}
	header.Set("Cookie", "group=101")
	reg := variables.FromRequest("http://example.com/", header)

	if !eval(t, "$(HTTP_COOKIE{group}) == 101", reg) {
		t.Fatalf("expected cookie group to compare numerically equal to 101")
	}
	if !eval(t, "$(HTTP_COOKIE{missing}|101) == 101", reg) {
		t.Fatalf("expected default value 101 to satisfy the comparison")
	}
}

func TestEvaluateMismatchedParensIsError(t *testing.T) {
	reg := variables.FromRequest("http://example.com/", http.Header{})
	if _, err := exprlang.Evaluate("(1 == 1", reg); err == nil {
		t.Fatalf("expected an error for an unclosed parenthesis")
	}
	if _, err := exprlang.Evaluate("1 == 1)", reg); err == nil {
		t.Fatalf("expected an error for an unmatched closing parenthesis")
	}
}

func TestEvaluateEmptyStringLiteralIsRejected(t *testing.T) {
	reg := variables.FromRequest("http://example.com/", http.Header{})
	if _, err := exprlang.Evaluate("'' == 'x'", reg); err == nil {
		t.Fatalf("an empty string literal must not lex, per the preserved quirk")
	}
}
