package esi

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"

	"github.com/esi-edge/esi/document"
	"github.com/esi-edge/esi/esierrors"
	"github.com/esi-edge/esi/variables"
)

// prefixPattern is the XML-identifier grammar §4.8 requires of a custom
// esi_prefix: a leading letter, then letters, digits or hyphens.
var prefixPattern = regexp.MustCompile(`^[A-Za-z][-A-Za-z0-9]*$`)

// IncludeResponse is passed to a ProcessIncludeResponseFunc for a
// successfully fetched esi:include candidate.
type IncludeResponse struct {
	URL      string
	Headers  http.Header
	Response *http.Response
}

// ProcessIncludeResponseFunc turns a successful include response into the
// text that replaces the esi:include element. The default recursively
// pipes the body through a fresh Stream at depth+1 (§4.8).
type ProcessIncludeResponseFunc func(IncludeResponse) (string, error)

// IncludeErrorInfo is passed to a HandleIncludeErrorFunc after every
// src/alt candidate of an esi:include has failed. Setting CustomError
// overrides the onerror/IncludeError fallback.
type IncludeErrorInfo struct {
	URL         string
	Headers     http.Header
	Element     *document.Element
	Cause       error
	CustomError *string
}

// HandleIncludeErrorFunc observes (and may override) an exhausted
// esi:include failure.
type HandleIncludeErrorFunc func(*IncludeErrorInfo)

// FetchFunc performs the GET for an esi:include candidate. The default
// uses http.DefaultClient wrapped in a bounded backoff retry for
// transient failures.
type FetchFunc func(req *http.Request) (*http.Response, error)

// Options configures a Stream, per §6/§4.8.
type Options struct {
	// Vars resolves $(...) variables. Defaults to variables.FromRequest
	// over the stream's base URL and headers.
	Vars variables.Variables

	// Fetch performs the esi:include GET. Defaults to defaultFetch.
	Fetch FetchFunc

	// ProcessIncludeResponse turns a successful response into
	// replacement text. Defaults to recursive ESI processing.
	ProcessIncludeResponse ProcessIncludeResponseFunc

	// HandleIncludeError observes an exhausted include failure.
	HandleIncludeError HandleIncludeErrorFunc

	// PrefixMode selects how the ESI namespace is declared; EsiPrefix
	// is only read when PrefixMode is PrefixCustom.
	PrefixMode PrefixMode
	EsiPrefix  string

	// Logger receives structured per-directive log entries. Defaults
	// to logrus.StandardLogger().
	Logger logrus.FieldLogger

	// Tracer starts a span per include fetch. Defaults to
	// opentracing.GlobalTracer().
	Tracer opentracing.Tracer

	// Metrics records include counts, latencies and error kinds.
	// Defaults to a no-op recorder.
	Metrics Metrics
}

func (o Options) logger() logrus.FieldLogger {
	if o.Logger != nil {
		return o.Logger
	}
	return logrus.StandardLogger()
}

func (o Options) tracer() opentracing.Tracer {
	if o.Tracer != nil {
		return o.Tracer
	}
	return opentracing.GlobalTracer()
}

func (o Options) metrics() Metrics {
	if o.Metrics != nil {
		return o.Metrics
	}
	return noopMetrics{}
}

// resolvedPrefix validates EsiPrefix per §4.8 and returns the namespace
// declarations to give the document plus whether the transformer is
// active at all (false for PrefixDisabled).
func (o Options) resolvedPrefix() (prefix string, namespaces map[string]string, active bool, err error) {
	switch o.PrefixMode {
	case PrefixDisabled:
		return "", map[string]string{}, false, nil
	case PrefixCustom:
		if !prefixPattern.MatchString(o.EsiPrefix) {
			return "", nil, false, &esierrors.ConfigurationError{
				Message: "invalid esi_prefix: " + o.EsiPrefix,
			}
		}
		return o.EsiPrefix, map[string]string{o.EsiPrefix: Namespace}, true, nil
	default:
		return "esi", map[string]string{"esi": Namespace}, true, nil
	}
}

// newRequestID generates a correlation id attached to log fields and
// trace spans for one include fetch.
func newRequestID() string {
	return uuid.NewString()
}
