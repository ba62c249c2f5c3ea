package esi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"

	"github.com/esi-edge/esi/document"
	"github.com/esi-edge/esi/esierrors"
	"github.com/esi-edge/esi/streaming"
	"github.com/esi-edge/esi/variables"
)

// Stream transforms one byte-stream into another per §6: Write feeds raw
// bytes to the streaming context, drains and transforms every completed
// top-level subtree, serializes it and buffers the result for Read;
// Close force-flushes whatever is left.
type Stream struct {
	opts Options
	ctx  *streaming.Context

	baseURL     *url.URL
	baseHeaders http.Header
	depth       int

	vars    variables.Variables
	logger  logrus.FieldLogger
	tracer  opentracing.Tracer
	metrics Metrics
	fetch   FetchFunc

	out    bytes.Buffer
	closed bool
}

// NewStream constructs a Stream rooted at rawURL with the request headers
// that drive the built-in variables and the include base-header set.
// depth is 0 for the top-level stream; recursive includes pass depth+1.
func NewStream(rawURL string, headers http.Header, opts Options, depth int) (*Stream, error) {
	base, err := url.Parse(rawURL)
	if err != nil {
		return nil, &esierrors.ConfigurationError{Message: "invalid base url: " + err.Error()}
	}

	_, namespaces, active, err := opts.resolvedPrefix()
	if err != nil {
		return nil, err
	}

	vars := opts.Vars
	if vars == nil {
		vars = variables.FromRequest(rawURL, headers)
	}

	fetchFn := opts.Fetch
	if fetchFn == nil {
		fetchFn = defaultFetch
	}

	s := &Stream{
		opts:        opts,
		baseURL:     base,
		baseHeaders: headers.Clone(),
		depth:       depth,
		vars:        vars,
		logger:      opts.logger(),
		tracer:      opts.tracer(),
		metrics:     opts.metrics(),
		fetch:       fetchFn,
	}

	// allow_unknown_prefixes is true: an esi-prefixed tag that isn't the
	// configured namespace (e.g. plain <esi:include> under a custom
	// esi_prefix, §4.8/S7) resolves to the empty namespace instead of
	// failing, so transformElement's non-ESI branch serializes it back
	// out verbatim rather than the stream erroring on an unknown prefix.
	doc := document.New(namespaces, true)
	var preProcess streaming.PreProcessFunc
	if active {
		preProcess = newCommentPreProcessor()
	}
	s.ctx = streaming.New(doc, true, preProcess)

	return s, nil
}

// Write implements io.Writer: it feeds p to the streaming context,
// transforms every newly completed top-level node and appends its
// serialized form to the internal output buffer.
func (s *Stream) Write(p []byte) (int, error) {
	if err := s.ctx.Append(string(p)); err != nil {
		return 0, err
	}
	if err := s.drainAndTransform(); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Read implements io.Reader over the internal output buffer.
func (s *Stream) Read(p []byte) (int, error) {
	return s.out.Read(p)
}

// Close implements io.Closer: it force-flushes the streaming context,
// draining and transforming whatever subtrees remain, including any
// still partially open at end-of-input.
func (s *Stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	if err := s.ctx.Flush(true); err != nil {
		return err
	}
	return s.drainAndTransform()
}

func (s *Stream) drainAndTransform() error {
	nodes := s.ctx.Drain()
	if len(nodes) == 0 {
		return nil
	}

	transformed, err := s.transformNodes(nodes, false)
	if err != nil {
		return err
	}

	s.out.WriteString(document.SerializeChildren(transformed))
	return nil
}

// resolveURL resolves target (already variable-substituted) against the
// stream's base URL.
func (s *Stream) resolveURL(target string) (*url.URL, error) {
	ref, err := url.Parse(target)
	if err != nil {
		return nil, err
	}
	return s.baseURL.ResolveReference(ref), nil
}

func (s *Stream) includeHeaders(target *url.URL) http.Header {
	h := s.baseHeaders.Clone()
	if target.Host != s.baseURL.Host {
		h.Set("Host", target.Host)
	}
	return h
}

func (s *Stream) transformInclude(el *document.Element) ([]document.Node, error) {
	srcAttr, ok := el.Attribute("", "src")
	if !ok {
		return nil, &esierrors.StructureError{Message: "esi:include requires a src attribute", LocalName: "include"}
	}

	candidates := []string{variables.Substitute(srcAttr.Value, s.vars)}
	if altAttr, ok := el.Attribute("", "alt"); ok {
		candidates = append(candidates, variables.Substitute(altAttr.Value, s.vars))
	}

	var lastErr error
	for _, candidate := range candidates {
		text, err := s.fetchAndProcess(el, candidate)
		if err != nil {
			lastErr = err
			continue
		}
		return []document.Node{document.NewText(text)}, nil
	}

	return s.includeFailure(el, candidates, lastErr)
}

func (s *Stream) fetchAndProcess(el *document.Element, candidate string) (string, error) {
	target, err := s.resolveURL(candidate)
	if err != nil {
		return "", err
	}

	reqID := newRequestID()

	span := s.tracer.StartSpan("esi.include")
	defer span.Finish()
	span.SetTag("esi.url", target.String())
	span.SetTag("esi.depth", s.depth)
	span.SetTag("esi.request_id", reqID)

	req, err := http.NewRequest(http.MethodGet, target.String(), nil)
	if err != nil {
		return "", err
	}
	req.Header = s.includeHeaders(target)

	log := s.logger.WithField("url", target.String()).WithField("depth", s.depth).WithField("request_id", reqID)

	start := time.Now()
	resp, err := s.fetch(req)
	s.metrics.IncludeDuration(time.Since(start))
	if err != nil {
		s.metrics.IncludeError("fetch")
		log.WithField("error", err.Error()).Debug("esi:include fetch failed")
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.metrics.IncludeError("status")
		return "", fmt.Errorf("esi:include: %s returned status %d", target, resp.StatusCode)
	}

	return s.processInclude(IncludeResponse{URL: target.String(), Headers: req.Header, Response: resp})
}

func (s *Stream) processInclude(r IncludeResponse) (string, error) {
	if s.opts.ProcessIncludeResponse != nil {
		return s.opts.ProcessIncludeResponse(r)
	}
	return s.defaultProcessInclude(r)
}

// defaultProcessInclude implements §4.8's recursion: the response body is
// piped through a fresh Stream built with the same options and depth+1,
// so any esi:include tags in the fragment are themselves resolved before
// the outer include's replacement text is produced.
func (s *Stream) defaultProcessInclude(r IncludeResponse) (string, error) {
	child, err := NewStream(r.URL, r.Headers, s.opts, s.depth+1)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(child, r.Response.Body); err != nil {
		return "", err
	}
	if err := child.Close(); err != nil {
		return "", err
	}

	out, err := io.ReadAll(child)
	return string(out), err
}

func (s *Stream) includeFailure(el *document.Element, candidates []string, cause error) ([]document.Node, error) {
	if s.opts.HandleIncludeError != nil {
		info := &IncludeErrorInfo{URL: candidates[len(candidates)-1], Headers: s.baseHeaders, Element: el, Cause: cause}
		s.opts.HandleIncludeError(info)
		if info.CustomError != nil {
			return []document.Node{document.NewText(*info.CustomError)}, nil
		}
	}

	if onerror, ok := el.Attribute("", "onerror"); ok {
		if variables.Substitute(onerror.Value, s.vars) == "continue" {
			return nil, nil
		}
	}

	s.metrics.IncludeError("exhausted")
	return nil, &esierrors.IncludeError{URLs: candidates, Cause: cause}
}

// defaultFetch is the Options.Fetch default: http.DefaultClient wrapped
// in a bounded retry for transient (connection or 5xx) failures, mirroring
// the retry shape net/httpclient.go applies around its dial attempts.
func defaultFetch(req *http.Request) (*http.Response, error) {
	op := func() (*http.Response, error) {
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			resp.Body.Close()
			return nil, fmt.Errorf("transient upstream status %d", resp.StatusCode)
		}
		return resp, nil
	}

	return backoff.Retry(context.Background(), op,
		backoff.WithMaxTries(3),
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
	)
}
