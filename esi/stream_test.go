package esi_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/esi-edge/esi/esi"
	"github.com/esi-edge/esi/esierrors"
	"github.com/esi-edge/esi/variables"
)

type varMap map[string]variables.Variable

func (m varMap) Get(name string) (variables.Variable, bool) {
	v, ok := m[name]
	return v, ok
}

func runStream(t *testing.T, input string, opts esi.Options) string {
	t.Helper()

	s, err := esi.NewStream("http://www.example.com/", http.Header{}, opts, 0)
	require.NoError(t, err)
	_, err = io.WriteString(s, input)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	out, err := io.ReadAll(s)
	require.NoError(t, err)
	return string(out)
}

func fetchReturning(status int, body string) esi.FetchFunc {
	return func(req *http.Request) (*http.Response, error) {
		rec := httptest.NewRecorder()
		rec.WriteHeader(status)
		io.WriteString(rec, body)
		return rec.Result(), nil
	}
}

// S1 – include success.
func TestStreamIncludeSuccess(t *testing.T) {
	opts := esi.Options{Fetch: fetchReturning(200, "bar")}
	got := runStream(t, `foo<esi:include src="/bar"/>baz`, opts)
	assert.Equal(t, "foobarbaz", got)
}

// S2 – include failure without onerror surfaces IncludeError. The
// include is a completed top-level node, so the Write that delivers it
// transforms it and returns the failure.
func TestStreamIncludeFailureNoOnerror(t *testing.T) {
	opts := esi.Options{Fetch: fetchReturning(404, "")}

	s, err := esi.NewStream("http://www.example.com/", http.Header{}, opts, 0)
	require.NoError(t, err)
	_, err = io.WriteString(s, `a<esi:include src="/x"/>b`)
	require.Error(t, err)

	var incErr *esierrors.IncludeError
	assert.ErrorAs(t, err, &incErr)
}

// S3 – include failure with onerror="continue".
func TestStreamIncludeFailureOnerrorContinue(t *testing.T) {
	opts := esi.Options{Fetch: fetchReturning(404, "")}
	got := runStream(t, `a<esi:include src="/x" onerror="continue"/>b`, opts)
	assert.Equal(t, "ab", got)
}

// S4 – choose/when selects the first true branch.
func TestStreamChooseSelectsFirstTrue(t *testing.T) {
	opts := esi.Options{Vars: varMap{"FOO": variables.Scalar("foo")}}
	input := `<esi:choose>` +
		`<esi:when test="$(FOO)=='bar'">R1</esi:when>` +
		`<esi:when test="$(FOO)=='foo'">R2</esi:when>` +
		`<esi:otherwise>R3</esi:otherwise>` +
		`</esi:choose>`
	got := runStream(t, input, opts)
	assert.Equal(t, "R2", got)
}

// S5 – vars scope: substitution only applies inside esi:vars.
func TestStreamVarsScope(t *testing.T) {
	opts := esi.Options{Vars: varMap{"FOO": variables.Scalar("foo")}}
	got := runStream(t, `a$(FOO)<esi:vars>a$(FOO)</esi:vars>`, opts)
	assert.Equal(t, "a$(FOO)afoo", got)
}

// S6 – ESI comment stripping across chunks.
func TestStreamCommentStrippingAcrossChunks(t *testing.T) {
	s, err := esi.NewStream("http://www.example.com/", http.Header{}, esi.Options{}, 0)
	require.NoError(t, err)
	_, err = io.WriteString(s, "<!--esi yo")
	require.NoError(t, err)
	_, err = io.WriteString(s, " ho -->bar")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	out, err := io.ReadAll(s)
	require.NoError(t, err)
	assert.Equal(t, " yo ho bar", string(out))
}

// S7 – a custom prefix resolves esi:include under it, while a plain
// esi:include tag is emitted verbatim.
func TestStreamCustomPrefix(t *testing.T) {
	opts := esi.Options{
		Fetch:      fetchReturning(200, "bar"),
		PrefixMode: esi.PrefixCustom,
		EsiPrefix:  "my-esi",
	}
	got := runStream(t, `<my-esi:include src="/bar"/>`, opts)
	assert.Equal(t, "bar", got)

	verbatim := runStream(t, `<esi:include src="/bar"/>`, opts)
	assert.Contains(t, verbatim, `<esi:include src="/bar" />`)
}

// try/except recovers an IncludeError from its attempt branch.
func TestStreamTryRecoversIncludeError(t *testing.T) {
	opts := esi.Options{Fetch: fetchReturning(500, "")}
	input := `<esi:try>` +
		`<esi:attempt><esi:include src="/x"/></esi:attempt>` +
		`<esi:except>fallback</esi:except>` +
		`</esi:try>`
	got := runStream(t, input, opts)
	assert.Equal(t, "fallback", got)
}

func TestStreamInvalidPrefixIsConfigurationError(t *testing.T) {
	_, err := esi.NewStream("http://www.example.com/", http.Header{}, esi.Options{
		PrefixMode: esi.PrefixCustom,
		EsiPrefix:  "9bad",
	}, 0)
	assert.Error(t, err)

	var cfgErr *esierrors.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestStreamRecursiveInclude(t *testing.T) {
	// The first fetch (outer) returns a fragment holding a further
	// include; every later fetch (the recursive inner one) returns "leaf".
	// The recursive include inside the fragment is resolved before the
	// outer include's replacement text is produced, so a single level of
	// recursion bottoms out once the fetched body no longer contains an
	// esi:include tag.
	calls := 0
	opts := esi.Options{Fetch: func(req *http.Request) (*http.Response, error) {
		calls++
		if calls == 1 {
			return fetchReturning(200, `nested<esi:include src="/inner"/>`)(req)
		}
		return fetchReturning(200, "leaf")(req)
	}}

	got := runStream(t, `<esi:include src="/outer"/>`, opts)
	assert.Equal(t, "nestedleaf", got)
}
