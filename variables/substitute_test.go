package variables_test

import (
	"net/http"
	"testing"

	"github.com/esi-edge/esi/variables"
)

func TestSubstituteLeavesPlainTextUntouched(t *testing.T) {
	reg := variables.FromRequest("http://example.com/", http.Header{})
	got := variables.Substitute("no tokens here", reg)
	if got != "no tokens here" {
		t.Fatalf("got %q", got)
	}
}

func TestSubstituteScalarAndDefault(t *testing.T) {
	header := http.Header{}
	header.Set("Host", "example.com")
	reg := variables.FromRequest("http://example.com/", header)

	got := variables.Substitute("host=$(HTTP_HOST)", reg)
	if got != "host=example.com" {
		t.Fatalf("got %q", got)
	}

	got = variables.Substitute("v=$(MISSING|fallback)", reg)
	if got != "v=fallback" {
		t.Fatalf("got %q", got)
	}
}

func TestSubstituteCookieSubValue(t *testing.T) {
	header := http.Header{}
	header.Set("Cookie", "session=abc; theme=dark")
	reg := variables.FromRequest("http://example.com/", header)

	got := variables.Substitute("$(HTTP_COOKIE{theme})", reg)
	if got != "dark" {
		t.Fatalf("got %q", got)
	}

	got = variables.Substitute("$(HTTP_COOKIE{missing}|none)", reg)
	if got != "none" {
		t.Fatalf("got %q", got)
	}
}

func TestSubstituteQueryString(t *testing.T) {
	reg := variables.FromRequest("http://example.com/?foo=bar&baz=1", http.Header{})
	got := variables.Substitute("$(QUERY_STRING{foo})", reg)
	if got != "bar" {
		t.Fatalf("got %q", got)
	}
}

func TestSubstituteAcceptLanguageMembership(t *testing.T) {
	header := http.Header{}
	header.Set("Accept-Language", "da, en-gb;q=0.8, en;q=0.7")
	reg := variables.FromRequest("http://example.com/", header)

	if got := variables.Substitute("$(HTTP_ACCEPT_LANGUAGE{da})", reg); got != "" {
		t.Fatalf("boolean true substitutes to empty text, got %q", got)
	}
	if got := variables.Substitute("$(HTTP_ACCEPT_LANGUAGE{fr}|nope)", reg); got != "nope" {
		t.Fatalf("a false sub-value falls back to the default, got %q", got)
	}
}

func TestSubstituteUserAgent(t *testing.T) {
	header := http.Header{}
	header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0) Firefox/120.0")
	reg := variables.FromRequest("http://example.com/", header)

	if got := variables.Substitute("$(HTTP_USER_AGENT{os})", reg); got != "WIN" {
		t.Fatalf("got %q", got)
	}
	if got := variables.Substitute("$(HTTP_USER_AGENT{browser})", reg); got != "MOZILLA" {
		t.Fatalf("got %q", got)
	}
}
