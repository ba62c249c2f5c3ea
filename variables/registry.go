package variables

import "net/http"

// Registry is the default IVariables implementation: built-in variables
// derived from a request URL and its headers. It is read-only after
// construction and safe to share across concurrent transformers.
type Registry struct {
	vars map[string]Variable
}

// FromRequest builds the built-in variable set described by the ESI
// variables table: HTTP_ACCEPT_LANGUAGE and HTTP_COOKIE always exist
// (defaulting to the empty string), HTTP_HOST/HTTP_REFERER/
// HTTP_USER_AGENT only exist when their header is present, and
// QUERY_STRING always exists.
func FromRequest(rawURL string, header http.Header) *Registry {
	vars := map[string]Variable{
		"HTTP_ACCEPT_LANGUAGE": newAcceptLanguage(header.Get("Accept-Language")),
		"HTTP_COOKIE":          newCookie(header.Get("Cookie")),
		"QUERY_STRING":         newQueryString(rawURL),
	}

	if h := header.Get("Host"); h != "" {
		vars["HTTP_HOST"] = Scalar(h)
	}
	if h := header.Get("Referer"); h != "" {
		vars["HTTP_REFERER"] = Scalar(h)
	}
	if h := header.Get("User-Agent"); h != "" {
		vars["HTTP_USER_AGENT"] = newUserAgent(h)
	}

	return &Registry{vars: vars}
}

// Get implements Variables.
func (r *Registry) Get(name string) (Variable, bool) {
	v, ok := r.vars[name]
	return v, ok
}

// Variables resolves a built-in or custom ESI variable by name. Host
// applications may supply their own implementation via Options.Vars.
type Variables interface {
	Get(name string) (Variable, bool)
}
