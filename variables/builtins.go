package variables

import (
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/text/language"
)

func newAcceptLanguage(raw string) List {
	members := map[string]bool{}
	if raw != "" {
		if tags, _, err := language.ParseAcceptLanguage(raw); err == nil {
			for _, t := range tags {
				members[t.String()] = true
				if base, conf := t.Base(); conf != language.No {
					members[base.String()] = true
				}
			}
		}
	}
	return newList(raw, members)
}

func newCookie(raw string) Dict {
	entries := map[string]string{}
	header := http.Header{}
	if raw != "" {
		header.Set("Cookie", raw)
	}
	req := http.Request{Header: header}
	for _, c := range req.Cookies() {
		entries[c.Name] = c.Value
	}
	return newDict(raw, entries)
}

func newQueryString(rawURL string) Dict {
	var rawQuery string
	if u, err := url.Parse(rawURL); err == nil {
		rawQuery = u.RawQuery
	} else if i := strings.IndexByte(rawURL, '?'); i >= 0 {
		rawQuery = rawURL[i+1:]
	}

	entries := map[string]string{}
	if values, err := url.ParseQuery(rawQuery); err == nil {
		for k, v := range values {
			if len(v) > 0 {
				entries[k] = v[0]
			}
		}
	}

	return newDict(rawQuery, entries)
}
