package variables

import "regexp"

// UserAgent is the HTTP_USER_AGENT variable: a dictionary with fixed
// sub-keys browser, version and os, classified from the raw User-Agent
// header text.
type UserAgent struct {
	raw string
}

func newUserAgent(raw string) UserAgent { return UserAgent{raw: raw} }

func (u UserAgent) Value() (string, bool) { return quote(u.raw), true }

var (
	reMSIE       = regexp.MustCompile(`MSIE\s+(\d+\.\d+)`)
	reTrident    = regexp.MustCompile(`Trident/.*rv:(\d+\.\d+)`)
	reMozVersion = regexp.MustCompile(`(?:Firefox|Version)/(\d+\.\d+)`)
	reMac        = regexp.MustCompile(`Mac OS X`)
	reWindows    = regexp.MustCompile(`Windows`)
	reUnix       = regexp.MustCompile(`Linux|X11|BSD|Unix`)
)

func (u UserAgent) SubValue(key string) (string, bool) {
	switch key {
	case "browser":
		return quote(u.browser()), true
	case "version":
		return quote(u.version()), true
	case "os":
		return quote(u.os()), true
	default:
		return "", false
	}
}

func (u UserAgent) browser() string {
	switch {
	case reMSIE.MatchString(u.raw), reTrident.MatchString(u.raw):
		return "MSIE"
	case regexp.MustCompile(`Mozilla`).MatchString(u.raw):
		return "MOZILLA"
	default:
		return "OTHER"
	}
}

func (u UserAgent) version() string {
	if m := reMSIE.FindStringSubmatch(u.raw); m != nil {
		return m[1]
	}
	if m := reTrident.FindStringSubmatch(u.raw); m != nil {
		return m[1]
	}
	if m := reMozVersion.FindStringSubmatch(u.raw); m != nil {
		return m[1]
	}
	return ""
}

func (u UserAgent) os() string {
	switch {
	case reWindows.MatchString(u.raw):
		return "WIN"
	case reMac.MatchString(u.raw):
		return "MAC"
	case reUnix.MatchString(u.raw):
		return "UNIX"
	default:
		return "OTHER"
	}
}
