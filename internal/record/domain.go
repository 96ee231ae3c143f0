package record

import (
	"net/url"
	"strings"
)

const unknownDomain = "unknown"

// schemeDomains maps non-web schemes to a pseudo domain.
var schemeDomains = []struct {
	prefix string
	domain string
}{
	{"about:", "about"},
	{"chrome://", "chrome"},
	{"chrome-extension://", "extension"},
	{"moz-extension://", "extension"},
	{"file://", "local-file"},
	{"data:", "data"},
}

// secondLevelSuffixes keep three labels instead of two.
var secondLevelSuffixes = []string{"co.uk", "com.au", "co.jp", "co.in", "com.br"}

// ExtractDomain returns the registrable domain of rawURL.
//
//	https://www.example.co.uk/x -> example.co.uk
//	https://sub.example.com     -> example.com
//	chrome://extensions         -> chrome
func ExtractDomain(rawURL string) string {
	for _, s := range schemeDomains {
		if strings.HasPrefix(rawURL, s.prefix) {
			return s.domain
		}
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return unknownDomain
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return unknownDomain
	}

	host = strings.TrimPrefix(host, "www.")
	parts := strings.Split(host, ".")

	keep := 2
	for _, suffix := range secondLevelSuffixes {
		if strings.HasSuffix(host, "."+suffix) {
			keep = 3
			break
		}
	}

	if len(parts) <= keep {
		return host
	}

	return strings.Join(parts[len(parts)-keep:], ".")
}
