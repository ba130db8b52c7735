package ui

import (
	"net/url"
	"strings"
)

// ValidAmazonURL reports whether raw parses as an absolute URL whose host
// mentions amazon. The check is intentionally loose: any host containing
// "amazon." passes, including look-alike domains.
func ValidAmazonURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return strings.Contains(host, "amazon.com") || strings.Contains(host, "amazon.")
}
