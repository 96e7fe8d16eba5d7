package tenant

import (
	"net"
	"regexp"
	"strings"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// NormalizeSlug lowercases and trims a slug, returning false when it is not URL-safe.
func NormalizeSlug(input string) (string, bool) {
	slug := strings.ToLower(strings.TrimSpace(input))
	if slug == "" || !slugPattern.MatchString(slug) {
		return "", false
	}
	return slug, true
}

// SlugFromHost returns the leftmost label of host when host is a direct subdomain of baseDomain.
// "acme.gym.example.com" with base "gym.example.com" yields "acme". Ports are ignored.
func SlugFromHost(host, baseDomain string) (string, bool) {
	baseDomain = strings.ToLower(strings.Trim(strings.TrimSpace(baseDomain), "."))
	if baseDomain == "" {
		return "", false
	}

	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}

	suffix := "." + baseDomain
	if !strings.HasSuffix(host, suffix) {
		return "", false
	}

	label := strings.TrimSuffix(host, suffix)
	if strings.Contains(label, ".") {
		return "", false
	}
	return NormalizeSlug(label)
}
