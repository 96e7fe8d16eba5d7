package persistence

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// maxSlugLength keeps slugs usable as a single DNS label under the base domain.
const maxSlugLength = 63

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// NormalizeSlug trims and lowercases a tenant slug and checks it can serve as a subdomain label.
func NormalizeSlug(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", errors.New("slug is required")
	}

	normalized := strings.ToLower(trimmed)
	if len(normalized) > maxSlugLength {
		return "", fmt.Errorf("invalid slug %q: longer than %d characters", input, maxSlugLength)
	}
	if !slugPattern.MatchString(normalized) {
		return "", fmt.Errorf("invalid slug %q: use lowercase letters, digits and single hyphens", input)
	}

	return normalized, nil
}
