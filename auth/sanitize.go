package auth

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.StrictPolicy()

// SanitizeUsername strips any HTML from a callsign before it is stored or
// matched, so it can be echoed into reports safely.
func SanitizeUsername(username string) string {
	return strings.TrimSpace(policy.Sanitize(username))
}
