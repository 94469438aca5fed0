// Package pathutil normalizes URL paths for metrics labels.
package pathutil

import (
	"regexp"
	"strings"
)

// pathPattern pairs a route regex with its normalized template.
type pathPattern struct {
	pattern  *regexp.Regexp
	template string
}

// Video IDs are UUIDs. Patterns are evaluated most specific first and are
// pre-compiled so normalization stays cheap on the hot path.
var pathPatterns = []*pathPattern{
	{pattern: regexp.MustCompile(`^/api/videos/[0-9a-fA-F-]{36}/react$`), template: "/api/videos/:id/react"},
	{pattern: regexp.MustCompile(`^/api/videos/[0-9a-fA-F-]{36}$`), template: "/api/videos/:id"},
}

// NormalizePath converts paths containing video IDs to template form
// (e.g. /api/videos/3f1c.../react becomes /api/videos/:id/react) so
// Prometheus path labels stay bounded. Static paths pass through unchanged.
func NormalizePath(path string) string {
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}

	for _, p := range pathPatterns {
		if p.pattern.MatchString(path) {
			return p.template
		}
	}
	return path
}
