package middleware

import (
	"path"
	"strings"
)

// PublicPaths lists path prefixes reachable without a token. A prefix matches
// itself and anything below it, so "/docs" matches "/docs/x" but not
// "/docsx".
type PublicPaths []string

func NewPublicPaths(paths []string) PublicPaths {
	out := make(PublicPaths, 0, len(paths))
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, path.Clean("/"+p))
	}
	return out
}

func (p PublicPaths) Match(requestPath string) bool {
	clean := path.Clean("/" + requestPath)
	for _, prefix := range p {
		if clean == prefix || strings.HasPrefix(clean, prefix+"/") {
			return true
		}
	}
	return false
}
