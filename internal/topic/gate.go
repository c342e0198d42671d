// Package topic decides whether a chat query is about health at all.
package topic

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Gate is a keyword filter over an immutable keyword set.
type Gate struct {
	keywords []string
}

// NewGate builds a Gate from keywords. Keywords are lower-cased, trimmed and
// de-duplicated; blank entries are ignored. A Gate without keywords rejects
// every query.
func NewGate(keywords []string) *Gate {
	seen := make(map[string]struct{}, len(keywords))
	kw := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(norm.NFKC.String(k)))
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		kw = append(kw, k)
	}
	return &Gate{keywords: kw}
}

// IsInScope reports whether any keyword occurs in the lower-cased query.
func (g *Gate) IsInScope(query string) bool {
	q := strings.ToLower(norm.NFKC.String(query))
	for _, k := range g.keywords {
		if strings.Contains(q, k) {
			return true
		}
	}
	return false
}

// Len returns the number of distinct keywords.
func (g *Gate) Len() int { return len(g.keywords) }
