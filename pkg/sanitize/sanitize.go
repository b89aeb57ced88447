// Package sanitize cleans user supplied free text before it is stored.
package sanitize

import (
	"html"
	"sort"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Text strips all markup and surrounding whitespace. The policy escapes
// entities, which are decoded again so "R&D" survives as typed.
func Text(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// Tags normalises a list of skill/interest tags: sanitised, lower-cased,
// de-duplicated and sorted. Empty entries are dropped.
func Tags(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.ToLower(Text(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Email lower-cases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
