// Package app implements the application services for plannerd: the cache
// coordinator and the per-resource query/mutation services built on it.
package app

import (
	"net/url"
	"strconv"
	"strings"

	planner "github.com/tidyplan/plannerd/internal"
)

// absent is the sentinel for a filter field with no constraint. QueryEscape
// never produces a bare "*", so the sentinel cannot collide with any real
// value, including the empty string (which encodes as "").
const absent = "*"

// CacheKey returns the deterministic cache key for a filtered list query.
// Fields are emitted in the resource's canonical order regardless of how
// the filter was built, so two logically identical requests always produce
// the same key.
func CacheKey(rt planner.ResourceType, f planner.Filter, page planner.Page) string {
	var b strings.Builder
	b.WriteString(string(rt))
	b.WriteByte('?')
	for _, field := range planner.FilterFields(rt) {
		b.WriteString(field)
		b.WriteByte('=')
		if v, ok := f[field]; ok {
			b.WriteString(url.QueryEscape(v))
		} else {
			b.WriteString(absent)
		}
		b.WriteByte('&')
	}
	b.WriteString("limit=")
	b.WriteString(strconv.Itoa(page.Limit))
	b.WriteString("&skip=")
	b.WriteString(strconv.Itoa(page.Skip))
	return b.String()
}

// ResourcePrefix returns the common prefix of every cache key for rt,
// used for resource-wide invalidation.
func ResourcePrefix(rt planner.ResourceType) string {
	return string(rt) + "?"
}
