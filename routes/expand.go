package routes

import (
	"net/url"
	"strings"
)

// Expand substitutes {name} placeholders in route with path-escaped values.
// Pairs are given as name, value, name, value...
func Expand(route string, pairs ...string) string {
	if len(pairs)%2 != 0 {
		pairs = pairs[:len(pairs)-1]
	}
	out := route
	for i := 0; i < len(pairs); i += 2 {
		out = strings.ReplaceAll(out, "{"+pairs[i]+"}", url.PathEscape(pairs[i+1]))
	}
	return out
}
