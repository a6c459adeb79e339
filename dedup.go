package walkroute

import (
	"sort"
	"strconv"
	"strings"
)

// edgeSetSignature returns order independent representation of edge multiset
func edgeSetSignature(edges []EdgeID) string {
	sorted := make([]int, len(edges))
	for i, id := range edges {
		sorted[i] = int(id)
	}
	sort.Ints(sorted)
	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

// SameEdgeSet reports whether two routes use the same edges regardless of walk order
func SameEdgeSet(a, b Route) bool {
	if len(a.Edges) != len(b.Edges) {
		return false
	}
	return edgeSetSignature(a.Edges) == edgeSetSignature(b.Edges)
}

// Deduplicate removes routes which use the same edges as some earlier route. First occurrence wins
func Deduplicate(routes []Route) []Route {
	seen := make(map[string]struct{}, len(routes))
	result := make([]Route, 0, len(routes))
	for _, route := range routes {
		sig := edgeSetSignature(route.Edges)
		if _, ok := seen[sig]; ok {
			continue
		}
		seen[sig] = struct{}{}
		result = append(result, route)
	}
	return result
}
