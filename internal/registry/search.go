package registry

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Search returns leaves whose display name or path matches query, best
// match first. An empty query returns every leaf.
func Search(root *Node, query string) []*Node {
	leaves := root.Leaves()
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return leaves
	}
	labels := make([]string, len(leaves))
	for i, leaf := range leaves {
		labels[i] = leaf.Name
	}
	ranks := fuzzy.RankFindNormalizedFold(trimmed, labels)
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Distance == ranks[j].Distance {
			return ranks[i].OriginalIndex < ranks[j].OriginalIndex
		}
		return ranks[i].Distance < ranks[j].Distance
	})
	seen := make(map[int]struct{}, len(ranks))
	out := make([]*Node, 0, len(ranks))
	for _, rank := range ranks {
		seen[rank.OriginalIndex] = struct{}{}
		out = append(out, leaves[rank.OriginalIndex])
	}
	lower := strings.ToLower(trimmed)
	for i, leaf := range leaves {
		if _, ok := seen[i]; ok {
			continue
		}
		if strings.Contains(strings.ToLower(leaf.Path), lower) {
			out = append(out, leaf)
		}
	}
	return out
}
