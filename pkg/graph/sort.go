package graph

import (
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Candidate is one displayed entry of a filter tier.
type Candidate struct {
	Key      string   `json:"key"`
	Count    int      `json:"count"`
	Selected bool     `json:"selected"`
	Types    []string `json:"types,omitempty"`
}

// Sorted returns the tier's displayed candidates in the tier's sort order.
//
// Counts are nodes per category, edge touches per entity and candidate
// edges per relationship. Count order is descending with ties kept in
// first-seen order; alphabetical order uses locale-aware collation.
func (c *Cascade) Sorted(tier Tier) []Candidate {
	keys := c.Candidates(tier)
	out := make([]Candidate, 0, len(keys))

	for _, key := range keys {
		entry := Candidate{Key: key}
		switch tier {
		case TierNodeType:
			entry.Count = c.store.NodeTypeCount(key)
			entry.Selected = c.nodeTypeFilter[key]
		case TierNodeLabel:
			entry.Count = c.store.NodeLabelEdgeCount(key)
			entry.Selected = c.nodeFilter[key]
			if node, ok := c.store.NodeByLabel(key); ok {
				entry.Types = node.Type
			}
		case TierEdgeLabel:
			entry.Count = c.edgeLabelCounts[key]
			entry.Selected = c.edgeFilter[key]
		}
		out = append(out, entry)
	}

	sortCandidates(out, c.SortOrder(tier))
	return out
}

func sortCandidates(candidates []Candidate, order SortOrder) {
	switch order {
	case SortAlphabetical:
		col := collate.New(language.Und)
		slices.SortStableFunc(candidates, func(a, b Candidate) int {
			return col.CompareString(a.Key, b.Key)
		})
	default:
		slices.SortStableFunc(candidates, func(a, b Candidate) int {
			return b.Count - a.Count
		})
	}
}
