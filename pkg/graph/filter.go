package graph

import (
	"strings"
	"unicode/utf8"

	"github.com/OFFIS-RIT/kiwi/explorer/pkg/common"
	"github.com/OFFIS-RIT/kiwi/explorer/pkg/logger"
)

// MaxInputLength is the longest free-text filter kept, in runes.
const MaxInputLength = 20

// Selection maps the keys of one tier to their checked state.
type Selection map[string]bool

// Selected returns the checked keys of order, keeping its order.
func (s Selection) Selected(order []string) []string {
	var out []string
	for _, key := range order {
		if s[key] {
			out = append(out, key)
		}
	}
	return out
}

// Any reports whether at least one key is checked.
func (s Selection) Any() bool {
	for _, v := range s {
		if v {
			return true
		}
	}
	return false
}

// Clone returns an independent copy.
func (s Selection) Clone() Selection {
	out := make(Selection, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Reconcile computes the next selection of a tier from the previous one and
// the currently visible candidates. Stored keys are kept whether or not they
// are visible. Visible keys without a stored state default to false, unless
// resetTo is set, in which case every visible key takes that value.
func Reconcile(prev Selection, visible []string, resetTo *bool) Selection {
	next := make(Selection, len(prev)+len(visible))
	for k, v := range prev {
		next[k] = v
	}
	for _, key := range visible {
		if resetTo != nil {
			next[key] = *resetTo
			continue
		}
		if _, ok := next[key]; !ok {
			next[key] = false
		}
	}
	return next
}

// NormalizeInput truncates a free-text filter to MaxInputLength runes.
func NormalizeInput(text string) string {
	if utf8.RuneCountInString(text) <= MaxInputLength {
		return text
	}
	return string([]rune(text)[:MaxInputLength])
}

// MatchInput keeps the items containing input, ignoring case. An empty
// input keeps everything.
func MatchInput(items []string, input string) []string {
	needle := strings.ToLower(input)
	if needle == "" {
		return append([]string(nil), items...)
	}
	var out []string
	for _, item := range items {
		if strings.Contains(strings.ToLower(item), needle) {
			out = append(out, item)
		}
	}
	return out
}

// NodeLabelUniverse returns the labels of the nodes whose categories
// intersect selectedTypes, in node order. With byType false every label is
// returned.
func NodeLabelUniverse(store *Store, selectedTypes Selection, byType bool) []string {
	labels := make([]string, 0, len(store.Nodes()))
	for _, node := range store.Nodes() {
		if byType && !hasSelectedType(node, selectedTypes) {
			continue
		}
		labels = append(labels, node.Label)
	}
	return labels
}

func hasSelectedType(node common.Node, selected Selection) bool {
	for _, t := range node.Type {
		if selected[t] {
			return true
		}
	}
	return false
}

// EdgeLabelUniverse returns the relationship labels of the edges touching at
// least one of the given node ids, in first-seen order, with the number of
// such edges per label. A nil set means every edge is a candidate.
func EdgeLabelUniverse(store *Store, nodeIDs map[string]struct{}) ([]string, map[string]int) {
	var labels []string
	counts := make(map[string]int)
	for _, edge := range store.Edges() {
		if nodeIDs != nil {
			_, src := nodeIDs[edge.Source]
			_, tgt := nodeIDs[edge.Target]
			if !src && !tgt {
				continue
			}
		}
		if _, ok := counts[edge.Label]; !ok {
			labels = append(labels, edge.Label)
		}
		counts[edge.Label]++
	}
	return labels, counts
}

// Cascade holds the three dependent filter tiers (category, entity,
// relationship) together with their free-text inputs and sort orders.
//
// Any change to a tier recomputes that tier's candidates and every tier
// below it; tiers above are never touched.
type Cascade struct {
	store *Store
	mode  Mode

	nodeTypeFilter Selection
	nodeFilter     Selection
	edgeFilter     Selection

	inputs [3]string
	sorts  [3]SortOrder

	typeFilteringNodes bool
	nodeFilteringEdges bool

	nodeTypeCandidates  []string
	nodeLabelCandidates []string
	edgeLabelUniverse   []string
	edgeLabelCandidates []string
	edgeLabelCounts     map[string]int
}

// NewCascade creates a cascade with default state for the store: nothing
// selected, empty inputs, count ordering, both cross-tier filters enabled.
func NewCascade(store *Store, mode Mode) *Cascade {
	c := &Cascade{
		store:              store,
		mode:               mode,
		nodeTypeFilter:     Selection{},
		nodeFilter:         Selection{},
		edgeFilter:         Selection{},
		sorts:              [3]SortOrder{SortByCount, SortByCount, SortByCount},
		typeFilteringNodes: true,
		nodeFilteringEdges: true,
		edgeLabelCounts:    map[string]int{},
	}
	c.Recompute()
	return c
}

// Recompute runs the whole cascade from the category tier down.
func (c *Cascade) Recompute() {
	c.updateNodeTypes(nil)
}

func (c *Cascade) updateNodeTypes(resetTo *bool) {
	if c.typeFilteringNodes {
		c.nodeTypeCandidates = MatchInput(c.store.NodeTypes(), c.inputs[TierNodeType])
		c.nodeTypeFilter = Reconcile(c.nodeTypeFilter, c.nodeTypeCandidates, resetTo)
	}
	c.updateNodeLabels(nil)
}

func (c *Cascade) updateNodeLabels(resetTo *bool) {
	universe := NodeLabelUniverse(c.store, c.nodeTypeFilter, c.typeFilteringNodes)
	c.nodeLabelCandidates = MatchInput(universe, c.inputs[TierNodeLabel])
	c.nodeFilter = Reconcile(c.nodeFilter, c.nodeLabelCandidates, resetTo)
	c.updateEdgeLabels(nil)
}

func (c *Cascade) updateEdgeLabels(resetTo *bool) {
	var ids map[string]struct{}
	if c.nodeFilteringEdges && c.mode != ModeEdgesOnly {
		ids = c.SelectedNodeIDs()
	}
	c.edgeLabelUniverse, c.edgeLabelCounts = EdgeLabelUniverse(c.store, ids)
	c.edgeLabelCandidates = MatchInput(c.edgeLabelUniverse, c.inputs[TierEdgeLabel])
	c.edgeFilter = Reconcile(c.edgeFilter, c.edgeLabelCandidates, resetTo)

	logger.Debug("[Cascade] Recomputed",
		"node_types", len(c.nodeTypeCandidates),
		"node_labels", len(c.nodeLabelCandidates),
		"edge_labels", len(c.edgeLabelCandidates),
	)
}

func (c *Cascade) update(tier Tier, resetTo *bool) {
	switch tier {
	case TierNodeType:
		c.updateNodeTypes(resetTo)
	case TierNodeLabel:
		c.updateNodeLabels(resetTo)
	case TierEdgeLabel:
		c.updateEdgeLabels(resetTo)
	}
}

// Toggle flips one key and recomputes the tiers below it. It returns false
// for keys that do not exist in the tier.
func (c *Cascade) Toggle(tier Tier, key string) bool {
	switch tier {
	case TierNodeType:
		if c.store.NodeTypeCount(key) == 0 {
			return false
		}
		c.nodeTypeFilter[key] = !c.nodeTypeFilter[key]
		c.updateNodeLabels(nil)
	case TierNodeLabel:
		if _, ok := c.store.NodeByLabel(key); !ok {
			return false
		}
		c.nodeFilter[key] = !c.nodeFilter[key]
		c.updateEdgeLabels(nil)
	case TierEdgeLabel:
		if c.store.EdgeLabelCount(key) == 0 {
			return false
		}
		c.edgeFilter[key] = !c.edgeFilter[key]
	default:
		return false
	}
	return true
}

// SelectAll sets every displayed candidate of the tier to selected. Keys
// hidden by the free-text input keep their state.
func (c *Cascade) SelectAll(tier Tier, selected bool) {
	c.update(tier, &selected)
}

// SetInput stores the tier's free-text filter and recomputes from that tier.
func (c *Cascade) SetInput(tier Tier, text string) {
	if tier < TierNodeType || tier > TierEdgeLabel {
		return
	}
	c.inputs[tier] = NormalizeInput(text)
	c.update(tier, nil)
}

// Input returns the tier's free-text filter.
func (c *Cascade) Input(tier Tier) string {
	if tier < TierNodeType || tier > TierEdgeLabel {
		return ""
	}
	return c.inputs[tier]
}

// SetSortOrder changes how the tier's candidates are ordered for display.
func (c *Cascade) SetSortOrder(tier Tier, order SortOrder) error {
	if _, err := ParseSortOrder(string(order)); err != nil {
		return err
	}
	if tier < TierNodeType || tier > TierEdgeLabel {
		return ErrInvalidTier
	}
	c.sorts[tier] = order
	return nil
}

// SortOrder returns the tier's sort order.
func (c *Cascade) SortOrder(tier Tier) SortOrder {
	if tier < TierNodeType || tier > TierEdgeLabel {
		return SortByCount
	}
	return c.sorts[tier]
}

// SetMode changes the exploration mode the relationship tier depends on and
// recomputes the whole cascade.
func (c *Cascade) SetMode(mode Mode) {
	c.mode = mode
	c.Recompute()
}

// SetTypeFilteringNodes enables or disables narrowing entities by category.
func (c *Cascade) SetTypeFilteringNodes(enabled bool) {
	c.typeFilteringNodes = enabled
	c.updateNodeTypes(nil)
}

// TypeFilteringNodes reports whether entities are narrowed by category.
func (c *Cascade) TypeFilteringNodes() bool {
	return c.typeFilteringNodes
}

// SetNodeFilteringEdges enables or disables narrowing relationships to the
// edges of the selected entities.
func (c *Cascade) SetNodeFilteringEdges(enabled bool) {
	c.nodeFilteringEdges = enabled
	c.updateEdgeLabels(nil)
}

// NodeFilteringEdges reports whether relationships are narrowed to the edges
// of the selected entities.
func (c *Cascade) NodeFilteringEdges() bool {
	return c.nodeFilteringEdges
}

// Filter returns a copy of the tier's selection.
func (c *Cascade) Filter(tier Tier) Selection {
	switch tier {
	case TierNodeType:
		return c.nodeTypeFilter.Clone()
	case TierNodeLabel:
		return c.nodeFilter.Clone()
	case TierEdgeLabel:
		return c.edgeFilter.Clone()
	}
	return Selection{}
}

// Candidates returns the tier's displayed candidates, after the free-text
// filter, in first-seen order.
func (c *Cascade) Candidates(tier Tier) []string {
	switch tier {
	case TierNodeType:
		return c.nodeTypeCandidates
	case TierNodeLabel:
		return c.nodeLabelCandidates
	case TierEdgeLabel:
		return c.edgeLabelCandidates
	}
	return nil
}

// EdgeLabelUniverse returns the relationship candidates before the free-text
// filter is applied.
func (c *Cascade) EdgeLabelUniverse() []string {
	return c.edgeLabelUniverse
}

// EdgeLabelCount returns how many candidate edges carry the label.
func (c *Cascade) EdgeLabelCount(label string) int {
	return c.edgeLabelCounts[label]
}

// EdgeSelected reports whether the relationship label is enabled.
func (c *Cascade) EdgeSelected(label string) bool {
	return c.edgeFilter[label]
}

// SelectedNodeTypes returns the checked categories in first-seen order.
func (c *Cascade) SelectedNodeTypes() []string {
	return c.nodeTypeFilter.Selected(c.store.NodeTypes())
}

// SelectedNodes returns the checked entities in node order.
func (c *Cascade) SelectedNodes() []common.Node {
	var out []common.Node
	for _, node := range c.store.Nodes() {
		if c.nodeFilter[node.Label] {
			out = append(out, node)
		}
	}
	return out
}

// SelectedNodeIDs returns the ids of the checked entities.
func (c *Cascade) SelectedNodeIDs() map[string]struct{} {
	ids := make(map[string]struct{})
	for _, node := range c.store.Nodes() {
		if c.nodeFilter[node.Label] {
			ids[node.ID] = struct{}{}
		}
	}
	return ids
}
