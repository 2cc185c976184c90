package graph

import (
	"fmt"

	"github.com/OFFIS-RIT/kiwi/explorer/pkg/common"
	"github.com/OFFIS-RIT/kiwi/explorer/pkg/logger"
)

const defaultDistanceThreshold = 1

// Engine composes the store, the filter cascade and the traversal modes
// behind the operations used by the rendering collaborator.
//
// An Engine holds exactly one mutable graph and filter state. It is not safe
// for concurrent use; callers serialize their calls.
type Engine struct {
	store     *Store
	cascade   *Cascade
	palette   *Palette
	mode      Mode
	direction Direction
	threshold int
	maxEdges  int
}

// NewEngineParams defines the configuration parameters for creating a new
// Engine.
//
// MaxEdges lowers the size governor; zero, negative or larger values use
// MaxEdges.
type NewEngineParams struct {
	MaxEdges int
}

// NewEngine creates an engine without a graph, in edges-only mode. Every
// query on it returns an empty result until LoadGraphData succeeds.
//
// Example:
//
//	engine := graph.NewEngine(graph.NewEngineParams{})
//	if err := engine.LoadGraphData(doc); err != nil {
//		log.Fatal(err)
//	}
//	_ = engine.ToggleEdgeLabel("works_at")
//	view := engine.GetVisibleGraph()
func NewEngine(params NewEngineParams) *Engine {
	maxEdges := params.MaxEdges
	if maxEdges <= 0 || maxEdges > MaxEdges {
		maxEdges = MaxEdges
	}
	mode := ModeEdgesOnly

	store := emptyStore()
	return &Engine{
		store:     store,
		cascade:   NewCascade(store, mode),
		palette:   NewPalette(),
		mode:      mode,
		direction: DirectionBoth,
		threshold: defaultDistanceThreshold,
		maxEdges:  maxEdges,
	}
}

// LoadGraphData replaces the graph wholesale and resets filters, direction,
// distance threshold and colours to their defaults. The exploration mode is
// kept. On error the previous graph and state stay untouched.
func (e *Engine) LoadGraphData(doc common.Document) error {
	store, err := NewStore(doc)
	if err != nil {
		return fmt.Errorf("failed to load graph data: %w", err)
	}

	e.store = store
	e.cascade = NewCascade(store, e.mode)
	e.palette = NewPalette()
	e.direction = DirectionBoth
	e.threshold = defaultDistanceThreshold

	for _, node := range store.Nodes() {
		e.palette.NodeColor(node.Type)
	}

	e.afterCascade()
	return nil
}

// afterCascade keeps root distances current while exploring and drops them
// in every other mode.
func (e *Engine) afterCascade() {
	if e.mode == ModeExplore {
		calculateRootDistances(e.store, e.cascade, e.direction)
		return
	}
	e.store.clearRootDistances()
}

// Toggle flips one key of a tier and recomputes the tiers below it.
func (e *Engine) Toggle(tier Tier, key string) error {
	if _, ok := tierNames[tier]; !ok {
		return ErrInvalidTier
	}
	if !e.cascade.Toggle(tier, key) {
		return fmt.Errorf("%w: %s %q", ErrUnknownKey, tier, key)
	}
	e.afterCascade()
	return nil
}

func (e *Engine) ToggleNodeType(key string) error {
	return e.Toggle(TierNodeType, key)
}

func (e *Engine) ToggleNodeLabel(key string) error {
	return e.Toggle(TierNodeLabel, key)
}

func (e *Engine) ToggleEdgeLabel(key string) error {
	return e.Toggle(TierEdgeLabel, key)
}

// SelectAll sets every displayed candidate of a tier. Candidates hidden by
// the tier's free-text filter keep their state.
func (e *Engine) SelectAll(tier Tier, selected bool) error {
	if _, ok := tierNames[tier]; !ok {
		return ErrInvalidTier
	}
	if tier == TierNodeType && !e.cascade.TypeFilteringNodes() {
		return nil
	}
	e.cascade.SelectAll(tier, selected)
	e.afterCascade()
	return nil
}

func (e *Engine) SelectAllNodeTypes(selected bool) {
	_ = e.SelectAll(TierNodeType, selected)
}

func (e *Engine) SelectAllNodeLabels(selected bool) {
	_ = e.SelectAll(TierNodeLabel, selected)
}

func (e *Engine) SelectAllEdgeLabels(selected bool) {
	_ = e.SelectAll(TierEdgeLabel, selected)
}

// SetInputFilter narrows the displayed candidates of a tier to those
// containing text, ignoring case. Text is cut to MaxInputLength runes.
func (e *Engine) SetInputFilter(tier Tier, text string) error {
	if _, ok := tierNames[tier]; !ok {
		return ErrInvalidTier
	}
	e.cascade.SetInput(tier, text)
	e.afterCascade()
	return nil
}

func (e *Engine) SetInputFilterForNodeTypes(text string) {
	_ = e.SetInputFilter(TierNodeType, text)
}

func (e *Engine) SetInputFilterForNodeLabels(text string) {
	_ = e.SetInputFilter(TierNodeLabel, text)
}

func (e *Engine) SetInputFilterForEdgeLabels(text string) {
	_ = e.SetInputFilter(TierEdgeLabel, text)
}

// SetSortOrder changes the display order of a tier.
func (e *Engine) SetSortOrder(tier Tier, order SortOrder) error {
	return e.cascade.SetSortOrder(tier, order)
}

func (e *Engine) SetNodeTypeSortOrder(order SortOrder) error {
	return e.SetSortOrder(TierNodeType, order)
}

func (e *Engine) SetNodeLabelSortOrder(order SortOrder) error {
	return e.SetSortOrder(TierNodeLabel, order)
}

func (e *Engine) SetEdgeLabelSortOrder(order SortOrder) error {
	return e.SetSortOrder(TierEdgeLabel, order)
}

// SetMode switches the exploration mode and recomputes the cascade, since
// the relationship candidates depend on it.
func (e *Engine) SetMode(mode Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidMode, int(mode))
	}
	e.mode = mode
	e.cascade.SetMode(mode)
	e.afterCascade()
	return nil
}

func (e *Engine) Mode() Mode {
	return e.mode
}

// SetDirection changes which edge directions explore mode follows.
func (e *Engine) SetDirection(direction Direction) error {
	if !direction.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidDirection, int(direction))
	}
	e.direction = direction
	e.afterCascade()
	return nil
}

// CycleDirection steps through both, out and in, and returns the new value.
func (e *Engine) CycleDirection() Direction {
	e.direction = e.direction.Next()
	e.afterCascade()
	return e.direction
}

func (e *Engine) Direction() Direction {
	return e.direction
}

// SetDistanceThreshold sets the largest root distance shown in explore mode.
func (e *Engine) SetDistanceThreshold(threshold int) error {
	if threshold < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidThreshold, threshold)
	}
	e.threshold = threshold
	return nil
}

func (e *Engine) DistanceThreshold() int {
	return e.threshold
}

// SetTypeFilteringNodes enables or disables narrowing entities by category.
func (e *Engine) SetTypeFilteringNodes(enabled bool) {
	e.cascade.SetTypeFilteringNodes(enabled)
	e.afterCascade()
}

// SetNodeFilteringEdges enables or disables narrowing relationships to the
// edges of the selected entities.
func (e *Engine) SetNodeFilteringEdges(enabled bool) {
	e.cascade.SetNodeFilteringEdges(enabled)
	e.afterCascade()
}

// GetVisibleGraph computes the subgraph for the current mode and filters.
func (e *Engine) GetVisibleGraph() common.VisibleGraph {
	var view common.VisibleGraph
	switch e.mode {
	case ModeRoutes:
		e.store.clearRootDistances()
		view = routesGraph(e.store, e.cascade, e.maxEdges)
	case ModeExplore:
		view = exploreGraph(e.store, e.cascade, e.direction, e.threshold, e.maxEdges)
	default:
		e.store.clearRootDistances()
		view = edgesOnlyGraph(e.store, e.cascade, e.maxEdges)
	}

	logger.Debug("[Engine] Visible graph computed",
		"mode", e.mode.String(),
		"nodes", len(view.VisibleNodes),
		"edges", len(view.MergedEdges),
		"message", view.Message,
	)
	return view
}

// CalculateRootDistances recomputes root distances for the current roots,
// relationships and direction and returns the distance per reached node id.
func (e *Engine) CalculateRootDistances() map[string]int {
	calculateRootDistances(e.store, e.cascade, e.direction)

	out := make(map[string]int)
	for _, node := range e.store.Nodes() {
		if node.RootDistance != nil {
			out[node.ID] = *node.RootDistance
		}
	}
	return out
}

// GetSelectedNodes returns the checked entities in node order.
func (e *Engine) GetSelectedNodes() []common.Node {
	return e.cascade.SelectedNodes()
}

// GetSelectedNodeTypes returns the checked categories in first-seen order.
func (e *Engine) GetSelectedNodeTypes() []string {
	return e.cascade.SelectedNodeTypes()
}

// Filter returns a copy of a tier's selection.
func (e *Engine) Filter(tier Tier) Selection {
	return e.cascade.Filter(tier)
}

// Sorted returns a tier's displayed candidates in its sort order.
func (e *Engine) Sorted(tier Tier) []Candidate {
	return e.cascade.Sorted(tier)
}

// NodeColor returns the palette colour of a node's category list.
func (e *Engine) NodeColor(node common.Node) string {
	return e.palette.NodeColor(node.Type)
}

// Metadata returns the source document legend of the loaded graph.
func (e *Engine) Metadata() []common.Metadata {
	return e.store.Metadata()
}

// Store exposes the loaded graph for read-only use.
func (e *Engine) Store() *Store {
	return e.store
}
