package graph

import (
	"errors"
	"reflect"
	"testing"

	"github.com/OFFIS-RIT/kiwi/explorer/pkg/common"
)

func TestNewEngineDefaults(t *testing.T) {
	e := NewEngine(NewEngineParams{})

	if e.Mode() != ModeEdgesOnly {
		t.Fatalf("Mode() = %v, want %v", e.Mode(), ModeEdgesOnly)
	}
	if e.Direction() != DirectionBoth {
		t.Fatalf("Direction() = %v, want %v", e.Direction(), DirectionBoth)
	}
	if e.DistanceThreshold() != 1 {
		t.Fatalf("DistanceThreshold() = %d, want 1", e.DistanceThreshold())
	}
	if got := e.GetVisibleGraph().Message; got != MessageSelectEdges {
		t.Fatalf("message = %q, want %q", got, MessageSelectEdges)
	}
}

func TestLoadGraphDataFailureKeepsState(t *testing.T) {
	e := loadedEngine(t, companyDocument())
	mustNoErr(t, e.ToggleEdgeLabel("works_at"))
	before := e.GetVisibleGraph()

	bad := common.Document{Nodes: []common.Node{node("1", "Same", "T"), node("2", "Same", "T")}}
	err := e.LoadGraphData(bad)

	var dup *DuplicateLabelError
	if !errors.As(err, &dup) {
		t.Fatalf("LoadGraphData() error = %v, want *DuplicateLabelError", err)
	}
	if got := e.GetVisibleGraph(); !reflect.DeepEqual(got, before) {
		t.Fatalf("view changed after failed load:\n%+v\n%+v", got, before)
	}
	if len(e.Store().Nodes()) != 5 {
		t.Fatalf("store replaced after failed load")
	}
}

func TestLoadGraphDataResetsStateButKeepsMode(t *testing.T) {
	e := loadedEngine(t, companyDocument())
	mustNoErr(t, e.SetMode(ModeExplore))
	mustNoErr(t, e.SetDirection(DirectionOut))
	mustNoErr(t, e.SetDistanceThreshold(4))
	mustNoErr(t, e.ToggleNodeType("Person"))
	e.SetInputFilterForEdgeLabels("work")

	mustNoErr(t, e.LoadGraphData(companyDocument()))

	if e.Mode() != ModeExplore {
		t.Fatalf("Mode() = %v, want explore", e.Mode())
	}
	if e.Direction() != DirectionBoth || e.DistanceThreshold() != 1 {
		t.Fatalf("direction = %v, threshold = %d", e.Direction(), e.DistanceThreshold())
	}
	if len(e.GetSelectedNodeTypes()) != 0 {
		t.Fatalf("selected types = %v, want none", e.GetSelectedNodeTypes())
	}
	if s := e.Snapshot(); s.EdgeLabels.Input != "" {
		t.Fatalf("edge input = %q, want empty", s.EdgeLabels.Input)
	}
}

func TestEngineValidation(t *testing.T) {
	e := loadedEngine(t, companyDocument())

	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "mode", err: e.SetMode(Mode(7)), want: ErrInvalidMode},
		{name: "direction zero", err: e.SetDirection(Direction(0)), want: ErrInvalidDirection},
		{name: "direction four", err: e.SetDirection(Direction(4)), want: ErrInvalidDirection},
		{name: "threshold", err: e.SetDistanceThreshold(-1), want: ErrInvalidThreshold},
		{name: "sort order", err: e.SetEdgeLabelSortOrder("random"), want: ErrInvalidSortOrder},
		{name: "sort tier", err: e.SetSortOrder(Tier(5), SortByCount), want: ErrInvalidTier},
		{name: "toggle tier", err: e.Toggle(Tier(5), "x"), want: ErrInvalidTier},
		{name: "toggle key", err: e.ToggleNodeLabel("Nobody"), want: ErrUnknownKey},
		{name: "select all tier", err: e.SelectAll(Tier(-1), true), want: ErrInvalidTier},
		{name: "input tier", err: e.SetInputFilter(Tier(3), "x"), want: ErrInvalidTier},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if !errors.Is(tc.err, tc.want) {
				t.Fatalf("error = %v, want %v", tc.err, tc.want)
			}
		})
	}

	if e.Mode() != ModeEdgesOnly || e.Direction() != DirectionBoth || e.DistanceThreshold() != 1 {
		t.Fatalf("rejected calls changed state")
	}
}

func TestCycleDirection(t *testing.T) {
	e := NewEngine(NewEngineParams{})
	want := []Direction{DirectionOut, DirectionIn, DirectionBoth, DirectionOut}
	for i, w := range want {
		if got := e.CycleDirection(); got != w {
			t.Fatalf("cycle %d = %v, want %v", i, got, w)
		}
	}
}

func TestSelectAllNodeTypesWithoutTypeFiltering(t *testing.T) {
	e := loadedEngine(t, companyDocument())
	e.SetTypeFilteringNodes(false)
	e.SelectAllNodeTypes(true)

	if got := e.GetSelectedNodeTypes(); len(got) != 0 {
		t.Fatalf("selected types = %v, want none", got)
	}
}

func TestGetSelected(t *testing.T) {
	e := loadedEngine(t, companyDocument())
	e.SelectAllNodeTypes(true)
	mustNoErr(t, e.ToggleNodeLabel("Bob"))
	mustNoErr(t, e.ToggleNodeLabel("Acme"))

	if want := []string{"Person", "Author", "Organization", "Location"}; !reflect.DeepEqual(e.GetSelectedNodeTypes(), want) {
		t.Fatalf("GetSelectedNodeTypes() = %v, want %v", e.GetSelectedNodeTypes(), want)
	}
	if want := []string{"p2", "o1"}; !reflect.DeepEqual(nodeIDs(e.GetSelectedNodes()), want) {
		t.Fatalf("GetSelectedNodes() = %v, want %v", nodeIDs(e.GetSelectedNodes()), want)
	}
}

func candidateKeys(candidates []Candidate) []string {
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.Key)
	}
	return out
}

func TestSorted(t *testing.T) {
	e := loadedEngine(t, companyDocument())
	e.SelectAllNodeTypes(true)

	tests := []struct {
		name  string
		tier  Tier
		order SortOrder
		want  []string
	}{
		{name: "types by count", tier: TierNodeType, order: SortByCount, want: []string{"Person", "Author", "Organization", "Location"}},
		{name: "types alphabetical", tier: TierNodeType, order: SortAlphabetical, want: []string{"Author", "Location", "Organization", "Person"}},
		{name: "labels by count", tier: TierNodeLabel, order: SortByCount, want: []string{"Acme", "Alice", "Bob", "Berlin", "Carol"}},
		{name: "labels alphabetical", tier: TierNodeLabel, order: SortAlphabetical, want: []string{"Acme", "Alice", "Berlin", "Bob", "Carol"}},
		{name: "edges by count", tier: TierEdgeLabel, order: SortByCount, want: []string{"works_at", "knows", "located_in"}},
		{name: "edges alphabetical", tier: TierEdgeLabel, order: SortAlphabetical, want: []string{"knows", "located_in", "works_at"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mustNoErr(t, e.SetSortOrder(tc.tier, tc.order))
			if got := candidateKeys(e.Sorted(tc.tier)); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Sorted() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSortedCandidateDetails(t *testing.T) {
	e := loadedEngine(t, companyDocument())
	e.SelectAllNodeTypes(true)
	mustNoErr(t, e.ToggleNodeLabel("Carol"))

	for _, c := range e.Sorted(TierNodeLabel) {
		if c.Key != "Carol" {
			continue
		}
		want := Candidate{Key: "Carol", Count: 0, Selected: true, Types: []string{"Person", "Author"}}
		if !reflect.DeepEqual(c, want) {
			t.Fatalf("candidate = %+v, want %+v", c, want)
		}
		return
	}
	t.Fatalf("Carol missing from candidates")
}

func TestSortAlphabeticalIsLocaleAware(t *testing.T) {
	candidates := []Candidate{{Key: "zebra"}, {Key: "Äpfel"}, {Key: "apple"}, {Key: "Banana"}}
	sortCandidates(candidates, SortAlphabetical)

	if got, want := candidateKeys(candidates), []string{"Äpfel", "apple", "Banana", "zebra"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
}

func TestPalette(t *testing.T) {
	p := NewPalette()

	want := []struct {
		key   string
		color string
	}{
		{"a", "hsl(0, 70%, 50%)"},
		{"b", "hsl(137.5, 70%, 50%)"},
		{"c", "hsl(275, 70%, 50%)"},
		{"d", "hsl(52.5, 70%, 50%)"},
		{"a", "hsl(0, 70%, 50%)"},
	}
	for _, w := range want {
		if got := p.Color(w.key); got != w.color {
			t.Fatalf("Color(%q) = %q, want %q", w.key, got, w.color)
		}
	}
	if got := len(p.Colors()); got != 4 {
		t.Fatalf("Colors() has %d entries, want 4", got)
	}
	if p.NodeColor([]string{"x", "y"}) != p.Color("x,y") {
		t.Fatalf("NodeColor does not key by the joined category list")
	}
}

func TestSnapshot(t *testing.T) {
	e := loadedEngine(t, companyDocument())
	mustNoErr(t, e.ToggleNodeType("Person"))
	mustNoErr(t, e.SetNodeTypeSortOrder(SortAlphabetical))

	s := e.Snapshot()
	if s.Mode != "edges" || s.Direction != DirectionBoth || s.DistanceThreshold != 1 {
		t.Fatalf("snapshot header = %+v", s)
	}
	if s.NodeCount != 5 || s.EdgeCount != 4 || len(s.Metadata) != 3 {
		t.Fatalf("counts = %d nodes, %d edges, %d documents", s.NodeCount, s.EdgeCount, len(s.Metadata))
	}
	if s.NodeTypes.Selected != 1 || s.NodeTypes.SortOrder != SortAlphabetical {
		t.Fatalf("node types = %+v", s.NodeTypes)
	}
	if got := len(s.NodeLabels.Candidates); got != 3 {
		t.Fatalf("node label candidates = %d, want 3", got)
	}
	if got := len(s.Colors); got != 4 {
		t.Fatalf("colors = %v, want one per category list", s.Colors)
	}

	s.Colors["Person"] = "changed"
	if e.NodeColor(node("x", "X", "Person")) == "changed" {
		t.Fatalf("snapshot shares colours with the engine")
	}
}

func TestParseHelpers(t *testing.T) {
	if m, err := ParseMode("Explore"); err != nil || m != ModeExplore {
		t.Fatalf("ParseMode(Explore) = %v, %v", m, err)
	}
	if _, err := ParseMode("walk"); !errors.Is(err, ErrInvalidMode) {
		t.Fatalf("ParseMode(walk) error = %v", err)
	}
	if tier, err := ParseTier("edge_label"); err != nil || tier != TierEdgeLabel {
		t.Fatalf("ParseTier(edge_label) = %v, %v", tier, err)
	}
	if _, err := ParseTier("edges"); !errors.Is(err, ErrInvalidTier) {
		t.Fatalf("ParseTier(edges) error = %v", err)
	}
	if o, err := ParseSortOrder("alphabetical"); err != nil || o != SortAlphabetical {
		t.Fatalf("ParseSortOrder(alphabetical) = %v, %v", o, err)
	}
	if _, err := ParseSortOrder("random"); !errors.Is(err, ErrInvalidSortOrder) {
		t.Fatalf("ParseSortOrder(random) error = %v", err)
	}
}
