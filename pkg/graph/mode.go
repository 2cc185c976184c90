package graph

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidMode      = errors.New("invalid exploration mode")
	ErrInvalidDirection = errors.New("invalid direction mode")
	ErrInvalidThreshold = errors.New("distance threshold must not be negative")
	ErrInvalidSortOrder = errors.New("invalid sort order")
	ErrInvalidTier      = errors.New("invalid filter tier")
	ErrUnknownKey       = errors.New("unknown filter key")
)

// Mode selects how the visible subgraph is computed.
type Mode int

const (
	// ModeRoutes shows shortest paths between the selected entities.
	ModeRoutes Mode = iota
	// ModeExplore shows the neighbourhood of the selected entities up to a
	// distance threshold.
	ModeExplore
	// ModeEdgesOnly shows every edge with a selected relationship.
	ModeEdgesOnly
)

var modeNames = map[Mode]string{
	ModeRoutes:    "routes",
	ModeExplore:   "explore",
	ModeEdgesOnly: "edges",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Valid reports whether m is one of the defined modes.
func (m Mode) Valid() bool {
	_, ok := modeNames[m]
	return ok
}

// ParseMode accepts the mode names "routes", "explore" and "edges".
func ParseMode(s string) (Mode, error) {
	for mode, name := range modeNames {
		if strings.EqualFold(s, name) {
			return mode, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// Direction is a two bit mask: bit 0 follows out-edges, bit 1 follows
// in-edges.
type Direction int

const (
	DirectionOut  Direction = 1
	DirectionIn   Direction = 2
	DirectionBoth Direction = 3
)

func (d Direction) Valid() bool {
	return d >= DirectionOut && d <= DirectionBoth
}

func (d Direction) followsOut() bool {
	return d&DirectionOut != 0
}

func (d Direction) followsIn() bool {
	return d&DirectionIn != 0
}

// Next returns the direction that follows d in the cycle both, out, in.
func (d Direction) Next() Direction {
	return d%3 + 1
}

// Tier identifies one of the three cascading filters.
type Tier int

const (
	TierNodeType Tier = iota
	TierNodeLabel
	TierEdgeLabel
)

var tierNames = map[Tier]string{
	TierNodeType:  "node_type",
	TierNodeLabel: "node_label",
	TierEdgeLabel: "edge_label",
}

func (t Tier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Tier(%d)", int(t))
}

// ParseTier accepts "node_type", "node_label" and "edge_label".
func ParseTier(s string) (Tier, error) {
	for tier, name := range tierNames {
		if s == name {
			return tier, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidTier, s)
}

// SortOrder orders the displayed candidates of a tier.
type SortOrder string

const (
	SortByCount      SortOrder = "count"
	SortAlphabetical SortOrder = "alphabetical"
)

// ParseSortOrder accepts "count" and "alphabetical".
func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(s) {
	case SortByCount, SortAlphabetical:
		return SortOrder(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSortOrder, s)
}
