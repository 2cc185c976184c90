package graph

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// goldenAngle spreads consecutive hues around the colour wheel.
const goldenAngle = 137.5

// Palette assigns a stable HSL colour to every category key in the order
// the keys are first requested.
type Palette struct {
	colors map[string]string
}

func NewPalette() *Palette {
	return &Palette{colors: make(map[string]string)}
}

// Color returns the colour of key, assigning the next hue on first use.
func (p *Palette) Color(key string) string {
	if c, ok := p.colors[key]; ok {
		return c
	}
	hue := math.Mod(float64(len(p.colors))*goldenAngle, 360)
	c := fmt.Sprintf("hsl(%s, 70%%, 50%%)", strconv.FormatFloat(hue, 'f', -1, 64))
	p.colors[key] = c
	return c
}

// NodeColor colours a node by its full category list.
func (p *Palette) NodeColor(types []string) string {
	return p.Color(strings.Join(types, ","))
}

// Colors returns a copy of every assigned colour.
func (p *Palette) Colors() map[string]string {
	out := make(map[string]string, len(p.colors))
	for k, v := range p.colors {
		out[k] = v
	}
	return out
}
