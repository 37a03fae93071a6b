package model

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Color is an RGBA color with every channel in [0,1]. A nil alpha leaves
// the default opacity to the executor.
type Color struct {
	R float64  `json:"r"           yaml:"r"`
	G float64  `json:"g"           yaml:"g"`
	B float64  `json:"b"           yaml:"b"`
	A *float64 `json:"a,omitempty" yaml:"a,omitempty"`
}

// ParseColor converts a CSS color name ("red", "cornflowerblue") or a hex
// string ("#ff0000", "#ff000080") into a normalized Color.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		return parseHexColor(s)
	}
	c, ok := colornames.Map[strings.ToLower(s)]
	if !ok {
		return Color{}, fmt.Errorf("unknown color %q: use a CSS color name, #rrggbb, or an {r,g,b,a} object", s)
	}
	alpha := float64(c.A) / 255
	return Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
		A: &alpha,
	}, nil
}

func parseHexColor(s string) (Color, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return Color{}, fmt.Errorf("invalid hex color %q: expected #rrggbb or #rrggbbaa", s)
	}
	var ch [4]float64
	ch[3] = 1
	for i := 0; i < len(hex)/2; i++ {
		v, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("invalid hex color %q: %w", s, err)
		}
		ch[i] = float64(v) / 255
	}
	alpha := ch[3]
	return Color{R: ch[0], G: ch[1], B: ch[2], A: &alpha}, nil
}

// toMap is the map form the decoder expects for a Color.
func (c Color) toMap() map[string]any {
	m := map[string]any{"r": c.R, "g": c.G, "b": c.B}
	if c.A != nil {
		m["a"] = *c.A
	}
	return m
}
