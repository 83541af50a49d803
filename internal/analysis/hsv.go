package analysis

import (
	"fmt"
	"math"
)

// HSV color. H in [0, 360), S and V in [0, 1].
type HSV struct {
	H float64
	S float64
	V float64
}

// String formats the color the way scan traces print it
func (c HSV) String() string {
	return fmt.Sprintf("[H: %.0f°, S: %.2f, V: %.2f]", c.H, c.S, c.V)
}

// RGBToHSV converts an 8-bit RGB pixel to HSV using the standard
// max/min/delta formulation. Achromatic pixels (delta < 1e-6) report hue 0.
func RGBToHSV(r, g, b uint8) HSV {
	rf := float64(r) / 255.0
	gf := float64(g) / 255.0
	bf := float64(b) / 255.0

	max := math.Max(rf, math.Max(gf, bf))
	min := math.Min(rf, math.Min(gf, bf))
	delta := max - min

	v := max
	s := 0.0
	if max > 0 {
		s = delta / max
	}

	var h float64
	switch {
	case delta < 1e-6:
		h = 0
	case max == rf:
		h = 60 * math.Mod((gf-bf)/delta, 6)
	case max == gf:
		h = 60 * ((bf-rf)/delta + 2)
	default:
		h = 60 * ((rf-gf)/delta + 4)
	}
	if h < 0 {
		h += 360
	}

	return HSV{H: h, S: s, V: v}
}
