package analysis

import (
	"github.com/fgc-tools/hudscan/internal/logger"
	"github.com/fgc-tools/hudscan/pkg/types"
)

// BarSegment is the coarse classification alphabet the boundary scanner
// consumes: bar fill, bar background, or a pixel hidden by an effect.
type BarSegment int

const (
	BarForeground BarSegment = iota
	BarBackground
	BarUnknown
)

func (s BarSegment) String() string {
	switch s {
	case BarForeground:
		return "Foreground"
	case BarBackground:
		return "Background"
	case BarUnknown:
		return "Unknown"
	}
	return "Invalid"
}

// HPSegment is the fine-grained classification of a health bar pixel.
type HPSegment int

const (
	// Gauges can be hidden by hit sparks and supers. Unknown pixels are
	// skipped rather than guessed at.
	HPUnknown HPSegment = iota
	HPHealthy
	HPBorder
	HPDamage            // recent damage flash
	HPProvisionalDamage // gray provisional chunk that may still recover
	HPBackground
)

// Coarse collapses the fine health classification to the scanner alphabet.
func (s HPSegment) Coarse() BarSegment {
	switch s {
	case HPHealthy, HPBorder:
		return BarForeground
	case HPDamage, HPProvisionalDamage, HPBackground:
		return BarBackground
	}
	return BarUnknown
}

func (s HPSegment) String() string {
	switch s {
	case HPHealthy:
		return "Healthy"
	case HPBorder:
		return "Border"
	case HPDamage:
		return "Damage"
	case HPProvisionalDamage:
		return "ProvisionalDamage"
	case HPBackground:
		return "Background"
	case HPUnknown:
		return "Unknown"
	}
	return "Invalid"
}

// PixelClassifier maps a raw pixel to the scanner alphabet.
type PixelClassifier func(r, g, b uint8) BarSegment

// FindBarBoundary walks the scanline in its defined direction and returns the
// fractional position where fill transitions to background, or ok=false when
// the transition cannot be located confidently.
//
// The walk trusts the most recent confirmed Foreground sample across occluded
// (Unknown) runs, but never guesses a boundary inside a hidden region that
// never showed Foreground:
//
//   - the first Background pixel directly after a Foreground pixel is the
//     boundary (i / width);
//   - Background after an Unknown run resolves to just past the last confirmed
//     Foreground, or fails if no Foreground was ever seen;
//   - a scan that never hits Background is a full bar if it ends on
//     Foreground, and resolves from the last confirmed Foreground if it ends
//     inside an Unknown run.
func FindBarBoundary(f *types.Frame, line Scanline, classify PixelClassifier) (float64, bool) {
	width := line.Width()

	if logger.DebugEnabled() {
		logger.Debug("Scan", "scanning bar boundary x=[%d, %d] y=%d width=%d",
			line.XStart, line.XEnd, line.Y, width)
	}

	if width == 0 {
		// Degenerate single-pixel line. Full or empty, nothing in between.
		r, g, b := f.RGBAt(line.First(), line.Y)
		switch classify(r, g, b) {
		case BarForeground:
			return 1.0, true
		case BarBackground:
			return 0, true
		}
		return 0, false
	}

	prev := BarForeground
	lastFG := -1

	for i := 0; i <= width; i++ {
		x := line.XAt(i)
		r, g, b := f.RGBAt(x, line.Y)
		seg := classify(r, g, b)

		if logger.DebugEnabled() {
			logger.Debug("Scan", "pixel @%d,%d %s -> %s", x, line.Y, RGBToHSV(r, g, b), seg)
		}

		switch seg {
		case BarForeground:
			lastFG = i
			prev = BarForeground
		case BarBackground:
			if prev == BarForeground {
				return float64(i) / float64(width), true
			}
			// The edge is hidden behind an occluded run. Trust the last
			// confirmed fill sample if there was one.
			if lastFG >= 0 {
				return float64(lastFG+1) / float64(width), true
			}
			logger.Debug("Scan", "boundary hidden by occlusion with no confirmed fill")
			return 0, false
		case BarUnknown:
			prev = BarUnknown
		}
	}

	if prev == BarForeground {
		return 1.0, true
	}
	if lastFG >= 0 {
		return float64(lastFG+1) / float64(width), true
	}
	return 0, false
}
