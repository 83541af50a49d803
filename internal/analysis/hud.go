package analysis

import (
	"fmt"
	"image/color"

	"github.com/fgc-tools/hudscan/pkg/types"
)

// HPReading is the health reading for a single frame. A player's value is nil
// when the bar could not be read confidently.
type HPReading struct {
	P1 *float64
	P2 *float64
}

// SAReading is the special-gauge reading for a single frame, 0.0-3.0 per
// player (integer stock plus fractional fill). Nil when unreadable.
type SAReading struct {
	P1 *float64
	P2 *float64
}

// ODValue is a drive-gauge reading. Normal mode carries the segment count
// with fractional fill (0.0-6.0); burnout mode carries the recovery ratio
// (0.0-1.0). The two modes are mutually exclusive.
type ODValue struct {
	Value   float64
	Burnout bool
}

// NormalOD returns a normal-mode drive reading.
func NormalOD(v float64) ODValue {
	return ODValue{Value: v}
}

// BurnoutOD returns a burnout-mode recovery reading.
func BurnoutOD(v float64) ODValue {
	return ODValue{Value: v, Burnout: true}
}

func (v ODValue) String() string {
	if v.Burnout {
		return fmt.Sprintf("Burnout(%.2f)", v.Value)
	}
	return fmt.Sprintf("Normal(%.2f)", v.Value)
}

// ODReading is the drive-gauge reading for a single frame. Nil when
// unreadable.
type ODReading struct {
	P1 *ODValue
	P2 *ODValue
}

// DebugRegion is a rectangle the debug renderer outlines on overlay frames.
type DebugRegion struct {
	Rect  PixelRect
	Color color.RGBA
}

// HUD is the contract every gauge layout implements. A layout is a
// self-contained value holding its rescaled geometry; supporting a new HUD
// skin means adding a new implementation, never a new code path in callers.
type HUD interface {
	// Name identifies the layout (used for selection and logging).
	Name() string

	// DetectHUD reports whether the layout's gauges are visible in the
	// frame. Non-gameplay footage returns false, never an error.
	DetectHUD(frame *types.Frame) bool

	// AnalyzeHP reads both players' health ratios.
	AnalyzeHP(frame *types.Frame) HPReading

	// AnalyzeSA reads both players' special-gauge values.
	AnalyzeSA(frame *types.Frame) SAReading

	// AnalyzeOD reads both players' drive-gauge values.
	AnalyzeOD(frame *types.Frame) ODReading

	// DebugRegions returns the overlay rectangles for debug rendering, in
	// current-resolution pixel coordinates.
	DebugRegions() []DebugRegion
}
