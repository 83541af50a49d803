// Package standard implements the gauge layout used by the game's default
// 1080p HUD: mirrored health bars at the top, the six-segment drive gauge
// below them, and the special gauge with its stock digit in the bottom
// corners.
package standard

import (
	"fmt"
	"image/color"

	"github.com/fgc-tools/hudscan/internal/analysis"
	"github.com/fgc-tools/hudscan/internal/logger"
	"github.com/fgc-tools/hudscan/pkg/types"
)

// Reference resolution all layout constants are defined at.
const (
	refWidth  = 1920
	refHeight = 1080
)

// Scanline on the special gauge's frame. The frame sits below the action and
// is almost never covered, which makes it the cheapest presence signal.
var saFrameLine = analysis.Scanline{XStart: 208, XEnd: 220, Y: 1027}

// Thickness of the debug overlay line (pixels at target resolution).
const debugLineH = 3

// Number of evenly-spaced sample points per scanline for the coverage
// fallback of HUD detection.
const detectSampleCount = 16

// Minimum fraction of recognized pixels to confirm a gauge family as visible.
const detectThreshold = 0.5

// HPStrategy selects how AnalyzeHP locates the fill boundary.
type HPStrategy int

const (
	// HPBorderScan walks the fill run and confirms the moving border cap.
	// The default; distinguishes a fully depleted bar from an occluded one.
	HPBorderScan HPStrategy = iota
	// HPGenericScan classifies every pixel and feeds the generic boundary
	// scanner. Simpler, but reads an empty bar as unreadable.
	HPGenericScan
)

// HUD reads the standard layout. All geometry is rescaled once at
// construction and immutable afterwards.
type HUD struct {
	// HPStrategy may be set before the first read to switch the health
	// boundary algorithm. The zero value is the canonical border scan.
	HPStrategy HPStrategy

	frameW int
	frameH int

	p1HP analysis.Scanline
	p2HP analysis.Scanline

	p1SA       analysis.Scanline
	p2SA       analysis.Scanline
	p1SAProbes [4]probe
	p2SAProbes [4]probe

	p1OD     analysis.Scanline
	p2OD     analysis.Scanline
	p1ODSegs [6]analysis.Scanline
	p2ODSegs [6]analysis.Scanline

	saFrame analysis.Scanline
}

// New builds the layout for the given frame resolution. The probe points and
// per-pixel segment offsets are tuned at 1920x1080 and do not survive
// rescaling, so any other resolution is rejected.
func New(frameW, frameH int) (*HUD, error) {
	if frameW != refWidth || frameH != refHeight {
		return nil, fmt.Errorf("unsupported resolution %dx%d: standard layout requires %dx%d",
			frameW, frameH, refWidth, refHeight)
	}

	h := &HUD{
		frameW:  frameW,
		frameH:  frameH,
		p1HP:    p1Health.ScaleTo(frameW, frameH, refWidth, refHeight),
		p2HP:    p2Health.ScaleTo(frameW, frameH, refWidth, refHeight),
		p1SA:    p1SAGauge.ScaleTo(frameW, frameH, refWidth, refHeight),
		p2SA:    p2SAGauge.ScaleTo(frameW, frameH, refWidth, refHeight),
		p1OD:    p1ODGauge.ScaleTo(frameW, frameH, refWidth, refHeight),
		p2OD:    p2ODGauge.ScaleTo(frameW, frameH, refWidth, refHeight),
		saFrame: saFrameLine.ScaleTo(frameW, frameH, refWidth, refHeight),
	}

	for i, p := range saDigitProbes {
		h.p1SAProbes[i] = p
		// The digit glyph is not mirrored, only repositioned: translate each
		// probe into the second player's digit box.
		h.p2SAProbes[i] = probe{x: p2SADigitBox.X + (p.x - p1SADigitBox.X), y: p.y}
	}

	h.p1ODSegs = splitODSegments(h.p1OD)
	h.p2ODSegs = splitODSegments(h.p2OD)

	if err := h.validate(); err != nil {
		return nil, err
	}

	logger.Info("HUD", "standard layout initialized for %dx%d", frameW, frameH)
	return h, nil
}

// validate fails fast on geometry that would index outside the frame, so a
// bad constant surfaces here instead of deep inside a scan.
func (h *HUD) validate() error {
	lines := []struct {
		name string
		scan analysis.Scanline
	}{
		{"p1 health", h.p1HP},
		{"p2 health", h.p2HP},
		{"p1 special", h.p1SA},
		{"p2 special", h.p2SA},
		{"p1 drive", h.p1OD},
		{"p2 drive", h.p2OD},
		{"special frame", h.saFrame},
	}
	for _, l := range lines {
		if err := l.scan.Validate(h.frameW, h.frameH); err != nil {
			return fmt.Errorf("%s: %w", l.name, err)
		}
	}

	// Drive segment heuristics read one pixel past the segment end and up to
	// odCeilOffsetY above / odFloorOffsetY below the scanline.
	for _, segs := range [][6]analysis.Scanline{h.p1ODSegs, h.p2ODSegs} {
		for i, seg := range segs {
			if err := seg.Validate(h.frameW, h.frameH); err != nil {
				return fmt.Errorf("drive segment %d: %w", i, err)
			}
			next := seg.XAt(seg.Width() + 1)
			if next < 0 || next >= h.frameW {
				return fmt.Errorf("drive segment %d overshoot x=%d outside frame", i, next)
			}
			if seg.Y-odCeilOffsetY < 0 || seg.Y+odFloorOffsetY >= h.frameH {
				return fmt.Errorf("drive segment %d rows [%d, %d] outside frame", i,
					seg.Y-odCeilOffsetY, seg.Y+odFloorOffsetY)
			}
		}
	}

	for _, p := range append(h.p1SAProbes[:], h.p2SAProbes[:]...) {
		if p.x < 0 || p.x >= h.frameW || p.y < 0 || p.y >= h.frameH {
			return fmt.Errorf("digit probe (%d, %d) outside %dx%d frame", p.x, p.y, h.frameW, h.frameH)
		}
	}

	return nil
}

// Name implements analysis.HUD.
func (h *HUD) Name() string {
	return "standard"
}

// DetectHUD checks the special gauge's frame pixels first; they are rarely
// covered. If any frame pixel is off-color (a sprite can clip the very corner
// of the screen), fall back to sampled coverage of the gauge scanlines.
func (h *HUD) DetectHUD(frame *types.Frame) bool {
	if h.detectByFrameLine(frame) {
		return true
	}
	return h.detectByCoverage(frame)
}

func (h *HUD) detectByFrameLine(frame *types.Frame) bool {
	for i := 0; i <= h.saFrame.Width(); i++ {
		x := h.saFrame.XAt(i)
		r, g, b := frame.RGBAt(x, h.saFrame.Y)
		hsv := analysis.RGBToHSV(r, g, b)
		if logger.DebugEnabled() {
			logger.Debug("HUD", "SA frame check @%d: %s", x, hsv)
		}
		if !isSAFrame(hsv) && !isCAFrame(hsv) {
			return false
		}
	}
	return true
}

// detectByCoverage samples each gauge scanline at evenly spaced points with a
// coarse "any recognized state" classifier. Either gauge family reaching the
// coverage threshold across both players confirms the HUD.
func (h *HUD) detectByCoverage(frame *types.Frame) bool {
	healthHits := countMatchingPixels(frame, h.p1HP, isHealthBarPixel) +
		countMatchingPixels(frame, h.p2HP, isHealthBarPixel)
	specialHits := countMatchingPixels(frame, h.p1SA, isSAGaugePixel) +
		countMatchingPixels(frame, h.p2SA, isSAGaugePixel)

	total := 2 * detectSampleCount
	health := float64(healthHits) / float64(total)
	special := float64(specialHits) / float64(total)

	logger.Debug("HUD", "coverage fallback: health=%.2f special=%.2f", health, special)
	return health >= detectThreshold || special >= detectThreshold
}

// The gauge frame renders blue normally and shifts cyan while a player's
// super flash recolors the HUD.
func isSAFrame(hsv analysis.HSV) bool {
	return hsv.H > 210 && hsv.H < 230 && hsv.S > 0.9 && hsv.V > 0.9
}

func isCAFrame(hsv analysis.HSV) bool {
	return hsv.H > 190 && hsv.H < 210 && hsv.S > 0.9 && hsv.V > 0.9
}

// countMatchingPixels samples evenly-spaced pixels along a scanline and
// counts how many pass the classifier.
func countMatchingPixels(frame *types.Frame, scan analysis.Scanline, classifier func(analysis.HSV) bool) int {
	width := scan.Width()

	count := 0
	for i := 0; i < detectSampleCount; i++ {
		t := float64(i) / float64(detectSampleCount-1)
		offset := int(t * float64(width))
		x := scan.XAt(offset)
		r, g, b := frame.RGBAt(x, scan.Y)
		if classifier(analysis.RGBToHSV(r, g, b)) {
			count++
		}
	}
	return count
}

// AnalyzeHP implements analysis.HUD.
func (h *HUD) AnalyzeHP(frame *types.Frame) analysis.HPReading {
	var p1, p2 *float64
	switch h.HPStrategy {
	case HPGenericScan:
		p1 = analyzeHealthGeneric(frame, h.p1HP)
		p2 = analyzeHealthGeneric(frame, h.p2HP)
	default:
		p1 = analyzeHealth(frame, h.p1HP)
		p2 = analyzeHealth(frame, h.p2HP)
	}

	logger.Debug("HP", "frame %d reading p1=%s p2=%s", frame.Index, fmtReading(p1), fmtReading(p2))
	return analysis.HPReading{P1: p1, P2: p2}
}

// AnalyzeSA implements analysis.HUD.
func (h *HUD) AnalyzeSA(frame *types.Frame) analysis.SAReading {
	p1 := readSpecialValue(frame, h.p1SAProbes, h.p1SA)
	p2 := readSpecialValue(frame, h.p2SAProbes, h.p2SA)

	logger.Debug("SA", "frame %d reading p1=%s p2=%s", frame.Index, fmtReading(p1), fmtReading(p2))
	return analysis.SAReading{P1: p1, P2: p2}
}

// AnalyzeOD implements analysis.HUD.
func (h *HUD) AnalyzeOD(frame *types.Frame) analysis.ODReading {
	p1 := readDriveValue(frame, h.p1OD, &h.p1ODSegs)
	p2 := readDriveValue(frame, h.p2OD, &h.p2ODSegs)

	logger.Debug("OD", "frame %d reading p1=%s p2=%s", frame.Index, fmtODReading(p1), fmtODReading(p2))
	return analysis.ODReading{P1: p1, P2: p2}
}

// DebugRegions implements analysis.HUD.
func (h *HUD) DebugRegions() []analysis.DebugRegion {
	return []analysis.DebugRegion{
		{Rect: scanlineToRect(h.p1HP), Color: rgba(0, 255, 0)},
		{Rect: scanlineToRect(h.p2HP), Color: rgba(0, 100, 255)},
		{Rect: scanlineToRect(h.p1SA), Color: rgba(255, 255, 0)},
		{Rect: scanlineToRect(h.p2SA), Color: rgba(255, 255, 0)},
		{Rect: scanlineToRect(h.p1OD), Color: rgba(0, 255, 128)},
		{Rect: scanlineToRect(h.p2OD), Color: rgba(0, 255, 128)},
	}
}

func scanlineToRect(scan analysis.Scanline) analysis.PixelRect {
	x := scan.XStart
	if scan.XEnd < x {
		x = scan.XEnd
	}
	return analysis.PixelRect{
		X: x,
		Y: scan.Y - debugLineH/2,
		W: scan.Width() + 1,
		H: debugLineH,
	}
}

func rgba(r, g, b uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

func hsvAt(frame *types.Frame, x, y int) analysis.HSV {
	return analysis.RGBToHSV(frame.RGBAt(x, y))
}

func ratioPtr(v float64) *float64 {
	return &v
}

func fmtReading(v *float64) string {
	if v == nil {
		return "none"
	}
	return fmt.Sprintf("%.3f", *v)
}

func fmtODReading(v *analysis.ODValue) string {
	if v == nil {
		return "none"
	}
	return v.String()
}
