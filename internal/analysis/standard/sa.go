package standard

import (
	"github.com/fgc-tools/hudscan/internal/analysis"
	"github.com/fgc-tools/hudscan/internal/logger"
	"github.com/fgc-tools/hudscan/pkg/types"
)

// Special gauge geometry at the 1080p reference. The gauge fills toward
// center screen; the stock digit sits in its own box at the screen corner.
var (
	p1SAGauge    = analysis.Scanline{XStart: 188, XEnd: 413, Y: 1002}
	p2SAGauge    = p1SAGauge.MirrorX(refWidth)
	p1SADigitBox = analysis.PixelRect{X: 120, Y: 960, W: 40, H: 60}
	p2SADigitBox = p1SADigitBox.MirrorX(refWidth)
)

// probe is a sample point inside the stock digit's box. Probe k lands on
// glyph ink only while digit k is displayed; the points were calibrated from
// labeled captures of all four digits.
type probe struct {
	x, y int
}

var saDigitProbes = [4]probe{
	{x: 129, y: 989},
	{x: 138, y: 985},
	{x: 144, y: 961},
	{x: 133, y: 995},
}

// readSpecialValue combines the stock digit with the gauge fill into a
// single value on [0, 3]. Stocks cap at three, at which point the fill bar
// is no longer drawn.
func readSpecialValue(frame *types.Frame, probes [4]probe, gauge analysis.Scanline) *float64 {
	digit := readStockDigit(frame, probes)
	if digit == nil {
		logger.Warn("SA", "stock digit unreadable")
		return nil
	}
	if *digit >= 3 {
		return ratioPtr(3.0)
	}

	fill, ok := analysis.FindBarBoundary(frame, gauge, classifySpecialPixel)
	if !ok {
		logger.Warn("SA", "gauge fill unreadable with stock digit %d", *digit)
		return nil
	}
	if fill == 1.0 {
		// A gauge that completes rolls into the next stock within a frame,
		// so a full bar under a low digit is a misread of one or the other.
		logger.Warn("SA", "full gauge under stock digit %d, discarding", *digit)
		return nil
	}
	return ratioPtr(float64(*digit) + fill)
}

// readStockDigit identifies which of 0-3 the stock counter shows, or nil if
// no single digit can be confirmed.
func readStockDigit(frame *types.Frame, probes [4]probe) *int {
	// At three stocks the digit face switches to flame art, which the
	// regular ink checks below do not match. The flame covers most of the
	// box, so two probe hits are enough.
	flame := 0
	for _, p := range probes {
		if isCAText(hsvAt(frame, p.x, p.y)) {
			flame++
		}
	}
	if flame >= 2 {
		d := 3
		return &d
	}

	// Probe positions are calibrated to light for exactly one digit each;
	// the first lit probe in digit order wins.
	for d := range probes {
		if probeOn(frame, probes[d]) {
			v := d
			return &v
		}
	}
	return nil
}

// probeOn takes a majority vote over the probe's 3x3 neighborhood so a
// single pixel of compression noise cannot flip a read.
func probeOn(frame *types.Frame, p probe) bool {
	fg, total := 0, 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			x, y := p.x+dx, p.y+dy
			if !frame.InBounds(x, y) {
				continue
			}
			total++
			hsv := hsvAt(frame, x, y)
			if isDigitInk(hsv) || isDigitOutline(hsv) {
				fg++
			}
		}
	}
	return fg > total/2
}

// classifySpecialPixel feeds the boundary scanner: filled gauge ahead of the
// boundary, drained backdrop behind it.
func classifySpecialPixel(r, g, b uint8) analysis.BarSegment {
	hsv := analysis.RGBToHSV(r, g, b)
	switch {
	case isSpecialFill(hsv):
		return analysis.BarForeground
	case isSpecialEmpty(hsv):
		return analysis.BarBackground
	default:
		return analysis.BarUnknown
	}
}

// Filled portion: magenta normally, shifting toward cyan during super flash.
func isSpecialFill(hsv analysis.HSV) bool {
	return (hsv.H >= 320 || (hsv.H >= 175 && hsv.H <= 210)) && hsv.S >= 0.15 && hsv.V >= 0.80
}

// Drained portion, same dark blue family as the health backdrop.
func isSpecialEmpty(hsv analysis.HSV) bool {
	return hsv.H > 215 && hsv.H < 222 && hsv.S > 0.95 && hsv.V >= 0.60
}

// Pulsing recolor of the filled gauge while the max-stock art is up.
func isSpecialCA(hsv analysis.HSV) bool {
	return hsv.H >= 300 && hsv.H <= 345 && hsv.S >= 0.15 && hsv.V >= 0.85
}

// isSAGaugePixel is the coarse family check used by HUD detection.
func isSAGaugePixel(hsv analysis.HSV) bool {
	return isSpecialFill(hsv) || isSpecialEmpty(hsv) || isSpecialCA(hsv)
}

// Blue ink of the stock digit glyph.
func isDigitInk(hsv analysis.HSV) bool {
	return hsv.H >= 200 && hsv.H <= 230 && hsv.S >= 0.7 && hsv.V >= 0.7
}

// Green-yellow outline around the glyph ink.
func isDigitOutline(hsv analysis.HSV) bool {
	return hsv.H >= 55 && hsv.H <= 75 && hsv.S >= 0.25 && hsv.V >= 0.75
}

// Orange flame art replacing the digit at three stocks.
func isCAText(hsv analysis.HSV) bool {
	return hsv.H >= 25 && hsv.H <= 50 && hsv.S >= 0.5 && hsv.V >= 0.6
}
