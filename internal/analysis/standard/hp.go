package standard

import (
	"github.com/fgc-tools/hudscan/internal/analysis"
	"github.com/fgc-tools/hudscan/pkg/types"
)

// Health bars are read from the full (center-screen) end outward, at the
// 1080p reference resolution. The second player's bar is an exact mirror.
var (
	p1Health = analysis.Scanline{XStart: 883, XEnd: 190, Y: 80}
	p2Health = p1Health.MirrorX(refWidth)
)

const (
	// Pixels under the bar's end cap decoration, skipped before the walk.
	hpEdgeInset = 2
	// Widest the moving cap renders at 1080p.
	hpCapMaxRun = 4
	// Background samples needed to call a bar fully depleted.
	hpDepletedMinBG = 10
)

// analyzeHealth walks the fill run from the full end of the bar and locates
// the white cap separating fill from the depleted side. Finding the cap (or
// an all-background line) is what lets a zeroed bar be told apart from one
// hidden behind a cinematic.
func analyzeHealth(frame *types.Frame, scan analysis.Scanline) *float64 {
	width := scan.Width()
	if width == 0 {
		return nil
	}

	yellow, orange := 0, 0
	i := hpEdgeInset
	for ; i <= width; i++ {
		hsv := hsvAt(frame, scan.XAt(i), scan.Y)
		if isHealthYellow(hsv) {
			yellow++
		} else if isHealthOrange(hsv) {
			orange++
		} else {
			break
		}
	}

	if i > width {
		return ratioPtr(1.0)
	}

	if yellow+orange > 0 {
		return confirmHealthCap(frame, scan, i, yellow >= orange)
	}
	return confirmHealthDepleted(frame, scan)
}

// confirmHealthCap expects the moving cap at capStart: a short bright run
// followed by a depleted-side pixel. Anything else means the bar is occluded.
func confirmHealthCap(frame *types.Frame, scan analysis.Scanline, capStart int, yellowDominant bool) *float64 {
	width := scan.Width()

	i := capStart
	capLen := 0
	for ; i <= width && capLen < hpCapMaxRun; i++ {
		if !isHealthCap(hsvAt(frame, scan.XAt(i), scan.Y), yellowDominant) {
			break
		}
		capLen++
	}
	if capLen == 0 {
		return nil
	}
	if i > width {
		// Cap rides the very end of the bar.
		return ratioPtr(float64(capStart) / float64(width))
	}

	switch classifyHealthPixel(hsvAt(frame, scan.XAt(i), scan.Y)) {
	case analysis.HPDamage, analysis.HPProvisionalDamage, analysis.HPBackground:
		return ratioPtr(float64(capStart) / float64(width))
	}
	return nil
}

// confirmHealthDepleted decides whether a line with no fill run is a zeroed
// bar or a covered one. The line must be overwhelmingly background starting
// right at the full end, and a short vertical run at mid-bar must agree so a
// background-colored sprite crossing just the scanline cannot fake a KO.
func confirmHealthDepleted(frame *types.Frame, scan analysis.Scanline) *float64 {
	width := scan.Width()

	bgCount := 0
	firstBG := -1
	for i := hpEdgeInset; i <= width; i++ {
		if classifyHealthPixel(hsvAt(frame, scan.XAt(i), scan.Y)) == analysis.HPBackground {
			if firstBG < 0 {
				firstBG = i
			}
			bgCount++
		}
	}
	if bgCount <= hpDepletedMinBG || firstBG < 0 || firstBG > hpEdgeInset+4 {
		return nil
	}

	midX := scan.XAt(width / 2)
	for dy := -2; dy <= 2; dy++ {
		if !frame.InBounds(midX, scan.Y+dy) {
			return nil
		}
		if classifyHealthPixel(hsvAt(frame, midX, scan.Y+dy)) != analysis.HPBackground {
			return nil
		}
	}
	return ratioPtr(0.0)
}

// analyzeHealthGeneric collapses the health classes into the coarse scheme
// and defers to the shared boundary scanner. Cheaper than the cap walk but
// cannot tell a depleted bar from an occluded one.
func analyzeHealthGeneric(frame *types.Frame, scan analysis.Scanline) *float64 {
	ratio, ok := analysis.FindBarBoundary(frame, scan, func(r, g, b uint8) analysis.BarSegment {
		return classifyHealthPixel(analysis.RGBToHSV(r, g, b)).Coarse()
	})
	if !ok {
		return nil
	}
	return &ratio
}

func classifyHealthPixel(hsv analysis.HSV) analysis.HPSegment {
	switch {
	case isHealthYellow(hsv) || isHealthOrange(hsv):
		return analysis.HPHealthy
	case isHealthBorder(hsv):
		return analysis.HPBorder
	case isHealthDamage(hsv):
		return analysis.HPDamage
	case isHealthProvisional(hsv):
		return analysis.HPProvisionalDamage
	case isHealthBackground(hsv):
		return analysis.HPBackground
	default:
		return analysis.HPUnknown
	}
}

func isHealthYellow(hsv analysis.HSV) bool {
	return hsv.H >= 48 && hsv.H <= 66 && hsv.S >= 0.3 && hsv.V >= 0.9
}

// Low-health fill.
func isHealthOrange(hsv analysis.HSV) bool {
	return hsv.H >= 38 && hsv.H <= 50 && hsv.S >= 0.3 && hsv.V >= 0.9
}

// White border framing the bar and capping the fill.
func isHealthBorder(hsv analysis.HSV) bool {
	return hsv.S < 0.25 && hsv.V > 0.9
}

// Red flash shown while recent damage drains away.
func isHealthDamage(hsv analysis.HSV) bool {
	return hsv.H >= 17 && hsv.H <= 25 && hsv.S >= 0.9 && hsv.V >= 0.9
}

// Grey chip damage that can still be recovered.
func isHealthProvisional(hsv analysis.HSV) bool {
	return hsv.S < 0.1 && hsv.V >= 0.6 && hsv.V <= 0.9
}

// Dark blue of the drained portion.
func isHealthBackground(hsv analysis.HSV) bool {
	return hsv.H > 215 && hsv.H < 222 && hsv.S > 0.95
}

// isHealthCap matches the moving cap at the fill boundary. Over a mostly
// orange (low health) fill the cap picks up a warm tint, so a second range
// is allowed there; over yellow fill only clean white counts, since the
// tinted range would swallow fill pixels.
func isHealthCap(hsv analysis.HSV, yellowDominant bool) bool {
	if isHealthBorder(hsv) {
		return true
	}
	if yellowDominant {
		return false
	}
	return hsv.H >= 20 && hsv.H <= 50 && hsv.S >= 0.25 && hsv.S < 0.8 && hsv.V > 0.85
}

// isHealthBarPixel is the coarse family check used by HUD detection. The
// white border is excluded: any bright scene would match it everywhere.
func isHealthBarPixel(hsv analysis.HSV) bool {
	return isHealthYellow(hsv) || isHealthOrange(hsv) || isHealthBackground(hsv) || isHealthDamage(hsv)
}
