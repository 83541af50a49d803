package standard

import (
	"github.com/fgc-tools/hudscan/internal/analysis"
	"github.com/fgc-tools/hudscan/pkg/types"
)

// Drive gauge geometry at the 1080p reference. Six segments drain from the
// center of the screen outward, so the scanline runs full-end first like the
// health bars.
var (
	p1ODGauge = analysis.Scanline{XStart: 888, XEnd: 561, Y: 122}
	p2ODGauge = p1ODGauge.MirrorX(refWidth)
)

const (
	odSegWidth = 52
	odSegGap   = 3
	// Rows of the segment's top and bottom border relative to the scanline.
	odCeilOffsetY  = 8
	odFloorOffsetY = 7
)

// splitODSegments cuts a gauge scanline into its six segments, walking in
// the scanline's own direction.
func splitODSegments(scan analysis.Scanline) [6]analysis.Scanline {
	var segs [6]analysis.Scanline
	stride := (odSegWidth + odSegGap) * scan.DX()
	for i := range segs {
		start := scan.XStart + i*stride
		segs[i] = analysis.Scanline{
			XStart: start,
			XEnd:   start + odSegWidth*scan.DX(),
			Y:      scan.Y,
		}
	}
	return segs
}

type segState int

const (
	segFull segState = iota
	segEmpty
	segPartial
	segUnknown
)

// readDriveValue reads one player's drive gauge. Burnout repaints the whole
// gauge greyscale and is handled as a separate continuous bar; otherwise the
// segments are classified full-end first and the value is the index where
// the fill stops, plus the fractional fill of a partial segment.
func readDriveValue(frame *types.Frame, scan analysis.Scanline, segs *[6]analysis.Scanline) *analysis.ODValue {
	if isBurnoutGauge(frame, scan) {
		return readBurnoutValue(frame, scan)
	}

	last := segFull
	for i, seg := range segs {
		state, partial := classifyDriveSegment(frame, seg)
		switch state {
		case segEmpty:
			if last == segFull {
				v := analysis.NormalOD(float64(i))
				return &v
			}
		case segPartial:
			v := analysis.NormalOD(float64(i) + partial)
			return &v
		}
		last = state
	}
	if last == segFull {
		v := analysis.NormalOD(6.0)
		return &v
	}
	return nil
}

func classifyDriveSegment(frame *types.Frame, seg analysis.Scanline) (segState, float64) {
	if isSegmentFullFast(frame, seg) {
		return segFull, 0
	}
	if isSegmentEmptyFast(frame, seg) {
		return segEmpty, 0
	}
	if isSegmentFullSlow(frame, seg) {
		return segFull, 0
	}
	if p, ok := findSegmentPartial(frame, seg); ok {
		return segPartial, p
	}
	return segUnknown, 0
}

// isSegmentFullFast spot-checks the segment's outline at its two ends and at
// the center of its top and bottom edges, then the solid interior color at
// the center. One outline miss is tolerated; sparks often clip a corner.
func isSegmentFullFast(frame *types.Frame, seg analysis.Scanline) bool {
	first := seg.First()
	last := seg.Last()
	center := seg.XAt(seg.Width() / 2)

	border := 0
	for _, pt := range [4][2]int{
		{first, seg.Y},
		{last, seg.Y},
		{center, seg.Y - odCeilOffsetY},
		{center, seg.Y + odFloorOffsetY},
	} {
		if isDriveBorder(hsvAt(frame, pt[0], pt[1])) {
			border++
		}
	}
	if border < 3 {
		return false
	}
	return isDriveFill(hsvAt(frame, center, seg.Y))
}

// isSegmentEmptyFast checks the same spots plus the center pixel for the
// translucent blue a drained segment shows everywhere, outline included.
func isSegmentEmptyFast(frame *types.Frame, seg analysis.Scanline) bool {
	first := seg.First()
	last := seg.Last()
	center := seg.XAt(seg.Width() / 2)

	hits := 0
	for _, pt := range [5][2]int{
		{first, seg.Y},
		{last, seg.Y},
		{center, seg.Y - odCeilOffsetY},
		{center, seg.Y + odFloorOffsetY},
		{center, seg.Y},
	} {
		if isDriveEmpty(hsvAt(frame, pt[0], pt[1])) {
			hits++
		}
	}
	return hits >= 4
}

// isSegmentFullSlow walks every column looking for outline above and below
// with fill between. A handful of clean columns is enough; the rest may be
// covered by hit sparks.
func isSegmentFullSlow(frame *types.Frame, seg analysis.Scanline) bool {
	count := 0
	for i := 0; i <= seg.Width(); i++ {
		x := seg.XAt(i)
		if isDriveBorder(hsvAt(frame, x, seg.Y-odCeilOffsetY)) &&
			isDriveBorder(hsvAt(frame, x, seg.Y+odFloorOffsetY)) &&
			isDriveFill(hsvAt(frame, x, seg.Y)) {
			count++
			if count >= 4 {
				return true
			}
		}
	}
	return false
}

// findSegmentPartial locates the fill's leading edge inside a partially
// drained segment: a three-pixel vertical run of edge color followed by the
// drained interior. The follow-up column may step one pixel past the
// segment into the gap.
func findSegmentPartial(frame *types.Frame, seg analysis.Scanline) (float64, bool) {
	width := seg.Width()
	for i := 0; i <= width; i++ {
		x := seg.XAt(i)
		if !isPartialEdge(hsvAt(frame, x, seg.Y)) ||
			!isPartialEdge(hsvAt(frame, x, seg.Y-1)) ||
			!isPartialEdge(hsvAt(frame, x, seg.Y+1)) {
			continue
		}
		next := seg.XAt(i + 1)
		if isPartialHollow(hsvAt(frame, next, seg.Y)) {
			return float64(i) / float64(width), true
		}
	}
	return 0, false
}

// isBurnoutGauge probes five spots spread across the gauge. Burnout swaps
// the whole gauge to greyscale, so saturation above the cutoff at any probe
// means the normal segmented gauge is showing.
func isBurnoutGauge(frame *types.Frame, scan analysis.Scanline) bool {
	width := scan.Width()
	for frac := 1; frac <= 5; frac++ {
		x := scan.XAt(width * frac / 6)
		if hsvAt(frame, x, scan.Y).S > 0.50 {
			return false
		}
	}
	return true
}

// readBurnoutValue reads the recovery bar shown during burnout: recovered
// white ahead of the boundary, dark grey behind it. The value is the
// recovered fraction in [0, 1], not segment counts.
func readBurnoutValue(frame *types.Frame, scan analysis.Scanline) *analysis.ODValue {
	ratio, ok := analysis.FindBarBoundary(frame, scan, classifyBurnoutPixel)
	if !ok {
		v := analysis.BurnoutOD(0.0)
		return &v
	}
	v := analysis.BurnoutOD(ratio)
	return &v
}

func classifyBurnoutPixel(r, g, b uint8) analysis.BarSegment {
	hsv := analysis.RGBToHSV(r, g, b)
	switch {
	case hsv.S < 0.05 && hsv.V > 0.80:
		return analysis.BarForeground
	case hsv.S < 0.15 && hsv.V < 0.50:
		return analysis.BarBackground
	default:
		return analysis.BarUnknown
	}
}

// White outline shared by every filled segment.
func isDriveBorder(hsv analysis.HSV) bool {
	return hsv.S < 0.25 && hsv.V > 0.90
}

// Solid interior of a full segment: green normally, orange while the gauge
// refills after burnout ends.
func isDriveFill(hsv analysis.HSV) bool {
	if hsv.H >= 72 && hsv.H <= 105 && hsv.S >= 0.80 && hsv.V >= 0.85 {
		return true
	}
	return hsv.H >= 25 && hsv.H <= 35 && hsv.S >= 0.95 && hsv.V >= 0.95
}

// Translucent blue of a fully drained segment.
func isDriveEmpty(hsv analysis.HSV) bool {
	return hsv.H > 210 && hsv.H < 230 && hsv.S > 0.90 && hsv.V > 0.6
}

// Leading edge of a partial segment's remaining fill.
func isPartialEdge(hsv analysis.HSV) bool {
	if hsv.H >= 30 && hsv.H <= 60 && hsv.S >= 0.20 && hsv.V >= 0.80 {
		return true
	}
	return hsv.H > 95 && hsv.H < 130 && hsv.S > 0.50 && hsv.V > 0.80
}

// Darkened interior behind the leading edge, in both gauge color schemes.
func isPartialHollow(hsv analysis.HSV) bool {
	if hsv.H > 110 && hsv.H < 195 && hsv.S > 0.95 && hsv.V > 0.30 && hsv.V < 0.45 {
		return true
	}
	if hsv.H > 210 && hsv.H < 320 && hsv.S > 0.15 && hsv.S < 0.65 && hsv.V > 0.30 && hsv.V < 0.60 {
		return true
	}
	return hsv.H > 30 && hsv.H < 60 && hsv.S > 0.30 && hsv.V > 0.30 && hsv.V < 0.55
}
