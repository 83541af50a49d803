package standard

import (
	"math"
	"testing"

	"github.com/fgc-tools/hudscan/internal/analysis"
	"github.com/fgc-tools/hudscan/pkg/types"
)

// paintSegFull draws a complete segment: solid interior with the white
// outline on all four edges.
func paintSegFull(f *types.Frame, seg analysis.Scanline, fill testColor) {
	for i := 0; i <= seg.Width(); i++ {
		x := seg.XAt(i)
		for y := seg.Y - odCeilOffsetY; y <= seg.Y+odFloorOffsetY; y++ {
			setPx(f, x, y, fill)
		}
		setPx(f, x, seg.Y-odCeilOffsetY, cWhite)
		setPx(f, x, seg.Y+odFloorOffsetY, cWhite)
	}
	setPx(f, seg.XAt(0), seg.Y, cWhite)
	setPx(f, seg.XAt(seg.Width()), seg.Y, cWhite)
}

// paintSegEmpty floods the segment area with the translucent drained blue.
func paintSegEmpty(f *types.Frame, seg analysis.Scanline) {
	for i := 0; i <= seg.Width(); i++ {
		x := seg.XAt(i)
		for y := seg.Y - odCeilOffsetY; y <= seg.Y+odFloorOffsetY; y++ {
			setPx(f, x, y, cDriveEmpty)
		}
	}
}

// paintSegPartial draws remaining fill up to the edge column, the leading
// edge itself, then the drained interior.
func paintSegPartial(f *types.Frame, seg analysis.Scanline, edge int) {
	for i := 0; i < edge; i++ {
		setPx(f, seg.XAt(i), seg.Y, cDriveFill)
	}
	x := seg.XAt(edge)
	setPx(f, x, seg.Y-1, cPartialEdge)
	setPx(f, x, seg.Y, cPartialEdge)
	setPx(f, x, seg.Y+1, cPartialEdge)
	for i := edge + 1; i <= seg.Width(); i++ {
		setPx(f, seg.XAt(i), seg.Y, cPartialBack)
	}
}

func TestAnalyzeODFullGauge(t *testing.T) {
	h := newTestHUD(t)
	f := blankFrame(t)
	for _, seg := range h.p1ODSegs {
		paintSegFull(f, seg, cDriveFill)
	}
	for _, seg := range h.p2ODSegs {
		paintSegFull(f, seg, cDriveFill)
	}

	got := h.AnalyzeOD(f)
	for player, v := range map[string]*analysis.ODValue{"P1": got.P1, "P2": got.P2} {
		if v == nil {
			t.Fatalf("%s = nil, want a reading", player)
		}
		if v.Burnout || v.Value != 6.0 {
			t.Errorf("%s = %s, want Normal(6.00)", player, v)
		}
	}
}

func TestAnalyzeODRefillingOrangeCountsAsFull(t *testing.T) {
	h := newTestHUD(t)
	f := blankFrame(t)
	for _, seg := range h.p1ODSegs {
		paintSegFull(f, seg, hsvColor(30, 0.97, 0.97))
	}

	got := h.AnalyzeOD(f)
	if got.P1 == nil || got.P1.Burnout || got.P1.Value != 6.0 {
		t.Errorf("P1 = %v, want Normal(6.00)", got.P1)
	}
}

func TestAnalyzeODWholeBars(t *testing.T) {
	h := newTestHUD(t)
	f := blankFrame(t)

	// Two full segments, four drained.
	for i, seg := range h.p1ODSegs {
		if i < 2 {
			paintSegFull(f, seg, cDriveFill)
		} else {
			paintSegEmpty(f, seg)
		}
	}

	got := h.AnalyzeOD(f)
	if got.P1 == nil || got.P1.Burnout || got.P1.Value != 2.0 {
		t.Errorf("P1 = %v, want Normal(2.00)", got.P1)
	}
}

func TestAnalyzeODEmptyGauge(t *testing.T) {
	h := newTestHUD(t)
	f := blankFrame(t)
	for _, seg := range h.p1ODSegs {
		paintSegEmpty(f, seg)
	}

	got := h.AnalyzeOD(f)
	if got.P1 == nil || got.P1.Burnout || got.P1.Value != 0.0 {
		t.Errorf("P1 = %v, want Normal(0.00)", got.P1)
	}
}

func TestAnalyzeODPartialSegment(t *testing.T) {
	h := newTestHUD(t)
	f := blankFrame(t)

	const edge = 26
	for i, seg := range h.p1ODSegs {
		switch {
		case i < 2:
			paintSegFull(f, seg, cDriveFill)
		case i == 2:
			paintSegPartial(f, seg, edge)
		default:
			paintSegEmpty(f, seg)
		}
	}

	got := h.AnalyzeOD(f)
	if got.P1 == nil || got.P1.Burnout {
		t.Fatalf("P1 = %v, want a normal reading", got.P1)
	}
	want := 2.0 + float64(edge)/float64(odSegWidth)
	if math.Abs(got.P1.Value-want) > 1e-9 {
		t.Errorf("P1 = %f, want %f", got.P1.Value, want)
	}
}

func TestAnalyzeODOccluded(t *testing.T) {
	h := newTestHUD(t)
	f := blankFrame(t)

	got := h.AnalyzeOD(f)
	if got.P1 != nil {
		t.Errorf("P1 = %s, want nil on an occluded gauge", *got.P1)
	}
	if got.P2 != nil {
		t.Errorf("P2 = %s, want nil on an occluded gauge", *got.P2)
	}
}

func TestAnalyzeODBurnoutRecovery(t *testing.T) {
	h := newTestHUD(t)
	f := blankFrame(t)
	width := h.p1OD.Width()

	// Greyscale gauge: recovered white ahead of the boundary, dark behind.
	const boundary = 131
	paintLine(f, h.p1OD, 0, boundary-1, cBurnoutWhite)
	paintLine(f, h.p1OD, boundary, width, cBurnoutGrey)

	got := h.AnalyzeOD(f)
	if got.P1 == nil || !got.P1.Burnout {
		t.Fatalf("P1 = %v, want a burnout reading", got.P1)
	}
	want := float64(boundary) / float64(width)
	if math.Abs(got.P1.Value-want) > 1e-9 {
		t.Errorf("P1 = %f, want %f", got.P1.Value, want)
	}
}

func TestAnalyzeODBurnoutStart(t *testing.T) {
	h := newTestHUD(t)
	f := blankFrame(t)

	// All dark: burnout just began, nothing recovered yet.
	paintLine(f, h.p1OD, 0, h.p1OD.Width(), cBurnoutGrey)

	got := h.AnalyzeOD(f)
	if got.P1 == nil || !got.P1.Burnout || got.P1.Value != 0.0 {
		t.Errorf("P1 = %v, want Burnout(0.00)", got.P1)
	}
}
