package standard

import (
	"math"
	"testing"

	"github.com/fgc-tools/hudscan/pkg/types"
)

// paintHealthBar draws a bar with fillSteps steps of fill color, the moving
// cap, then damage flash and backdrop out to the end of the line.
func paintHealthBar(f *types.Frame, h *HUD, player int, fillSteps int, fill testColor) {
	line := h.p1HP
	if player == 2 {
		line = h.p2HP
	}
	width := line.Width()

	paintLine(f, line, 0, fillSteps-1, fill)
	capEnd := fillSteps + 2
	if capEnd > width {
		capEnd = width
	}
	paintLine(f, line, fillSteps, capEnd, cWhite)
	if capEnd+1 <= width {
		paintLine(f, line, capEnd+1, capEnd+3, cDamage)
	}
	if capEnd+4 <= width {
		paintLine(f, line, capEnd+4, width, cHPBackdrop)
	}
}

func TestAnalyzeHPFull(t *testing.T) {
	h := newTestHUD(t)
	f := blankFrame(t)
	paintLine(f, h.p1HP, 0, h.p1HP.Width(), cYellowFill)
	paintLine(f, h.p2HP, 0, h.p2HP.Width(), cYellowFill)

	got := h.AnalyzeHP(f)
	if got.P1 == nil || *got.P1 != 1.0 {
		t.Errorf("P1 = %v, want 1.0", got.P1)
	}
	if got.P2 == nil || *got.P2 != 1.0 {
		t.Errorf("P2 = %v, want 1.0", got.P2)
	}
}

func TestAnalyzeHPPartial(t *testing.T) {
	h := newTestHUD(t)
	f := blankFrame(t)
	width := h.p1HP.Width()

	paintHealthBar(f, h, 1, 346, cYellowFill)
	paintHealthBar(f, h, 2, 150, cYellowFill)

	got := h.AnalyzeHP(f)
	if got.P1 == nil {
		t.Fatal("P1 = nil, want a reading")
	}
	if want := 346.0 / float64(width); math.Abs(*got.P1-want) > 1e-9 {
		t.Errorf("P1 = %f, want %f", *got.P1, want)
	}
	if got.P2 == nil {
		t.Fatal("P2 = nil, want a reading")
	}
	if want := 150.0 / float64(width); math.Abs(*got.P2-want) > 1e-9 {
		t.Errorf("P2 = %f, want %f", *got.P2, want)
	}
}

func TestAnalyzeHPCapBeforeProvisionalDamage(t *testing.T) {
	h := newTestHUD(t)
	f := blankFrame(t)
	line := h.p1HP

	paintLine(f, line, 0, 199, cYellowFill)
	paintLine(f, line, 200, 201, cWhite)
	paintLine(f, line, 202, line.Width(), cProvisional)

	got := h.AnalyzeHP(f)
	if got.P1 == nil {
		t.Fatal("P1 = nil, want a reading")
	}
	if want := 200.0 / float64(line.Width()); math.Abs(*got.P1-want) > 1e-9 {
		t.Errorf("P1 = %f, want %f", *got.P1, want)
	}
}

func TestAnalyzeHPTintedCapOverOrangeFill(t *testing.T) {
	h := newTestHUD(t)
	f := blankFrame(t)
	line := h.p1HP

	paintLine(f, line, 0, 101, cOrangeFill)
	paintLine(f, line, 102, 102, cTintedCap)
	paintLine(f, line, 103, line.Width(), cHPBackdrop)

	got := h.AnalyzeHP(f)
	if got.P1 == nil {
		t.Fatal("P1 = nil, want a reading")
	}
	if want := 102.0 / float64(line.Width()); math.Abs(*got.P1-want) > 1e-9 {
		t.Errorf("P1 = %f, want %f", *got.P1, want)
	}
}

func TestAnalyzeHPTintedCapRejectedOverYellowFill(t *testing.T) {
	h := newTestHUD(t)
	f := blankFrame(t)
	line := h.p1HP

	// Same layout but yellow-dominant fill: the warm cap range is off and
	// the tinted pixel reads as an occlusion.
	paintLine(f, line, 0, 101, cYellowFill)
	paintLine(f, line, 102, 102, cTintedCap)
	paintLine(f, line, 103, line.Width(), cHPBackdrop)

	if got := h.AnalyzeHP(f); got.P1 != nil {
		t.Errorf("P1 = %f, want nil", *got.P1)
	}
}

func TestAnalyzeHPDepleted(t *testing.T) {
	h := newTestHUD(t)
	f := blankFrame(t)
	line := h.p1HP
	width := line.Width()

	paintLine(f, line, 0, width, cHPBackdrop)
	midX := line.XAt(width / 2)
	for dy := -2; dy <= 2; dy++ {
		setPx(f, midX, line.Y+dy, cHPBackdrop)
	}

	got := h.AnalyzeHP(f)
	if got.P1 == nil || *got.P1 != 0.0 {
		t.Errorf("P1 = %v, want 0.0", got.P1)
	}
}

func TestAnalyzeHPDepletedNeedsVerticalAgreement(t *testing.T) {
	h := newTestHUD(t)
	f := blankFrame(t)
	line := h.p1HP

	// Backdrop along the scanline only: a backdrop-colored sprite crossing
	// the bar, not a KO.
	paintLine(f, line, 0, line.Width(), cHPBackdrop)

	if got := h.AnalyzeHP(f); got.P1 != nil {
		t.Errorf("P1 = %f, want nil", *got.P1)
	}
}

func TestAnalyzeHPOccluded(t *testing.T) {
	h := newTestHUD(t)
	f := blankFrame(t)

	got := h.AnalyzeHP(f)
	if got.P1 != nil {
		t.Errorf("P1 = %f, want nil on an occluded bar", *got.P1)
	}
	if got.P2 != nil {
		t.Errorf("P2 = %f, want nil on an occluded bar", *got.P2)
	}
}

func TestAnalyzeHPFillWithoutCap(t *testing.T) {
	h := newTestHUD(t)
	f := blankFrame(t)
	line := h.p1HP

	// Fill runs straight into damage flash with no cap in between.
	paintLine(f, line, 0, 99, cYellowFill)
	paintLine(f, line, 100, line.Width(), cDamage)

	if got := h.AnalyzeHP(f); got.P1 != nil {
		t.Errorf("P1 = %f, want nil without a cap", *got.P1)
	}
}

func TestAnalyzeHPGenericStrategy(t *testing.T) {
	h := newTestHUD(t)
	h.HPStrategy = HPGenericScan
	f := blankFrame(t)
	line := h.p1HP
	width := line.Width()

	paintLine(f, line, 0, 345, cYellowFill)
	paintLine(f, line, 346, 348, cWhite)
	paintLine(f, line, 349, width, cHPBackdrop)

	got := h.AnalyzeHP(f)
	if got.P1 == nil {
		t.Fatal("P1 = nil, want a reading")
	}
	// The generic scan counts the cap as fill, so the boundary lands one
	// step past it.
	if want := 349.0 / float64(width); math.Abs(*got.P1-want) > 1e-9 {
		t.Errorf("P1 = %f, want %f", *got.P1, want)
	}
}

func TestAnalyzeHPGenericStrategyReadsBackdropAsEmpty(t *testing.T) {
	h := newTestHUD(t)
	h.HPStrategy = HPGenericScan
	f := blankFrame(t)
	line := h.p1HP

	// The generic scan accepts an all-backdrop line as an empty bar without
	// the vertical confirmation the cap walk performs.
	paintLine(f, line, 0, line.Width(), cHPBackdrop)

	got := h.AnalyzeHP(f)
	if got.P1 == nil || *got.P1 != 0.0 {
		t.Errorf("P1 = %v, want 0.0 from the generic scan", got.P1)
	}
}
