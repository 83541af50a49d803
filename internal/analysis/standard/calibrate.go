package standard

import (
	"errors"
	"fmt"

	"github.com/fgc-tools/hudscan/pkg/types"
)

// LabeledFrame pairs a capture with the stock digit it is known to display.
type LabeledFrame struct {
	Frame *types.Frame
	Digit int
}

// ProbeCandidate reports, for one position inside the digit box, which
// labeled digits light the probe there.
type ProbeCandidate struct {
	X, Y int
	// Bit d is set when the probe reads on in a frame labeled with digit d.
	// Pass one representative frame per digit for a clean exclusivity scan.
	FGMask uint8
}

// ScanDigitProbes evaluates every position in the first player's digit box
// against a set of labeled frames. One probe set serves both sides by
// translation, so a position is discarded outright unless the corresponding
// position in the second player's box reads the same in every frame. A
// surviving position is a usable probe for digit d when its mask is exactly
// 1<<d: lit by that digit and no other. This is how the shipped probe points
// were found.
func ScanDigitProbes(frames []LabeledFrame) ([]ProbeCandidate, error) {
	if len(frames) == 0 {
		return nil, errors.New("no labeled frames")
	}
	for _, lf := range frames {
		if lf.Digit < 0 || lf.Digit > 3 {
			return nil, fmt.Errorf("label %d out of digit range 0-3", lf.Digit)
		}
		if lf.Frame == nil {
			return nil, errors.New("labeled frame has no pixel data")
		}
		if lf.Frame.Width < refWidth || lf.Frame.Height < refHeight {
			return nil, fmt.Errorf("labeled frame is %dx%d, calibration needs at least %dx%d",
				lf.Frame.Width, lf.Frame.Height, refWidth, refHeight)
		}
	}

	box := p1SADigitBox
	out := make([]ProbeCandidate, 0, box.W*box.H)
	for y := box.Y; y < box.Y+box.H; y++ {
		for x := box.X; x < box.X+box.W; x++ {
			p2x := p2SADigitBox.X + (x - p1SADigitBox.X)
			var mask uint8
			agree := true
			for _, lf := range frames {
				p1fg := probeOn(lf.Frame, probe{x: x, y: y})
				if p1fg != probeOn(lf.Frame, probe{x: p2x, y: y}) {
					agree = false
					break
				}
				if p1fg {
					mask |= 1 << uint(lf.Digit)
				}
			}
			if !agree {
				continue
			}
			out = append(out, ProbeCandidate{X: x, Y: y, FGMask: mask})
		}
	}
	return out, nil
}

// ExclusiveProbes groups candidates by the single digit that lights them.
// Candidates lit by no digit or by several are dropped.
func ExclusiveProbes(candidates []ProbeCandidate) [4][]ProbeCandidate {
	var out [4][]ProbeCandidate
	for _, c := range candidates {
		for d := 0; d < 4; d++ {
			if c.FGMask == 1<<uint(d) {
				out[d] = append(out[d], c)
				break
			}
		}
	}
	return out
}
