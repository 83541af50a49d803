package analysis

import "fmt"

// Scanline is a horizontal pixel sampling path defined by a y coordinate and
// an x range. Both ends are inclusive and may be in either order; a reversed
// range scans right-to-left. Scanlines are built once from reference-resolution
// constants, rescaled to the actual frame size, and immutable afterwards.
type Scanline struct {
	XStart int
	XEnd   int
	Y      int
}

// Width returns the number of steps between the endpoints. A scanline visits
// Width()+1 pixel positions, indices 0 through Width() inclusive.
func (s Scanline) Width() int {
	return absInt(s.XEnd - s.XStart)
}

// DX returns the scan direction: +1 for left-to-right, -1 for right-to-left.
func (s Scanline) DX() int {
	if s.XEnd >= s.XStart {
		return 1
	}
	return -1
}

// XAt returns the x coordinate of position i along the scan direction.
func (s Scanline) XAt(i int) int {
	return s.XStart + i*s.DX()
}

// First returns the x coordinate where the scan begins.
func (s Scanline) First() int {
	return s.XStart
}

// Last returns the x coordinate where the scan ends.
func (s Scanline) Last() int {
	return s.XEnd
}

// ScaleTo rescales the scanline from a reference resolution to a target
// resolution using floor division. Resolutions must be positive; callers
// validate them before scaling.
func (s Scanline) ScaleTo(frameW, frameH, refW, refH int) Scanline {
	return Scanline{
		XStart: s.XStart * frameW / refW,
		XEnd:   s.XEnd * frameW / refW,
		Y:      s.Y * frameH / refH,
	}
}

// MirrorX reflects the scanline across the vertical center of a frame of the
// given reference width. Used to derive the second player's gauges from the
// first player's constants.
func (s Scanline) MirrorX(refW int) Scanline {
	return Scanline{
		XStart: refW - s.XStart,
		XEnd:   refW - s.XEnd,
		Y:      s.Y,
	}
}

// Validate reports whether every position the scanline visits lies inside a
// frame of the given dimensions.
func (s Scanline) Validate(frameW, frameH int) error {
	if s.XStart < 0 || s.XStart >= frameW || s.XEnd < 0 || s.XEnd >= frameW {
		return fmt.Errorf("scanline x range [%d, %d] outside frame width %d", s.XStart, s.XEnd, frameW)
	}
	if s.Y < 0 || s.Y >= frameH {
		return fmt.Errorf("scanline y %d outside frame height %d", s.Y, frameH)
	}
	return nil
}

// PixelRect is a rectangle in absolute pixel coordinates. Used for digit
// probe bounding boxes and debug overlays.
type PixelRect struct {
	X int
	Y int
	W int
	H int
}

// ScaleTo rescales the rect from a reference resolution to a target
// resolution. Floor division on each axis; rescaling is not required to be
// exact.
func (r PixelRect) ScaleTo(frameW, frameH, refW, refH int) PixelRect {
	return PixelRect{
		X: r.X * frameW / refW,
		Y: r.Y * frameH / refH,
		W: r.W * frameW / refW,
		H: r.H * frameH / refH,
	}
}

// MirrorX reflects the rect across the vertical center of a frame of the
// given reference width.
func (r PixelRect) MirrorX(refW int) PixelRect {
	return PixelRect{
		X: refW - r.X - r.W,
		Y: r.Y,
		W: r.W,
		H: r.H,
	}
}

// Validate reports whether the rect lies fully inside a frame of the given
// dimensions and has a non-empty area.
func (r PixelRect) Validate(frameW, frameH int) error {
	if r.W <= 0 || r.H <= 0 {
		return fmt.Errorf("rect %dx%d has empty area", r.W, r.H)
	}
	if r.X < 0 || r.Y < 0 || r.X+r.W > frameW || r.Y+r.H > frameH {
		return fmt.Errorf("rect (%d, %d, %dx%d) outside %dx%d frame", r.X, r.Y, r.W, r.H, frameW, frameH)
	}
	return nil
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
