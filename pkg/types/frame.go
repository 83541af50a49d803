package types

// Frame represents a decoded video frame in packed RGB24 layout
type Frame struct {
	Pix       []byte  // Raw RGB data, 3 bytes per pixel, row-major
	Width     int     // Frame width in pixels
	Height    int     // Frame height in pixels
	Index     uint64  // Sequential frame number within the source video
	Timestamp float64 // Seconds from the start of the source video
}

// NewFrame allocates a zeroed frame of the given dimensions
func NewFrame(width, height int) *Frame {
	return &Frame{
		Pix:    make([]byte, width*height*3),
		Width:  width,
		Height: height,
	}
}

// PixOffset returns the index of the first byte of the pixel at (x, y)
func (f *Frame) PixOffset(x, y int) int {
	return (y*f.Width + x) * 3
}

// RGBAt returns the pixel at (x, y). Bounds are not checked; callers on
// hot scan paths are expected to stay inside validated regions.
func (f *Frame) RGBAt(x, y int) (r, g, b uint8) {
	i := f.PixOffset(x, y)
	return f.Pix[i], f.Pix[i+1], f.Pix[i+2]
}

// SetRGB writes the pixel at (x, y). Bounds are not checked.
func (f *Frame) SetRGB(x, y int, r, g, b uint8) {
	i := f.PixOffset(x, y)
	f.Pix[i] = r
	f.Pix[i+1] = g
	f.Pix[i+2] = b
}

// InBounds reports whether (x, y) lies inside the frame
func (f *Frame) InBounds(x, y int) bool {
	return x >= 0 && x < f.Width && y >= 0 && y < f.Height
}

// Clone returns a deep copy of the frame. Used by the debug renderer so
// overlays never touch the buffer the analysis readers see.
func (f *Frame) Clone() *Frame {
	c := *f
	c.Pix = append([]byte(nil), f.Pix...)
	return &c
}

// VideoMeta describes a video stream as reported by the prober
type VideoMeta struct {
	Width  int     // Stream width in pixels
	Height int     // Stream height in pixels
	FPS    float64 // Average frame rate
}
