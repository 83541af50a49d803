// Package overlay renders annotated copies of analyzed frames: every gauge
// region outlined in its layout color, plus a text block with the readings
// the log will carry. One PNG per frame, named by frame number.
package overlay

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/fgc-tools/hudscan/internal/analysis"
	"github.com/fgc-tools/hudscan/internal/logger"
	"github.com/fgc-tools/hudscan/pkg/matchlog"
	"github.com/fgc-tools/hudscan/pkg/types"
)

const (
	textX          = 10
	textY          = 20
	textLineHeight = 16
)

var textColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// Renderer writes annotated debug frames into a directory. It implements
// pipeline.DebugRenderer.
type Renderer struct {
	dir     string
	regions []analysis.DebugRegion
}

// NewRenderer creates the output directory and returns a renderer that
// outlines the given regions on every frame.
func NewRenderer(dir string, regions []analysis.DebugRegion) (*Renderer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create debug frame directory: %w", err)
	}
	return &Renderer{dir: dir, regions: regions}, nil
}

// RenderFrame draws the region outlines and reading text onto a copy of the
// frame and saves it as frame_<number>.png. The source frame is not touched.
func (r *Renderer) RenderFrame(f *types.Frame, fd *matchlog.FrameData) error {
	img := frameImage(f)

	for _, region := range r.regions {
		drawHollowRect(img, region.Rect, region.Color)
	}

	lines := []string{
		fmt.Sprintf("F:%d", fd.FrameNumber),
		playerText("P1", &fd.Player1),
		playerText("P2", &fd.Player2),
	}
	for i, line := range lines {
		drawText(img, textX, textY+i*textLineHeight, line)
	}

	path := filepath.Join(r.dir, fmt.Sprintf("frame_%08d.png", fd.FrameNumber))
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create debug frame file: %w", err)
	}
	defer out.Close()
	if err := png.Encode(out, img); err != nil {
		return fmt.Errorf("failed to encode debug frame %s: %w", path, err)
	}

	logger.Debug("Overlay", "saved %s", path)
	return nil
}

func playerText(name string, p *matchlog.PlayerState) string {
	return fmt.Sprintf("%s HP:%.0f%% SA:%s OD:%s",
		name, p.HealthRatio*100.0, gaugeText(p.SAGauge), driveText(p))
}

func gaugeText(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}

func driveText(p *matchlog.PlayerState) string {
	switch {
	case p.BurnoutGauge != nil:
		return fmt.Sprintf("BO %.2f", *p.BurnoutGauge)
	case p.ODGauge != nil:
		return fmt.Sprintf("%.2f", *p.ODGauge)
	default:
		return "-"
	}
}

// frameImage expands the packed RGB pixels into a drawable RGBA image.
func frameImage(f *types.Frame) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		si := y * f.Width * 3
		di := y * img.Stride
		for x := 0; x < f.Width; x++ {
			img.Pix[di+0] = f.Pix[si+0]
			img.Pix[di+1] = f.Pix[si+1]
			img.Pix[di+2] = f.Pix[si+2]
			img.Pix[di+3] = 0xff
			si += 3
			di += 4
		}
	}
	return img
}

func drawHollowRect(img *image.RGBA, r analysis.PixelRect, c color.RGBA) {
	for x := r.X; x < r.X+r.W; x++ {
		setPixel(img, x, r.Y, c)
		setPixel(img, x, r.Y+r.H-1, c)
	}
	for y := r.Y; y < r.Y+r.H; y++ {
		setPixel(img, r.X, y, c)
		setPixel(img, r.X+r.W-1, y, c)
	}
}

func setPixel(img *image.RGBA, x, y int, c color.RGBA) {
	if (image.Point{X: x, Y: y}).In(img.Rect) {
		img.SetRGBA(x, y, c)
	}
}

func drawText(img *image.RGBA, x, y int, s string) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(textColor),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}
