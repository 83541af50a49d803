// Command probescan finds usable stock-digit probe positions from labeled
// screenshots. Feed it one capture per digit where both players show that
// digit; it prints the positions that light for exactly one digit.
package main

import (
	"flag"
	"fmt"
	"image"
	_ "image/png"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/fgc-tools/hudscan/internal/analysis/standard"
	"github.com/fgc-tools/hudscan/internal/logger"
	"github.com/fgc-tools/hudscan/pkg/types"
)

var (
	// Command-line flags
	maxPrint = flag.Int("max-print", 12, "Positions to print per digit")
	logLevel = flag.String("log-level", "info", "Log level (debug, info, warn, error, silent)")
	logColor = flag.Bool("log-color", true, "Enable colored log output")
)

type labeledImage struct {
	path  string
	digit int
}

// imageList collects repeated -image flags of the form path:digit.
type imageList []labeledImage

func (l *imageList) String() string {
	parts := make([]string, len(*l))
	for i, li := range *l {
		parts[i] = fmt.Sprintf("%s:%d", li.path, li.digit)
	}
	return strings.Join(parts, ",")
}

func (l *imageList) Set(v string) error {
	i := strings.LastIndex(v, ":")
	if i <= 0 || i == len(v)-1 {
		return fmt.Errorf("want path:digit, got %q", v)
	}
	digit, err := strconv.Atoi(v[i+1:])
	if err != nil {
		return fmt.Errorf("bad digit in %q: %w", v, err)
	}
	*l = append(*l, labeledImage{path: v[:i], digit: digit})
	return nil
}

func main() {
	var images imageList
	flag.Var(&images, "image", "Labeled capture as path:digit (repeatable)")
	flag.Parse()

	level, err := logger.ParseLevel(*logLevel)
	if err != nil {
		log.Fatalf("Invalid log level: %v", err)
	}
	logger.Init(level, os.Stderr, *logColor)

	if len(images) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	frames := make([]standard.LabeledFrame, 0, len(images))
	for _, li := range images {
		f, err := loadFrame(li.path)
		if err != nil {
			log.Fatalf("Failed to load %s: %v", li.path, err)
		}
		logger.Info("Main", "loaded %s as digit %d (%dx%d)", li.path, li.digit, f.Width, f.Height)
		frames = append(frames, standard.LabeledFrame{Frame: f, Digit: li.digit})
	}

	candidates, err := standard.ScanDigitProbes(frames)
	if err != nil {
		log.Fatalf("Probe scan failed: %v", err)
	}

	groups := standard.ExclusiveProbes(candidates)
	for d, group := range groups {
		fmt.Printf("digit %d: %d exclusive positions\n", d, len(group))
		for i, c := range group {
			if i >= *maxPrint {
				fmt.Printf("  ... and %d more\n", len(group)-i)
				break
			}
			fmt.Printf("  (%d, %d)\n", c.X, c.Y)
		}
	}
}

// loadFrame decodes an image file into the analyzer's frame format.
func loadFrame(path string) (*types.Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	b := img.Bounds()
	f := types.NewFrame(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			f.SetRGB(x, y, uint8(r>>8), uint8(g>>8), uint8(bl>>8))
		}
	}
	return f, nil
}
