package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/fgc-tools/hudscan/internal/analysis"
	"github.com/fgc-tools/hudscan/internal/analysis/standard"
	"github.com/fgc-tools/hudscan/internal/logger"
	"github.com/fgc-tools/hudscan/internal/metrics"
	"github.com/fgc-tools/hudscan/internal/overlay"
	"github.com/fgc-tools/hudscan/internal/pipeline"
	"github.com/fgc-tools/hudscan/internal/store"
	"github.com/fgc-tools/hudscan/internal/video"
	"github.com/fgc-tools/hudscan/pkg/matchlog"
)

var (
	// Command-line flags
	input       = flag.String("input", "", "Input video file")
	output      = flag.String("output", "", "Output match log path")
	layoutName  = flag.String("layout", "standard", "HUD layout to read")
	sampleRate  = flag.Int("sample-rate", 2, "Analyze every Nth frame")
	startFrame  = flag.Uint64("start-frame", 0, "Frame number to start decoding from")
	maxFrames   = flag.Int("max-frames", 0, "Stop after collecting this many frames (0 = all, disables sampling)")
	debugFrames = flag.String("debug-frames", "", "Directory for annotated debug frames")
	metricsAddr = flag.String("metrics", "", "Metrics server address (empty = disabled)")
	catalogPath = flag.String("catalog", "", "SQLite match catalog path (empty = disabled)")
	logLevel    = flag.String("log-level", "info", "Log level (debug, info, warn, error, silent)")
	logColor    = flag.Bool("log-color", true, "Enable colored log output")
)

// newHUD builds the named gauge layout for the video's resolution.
func newHUD(name string, frameW, frameH int) (analysis.HUD, error) {
	switch name {
	case "standard":
		return standard.New(frameW, frameH)
	default:
		return nil, fmt.Errorf("unknown layout %q", name)
	}
}

func main() {
	flag.Parse()

	level, err := logger.ParseLevel(*logLevel)
	if err != nil {
		log.Fatalf("Invalid log level: %v", err)
	}
	logger.Init(level, os.Stderr, *logColor)

	if *input == "" || *output == "" {
		flag.Usage()
		os.Exit(2)
	}

	m := metrics.New()
	if *metricsAddr != "" {
		go func() {
			logger.Info("Main", "metrics server listening on %s", *metricsAddr)
			if err := m.StartServer(*metricsAddr); err != nil {
				logger.Error("Main", "metrics server: %v", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dec, err := video.OpenAtFrame(ctx, *input, *startFrame)
	if err != nil {
		log.Fatalf("Failed to open video: %v", err)
	}
	defer dec.Close()

	meta := dec.Meta()
	logger.Info("Main", "video opened: %dx%d @ %.2f fps", meta.Width, meta.Height, meta.FPS)

	hud, err := newHUD(*layoutName, meta.Width, meta.Height)
	if err != nil {
		log.Fatalf("Failed to build HUD layout: %v", err)
	}

	cfg := pipeline.Config{
		SourcePath: *input,
		SampleRate: *sampleRate,
		MaxFrames:  *maxFrames,
	}
	if *debugFrames != "" {
		r, err := overlay.NewRenderer(*debugFrames, hud.DebugRegions())
		if err != nil {
			log.Fatalf("Failed to prepare debug renderer: %v", err)
		}
		cfg.Debug = r
	}

	p, err := pipeline.New(cfg, hud, m)
	if err != nil {
		log.Fatalf("Failed to build pipeline: %v", err)
	}

	match, err := p.Run(ctx, dec)
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	if err := matchlog.WriteFile(*output, match); err != nil {
		log.Fatalf("Failed to write match log: %v", err)
	}
	logger.Info("Main", "wrote %s: %d rounds, %d frames",
		*output, len(match.Rounds), match.FrameCount())

	if *catalogPath != "" {
		st, err := store.NewStore(*catalogPath)
		if err != nil {
			log.Fatalf("Failed to open match catalog: %v", err)
		}
		defer st.Close()
		rec, err := st.Save(match, *output)
		if err != nil {
			log.Fatalf("Failed to catalog match: %v", err)
		}
		logger.Info("Main", "cataloged match %s", rec.ID)
	}
}
