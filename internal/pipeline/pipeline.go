// Package pipeline pulls frames from a source, reads the HUD gauges on each
// one, and assembles the readings into a per-round match log.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/fgc-tools/hudscan/internal/analysis"
	"github.com/fgc-tools/hudscan/internal/logger"
	"github.com/fgc-tools/hudscan/internal/metrics"
	"github.com/fgc-tools/hudscan/pkg/matchlog"
	"github.com/fgc-tools/hudscan/pkg/types"
)

// FrameSource supplies decoded frames in playback order. NextFrame returns
// (nil, nil) at the end of the stream. *video.Decoder implements it.
type FrameSource interface {
	NextFrame() (*types.Frame, error)
}

// Frames buffered between the decode goroutine and analysis.
const readAheadDepth = 4

// Pipeline runs gauge analysis over a frame stream.
type Pipeline struct {
	cfg     Config
	hud     analysis.HUD
	metrics *metrics.Metrics
}

func New(cfg Config, hud analysis.HUD, m *metrics.Metrics) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline config: %w", err)
	}
	if m == nil {
		m = metrics.New()
	}
	return &Pipeline{cfg: cfg, hud: hud, metrics: m}, nil
}

type sourceResult struct {
	frame *types.Frame
	err   error
}

// readAhead decodes on its own goroutine so the next frame arrives while the
// current one is analyzed. The channel closes at end of stream or when the
// context is done.
func readAhead(ctx context.Context, src FrameSource) <-chan sourceResult {
	ch := make(chan sourceResult, readAheadDepth)
	go func() {
		defer close(ch)
		for {
			frame, err := src.NextFrame()
			if err != nil {
				select {
				case ch <- sourceResult{err: err}:
				case <-ctx.Done():
				}
				return
			}
			if frame == nil {
				return
			}
			select {
			case ch <- sourceResult{frame: frame}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

// Run processes the stream to its end and returns the assembled match.
// Cancelling the context stops the run early and returns the partial match
// built so far; a decode failure returns an error instead.
func (p *Pipeline) Run(ctx context.Context, src FrameSource) (*matchlog.Match, error) {
	var (
		collected    []matchlog.FrameData
		lastP1       *float64
		lastP2       *float64
		startSeconds float64
		started      bool
		read         int
	)

	logger.Info("Pipeline", "starting analysis of %s (layout %s, sample rate %d)",
		p.cfg.SourcePath, p.hud.Name(), p.cfg.SampleRate)

	ch := readAhead(ctx, src)
	for res := range ch {
		if res.err != nil {
			p.metrics.DecodeErrors.Add(1)
			return nil, fmt.Errorf("decode failed: %w", res.err)
		}
		if ctx.Err() != nil {
			break
		}
		frame := res.frame
		p.metrics.FramesDecoded.Add(1)
		read++

		if p.cfg.MaxFrames == 0 && p.cfg.SampleRate > 1 && frame.Index%uint64(p.cfg.SampleRate) != 0 {
			p.metrics.FramesSkipped.Add(1)
			continue
		}

		if fd, ok := p.analyzeFrame(frame, &lastP1, &lastP2); ok {
			if !started {
				started = true
				startSeconds = fd.TimestampSeconds
			}
			collected = append(collected, fd)
			p.metrics.FramesCollected.Add(1)
		}

		if p.cfg.MaxFrames > 0 && len(collected) >= p.cfg.MaxFrames {
			logger.Info("Pipeline", "collected frame limit %d reached", p.cfg.MaxFrames)
			break
		}
	}

	match := buildMatch(p.cfg.SourcePath, startSeconds, collected)
	p.metrics.RoundsObserved.Add(uint64(len(match.Rounds)))

	logger.Info("Pipeline", "analysis finished: %d frames read, %d collected, %d rounds",
		read, len(collected), len(match.Rounds))
	return match, nil
}

// analyzeFrame reads all gauges off one frame. The bool result reports
// whether the frame produced a collectable reading: the HUD must be visible
// and both health bars known, carrying the last confirmed value through
// frames where a bar is briefly occluded.
func (p *Pipeline) analyzeFrame(frame *types.Frame, lastP1, lastP2 **float64) (matchlog.FrameData, bool) {
	start := time.Now()

	if !p.hud.DetectHUD(frame) {
		p.metrics.HUDAbsent.Add(1)
		logger.Debug("Pipeline", "frame %d: HUD not visible", frame.Index)
		return matchlog.FrameData{}, false
	}

	hp := p.hud.AnalyzeHP(frame)
	sa := p.hud.AnalyzeSA(frame)
	od := p.hud.AnalyzeOD(frame)
	p.metrics.FramesAnalyzed.Add(1)
	p.metrics.UpdateAnalyzeLatency(time.Since(start))
	p.countUnreadable(&hp, &sa, &od)

	p1 := hp.P1
	if p1 == nil {
		p1 = *lastP1
	} else {
		*lastP1 = p1
	}
	p2 := hp.P2
	if p2 == nil {
		p2 = *lastP2
	} else {
		*lastP2 = p2
	}
	if p1 == nil || p2 == nil {
		// A bar has not been seen even once yet; pre-match screens land here.
		logger.Warn("Pipeline", "frame %d: no health reading yet (p1=%t p2=%t), skipping",
			frame.Index, p1 != nil, p2 != nil)
		return matchlog.FrameData{}, false
	}

	od1, burnout1 := splitODValue(od.P1)
	od2, burnout2 := splitODValue(od.P2)
	fd := matchlog.FrameData{
		FrameNumber:      frame.Index,
		TimestampSeconds: frame.Timestamp,
		Player1: matchlog.PlayerState{
			HealthRatio:  *p1,
			SAGauge:      sa.P1,
			ODGauge:      od1,
			BurnoutGauge: burnout1,
		},
		Player2: matchlog.PlayerState{
			HealthRatio:  *p2,
			SAGauge:      sa.P2,
			ODGauge:      od2,
			BurnoutGauge: burnout2,
		},
	}

	// Render with the carried-forward values the log will hold, not the
	// raw per-frame readings.
	if p.cfg.Debug != nil {
		if err := p.cfg.Debug.RenderFrame(frame, &fd); err != nil {
			logger.Warn("Pipeline", "debug render of frame %d failed: %v", frame.Index, err)
		} else {
			p.metrics.DebugFramesWritten.Add(1)
		}
	}
	return fd, true
}

func (p *Pipeline) countUnreadable(hp *analysis.HPReading, sa *analysis.SAReading, od *analysis.ODReading) {
	for _, v := range []*float64{hp.P1, hp.P2} {
		if v == nil {
			p.metrics.HPUnreadable.Add(1)
		}
	}
	for _, v := range []*float64{sa.P1, sa.P2} {
		if v == nil {
			p.metrics.SAUnreadable.Add(1)
		}
	}
	for _, v := range []*analysis.ODValue{od.P1, od.P2} {
		if v == nil {
			p.metrics.ODUnreadable.Add(1)
		}
	}
}

// splitODValue maps a drive reading onto the two exclusive log fields.
func splitODValue(v *analysis.ODValue) (od, burnout *float64) {
	if v == nil {
		return nil, nil
	}
	val := v.Value
	if v.Burnout {
		return nil, &val
	}
	return &val, nil
}
