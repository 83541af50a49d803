package pipeline

import (
	"errors"
	"fmt"

	"github.com/fgc-tools/hudscan/pkg/matchlog"
	"github.com/fgc-tools/hudscan/pkg/types"
)

// DebugRenderer receives every collected frame together with the readings
// that will be logged for it. Render failures are logged and do not stop
// the run.
type DebugRenderer interface {
	RenderFrame(f *types.Frame, fd *matchlog.FrameData) error
}

// Config controls one analysis run.
type Config struct {
	// SourcePath is recorded in the match log so readings can be traced
	// back to the file they came from.
	SourcePath string

	// SampleRate analyzes every Nth frame. Gauges move slowly relative to
	// the frame rate, so 2 halves the work with no visible loss.
	SampleRate int

	// MaxFrames stops the run after collecting this many frames (0 = all).
	// Sampling is disabled when set: short debugging runs want every frame.
	MaxFrames int

	// Debug, when non-nil, gets each analyzed frame.
	Debug DebugRenderer
}

func (c *Config) Validate() error {
	if c.SampleRate < 1 {
		return fmt.Errorf("sample rate %d, must be at least 1", c.SampleRate)
	}
	if c.MaxFrames < 0 {
		return errors.New("max frames must not be negative")
	}
	return nil
}
