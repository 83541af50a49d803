package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/fgc-tools/hudscan/internal/analysis"
	"github.com/fgc-tools/hudscan/pkg/matchlog"
	"github.com/fgc-tools/hudscan/pkg/types"
)

func ratio(v float64) *float64 { return &v }

// scriptedReading is what the fake layout reports for one frame index.
type scriptedReading struct {
	hudVisible bool
	p1, p2     *float64
}

// fakeHUD serves scripted health readings keyed by frame index, so pipeline
// behavior can be tested without pixel data.
type fakeHUD struct {
	script map[uint64]scriptedReading
}

func (h *fakeHUD) Name() string { return "fake" }

func (h *fakeHUD) DetectHUD(f *types.Frame) bool {
	return h.script[f.Index].hudVisible
}

func (h *fakeHUD) AnalyzeHP(f *types.Frame) analysis.HPReading {
	s := h.script[f.Index]
	return analysis.HPReading{P1: s.p1, P2: s.p2}
}

func (h *fakeHUD) AnalyzeSA(f *types.Frame) analysis.SAReading { return analysis.SAReading{} }
func (h *fakeHUD) AnalyzeOD(f *types.Frame) analysis.ODReading { return analysis.ODReading{} }
func (h *fakeHUD) DebugRegions() []analysis.DebugRegion        { return nil }

// fakeSource yields prepared frames in order, then end of stream. failAt
// injects a decode error at that read index (-1 for never).
type fakeSource struct {
	frames []*types.Frame
	failAt int
	next   int
}

func (s *fakeSource) NextFrame() (*types.Frame, error) {
	if s.failAt >= 0 && s.next == s.failAt {
		return nil, errors.New("decoder broke")
	}
	if s.next >= len(s.frames) {
		return nil, nil
	}
	f := s.frames[s.next]
	s.next++
	return f, nil
}

func indexFrames(n int) []*types.Frame {
	frames := make([]*types.Frame, n)
	for i := range frames {
		f := types.NewFrame(2, 2)
		f.Index = uint64(i)
		f.Timestamp = float64(i) / 60.0
		frames[i] = f
	}
	return frames
}

func newTestPipeline(t *testing.T, cfg Config, hud analysis.HUD) *Pipeline {
	t.Helper()
	p, err := New(cfg, hud, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return p
}

func collectedFrames(m *matchlog.Match) []matchlog.FrameData {
	var out []matchlog.FrameData
	for _, r := range m.Rounds {
		out = append(out, r.Frames...)
	}
	return out
}

func TestPipelineRunCollectsAndSplitsRounds(t *testing.T) {
	hud := &fakeHUD{script: map[uint64]scriptedReading{
		0: {true, ratio(1.0), ratio(1.0)},
		1: {true, ratio(0.6), ratio(0.3)},
		2: {true, ratio(0.8), ratio(0.0)},
		3: {true, ratio(1.0), ratio(1.0)},
		4: {true, ratio(0.9), ratio(0.8)},
	}}
	p := newTestPipeline(t, Config{SourcePath: "in.mp4", SampleRate: 1}, hud)

	m, err := p.Run(context.Background(), &fakeSource{frames: indexFrames(5), failAt: -1})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if m.Source.FilePath != "in.mp4" {
		t.Errorf("FilePath = %q", m.Source.FilePath)
	}
	if m.Source.StartSeconds != 0 {
		t.Errorf("StartSeconds = %f, want 0", m.Source.StartSeconds)
	}
	if len(m.Rounds) != 2 {
		t.Fatalf("got %d rounds, want 2", len(m.Rounds))
	}
	if len(m.Rounds[0].Frames) != 3 || len(m.Rounds[1].Frames) != 2 {
		t.Errorf("round sizes = %d, %d, want 3, 2",
			len(m.Rounds[0].Frames), len(m.Rounds[1].Frames))
	}
}

func TestPipelineRunSampleRate(t *testing.T) {
	script := make(map[uint64]scriptedReading)
	for i := uint64(0); i < 6; i++ {
		script[i] = scriptedReading{true, ratio(1.0), ratio(1.0)}
	}
	p := newTestPipeline(t, Config{SampleRate: 2}, &fakeHUD{script: script})

	m, err := p.Run(context.Background(), &fakeSource{frames: indexFrames(6), failAt: -1})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	frames := collectedFrames(m)
	if len(frames) != 3 {
		t.Fatalf("collected %d frames, want 3", len(frames))
	}
	for i, fd := range frames {
		if want := uint64(2 * i); fd.FrameNumber != want {
			t.Errorf("frame %d has number %d, want %d", i, fd.FrameNumber, want)
		}
	}
}

func TestPipelineRunCarriesLastHealthThroughOcclusion(t *testing.T) {
	hud := &fakeHUD{script: map[uint64]scriptedReading{
		0: {true, ratio(1.0), ratio(1.0)},
		1: {true, nil, ratio(0.9)},
		2: {true, ratio(0.8), nil},
	}}
	p := newTestPipeline(t, Config{SampleRate: 1}, hud)

	m, err := p.Run(context.Background(), &fakeSource{frames: indexFrames(3), failAt: -1})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	frames := collectedFrames(m)
	if len(frames) != 3 {
		t.Fatalf("collected %d frames, want 3", len(frames))
	}
	if got := frames[1].Player1.HealthRatio; got != 1.0 {
		t.Errorf("frame 1 P1 = %f, want carried 1.0", got)
	}
	if got := frames[2].Player2.HealthRatio; got != 0.9 {
		t.Errorf("frame 2 P2 = %f, want carried 0.9", got)
	}
}

func TestPipelineRunSkipsFramesBeforeFirstReading(t *testing.T) {
	hud := &fakeHUD{script: map[uint64]scriptedReading{
		0: {hudVisible: false},
		1: {true, nil, ratio(1.0)},
		2: {true, ratio(1.0), ratio(1.0)},
	}}
	p := newTestPipeline(t, Config{SampleRate: 1}, hud)

	m, err := p.Run(context.Background(), &fakeSource{frames: indexFrames(3), failAt: -1})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	frames := collectedFrames(m)
	if len(frames) != 1 || frames[0].FrameNumber != 2 {
		t.Fatalf("collected = %+v, want just frame 2", frames)
	}
	if want := 2.0 / 60.0; m.Source.StartSeconds != want {
		t.Errorf("StartSeconds = %f, want %f", m.Source.StartSeconds, want)
	}
}

func TestPipelineRunMaxFramesCapsCollected(t *testing.T) {
	// Frame 1 is non-gameplay; the cap counts collected frames, not reads,
	// and sampling is off while the cap is set.
	script := map[uint64]scriptedReading{
		0: {true, ratio(1.0), ratio(1.0)},
		1: {hudVisible: false},
		2: {true, ratio(1.0), ratio(1.0)},
		3: {true, ratio(1.0), ratio(1.0)},
		4: {true, ratio(1.0), ratio(1.0)},
	}
	p := newTestPipeline(t, Config{SampleRate: 2, MaxFrames: 3}, &fakeHUD{script: script})

	m, err := p.Run(context.Background(), &fakeSource{frames: indexFrames(5), failAt: -1})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	frames := collectedFrames(m)
	if len(frames) != 3 {
		t.Fatalf("collected %d frames, want 3", len(frames))
	}
	want := []uint64{0, 2, 3}
	for i, fd := range frames {
		if fd.FrameNumber != want[i] {
			t.Errorf("frame %d has number %d, want %d", i, fd.FrameNumber, want[i])
		}
	}
}

func TestPipelineRunDecodeError(t *testing.T) {
	script := map[uint64]scriptedReading{
		0: {true, ratio(1.0), ratio(1.0)},
	}
	p := newTestPipeline(t, Config{SampleRate: 1}, &fakeHUD{script: script})

	_, err := p.Run(context.Background(), &fakeSource{frames: indexFrames(3), failAt: 1})
	if err == nil {
		t.Fatal("Run succeeded, want decode error")
	}
}

func TestPipelineRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	script := map[uint64]scriptedReading{
		0: {true, ratio(1.0), ratio(1.0)},
	}
	p := newTestPipeline(t, Config{SampleRate: 1}, &fakeHUD{script: script})

	m, err := p.Run(ctx, &fakeSource{frames: indexFrames(100), failAt: -1})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(m.Rounds) != 0 {
		t.Errorf("got %d rounds from a cancelled run, want 0", len(m.Rounds))
	}
}

// recordingRenderer keeps a copy of every frame handed to the debug output.
type recordingRenderer struct {
	got  []matchlog.FrameData
	fail bool
}

func (r *recordingRenderer) RenderFrame(f *types.Frame, fd *matchlog.FrameData) error {
	if r.fail {
		return errors.New("disk full")
	}
	if f == nil {
		return errors.New("nil frame")
	}
	r.got = append(r.got, *fd)
	return nil
}

func TestPipelineRunDebugRendererSeesCarriedValues(t *testing.T) {
	hud := &fakeHUD{script: map[uint64]scriptedReading{
		0: {true, ratio(1.0), ratio(1.0)},
		1: {true, nil, ratio(0.5)},
	}}
	rec := &recordingRenderer{}
	p := newTestPipeline(t, Config{SampleRate: 1, Debug: rec}, hud)

	if _, err := p.Run(context.Background(), &fakeSource{frames: indexFrames(2), failAt: -1}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(rec.got) != 2 {
		t.Fatalf("renderer saw %d frames, want 2", len(rec.got))
	}
	if got := rec.got[1].Player1.HealthRatio; got != 1.0 {
		t.Errorf("rendered frame 1 P1 = %f, want carried 1.0", got)
	}
}

func TestPipelineRunDebugRenderFailureDoesNotAbort(t *testing.T) {
	hud := &fakeHUD{script: map[uint64]scriptedReading{
		0: {true, ratio(1.0), ratio(1.0)},
	}}
	p := newTestPipeline(t, Config{SampleRate: 1, Debug: &recordingRenderer{fail: true}}, hud)

	m, err := p.Run(context.Background(), &fakeSource{frames: indexFrames(1), failAt: -1})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := len(collectedFrames(m)); got != 1 {
		t.Errorf("collected %d frames, want 1", got)
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{SampleRate: 2}, false},
		{"zero sample rate", Config{SampleRate: 0}, true},
		{"negative max frames", Config{SampleRate: 1, MaxFrames: -1}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() = %v, wantErr %t", err, tc.wantErr)
			}
		})
	}
}
