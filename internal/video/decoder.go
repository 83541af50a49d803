// Package video decodes video files into raw RGB frames by driving ffmpeg
// as a child process. Probing and decoding shell out rather than linking a
// codec library, so anything ffmpeg can open can be analyzed.
package video

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"github.com/fgc-tools/hudscan/internal/logger"
	"github.com/fgc-tools/hudscan/pkg/types"
)

// Decoder streams decoded frames from one video file. Not safe for
// concurrent use.
type Decoder struct {
	path      string
	meta      types.VideoMeta
	cmd       *exec.Cmd
	stdout    io.ReadCloser
	stderr    bytes.Buffer
	frameSize int
	// Absolute index of the next frame to be returned.
	next uint64
}

// Probe asks ffprobe for the dimensions and frame rate of the first video
// stream.
func Probe(ctx context.Context, path string) (types.VideoMeta, error) {
	out, err := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,r_frame_rate",
		"-of", "csv=p=0",
		path,
	).Output()
	if err != nil {
		return types.VideoMeta{}, fmt.Errorf("failed to probe %s: %w", path, err)
	}
	meta, err := parseProbeOutput(string(out))
	if err != nil {
		return types.VideoMeta{}, fmt.Errorf("failed to parse probe output for %s: %w", path, err)
	}
	return meta, nil
}

func parseProbeOutput(out string) (types.VideoMeta, error) {
	line := strings.TrimSpace(out)
	// Multiple lines can appear for files with several video streams; the
	// first is the selected one.
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	parts := strings.Split(line, ",")
	if len(parts) < 3 {
		return types.VideoMeta{}, fmt.Errorf("unexpected probe line %q", line)
	}
	w, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return types.VideoMeta{}, fmt.Errorf("bad width %q: %w", parts[0], err)
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return types.VideoMeta{}, fmt.Errorf("bad height %q: %w", parts[1], err)
	}
	if w <= 0 || h <= 0 {
		return types.VideoMeta{}, fmt.Errorf("non-positive dimensions %dx%d", w, h)
	}
	return types.VideoMeta{Width: w, Height: h, FPS: parseRate(parts[2])}, nil
}

// parseRate parses ffprobe's rational frame rate ("60/1", "30000/1001").
// Returns 0 when the rate is malformed or has a zero denominator; timestamps
// are then unavailable but decoding still works.
func parseRate(s string) float64 {
	s = strings.TrimSpace(s)
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v < 0 {
			return 0
		}
		return v
	}
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d <= 0 {
		return 0
	}
	return n / d
}

// Open starts decoding a file from its first frame.
func Open(ctx context.Context, path string) (*Decoder, error) {
	return OpenAtFrame(ctx, path, 0)
}

// OpenAtFrame starts decoding at the given frame index. Frames keep their
// absolute numbering, so readings can be located in the original file.
func OpenAtFrame(ctx context.Context, path string, startFrame uint64) (*Decoder, error) {
	meta, err := Probe(ctx, path)
	if err != nil {
		return nil, err
	}

	args := []string{"-i", path}
	if startFrame > 0 {
		args = append(args,
			"-vf", fmt.Sprintf("select=gte(n\\,%d)", startFrame),
			"-vsync", "0",
		)
	}
	args = append(args, "-f", "rawvideo", "-pix_fmt", "rgb24", "-v", "error", "pipe:1")

	d := &Decoder{
		path:      path,
		meta:      meta,
		frameSize: meta.Width * meta.Height * 3,
		next:      startFrame,
	}
	d.cmd = exec.CommandContext(ctx, "ffmpeg", args...)
	d.cmd.Stderr = &d.stderr
	stdout, err := d.cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open ffmpeg stdout: %w", err)
	}
	d.stdout = stdout

	if err := d.cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	logger.Info("Video", "decoding %s (%dx%d @ %.2f fps) from frame %d",
		path, meta.Width, meta.Height, meta.FPS, startFrame)
	return d, nil
}

// Meta returns the probed stream properties.
func (d *Decoder) Meta() types.VideoMeta {
	return d.meta
}

// NextFrame returns the next decoded frame, or (nil, nil) at the end of the
// stream. A short read mid-frame is an error: it means the decode died.
func (d *Decoder) NextFrame() (*types.Frame, error) {
	buf := make([]byte, d.frameSize)
	if _, err := io.ReadFull(d.stdout, buf); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		if msg := strings.TrimSpace(d.stderr.String()); msg != "" {
			return nil, fmt.Errorf("failed to read frame %d: %w: %s", d.next, err, msg)
		}
		return nil, fmt.Errorf("failed to read frame %d: %w", d.next, err)
	}

	f := &types.Frame{
		Pix:    buf,
		Width:  d.meta.Width,
		Height: d.meta.Height,
		Index:  d.next,
	}
	if d.meta.FPS > 0 {
		f.Timestamp = float64(d.next) / d.meta.FPS
	}
	d.next++
	return f, nil
}

// Close terminates the decode process. Safe to call after the stream ends.
func (d *Decoder) Close() error {
	if d.cmd == nil || d.cmd.Process == nil {
		return nil
	}
	_ = d.cmd.Process.Kill()
	_ = d.cmd.Wait()
	return nil
}
