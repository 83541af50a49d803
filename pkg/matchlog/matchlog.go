// Package matchlog defines the persisted analysis output: per-round gauge
// readings for both players, tied back to the source video. The wire format
// is protobuf; matchlog.proto is the authoritative schema and codec.go
// implements it directly over the protowire primitives.
package matchlog

import (
	"fmt"
	"os"
	"path/filepath"
)

// VideoFile identifies the video a match was read from. StartSeconds is the
// timestamp of the first collected frame, so round times can be mapped back
// to positions in the file.
type VideoFile struct {
	FilePath     string
	StartSeconds float64
}

// PlayerState holds one player's gauges in a single frame. Health is a ratio
// on [0, 1]. The special gauge combines stocks and fill on [0, 3]. The drive
// gauge counts bars on [0, 6]; during burnout ODGauge is absent and
// BurnoutGauge carries the recovery progress as a ratio on [0, 1]. Nil means
// the gauge could not be read in this frame.
type PlayerState struct {
	HealthRatio  float64
	SAGauge      *float64
	ODGauge      *float64
	BurnoutGauge *float64
}

// FrameData is one sampled frame's readings for both players.
type FrameData struct {
	FrameNumber      uint64
	TimestampSeconds float64
	Player1          PlayerState
	Player2          PlayerState
}

// Round is a maximal run of frames between two health resets.
type Round struct {
	// RoundIndex is zero-based in playback order.
	RoundIndex int
	Frames     []FrameData
}

// Match is the full analysis output for one video.
type Match struct {
	Source VideoFile
	Rounds []Round
}

// FrameCount returns the total collected frames across all rounds.
func (m *Match) FrameCount() int {
	n := 0
	for i := range m.Rounds {
		n += len(m.Rounds[i].Frames)
	}
	return n
}

// WriteFile encodes the match and writes it to path, creating parent
// directories as needed.
func WriteFile(path string, m *Match) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, m.Marshal(), 0644); err != nil {
		return fmt.Errorf("failed to write match log: %w", err)
	}
	return nil
}

// ReadFile loads and decodes a match log written by WriteFile.
func ReadFile(path string) (*Match, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read match log: %w", err)
	}
	m, err := UnmarshalMatch(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode match log %s: %w", path, err)
	}
	return m, nil
}
