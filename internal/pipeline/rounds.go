package pipeline

import "github.com/fgc-tools/hudscan/pkg/matchlog"

const (
	// A bar below this counts as damage taken in the current round.
	damageThreshold = 0.5
	// Both bars back above this after damage marks a reset.
	roundResetThreshold = 0.95
)

// splitRounds cuts the collected frames into rounds. A reset is recognized
// when both bars return to near full after at least one of them had dropped
// below half; the recovery frame itself opens the new round. Rounds that
// would be empty are dropped.
func splitRounds(frames []matchlog.FrameData) []matchlog.Round {
	var rounds []matchlog.Round
	var cur []matchlog.FrameData
	hadDamage := false

	flush := func() {
		if len(cur) > 0 {
			rounds = append(rounds, matchlog.Round{RoundIndex: len(rounds), Frames: cur})
			cur = nil
		}
	}

	for i := range frames {
		f := &frames[i]
		if f.Player1.HealthRatio < damageThreshold || f.Player2.HealthRatio < damageThreshold {
			hadDamage = true
		}
		if hadDamage && f.Player1.HealthRatio >= roundResetThreshold && f.Player2.HealthRatio >= roundResetThreshold {
			flush()
			hadDamage = false
		}
		cur = append(cur, *f)
	}
	flush()
	return rounds
}

func buildMatch(sourcePath string, startSeconds float64, frames []matchlog.FrameData) *matchlog.Match {
	return &matchlog.Match{
		Source: matchlog.VideoFile{
			FilePath:     sourcePath,
			StartSeconds: startSeconds,
		},
		Rounds: splitRounds(frames),
	}
}
