package subtitle

import (
	"time"
)

// one caption entry in a single language track
type Cue struct {
	ID    int
	Start time.Duration
	End   time.Duration
	Text  string
}

// ordered sequence of cues for one language. Tracks are read-only once
// produced; the merge engine never mutates its inputs.
type Track struct {
	Cues     []Cue
	Language string
}

// minimum duration a cue is repaired to when end <= start (one frame at 25fps)
const MinCueDuration = 40 * time.Millisecond

// reports whether the cue has usable timing
func (c Cue) ValidTiming() bool {
	return c.Start >= 0 && c.End > c.Start
}
