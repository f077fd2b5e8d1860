package merge

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/zemerlab/zemer/internal/subtitle"
)

// Separator joins the source and Hebrew text blocks of one combined
// cue. The layout engine splits on it to recover the blocks.
const Separator = "\n‖\n"

type Interval struct {
	Start time.Duration
	End   time.Duration
}

// Combined is one bilingual display unit: the union interval of the
// contributing cues and their texts joined by Separator. ID is unique
// within the combined list and drives frame-capture bookkeeping.
type Combined struct {
	Interval Interval
	Text     string
	ID       string
}

type Options struct {
	FPS           int
	TotalDuration time.Duration
}

func (o Options) frameDuration() time.Duration {
	fps := o.FPS
	if fps <= 0 {
		fps = 25
	}
	return time.Second / time.Duration(fps)
}

var numRegex = regexp.MustCompile(`\d+`)

// Combine interleaves a source track and a target track, matched by
// cue id rather than position, into one chronologically ordered list of
// combined cues. Either track may be nil. The result is a deterministic
// function of its inputs.
func Combine(source, target *subtitle.Track, opts Options) []Combined {
	srcByKey, keys := indexTrack(source, "src", nil)
	tgtByKey, keys := indexTrack(target, "tgt", keys)

	// numeric ids approximate chronological order; the final sort by
	// start time below is authoritative
	sortKeysNumeric(keys)

	frame := opts.frameDuration()
	var combined []Combined
	counter := 0

	for _, key := range keys {
		srcCue, srcOK := srcByKey[key]
		tgtCue, tgtOK := tgtByKey[key]

		validSrc := srcOK && srcCue.ValidTiming()
		validTgt := tgtOK && tgtCue.ValidTiming()
		if !validSrc && !validTgt {
			continue
		}

		var texts []string
		if validSrc {
			if t := strings.TrimSpace(srcCue.Text); t != "" {
				texts = append(texts, t)
			}
		}
		if validTgt {
			if t := strings.TrimSpace(tgtCue.Text); t != "" {
				texts = append(texts, t)
			}
		}

		interval := unionInterval(srcCue, validSrc, tgtCue, validTgt)
		interval = clampInterval(interval, frame, opts.TotalDuration)

		counter++
		combined = append(combined, Combined{
			Interval: interval,
			// no stray separator when only one side contributes
			Text: strings.Join(texts, Separator),
			ID:   fmt.Sprintf("%s_%d", key, counter),
		})
	}

	sort.SliceStable(combined, func(i, j int) bool {
		return combined[i].Interval.Start < combined[j].Interval.Start
	})

	return combined
}

// builds the id→cue map for one track, appending unseen keys to the
// shared insertion-order list
func indexTrack(track *subtitle.Track, prefix string, keys []string) (map[string]subtitle.Cue, []string) {
	byKey := make(map[string]subtitle.Cue)
	if track == nil {
		return byKey, keys
	}

	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		seen[k] = true
	}

	for i, cue := range track.Cues {
		key := strconv.Itoa(cue.ID)
		if cue.ID == 0 {
			key = fmt.Sprintf("%s_%d", prefix, i)
		}
		if _, dup := byKey[key]; dup {
			// duplicate ids within one track keep the first entry
			continue
		}
		byKey[key] = cue
		if !seen[key] {
			keys = append(keys, key)
			seen[key] = true
		}
	}

	return byKey, keys
}

// sorts keys by their first numeric substring, keeping insertion order
// for keys without one
func sortKeysNumeric(keys []string) {
	sort.SliceStable(keys, func(i, j int) bool {
		ni, iOK := firstNumber(keys[i])
		nj, jOK := firstNumber(keys[j])
		if iOK && jOK {
			return ni < nj
		}
		return false
	})
}

func firstNumber(s string) (int, bool) {
	match := numRegex.FindString(s)
	if match == "" {
		return 0, false
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return n, true
}

// union of the valid sides' intervals: a cue that slightly leads or
// lags its counterpart still yields one display window covering both
func unionInterval(src subtitle.Cue, validSrc bool, tgt subtitle.Cue, validTgt bool) Interval {
	switch {
	case validSrc && validTgt:
		iv := Interval{Start: src.Start, End: src.End}
		if tgt.Start < iv.Start {
			iv.Start = tgt.Start
		}
		if tgt.End > iv.End {
			iv.End = tgt.End
		}
		return iv
	case validSrc:
		return Interval{Start: src.Start, End: src.End}
	default:
		return Interval{Start: tgt.Start, End: tgt.End}
	}
}

func clampInterval(iv Interval, frame, total time.Duration) Interval {
	if iv.Start < 0 {
		iv.Start = 0
	}
	if total > 0 {
		if iv.Start > total {
			iv.Start = total
		}
		if iv.End > total {
			iv.End = total
		}
	}
	if iv.End < iv.Start+frame {
		iv.End = iv.Start + frame
		if total > 0 && iv.End > total {
			iv.End = total
			iv.Start = iv.End - frame
			if iv.Start < 0 {
				iv.Start = 0
			}
		}
	}
	return iv
}
