package transcribe

import (
	"strings"

	"github.com/zemerlab/zemer/internal/subtitle"
	"github.com/zemerlab/zemer/internal/timecode"
)

// transcription options
type Options struct {
	Language string // source language of the audio
	Model    string
	Lyrics   string // known lyrics, appended as an accuracy hint
}

// cue as exchanged with the generation API: compact MM:SS.mmm timestamps
type wireCue struct {
	ID        int    `json:"id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Text      string `json:"text"`
}

// converts API cues into a track, repairing timing as needed
func toTrack(cues []wireCue, language string) *subtitle.Track {
	track := &subtitle.Track{Language: language}
	for i, wc := range cues {
		id := wc.ID
		if id == 0 {
			id = i + 1
		}
		cue := subtitle.Cue{
			ID:    id,
			Start: timecode.FromCompact(wc.StartTime),
			End:   timecode.FromCompact(wc.EndTime),
			Text:  strings.TrimSpace(wc.Text),
		}
		if cue.End <= cue.Start {
			cue.End = cue.Start + subtitle.MinCueDuration
		}
		track.Cues = append(track.Cues, cue)
	}
	return track
}
