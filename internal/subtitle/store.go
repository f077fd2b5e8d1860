package subtitle

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/zemerlab/zemer/internal/logging"
	"github.com/zemerlab/zemer/internal/timecode"
)

// Store persists tracks as SRT files and parses them back. Parsing is
// deliberately tolerant: the files it reads come from an LLM round trip
// or from hand edits during review, not from well-behaved encoders.
type Store struct {
	log *logging.Logger
}

func NewStore(log *logging.Logger) *Store {
	return &Store{log: log}
}

var timingRegex = regexp.MustCompile(
	`(\d{2,}:\d{2}:\d{2},\d{3})\s*-->\s*(\d{2,}:\d{2}:\d{2},\d{3})`,
)

// Load reads an SRT file into a track. An absent file returns (nil, nil)
// so callers can distinguish "generate this" from "valid empty track".
// Comment lines starting with # are skipped, missing numeric ids are
// regenerated sequentially, and blocks without a timing line are dropped
// with a warning. Cues with end <= start are repaired to MinCueDuration.
func (s *Store) Load(path string) (*Track, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open SRT file: %w", err)
	}
	defer file.Close()

	track := &Track{Cues: []Cue{}}
	scanner := bufio.NewScanner(file)

	var block []string
	lineNum := 0
	nextID := 1

	flush := func() {
		if len(block) == 0 {
			return
		}
		cue, ok := s.parseBlock(path, block, nextID)
		if ok {
			track.Cues = append(track.Cues, cue)
			nextID = cue.ID + 1
		}
		block = nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		lineNum++
		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}

		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}

		block = append(block, line)
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading SRT file: %w", err)
	}

	return track, nil
}

// parses one blank-line-delimited block; ok is false when the block has
// no valid timing line
func (s *Store) parseBlock(path string, block []string, fallbackID int) (Cue, bool) {
	cue := Cue{ID: fallbackID}

	i := 0
	if id, err := strconv.Atoi(strings.TrimSpace(block[0])); err == nil {
		cue.ID = id
		i = 1
	}

	timingFound := false
	for ; i < len(block); i++ {
		matches := timingRegex.FindStringSubmatch(block[i])
		if matches != nil {
			cue.Start = timecode.FromSRT(matches[1])
			cue.End = timecode.FromSRT(matches[2])
			timingFound = true
			i++
			break
		}
	}

	if !timingFound {
		s.log.Warnw("Skipping SRT block without timing line",
			"file", filepath.Base(path),
			"block", strings.Join(block, " / "),
		)
		return Cue{}, false
	}

	if cue.End <= cue.Start {
		s.log.Warnw("Repairing cue with non-positive duration",
			"file", filepath.Base(path),
			"id", cue.ID,
		)
		cue.End = cue.Start + MinCueDuration
	}

	cue.Text = strings.Join(block[i:], "\n")
	return cue, true
}

// Save writes the track as SRT. An empty or nil track writes nothing.
// Failures are logged and returned; callers treat them as non-fatal.
func (s *Store) Save(path string, track *Track) error {
	if track == nil || len(track.Cues) == 0 {
		s.log.Debugw("Skipping save of empty track", "path", path)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		s.log.Errorw("Failed to create subtitle directory", "path", path, "error", err)
		return err
	}

	var sb strings.Builder
	for _, cue := range track.Cues {
		sb.WriteString(fmt.Sprintf("%d\n", cue.ID))
		sb.WriteString(fmt.Sprintf("%s --> %s\n",
			timecode.ToSRT(cue.Start),
			timecode.ToSRT(cue.End)))
		sb.WriteString(cue.Text)
		sb.WriteString("\n\n")
	}

	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		s.log.Errorw("Failed to write SRT file", "path", path, "error", err)
		return err
	}

	return nil
}
