package timecode

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Package timecode converts between the three time representations used by
// the pipeline: time.Duration, SRT timestamps (HH:MM:SS,mmm) and the compact
// MM:SS.mmm form exchanged with the generation API.

var (
	srtRegex     = regexp.MustCompile(`^(\d{2,}):(\d{2}):(\d{2}),(\d{3})$`)
	compactRegex = regexp.MustCompile(`^(\d{2,}):(\d{2})\.(\d{3})$`)
)

// formats a duration as an SRT timestamp. Negative input is clamped
// to zero; milliseconds are capped at 999 so rounding never overflows
// into the next second. Hours may exceed 24.
func ToSRT(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	totalMillis := d.Round(time.Millisecond).Milliseconds()
	hours := totalMillis / 3_600_000
	minutes := (totalMillis / 60_000) % 60
	seconds := (totalMillis / 1000) % 60
	millis := totalMillis % 1000
	if millis > 999 {
		millis = 999
	}

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}

// strict inverse of ToSRT
func ParseSRT(s string) (time.Duration, error) {
	matches := srtRegex.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("invalid SRT timestamp %q", s)
	}

	h, _ := strconv.Atoi(matches[1])
	m, _ := strconv.Atoi(matches[2])
	sec, _ := strconv.Atoi(matches[3])
	ms, _ := strconv.Atoi(matches[4])

	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(sec)*time.Second +
		time.Duration(ms)*time.Millisecond, nil
}

// soft variant of ParseSRT: malformed input becomes zero. Callers that
// care about the failure log it and carry on.
func FromSRT(s string) time.Duration {
	d, err := ParseSRT(s)
	if err != nil {
		return 0
	}
	return d
}

// formats a duration in the compact MM:SS.mmm form requested from the
// generation API. No hour component; minutes grow past 59 as needed.
func ToCompact(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	totalMillis := d.Round(time.Millisecond).Milliseconds()
	minutes := totalMillis / 60_000
	seconds := (totalMillis / 1000) % 60
	millis := totalMillis % 1000
	if millis > 999 {
		millis = 999
	}

	return fmt.Sprintf("%02d:%02d.%03d", minutes, seconds, millis)
}

// strict inverse of ToCompact. Input that misses the pattern is retried
// as plain float seconds, which the API occasionally emits.
func ParseCompact(s string) (time.Duration, error) {
	matches := compactRegex.FindStringSubmatch(s)
	if matches != nil {
		m, _ := strconv.Atoi(matches[1])
		sec, _ := strconv.Atoi(matches[2])
		ms, _ := strconv.Atoi(matches[3])

		return time.Duration(m)*time.Minute +
			time.Duration(sec)*time.Second +
			time.Duration(ms)*time.Millisecond, nil
	}

	if seconds, err := strconv.ParseFloat(s, 64); err == nil && seconds >= 0 {
		return time.Duration(seconds * float64(time.Second)), nil
	}

	return 0, fmt.Errorf("invalid compact timestamp %q", s)
}

// soft variant of ParseCompact: malformed input becomes zero
func FromCompact(s string) time.Duration {
	d, err := ParseCompact(s)
	if err != nil {
		return 0
	}
	return d
}
