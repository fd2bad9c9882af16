package song

import (
	"bytes"
	"encoding/json"
	"math"
)

// LyricLine is one rendering unit: a chord row aligned above a lyric row.
type LyricLine struct {
	Chords    string   `json:"chords"`
	Lyrics    string   `json:"lyrics"`
	Timestamp *float64 `json:"timestamp,omitempty"` // seconds from playback start
}

// UnmarshalJSON decodes a line, treating a timestamp that is not a JSON
// number (models sometimes emit "0:12") as absent.
func (l *LyricLine) UnmarshalJSON(b []byte) error {
	var raw struct {
		Chords    string          `json:"chords"`
		Lyrics    string          `json:"lyrics"`
		Timestamp json.RawMessage `json:"timestamp"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	*l = LyricLine{Chords: raw.Chords, Lyrics: raw.Lyrics}
	if len(raw.Timestamp) == 0 || bytes.Equal(raw.Timestamp, []byte("null")) {
		return nil
	}
	var ts float64
	if err := json.Unmarshal(raw.Timestamp, &ts); err == nil {
		l.Timestamp = &ts
	}
	return nil
}

// SongData is one generated chord sheet. Lines are in playback order.
type SongData struct {
	SongTitle string      `json:"songTitle"`
	Artist    string      `json:"artist"`
	Lines     []LyricLine `json:"lines"`
}

// HasTimestamp reports whether the line carries a usable start time.
// Negative and non-finite values count as absent.
func (l LyricLine) HasTimestamp() bool {
	if l.Timestamp == nil {
		return false
	}
	ts := *l.Timestamp
	return ts >= 0 && !math.IsNaN(ts) && !math.IsInf(ts, 0)
}

// HasTimestamps reports whether at least one line can drive playback sync.
func (s SongData) HasTimestamps() bool {
	for _, l := range s.Lines {
		if l.HasTimestamp() {
			return true
		}
	}
	return false
}

// Seconds returns a pointer to v, for building lines in code and tests.
func Seconds(v float64) *float64 {
	return &v
}
