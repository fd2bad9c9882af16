package song

import (
	"encoding/json"
	"math"
	"testing"
)

func TestHasTimestamp(t *testing.T) {
	tests := []struct {
		name string
		ts   *float64
		want bool
	}{
		{"nil", nil, false},
		{"zero", Seconds(0), true},
		{"positive", Seconds(12.5), true},
		{"negative", Seconds(-1), false},
		{"nan", Seconds(math.NaN()), false},
		{"inf", Seconds(math.Inf(1)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := LyricLine{Lyrics: "x", Timestamp: tt.ts}
			if got := l.HasTimestamp(); got != tt.want {
				t.Errorf("HasTimestamp() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasTimestamps(t *testing.T) {
	none := SongData{Lines: []LyricLine{{Lyrics: "a"}, {Lyrics: "b", Timestamp: Seconds(-3)}}}
	if none.HasTimestamps() {
		t.Error("HasTimestamps() = true for song without usable timestamps")
	}

	some := SongData{Lines: []LyricLine{{Lyrics: "a"}, {Lyrics: "b", Timestamp: Seconds(4)}}}
	if !some.HasTimestamps() {
		t.Error("HasTimestamps() = false, want true")
	}

	if (SongData{}).HasTimestamps() {
		t.Error("HasTimestamps() = true for empty song")
	}
}

func TestJSONFieldNames(t *testing.T) {
	raw := `{"songTitle":"X","artist":"Y","lines":[{"chords":"G","lyrics":"L1","timestamp":0}]}`
	var s SongData
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		t.Fatal(err)
	}
	if s.SongTitle != "X" || s.Artist != "Y" {
		t.Errorf("got title=%q artist=%q", s.SongTitle, s.Artist)
	}
	if len(s.Lines) != 1 || s.Lines[0].Timestamp == nil || *s.Lines[0].Timestamp != 0 {
		t.Fatalf("lines = %+v", s.Lines)
	}

	out, err := json.Marshal(LyricLine{Lyrics: "no time"})
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"chords":"","lyrics":"no time"}` {
		t.Errorf("Marshal = %s", out)
	}
}

func TestUnmarshalNonNumericTimestamp(t *testing.T) {
	tests := []struct {
		raw  string
		want *float64
	}{
		{`{"chords":"G","lyrics":"a","timestamp":"0:12"}`, nil},
		{`{"chords":"G","lyrics":"a","timestamp":null}`, nil},
		{`{"chords":"G","lyrics":"a","timestamp":{"s":3}}`, nil},
		{`{"chords":"G","lyrics":"a"}`, nil},
		{`{"chords":"G","lyrics":"a","timestamp":12.5}`, Seconds(12.5)},
		{`{"chords":"G","lyrics":"a","timestamp":-3}`, Seconds(-3)},
	}
	for _, tt := range tests {
		var l LyricLine
		if err := json.Unmarshal([]byte(tt.raw), &l); err != nil {
			t.Errorf("Unmarshal(%s) error = %v", tt.raw, err)
			continue
		}
		if l.Chords != "G" || l.Lyrics != "a" {
			t.Errorf("Unmarshal(%s) = %+v, lost text fields", tt.raw, l)
		}
		switch {
		case tt.want == nil && l.Timestamp != nil:
			t.Errorf("Unmarshal(%s) timestamp = %v, want nil", tt.raw, *l.Timestamp)
		case tt.want != nil && (l.Timestamp == nil || *l.Timestamp != *tt.want):
			t.Errorf("Unmarshal(%s) timestamp = %v, want %v", tt.raw, l.Timestamp, *tt.want)
		}
	}
}

func TestUnmarshalLineRejectsNonObject(t *testing.T) {
	var l LyricLine
	if err := json.Unmarshal([]byte(`"just text"`), &l); err == nil {
		t.Error("expected error for a line that is not an object")
	}
}

func TestResponseSchemaRequiredFields(t *testing.T) {
	s := ResponseSchema()
	if s.Type != TypeObject {
		t.Fatalf("root type = %q", s.Type)
	}
	for _, k := range []string{"songTitle", "artist", "lines"} {
		if _, ok := s.Properties[k]; !ok {
			t.Errorf("missing property %q", k)
		}
	}
	lines := s.Properties["lines"]
	if lines.Type != TypeArray || lines.Items == nil {
		t.Fatalf("lines schema = %+v", lines)
	}
	if got := lines.Items.Required; len(got) != 3 {
		t.Errorf("line required = %v, want chords, lyrics, timestamp", got)
	}
	if lines.Items.Properties["timestamp"].Type != TypeNumber {
		t.Error("timestamp should be a number")
	}
}
