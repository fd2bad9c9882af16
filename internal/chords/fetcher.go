package chords

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/satindergrewal/chordsync/internal/song"
)

// Generator produces schema-constrained JSON text for a prompt.
type Generator interface {
	GenerateJSON(ctx context.Context, prompt string, schema *song.Schema) (string, error)
}

// Fetcher turns a song name into validated chord sheet data.
type Fetcher struct {
	gen     Generator
	timeout time.Duration
}

// NewFetcher creates a fetcher. A zero timeout leaves the deadline to the caller's context.
func NewFetcher(gen Generator, timeout time.Duration) *Fetcher {
	return &Fetcher{gen: gen, timeout: timeout}
}

// Fetch asks the generator for one song. Every failure is a *GenerationError.
// There are no retries; each call is a single request.
func (f *Fetcher) Fetch(ctx context.Context, songName string) (song.SongData, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	raw, err := f.gen.GenerateJSON(ctx, BuildPrompt(songName), song.ResponseSchema())
	if err != nil {
		log.Printf("Chord generation failed for %q: %v", songName, err)
		return song.SongData{}, &GenerationError{Kind: UpstreamUnavailable, Err: err}
	}

	data, err := Parse(raw)
	if err != nil {
		log.Printf("Chord response for %q rejected: %v", songName, err)
		return song.SongData{}, err
	}

	log.Printf("Chords ready: %s - %s (%d lines)", data.Artist, data.SongTitle, len(data.Lines))
	return data, nil
}

// Parse decodes and validates generator output.
func Parse(raw string) (song.SongData, error) {
	var data song.SongData
	if err := json.Unmarshal([]byte(cleanResponse(raw)), &data); err != nil {
		return song.SongData{}, &GenerationError{Kind: MalformedResponse, Err: err}
	}

	var missing []string
	if strings.TrimSpace(data.SongTitle) == "" {
		missing = append(missing, "songTitle")
	}
	if strings.TrimSpace(data.Artist) == "" {
		missing = append(missing, "artist")
	}
	if len(data.Lines) == 0 {
		missing = append(missing, "lines")
	}
	if len(missing) > 0 {
		return song.SongData{}, &GenerationError{
			Kind: IncompleteResult,
			Err:  fmt.Errorf("missing %s", strings.Join(missing, ", ")),
		}
	}
	return data, nil
}
