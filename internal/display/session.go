package display

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/satindergrewal/chordsync/internal/audio"
	"github.com/satindergrewal/chordsync/internal/song"
)

// Player is the playback widget the session drives.
type Player interface {
	Load(ctx context.Context, url string) error
	Play()
	Pause()
	SeekTo(seconds float64)
	Epoch() uint64
	Progress() <-chan audio.Progress
}

// State is a snapshot of the session for views.
type State struct {
	LoadID          string  `json:"loadId"`
	Loaded          bool    `json:"loaded"`
	SyncEnabled     bool    `json:"syncEnabled"`
	VideoSourceURL  string  `json:"videoSourceUrl"`
	IsPlaying       bool    `json:"isPlaying"`
	PlayedSeconds   float64 `json:"playedSeconds"`
	ActiveLineIndex int     `json:"activeLineIndex"`
}

// Session owns the display state of one song and its playback sync.
type Session struct {
	player Player

	mu              sync.Mutex
	song            *song.SongData
	loadID          string
	videoSourceURL  string
	isPlaying       bool
	playedSeconds   float64
	activeLineIndex int
	minEpoch        uint64 // progress older than this predates the last reset

	events *hub
}

// NewSession creates an empty session bound to a player.
func NewSession(player Player) *Session {
	return &Session{
		player:          player,
		activeLineIndex: -1,
		events:          newHub(),
	}
}

// Load installs a new song and resets all playback and scroll state.
// The player seek and epoch capture happen under the same lock as the reset,
// so a progress report from the previous song can never be applied to this one.
func (s *Session) Load(data song.SongData) string {
	s.mu.Lock()
	s.song = &data
	s.loadID = uuid.NewString()
	s.activeLineIndex = -1
	s.playedSeconds = 0
	s.player.SeekTo(0)
	s.minEpoch = s.player.Epoch()
	st := s.stateLocked()
	s.mu.Unlock()

	log.Printf("Song loaded: %s - %s (%d lines, sync: %v)", data.Artist, data.SongTitle, len(data.Lines), st.SyncEnabled)
	s.events.publish(Event{Type: EventReset, State: st})
	return st.LoadID
}

// Song returns the loaded song, if any.
func (s *Session) Song() (song.SongData, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.song == nil {
		return song.SongData{}, false
	}
	return *s.song, true
}

// HasTimestamps reports whether the loaded song can drive playback sync.
func (s *Session) HasTimestamps() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.song != nil && s.song.HasTimestamps()
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	return State{
		LoadID:          s.loadID,
		Loaded:          s.song != nil,
		SyncEnabled:     s.song != nil && s.song.HasTimestamps(),
		VideoSourceURL:  s.videoSourceURL,
		IsPlaying:       s.isPlaying,
		PlayedSeconds:   s.playedSeconds,
		ActiveLineIndex: s.activeLineIndex,
	}
}

// SubmitURL loads a new playback source. Loading always leaves playback paused.
func (s *Session) SubmitURL(ctx context.Context, url string) error {
	s.mu.Lock()
	s.videoSourceURL = url
	s.isPlaying = false
	s.player.Pause()
	st := s.stateLocked()
	s.mu.Unlock()

	s.events.publish(Event{Type: EventState, State: st})

	if err := s.player.Load(ctx, url); err != nil {
		return fmt.Errorf("load %s: %w", url, err)
	}
	return nil
}

// TogglePlay flips play/pause and passes it to the player.
// Position and active line only change once new progress arrives.
func (s *Session) TogglePlay() bool {
	s.mu.Lock()
	s.isPlaying = !s.isPlaying
	if s.isPlaying {
		s.player.Play()
	} else {
		s.player.Pause()
	}
	st := s.stateLocked()
	s.mu.Unlock()

	s.events.publish(Event{Type: EventState, State: st})
	return st.IsPlaying
}

// OnProgress applies one position report from the player.
func (s *Session) OnProgress(p audio.Progress) {
	s.mu.Lock()
	if !s.isPlaying || s.song == nil || p.Epoch < s.minEpoch {
		s.mu.Unlock()
		return
	}

	s.playedSeconds = p.PlayedSeconds
	idx := ActiveLine(s.song.Lines, p.PlayedSeconds)
	if idx == s.activeLineIndex {
		s.mu.Unlock()
		return
	}
	s.activeLineIndex = idx
	st := s.stateLocked()
	s.mu.Unlock()

	s.events.publish(Event{Type: EventActive, State: st, Scroll: idx >= 0})
}

// Run consumes the player's progress feed until ctx is cancelled.
func (s *Session) Run(ctx context.Context) {
	feed := s.player.Progress()
	for {
		select {
		case <-ctx.Done():
			return
		case p, ok := <-feed:
			if !ok {
				return
			}
			s.OnProgress(p)
		}
	}
}

// Subscribe registers a view for session events.
func (s *Session) Subscribe() *Subscriber {
	return s.events.subscribe()
}

// Unsubscribe removes a view.
func (s *Session) Unsubscribe(sub *Subscriber) {
	s.events.unsubscribe(sub)
}

// SubscriberCount returns the number of connected views.
func (s *Session) SubscriberCount() int {
	return s.events.count()
}

// ActiveLine returns the index of the latest line whose timestamp is at or
// before playedSeconds, scanning from the end. Lines without a usable
// timestamp are skipped. Returns -1 before the first timed line.
func ActiveLine(lines []song.LyricLine, playedSeconds float64) int {
	for i := len(lines) - 1; i >= 0; i-- {
		if lines[i].HasTimestamp() && *lines[i].Timestamp <= playedSeconds {
			return i
		}
	}
	return -1
}
