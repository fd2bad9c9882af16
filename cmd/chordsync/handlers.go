package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/satindergrewal/chordsync/internal/audio"
	"github.com/satindergrewal/chordsync/internal/chords"
	"github.com/satindergrewal/chordsync/internal/display"
	"github.com/satindergrewal/chordsync/internal/song"
	"github.com/satindergrewal/chordsync/internal/stream"
	"github.com/satindergrewal/chordsync/internal/ytdlp"
)

type songRequest struct {
	SongName string `json:"songName"`
}

type songResponse struct {
	Song        song.SongData `json:"song"`
	SyncEnabled bool          `json:"syncEnabled"`
	LoadID      string        `json:"loadId"`
	State       display.State `json:"state"`
}

type sourceRequest struct {
	URL string `json:"url"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

type listenerCounts struct {
	HTTP    int    `json:"http"`
	WebRTC  int    `json:"webrtc"`
	Dropped uint64 `json:"droppedFrames"`
}

type statusResponse struct {
	State       display.State  `json:"state"`
	Source      string         `json:"source"`
	Position    float64        `json:"position"`
	Duration    float64        `json:"duration"`
	Playing     bool           `json:"playing"`
	Listeners   listenerCounts `json:"listeners"`
	Subscribers int            `json:"subscribers"`
}

type playerStatus interface {
	Status() audio.Status
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// generationStatus maps a fetch failure to the HTTP status shown to the view.
func generationStatus(kind chords.Kind) int {
	switch kind {
	case chords.UpstreamUnavailable:
		return http.StatusServiceUnavailable
	case chords.MalformedResponse:
		return http.StatusBadGateway
	case chords.IncompleteResult:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func handleSong(fetcher *chords.Fetcher, session *display.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req songRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		name := strings.TrimSpace(req.SongName)
		if name == "" {
			writeError(w, http.StatusBadRequest, "songName is required")
			return
		}

		data, err := fetcher.Fetch(r.Context(), name)
		if err != nil {
			kind := chords.KindOf(err)
			writeJSON(w, generationStatus(kind), errorResponse{Error: err.Error(), Kind: kind.String()})
			return
		}

		loadID := session.Load(data)
		writeJSON(w, http.StatusOK, songResponse{
			Song:        data,
			SyncEnabled: data.HasTimestamps(),
			LoadID:      loadID,
			State:       session.State(),
		})
	}
}

func handleGetSong(session *display.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		data, ok := session.Song()
		if !ok {
			writeError(w, http.StatusNotFound, "no song loaded")
			return
		}
		st := session.State()
		writeJSON(w, http.StatusOK, songResponse{
			Song:        data,
			SyncEnabled: st.SyncEnabled,
			LoadID:      st.LoadID,
			State:       st,
		})
	}
}

func handleSheet(session *display.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		data, ok := session.Song()
		if !ok {
			http.Error(w, "no song loaded", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if err := display.Render(w, data, session.State().ActiveLineIndex); err != nil {
			log.Printf("Sheet render error: %v", err)
		}
	}
}

func handleSource(session *display.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sourceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		url := strings.TrimSpace(req.URL)
		if url == "" {
			writeError(w, http.StatusBadRequest, "url is required")
			return
		}

		if err := ytdlp.CheckSource(url); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		if err := session.SubmitURL(r.Context(), url); err != nil {
			log.Printf("Source load failed: %v", err)
			writeError(w, http.StatusBadGateway, "could not load the playback source")
			return
		}
		writeJSON(w, http.StatusOK, session.State())
	}
}

func handleToggle(session *display.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if session.State().VideoSourceURL == "" {
			writeError(w, http.StatusConflict, "no playback source loaded")
			return
		}
		session.TogglePlay()
		writeJSON(w, http.StatusOK, session.State())
	}
}

func handleStatus(session *display.Session, player playerStatus, listeners func() listenerCounts) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		ps := player.Status()
		w.Header().Set("Access-Control-Allow-Origin", "*")
		writeJSON(w, http.StatusOK, statusResponse{
			State:       session.State(),
			Source:      ps.URL,
			Position:    ps.Position.Seconds(),
			Duration:    ps.Duration.Seconds(),
			Playing:     ps.Playing,
			Listeners:   listeners(),
			Subscribers: session.SubscriberCount(),
		})
	}
}

// handleEvents streams session events as server-sent events. A new view first
// receives a reset carrying the current state so it can catch up.
func handleEvents(session *display.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming not supported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		sub := session.Subscribe()
		defer session.Unsubscribe(sub)

		if err := writeEvent(w, display.Event{Type: display.EventReset, State: session.State()}); err != nil {
			return
		}
		flusher.Flush()

		for {
			select {
			case <-r.Context().Done():
				return
			case ev := <-sub.C:
				if err := writeEvent(w, ev); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}

func writeEvent(w http.ResponseWriter, ev display.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
	return err
}

// sessionFeed exposes session events as JSON messages for WebRTC data channels.
// Like /api/events, each feed opens with a reset carrying the current state.
func sessionFeed(session *display.Session) stream.EventFeed {
	return func(ctx context.Context) <-chan []byte {
		out := make(chan []byte, 8)
		sub := session.Subscribe()
		first := display.Event{Type: display.EventReset, State: session.State()}
		go func() {
			defer close(out)
			defer session.Unsubscribe(sub)

			send := func(ev display.Event) bool {
				data, err := json.Marshal(ev)
				if err != nil {
					return true
				}
				select {
				case out <- data:
					return true
				case <-ctx.Done():
					return false
				}
			}

			if !send(first) {
				return
			}
			for {
				select {
				case <-ctx.Done():
					return
				case ev := <-sub.C:
					if !send(ev) {
						return
					}
				}
			}
		}()
		return out
	}
}

// nowPlaying names the MP3 stream after the loaded song.
func nowPlaying(session *display.Session) func() string {
	return func() string {
		data, ok := session.Song()
		if !ok {
			return ""
		}
		return data.Artist + " - " + data.SongTitle
	}
}
