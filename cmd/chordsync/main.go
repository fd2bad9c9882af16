package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/satindergrewal/chordsync/internal/audio"
	"github.com/satindergrewal/chordsync/internal/chords"
	"github.com/satindergrewal/chordsync/internal/config"
	"github.com/satindergrewal/chordsync/internal/display"
	"github.com/satindergrewal/chordsync/internal/gemini"
	"github.com/satindergrewal/chordsync/internal/ollama"
	"github.com/satindergrewal/chordsync/internal/stream"
	"github.com/satindergrewal/chordsync/internal/web"
	"github.com/satindergrewal/chordsync/internal/ytdlp"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env loaded, using process environment")
	}
	cfg := config.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Println("chordsync starting up...")

	gen, err := newGenerator(ctx, cfg)
	if err != nil {
		log.Fatalf("Chord generator not available: %v", err)
	}
	fetcher := chords.NewFetcher(gen, cfg.FetchTimeout)

	// Playback widget
	player := audio.NewPlayer(ytdlp.NewClient(cfg.YtDlpPath), cfg.FFmpegPath, cfg.ProgressInterval, cfg.FadeIn)
	go player.Run(ctx)

	// Broadcaster: fan-out PCM frames to all listeners
	broadcaster := stream.NewBroadcaster()
	go broadcaster.Run(ctx, player.Frames())

	session := display.NewSession(player)
	go session.Run(ctx)

	webrtcHandler := stream.NewWebRTCHandler(broadcaster, sessionFeed(session))

	mux := http.NewServeMux()
	mux.Handle("/", web.NewAssets())
	mux.Handle("/stream", stream.NewHTTPHandler(broadcaster, cfg.FFmpegPath, nowPlaying(session)))
	mux.Handle("/offer", webrtcHandler)

	mux.HandleFunc("POST /api/song", handleSong(fetcher, session))
	mux.HandleFunc("GET /api/song", handleGetSong(session))
	mux.HandleFunc("GET /api/sheet", handleSheet(session))
	mux.HandleFunc("POST /api/source", handleSource(session))
	mux.HandleFunc("POST /api/playback/toggle", handleToggle(session))
	mux.HandleFunc("GET /api/status", handleStatus(session, player, func() listenerCounts {
		return listenerCounts{
			HTTP:    broadcaster.ListenerCount(),
			WebRTC:  webrtcHandler.PeerCount(),
			Dropped: broadcaster.Dropped(),
		}
	}))
	mux.HandleFunc("GET /api/events", handleEvents(session))

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		log.Println("Shutting down...")
		server.Close()
	}()

	log.Printf("chordsync live on %s (backend: %s)", addr, cfg.Backend)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("HTTP server error: %v", err)
	}
}

// newGenerator builds the chord backend selected by cfg.Backend.
func newGenerator(ctx context.Context, cfg config.Config) (chords.Generator, error) {
	switch cfg.Backend {
	case config.BackendGemini:
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiURL)
		if err != nil {
			return nil, err
		}
		log.Printf("Gemini configured: %s", client.Model())
		return client, nil

	case config.BackendOllama:
		client := ollama.NewClient(cfg.OllamaURL, cfg.OllamaModel)
		readyCtx, readyCancel := context.WithTimeout(ctx, 30*time.Second)
		defer readyCancel()
		if client.WaitForReady(readyCtx) {
			log.Printf("Ollama connected: %s", client.Model())
		} else {
			log.Printf("Ollama not reachable at %s, song requests will fail until it is", cfg.OllamaURL)
		}
		return client, nil
	}
	return nil, fmt.Errorf("unknown backend %q (want %s or %s)", cfg.Backend, config.BackendGemini, config.BackendOllama)
}
