package config

import (
	"os"
	"strconv"
	"time"
)

// Generator backends.
const (
	BackendGemini = "gemini"
	BackendOllama = "ollama"
)

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// Config holds all runtime configuration, loaded from environment variables.
type Config struct {
	// Server
	Port int

	// Chord generation
	Backend      string // gemini or ollama
	GeminiAPIKey string
	GeminiModel  string
	GeminiURL    string // optional endpoint override
	OllamaURL    string
	OllamaModel  string
	FetchTimeout time.Duration

	// Playback
	ProgressInterval time.Duration // how often the player reports position while playing
	FadeIn           time.Duration // declick ramp after play/seek
	FFmpegPath       string
	YtDlpPath        string
}

// Load reads configuration from environment variables with sane defaults.
func Load() Config {
	geminiKey := envStr("GEMINI_API_KEY", envStr("API_KEY", ""))

	defaultBackend := BackendOllama
	if geminiKey != "" {
		defaultBackend = BackendGemini
	}

	return Config{
		Port: envInt("CHORDSYNC_PORT", 8080),

		Backend:      envStr("CHORDSYNC_BACKEND", defaultBackend),
		GeminiAPIKey: geminiKey,
		GeminiModel:  envStr("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiURL:    envStr("GEMINI_URL", ""),
		OllamaURL:    envStr("OLLAMA_URL", "http://localhost:11434"),
		OllamaModel:  envStr("OLLAMA_MODEL", "llama3.1"),
		FetchTimeout: time.Duration(envFloat("CHORDSYNC_FETCH_TIMEOUT", 60) * float64(time.Second)),

		ProgressInterval: time.Duration(envInt("CHORDSYNC_PROGRESS_INTERVAL", 250)) * time.Millisecond,
		FadeIn:           time.Duration(envInt("CHORDSYNC_FADE_IN", 60)) * time.Millisecond,
		FFmpegPath:       envStr("FFMPEG_PATH", "ffmpeg"),
		YtDlpPath:        envStr("YTDLP_PATH", "yt-dlp"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
