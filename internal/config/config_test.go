package config

import (
	"os"
	"testing"
	"time"
)

var envVars = []string{
	"CHORDSYNC_PORT", "CHORDSYNC_BACKEND", "GEMINI_API_KEY", "API_KEY",
	"GEMINI_MODEL", "GEMINI_URL", "OLLAMA_URL", "OLLAMA_MODEL",
	"CHORDSYNC_FETCH_TIMEOUT", "CHORDSYNC_PROGRESS_INTERVAL", "CHORDSYNC_FADE_IN",
	"FFMPEG_PATH", "YTDLP_PATH",
}

func TestLoadDefaults(t *testing.T) {
	// Clear any env vars that might interfere
	for _, k := range envVars {
		os.Unsetenv(k)
	}

	cfg := Load()

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.Backend != BackendOllama {
		t.Errorf("Backend = %q, want ollama when no Gemini key is set", cfg.Backend)
	}
	if cfg.GeminiAPIKey != "" {
		t.Errorf("GeminiAPIKey = %q, want empty default", cfg.GeminiAPIKey)
	}
	if cfg.GeminiModel != "gemini-2.5-flash" {
		t.Errorf("GeminiModel = %q, want default", cfg.GeminiModel)
	}
	if cfg.OllamaURL != "http://localhost:11434" {
		t.Errorf("OllamaURL = %q, want default", cfg.OllamaURL)
	}
	if cfg.OllamaModel != "llama3.1" {
		t.Errorf("OllamaModel = %q, want default", cfg.OllamaModel)
	}
	if cfg.FetchTimeout != 60*time.Second {
		t.Errorf("FetchTimeout = %v, want 60s", cfg.FetchTimeout)
	}
	if cfg.ProgressInterval != 250*time.Millisecond {
		t.Errorf("ProgressInterval = %v, want 250ms", cfg.ProgressInterval)
	}
	if cfg.FadeIn != 60*time.Millisecond {
		t.Errorf("FadeIn = %v, want 60ms", cfg.FadeIn)
	}
	if cfg.FFmpegPath != "ffmpeg" {
		t.Errorf("FFmpegPath = %q, want 'ffmpeg'", cfg.FFmpegPath)
	}
	if cfg.YtDlpPath != "yt-dlp" {
		t.Errorf("YtDlpPath = %q, want 'yt-dlp'", cfg.YtDlpPath)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CHORDSYNC_PORT", "3000")
	t.Setenv("CHORDSYNC_BACKEND", "ollama")
	t.Setenv("GEMINI_API_KEY", "test-key-123")
	t.Setenv("GEMINI_MODEL", "gemini-2.5-pro")
	t.Setenv("OLLAMA_URL", "http://gpu-box:11434")
	t.Setenv("OLLAMA_MODEL", "qwen3:32b")
	t.Setenv("CHORDSYNC_FETCH_TIMEOUT", "12.5")
	t.Setenv("CHORDSYNC_PROGRESS_INTERVAL", "100")
	t.Setenv("FFMPEG_PATH", "/usr/local/bin/ffmpeg")
	t.Setenv("YTDLP_PATH", "/opt/yt-dlp")

	cfg := Load()

	if cfg.Port != 3000 {
		t.Errorf("Port = %d, want 3000", cfg.Port)
	}
	if cfg.Backend != BackendOllama {
		t.Errorf("Backend = %q, explicit setting should win over key detection", cfg.Backend)
	}
	if cfg.GeminiAPIKey != "test-key-123" {
		t.Errorf("GeminiAPIKey = %q, want env override", cfg.GeminiAPIKey)
	}
	if cfg.GeminiModel != "gemini-2.5-pro" {
		t.Errorf("GeminiModel = %q, want env override", cfg.GeminiModel)
	}
	if cfg.OllamaURL != "http://gpu-box:11434" {
		t.Errorf("OllamaURL = %q, want env override", cfg.OllamaURL)
	}
	if cfg.OllamaModel != "qwen3:32b" {
		t.Errorf("OllamaModel = %q, want env override", cfg.OllamaModel)
	}
	if cfg.FetchTimeout != 12500*time.Millisecond {
		t.Errorf("FetchTimeout = %v, want 12.5s", cfg.FetchTimeout)
	}
	if cfg.ProgressInterval != 100*time.Millisecond {
		t.Errorf("ProgressInterval = %v, want 100ms", cfg.ProgressInterval)
	}
	if cfg.FFmpegPath != "/usr/local/bin/ffmpeg" {
		t.Errorf("FFmpegPath = %q, want env override", cfg.FFmpegPath)
	}
	if cfg.YtDlpPath != "/opt/yt-dlp" {
		t.Errorf("YtDlpPath = %q, want env override", cfg.YtDlpPath)
	}
}

func TestGeminiKeyPicksBackend(t *testing.T) {
	for _, k := range envVars {
		os.Unsetenv(k)
	}
	t.Setenv("API_KEY", "legacy-key")

	cfg := Load()
	if cfg.GeminiAPIKey != "legacy-key" {
		t.Errorf("GeminiAPIKey = %q, want API_KEY fallback", cfg.GeminiAPIKey)
	}
	if cfg.Backend != BackendGemini {
		t.Errorf("Backend = %q, want gemini when a key is present", cfg.Backend)
	}
}

func TestEnvIntInvalidFallsBack(t *testing.T) {
	t.Setenv("CHORDSYNC_PORT", "not-a-number")
	cfg := Load()
	if cfg.Port != 8080 {
		t.Errorf("Invalid int env should fallback to default: got %d, want 8080", cfg.Port)
	}
}

func TestEnvFloatInvalidFallsBack(t *testing.T) {
	t.Setenv("CHORDSYNC_FETCH_TIMEOUT", "soon")
	cfg := Load()
	if cfg.FetchTimeout != 60*time.Second {
		t.Errorf("Invalid float env should fallback to default: got %v", cfg.FetchTimeout)
	}
}
