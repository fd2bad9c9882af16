package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/satindergrewal/chordsync/internal/song"
)

func TestGenerateJSONSendsSchema(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"response": "  {\"songTitle\":\"X\"}\n",
			"done":     true,
		})
	}))
	defer server.Close()

	c := NewClient(server.URL+"/", "llama3.1")
	text, err := c.GenerateJSON(context.Background(), "Analyze the song", song.ResponseSchema())
	if err != nil {
		t.Fatalf("GenerateJSON() error = %v", err)
	}
	if text != `{"songTitle":"X"}` {
		t.Errorf("text = %q, want trimmed response", text)
	}

	if got["model"] != "llama3.1" {
		t.Errorf("model = %v", got["model"])
	}
	if got["stream"] != false {
		t.Errorf("stream = %v, want false", got["stream"])
	}
	if got["prompt"] != "Analyze the song" {
		t.Errorf("prompt = %v", got["prompt"])
	}
	format, ok := got["format"].(map[string]any)
	if !ok {
		t.Fatalf("format = %T, want JSON schema object", got["format"])
	}
	if format["type"] != "object" {
		t.Errorf("format.type = %v", format["type"])
	}
	req, _ := format["required"].([]any)
	if len(req) != 3 {
		t.Errorf("format.required = %v", format["required"])
	}
}

func TestGenerateNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	c := NewClient(server.URL, "missing")
	_, err := c.GenerateJSON(context.Background(), "p", song.ResponseSchema())
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("error = %v, want status code in message", err)
	}
}

func TestGenerateErrorField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"error": "out of memory"})
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "m").Generate(context.Background(), "", "p", nil)
	if err == nil || !strings.Contains(err.Error(), "out of memory") {
		t.Errorf("error = %v, want ollama error message", err)
	}
}

func TestGenerateOmitsNilFormat(t *testing.T) {
	var raw map[string]json.RawMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&raw)
		json.NewEncoder(w).Encode(map[string]any{"response": "ok", "done": true})
	}))
	defer server.Close()

	if _, err := NewClient(server.URL, "m").Generate(context.Background(), "sys", "p", nil); err != nil {
		t.Fatal(err)
	}
	if _, ok := raw["format"]; ok {
		t.Error("format should be omitted when nil")
	}
	if string(raw["system"]) != `"sys"` {
		t.Errorf("system = %s", raw["system"])
	}
}

func TestAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			w.Write([]byte(`{"models":[]}`))
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	c := NewClient(server.URL, "m")
	if !c.Available(context.Background()) {
		t.Error("Available() = false, want true")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if !c.WaitForReady(ctx) {
		t.Error("WaitForReady() = false for reachable server")
	}

	down := NewClient("http://127.0.0.1:1", "m")
	if down.Available(context.Background()) {
		t.Error("Available() = true for unreachable server")
	}
}
