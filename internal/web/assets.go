package web

import (
	"bytes"
	"compress/gzip"
	"embed"
	"fmt"
	"hash/crc32"
	"log"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	"github.com/tdewolff/minify/v2/svg"
)

//go:embed static/*
var staticFS embed.FS

// minifiers maps a view file extension to its media type and minifier.
var minifiers = map[string]struct {
	mediaType string
	fn        minify.MinifierFunc
}{
	".html": {"text/html", html.Minify},
	".css":  {"text/css", css.Minify},
	".js":   {"text/javascript", js.Minify},
	".svg":  {"image/svg+xml", svg.Minify},
}

type file struct {
	body        []byte
	gzipped     []byte
	contentType string
	etag        string
}

// Assets serves the embedded browser view. Every file is minified, gzipped
// and tagged once when Assets is built; requests only pick a variant.
type Assets struct {
	files map[string]*file
}

// NewAssets prepares the files under static/.
func NewAssets() *Assets {
	a := &Assets{files: make(map[string]*file)}

	entries, err := staticFS.ReadDir("static")
	if err != nil {
		log.Printf("[static] cannot read embedded view: %v", err)
		return a
	}

	m := minify.New()
	for _, mn := range minifiers {
		m.AddFunc(mn.mediaType, mn.fn)
	}

	var before, after int
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		raw, err := staticFS.ReadFile("static/" + name)
		if err != nil {
			log.Printf("[static] skipping %s: %v", name, err)
			continue
		}
		f, err := prepare(m, name, raw)
		if err != nil {
			log.Printf("[static] %s served unminified: %v", name, err)
		}
		a.files[name] = f
		before += len(raw)
		after += len(f.body)
	}

	log.Printf("[static] view ready: %d files, %d -> %d bytes", len(a.files), before, after)
	return a
}

// prepare minifies raw when its extension has a minifier. On a minify error
// the original bytes are kept and the error is returned alongside.
func prepare(m *minify.M, name string, raw []byte) (*file, error) {
	ext := path.Ext(name)
	f := &file{body: raw, contentType: mime.TypeByExtension(ext)}
	if f.contentType == "" {
		f.contentType = "application/octet-stream"
	}

	var minErr error
	if mn, ok := minifiers[ext]; ok {
		if out, err := m.Bytes(mn.mediaType, raw); err != nil {
			minErr = err
		} else {
			f.body = out
		}
	}

	var gz bytes.Buffer
	zw, _ := gzip.NewWriterLevel(&gz, gzip.BestCompression)
	zw.Write(f.body)
	zw.Close()
	f.gzipped = gz.Bytes()
	f.etag = fmt.Sprintf(`"%08x"`, crc32.ChecksumIEEE(f.body))

	return f, minErr
}

func (a *Assets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "GET required", http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if name == "" {
		name = "index.html"
	}
	f, ok := a.files[name]
	if !ok {
		http.NotFound(w, r)
		return
	}

	h := w.Header()
	h.Set("Content-Type", f.contentType)
	h.Set("Cache-Control", "no-cache")
	h.Set("ETag", f.etag)
	h.Set("Vary", "Accept-Encoding")

	if r.Header.Get("If-None-Match") == f.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	body := f.body
	if strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
		h.Set("Content-Encoding", "gzip")
		body = f.gzipped
	}
	if r.Method == http.MethodHead {
		return
	}
	w.Write(body)
}
