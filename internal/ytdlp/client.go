package ytdlp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"strings"
)

// Resolver turns a user-submitted source URL into something ffmpeg can read.
type Resolver interface {
	Resolve(ctx context.Context, sourceURL string) (string, error)
}

// CommandClient implements Resolver by calling the yt-dlp binary for YouTube pages.
// Other URLs and local paths pass through unchanged.
type CommandClient struct {
	// BinaryPath is the path to the yt-dlp executable. Defaults to "yt-dlp".
	BinaryPath string
}

// NewClient creates a new yt-dlp CommandClient.
func NewClient(binaryPath string) *CommandClient {
	return &CommandClient{BinaryPath: binaryPath}
}

// ErrUnsupportedSource is returned for sources that are not http(s) URLs.
// Local paths and other ffmpeg protocols (file:, pipe:, concat:) are refused.
var ErrUnsupportedSource = errors.New("source must be an http or https URL")

// CheckSource reports whether sourceURL may be handed to the decoder.
func CheckSource(sourceURL string) error {
	u, err := url.Parse(sourceURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupportedSource, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return ErrUnsupportedSource
	}
	return nil
}

// Resolve returns a direct audio stream URL for YouTube links and passes other
// http(s) URLs through.
func (c *CommandClient) Resolve(ctx context.Context, sourceURL string) (string, error) {
	if err := CheckSource(sourceURL); err != nil {
		return "", err
	}
	if !IsYouTubeURL(sourceURL) {
		return sourceURL, nil
	}

	bin := c.BinaryPath
	if bin == "" {
		bin = "yt-dlp"
	}

	// Playlist and start-time parameters are dropped; playback always starts at 0.
	target := sourceURL
	if id, err := VideoID(sourceURL); err == nil {
		target = "https://www.youtube.com/watch?v=" + url.QueryEscape(id)
	}

	args := []string{"--no-warnings", "--no-playlist", "-f", "bestaudio/best", "--get-url", target}
	cmd := exec.CommandContext(ctx, bin, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("yt-dlp failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	return firstURL(stdout.String())
}

// firstURL picks the first non-empty line of yt-dlp --get-url output.
func firstURL(out string) (string, error) {
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line, nil
		}
	}
	return "", fmt.Errorf("yt-dlp returned no stream URL")
}

var youtubeHosts = []string{"youtube.com", "youtu.be", "youtube-nocookie.com"}

// isYouTubeHost matches a YouTube domain or one of its subdomains.
func isYouTubeHost(host string) bool {
	host = strings.ToLower(host)
	for _, h := range youtubeHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// IsYouTubeURL reports whether s points at a YouTube page.
func IsYouTubeURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return isYouTubeHost(u.Hostname())
}

// VideoID extracts the video ID from the common YouTube URL shapes.
func VideoID(youtubeURL string) (string, error) {
	u, err := url.Parse(youtubeURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}

	host := strings.ToLower(u.Hostname())
	if host == "youtu.be" {
		if id := strings.TrimPrefix(u.Path, "/"); id != "" {
			return id, nil
		}
		return "", fmt.Errorf("no video ID found in youtu.be URL")
	}

	if isYouTubeHost(host) {
		if strings.HasPrefix(u.Path, "/watch") {
			if id := u.Query().Get("v"); id != "" {
				return id, nil
			}
		}
		for _, prefix := range []string{"/embed/", "/v/", "/shorts/"} {
			if strings.HasPrefix(u.Path, prefix) {
				if id := strings.TrimPrefix(u.Path, prefix); id != "" {
					return id, nil
				}
			}
		}
	}

	return "", fmt.Errorf("unable to extract video ID from URL: %s", youtubeURL)
}
