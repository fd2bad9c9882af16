package audio

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/satindergrewal/chordsync/internal/ytdlp"
)

// Player decodes one source at a time and plays it as real-time PCM frames.
// While playing it reports its position on Progress() every progressInterval.
type Player struct {
	resolver         ytdlp.Resolver
	ffmpegPath       string
	progressInterval time.Duration
	fadeFrames       int

	frameCh    chan []int16
	progressCh chan Progress

	mu      sync.Mutex
	url     string
	samples []int16
	frame   int // next frame index to play
	playing bool
	epoch   uint64
	fadePos int // frames played since the last play/seek
}

// NewPlayer creates a paused player with nothing loaded.
func NewPlayer(resolver ytdlp.Resolver, ffmpegPath string, progressInterval, fadeIn time.Duration) *Player {
	if progressInterval <= 0 {
		progressInterval = DefaultProgressInterval
	}
	return &Player{
		resolver:         resolver,
		ffmpegPath:       ffmpegPath,
		progressInterval: progressInterval,
		fadeFrames:       int(fadeIn / FrameDuration),
		frameCh:          make(chan []int16, 100),
		progressCh:       make(chan Progress, 1),
	}
}

// Frames returns the channel of outgoing PCM frames (20ms each).
func (p *Player) Frames() <-chan []int16 {
	return p.frameCh
}

// Progress returns the position feed. Only the newest report is kept when the reader lags.
func (p *Player) Progress() <-chan Progress {
	return p.progressCh
}

// Load resolves and decodes a source. The player is paused at position 0 afterwards.
func (p *Player) Load(ctx context.Context, url string) error {
	p.Pause()

	src := url
	if p.resolver != nil {
		resolved, err := p.resolver.Resolve(ctx, url)
		if err != nil {
			return fmt.Errorf("resolve source: %w", err)
		}
		src = resolved
	}

	samples, err := DecodeFile(ctx, p.ffmpegPath, src)
	if err != nil {
		return err
	}
	if len(samples) < FrameSamples {
		return fmt.Errorf("source %s has no audio", url)
	}

	p.LoadSamples(url, samples)
	log.Printf("Source loaded: %s (%s)", url, p.Status().Duration.Round(time.Second))
	return nil
}

// LoadSamples installs already-decoded interleaved stereo PCM.
func (p *Player) LoadSamples(url string, samples []int16) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.url = url
	p.samples = samples
	p.frame = 0
	p.playing = false
	p.fadePos = 0
	p.epoch++
}

// Play starts or resumes playback. Playing from the end restarts at 0.
func (p *Player) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.samples == nil {
		return
	}
	if p.frame >= p.totalFrames() {
		p.frame = 0
		p.epoch++
	}
	p.playing = true
	p.fadePos = 0
}

// Pause stops frame output and progress reports.
func (p *Player) Pause() {
	p.mu.Lock()
	p.playing = false
	p.mu.Unlock()
}

// SeekTo moves the play head, clamped to the loaded duration.
func (p *Player) SeekTo(seconds float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	frame := int(seconds / FrameDuration.Seconds())
	if frame < 0 {
		frame = 0
	}
	if total := p.totalFrames(); frame > total {
		frame = total
	}
	p.frame = frame
	p.fadePos = 0
	p.epoch++
}

// Epoch returns the current load/seek generation.
func (p *Player) Epoch() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.epoch
}

// Status returns current playback info.
func (p *Player) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Status{
		URL:      p.url,
		Position: time.Duration(p.frame) * FrameDuration,
		Duration: time.Duration(p.totalFrames()) * FrameDuration,
		Playing:  p.playing,
	}
}

// Run paces frames and progress reports. Blocks until ctx is cancelled.
func (p *Player) Run(ctx context.Context) {
	defer close(p.frameCh)

	frameTicker := time.NewTicker(FrameDuration)
	defer frameTicker.Stop()
	progressTicker := time.NewTicker(p.progressInterval)
	defer progressTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-frameTicker.C:
			frame := p.nextFrame()
			if frame == nil {
				continue
			}
			select {
			case p.frameCh <- frame:
			case <-ctx.Done():
				return
			}
		case <-progressTicker.C:
			p.reportProgress()
		}
	}
}

// nextFrame returns the frame to play now, or nil when paused or finished.
func (p *Player) nextFrame() []int16 {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.playing {
		return nil
	}
	if p.frame >= p.totalFrames() {
		p.playing = false
		log.Printf("Playback finished: %s", p.url)
		return nil
	}

	frame := p.samples[p.frame*FrameSamples : (p.frame+1)*FrameSamples]
	if p.fadePos < p.fadeFrames {
		frame = FadeIn(frame, float64(p.fadePos+1)/float64(p.fadeFrames+1))
		p.fadePos++
	}
	p.frame++
	return frame
}

func (p *Player) reportProgress() {
	p.mu.Lock()
	if !p.playing {
		p.mu.Unlock()
		return
	}
	pr := Progress{
		PlayedSeconds: float64(p.frame) * FrameDuration.Seconds(),
		Epoch:         p.epoch,
	}
	p.mu.Unlock()

	// Replace an unread report rather than block the playback loop.
	select {
	case p.progressCh <- pr:
	default:
		select {
		case <-p.progressCh:
		default:
		}
		select {
		case p.progressCh <- pr:
		default:
		}
	}
}

// totalFrames must be called with mu held.
func (p *Player) totalFrames() int {
	return len(p.samples) / FrameSamples
}
