package audio

import "time"

const (
	SampleRate    = 48000
	Channels      = 2
	BitDepth      = 16
	FrameDuration = 20 * time.Millisecond
	FrameSize     = 960                  // samples per channel per 20ms frame
	FrameSamples  = FrameSize * Channels // total interleaved samples per frame
	FrameBytes    = FrameSamples * 2     // bytes per frame (int16 = 2 bytes)
)

// DefaultProgressInterval is how often a playing Player reports its position.
const DefaultProgressInterval = 250 * time.Millisecond

// Progress is one position report from the player.
// Epoch increments on every load and seek so consumers can drop reports
// that were produced before a jump.
type Progress struct {
	PlayedSeconds float64
	Epoch         uint64
}

// Status is a snapshot of the player.
type Status struct {
	URL      string        `json:"url"`
	Position time.Duration `json:"position"`
	Duration time.Duration `json:"duration"`
	Playing  bool          `json:"playing"`
}
