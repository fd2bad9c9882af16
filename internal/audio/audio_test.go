package audio

import (
	"testing"
	"time"
)

// --- Constants ---

func TestConstants(t *testing.T) {
	// 48kHz * 20ms = 960 samples per channel
	if got := SampleRate * int(FrameDuration/time.Millisecond) / 1000; got != FrameSize {
		t.Errorf("FrameSize mismatch: want %d, got %d", got, FrameSize)
	}
	if FrameSamples != FrameSize*Channels {
		t.Errorf("FrameSamples = %d, want %d", FrameSamples, FrameSize*Channels)
	}
	if FrameBytes != FrameSamples*2 {
		t.Errorf("FrameBytes = %d, want %d", FrameBytes, FrameSamples*2)
	}
}

// --- FadeIn ---

func TestFadeIn(t *testing.T) {
	frame := []int16{1000, -1000}
	if got := FadeIn(frame, 0); got[0] != 0 || got[1] != 0 {
		t.Errorf("FadeIn(progress=0) = %v, want silence", got)
	}
	if got := FadeIn(frame, 0.5); got[0] != 500 || got[1] != -500 {
		t.Errorf("FadeIn(progress=0.5) = %v, want half gain", got)
	}
	if got := FadeIn(frame, 1); &got[0] != &frame[0] {
		t.Error("FadeIn(progress=1) should return the frame untouched")
	}
}

func TestFadeInRampsUp(t *testing.T) {
	frame := []int16{32767, -32768}
	prev := int16(0)
	for i := 0; i <= 20; i++ {
		got := FadeIn(frame, float64(i)/20)
		if got[0] < prev {
			t.Fatalf("gain dropped at step %d: %d < %d", i, got[0], prev)
		}
		if got[1] > 0 {
			t.Fatalf("step %d flipped sign: %v", i, got)
		}
		prev = got[0]
	}
	if prev != 32767 {
		t.Errorf("final level = %d, want full scale", prev)
	}
}

func TestFadeInLeavesInput(t *testing.T) {
	frame := []int16{1000, 2000, 3000}
	FadeIn(frame, 0.3)
	if frame[0] != 1000 || frame[1] != 2000 || frame[2] != 3000 {
		t.Errorf("input mutated: %v", frame)
	}
	if got := FadeIn(frame, -1); len(got) != 3 || got[0] != 0 {
		t.Errorf("FadeIn(progress<0) = %v, want silence", got)
	}
}

// --- PCM byte conversion ---

func TestBytesToSamplesOddLength(t *testing.T) {
	buf := append(SamplesToBytes([]int16{7, -7}), 0xff)
	got := BytesToSamples(buf)
	if len(got) != 2 || got[0] != 7 || got[1] != -7 {
		t.Errorf("BytesToSamples = %v, want [7 -7]", got)
	}
}

func TestSampleBytesLittleEndian(t *testing.T) {
	samples := []int16{0, 256, -1, 32767, -32768}
	buf := SamplesToBytes(samples)
	if len(buf) != len(samples)*2 {
		t.Fatalf("len = %d, want %d", len(buf), len(samples)*2)
	}
	if buf[2] != 0x00 || buf[3] != 0x01 {
		t.Errorf("256 encoded as [%02x %02x], want [00 01]", buf[2], buf[3])
	}
	back := BytesToSamples(buf)
	for i, v := range samples {
		if back[i] != v {
			t.Errorf("sample[%d] = %d, want %d", i, back[i], v)
		}
	}
}
