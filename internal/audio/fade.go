package audio

// FadeIn scales a frame by a smoothstep gain (3p^2 - 2p^3) so playback ramps up
// from silence after a play or seek. progress runs from 0 (silent) to 1, where
// the frame is returned untouched. The input frame is never modified.
func FadeIn(frame []int16, progress float64) []int16 {
	if progress >= 1 {
		return frame
	}
	out := make([]int16, len(frame))
	if progress <= 0 {
		return out
	}
	gain := progress * progress * (3 - 2*progress)
	for i, s := range frame {
		out[i] = int16(float64(s) * gain)
	}
	return out
}
