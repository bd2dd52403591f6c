package audio_capture

import "fmt"

// DownmixPolicy selects how multi-channel frames are reduced to mono.
type DownmixPolicy string

const (
	// DownmixFirst keeps channel 0 and discards the rest. This is the
	// default: averaging the channels of a multi-mic array can cancel the
	// very phonemes the decoder needs.
	DownmixFirst DownmixPolicy = "first"

	// DownmixAverage averages all channels per sample group.
	DownmixAverage DownmixPolicy = "average"
)

// Valid reports whether p is a recognised policy.
func (p DownmixPolicy) Valid() bool {
	return p == DownmixFirst || p == DownmixAverage
}

// Downmix reduces an interleaved multi-channel frame to mono. Mono frames
// pass through untouched. The frame's byte length must be an exact multiple
// of 2*Channels.
func Downmix(f Frame, policy DownmixPolicy) (Frame, error) {
	if f.Channels <= 0 {
		return Frame{}, fmt.Errorf("downmix: invalid channel count %d", f.Channels)
	}

	stride := 2 * f.Channels
	if len(f.Data)%stride != 0 {
		return Frame{}, fmt.Errorf("downmix: %d bytes is not a multiple of %d-byte sample groups",
			len(f.Data), stride)
	}

	if f.Channels == 1 {
		return f, nil
	}

	groups := len(f.Data) / stride
	out := make([]byte, groups*2)

	switch policy {
	case DownmixAverage:
		for g := 0; g < groups; g++ {
			var sum int32
			base := g * stride
			for ch := 0; ch < f.Channels; ch++ {
				sum += int32(int16(f.Data[base+ch*2]) | int16(f.Data[base+ch*2+1])<<8)
			}
			avg := sum / int32(f.Channels)
			if avg > 32767 {
				avg = 32767
			} else if avg < -32768 {
				avg = -32768
			}
			out[g*2] = byte(avg)
			out[g*2+1] = byte(avg >> 8)
		}

	case DownmixFirst, "":
		for g := 0; g < groups; g++ {
			base := g * stride
			out[g*2] = f.Data[base]
			out[g*2+1] = f.Data[base+1]
		}

	default:
		return Frame{}, fmt.Errorf("downmix: unknown policy %q", policy)
	}

	return Frame{Data: out, SampleRate: f.SampleRate, Channels: 1}, nil
}
