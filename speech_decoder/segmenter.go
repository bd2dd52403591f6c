package speech_decoder

import (
	"time"

	"winterfresh-listener/ring_buffer"
	"winterfresh-listener/speech_decoder/vad"
)

// fluxRatio is the spectral-flux ratio that marks speech onset (flux jumps
// above lastFlux*ratio) and the return to quiet (flux falls below
// lastFlux/ratio).
const fluxRatio = 1.75

// segmenter finds utterance boundaries in a stream of fixed-size mono
// frames. It keeps a pre-roll ring buffer of the audio heard just before
// onset so the first word of the utterance is not clipped, and force-flushes
// when an utterance exceeds the maximum length so continuous speech cannot
// grow the buffer without bound.
type segmenter struct {
	vad        *vad.VAD
	preRoll    *ring_buffer.Buffer
	quietTime  time.Duration
	maxSamples int

	buf        []int16
	heard      bool
	quiet      bool
	quietStart time.Time
	lastFlux   float64

	now func() time.Time
}

func newSegmenter(frameLen int, quietTime time.Duration, maxSamples int) *segmenter {
	return &segmenter{
		vad:        vad.New(frameLen),
		preRoll:    ring_buffer.New(frameLen),
		quietTime:  quietTime,
		maxSamples: maxSamples,
		now:        time.Now,
	}
}

// Feed consumes one frame and, when an utterance boundary is reached,
// returns the accumulated utterance samples. boundary is false while an
// utterance is still open or nothing has been heard yet.
func (s *segmenter) Feed(frame []int16) (utterance []int16, boundary bool) {
	if !s.heard {
		s.preRoll.Add(frame)
	} else {
		s.buf = append(s.buf, frame...)
		if s.maxSamples > 0 && len(s.buf) >= s.maxSamples {
			return s.flush(), true
		}
	}

	flux := s.vad.Flux(frame)

	if s.lastFlux == 0 {
		s.lastFlux = flux
		return nil, false
	}

	if s.heard {
		if flux*fluxRatio <= s.lastFlux {
			if !s.quiet {
				s.quietStart = s.now()
			} else if s.now().Sub(s.quietStart) > s.quietTime {
				return s.flush(), true
			}
			s.quiet = true
		} else {
			s.quiet = false
			s.lastFlux = flux
		}
		return nil, false
	}

	if flux >= s.lastFlux*fluxRatio {
		s.heard = true
		// Start the utterance with the pre-roll, which already holds the
		// onset frame, so the first word is kept intact.
		s.buf = append(s.buf, s.preRoll.Read()...)
	}
	s.lastFlux = flux

	return nil, false
}

func (s *segmenter) flush() []int16 {
	out := s.buf
	s.buf = nil
	s.heard = false
	s.quiet = false
	s.lastFlux = 0
	s.preRoll.Reset()
	s.vad.Reset()
	return out
}
