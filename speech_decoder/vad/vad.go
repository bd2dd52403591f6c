// Package vad detects voice activity through spectral flux: the magnitude
// spectra of consecutive frames are compared, and a sharp rise marks speech
// onset while a sustained fall marks its end. Flux is robust against steady
// background hum, which barely changes between frames however loud it is.
package vad

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

type VAD struct {
	frameLen int
	prevMags []float64
}

func New(frameLen int) *VAD {
	return &VAD{
		frameLen: frameLen,
	}
}

// Flux returns the spectral flux between this frame and the previous one.
// The first frame, and any frame whose length differs from the configured
// size, yields 0.
func (v *VAD) Flux(samples []int16) float64 {
	if len(samples) == 0 || len(samples) != v.frameLen {
		return 0
	}

	buf := make([]float64, len(samples))
	for i, s := range samples {
		buf[i] = float64(s) / 32768.0
	}

	spectrum := fft.FFTReal(buf)
	half := len(spectrum) / 2
	mags := make([]float64, half)
	for i := 0; i < half; i++ {
		mags[i] = cmplx.Abs(spectrum[i])
	}

	var flux float64
	if v.prevMags != nil {
		for i := range mags {
			d := mags[i] - v.prevMags[i]
			flux += d * d
		}
		flux = math.Sqrt(flux) / float64(half)
	}

	v.prevMags = mags
	return flux
}

// Reset forgets the previous frame's spectrum.
func (v *VAD) Reset() {
	v.prevMags = nil
}
