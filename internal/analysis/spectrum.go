// Package analysis provides frequency-domain diagnostics for metric series.
//
// Metrics sampled once per tick form uniform time series; the spectrum
// surfaces oscillations in them (a cluster breathing around its equilibrium
// spacing, a herd circling its goal) that the time traces hide.
package analysis

import (
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// Spectrum returns the one-sided amplitude spectrum of a uniformly sampled
// series, with bin frequencies in cycles per time unit. The mean is removed
// first so the zero-frequency bin does not mask real peaks.
func Spectrum(series []float64, dt float64) (freqs, amps []float64, err error) {
	if len(series) < 4 {
		return nil, nil, fmt.Errorf("spectrum needs at least 4 samples, got %d", len(series))
	}
	if dt <= 0 {
		return nil, nil, fmt.Errorf("spectrum needs a positive sample step, got %v", dt)
	}

	centered := make([]float64, len(series))
	mean := stat.Mean(series, nil)
	for i, v := range series {
		centered[i] = v - mean
	}

	fft := fourier.NewFFT(len(centered))
	coeffs := fft.Coefficients(nil, centered)

	freqs = make([]float64, len(coeffs))
	amps = make([]float64, len(coeffs))
	norm := 2 / float64(len(centered))
	for i, c := range coeffs {
		freqs[i] = fft.Freq(i) / dt
		amps[i] = cmplx.Abs(c) * norm
	}
	return freqs, amps, nil
}

// DominantFrequency returns the strongest component above zero frequency and
// its amplitude.
func DominantFrequency(series []float64, dt float64) (freq, amp float64, err error) {
	freqs, amps, err := Spectrum(series, dt)
	if err != nil {
		return 0, 0, err
	}
	best := 1
	for i := 2; i < len(amps); i++ {
		if amps[i] > amps[best] {
			best = i
		}
	}
	return freqs[best], amps[best], nil
}
