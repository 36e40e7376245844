package debug

import (
	"fmt"
	"math"
	"strings"
)

// Analyzer inspects rendered sample buffers for the defects that matter in a
// modular rack: clipping against the voltage rails, DC offset, dead outputs
// and NaN propagation from a misbehaving module.
type Analyzer struct {
	// ClipThreshold is the absolute voltage treated as clipping.
	ClipThreshold float32
	// DCThreshold is the magnitude of the buffer mean treated as a DC fault.
	DCThreshold float32
	// SilenceThreshold is the peak below which a buffer counts as silent.
	SilenceThreshold float32
}

// NewAnalyzer returns an analyzer with thresholds for 10 V peak rack levels.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		ClipThreshold:    11.7,
		DCThreshold:      0.1,
		SilenceThreshold: 1e-4,
	}
}

// Report contains the result of analyzing one buffer.
type Report struct {
	Peak           float32
	RMS            float32
	DC             float32
	ClippedSamples int
	Silent         bool
	NaNCount       int
}

// Analyze scans a buffer and returns its report.
func (a *Analyzer) Analyze(buffer []float32) Report {
	var r Report
	if len(buffer) == 0 {
		r.Silent = true
		return r
	}

	var sum, sumSquares float64
	for _, s := range buffer {
		if math.IsNaN(float64(s)) || math.IsInf(float64(s), 0) {
			r.NaNCount++
			continue
		}
		abs := s
		if abs < 0 {
			abs = -abs
		}
		if abs > r.Peak {
			r.Peak = abs
		}
		if abs >= a.ClipThreshold {
			r.ClippedSamples++
		}
		sum += float64(s)
		sumSquares += float64(s) * float64(s)
	}

	n := float64(len(buffer))
	r.DC = float32(sum / n)
	r.RMS = float32(math.Sqrt(sumSquares / n))
	r.Silent = r.Peak < a.SilenceThreshold
	return r
}

// Check returns an error describing every defect found in the buffer, or nil
// if the buffer is clean.
func (a *Analyzer) Check(buffer []float32) error {
	r := a.Analyze(buffer)
	var faults []string
	if r.NaNCount > 0 {
		faults = append(faults, fmt.Sprintf("%d NaN/Inf samples", r.NaNCount))
	}
	if r.ClippedSamples > 0 {
		faults = append(faults, fmt.Sprintf("%d clipped samples (peak %.2f)", r.ClippedSamples, r.Peak))
	}
	dc := r.DC
	if dc < 0 {
		dc = -dc
	}
	if dc > a.DCThreshold {
		faults = append(faults, fmt.Sprintf("DC offset %.4f", r.DC))
	}
	if len(faults) == 0 {
		return nil
	}
	return fmt.Errorf("audio defects: %s", strings.Join(faults, ", "))
}
