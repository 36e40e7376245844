// Package gain provides amplitude helpers for rack modules.
package gain

import "math"

// MinDB is the floor treated as silence in dB conversions.
const MinDB = -120.0

// DBToLinear converts decibels to a linear gain factor. Values at or below
// MinDB return 0.
func DBToLinear(db float32) float32 {
	if db <= MinDB {
		return 0
	}
	return float32(math.Pow(10, float64(db)/20))
}

// LinearToDB converts a linear gain factor to decibels. Non-positive values
// return MinDB.
func LinearToDB(linear float32) float32 {
	if linear <= 0 {
		return MinDB
	}
	return 20 * float32(math.Log10(float64(linear)))
}

// Apply scales every sample in buf by the gain factor.
func Apply(buf []float32, gain float32) {
	for i := range buf {
		buf[i] *= gain
	}
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
