package util

import (
	"math"
	"math/rand"
	"sort"

	"github.com/fogleman/ease"
)

// RandomHue returns a hue in degrees, uniformly distributed over [0, 360).
func RandomHue() float64 {
	return rand.Float64() * 360.0
}

// GenerateLut builds a symmetric gain table of the given length that eases from 0 up towards
// peak in the middle and back down.
func GenerateLut(length int, peak float64) []float64 {
	lut := make([]float64, length)
	half := length / 2
	if half == 0 {
		return lut
	}
	for i := range lut {
		// Distance from the nearer end.
		d := i
		if mirror := length - 1 - i; mirror < d {
			d = mirror
		}
		lut[i] = peak * ease.InOutQuad(math.Min(1, float64(d)/float64(half)))
	}
	return lut
}

// Arange returns evenly spaced samples in [start, stop) separated by step.
func Arange(start, stop, step float64) []float64 {
	if step <= 0 || stop <= start {
		return nil
	}

	// Guard against 1/0.01 landing a hair above 100
	n := int(math.Ceil((stop-start)/step - 1e-9))
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = start + float64(i)*step
	}
	return samples
}

// Interp linearly interpolates x against the monotonically increasing sample points xp
// with values fp. Points outside the sampled domain take the nearest boundary value.
// NaN maps to the first value.
func Interp(x float64, xp, fp []float64) float64 {
	last := len(xp) - 1
	if last < 0 {
		return x
	}
	if math.IsNaN(x) || x <= xp[0] {
		return fp[0]
	}
	if x >= xp[last] {
		return fp[last]
	}

	i := sort.SearchFloat64s(xp, x)
	if xp[i] == x {
		return fp[i]
	}

	t := (x - xp[i-1]) / (xp[i] - xp[i-1])
	return fp[i-1] + t*(fp[i]-fp[i-1])
}

// InterpUniform is Interp for the evenly spaced sample points x0, x0+step, x0+2*step, ...
// It indexes the table directly.
func InterpUniform(x, x0, step float64, fp []float64) float64 {
	last := len(fp) - 1
	if last < 0 {
		return x
	}
	if math.IsNaN(x) || x <= x0 {
		return fp[0]
	}

	pos := (x - x0) / step
	if pos >= float64(last) {
		return fp[last]
	}
	i := int(pos)
	t := pos - float64(i)
	return fp[i] + t*(fp[i+1]-fp[i])
}
