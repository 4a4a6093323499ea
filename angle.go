package particlefilter

import "math"

// WrapToPi wraps an angle in radians into (-pi, pi].
func WrapToPi(d float64) float64 {
	d = math.Mod(d, 2*math.Pi)
	if d < 0 {
		d += 2 * math.Pi
	}
	if d > math.Pi {
		d -= 2 * math.Pi
	}
	return d
}

// WrapToPiN wraps every angle of d in place and returns d.
func WrapToPiN(d []float64) []float64 {
	for i := range d {
		d[i] = WrapToPi(d[i])
	}
	return d
}
