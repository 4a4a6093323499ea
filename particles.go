package particlefilter

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Particle is one pose hypothesis: planar position and heading in (-pi, pi].
// It doubles as the pose type for the robot and for estimates.
type Particle struct {
	X       float64
	Y       float64
	Heading float64
}

// Landmark is a fixed, known point observed by range and bearing.
type Landmark struct {
	X float64
	Y float64
}

// Range is a closed interval used by the uniform prior.
type Range struct {
	Min float64
	Max float64
}

// CreateUniformParticles draws n particles with each of x, y and heading
// uniform over its own interval. Headings are wrapped into (-pi, pi].
func CreateUniformParticles(xRange, yRange, headingRange Range, n int, src rand.Source) []Particle {
	particles := make([]Particle, n)

	xs := distuv.Uniform{Min: xRange.Min, Max: xRange.Max, Src: src}
	for i := range particles {
		particles[i].X = xs.Rand()
	}
	ys := distuv.Uniform{Min: yRange.Min, Max: yRange.Max, Src: src}
	for i := range particles {
		particles[i].Y = ys.Rand()
	}
	hs := distuv.Uniform{Min: headingRange.Min, Max: headingRange.Max, Src: src}
	for i := range particles {
		particles[i].Heading = WrapToPi(hs.Rand())
	}

	return particles
}

// CreateGaussianParticles draws n particles around mean with per-dimension
// standard deviations std (x, y, heading).
func CreateGaussianParticles(mean Particle, std [3]float64, n int, src rand.Source) []Particle {
	particles := make([]Particle, n)

	xs := distuv.Normal{Mu: mean.X, Sigma: std[0], Src: src}
	for i := range particles {
		particles[i].X = xs.Rand()
	}
	ys := distuv.Normal{Mu: mean.Y, Sigma: std[1], Src: src}
	for i := range particles {
		particles[i].Y = ys.Rand()
	}
	hs := distuv.Normal{Mu: mean.Heading, Sigma: std[2], Src: src}
	for i := range particles {
		particles[i].Heading = WrapToPi(hs.Rand())
	}

	return particles
}
