package particlefilter

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// InitialStd is the spread (x, y, heading) of the Gaussian prior CreatePF
// draws around the starting pose.
var InitialStd = [3]float64{0.1, 0.1, 0.1}

// DefaultResampleThreshold is the fraction of N below which Step
// resamples.
const DefaultResampleThreshold = 0.7

// weightFloor keeps weights off zero when every likelihood underflows.
const weightFloor = 1e-300

// Control is the motion command for one time step.
type Control struct {
	Velocity float64 // forward speed
	TurnRate float64 // heading rate, rad/s
}

// ParticleFilter estimates a planar pose from range and bearing observations
// of known landmarks.
type ParticleFilter struct {
	Dt float64

	// ResampleThreshold and Resampler drive the resampling decision in Step.
	ResampleThreshold float64
	Resampler         Resampler

	particles  []Particle
	weights    []float64
	landmarks  []Landmark
	q          [3]float64
	likelihood *Likelihood
	src        rand.Source

	iteration     int
	resampleSteps []int
}

// CreatePF creates a particle filter with numSamps particles spread around
// robot. q holds the process noise standard deviations (forward velocity on
// x, forward velocity on y, turn rate) and r the range and bearing
// measurement variances. A nil src draws from the global source.
func CreatePF(numSamps int, landmarks []Landmark, q, r []float64, robot Particle, dt float64, src rand.Source) (*ParticleFilter, error) {
	if numSamps <= 0 {
		return nil, fmt.Errorf("%w: invalid particle count: %d", ErrInvalidConfig, numSamps)
	}
	if len(q) != 3 {
		return nil, fmt.Errorf("%w: process noise needs 3 values, got %d", ErrInvalidConfig, len(q))
	}
	for _, v := range q {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: invalid process noise: %v", ErrInvalidConfig, q)
		}
	}
	if !(dt > 0) {
		return nil, fmt.Errorf("%w: time step must be positive, got %v", ErrInvalidConfig, dt)
	}

	likelihood, err := NewLikelihood(r, src)
	if err != nil {
		return nil, err
	}

	weights := make([]float64, numSamps)
	for i := range weights {
		weights[i] = 1 / float64(numSamps)
	}

	pf := &ParticleFilter{
		Dt:                dt,
		ResampleThreshold: DefaultResampleThreshold,
		Resampler:         Residual{Src: src},
		particles:         CreateGaussianParticles(robot, InitialStd, numSamps, src),
		weights:           weights,
		landmarks:         slices.Clone(landmarks),
		q:                 [3]float64{q[0], q[1], q[2]},
		likelihood:        likelihood,
		src:               src,
	}

	return pf, nil
}

// Predict moves every particle by the noisy control u over dt.
// Each particle gets its own independent velocity noise on x and on y and
// its own turn rate noise.
func (pf *ParticleFilter) Predict(u Control, dt float64) {
	pf.particles = pf.predicted(u, dt)
}

// predicted returns the particles moved by u over dt, leaving pf untouched.
func (pf *ParticleFilter) predicted(u Control, dt float64) []Particle {
	xNoise := distuv.Normal{Mu: 0, Sigma: pf.q[0], Src: pf.src}
	yNoise := distuv.Normal{Mu: 0, Sigma: pf.q[1], Src: pf.src}
	angNoise := distuv.Normal{Mu: 0, Sigma: pf.q[2], Src: pf.src}

	moved := slices.Clone(pf.particles)
	for i := range moved {
		p := &moved[i]
		sin, cos := math.Sincos(p.Heading)
		p.X += cos * (u.Velocity + xNoise.Rand()) * dt
		p.Y += sin * (u.Velocity + yNoise.Rand()) * dt
		p.Heading = WrapToPi(p.Heading + dt*(u.TurnRate+angNoise.Rand()))
	}
	return moved
}

// Observe returns the noiseless range and bearing of pose against every
// landmark, flattened as r0, b0, r1, b1, ...
// The bearing is the direction from the landmark to the pose, relative to
// the pose heading, matching the recorded radar data the filter was built for.
func Observe(pose Particle, landmarks []Landmark) []float64 {
	z := make([]float64, 0, 2*len(landmarks))
	for _, lm := range landmarks {
		z = append(z, observe(pose, lm)...)
	}
	return z
}

func observe(p Particle, lm Landmark) []float64 {
	dx := p.X - lm.X
	dy := p.Y - lm.Y
	return []float64{math.Hypot(dx, dy), WrapToPi(math.Atan2(dy, dx) - p.Heading)}
}

// Update weighs every particle by how well it explains z, the flattened
// (range, bearing) pairs in landmark order, then renormalises the weights.
// Weights carry over from the previous step.
// It returns an ErrInvalidConfig error if z has the wrong length and
// ErrDegenerateWeights if the weights cannot be normalised; the filter is
// left unchanged in both cases.
func (pf *ParticleFilter) Update(z []float64) error {
	if err := pf.checkObservation(z); err != nil {
		return err
	}

	w, err := pf.weigh(pf.particles, z)
	if err != nil {
		return err
	}
	pf.weights = w
	return nil
}

// checkObservation rejects z unless it holds one (range, bearing) pair per
// landmark.
func (pf *ParticleFilter) checkObservation(z []float64) error {
	if len(z) != 2*len(pf.landmarks) {
		return fmt.Errorf("%w: observation has %d values, want %d for %d landmarks",
			ErrInvalidConfig, len(z), 2*len(pf.landmarks), len(pf.landmarks))
	}
	return nil
}

// weigh returns the current weights updated by z for particles, normalised.
func (pf *ParticleFilter) weigh(particles []Particle, z []float64) ([]float64, error) {
	w := slices.Clone(pf.weights)
	for k, lm := range pf.landmarks {
		obs := z[2*k : 2*k+2]
		for i, p := range particles {
			w[i] *= pf.likelihood.Density(observe(p, lm), obs)
		}
	}

	floats.AddConst(weightFloor, w)
	sum := floats.Sum(w)
	if !(sum > 0) || math.IsInf(sum, 0) {
		return nil, fmt.Errorf("%w: weight sum is %v", ErrDegenerateWeights, sum)
	}
	floats.Scale(1/sum, w)

	return w, nil
}

// Neff returns the effective sample size of the current weights.
func (pf *ParticleFilter) Neff() float64 {
	return Neff(pf.weights)
}

// Resample replaces the particle set with the particles r selects and resets
// the weights to 1/N.
func (pf *ParticleFilter) Resample(r Resampler) error {
	return pf.ResampleFromIndex(r.Indexes(pf.weights))
}

// ResampleFromIndex replaces the particle set with the particles at indexes,
// which must hold exactly N valid indices, and resets the weights to 1/N.
func (pf *ParticleFilter) ResampleFromIndex(indexes []int) error {
	n := len(pf.particles)
	if len(indexes) != n {
		return fmt.Errorf("%w: resample needs %d indexes, got %d", ErrInvalidConfig, n, len(indexes))
	}
	for _, idx := range indexes {
		if idx < 0 || idx >= n {
			return fmt.Errorf("%w: resample index %d out of range [0, %d)", ErrInvalidConfig, idx, n)
		}
	}

	resampled := make([]Particle, n)
	for i, idx := range indexes {
		resampled[i] = pf.particles[idx]
	}
	pf.particles = resampled

	for i := range pf.weights {
		pf.weights[i] = 1 / float64(n)
	}
	return nil
}

// Estimate returns the weighted mean and weighted variance of the particles.
// The heading is averaged linearly, which is wrong for particle clouds that
// straddle +-pi; see CircularHeading.
func (pf *ParticleFilter) Estimate() (mean, variance Particle) {
	n := len(pf.particles)
	xs := make([]float64, n)
	ys := make([]float64, n)
	hs := make([]float64, n)
	for i, p := range pf.particles {
		xs[i], ys[i], hs[i] = p.X, p.Y, p.Heading
	}

	mean.X, variance.X = stat.PopMeanVariance(xs, pf.weights)
	mean.Y, variance.Y = stat.PopMeanVariance(ys, pf.weights)
	mean.Heading, variance.Heading = stat.PopMeanVariance(hs, pf.weights)
	return mean, variance
}

// CircularHeading returns the weighted circular mean of the particle headings.
func (pf *ParticleFilter) CircularHeading() float64 {
	var sumSin, sumCos float64
	for i, p := range pf.particles {
		sin, cos := math.Sincos(p.Heading)
		sumSin += pf.weights[i] * sin
		sumCos += pf.weights[i] * cos
	}
	return math.Atan2(sumSin, sumCos)
}

// N returns the number of particles, fixed at construction.
func (pf *ParticleFilter) N() int {
	return len(pf.particles)
}

// Particles returns a copy of the particle set.
func (pf *ParticleFilter) Particles() []Particle {
	return slices.Clone(pf.particles)
}

// Weights returns a copy of the particle weights.
func (pf *ParticleFilter) Weights() []float64 {
	return slices.Clone(pf.weights)
}

// Landmarks returns a copy of the landmarks the filter was built with.
func (pf *ParticleFilter) Landmarks() []Landmark {
	return slices.Clone(pf.landmarks)
}
