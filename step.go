package particlefilter

// StepResult is the outcome of one filter step.
type StepResult struct {
	Mean      Particle
	Variance  Particle
	Neff      float64
	Resampled bool
}

// Step runs one full filter cycle: predict with u over Dt, update with z,
// resample with Resampler when the effective sample size drops below
// ResampleThreshold*N, then estimate.
// If the update fails the filter is left exactly as it was.
func (pf *ParticleFilter) Step(u Control, z []float64) (StepResult, error) {
	var res StepResult

	if err := pf.checkObservation(z); err != nil {
		return res, err
	}
	moved := pf.predicted(u, pf.Dt)
	w, err := pf.weigh(moved, z)
	if err != nil {
		return res, err
	}
	pf.particles, pf.weights = moved, w

	res.Neff = pf.Neff()
	if pf.Resampler != nil && res.Neff < float64(pf.N())*pf.ResampleThreshold {
		if err := pf.Resample(pf.Resampler); err != nil {
			return res, err
		}
		pf.resampleSteps = append(pf.resampleSteps, pf.iteration)
		res.Resampled = true
	}
	pf.iteration++

	res.Mean, res.Variance = pf.Estimate()
	return res, nil
}

// Iteration returns the number of completed steps.
func (pf *ParticleFilter) Iteration() int {
	return pf.iteration
}

// ResampleCount returns how many steps resampled.
func (pf *ParticleFilter) ResampleCount() int {
	return len(pf.resampleSteps)
}

// ResampleSteps returns the zero-based indices of the steps that resampled.
func (pf *ParticleFilter) ResampleSteps() []int {
	out := make([]int, len(pf.resampleSteps))
	copy(out, pf.resampleSteps)
	return out
}
