package particlefilter

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
)

// Likelihood scores a predicted (range, bearing) pair against an observed one
// under a zero-mean Gaussian with diagonal covariance diag(R).
// The bearing difference is wrapped into (-pi, pi] before scoring, so a
// bearing just below pi and one just above -pi are a small residual, not a
// residual of nearly 2*pi as a plain subtraction would give.
type Likelihood struct {
	errPDF *distmv.Normal
	// diff is reused across calls to avoid an allocation per particle
	diff []float64
}

// NewLikelihood builds the measurement model from the two measurement noise
// terms, used directly as the range and bearing variances.
// It returns error if r does not hold two finite positive values.
func NewLikelihood(r []float64, src rand.Source) (*Likelihood, error) {
	if len(r) != 2 {
		return nil, fmt.Errorf("%w: measurement noise needs 2 values, got %d", ErrInvalidConfig, len(r))
	}
	if !(r[0] > 0) || !(r[1] > 0) || math.IsInf(r[0], 0) || math.IsInf(r[1], 0) {
		return nil, fmt.Errorf("%w: measurement noise must be finite and positive, got %v", ErrInvalidConfig, r)
	}

	cov := mat.NewDiagDense(2, []float64{r[0], r[1]})
	pdf, ok := distmv.NewNormal([]float64{0, 0}, cov, src)
	if !ok {
		return nil, fmt.Errorf("%w: measurement covariance is not positive definite", ErrInvalidConfig)
	}

	return &Likelihood{errPDF: pdf, diff: make([]float64, 2)}, nil
}

// Density returns the probability density of predicted given observed.
// The bearing difference is wrapped so that bearings either side of +-pi
// compare as close.
func (l *Likelihood) Density(predicted, observed []float64) float64 {
	l.diff[0] = predicted[0] - observed[0]
	l.diff[1] = WrapToPi(predicted[1] - observed[1])
	return l.errPDF.Prob(l.diff)
}

// NormPDF evaluates a multivariate Gaussian density with mean mu and diagonal
// covariance covDiag at x.
func NormPDF(x, mu, covDiag []float64) float64 {
	k := float64(len(x))
	det := 1.0
	quad := 0.0
	for i := range x {
		det *= covDiag[i]
		d := x[i] - mu[i]
		quad += d * d / covDiag[i]
	}
	norm := 1 / (math.Pow(2*math.Pi, k/2) * math.Sqrt(det))
	return norm * math.Exp(-0.5*quad)
}
