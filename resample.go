package particlefilter

import (
	"fmt"
	"strings"

	"golang.org/x/exp/rand"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Resampler chooses which particles survive a resampling step.
// Indexes returns len(weights) particle indices; duplicates are expected.
type Resampler interface {
	Indexes(weights []float64) []int
}

// Multinomial draws every index independently in proportion to its weight.
type Multinomial struct {
	Src rand.Source
}

func (m Multinomial) Indexes(weights []float64) []int {
	return MultinomialIndexes(weights, m.Src)
}

// Residual keeps floor(N*w) copies of each particle and draws the rest
// multinomially from the leftover fractions.
type Residual struct {
	Src rand.Source
}

func (r Residual) Indexes(weights []float64) []int {
	return ResidualIndexes(weights, r.Src)
}

// Stratified draws one point inside each of N equal strata of (0, 1).
type Stratified struct {
	Src rand.Source
}

func (s Stratified) Indexes(weights []float64) []int {
	return StratifiedIndexes(weights, s.Src)
}

// Systematic places N evenly spaced points behind a single random offset.
type Systematic struct {
	Src rand.Source
}

func (s Systematic) Indexes(weights []float64) []int {
	return SystematicIndexes(weights, s.Src)
}

// FromIndexes replays indices computed elsewhere.
type FromIndexes []int

func (f FromIndexes) Indexes([]float64) []int {
	return slices.Clone(f)
}

// ResamplerByName returns the resampler called name: multinomial, residual,
// stratified or systematic.
func ResamplerByName(name string, src rand.Source) (Resampler, error) {
	switch strings.ToLower(name) {
	case "multinomial":
		return Multinomial{Src: src}, nil
	case "residual":
		return Residual{Src: src}, nil
	case "stratified":
		return Stratified{Src: src}, nil
	case "systematic":
		return Systematic{Src: src}, nil
	}
	return nil, fmt.Errorf("%w: unknown resampler %q", ErrInvalidConfig, name)
}

// cumulativeSum returns the running sum of weights with the last entry pinned
// to exactly 1 so round-off can never leave a draw unmatched.
func cumulativeSum(weights []float64) []float64 {
	cum := floats.CumSum(make([]float64, len(weights)), weights)
	cum[len(cum)-1] = 1
	return cum
}

// searchDraws appends one index per uniform draw, picking the first entry of
// cum that is not below the draw.
func searchDraws(indexes []int, cum []float64, draws int, src rand.Source) []int {
	u := distuv.Uniform{Min: 0, Max: 1, Src: src}
	for i := 0; i < draws; i++ {
		idx, _ := slices.BinarySearch(cum, u.Rand())
		if idx >= len(cum) {
			idx = len(cum) - 1
		}
		indexes = append(indexes, idx)
	}
	return indexes
}

// MultinomialIndexes returns len(weights) indices drawn with replacement.
func MultinomialIndexes(weights []float64, src rand.Source) []int {
	n := len(weights)
	if n == 0 {
		return nil
	}
	return searchDraws(make([]int, 0, n), cumulativeSum(weights), n, src)
}

// residualCopies returns floor(N*w) for every weight.
func residualCopies(weights []float64) []int {
	n := float64(len(weights))
	copies := make([]int, len(weights))
	for i, w := range weights {
		copies[i] = int(n * w)
	}
	return copies
}

// ResidualIndexes returns len(weights) indices: the deterministic integer
// copies first, in particle order, then multinomial draws over the
// renormalised fractional remainders.
func ResidualIndexes(weights []float64, src rand.Source) []int {
	n := len(weights)
	if n == 0 {
		return nil
	}

	indexes := make([]int, 0, n)
	copies := residualCopies(weights)
	for i, c := range copies {
		for k := 0; k < c && len(indexes) < n; k++ {
			indexes = append(indexes, i)
		}
	}
	if len(indexes) == n {
		return indexes
	}

	residual := make([]float64, n)
	for i, w := range weights {
		residual[i] = float64(n)*w - float64(copies[i])
	}
	sum := floats.Sum(residual)
	if !(sum > 0) {
		// weights summing below one can leave no fractions over;
		// draw the rest from the renormalised weights instead
		copy(residual, weights)
		sum = floats.Sum(residual)
	}
	floats.Scale(1/sum, residual)

	return searchDraws(indexes, cumulativeSum(residual), n-len(indexes), src)
}

// StratifiedIndexes draws one uniform point in each stratum [i/N, (i+1)/N).
func StratifiedIndexes(weights []float64, src rand.Source) []int {
	n := len(weights)
	u := distuv.Uniform{Min: 0, Max: 1, Src: src}
	positions := make([]float64, n)
	for i := range positions {
		positions[i] = (u.Rand() + float64(i)) / float64(n)
	}
	return walkPositions(positions, weights)
}

// SystematicIndexes shifts the evenly spaced points i/N by one shared offset.
func SystematicIndexes(weights []float64, src rand.Source) []int {
	n := len(weights)
	offset := distuv.Uniform{Min: 0, Max: 1, Src: src}.Rand()
	positions := make([]float64, n)
	for i := range positions {
		positions[i] = (float64(i) + offset) / float64(n)
	}
	return walkPositions(positions, weights)
}

// walkPositions maps sorted positions in [0, 1) onto particle indices with a
// single pass over the cumulative weights.
func walkPositions(positions, weights []float64) []int {
	n := len(weights)
	if n == 0 {
		return nil
	}

	cum := cumulativeSum(weights)
	indexes := make([]int, n)
	i, j := 0, 0
	for i < n {
		// the last particle absorbs positions rounded up to 1
		if j == n-1 || positions[i] < cum[j] {
			indexes[i] = j
			i++
		} else {
			j++
		}
	}
	return indexes
}
