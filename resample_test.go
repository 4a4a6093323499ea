package particlefilter

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
)

func randomWeights(n int, seed uint64) []float64 {
	rnd := rand.New(rand.NewSource(seed))
	w := make([]float64, n)
	for i := range w {
		w[i] = rnd.Float64()
	}
	floats.Scale(1/floats.Sum(w), w)
	return w
}

func allResamplers(src rand.Source) map[string]Resampler {
	return map[string]Resampler{
		"multinomial": Multinomial{Src: src},
		"residual":    Residual{Src: src},
		"stratified":  Stratified{Src: src},
		"systematic":  Systematic{Src: src},
	}
}

func TestResamplersReturnNValidIndexes(t *testing.T) {
	t.Parallel()

	for _, n := range []int{1, 2, 7, 100, 1000} {
		w := randomWeights(n, uint64(n))
		for name, r := range allResamplers(rand.NewSource(42)) {
			idx := r.Indexes(w)
			require.Len(t, idx, n, "%s n=%d", name, n)
			for _, i := range idx {
				assert.GreaterOrEqual(t, i, 0, name)
				assert.Less(t, i, n, name)
			}
		}
	}
}

func TestResamplersConcentratedMass(t *testing.T) {
	t.Parallel()

	const n = 20
	for _, j := range []int{0, 7, n - 1} {
		w := make([]float64, n)
		w[j] = 1

		want := make([]int, n)
		for i := range want {
			want[i] = j
		}

		for name, r := range allResamplers(rand.NewSource(5)) {
			if diff := cmp.Diff(want, r.Indexes(w)); diff != "" {
				t.Errorf("%s with all mass on %d mismatch (-want +got):\n%s", name, j, diff)
			}
		}
	}
}

func TestStratifiedAndSystematicUniformWeights(t *testing.T) {
	t.Parallel()

	w := []float64{0.25, 0.25, 0.25, 0.25}
	want := []int{0, 1, 2, 3}
	for trial := uint64(0); trial < 20; trial++ {
		if diff := cmp.Diff(want, StratifiedIndexes(w, rand.NewSource(trial))); diff != "" {
			t.Errorf("stratified mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(want, SystematicIndexes(w, rand.NewSource(trial))); diff != "" {
			t.Errorf("systematic mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestSystematicCopiesTrackWeight(t *testing.T) {
	t.Parallel()

	const n = 1000
	w := make([]float64, n)
	w[10] = 0.5
	for i := range w {
		if i != 10 {
			w[i] = 0.5 / (n - 1)
		}
	}

	count := 0
	for _, i := range SystematicIndexes(w, rand.NewSource(9)) {
		if i == 10 {
			count++
		}
	}
	assert.InDelta(t, 500, count, 1)
}

func TestResidualIndexes(t *testing.T) {
	t.Parallel()

	const n = 10
	w := make([]float64, n)
	w[3] = 0.5
	for i := range w {
		if i != 3 {
			w[i] = 0.5 / (n - 1)
		}
	}

	copies := residualCopies(w)
	assert.Equal(t, 5, copies[3])
	for i, c := range copies {
		if i != 3 {
			assert.Zero(t, c, "particle %d", i)
		}
	}

	idx := ResidualIndexes(w, rand.NewSource(1))
	require.Len(t, idx, n)
	// deterministic copies come first
	if diff := cmp.Diff([]int{3, 3, 3, 3, 3}, idx[:5]); diff != "" {
		t.Errorf("integer copies mismatch (-want +got):\n%s", diff)
	}
}

func TestResidualIndexesExactCopies(t *testing.T) {
	t.Parallel()

	w := []float64{0.5, 0.25, 0.25, 0}
	want := []int{0, 0, 1, 2}
	if diff := cmp.Diff(want, ResidualIndexes(w, rand.NewSource(1))); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestResidualIndexesUnnormalised(t *testing.T) {
	t.Parallel()

	// half the mass is missing, so the copies leave no fractional remainder
	w := []float64{0.25, 0.25, 0, 0}
	for seed := uint64(1); seed <= 20; seed++ {
		idx := ResidualIndexes(w, rand.NewSource(seed))
		require.Len(t, idx, len(w))
		if diff := cmp.Diff([]int{0, 1}, idx[:2]); diff != "" {
			t.Errorf("integer copies mismatch (-want +got):\n%s", diff)
		}
		for _, i := range idx[2:] {
			assert.Contains(t, []int{0, 1}, i, "seed %d drew a zero-weight particle", seed)
		}
	}
}

func TestMultinomialFollowsWeights(t *testing.T) {
	t.Parallel()

	w := []float64{0.1, 0.6, 0.3}
	counts := make([]int, 3)
	src := rand.NewSource(21)
	for trial := 0; trial < 5000; trial++ {
		for _, i := range MultinomialIndexes(w, src) {
			counts[i]++
		}
	}
	total := float64(3 * 5000)
	for i := range w {
		assert.InDelta(t, w[i], float64(counts[i])/total, 0.02, "particle %d", i)
	}
}

func TestFromIndexes(t *testing.T) {
	t.Parallel()

	f := FromIndexes{2, 2, 0}
	idx := f.Indexes([]float64{0.2, 0.3, 0.5})
	if diff := cmp.Diff([]int{2, 2, 0}, idx); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	idx[0] = 1
	assert.Equal(t, 2, f[0], "returned indexes must be a copy")
}

func TestEmptyWeights(t *testing.T) {
	t.Parallel()

	for name, r := range allResamplers(nil) {
		assert.Empty(t, r.Indexes(nil), name)
	}
}

func TestResamplerByName(t *testing.T) {
	t.Parallel()

	for name, want := range allResamplers(nil) {
		got, err := ResamplerByName(name, nil)
		require.NoError(t, err)
		assert.IsType(t, want, got)
	}

	got, err := ResamplerByName("Systematic", nil)
	require.NoError(t, err)
	assert.IsType(t, Systematic{}, got)

	_, err = ResamplerByName("wheel", nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
