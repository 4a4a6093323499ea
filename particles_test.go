package particlefilter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestCreateUniformParticles(t *testing.T) {
	t.Parallel()

	xr := Range{Min: -1, Max: 3}
	yr := Range{Min: 2, Max: 5}
	hr := Range{Min: -2 * math.Pi, Max: 2 * math.Pi}
	particles := CreateUniformParticles(xr, yr, hr, 500, rand.NewSource(7))

	require.Len(t, particles, 500)
	for _, p := range particles {
		assert.GreaterOrEqual(t, p.X, xr.Min)
		assert.LessOrEqual(t, p.X, xr.Max)
		assert.GreaterOrEqual(t, p.Y, yr.Min)
		assert.LessOrEqual(t, p.Y, yr.Max)
		assert.Greater(t, p.Heading, -math.Pi)
		assert.LessOrEqual(t, p.Heading, math.Pi)
	}
}

func TestCreateGaussianParticles(t *testing.T) {
	t.Parallel()

	t.Run("centred on the mean", func(t *testing.T) {
		t.Parallel()
		mean := Particle{X: 2, Y: -1, Heading: 0.5}
		particles := CreateGaussianParticles(mean, [3]float64{0.1, 0.2, 0.05}, 2000, rand.NewSource(3))
		require.Len(t, particles, 2000)

		var sx, sy, sh float64
		for _, p := range particles {
			sx += p.X
			sy += p.Y
			sh += p.Heading
		}
		n := float64(len(particles))
		assert.InDelta(t, mean.X, sx/n, 0.02)
		assert.InDelta(t, mean.Y, sy/n, 0.02)
		assert.InDelta(t, mean.Heading, sh/n, 0.02)
	})

	t.Run("headings wrapped near pi", func(t *testing.T) {
		t.Parallel()
		mean := Particle{Heading: math.Pi - 0.05}
		particles := CreateGaussianParticles(mean, [3]float64{0, 0, 0.3}, 1000, rand.NewSource(4))
		for _, p := range particles {
			assert.Greater(t, p.Heading, -math.Pi)
			assert.LessOrEqual(t, p.Heading, math.Pi)
		}
	})

	t.Run("zero spread copies the mean", func(t *testing.T) {
		t.Parallel()
		mean := Particle{X: 1, Y: 2, Heading: 3}
		for _, p := range CreateGaussianParticles(mean, [3]float64{}, 10, nil) {
			assert.Equal(t, mean, p)
		}
	})
}
