package particlefilter

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/exp/rand"
)

// maxConfigSize caps the size of a config file read by LoadConfig.
const maxConfigSize = 1 * 1024 * 1024

// Config describes one estimation run.
type Config struct {
	Particles         int          `json:"particles"`
	Landmarks         [][2]float64 `json:"landmarks"`
	ProcessNoise      []float64    `json:"process_noise"`     // std: vx, vy, turn rate
	MeasurementNoise  []float64    `json:"measurement_noise"` // variance: range, bearing
	InitialPose       [3]float64   `json:"initial_pose"`
	Dt                float64      `json:"dt"`
	ResampleThreshold float64      `json:"resample_threshold"` // fraction of particles
	Resampler         string       `json:"resampler"`
	Seed              uint64       `json:"seed"`
}

// DefaultConfig returns the two-landmark setup the filter was tuned on.
func DefaultConfig() *Config {
	return &Config{
		Particles: 100,
		Landmarks: [][2]float64{
			{4.30069035, 3.55923413},
			{-2.52430552, 3.69715365},
		},
		ProcessNoise:      []float64{0.001, 0.001, 0.001},
		MeasurementNoise:  []float64{0.5, 0.3},
		InitialPose:       [3]float64{0, 0, 0},
		Dt:                0.1,
		ResampleThreshold: DefaultResampleThreshold,
		Resampler:         "residual",
		Seed:              2020,
	}
}

// LoadConfig loads a Config from a JSON file. Fields omitted from the file
// keep their DefaultConfig values.
func LoadConfig(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxConfigSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxConfigSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are usable.
func (c *Config) Validate() error {
	if c.Particles <= 0 {
		return fmt.Errorf("%w: particles must be positive, got %d", ErrInvalidConfig, c.Particles)
	}
	if len(c.ProcessNoise) != 3 {
		return fmt.Errorf("%w: process_noise needs 3 values, got %d", ErrInvalidConfig, len(c.ProcessNoise))
	}
	for _, v := range c.ProcessNoise {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: process_noise must be finite and non-negative, got %v", ErrInvalidConfig, c.ProcessNoise)
		}
	}
	if len(c.MeasurementNoise) != 2 {
		return fmt.Errorf("%w: measurement_noise needs 2 values, got %d", ErrInvalidConfig, len(c.MeasurementNoise))
	}
	for _, v := range c.MeasurementNoise {
		if !(v > 0) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: measurement_noise must be finite and positive, got %v", ErrInvalidConfig, c.MeasurementNoise)
		}
	}
	if !(c.Dt > 0) {
		return fmt.Errorf("%w: dt must be positive, got %v", ErrInvalidConfig, c.Dt)
	}
	if c.ResampleThreshold < 0 || c.ResampleThreshold > 1 {
		return fmt.Errorf("%w: resample_threshold must be between 0 and 1, got %v", ErrInvalidConfig, c.ResampleThreshold)
	}
	if _, err := ResamplerByName(c.Resampler, nil); err != nil {
		return err
	}
	return nil
}

// LandmarkList converts the configured landmark coordinates.
func (c *Config) LandmarkList() []Landmark {
	landmarks := make([]Landmark, len(c.Landmarks))
	for i, lm := range c.Landmarks {
		landmarks[i] = Landmark{X: lm[0], Y: lm[1]}
	}
	return landmarks
}

// NewFromConfig validates cfg and builds a filter whose random draws all come
// from a source seeded with cfg.Seed.
func NewFromConfig(cfg *Config) (*ParticleFilter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	src := rand.NewSource(cfg.Seed)
	robot := Particle{X: cfg.InitialPose[0], Y: cfg.InitialPose[1], Heading: cfg.InitialPose[2]}

	pf, err := CreatePF(cfg.Particles, cfg.LandmarkList(), cfg.ProcessNoise, cfg.MeasurementNoise, robot, cfg.Dt, src)
	if err != nil {
		return nil, err
	}

	resampler, err := ResamplerByName(cfg.Resampler, src)
	if err != nil {
		return nil, err
	}
	pf.Resampler = resampler
	pf.ResampleThreshold = cfg.ResampleThreshold

	return pf, nil
}
