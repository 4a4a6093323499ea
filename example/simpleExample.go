package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	pf "github.com/jhoydich/landmark-pf"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

type cmdOpt struct {
	configFn  string
	controlFn string
	radarFn   string
	plotFn    string
	steps     int
	verbose   bool
}

func parseArgs() cmdOpt {
	var args cmdOpt
	flag.StringVar(&args.configFn, "config", "", "JSON run configuration (defaults built in)")
	flag.StringVar(&args.controlFn, "control", "", "CSV of u,theta control rows")
	flag.StringVar(&args.radarFn, "radar", "", "CSV of range,bearing rows, one pair per landmark")
	flag.StringVar(&args.plotFn, "plot", "", "write a PNG of the particles and estimates")
	flag.IntVar(&args.steps, "steps", 100, "number of simulated steps when no CSV input is given")
	flag.BoolVar(&args.verbose, "v", false, "log every step")
	flag.Parse()
	return args
}

func main() {
	args := parseArgs()
	if err := run(args); err != nil {
		log.Printf("[example] %v", err)
		os.Exit(1)
	}
}

func run(args cmdOpt) error {
	cfg := pf.DefaultConfig()
	if args.configFn != "" {
		var err error
		if cfg, err = pf.LoadConfig(args.configFn); err != nil {
			return err
		}
	}

	filter, err := pf.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to create filter: %w", err)
	}

	controls, observations, err := loadInputs(args, cfg)
	if err != nil {
		return err
	}
	log.Printf("[example] running %d steps with %d particles, resampler=%s", len(controls), filter.N(), cfg.Resampler)

	var res pf.StepResult
	trail := make([]pf.Particle, 0, len(controls))
	for i := range controls {
		res, err = filter.Step(controls[i], observations[i])
		if err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		trail = append(trail, res.Mean)
		if args.verbose {
			log.Printf("[example] step=%d mean=(%.3f, %.3f, %.3f) neff=%.1f resampled=%v",
				i, res.Mean.X, res.Mean.Y, res.Mean.Heading, res.Neff, res.Resampled)
		}
	}

	fmt.Println("Final position error, variance:")
	fmt.Printf("\t%.6f %.6f %.6f\n", res.Mean.X, res.Mean.Y, res.Mean.Heading)
	fmt.Printf("\t%.6f %.6f %.6f\n", res.Variance.X, res.Variance.Y, res.Variance.Heading)
	fmt.Println("Resampling:", filter.ResampleCount())
	fmt.Println("Indexes of resampling:", filter.ResampleSteps())

	if args.plotFn != "" {
		if err := savePlot(args.plotFn, filter.Particles(), trail, filter.Landmarks()); err != nil {
			return fmt.Errorf("failed to save plot: %w", err)
		}
		log.Printf("[example] saved %s", args.plotFn)
	}
	return nil
}

// loadInputs reads the control and observation records, or simulates them
// when no files are given.
func loadInputs(args cmdOpt, cfg *pf.Config) ([]pf.Control, [][]float64, error) {
	if args.controlFn == "" && args.radarFn == "" {
		controls, observations := simulate(args.steps, cfg)
		return controls, observations, nil
	}
	if args.controlFn == "" || args.radarFn == "" {
		return nil, nil, fmt.Errorf("-control and -radar must be given together")
	}

	controls, err := readControls(args.controlFn)
	if err != nil {
		return nil, nil, err
	}
	observations, err := readObservations(args.radarFn, len(cfg.Landmarks))
	if err != nil {
		return nil, nil, err
	}
	if len(controls) != len(observations) {
		return nil, nil, fmt.Errorf("%d control rows but %d observation rows", len(controls), len(observations))
	}
	return controls, observations, nil
}

// simulate drives a noiseless robot along a gentle arc and returns the
// controls with range/bearing readings perturbed by the measurement noise.
func simulate(steps int, cfg *pf.Config) ([]pf.Control, [][]float64) {
	src := rand.NewSource(cfg.Seed + 1)
	rangeNoise := distuv.Normal{Mu: 0, Sigma: math.Sqrt(cfg.MeasurementNoise[0]) / 10, Src: src}
	bearingNoise := distuv.Normal{Mu: 0, Sigma: math.Sqrt(cfg.MeasurementNoise[1]) / 10, Src: src}

	robot := pf.Particle{X: cfg.InitialPose[0], Y: cfg.InitialPose[1], Heading: cfg.InitialPose[2]}
	landmarks := cfg.LandmarkList()
	u := pf.Control{Velocity: 1.0, TurnRate: 0.1}

	controls := make([]pf.Control, steps)
	observations := make([][]float64, steps)
	for i := 0; i < steps; i++ {
		robot.X += math.Cos(robot.Heading) * u.Velocity * cfg.Dt
		robot.Y += math.Sin(robot.Heading) * u.Velocity * cfg.Dt
		robot.Heading = pf.WrapToPi(robot.Heading + u.TurnRate*cfg.Dt)

		z := pf.Observe(robot, landmarks)
		for j := 0; j < len(z); j += 2 {
			z[j] += rangeNoise.Rand()
			z[j+1] = pf.WrapToPi(z[j+1] + bearingNoise.Rand())
		}
		controls[i] = u
		observations[i] = z
	}
	log.Printf("[example] simulated robot ends at (%.3f, %.3f, %.3f)", robot.X, robot.Y, robot.Heading)
	return controls, observations
}
