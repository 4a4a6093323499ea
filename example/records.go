package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	pf "github.com/jhoydich/landmark-pf"
)

// readRecords parses a headerless CSV file of float rows with the given width.
func readRecords(path string, width int) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = width
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	out := make([][]float64, len(rows))
	for i, row := range rows {
		out[i] = make([]float64, width)
		for j, field := range row {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d column %d: %w", path, i+1, j+1, err)
			}
			out[i][j] = v
		}
	}
	return out, nil
}

// readControls reads "u,theta" rows: forward speed and turn rate.
func readControls(path string) ([]pf.Control, error) {
	rows, err := readRecords(path, 2)
	if err != nil {
		return nil, err
	}
	controls := make([]pf.Control, len(rows))
	for i, row := range rows {
		controls[i] = pf.Control{Velocity: row[0], TurnRate: row[1]}
	}
	return controls, nil
}

// readObservations reads range/bearing rows, one pair per landmark, and wraps
// the bearings into (-pi, pi].
func readObservations(path string, landmarks int) ([][]float64, error) {
	rows, err := readRecords(path, 2*landmarks)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		for j := 1; j < len(row); j += 2 {
			row[j] = pf.WrapToPi(row[j])
		}
	}
	return rows, nil
}
