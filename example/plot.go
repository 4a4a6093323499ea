package main

import (
	"image/color"

	pf "github.com/jhoydich/landmark-pf"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// savePlot writes the final particle cloud, the estimate trail and the
// landmarks to a PNG file.
func savePlot(fName string, particles []pf.Particle, trail []pf.Particle, landmarks []pf.Landmark) error {
	plt := plot.New()
	plt.Title.Text = "Landmark Particle Filter"
	plt.X.Label.Text = "X"
	plt.Y.Label.Text = "Y"
	plt.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(particles))
	for i, p := range particles {
		pts[i].X = p.X
		pts[i].Y = p.Y
	}
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	s.GlyphStyle.Color = color.RGBA{A: 255}
	s.GlyphStyle.Radius = vg.Points(1)

	est := make(plotter.XYs, len(trail))
	for i, p := range trail {
		est[i].X = p.X
		est[i].Y = p.Y
	}
	s2, err := plotter.NewScatter(est)
	if err != nil {
		return err
	}
	s2.GlyphStyle.Color = color.RGBA{G: 160, A: 255}
	s2.GlyphStyle.Radius = vg.Points(1.5)

	lms := make(plotter.XYs, len(landmarks))
	for i, lm := range landmarks {
		lms[i].X = lm.X
		lms[i].Y = lm.Y
	}
	s3, err := plotter.NewScatter(lms)
	if err != nil {
		return err
	}
	s3.GlyphStyle.Color = color.RGBA{R: 255, A: 255}
	s3.GlyphStyle.Radius = vg.Points(4)

	plt.Add(s, s2, s3)
	plt.Legend.Add("particles", s)
	plt.Legend.Add("estimate", s2)
	plt.Legend.Add("landmarks", s3)
	plt.Legend.Left = false
	plt.Legend.Top = false

	return plt.Save(6*vg.Inch, 6*vg.Inch, fName)
}
