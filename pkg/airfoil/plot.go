package airfoil

import (
	"fmt"
	"io"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Plot writes a PNG drawing of a section loop produced by Generate, with
// the upper and lower surfaces as separate series.
func Plot(w io.Writer, loop []r3.Vec, title string) error {
	if len(loop) < 2*MinPoints-1 {
		return fmt.Errorf("airfoil: loop of %d points is too short to plot", len(loop))
	}
	upper, lower := Surfaces(loop)

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x/c"
	p.Y.Label.Text = "z/c"

	if err := plotutil.AddLinePoints(p,
		"upper", toXYs(upper),
		"lower", toXYs(lower),
	); err != nil {
		return fmt.Errorf("airfoil: plot: %w", err)
	}
	p.Add(plotter.NewGrid())

	wt, err := p.WriterTo(8*vg.Inch, 3*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("airfoil: plot: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("airfoil: write plot: %w", err)
	}
	return nil
}

func toXYs(points []r3.Vec) plotter.XYs {
	pts := make(plotter.XYs, len(points))
	for i, v := range points {
		pts[i].X = v.X
		pts[i].Y = v.Z
	}
	return pts
}
