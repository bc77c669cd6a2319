package visualize

import (
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var lineColors = []color.Color{
	color.RGBA{R: 0xD6, G: 0x28, B: 0x28, A: 0xFF},
	color.RGBA{G: 0x90, B: 0x28, A: 0xFF},
	color.RGBA{B: 0xD6, A: 0xFF},
	color.RGBA{R: 0xD6, G: 0x90, A: 0xFF},
}

// ChannelPlotPNG renders rec's four channel amplitude series as a
// single line plot, written as PNG to w at the given size in points.
func ChannelPlotPNG(w io.Writer, rec *AmplitudeRecorder, width, height vg.Length) error {
	p := plot.New()
	p.Title.Text = "APU channel amplitude"
	p.X.Label.Text = "sample"
	p.Y.Label.Text = "amplitude"

	names := []string{"CH1", "CH2", "CH3", "CH4"}
	for i, name := range names {
		series := rec.Series(i)
		pts := make(plotter.XYs, len(series))
		for j, v := range series {
			pts[j].X = float64(j)
			pts[j].Y = float64(v)
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = lineColors[i%len(lineColors)]
		p.Add(line)
		p.Legend.Add(name, line)
	}

	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
