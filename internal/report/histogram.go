package report

import (
	"fmt"
	"io"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

const histogramBins = 20

// WriteHistogram renders a PNG histogram of ORF lengths to w. A database
// without ORFs produces an empty, labelled plot.
func WriteHistogram(w io.Writer, db *Database) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("ORF lengths (min %d bp)", db.MinLength)
	p.X.Label.Text = "length (bp)"
	p.Y.Label.Text = "ORFs"

	lengths := db.Lengths()
	if len(lengths) > 0 {
		vals := make(plotter.Values, len(lengths))
		for i, n := range lengths {
			vals[i] = float64(n)
		}
		h, err := plotter.NewHist(vals, histogramBins)
		if err != nil {
			return fmt.Errorf("histogram: %w", err)
		}
		p.Add(h)
	}

	wt, err := p.WriterTo(6*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("histogram: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}

// SaveHistogram writes the histogram PNG to path.
func SaveHistogram(path string, db *Database) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteHistogram(f, db); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
