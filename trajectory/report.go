package trajectory

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const (
	histogramBins  = 10
	histogramWidth = 40

	plotWidth  = 8 * vg.Inch
	plotHeight = 5 * vg.Inch
	plotDPI    = 120
)

var (
	targetColor   = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	achievedColor = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

// String renders the summary as a two-column table.
func (s Summary) String() string {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("joint %s", s.Joint))
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRows([]table.Row{
		{"samples", s.Samples},
		{"duration (s)", fmt.Sprintf("%.3f", s.Duration)},
		{"target range (rad)", fmt.Sprintf("%.4f .. %.4f", s.TargetMin, s.TargetMax)},
		{"achieved range (rad)", fmt.Sprintf("%.4f .. %.4f", s.AchievedMin, s.AchievedMax)},
		{"mean abs error (rad)", fmt.Sprintf("%.4f", s.MeanError)},
		{"rms error (rad)", fmt.Sprintf("%.4f", s.RMSError)},
		{"p95 abs error (rad)", fmt.Sprintf("%.4f", s.P95Error)},
		{"max abs error (rad)", fmt.Sprintf("%.4f", s.MaxError)},
	})
	return t.Render()
}

// WriteSummary writes the summary table followed by a histogram of absolute tracking errors to w.
func (r *Recorder) WriteSummary(w io.Writer) error {
	s, err := r.Summary()
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, s.String()); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "abs tracking error (rad):"); err != nil {
		return err
	}
	return histogram.Fprint(w, r.errorHistogram(histogramBins), histogram.Linear(histogramWidth))
}

func (r *Recorder) errorHistogram(bins int) histogram.Histogram {
	samples := r.Samples()
	absErrs := make([]float64, len(samples))
	for i, s := range samples {
		absErrs[i] = math.Abs(s.TrackingError())
	}
	return histogram.Hist(bins, absErrs)
}

// SavePlot renders target and achieved position against simulated time to a PNG file, creating
// its directory if needed.
func (r *Recorder) SavePlot(filename string) error {
	samples := r.Samples()
	if len(samples) == 0 {
		return ErrNoSamples
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s position", r.joint)
	p.X.Label.Text = "sim time (s)"
	p.Y.Label.Text = "position (rad)"
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	target := make(plotter.XYs, len(samples))
	achieved := make(plotter.XYs, len(samples))
	for i, s := range samples {
		target[i].X, target[i].Y = s.SimTime, s.Target
		achieved[i].X, achieved[i].Y = s.SimTime, s.Achieved
	}

	targetLine, err := plotter.NewLine(target)
	if err != nil {
		return err
	}
	targetLine.LineStyle.Width = vg.Points(1.5)
	targetLine.LineStyle.Color = targetColor
	targetLine.LineStyle.Dashes = []vg.Length{vg.Points(5), vg.Points(3)}

	achievedLine, err := plotter.NewLine(achieved)
	if err != nil {
		return err
	}
	achievedLine.LineStyle.Width = vg.Points(1.5)
	achievedLine.LineStyle.Color = achievedColor

	p.Add(targetLine, achievedLine)
	p.Legend.Add("target", targetLine)
	p.Legend.Add("achieved", achievedLine)

	return savePNG(p, filename)
}

func savePNG(p *plot.Plot, filename string) error {
	if dir := filepath.Dir(filename); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "cannot create plot directory")
		}
	}

	c := vgimg.NewWith(vgimg.UseWH(plotWidth, plotHeight), vgimg.UseDPI(plotDPI))
	p.Draw(draw.New(c))

	//nolint:gosec
	f, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "cannot create png")
	}
	bw := bufio.NewWriter(f)
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(bw); err != nil {
		_ = f.Close()
		return errors.Wrap(err, "cannot write png")
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return errors.Wrap(err, "cannot write png")
	}
	return f.Close()
}
