package study

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	sgerrors "github.com/traitlab/surveyreg/pkg/errors"
)

// SavePlot writes a grouped bar chart of cross-validated and holdout RMSE
// per model to path. The output format follows the file extension
// (.png, .svg, .pdf).
func (r *Report) SavePlot(path string) (err error) {
	defer sgerrors.Recover(&err, "Report.SavePlot")

	if len(r.Models) == 0 {
		return sgerrors.NewValueError("Report.SavePlot", "report holds no model results")
	}

	p := plot.New()
	p.Title.Text = "Model comparison"
	p.Y.Label.Text = "RMSE"

	cvVals := make(plotter.Values, len(r.Models))
	holdVals := make(plotter.Values, len(r.Models))
	names := make([]string, len(r.Models))
	for i, m := range r.Models {
		cvVals[i] = m.CV.MeanRMSE()
		holdVals[i] = m.Holdout.RMSE
		names[i] = m.Name
	}

	w := vg.Points(20)

	cvBars, err := plotter.NewBarChart(cvVals, w)
	if err != nil {
		return sgerrors.Wrap(err, "study: cannot build CV bar chart")
	}
	cvBars.Offset = -w / 2
	cvBars.Color = plotutil.Color(0)

	holdBars, err := plotter.NewBarChart(holdVals, w)
	if err != nil {
		return sgerrors.Wrap(err, "study: cannot build holdout bar chart")
	}
	holdBars.Offset = w / 2
	holdBars.Color = plotutil.Color(1)

	p.Add(cvBars, holdBars)
	p.Legend.Add("cv mean", cvBars)
	p.Legend.Add("holdout", holdBars)
	p.Legend.Top = true
	p.NominalX(names...)

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return sgerrors.Wrapf(err, "study: cannot save plot to %s", path)
	}
	return nil
}
