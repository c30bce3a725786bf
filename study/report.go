package study

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"
)

// WriteTable renders the report as an aligned text table: one row per model
// with the cross-validated means and the holdout metrics side by side.
func (r *Report) WriteTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "rows\t%d\t(dropped %d)\n", r.NRows, r.NDropped)
	fmt.Fprintf(tw, "train/holdout\t%d/%d\tfolds %d\n", r.NTrain, r.NHoldout, r.NFolds)
	fmt.Fprintf(tw, "predictors\t%s\n", joinNames(r.Predictor))
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "model\tcv MAE\tcv RMSE\tcv R2\tRMSE sd\thold MAE\thold RMSE\thold R2")
	for _, m := range r.Models {
		fmt.Fprintf(tw, "%s\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\n",
			m.Name,
			m.CV.MeanMAE(), m.CV.MeanRMSE(), m.CV.MeanR2(), m.CV.StdRMSE(),
			m.Holdout.MAE, m.Holdout.RMSE, m.Holdout.R2,
		)
	}

	fmt.Fprintln(tw)
	fmt.Fprintf(tw, "elapsed\t%s\n", r.Elapsed.Round(time.Millisecond))
	return tw.Flush()
}

// Best returns the model with the lowest holdout RMSE.
func (r *Report) Best() *ModelResult {
	if len(r.Models) == 0 {
		return nil
	}
	best := &r.Models[0]
	for i := 1; i < len(r.Models); i++ {
		if r.Models[i].Holdout.RMSE < best.Holdout.RMSE {
			best = &r.Models[i]
		}
	}
	return best
}

func joinNames(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ", "
		}
		out += n
	}
	return out
}
