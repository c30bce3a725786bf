package survey

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/traitlab/surveyreg/dataset"
	sgerrors "github.com/traitlab/surveyreg/pkg/errors"
	"github.com/traitlab/surveyreg/pkg/log"
)

// Frame is the cleaned analysis dataset: one row per retained respondent,
// five trait score columns and the outcome. Scores may still be NaN where a
// whole trait or the outcome went unanswered; imputation happens downstream.
type Frame struct {
	TraitNames []string
	X          *mat.Dense
	Y          *mat.VecDense
	NDropped   int
}

// RecodeSentinels returns a copy of col with sentinel codes replaced by NaN.
// The input is not mutated.
func RecodeSentinels(col []float64, sentinels []float64) []float64 {
	out := make([]float64, len(col))
	copy(out, col)
	for i, v := range out {
		for _, s := range sentinels {
			if v == s {
				out[i] = math.NaN()
				break
			}
		}
	}
	return out
}

// MissingFieldCount counts missing encoded fields in one respondent row.
// The row layout is the ten inventory items followed by the outcome.
func MissingFieldCount(row []float64) int {
	count := 0
	for _, v := range row {
		if math.IsNaN(v) {
			count++
		}
	}
	return count
}

// FilterRows drops rows whose missing-field count is 10 or 11: all
// predictors missing, or all predictors plus the outcome missing. The
// filter is pure; the input rows are not mutated and kept rows are shared,
// not copied.
func FilterRows(rows [][]float64) [][]float64 {
	kept := make([][]float64, 0, len(rows))
	for _, row := range rows {
		c := MissingFieldCount(row)
		if c == dropCountAllPredictors || c == dropCountEverything {
			continue
		}
		kept = append(kept, row)
	}
	return kept
}

// Clean maps a raw table onto the analysis frame:
//
//  1. project the item and outcome columns
//  2. recode sentinel codes to missing
//  3. drop rows failing the missingness filter
//  4. reverse-key and average item pairs into trait scores
//
// It fails when a schema column is absent or when no rows survive filtering.
func Clean(tbl *dataset.Table, schema Schema) (frame *Frame, err error) {
	defer sgerrors.Recover(&err, "survey.Clean")

	if err := schema.Validate(); err != nil {
		return nil, err
	}

	logger := log.GetLoggerWithName("survey")

	cols := append(schema.ItemColumns(), schema.Outcome)
	sub, err := tbl.Select(cols...)
	if err != nil {
		return nil, err
	}

	// Column-wise sentinel recode, then transpose to rows for filtering.
	recoded := make([][]float64, len(sub.Cols))
	for j, col := range sub.Cols {
		recoded[j] = RecodeSentinels(col, schema.Sentinels)
	}

	rows := make([][]float64, sub.NRows)
	for i := 0; i < sub.NRows; i++ {
		row := make([]float64, NumEncodedFields)
		for j := 0; j < NumEncodedFields; j++ {
			row[j] = recoded[j][i]
		}
		rows[i] = row
	}

	kept := FilterRows(rows)
	if len(kept) == 0 {
		return nil, sgerrors.Wrap(sgerrors.ErrEmptyData, "survey: no rows survive the missingness filter")
	}

	frame = &Frame{
		TraitNames: schema.TraitNames(),
		X:          mat.NewDense(len(kept), len(schema.Traits), nil),
		Y:          mat.NewVecDense(len(kept), nil),
		NDropped:   len(rows) - len(kept),
	}

	for i, row := range kept {
		for t := range schema.Traits {
			frame.X.Set(i, t, traitScore(schema, t, row))
		}
		frame.Y.SetVec(i, row[NumItems])
	}

	logger.Info("Survey cleaned",
		log.SamplesKey, len(kept),
		log.FeaturesKey, len(schema.Traits),
		"rows_dropped", frame.NDropped,
	)
	return frame, nil
}

// traitScore averages the trait's two items, applying reverse keying.
// A single missing item leaves the score on the remaining one; both missing
// gives NaN.
func traitScore(schema Schema, trait int, row []float64) float64 {
	tr := schema.Traits[trait]

	var sum float64
	var n int
	for k := 0; k < 2; k++ {
		v := row[trait*2+k]
		if math.IsNaN(v) {
			continue
		}
		if tr.Reversed[k] && schema.ScaleMax > 0 {
			v = schema.ScaleMax + 1 - v
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}
