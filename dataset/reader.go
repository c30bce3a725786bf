// Package dataset reads columnar survey exports into memory.
//
// Supported formats are the ones produced by commercial statistical packages
// and their CSV exports: Stata .dta and SAS .sas7bdat files are decoded with
// github.com/kshedden/datareader, CSV files with its type-inferring CSV
// reader. Columns are held as float64 slices with NaN encoding a missing
// cell, which is the representation the cleaning and modeling layers work on.
package dataset

import (
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kshedden/datareader"
	"gonum.org/v1/gonum/mat"

	sgerrors "github.com/traitlab/surveyreg/pkg/errors"
	"github.com/traitlab/surveyreg/pkg/log"
)

// Table is a column-major numeric dataset. Missing cells are NaN.
type Table struct {
	Names []string
	Cols  [][]float64
	NRows int
}

// Open reads a data file into a Table, dispatching on the file extension.
// Recognized extensions: .dta (Stata), .sas7bdat (SAS), .csv.
func Open(path string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".dta":
		return OpenFormat(path, "stata")
	case ".sas7bdat":
		return OpenFormat(path, "sas7bdat")
	case ".csv":
		return OpenFormat(path, "csv")
	default:
		return nil, sgerrors.NewValidationError("path", "unrecognized data file extension", path)
	}
}

// OpenFormat reads a data file with an explicit format: "stata", "sas7bdat"
// or "csv".
func OpenFormat(path, format string) (tbl *Table, err error) {
	defer sgerrors.Recover(&err, "dataset.OpenFormat")

	logger := log.GetLoggerWithName("dataset")

	f, err := os.Open(path)
	if err != nil {
		return nil, sgerrors.Wrapf(err, "dataset: cannot open %s", path)
	}
	defer func() { _ = f.Close() }()

	var series []*datareader.Series

	switch format {
	case "stata":
		rdr, rerr := datareader.NewStataReader(f)
		if rerr != nil {
			return nil, sgerrors.Wrapf(rerr, "dataset: cannot parse Stata file %s", path)
		}
		series, err = rdr.Read(-1)
	case "sas7bdat":
		rdr, rerr := datareader.NewSAS7BDATReader(f)
		if rerr != nil {
			return nil, sgerrors.Wrapf(rerr, "dataset: cannot parse SAS file %s", path)
		}
		series, err = rdr.Read(-1)
	case "csv":
		rdr := datareader.NewCSVReader(f)
		rdr.HasHeader = true
		series, err = rdr.Read(-1)
	default:
		return nil, sgerrors.NewValidationError("format", "must be stata, sas7bdat or csv", format)
	}
	if err != nil {
		return nil, sgerrors.Wrapf(err, "dataset: cannot read %s", path)
	}

	tbl, err = fromSeries(series)
	if err != nil {
		return nil, err
	}

	logger.Info("Dataset loaded",
		log.OperationKey, log.OperationLoad,
		log.SamplesKey, tbl.NRows,
		log.FeaturesKey, len(tbl.Names),
		"path", path,
	)
	return tbl, nil
}

// fromSeries converts datareader column series to a numeric Table.
// String columns that do not parse as numbers are dropped.
func fromSeries(series []*datareader.Series) (*Table, error) {
	if len(series) == 0 {
		return nil, sgerrors.Wrap(sgerrors.ErrEmptyData, "dataset: file holds no columns")
	}

	logger := log.GetLoggerWithName("dataset")
	tbl := &Table{}

	for _, ser := range series {
		col, ok := numericColumn(ser)
		if !ok {
			logger.Debug("Skipping non-numeric column", log.ColumnKey, ser.Name)
			continue
		}
		tbl.Names = append(tbl.Names, ser.Name)
		tbl.Cols = append(tbl.Cols, col)
	}

	if len(tbl.Cols) == 0 {
		return nil, sgerrors.Wrap(sgerrors.ErrEmptyData, "dataset: file holds no numeric columns")
	}

	tbl.NRows = len(tbl.Cols[0])
	for _, col := range tbl.Cols {
		if len(col) != tbl.NRows {
			return nil, sgerrors.NewDimensionError("dataset.fromSeries", tbl.NRows, len(col), 0)
		}
	}

	if tbl.NRows == 0 {
		return nil, sgerrors.Wrap(sgerrors.ErrEmptyData, "dataset: file holds no rows")
	}

	return tbl, nil
}

// numericColumn extracts one series as float64 values with NaN for missing
// cells. String columns are parsed leniently; a column where nothing parses
// is rejected.
func numericColumn(ser *datareader.Series) ([]float64, bool) {
	vals, missing, err := ser.AsFloat64Slice()
	if err == nil {
		return applyMissing(vals, missing), true
	}

	strs, missing, err := ser.AsStringSlice()
	if err != nil {
		return nil, false
	}

	out := make([]float64, len(strs))
	parsed := 0
	for i, s := range strs {
		if missing != nil && missing[i] {
			out[i] = math.NaN()
			continue
		}
		v, perr := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if perr != nil {
			out[i] = math.NaN()
			continue
		}
		out[i] = v
		parsed++
	}
	if parsed == 0 {
		return nil, false
	}
	return out, true
}

func applyMissing(vals []float64, missing []bool) []float64 {
	out := make([]float64, len(vals))
	copy(out, vals)
	if missing == nil {
		return out
	}
	for i, m := range missing {
		if m {
			out[i] = math.NaN()
		}
	}
	return out
}

// Select projects the table onto the named columns, in order.
// A column that does not exist is an error.
func (t *Table) Select(names ...string) (*Table, error) {
	out := &Table{NRows: t.NRows}
	for _, name := range names {
		idx := -1
		for i, n := range t.Names {
			if n == name {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, sgerrors.NewValidationError("column", "not present in dataset", name)
		}
		out.Names = append(out.Names, name)
		out.Cols = append(out.Cols, t.Cols[idx])
	}
	return out, nil
}

// Column returns the values of one named column.
func (t *Table) Column(name string) ([]float64, error) {
	sub, err := t.Select(name)
	if err != nil {
		return nil, err
	}
	return sub.Cols[0], nil
}

// Matrix converts the table to a row-major gonum matrix. Missing cells stay
// NaN; callers impute before fitting.
func (t *Table) Matrix() *mat.Dense {
	m := mat.NewDense(t.NRows, len(t.Cols), nil)
	for j, col := range t.Cols {
		for i, v := range col {
			m.Set(i, j, v)
		}
	}
	return m
}
