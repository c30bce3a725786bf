package dataset_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/traitlab/surveyreg/dataset"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "survey.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestOpen_CSV(t *testing.T) {
	path := writeCSV(t, "agree,health\n1.5,3\n2.5,4\n3.5,5\n")

	tbl, err := dataset.Open(path)
	require.NoError(t, err)

	assert.Equal(t, 3, tbl.NRows)
	assert.Equal(t, []string{"agree", "health"}, tbl.Names)

	col, err := tbl.Column("agree")
	require.NoError(t, err)
	assert.InDelta(t, 1.5, col[0], 1e-12)
	assert.InDelta(t, 3.5, col[2], 1e-12)
}

func TestOpen_UnreadableFile(t *testing.T) {
	_, err := dataset.Open(filepath.Join(t.TempDir(), "absent.csv"))
	assert.Error(t, err)
}

func TestOpen_UnknownExtension(t *testing.T) {
	_, err := dataset.Open("survey.xlsx")
	assert.Error(t, err)
}

func TestTable_SelectMissingColumn(t *testing.T) {
	path := writeCSV(t, "a,b\n1,2\n")

	tbl, err := dataset.Open(path)
	require.NoError(t, err)

	_, err = tbl.Select("a", "nope")
	assert.Error(t, err)
}

func TestTable_Matrix(t *testing.T) {
	path := writeCSV(t, "a,b\n1,2\n3,4\n")

	tbl, err := dataset.Open(path)
	require.NoError(t, err)

	m := tbl.Matrix()
	r, c := m.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 2, c)
	assert.InDelta(t, 1.0, m.At(0, 0), 1e-12)
	assert.InDelta(t, 4.0, m.At(1, 1), 1e-12)
}

func TestTable_MatrixKeepsMissingAsNaN(t *testing.T) {
	tbl := &dataset.Table{
		Names: []string{"a"},
		Cols:  [][]float64{{1, math.NaN(), 3}},
		NRows: 3,
	}

	m := tbl.Matrix()
	assert.True(t, math.IsNaN(m.At(1, 0)))
}
