package study_test

import (
	"bytes"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/traitlab/surveyreg/study"
	"github.com/traitlab/surveyreg/survey"
)

// syntheticFrame builds a cleaned frame where the outcome depends on the
// first two traits plus noise, on the 1..7 inventory scale.
func syntheticFrame(n int) *survey.Frame {
	rng := rand.New(rand.NewPCG(1, 2))

	X := mat.NewDense(n, 5, nil)
	y := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < 5; j++ {
			X.Set(i, j, 1+6*rng.Float64())
		}
		out := 1 + 0.4*X.At(i, 0) + 0.3*X.At(i, 1) + 0.5*rng.NormFloat64()
		y.SetVec(i, out)
	}

	return &survey.Frame{
		TraitNames: survey.DefaultSchema().TraitNames(),
		X:          X,
		Y:          y,
	}
}

func TestRunFrame(t *testing.T) {
	cfg := study.NewConfig("")
	cfg.NFolds = 5

	report, err := study.RunFrame(cfg, syntheticFrame(100))
	require.NoError(t, err)

	assert.Equal(t, 80, report.NTrain)
	assert.Equal(t, 20, report.NHoldout)
	assert.Equal(t, 100, report.NRows)

	require.Len(t, report.Models, 4)
	names := make([]string, 0, 4)
	for _, m := range report.Models {
		names = append(names, m.Name)
		require.Len(t, m.CV.Folds, 5, "model %s", m.Name)

		assert.Greater(t, m.Holdout.RMSE, 0.0, "model %s", m.Name)
		assert.Greater(t, m.Holdout.MAE, 0.0, "model %s", m.Name)
		assert.Less(t, m.Holdout.R2, 1.0, "model %s", m.Name)
	}
	assert.Equal(t, []string{"ols", "elasticnet", "svr", "gbrt"}, names)

	// The outcome is mostly linear in the first two traits, so OLS should
	// recover real signal on the holdout.
	assert.Greater(t, report.Models[0].Holdout.R2, 0.0)

	best := report.Best()
	require.NotNil(t, best)
	for _, m := range report.Models {
		assert.LessOrEqual(t, best.Holdout.RMSE, m.Holdout.RMSE)
	}
}

func TestRunFrame_Deterministic(t *testing.T) {
	cfg := study.NewConfig("")
	cfg.NFolds = 5

	a, err := study.RunFrame(cfg, syntheticFrame(60))
	require.NoError(t, err)
	b, err := study.RunFrame(cfg, syntheticFrame(60))
	require.NoError(t, err)

	for i := range a.Models {
		assert.Equal(t, a.Models[i].Holdout, b.Models[i].Holdout,
			"model %s must be reproducible for a fixed seed", a.Models[i].Name)
	}
}

func TestRunFrame_Validation(t *testing.T) {
	frame := syntheticFrame(40)

	cfg := study.NewConfig("")
	cfg.NFolds = 1
	_, err := study.RunFrame(cfg, frame)
	assert.Error(t, err)
}

func TestRun_InvalidConfig(t *testing.T) {
	cfg := study.NewConfig("ignored.csv")
	cfg.HoldoutFraction = 0
	_, err := study.Run(cfg)
	assert.Error(t, err)

	cfg = study.NewConfig("ignored.csv")
	cfg.NFolds = 1
	_, err = study.Run(cfg)
	assert.Error(t, err)
}

func TestRun_FromCSV(t *testing.T) {
	path := writeSurveyCSV(t, 120)

	cfg := study.NewConfig(path)
	cfg.NFolds = 5

	report, err := study.Run(cfg)
	require.NoError(t, err)

	// Two rows have every predictor missing and must be dropped.
	assert.Equal(t, 2, report.NDropped)
	assert.Equal(t, 118, report.NRows)
	require.Len(t, report.Models, 4)
}

func TestReport_WriteTable(t *testing.T) {
	cfg := study.NewConfig("")
	cfg.NFolds = 5

	report, err := study.RunFrame(cfg, syntheticFrame(60))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, report.WriteTable(&buf))

	out := buf.String()
	for _, name := range []string{"ols", "elasticnet", "svr", "gbrt"} {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "hold RMSE")
}

func TestReport_SavePlot(t *testing.T) {
	cfg := study.NewConfig("")
	cfg.NFolds = 5

	report, err := study.RunFrame(cfg, syntheticFrame(60))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "comparison.png")
	require.NoError(t, report.SavePlot(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

// writeSurveyCSV writes a synthetic raw export: ten inventory items and the
// outcome, with sentinel codes sprinkled in and two rows fully missing on
// the predictor side.
func writeSurveyCSV(t *testing.T, n int) string {
	t.Helper()

	rng := rand.New(rand.NewPCG(3, 4))

	var sb strings.Builder
	sb.WriteString("tipi1,tipi2,tipi3,tipi4,tipi5,tipi6,tipi7,tipi8,tipi9,tipi10,srhealth\n")

	for i := 0; i < n; i++ {
		if i < 2 {
			// All ten items refused; the filter must drop these.
			sb.WriteString("-9,-9,-9,-9,-9,-9,-9,-9,-9,-9,3\n")
			continue
		}

		vals := make([]string, 0, 11)
		for j := 0; j < 10; j++ {
			if rng.Float64() < 0.05 {
				vals = append(vals, "-8")
			} else {
				vals = append(vals, fmt.Sprintf("%d", 1+rng.IntN(7)))
			}
		}
		vals = append(vals, fmt.Sprintf("%d", 1+rng.IntN(5)))
		sb.WriteString(strings.Join(vals, ","))
		sb.WriteByte('\n')
	}

	path := filepath.Join(t.TempDir(), "survey.csv")
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0o644))
	return path
}
