// Command surveyreg runs the survey regression study: it cleans a survey
// export into trait scores, cross-validates four regression families on
// identical folds and reports holdout performance.
//
// Usage:
//
//	surveyreg -data survey.dta
//	surveyreg -data export.csv -folds 5 -holdout 0.25 -plot rmse.png
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/traitlab/surveyreg/pkg/log"
	"github.com/traitlab/surveyreg/preprocessing"
	"github.com/traitlab/surveyreg/study"
)

func main() {
	var (
		dataPath = flag.String("data", "", "survey export to analyze (.dta, .sas7bdat or .csv)")
		format   = flag.String("format", "", "force input format: stata, sas7bdat or csv (default: by extension)")
		holdout  = flag.Float64("holdout", 0.2, "fraction of rows reserved for the holdout")
		folds    = flag.Int("folds", 10, "number of cross-validation folds")
		seed     = flag.Int64("seed", 42, "seed for splits, folds and stochastic models")
		impute   = flag.String("impute", "mean", "imputation strategy: mean or median")
		plotPath = flag.String("plot", "", "optional path for an RMSE comparison chart (.png, .svg, .pdf)")
		logLevel = flag.String("log-level", "info", "log level: debug, info, warn or error")
	)
	flag.Parse()

	log.SetOutput(zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger())
	log.SetLevel(log.ParseLevel(*logLevel))

	if *dataPath == "" {
		fmt.Fprintln(os.Stderr, "surveyreg: -data is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg := study.NewConfig(*dataPath)
	cfg.Format = *format
	cfg.HoldoutFraction = *holdout
	cfg.NFolds = *folds
	cfg.Seed = *seed
	cfg.ImputeStrategy = parseStrategy(*impute)

	report, err := study.Run(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "surveyreg: %v\n", err)
		os.Exit(1)
	}

	if err := report.WriteTable(os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "surveyreg: %v\n", err)
		os.Exit(1)
	}

	if best := report.Best(); best != nil {
		fmt.Printf("\nbest holdout RMSE: %s (%.4f)\n", best.Name, best.Holdout.RMSE)
	}

	if *plotPath != "" {
		if err := report.SavePlot(*plotPath); err != nil {
			fmt.Fprintf(os.Stderr, "surveyreg: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("comparison chart written to %s\n", *plotPath)
	}
}

func parseStrategy(name string) preprocessing.ImputeStrategy {
	if name == "median" {
		return preprocessing.StrategyMedian
	}
	return preprocessing.StrategyMean
}
