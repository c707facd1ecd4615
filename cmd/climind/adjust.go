package main

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/climate-indicator-etl/internal/adjust"
	"github.com/couchcryptid/climate-indicator-etl/internal/series"
	"github.com/couchcryptid/climate-indicator-etl/internal/units"
)

var adjustCmd = &cobra.Command{
	Use:   "adjust <jitter-under|jitter-over|standardize>",
	Short: "Pre-process a daily series for bias adjustment",
	Long: `Adjust applies one pre-processing step to a daily series read from a
CSV file with a "date,value" header and writes the result as CSV to stdout.

  jitter-under   replace values under --thresh with uniform noise in [0, thresh)
  jitter-over    replace values over --thresh with noise in [thresh, --upper)
  standardize    rescale to zero mean and unit variance

Example:

  climind adjust jitter-under --input pr_sim.csv --units mm/d --thresh "0.1 mm/d"`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"jitter-under", "jitter-over", "standardize"},
	RunE:      runAdjust,
}

func runAdjust(cmd *cobra.Command, args []string) error {
	input, _ := cmd.Flags().GetString("input")
	unitStr, _ := cmd.Flags().GetString("units")
	thresh, _ := cmd.Flags().GetString("thresh")
	upper, _ := cmd.Flags().GetString("upper")
	seed, _ := cmd.Flags().GetInt64("seed")

	u, err := units.ParseUnit(unitStr)
	if err != nil {
		return fmt.Errorf("parsing units %q: %w", unitStr, err)
	}
	s, err := readSeriesCSV(input, u)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(seed))

	var out *series.Series
	switch args[0] {
	case "jitter-under":
		if thresh == "" {
			return fmt.Errorf("jitter-under requires --thresh")
		}
		out, err = adjust.JitterUnderThresh(s, thresh, rng)
	case "jitter-over":
		if thresh == "" || upper == "" {
			return fmt.Errorf("jitter-over requires --thresh and --upper")
		}
		out, err = adjust.JitterOverThresh(s, thresh, upper, rng)
	case "standardize":
		var mean, std float64
		out, mean, std = adjust.Standardize(s)
		fmt.Fprintf(os.Stderr, "mean=%g std=%g\n", mean, std)
	default:
		return fmt.Errorf("unknown operation %q", args[0])
	}
	if err != nil {
		return err
	}

	return writeSeriesCSV(os.Stdout, out)
}

func writeSeriesCSV(f *os.File, s *series.Series) error {
	w := csv.NewWriter(f)
	if err := w.Write([]string{"date", "value"}); err != nil {
		return err
	}
	for i, t := range s.Times {
		value := ""
		if v := s.Values[i]; !math.IsNaN(v) {
			value = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := w.Write([]string{t.Format("2006-01-02"), value}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func init() {
	adjustCmd.Flags().String("input", "", "path to a date,value CSV file (required)")
	adjustCmd.Flags().String("units", "", "units of the input values, e.g. degC, K, mm/d (required)")
	adjustCmd.Flags().String("thresh", "", `threshold quantity, e.g. "0.1 mm/d"`)
	adjustCmd.Flags().String("upper", "", `upper bound quantity for jitter-over, e.g. "300 mm/d"`)
	adjustCmd.Flags().Int64("seed", 0, "random seed for jitter noise")
	_ = adjustCmd.MarkFlagRequired("input")
	_ = adjustCmd.MarkFlagRequired("units")

	rootCmd.AddCommand(adjustCmd)
}
