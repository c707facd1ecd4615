package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/climate-indicator-etl/internal/catalog"
	"github.com/couchcryptid/climate-indicator-etl/internal/series"
	"github.com/couchcryptid/climate-indicator-etl/internal/units"
)

var computeCmd = &cobra.Command{
	Use:   "compute <indicator>",
	Short: "Compute a catalog indicator over a local daily series",
	Long: `Compute evaluates one indicator from the catalog over a daily series
read from a CSV file with a "date,value" header. Dates are YYYY-MM-DD; blank
values are treated as missing.

Example:

  climind compute tx_days_above --input tasmax_2001.csv --units degC`,
	Args: cobra.ExactArgs(1),
	RunE: runCompute,
}

func runCompute(cmd *cobra.Command, args []string) error {
	input, _ := cmd.Flags().GetString("input")
	unitStr, _ := cmd.Flags().GetString("units")
	catalogPath, _ := cmd.Flags().GetString("catalog")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cat, err := loadCatalog(catalogPath)
	if err != nil {
		return err
	}
	ind, ok := cat.Get(args[0])
	if !ok {
		return fmt.Errorf("unknown indicator %q, run \"climind catalog\" to list indicators", args[0])
	}

	u, err := units.ParseUnit(unitStr)
	if err != nil {
		return fmt.Errorf("parsing units %q: %w", unitStr, err)
	}

	s, err := readSeriesCSV(input, u)
	if err != nil {
		return err
	}

	result, err := ind.Apply(s)
	if err != nil {
		return err
	}

	return writeComputeOutput(ind, result, jsonOutput)
}

// computedPeriod is one output row of the compute command.
type computedPeriod struct {
	Period string   `json:"period"`
	Value  *float64 `json:"value"` // nil when no value could be computed
	Unit   string   `json:"unit"`
}

func writeComputeOutput(ind catalog.Indicator, result *series.Series, jsonOutput bool) error {
	rows := make([]computedPeriod, len(result.Times))
	for i, t := range result.Times {
		row := computedPeriod{
			Period: t.Format("2006-01-02"),
			Unit:   result.Attrs.Units.Symbol,
		}
		if v := result.Values[i]; !math.IsNaN(v) {
			row.Value = &v
		}
		rows[i] = row
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"indicator": ind.Name,
			"freq":      ind.Freq,
			"periods":   rows,
		})
	}

	fmt.Printf("%s (%s, %s)\n", ind.Name, ind.Freq, result.Attrs.Units.Symbol)
	for _, row := range rows {
		if row.Value == nil {
			fmt.Printf("  %s  -\n", row.Period)
			continue
		}
		fmt.Printf("  %s  %g\n", row.Period, *row.Value)
	}
	return nil
}

// readSeriesCSV reads a "date,value" CSV into a daily series.
func readSeriesCSV(path string, u units.Unit) (*series.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open series file: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read series file: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("series file %s has no data rows", path)
	}

	times := make([]time.Time, 0, len(rows)-1)
	values := make([]float64, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) < 2 {
			return nil, fmt.Errorf("row %d: expected date,value", i+2)
		}
		ts, err := time.Parse("2006-01-02", row[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		v := math.NaN()
		if row[1] != "" {
			v, err = strconv.ParseFloat(row[1], 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i+2, err)
			}
		}
		times = append(times, ts)
		values = append(values, v)
	}

	return series.New(times, values, series.Attrs{Units: u})
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(path)
}

func init() {
	computeCmd.Flags().String("input", "", "path to a date,value CSV file (required)")
	computeCmd.Flags().String("units", "", "units of the input values, e.g. degC, K, mm/d (required)")
	computeCmd.Flags().String("catalog", "", "indicator catalog YAML (default: built-in catalog)")
	computeCmd.Flags().Bool("json", false, "output results as JSON")
	_ = computeCmd.MarkFlagRequired("input")
	_ = computeCmd.MarkFlagRequired("units")

	rootCmd.AddCommand(computeCmd)
}
