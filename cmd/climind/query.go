package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/couchcryptid/climate-indicator-etl/internal/store"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query indicator values stored by the service",
	Long: `Query reads computed indicator values from the service's SQLite database.
The database path defaults to the service's default and can be overridden
with --db or the CLIMIND_DB environment variable.`,
	RunE: runQuery,
}

func runQuery(cmd *cobra.Command, args []string) error {
	dbPath, _ := cmd.Flags().GetString("db")
	if dbPath == "" {
		dbPath = viper.GetString("db")
	}
	if dbPath == "" {
		dbPath = "data/indicators.db"
	}

	opts, err := queryOptsFromFlags(cmd)
	if err != nil {
		return err
	}

	s, err := store.New(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()

	values, err := s.ListValues(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(values)
	}

	if len(values) == 0 {
		fmt.Println("No values found.")
		return nil
	}

	fmt.Printf("%-26s  %-12s  %-12s  %-10s  %-6s  %s\n",
		"Indicator", "Station", "Period", "Value", "Unit", "Inputs")
	for _, v := range values {
		value := fmt.Sprintf("%g", v.Value)
		if math.IsNaN(v.Value) {
			value = "-"
		}
		fmt.Printf("%-26s  %-12s  %-12s  %-10s  %-6s  %d\n",
			v.Indicator, v.Station, v.PeriodStart.Format("2006-01-02"),
			value, v.Unit, v.InputCount)
	}
	return nil
}

func queryOptsFromFlags(cmd *cobra.Command) (store.QueryOptions, error) {
	opts := store.QueryOptions{}
	opts.Station, _ = cmd.Flags().GetString("station")
	opts.Indicator, _ = cmd.Flags().GetString("indicator")
	opts.Limit, _ = cmd.Flags().GetInt("limit")

	if v, _ := cmd.Flags().GetString("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return opts, fmt.Errorf("parsing --from: %w", err)
		}
		opts.From = t
	}
	if v, _ := cmd.Flags().GetString("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return opts, fmt.Errorf("parsing --to: %w", err)
		}
		opts.To = t
	}
	return opts, nil
}

func init() {
	queryCmd.Flags().String("db", "", "path to the indicator SQLite database")
	queryCmd.Flags().String("station", "", "filter by station identifier")
	queryCmd.Flags().String("indicator", "", "filter by indicator name")
	queryCmd.Flags().String("from", "", "period range start (YYYY-MM-DD, inclusive)")
	queryCmd.Flags().String("to", "", "period range end (YYYY-MM-DD, exclusive)")
	queryCmd.Flags().Int("limit", 50, "maximum number of values to print")
	queryCmd.Flags().Bool("json", false, "output values as JSON")

	rootCmd.AddCommand(queryCmd)
}
