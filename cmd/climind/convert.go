package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/climate-indicator-etl/internal/units"
)

var convertCmd = &cobra.Command{
	Use:   "convert <quantity> <unit>",
	Short: "Convert a quantity between climate units",
	Long: `Convert parses a quantity such as "20 degC" or "5 mm/d" and converts it
to the target unit. Precipitation converts between depth-per-time and mass
flux using the density of water (1 kg m-2 s-1 equals 86400 mm/d).

Examples:

  climind convert "20 degC" K
  climind convert "1 kg m-2 s-1" mm/d
  climind convert "30 knot" "m s-1"`,
	Args: cobra.ExactArgs(2),
	RunE: runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	q, err := units.Parse(args[0])
	if err != nil {
		return fmt.Errorf("parsing quantity %q: %w", args[0], err)
	}
	target, err := units.ParseUnit(args[1])
	if err != nil {
		return fmt.Errorf("parsing target unit %q: %w", args[1], err)
	}

	converted, err := units.Convert(q, target)
	if err != nil {
		return err
	}

	fmt.Printf("%g %s\n", converted.Value, converted.Unit.Symbol)
	return nil
}

func init() {
	rootCmd.AddCommand(convertCmd)
}
