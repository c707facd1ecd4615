package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the indicator catalog",
	Long: `Catalog prints the indicator definitions the service computes: the input
variable, the computation, the threshold, and the resampling frequency.`,
	RunE: runCatalog,
}

func runCatalog(cmd *cobra.Command, args []string) error {
	catalogPath, _ := cmd.Flags().GetString("catalog")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cat, err := loadCatalog(catalogPath)
	if err != nil {
		return err
	}
	indicators := cat.Indicators()

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(indicators)
	}

	fmt.Printf("%-26s  %-8s  %-18s  %-4s  %-12s  %s\n",
		"Name", "Variable", "Compute", "Freq", "Threshold", "Reducer")
	for _, ind := range indicators {
		threshold := ind.Threshold
		if threshold == "" {
			threshold = "-"
		}
		reducer := ind.Reducer
		if reducer == "" {
			reducer = "-"
		}
		fmt.Printf("%-26s  %-8s  %-18s  %-4s  %-12s  %s\n",
			ind.Name, ind.Variable, ind.Compute, ind.Freq, threshold, reducer)
	}
	return nil
}

func init() {
	catalogCmd.Flags().String("catalog", "", "indicator catalog YAML (default: built-in catalog)")
	catalogCmd.Flags().Bool("json", false, "output catalog as JSON")

	rootCmd.AddCommand(catalogCmd)
}
