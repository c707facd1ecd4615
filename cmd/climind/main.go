// Package main is the entry point for the climind CLI, the offline
// companion to the indicatord service. It converts quantities between
// climate units, computes catalog indicators over local series files, and
// queries the indicator database.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the climind CLI.
var rootCmd = &cobra.Command{
	Use:   "climind",
	Short: "Climate indicator toolbox",
	Long: `climind works with the same unit tables and indicator catalog as the
indicatord service, but over local files instead of Kafka topics.

Use convert for one-off unit conversions, compute to evaluate an indicator
over a daily series file, catalog to inspect the indicator definitions, and
query to read values the service has stored.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./climind.yaml or ~/.config/climind/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("climind")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "climind"))
		}
	}

	viper.SetEnvPrefix("CLIMIND")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
