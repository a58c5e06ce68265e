// Package commands implements the CLI commands for pharmaseek.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "pharmaseek",
	Short: "Scrape national medicine registers for MA holders and manufacturers",
	Long: `Pharmaseek searches national medicine registers by active substance,
walks every result, and records the marketing authorisation holder and
manufacturer of each product, downloading the package leaflet along the way.

Examples:
  # Search the Italian register (AIFA) for one substance
  pharmaseek scrape -s ibuprofen

  # Polish register, several substances, SQLite output
  pharmaseek scrape --registry rpl -s ibuprofen -s "kwas acetylosalicylowy" \
      --format sqlite --output results.db

  # Bound pagination and keep diagnostic snapshots
  pharmaseek scrape --registry rpl -s paracetamol --max-pages 3 \
      --debug-dir debug/

  # Run against a saved page snapshot instead of the live site
  pharmaseek scrape -s ibuprofen --start-url "file:///tmp/listing.html"`,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config file (default $HOME/.pharmaseek.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress progress output")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".pharmaseek")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("PHARMASEEK")
	viper.AutomaticEnv()

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// logError prints an error message to stderr.
func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

// logInfo prints an info message to stderr (unless quiet mode).
func logInfo(format string, args ...any) {
	if !viper.GetBool("quiet") {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
