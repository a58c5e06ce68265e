package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pharmaseek/pharmaseek/internal/discover"
	"github.com/pharmaseek/pharmaseek/internal/logger"
	"github.com/pharmaseek/pharmaseek/internal/registry"
)

var registriesCmd = &cobra.Command{
	Use:   "registries",
	Short: "List the supported medicine registers",
	Long: `List the builtin registry profiles.

With --discover, the current register entry URLs are additionally
resolved from the EMA overview of national registers.`,
	RunE: runRegistries,
}

func init() {
	rootCmd.AddCommand(registriesCmd)

	registriesCmd.Flags().Bool("discover", false, "resolve current register URLs from the EMA overview page")
}

func runRegistries(cmd *cobra.Command, args []string) error {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tMODE\tSTART URL")
	for _, name := range registry.Names() {
		p, err := registry.Get(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.Name, p.Mode, p.StartURL)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if ok, _ := cmd.Flags().GetBool("discover"); !ok {
		return nil
	}

	links, err := discover.CountryRegisters(cmd.Context())
	if err != nil {
		logError("discovery failed: %v", err)
		return err
	}
	fmt.Println()
	for country, url := range links {
		fmt.Printf("EMA lists %s register at %s\n", country, url)
	}
	return nil
}
