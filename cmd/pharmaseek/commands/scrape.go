package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pharmaseek/pharmaseek/internal/browser"
	"github.com/pharmaseek/pharmaseek/internal/logger"
	"github.com/pharmaseek/pharmaseek/internal/registry"
	"github.com/pharmaseek/pharmaseek/internal/sink"
	"github.com/pharmaseek/pharmaseek/internal/traverse"
	"github.com/pharmaseek/pharmaseek/pkg/pdftext"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Search a register and extract MA holder and manufacturer data",
	Long: `Search a national medicine register by active substance and walk every
result. Each product yields one output row with the marketing
authorisation holder, the manufacturer, and the downloaded leaflet path.

Fields that cannot be resolved are recorded as "Not Found"; a substance
with no results still completes the run.

Examples:
  # Italian register, CSV output (default)
  pharmaseek scrape -s ibuprofen

  # Several substances into SQLite
  pharmaseek scrape --registry rpl -s ibuprofen -s paracetamol \
      --format sqlite --output results.db

  # Custom registry profile
  pharmaseek scrape -s ibuprofen --profile myregister.yaml`,
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	flags := scrapeCmd.Flags()

	// Search inputs
	flags.StringSliceP("substance", "s", nil, "active substance(s) to search (can be repeated)")
	flags.StringP("registry", "r", "aifa", "builtin registry: aifa, rpl")
	flags.String("profile", "", "path to a custom registry profile (YAML, overrides --registry)")
	flags.String("start-url", "", "override the registry start URL (e.g. a file:// snapshot)")

	// Output settings
	flags.StringP("output", "o", "", "output file (default: medicine_data.<format>)")
	flags.String("format", "csv", "output format: csv, sqlite")
	flags.String("output-dir", "outputs", "directory for downloaded leaflets")
	flags.String("debug-dir", "", "write page snapshots for skipped items to this directory")

	// Browser settings
	flags.Bool("headless", true, "run the browser without a visible window (use --headless=false to watch)")
	flags.Duration("timeout", 30*time.Second, "default per-operation browser timeout")
	flags.Duration("settle", 800*time.Millisecond, "pause after in-place DOM updates")

	// Traversal settings
	flags.Int("max-pages", 0, "max listing pages per substance (0=unlimited)")
	flags.IntP("concurrency", "c", 1, "substances scraped in parallel (one browser each)")

	_ = scrapeCmd.MarkFlagRequired("substance")

	_ = viper.BindPFlag("registry", flags.Lookup("registry"))
	_ = viper.BindPFlag("format", flags.Lookup("format"))
	_ = viper.BindPFlag("output_dir", flags.Lookup("output-dir"))
}

func runScrape(cmd *cobra.Command, args []string) error {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	substances, _ := cmd.Flags().GetStringSlice("substance")
	if len(substances) == 0 {
		return cmd.Help()
	}
	logger.Debug("substances to search", "count", len(substances), "substances", substances)

	profile, err := loadProfile(cmd)
	if err != nil {
		logError("%v", err)
		return err
	}
	logger.Debug("registry profile loaded", "registry", profile.Name, "mode", profile.Mode)

	formatStr := viper.GetString("format")
	format := sink.Format(strings.ToLower(formatStr))
	outPath, _ := cmd.Flags().GetString("output")
	if outPath == "" {
		outPath = defaultOutputPath(format)
	}
	out, err := sink.New(format, outPath)
	if err != nil {
		logError("%v", err)
		return err
	}

	outputDir := viper.GetString("output_dir")
	debugDir, _ := cmd.Flags().GetString("debug-dir")
	startURL, _ := cmd.Flags().GetString("start-url")
	maxPages, _ := cmd.Flags().GetInt("max-pages")
	settle, _ := cmd.Flags().GetDuration("settle")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	headless, _ := cmd.Flags().GetBool("headless")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	cfg := traverse.DefaultConfig()
	cfg.OutputDir = outputDir
	cfg.DebugDir = debugDir
	cfg.StartURL = startURL
	cfg.MaxPages = maxPages
	cfg.SettleDelay = settle

	factory := func() (browser.Session, error) {
		bcfg := browser.DefaultConfig()
		bcfg.Headless = headless
		bcfg.Timeout = timeout
		bcfg.DownloadDir = outputDir
		return browser.New(bcfg)
	}

	runner := traverse.NewRunner(factory, profile, pdftext.Default(), cfg, concurrency)

	logInfo("Scraping %s for %d substance(s)...", profile.Name, len(substances))
	started := time.Now()
	set, summary := runner.RunAll(ctx, substances)

	if err := out.Flush(set.Rows()); err != nil {
		logError("failed to write output: %v", err)
		return err
	}

	logInfo("Done in %s: %d row(s) written to %s (%s)",
		time.Since(started).Round(time.Second), summary.Rows, outPath, outputSize(outPath))
	if summary.ItemsSkipped > 0 {
		logInfo("Skipped %d result item(s); re-run with --debug for details", summary.ItemsSkipped)
	}
	for _, s := range summary.ZeroResults {
		logInfo("No results for %q", s)
	}
	if len(summary.FailedRuns) > 0 {
		return fmt.Errorf("%d substance run(s) failed: %s",
			len(summary.FailedRuns), strings.Join(summary.FailedRuns, ", "))
	}
	return nil
}

// loadProfile resolves the registry profile: an explicit YAML file wins
// over the builtin named by --registry.
func loadProfile(cmd *cobra.Command) (*registry.Profile, error) {
	if path, _ := cmd.Flags().GetString("profile"); path != "" {
		return registry.FromFile(path)
	}
	return registry.Get(viper.GetString("registry"))
}

func defaultOutputPath(format sink.Format) string {
	if format == sink.FormatSQLite {
		return "medicine_data.db"
	}
	return "medicine_data.csv"
}

// outputSize reports the flushed file's size for the run summary.
func outputSize(path string) string {
	fi, err := os.Stat(path)
	if err != nil {
		return "unknown size"
	}
	return humanize.Bytes(uint64(fi.Size()))
}
