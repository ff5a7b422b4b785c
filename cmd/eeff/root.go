package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/castlemilk/eeff/internal/config"
	"github.com/castlemilk/eeff/internal/extraction"
)

var (
	cfgFile      string
	outputFormat string
	appConfig    *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "eeff [file.pdf ...]",
	Short: "Extract income statement line-items from financial statement PDFs",
	Long: `eeff reads financial statement PDFs and extracts a fixed set of
accounting line-items (code + label) into a table with one column per item.

Without arguments it runs a demonstration on the configured demo_path.
With one or more PDF paths it converts each file into a row of the table.

Examples:
  eeff                               # demo run on demo_path
  eeff 202312_ER.pdf 202406_ER.pdf   # batch conversion
  eeff -f csv reports/*.pdf > out.csv`,
	Version:       gitRelease,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("format") {
			cfg.Format = outputFormat
			if err := cfg.Validate(); err != nil {
				return err
			}
		}
		appConfig = cfg
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		extCfg, err := appConfig.ExtractionConfig()
		if err != nil {
			return err
		}
		extractor := extraction.NewExtractor(extCfg, nil)

		if len(args) == 0 {
			runDemo(cmd.Context(), cmd.OutOrStdout(), extractor, appConfig.DemoPath, appConfig.Format)
			return nil
		}
		return runBatch(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), extractor, args, appConfig.Format)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./eeff.yaml or ~/.eeff/eeff.yaml)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "format", "f", "text", "output format: text, csv or json",
	)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// runDemo extracts a single file and reports the outcome on out. It never
// fails; errors are printed instead.
func runDemo(ctx context.Context, out io.Writer, extractor *extraction.Extractor, path, format string) *extraction.Table {
	table, err := extractor.ExtractFile(ctx, path)
	if err != nil {
		fmt.Fprintf(out, "Error during extraction: %v\n", err)
		return nil
	}

	fmt.Fprintln(out, "Data extracted successfully:")
	if err := table.Write(out, format); err != nil {
		fmt.Fprintf(out, "Error during extraction: %v\n", err)
		return nil
	}
	return table
}

// runBatch converts every path, writes the table of successes to out and
// lists failures on errOut. It fails only when no file could be converted.
func runBatch(ctx context.Context, out, errOut io.Writer, extractor *extraction.Extractor, paths []string, format string) error {
	table, errs := extractor.ExtractFiles(ctx, paths)
	for _, err := range errs {
		fmt.Fprintf(errOut, "Error during extraction: %v\n", err)
	}
	if len(table.Rows) == 0 {
		return fmt.Errorf("no file could be extracted (%d failed)", len(errs))
	}
	return table.Write(out, format)
}
