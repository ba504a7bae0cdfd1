// Package main provides the CLI entry point for the ptflow runtime.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ptflow/runtime/internal/cli"
	"github.com/ptflow/runtime/internal/config"
	"github.com/ptflow/runtime/internal/logger"
	"github.com/ptflow/runtime/internal/persistence"
	"github.com/ptflow/runtime/internal/runtime"
	"github.com/ptflow/runtime/pkg/analysis"
)

// Exit codes
const (
	ExitSuccess         = 0
	ExitValidationError = 1
	ExitParseError      = 2
	ExitRuntimeError    = 3
)

var (
	// Global flags
	verbose   bool
	quiet     bool
	logFormat string
	logFile   string

	// Run command flags
	dryRun   bool
	stateDir string

	// Build information (set via ldflags during build)
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitRuntimeError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ptflow",
	Short: "ptflow - Declarative event selection runtime",
	Long: `ptflow runs declarative analysis pipelines over columnar event data.

A pipeline reads events (three equal-length columns: e, px, py),
applies an energy cut, computes the transverse momentum of each
passing candidate, and accumulates the values into a histogram or
CSV file. Several selector implementations are available and can be
run side by side; the runtime cross-checks that they agree bit for bit.

Examples:
  # Validate a configuration file
  ptflow validate pipeline.yaml

  # Run a pipeline
  ptflow run pipeline.yaml

  # Preview what the sink would accumulate without writing anything
  ptflow run --dry-run pipeline.yaml`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		} else if quiet {
			level = slog.LevelError
		}

		format := logger.FormatJSON
		if logFormat == "human" {
			format = logger.FormatHuman
		}

		if logFile != "" {
			if err := logger.SetLogFile(logFile, level, format); err != nil {
				fmt.Fprintf(os.Stderr, "✗ Failed to open log file: %v\n", err)
				os.Exit(ExitRuntimeError)
			}
			return
		}
		logger.SetLevelAndFormat(level, format)
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <config-file>",
	Short: "Validate a pipeline configuration file",
	Long: `Validate a pipeline configuration file against the schema.

Supports both JSON and YAML formats. The format is auto-detected
based on file extension (.json, .yaml, .yml) or content.

Exit codes:
  0 - Configuration is valid
  1 - Validation errors (schema violations)
  2 - Parse errors (invalid JSON/YAML syntax)

Examples:
  ptflow validate pipeline.json
  ptflow validate --verbose pipeline.yaml`,
	Args: cobra.ExactArgs(1),
	Run:  runValidate,
}

var runCmd = &cobra.Command{
	Use:   "run <config-file>",
	Short: "Run a pipeline from a configuration file",
	Long: `Run a pipeline defined in the configuration file.

The configuration is validated against the schema first; an invalid
pipeline is never executed. With --dry-run the full selection runs
but the sink writes nothing, and a preview of the would-be result is
printed instead.

Exit codes:
  0 - Pipeline executed successfully
  1 - Validation errors
  2 - Parse errors
  3 - Runtime errors

Examples:
  ptflow run pipeline.json
  ptflow run --verbose pipeline.yaml
  ptflow run --dry-run pipeline.json`,
	Args: cobra.ExactArgs(1),
	Run:  runPipeline,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Print version, commit hash, and build date information.",
	Run:   runVersion,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "json", "Log output format: json or human")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to a file (JSON) in addition to the console")

	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run the selection without writing sink output")
	runCmd.Flags().StringVar(&stateDir, "state-dir", "", "Directory for run records (default "+persistence.DefaultStatePath+")")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}

func runValidate(_ *cobra.Command, args []string) {
	configPath := args[0]

	if !quiet {
		fmt.Printf("Validating configuration: %s\n", configPath)
	}

	result := config.ParseConfig(configPath)
	if len(result.ParseErrors) > 0 {
		cli.PrintParseErrors(result.ParseErrors, verbose)
		os.Exit(ExitParseError)
	}
	if len(result.ValidationErrors) > 0 {
		cli.PrintValidationErrors(result.ValidationErrors, verbose, quiet)
		os.Exit(ExitValidationError)
	}

	if !quiet {
		fmt.Printf("✓ Configuration is valid (format: %s)\n", result.Format)
		if verbose {
			cli.PrintConfigSummary(result.Data)
		}
	}
	os.Exit(ExitSuccess)
}

func runPipeline(_ *cobra.Command, args []string) {
	configPath := args[0]

	if !quiet {
		fmt.Printf("Loading pipeline configuration: %s\n", configPath)
	}

	result := config.ParseConfig(configPath)
	if len(result.ParseErrors) > 0 {
		cli.PrintParseErrors(result.ParseErrors, verbose)
		os.Exit(ExitParseError)
	}
	if len(result.ValidationErrors) > 0 {
		cli.PrintValidationErrors(result.ValidationErrors, verbose, quiet)
		os.Exit(ExitValidationError)
	}

	pipeline, err := config.ConvertToPipeline(result.Data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ Failed to convert configuration: %v\n", err)
		os.Exit(ExitRuntimeError)
	}

	if verbose {
		fmt.Printf("  Pipeline: %s (v%s)\n", pipeline.Name, pipeline.Version)
		if pipeline.Description != "" {
			fmt.Printf("  Description: %s\n", pipeline.Description)
		}
		fmt.Printf("  Selectors: %d\n", len(pipeline.Selectors))
	}

	store := persistence.NewRunStore(stateDir)
	if prev, err := store.Load(pipeline.ID); err == nil && prev != nil {
		logger.Info("previous run",
			"pipeline_id", pipeline.ID,
			"status", prev.Status,
			"completed_at", prev.CompletedAt,
			"candidates_selected", prev.CandidatesSelected,
		)
	}

	executor, err := runtime.NewExecutor(pipeline, dryRun)
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ Failed to create pipeline modules: %v\n", err)
		os.Exit(ExitRuntimeError)
	}

	if !quiet {
		if dryRun {
			fmt.Println("Executing pipeline (dry-run mode - sink output will not be written)...")
		} else {
			fmt.Println("Executing pipeline...")
		}
	}

	execResult, err := executor.Execute(pipeline)

	cli.PrintExecutionResult(execResult, err, cli.OutputOptions{
		Verbose: verbose,
		Quiet:   quiet,
		DryRun:  dryRun,
	})
	saveRunRecord(store, pipeline.ID, execResult)

	if err != nil {
		os.Exit(ExitRuntimeError)
	}
	os.Exit(ExitSuccess)
}

// saveRunRecord persists the execution outcome so later invocations can
// inspect the last run. Failures here never fail the run itself.
func saveRunRecord(store *persistence.RunStore, pipelineID string, result *analysis.ExecutionResult) {
	record := persistence.NewRunRecord(result, dryRun)
	if record == nil {
		return
	}
	if err := store.Save(pipelineID, record); err != nil {
		logger.Warn("failed to save run record", "pipeline_id", pipelineID, "error", err.Error())
	}
}

func runVersion(cmd *cobra.Command, _ []string) {
	fmt.Fprintf(cmd.OutOrStdout(), "Version: %s\n", version)
	fmt.Fprintf(cmd.OutOrStdout(), "Commit: %s\n", commit)
	fmt.Fprintf(cmd.OutOrStdout(), "Build Date: %s\n", buildDate)
}
