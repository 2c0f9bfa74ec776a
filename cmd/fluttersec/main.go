package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"fluttersec/internal/config"
	"fluttersec/internal/engine"
	"fluttersec/internal/reporting"
	"fluttersec/pkg/logging"
	"fluttersec/pkg/types"
)

var version = "0.1.0"

var (
	cfgFile      string
	outputPath   string
	outputFormat string
	workDir      string
	attackSim    bool
	failOn       string
	verbose      bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "fluttersec",
		Short:   "fluttersec - Security scanner for Flutter apps",
		Long:    "Automated security analysis of APK/IPA packages with attack simulation and detailed remediation.",
		Version: version,
	}

	scanCmd := &cobra.Command{
		Use:   "scan <file>",
		Short: "Scan an APK or IPA file for security vulnerabilities",
		Args:  cobra.ExactArgs(1),
		RunE:  runScan,
	}
	scanCmd.Flags().StringVarP(&cfgFile, "config", "c", "", "Config file path (defaults to built-in vocabularies)")
	scanCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path for the report")
	scanCmd.Flags().StringVarP(&outputFormat, "format", "f", "", "Report format (html, json, markdown, terminal)")
	scanCmd.Flags().StringVar(&workDir, "workdir", "", "Extraction directory (default: temp dir, removed after scan)")
	scanCmd.Flags().BoolVar(&attackSim, "attack-sim", false, "Show detailed attack simulation output")
	scanCmd.Flags().StringVar(&failOn, "fail-on", "", "Exit non-zero if findings exist at this severity (critical, high, medium)")
	scanCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.AddCommand(scanCmd)

	if err := rootCmd.Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func runScan(cmd *cobra.Command, args []string) error {
	logging.InitLogger(verbose)
	defer logging.Sync()

	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return err
	}

	eng, err := engine.NewEngine(cfg)
	if err != nil {
		return err
	}

	color.Cyan("fluttersec v%s | scanning %s", version, args[0])

	result, sim, err := eng.Scan(cmd.Context(), &engine.Task{
		PackagePath: args[0],
		WorkDir:     workDir,
	})
	if err != nil {
		return err
	}

	// Terminal summary always; the file report when requested.
	console := reporting.NewConsoleReporter(verbose || attackSim)
	if err := console.Generate(result, sim, ""); err != nil {
		return err
	}

	if outputPath != "" {
		reporter, err := reporting.ForOutput(outputFormat, outputPath)
		if err != nil {
			return err
		}
		if err := reporter.Generate(result, sim, outputPath); err != nil {
			return err
		}
		color.Green("Report saved to: %s", outputPath)
	}

	if failOn != "" {
		sev, err := types.ParseSeverity(failOn)
		if err != nil {
			return fmt.Errorf("invalid --fail-on value %q", failOn)
		}
		if result.CountBySeverity()[sev.String()] > 0 {
			color.Red("Build failed: found %s severity issues", sev)
			os.Exit(1)
		}
	}

	color.Green("Scan completed successfully")
	return nil
}
