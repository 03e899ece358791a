package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"payment-linking-engine/cmd/linker/config"
	"payment-linking-engine/internal/parsers"
	"payment-linking-engine/internal/reconciler"
	"payment-linking-engine/internal/reporter"
	"payment-linking-engine/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the link command
var (
	paymentsFile  string
	contractsFile string
	outputFormat  string
	outputFile    string
	showReasons   bool
	profile       string

	relevanceFloor    float64
	autoLinkThreshold float64
	reviewThreshold   float64
	manualThreshold   float64
	amountTolerance   float64
	temporalWindow    int
	topMatches        int
	workers           int

	logLevel  string
	logFormat string
	logFile   string
)

// linkCmd represents the link command
var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Link payment records to rental contracts",
	Long: `Link reads a payment batch and a contract snapshot from CSV files,
extracts identifying entities from each payment description, and scores
every eligible contract against each payment. The result is a ranked
shortlist per payment with a recommended action: auto_link, review,
manual, or reject.

This command requires:
- A payment batch file (CSV format)
- A contract snapshot file (CSV format)

Examples:
  # Basic linking
  linker link --payments-file payments.csv --contracts-file contracts.csv

  # JSON report written to a file
  linker link --payments-file payments.csv --contracts-file contracts.csv \
    --output-format json --output-file report.json

  # Conservative matching with decision reasons
  linker link --payments-file payments.csv --contracts-file contracts.csv \
    --profile strict --show-reasons

  # Loosen the amount band and widen the date window
  linker link --payments-file payments.csv --contracts-file contracts.csv \
    --amount-tolerance 15 --temporal-window 540`,

	PreRunE: validateLinkFlags,
	RunE:    runLink,
}

func init() {
	rootCmd.AddCommand(linkCmd)

	// Required flags
	linkCmd.Flags().StringVarP(&paymentsFile, "payments-file", "p", "", "path to payment batch CSV file (required)")
	linkCmd.Flags().StringVarP(&contractsFile, "contracts-file", "c", "", "path to contract snapshot CSV file (required)")

	// Output flags
	linkCmd.Flags().StringVarP(&outputFormat, "output-format", "f", "console", "output format: console, json, csv")
	linkCmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "output file path (default: stdout)")
	linkCmd.Flags().BoolVar(&showReasons, "show-reasons", false, "include decision reasoning in console output")

	// Matching configuration flags
	linkCmd.Flags().StringVar(&profile, "profile", "default", "matching profile: default, strict, relaxed")
	linkCmd.Flags().Float64Var(&relevanceFloor, "relevance-floor", -1, "minimum overall score to keep a candidate (overrides profile)")
	linkCmd.Flags().Float64Var(&autoLinkThreshold, "auto-link-threshold", -1, "confidence required for automatic linking (overrides profile)")
	linkCmd.Flags().Float64Var(&reviewThreshold, "review-threshold", -1, "confidence required for review queue (overrides profile)")
	linkCmd.Flags().Float64Var(&manualThreshold, "manual-threshold", -1, "confidence required for manual queue (overrides profile)")
	linkCmd.Flags().Float64VarP(&amountTolerance, "amount-tolerance", "a", -1, "amount tolerance percentage (overrides profile)")
	linkCmd.Flags().IntVar(&temporalWindow, "temporal-window", -1, "date matching window in days (overrides profile)")
	linkCmd.Flags().IntVar(&topMatches, "top-matches", 0, "ranked candidates kept per payment (overrides profile)")
	linkCmd.Flags().IntVarP(&workers, "workers", "w", 0, "concurrent payment workers (default: one per CPU)")

	// Logging flags
	linkCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	linkCmd.Flags().StringVar(&logFormat, "log-format", "text", "log format: text, json")
	linkCmd.Flags().StringVar(&logFile, "log-file", "", "log file path (default: stderr)")

	linkCmd.MarkFlagRequired("payments-file")
	linkCmd.MarkFlagRequired("contracts-file")

	// Bind flags to viper
	viper.BindPFlag("payments-file", linkCmd.Flags().Lookup("payments-file"))
	viper.BindPFlag("contracts-file", linkCmd.Flags().Lookup("contracts-file"))
	viper.BindPFlag("output-format", linkCmd.Flags().Lookup("output-format"))
	viper.BindPFlag("output-file", linkCmd.Flags().Lookup("output-file"))
	viper.BindPFlag("show-reasons", linkCmd.Flags().Lookup("show-reasons"))
	viper.BindPFlag("profile", linkCmd.Flags().Lookup("profile"))
	viper.BindPFlag("relevance-floor", linkCmd.Flags().Lookup("relevance-floor"))
	viper.BindPFlag("auto-link-threshold", linkCmd.Flags().Lookup("auto-link-threshold"))
	viper.BindPFlag("review-threshold", linkCmd.Flags().Lookup("review-threshold"))
	viper.BindPFlag("manual-threshold", linkCmd.Flags().Lookup("manual-threshold"))
	viper.BindPFlag("amount-tolerance", linkCmd.Flags().Lookup("amount-tolerance"))
	viper.BindPFlag("temporal-window", linkCmd.Flags().Lookup("temporal-window"))
	viper.BindPFlag("top-matches", linkCmd.Flags().Lookup("top-matches"))
	viper.BindPFlag("workers", linkCmd.Flags().Lookup("workers"))
	viper.BindPFlag("log-level", linkCmd.Flags().Lookup("log-level"))
	viper.BindPFlag("log-format", linkCmd.Flags().Lookup("log-format"))
	viper.BindPFlag("log-file", linkCmd.Flags().Lookup("log-file"))
}

func validateLinkFlags(cmd *cobra.Command, args []string) error {
	// Get values from viper (allows override from config file)
	paymentsFile = viper.GetString("payments-file")
	contractsFile = viper.GetString("contracts-file")
	outputFormat = viper.GetString("output-format")
	outputFile = viper.GetString("output-file")
	showReasons = viper.GetBool("show-reasons")
	profile = viper.GetString("profile")
	relevanceFloor = viper.GetFloat64("relevance-floor")
	autoLinkThreshold = viper.GetFloat64("auto-link-threshold")
	reviewThreshold = viper.GetFloat64("review-threshold")
	manualThreshold = viper.GetFloat64("manual-threshold")
	amountTolerance = viper.GetFloat64("amount-tolerance")
	temporalWindow = viper.GetInt("temporal-window")
	topMatches = viper.GetInt("top-matches")
	workers = viper.GetInt("workers")
	logLevel = viper.GetString("log-level")
	logFormat = viper.GetString("log-format")
	logFile = viper.GetString("log-file")

	if paymentsFile == "" {
		return fmt.Errorf("payments-file is required")
	}
	if contractsFile == "" {
		return fmt.Errorf("contracts-file is required")
	}

	if err := validateFileExists(paymentsFile, "payment batch file"); err != nil {
		return err
	}
	if err := validateFileExists(contractsFile, "contract snapshot file"); err != nil {
		return err
	}

	if _, err := reporter.ParseFormat(outputFormat); err != nil {
		return err
	}

	if outputFile != "" {
		dir := filepath.Dir(outputFile)
		if dir != "." {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				return fmt.Errorf("output directory does not exist: %s", dir)
			}
		}
	}

	return nil
}

func validateFileExists(filePath, description string) error {
	if filePath == "" {
		return fmt.Errorf("%s path cannot be empty", description)
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist: %s", description, filePath)
	}
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", description, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file: %s", description, filePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("%s is not readable: %w", description, err)
	}
	file.Close()

	return nil
}

func runLink(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loggerConfig, err := config.CreateLoggerConfig(logLevel, logFormat, logFile)
	if err != nil {
		return fmt.Errorf("invalid logging configuration: %w", err)
	}
	log, err := logger.NewLogger(loggerConfig)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	logger.SetGlobalLogger(log)

	matchingConfig, err := config.CreateMatchingConfig(profile, config.MatchingOverrides{
		RelevanceFloor:         relevanceFloor,
		AutoLinkConfidence:     autoLinkThreshold,
		ReviewConfidence:       reviewThreshold,
		ManualConfidence:       manualThreshold,
		AmountTolerancePercent: amountTolerance,
		TemporalWindowDays:     temporalWindow,
		TopMatches:             topMatches,
	})
	if err != nil {
		return fmt.Errorf("invalid matching configuration: %w", err)
	}

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Starting payment linking...\n")
		fmt.Fprintf(os.Stderr, "Payments file: %s\n", paymentsFile)
		fmt.Fprintf(os.Stderr, "Contracts file: %s\n", contractsFile)
		fmt.Fprintf(os.Stderr, "Profile: %s\n", profile)
		fmt.Fprintf(os.Stderr, "Output format: %s\n", outputFormat)
		if outputFile != "" {
			fmt.Fprintf(os.Stderr, "Output file: %s\n", outputFile)
		}
	}

	paymentParser := parsers.NewPaymentParser(log)
	payments, paymentStats, err := paymentParser.ParseFile(paymentsFile)
	if err != nil {
		return err
	}
	reportParseStats("payments", paymentsFile, paymentStats)

	contractParser := parsers.NewContractParser(log)
	contracts, contractStats, err := contractParser.ParseFile(contractsFile)
	if err != nil {
		return err
	}
	reportParseStats("contracts", contractsFile, contractStats)

	service, err := reconciler.NewService(matchingConfig, log, workers)
	if err != nil {
		return err
	}

	source := reconciler.NewStaticCandidateSource(filepath.Base(contractsFile), contracts)
	result, err := service.Reconcile(ctx, payments, source)
	if err != nil {
		return err
	}

	format, _ := reporter.ParseFormat(outputFormat)

	var output *os.File
	if outputFile != "" {
		output, err = os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer output.Close()
	} else {
		output = os.Stdout
	}

	if err := reporter.NewReporter(output, format, showReasons).Write(result); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "\nLinking completed successfully.\n")
		fmt.Fprintf(os.Stderr, "Processed %d payments against %d contracts.\n",
			result.Stats.TotalPayments, len(contracts))
		fmt.Fprintf(os.Stderr, "Auto-linked %d, review %d, manual %d, rejected %d.\n",
			result.Stats.AutoLinked, result.Stats.NeedsReview,
			result.Stats.NeedsManual, result.Stats.Rejected)
		fmt.Fprintf(os.Stderr, "Processing time: %v\n", result.Stats.Duration.Round(time.Millisecond))
	}

	return nil
}

func reportParseStats(kind, path string, stats *parsers.ParseStats) {
	if stats == nil || stats.FailedRecords == 0 {
		return
	}
	fmt.Fprintf(os.Stderr, "Warning: %d of %d %s records in %s failed to parse and were skipped\n",
		stats.FailedRecords, stats.TotalRecords, kind, path)
	if viper.GetBool("verbose") && stats.Errors != nil {
		fmt.Fprintf(os.Stderr, "%s\n", stats.Errors.Error())
	}
}
