// cmd/tools/process-application/main.go

// process-application runs the full underwriting pipeline against a
// single application JSON file, without Zeebe or any backing services.
// Useful for scoring-rule review and support investigations.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"mortgage-workers/internal/common/logger"
	"mortgage-workers/internal/models"
	"mortgage-workers/internal/pipeline"
)

func main() {
	inputPath := flag.String("input", "", "Path to the application JSON file")
	outputPath := flag.String("output", "", "Write the full pipeline result JSON here (default: stdout summary only)")
	logLevel := flag.String("log-level", "warn", "Log level (debug, info, warn, error)")
	timeout := flag.Duration("timeout", 60*time.Second, "Overall pipeline timeout")
	flag.Parse()

	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: process-application --input <application.json> [--output result.json]")
		os.Exit(1)
	}

	zapLog := logger.New(*logLevel, "console")
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	data, err := os.ReadFile(*inputPath)
	if err != nil {
		zapLog.Fatal("read input file", zap.Error(err))
	}

	var app models.ApplicationRecord
	if err := json.Unmarshal(data, &app); err != nil {
		zapLog.Fatal("parse application JSON", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	runner := pipeline.NewRunner(log)
	result, runErr := runner.Run(ctx, app)

	if *outputPath != "" {
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			zapLog.Fatal("marshal result", zap.Error(err))
		}
		if err := os.WriteFile(*outputPath, out, 0644); err != nil {
			zapLog.Fatal("write result file", zap.Error(err))
		}
	}

	printSummary(result)

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "\npipeline failed: %v\n", runErr)
		os.Exit(1)
	}
}

func printSummary(result *pipeline.Result) {
	fmt.Printf("Application: %s\n", result.ApplicationID)

	if result.Validation != nil {
		fmt.Printf("  Valid:           %t\n", result.Validation.IsValid)
	}
	if result.Readiness != nil {
		fmt.Printf("  Readiness:       %d (%s)\n", result.Readiness.ReadinessScore, result.Readiness.ReadinessLevel)
	}
	if result.Credit != nil {
		fmt.Printf("  Credit score:    %d (%s)\n", result.Credit.RepresentativeScore, result.Credit.Rating)
	}
	if result.Income != nil {
		fmt.Printf("  Monthly income:  %.2f\n", result.Income.QualifiedMonthlyIncome)
	}
	if result.DTI != nil {
		fmt.Printf("  Total DTI:       %.2f%%\n", result.DTI.TotalDTI*100)
	}
	if result.LTV != nil {
		fmt.Printf("  LTV:             %.2f%%\n", result.LTV.LTV*100)
	}
	if result.Decision != nil {
		d := result.Decision.Decision
		fmt.Printf("  Decision:        %s\n", d.Decision)
		fmt.Printf("  Total score:     %.1f\n", d.TotalScore)
		fmt.Printf("  Risk grade:      %s\n", d.RiskGrade)
		fmt.Printf("  Pricing tier:    %s\n", d.PricingTier)
		for _, c := range d.Conditions {
			fmt.Printf("  Condition:       %s\n", c)
		}
		for _, r := range d.DenialReasons {
			fmt.Printf("  Denial reason:   %s\n", r)
		}
	}
}
