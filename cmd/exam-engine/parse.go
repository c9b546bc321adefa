// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/exam-engine/internal/parse"
	"github.com/pdiddy/exam-engine/pkg/types"
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Run the extraction pipeline over manifest documents",
	Long: `Parse reads a YAML manifest listing exam-paper text files with their
year, subject, and answer flavor, runs the extraction pipeline over each
document, and writes a <stem>.parse.yaml artifact per document. A
summary table and per-document diagnostics follow the progress lines.

The manifest is explicit configuration; nothing is inferred from file
names. Each entry may name an override file whose answers replace
extracted ones.`,
	RunE: runParse,
}

func runParse(cmd *cobra.Command, args []string) error {
	manifestPath, _ := cmd.Flags().GetString("manifest")
	if manifestPath == "" {
		return fmt.Errorf("--manifest is required")
	}
	outDir, _ := cmd.Flags().GetString("out")
	if outDir == "" {
		outDir = cfg.Parse.OutDir
	}

	sources, err := parse.LoadManifest(manifestPath)
	if err != nil {
		return err
	}

	parser := parse.NewParser(cfg.Parse, logger)
	defer func() { _ = logger.Sync() }()

	summary, err := parser.ParseAll(sources, outDir, os.Stdout)
	if err != nil {
		return err
	}

	printParseSummary(summary.Results)
	fmt.Fprintf(os.Stdout, "\nBatch summary: %d parsed, %d failed (total: %d)\n",
		summary.Parsed, summary.Failed, summary.Total())
	if summary.HasFailures() {
		return fmt.Errorf("%d document(s) failed parsing", summary.Failed)
	}
	return nil
}

func printParseSummary(results []*types.ParseResult) {
	if len(results) == 0 {
		return
	}

	fmt.Fprintf(os.Stdout, "\n%-6s  %-14s  %-9s  %-5s  %-8s  %s\n",
		"Year", "Subject", "Questions", "Cases", "Answered", "Events")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 60))

	for _, res := range results {
		answered := "-"
		if n := len(res.Questions); n > 0 {
			answered = fmt.Sprintf("%d%%", res.Diagnostics.WithAnswerCount*100/n)
		}
		fmt.Fprintf(os.Stdout, "%-6d  %-14s  %-9d  %-5d  %-8s  %d\n",
			res.Year, res.Subject, len(res.Questions), len(res.CaseStudies),
			answered, len(res.Diagnostics.Events))
		for _, e := range res.Diagnostics.Events {
			fmt.Fprintf(os.Stdout, "        %s: %s\n", e.Code, e.Detail)
		}
	}
}

func init() {
	parseCmd.Flags().String("manifest", "", "YAML manifest of documents to parse (required)")
	parseCmd.Flags().String("out", "", "output directory for parse artifacts")

	rootCmd.AddCommand(parseCmd)
}
