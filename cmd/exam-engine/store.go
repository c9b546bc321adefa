// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/exam-engine/internal/pagetext"
	"github.com/pdiddy/exam-engine/internal/store"
	"github.com/pdiddy/exam-engine/pkg/types"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the question bank (import, search, stats, export)",
	Long: `Store manages a local SQLite question bank built from parse artifacts.
Use subcommands to import artifacts, search questions and study-material
chunks with full-text search, inspect coverage statistics, or export.`,
}

// --- import subcommand ---

var storeImportCmd = &cobra.Command{
	Use:   "import <artifact.yaml|dir>",
	Short: "Load parse and chunk artifacts into the question bank",
	Long: `Import reads <stem>.parse.yaml artifacts (and <stem>.chunks.yaml chunk
artifacts) from a file or directory and ingests them into the SQLite
question bank. Rows already present are skipped, so re-importing an
artifact is harmless; the first import of a question wins.`,
	Args: cobra.ExactArgs(1),
	RunE: runStoreImport,
}

func runStoreImport(cmd *cobra.Command, args []string) error {
	paths, err := collectArtifacts(args[0])
	if err != nil {
		return err
	}

	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	var total store.ImportSummary
	chunkCount := 0
	failed := 0

	for _, p := range paths {
		name := filepath.Base(p)
		if strings.HasSuffix(p, ".chunks.yaml") {
			chunks, err := pagetext.LoadChunks(p)
			if err != nil {
				failed++
				fmt.Fprintf(os.Stdout, "failed %s: %v\n", name, err)
				continue
			}
			n, err := s.ImportChunks(ctx, chunks)
			if err != nil {
				failed++
				fmt.Fprintf(os.Stdout, "failed %s: %v\n", name, err)
				continue
			}
			chunkCount += n
			fmt.Fprintf(os.Stdout, "imported %s: %d chunks\n", name, n)
			continue
		}

		res, err := readParseArtifact(p)
		if err != nil {
			failed++
			fmt.Fprintf(os.Stdout, "failed %s: %v\n", name, err)
			continue
		}
		summary, err := s.ImportResult(ctx, res, res.Year, res.Subject)
		if err != nil {
			failed++
			fmt.Fprintf(os.Stdout, "failed %s: %v\n", name, err)
			continue
		}
		total.Questions += summary.Questions
		total.CaseStudies += summary.CaseStudies
		total.SubQuestions += summary.SubQuestions
		total.Skipped += summary.Skipped
		fmt.Fprintf(os.Stdout, "imported %s: %d questions, %d cases, %d sub-questions (%d skipped)\n",
			name, summary.Questions, summary.CaseStudies, summary.SubQuestions, summary.Skipped)
	}

	fmt.Fprintf(os.Stdout, "\nImport summary: %d questions, %d case studies, %d sub-questions, %d chunks (%d skipped)\n",
		total.Questions, total.CaseStudies, total.SubQuestions, chunkCount, total.Skipped)
	if failed > 0 {
		return fmt.Errorf("%d artifact(s) failed import", failed)
	}
	return nil
}

func readParseArtifact(path string) (*types.ParseResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var res types.ParseResult
	if err := yaml.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("parsing artifact: %w", err)
	}
	if res.Year == 0 || res.Subject == "" {
		return nil, fmt.Errorf("artifact missing year or subject")
	}
	return &res, nil
}

// collectArtifacts resolves the positional argument into artifact paths:
// the file itself, or every parse and chunk artifact directly inside a
// directory, sorted by name.
func collectArtifacts(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(e.Name(), ".parse.yaml") || strings.HasSuffix(e.Name(), ".chunks.yaml") {
			paths = append(paths, filepath.Join(path, e.Name()))
		}
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return nil, fmt.Errorf("no artifacts in %s", path)
	}
	return paths, nil
}

// --- search subcommand ---

var storeSearchCmd = &cobra.Command{
	Use:   "search [keyword]",
	Short: "Search the question bank with full-text search and filters",
	Long: `Search runs an FTS5 full-text query over question stems and analyses,
optionally narrowed by subject, year, or question type. Filters work
without a keyword too. With --chunks the search runs over study-material
chunks instead of questions.`,
	RunE: runStoreSearch,
}

func runStoreSearch(cmd *cobra.Command, args []string) error {
	opts := storeQueryOpts(cmd, args)
	if opts.Keyword == "" && opts.Subject == "" && opts.Year == 0 && opts.Type == "" {
		return fmt.Errorf("keyword or filter required: provide a search keyword, --subject, --year, or --type")
	}

	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	jsonOutput, _ := cmd.Flags().GetBool("json")

	if chunks, _ := cmd.Flags().GetBool("chunks"); chunks {
		if opts.Keyword == "" {
			return fmt.Errorf("chunk search requires a keyword")
		}
		results, err := s.SearchChunks(context.Background(), opts.Keyword, opts.Limit)
		if err != nil {
			return err
		}
		return formatChunkOutput(results, jsonOutput)
	}

	results, err := s.Query(context.Background(), opts)
	if err != nil {
		return err
	}
	return formatSearchOutput(results, jsonOutput)
}

func formatSearchOutput(results []store.QueryResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-6s  %-10s  %-4s  %-13s  %-7s  %s\n",
		"Year", "Subject", "No.", "Type", "Answer", "Stem")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))

	for _, r := range results {
		answer := r.Answer
		if answer == "" {
			answer = "-"
		}
		fmt.Fprintf(os.Stdout, "%-6d  %-10s  %-4d  %-13s  %-7s  %s\n",
			r.Year, truncate(r.Subject, 10), r.Number, r.Type, answer, truncate(r.Stem, 40))
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

func formatChunkOutput(chunks []types.Chunk, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(chunks)
	}

	if len(chunks) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-24s  %-4s  %s\n", "Source", "Page", "Text")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))
	for _, c := range chunks {
		fmt.Fprintf(os.Stdout, "%-24s  %-4d  %s\n",
			truncate(c.Source, 24), c.Page, truncate(c.Text, 50))
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(chunks))
	return nil
}

// truncate shortens s to n runes. Byte slicing would split multi-byte
// characters mid-sequence.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// --- stats subcommand ---

var storeStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show question-bank coverage statistics",
	Long: `Stats reports stored totals, answer coverage, and per-subject, per-year,
and per-type question counts.`,
	RunE: runStoreStats,
}

func runStoreStats(cmd *cobra.Command, args []string) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	stats, err := s.Stats(context.Background())
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	answered := "0%"
	if stats.Questions > 0 {
		answered = fmt.Sprintf("%d%%", stats.WithAnswer*100/stats.Questions)
	}
	fmt.Fprintf(os.Stdout, "Questions:     %d\n", stats.Questions)
	fmt.Fprintf(os.Stdout, "Case studies:  %d\n", stats.CaseStudies)
	fmt.Fprintf(os.Stdout, "Sub-questions: %d\n", stats.SubQuestions)
	fmt.Fprintf(os.Stdout, "Chunks:        %d\n", stats.Chunks)
	fmt.Fprintf(os.Stdout, "With answer:   %d (%s)\n", stats.WithAnswer, answered)

	if len(stats.BySubject) > 0 {
		fmt.Fprintln(os.Stdout, "\nBy subject:")
		subjects := make([]string, 0, len(stats.BySubject))
		for subj := range stats.BySubject {
			subjects = append(subjects, subj)
		}
		sort.Strings(subjects)
		for _, subj := range subjects {
			fmt.Fprintf(os.Stdout, "  %s: %d\n", subj, stats.BySubject[subj])
		}
	}

	if len(stats.ByYear) > 0 {
		fmt.Fprintln(os.Stdout, "\nBy year:")
		years := make([]int, 0, len(stats.ByYear))
		for y := range stats.ByYear {
			years = append(years, y)
		}
		sort.Ints(years)
		for _, y := range years {
			fmt.Fprintf(os.Stdout, "  %d: %d\n", y, stats.ByYear[y])
		}
	}

	if len(stats.ByType) > 0 {
		fmt.Fprintln(os.Stdout, "\nBy type:")
		qtypes := make([]string, 0, len(stats.ByType))
		for qt := range stats.ByType {
			qtypes = append(qtypes, qt)
		}
		sort.Strings(qtypes)
		for _, qt := range qtypes {
			fmt.Fprintf(os.Stdout, "  %s: %d\n", qt, stats.ByType[qt])
		}
	}

	return nil
}

// --- export subcommand ---

var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the question bank to YAML, JSON, or XLSX",
	Long: `Export writes the full question bank (or a filtered subset) to a file.
Supports the same filter flags as search for partial exports.`,
	RunE: runStoreExport,
}

func runStoreExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	outPath, _ := cmd.Flags().GetString("out")
	if outPath == "" {
		outPath = "export." + format
	}

	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", outPath, err)
	}
	defer f.Close()

	ctx := context.Background()
	opts := storeQueryOpts(cmd, nil)

	switch format {
	case "yaml":
		err = s.ExportYAML(ctx, f, opts)
	case "json":
		err = s.ExportJSON(ctx, f, opts)
	case "xlsx":
		err = s.ExportXLSX(ctx, f, opts)
	default:
		return fmt.Errorf("unsupported format %q: use yaml, json, or xlsx", format)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Exported to %s\n", outPath)
	return nil
}

// --- shared helpers ---

func openStore(cmd *cobra.Command) (*store.Store, error) {
	path, _ := cmd.Flags().GetString("db")
	if path == "" {
		path = cfg.Store.Path
	}
	return store.NewStore(path)
}

func storeQueryOpts(cmd *cobra.Command, args []string) store.QueryOptions {
	keyword, _ := cmd.Flags().GetString("keyword")
	if keyword == "" && len(args) > 0 {
		keyword = strings.Join(args, " ")
	}

	subject, _ := cmd.Flags().GetString("subject")
	year, _ := cmd.Flags().GetInt("year")
	qtype, _ := cmd.Flags().GetString("type")
	limit, _ := cmd.Flags().GetInt("limit")

	return store.QueryOptions{
		Keyword: keyword,
		Subject: subject,
		Year:    year,
		Type:    types.QuestionType(qtype),
		Limit:   limit,
	}
}

func init() {
	// Shared flag on the parent command, inherited by subcommands.
	storeCmd.PersistentFlags().String("db", "", "SQLite database path (default from config: data/exam.db)")

	// Search flags.
	storeSearchCmd.Flags().String("keyword", "", "full-text search keyword")
	storeSearchCmd.Flags().String("subject", "", "filter by exam subject")
	storeSearchCmd.Flags().Int("year", 0, "filter by exam year")
	storeSearchCmd.Flags().String("type", "", "filter by question type: single_choice, multi_choice, case")
	storeSearchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	storeSearchCmd.Flags().Bool("chunks", false, "search study-material chunks instead of questions")
	storeSearchCmd.Flags().Bool("json", false, "output results as JSON")

	// Stats flags.
	storeStatsCmd.Flags().Bool("json", false, "output statistics as JSON")

	// Export flags.
	storeExportCmd.Flags().String("format", "yaml", "export format: yaml, json, or xlsx")
	storeExportCmd.Flags().String("out", "", "output file (default: export.<format>)")
	storeExportCmd.Flags().String("subject", "", "filter by exam subject for partial export")
	storeExportCmd.Flags().Int("year", 0, "filter by exam year for partial export")
	storeExportCmd.Flags().String("type", "", "filter by question type for partial export")
	storeExportCmd.Flags().Int("limit", 0, "maximum questions to export (0 = all)")

	// Wire subcommands.
	storeCmd.AddCommand(storeImportCmd)
	storeCmd.AddCommand(storeSearchCmd)
	storeCmd.AddCommand(storeStatsCmd)
	storeCmd.AddCommand(storeExportCmd)

	rootCmd.AddCommand(storeCmd)
}
