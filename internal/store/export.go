// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.yaml.in/yaml/v3"
)

// exportLimit caps export row counts.
const exportLimit = 100000

// ExportEntry flattens one stored question for export files.
type ExportEntry struct {
	Year            int               `json:"year" yaml:"year"`
	Subject         string            `json:"subject" yaml:"subject"`
	Number          int               `json:"number" yaml:"number"`
	Type            string            `json:"type" yaml:"type"`
	Stem            string            `json:"stem" yaml:"stem"`
	Options         map[string]string `json:"options,omitempty" yaml:"options,omitempty"`
	Answer          string            `json:"answer,omitempty" yaml:"answer,omitempty"`
	Analysis        string            `json:"analysis,omitempty" yaml:"analysis,omitempty"`
	KnowledgePoints []string          `json:"knowledge_points,omitempty" yaml:"knowledge_points,omitempty"`
	Difficulty      string            `json:"difficulty,omitempty" yaml:"difficulty,omitempty"`
}

func (s *Store) exportEntries(ctx context.Context, opts QueryOptions) ([]ExportEntry, error) {
	if opts.Limit <= 0 || opts.Limit > exportLimit {
		opts.Limit = exportLimit
	}
	results, err := s.Query(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	entries := make([]ExportEntry, len(results))
	for i, r := range results {
		entry := ExportEntry{
			Year:            r.Year,
			Subject:         r.Subject,
			Number:          r.Number,
			Type:            string(r.Type),
			Stem:            r.Stem,
			Answer:          r.Answer,
			Analysis:        r.Analysis,
			KnowledgePoints: r.KnowledgePoints,
			Difficulty:      r.Difficulty,
		}
		if len(r.Options) > 0 {
			entry.Options = make(map[string]string, len(r.Options))
			for _, o := range r.Options {
				entry.Options[o.Letter] = o.Text
			}
		}
		entries[i] = entry
	}
	return entries, nil
}

// ExportYAML writes matching questions to w as a YAML list. It supports
// the same filters as Query.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer, opts QueryOptions) error {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// ExportJSON writes matching questions to w as indented JSON. It supports
// the same filters as Query.
func (s *Store) ExportJSON(ctx context.Context, w io.Writer, opts QueryOptions) error {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// xlsxHeaders lists workbook columns in order.
var xlsxHeaders = []string{
	"year", "subject", "number", "type", "stem",
	"options", "answer", "analysis", "difficulty",
}

// ExportXLSX writes matching questions to w as an Excel workbook: one
// header row, one row per question, options rendered as "A. text" lines.
func (s *Store) ExportXLSX(ctx context.Context, w io.Writer, opts QueryOptions) error {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for i, h := range xlsxHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("locating header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("writing header cell %s: %w", cell, err)
		}
	}

	for i, e := range entries {
		row := i + 2
		values := []any{
			e.Year, e.Subject, e.Number, e.Type, e.Stem,
			formatOptions(e.Options), e.Answer, e.Analysis, e.Difficulty,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return fmt.Errorf("locating cell at row %d: %w", row, err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("writing cell %s: %w", cell, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// formatOptions renders an option map as "A. text" lines in letter order.
func formatOptions(options map[string]string) string {
	if len(options) == 0 {
		return ""
	}
	letters := make([]string, 0, len(options))
	for letter := range options {
		letters = append(letters, letter)
	}
	sort.Strings(letters)

	var b strings.Builder
	for i, letter := range letters {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(letter)
		b.WriteString(". ")
		b.WriteString(options[letter])
	}
	return b.String()
}
