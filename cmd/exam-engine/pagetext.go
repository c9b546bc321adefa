// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/exam-engine/internal/pagetext"
)

var pagetextCmd = &cobra.Command{
	Use:   "pagetext <file|dir>",
	Short: "Extract per-page text and search chunks from PDF papers",
	Long: `Pagetext runs pdftotext in layout mode over one PDF or every PDF in a
directory, writing a cleaned .txt artifact and a .chunks.yaml artifact
per document. When no local pdftotext binary is on PATH, a poppler
container is used instead. Documents with an existing .txt artifact are
skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runPagetext,
}

func runPagetext(cmd *cobra.Command, args []string) error {
	pcfg := cfg.Pagetext
	if tool, _ := cmd.Flags().GetString("tool"); tool != "" {
		pcfg.Tool = tool
	}
	if image, _ := cmd.Flags().GetString("image"); image != "" {
		pcfg.ContainerImage = image
	}
	if out, _ := cmd.Flags().GetString("out"); out != "" {
		pcfg.OutDir = out
	}
	if size, _ := cmd.Flags().GetInt("chunk-size"); size > 0 {
		pcfg.ChunkSize = size
	}
	subject, _ := cmd.Flags().GetString("subject")

	paths, err := collectPDFs(args[0])
	if err != nil {
		return err
	}

	ex, err := pagetext.NewPdftotext(pcfg)
	if err != nil {
		return err
	}

	result := pagetext.ExtractBatch(ex, paths, pcfg.OutDir, subject, pcfg.ChunkSize, os.Stdout)
	if result.HasFailures() {
		return fmt.Errorf("%d document(s) failed extraction", result.Failed)
	}
	return nil
}

// collectPDFs resolves the positional argument into document paths: the
// file itself, or every .pdf directly inside a directory, sorted by name.
func collectPDFs(path string) ([]string, error) {
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
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		paths = append(paths, filepath.Join(path, e.Name()))
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return nil, fmt.Errorf("no PDF files in %s", path)
	}
	return paths, nil
}

func init() {
	pagetextCmd.Flags().String("out", "", "output directory for .txt and .chunks.yaml artifacts")
	pagetextCmd.Flags().String("subject", "", "subject tag attached to search chunks")
	pagetextCmd.Flags().String("tool", "", "pdftotext binary name or path")
	pagetextCmd.Flags().String("image", "", "poppler container image used when no local binary exists")
	pagetextCmd.Flags().Int("chunk-size", 0, "target chunk length in characters (0 = default)")

	rootCmd.AddCommand(pagetextCmd)
}
