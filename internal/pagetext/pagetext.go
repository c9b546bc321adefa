// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pagetext turns exam papers into per-page text by driving
// poppler's pdftotext, preferring a local binary and falling back to a
// container image. It also normalizes the text and cuts sentence-bounded
// chunks of study material for the full-text index.
package pagetext

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/exam-engine/pkg/types"
)

// DefaultChunkSize is the target chunk length in runes.
const DefaultChunkSize = 500

// Result is the extracted page text for one document.
type Result struct {
	// Pages holds one entry per page, in document order.
	Pages []string

	// Tool names the extractor that produced the text.
	Tool string
}

// Extractor produces page text from a document file. Implementations wrap
// external tools; tests use fakes.
type Extractor interface {
	Extract(path string) (*Result, error)
}

// Pdftotext extracts page text with poppler's pdftotext. The runner is
// selected once at construction time: a local binary when one is on PATH,
// otherwise the configured container image.
type Pdftotext struct {
	run runner
}

// NewPdftotext selects a runner per cfg. Empty config fields fall back to
// the defaults from types.DefaultConfig.
func NewPdftotext(cfg types.PagetextConfig) (*Pdftotext, error) {
	return newPdftotext(cfg, defaultExec)
}

func newPdftotext(cfg types.PagetextConfig, exec executor) (*Pdftotext, error) {
	tool := cfg.Tool
	if tool == "" {
		tool = "pdftotext"
	}
	image := cfg.ContainerImage
	if image == "" {
		image = "docker.io/minidocks/poppler"
	}
	run, err := detectRunner(tool, image, exec)
	if err != nil {
		return nil, err
	}
	return &Pdftotext{run: run}, nil
}

// Extract runs the selected tool and splits its output into pages.
func (p *Pdftotext) Extract(path string) (*Result, error) {
	var out bytes.Buffer
	if err := p.run.Run(path, &out); err != nil {
		return nil, err
	}
	pages := splitPages(out.String())
	if len(pages) == 0 {
		return nil, fmt.Errorf("%s produced no text for %s", p.run.Name(), path)
	}
	return &Result{Pages: pages, Tool: p.run.Name()}, nil
}

// splitPages cuts tool output at form feeds. pdftotext emits one after
// every page including the last, so trailing empty parts are dropped.
func splitPages(text string) []string {
	parts := strings.Split(text, "\f")
	for len(parts) > 0 && strings.TrimSpace(parts[len(parts)-1]) == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}

// Text joins pages into the single document string the parser consumes.
func Text(pages []string) string {
	return strings.Join(pages, "\n")
}

// spaceRunRe matches runs of horizontal whitespace, including the
// full-width space common in CJK layouts.
var spaceRunRe = regexp.MustCompile(`[ \t\x{3000}]+`)

// Clean normalizes page text: NUL bytes are dropped, runs of spaces and
// tabs collapse to one space, and line edges are trimmed. Newlines
// survive; the parser's recognizers anchor on line starts.
func Clean(text string) string {
	text = strings.ReplaceAll(text, "\x00", "")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRunRe.ReplaceAllString(line, " "))
	}
	return strings.Join(lines, "\n")
}

// Chunks cuts each page into pieces of roughly size runes for the
// full-text index. Boundaries land after sentence enders (。！？) or line
// breaks; a single longer sentence stays whole. Zero or negative size
// selects DefaultChunkSize.
func Chunks(pages []string, subject, source string, size int) []types.Chunk {
	if size <= 0 {
		size = DefaultChunkSize
	}
	var chunks []types.Chunk
	for i, page := range pages {
		pageNum := i + 1
		var cur strings.Builder
		count := 0
		flush := func() {
			text := strings.Join(strings.Fields(cur.String()), " ")
			if text != "" {
				chunks = append(chunks, types.Chunk{
					Text:    text,
					Page:    pageNum,
					Subject: subject,
					Source:  source,
				})
			}
			cur.Reset()
			count = 0
		}
		for _, sentence := range splitSentences(Clean(page)) {
			n := utf8.RuneCountInString(sentence)
			if count > 0 && count+n > size {
				flush()
			}
			cur.WriteString(sentence)
			count += n
		}
		flush()
	}
	return chunks
}

// splitSentences cuts text after every sentence ender or newline, keeping
// the delimiter with the preceding sentence.
func splitSentences(text string) []string {
	var out []string
	start := 0
	for i, r := range text {
		switch r {
		case '。', '！', '？', '\n':
			end := i + utf8.RuneLen(r)
			out = append(out, text[start:end])
			start = end
		}
	}
	if start < len(text) {
		out = append(out, text[start:])
	}
	return out
}

// ExtractStatus is the per-document outcome of a batch run.
type ExtractStatus string

const (
	ExtractDone    ExtractStatus = "done"
	ExtractSkipped ExtractStatus = "skipped"
	ExtractFailed  ExtractStatus = "failed"
)

// BatchResult holds the outcome of a batch extraction run.
type BatchResult struct {
	Extracted int
	Skipped   int
	Failed    int
}

// Total returns the number of documents processed.
func (r BatchResult) Total() int {
	return r.Extracted + r.Skipped + r.Failed
}

// HasFailures reports whether any documents failed extraction.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// chunkArtifact is the on-disk form of a document's chunk list.
type chunkArtifact struct {
	Source      string        `yaml:"source"`
	Subject     string        `yaml:"subject,omitempty"`
	Tool        string        `yaml:"tool"`
	ExtractedAt string        `yaml:"extracted_at"`
	Chunks      []types.Chunk `yaml:"chunks"`
}

// LoadChunks reads a .chunks.yaml artifact back. Each chunk carries its
// own subject and source, so only the list is returned.
func LoadChunks(path string) ([]types.Chunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading chunk artifact: %w", err)
	}
	var art chunkArtifact
	if err := yaml.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("parsing chunk artifact %s: %w", path, err)
	}
	return art.Chunks, nil
}

// ExtractOne extracts a single document, writing <stem>.txt and
// <stem>.chunks.yaml under outDir. An existing .txt artifact skips the
// document.
func ExtractOne(ex Extractor, path, outDir, subject string, chunkSize int, w io.Writer) ExtractStatus {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	txtPath := filepath.Join(outDir, base+".txt")

	if _, err := os.Stat(txtPath); err == nil {
		fmt.Fprintf(w, "skipped: %s (already exists)\n", base)
		return ExtractSkipped
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
		return ExtractFailed
	}

	res, err := ex.Extract(path)
	if err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
		return ExtractFailed
	}

	cleaned := make([]string, len(res.Pages))
	for i, p := range res.Pages {
		cleaned[i] = Clean(p)
	}
	if err := os.WriteFile(txtPath, []byte(Text(cleaned)), 0o644); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
		return ExtractFailed
	}

	art := chunkArtifact{
		Source:      filepath.Base(path),
		Subject:     subject,
		Tool:        res.Tool,
		ExtractedAt: time.Now().UTC().Format(time.RFC3339),
		Chunks:      Chunks(res.Pages, subject, filepath.Base(path), chunkSize),
	}
	data, err := yaml.Marshal(&art)
	if err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
		return ExtractFailed
	}
	if err := os.WriteFile(filepath.Join(outDir, base+".chunks.yaml"), data, 0o644); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
		return ExtractFailed
	}

	fmt.Fprintf(w, "extracted: %s (%d pages, %d chunks)\n", base, len(res.Pages), len(art.Chunks))
	return ExtractDone
}

// ExtractBatch processes documents through the extractor, printing
// per-file status to w and returning a summary.
func ExtractBatch(ex Extractor, paths []string, outDir, subject string, chunkSize int, w io.Writer) BatchResult {
	var result BatchResult
	for _, p := range paths {
		switch ExtractOne(ex, p, outDir, subject, chunkSize, w) {
		case ExtractDone:
			result.Extracted++
		case ExtractSkipped:
			result.Skipped++
		case ExtractFailed:
			result.Failed++
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d extracted, %d skipped, %d failed (total: %d)\n",
		result.Extracted, result.Skipped, result.Failed, result.Total())
	return result
}
