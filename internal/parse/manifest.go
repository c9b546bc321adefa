// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/exam-engine/internal/overrides"
	"github.com/pdiddy/exam-engine/pkg/types"
)

// ManifestEntry describes one document in a parse manifest. Every field
// is explicit; the engine never infers year, subject, or answer flavor
// from filenames. Text and Overrides are paths, resolved relative to the
// manifest when not absolute.
type ManifestEntry struct {
	Text         string `yaml:"text"`
	Year         int    `yaml:"year"`
	Subject      string `yaml:"subject"`
	AnswerFlavor string `yaml:"answer_flavor"`
	Overrides    string `yaml:"overrides,omitempty"`
}

// LoadManifest reads a manifest and resolves each entry into a document
// source: the text file is read eagerly and any override file is loaded
// and attached. The source name is the text file's stem.
func LoadManifest(path string) ([]DocumentSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var entries []ManifestEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("manifest %s: no documents", path)
	}

	base := filepath.Dir(path)
	sources := make([]DocumentSource, 0, len(entries))
	for i, entry := range entries {
		if entry.Text == "" {
			return nil, fmt.Errorf("manifest entry %d: missing text path", i)
		}
		textPath := resolvePath(base, entry.Text)
		raw, err := os.ReadFile(textPath)
		if err != nil {
			return nil, fmt.Errorf("manifest entry %d: %w", i, err)
		}
		doc := types.Document{
			RawText:      string(raw),
			Year:         entry.Year,
			Subject:      entry.Subject,
			AnswerFlavor: types.AnswerFlavor(entry.AnswerFlavor),
		}
		if entry.Overrides != "" {
			answers, err := overrides.Load(resolvePath(base, entry.Overrides))
			if err != nil {
				return nil, fmt.Errorf("manifest entry %d: %w", i, err)
			}
			doc.ManualAnswerOverrides = answers
		}
		name := strings.TrimSuffix(filepath.Base(textPath), filepath.Ext(textPath))
		sources = append(sources, DocumentSource{Name: name, Doc: doc})
	}
	return sources, nil
}

func resolvePath(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
