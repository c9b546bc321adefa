// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package overrides loads manual answer keys for papers whose answer
// appendix survives only as a scanned image. Each YAML file covers one
// paper: year and subject for identification, then question number to
// answer letters.
package overrides

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"
)

// File is the on-disk override format.
type File struct {
	Year    int            `yaml:"year"`
	Subject string         `yaml:"subject"`
	Answers map[int]string `yaml:"answers"`
}

// Load reads one override file. Answer letters are upper-cased and
// cleaned to A–E; an entry that cleans to nothing is dropped with a
// warning on stderr. A file with no answers at all is an error.
func Load(path string) (map[int]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading overrides %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing overrides %s: %w", path, err)
	}
	if len(f.Answers) == 0 {
		return nil, fmt.Errorf("overrides %s: no answers", path)
	}

	out := make(map[int]string, len(f.Answers))
	for n, letters := range f.Answers {
		cleaned := cleanLetters(strings.ToUpper(letters))
		if cleaned == "" {
			fmt.Fprintf(os.Stderr, "warning: override %s: question %d has no usable letters\n", path, n)
			continue
		}
		out[n] = cleaned
	}
	return out, nil
}

// LoadDir reads every override file in dir, keyed by file stem. A missing
// directory is not an error; LoadDir returns an empty map. Files that
// fail to load produce a warning on stderr and are skipped.
func LoadDir(dir string) (map[string]map[int]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]map[int]string{}, nil
		}
		return nil, fmt.Errorf("reading overrides directory %s: %w", dir, err)
	}

	all := make(map[string]map[int]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		ext := filepath.Ext(name)
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		answers, err := Load(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not load overrides %s: %v\n", name, err)
			continue
		}
		all[strings.TrimSuffix(name, ext)] = answers
	}
	return all, nil
}

// cleanLetters keeps only the answer letters A–E.
func cleanLetters(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= 'A' && r <= 'E' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
