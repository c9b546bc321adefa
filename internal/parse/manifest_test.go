// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/exam-engine/pkg/types"
)

func writeManifestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	writeManifestFile(t, dir, "2023-jidian.txt", "一、单项选择题（共1题）\n1.题干。\n")
	absText := writeManifestFile(t, dir, "2022-jianzhu.txt", "一、单项选择题（共1题）\n1.另一份题干。\n")
	writeManifestFile(t, dir, "2023-jidian.answers.yaml",
		"year: 2023\nsubject: 机电实务\nanswers:\n  1: a\n  21: AB C\n")
	manifest := writeManifestFile(t, dir, "papers.yaml",
		"- text: 2023-jidian.txt\n"+
			"  year: 2023\n"+
			"  subject: 机电实务\n"+
			"  answer_flavor: separated\n"+
			"  overrides: 2023-jidian.answers.yaml\n"+
			"- text: "+absText+"\n"+
			"  year: 2022\n"+
			"  subject: 建筑实务\n"+
			"  answer_flavor: inline\n")

	sources, err := LoadManifest(manifest)
	if err != nil {
		t.Fatal(err)
	}
	if len(sources) != 2 {
		t.Fatalf("sources = %d, want 2", len(sources))
	}

	first := sources[0]
	if first.Name != "2023-jidian" {
		t.Errorf("Name = %q", first.Name)
	}
	if !strings.Contains(first.Doc.RawText, "1.题干。") {
		t.Errorf("RawText = %q", first.Doc.RawText)
	}
	if first.Doc.Year != 2023 || first.Doc.Subject != "机电实务" {
		t.Errorf("identity = %d %q", first.Doc.Year, first.Doc.Subject)
	}
	if first.Doc.AnswerFlavor != types.AnswersSeparated {
		t.Errorf("AnswerFlavor = %q", first.Doc.AnswerFlavor)
	}
	if got := first.Doc.ManualAnswerOverrides; got[1] != "A" || got[21] != "ABC" {
		t.Errorf("overrides = %v", got)
	}

	second := sources[1]
	if second.Name != "2022-jianzhu" {
		t.Errorf("Name = %q", second.Name)
	}
	if second.Doc.AnswerFlavor != types.AnswersInline {
		t.Errorf("AnswerFlavor = %q", second.Doc.AnswerFlavor)
	}
	if second.Doc.ManualAnswerOverrides != nil {
		t.Errorf("overrides = %v, want none", second.Doc.ManualAnswerOverrides)
	}
}

func TestLoadManifestErrors(t *testing.T) {
	dir := t.TempDir()
	writeManifestFile(t, dir, "present.txt", "1.题干。\n")

	tests := []struct {
		name     string
		manifest string
		wantErr  string
	}{
		{
			name:     "empty document list",
			manifest: "[]\n",
			wantErr:  "no documents",
		},
		{
			name:     "entry without text path",
			manifest: "- year: 2023\n  subject: 机电实务\n",
			wantErr:  "missing text path",
		},
		{
			name:     "text file missing",
			manifest: "- text: absent.txt\n  year: 2023\n  subject: 机电实务\n",
			wantErr:  "manifest entry 0",
		},
		{
			name:     "override file missing",
			manifest: "- text: present.txt\n  year: 2023\n  subject: 机电实务\n  overrides: absent.yaml\n",
			wantErr:  "manifest entry 0",
		},
		{
			name:     "not yaml",
			manifest: "{{{\n",
			wantErr:  "parsing manifest",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeManifestFile(t, dir, "papers.yaml", tt.manifest)
			_, err := LoadManifest(path)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}

	if _, err := LoadManifest(filepath.Join(dir, "absent.yaml")); err == nil {
		t.Error("expected an error for a missing manifest")
	}
}
