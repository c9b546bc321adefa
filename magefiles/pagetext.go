package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
)

type Pagetext mg.Namespace

// All extracts page text and search chunks from every PDF in the papers
// directory. Documents with existing artifacts are skipped.
func (Pagetext) All() error {
	mg.Deps(Build)
	papers := envDefault("EXAM_ENGINE_PAPERS_DIR", "data/papers")
	out := envDefault("EXAM_ENGINE_PAGETEXT_OUT_DIR", "data/pagetext")
	return run(filepath.Join(binDir, binName), "pagetext", papers, "--out", out)
}
