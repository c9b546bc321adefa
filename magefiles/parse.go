package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
)

type Parse mg.Namespace

// All runs the extraction pipeline over every manifest document and
// writes per-document parse artifacts.
func (Parse) All() error {
	mg.Deps(Build)
	manifest := envDefault("EXAM_ENGINE_MANIFEST", "data/manifests/papers.yaml")
	out := envDefault("EXAM_ENGINE_PARSE_OUT_DIR", "data/parsed")
	return run(filepath.Join(binDir, binName), "parse", "--manifest", manifest, "--out", out)
}
