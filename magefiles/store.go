package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
)

type Store mg.Namespace

// Load imports every parse and chunk artifact into the question bank.
func (Store) Load() error {
	mg.Deps(Build)
	artifacts := envDefault("EXAM_ENGINE_PARSE_OUT_DIR", "data/parsed")
	db := envDefault("EXAM_ENGINE_STORE_PATH", "data/exam.db")
	return run(filepath.Join(binDir, binName), "store", "import", artifacts, "--db", db)
}

// Stats prints question-bank coverage statistics.
func (Store) Stats() error {
	mg.Deps(Build)
	db := envDefault("EXAM_ENGINE_STORE_PATH", "data/exam.db")
	return run(filepath.Join(binDir, binName), "store", "stats", "--db", db)
}
