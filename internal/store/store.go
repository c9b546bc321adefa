// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists extracted exam entities in SQLite and serves
// search, browse, and export queries over them.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/exam-engine/pkg/types"
)

// Store manages the exam SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the exam database at path, creating parent
// directories and the schema as needed.
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS questions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			year INTEGER NOT NULL,
			subject TEXT NOT NULL,
			number INTEGER NOT NULL,
			type TEXT NOT NULL,
			question TEXT NOT NULL,
			answer TEXT,
			analysis TEXT,
			difficulty TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(year, subject, number)
		)`,
		`CREATE TABLE IF NOT EXISTS options (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			question_id INTEGER NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
			option_key TEXT NOT NULL,
			option_value TEXT NOT NULL,
			UNIQUE(question_id, option_key)
		)`,
		`CREATE TABLE IF NOT EXISTS knowledge_points (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			question_id INTEGER NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
			point TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS case_studies (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			year INTEGER NOT NULL,
			subject TEXT NOT NULL,
			case_number INTEGER NOT NULL,
			title TEXT,
			background TEXT NOT NULL,
			score INTEGER,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(year, subject, case_number)
		)`,
		`CREATE TABLE IF NOT EXISTS case_sub_questions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			case_id INTEGER NOT NULL REFERENCES case_studies(id) ON DELETE CASCADE,
			sub_number INTEGER NOT NULL,
			question TEXT NOT NULL,
			answer TEXT,
			analysis TEXT,
			UNIQUE(case_id, sub_number)
		)`,
		`CREATE TABLE IF NOT EXISTS chunks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			subject TEXT,
			source TEXT,
			page INTEGER,
			text TEXT NOT NULL,
			UNIQUE(source, page, text)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_questions_year ON questions(year)`,
		`CREATE INDEX IF NOT EXISTS idx_questions_subject ON questions(subject)`,
		`CREATE INDEX IF NOT EXISTS idx_questions_type ON questions(type)`,
		`CREATE INDEX IF NOT EXISTS idx_case_studies_year ON case_studies(year)`,
		`CREATE INDEX IF NOT EXISTS idx_case_studies_subject ON case_studies(subject)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	specs := []ftsSpec{
		{name: "questions_fts", table: "questions", columns: []string{"question", "analysis"}},
		{name: "chunks_fts", table: "chunks", columns: []string{"text"}},
	}
	for _, spec := range specs {
		if err := s.createFTS(spec); err != nil {
			return err
		}
	}
	return nil
}

// ftsSpec describes one FTS5 index kept in sync with its content table by
// triggers. The trigram tokenizer gives substring matching, which the
// default unicode61 tokenizer cannot do for CJK text.
type ftsSpec struct {
	name    string
	table   string
	columns []string
}

func (s *Store) createFTS(spec ftsSpec) error {
	var exists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name=?`, spec.name,
	).Scan(&exists); err != nil {
		return fmt.Errorf("checking FTS table %s: %w", spec.name, err)
	}
	if exists != 0 {
		return nil
	}

	cols := strings.Join(spec.columns, ", ")
	newCols := "new." + strings.Join(spec.columns, ", new.")
	oldCols := "old." + strings.Join(spec.columns, ", old.")

	statements := []string{
		fmt.Sprintf(`CREATE VIRTUAL TABLE %s USING fts5(%s, content=%s, content_rowid=id, tokenize='trigram')`,
			spec.name, cols, spec.table),
		fmt.Sprintf(`CREATE TRIGGER %s_ai AFTER INSERT ON %s BEGIN
			INSERT INTO %s(rowid, %s) VALUES (new.id, %s);
		END`, spec.table, spec.table, spec.name, cols, newCols),
		fmt.Sprintf(`CREATE TRIGGER %s_ad AFTER DELETE ON %s BEGIN
			INSERT INTO %s(%s, rowid, %s) VALUES('delete', old.id, %s);
		END`, spec.table, spec.table, spec.name, spec.name, cols, oldCols),
		fmt.Sprintf(`CREATE TRIGGER %s_au AFTER UPDATE ON %s BEGIN
			INSERT INTO %s(%s, rowid, %s) VALUES('delete', old.id, %s);
			INSERT INTO %s(rowid, %s) VALUES (new.id, %s);
		END`, spec.table, spec.table, spec.name, spec.name, cols, oldCols, spec.name, cols, newCols),
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating FTS infrastructure for %s: %w", spec.table, err)
		}
	}
	return nil
}

// ImportSummary counts entities from one import run.
type ImportSummary struct {
	Questions    int
	CaseStudies  int
	SubQuestions int
	Skipped      int
}

// Total returns the number of top-level entities processed.
func (s ImportSummary) Total() int {
	return s.Questions + s.CaseStudies + s.Skipped
}

// ImportResult stores one parse result in a single transaction. INSERT OR
// IGNORE honors the (year, subject, number) and (year, subject,
// case_number) uniqueness constraints: the first import wins and reruns
// count as skipped.
func (s *Store) ImportResult(ctx context.Context, res *types.ParseResult, year int, subject string) (*ImportSummary, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	qstmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO questions (year, subject, number, type, question, answer, analysis, difficulty)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("preparing question insert: %w", err)
	}
	defer qstmt.Close()

	ostmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO options (question_id, option_key, option_value) VALUES (?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("preparing option insert: %w", err)
	}
	defer ostmt.Close()

	kstmt, err := tx.PrepareContext(ctx,
		`INSERT INTO knowledge_points (question_id, point) VALUES (?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("preparing knowledge point insert: %w", err)
	}
	defer kstmt.Close()

	var summary ImportSummary

	for _, q := range res.Questions {
		r, err := qstmt.ExecContext(ctx,
			year, subject, q.Number, string(q.Type), q.Stem, q.Answer, q.Analysis, q.Difficulty)
		if err != nil {
			return nil, fmt.Errorf("inserting question %d: %w", q.Number, err)
		}
		affected, err := r.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("checking insert of question %d: %w", q.Number, err)
		}
		if affected == 0 {
			summary.Skipped++
			continue
		}
		id, err := r.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("reading id of question %d: %w", q.Number, err)
		}
		for _, opt := range q.Options {
			if _, err := ostmt.ExecContext(ctx, id, opt.Letter, opt.Text); err != nil {
				return nil, fmt.Errorf("inserting option %s of question %d: %w", opt.Letter, q.Number, err)
			}
		}
		for _, point := range q.KnowledgePoints {
			if _, err := kstmt.ExecContext(ctx, id, point); err != nil {
				return nil, fmt.Errorf("inserting knowledge point of question %d: %w", q.Number, err)
			}
		}
		summary.Questions++
	}

	cstmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO case_studies (year, subject, case_number, title, background, score)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("preparing case insert: %w", err)
	}
	defer cstmt.Close()

	sstmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO case_sub_questions (case_id, sub_number, question, answer, analysis)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("preparing sub-question insert: %w", err)
	}
	defer sstmt.Close()

	for _, cs := range res.CaseStudies {
		r, err := cstmt.ExecContext(ctx, year, subject, cs.CaseNumber, cs.Title, cs.Background, cs.Score)
		if err != nil {
			return nil, fmt.Errorf("inserting case %d: %w", cs.CaseNumber, err)
		}
		affected, err := r.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("checking insert of case %d: %w", cs.CaseNumber, err)
		}
		if affected == 0 {
			summary.Skipped++
			continue
		}
		id, err := r.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("reading id of case %d: %w", cs.CaseNumber, err)
		}
		for _, sq := range cs.SubQuestions {
			if _, err := sstmt.ExecContext(ctx, id, sq.SubNumber, sq.Question, sq.Answer, sq.Analysis); err != nil {
				return nil, fmt.Errorf("inserting sub-question %d of case %d: %w", sq.SubNumber, cs.CaseNumber, err)
			}
			summary.SubQuestions++
		}
		summary.CaseStudies++
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing import: %w", err)
	}
	return &summary, nil
}

// ImportChunks appends study-material chunks in a single transaction and
// returns how many were new. The (source, page, text) constraint makes
// reruns idempotent.
func (s *Store) ImportChunks(ctx context.Context, chunks []types.Chunk) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO chunks (subject, source, page, text) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing chunk insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, c := range chunks {
		r, err := stmt.ExecContext(ctx, c.Subject, c.Source, c.Page, c.Text)
		if err != nil {
			return 0, fmt.Errorf("inserting chunk (page %d of %s): %w", c.Page, c.Source, err)
		}
		affected, err := r.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("checking chunk insert: %w", err)
		}
		inserted += int(affected)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing chunks: %w", err)
	}
	return inserted, nil
}
