// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/exam-engine/pkg/types"
)

// defaultLimit bounds queries that specify no limit.
const defaultLimit = 20

// minFTSKeyword is the shortest keyword the trigram tokenizer can match.
// Shorter keywords fall back to LIKE substring matching.
const minFTSKeyword = 3

// QueryOptions holds filters for question queries. Zero values mean no
// filter.
type QueryOptions struct {
	// Keyword is the search string matched against stems and analyses.
	Keyword string

	// Subject filters by exam subject.
	Subject string

	// Year filters by exam year.
	Year int

	// Type filters by question type.
	Type types.QuestionType

	// Limit bounds the result count. Zero uses the store default.
	Limit int

	// Offset skips leading rows for pagination.
	Offset int
}

// QueryResult is a stored question with its paper identity.
type QueryResult struct {
	types.Question
	Year    int    `json:"year" yaml:"year"`
	Subject string `json:"subject" yaml:"subject"`
}

// Query returns stored questions matching opts. Keyword queries rank by
// FTS5 relevance; others run most recent year first, then by number.
func (s *Store) Query(ctx context.Context, opts QueryOptions) ([]QueryResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = utf8.RuneCountInString(opts.Keyword) >= minFTSKeyword
	)

	if useFTS {
		qb.WriteString(
			`SELECT q.id, q.year, q.subject, q.number, q.type, q.question,
				q.answer, q.analysis, q.difficulty
			FROM questions_fts
			JOIN questions q ON q.id = questions_fts.rowid
			WHERE questions_fts MATCH ?`)
		args = append(args, opts.Keyword)
	} else {
		qb.WriteString(
			`SELECT q.id, q.year, q.subject, q.number, q.type, q.question,
				q.answer, q.analysis, q.difficulty
			FROM questions q
			WHERE 1=1`)
		if opts.Keyword != "" {
			qb.WriteString(` AND (q.question LIKE ? OR q.analysis LIKE ?)`)
			pattern := "%" + opts.Keyword + "%"
			args = append(args, pattern, pattern)
		}
	}

	if opts.Subject != "" {
		qb.WriteString(` AND q.subject = ?`)
		args = append(args, opts.Subject)
	}
	if opts.Year != 0 {
		qb.WriteString(` AND q.year = ?`)
		args = append(args, opts.Year)
	}
	if opts.Type != "" {
		qb.WriteString(` AND q.type = ?`)
		args = append(args, string(opts.Type))
	}

	if useFTS {
		qb.WriteString(` ORDER BY questions_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY q.year DESC, q.number`)
	}

	qb.WriteString(` LIMIT ? OFFSET ?`)
	args = append(args, limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying questions: %w", err)
	}
	defer rows.Close()

	var results []QueryResult
	var ids []int64
	for rows.Next() {
		var (
			qr         QueryResult
			id         int64
			qtype      string
			answer     sql.NullString
			analysis   sql.NullString
			difficulty sql.NullString
		)
		if err := rows.Scan(&id, &qr.Year, &qr.Subject, &qr.Number, &qtype,
			&qr.Stem, &answer, &analysis, &difficulty); err != nil {
			return nil, fmt.Errorf("scanning question row: %w", err)
		}
		qr.Type = types.QuestionType(qtype)
		qr.Answer = answer.String
		qr.Analysis = analysis.String
		qr.Difficulty = difficulty.String
		results = append(results, qr)
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, id := range ids {
		options, err := s.questionOptions(ctx, id)
		if err != nil {
			return nil, err
		}
		results[i].Options = options

		points, err := s.questionPoints(ctx, id)
		if err != nil {
			return nil, err
		}
		results[i].KnowledgePoints = points
	}

	return results, nil
}

func (s *Store) questionOptions(ctx context.Context, questionID int64) ([]types.Option, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT option_key, option_value FROM options WHERE question_id = ? ORDER BY option_key`,
		questionID)
	if err != nil {
		return nil, fmt.Errorf("querying options: %w", err)
	}
	defer rows.Close()

	var opts []types.Option
	for rows.Next() {
		var o types.Option
		if err := rows.Scan(&o.Letter, &o.Text); err != nil {
			return nil, fmt.Errorf("scanning option row: %w", err)
		}
		opts = append(opts, o)
	}
	return opts, rows.Err()
}

func (s *Store) questionPoints(ctx context.Context, questionID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT point FROM knowledge_points WHERE question_id = ? ORDER BY id`, questionID)
	if err != nil {
		return nil, fmt.Errorf("querying knowledge points: %w", err)
	}
	defer rows.Close()

	var points []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scanning knowledge point row: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// Search is keyword-only Query shorthand.
func (s *Store) Search(ctx context.Context, keyword string, limit int) ([]QueryResult, error) {
	return s.Query(ctx, QueryOptions{Keyword: keyword, Limit: limit})
}

// SearchChunks runs an FTS5 keyword query over study-material chunks,
// ranked by relevance. Keywords below the trigram minimum use LIKE.
func (s *Store) SearchChunks(ctx context.Context, keyword string, limit int) ([]types.Chunk, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	query := `SELECT c.subject, c.source, c.page, c.text
		 FROM chunks_fts
		 JOIN chunks c ON c.id = chunks_fts.rowid
		 WHERE chunks_fts MATCH ?
		 ORDER BY chunks_fts.rank
		 LIMIT ?`
	arg := keyword
	if utf8.RuneCountInString(keyword) < minFTSKeyword {
		query = `SELECT c.subject, c.source, c.page, c.text
		 FROM chunks c
		 WHERE c.text LIKE ?
		 ORDER BY c.id
		 LIMIT ?`
		arg = "%" + keyword + "%"
	}

	rows, err := s.db.QueryContext(ctx, query, arg, limit)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []types.Chunk
	for rows.Next() {
		var (
			c       types.Chunk
			subject sql.NullString
			source  sql.NullString
			page    sql.NullInt64
		)
		if err := rows.Scan(&subject, &source, &page, &c.Text); err != nil {
			return nil, fmt.Errorf("scanning chunk row: %w", err)
		}
		c.Subject = subject.String
		c.Source = source.String
		c.Page = int(page.Int64)
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// CaseStudies returns stored case studies with their sub-questions,
// most recent year first. Zero-valued filters are ignored.
func (s *Store) CaseStudies(ctx context.Context, subject string, year int) ([]types.CaseStudy, error) {
	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(
		`SELECT id, year, subject, case_number, title, background, score
		 FROM case_studies WHERE 1=1`)
	if subject != "" {
		qb.WriteString(` AND subject = ?`)
		args = append(args, subject)
	}
	if year != 0 {
		qb.WriteString(` AND year = ?`)
		args = append(args, year)
	}
	qb.WriteString(` ORDER BY year DESC, case_number`)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying case studies: %w", err)
	}
	defer rows.Close()

	var cases []types.CaseStudy
	var ids []int64
	for rows.Next() {
		var (
			cs    types.CaseStudy
			id    int64
			title sql.NullString
			score sql.NullInt64
		)
		if err := rows.Scan(&id, &cs.Year, &cs.Subject, &cs.CaseNumber, &title, &cs.Background, &score); err != nil {
			return nil, fmt.Errorf("scanning case row: %w", err)
		}
		cs.Title = title.String
		cs.Score = int(score.Int64)
		cases = append(cases, cs)
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, id := range ids {
		subs, err := s.caseSubQuestions(ctx, id)
		if err != nil {
			return nil, err
		}
		cases[i].SubQuestions = subs
	}

	return cases, nil
}

func (s *Store) caseSubQuestions(ctx context.Context, caseID int64) ([]types.SubQuestion, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT sub_number, question, answer, analysis
		 FROM case_sub_questions WHERE case_id = ? ORDER BY sub_number`, caseID)
	if err != nil {
		return nil, fmt.Errorf("querying sub-questions: %w", err)
	}
	defer rows.Close()

	var subs []types.SubQuestion
	for rows.Next() {
		var (
			sq       types.SubQuestion
			answer   sql.NullString
			analysis sql.NullString
		)
		if err := rows.Scan(&sq.SubNumber, &sq.Question, &answer, &analysis); err != nil {
			return nil, fmt.Errorf("scanning sub-question row: %w", err)
		}
		sq.Answer = answer.String
		sq.Analysis = analysis.String
		subs = append(subs, sq)
	}
	return subs, rows.Err()
}

// Stats summarizes store contents.
type Stats struct {
	Questions    int            `json:"questions" yaml:"questions"`
	CaseStudies  int            `json:"case_studies" yaml:"case_studies"`
	SubQuestions int            `json:"sub_questions" yaml:"sub_questions"`
	Chunks       int            `json:"chunks" yaml:"chunks"`
	WithAnswer   int            `json:"with_answer" yaml:"with_answer"`
	BySubject    map[string]int `json:"by_subject" yaml:"by_subject"`
	ByYear       map[int]int    `json:"by_year" yaml:"by_year"`
	ByType       map[string]int `json:"by_type" yaml:"by_type"`
}

// Stats reports totals, per-dimension question counts, and answer
// coverage.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{
		BySubject: make(map[string]int),
		ByYear:    make(map[int]int),
		ByType:    make(map[string]int),
	}

	totals := []struct {
		query string
		dest  *int
	}{
		{`SELECT count(*) FROM questions`, &st.Questions},
		{`SELECT count(*) FROM case_studies`, &st.CaseStudies},
		{`SELECT count(*) FROM case_sub_questions`, &st.SubQuestions},
		{`SELECT count(*) FROM chunks`, &st.Chunks},
		{`SELECT count(*) FROM questions WHERE answer IS NOT NULL AND answer != ''`, &st.WithAnswer},
	}
	for _, t := range totals {
		if err := s.db.QueryRowContext(ctx, t.query).Scan(t.dest); err != nil {
			return nil, fmt.Errorf("counting rows: %w", err)
		}
	}

	subjectRows, err := s.db.QueryContext(ctx,
		`SELECT subject, count(*) FROM questions GROUP BY subject`)
	if err != nil {
		return nil, fmt.Errorf("grouping by subject: %w", err)
	}
	defer subjectRows.Close()
	for subjectRows.Next() {
		var subject string
		var n int
		if err := subjectRows.Scan(&subject, &n); err != nil {
			return nil, fmt.Errorf("scanning subject group: %w", err)
		}
		st.BySubject[subject] = n
	}
	if err := subjectRows.Err(); err != nil {
		return nil, err
	}

	yearRows, err := s.db.QueryContext(ctx,
		`SELECT year, count(*) FROM questions GROUP BY year`)
	if err != nil {
		return nil, fmt.Errorf("grouping by year: %w", err)
	}
	defer yearRows.Close()
	for yearRows.Next() {
		var year, n int
		if err := yearRows.Scan(&year, &n); err != nil {
			return nil, fmt.Errorf("scanning year group: %w", err)
		}
		st.ByYear[year] = n
	}
	if err := yearRows.Err(); err != nil {
		return nil, err
	}

	typeRows, err := s.db.QueryContext(ctx,
		`SELECT type, count(*) FROM questions GROUP BY type`)
	if err != nil {
		return nil, fmt.Errorf("grouping by type: %w", err)
	}
	defer typeRows.Close()
	for typeRows.Next() {
		var qtype string
		var n int
		if err := typeRows.Scan(&qtype, &n); err != nil {
			return nil, fmt.Errorf("scanning type group: %w", err)
		}
		st.ByType[qtype] = n
	}
	if err := typeRows.Err(); err != nil {
		return nil, err
	}

	return st, nil
}
