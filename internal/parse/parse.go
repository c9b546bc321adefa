// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package parse turns raw exam-paper text into structured questions and
// case studies. The pipeline runs a fixed sequence of stages: section
// classification, case-section isolation, question segmentation, field
// extraction, and answer resolution. Each stage that faces layout
// variability runs a cascade of recognizers instead of a single grammar.
// Parsing never fails on messy content; everything short of an invalid
// input contract is reported through diagnostics.
package parse

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/exam-engine/pkg/types"
)

// DefaultSegmentThreshold is the minimum primary-recognizer yield before
// question segmentation falls back to the bare-number recognizer.
const DefaultSegmentThreshold = 10

// Parser runs the extraction pipeline. Safe for concurrent use; all state
// is per-call.
type Parser struct {
	threshold int
	logger    *zap.Logger
}

// NewParser builds a parser from config. A zero or negative segment
// threshold selects the default; a nil logger disables logging.
func NewParser(cfg types.ParseConfig, logger *zap.Logger) *Parser {
	threshold := cfg.SegmentThreshold
	if threshold <= 0 {
		threshold = DefaultSegmentThreshold
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{threshold: threshold, logger: logger}
}

// ParseDocument runs the full pipeline over one document. The only errors
// are input-contract violations: empty text, non-positive year, empty
// subject, unknown answer flavor. Content problems never fail the parse;
// they surface as diagnostic events. Identical input yields an identical
// result.
func (p *Parser) ParseDocument(doc types.Document) (*types.ParseResult, error) {
	switch {
	case strings.TrimSpace(doc.RawText) == "":
		return nil, fmt.Errorf("document %d/%s: empty text", doc.Year, doc.Subject)
	case doc.Year <= 0:
		return nil, fmt.Errorf("document %d/%s: year must be positive", doc.Year, doc.Subject)
	case doc.Subject == "":
		return nil, fmt.Errorf("document year %d: empty subject", doc.Year)
	case !doc.AnswerFlavor.Valid():
		return nil, fmt.Errorf("document %d/%s: unknown answer flavor %q", doc.Year, doc.Subject, doc.AnswerFlavor)
	}

	text := doc.RawText
	ranges, events := DetectTypeRanges(text)

	section, hasSection := FindCaseSection(text)
	choiceBody := text
	if hasSection {
		choiceBody = text[:section.Start]
	}

	segs, segRes := SegmentQuestions(choiceBody, p.threshold)
	stages := []types.StageReport{
		{Stage: "sections", Strategy: "headers", Matches: len(ranges)},
		{Stage: "segment", Strategy: segRes.Strategy, Matches: len(segRes.Matches)},
	}
	if segRes.Fallback {
		events = append(events, types.Event{
			Code:   types.SegmentationLowYield,
			Detail: fmt.Sprintf("primary recognizer below threshold %d", p.threshold),
		})
	}

	questions, matched, rejects := p.assembleQuestions(doc, text, segs, ranges, &stages, &events)
	withAnswer := 0
	for _, q := range questions {
		if q.Answer != "" {
			withAnswer++
		}
	}

	caseStudies := p.assembleCases(doc, section, hasSection, ranges, &stages, &events)

	p.logger.Info("parsed document",
		zap.Int("year", doc.Year),
		zap.String("subject", doc.Subject),
		zap.Int("questions", len(questions)),
		zap.Int("cases", len(caseStudies)),
		zap.Int("with_answer", withAnswer),
		zap.Int("rejected", rejects),
		zap.Int("events", len(events)),
	)

	return &types.ParseResult{
		Year:        doc.Year,
		Subject:     doc.Subject,
		Questions:   questions,
		CaseStudies: caseStudies,
		Diagnostics: types.Diagnostics{
			MatchedCount:    matched,
			WithAnswerCount: withAnswer,
			Stages:          stages,
			Events:          events,
		},
	}, nil
}

// assembleQuestions extracts fields per segment, resolves appendix
// answers for separated-flavor papers, and merges manual overrides last.
// Duplicate numbers keep the first successfully extracted segment. The
// returned count is the number of questions whose answer came from the
// appendix or an override.
func (p *Parser) assembleQuestions(doc types.Document, text string, segs []Segment, ranges types.TypeRanges, stages *[]types.StageReport, events *[]types.Event) ([]types.Question, int, int) {
	seen := make(map[int]bool, len(segs))
	questions := make([]types.Question, 0, len(segs))
	rejects := 0
	for _, seg := range segs {
		if seen[seg.Number] {
			continue
		}
		q, ok := ExtractQuestion(seg, ranges)
		if !ok {
			rejects++
			*events = append(*events, types.Event{
				Code:   types.EntityRejected,
				Detail: fmt.Sprintf("question %d: empty stem", seg.Number),
			})
			continue
		}
		seen[seg.Number] = true
		questions = append(questions, q)
	}

	matched := make(map[int]bool)
	if doc.AnswerFlavor == types.AnswersSeparated {
		entries, resolution := ResolveAnswers(text)
		for i := range questions {
			e, ok := entries[questions[i].Number]
			if !ok {
				continue
			}
			// the appendix is authoritative for both fields: a matched
			// entry replaces any inline analysis even when it has none
			questions[i].Answer = e.Answer
			questions[i].Analysis = e.Analysis
			matched[questions[i].Number] = true
		}
		*stages = append(*stages, types.StageReport{
			Stage:    "answers",
			Strategy: resolution.Strategy,
			Matches:  resolution.Matched,
		})
		if resolution.Marker == "" {
			*events = append(*events, types.Event{
				Code:   types.AnswerRegionNotFound,
				Detail: "no appendix marker; scanned last three fifths",
			})
		}
		if resolution.Matched == 0 {
			*events = append(*events, types.Event{
				Code:   types.FieldUnresolved,
				Detail: "no appendix answers matched",
			})
		}
	}

	for i := range questions {
		ov, ok := doc.ManualAnswerOverrides[questions[i].Number]
		if !ok {
			continue
		}
		letters := cleanLetters(strings.ToUpper(ov))
		if letters == "" {
			continue
		}
		questions[i].Answer = letters
		matched[questions[i].Number] = true
	}
	return questions, len(matched), rejects
}

// assembleCases segments the isolated case section and extracts
// backgrounds, scores, and sub-questions. A case missing a valid
// background or any sub-question is rejected with an event.
func (p *Parser) assembleCases(doc types.Document, section CaseSection, hasSection bool, ranges types.TypeRanges, stages *[]types.StageReport, events *[]types.Event) []types.CaseStudy {
	if !hasSection {
		if _, declared := ranges[types.Case]; declared {
			*events = append(*events, types.Event{
				Code:   types.SectionNotFound,
				Detail: "case range declared but no case section found",
			})
		}
		return nil
	}

	spans, caseRes := SegmentCases(section.Text)
	scores := ExtractScores(section.Text)
	*stages = append(*stages, types.StageReport{
		Stage:    "cases",
		Strategy: caseRes.Strategy,
		Matches:  len(spans),
	})

	cases := make([]types.CaseStudy, 0, len(spans))
	for _, span := range spans {
		bg, ok := ExtractBackground(span.Text)
		if !ok {
			*events = append(*events, types.Event{
				Code:   types.EntityRejected,
				Detail: fmt.Sprintf("case %d: background under %d characters", span.CaseNumber, backgroundMinRunes),
			})
			continue
		}
		subs, _ := ExtractSubQuestions(span.Text)
		if len(subs) == 0 {
			*events = append(*events, types.Event{
				Code:   types.EntityRejected,
				Detail: fmt.Sprintf("case %d: no sub-questions", span.CaseNumber),
			})
			continue
		}
		cases = append(cases, types.CaseStudy{
			CaseNumber:   span.CaseNumber,
			Year:         doc.Year,
			Subject:      doc.Subject,
			Title:        "案例（" + span.Numeral + "）",
			Background:   bg,
			Score:        scores[span.CaseNumber],
			SubQuestions: subs,
		})
	}
	return cases
}

// DocumentSource pairs a document with the display name used for progress
// lines and artifact files.
type DocumentSource struct {
	Name string
	Doc  types.Document
}

// BatchSummary aggregates per-document outcomes of a batch run.
type BatchSummary struct {
	Parsed  int
	Failed  int
	Results []*types.ParseResult
}

// Total returns the number of documents attempted.
func (s *BatchSummary) Total() int { return s.Parsed + s.Failed }

// HasFailures reports whether any document failed.
func (s *BatchSummary) HasFailures() bool { return s.Failed > 0 }

// ParseAll parses every source and writes a YAML artifact per document
// into outDir. Per-document failures are reported on w and counted, not
// returned; the error covers batch-level problems only.
func (p *Parser) ParseAll(sources []DocumentSource, outDir string, w io.Writer) (*BatchSummary, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", outDir, err)
	}
	summary := &BatchSummary{}
	for _, src := range sources {
		res, err := p.ParseDocument(src.Doc)
		if err != nil {
			summary.Failed++
			fmt.Fprintf(w, "failed %s: %v\n", src.Name, err)
			continue
		}
		if err := writeArtifact(outDir, src.Name, res); err != nil {
			summary.Failed++
			fmt.Fprintf(w, "failed %s: %v\n", src.Name, err)
			continue
		}
		summary.Parsed++
		summary.Results = append(summary.Results, res)
		fmt.Fprintf(w, "parsed %s: %d questions, %d cases (%d%% answered)\n",
			src.Name, len(res.Questions), len(res.CaseStudies), answeredPercent(res))
	}
	return summary, nil
}

func answeredPercent(res *types.ParseResult) int {
	if len(res.Questions) == 0 {
		return 0
	}
	return res.Diagnostics.WithAnswerCount * 100 / len(res.Questions)
}

func writeArtifact(outDir, name string, res *types.ParseResult) error {
	data, err := yaml.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", name, err)
	}
	path := filepath.Join(outDir, name+".parse.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
