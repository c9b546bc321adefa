// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// AnswerFlavor states where a document keeps its answers. It is explicit
// per-document configuration supplied by the caller; the engine never
// infers it from file names.
type AnswerFlavor string

const (
	// AnswersInline means each question carries its answer in its own
	// segment ("答案：B" after the options).
	AnswersInline AnswerFlavor = "inline"

	// AnswersSeparated means answers are collected in an appendix at the
	// end of the document and must be matched back by number.
	AnswersSeparated AnswerFlavor = "separated"
)

// Valid reports whether f is a known flavor.
func (f AnswerFlavor) Valid() bool {
	return f == AnswersInline || f == AnswersSeparated
}

// Document is the per-document input contract. RawText is the
// already-concatenated page text in document order; the pipeline never
// touches the original document bytes.
type Document struct {
	// RawText is the full extracted text. Must be non-empty.
	RawText string `json:"-" yaml:"-"`

	// Year is the exam year.
	Year int `json:"year" yaml:"year"`

	// Subject is the exam subject name.
	Subject string `json:"subject" yaml:"subject"`

	// AnswerFlavor selects inline or appendix answer resolution.
	AnswerFlavor AnswerFlavor `json:"answer_flavor" yaml:"answer_flavor"`

	// ManualAnswerOverrides maps question numbers to answer letters for
	// documents whose answers live in non-text artifacts (scanned tables).
	// Merged last, overriding any extracted value for the same number.
	ManualAnswerOverrides map[int]string `json:"manual_answer_overrides,omitempty" yaml:"manual_answer_overrides,omitempty"`
}

// EventCode names a non-fatal pipeline condition. Every code is
// best-effort: the pipeline records the event and continues.
type EventCode string

const (
	// SectionNotFound: a type-range header is absent; classification falls
	// back to content heuristics.
	SectionNotFound EventCode = "section_not_found"

	// SegmentationLowYield: the primary segmentation pattern matched fewer
	// times than the threshold; the fallback pattern engaged.
	SegmentationLowYield EventCode = "segmentation_low_yield"

	// AnswerRegionNotFound: no appendix marker matched; the positional
	// heuristic (last three-fifths of the document) was used.
	AnswerRegionNotFound EventCode = "answer_region_not_found"

	// FieldUnresolved: an optional field (answer, analysis, background)
	// could not be extracted; the entity is produced without it.
	FieldUnresolved EventCode = "field_unresolved"

	// EntityRejected: a mandatory field is missing (empty stem, short
	// background, no sub-questions); the candidate entity is dropped.
	EntityRejected EventCode = "entity_rejected"
)

// Event is one diagnostic occurrence with human-readable detail.
type Event struct {
	Code   EventCode `json:"code" yaml:"code"`
	Detail string    `json:"detail" yaml:"detail"`
}

// StageReport records which strategy won a pipeline stage and its yield.
type StageReport struct {
	// Stage is the pipeline stage name ("segment", "answers", "cases", ...).
	Stage string `json:"stage" yaml:"stage"`

	// Strategy names the recognizer that produced the accepted result.
	// Empty when every strategy came up empty.
	Strategy string `json:"strategy" yaml:"strategy"`

	// Matches is the accepted strategy's match count.
	Matches int `json:"matches" yaml:"matches"`
}

// Diagnostics summarizes coverage for operator review. It travels with the
// parse result and is also written to the structured log.
type Diagnostics struct {
	// MatchedCount is the number of questions whose answer came from the
	// appendix or a manual override.
	MatchedCount int `json:"matched_count" yaml:"matched_count"`

	// WithAnswerCount is the number of questions that ended up with an
	// answer from any source.
	WithAnswerCount int `json:"with_answer_count" yaml:"with_answer_count"`

	// Stages records the winning strategy per stage, in pipeline order.
	Stages []StageReport `json:"stages" yaml:"stages"`

	// Events lists non-fatal conditions encountered during the parse.
	Events []Event `json:"events,omitempty" yaml:"events,omitempty"`
}

// Stage returns the report for the named stage.
func (d *Diagnostics) Stage(name string) (StageReport, bool) {
	for _, s := range d.Stages {
		if s.Stage == name {
			return s, true
		}
	}
	return StageReport{}, false
}

// CountEvents returns how many recorded events carry the given code.
func (d *Diagnostics) CountEvents(code EventCode) int {
	n := 0
	for _, e := range d.Events {
		if e.Code == code {
			n++
		}
	}
	return n
}

// ParseResult is the per-document output contract: whatever the pipeline
// could recover, plus diagnostics. Lists are in document order.
type ParseResult struct {
	// Year and Subject echo the input document.
	Year    int    `json:"year" yaml:"year"`
	Subject string `json:"subject" yaml:"subject"`

	// Questions are the recovered choice questions, numbers deduplicated
	// first-occurrence-wins.
	Questions []Question `json:"questions" yaml:"questions"`

	// CaseStudies are the recovered case studies.
	CaseStudies []CaseStudy `json:"case_studies" yaml:"case_studies"`

	// Diagnostics reports coverage and fallback activity.
	Diagnostics Diagnostics `json:"diagnostics" yaml:"diagnostics"`
}

// Chunk is a sentence-bounded slice of study material with page
// attribution, sized for full-text search.
type Chunk struct {
	Text    string `json:"text" yaml:"text"`
	Page    int    `json:"page" yaml:"page"`
	Subject string `json:"subject" yaml:"subject"`
	Source  string `json:"source" yaml:"source"`
}
