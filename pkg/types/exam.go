// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// QuestionType categorizes an exam item.
type QuestionType string

const (
	SingleChoice QuestionType = "single_choice"
	MultiChoice  QuestionType = "multi_choice"
	Case         QuestionType = "case"
)

// Valid reports whether t is one of the known question types.
func (t QuestionType) Valid() bool {
	switch t {
	case SingleChoice, MultiChoice, Case:
		return true
	}
	return false
}

// Option is a single answer choice. Letters are drawn from A-E and appear
// in the order they were found in the source text.
type Option struct {
	// Letter is the option key, one of "A".."E".
	Letter string `json:"letter" yaml:"letter"`

	// Text is the option body. Never empty; options whose body is consumed
	// by an embedded answer/analysis marker are dropped at extraction time.
	Text string `json:"text" yaml:"text"`
}

// Question is one extracted choice question. Constructed once per parse and
// immutable afterwards; the store owns the (year, subject, number)
// uniqueness constraint.
type Question struct {
	// Number is the question's position in the paper, unique per document.
	Number int `json:"number" yaml:"number"`

	// Type is the classified question type.
	Type QuestionType `json:"type" yaml:"type"`

	// Stem is the question body, excluding options. Always non-empty;
	// candidates without a stem are rejected.
	Stem string `json:"stem" yaml:"stem"`

	// Options are the answer choices in source order.
	Options []Option `json:"options" yaml:"options"`

	// Answer is the resolved letter sequence (e.g. "B", "ACD").
	// Empty when no answer could be recovered. The pipeline does not check
	// the letters against Options.
	Answer string `json:"answer,omitempty" yaml:"answer,omitempty"`

	// Analysis is the explanation text, capped at 500 characters when it
	// comes from an answer appendix.
	Analysis string `json:"analysis,omitempty" yaml:"analysis,omitempty"`

	// KnowledgePoints are syllabus-topic tags. Populated by later curation,
	// not by extraction.
	KnowledgePoints []string `json:"knowledge_points,omitempty" yaml:"knowledge_points,omitempty"`

	// Difficulty is an optional difficulty tag.
	Difficulty string `json:"difficulty,omitempty" yaml:"difficulty,omitempty"`
}

// OptionText returns the text for the given letter and whether it exists.
func (q *Question) OptionText(letter string) (string, bool) {
	for _, o := range q.Options {
		if o.Letter == letter {
			return o.Text, true
		}
	}
	return "", false
}

// TypeRange is the inclusive interval of question numbers a section header
// declares for one question type.
type TypeRange struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Contains reports whether n falls inside the range.
func (r TypeRange) Contains(n int) bool { return n >= r.Start && n <= r.End }

// Count returns the number of items the range covers.
func (r TypeRange) Count() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

// TypeRanges maps question types to their declared number intervals. When
// all three section headers are present the ranges partition 1..Total()
// contiguously with no gaps or overlaps.
type TypeRanges map[QuestionType]TypeRange

// Classify returns the type whose range contains n.
func (tr TypeRanges) Classify(n int) (QuestionType, bool) {
	for _, t := range []QuestionType{SingleChoice, MultiChoice, Case} {
		if r, ok := tr[t]; ok && r.Contains(n) {
			return t, true
		}
	}
	return "", false
}

// Total returns the highest declared question number.
func (tr TypeRanges) Total() int {
	max := 0
	for _, r := range tr {
		if r.End > max {
			max = r.End
		}
	}
	return max
}

// SubQuestion is one numbered question inside a case study. Sub-numbers are
// expected to be unique and contiguous within a case but this is not
// enforced.
type SubQuestion struct {
	// SubNumber is the question's number within its case (1, 2, 3...).
	SubNumber int `json:"sub_number" yaml:"sub_number"`

	// Question is the question text, whitespace-collapsed. Always longer
	// than five characters; shorter candidates are dropped.
	Question string `json:"question" yaml:"question"`

	// Answer is the model answer. Extraction leaves it empty; it is filled
	// by later curation.
	Answer string `json:"answer,omitempty" yaml:"answer,omitempty"`

	// Analysis is the explanation text.
	Analysis string `json:"analysis,omitempty" yaml:"analysis,omitempty"`
}

// CaseStudy is a multi-part scenario question: one background narrative
// shared by several sub-questions.
type CaseStudy struct {
	// CaseNumber is the case's ordinal in the paper, unique per
	// year+subject.
	CaseNumber int `json:"case_number" yaml:"case_number"`

	// Year is the exam year.
	Year int `json:"year" yaml:"year"`

	// Subject is the exam subject name.
	Subject string `json:"subject" yaml:"subject"`

	// Title is the display label, e.g. "案例（一）".
	Title string `json:"title" yaml:"title"`

	// Background is the shared narrative. At least 50 characters; shorter
	// candidates produce no CaseStudy at all.
	Background string `json:"background" yaml:"background"`

	// Score is the declared point value. Zero when the paper states none.
	Score int `json:"score,omitempty" yaml:"score,omitempty"`

	// SubQuestions are the case's numbered questions, in source order.
	// Never empty; candidates without sub-questions are dropped.
	SubQuestions []SubQuestion `json:"sub_questions" yaml:"sub_questions"`
}
