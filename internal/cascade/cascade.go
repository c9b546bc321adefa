// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cascade implements greedy-then-fallback recognizer selection.
// Strategies run in priority order and the first whose yield meets the
// threshold wins; when none does, the best-yielding attempt is kept.
// Section detection, question segmentation, answer extraction, and
// case-marker detection all run through it.
package cascade

// Match is one recognizer hit inside the scanned text. Start and End are
// byte offsets; Number carries the recognized integer for recognizers that
// capture one, and Value carries any recognizer-specific payload.
type Match struct {
	Number int
	Start  int
	End    int
	Value  string
}

// Strategy couples a recognizer with the name reported in diagnostics.
type Strategy struct {
	Name  string
	Apply func(text string) []Match
}

// Attempt records one strategy's yield for diagnostics.
type Attempt struct {
	Strategy string
	Matches  int
}

// Result is the accepted outcome of a cascade run.
type Result struct {
	// Matches is the accepted strategy's output, in text order.
	Matches []Match

	// Strategy names the accepted recognizer. Empty when every recognizer
	// came up empty.
	Strategy string

	// Fallback is true when the first recognizer was not accepted at the
	// threshold, including the case where no recognizer was.
	Fallback bool

	// Tried lists the yield of every recognizer that ran.
	Tried []Attempt
}

// Run applies strategies in priority order against text. The first strategy
// whose match count meets or exceeds threshold wins and later strategies do
// not run. When none meets the threshold the best yield wins, earlier
// strategies winning ties; when every strategy yields zero the result is
// empty with Fallback set, and the caller decides which diagnostic to emit.
func Run(text string, threshold int, strategies ...Strategy) Result {
	if threshold < 1 {
		threshold = 1
	}

	res := Result{}
	best := -1
	bestIdx := -1
	var bestMatches []Match

	for i, s := range strategies {
		matches := s.Apply(text)
		res.Tried = append(res.Tried, Attempt{Strategy: s.Name, Matches: len(matches)})

		if len(matches) >= threshold {
			res.Matches = matches
			res.Strategy = s.Name
			res.Fallback = i > 0
			return res
		}
		if len(matches) > best {
			best = len(matches)
			bestIdx = i
			bestMatches = matches
		}
	}

	res.Fallback = true
	if best > 0 {
		res.Matches = bestMatches
		res.Strategy = strategies[bestIdx].Name
	}
	return res
}
