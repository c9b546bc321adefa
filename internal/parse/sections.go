// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/pdiddy/exam-engine/pkg/types"
)

// Section headers declare how many questions each part of a paper holds,
// e.g. "一、单项选择题（共70题，...）". The inner wildcards tolerate spacing
// and phrasing drift between years.
var (
	singleHeaderRe = regexp.MustCompile(`一、\s*单.*?选.*?题.*?共\s*(\d+)\s*题`)
	multiHeaderRe  = regexp.MustCompile(`二、\s*多.*?选.*?题.*?共\s*(\d+)\s*题`)
	caseCountRe    = regexp.MustCompile(`三、\s*案例.*?题.*?共\s*(\d+)\s*题`)
)

// DetectTypeRanges reads the declared question counts from the section
// headers and converts them to contiguous number ranges: single choice
// first, multi choice after it, cases after whichever of the two ends
// last. A missing header yields no range for that type and a
// section_not_found event; classification then falls back to per-segment
// heuristics.
func DetectTypeRanges(text string) (types.TypeRanges, []types.Event) {
	ranges := types.TypeRanges{}
	var events []types.Event

	singleEnd := 0
	if m := singleHeaderRe.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		ranges[types.SingleChoice] = types.TypeRange{Start: 1, End: n}
		singleEnd = n
	} else {
		events = append(events, missingSection(types.SingleChoice))
	}

	multiEnd := 0
	if m := multiHeaderRe.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		ranges[types.MultiChoice] = types.TypeRange{Start: singleEnd + 1, End: singleEnd + n}
		multiEnd = singleEnd + n
	} else {
		events = append(events, missingSection(types.MultiChoice))
	}

	if m := caseCountRe.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		prev := multiEnd
		if prev == 0 {
			prev = singleEnd
		}
		ranges[types.Case] = types.TypeRange{Start: prev + 1, End: prev + n}
	} else {
		events = append(events, missingSection(types.Case))
	}

	return ranges, events
}

func missingSection(t types.QuestionType) types.Event {
	return types.Event{
		Code:   types.SectionNotFound,
		Detail: fmt.Sprintf("no %s header", t),
	}
}
