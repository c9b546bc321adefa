// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"strings"
	"testing"
)

const caseSectionFixture = "三、案例分析题（共2题）\n" +
	"（一、二）题各20分。\n" +
	"案例（一）\n" +
	"背景资料：\n" +
	"某施工单位承接一项公路桥梁工程，合同工期为18个月，桥梁全长1200米，采用钻孔灌注桩基础。施工期间出现连续降雨，导致基坑积水严重，工期延误15天。\n" +
	"问题：\n" +
	"1.指出本工程基础施工的质量控制要点。\n" +
	"2.说明工期延误的处理程序。\n" +
	"案例（二）\n" +
	"背景资料：\n" +
	"某机电安装公司承包一座变电站的设备安装工程，工程内容包括主变压器安装、母线安装及电缆敷设。安装过程中发现设备基础预埋螺栓位置偏差超标。\n" +
	"问题：\n" +
	"1.预埋螺栓偏差应如何处理？\n" +
	"2.列出设备安装的主要验收程序。\n"

func TestFindCaseSection(t *testing.T) {
	doc := "一、单项选择题（共2题）\n1.第一题。\n2.第二题。\n" +
		caseSectionFixture +
		"参考答案\n1.【答案】A\n"

	section, ok := FindCaseSection(doc)
	if !ok {
		t.Fatal("case section not found")
	}
	if !strings.HasPrefix(section.Text, "三、案例分析题") {
		t.Errorf("section starts %q", firstNRunes(section.Text, 10))
	}
	if strings.Contains(section.Text, "参考答案") {
		t.Error("answer appendix leaked into case section")
	}
	if doc[:section.Start] != "一、单项选择题（共2题）\n1.第一题。\n2.第二题。\n" {
		t.Errorf("choice body boundary wrong: %q", doc[:section.Start])
	}
}

func TestFindCaseSectionTrimsEmbeddedAnswers(t *testing.T) {
	doc := caseSectionFixture + "【答案】本案例答案从略。\n"
	section, ok := FindCaseSection(doc)
	if !ok {
		t.Fatal("case section not found")
	}
	if strings.Contains(section.Text, "【答案】") {
		t.Error("embedded answer block not trimmed")
	}
}

func TestFindCaseSectionAbsent(t *testing.T) {
	if _, ok := FindCaseSection("一、单项选择题\n1.题干。\n"); ok {
		t.Error("section reported for a paper without one")
	}
}

func TestSegmentCasesLabeled(t *testing.T) {
	section, _ := FindCaseSection(caseSectionFixture)
	spans, res := SegmentCases(section.Text)

	if res.Strategy != "labeled" {
		t.Fatalf("strategy = %q, want labeled", res.Strategy)
	}
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(spans))
	}
	if spans[0].CaseNumber != 1 || spans[0].Numeral != "一" {
		t.Errorf("span 0 = %d/%q", spans[0].CaseNumber, spans[0].Numeral)
	}
	if spans[1].CaseNumber != 2 || spans[1].Numeral != "二" {
		t.Errorf("span 1 = %d/%q", spans[1].CaseNumber, spans[1].Numeral)
	}
	if !strings.Contains(spans[0].Text, "公路桥梁工程") || strings.Contains(spans[0].Text, "变电站") {
		t.Error("span 0 crosses the case boundary")
	}
}

func TestSegmentCasesSuppressesProseMention(t *testing.T) {
	// 案例一 inside running prose must not register as a marker; the
	// numeral-heading tier takes over.
	section := "三、案例分析题\n" +
		"本部分请参照案例一般作答要求，结合背景资料回答问题。\n" +
		"（一）\n" +
		"背景资料：\n" +
		"某桥梁工程施工单位在雨季施工中遇到基坑积水问题，经监理批准调整了降水方案，并对工期进行了相应顺延处理。\n" +
		"问题：\n" +
		"1.指出降水方案调整的审批程序。\n"

	spans, res := SegmentCases(section)

	if res.Strategy != "numeral-heading" {
		t.Fatalf("strategy = %q, want numeral-heading", res.Strategy)
	}
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].CaseNumber != 1 {
		t.Errorf("case number = %d, want 1", spans[0].CaseNumber)
	}
	// The anchoring label stays inside the span.
	if !strings.HasPrefix(spans[0].Text, "背景资料") {
		t.Errorf("span starts %q, want the 背景资料 label kept", firstNRunes(spans[0].Text, 6))
	}
}

func TestSegmentCasesBracketLabel(t *testing.T) {
	section := "三、案例分析题\n" +
		"【案例一】\n" +
		"某隧道工程在开挖过程中发现围岩类别与设计不符，施工单位上报监理并提出变更申请，经批准后调整了支护参数。\n" +
		"问题：\n" +
		"1.说明围岩变更的处理流程。\n"

	spans, res := SegmentCases(section)
	if res.Strategy != "bracketed" {
		t.Fatalf("strategy = %q, want bracketed", res.Strategy)
	}
	if len(spans) != 1 || spans[0].CaseNumber != 1 {
		t.Fatalf("spans = %+v", spans)
	}
}

func TestSegmentCasesBareNumeral(t *testing.T) {
	longBg := strings.Repeat("背景叙述文字。", 10)
	section := "三、案例分析题\n" +
		"（一）\n" + longBg + "\n问题\n1.第一问内容说明。\n" +
		"（二）\n、这是列表的延续行，不是案例标记。\n"

	spans, res := SegmentCases(section)

	if res.Strategy != "bare-numeral" {
		t.Fatalf("strategy = %q, want bare-numeral", res.Strategy)
	}
	// （二） is followed by 、 and is discarded as a list continuation.
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].CaseNumber != 1 {
		t.Errorf("case number = %d, want 1", spans[0].CaseNumber)
	}
}

func TestSegmentCasesDropsShortSpans(t *testing.T) {
	section := "三、案例分析题\n" +
		"案例（一）\n背景太短。\n" +
		"案例（二）\n" +
		"背景资料：某水利枢纽工程的导流洞施工中出现了塌方事故，项目部立即启动应急预案并上报建设单位，随后组织专家论证处理方案。\n" +
		"问题：\n1.指出应急处理的要点。\n"

	spans, _ := SegmentCases(section)
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].CaseNumber != 2 {
		t.Errorf("kept case number = %d, want 2", spans[0].CaseNumber)
	}
}

func TestExtractScores(t *testing.T) {
	tests := []struct {
		name    string
		section string
		want    map[int]int
	}{
		{
			name:    "single statement covers listed numerals",
			section: "（一、二）题各20分。\n",
			want:    map[int]int{1: 20, 2: 20},
		},
		{
			name:    "disjoint statements",
			section: "（一、二、三）题各20分，（四、五）题各30分。\n",
			want:    map[int]int{1: 20, 2: 20, 3: 20, 4: 30, 5: 30},
		},
		{
			name:    "no statement",
			section: "案例（一）\n背景资料：……\n",
			want:    map[int]int{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractScores(tt.section)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d scores, want %d: %+v", len(got), len(tt.want), got)
			}
			for n, pts := range tt.want {
				if got[n] != pts {
					t.Errorf("score %d = %d, want %d", n, got[n], pts)
				}
			}
		})
	}
}

func TestChineseNumerals(t *testing.T) {
	if n, ok := chineseToArabic('七'); !ok || n != 7 {
		t.Errorf("七 = %d/%v", n, ok)
	}
	if _, ok := chineseToArabic('百'); ok {
		t.Error("百 should not map")
	}
	got := chineseNumeralsIn("一、三、十")
	want := []int{1, 3, 10}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
