// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"strings"
	"testing"
)

const caseSpanFixture = "背景资料：\n" +
	"某机电安装公司承接一台桥式起重机的安装工程，安装高度25米，跨度31.5米。开工前项目部编制了专项施工方案，并报总承包单位审批，现场由总承包单位统一协调管理。\n" +
	"问题：\n" +
	"1.指出安装前应办理的告知手续。\n" +
	"2.说明荷载试验的种类和要求。\n"

func TestExtractBackgroundLabeled(t *testing.T) {
	bg, ok := ExtractBackground(caseSpanFixture)
	if !ok {
		t.Fatal("background not extracted")
	}
	if !strings.HasPrefix(bg, "某机电安装公司") {
		t.Errorf("background starts %q", firstNRunes(bg, 8))
	}
	if strings.Contains(bg, "问题") || strings.Contains(bg, "告知手续") {
		t.Error("question body leaked into background")
	}
}

func TestExtractBackgroundBeforeQuestionLabel(t *testing.T) {
	span := "某施工单位承接一项市政管网工程，合同工期12个月，管线全长3500米，沿线涉及多处既有管线交叉，施工期间需保持道路通行并做好交通导改。\n" +
		"问题：\n1.指出交叉施工的协调要点。\n"

	bg, ok := ExtractBackground(span)
	if !ok {
		t.Fatal("background not extracted")
	}
	if !strings.HasPrefix(bg, "某施工单位") || strings.Contains(bg, "问题") {
		t.Errorf("background = %q", firstNRunes(bg, 20))
	}
}

func TestExtractBackgroundLeadingLines(t *testing.T) {
	span := "某水利枢纽工程的导流洞施工中出现塌方事故。\n" +
		"项目部立即启动应急预案并上报建设单位，随后组织专家论证处理方案，对塌方段进行了加固处理。\n" +
		"1.指出应急处理的要点。\n" +
		"2.说明塌方段加固的验收程序。\n"

	bg, ok := ExtractBackground(span)
	if !ok {
		t.Fatal("background not extracted")
	}
	if strings.Contains(bg, "应急处理的要点") {
		t.Error("numbered line leaked into background")
	}
	if !strings.Contains(bg, "专家论证") {
		t.Errorf("background truncated: %q", bg)
	}
}

func TestExtractBackgroundTooShort(t *testing.T) {
	if _, ok := ExtractBackground("背景资料：\n太短。\n问题：\n1.某问。\n"); ok {
		t.Error("short narrative accepted as background")
	}
}

func TestExtractBackgroundLabelBeatsPosition(t *testing.T) {
	// With both a label and a question label present, the labeled slice
	// wins even though the text before 问题 would also validate.
	bg, ok := ExtractBackground(caseSpanFixture)
	if !ok {
		t.Fatal("background not extracted")
	}
	if strings.Contains(bg, "背景资料") {
		t.Error("label itself kept in background")
	}
}

func TestExtractSubQuestions(t *testing.T) {
	subs, _ := ExtractSubQuestions(caseSpanFixture)

	if len(subs) != 2 {
		t.Fatalf("got %d sub-questions, want 2", len(subs))
	}
	if subs[0].SubNumber != 1 || subs[0].Question != "指出安装前应办理的告知手续。" {
		t.Errorf("sub 0 = %d %q", subs[0].SubNumber, subs[0].Question)
	}
	if subs[1].SubNumber != 2 || subs[1].Question != "说明荷载试验的种类和要求。" {
		t.Errorf("sub 1 = %d %q", subs[1].SubNumber, subs[1].Question)
	}
	if subs[0].Answer != "" || subs[0].Analysis != "" {
		t.Error("extraction populated answer fields")
	}
}

func TestExtractSubQuestionsCollapsesWhitespace(t *testing.T) {
	span := "问题：\n1.指出本工程安装前\n  应办理的告知手续。\n"

	subs, _ := ExtractSubQuestions(span)
	if len(subs) != 1 {
		t.Fatalf("got %d sub-questions, want 1", len(subs))
	}
	if subs[0].Question != "指出本工程安装前 应办理的告知手续。" {
		t.Errorf("question = %q", subs[0].Question)
	}
}

func TestExtractSubQuestionsDropsFragments(t *testing.T) {
	span := "问题：\n1.略。\n2.说明本工程荷载试验的种类和要求。\n"

	subs, _ := ExtractSubQuestions(span)
	if len(subs) != 1 {
		t.Fatalf("got %d sub-questions, want 1", len(subs))
	}
	if subs[0].SubNumber != 2 {
		t.Errorf("kept sub-number = %d, want 2", subs[0].SubNumber)
	}
}

func TestExtractSubQuestionsSpacedLabel(t *testing.T) {
	// Column-aligned PDFs emit "问 题" with an interior space.
	span := "问 题：\n1.指出施工方案的审批程序。\n"

	subs, _ := ExtractSubQuestions(span)
	if len(subs) != 1 {
		t.Fatalf("got %d sub-questions, want 1", len(subs))
	}
	if subs[0].Question != "指出施工方案的审批程序。" {
		t.Errorf("question = %q", subs[0].Question)
	}
}

func TestExtractSubQuestionsWithoutLabel(t *testing.T) {
	span := "1.指出导流洞塌方的应急处理要点。\n2.说明加固方案的论证程序。\n"

	subs, _ := ExtractSubQuestions(span)
	if len(subs) != 2 {
		t.Fatalf("got %d sub-questions, want 2", len(subs))
	}
}
