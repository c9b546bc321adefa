package parse

import (
	"testing"

	"github.com/pdiddy/exam-engine/pkg/types"
)

func TestDetectTypeRanges(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		want       types.TypeRanges
		wantEvents int
	}{
		{
			name: "all three headers",
			text: "一、单项选择题（共20题，每题1分）\n...\n二、多项选择题（共10题，每题2分）\n...\n三、案例分析题（共5题，每题20分）\n",
			want: types.TypeRanges{
				types.SingleChoice: {Start: 1, End: 20},
				types.MultiChoice:  {Start: 21, End: 30},
				types.Case:         {Start: 31, End: 35},
			},
		},
		{
			name: "case range follows single when multi absent",
			text: "一、单项选择题（共20题）\n三、案例分析题（共5题）\n",
			want: types.TypeRanges{
				types.SingleChoice: {Start: 1, End: 20},
				types.Case:         {Start: 21, End: 25},
			},
			wantEvents: 1,
		},
		{
			name: "flexible header phrasing",
			text: "一、 单项 选择 题 （ 共 70 题 ）\n",
			want: types.TypeRanges{
				types.SingleChoice: {Start: 1, End: 70},
			},
			wantEvents: 2,
		},
		{
			name:       "no headers",
			text:       "这份文档没有任何章节标题。\n",
			want:       types.TypeRanges{},
			wantEvents: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, events := DetectTypeRanges(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d ranges, want %d", len(got), len(tt.want))
			}
			for typ, want := range tt.want {
				if got[typ] != want {
					t.Errorf("%s range = %+v, want %+v", typ, got[typ], want)
				}
			}
			if len(events) != tt.wantEvents {
				t.Errorf("got %d events, want %d", len(events), tt.wantEvents)
			}
			for _, ev := range events {
				if ev.Code != types.SectionNotFound {
					t.Errorf("event code = %s, want %s", ev.Code, types.SectionNotFound)
				}
			}
		})
	}
}

func TestDetectTypeRangesPartition(t *testing.T) {
	text := "一、单项选择题（共20题）\n二、多项选择题（共10题）\n三、案例分析题（共5题）\n"
	ranges, _ := DetectTypeRanges(text)

	if got := ranges.Total(); got != 35 {
		t.Fatalf("Total() = %d, want 35", got)
	}
	// Every number in 1..35 classifies to exactly one contiguous type.
	for n := 1; n <= 35; n++ {
		typ, ok := ranges.Classify(n)
		if !ok {
			t.Fatalf("number %d not classified", n)
		}
		want := types.SingleChoice
		switch {
		case n > 30:
			want = types.Case
		case n > 20:
			want = types.MultiChoice
		}
		if typ != want {
			t.Errorf("number %d classified %s, want %s", n, typ, want)
		}
	}
	if _, ok := ranges.Classify(36); ok {
		t.Error("number 36 should not classify")
	}
}
