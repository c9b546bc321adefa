// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cascade

import "testing"

// fixed returns a strategy that yields n matches and counts invocations.
func fixed(name string, n int, calls *int) Strategy {
	return Strategy{
		Name: name,
		Apply: func(string) []Match {
			*calls++
			out := make([]Match, n)
			for i := range out {
				out[i] = Match{Number: i + 1}
			}
			return out
		},
	}
}

func TestRunAcceptsFirstAtThreshold(t *testing.T) {
	var aCalls, bCalls int
	res := Run("text", 3, fixed("a", 5, &aCalls), fixed("b", 9, &bCalls))

	if res.Strategy != "a" {
		t.Fatalf("strategy = %q, want a", res.Strategy)
	}
	if len(res.Matches) != 5 {
		t.Errorf("matches = %d, want 5", len(res.Matches))
	}
	if res.Fallback {
		t.Error("fallback set for first-strategy acceptance")
	}
	if bCalls != 0 {
		t.Errorf("second strategy ran %d times, want 0", bCalls)
	}
}

func TestRunFallsBackToNext(t *testing.T) {
	var aCalls, bCalls int
	res := Run("text", 10, fixed("a", 4, &aCalls), fixed("b", 12, &bCalls))

	if res.Strategy != "b" {
		t.Fatalf("strategy = %q, want b", res.Strategy)
	}
	if !res.Fallback {
		t.Error("fallback not set")
	}
	if len(res.Tried) != 2 || res.Tried[0].Matches != 4 || res.Tried[1].Matches != 12 {
		t.Errorf("tried = %+v", res.Tried)
	}
}

func TestRunBestYieldWhenNoneMeetsThreshold(t *testing.T) {
	tests := []struct {
		name   string
		yields []int
		want   string
		wantN  int
	}{
		{"later beats earlier", []int{3, 7}, "s1", 7},
		{"earlier beats later", []int{6, 2}, "s0", 6},
		{"tie goes to earlier", []int{4, 4}, "s0", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int
			strategies := make([]Strategy, len(tt.yields))
			for i, n := range tt.yields {
				strategies[i] = fixed("s"+string(rune('0'+i)), n, &calls)
			}
			res := Run("text", 10, strategies...)
			if res.Strategy != tt.want {
				t.Errorf("strategy = %q, want %q", res.Strategy, tt.want)
			}
			if len(res.Matches) != tt.wantN {
				t.Errorf("matches = %d, want %d", len(res.Matches), tt.wantN)
			}
			if !res.Fallback {
				t.Error("fallback not set below threshold")
			}
		})
	}
}

func TestRunAllEmpty(t *testing.T) {
	var calls int
	res := Run("text", 1, fixed("a", 0, &calls), fixed("b", 0, &calls))

	if res.Strategy != "" {
		t.Errorf("strategy = %q, want empty", res.Strategy)
	}
	if len(res.Matches) != 0 {
		t.Errorf("matches = %d, want 0", len(res.Matches))
	}
	if !res.Fallback {
		t.Error("fallback not set for empty result")
	}
}

func TestRunThresholdOneTakesFirstHit(t *testing.T) {
	var aCalls, bCalls int
	res := Run("text", 1, fixed("a", 1, &aCalls), fixed("b", 50, &bCalls))

	if res.Strategy != "a" {
		t.Fatalf("strategy = %q, want a", res.Strategy)
	}
	if bCalls != 0 {
		t.Error("second strategy ran despite first-hit acceptance")
	}
}

func TestRunClampsThreshold(t *testing.T) {
	var calls int
	res := Run("text", 0, fixed("a", 1, &calls))
	if res.Strategy != "a" || res.Fallback {
		t.Errorf("got %+v, want accepted first strategy", res)
	}
}
