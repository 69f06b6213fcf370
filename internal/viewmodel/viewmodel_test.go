package viewmodel

import (
	"testing"

	"lockreact/internal/game"
	"lockreact/internal/stats"
)

func TestStatLines_EmptySession(t *testing.T) {
	snap := game.Snapshot{
		WindowMs: 1000,
		Stats:    stats.Summarize(nil, 0, 0, 0),
	}
	want := []string{
		"Total Inputs: 0 (Wrong: 0)",
		"Successful Inputs: 0 | Accuracy: N/A | Prompts: 0 (Prompt Ratio: N/A)",
		"Fastest: N/A ms | Slowest: N/A ms | Average: N/A ms",
		"Median: N/A ms | Stdev: N/A ms",
		"25th Percentile: N/A ms | 75th Percentile: N/A ms",
		"Current Streak: 0 | Longest Streak: 0",
		"Missed Prompts: 0",
		"Reaction Time Window: 1000 ms",
		"Active Game Time (unpaused): 0 s",
		"Overall Game Time: 0 s",
	}
	got := StatLines(snap)
	if len(got) != len(want) {
		t.Fatalf("got %d lines, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i+1, got[i], want[i])
		}
	}
}

func TestStatLines_WithData(t *testing.T) {
	samples := []float64{100, 200, 300, 400}
	snap := game.Snapshot{
		WindowMs: 980,
		Counters: game.Counters{
			Correct: 4, Wrong: 1, TotalInputs: 5, TotalPrompts: 6,
			MissedPrompts: 2, CurrentStreak: 1, LongestStreak: 3,
		},
		Stats:          stats.Summarize(samples, 4, 5, 6),
		ActiveSeconds:  12,
		OverallSeconds: 30,
	}
	got := StatLines(snap)
	checks := map[int]string{
		0: "Total Inputs: 5 (Wrong: 1)",
		1: "Successful Inputs: 4 | Accuracy: 80.00% | Prompts: 6 (Prompt Ratio: 4/6 (66.67%))",
		2: "Fastest: 100.00 ms | Slowest: 400.00 ms | Average: 250.00 ms",
		3: "Median: 250.00 ms | Stdev: 129.10 ms",
		4: "25th Percentile: 175.00 ms | 75th Percentile: 325.00 ms",
		5: "Current Streak: 1 | Longest Streak: 3",
		7: "Reaction Time Window: 980 ms",
		8: "Active Game Time (unpaused): 12 s",
		9: "Overall Game Time: 30 s",
	}
	for i, want := range checks {
		if got[i] != want {
			t.Errorf("line %d = %q, want %q", i+1, got[i], want)
		}
	}
}

func TestNewPromptFragment_LightsOnlyTarget(t *testing.T) {
	snap := game.Snapshot{ID: "s1", Target: game.CapsLock, TargetKey: "DOWN"}
	frag := NewPromptFragment(snap)
	if len(frag.Indicators) != len(game.Indicators) {
		t.Fatalf("got %d indicators, want %d", len(frag.Indicators), len(game.Indicators))
	}
	for _, ind := range frag.Indicators {
		if want := ind.Name == string(game.CapsLock); ind.Lit != want {
			t.Errorf("%s lit=%v, want %v", ind.Name, ind.Lit, want)
		}
	}
	if frag.Indicators[0].Label != "Num Lock" || frag.Indicators[0].Key != "LEFT" {
		t.Errorf("first indicator %+v", frag.Indicators[0])
	}

	snap.Paused = true
	for _, ind := range NewPromptFragment(snap).Indicators {
		if ind.Lit {
			t.Errorf("%s lit while paused", ind.Name)
		}
	}
}

func TestTargetLineAndRoundKey(t *testing.T) {
	idle := game.Snapshot{}
	if got := TargetLine(idle); got != "Target LED Name: N/A" {
		t.Errorf("TargetLine = %q", got)
	}
	lit := game.Snapshot{Target: game.NumLock, Counters: game.Counters{TotalPrompts: 1}}
	if got := TargetLine(lit); got != "Target LED Name: Num_Lock" {
		t.Errorf("TargetLine = %q", got)
	}
	if RoundKey(idle) == RoundKey(lit) {
		t.Error("round key should change when a prompt lights")
	}
}
