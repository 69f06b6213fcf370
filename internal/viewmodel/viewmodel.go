package viewmodel

import (
	"fmt"
	"strconv"
	"strings"

	"lockreact/internal/game"
)

// IndicatorView is one light as rendered.
type IndicatorView struct {
	Name  string
	Label string
	Key   string
	Lit   bool
}

// SessionPage holds data for the main game page template.
type SessionPage struct {
	Title     string
	SessionID string
	ShareURL  string
	Prompt    PromptFragment
	Stats     StatsFragment
}

// PromptFragment holds data for the indicator and prompt panel.
type PromptFragment struct {
	SessionID     string
	Indicators    []IndicatorView
	Paused        bool
	PromptMessage string
	PauseMessage  string
	RoundKey      string
}

// StatsFragment holds data for the statistics panel.
type StatsFragment struct {
	SessionID  string
	Lines      []string
	TargetLine string
}

// NewPromptFragment builds the prompt panel from a snapshot.
func NewPromptFragment(snap game.Snapshot) PromptFragment {
	inds := make([]IndicatorView, 0, len(game.Indicators))
	for _, ind := range game.Indicators {
		inds = append(inds, IndicatorView{
			Name:  string(ind),
			Label: IndicatorLabel(ind),
			Key:   ind.KeyLabel(),
			Lit:   snap.Lit(ind),
		})
	}
	return PromptFragment{
		SessionID:     snap.ID,
		Indicators:    inds,
		Paused:        snap.Paused,
		PromptMessage: snap.PromptMessage,
		PauseMessage:  snap.PauseMessage,
		RoundKey:      RoundKey(snap),
	}
}

// NewStatsFragment builds the statistics panel from a snapshot.
func NewStatsFragment(snap game.Snapshot) StatsFragment {
	return StatsFragment{
		SessionID:  snap.ID,
		Lines:      StatLines(snap),
		TargetLine: TargetLine(snap),
	}
}

// IndicatorLabel is the human name of an indicator, e.g. "Num Lock".
func IndicatorLabel(ind game.Indicator) string {
	return strings.ReplaceAll(string(ind), "_", " ")
}

// StatLines renders the ten statistics lines in display order.
func StatLines(snap game.Snapshot) []string {
	c := snap.Counters
	st := snap.Stats
	return []string{
		fmt.Sprintf("Total Inputs: %d (Wrong: %d)", c.TotalInputs, c.Wrong),
		fmt.Sprintf("Successful Inputs: %d | Accuracy: %s | Prompts: %d (Prompt Ratio: %s)",
			c.Correct, st.Accuracy.Percent(), c.TotalPrompts, st.PromptRatio),
		fmt.Sprintf("Fastest: %s ms | Slowest: %s ms | Average: %s ms", st.Fastest, st.Slowest, st.Average),
		fmt.Sprintf("Median: %s ms | Stdev: %s ms", st.Median, st.Stdev),
		fmt.Sprintf("25th Percentile: %s ms | 75th Percentile: %s ms", st.P25, st.P75),
		fmt.Sprintf("Current Streak: %d | Longest Streak: %d", c.CurrentStreak, c.LongestStreak),
		fmt.Sprintf("Missed Prompts: %d", c.MissedPrompts),
		fmt.Sprintf("Reaction Time Window: %d ms", snap.WindowMs),
		fmt.Sprintf("Active Game Time (unpaused): %d s", snap.ActiveSeconds),
		fmt.Sprintf("Overall Game Time: %d s", snap.OverallSeconds),
	}
}

// TargetLine names the lit indicator, or the placeholder.
func TargetLine(snap game.Snapshot) string {
	name := "N/A"
	if snap.HasTarget() {
		name = string(snap.Target)
	}
	return "Target LED Name: " + name
}

// RoundKey changes whenever the visible prompt state changes, so clients can
// skip redundant swaps.
func RoundKey(snap game.Snapshot) string {
	return strings.Join([]string{
		strconv.FormatBool(snap.Paused),
		string(snap.Target),
		strconv.Itoa(snap.Counters.TotalPrompts),
	}, "|")
}
