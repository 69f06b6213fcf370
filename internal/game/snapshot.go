package game

import (
	"time"

	"lockreact/internal/stats"
)

// Prompt and pause texts shown by every adapter.
const (
	PausedMessage  = "GAME PAUSED. Press SPACE to resume."
	RunningMessage = "Press SPACE to Pause."
	WaitingMessage = "Waiting for next LED..."
)

// Snapshot is a consistent read-only view of a session for rendering.
type Snapshot struct {
	ID             string        `json:"id"`
	Target         Indicator     `json:"target"`
	TargetKey      string        `json:"target_key"`
	Paused         bool          `json:"paused"`
	WindowMs       int           `json:"window_ms"`
	Counters       Counters      `json:"counters"`
	Stats          stats.Summary `json:"stats"`
	ActiveSeconds  int64         `json:"active_seconds"`
	OverallSeconds int64         `json:"overall_seconds"`
	PausedSeconds  int64         `json:"paused_seconds"`
	PromptMessage  string        `json:"prompt_message"`
	PauseMessage   string        `json:"pause_message"`
}

// HasTarget reports whether a prompt is live.
func (s Snapshot) HasTarget() bool {
	return s.Target != ""
}

// Lit reports whether ind should render lit.
func (s Snapshot) Lit(ind Indicator) bool {
	return !s.Paused && s.Target == ind
}

// Snapshot captures the state needed to render the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	round := s.sched.Current()
	snap := Snapshot{
		ID:             s.ID,
		Target:         round.Target,
		Paused:         s.timing.paused,
		WindowMs:       s.windowMs,
		Counters:       s.counters,
		Stats:          stats.Summarize(s.reactions, s.counters.Correct, s.counters.TotalInputs, s.counters.TotalPrompts),
		ActiveSeconds:  int64(s.timing.active / time.Second),
		OverallSeconds: int64(now.Sub(s.timing.start) / time.Second),
		PausedSeconds:  int64(s.timing.pausedTotal / time.Second),
	}
	if round.Active() {
		snap.TargetKey = round.Target.KeyLabel()
	}

	switch {
	case snap.Paused:
		snap.PauseMessage = PausedMessage
	case round.Active():
		snap.PauseMessage = RunningMessage
		snap.PromptMessage = "Target: " + snap.TargetKey + " ARROW / Click the lit LED"
	default:
		snap.PauseMessage = RunningMessage
		snap.PromptMessage = WaitingMessage
	}
	return snap
}
