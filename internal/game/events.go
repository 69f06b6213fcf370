package game

import "lockreact/pkg/realtime"

// Events published after a session processes an operation.
const (
	EventRound realtime.Event = "round"
	EventStats realtime.Event = "stats"
	EventPause realtime.Event = "pause"
	EventReset realtime.Event = "reset"
	EventTick  realtime.Event = "tick"
)
