package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing   Action = "ping"
	ActionSubmit Action = "submit"
)

// RequestPayload is the single client message shape; Action selects the
// behavior.
type RequestPayload struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError     Event = "error"
	EventTick      Event = "tick"
	EventPaused    Event = "paused"
	EventResumed   Event = "resumed"
	EventSubmitted Event = "submitted"
	EventPong      Event = "pong"
)

// StreamPayload is pushed to the client on every session transition:
// one tick per second while the timer runs, pause/resume notifications,
// and a final submitted event carrying the history record id.
type StreamPayload struct {
	Event         Event  `json:"event"`
	TimeRemaining int    `json:"time_remaining"`
	HistoryID     string `json:"history_id,omitempty"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
