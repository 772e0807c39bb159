package models

import "time"

// PanelSnapshot is a copy of a controller's state record.
type PanelSnapshot struct {
	PanelID     string `json:"panel_id"`
	SubjectID   string `json:"subject_id"`
	State       string `json:"state"`
	PendingLen  int    `json:"pending_len"` // digits are never echoed
	FailCount   int    `json:"fail_count"`
	StagedNewPW bool   `json:"staged_new_password"`
}

// Feedback event kinds.
const (
	FeedbackArmed   = "armed"
	FeedbackPower   = "power"
	FeedbackMessage = "message"
	FeedbackState   = "state"
)

// FeedbackEvent is what a panel shows on its indicators, fanned out to subscribers.
type FeedbackEvent struct {
	ID      string         `json:"id"`
	PanelID string         `json:"panel_id"`
	Kind    string         `json:"kind"`
	Armed   *bool          `json:"armed,omitempty"`
	Powered *bool          `json:"powered,omitempty"`
	Message string         `json:"message,omitempty"`
	State   *PanelSnapshot `json:"state,omitempty"`
	At      time.Time      `json:"at"`
}
