package models

import "time"

// Audit event types written by the security service.
const (
	EventLogin          = "LOGIN"
	EventLoginFailed    = "LOGIN_FAILED"
	EventPowerOn        = "POWER_ON"
	EventPowerOff       = "POWER_OFF"
	EventArm            = "ARM"
	EventDisarm         = "DISARM"
	EventPasswordChange = "PASSWORD_CHANGE"
	EventPanic          = "PANIC"
	EventProvision      = "PROVISION"
)

// SecurityEvent is a single audit log entry.
type SecurityEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	SubjectID   string    `json:"subject_id"`
	Type        string    `json:"type"`        // LOGIN | POWER_ON | ARM | PANIC ...
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
