package service

import "time"

// ProvisionParams creates a subject with its two credentials.
type ProvisionParams struct {
	SubjectID  string
	MasterCode string
	GuestCode  string
}

// LogFilter supports history filtering by time range, type and subject.
type LogFilter struct {
	From      time.Time // inclusive; zero means no lower bound
	To        time.Time // inclusive; zero means no upper bound
	Type      string    // "", "LOGIN", "ARM", "PANIC", ...
	SubjectID string    // "" means all subjects
}

// PanelSpec binds a hosted panel to its subject.
type PanelSpec struct {
	ID        string
	SubjectID string
}
