package service

import (
	"context"

	"control_panel/internal/logger"
	"control_panel/internal/models"
	"control_panel/internal/panel"
	"control_panel/internal/repository"
)

type Authorization interface {
	SignUp(ctx context.Context, username, password string) (int, error)
	GenerateToken(ctx context.Context, username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Security is the server side of the panel's security service: credentials,
// power and arm state per subject.
type Security interface {
	Provision(ctx context.Context, p ProvisionParams) (models.Subject, error)
	Status(ctx context.Context, subjectID string) (models.Subject, error)
	CheckCredentials(ctx context.Context, subjectID, code string) (models.Role, error)
	PowerOn(ctx context.Context, subjectID string) error
	PowerOff(ctx context.Context, subjectID string) error
	Arm(ctx context.Context, subjectID string) error
	Disarm(ctx context.Context, subjectID string) error
	ChangePassword(ctx context.Context, subjectID, newPassword string) error
	Panic(ctx context.Context, subjectID string) error
}

// EventLog exposes the audit log with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.SecurityEvent, error)
}

// Panels drives the control panels hosted by this process. Each panel is
// serialized independently.
type Panels interface {
	Press(ctx context.Context, panelID string, key panel.Key) (models.PanelSnapshot, error)
	Submit(ctx context.Context, panelID string) (models.PanelSnapshot, error)
	Unlock(ctx context.Context, panelID string) (models.PanelSnapshot, error)
	Snapshot(ctx context.Context, panelID string) (models.PanelSnapshot, error)
	ListPanels(ctx context.Context) []models.PanelSnapshot
	Subscribe(panelID string) (<-chan models.FeedbackEvent, func(), error)
}

// Service aggregates all sub-services. A process fills in the ones it serves.
type Service struct {
	Authorization
	Security
	EventLog
	Panels
}


// NewService wires the repository layer into the security service side.
func NewService(repos *repository.Repository, auth AuthConfig, log *logger.Logger) *Service {
	return &Service{
		Authorization: NewAuthService(repos.Auth, auth),
		Security:      NewSecurityService(repos.Subjects, repos.Events, log),
		EventLog:      NewEventLogService(repos.Events),
	}
}
