// Package panel implements the keypad command and credential state machine of a
// security control panel.
package panel

import (
	"context"
	"errors"

	"control_panel/internal/logger"
	"control_panel/internal/models"
)

// Outcome classes of a security service call. Implementations wrap their errors
// with one of these; anything not ErrRejected is handled as ErrUnavailable.
var (
	ErrRejected    = errors.New("rejected by security service")
	ErrUnavailable = errors.New("security service unavailable")
)

// maxFailedAttempts consecutive rejections lock the panel.
const maxFailedAttempts = 3

// SecurityService is the remote authority for credentials, power and arm state.
type SecurityService interface {
	CheckCredentials(ctx context.Context, subjectID, code string) (models.Role, error)
	PowerOn(ctx context.Context, subjectID string) error
	PowerOff(ctx context.Context, subjectID string) error
	Arm(ctx context.Context, subjectID string) error
	Disarm(ctx context.Context, subjectID string) error
	ChangePassword(ctx context.Context, subjectID, newPassword string) error
	Panic(ctx context.Context, subjectID string) error
}

// FeedbackSink is the display/LED surface of the panel.
type FeedbackSink interface {
	NotifyArmed(armed bool)
	NotifyPower(on bool)
	NotifyMessage(text string)
}

// Config carries the per-panel settings fixed at construction.
type Config struct {
	SubjectID string
	// CodeLength submits the pending code automatically once it has this many
	// digits. Zero leaves submission to Submit.
	CodeLength int
}

// Controller is the state record of one control panel plus the logic driving it.
// It is not safe for concurrent use; callers serialize Press and friends.
type Controller struct {
	security SecurityService
	feedback FeedbackSink
	log      *logger.Logger

	subjectID  string
	codeLength int

	state             State
	pendingCode       string
	failCount         int
	stagedNewPassword string
}

// New returns a controller in StateIdle.
func New(cfg Config, security SecurityService, feedback FeedbackSink, log *logger.Logger) *Controller {
	if feedback == nil {
		feedback = nopSink{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Controller{
		security:   security,
		feedback:   feedback,
		log:        log.With("subject_id", cfg.SubjectID),
		subjectID:  cfg.SubjectID,
		codeLength: cfg.CodeLength,
		state:      StateIdle,
	}
}

// State returns the current mode.
func (c *Controller) State() State { return c.state }

// FailCount returns the consecutive credential rejections since the last success.
func (c *Controller) FailCount() int { return c.failCount }

// SubjectID returns the identity the controller acts for.
func (c *Controller) SubjectID() string { return c.subjectID }

// Snapshot copies the state record. The pending code itself is not exposed.
func (c *Controller) Snapshot() models.PanelSnapshot {
	return models.PanelSnapshot{
		SubjectID:   c.subjectID,
		State:       c.state.String(),
		PendingLen:  len(c.pendingCode),
		FailCount:   c.failCount,
		StagedNewPW: c.stagedNewPassword != "",
	}
}

// takePending returns the pending code and clears it.
func (c *Controller) takePending() string {
	code := c.pendingCode
	c.pendingCode = ""
	return code
}

func (c *Controller) transition(to State) {
	if c.state != to {
		c.log.Debugw("panel_transition", "from", c.state.String(), "to", to.String())
	}
	c.state = to
}

type nopSink struct{}

func (nopSink) NotifyArmed(bool)     {}
func (nopSink) NotifyPower(bool)     {}
func (nopSink) NotifyMessage(string) {}
