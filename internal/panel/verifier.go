package panel

import (
	"context"
	"errors"

	"control_panel/internal/models"
)

// VerifyLogin submits the pending code collected in StateIdle.
func (c *Controller) VerifyLogin(ctx context.Context) {
	if c.state != StateIdle {
		return
	}
	code := c.takePending()

	role, err := c.security.CheckCredentials(ctx, c.subjectID, code)
	switch {
	case err == nil && role == models.RoleMaster:
		c.failCount = 0
		c.transition(StateMaster)
		c.log.Infow("panel_login", "role", role)
	case err == nil && role == models.RoleGuest:
		c.failCount = 0
		c.transition(StateGuest)
		c.log.Infow("panel_login", "role", role)
	case err == nil:
		c.log.Errorw("panel_login_unknown_role", "role", role)
	case errors.Is(err, ErrRejected):
		c.log.Infow("panel_login_rejected", "fail_count", c.failCount+1)
		if !c.registerFailure() {
			c.feedback.NotifyMessage("ACCESS DENIED")
		}
	default:
		c.log.Warnw("panel_login_unavailable", "err", err)
	}
}

// VerifyForPasswordChange re-authenticates a master before a password change.
// On any failure short of a lockout the operator is returned to StateMaster.
func (c *Controller) VerifyForPasswordChange(ctx context.Context) {
	if c.state != StatePasswordChangeCurrent {
		return
	}
	code := c.takePending()

	role, err := c.security.CheckCredentials(ctx, c.subjectID, code)
	switch {
	case err == nil && role == models.RoleMaster:
		c.failCount = 0
		c.transition(StatePasswordChangeNew)
	case err == nil || errors.Is(err, ErrRejected):
		c.log.Infow("panel_reauth_rejected", "role", role, "fail_count", c.failCount+1)
		if !c.registerFailure() {
			c.transition(StateMaster)
			c.feedback.NotifyMessage("ACCESS DENIED")
		}
	default:
		c.log.Warnw("panel_reauth_unavailable", "err", err)
		c.transition(StateMaster)
	}
}

// registerFailure applies the lockout policy and reports whether the panel
// locked.
func (c *Controller) registerFailure() bool {
	c.failCount++
	if c.failCount < maxFailedAttempts {
		return false
	}
	c.failCount = 0
	c.pendingCode = ""
	c.stagedNewPassword = ""
	c.transition(StateLocked)
	c.log.Warnw("panel_locked")
	c.feedback.NotifyMessage("LOCKED")
	return true
}
