package panel

import (
	"context"
	"crypto/subtle"
)

// PowerOn turns a powered-off panel back on. The service outcome is logged
// only; locally power-on always succeeds.
func (c *Controller) PowerOn(ctx context.Context) {
	if c.state != StatePoweredOff {
		return
	}
	c.powerOn(ctx)
}

// PowerOff powers the panel down from StateMaster.
func (c *Controller) PowerOff(ctx context.Context) {
	if c.state != StateMaster {
		return
	}
	c.powerOff(ctx)
}

// Reset is power-off followed by power-on. The second call is made even if
// the first one failed.
func (c *Controller) Reset(ctx context.Context) {
	if c.state != StateMaster {
		return
	}
	c.powerOff(ctx)
	c.powerOn(ctx)
}

// Arm arms the subject. Only success is signalled, through NotifyArmed(true).
func (c *Controller) Arm(ctx context.Context) {
	if c.state != StateMaster {
		return
	}
	if err := c.security.Arm(ctx, c.subjectID); err != nil {
		c.log.Infow("panel_arm_failed", "err", err)
		return
	}
	c.feedback.NotifyArmed(true)
}

// Disarm mirrors Arm.
func (c *Controller) Disarm(ctx context.Context) {
	if c.state != StateMaster {
		return
	}
	if err := c.security.Disarm(ctx, c.subjectID); err != nil {
		c.log.Infow("panel_disarm_failed", "err", err)
		return
	}
	c.feedback.NotifyArmed(false)
}

// BeginPasswordChange starts collecting the current password.
func (c *Controller) BeginPasswordChange() {
	if c.state != StateMaster {
		return
	}
	c.pendingCode = ""
	c.transition(StatePasswordChangeCurrent)
}

// CompletePasswordNew stages the pending code as the new password.
func (c *Controller) CompletePasswordNew() {
	if c.state != StatePasswordChangeNew {
		return
	}
	c.stagedNewPassword = c.takePending()
	c.transition(StatePasswordChangeReconfirm)
}

// CompletePasswordReconfirm compares the pending code with the staged one.
// On a match the new password is submitted and the panel returns to
// StateMaster whatever the service answers.
func (c *Controller) CompletePasswordReconfirm(ctx context.Context) {
	if c.state != StatePasswordChangeReconfirm {
		return
	}
	confirm := c.takePending()
	staged := c.stagedNewPassword
	c.stagedNewPassword = ""

	if subtle.ConstantTimeCompare([]byte(confirm), []byte(staged)) != 1 {
		c.transition(StatePasswordChangeNew)
		c.feedback.NotifyMessage("PASSWORD MISMATCH")
		return
	}

	// TODO: surface a failed update instead of returning to master silently.
	err := c.security.ChangePassword(ctx, c.subjectID, staged)
	c.transition(StateMaster)
	if err != nil {
		c.log.Warnw("panel_password_change_failed", "err", err)
		return
	}
	c.feedback.NotifyMessage("PASSWORD CHANGED")
}

func (c *Controller) powerOn(ctx context.Context) {
	if err := c.security.PowerOn(ctx, c.subjectID); err != nil {
		c.log.Warnw("panel_power_on_failed", "err", err)
	}
	c.pendingCode = ""
	c.transition(StateIdle)
	c.feedback.NotifyPower(true)
}

func (c *Controller) powerOff(ctx context.Context) {
	if err := c.security.PowerOff(ctx, c.subjectID); err != nil {
		c.log.Warnw("panel_power_off_failed", "err", err)
	}
	c.pendingCode = ""
	c.transition(StatePoweredOff)
	c.feedback.NotifyPower(false)
}
