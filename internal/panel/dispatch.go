package panel

import "context"

// Press routes one keypress according to the current state. It never fails:
// backend outcomes show up only as the resulting state and feedback.
func (c *Controller) Press(ctx context.Context, key Key) {
	switch c.state {
	case StateLocked:
		return

	case StatePoweredOff:
		if key == Digit(1) {
			c.PowerOn(ctx)
		}

	case StateIdle, StatePasswordChangeCurrent, StatePasswordChangeNew, StatePasswordChangeReconfirm:
		switch {
		case key.IsDigit():
			c.appendDigit(ctx, key)
		case key == KeyCancel:
			c.cancel()
		case key == KeyPanic:
			c.raisePanic(ctx)
		}

	case StateMaster:
		switch {
		case key.IsDigit():
			c.runMasterFunction(ctx, key)
		case key == KeyCancel:
			c.cancel()
		case key == KeyPanic:
			c.raisePanic(ctx)
		}

	case StateGuest:
		switch key {
		case KeyCancel:
			c.cancel()
		case KeyPanic:
			c.raisePanic(ctx)
		}
	}
}

// Submit hands the pending code to the step that consumes it in the current
// state. Empty codes are ignored.
func (c *Controller) Submit(ctx context.Context) {
	if c.pendingCode == "" {
		return
	}
	switch c.state {
	case StateIdle:
		c.VerifyLogin(ctx)
	case StatePasswordChangeCurrent:
		c.VerifyForPasswordChange(ctx)
	case StatePasswordChangeNew:
		c.CompletePasswordNew()
	case StatePasswordChangeReconfirm:
		c.CompletePasswordReconfirm(ctx)
	}
}

// Unlock is the out-of-band override that leaves StateLocked. It reports
// whether the panel was locked.
func (c *Controller) Unlock() bool {
	if c.state != StateLocked {
		return false
	}
	c.pendingCode = ""
	c.transition(StateIdle)
	c.log.Infow("panel_unlocked")
	return true
}

func (c *Controller) appendDigit(ctx context.Context, key Key) {
	c.pendingCode += string(rune(key))
	if c.codeLength > 0 && len(c.pendingCode) >= c.codeLength {
		c.Submit(ctx)
	}
}

// cancel aborts whatever is in progress, including a staged new password.
func (c *Controller) cancel() {
	c.pendingCode = ""
	c.stagedNewPassword = ""
	c.transition(StateIdle)
}

func (c *Controller) runMasterFunction(ctx context.Context, key Key) {
	switch key {
	case masterKeyPowerOff:
		c.PowerOff(ctx)
	case masterKeyReset:
		c.Reset(ctx)
	case masterKeyArm:
		c.Arm(ctx)
	case masterKeyDisarm:
		c.Disarm(ctx)
	case masterKeyPasswordChange:
		c.BeginPasswordChange()
	}
}

func (c *Controller) raisePanic(ctx context.Context) {
	if err := c.security.Panic(ctx, c.subjectID); err != nil {
		c.log.Errorw("panel_panic_failed", "err", err)
	}
	c.feedback.NotifyMessage("PANIC")
}
