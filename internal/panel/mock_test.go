package panel

import (
	"context"
	"fmt"
	"testing"

	"control_panel/internal/logger"
	"control_panel/internal/models"
)

const (
	testSubject    = "house-1"
	testMasterCode = "1234"
	testGuestCode  = "0000"
)

// fakeSecurity answers credential checks from a code table and returns the
// configured error for every other call.
type fakeSecurity struct {
	roles    map[string]models.Role
	checkErr error

	powerOnErr  error
	powerOffErr error
	armErr      error
	disarmErr   error
	changeErr   error
	panicErr    error

	calls       []string
	newPassword string
}

func newFakeSecurity() *fakeSecurity {
	return &fakeSecurity{roles: map[string]models.Role{
		testMasterCode: models.RoleMaster,
		testGuestCode:  models.RoleGuest,
	}}
}

func (f *fakeSecurity) CheckCredentials(ctx context.Context, subjectID, code string) (models.Role, error) {
	f.calls = append(f.calls, "check")
	if f.checkErr != nil {
		return "", f.checkErr
	}
	if r, ok := f.roles[code]; ok {
		return r, nil
	}
	return "", fmt.Errorf("code for %s: %w", subjectID, ErrRejected)
}

func (f *fakeSecurity) PowerOn(ctx context.Context, subjectID string) error {
	f.calls = append(f.calls, "power_on")
	return f.powerOnErr
}

func (f *fakeSecurity) PowerOff(ctx context.Context, subjectID string) error {
	f.calls = append(f.calls, "power_off")
	return f.powerOffErr
}

func (f *fakeSecurity) Arm(ctx context.Context, subjectID string) error {
	f.calls = append(f.calls, "arm")
	return f.armErr
}

func (f *fakeSecurity) Disarm(ctx context.Context, subjectID string) error {
	f.calls = append(f.calls, "disarm")
	return f.disarmErr
}

func (f *fakeSecurity) ChangePassword(ctx context.Context, subjectID, newPassword string) error {
	f.calls = append(f.calls, "change_password")
	f.newPassword = newPassword
	return f.changeErr
}

func (f *fakeSecurity) Panic(ctx context.Context, subjectID string) error {
	f.calls = append(f.calls, "panic")
	return f.panicErr
}

type recordingSink struct {
	armed    []bool
	power    []bool
	messages []string
}

func (s *recordingSink) NotifyArmed(armed bool)    { s.armed = append(s.armed, armed) }
func (s *recordingSink) NotifyPower(on bool)       { s.power = append(s.power, on) }
func (s *recordingSink) NotifyMessage(text string) { s.messages = append(s.messages, text) }

func newTestController(sec *fakeSecurity) (*Controller, *recordingSink) {
	sink := &recordingSink{}
	c := New(Config{SubjectID: testSubject}, sec, sink, logger.Nop())
	return c, sink
}

// enter presses each digit of code and submits it.
func enter(c *Controller, code string) {
	ctx := context.Background()
	for _, r := range code {
		c.Press(ctx, Key(r))
	}
	c.Submit(ctx)
}

func loginMaster(t *testing.T, c *Controller) {
	t.Helper()
	enter(c, testMasterCode)
	if c.State() != StateMaster {
		t.Fatalf("login as master: state=%v", c.State())
	}
}

type record struct {
	state   State
	pending string
	fails   int
	staged  string
}

func recordOf(c *Controller) record {
	return record{c.state, c.pendingCode, c.failCount, c.stagedNewPassword}
}

var allKeys = []Key{'0', '1', '2', '3', '4', '5', '6', '7', '8', '9', KeyCancel, KeyPanic}
