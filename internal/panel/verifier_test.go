package panel

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"control_panel/internal/models"
)

func TestVerifyLogin_RoleSelectsState(t *testing.T) {
	cases := []struct {
		code string
		want State
	}{
		{testMasterCode, StateMaster},
		{testGuestCode, StateGuest},
	}
	for _, tc := range cases {
		t.Run(tc.want.String(), func(t *testing.T) {
			c, _ := newTestController(newFakeSecurity())
			c.failCount = 2
			enter(c, tc.code)
			if got := recordOf(c); got != (record{state: tc.want}) {
				t.Fatalf("record=%+v", got)
			}
		})
	}
}

func TestVerifyLogin_TwoRejectionsCountThirdLocks(t *testing.T) {
	c, sink := newTestController(newFakeSecurity())

	enter(c, "1111")
	enter(c, "2222")
	if c.State() != StateIdle || c.FailCount() != 2 {
		t.Fatalf("after two rejections: %+v", recordOf(c))
	}

	enter(c, "3333")
	if got := recordOf(c); got != (record{state: StateLocked}) {
		t.Fatalf("after third rejection: %+v", got)
	}
	if sink.messages[len(sink.messages)-1] != "LOCKED" {
		t.Fatalf("messages=%v", sink.messages)
	}
}

func TestVerifyLogin_UnavailableDoesNotCount(t *testing.T) {
	sec := newFakeSecurity()
	c, _ := newTestController(sec)
	enter(c, "1111")

	sec.checkErr = fmt.Errorf("dial tcp: %w", ErrUnavailable)
	for i := 0; i < 5; i++ {
		enter(c, testMasterCode)
	}
	if got := recordOf(c); got != (record{state: StateIdle, fails: 1}) {
		t.Fatalf("record=%+v", got)
	}
}

func TestVerifyLogin_UnclassifiedErrorIsUnavailable(t *testing.T) {
	sec := newFakeSecurity()
	sec.checkErr = errors.New("something odd")
	c, _ := newTestController(sec)
	enter(c, "1111")
	if c.State() != StateIdle || c.FailCount() != 0 {
		t.Fatalf("record=%+v", recordOf(c))
	}
}

func TestVerifyLogin_UnknownRoleStaysIdle(t *testing.T) {
	sec := newFakeSecurity()
	sec.roles["7777"] = models.Role("installer")
	c, _ := newTestController(sec)
	enter(c, "7777")
	if c.State() != StateIdle || c.FailCount() != 0 {
		t.Fatalf("record=%+v", recordOf(c))
	}
}

func TestVerifyLogin_SuccessResetsFailCount(t *testing.T) {
	c, _ := newTestController(newFakeSecurity())
	enter(c, "1111")
	enter(c, "2222")
	loginMaster(t, c)
	if c.FailCount() != 0 {
		t.Fatalf("fail count=%d", c.FailCount())
	}
}

func TestVerifyLogin_OnlyFromIdle(t *testing.T) {
	sec := newFakeSecurity()
	c, _ := newTestController(sec)
	c.state = StateGuest
	c.pendingCode = testMasterCode
	c.VerifyLogin(context.Background())
	if c.State() != StateGuest || len(sec.calls) != 0 {
		t.Fatalf("state=%v calls=%v", c.State(), sec.calls)
	}
}

func TestPasswordChangeReauth_Scenario(t *testing.T) {
	c, _ := newTestController(newFakeSecurity())
	loginMaster(t, c)
	if c.FailCount() != 0 {
		t.Fatalf("fail count after login=%d", c.FailCount())
	}

	c.BeginPasswordChange()
	if c.State() != StatePasswordChangeCurrent {
		t.Fatalf("state=%v", c.State())
	}

	for i := 1; i <= 2; i++ {
		if c.State() == StateMaster {
			c.Press(context.Background(), masterKeyPasswordChange)
		}
		enter(c, "9999")
		if c.State() != StateMaster || c.FailCount() != i {
			t.Fatalf("wrong current password #%d: %+v", i, recordOf(c))
		}
	}

	c.Press(context.Background(), masterKeyPasswordChange)
	enter(c, "9999")
	if got := recordOf(c); got != (record{state: StateLocked}) {
		t.Fatalf("third wrong current password: %+v", got)
	}
}

func TestVerifyForPasswordChange_Outcomes(t *testing.T) {
	cases := []struct {
		name      string
		code      string
		checkErr  error
		wantState State
		wantFails int
	}{
		{"master", testMasterCode, nil, StatePasswordChangeNew, 0},
		{"guest_role_counts", testGuestCode, nil, StateMaster, 2},
		{"rejected", "5678", nil, StateMaster, 2},
		{"unavailable", testMasterCode, fmt.Errorf("timeout: %w", ErrUnavailable), StateMaster, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sec := newFakeSecurity()
			c, _ := newTestController(sec)
			c.state = StatePasswordChangeCurrent
			c.failCount = 1
			sec.checkErr = tc.checkErr

			enter(c, tc.code)

			if c.State() != tc.wantState || c.FailCount() != tc.wantFails || c.pendingCode != "" {
				t.Fatalf("record=%+v", recordOf(c))
			}
		})
	}
}

func TestLockout_SharedAcrossEntryPoints(t *testing.T) {
	c, _ := newTestController(newFakeSecurity())
	loginMaster(t, c)

	c.BeginPasswordChange()
	enter(c, "0001")
	if c.State() != StateMaster || c.FailCount() != 1 {
		t.Fatalf("after failed reauth: %+v", recordOf(c))
	}

	c.Press(context.Background(), KeyCancel)
	enter(c, "0002")
	if c.State() != StateIdle || c.FailCount() != 2 {
		t.Fatalf("after failed login: %+v", recordOf(c))
	}

	enter(c, "0003")
	if got := recordOf(c); got != (record{state: StateLocked}) {
		t.Fatalf("record=%+v", got)
	}
}
