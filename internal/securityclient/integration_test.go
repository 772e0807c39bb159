package securityclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"control_panel/internal/handlers"
	"control_panel/internal/models"
	"control_panel/internal/panel"
	"control_panel/internal/repository"
	"control_panel/internal/repository/db"
	"control_panel/internal/service"

	"github.com/gin-gonic/gin"
)

// TestPanelAgainstSecurityService drives a controller through the real HTTP
// API backed by SQLite.
func TestPanelAgainstSecurityService(t *testing.T) {
	conn, err := db.InitDB(filepath.Join(t.TempDir(), "security.db"))
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	defer conn.Close()

	services := service.NewService(repository.NewRepository(conn),
		service.AuthConfig{SigningKey: "it-key", TokenTTL: time.Minute}, nil)
	gin.SetMode(gin.TestMode)
	srv := httptest.NewServer(handlers.NewHandler(services, nil).InitRoutes())
	defer srv.Close()

	ctx := context.Background()
	if _, err := services.SignUp(ctx, "panel", "panel-pw"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	client := New(Config{BaseURL: srv.URL, Username: "panel", Password: "panel-pw"}, nil)
	if _, err := client.Provision(ctx, "house-1", "1234", "9999"); err != nil {
		t.Fatalf("Provision: %v", err)
	}

	ctrl := panel.New(panel.Config{SubjectID: "house-1", CodeLength: 4}, client, nil, nil)
	press := func(keys string) {
		for _, k := range keys {
			ctrl.Press(ctx, panel.Key(k))
		}
	}

	// Wrong code counts as a rejection.
	press("0000")
	if ctrl.State() != panel.StateIdle || ctrl.FailCount() != 1 {
		t.Fatalf("after wrong code: state=%v fails=%d", ctrl.State(), ctrl.FailCount())
	}

	// Arming while powered off is refused by the service; panel stays in Master.
	press("1234")
	if ctrl.State() != panel.StateMaster {
		t.Fatalf("expected master, got %v", ctrl.State())
	}
	press("3")
	st, err := client.Status(ctx, "house-1")
	if err != nil || st.Armed {
		t.Fatalf("arm must be refused while off: %+v %v", st, err)
	}

	// Reset powers the subject on and leaves the panel idle; log in again and arm.
	press("2")
	if ctrl.State() != panel.StateIdle {
		t.Fatalf("expected idle after reset, got %v", ctrl.State())
	}
	press("1234")
	press("3")
	st, _ = client.Status(ctx, "house-1")
	if !st.Powered || !st.Armed {
		t.Fatalf("expected powered and armed, got %+v", st)
	}

	// Change the master code through the keypad flow.
	press("5")
	press("1234")
	press("4321")
	press("4321")
	if ctrl.State() != panel.StateMaster {
		t.Fatalf("expected master after password change, got %v", ctrl.State())
	}
	role, err := client.CheckCredentials(ctx, "house-1", "4321")
	if err != nil || role != models.RoleMaster {
		t.Fatalf("new code: role=%q err=%v", role, err)
	}

	events, err := services.EventLog.List(ctx, service.LogFilter{SubjectID: "house-1", Type: models.EventPasswordChange})
	if err != nil || len(events) != 1 {
		t.Fatalf("expected one PASSWORD_CHANGE event, got %d (%v)", len(events), err)
	}
}

// TestPanelUnlockNeedsOperatorToken locks a hosted panel through its HTTP
// keypad and releases it with a token issued by the security service.
func TestPanelUnlockNeedsOperatorToken(t *testing.T) {
	conn, err := db.InitDB(filepath.Join(t.TempDir(), "security.db"))
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	defer conn.Close()

	authCfg := service.AuthConfig{SigningKey: "shared-key", TokenTTL: time.Minute}
	services := service.NewService(repository.NewRepository(conn), authCfg, nil)
	gin.SetMode(gin.TestMode)
	secSrv := httptest.NewServer(handlers.NewHandler(services, nil).InitRoutes())
	defer secSrv.Close()

	ctx := context.Background()
	if _, err := services.SignUp(ctx, "panel", "panel-pw"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	client := New(Config{BaseURL: secSrv.URL, Username: "panel", Password: "panel-pw"}, nil)
	if _, err := client.Provision(ctx, "house-1", "1234", "9999"); err != nil {
		t.Fatalf("Provision: %v", err)
	}

	panels, err := service.NewPanelService([]service.PanelSpec{{ID: "front", SubjectID: "house-1"}}, 4, client, nil, nil)
	if err != nil {
		t.Fatalf("NewPanelService: %v", err)
	}
	tokens := service.NewAuthService(nil, service.AuthConfig{SigningKey: authCfg.SigningKey})
	panelSrv := httptest.NewServer(handlers.NewHandler(&service.Service{Authorization: tokens, Panels: panels}, nil).InitPanelRoutes())
	defer panelSrv.Close()

	post := func(path, body, token string) *http.Response {
		t.Helper()
		req, _ := http.NewRequest(http.MethodPost, panelSrv.URL+path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("POST %s: %v", path, err)
		}
		return resp
	}
	state := func(resp *http.Response) string {
		t.Helper()
		defer resp.Body.Close()
		var snap models.PanelSnapshot
		if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
			t.Fatalf("decode snapshot: %v", err)
		}
		return snap.State
	}

	wrong := `{"keys":["0","0","0","0"]}`
	post("/api/v1/panels/front/keys", wrong, "").Body.Close()
	post("/api/v1/panels/front/keys", wrong, "").Body.Close()
	if got := state(post("/api/v1/panels/front/keys", wrong, "")); got != panel.StateLocked.String() {
		t.Fatalf("after three wrong codes: %s", got)
	}

	resp := post("/api/v1/panels/front/unlock", "", "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous unlock: status=%d", resp.StatusCode)
	}

	// Only the correct code would work, and the locked keypad ignores it.
	if got := state(post("/api/v1/panels/front/keys", `{"keys":["1","2","3","4"]}`, "")); got != panel.StateLocked.String() {
		t.Fatalf("locked keypad accepted input: %s", got)
	}

	token, err := services.GenerateToken(ctx, "panel", "panel-pw")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	resp = post("/api/v1/panels/front/unlock", "", token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("operator unlock: status=%d", resp.StatusCode)
	}
	if got := state(resp); got != panel.StateIdle.String() {
		t.Fatalf("after operator unlock: %s", got)
	}
}
