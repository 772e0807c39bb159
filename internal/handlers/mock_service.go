package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"control_panel/internal/models"
	"control_panel/internal/panel"
	"control_panel/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
	lastCtx            context.Context
}

func (m *mockAuth) SignUp(ctx context.Context, username, password string) (int, error) {
	m.lastCtx = ctx
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(ctx context.Context, username, password string) (string, error) {
	m.lastCtx = ctx
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

// mockSecurity returns err for every call and records the calls it got.
type mockSecurity struct {
	subject models.Subject
	role    models.Role
	err     error

	calls         []string
	lastSubjectID string
	lastCode      string
	lastProvision service.ProvisionParams
}

func (m *mockSecurity) record(name, subjectID string) {
	m.calls = append(m.calls, name)
	m.lastSubjectID = subjectID
}

func (m *mockSecurity) Provision(ctx context.Context, p service.ProvisionParams) (models.Subject, error) {
	m.record("provision", p.SubjectID)
	m.lastProvision = p
	return m.subject, m.err
}
func (m *mockSecurity) Status(ctx context.Context, id string) (models.Subject, error) {
	m.record("status", id)
	return m.subject, m.err
}
func (m *mockSecurity) CheckCredentials(ctx context.Context, id, code string) (models.Role, error) {
	m.record("check", id)
	m.lastCode = code
	return m.role, m.err
}
func (m *mockSecurity) PowerOn(ctx context.Context, id string) error {
	m.record("power_on", id)
	return m.err
}
func (m *mockSecurity) PowerOff(ctx context.Context, id string) error {
	m.record("power_off", id)
	return m.err
}
func (m *mockSecurity) Arm(ctx context.Context, id string) error {
	m.record("arm", id)
	return m.err
}
func (m *mockSecurity) Disarm(ctx context.Context, id string) error {
	m.record("disarm", id)
	return m.err
}
func (m *mockSecurity) ChangePassword(ctx context.Context, id, pw string) error {
	m.record("password", id)
	m.lastCode = pw
	return m.err
}
func (m *mockSecurity) Panic(ctx context.Context, id string) error {
	m.record("panic", id)
	return m.err
}

type mockEventLog struct {
	resp        []models.SecurityEvent
	err         error
	lastFrom    time.Time
	lastTo      time.Time
	lastType    string
	lastSubject string
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.SecurityEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	m.lastSubject = f.SubjectID
	return m.resp, m.err
}

// mockPanels serves one snapshot per panel id and records pressed keys.
type mockPanels struct {
	mu        sync.Mutex
	snaps     map[string]models.PanelSnapshot
	pressed   []panel.Key
	submitted int
	unlocked  int
	unlockErr error
	snapErr   error
	events    chan models.FeedbackEvent
	cancelled bool
}

func (m *mockPanels) get(id string) (models.PanelSnapshot, error) {
	s, ok := m.snaps[id]
	if !ok {
		return models.PanelSnapshot{}, service.ErrPanelNotFound
	}
	return s, nil
}

func (m *mockPanels) Press(ctx context.Context, id string, key panel.Key) (models.PanelSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.get(id)
	if err != nil {
		return s, err
	}
	m.pressed = append(m.pressed, key)
	s.PendingLen++
	m.snaps[id] = s
	return s, nil
}
func (m *mockPanels) Submit(ctx context.Context, id string) (models.PanelSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitted++
	return m.get(id)
}
func (m *mockPanels) Unlock(ctx context.Context, id string) (models.PanelSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unlockErr != nil {
		return models.PanelSnapshot{}, m.unlockErr
	}
	m.unlocked++
	return m.get(id)
}
func (m *mockPanels) Snapshot(ctx context.Context, id string) (models.PanelSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snapErr != nil {
		return models.PanelSnapshot{}, m.snapErr
	}
	return m.get(id)
}
func (m *mockPanels) ListPanels(ctx context.Context) []models.PanelSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.PanelSnapshot, 0, len(m.snaps))
	for _, s := range m.snaps {
		out = append(out, s)
	}
	return out
}
func (m *mockPanels) Subscribe(id string) (<-chan models.FeedbackEvent, func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.get(id); err != nil {
		return nil, nil, err
	}
	if m.events == nil {
		m.events = make(chan models.FeedbackEvent, 8)
	}
	return m.events, func() {
		m.mu.Lock()
		m.cancelled = true
		m.mu.Unlock()
	}, nil
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func newTestPanelRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitPanelRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
