package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"control_panel/internal/logger"
	"control_panel/internal/models"
	"control_panel/internal/repository"

	"github.com/google/uuid"
)

// Security domain errors. ErrRejected, ErrNotPowered, ErrInvalidCode and
// ErrInvalidSubject are refusals a panel must treat as a rejection; anything
// else is an outage.
var (
	ErrRejected        = errors.New("credentials rejected")
	ErrSubjectExists   = errors.New("subject already exists")
	ErrSubjectNotFound = errors.New("subject not found")
	ErrNotPowered      = errors.New("subject is powered off")
	ErrInvalidCode     = errors.New("code must be 4 to 12 digits")
	ErrInvalidSubject  = errors.New("subject id is required")
)

const (
	minCodeLen = 4
	maxCodeLen = 12
)

// SecurityService owns subject credentials and power/arm state and writes
// an audit event for every decision it makes.
type SecurityService struct {
	subjects repository.SubjectRepo
	events   repository.EventRepo
	log      *logger.Logger
	now      func() time.Time
}

func NewSecurityService(subjects repository.SubjectRepo, events repository.EventRepo, log *logger.Logger) *SecurityService {
	if log == nil {
		log = logger.Nop()
	}
	return &SecurityService{
		subjects: subjects,
		events:   events,
		log:      log.Named("security"),
		now:      time.Now,
	}
}

func validCode(code string) bool {
	if len(code) < minCodeLen || len(code) > maxCodeLen {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}

func (s *SecurityService) Provision(ctx context.Context, p ProvisionParams) (models.Subject, error) {
	id := strings.TrimSpace(p.SubjectID)
	if id == "" {
		return models.Subject{}, ErrInvalidSubject
	}
	if !validCode(p.MasterCode) || !validCode(p.GuestCode) {
		return models.Subject{}, ErrInvalidCode
	}
	if p.MasterCode == p.GuestCode {
		return models.Subject{}, fmt.Errorf("%w: master and guest codes must differ", ErrInvalidCode)
	}

	existing, err := s.subjects.Get(ctx, id)
	if err != nil {
		return models.Subject{}, err
	}
	if existing != nil {
		return models.Subject{}, ErrSubjectExists
	}

	masterHash, err := hashSecret(p.MasterCode)
	if err != nil {
		return models.Subject{}, err
	}
	guestHash, err := hashSecret(p.GuestCode)
	if err != nil {
		return models.Subject{}, err
	}

	subj := models.Subject{
		ID:         id,
		MasterHash: masterHash,
		GuestHash:  guestHash,
		UpdatedAt:  s.now().UTC(),
	}
	if err := s.subjects.Create(ctx, subj); err != nil {
		return models.Subject{}, err
	}
	s.audit(ctx, id, models.EventProvision, "subject provisioned", nil)
	return subj, nil
}

func (s *SecurityService) Status(ctx context.Context, subjectID string) (models.Subject, error) {
	subj, err := s.load(ctx, subjectID)
	if err != nil {
		return models.Subject{}, err
	}
	return *subj, nil
}

// CheckCredentials tries the master code first, then the guest code.
func (s *SecurityService) CheckCredentials(ctx context.Context, subjectID, code string) (models.Role, error) {
	subj, err := s.load(ctx, subjectID)
	if err != nil {
		return "", err
	}

	var role models.Role
	switch {
	case verifySecret(subj.MasterHash, code) == nil:
		role = models.RoleMaster
	case verifySecret(subj.GuestHash, code) == nil:
		role = models.RoleGuest
	default:
		s.audit(ctx, subjectID, models.EventLoginFailed, "credential check failed", nil)
		return "", ErrRejected
	}

	s.audit(ctx, subjectID, models.EventLogin, "credential check passed", map[string]any{"role": role})
	return role, nil
}

func (s *SecurityService) PowerOn(ctx context.Context, subjectID string) error {
	subj, err := s.load(ctx, subjectID)
	if err != nil {
		return err
	}
	if err := s.subjects.UpdateState(ctx, subjectID, true, subj.Armed); err != nil {
		return mapNotFound(err)
	}
	s.audit(ctx, subjectID, models.EventPowerOn, "system powered on", nil)
	return nil
}

// PowerOff also disarms the subject.
func (s *SecurityService) PowerOff(ctx context.Context, subjectID string) error {
	if _, err := s.load(ctx, subjectID); err != nil {
		return err
	}
	if err := s.subjects.UpdateState(ctx, subjectID, false, false); err != nil {
		return mapNotFound(err)
	}
	s.audit(ctx, subjectID, models.EventPowerOff, "system powered off", nil)
	return nil
}

func (s *SecurityService) Arm(ctx context.Context, subjectID string) error {
	return s.setArmed(ctx, subjectID, true)
}

func (s *SecurityService) Disarm(ctx context.Context, subjectID string) error {
	return s.setArmed(ctx, subjectID, false)
}

func (s *SecurityService) setArmed(ctx context.Context, subjectID string, armed bool) error {
	subj, err := s.load(ctx, subjectID)
	if err != nil {
		return err
	}
	if !subj.Powered {
		return ErrNotPowered
	}
	if err := s.subjects.UpdateState(ctx, subjectID, true, armed); err != nil {
		return mapNotFound(err)
	}
	if armed {
		s.audit(ctx, subjectID, models.EventArm, "system armed", nil)
	} else {
		s.audit(ctx, subjectID, models.EventDisarm, "system disarmed", nil)
	}
	return nil
}

// ChangePassword replaces the master code.
func (s *SecurityService) ChangePassword(ctx context.Context, subjectID, newPassword string) error {
	if !validCode(newPassword) {
		return ErrInvalidCode
	}
	subj, err := s.load(ctx, subjectID)
	if err != nil {
		return err
	}
	if verifySecret(subj.GuestHash, newPassword) == nil {
		return fmt.Errorf("%w: master code must differ from guest code", ErrInvalidCode)
	}
	hash, err := hashSecret(newPassword)
	if err != nil {
		return err
	}
	if err := s.subjects.SetMasterHash(ctx, subjectID, hash); err != nil {
		return mapNotFound(err)
	}
	s.audit(ctx, subjectID, models.EventPasswordChange, "master code changed", nil)
	return nil
}

func (s *SecurityService) Panic(ctx context.Context, subjectID string) error {
	if _, err := s.load(ctx, subjectID); err != nil {
		return err
	}
	s.log.Warnw("panic raised", "subject_id", subjectID)
	s.audit(ctx, subjectID, models.EventPanic, "panic raised from panel", nil)
	return nil
}

func (s *SecurityService) load(ctx context.Context, subjectID string) (*models.Subject, error) {
	subj, err := s.subjects.Get(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if subj == nil {
		return nil, ErrSubjectNotFound
	}
	return subj, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrSubjectNotFound
	}
	return err
}

// audit failures are logged only; the state change already happened.
func (s *SecurityService) audit(ctx context.Context, subjectID, typ, desc string, meta map[string]any) {
	ev := models.SecurityEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  s.now().UTC(),
		SubjectID:   subjectID,
		Type:        typ,
		Description: desc,
	}
	if meta != nil {
		ev.Metadata = meta
	}
	if err := s.events.Append(ctx, ev); err != nil {
		s.log.Errorw("audit append failed", "subject_id", subjectID, "type", typ, "error", err)
	}
}
