package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"control_panel/internal/logger"
	"control_panel/internal/models"
	"control_panel/internal/panel"
)

var (
	ErrPanelNotFound  = errors.New("panel not found")
	ErrNotLocked      = errors.New("panel is not locked")
	ErrDuplicatePanel = errors.New("duplicate panel id")
)

// FeedbackHub fans panel feedback out to subscribers.
type FeedbackHub interface {
	Sink(panelID string) panel.FeedbackSink
	PublishState(s models.PanelSnapshot)
	Subscribe(panelID string) (<-chan models.FeedbackEvent, func())
}

type hostedPanel struct {
	mu   sync.Mutex
	id   string
	ctrl *panel.Controller
}

// PanelService hosts a fixed set of controllers. Calls on one panel are
// serialized; different panels proceed in parallel.
type PanelService struct {
	panels map[string]*hostedPanel
	order  []string
	hub    FeedbackHub
	log    *logger.Logger
}

func NewPanelService(specs []PanelSpec, codeLength int, security panel.SecurityService, hub FeedbackHub, log *logger.Logger) (*PanelService, error) {
	if log == nil {
		log = logger.Nop()
	}
	s := &PanelService{
		panels: make(map[string]*hostedPanel, len(specs)),
		hub:    hub,
		log:    log.Named("panels"),
	}
	for _, sp := range specs {
		if _, ok := s.panels[sp.ID]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicatePanel, sp.ID)
		}
		var sink panel.FeedbackSink
		if hub != nil {
			sink = hub.Sink(sp.ID)
		}
		ctrl := panel.New(panel.Config{SubjectID: sp.SubjectID, CodeLength: codeLength},
			security, sink, s.log.With("panel_id", sp.ID))
		s.panels[sp.ID] = &hostedPanel{id: sp.ID, ctrl: ctrl}
		s.order = append(s.order, sp.ID)
	}
	return s, nil
}

func (s *PanelService) Press(ctx context.Context, panelID string, key panel.Key) (models.PanelSnapshot, error) {
	return s.do(panelID, func(c *panel.Controller) error {
		c.Press(ctx, key)
		return nil
	})
}

func (s *PanelService) Submit(ctx context.Context, panelID string) (models.PanelSnapshot, error) {
	return s.do(panelID, func(c *panel.Controller) error {
		c.Submit(ctx)
		return nil
	})
}

// Unlock is the administrative release of a locked panel.
func (s *PanelService) Unlock(ctx context.Context, panelID string) (models.PanelSnapshot, error) {
	return s.do(panelID, func(c *panel.Controller) error {
		if !c.Unlock() {
			return ErrNotLocked
		}
		s.log.Infow("panel_unlocked", "panel_id", panelID)
		return nil
	})
}

func (s *PanelService) Snapshot(ctx context.Context, panelID string) (models.PanelSnapshot, error) {
	p, ok := s.panels[panelID]
	if !ok {
		return models.PanelSnapshot{}, ErrPanelNotFound
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot(), nil
}

// ListPanels returns snapshots in configuration order.
func (s *PanelService) ListPanels(ctx context.Context) []models.PanelSnapshot {
	out := make([]models.PanelSnapshot, 0, len(s.order))
	for _, id := range s.order {
		p := s.panels[id]
		p.mu.Lock()
		out = append(out, p.snapshot())
		p.mu.Unlock()
	}
	return out
}

// Subscribe streams feedback of one panel until cancel is called.
func (s *PanelService) Subscribe(panelID string) (<-chan models.FeedbackEvent, func(), error) {
	if _, ok := s.panels[panelID]; !ok {
		return nil, nil, ErrPanelNotFound
	}
	if s.hub == nil {
		return nil, nil, errors.New("feedback hub not configured")
	}
	ch, cancel := s.hub.Subscribe(panelID)
	return ch, cancel, nil
}

// do runs fn under the panel lock and publishes the resulting state when
// fn succeeds.
func (s *PanelService) do(panelID string, fn func(c *panel.Controller) error) (models.PanelSnapshot, error) {
	p, ok := s.panels[panelID]
	if !ok {
		return models.PanelSnapshot{}, ErrPanelNotFound
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := fn(p.ctrl); err != nil {
		return p.snapshot(), err
	}
	snap := p.snapshot()
	if s.hub != nil {
		s.hub.PublishState(snap)
	}
	return snap, nil
}

func (p *hostedPanel) snapshot() models.PanelSnapshot {
	snap := p.ctrl.Snapshot()
	snap.PanelID = p.id
	return snap
}
