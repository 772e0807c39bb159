// Package feedback fans control panel feedback out to live subscribers
// (websocket clients) and external publishers such as Redis.
package feedback

import (
	"sync"
	"time"

	"control_panel/internal/logger"
	"control_panel/internal/models"
	"control_panel/internal/panel"

	"github.com/google/uuid"
)

// subscriberBuffer bounds how far a slow subscriber may fall behind before
// events to it are dropped.
const subscriberBuffer = 32

// forwardBuffer bounds the events queued for publishers.
const forwardBuffer = 256

// Publisher forwards events outside the process.
type Publisher interface {
	Publish(ev models.FeedbackEvent)
}

type subscriber struct {
	ch chan models.FeedbackEvent
}

// Hub is safe for concurrent use. Publishers run on a single goroutine fed by
// a bounded queue, so Publish never waits on them; Close drains the queue.
type Hub struct {
	mu      sync.RWMutex
	subs    map[string]map[*subscriber]struct{}
	forward []Publisher
	queue   chan models.FeedbackEvent
	done    chan struct{}
	closed  bool
	log     *logger.Logger
	now     func() time.Time
}

func NewHub(log *logger.Logger, forward ...Publisher) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	h := &Hub{
		subs:    make(map[string]map[*subscriber]struct{}),
		forward: forward,
		queue:   make(chan models.FeedbackEvent, forwardBuffer),
		done:    make(chan struct{}),
		log:     log.Named("feedback"),
		now:     time.Now,
	}
	go h.forwardLoop()
	return h
}

func (h *Hub) forwardLoop() {
	defer close(h.done)
	for ev := range h.queue {
		for _, p := range h.forward {
			p.Publish(ev)
		}
	}
}

// Close stops accepting events and waits until publishers have seen every
// queued one. Later Publish calls still reach subscribers.
func (h *Hub) Close() {
	h.mu.Lock()
	if !h.closed {
		h.closed = true
		close(h.queue)
	}
	h.mu.Unlock()
	<-h.done
}

// Publish stamps ev and delivers it. Subscribers that are full miss the event.
func (h *Hub) Publish(ev models.FeedbackEvent) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.At.IsZero() {
		ev.At = h.now().UTC()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs[ev.PanelID] {
		select {
		case s.ch <- ev:
		default:
			h.log.Warnw("feedback_dropped", "panel_id", ev.PanelID, "kind", ev.Kind)
		}
	}

	if h.closed || len(h.forward) == 0 {
		return
	}
	select {
	case h.queue <- ev:
	default:
		h.log.Warnw("feedback_forward_dropped", "panel_id", ev.PanelID, "kind", ev.Kind)
	}
}

// Subscribe returns a channel of one panel's events and a cancel func that
// closes it. Cancel is idempotent.
func (h *Hub) Subscribe(panelID string) (<-chan models.FeedbackEvent, func()) {
	s := &subscriber{ch: make(chan models.FeedbackEvent, subscriberBuffer)}

	h.mu.Lock()
	if h.subs[panelID] == nil {
		h.subs[panelID] = make(map[*subscriber]struct{})
	}
	h.subs[panelID][s] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return s.ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[panelID], s)
			if len(h.subs[panelID]) == 0 {
				delete(h.subs, panelID)
			}
			h.mu.Unlock()
			close(s.ch)
		})
	}
}

// Subscribers reports the live subscriber count of a panel.
func (h *Hub) Subscribers(panelID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[panelID])
}

// PublishState publishes a state snapshot event.
func (h *Hub) PublishState(s models.PanelSnapshot) {
	snap := s
	h.Publish(models.FeedbackEvent{PanelID: s.PanelID, Kind: models.FeedbackState, State: &snap})
}

// Sink adapts the hub to one panel's display surface.
func (h *Hub) Sink(panelID string) panel.FeedbackSink {
	return panelSink{hub: h, panelID: panelID}
}

type panelSink struct {
	hub     *Hub
	panelID string
}

func (s panelSink) NotifyArmed(armed bool) {
	s.hub.Publish(models.FeedbackEvent{PanelID: s.panelID, Kind: models.FeedbackArmed, Armed: &armed})
}

func (s panelSink) NotifyPower(on bool) {
	s.hub.Publish(models.FeedbackEvent{PanelID: s.panelID, Kind: models.FeedbackPower, Powered: &on})
}

func (s panelSink) NotifyMessage(text string) {
	s.hub.Publish(models.FeedbackEvent{PanelID: s.panelID, Kind: models.FeedbackMessage, Message: text})
}
