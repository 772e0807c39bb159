package feedback

import (
	"control_panel/internal/logger"
	"control_panel/internal/models"
)

// LogPublisher writes every event to the structured log.
type LogPublisher struct {
	log *logger.Logger
}

func NewLogPublisher(log *logger.Logger) *LogPublisher {
	if log == nil {
		log = logger.Nop()
	}
	return &LogPublisher{log: log.Named("display")}
}

func (p *LogPublisher) Publish(ev models.FeedbackEvent) {
	kv := []interface{}{"panel_id", ev.PanelID, "kind", ev.Kind}
	switch {
	case ev.Armed != nil:
		kv = append(kv, "armed", *ev.Armed)
	case ev.Powered != nil:
		kv = append(kv, "powered", *ev.Powered)
	case ev.Message != "":
		kv = append(kv, "message", ev.Message)
	case ev.State != nil:
		kv = append(kv, "state", ev.State.State, "fail_count", ev.State.FailCount)
		p.log.Debugw("panel_feedback", kv...)
		return
	}
	p.log.Infow("panel_feedback", kv...)
}
