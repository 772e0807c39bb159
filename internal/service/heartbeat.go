package service

import (
	"context"
	"time"
)

// RunHeartbeat republishes every panel's state at the given interval until ctx
// is canceled, so late subscribers and external displays converge.
func (s *PanelService) RunHeartbeat(ctx context.Context, interval time.Duration) {
	if interval <= 0 || s.hub == nil {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			for _, snap := range s.ListPanels(ctx) {
				s.hub.PublishState(snap)
			}
		}
	}
}
