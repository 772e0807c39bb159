package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"control_panel/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

var errBadTime = errors.New("unsupported time format")

// @Summary      List security events
// @Description  Audit trail filtered by time range, event type and subject. Times accept RFC3339, 'YYYY-MM-DD HH:MM:SS' or 'YYYY-MM-DD'; a date-only 'to' covers the whole day.
// @Tags         logs
// @Produce      json
// @Param        from     query  string  false  "Start of range"  example(2025-08-01)
// @Param        to       query  string  false  "End of range"    example(2025-08-31)
// @Param        type     query  string  false  "Event type"  Enums(LOGIN,LOGIN_FAILED,POWER_ON,POWER_OFF,ARM,DISARM,PASSWORD_CHANGE,PANIC,PROVISION)
// @Param        subject  query  string  false  "Subject id"
// @Success      200   {object}  map[string]interface{}  "count, events"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/logs [get]
// @Security     BearerAuth
func (h *Handler) getLogs(c *gin.Context) {
	filter, msg := logFilterFromQuery(c)
	if msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	events, err := h.services.EventLog.List(c.Request.Context(), filter)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("logs_list_failed",
				"err", err,
				"from", filter.From,
				"to", filter.To,
				"type", filter.Type,
				"subject_id", filter.SubjectID,
			)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load logs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(events),
		"events": events,
	})
}

// logFilterFromQuery returns the filter, or a client-facing message when the
// query is malformed.
func logFilterFromQuery(c *gin.Context) (service.LogFilter, string) {
	f := service.LogFilter{
		Type:      strings.ToUpper(strings.TrimSpace(c.Query("type"))),
		SubjectID: strings.TrimSpace(c.Query("subject")),
	}

	if raw := c.Query("from"); raw != "" {
		t, err := parseQueryTime(raw)
		if err != nil {
			return f, "invalid 'from' time; use RFC3339 or YYYY-MM-DD"
		}
		f.From = t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := parseQueryTime(raw)
		if err != nil {
			return f, "invalid 'to' time; use RFC3339 or YYYY-MM-DD"
		}
		if !strings.ContainsAny(raw, "T ") {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		f.To = t
	}

	if !f.From.IsZero() && !f.To.IsZero() && f.From.After(f.To) {
		return f, "'from' must be <= 'to'"
	}
	return f, ""
}

// parseQueryTime accepts RFC3339, 'YYYY-MM-DD HH:MM:SS' and 'YYYY-MM-DD', in UTC.
func parseQueryTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, layoutDateTime, layoutDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errBadTime
}
