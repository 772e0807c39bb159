package handlers

import (
	"errors"
	"net/http"

	"control_panel/internal/keypad"
	"control_panel/internal/panel"
	"control_panel/internal/service"

	"github.com/gin-gonic/gin"
)

const errPanelFailed = "panel operation failed"

// KeysRequest presses one key or a sequence. Keys are "0".."9", "cancel" or "panic".
type KeysRequest struct {
	Key  string   `json:"key,omitempty" example:"5"`
	Keys []string `json:"keys,omitempty"`
}

func (r KeysRequest) parse() ([]panel.Key, error) {
	raw := r.Keys
	if r.Key != "" {
		raw = append([]string{r.Key}, raw...)
	}
	if len(raw) == 0 {
		return nil, errors.New("key or keys is required")
	}
	keys := make([]panel.Key, 0, len(raw))
	for _, s := range raw {
		k, err := keypad.ParseKey(s)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}

func (h *Handler) respondPanelError(c *gin.Context, logKey string, err error) {
	switch {
	case errors.Is(err, service.ErrPanelNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotLocked):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logAndJSONError(c, http.StatusInternalServerError, errPanelFailed, logKey, err, "panel_id", c.Param("id"))
	}
}

// @Summary      List panels
// @Tags         panels
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, panels"
// @Router       /api/v1/panels [get]
func (h *Handler) listPanels(c *gin.Context) {
	panels := h.services.Panels.ListPanels(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"count":  len(panels),
		"panels": panels,
	})
}

// @Summary      Panel state
// @Tags         panels
// @Produce      json
// @Param        id   path      string  true  "Panel id"
// @Success      200  {object}  models.PanelSnapshot
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/panels/{id} [get]
func (h *Handler) getPanel(c *gin.Context) {
	snap, err := h.services.Panels.Snapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondPanelError(c, "panel_snapshot_failed", err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// @Summary      Press keys
// @Description  Keys are applied in order. A full code is submitted automatically.
// @Tags         panels
// @Accept       json
// @Produce      json
// @Param        id    path      string       true  "Panel id"
// @Param        body  body      KeysRequest  true  "Keys"
// @Success      200   {object}  models.PanelSnapshot
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/v1/panels/{id}/keys [post]
func (h *Handler) pressKeys(c *gin.Context) {
	var req KeysRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	keys, err := req.parse()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	id := c.Param("id")
	snap, err := h.services.Panels.Snapshot(ctx, id)
	if err != nil {
		h.respondPanelError(c, "panel_press_failed", err)
		return
	}
	for _, k := range keys {
		if snap, err = h.services.Panels.Press(ctx, id, k); err != nil {
			h.respondPanelError(c, "panel_press_failed", err)
			return
		}
	}
	c.JSON(http.StatusOK, snap)
}

// @Summary      Submit pending code
// @Tags         panels
// @Produce      json
// @Param        id   path      string  true  "Panel id"
// @Success      200  {object}  models.PanelSnapshot
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/panels/{id}/submit [post]
func (h *Handler) submitCode(c *gin.Context) {
	snap, err := h.services.Panels.Submit(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondPanelError(c, "panel_submit_failed", err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// @Summary      Unlock panel
// @Description  Administrative release of a locked panel.
// @Tags         panels
// @Produce      json
// @Param        id   path      string  true  "Panel id"
// @Success      200  {object}  models.PanelSnapshot
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string  "not locked"
// @Router       /api/v1/panels/{id}/unlock [post]
// @Security     BearerAuth
func (h *Handler) unlockPanel(c *gin.Context) {
	snap, err := h.services.Panels.Unlock(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondPanelError(c, "panel_unlock_failed", err)
		return
	}
	if h.log != nil {
		userID, _ := c.Get(ctxUserID)
		h.log.Infow("panel_unlocked_via_api", "panel_id", c.Param("id"), "user_id", userID)
	}
	c.JSON(http.StatusOK, snap)
}
