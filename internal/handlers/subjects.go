package handlers

import (
	"context"
	"errors"
	"net/http"

	"control_panel/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK              = "ok"
	statusPoweredOn       = "powered_on"
	statusPoweredOff      = "powered_off"
	statusArmed           = "armed"
	statusDisarmed        = "disarmed"
	statusPanic           = "panic_raised"
	statusPasswordChanged = "password_changed"

	errInvalidBodyPref = "invalid body: "
	errSecurityFailed  = "security service failure"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// securityStatus maps domain errors onto status codes. 403 and 409 mean an
// authoritative refusal; a panel treats 5xx as the service being unavailable.
func securityStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrRejected):
		return http.StatusForbidden
	case errors.Is(err, service.ErrSubjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrSubjectExists), errors.Is(err, service.ErrNotPowered):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidCode), errors.Is(err, service.ErrInvalidSubject):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) respondSecurityError(c *gin.Context, logKey string, err error) {
	code := securityStatus(err)
	if code == http.StatusInternalServerError {
		h.logAndJSONError(c, code, errSecurityFailed, logKey, err, "subject_id", c.Param("id"))
		return
	}
	if h.log != nil {
		h.log.Infow(logKey, "subject_id", c.Param("id"), "err", err)
	}
	c.JSON(code, gin.H{"error": err.Error()})
}

// ProvisionRequest is the payload for creating a subject.
type ProvisionRequest struct {
	ID         string `json:"id" binding:"required" example:"house-1"`
	MasterCode string `json:"master_code" binding:"required" example:"1234"`
	GuestCode  string `json:"guest_code" binding:"required" example:"9999"`
}

// CodeRequest carries a keypad code.
type CodeRequest struct {
	Code string `json:"code" binding:"required" example:"1234"`
}

// PasswordRequest carries the new master code.
type PasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required" example:"4321"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Provision subject
// @Tags         subjects
// @Accept       json
// @Produce      json
// @Param        body  body      ProvisionRequest  true  "Subject and its codes"
// @Success      201   {object}  models.Subject
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/v1/subjects [post]
// @Security     BearerAuth
func (h *Handler) provisionSubject(c *gin.Context) {
	var req ProvisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	subj, err := h.services.Security.Provision(c.Request.Context(), service.ProvisionParams{
		SubjectID:  req.ID,
		MasterCode: req.MasterCode,
		GuestCode:  req.GuestCode,
	})
	if err != nil {
		code := securityStatus(err)
		if code == http.StatusInternalServerError {
			h.logAndJSONError(c, code, errSecurityFailed, "subject_provision_failed", err, "subject_id", req.ID)
			return
		}
		c.JSON(code, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, subj)
}

// @Summary      Subject state
// @Tags         subjects
// @Produce      json
// @Param        id   path      string  true  "Subject id"
// @Success      200  {object}  models.Subject
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/subjects/{id} [get]
// @Security     BearerAuth
func (h *Handler) getSubject(c *gin.Context) {
	subj, err := h.services.Security.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondSecurityError(c, "subject_status_failed", err)
		return
	}
	c.JSON(http.StatusOK, subj)
}

// @Summary      Check a keypad code
// @Description  Returns the role the code grants. 403 when the code matches neither credential.
// @Tags         subjects
// @Accept       json
// @Produce      json
// @Param        id    path      string       true  "Subject id"
// @Param        body  body      CodeRequest  true  "Code"
// @Success      200   {object}  map[string]string  "role"
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/v1/subjects/{id}/credentials/check [post]
// @Security     BearerAuth
func (h *Handler) checkCredentials(c *gin.Context) {
	var req CodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	role, err := h.services.Security.CheckCredentials(c.Request.Context(), c.Param("id"), req.Code)
	if err != nil {
		h.respondSecurityError(c, "credentials_check_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"role": role})
}

// @Summary      Power on
// @Tags         subjects
// @Produce      json
// @Param        id   path      string  true  "Subject id"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/subjects/{id}/power/on [post]
// @Security     BearerAuth
func (h *Handler) powerOn(c *gin.Context) {
	h.runCommand(c, "power_on_failed", statusPoweredOn, h.services.Security.PowerOn)
}

// @Summary      Power off
// @Description  Also disarms the subject.
// @Tags         subjects
// @Produce      json
// @Param        id   path      string  true  "Subject id"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/subjects/{id}/power/off [post]
// @Security     BearerAuth
func (h *Handler) powerOff(c *gin.Context) {
	h.runCommand(c, "power_off_failed", statusPoweredOff, h.services.Security.PowerOff)
}

// @Summary      Arm
// @Tags         subjects
// @Produce      json
// @Param        id   path      string  true  "Subject id"
// @Success      200  {object}  map[string]string
// @Failure      409  {object}  map[string]string  "powered off"
// @Router       /api/v1/subjects/{id}/arm [post]
// @Security     BearerAuth
func (h *Handler) arm(c *gin.Context) {
	h.runCommand(c, "arm_failed", statusArmed, h.services.Security.Arm)
}

// @Summary      Disarm
// @Tags         subjects
// @Produce      json
// @Param        id   path      string  true  "Subject id"
// @Success      200  {object}  map[string]string
// @Failure      409  {object}  map[string]string  "powered off"
// @Router       /api/v1/subjects/{id}/disarm [post]
// @Security     BearerAuth
func (h *Handler) disarm(c *gin.Context) {
	h.runCommand(c, "disarm_failed", statusDisarmed, h.services.Security.Disarm)
}

// @Summary      Raise panic
// @Tags         subjects
// @Produce      json
// @Param        id   path      string  true  "Subject id"
// @Success      200  {object}  map[string]string
// @Router       /api/v1/subjects/{id}/panic [post]
// @Security     BearerAuth
func (h *Handler) raisePanic(c *gin.Context) {
	h.runCommand(c, "panic_failed", statusPanic, h.services.Security.Panic)
}

// @Summary      Change master code
// @Tags         subjects
// @Accept       json
// @Produce      json
// @Param        id    path      string           true  "Subject id"
// @Param        body  body      PasswordRequest  true  "New code"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Router       /api/v1/subjects/{id}/password [post]
// @Security     BearerAuth
func (h *Handler) changePassword(c *gin.Context) {
	var req PasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	if err := h.services.Security.ChangePassword(c.Request.Context(), c.Param("id"), req.NewPassword); err != nil {
		h.respondSecurityError(c, "password_change_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusPasswordChanged})
}

func (h *Handler) runCommand(c *gin.Context, logKey, status string, cmd func(ctx context.Context, subjectID string) error) {
	if err := cmd(c.Request.Context(), c.Param("id")); err != nil {
		h.respondSecurityError(c, logKey, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}
