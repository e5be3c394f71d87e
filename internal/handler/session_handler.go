package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rmedina/placepix/internal/service"
)

// SessionHandler exposes the assignment workflow over HTTP. Each endpoint
// returns the session snapshot; operation failures that leave the session
// usable (a failed gather, a failed download) still include the snapshot so
// the operator's view stays current.
type SessionHandler struct {
	workflow *service.Workflow
	logger   *zap.Logger
}

// NewSessionHandler creates a SessionHandler over the workflow service.
func NewSessionHandler(workflow *service.Workflow, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{workflow: workflow, logger: logger}
}

type startSessionRequest struct {
	Provider string `json:"provider"`
	Filter   string `json:"filter"`
}

type providerRequest struct {
	Provider string `json:"provider" binding:"required"`
}

type filterRequest struct {
	Letter string `json:"letter"`
}

type pickRequest struct {
	ImageID string `json:"imageId" binding:"required"`
}

// Start creates a session and begins browsing.
// Route: POST /api/v1/sessions
func (h *SessionHandler) Start(c *gin.Context) {
	var req startSessionRequest
	// Body is optional; defaults apply when absent.
	_ = c.ShouldBindJSON(&req)

	view, err := h.workflow.StartSession(c.Request.Context(), req.Provider, req.Filter)
	h.respond(c, http.StatusCreated, view, err)
}

// Get returns the current session snapshot.
// Route: GET /api/v1/sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	view, err := h.workflow.Get(c.Param("id"))
	h.respond(c, http.StatusOK, view, err)
}

// SetProvider switches the photo service for the current record.
// Route: POST /api/v1/sessions/:id/provider
func (h *SessionHandler) SetProvider(c *gin.Context) {
	var req providerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "provider is required"})
		return
	}
	view, err := h.workflow.SetProvider(c.Request.Context(), c.Param("id"), req.Provider)
	h.respond(c, http.StatusOK, view, err)
}

// SetFilter restricts the working list by first letter of country.
// Route: POST /api/v1/sessions/:id/filter
func (h *SessionHandler) SetFilter(c *gin.Context) {
	var req filterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filter body"})
		return
	}
	view, err := h.workflow.SetFilter(c.Request.Context(), c.Param("id"), req.Letter)
	h.respond(c, http.StatusOK, view, err)
}

// More fetches the next page of candidates, keeping the seen set.
// Route: POST /api/v1/sessions/:id/more
func (h *SessionHandler) More(c *gin.Context) {
	view, err := h.workflow.More(c.Request.Context(), c.Param("id"))
	h.respond(c, http.StatusOK, view, err)
}

// Pick assigns a candidate to the current record.
// Route: POST /api/v1/sessions/:id/pick
func (h *SessionHandler) Pick(c *gin.Context) {
	var req pickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "imageId is required"})
		return
	}
	view, err := h.workflow.Pick(c.Request.Context(), c.Param("id"), req.ImageID)
	h.respond(c, http.StatusOK, view, err)
}

// Skip advances past the current record without persisting.
// Route: POST /api/v1/sessions/:id/skip
func (h *SessionHandler) Skip(c *gin.Context) {
	view, err := h.workflow.Skip(c.Request.Context(), c.Param("id"))
	h.respond(c, http.StatusOK, view, err)
}

// respond renders a workflow result. When the session survived the error the
// snapshot rides along so clients can re-render without a second request.
func (h *SessionHandler) respond(c *gin.Context, okStatus int, view *service.SessionView, err error) {
	if err != nil {
		h.logger.Warn("session operation failed", zap.Error(err))
		body := gin.H{"error": err.Error()}
		if view != nil {
			body["session"] = view
		}
		c.JSON(statusForError(err), body)
		return
	}
	c.JSON(okStatus, gin.H{"session": view})
}
