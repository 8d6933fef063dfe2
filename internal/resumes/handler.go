package resumes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches résumé routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resumes", h.upsert)
	rg.GET("/resumes/:id", h.get)
	rg.DELETE("/resumes/:id", h.delete)
	rg.POST("/resumes/:id/duplicate", h.duplicate)
	rg.GET("/users/:id/resumes", h.listByOwner)
}

func (h *Handler) upsert(c *gin.Context) {
	var req upsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Validation error", respond.Issues(err))
		return
	}
	if !middleware.AuthorizeOwner(c, req.UserID) {
		return
	}
	if req.ResumeID != "" {
		c.Set(middleware.ResumeIDKey, req.ResumeID)
	}

	resume, _, err := h.Svc.Upsert(c.Request.Context(), req.toInput())
	if err != nil {
		h.writeError(c, err, "Resume not found (it was deleted)")
		return
	}
	c.Set(middleware.ResumeIDKey, resume.ID)
	respond.JSON(c, http.StatusOK, resume)
}

func (h *Handler) get(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.ResumeIDKey, id)

	resume, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err, "Resume not found")
		return
	}
	if !middleware.AuthorizeOwner(c, resume.UserID) {
		return
	}
	respond.JSON(c, http.StatusOK, resume)
}

func (h *Handler) delete(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.ResumeIDKey, id)

	existing, err := h.Svc.Get(c.Request.Context(), id)
	switch {
	case errors.Is(err, ErrNotFound):
		respond.JSON(c, http.StatusOK, deleteResponse{Message: "Resume already deleted"})
		return
	case err != nil:
		h.writeError(c, err, "")
		return
	}
	if !middleware.AuthorizeOwner(c, existing.UserID) {
		return
	}

	deleted, err := h.Svc.Delete(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err, "")
		return
	}
	msg := "Resume deleted successfully"
	if !deleted {
		msg = "Resume already deleted"
	}
	respond.JSON(c, http.StatusOK, deleteResponse{Message: msg, Deleted: deleted})
}

func (h *Handler) duplicate(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.ResumeIDKey, id)

	source, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err, "Original resume not found")
		return
	}
	if !middleware.AuthorizeOwner(c, source.UserID) {
		return
	}

	copied, err := h.Svc.Duplicate(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err, "Original resume not found")
		return
	}
	respond.JSON(c, http.StatusCreated, copied)
}

func (h *Handler) listByOwner(c *gin.Context) {
	userID := c.Param("id")
	if !middleware.AuthorizeOwner(c, userID) {
		return
	}
	list, err := h.Svc.ListByOwner(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err, "")
		return
	}
	respond.JSON(c, http.StatusOK, list)
}

func (h *Handler) writeError(c *gin.Context, err error, notFoundMsg string) {
	var fieldErr *FieldError
	switch {
	case errors.As(err, &fieldErr):
		respond.Error(c, http.StatusBadRequest, "validation_error", "Validation error", []respond.Issue{{Field: fieldErr.Field, Issue: fieldErr.Issue}})
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", notFoundMsg, nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Internal server error", nil)
	}
}
