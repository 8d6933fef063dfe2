package users

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/resumes"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
)

// ResumeLister lists an owner's résumé summaries.
type ResumeLister interface {
	ListByOwner(ctx context.Context, userID string) ([]resumes.Summary, error)
}

type Handler struct {
	Svc     *Service
	Resumes ResumeLister
}

func NewHandler(svc *Service, lister ResumeLister) *Handler {
	return &Handler{Svc: svc, Resumes: lister}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/users", h.create)
	rg.GET("/users/:id", h.get)
	rg.PUT("/users/:id/profile", h.updateProfile)
	rg.GET("/users/:id/profile/import", h.importProfile)
}

func (h *Handler) create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Validation error", respond.Issues(err))
		return
	}
	if !middleware.AuthorizeOwner(c, req.ID) {
		return
	}

	user, created, err := h.Svc.Create(c.Request.Context(), User{ID: req.ID, Email: req.Email, Name: req.Name})
	if err != nil {
		writeError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respond.JSON(c, status, user)
}

func (h *Handler) get(c *gin.Context) {
	userID := c.Param("id")
	if !middleware.AuthorizeOwner(c, userID) {
		return
	}
	ctx := c.Request.Context()

	user, err := h.Svc.GetByID(ctx, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	profile, err := h.Svc.Profile(ctx, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	summaries := []resumes.Summary{}
	if h.Resumes != nil {
		if summaries, err = h.Resumes.ListByOwner(ctx, userID); err != nil {
			writeError(c, err)
			return
		}
	}

	respond.JSON(c, http.StatusOK, Detail{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
		Profile:   profile,
		Resumes:   summaries,
	})
}

func (h *Handler) updateProfile(c *gin.Context) {
	userID := c.Param("id")
	if !middleware.AuthorizeOwner(c, userID) {
		return
	}
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Validation error", respond.Issues(err))
		return
	}

	profile, err := h.Svc.UpdateProfile(c.Request.Context(), userID, req.toUpdate())
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, profile)
}

func (h *Handler) importProfile(c *gin.Context) {
	userID := c.Param("id")
	if !middleware.AuthorizeOwner(c, userID) {
		return
	}
	snap, err := h.Svc.ImportSnapshot(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, snap)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "User not found", nil)
	case errors.Is(err, ErrEmailTaken):
		respond.Error(c, http.StatusConflict, "conflict", "Email already registered", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Internal server error", nil)
	}
}
