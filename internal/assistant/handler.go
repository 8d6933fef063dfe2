package assistant

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/respond"
)

// Handler exposes the assistant under /ai.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the AI routes to rg, which is expected to be the
// rate-limited /ai group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/generate", h.generate)
	rg.POST("/analyze-job", h.analyzeJob)
	rg.POST("/cover-letter", h.coverLetter)
}

func (h *Handler) generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Validation error", respond.Issues(err))
		return
	}
	text, err := h.Svc.Generate(c.Request.Context(), req.CurrentText, req.Style, req.Section)
	if err != nil {
		h.writeError(c, err, "Failed to generate content")
		return
	}
	respond.JSON(c, http.StatusOK, generateResponse{Text: text})
}

func (h *Handler) analyzeJob(c *gin.Context) {
	var req jobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Validation error", respond.Issues(err))
		return
	}
	analysis, err := h.Svc.AnalyzeJob(c.Request.Context(), req.ResumeData, req.JobDescription)
	if err != nil {
		h.writeError(c, err, "Failed to analyze job")
		return
	}
	respond.JSON(c, http.StatusOK, analysis)
}

func (h *Handler) coverLetter(c *gin.Context) {
	var req jobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Validation error", respond.Issues(err))
		return
	}
	letter, err := h.Svc.CoverLetter(c.Request.Context(), req.ResumeData, req.JobDescription)
	if err != nil {
		h.writeError(c, err, "Failed to generate cover letter")
		return
	}
	respond.JSON(c, http.StatusOK, coverLetterResponse{Letter: letter})
}

func (h *Handler) writeError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", "Validation error", nil)
	case errors.Is(err, ErrUnavailable):
		respond.Error(c, http.StatusServiceUnavailable, "ai_unavailable", "The AI assistant is busy right now, please try again in a moment", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "ai_error", msg, nil)
	}
}
