package analyses

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-ats/internal/resumes"
	"resume-ats/internal/shared/server/middleware"
	"resume-ats/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resumes/:id/analyze", h.analyze)
	rg.GET("/resumes/:id/analysis", h.get)
}

type analyzeRequest struct {
	Text     string `json:"text"`
	JobField string `json:"jobField"`
}

func (h *Handler) analyze(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	resumeID := c.Param("id")

	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	resume, err := h.Svc.Start(ctx, userID, resumeID, req.Text, strings.TrimSpace(req.JobField))
	if err != nil {
		switch {
		case errors.Is(err, resumes.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
		case errors.Is(err, ErrStillRunning):
			respond.Error(c, http.StatusConflict, "conflict", "analysis already running", nil)
		case errors.Is(err, ErrAlreadyExists):
			respond.Error(c, http.StatusConflict, "conflict", "resume already analyzed", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to start analysis", gin.H{
				"userMessage": "We could not analyze your resume. Please try again.",
			})
		}
		return
	}

	c.Set("resumeId", resume.ID)
	c.Set("statusTransition", "uploading->processing")
	respond.JSON(c, http.StatusAccepted, gin.H{
		"resumeId": resume.ID,
		"status":   resume.Status,
	})
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	resumeID := c.Param("id")

	analysis, err := h.Svc.Get(c.Request.Context(), userID, resumeID)
	if err != nil {
		var failed *FailedError
		switch {
		case errors.Is(err, resumes.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
		case errors.Is(err, ErrStillRunning):
			respond.Error(c, http.StatusConflict, "processing", "analysis not finished yet", nil)
		case errors.As(err, &failed):
			respond.Error(c, http.StatusConflict, "analysis_failed", "analysis failed",
				map[string]any{"failureCode": failed.FailureCode})
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch analysis", nil)
		}
		return
	}

	c.Set("resumeId", resumeID)
	c.Set("analysisId", analysis.ID)
	respond.JSON(c, http.StatusOK, toResponse(analysis))
}
