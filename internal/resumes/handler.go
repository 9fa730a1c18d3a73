package resumes

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-ats/internal/shared/cache"
	"resume-ats/internal/shared/metrics"
	"resume-ats/internal/shared/server/middleware"
	"resume-ats/internal/shared/server/respond"
)

const maxUploadSize = 10 << 20 // 10MB

// Handler wires HTTP handlers to the service. PollLimiter throttles the
// status endpoint, which clients hit once per second while an analysis runs.
type Handler struct {
	Svc         *Service
	PollLimiter cache.Limiter
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches resume routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resumes", h.create)
	rg.PUT("/resumes/:id/file", h.attachFile)
	rg.GET("/resumes/:id/file", h.downloadFile)
	rg.PUT("/resumes/:id/status", h.updateStatus)
	rg.GET("/resumes/:id", h.get)
	rg.GET("/resumes", h.list)
}

type createRequest struct {
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	JobField string `json:"jobField"`
}

func (h *Handler) create(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	req.FileName = strings.TrimSpace(req.FileName)
	req.MimeType = strings.TrimSpace(req.MimeType)
	if req.FileName == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "fileName is required", nil)
		return
	}
	if req.MimeType == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "mimeType is required", nil)
		return
	}

	resume, err := h.Svc.Create(c.Request.Context(), userID, req.FileName, req.MimeType, req.JobField)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnsupportedFileType):
			respond.Error(c, http.StatusBadRequest, "unsupported_file_type", "Please upload a PDF, Word document, or text file", nil)
		case errors.Is(err, ErrInvalidJobField):
			respond.Error(c, http.StatusBadRequest, "validation_error", "unknown job field", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create resume", nil)
		}
		return
	}

	c.Set("resumeId", resume.ID)
	respond.JSON(c, http.StatusCreated, toResponse(resume))
}

func (h *Handler) attachFile(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	resumeID := c.Param("id")
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	resume, err := h.Svc.AttachFile(c.Request.Context(), userID, resumeID, file)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
		case errors.Is(err, ErrInvalidTransition):
			respond.Error(c, http.StatusConflict, "conflict", "resume already has a file attached", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to store file", nil)
		}
		return
	}

	c.Set("resumeId", resume.ID)
	respond.JSON(c, http.StatusOK, toResponse(resume))
}

// downloadFile streams the stored file back with its original name and type.
func (h *Handler) downloadFile(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	resumeID := c.Param("id")

	body, resume, err := h.Svc.OpenFile(c.Request.Context(), userID, resumeID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "resume file not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to open file", nil)
		return
	}
	defer body.Close()

	c.Header("Content-Disposition", `attachment; filename="`+resume.FileName+`"`)
	c.DataFromReader(http.StatusOK, resume.SizeBytes, resume.MimeType, body, nil)
}

type updateStatusRequest struct {
	Status      string `json:"status"`
	FailureCode string `json:"failureCode"`
}

// updateStatus only accepts the failed state. It exists so clients can mark a
// record failed when the file transfer breaks after creation.
func (h *Handler) updateStatus(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	resumeID := c.Param("id")

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if req.Status != StatusFailed {
		respond.Error(c, http.StatusBadRequest, "validation_error", "only status failed may be set", nil)
		return
	}

	resume, err := h.Svc.MarkFailed(c.Request.Context(), userID, resumeID, req.FailureCode)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
		case errors.Is(err, ErrInvalidTransition):
			respond.Error(c, http.StatusConflict, "conflict", "resume already completed", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update resume", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, toResponse(resume))
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	resumeID := c.Param("id")

	if h.PollLimiter != nil && !h.PollLimiter.Allow(c.Request.Context(), userID+"|"+resumeID) {
		metrics.IncPollThrottled()
		c.Header("Retry-After", strconv.Itoa(h.PollLimiter.RetryAfterSeconds()))
		respond.Error(c, http.StatusTooManyRequests, "rate_limited", "Polling too fast", nil)
		return
	}

	resume, err := h.Svc.Get(c.Request.Context(), userID, resumeID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch resume", nil)
		}
		return
	}

	c.Set("resumeId", resume.ID)
	respond.JSON(c, http.StatusOK, toResponse(resume))
}

func (h *Handler) list(c *gin.Context) {
	if middleware.IsGuestFromContext(c) {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required for history", nil)
		return
	}
	userID := middleware.UserIDFromContext(c)

	limit := 20
	offset := 0

	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 0 {
		limit = 0
	}
	if limit > 50 {
		limit = 50
	}

	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	list, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list resumes", nil)
		return
	}

	resp := make([]ResumeResponse, 0, len(list))
	for _, resume := range list {
		resp = append(resp, toResponse(resume))
	}
	respond.JSON(c, http.StatusOK, resp)
}
