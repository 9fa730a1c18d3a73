package analyses

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-ats/internal/extract"
	"resume-ats/internal/queue"
	"resume-ats/internal/resumes"
	"resume-ats/internal/scoring"
	"resume-ats/internal/shared/metrics"
	"resume-ats/internal/shared/storage/object"
	"resume-ats/internal/shared/telemetry"
)

const extractedTextSuffix = ".extracted.txt"

// Service contains business logic for analyses.
type Service struct {
	Repo         Repo
	ResumeRepo   resumes.Repo
	Store        object.ObjectStore
	Provider     scoring.Provider
	Queue        queue.Client
	ProviderName string
}

// Start marks the resume processing and kicks off scoring. When a queue
// client is configured the job is handed to the worker fleet; otherwise it
// completes on an in-process goroutine. An optional client-decoded text
// is persisted so the scoring step does not re-extract.
func (s *Service) Start(ctx context.Context, userID, resumeID, text, jobField string) (resumes.Resume, error) {
	if userID == "" || resumeID == "" {
		return resumes.Resume{}, errors.New("userID and resumeID are required")
	}

	resume, err := s.ResumeRepo.GetByID(ctx, userID, resumeID)
	if err != nil {
		return resumes.Resume{}, err
	}

	switch resume.Status {
	case resumes.StatusProcessing:
		return resume, ErrStillRunning
	case resumes.StatusCompleted:
		return resume, ErrAlreadyExists
	case resumes.StatusFailed:
		// Retry path: drop the stale record before re-running.
		if err := s.Repo.DeleteByResumeID(ctx, resumeID); err != nil {
			return resumes.Resume{}, fmt.Errorf("clear previous analysis: %w", err)
		}
	}

	if canonical := scoring.CanonicalJobField(jobField); canonical != "" && canonical != resume.JobField {
		if err := s.ResumeRepo.UpdateJobField(ctx, resumeID, canonical); err != nil {
			return resumes.Resume{}, fmt.Errorf("update job field: %w", err)
		}
		resume.JobField = canonical
	}

	text = strings.TrimSpace(text)
	if text != "" && s.Store != nil && resume.StoragePath != "" {
		if _, err := s.Store.SaveWithKey(ctx, resume.StoragePath+extractedTextSuffix, "text/plain", strings.NewReader(text)); err != nil {
			return resumes.Resume{}, fmt.Errorf("persist extracted text: %w", err)
		}
	}
	if text == "" && resume.StoragePath == "" {
		return resumes.Resume{}, errors.New("no text and no stored file to analyze")
	}

	if err := s.ResumeRepo.UpdateStatus(ctx, resumeID, resumes.StatusProcessing, ""); err != nil {
		return resumes.Resume{}, fmt.Errorf("set processing: %w", err)
	}
	resume.Status = resumes.StatusProcessing
	telemetry.Info("analysis.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"user_id":           userID,
		"resume_id":         resumeID,
		"status":            resumes.StatusProcessing,
		"status_transition": "uploading->processing",
	})

	if s.Queue != nil {
		job := queue.Message{
			ResumeID:   resumeID,
			UserID:     userID,
			JobField:   resume.JobField,
			Text:       text,
			RequestID:  requestIDFromContext(ctx),
			EnqueuedAt: time.Now().UTC().Format(time.RFC3339),
			Version:    1,
		}
		if err := s.Queue.Send(ctx, job); err != nil {
			s.failResume(ctx, userID, resumeID, fmt.Errorf("enqueue analysis: %w", err), nil)
			return resumes.Resume{}, err
		}
		return resume, nil
	}

	go s.completeAsync(backgroundWithRequestID(ctx), userID, resumeID, text, resume.JobField)
	return resume, nil
}

// Get returns the analysis for a resume, distinguishing in-flight and failed
// resumes from a genuinely missing record.
func (s *Service) Get(ctx context.Context, userID, resumeID string) (Analysis, error) {
	resume, err := s.ResumeRepo.GetByID(ctx, userID, resumeID)
	if err != nil {
		return Analysis{}, err
	}
	switch resume.Status {
	case resumes.StatusUploading, resumes.StatusProcessing:
		return Analysis{}, ErrStillRunning
	case resumes.StatusFailed:
		return Analysis{}, &FailedError{FailureCode: resume.FailureCode}
	}
	return s.Repo.GetByResumeID(ctx, resumeID)
}

func (s *Service) completeAsync(ctx context.Context, userID, resumeID, text, jobField string) {
	defer func() {
		if r := recover(); r != nil {
			s.failResume(ctx, userID, resumeID, fmt.Errorf("panic: %v", r), nil)
		}
	}()
	_ = s.Process(ctx, userID, resumeID, text, jobField)
}

// Process runs the scoring pipeline for a resume already marked processing.
// It is called inline by Start and by the queue worker.
func (s *Service) Process(ctx context.Context, userID, resumeID, text, jobField string) error {
	startedAt := time.Now().UTC()
	metrics.IncAnalysisStarted()

	resume, err := s.ResumeRepo.GetByID(ctx, userID, resumeID)
	if err != nil {
		s.failResume(ctx, userID, resumeID, fmt.Errorf("resume lookup: %w", err), &startedAt)
		return err
	}
	if jobField == "" {
		jobField = resume.JobField
	}

	text = strings.TrimSpace(text)
	if text == "" {
		text, err = s.loadOrExtractText(ctx, resume)
		if err != nil {
			s.failResume(ctx, userID, resumeID, err, &startedAt)
			return err
		}
	}

	if s.Provider == nil {
		err := errors.New("missing scoring provider")
		s.failResume(ctx, userID, resumeID, err, &startedAt)
		return err
	}

	result, err := s.Provider.Analyze(ctx, text, jobField)
	if err != nil {
		s.failResume(ctx, userID, resumeID, fmt.Errorf("provider analyze: %w", err), &startedAt)
		return err
	}

	completedAt := time.Now().UTC()
	analysis := Analysis{
		ID:              uuid.NewString(),
		ResumeID:        resumeID,
		Score:           result.Score,
		KeywordsMatched: result.KeywordsMatched,
		KeywordsMissing: result.KeywordsMissing,
		SectionScores:   result.SectionScores,
		Suggestions:     result.Suggestions,
		Strengths:       result.Strengths,
		Provider:        s.ProviderName,
		DurationMs:      completedAt.Sub(startedAt).Milliseconds(),
		CreatedAt:       completedAt,
	}
	if err := s.Repo.Create(ctx, analysis); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			// Lost the race to a concurrent submission; the winner owns the status.
			return nil
		}
		s.failResume(ctx, userID, resumeID, fmt.Errorf("store analysis result: %w", err), &startedAt)
		return err
	}

	if err := s.ResumeRepo.UpdateStatus(ctx, resumeID, resumes.StatusCompleted, ""); err != nil {
		s.failResume(ctx, userID, resumeID, fmt.Errorf("set completed: %w", err), &startedAt)
		return err
	}

	metrics.IncAnalysisCompleted()
	metrics.ObserveAnalysisDurationMs(durationMs(&startedAt, &completedAt))
	telemetry.Info("analysis.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"user_id":           userID,
		"resume_id":         resumeID,
		"analysis_id":       analysis.ID,
		"status":            resumes.StatusCompleted,
		"status_transition": "processing->completed",
		"score":             analysis.Score,
		"duration_ms":       durationMs(&startedAt, &completedAt),
	})
	return nil
}

func (s *Service) loadOrExtractText(ctx context.Context, resume resumes.Resume) (string, error) {
	if s.Store == nil || resume.StoragePath == "" {
		return "", errors.New("no stored file to analyze")
	}

	if body, err := s.Store.Open(ctx, resume.StoragePath+extractedTextSuffix); err == nil {
		defer body.Close()
		data, err := io.ReadAll(body)
		if err == nil && len(strings.TrimSpace(string(data))) > 0 {
			return string(data), nil
		}
	}

	text, err := extract.Text(ctx, s.Store, resume.StoragePath, resume.MimeType, resume.FileName)
	if err != nil {
		return "", fmt.Errorf("resume %s mime %s: %w", resume.ID, resume.MimeType, err)
	}
	if _, err := s.Store.SaveWithKey(ctx, resume.StoragePath+extractedTextSuffix, "text/plain", strings.NewReader(text)); err != nil {
		return "", fmt.Errorf("cache extracted text: %w", err)
	}
	return text, nil
}

func (s *Service) failResume(ctx context.Context, userID, resumeID string, err error, startedAt *time.Time) {
	code, retryable := classifyFailure(err)
	completedAt := time.Now().UTC()
	if updateErr := s.ResumeRepo.UpdateStatus(context.Background(), resumeID, resumes.StatusFailed, code); updateErr != nil {
		telemetry.Error("analysis.fail_update", map[string]any{
			"resume_id": resumeID,
			"error":     updateErr.Error(),
			"original":  sanitizeError(err),
		})
	}
	metrics.IncAnalysisFailed()
	if startedAt != nil {
		metrics.ObserveAnalysisDurationMs(durationMs(startedAt, &completedAt))
	}
	telemetry.Info("analysis.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"user_id":           userID,
		"resume_id":         resumeID,
		"status":            resumes.StatusFailed,
		"status_transition": "processing->failed",
		"error_code":        code,
		"retryable":         retryable,
		"error":             sanitizeError(err),
		"duration_ms":       durationMs(startedAt, &completedAt),
	})
}

func durationMs(startedAt, completedAt *time.Time) float64 {
	if startedAt == nil || completedAt == nil {
		return 0
	}
	return float64(completedAt.Sub(*startedAt).Microseconds()) / 1000.0
}

func classifyFailure(err error) (string, bool) {
	if err == nil {
		return ErrorCodeInternal, false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorCodeLLMTimeout, true
	}
	if errors.Is(err, extract.ErrUnsupportedType) {
		return ErrorCodeValidation, false
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "timeout") && (strings.Contains(msg, "openai") || strings.Contains(msg, "llm")) {
		return ErrorCodeLLMTimeout, true
	}
	if strings.Contains(msg, "schema") || strings.Contains(msg, "llm output invalid") {
		return ErrorCodeLLMSchemaMismatch, false
	}
	if strings.Contains(msg, "validation") && !strings.Contains(msg, "llm") {
		return ErrorCodeValidation, false
	}
	if strings.Contains(msg, "resume") || strings.Contains(msg, "storage") || strings.Contains(msg, "extracted text") || strings.Contains(msg, "analysis result") || strings.Contains(msg, "set processing") || strings.Contains(msg, "set completed") {
		return ErrorCodeStorage, true
	}
	return ErrorCodeInternal, false
}

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.TrimSpace(msg)
	const maxLen = 500
	if len(msg) > maxLen {
		msg = msg[:maxLen]
	}
	return msg
}
