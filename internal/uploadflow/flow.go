package uploadflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"resume-ats/internal/resumes"
	"resume-ats/internal/shared/telemetry"
)

// State is a phase of the upload/analysis pipeline.
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateUploading  State = "uploading"
	StateProcessing State = "processing"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

const (
	defaultPollInterval     = time.Second
	defaultPollBudget       = 25
	defaultProgressInterval = 400 * time.Millisecond
)

var (
	// ErrUnsupportedType rejects files outside the upload allow-list.
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrNoIdentity rejects runs without any credentials.
	ErrNoIdentity = errors.New("authentication required")
	// ErrPollTimeout signals the status poll budget ran out.
	ErrPollTimeout = errors.New("analysis timed out, please try again")
	// ErrAnalysisFailed signals the server reported a failed analysis.
	ErrAnalysisFailed = errors.New("analysis failed")
)

// Input describes one resume submission. File holds the raw bytes so a retry
// can resend them; Text is the client-decoded content sent for scoring.
type Input struct {
	FileName string
	MimeType string
	JobField string
	Text     string
	File     []byte
}

// Outcome is the terminal result of a successful run.
type Outcome struct {
	ResumeID string
	Analysis AnalysisDoc
}

// Flow drives a resume through upload, analysis, and polling. Zero values for
// the tuning fields pick the standard cadence (1s polls, 25 attempts).
type Flow struct {
	Client           *Client
	PollInterval     time.Duration
	PollBudget       int
	ProgressInterval time.Duration
	OnState          func(State)
	OnProgress       func(percent int)

	mu      sync.Mutex
	state   State
	input   Input
	retries int
}

// State returns the current pipeline state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == "" {
		return StateIdle
	}
	return f.state
}

// Retries returns how many times the current input has been retried.
func (f *Flow) Retries() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.retries
}

func (f *Flow) setState(s State) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
	if f.OnState != nil {
		f.OnState(s)
	}
}

func (f *Flow) emitProgress(percent int) {
	if f.OnProgress != nil {
		f.OnProgress(percent)
	}
}

func (f *Flow) pollInterval() time.Duration {
	if f.PollInterval > 0 {
		return f.PollInterval
	}
	return defaultPollInterval
}

func (f *Flow) pollBudget() int {
	if f.PollBudget > 0 {
		return f.PollBudget
	}
	return defaultPollBudget
}

func (f *Flow) progressInterval() time.Duration {
	if f.ProgressInterval > 0 {
		return f.ProgressInterval
	}
	return defaultProgressInterval
}

// Run executes the pipeline for one input.
func (f *Flow) Run(ctx context.Context, in Input) (Outcome, error) {
	f.mu.Lock()
	f.input = in
	f.retries = 0
	f.mu.Unlock()
	return f.run(ctx, in)
}

// Retry re-submits the previous input with the same file and job field. The
// retry counter only feeds telemetry.
func (f *Flow) Retry(ctx context.Context) (Outcome, error) {
	f.mu.Lock()
	in := f.input
	f.retries++
	retries := f.retries
	f.mu.Unlock()
	if in.FileName == "" {
		return Outcome{}, errors.New("nothing to retry")
	}
	telemetry.Info("uploadflow.retry", map[string]any{
		"file_name": in.FileName,
		"job_field": in.JobField,
		"attempt":   retries,
	})
	return f.run(ctx, in)
}

func (f *Flow) run(ctx context.Context, in Input) (Outcome, error) {
	f.setState(StateValidating)
	if err := f.validate(in); err != nil {
		f.setState(StateFailed)
		return Outcome{}, err
	}

	f.setState(StateUploading)
	resumeID, err := f.upload(ctx, in)
	if err != nil {
		if resumeID != "" {
			f.compensate(resumeID)
		}
		f.setState(StateFailed)
		return Outcome{}, err
	}

	f.setState(StateProcessing)
	if err := f.Client.StartAnalysis(ctx, resumeID, in.Text, in.JobField); err != nil {
		f.setState(StateFailed)
		return Outcome{}, err
	}

	status, err := f.poll(ctx, resumeID)
	if err != nil {
		f.setState(StateFailed)
		return Outcome{}, err
	}
	if status.Status != resumes.StatusCompleted {
		f.setState(StateFailed)
		if status.FailureCode != "" {
			return Outcome{}, fmt.Errorf("%w (%s)", ErrAnalysisFailed, status.FailureCode)
		}
		return Outcome{}, ErrAnalysisFailed
	}

	analysis, err := f.Client.GetAnalysis(ctx, resumeID)
	if err != nil {
		// completed status without a record means the result is gone
		f.setState(StateFailed)
		return Outcome{}, err
	}

	f.setState(StateCompleted)
	return Outcome{ResumeID: resumeID, Analysis: analysis}, nil
}

// validate runs entirely client side, before any network call.
func (f *Flow) validate(in Input) error {
	if f.Client == nil || !f.Client.HasIdentity() {
		return ErrNoIdentity
	}
	if in.FileName == "" || len(in.File) == 0 {
		return errors.New("a file is required")
	}
	if !resumes.IsAllowedMimeType(in.MimeType) {
		return ErrUnsupportedType
	}
	return nil
}

// upload creates the remote record and transfers the bytes. Progress is
// simulated on a fixed interval in 10% steps up to 90, snapping to 100 once
// the server confirms the transfer.
func (f *Flow) upload(ctx context.Context, in Input) (string, error) {
	resumeID, err := f.Client.CreateResume(ctx, in.FileName, in.MimeType, in.JobField)
	if err != nil {
		return "", err
	}

	progressDone := make(chan struct{})
	go f.simulateProgress(progressDone)

	err = f.Client.UploadFile(ctx, resumeID, in.FileName, in.File)
	close(progressDone)
	if err != nil {
		return resumeID, err
	}
	f.emitProgress(100)
	return resumeID, nil
}

func (f *Flow) simulateProgress(done <-chan struct{}) {
	ticker := time.NewTicker(f.progressInterval())
	defer ticker.Stop()
	percent := 0
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if percent < 90 {
				percent += 10
				f.emitProgress(percent)
			}
		}
	}
}

// compensate marks the remote record failed after a broken transfer.
func (f *Flow) compensate(resumeID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := f.Client.MarkFailed(ctx, resumeID); err != nil {
		telemetry.Error("uploadflow.compensate", map[string]any{
			"resume_id": resumeID,
			"error":     err.Error(),
		})
	}
}

// poll owns its own context and ticker; every exit path stops the ticker and
// cancels the context so no polls outlive the task.
func (f *Flow) poll(ctx context.Context, resumeID string) (StatusDoc, error) {
	pollCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	ticker := time.NewTicker(f.pollInterval())
	defer ticker.Stop()

	budget := f.pollBudget()
	for attempt := 1; attempt <= budget; attempt++ {
		select {
		case <-pollCtx.Done():
			return StatusDoc{}, pollCtx.Err()
		case <-ticker.C:
		}

		doc, err := f.Client.GetResume(pollCtx, resumeID)
		if err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.StatusCode == 429 {
				// throttled polls burn an attempt but are not fatal
				continue
			}
			return StatusDoc{}, err
		}

		switch doc.Status {
		case resumes.StatusCompleted, resumes.StatusFailed:
			return doc, nil
		}
	}
	return StatusDoc{}, ErrPollTimeout
}
