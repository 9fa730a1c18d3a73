package uploadflow

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"resume-ats/internal/analyses"
	"resume-ats/internal/resumes"
	"resume-ats/internal/scoring"
	"resume-ats/internal/shared/server/middleware"
	"resume-ats/internal/shared/storage/object/local"
)

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\nanalysis fixture\n%%EOF")

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := local.New(t.TempDir())
	resumeRepo := resumes.NewMemoryRepo()
	resumeSvc := &resumes.Service{Repo: resumeRepo, Store: store}
	analysisSvc := &analyses.Service{
		Repo:         analyses.NewMemoryRepo(),
		ResumeRepo:   resumeRepo,
		Store:        store,
		Provider:     scoring.NewMockProvider(),
		ProviderName: "mock",
	}

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Auth("dev"))
	api := r.Group("/api/v1")
	resumes.NewHandler(resumeSvc).RegisterRoutes(api)
	analyses.NewHandler(analysisSvc).RegisterRoutes(api)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func newFlow(srv *httptest.Server) *Flow {
	return &Flow{
		Client:           &Client{BaseURL: srv.URL, GuestID: "flow-test"},
		PollInterval:     5 * time.Millisecond,
		ProgressInterval: time.Millisecond,
	}
}

func pdfInput() Input {
	return Input{
		FileName: "resume.pdf",
		MimeType: "application/pdf",
		JobField: "Data Science",
		Text:     "Experienced data scientist with Python and SQL.",
		File:     pdfBytes,
	}
}

func TestFlowCompletes(t *testing.T) {
	srv := newTestServer(t)
	flow := newFlow(srv)

	var mu sync.Mutex
	var states []State
	var progress []int
	flow.OnState = func(s State) {
		mu.Lock()
		states = append(states, s)
		mu.Unlock()
	}
	flow.OnProgress = func(p int) {
		mu.Lock()
		progress = append(progress, p)
		mu.Unlock()
	}

	outcome, err := flow.Run(context.Background(), pdfInput())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if outcome.ResumeID == "" {
		t.Fatal("expected resume id")
	}
	if outcome.Analysis.Score < 0 || outcome.Analysis.Score > 100 {
		t.Fatalf("score out of range: %d", outcome.Analysis.Score)
	}
	if len(outcome.Analysis.SectionShares) != 4 {
		t.Fatalf("expected 4 section shares, got %d", len(outcome.Analysis.SectionShares))
	}
	total := 0
	for _, share := range outcome.Analysis.SectionShares {
		total += share.Value
	}
	if total != 100 {
		t.Fatalf("expected shares to sum to 100, got %d", total)
	}

	mu.Lock()
	defer mu.Unlock()
	want := []State{StateValidating, StateUploading, StateProcessing, StateCompleted}
	if len(states) != len(want) {
		t.Fatalf("expected states %v, got %v", want, states)
	}
	for i, s := range want {
		if states[i] != s {
			t.Fatalf("expected states %v, got %v", want, states)
		}
	}
	if len(progress) == 0 || progress[len(progress)-1] != 100 {
		t.Fatalf("expected progress to end at 100, got %v", progress)
	}
	for _, p := range progress[:len(progress)-1] {
		if p > 90 {
			t.Fatalf("simulated progress exceeded 90 before completion: %v", progress)
		}
	}
}

func TestFlowRejectsUnsupportedType(t *testing.T) {
	flow := &Flow{Client: &Client{BaseURL: "http://127.0.0.1:0", GuestID: "g"}}
	in := pdfInput()
	in.MimeType = "image/png"

	_, err := flow.Run(context.Background(), in)
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
	if flow.State() != StateFailed {
		t.Fatalf("expected failed state, got %s", flow.State())
	}
}

func TestFlowRequiresIdentity(t *testing.T) {
	flow := &Flow{Client: &Client{BaseURL: "http://127.0.0.1:0"}}

	_, err := flow.Run(context.Background(), pdfInput())
	if !errors.Is(err, ErrNoIdentity) {
		t.Fatalf("expected ErrNoIdentity, got %v", err)
	}
}

func TestFlowCompensatesOnBrokenUpload(t *testing.T) {
	var mu sync.Mutex
	markedFailed := false

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/v1/resumes":
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]string{"resumeId": "res-1", "status": "uploading"})
		case r.Method == http.MethodPut && strings.HasSuffix(r.URL.Path, "/file"):
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":{"code":"internal_error","message":"disk full"}}`))
		case r.Method == http.MethodPut && strings.HasSuffix(r.URL.Path, "/status"):
			mu.Lock()
			markedFailed = true
			mu.Unlock()
			json.NewEncoder(w).Encode(map[string]string{"resumeId": "res-1", "status": "failed"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	flow := newFlow(srv)
	_, err := flow.Run(context.Background(), pdfInput())
	if err == nil {
		t.Fatal("expected upload error")
	}

	mu.Lock()
	defer mu.Unlock()
	if !markedFailed {
		t.Fatal("expected compensating status update")
	}
}

func TestFlowPollTimeout(t *testing.T) {
	var polls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/v1/resumes":
			json.NewEncoder(w).Encode(map[string]string{"resumeId": "res-1", "status": "uploading"})
		case r.Method == http.MethodPut:
			json.NewEncoder(w).Encode(map[string]string{"resumeId": "res-1"})
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/analyze"):
			w.WriteHeader(http.StatusAccepted)
			json.NewEncoder(w).Encode(map[string]string{"resumeId": "res-1", "status": "processing"})
		case r.Method == http.MethodGet:
			polls.Add(1)
			json.NewEncoder(w).Encode(map[string]string{"resumeId": "res-1", "status": "processing"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	flow := newFlow(srv)
	flow.PollBudget = 3
	flow.PollInterval = time.Millisecond

	_, err := flow.Run(context.Background(), pdfInput())
	if !errors.Is(err, ErrPollTimeout) {
		t.Fatalf("expected ErrPollTimeout, got %v", err)
	}
	if got := polls.Load(); got != 3 {
		t.Fatalf("polls = %d, want the full budget of 3", got)
	}

	// The polling task must be stopped once the flow has returned.
	time.Sleep(20 * flow.PollInterval)
	if got := polls.Load(); got != 3 {
		t.Fatalf("polls kept running after timeout, count = %d", got)
	}
}

func TestFlowStopsPollingAfterCompletion(t *testing.T) {
	var polls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/v1/resumes":
			json.NewEncoder(w).Encode(map[string]string{"resumeId": "res-1", "status": "uploading"})
		case r.Method == http.MethodPut:
			json.NewEncoder(w).Encode(map[string]string{"resumeId": "res-1"})
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/analyze"):
			w.WriteHeader(http.StatusAccepted)
			json.NewEncoder(w).Encode(map[string]string{"resumeId": "res-1", "status": "processing"})
		case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/analysis"):
			json.NewEncoder(w).Encode(map[string]any{
				"analysisId": "an-1",
				"resumeId":   "res-1",
				"score":      80,
				"sectionShares": []map[string]any{
					{"label": "Format", "value": 25},
					{"label": "Content", "value": 25},
					{"label": "Keywords", "value": 25},
					{"label": "Impact", "value": 25},
				},
			})
		case r.Method == http.MethodGet:
			polls.Add(1)
			json.NewEncoder(w).Encode(map[string]string{"resumeId": "res-1", "status": "completed"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	flow := newFlow(srv)
	flow.PollInterval = time.Millisecond

	outcome, err := flow.Run(context.Background(), pdfInput())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Analysis.AnalysisID != "an-1" {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}

	sampled := polls.Load()
	if sampled != 1 {
		t.Fatalf("polls = %d, want 1 before the terminal state", sampled)
	}
	time.Sleep(20 * flow.PollInterval)
	if got := polls.Load(); got != sampled {
		t.Fatalf("polls kept running after completion, %d -> %d", sampled, got)
	}
}

func TestFlowFailedStatusCarriesCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/v1/resumes":
			json.NewEncoder(w).Encode(map[string]string{"resumeId": "res-1", "status": "uploading"})
		case r.Method == http.MethodPut:
			json.NewEncoder(w).Encode(map[string]string{"resumeId": "res-1"})
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/analyze"):
			w.WriteHeader(http.StatusAccepted)
			json.NewEncoder(w).Encode(map[string]string{"resumeId": "res-1", "status": "processing"})
		case r.Method == http.MethodGet:
			json.NewEncoder(w).Encode(map[string]string{
				"resumeId":    "res-1",
				"status":      "failed",
				"failureCode": "LLM_TIMEOUT",
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	flow := newFlow(srv)
	flow.PollInterval = time.Millisecond

	_, err := flow.Run(context.Background(), pdfInput())
	if !errors.Is(err, ErrAnalysisFailed) {
		t.Fatalf("expected ErrAnalysisFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "LLM_TIMEOUT") {
		t.Fatalf("expected failure code in error, got %v", err)
	}
}

func TestFlowSurfacesUserMessage(t *testing.T) {
	const userMessage = "We could not analyze your resume. Please try again."

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/v1/resumes":
			json.NewEncoder(w).Encode(map[string]string{"resumeId": "res-1", "status": "uploading"})
		case r.Method == http.MethodPut:
			json.NewEncoder(w).Encode(map[string]string{"resumeId": "res-1"})
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/analyze"):
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{
					"code":    "internal_error",
					"message": "analysis failed",
					"details": map[string]string{"userMessage": userMessage},
				},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	flow := newFlow(srv)
	_, err := flow.Run(context.Background(), pdfInput())
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != userMessage {
		t.Fatalf("expected user message surfaced verbatim, got %q", err.Error())
	}
}

func TestFlowRetryReusesInput(t *testing.T) {
	srv := newTestServer(t)
	flow := newFlow(srv)

	if _, err := flow.Run(context.Background(), pdfInput()); err != nil {
		t.Fatalf("run: %v", err)
	}

	outcome, err := flow.Retry(context.Background())
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if outcome.ResumeID == "" {
		t.Fatal("expected resume id from retry")
	}
	if flow.Retries() != 1 {
		t.Fatalf("expected retry counter 1, got %d", flow.Retries())
	}
}

func TestFlowThrottledPollContinues(t *testing.T) {
	var mu sync.Mutex
	polls := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/v1/resumes":
			json.NewEncoder(w).Encode(map[string]string{"resumeId": "res-1", "status": "uploading"})
		case r.Method == http.MethodPut:
			json.NewEncoder(w).Encode(map[string]string{"resumeId": "res-1"})
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/analyze"):
			w.WriteHeader(http.StatusAccepted)
			json.NewEncoder(w).Encode(map[string]string{"resumeId": "res-1", "status": "processing"})
		case r.Method == http.MethodGet:
			mu.Lock()
			polls++
			n := polls
			mu.Unlock()
			if n == 1 {
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":{"code":"rate_limited","message":"Polling too fast"}}`))
				return
			}
			json.NewEncoder(w).Encode(map[string]string{"resumeId": "res-1", "status": "failed"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	flow := newFlow(srv)
	flow.PollInterval = time.Millisecond

	_, err := flow.Run(context.Background(), pdfInput())
	if !errors.Is(err, ErrAnalysisFailed) {
		t.Fatalf("expected ErrAnalysisFailed after throttled poll, got %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if polls < 2 {
		t.Fatalf("expected polling to continue past 429, got %d polls", polls)
	}
}
