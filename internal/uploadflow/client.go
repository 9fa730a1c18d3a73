package uploadflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"
)

// APIError is a structured error payload from the server. UserMessage, when
// present, is safe to show verbatim.
type APIError struct {
	StatusCode  int
	Code        string
	Message     string
	UserMessage string
	RetryAfter  time.Duration
}

func (e *APIError) Error() string {
	if e.UserMessage != "" {
		return e.UserMessage
	}
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("api error (status %d)", e.StatusCode)
}

// StatusDoc is the resume status document returned by the API.
type StatusDoc struct {
	ResumeID    string `json:"resumeId"`
	FileName    string `json:"fileName"`
	JobField    string `json:"jobField"`
	Status      string `json:"status"`
	FailureCode string `json:"failureCode"`
}

// SectionShare is one labeled slice of the section chart.
type SectionShare struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// AnalysisDoc is the completed analysis returned by the API.
type AnalysisDoc struct {
	AnalysisID      string         `json:"analysisId"`
	ResumeID        string         `json:"resumeId"`
	Score           int            `json:"score"`
	KeywordsMatched []string       `json:"keywordsMatched"`
	KeywordsMissing []string       `json:"keywordsMissing"`
	SectionShares   []SectionShare `json:"sectionShares"`
	Suggestions     []string       `json:"suggestions"`
	Strengths       []string       `json:"strengths"`
}

// Client talks to the resume API. Exactly one of AuthToken or GuestID must be
// set for authenticated calls.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	AuthToken  string
	GuestID    string
}

// HasIdentity reports whether the client can authenticate at all.
func (c *Client) HasIdentity() bool {
	return c.AuthToken != "" || c.GuestID != ""
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	if c.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.AuthToken)
	} else if c.GuestID != "" {
		req.Header.Set("X-Guest-Id", c.GuestID)
	}
	return req, nil
}

func (c *Client) doJSON(req *http.Request, out any) error {
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	if raw := resp.Header.Get("Retry-After"); raw != "" {
		if seconds, err := strconv.Atoi(raw); err == nil {
			apiErr.RetryAfter = time.Duration(seconds) * time.Second
		}
	}

	var envelope struct {
		Error struct {
			Code    string          `json:"code"`
			Message string          `json:"message"`
			Details json.RawMessage `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
		if len(envelope.Error.Details) > 0 {
			var details struct {
				UserMessage string `json:"userMessage"`
			}
			if json.Unmarshal(envelope.Error.Details, &details) == nil {
				apiErr.UserMessage = details.UserMessage
			}
		}
	}
	return apiErr
}

// CreateResume registers a resume record and returns its id.
func (c *Client) CreateResume(ctx context.Context, fileName, mimeType, jobField string) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"fileName": fileName,
		"mimeType": mimeType,
		"jobField": jobField,
	})
	if err != nil {
		return "", err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/v1/resumes", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	var doc StatusDoc
	if err := c.doJSON(req, &doc); err != nil {
		return "", err
	}
	return doc.ResumeID, nil
}

// UploadFile transfers the resume bytes.
func (c *Client) UploadFile(ctx context.Context, resumeID, fileName string, file []byte) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return err
	}
	if _, err := part.Write(file); err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	req, err := c.newRequest(ctx, http.MethodPut, "/api/v1/resumes/"+resumeID+"/file", &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return c.doJSON(req, nil)
}

// StartAnalysis submits the decoded text for scoring.
func (c *Client) StartAnalysis(ctx context.Context, resumeID, text, jobField string) error {
	payload, err := json.Marshal(map[string]string{
		"text":     text,
		"jobField": jobField,
	})
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/v1/resumes/"+resumeID+"/analyze", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doJSON(req, nil)
}

// GetResume fetches the status document.
func (c *Client) GetResume(ctx context.Context, resumeID string) (StatusDoc, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/v1/resumes/"+resumeID, nil)
	if err != nil {
		return StatusDoc{}, err
	}
	var doc StatusDoc
	if err := c.doJSON(req, &doc); err != nil {
		return StatusDoc{}, err
	}
	return doc, nil
}

// GetAnalysis fetches the completed analysis.
func (c *Client) GetAnalysis(ctx context.Context, resumeID string) (AnalysisDoc, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/v1/resumes/"+resumeID+"/analysis", nil)
	if err != nil {
		return AnalysisDoc{}, err
	}
	var doc AnalysisDoc
	if err := c.doJSON(req, &doc); err != nil {
		return AnalysisDoc{}, err
	}
	return doc, nil
}

// MarkFailed flags the remote record failed after a broken transfer.
func (c *Client) MarkFailed(ctx context.Context, resumeID string) error {
	payload := []byte(`{"status":"failed","failureCode":"STORAGE_ERROR"}`)
	req, err := c.newRequest(ctx, http.MethodPut, "/api/v1/resumes/"+resumeID+"/status", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doJSON(req, nil)
}
