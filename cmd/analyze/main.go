package main

// Drive the upload/analyze/poll pipeline against a running API:
//   go run ./cmd/analyze -resume resume.pdf -field "Data Science" -guest demo

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"resume-ats/internal/extract"
	"resume-ats/internal/uploadflow"
)

func main() {
	baseURL := flag.String("api", "http://localhost:8080", "API base URL")
	resumePath := flag.String("resume", "", "Path to resume file (pdf, docx, or txt)")
	jobField := flag.String("field", "", "Target job field (optional)")
	token := flag.String("token", "", "Bearer token (optional)")
	guestID := flag.String("guest", "", "Guest identity (optional)")
	flag.Parse()

	if strings.TrimSpace(*resumePath) == "" {
		exitErr("resume path is required")
	}
	if strings.TrimSpace(*token) == "" && strings.TrimSpace(*guestID) == "" {
		exitErr("either -token or -guest is required")
	}

	mimeType, err := mimeFromExt(*resumePath)
	if err != nil {
		exitErr(err.Error())
	}

	fileBytes, err := os.ReadFile(*resumePath)
	if err != nil {
		exitErr(fmt.Sprintf("read resume: %v", err))
	}
	fileName := filepath.Base(*resumePath)

	text, err := extract.TextFromBytes(context.Background(), fileBytes, mimeType, fileName)
	if err != nil {
		exitErr(fmt.Sprintf("extract resume text: %v", err))
	}

	flow := &uploadflow.Flow{
		Client: &uploadflow.Client{
			BaseURL:   strings.TrimRight(*baseURL, "/"),
			AuthToken: strings.TrimSpace(*token),
			GuestID:   strings.TrimSpace(*guestID),
		},
		OnState: func(s uploadflow.State) {
			fmt.Fprintf(os.Stderr, "state: %s\n", s)
		},
		OnProgress: func(percent int) {
			fmt.Fprintf(os.Stderr, "upload: %d%%\n", percent)
		},
	}

	outcome, err := flow.Run(context.Background(), uploadflow.Input{
		FileName: fileName,
		MimeType: mimeType,
		JobField: strings.TrimSpace(*jobField),
		Text:     text,
		File:     fileBytes,
	})
	if err != nil {
		exitErr(err.Error())
	}

	encoded, err := json.MarshalIndent(outcome.Analysis, "", "  ")
	if err != nil {
		exitErr(fmt.Sprintf("encode analysis: %v", err))
	}
	fmt.Println(string(encoded))
}

func mimeFromExt(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return "application/pdf", nil
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document", nil
	case ".doc":
		return "application/msword", nil
	case ".txt":
		return "text/plain", nil
	default:
		return "", fmt.Errorf("unsupported file extension: %s", filepath.Ext(path))
	}
}

func exitErr(msg string) {
	fmt.Fprintln(os.Stderr, "error: "+msg)
	os.Exit(1)
}
