package openai

import "fmt"

// Message is one chat message sent to the model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const systemPrompt = `You are an expert ATS (Applicant Tracking System) analyzer. Analyze resumes and provide detailed feedback in the following JSON format:
{
  "score": <0-100 integer>,
  "keywordsMatched": [<strings>],
  "keywordsMissing": [<strings>],
  "sectionScores": {
    "format": <0-100>,
    "content": <0-100>,
    "keywords": <0-100>,
    "impact": <0-100>
  },
  "suggestions": [<strings>],
  "strengths": [<strings>]
}
Respond with the JSON object only.`

// BuildMessages assembles the chat messages for one analysis request.
func BuildMessages(text, jobField string) []Message {
	user := fmt.Sprintf("Analyze this resume:\n%s", text)
	if jobField != "" {
		user = fmt.Sprintf("Analyze this resume for a role in %s:\n%s", jobField, text)
	}
	return []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: user},
	}
}

// buildFixMessages asks the model to repair an invalid JSON payload without
// changing its content.
func buildFixMessages(raw []byte) []Message {
	return []Message{
		{Role: "system", Content: "You repair malformed JSON. Return the corrected JSON object only, with no commentary."},
		{Role: "user", Content: fmt.Sprintf("Fix this JSON so it parses:\n%s", raw)},
	}
}
