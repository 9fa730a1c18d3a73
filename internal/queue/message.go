package queue

import "encoding/json"

// Message is the analysis job payload sent to downstream queue consumers.
// Text carries the client-decoded resume text when present; workers fall
// back to server-side extraction when it is empty.
type Message struct {
	ResumeID   string `json:"resumeId"`
	UserID     string `json:"userId"`
	JobField   string `json:"jobField,omitempty"`
	Text       string `json:"text,omitempty"`
	RequestID  string `json:"requestId"`
	EnqueuedAt string `json:"enqueuedAt"`
	Version    int    `json:"version"`
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a Message.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}
