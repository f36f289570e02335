package domain

import "encoding/json"

// Recognition is the outcome of one transcription: the cleaned transcript,
// the text exactly as the provider returned it, and the raw transcript
// document of the first sub-result for callers that need provider detail.
type Recognition struct {
	Text         string          `json:"text"`
	OriginalText string          `json:"original_text"`
	Details      json.RawMessage `json:"details,omitempty"`
}
