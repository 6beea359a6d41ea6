package gemini

import "encoding/json"

// GenerateContentRequest is the body of a generateContent or
// streamGenerateContent call. Only the fields this client sends are modeled.
type GenerateContentRequest struct {
	Contents []Content `json:"contents"`
}

// Content is one turn of the conversation. Role is omitted for a single
// user turn.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// Part carries the text of a Content.
type Part struct {
	Text string `json:"text"`
}

// errorEnvelope picks the error object out of a response document, keeping
// its bytes exactly as the server sent them.
type errorEnvelope struct {
	Error json.RawMessage `json:"error,omitempty"`
}

// apiErrorBody is the documented shape of a Gemini error object.
type apiErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}
