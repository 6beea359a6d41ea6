// Package gemini talks to the Gemini generative-language API: it builds
// generateContent requests, walks response frames, and wraps the streamed
// response body in an sse.Decoder.
package gemini

import (
	"fmt"
	"net/url"
	"strings"
)

// Mode selects between the streaming and single-shot endpoints.
type Mode string

const (
	// ModeStream delivers the response as server-sent events.
	ModeStream Mode = "streamGenerateContent"

	// ModeGenerate returns one JSON document.
	ModeGenerate Mode = "generateContent"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-2.5-flash-lite"

	apiVersion = "v1beta"
)

// DefaultSystemPrompt is the fixed instruction sent ahead of every prompt.
const DefaultSystemPrompt = `You are a fast terminal AI helper. Respond in concise, clean, Unix-style output:
- Keep answers short and focused.
- Use headings, bullet points, code blocks.
- No emojis.
- Plain text only.
`

// NewRequestBody embeds the system instruction and the user prompt in a
// single text part.
func NewRequestBody(systemPrompt, prompt string) GenerateContentRequest {
	return GenerateContentRequest{
		Contents: []Content{{
			Parts: []Part{{Text: systemPrompt + "\nUser: " + prompt}},
		}},
	}
}

// EndpointURL builds
//
//	<base>/v1beta/models/{model}:{mode}?key={apiKey}[&alt=sse]
//
// where alt=sse is only added for ModeStream.
func EndpointURL(baseURL, model, apiKey string, mode Mode) (string, error) {
	if strings.TrimSpace(model) == "" {
		return "", ErrEmptyModel
	}
	if apiKey == "" {
		return "", ErrEmptyAPIKey
	}

	switch mode {
	case ModeStream, ModeGenerate:
	default:
		return "", fmt.Errorf("unknown mode %q", mode)
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("base URL %q must include scheme and host", baseURL)
	}

	u.Path = strings.TrimRight(u.Path, "/") + "/" + apiVersion + "/models/" + model + ":" + string(mode)

	query := "key=" + url.QueryEscape(apiKey)
	if mode == ModeStream {
		query += "&alt=sse"
	}
	u.RawQuery = query

	return u.String(), nil
}
