package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/papercomputeco/gemcli/pkg/logger"
	"github.com/papercomputeco/gemcli/pkg/sse"
	"github.com/papercomputeco/gemcli/pkg/utils"
)

// ClientConfig configures a Client. Only APIKey is required.
type ClientConfig struct {
	// BaseURL is scheme + host (+ optional path prefix) of the API.
	// Defaults to DefaultBaseURL.
	BaseURL string

	APIKey string

	// SystemPrompt defaults to DefaultSystemPrompt.
	SystemPrompt string

	// HTTPClient defaults to a client with no timeout; callers bound a
	// request through its context.
	HTTPClient *http.Client

	Logger *slog.Logger

	// StreamOptions are passed to the sse.Decoder of every Stream.
	StreamOptions []sse.Option
}

// Client issues a single request per call. It never retries.
type Client struct {
	baseURL      string
	apiKey       string
	systemPrompt string
	httpClient   *http.Client
	logger       *slog.Logger
	streamOpts   []sse.Option
}

// GenerateResult is the outcome of a single-shot call.
type GenerateResult struct {
	// Text is candidates[0].content.parts[0].text when HasText is true.
	Text    string
	HasText bool

	// APIError is the error object of the document, verbatim, when the
	// server reported one.
	APIError string

	// Raw is the full response document.
	Raw []byte
}

func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}

	c := &Client{
		baseURL:      cfg.BaseURL,
		apiKey:       cfg.APIKey,
		systemPrompt: cfg.SystemPrompt,
		httpClient:   cfg.HTTPClient,
		logger:       cfg.Logger,
		streamOpts:   cfg.StreamOptions,
	}

	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.systemPrompt == "" {
		c.systemPrompt = DefaultSystemPrompt
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.logger == nil {
		c.logger = logger.Nop()
	}

	return c, nil
}

// Stream starts a streamGenerateContent call and returns the open response.
// The caller must Close the returned Stream.
func (c *Client) Stream(ctx context.Context, model, prompt string) (*Stream, error) {
	resp, err := c.post(ctx, model, prompt, ModeStream)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		c.logger.Debug("stream request rejected",
			"status", resp.StatusCode,
			"body", utils.Truncate(string(body), 200),
		)
		return nil, newAPIError(resp.StatusCode, body)
	}

	return NewStream(resp.Body, c.streamOpts...), nil
}

// Generate runs a single-shot generateContent call. An error document from
// the server is not a Go error: it is reported in GenerateResult.APIError.
func (c *Client) Generate(ctx context.Context, model, prompt string) (*GenerateResult, error) {
	resp, err := c.post(ctx, model, prompt, ModeGenerate)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	c.logger.Debug("received generate response",
		"status", resp.StatusCode,
		"bytes", len(body),
	)

	return ParseGenerateResult(body)
}

// ParseGenerateResult interprets a single-shot response document.
func ParseGenerateResult(body []byte) (*GenerateResult, error) {
	frame, err := ParseFrame(body)
	if err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	res := &GenerateResult{Raw: body}

	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && hasError(env.Error) {
		res.APIError = string(env.Error)
		return res, nil
	}

	res.Text, res.HasText = FrameText(frame)
	return res, nil
}

func (c *Client) post(ctx context.Context, model, prompt string, mode Mode) (*http.Response, error) {
	endpoint, err := EndpointURL(c.baseURL, model, c.apiKey, mode)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(NewRequestBody(c.systemPrompt, prompt))
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", redactKey(err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", utils.UserAgent())
	if mode == ModeStream {
		req.Header.Set("Accept", "text/event-stream")
	}

	c.logger.Debug("sending generate request",
		"model", model,
		"mode", string(mode),
		"host", hostOf(endpoint),
		"prompt_bytes", len(prompt),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", redactKey(err))
	}

	c.logger.Debug("response headers received",
		"status", resp.StatusCode,
		"content_type", resp.Header.Get("Content-Type"),
	)

	return resp, nil
}

func hostOf(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		return ""
	}
	return u.Host
}
