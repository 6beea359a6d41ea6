package gemini_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/gemcli/pkg/gemini"
	"github.com/papercomputeco/gemcli/pkg/logger"
	"github.com/papercomputeco/gemcli/pkg/sse"
)

const testKey = "test-key-123"

func frameLine(text string) string {
	return fmt.Sprintf("data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":%q}],\"role\":\"model\"}}]}\r\n\r\n", text)
}

// roundTripFunc lets a test hand the client a canned response.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// failingBody returns its content and then a read error.
type failingBody struct {
	r   io.Reader
	err error
}

func (b *failingBody) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	if errors.Is(err, io.EOF) {
		return n, b.err
	}
	return n, err
}

func (b *failingBody) Close() error { return nil }

func collectFragments(s *gemini.Stream) (string, error) {
	var out strings.Builder
	for fragment, err := range s.Fragments() {
		if err != nil {
			return out.String(), err
		}
		out.WriteString(fragment)
	}
	return out.String(), nil
}

var _ = Describe("Client", func() {
	var (
		server   *httptest.Server
		handler  http.HandlerFunc
		client   *gemini.Client
		logs     *bytes.Buffer
		captured *http.Request
		sentBody gemini.GenerateContentRequest
	)

	BeforeEach(func() {
		handler = nil
		captured = nil
		sentBody = gemini.GenerateContentRequest{}
		logs = &bytes.Buffer{}

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			captured = r.Clone(context.Background())
			data, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(data, &sentBody)
			handler(w, r)
		}))

		var err error
		client, err = gemini.NewClient(gemini.ClientConfig{
			BaseURL:      server.URL,
			APIKey:       testKey,
			SystemPrompt: "SYS",
			Logger:       logger.New(logger.WithWriter(logs), logger.WithDebug(true)),
		})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		server.Close()
	})

	Describe("NewClient", func() {
		It("requires an API key", func() {
			_, err := gemini.NewClient(gemini.ClientConfig{})
			Expect(err).To(MatchError(gemini.ErrEmptyAPIKey))
		})
	})

	Describe("Stream", func() {
		It("posts to the SSE endpoint and streams fragments in order", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "text/event-stream")
				flusher := w.(http.Flusher)
				for _, text := range []string{"Red", "Green", "Blue"} {
					_, _ = io.WriteString(w, frameLine(text))
					flusher.Flush()
				}
				_, _ = io.WriteString(w, "data: [DONE]\n\n")
			}

			stream, err := client.Stream(context.Background(), "gemini-2.5-flash-lite", "list 3 colors")
			Expect(err).NotTo(HaveOccurred())
			defer stream.Close()

			text, err := collectFragments(stream)
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("RedGreenBlue"))

			Expect(captured.Method).To(Equal(http.MethodPost))
			Expect(captured.URL.Path).To(Equal("/v1beta/models/gemini-2.5-flash-lite:streamGenerateContent"))
			Expect(captured.URL.Query().Get("key")).To(Equal(testKey))
			Expect(captured.URL.Query().Get("alt")).To(Equal("sse"))
			Expect(captured.Header.Get("Content-Type")).To(Equal("application/json"))
			Expect(captured.Header.Get("User-Agent")).To(HavePrefix("gemcli/"))
			Expect(sentBody.Contents).To(HaveLen(1))
			Expect(sentBody.Contents[0].Parts[0].Text).To(Equal("SYS\nUser: list 3 colors"))
		})

		It("returns an APIError for a non-2xx status", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = io.WriteString(w, `{"error":{"code":400,"message":"API key not valid.","status":"INVALID_ARGUMENT"}}`)
			}

			stream, err := client.Stream(context.Background(), "m", "hi")
			Expect(stream).To(BeNil())

			var apiErr *gemini.APIError
			Expect(errors.As(err, &apiErr)).To(BeTrue())
			Expect(apiErr.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(apiErr.Message).To(Equal("API key not valid."))
			Expect(apiErr.Status).To(Equal("INVALID_ARGUMENT"))
			Expect(err.Error()).To(ContainSubstring("status 400"))
		})

		It("falls back to the raw body when the error document is not JSON", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				_, _ = io.WriteString(w, "upstream unavailable\n")
			}

			_, err := client.Stream(context.Background(), "m", "hi")
			Expect(err).To(MatchError("gemini API returned status 502: upstream unavailable"))
		})

		It("reports a connection failure without leaking the key", func() {
			server.Close()

			_, err := client.Stream(context.Background(), "m", "hi")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("sending request"))
			Expect(err.Error()).NotTo(ContainSubstring(testKey))
			Expect(logs.String()).NotTo(ContainSubstring(testKey))
		})

		It("yields a mid-stream read failure after the fragments already received", func() {
			dropped := errors.New("connection reset by peer")
			c, err := gemini.NewClient(gemini.ClientConfig{
				APIKey: testKey,
				HTTPClient: &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
					return &http.Response{
						StatusCode: http.StatusOK,
						Header:     http.Header{"Content-Type": {"text/event-stream"}},
						Body:       &failingBody{r: strings.NewReader(frameLine("Red")), err: dropped},
					}, nil
				})},
			})
			Expect(err).NotTo(HaveOccurred())

			stream, err := c.Stream(context.Background(), "m", "hi")
			Expect(err).NotTo(HaveOccurred())

			text, err := collectFragments(stream)
			Expect(text).To(Equal("Red"))
			Expect(err).To(MatchError(dropped))
		})

		It("passes stream options to the decoder", func() {
			c, err := gemini.NewClient(gemini.ClientConfig{
				APIKey:        testKey,
				StreamOptions: []sse.Option{sse.WithReadSize(8), sse.WithReassembly()},
				HTTPClient: &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
					return &http.Response{
						StatusCode: http.StatusOK,
						Body:       io.NopCloser(strings.NewReader(frameLine("split") + "data: [DONE]\n\n")),
					}, nil
				})},
			})
			Expect(err).NotTo(HaveOccurred())

			stream, err := c.Stream(context.Background(), "m", "hi")
			Expect(err).NotTo(HaveOccurred())

			text, err := collectFragments(stream)
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("split"))
			Expect(stream.SawDone()).To(BeTrue())
		})

		It("stops waiting when the context deadline passes", func() {
			handler = func(_ http.ResponseWriter, r *http.Request) {
				<-r.Context().Done()
			}

			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			_, err := client.Stream(ctx, "m", "hi")
			Expect(err).To(MatchError(context.DeadlineExceeded))
		})
	})

	Describe("Generate", func() {
		It("returns the text of a single document", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"Hello"}]}}]}`)
			}

			res, err := client.Generate(context.Background(), "m", "hi")
			Expect(err).NotTo(HaveOccurred())
			Expect(res.HasText).To(BeTrue())
			Expect(res.Text).To(Equal("Hello"))
			Expect(res.APIError).To(BeEmpty())

			Expect(captured.URL.Path).To(Equal("/v1beta/models/m:generateContent"))
			Expect(captured.URL.Query().Has("alt")).To(BeFalse())
		})

		It("reports an error document verbatim without failing", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusForbidden)
				_, _ = io.WriteString(w, `{"error": {"code": 403, "message": "denied"}}`)
			}

			res, err := client.Generate(context.Background(), "m", "hi")
			Expect(err).NotTo(HaveOccurred())
			Expect(res.APIError).To(Equal(`{"code": 403, "message": "denied"}`))
			Expect(res.HasText).To(BeFalse())
		})

		It("keeps the raw document when text is missing", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, `{"candidates":[]}`)
			}

			res, err := client.Generate(context.Background(), "m", "hi")
			Expect(err).NotTo(HaveOccurred())
			Expect(res.HasText).To(BeFalse())
			Expect(string(res.Raw)).To(Equal(`{"candidates":[]}`))
		})

		It("fails on a document that is not JSON", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, "<html>")
			}

			_, err := client.Generate(context.Background(), "m", "hi")
			Expect(err).To(MatchError(ContainSubstring("decoding response")))
		})
	})

	Describe("ParseGenerateResult", func() {
		It("treats a null error as absent", func() {
			res, err := gemini.ParseGenerateResult([]byte(`{"error":null,"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(res.APIError).To(BeEmpty())
			Expect(res.Text).To(Equal("ok"))
		})
	})
})
