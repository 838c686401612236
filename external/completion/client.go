// Package completion talks to an OpenAI-compatible chat completion provider.
// The extractor sends slip images, the validator sends disambiguation
// questions, the enrichment chain sends grounded and latent lookups, and the
// scorer sends aggregation prompts.
package completion

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/riskibarqy/betslip-analyzer/internal/platform/logging"
	"github.com/riskibarqy/betslip-analyzer/internal/platform/resilience"
)

var errProviderTransient = crerr.New("completion provider transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	Model          string
	Timeout        time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient     *http.Client
	endpoint       string
	apiKey         string
	model          string
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 60 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")

	return &Client{
		httpClient:     httpClient,
		endpoint:       baseURL + "/chat/completions",
		apiKey:         strings.TrimSpace(cfg.APIKey),
		model:          strings.TrimSpace(cfg.Model),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(cfg.CircuitBreaker),
		circuitEnabled: cfg.CircuitBreaker.Enabled,
	}
}

// Request is one completion call. ImageB64, Grounding, and Temperature are
// optional knobs; Sources come back only on grounded calls.
type Request struct {
	System      string
	Prompt      string
	ImageB64    string
	ImageMIME   string
	Grounding   bool
	Temperature float64
	MaxTokens   int
}

type Response struct {
	Text    string
	Sources []string
}

func (c *Client) Complete(ctx context.Context, req Request) (Response, error) {
	if c.apiKey == "" || c.endpoint == "/chat/completions" || c.model == "" {
		return Response{}, crerr.New("completion client is not configured")
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return Response{}, crerr.New("prompt is required")
	}

	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "completion circuit breaker rejected request", "state", c.breaker.State())
			return Response{}, resilience.MarkRetryable(crerr.Wrap(err, "completion provider unavailable"))
		}
	}

	out, err := c.send(ctx, req)
	if c.circuitEnabled {
		if err != nil && crerr.Is(err, errProviderTransient) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}
	return out, err
}

func (c *Client) send(ctx context.Context, req Request) (Response, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	payload, err := sonic.Marshal(buildWirePayload(c.model, req))
	if err != nil {
		return Response{}, crerr.Wrap(err, "marshal completion payload")
	}
	_, _ = buf.Write(payload)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(buf.String()))
	if err != nil {
		return Response{}, crerr.Wrap(err, "build completion request")
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return Response{}, ctx.Err()
		}
		return Response{}, resilience.MarkRetryable(crerr.Wrapf(errProviderTransient, "send completion request: %s", sanitizeKey(err.Error(), c.apiKey)))
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return Response{}, resilience.MarkRetryable(crerr.Wrap(errProviderTransient, "read completion response"))
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return Response{}, resilience.MarkRetryable(crerr.Wrapf(errProviderTransient, "provider status=%d body=%s", resp.StatusCode, abbreviate(raw)))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return Response{}, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviate(raw))
	}

	var decoded wireResponse
	if err := sonic.Unmarshal(raw, &decoded); err != nil {
		return Response{}, crerr.Wrap(err, "decode completion response")
	}
	if len(decoded.Choices) == 0 {
		return Response{}, crerr.New("completion response has no choices")
	}

	return Response{
		Text:    decoded.Choices[0].Message.Content,
		Sources: decoded.Citations,
	}, nil
}

func buildWirePayload(model string, req Request) wirePayload {
	messages := make([]wireMessage, 0, 2)
	if strings.TrimSpace(req.System) != "" {
		messages = append(messages, wireMessage{Role: "system", Content: req.System})
	}

	if req.ImageB64 != "" {
		mime := req.ImageMIME
		if mime == "" {
			mime = "image/jpeg"
		}
		messages = append(messages, wireMessage{
			Role: "user",
			ContentParts: []wireContentPart{
				{Type: "text", Text: req.Prompt},
				{Type: "image_url", ImageURL: &wireImageURL{URL: "data:" + mime + ";base64," + req.ImageB64}},
			},
		})
	} else {
		messages = append(messages, wireMessage{Role: "user", Content: req.Prompt})
	}

	payload := wirePayload{
		Model:       model,
		Messages:    messages,
		Temperature: req.Temperature,
	}
	if req.MaxTokens > 0 {
		payload.MaxTokens = req.MaxTokens
	}
	if req.Grounding {
		payload.WebSearchOptions = &wireWebSearchOptions{SearchContextSize: "medium"}
	}
	return payload
}

func sanitizeKey(text, key string) string {
	if key == "" {
		return text
	}
	return strings.ReplaceAll(text, key, "REDACTED")
}

func abbreviate(raw []byte) string {
	const maxLen = 256
	text := strings.TrimSpace(string(raw))
	if len(text) > maxLen {
		return text[:maxLen] + "..."
	}
	return text
}
