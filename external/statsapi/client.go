// Package statsapi is the read-only statistics provider client. The
// provider enforces a daily quota, so every call goes through an injected
// rate limiter that serializes traffic with a minimum inter-call delay.
package statsapi

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"context"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/betslip-analyzer/internal/platform/logging"
	"github.com/riskibarqy/betslip-analyzer/internal/platform/resilience"
)

var errStatsTransient = crerr.New("stats provider transient failure")
var apiKeyParamRegex = regexp.MustCompile(`api_key=[^&\s"']+`)

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Token          string
	Timeout        time.Duration
	Retry          resilience.RetryConfig
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
	RateLimiter    *resilience.RateLimiter
}

type Client struct {
	httpClient     *http.Client
	baseURL        string
	token          string
	retry          resilience.RetryConfig
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	limiter        *resilience.RateLimiter
	flight         resilience.SingleFlight
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
		httpClient.Timeout = 15 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		token:          strings.TrimSpace(cfg.Token),
		retry:          resilience.NormalizeRetryConfig(cfg.Retry),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(cfg.CircuitBreaker),
		circuitEnabled: cfg.CircuitBreaker.Enabled,
		limiter:        cfg.RateLimiter,
	}
}

// GetForm returns the recent-form summary for one team.
func (c *Client) GetForm(ctx context.Context, teamID string) (TeamForm, error) {
	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return TeamForm{}, crerr.New("team id is required")
	}

	var envelope formEnvelope
	if err := c.doJSON(ctx, "/teams/"+url.PathEscape(teamID)+"/form", nil, &envelope); err != nil {
		return TeamForm{}, fmt.Errorf("fetch form team=%s: %w", teamID, err)
	}
	return envelope.Data, nil
}

// GetHeadToHead returns the meeting history between two teams.
func (c *Client) GetHeadToHead(ctx context.Context, teamA, teamB string) (HeadToHead, error) {
	teamA = strings.TrimSpace(teamA)
	teamB = strings.TrimSpace(teamB)
	if teamA == "" || teamB == "" {
		return HeadToHead{}, crerr.New("both team ids are required")
	}

	query := map[string]string{"team_a": teamA, "team_b": teamB}
	var envelope headToHeadEnvelope
	if err := c.doJSON(ctx, "/head-to-head", query, &envelope); err != nil {
		return HeadToHead{}, fmt.Errorf("fetch head-to-head %s vs %s: %w", teamA, teamB, err)
	}
	return envelope.Data, nil
}

// GetStanding returns the league-table row for one team.
func (c *Client) GetStanding(ctx context.Context, teamID, league, season string) (Standing, error) {
	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return Standing{}, crerr.New("team id is required")
	}

	query := map[string]string{}
	if league = strings.TrimSpace(league); league != "" {
		query["league"] = league
	}
	if season = strings.TrimSpace(season); season != "" {
		query["season"] = season
	}

	var envelope standingEnvelope
	if err := c.doJSON(ctx, "/teams/"+url.PathEscape(teamID)+"/standing", query, &envelope); err != nil {
		return Standing{}, fmt.Errorf("fetch standing team=%s: %w", teamID, err)
	}
	return envelope.Data, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.baseURL == "" || c.token == "" {
		return fmt.Errorf("%w: stats client is not configured", errStatsTransient)
	}

	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "stats circuit breaker rejected request", "state", c.breaker.State())
			return crerr.Wrap(err, "stats provider is temporarily unavailable")
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}
	values.Set("api_key", c.token)

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	key := path + "?" + values.Encode()
	out, err, _ := c.flight.Do(key, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && crerr.Is(reqErr, errStatsTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode stats payload: %w", err)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	return resilience.RetryWithBackoff(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		if err := c.limiter.Acquire(ctx); err != nil {
			// Quota exhaustion will not recover inside one request window.
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, crerr.Wrap(err, "build stats request")
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, resilience.MarkRetryable(crerr.Wrapf(errStatsTransient, "send stats request: %s", sanitizeToken(err.Error(), c.token)))
		}
		defer func() { _ = resp.Body.Close() }()

		raw, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
		if err != nil {
			return nil, resilience.MarkRetryable(crerr.Wrap(errStatsTransient, "read stats response"))
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return raw, nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return nil, resilience.MarkRetryable(crerr.Wrapf(errStatsTransient, "provider status=%d", resp.StatusCode))
		default:
			return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
		}
	})
}

func sanitizeToken(text, token string) string {
	if token != "" {
		text = strings.ReplaceAll(text, token, "REDACTED")
	}
	return apiKeyParamRegex.ReplaceAllString(text, "api_key=REDACTED")
}

func abbreviateBody(raw []byte) string {
	const maxLen = 200
	text := strings.TrimSpace(string(raw))
	if len(text) > maxLen {
		return text[:maxLen] + "..."
	}
	return text
}
