package progress

import (
	"context"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/sourcegraph/conc"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"

	"github.com/riskibarqy/betslip-analyzer/internal/platform/logging"
)

type WebhookPublisherConfig struct {
	Endpoint string
	Token    string
	Timeout  time.Duration
}

// WebhookPublisher POSTs each event to an external endpoint. Delivery is
// fire-and-forget: a lost progress ping never fails an analysis.
type WebhookPublisher struct {
	client   *fasthttp.Client
	endpoint string
	token    string
	timeout  time.Duration
	logger   *logging.Logger
	inflight conc.WaitGroup
}

func NewWebhookPublisher(cfg WebhookPublisherConfig, logger *logging.Logger) *WebhookPublisher {
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &WebhookPublisher{
		client: &fasthttp.Client{
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
		endpoint: strings.TrimSpace(cfg.Endpoint),
		token:    strings.TrimSpace(cfg.Token),
		timeout:  timeout,
		logger:   logger,
	}
}

func (p *WebhookPublisher) Publish(ctx context.Context, event Event) {
	if p == nil || p.endpoint == "" {
		return
	}

	body, err := sonic.Marshal(event)
	if err != nil {
		p.logger.WarnContext(ctx, "marshal progress event failed", "error", err)
		return
	}

	p.inflight.Go(func() {
		buf := bytebufferpool.Get()
		defer bytebufferpool.Put(buf)
		_, _ = buf.Write(body)

		req := fasthttp.AcquireRequest()
		resp := fasthttp.AcquireResponse()
		defer fasthttp.ReleaseRequest(req)
		defer fasthttp.ReleaseResponse(resp)

		req.SetRequestURI(p.endpoint)
		req.Header.SetMethod(fasthttp.MethodPost)
		req.Header.SetContentType("application/json")
		if p.token != "" {
			req.Header.Set("Authorization", "Bearer "+p.token)
		}
		req.SetBody(buf.B)

		if err := p.client.DoTimeout(req, resp, p.timeout); err != nil {
			p.logger.Warn("progress webhook delivery failed", "stage", event.Stage, "error", err)
			return
		}
		if code := resp.StatusCode(); code >= 300 {
			p.logger.Warn("progress webhook rejected", "stage", event.Stage, "status", code)
		}
	})
}

// Wait blocks until in-flight deliveries finish; call on shutdown.
func (p *WebhookPublisher) Wait() {
	if p != nil {
		p.inflight.Wait()
	}
}
