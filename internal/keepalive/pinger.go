// Package keepalive pings the service's public URL so idle-sleeping hosts keep it awake.
package keepalive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultInterval stays under the common fifteen minute idle cutoff.
const DefaultInterval = 14 * time.Minute

const requestTimeout = 30 * time.Second

type Pinger struct {
	url      string
	interval time.Duration
	client   *http.Client
	logger   *slog.Logger
}

func NewPinger(url string, interval time.Duration, logger *slog.Logger) *Pinger {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Pinger{
		url:      url,
		interval: interval,
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   requestTimeout,
		},
		logger: logger,
	}
}

// Run pings once immediately, then on every tick until ctx is canceled.
func (p *Pinger) Run(ctx context.Context) {
	p.logger.InfoContext(ctx, "keep-alive started", "url", p.url, "interval", p.interval.String())
	p.pingAndLog(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.pingAndLog(ctx)
		case <-ctx.Done():
			p.logger.InfoContext(ctx, "keep-alive stopped")
			return
		}
	}
}

func (p *Pinger) pingAndLog(ctx context.Context) {
	status, err := p.Ping(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.WarnContext(ctx, "keep-alive ping failed", "error", err, "url", p.url)
		}
		return
	}
	p.logger.InfoContext(ctx, "keep-alive ping", "status", status, "url", p.url)
}

// Ping issues one GET and returns the response status code.
func (p *Pinger) Ping(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return 0, fmt.Errorf("create ping request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("ping %s: %w", p.url, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}
