// Package httpprobe implements the lightweight protocol-level URL prober.
package httpprobe

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/pastchais/check-notion-url/internal/linkcheck"
	"github.com/pastchais/check-notion-url/internal/probe"
)

// maxBodyRead caps how much of a GET body is drained before closing.
const maxBodyRead = 1 << 20

// Config controls prober behavior.
type Config struct {
	UserAgent string
	// HeadTimeout bounds the initial HEAD attempt.
	HeadTimeout time.Duration
	// RetryTimeout bounds the GET retry. GET fetches the full payload, so it
	// gets more time than HEAD.
	RetryTimeout time.Duration
	// MaxRedirects caps how many redirect hops are followed.
	MaxRedirects int
}

// Prober classifies URLs with a HEAD request, falling back to a single GET
// when HEAD is inconclusive.
type Prober struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

// New builds a Prober.
func New(cfg Config, logger *zap.Logger) *Prober {
	if cfg.HeadTimeout <= 0 {
		cfg.HeadTimeout = 10 * time.Second
	}
	if cfg.RetryTimeout <= 0 {
		cfg.RetryTimeout = 30 * time.Second
	}
	if cfg.MaxRedirects <= 0 {
		cfg.MaxRedirects = 5
	}
	client := &http.Client{
		Transport: newHTTPTransport(),
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= cfg.MaxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
	return &Prober{cfg: cfg, client: client, logger: logger}
}

// Classify probes rawURL and maps the outcome to a liveness status. A 404 on
// HEAD is conclusive and skips the GET retry; any other HEAD failure triggers
// exactly one GET with the same decision rules.
func (p *Prober) Classify(ctx context.Context, rawURL string) linkcheck.Status {
	if rawURL == "" {
		return linkcheck.StatusError
	}

	status, conclusive := p.attempt(ctx, http.MethodHead, rawURL, p.cfg.HeadTimeout)
	if conclusive {
		return status
	}

	p.logger.Debug("HEAD inconclusive, retrying with GET", zap.String("url", rawURL))
	status, _ = p.attempt(ctx, http.MethodGet, rawURL, p.cfg.RetryTimeout)
	return status
}

// attempt issues one request and maps the response. The second return value
// reports whether the outcome is conclusive; an inconclusive outcome always
// carries StatusError.
func (p *Prober) attempt(ctx context.Context, method, rawURL string, timeout time.Duration) (linkcheck.Status, bool) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, method, rawURL, nil)
	if err != nil {
		p.logger.Debug("build request failed", zap.String("url", rawURL), zap.Error(err))
		return linkcheck.StatusError, true
	}
	req.Header.Set("User-Agent", p.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Debug("request failed",
			zap.String("method", method),
			zap.String("url", rawURL),
			zap.Error(err),
		)
		return linkcheck.StatusError, false
	}
	defer resp.Body.Close()

	// Drain a little body on GET to keep connections reusable.
	if method == http.MethodGet {
		_, _ = io.CopyN(io.Discard, resp.Body, maxBodyRead)
	}

	if !probe.SameURL(rawURL, resp.Request.URL.String()) {
		return linkcheck.StatusRedirect, true
	}
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return linkcheck.StatusAvailable, true
	case resp.StatusCode == http.StatusNotFound:
		return linkcheck.StatusDead, true
	default:
		return linkcheck.StatusError, false
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
