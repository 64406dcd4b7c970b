// Package headless implements the rendering-engine URL prober on top of
// headless Chrome via chromedp.
package headless

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/pastchais/check-notion-url/internal/linkcheck"
	"github.com/pastchais/check-notion-url/internal/probe"
)

// NavResult is the observable outcome of one browser navigation.
type NavResult struct {
	FinalURL   string
	StatusCode int
}

// Session is one browsing engine capable of navigating URLs. Each Navigate
// call runs in its own isolated browsing context; the session itself is safe
// to share across concurrent probes.
type Session interface {
	Navigate(ctx context.Context, url string) (NavResult, error)
	Close()
}

// Prober classifies URLs by loading them in a browser session.
type Prober struct {
	session Session
	logger  *zap.Logger
}

// New builds a Prober around an existing session.
func New(session Session, logger *zap.Logger) *Prober {
	return &Prober{session: session, logger: logger}
}

// Classify navigates to rawURL and maps the outcome to a liveness status.
func (p *Prober) Classify(ctx context.Context, rawURL string) linkcheck.Status {
	if rawURL == "" {
		return linkcheck.StatusError
	}
	res, err := p.session.Navigate(ctx, rawURL)
	if err != nil {
		p.logger.Debug("navigation failed", zap.String("url", rawURL), zap.Error(err))
	}
	return decide(rawURL, res, err)
}

// decide maps a navigation outcome to a status. A navigation error whose
// message mentions 404 counts as a dead link; the redirect check tolerates a
// trailing-slash-only difference.
func decide(rawURL string, res NavResult, err error) linkcheck.Status {
	if err != nil {
		if strings.Contains(err.Error(), "404") {
			return linkcheck.StatusDead
		}
		return linkcheck.StatusError
	}
	if !probe.SameURL(rawURL, res.FinalURL) {
		return linkcheck.StatusRedirect
	}
	switch {
	case res.StatusCode >= 200 && res.StatusCode < 400:
		return linkcheck.StatusAvailable
	case res.StatusCode == 404:
		return linkcheck.StatusDead
	default:
		return linkcheck.StatusError
	}
}
