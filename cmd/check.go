package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pastchais/check-notion-url/internal/config"
	"github.com/pastchais/check-notion-url/internal/linkcheck"
	"github.com/pastchais/check-notion-url/internal/probe/headless"
	"github.com/pastchais/check-notion-url/internal/probe/httpprobe"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Runs one check pass over the database",
		Long: `Fetches every matching link record, archives duplicate URLs, probes each
remaining URL under the configured concurrency cap, and writes the resulting
status back to the database. Individual record failures are logged and never
fail the run.`,

		RunE: runCheckCommand,
	}
}

func runCheckCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	cfg := appInstance.Config
	logger := appInstance.Logger.With(zap.String("run_id", uuid.NewString()))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := linkcheck.NewRunner(linkcheck.RunnerConfig{
		Concurrency: cfg.Checker.Concurrency,
		Delay:       cfg.Delay(),
	}, logger)

	pipeline := linkcheck.NewPipeline(
		appInstance.Store,
		classifierFactory(cfg, logger),
		runner,
		logger,
	)

	summary, err := pipeline.Run(ctx)
	if err != nil {
		return fmt.Errorf("run check: %w", err)
	}

	logger.Info("check finished",
		zap.Int("available", summary.ByStatus[linkcheck.StatusAvailable]),
		zap.Int("redirect", summary.ByStatus[linkcheck.StatusRedirect]),
		zap.Int("dead", summary.ByStatus[linkcheck.StatusDead]),
		zap.Int("error", summary.ByStatus[linkcheck.StatusError]),
	)
	return nil
}

// classifierFactory builds the configured probing strategy. The browser
// session is only launched when the pipeline actually has URLs to probe, and
// the returned release closes it at batch end.
func classifierFactory(cfg config.Config, logger *zap.Logger) linkcheck.ClassifierFactory {
	return func(_ context.Context) (linkcheck.Classifier, func(), error) {
		if cfg.Probe.Strategy == "browser" {
			session, err := headless.NewChromeSession(headless.Config{
				UserAgent:  cfg.Probe.UserAgent,
				NavTimeout: time.Duration(cfg.Headless.NavTimeoutSeconds) * time.Second,
			})
			if err != nil {
				return nil, nil, fmt.Errorf("start browser session: %w", err)
			}
			return headless.New(session, logger), session.Close, nil
		}

		prober := httpprobe.New(httpprobe.Config{
			UserAgent:    cfg.Probe.UserAgent,
			HeadTimeout:  time.Duration(cfg.Probe.HeadTimeoutSeconds) * time.Second,
			RetryTimeout: time.Duration(cfg.Probe.RetryTimeoutSeconds) * time.Second,
			MaxRedirects: cfg.Probe.MaxRedirects,
		}, logger)
		return prober, func() {}, nil
	}
}
