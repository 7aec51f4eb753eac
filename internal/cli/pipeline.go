package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/jonboulle/clockwork"

	"github.com/pfrederiksen/ski-report/internal/artifact"
	"github.com/pfrederiksen/ski-report/internal/bulletin"
	"github.com/pfrederiksen/ski-report/internal/caption"
	"github.com/pfrederiksen/ski-report/internal/config"
	"github.com/pfrederiksen/ski-report/internal/dispatch"
	"github.com/pfrederiksen/ski-report/internal/metrics"
	"github.com/pfrederiksen/ski-report/internal/notifier"
	"github.com/pfrederiksen/ski-report/internal/scraper"
	"github.com/pfrederiksen/ski-report/internal/telegram"
)

// defaultCaptionKey labels the preview caption shown when no channel is enabled
const defaultCaptionKey = "default"

var defaultVariant = caption.Variant{}

// pipeline is one configured bulletin runner with its collaborators
type pipeline struct {
	runner   *bulletin.Runner
	composer caption.Composer
	metrics  *metrics.Metrics
	disabled []notifier.Disabled
}

func newPipeline(cfg *config.Config, dryRun bool, out io.Writer) (*pipeline, error) {
	channels, disabled, err := notifier.FromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("building channels: %w", err)
	}
	if dryRun {
		channels = notifier.WrapDryRun(channels, out)
	}

	alerter, err := newAlerter(cfg)
	if err != nil {
		return nil, err
	}

	clock := clockwork.NewRealClock()
	m := metrics.New()
	composer := caption.New(cfg.Title)

	runner := bulletin.NewRunner(bulletin.Options{
		Source:   scraper.New(cfg.SourceURL, cfg.HTTPTimeout),
		Producer: artifact.NewProducer(cfg.PDFURL, cfg.HTTPTimeout, artifact.FitzRasterizer{}, cfg.RenderScale),
		Composer: composer,
		Dispatcher: dispatch.New(dispatch.Options{
			Concurrency: cfg.SendConcurrency,
			Timeout:     cfg.SendTimeout,
			Interval:    cfg.SendInterval,
			Metrics:     m,
			Clock:       clock,
		}),
		Channels: channels,
		Location: cfg.Location(),
		Clock:    clock,
		Metrics:  m,
		Alerter:  alerter,
		DryRun:   dryRun,
	})

	return &pipeline{
		runner:   runner,
		composer: composer,
		metrics:  m,
		disabled: disabled,
	}, nil
}

// newAlerter returns a Telegram client for operator alerts, or nil when no
// alert chat is configured.
func newAlerter(cfg *config.Config) (bulletin.Alerter, error) {
	if cfg.Telegram.AlertChatID == "" {
		return nil, nil
	}
	if cfg.Telegram.BotToken == "" {
		return nil, errors.New("TELEGRAM_ALERT_CHAT_ID requires a Telegram bot token")
	}
	client, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.AlertChatID)
	if err != nil {
		return nil, fmt.Errorf("creating alert client: %w", err)
	}
	return client, nil
}
