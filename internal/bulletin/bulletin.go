package bulletin

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/pfrederiksen/ski-report/internal/caption"
	"github.com/pfrederiksen/ski-report/internal/conditions"
	"github.com/pfrederiksen/ski-report/internal/dispatch"
	"github.com/pfrederiksen/ski-report/internal/logger"
	"github.com/pfrederiksen/ski-report/internal/metrics"
	"github.com/pfrederiksen/ski-report/internal/notifier"
	"github.com/pfrederiksen/ski-report/internal/scraper"
)

// Source returns the raw text of the conditions page
type Source interface {
	Fetch(ctx context.Context) (string, error)
}

// Producer returns the rendered grooming map image
type Producer interface {
	Produce(ctx context.Context) ([]byte, error)
}

// Alerter notifies an operator when a run cannot post anything
type Alerter interface {
	SendMessage(ctx context.Context, text string) error
}

// Report describes one run
type Report struct {
	RunID         string            `json:"run_id"`
	StartedAt     time.Time         `json:"started_at"`
	FinishedAt    time.Time         `json:"finished_at"`
	DisplayDate   string            `json:"display_date"`
	DryRun        bool              `json:"dry_run,omitempty"`
	Record        conditions.Record `json:"record"`
	Captions      map[string]string `json:"captions"`
	ArtifactBytes int               `json:"artifact_bytes"`
	SourceError   string            `json:"source_error,omitempty"`
	ArtifactError string            `json:"artifact_error,omitempty"`
	Results       []dispatch.Result `json:"results"`
}

// Outcome classifies the run for metrics and status output
func (r *Report) Outcome() string {
	switch {
	case r.ArtifactError != "":
		return metrics.OutcomeFailure
	case r.SourceError != "" || dispatch.Succeeded(r.Results) < len(r.Results):
		return metrics.OutcomeDegraded
	default:
		return metrics.OutcomeSuccess
	}
}

// Duration returns how long the run took
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Options configures a Runner
type Options struct {
	Source     Source
	Producer   Producer
	Composer   caption.Composer
	Dispatcher *dispatch.Dispatcher
	Channels   []notifier.Channel
	Location   *time.Location
	Clock      clockwork.Clock
	Metrics    *metrics.Metrics
	// Alerter is optional
	Alerter Alerter
	DryRun  bool
}

// Runner executes bulletin runs
type Runner struct {
	source     Source
	producer   Producer
	composer   caption.Composer
	dispatcher *dispatch.Dispatcher
	channels   []notifier.Channel
	loc        *time.Location
	clock      clockwork.Clock
	metrics    *metrics.Metrics
	alerter    Alerter
	dryRun     bool
}

// NewRunner creates a Runner
func NewRunner(opts Options) *Runner {
	r := &Runner{
		source:     opts.Source,
		producer:   opts.Producer,
		composer:   opts.Composer,
		dispatcher: opts.Dispatcher,
		channels:   opts.Channels,
		loc:        opts.Location,
		clock:      opts.Clock,
		metrics:    opts.Metrics,
		alerter:    opts.Alerter,
		dryRun:     opts.DryRun,
	}
	if r.loc == nil {
		r.loc = time.UTC
	}
	if r.clock == nil {
		r.clock = clockwork.NewRealClock()
	}
	if r.dispatcher == nil {
		r.dispatcher = dispatch.New(dispatch.Options{Metrics: opts.Metrics, Clock: r.clock})
	}
	return r
}

// Run executes one complete bulletin. The returned error is non-nil only when
// the grooming map could not be produced; the report is returned either way.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	report := r.newReport()

	var (
		raw       string
		sourceErr error
		image     []byte
		imageErr  error
	)

	// Neither fetch cancels the other.
	var g errgroup.Group
	g.Go(func() error {
		raw, sourceErr = r.source.Fetch(ctx)
		return nil
	})
	g.Go(func() error {
		image, imageErr = r.producer.Produce(ctx)
		return nil
	})
	_ = g.Wait()

	r.applySource(report, raw, sourceErr)

	if imageErr != nil {
		report.ArtifactError = imageErr.Error()
		logger.Error("Grooming map unavailable", logger.Fields{"run_id": report.RunID}, imageErr)
		r.alert(ctx, report, imageErr)
		r.finish(report)
		return report, imageErr
	}

	report.ArtifactBytes = len(image)
	r.metrics.ObserveArtifact(len(image))
	report.Captions = r.composeAll(report)

	if len(r.channels) == 0 {
		logger.Warn("No channels enabled, nothing to send", logger.Fields{"run_id": report.RunID}, nil)
	}
	report.Results = r.dispatcher.Dispatch(ctx, image, report.Captions, r.channels)

	r.finish(report)
	logger.Info("Bulletin run complete", logger.Fields{
		"run_id":    report.RunID,
		"outcome":   report.Outcome(),
		"delivered": dispatch.Succeeded(report.Results),
		"channels":  len(report.Results),
		"fields":    report.Record.FieldCount(),
	})
	return report, nil
}

// Preview fetches and extracts the conditions and composes every caption
// without producing the map or sending anything.
func (r *Runner) Preview(ctx context.Context) (*Report, error) {
	report := r.newReport()
	report.DryRun = true

	raw, err := r.source.Fetch(ctx)
	r.applySource(report, raw, err)
	report.Captions = r.composeAll(report)
	report.FinishedAt = r.clock.Now()

	return report, nil
}

func (r *Runner) newReport() *Report {
	now := r.clock.Now()
	return &Report{
		RunID:       uuid.NewString(),
		StartedAt:   now,
		DisplayDate: conditions.FormatDisplayDate(now, r.loc),
		DryRun:      r.dryRun,
		Captions:    map[string]string{},
	}
}

// applySource extracts the record; a failed fetch leaves every field absent.
func (r *Runner) applySource(report *Report, raw string, err error) {
	if err != nil {
		report.SourceError = err.Error()
		raw = ""
		logger.Warn("Conditions source unavailable, sending map only", logger.Fields{
			"run_id": report.RunID,
		}, err)
	}

	report.Record = scraper.ExtractRecord(raw, report.StartedAt)
	fields := report.Record.FieldCount()
	r.metrics.ObserveSource(fields)
	if err == nil && fields == 0 {
		logger.Warn("No conditions extracted, page layout may have changed", logger.Fields{
			"run_id": report.RunID,
		}, nil)
	}
}

func (r *Runner) composeAll(report *Report) map[string]string {
	captions := make(map[string]string, len(r.channels))
	for _, ch := range r.channels {
		captions[ch.Name()] = r.composer.Compose(report.Record, report.DisplayDate, ch.Variant())
	}
	return captions
}

func (r *Runner) finish(report *Report) {
	report.FinishedAt = r.clock.Now()
	r.metrics.ObserveRun(report.Outcome(), report.Duration(), report.FinishedAt)
}

func (r *Runner) alert(ctx context.Context, report *Report, cause error) {
	if r.alerter == nil || r.dryRun {
		return
	}

	text := fmt.Sprintf("Ski report run %s failed on %s: %v", report.RunID, report.DisplayDate, cause)
	if err := r.alerter.SendMessage(ctx, text); err != nil {
		logger.Error("Failed to send operator alert", logger.Fields{"run_id": report.RunID}, err)
	}
}
