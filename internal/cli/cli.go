package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/ski-report/internal/config"
	"github.com/pfrederiksen/ski-report/internal/logger"
	"github.com/pfrederiksen/ski-report/internal/storage"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

// options holds the persistent flags shared by every command
type options struct {
	configPath string
	dataDir    string
	format     string
	verbose    bool
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "ski-report",
		Short: "Post the daily Beaver Creek grooming report",
		Long: `A CLI tool that posts the daily grooming map with current snow and
weather conditions to Telegram, Twitter and SMS recipients.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "Data directory for run history (overrides DATA_DIR)")
	cmd.PersistentFlags().StringVar(&opts.format, "format", "text", "Output format: text or json")
	cmd.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "Enable debug logging")

	cmd.AddCommand(
		newSendCmd(opts),
		newPreviewCmd(opts),
		newStatusCmd(opts),
	)

	return cmd
}

// setup loads configuration and installs the default logger
func (o *options) setup() (*config.Config, OutputFormat, error) {
	format := OutputFormat(strings.ToLower(o.format))
	if format != FormatText && format != FormatJSON {
		return nil, "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", o.format)
	}

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, "", fmt.Errorf("loading configuration: %w", err)
	}
	if o.dataDir != "" {
		cfg.DataDir = o.dataDir
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, "", err
	}
	if o.verbose {
		level = logger.LevelDebug
	}
	logger.SetDefault(logger.New(level, os.Stderr))

	return cfg, format, nil
}

func newSendCmd(opts *options) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Fetch, compose and deliver today's report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, format, err := opts.setup()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			store, err := storage.New(cfg.DataDir)
			if err != nil {
				return fmt.Errorf("initializing storage: %w", err)
			}

			p, err := newPipeline(cfg, dryRun, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			for _, d := range p.disabled {
				logger.Info("Channel disabled", logger.Fields{"channel": d.Name, "reason": d.Reason})
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			report, runErr := p.runner.Run(ctx)

			if err := store.SaveReport(report); err != nil {
				logger.Error("Failed to save run report", logger.Fields{"data_dir": store.Dir()}, err)
			}
			if err := p.metrics.Push(ctx, cfg.PushgatewayURL); err != nil {
				logger.Warn("Failed to push metrics", nil, err)
			}

			if err := WriteReport(cmd.OutOrStdout(), report, format); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
			if runErr != nil {
				return fmt.Errorf("bulletin not sent: %w", runErr)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print what would be posted instead of posting")

	return cmd
}

func newPreviewCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "preview",
		Short: "Show the caption each channel would receive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, format, err := opts.setup()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			p, err := newPipeline(cfg, true, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			report, err := p.runner.Preview(cmd.Context())
			if err != nil {
				return err
			}
			if len(report.Captions) == 0 {
				report.Captions[defaultCaptionKey] = p.composer.Compose(report.Record, report.DisplayDate, defaultVariant)
			}

			return WritePreview(cmd.OutOrStdout(), report, format)
		},
	}
}

func newStatusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the last recorded run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, format, err := opts.setup()
			if err != nil {
				return err
			}

			store, err := storage.New(cfg.DataDir)
			if err != nil {
				return fmt.Errorf("initializing storage: %w", err)
			}

			report, err := store.LoadLastReport()
			if errors.Is(err, storage.ErrNoReport) {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
				return nil
			}
			if err != nil {
				return err
			}
			history, err := store.LoadHistory()
			if err != nil {
				return err
			}

			return WriteStatus(cmd.OutOrStdout(), report, history, format)
		},
	}
}

// Execute runs the CLI
func Execute(version string) {
	cmd := NewRootCmd()
	cmd.Version = version
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
	os.Exit(ExitSuccess)
}
