package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	_ "promofeed/cmd/promofeed/docs"
	"promofeed/internal/config"
	"promofeed/internal/constants"
	"promofeed/internal/logger"
	"promofeed/pkg/bootstrap"
	"promofeed/pkg/logging"
	"promofeed/pkg/models"
)

type rootOptions struct {
	configFile string
}

// @title        promofeed API
// @version      1.0
// @description  Extracted promotion messages by time frame.
// @BasePath     /api/v1
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "promofeed",
		Short:         "Promotion feed extractor",
		Long:          "promofeed polls an upstream comments endpoint, extracts promotion codes and serves them over HTTP",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Path to config file")

	rootCmd.AddCommand(serveCmd(opts))
	rootCmd.AddCommand(parseCmd(opts))
	rootCmd.AddCommand(extractCmd(opts))
	rootCmd.AddCommand(fetchCmd(opts))

	return rootCmd
}

func (o *rootOptions) resolveConfigFile() string {
	if o.configFile != "" {
		return o.configFile
	}
	return os.Getenv("CONFIG_FILE")
}

func (o *rootOptions) load(required bool) (*config.Config, logger.Logger, error) {
	earlyLog := logging.NewEarlyLog()

	file := o.resolveConfigFile()
	if required && file == "" {
		earlyLog.Error("Config file is required. Use --config flag or CONFIG_FILE environment variable")
		return nil, nil, fmt.Errorf("config file is required")
	}

	cfg, err := config.Load(file)
	if err != nil {
		earlyLog.Error("Failed to load config: %v", err)
		return nil, nil, err
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		earlyLog.Error("Failed to init logger: %v", err)
		return nil, nil, err
	}
	return cfg, log, nil
}

func serveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the background refresher",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load(true)
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			log.InfowCtx(ctx, "Starting promofeed")

			app := NewApp(cfg, log)
			if err := app.Initialize(ctx); err != nil {
				log.ErrorwCtx(ctx, "Failed to initialize application", "error", err)
				_ = app.Shutdown(context.Background())
				return err
			}

			runErr := app.Run(ctx)
			if runErr != nil {
				log.ErrorwCtx(ctx, "Service stopped with error", "error", runErr)
			}

			shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancelShutdown()
			if err := app.Shutdown(shutdownCtx); err != nil && runErr == nil {
				return err
			}
			return runErr
		},
	}
}

func parseCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "parse [file|-]",
		Short: "Parse a pasted JSON document into messages",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load(false)
			if err != nil {
				return err
			}
			defer log.Sync()

			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			result, err := newExtractor(cfg.Extraction, log).ParseDocument(text)
			if err != nil {
				return fmt.Errorf("failed to parse document: %w", err)
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}
}

func extractCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "extract [file|-]",
		Short: "Run the extractor over a {statusCode, body} envelope",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load(false)
			if err != nil {
				return err
			}
			defer log.Sync()

			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			var env models.RawEnvelope
			if err := json.Unmarshal([]byte(text), &env); err != nil {
				return fmt.Errorf("invalid envelope: %w", err)
			}

			return writeJSON(cmd.OutOrStdout(), newExtractor(cfg.Extraction, log).Extract(env))
		},
	}
}

func fetchCmd(opts *rootOptions) *cobra.Command {
	var frame string

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Run one refresh against the configured upstream and print the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !constants.IsValidFrame(frame) {
				return fmt.Errorf("unknown time frame: %q", frame)
			}

			cfg, log, err := opts.load(false)
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			base := bootstrap.NewBase(cfg, log)
			defer func() {
				_ = base.Shutdown(context.Background(), nil)
			}()

			if err := base.InitRedis(ctx); err != nil {
				return err
			}
			if err := base.InitBroker(); err != nil {
				return err
			}

			svc, err := newFeedService(ctx, base, newExtractor(cfg.Extraction, log), nil)
			if err != nil {
				return err
			}

			result, err := svc.Refresh(ctx, frame)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&frame, "timeframe", constants.FrameAll, "Time frame: hour, 6hours, day, week or all")
	return cmd
}

func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(raw), nil
	}

	raw, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	return string(raw), nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
