package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/linechat/internal/app"
	"github.com/vovakirdan/linechat/internal/config"
	applog "github.com/vovakirdan/linechat/internal/log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// rootOptions are flags shared by every subcommand.
type rootOptions struct {
	configPath string
	envFile    string
	overrides  config.Config
}

// loadConfig resolves configuration: .env file, then config.yaml and
// LINECHAT_* variables, then command line flags.
func (o *rootOptions) loadConfig() (config.Config, string, error) {
	if err := godotenv.Load(o.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config.Config{}, "", fmt.Errorf("load %s: %w", o.envFile, err)
	}

	bootLogger := applog.New(o.overrides.LogLevel, o.overrides.LogFormat)
	cfg, path, err := config.Load(bootLogger, o.configPath)
	if err != nil {
		return cfg, path, fmt.Errorf("load config: %w", err)
	}
	cfg.UpdateFrom(o.overrides)
	return cfg, path, nil
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "linechat",
		Short:         "Line-oriented chat relay with rooms and private messages",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, path, err := opts.loadConfig()
			if err != nil {
				return err
			}

			logger := applog.New(cfg.LogLevel, cfg.LogFormat)
			logger.Info().
				Str("config", path).
				Str("addr", cfg.Addr).
				Str("http_addr", cfg.HTTPAddr).
				Msg("starting linechat server")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, err := app.New(&cfg, logger)
			if err != nil {
				return err
			}
			if err := application.Run(ctx); err != nil {
				return fmt.Errorf("server exited with error: %w", err)
			}
			logger.Info().Msg("server stopped")
			return nil
		},
	}

	persistent := cmd.PersistentFlags()
	persistent.StringVarP(&opts.configPath, "config", "c", "", "path to config.yaml")
	persistent.StringVar(&opts.envFile, "env-file", ".env", "dotenv file with LINECHAT_* variables")
	persistent.StringVar(&opts.overrides.JournalPath, "journal", "", "sqlite session journal path")
	persistent.StringVar(&opts.overrides.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	persistent.StringVar(&opts.overrides.LogFormat, "log-format", "", "log format (console, json)")

	flags := cmd.Flags()
	flags.StringVar(&opts.overrides.Addr, "addr", "", "TCP chat listen address")
	flags.StringVar(&opts.overrides.HTTPAddr, "http-addr", "", "HTTP API and WebSocket listen address")
	flags.IntVar(&opts.overrides.MailboxSize, "mailbox-size", 0, "per-client outbound queue capacity")
	flags.DurationVar(&opts.overrides.ShutdownTimeout, "shutdown-timeout", 0, "graceful shutdown timeout")

	cmd.AddCommand(newSessionsCmd(opts))
	return cmd
}
