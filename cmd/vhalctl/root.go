package main

import (
	"context"
	"os/signal"
	"strings"
	"syscall"

	"github.com/danmuck/vhalctl/internal/config"
	"github.com/danmuck/vhalctl/internal/logging"
	"github.com/danmuck/vhalctl/internal/observability"
	"github.com/danmuck/vhalctl/internal/protocol/session"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// cli holds the settings of one command invocation.
type cli struct {
	configPath string
	addr       string
	logLevel   string

	cfg config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{cfg: config.Default()}
	root := &cobra.Command{
		Use:   "vhalctl",
		Short: "Inject and inspect vehicle properties over the emulator injection port",
		Long: `vhalctl talks to a vehicle property service over its length-prefixed
protobuf injection port. Every command bootstraps a session first, loading
the property type registry from GET_CONFIG_ALL, then issues its request.

Forward the port before use, for example:
  adb forward tcp:33455 tcp:33455`,
		SilenceUsage:      true,
		PersistentPreRunE: c.loadSettings,
	}
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (.toml, .yaml or .yml)")
	root.PersistentFlags().StringVar(&c.addr, "addr", "", "injection address, overrides the config file")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")

	root.AddCommand(
		c.newConfigsCmd(),
		c.newGetConfigCmd(),
		c.newGetCmd(),
		c.newSetCmd(),
		c.newMonitorCmd(),
		newConfigCmd(),
	)
	return root
}

// Execute runs the root command until it returns or the process is signalled.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}

func (c *cli) loadSettings(_ *cobra.Command, _ []string) error {
	logging.ConfigureRuntime()
	observability.RegisterMetrics()

	if c.configPath != "" {
		loaded, err := config.Load(c.configPath)
		if err != nil {
			return err
		}
		c.cfg = loaded
	}
	if v := strings.TrimSpace(c.addr); v != "" {
		c.cfg.Session.Addr = v
	}
	level := c.cfg.LogLevel
	if c.logLevel != "" {
		level = c.logLevel
	}
	return logging.SetLevel(level)
}

// openSession dials the configured address and bootstraps a session on it.
// The caller closes the returned closer.
func (c *cli) openSession(ctx context.Context) (*session.Session, func() error, error) {
	conn, err := session.Dial(ctx, c.cfg.Session)
	if err != nil {
		return nil, nil, err
	}
	sess := session.New(conn)
	if err := sess.Bootstrap(); err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	log.Debug().
		Str("session", sess.ID()).
		Str("addr", c.cfg.Session.Addr).
		Int("properties", sess.Registry().Len()).
		Msg("session ready")
	return sess, conn.Close, nil
}
