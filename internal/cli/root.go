package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Arthur1/request-cache/internal/config"
)

// app carries what every subcommand needs once the config is loaded.
type app struct {
	v          *viper.Viper
	configFile string

	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	closers  []io.Closer
}

func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = newLogger(cfg.Log, cmd.ErrOrStderr())
	a.registry = prometheus.NewRegistry()
	return nil
}

func (a *app) close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Warn("failed to close", slog.Any("error", err))
		}
	}
	a.closers = nil
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}
	cmd := &cobra.Command{
		Use:   "jobsearch",
		Short: "Search remote job listings through a response cache",
		Long: `jobsearch queries the Remotive remote-jobs API. Responses are cached
in memory or in redis, identical concurrent requests share one upstream call
and interactive queries are debounced.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default searches ./config.yaml, $HOME/.jobsearch, /etc/jobsearch)")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: text, json")
	flags.String("cache-engine", "", "cache engine: memory, redis")
	flags.String("base-url", "", "job listings API endpoint")
	bindFlags(a.v, flags, map[string]string{
		"log.level":        "log-level",
		"log.format":       "log-format",
		"cache.engine":     "cache-engine",
		"upstream.baseURL": "base-url",
	})

	cmd.AddCommand(
		newSearchCmd(a),
		newWatchCmd(a),
		newSavedCmd(a),
		newServeCmd(a),
		newVersionCmd(),
	)
	return cmd
}

// Execute runs the command line with args taken from os.Args.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}
}
