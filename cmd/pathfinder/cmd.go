package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/azybler/pathfinder/pkg/config"
)

var (
	log      *zap.Logger
	conf     *config.Config
	cpath    string
	logLevel string
)

func Cmd() {
	cobra.EnableCommandSorting = false
	rootCmd := &cobra.Command{
		Use:           "pathfinder",
		Short:         "Point-to-point shortest paths over road graphs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return setup()
		},
	}

	rootCmd.PersistentFlags().StringVar(&cpath,
		"config", "", "config file (default: ./pathfinder.yaml if present)")
	rootCmd.PersistentFlags().StringVar(&logLevel,
		"log-level", "", "override log.level (debug, info, warn, error)")

	rootCmd.AddCommand(preprocessCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(findCmd())
	rootCmd.AddCommand(compareCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if log != nil {
		_ = log.Sync()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}

func setup() error {
	var err error
	if conf, err = config.Load(cpath); err != nil {
		return errors.Wrap(err, "load config")
	}
	if logLevel != "" {
		conf.Log.Level = logLevel
	}
	if log, err = config.NewLogger(conf.Log.Level, conf.Log.Format); err != nil {
		return errors.Wrap(err, "create logger")
	}
	return nil
}
