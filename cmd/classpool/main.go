package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"

	"github.com/dhamidi/classpool/classfile"
)

type config struct {
	verbosity     int
	logPath       string
	narrowTwoByte bool
}

func (c *config) parseOptions() []classfile.Option {
	var opts []classfile.Option
	if c.narrowTwoByte {
		opts = append(opts, classfile.WithNarrowTwoByteForm())
	}
	return opts
}

func (c *config) configureLogging() {
	var path *string
	if c.logPath != "" {
		path = &c.logPath
	}
	commonlog.Configure(c.verbosity, path)
}

func newRootCmd() *cobra.Command {
	cfg := &config{}

	rootCmd := &cobra.Command{
		Use:          "classpool",
		Short:        "Inspect JVM class file headers and constant pools",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg.configureLogging()
		},
	}

	rootCmd.PersistentFlags().CountVarP(&cfg.verbosity, "verbose", "v", "increase log verbosity (repeatable)")
	rootCmd.PersistentFlags().StringVar(&cfg.logPath, "log", "", "write logs to this file instead of stderr")
	rootCmd.PersistentFlags().BoolVar(&cfg.narrowTwoByte, "narrow-two-byte", false, "decode two-byte text sequences without shifting the lead byte")

	rootCmd.AddCommand(newHeaderCmd(cfg))
	rootCmd.AddCommand(newDumpCmd(cfg))
	rootCmd.AddCommand(newClassesCmd(cfg))
	rootCmd.AddCommand(newGraphCmd(cfg))
	rootCmd.AddCommand(newWatchCmd(cfg))

	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
