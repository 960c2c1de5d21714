package bench

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/informalsystems/go-actor/internal/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// CLIConfig allows developers to customize their own benchmarking tool.
type CLIConfig struct {
	AppName      string
	AppShortDesc string
	AppLongDesc  string
}

var (
	flagVerbose    bool
	flagConfigFile string
)

func buildCLI(cli *CLIConfig, logger logging.Logger) *cobra.Command {
	flagCfg := DefaultConfig()
	rootCmd := &cobra.Command{
		Use:   cli.AppName,
		Short: cli.AppShortDesc,
		Long:  cli.AppLongDesc,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initLogLevel(logger)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, flagCfg)
			if err != nil {
				return err
			}
			logger.Debug(fmt.Sprintf("Configuration: %s", cfg.ToJSON()))
			if err := cfg.Validate(); err != nil {
				return NewError(ErrInvalidConfig, err)
			}
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			cancelTrap := trapInterrupts(cancel, logger)
			defer close(cancelTrap)

			stats, err := Run(ctx, cfg)
			if stats != nil {
				fmt.Fprintln(cmd.OutOrStdout(), stats.String())
			}
			return err
		},
	}
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Increase output logging verbosity to DEBUG level")
	rootCmd.Flags().StringVar(&flagConfigFile, "config", "", "An optional YAML configuration file; flags given explicitly override its values")
	rootCmd.Flags().IntVarP(&flagCfg.Producers, "producers", "p", flagCfg.Producers, "The number of producer actors sending messages to the sink")
	rootCmd.Flags().IntVarP(&flagCfg.Messages, "messages", "N", flagCfg.Messages, "The number of messages each producer sends")
	rootCmd.Flags().IntVarP(&flagCfg.MailboxCapacity, "mailbox-capacity", "c", flagCfg.MailboxCapacity, "The capacity of each actor's mailbox - set to 0 for unbounded mailboxes")
	rootCmd.Flags().StringVar(&flagCfg.OverflowStrategy, "overflow", flagCfg.OverflowStrategy, "What to do when a bounded mailbox is full - can be block or fail")
	rootCmd.Flags().VarP(&flagCfg.Timeout, "timeout", "T", "The maximum time to allow for the benchmark")
	rootCmd.Flags().StringVar(&flagCfg.StatsOutputFile, "stats-output", "", "Where to store aggregate statistics (in CSV format) for the benchmark")
	rootCmd.Flags().BoolVar(&flagCfg.MonitorEnabled, "monitor", false, "Serve metrics, lifecycle events and the admin endpoint over HTTP during the benchmark")
	rootCmd.Flags().StringVar(&flagCfg.Monitor.BindAddr, "monitor-bind", flagCfg.Monitor.BindAddr, "A host:port combination to which to bind the monitor")
	rootCmd.Flags().StringVar(&flagCfg.Monitor.AdminUsername, "admin-username", "", "The username for the monitor's admin endpoint - leave empty to disable it")
	rootCmd.Flags().StringVar(&flagCfg.Monitor.AdminPasswordHash, "admin-password-hash", "", "The bcrypt hash of the admin endpoint's password")
	rootCmd.Flags().Var(&flagCfg.MonitorWait, "monitor-wait", "How long to keep the monitor up after the benchmark completes")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Display the version of this application",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
		},
	}
	rootCmd.AddCommand(versionCmd)
	return rootCmd
}

// resolveConfig starts from the config file (if any) and then applies every
// flag that was explicitly given on the command line.
func resolveConfig(cmd *cobra.Command, flagCfg Config) (Config, error) {
	if len(flagConfigFile) == 0 {
		return flagCfg, nil
	}
	cfg, err := LoadConfigFile(flagConfigFile, DefaultConfig())
	if err != nil {
		return cfg, err
	}
	flags := cmd.Flags()
	if flags.Changed("producers") {
		cfg.Producers = flagCfg.Producers
	}
	if flags.Changed("messages") {
		cfg.Messages = flagCfg.Messages
	}
	if flags.Changed("mailbox-capacity") {
		cfg.MailboxCapacity = flagCfg.MailboxCapacity
	}
	if flags.Changed("overflow") {
		cfg.OverflowStrategy = flagCfg.OverflowStrategy
	}
	if flags.Changed("timeout") {
		cfg.Timeout = flagCfg.Timeout
	}
	if flags.Changed("stats-output") {
		cfg.StatsOutputFile = flagCfg.StatsOutputFile
	}
	if flags.Changed("monitor") {
		cfg.MonitorEnabled = flagCfg.MonitorEnabled
	}
	if flags.Changed("monitor-bind") {
		cfg.Monitor.BindAddr = flagCfg.Monitor.BindAddr
	}
	if flags.Changed("admin-username") {
		cfg.Monitor.AdminUsername = flagCfg.Monitor.AdminUsername
	}
	if flags.Changed("admin-password-hash") {
		cfg.Monitor.AdminPasswordHash = flagCfg.Monitor.AdminPasswordHash
	}
	if flags.Changed("monitor-wait") {
		cfg.MonitorWait = flagCfg.MonitorWait
	}
	return cfg, nil
}

func initLogLevel(logger logging.Logger) {
	if flagVerbose {
		logrus.SetLevel(logrus.DebugLevel)
		logger.Debug("Set logging level to DEBUG")
	}
}

// RunCLI must be executed from your `main` function in your Go code. It returns
// the process exit code.
func RunCLI(cli *CLIConfig) int {
	logger := logging.NewLogrusLogger("main")
	if err := buildCLI(cli, logger).Execute(); err != nil {
		logger.Error("Error", "err", err)
		return ExitCode(err)
	}
	return 0
}

func trapInterrupts(onKill func(), logger logging.Logger) chan struct{} {
	sigc := make(chan os.Signal, 1)
	cancelTrap := make(chan struct{})
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigc)
		select {
		case <-sigc:
			logger.Info("Caught kill signal")
			onKill()
		case <-cancelTrap:
			return
		}
	}()
	return cancelTrap
}
