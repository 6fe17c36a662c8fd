package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

//go:generate go tool github.com/cpuguy83/go-md2man/v2 -in ../docs/sockdiag.1.md -out ../docs/sockdiag.1

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "info", "log level (trace, debug, info, warn or error)")
	rootCmd.PersistentFlags().BoolVar(&logTimeFlag, "log-time", false, "include timestamps in log lines")

	queryCmd.Flags().StringVar(&confPathFlag, "conf", "", "path to the YAML configuration file")
	queryCmd.Flags().StringVar(&familyFlag, "family", "inet", "address family to query (only inet is supported)")
	queryCmd.Flags().StringSliceVar(&statesFlag, "states", []string{"LISTEN"}, "TCP states to query (i.e. LISTEN,ESTABLISHED or ALL)")
	queryCmd.Flags().IntVar(&diagVersionFlag, "diag-version", 1, "request flavour: 1 for TCPDIAG_GETSOCK, 2 for SOCK_DIAG_BY_FAMILY")
	queryCmd.Flags().StringVar(&formatFlag, "format", "text", "output format (text or json)")
	queryCmd.Flags().BoolVar(&verboseFlag, "verbose", false, "show every socket attribute")
	queryCmd.Flags().BoolVar(&ownersFlag, "owners", false, "resolve the processes owning each socket through procfs")
	queryCmd.Flags().BoolVar(&metricsFlag, "metrics", false, "dump query metrics to stderr in the Prometheus text format")
}

var (
	rootCmd = &cobra.Command{
		Use:   "sockdiag",
		Short: "List TCP sockets through the sock_diag netlink interface.",
		Long: "sockdiag asks the kernel for the TCP sockets in a given set of states\n" +
			"and prints the local address and port of each of them.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(logLevelFlag)
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Get the built version.",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("built commit: %s\n", builtCommit)
		},
	}

	queryCmd = &cobra.Command{
		Use:   "query",
		Short: "Dump the TCP sockets matching the requested states.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf := DefaultConf()
			if confPathFlag != "" {
				var err error
				if conf, err = ReadConf(confPathFlag); err != nil {
					return err
				}
			}

			applyFlags(cmd, conf)
			slog.Debug("running query", "conf", conf)

			return runQuery(conf, os.Stdout, os.Stderr)
		},
	}

	logLevelFlag    string
	logTimeFlag     bool
	confPathFlag    string
	familyFlag      string
	statesFlag      []string
	diagVersionFlag int
	formatFlag      string
	verboseFlag     bool
	ownersFlag      bool
	metricsFlag     bool

	builtCommit = "dev"
)

func init() {
	// Disable completion please!
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Add the different sub-commands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(queryCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
