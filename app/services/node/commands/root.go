// Package commands contains the node's command line commands.
package commands

import (
	"errors"

	"github.com/ardanlabs/gossipchain/foundation/blockchain/peer"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	log   *zap.SugaredLogger
	build string
	peers string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:           "node",
	Short:         "Proof of work ledger node",
	SilenceUsage:  true,
	SilenceErrors: true,

	// Configuration flags are read by the config parser.
	FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
}

// Execute adds all child commands to the root command and runs the one
// selected on the command line.
func Execute(l *zap.SugaredLogger, b string) error {
	log = l
	build = b

	err := rootCmd.Execute()
	if errors.Is(err, errHelp) {
		return nil
	}

	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&peers, "peers", "", "Comma separated list of peers, a bare port is a port on 127.0.0.1.")

	rootCmd.AddCommand(mineCmd)
	rootCmd.AddCommand(broadcastCmd)
}

// loadConfig parses the configuration. The peers flag overrides any peers
// set in the environment.
func loadConfig(cmd *cobra.Command) (Config, []peer.Peer, error) {
	cfg, err := parseConfig(build)
	if err != nil {
		return Config{}, nil, err
	}

	if cmd.Flags().Changed("peers") {
		cfg.Peers = peers
	}

	return cfg, peer.Parse(cfg.Peers), nil
}
