package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/ardanlabs/gossipchain/foundation/blockchain/database"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/network"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/txgen"
	"github.com/spf13/cobra"
)

// broadcastCmd generates transactions and sends them to the network.
var broadcastCmd = &cobra.Command{
	Use:   "broadcast",
	Short: "Generate transactions and broadcast them to the peers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return broadcast(cmd)
	},
}

func broadcast(cmd *cobra.Command) error {
	cfg, knownPeers, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	switch len(knownPeers) {
	case 0:
		log.Infow("startup", "status", "broadcasting to all")
	default:
		log.Infow("startup", "status", "broadcasting", "peers", knownPeers)
	}

	ev := func(v string, args ...any) {
		log.Infow(fmt.Sprintf(v, args...), "traceid", "00000000-0000-0000-0000-000000000000")
	}

	trCfg := cfg.Settings.Transport()
	trCfg.EvHandler = ev
	tr := network.NewTransport(trCfg)

	gen := txgen.New(txgen.Config{
		Random:    cfg.Settings.BroadcastRandom,
		EvHandler: ev,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	send := func(tx database.Tx) error {
		return network.Broadcast(tr, network.BroadcastTx, tx, knownPeers, "")
	}

	if err := gen.Run(ctx, send); err != nil && ctx.Err() == nil {
		return err
	}

	log.Infow("shutdown", "status", "broadcast stopped")

	return nil
}
