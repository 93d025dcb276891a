package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/gossipchain/app/services/node/handlers"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/state"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/worker"
	"github.com/ardanlabs/gossipchain/foundation/events"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// mineCmd runs a node that takes part in the network and mines blocks.
var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Start a node that serves peers and mines blocks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return mine(cmd)
	},
}

func mine(cmd *cobra.Command) error {

	// =========================================================================
	// Configuration

	cfg, knownPeers, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log.Infow("starting node", "version", build)
	defer log.Infow("shutdown complete")

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Blockchain Support

	// The blockchain packages accept a function of this signature to allow the
	// application to log. These raw messages are also sent to any websocket
	// client that is connected into the system through the events package.
	evts := events.New()
	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", "00000000-0000-0000-0000-000000000000")
		evts.Send(s)
	}

	// The state value owns the chain and the mempool shared by the server
	// and mining roles.
	st := state.New(state.Config{
		KnownPeers: knownPeers,
		Database:   cfg.Settings.Database(),
		Transport:  cfg.Settings.Transport(),
		EvHandler:  ev,
	})

	// The worker binds the node, syncs with a live peer and starts mining.
	// It registers itself with the state.
	if _, err := worker.Run(st, worker.Config{EvHandler: ev}); err != nil {
		return fmt.Errorf("starting node: %w", err)
	}
	defer st.Shutdown()

	log.Infow("startup", "status", "node started", "host", st.Host(), "peers", knownPeers)

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug v1 router started", "host", cfg.Web.DebugHost)

	debugMux := handlers.DebugMux(build, log, st)

	// Not concerned with shutting this down with load shedding.
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug v1 router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Service Start/Stop Support

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	// =========================================================================
	// Start Public Service

	var public *http.Server
	if cfg.Web.PublicHost != "" {
		log.Infow("startup", "status", "initializing V1 public API support")

		publicMux := handlers.PublicMux(handlers.MuxConfig{
			Shutdown: shutdown,
			Log:      log,
			State:    st,
			Evts:     evts,
		})

		public = &http.Server{
			Addr:         cfg.Web.PublicHost,
			Handler:      publicMux,
			ReadTimeout:  cfg.Web.ReadTimeout,
			WriteTimeout: cfg.Web.WriteTimeout,
			IdleTimeout:  cfg.Web.IdleTimeout,
			ErrorLog:     zap.NewStdLog(log.Desugar()),
		}

		// Several nodes can run on one machine and only one of them gets the
		// port, so the node keeps running without its public API.
		go func() {
			log.Infow("startup", "status", "public api router started", "host", public.Addr)
			if err := public.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorw("shutdown", "status", "public api router closed", "host", public.Addr, "ERROR", err)
			}
		}()
	}

	// =========================================================================
	// Shutdown

	// Blocking main and waiting for shutdown.
	sig := <-shutdown
	log.Infow("shutdown", "status", "shutdown started", "signal", sig)
	defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

	// Release any web sockets that are currently active.
	log.Infow("shutdown", "status", "shutdown web socket channels")
	evts.Shutdown()

	if public == nil {
		return nil
	}

	// Give outstanding requests a deadline for completion.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
	defer cancel()

	// Asking listener to shut down and shed load.
	log.Infow("shutdown", "status", "shutdown public API started")
	if err := public.Shutdown(ctx); err != nil {
		public.Close()
		return fmt.Errorf("could not stop public service gracefully: %w", err)
	}

	return nil
}
