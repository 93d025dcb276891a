// Package worker implements the server and mining roles of a node.
package worker

import (
	"net"
	"sync"
	"time"

	"github.com/ardanlabs/gossipchain/foundation/blockchain/peer"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/state"
)

// idleInterval is how long the miner waits for new transactions before it
// looks at the mempool again.
const idleInterval = 100 * time.Millisecond

// Config represents the settings for the worker.
type Config struct {
	BindAddrs    []string // Addresses tried in order, the first that binds wins.
	IdleInterval time.Duration
	EvHandler    state.EventHandler
}

// =============================================================================

// Worker manages the server and mining roles for the node.
type Worker struct {
	state        *state.State
	wg           sync.WaitGroup
	shut         chan struct{}
	startMining  chan bool
	announce     chan string
	bindAddrs    []string
	idleInterval time.Duration
	evHandler    state.EventHandler

	mu       sync.Mutex
	listener net.Listener
}

// Run creates a worker, registers the worker with the state package, and
// starts up the server and mining roles. Run returns once the server is
// bound, or with an error when no address could be bound.
func Run(st *state.State, cfg Config) (*Worker, error) {
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	bindAddrs := cfg.BindAddrs
	if len(bindAddrs) == 0 {
		bindAddrs = BindCandidates(st.KnownPeers())
	}

	idle := cfg.IdleInterval
	if idle <= 0 {
		idle = idleInterval
	}

	w := Worker{
		state:        st,
		shut:         make(chan struct{}),
		startMining:  make(chan bool, 1),
		announce:     make(chan string, 1),
		bindAddrs:    bindAddrs,
		idleInterval: idle,
		evHandler:    ev,
	}

	// Register this worker with the state package.
	st.Worker = &w

	// The server reports the outcome of the bind on this channel.
	bound := make(chan error, 1)

	operations := []func(){
		func() { w.serverOperations(bound) },
		w.miningOperations,
	}

	g := len(operations)
	w.wg.Add(g)

	// We don't want to return until we know all the G's are up and running.
	hasStarted := make(chan bool)

	for _, op := range operations {
		go func(op func()) {
			defer w.wg.Done()
			hasStarted <- true
			op()
		}(op)
	}

	for i := 0; i < g; i++ {
		<-hasStarted
	}

	if err := <-bound; err != nil {
		close(w.shut)
		w.wg.Wait()
		return nil, err
	}

	return &w, nil
}

// BindCandidates returns the addresses a node tries to bind to. A node with
// no configured peers only listens on the loopback address.
func BindCandidates(knownPeers []peer.Peer) []string {
	ip := peer.Loopback
	if len(knownPeers) > 0 {
		ip = "0.0.0.0"
	}

	var addrs []string
	for _, pr := range peer.Defaults(ip) {
		addrs = append(addrs, pr.Host)
	}

	return addrs
}

// =============================================================================
// These methods implement the state.Worker interface.

// Shutdown terminates the goroutines performing work.
func (w *Worker) Shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	w.evHandler("worker: shutdown: terminate goroutines")
	close(w.shut)

	w.mu.Lock()
	if w.listener != nil {
		w.listener.Close()
	}
	w.mu.Unlock()

	w.wg.Wait()
}

// SignalStartMining wakes the miner. If there is already a signal pending in
// the channel, just return since the miner will wake up anyway.
func (w *Worker) SignalStartMining() {
	select {
	case w.startMining <- true:
	default:
	}
}

// =============================================================================

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}
