// Package state is the core API for the node. It owns the chain and the
// mempool shared by the server and mining roles and implements the rules
// for processing the messages exchanged with peers.
package state

import (
	"sync"

	"github.com/ardanlabs/gossipchain/foundation/blockchain/database"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/mempool"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/network"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/peer"
)

// EventHandler defines a function that is called when events
// occur in the processing of blocks and transactions.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for the server and mining roles.
type Worker interface {
	Shutdown()
	SignalStartMining()
}

// =============================================================================

// Config represents the configuration required to start the node.
type Config struct {
	KnownPeers []peer.Peer
	Database   database.Config
	Transport  network.Config
	EvHandler  EventHandler
}

// State manages the chain and the mempool for the node.
type State struct {
	mu   sync.RWMutex
	host string

	knownPeers     []peer.Peer
	livePeers      *peer.PeerSet
	debugBroadcast bool
	evHandler      EventHandler

	db        *database.Database
	mempool   *mempool.Mempool
	transport *network.Transport

	Worker Worker
}

// New constructs the state for a node. The node has no address until the
// server role binds and calls SetHost.
func New(cfg Config) *State {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	dbCfg := cfg.Database
	dbCfg.EvHandler = database.EventHandler(ev)

	trCfg := cfg.Transport
	trCfg.EvHandler = network.EventHandler(ev)

	return &State{
		knownPeers:     cfg.KnownPeers,
		livePeers:      peer.NewPeerSet(),
		debugBroadcast: cfg.Transport.DebugBroadcast,
		evHandler:      ev,
		db:             database.New(dbCfg),
		mempool:        mempool.New(),
		transport:      network.NewTransport(trCfg),
	}
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() {
	if s.Worker != nil {
		s.Worker.Shutdown()
	}
}

// SetHost records the address the node is bound to.
func (s *State) SetHost(host string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.host = host
}

// Host returns the address the node is bound to.
func (s *State) Host() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.host
}

// KnownPeers returns the configured peers. An empty list means the node
// talks to the default peers.
func (s *State) KnownPeers() []peer.Peer {
	peers := make([]peer.Peer, len(s.knownPeers))
	copy(peers, s.knownPeers)

	return peers
}

// LivePeers returns the peers found live when the node started.
func (s *State) LivePeers() []peer.Peer {
	return s.livePeers.Copy(s.Host())
}

// signalStartMining wakes the mining role if one is registered.
func (s *State) signalStartMining() {
	if s.Worker != nil {
		s.Worker.SignalStartMining()
	}
}
