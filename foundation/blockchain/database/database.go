// Package database maintains the in memory chain of blocks and performs the
// proof of work needed to mine new blocks.
package database

import (
	"fmt"
	"sync"
)

// EventHandler defines a function that is called when events
// occur in the processing of blocks.
type EventHandler func(v string, args ...any)

// Config represents the settings the chain is constructed with.
type Config struct {
	MinTxPerBlock    int
	Difficulty       int
	ConcurrentHashes uint64
	DebugPerf        bool
	EvHandler        EventHandler
}

// Database manages the append only chain of blocks. Every method acquires
// the same lock for the duration of the single operation.
type Database struct {
	mu    sync.Mutex
	chain []Block

	minTxPerBlock    int
	difficulty       int
	concurrentHashes uint64
	debugPerf        bool
	evHandler        EventHandler
}

// New constructs an empty chain with the specified settings.
func New(cfg Config) *Database {
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	concurrentHashes := cfg.ConcurrentHashes
	if concurrentHashes == 0 {
		concurrentHashes = 1
	}

	return &Database{
		minTxPerBlock:    cfg.MinTxPerBlock,
		difficulty:       cfg.Difficulty,
		concurrentHashes: concurrentHashes,
		debugPerf:        cfg.DebugPerf,
		evHandler:        ev,
	}
}

// Add appends the block to the end of the chain. The block is not validated,
// neither its proof of work nor its link to the current tail.
func (db *Database) Add(block Block) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var prev string
	if block.Prev != "" {
		prev = fmt.Sprintf(" (prev %s)", short(block.Prev))
	}

	var perf string
	if db.debugPerf {
		perf = fmt.Sprintf(" -> %.3fs", float64(block.ElapsedMS)/1000)
	}

	db.evHandler("new block from %s -- %d tx(s) @ %s:<%d>%s%s", block.Origin, block.Len(), short(block.Hash), block.Nonce, prev, perf)

	db.chain = append(db.chain, block)
}

// Copy returns a copy of all the blocks in the chain.
func (db *Database) Copy() []Block {
	db.mu.Lock()
	defer db.mu.Unlock()

	blocks := make([]Block, len(db.chain))
	copy(blocks, db.chain)

	return blocks
}

// Count returns the number of blocks in the chain.
func (db *Database) Count() int {
	db.mu.Lock()
	defer db.mu.Unlock()

	return len(db.chain)
}

// LatestHash returns the hash of the tail of the chain. An empty string is
// returned when the chain is empty.
func (db *Database) LatestHash() string {
	db.mu.Lock()
	defer db.mu.Unlock()

	if len(db.chain) == 0 {
		return ""
	}

	return db.chain[len(db.chain)-1].Hash
}

// ConcurrentHashes returns the number of nonces searched per mining batch.
func (db *Database) ConcurrentHashes() uint64 {
	return db.concurrentHashes
}

// Difficulty returns the number of leading zeros a block hash requires.
func (db *Database) Difficulty() int {
	return db.difficulty
}

// OkToMine reports whether there are enough transactions to mine a block.
func (db *Database) OkToMine(trans []Tx) bool {
	return len(trans) >= db.minTxPerBlock
}
