// Package mempool maintains the mempool for the blockchain.
package mempool

import (
	"sort"
	"sync"

	"github.com/ardanlabs/gossipchain/foundation/blockchain/database"
)

// Mempool represents the ordered collection of transactions waiting to be
// mined into a block.
type Mempool struct {
	mu   sync.Mutex
	pool []database.Tx
}

// New constructs a new empty mempool.
func New() *Mempool {
	return &Mempool{}
}

// Count returns the current number of transaction in the pool.
func (mp *Mempool) Count() int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	return len(mp.pool)
}

// Add offers a transaction to the mempool and reports if it was accepted.
// An exact duplicate is rejected. A transaction for a wallet pair already
// in the pool with a strictly lower fee replaces that entry. Any other
// transaction is appended, which means the same wallet pair can appear more
// than once when the new fee is equal or lower.
func (mp *Mempool) Add(tx database.Tx) bool {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	for _, t := range mp.pool {
		if t == tx {
			return false
		}
	}

	for i, t := range mp.pool {
		if t.SamePair(tx) && t.Fee < tx.Fee {
			mp.pool[i] = tx
			return true
		}
	}

	mp.pool = append(mp.pool, tx)

	return true
}

// Remove deletes the first transaction equal to the specified one and
// reports if one was found.
func (mp *Mempool) Remove(tx database.Tx) bool {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	for i, t := range mp.pool {
		if t == tx {
			mp.pool = append(mp.pool[:i], mp.pool[i+1:]...)
			return true
		}
	}

	return false
}

// Copy sorts the pool by fee, greatest first, and returns a copy of it.
// The pool itself is left in the sorted order.
func (mp *Mempool) Copy() []database.Tx {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	sort.Sort(byFee(mp.pool))

	cpy := make([]database.Tx, len(mp.pool))
	copy(cpy, mp.pool)

	return cpy
}
