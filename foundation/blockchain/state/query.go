package state

import (
	"github.com/ardanlabs/gossipchain/foundation/blockchain/database"
)

// QueryMempoolLength returns the current length of the mempool.
func (s *State) QueryMempoolLength() int {
	return s.mempool.Count()
}

// QueryMempool returns the transactions in the mempool, greatest fee first.
func (s *State) QueryMempool() []database.Tx {
	return s.mempool.Copy()
}

// QueryBlocks returns a copy of the chain.
func (s *State) QueryBlocks() []database.Block {
	return s.db.Copy()
}

// QueryChainHeight returns the number of blocks in the chain.
func (s *State) QueryChainHeight() int {
	return s.db.Count()
}

// QueryLatestHash returns the hash of the tail of the chain.
func (s *State) QueryLatestHash() string {
	return s.db.LatestHash()
}
