package state

import (
	"time"

	"github.com/ardanlabs/gossipchain/foundation/blockchain/database"
)

// OkToMine reports whether there are enough transactions to mine a block.
func (s *State) OkToMine(trans []database.Tx) bool {
	return s.db.OkToMine(trans)
}

// ConcurrentHashes returns the number of nonces searched per mining batch.
func (s *State) ConcurrentHashes() uint64 {
	return s.db.ConcurrentHashes()
}

// MineNewBlock searches one batch of nonces starting at nonceStart for a
// block holding the specified transactions that links to the current tail
// of the chain. The boolean is false when the batch holds no solution.
func (s *State) MineNewBlock(nonceStart uint64, timeOrigin time.Time, trans []database.Tx) (database.Block, bool) {
	miningBatches.Inc()

	return s.db.Mine(s.Host(), nonceStart, timeOrigin, trans)
}

// ProcessMinedBlock accepts a block mined by this node. Its transactions
// leave the mempool, the block is sent to every peer but this node and then
// it is added to the chain.
func (s *State) ProcessMinedBlock(block database.Block) {
	s.removeTrans(block.Trans)

	if err := s.NetSendBlockToPeers(block); err != nil {
		s.evHandler("state: ProcessMinedBlock: WARNING: %s", err)
	}

	s.addBlock(block, sourceMined)
}

// ProcessPeerBlock accepts a block sent by a peer. The block is taken as is,
// neither its proof of work nor its link to the tail is checked.
func (s *State) ProcessPeerBlock(block database.Block) {
	s.removeTrans(block.Trans)
	s.addBlock(block, sourcePeer)
}

// =============================================================================

// removeTrans removes the transactions in a block from the mempool.
func (s *State) removeTrans(trans []database.Tx) {
	for _, tx := range trans {
		s.mempool.Remove(tx)
	}

	mempoolSize.Set(float64(s.mempool.Count()))
}

// addBlock appends the block to the chain and records where it came from.
func (s *State) addBlock(block database.Block, source string) {
	s.db.Add(block)

	blocksTotal.WithLabelValues(source).Inc()
	chainHeight.Set(float64(s.db.Count()))
}
