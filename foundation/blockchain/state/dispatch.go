package state

import (
	"bytes"

	"github.com/ardanlabs/gossipchain/foundation/blockchain/database"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/network"
)

// ProcessMessage handles a single line received from a peer. The line is
// matched against the known schemas in a fixed order and the first that fits
// is processed. A line that fits no schema is ignored.
func (s *State) ProcessMessage(line []byte) error {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return nil
	}

	if s.debugBroadcast {
		s.evHandler("received: %s", line)
	}

	if cmd, err := network.Decode[network.SyncRequest](line); err == nil {
		return s.processSyncRequest(cmd)
	}

	if cmd, err := network.Decode[network.BlockSync](line); err == nil {
		messagesTotal.WithLabelValues("sync_response_block").Inc()
		for _, block := range cmd.Payload.Data {
			s.addBlock(block, sourceSync)
		}
		return nil
	}

	if cmd, err := network.Decode[network.TxSync](line); err == nil {
		messagesTotal.WithLabelValues("sync_response_tx").Inc()
		for _, tx := range cmd.Payload.Data {
			s.addTx(tx)
		}
		return nil
	}

	if cmd, err := network.Decode[database.Block](line); err == nil {
		messagesTotal.WithLabelValues("block").Inc()
		s.ProcessPeerBlock(cmd.Payload)
		return nil
	}

	if cmd, err := network.Decode[database.Tx](line); err == nil {
		messagesTotal.WithLabelValues("tx").Inc()
		return s.UpsertTx(cmd.Payload)
	}

	messagesTotal.WithLabelValues("unknown").Inc()

	return nil
}

// UpsertTx offers the transaction to the mempool. A transaction the mempool
// admits is shared with the peers.
func (s *State) UpsertTx(tx database.Tx) error {
	if !s.addTx(tx) {
		return nil
	}

	return s.NetSendTxToPeers(tx)
}

// =============================================================================

// processSyncRequest replies to a request for the chain or the mempool. Any
// other action carrying a sync request payload is ignored.
func (s *State) processSyncRequest(cmd network.Command[network.SyncRequest]) error {
	switch cmd.Action {
	case network.SyncRequestBlock:
		messagesTotal.WithLabelValues("sync_request_block").Inc()
		return netReplySync(s, network.SyncResponseBlock, s.db.Copy(), cmd.Payload.Peer)

	case network.SyncRequestTx:
		messagesTotal.WithLabelValues("sync_request_tx").Inc()
		return netReplySync(s, network.SyncResponseTx, s.mempool.Copy(), cmd.Payload.Peer)
	}

	messagesTotal.WithLabelValues("unknown").Inc()

	return nil
}

// addTx offers the transaction to the mempool and reports if it was
// admitted. An admitted transaction wakes the mining role.
func (s *State) addTx(tx database.Tx) bool {
	if !s.mempool.Add(tx) {
		return false
	}

	n := s.mempool.Count()
	mempoolSize.Set(float64(n))
	s.evHandler("added %v to mempool (%d total)", tx, n)

	s.signalStartMining()

	return true
}
