package state

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/gossipchain/foundation/blockchain/database"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/network"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/peer"
)

// ErrNoPeer is returned when a sync request can't be answered because there
// is nobody to send the reply to.
var ErrNoPeer = errors.New("no peer to reply to")

// NetSendBlockToPeers sends the block to every live peer but this node.
func (s *State) NetSendBlockToPeers(block database.Block) error {
	return network.Broadcast(s.transport, network.BroadcastBlock, block, s.knownPeers, s.Host())
}

// NetSendTxToPeers shares a new transaction with every live peer but this
// node. The peer the transaction came from is not known, so it may get the
// transaction back and will drop it as a duplicate.
func (s *State) NetSendTxToPeers(tx database.Tx) error {
	return network.Broadcast(s.transport, network.BroadcastTx, tx, s.knownPeers, s.Host())
}

// NetRequestSync looks for live peers and asks the first one found for its
// mempool and its chain. The peers found are remembered as the set sync
// replies are sent to.
func (s *State) NetRequestSync() {
	s.evHandler("state: NetRequestSync: started")
	defer s.evHandler("state: NetRequestSync: completed")

	host := s.Host()

	live := s.transport.LivePeers(s.knownPeers, host)
	for _, pr := range live {
		s.livePeers.Add(pr)
	}

	if len(live) == 0 {
		s.evHandler("state: NetRequestSync: no live peers")
		return
	}

	pr := live[0]
	req := network.SyncRequest{Peer: host}

	for _, action := range []network.ActionType{network.SyncRequestTx, network.SyncRequestBlock} {
		if err := s.netSend(pr, network.NewCommand(action, req)); err != nil {
			s.evHandler("state: NetRequestSync: %s: WARNING: %s", action, err)
			continue
		}

		s.evHandler("state: NetRequestSync: %s sent to peer[%s]", action, pr)
	}
}

// netSend sends a single sync request to the peer.
func (s *State) netSend(pr peer.Peer, cmd network.Command[network.SyncRequest]) error {
	data, err := network.Encode(cmd)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", cmd.Action, err)
	}

	return s.transport.Send(pr, data)
}

// netReplySync answers a sync request. The reply goes to the peers found
// live at startup when there are any, otherwise to the requesting peer.
func netReplySync[T any](s *State, action network.ActionType, data []T, requester string) error {
	peers := s.LivePeers()
	if len(peers) == 0 {
		if requester == "" {
			return fmt.Errorf("%s: %w", action, ErrNoPeer)
		}
		peers = []peer.Peer{peer.New(requester)}
	}

	if data == nil {
		data = []T{}
	}

	return network.Broadcast(s.transport, action, network.SyncResponse[T]{Data: data}, peers, s.Host())
}
