package worker_test

import (
	"net"
	"testing"
	"time"

	"github.com/ardanlabs/gossipchain/foundation/blockchain/database"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/peer"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/state"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/worker"
	"github.com/stretchr/testify/require"
)

// reserve returns a loopback address that was free a moment ago.
func reserve(t *testing.T) string {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().String()
	require.NoError(t, l.Close())

	return addr
}

func startNode(t *testing.T, addr string, minTx int, peers ...string) *state.State {
	ev := func(v string, args ...any) {
		t.Logf(addr+": "+v, args...)
	}

	var known []peer.Peer
	for _, host := range peers {
		known = append(known, peer.New(host))
	}

	st := state.New(state.Config{
		KnownPeers: known,
		Database: database.Config{
			MinTxPerBlock:    minTx,
			Difficulty:       1,
			ConcurrentHashes: 100,
		},
		EvHandler: ev,
	})

	_, err := worker.Run(st, worker.Config{
		BindAddrs:    []string{addr},
		IdleInterval: 10 * time.Millisecond,
		EvHandler:    ev,
	})
	require.NoError(t, err)

	t.Cleanup(st.Shutdown)

	return st
}

func testTrans() []database.Tx {
	return []database.Tx{
		database.NewTx('A', 'B', 1, 0.1),
		database.NewTx('B', 'C', 1, 0.2),
		database.NewTx('C', 'D', 1, 0.3),
	}
}

// =============================================================================

func TestBindFailure(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	st := state.New(state.Config{KnownPeers: []peer.Peer{peer.New(reserve(t))}})

	_, err = worker.Run(st, worker.Config{BindAddrs: []string{l.Addr().String()}})
	require.Error(t, err)
}

func TestBindCandidates(t *testing.T) {
	addrs := worker.BindCandidates(nil)
	require.Equal(t, []string{"127.0.0.1:4000", "127.0.0.1:4001", "127.0.0.1:4002", "127.0.0.1:4003", "127.0.0.1:4004"}, addrs)

	addrs = worker.BindCandidates([]peer.Peer{peer.New("10.0.0.1:4000")})
	require.Len(t, addrs, 5)
	require.Equal(t, "0.0.0.0:4000", addrs[0])
}

func TestFastSync(t *testing.T) {
	addrA, addrB := reserve(t), reserve(t)

	// The first node never mines so its mempool stays put.
	a := startNode(t, addrA, 100, addrB)
	for _, tx := range testTrans() {
		require.NoError(t, a.UpsertTx(tx))
	}
	a.ProcessPeerBlock(database.NewBlock("elsewhere", "", nil, 1, 1))

	b := startNode(t, addrB, 100, addrA)

	require.Eventually(t, func() bool {
		return b.QueryMempoolLength() == 3 && b.QueryChainHeight() == 1
	}, 10*time.Second, 20*time.Millisecond)
}

func TestMineAndGossip(t *testing.T) {
	addrA, addrB := reserve(t), reserve(t)

	// Only the first node mines. Pools are not checked since a relayed
	// transaction can come back after its block pruned it.
	a := startNode(t, addrA, 3, addrB)
	b := startNode(t, addrB, 100, addrA)

	for _, tx := range testTrans() {
		require.NoError(t, a.UpsertTx(tx))
	}

	require.Eventually(t, func() bool {
		return a.QueryChainHeight() >= 1 && b.QueryChainHeight() >= 1
	}, 20*time.Second, 20*time.Millisecond)

	mined := a.QueryBlocks()[0]
	require.Equal(t, addrA, mined.Origin)
	require.Equal(t, byte('0'), mined.Hash[0])
	require.Len(t, mined.Trans, 3)

	require.Equal(t, mined, b.QueryBlocks()[0])
}

func TestShutdown(t *testing.T) {
	addr := reserve(t)

	st := state.New(state.Config{KnownPeers: []peer.Peer{peer.New(reserve(t))}})

	_, err := worker.Run(st, worker.Config{BindAddrs: []string{addr}})
	require.NoError(t, err)
	require.Equal(t, addr, st.Host())

	st.Shutdown()

	_, err = net.DialTimeout("tcp", addr, time.Second)
	require.Error(t, err)
}
