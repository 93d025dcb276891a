package state_test

import (
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ardanlabs/gossipchain/foundation/blockchain/database"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/network"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/peer"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/state"
	"github.com/stretchr/testify/require"
)

type fakeWorker struct {
	signals atomic.Int32
}

func (w *fakeWorker) Shutdown()          {}
func (w *fakeWorker) SignalStartMining() { w.signals.Add(1) }

// deadPeer returns the address of a port nothing is listening on.
func deadPeer(t *testing.T) peer.Peer {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	host := l.Addr().String()
	require.NoError(t, l.Close())

	return peer.New(host)
}

func newState(t *testing.T, peers ...peer.Peer) (*state.State, *fakeWorker) {
	if len(peers) == 0 {
		peers = []peer.Peer{deadPeer(t)}
	}

	st := state.New(state.Config{
		KnownPeers: peers,
		Database: database.Config{
			MinTxPerBlock:    3,
			Difficulty:       1,
			ConcurrentHashes: 100,
		},
		EvHandler: func(v string, args ...any) {
			t.Logf(v, args...)
		},
	})
	st.SetHost("127.0.0.1:4999")

	w := fakeWorker{}
	st.Worker = &w

	return st, &w
}

func encode[T any](t *testing.T, action network.ActionType, payload T) []byte {
	data, err := network.Encode(network.NewCommand(action, payload))
	require.NoError(t, err)

	return data
}

func testTrans() []database.Tx {
	return []database.Tx{
		database.NewTx('A', 'B', 1, 0.1),
		database.NewTx('B', 'C', 2, 0.2),
		database.NewTx('C', 'D', 3, 0.3),
	}
}

// =============================================================================

func TestProcessTx(t *testing.T) {
	st, w := newState(t)
	tx := database.NewTx('A', 'B', 1, 0.5)

	require.NoError(t, st.ProcessMessage(encode(t, network.BroadcastTx, tx)))
	require.Equal(t, 1, st.QueryMempoolLength())
	require.Equal(t, int32(1), w.signals.Load())

	require.NoError(t, st.ProcessMessage(encode(t, network.BroadcastTx, tx)))
	require.Equal(t, 1, st.QueryMempoolLength())
	require.Equal(t, int32(1), w.signals.Load())

	higher := database.NewTx('A', 'B', 1, 0.9)
	require.NoError(t, st.UpsertTx(higher))
	require.Equal(t, []database.Tx{higher}, st.QueryMempool())
}

func TestProcessBlock(t *testing.T) {
	st, _ := newState(t)

	for _, tx := range testTrans() {
		require.NoError(t, st.UpsertTx(tx))
	}
	require.NoError(t, st.UpsertTx(database.NewTx('X', 'Y', 1, 0.4)))

	block := database.NewBlock("127.0.0.1:4001", "", testTrans(), 7, 10)
	block.Hash = "not a real hash"

	require.NoError(t, st.ProcessMessage(encode(t, network.BroadcastBlock, block)))
	require.Equal(t, 1, st.QueryChainHeight())
	require.Equal(t, "not a real hash", st.QueryLatestHash())
	require.Equal(t, []database.Tx{database.NewTx('X', 'Y', 1, 0.4)}, st.QueryMempool())
}

func TestProcessSyncResponse(t *testing.T) {
	st, _ := newState(t)

	blocks := []database.Block{
		database.NewBlock("a", "", nil, 1, 1),
		database.NewBlock("b", "zz", testTrans(), 2, 2),
	}
	require.NoError(t, st.ProcessMessage(encode(t, network.SyncResponseBlock, network.BlockSync{Data: blocks})))
	require.Equal(t, 2, st.QueryChainHeight())

	require.NoError(t, st.ProcessMessage(encode(t, network.SyncResponseTx, network.TxSync{Data: testTrans()})))
	require.Equal(t, 3, st.QueryMempoolLength())

	// An empty list fits the block schema first and changes nothing.
	require.NoError(t, st.ProcessMessage(encode(t, network.SyncResponseTx, network.TxSync{Data: []database.Tx{}})))
	require.Equal(t, 2, st.QueryChainHeight())
	require.Equal(t, 3, st.QueryMempoolLength())
}

func TestProcessIgnored(t *testing.T) {
	st, _ := newState(t)

	lines := []string{
		"",
		"garbage",
		`{"action":{"Broadcast":"Tx"},"payload":{"from":"A"}}`,
		`{"action":{"Broadcast":"Block"},"payload":{"peer":"127.0.0.1:4000"}}`,
	}

	for _, line := range lines {
		require.NoError(t, st.ProcessMessage([]byte(line)), line)
	}

	require.Zero(t, st.QueryChainHeight())
	require.Zero(t, st.QueryMempoolLength())
}

func TestProcessSyncRequest(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	lines := make(chan []byte, 10)
	go func() {
		for {
			conn, err := l.Accept()
			if err != nil {
				return
			}

			line, _ := network.ReadLine(conn)
			conn.Close()

			if len(line) > 0 {
				lines <- line
			}
		}
	}()

	st, _ := newState(t)
	for _, tx := range testTrans() {
		require.NoError(t, st.UpsertTx(tx))
	}
	st.ProcessPeerBlock(database.NewBlock("a", "", nil, 1, 1))

	req := network.SyncRequest{Peer: l.Addr().String()}

	require.NoError(t, st.ProcessMessage(encode(t, network.SyncRequestBlock, req)))
	select {
	case line := <-lines:
		cmd, err := network.Decode[network.BlockSync](line)
		require.NoError(t, err)
		require.Equal(t, network.SyncResponseBlock, cmd.Action)
		require.Len(t, cmd.Payload.Data, 1)
	case <-time.After(5 * time.Second):
		t.Fatal("Should receive the chain.")
	}

	require.NoError(t, st.ProcessMessage(encode(t, network.SyncRequestTx, req)))
	select {
	case line := <-lines:
		cmd, err := network.Decode[network.TxSync](line)
		require.NoError(t, err)
		require.Equal(t, network.SyncResponseTx, cmd.Action)
		require.Len(t, cmd.Payload.Data, 3)
		require.Equal(t, float32(0.3), cmd.Payload.Data[0].Fee)
	case <-time.After(5 * time.Second):
		t.Fatal("Should receive the mempool.")
	}

	err = st.ProcessMessage(encode(t, network.SyncRequestTx, network.SyncRequest{}))
	require.ErrorIs(t, err, state.ErrNoPeer)
}

func TestMineNewBlock(t *testing.T) {
	st, _ := newState(t)
	for _, tx := range testTrans() {
		require.NoError(t, st.UpsertTx(tx))
	}

	trans := st.QueryMempool()
	require.True(t, st.OkToMine(trans))

	var (
		block database.Block
		ok    bool
		nonce uint64
	)

	start := time.Now()
	for i := 0; i < 100 && !ok; i++ {
		block, ok = st.MineNewBlock(nonce, start, trans)
		nonce = database.NextNonce(nonce, st.ConcurrentHashes())
	}
	require.True(t, ok)
	require.Equal(t, "127.0.0.1:4999", block.Origin)

	st.ProcessMinedBlock(block)
	require.Equal(t, 1, st.QueryChainHeight())
	require.Equal(t, block.Hash, st.QueryLatestHash())
	require.Zero(t, st.QueryMempoolLength())
}
