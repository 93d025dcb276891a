package network_test

import (
	"net"
	"strings"
	"testing"

	"github.com/ardanlabs/gossipchain/foundation/blockchain/database"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/network"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/peer"
	"github.com/stretchr/testify/require"
)

func testBlock() database.Block {
	block := database.NewBlock("127.0.0.1:4000", "00ab", []database.Tx{
		database.NewTx('A', 'B', 1, 0.25),
		database.NewTx('B', 'C', 7, 0.5),
	}, 42, 1500)
	block.Hash = block.GenerateHash()

	return block
}

func TestActionTypeJSON(t *testing.T) {
	data, err := network.Encode(network.NewCommand(network.BroadcastTx, database.NewTx('A', 'B', 1, 0.5)))
	require.NoError(t, err)
	require.Equal(t, `{"action":{"Broadcast":"Tx"},"payload":{"from":"A","to":"B","amount":1,"fee":0.5}}`+"\n", string(data))

	_, err = network.Encode(network.NewCommand(network.ActionType{Kind: "Bogus", Object: network.ObjectTx}, 1))
	require.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	t.Run("block", func(t *testing.T) {
		cmd := network.NewCommand(network.BroadcastBlock, testBlock())

		data, err := network.Encode(cmd)
		require.NoError(t, err)

		got, err := network.Decode[database.Block](data)
		require.NoError(t, err)
		require.Equal(t, cmd, got)
	})

	t.Run("tx", func(t *testing.T) {
		cmd := network.NewCommand(network.BroadcastTx, database.NewTx('M', 'A', -3, 0.99))

		data, err := network.Encode(cmd)
		require.NoError(t, err)

		got, err := network.Decode[database.Tx](data)
		require.NoError(t, err)
		require.Equal(t, cmd, got)
	})

	t.Run("sync", func(t *testing.T) {
		cmd := network.NewCommand(network.SyncResponseBlock, network.BlockSync{Data: []database.Block{testBlock(), testBlock()}})

		data, err := network.Encode(cmd)
		require.NoError(t, err)

		got, err := network.Decode[network.BlockSync](data)
		require.NoError(t, err)
		require.Equal(t, cmd, got)
	})
}

func TestDecodeMatching(t *testing.T) {
	tx := `{"action":{"Broadcast":"Tx"},"payload":{"from":"A","to":"B","amount":1,"fee":0.1}}`
	req := `{"action":{"SyncRequest":"Block"},"payload":{"peer":"127.0.0.1:4001"}}`
	txs := `{"action":{"SyncResponse":"Tx"},"payload":{"data":[{"from":"A","to":"B","amount":1,"fee":0.1}]}}`

	t.Run("tx", func(t *testing.T) {
		_, err := network.Decode[database.Tx]([]byte(tx))
		require.NoError(t, err)

		_, err = network.Decode[database.Block]([]byte(tx))
		require.ErrorIs(t, err, network.ErrNoMatch)

		_, err = network.Decode[network.SyncRequest]([]byte(tx))
		require.ErrorIs(t, err, network.ErrNoMatch)
	})

	t.Run("request", func(t *testing.T) {
		cmd, err := network.Decode[network.SyncRequest]([]byte(req))
		require.NoError(t, err)
		require.Equal(t, network.SyncRequestBlock, cmd.Action)
		require.Equal(t, "127.0.0.1:4001", cmd.Payload.Peer)

		_, err = network.Decode[database.Tx]([]byte(req))
		require.ErrorIs(t, err, network.ErrNoMatch)
	})

	t.Run("response", func(t *testing.T) {
		_, err := network.Decode[network.BlockSync]([]byte(txs))
		require.ErrorIs(t, err, network.ErrNoMatch)

		cmd, err := network.Decode[network.TxSync]([]byte(txs))
		require.NoError(t, err)
		require.Len(t, cmd.Payload.Data, 1)
	})

	t.Run("extra fields", func(t *testing.T) {
		line := `{"action":{"Broadcast":"Tx"},"extra":1,"payload":{"from":"A","to":"B","amount":1,"fee":0.1,"memo":"hi"}}`
		_, err := network.Decode[database.Tx]([]byte(line))
		require.NoError(t, err)
	})

	t.Run("malformed", func(t *testing.T) {
		lines := []string{
			``,
			`not json`,
			`{"action":{"Broadcast":"Tx"}}`,
			`{"action":{"Shout":"Tx"},"payload":{"from":"A","to":"B","amount":1,"fee":0.1}}`,
			`{"action":{"Broadcast":"Tx"},"payload":{"from":"A","to":"B","amount":1}}`,
			`{"action":{"Broadcast":"Tx"},"payload":{"from":"AB","to":"B","amount":1,"fee":0.1}}`,
			`{"action":{"Broadcast":"Tx"},"payload":{"from":"A","to":"B","amount":"1","fee":0.1}}`,
			`{"action":{"Broadcast":"Tx"},"payload":{"from":"A","to":"B","amount":1.5,"fee":0.1}}`,
		}

		for _, line := range lines {
			_, err := network.Decode[database.Tx]([]byte(line))
			require.ErrorIs(t, err, network.ErrNoMatch, line)
		}
	})
}

func TestReadLine(t *testing.T) {
	line, err := network.ReadLine(strings.NewReader("first\nsecond\n"))
	require.NoError(t, err)
	require.Equal(t, "first\n", string(line))

	line, err = network.ReadLine(strings.NewReader("no newline"))
	require.NoError(t, err)
	require.Equal(t, "no newline", string(line))

	line, err = network.ReadLine(strings.NewReader(""))
	require.NoError(t, err)
	require.Empty(t, line)
}

func TestBroadcast(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	// A port that was just released has nothing listening on it.
	dead, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	deadHost := dead.Addr().String()
	dead.Close()

	lines := make(chan string, 10)
	go func() {
		for {
			conn, err := l.Accept()
			if err != nil {
				return
			}

			line, _ := network.ReadLine(conn)
			conn.Close()

			if len(line) > 0 {
				lines <- string(line)
			}
		}
	}()

	var events []string
	tr := network.NewTransport(network.Config{
		DebugBroadcast: true,
		EvHandler: func(v string, args ...any) {
			events = append(events, v)
		},
	})

	live := peer.New(l.Addr().String())
	require.True(t, tr.IsLive(live))
	require.False(t, tr.IsLive(peer.New(deadHost)))

	tx := database.NewTx('A', 'B', 1, 0.5)
	peers := []peer.Peer{live, peer.New(deadHost)}

	err = network.Broadcast(tr, network.BroadcastTx, tx, peers, "")
	require.NoError(t, err)

	got := <-lines
	cmd, err := network.Decode[database.Tx]([]byte(got))
	require.NoError(t, err)
	require.Equal(t, tx, cmd.Payload)
	require.NotEmpty(t, events)

	err = network.Broadcast(tr, network.BroadcastTx, tx, peers, live.Host)
	require.NoError(t, err)
	require.Empty(t, lines)
}
