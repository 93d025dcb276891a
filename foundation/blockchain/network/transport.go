package network

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/ardanlabs/gossipchain/foundation/blockchain/peer"
)

// EventHandler defines a function that is called when events
// occur while talking to peers.
type EventHandler func(v string, args ...any)

// Config represents the settings for the transport.
type Config struct {
	DialTimeout    time.Duration // Zero means the operating system default.
	DebugBroadcast bool
	EvHandler      EventHandler
}

// Transport opens one outbound connection per message sent to a peer.
type Transport struct {
	dialer         net.Dialer
	debugBroadcast bool
	evHandler      EventHandler
}

// NewTransport constructs a transport for talking to peers.
func NewTransport(cfg Config) *Transport {
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	return &Transport{
		dialer:         net.Dialer{Timeout: cfg.DialTimeout},
		debugBroadcast: cfg.DebugBroadcast,
		evHandler:      ev,
	}
}

// IsLive reports if the peer accepts a connection.
func (t *Transport) IsLive(pr peer.Peer) bool {
	conn, err := t.dialer.Dial("tcp", pr.Host)
	if err != nil {
		return false
	}
	conn.Close()

	return true
}

// LivePeers resolves the pool of peers, excluding the specified host, and
// returns the ones that accept a connection. An empty list of peers means
// the default peers.
func (t *Transport) LivePeers(peers []peer.Peer, exclude string) []peer.Peer {
	var live []peer.Peer
	for _, pr := range peer.Resolve(peers, exclude) {
		if t.IsLive(pr) {
			live = append(live, pr)
		}
	}

	return live
}

// Send writes the data as a single message to the peer.
func (t *Transport) Send(pr peer.Peer, data []byte) error {
	conn, err := t.dialer.Dial("tcp", pr.Host)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("%s: %w", pr.Host, err)
	}

	return nil
}

// Broadcast sends the command to every live peer in the pool except the
// specified host. Delivery is best effort. A peer that can't be reached is
// skipped and there is no retry. The only error returned is a failure to
// encode the command.
func Broadcast[T any](t *Transport, action ActionType, payload T, peers []peer.Peer, exclude string) error {
	data, err := Encode(NewCommand(action, payload))
	if err != nil {
		return fmt.Errorf("encoding %s: %w", action, err)
	}

	live := t.LivePeers(peers, exclude)
	if len(live) == 0 {
		return nil
	}

	if t.debugBroadcast {
		hosts := make([]string, len(live))
		for i, pr := range live {
			hosts[i] = pr.Host
		}
		t.evHandler("broadcasting to %s...", strings.Join(hosts, ","))
	}

	for _, pr := range live {
		if err := t.Send(pr, data); err != nil && t.debugBroadcast {
			t.evHandler("network: Broadcast: %s: WARNING: %s", pr.Host, err)
		}
	}

	return nil
}

// =============================================================================

// ReadLine reads the single message a connection carries. The message may
// end without a newline when the peer closes the connection.
func ReadLine(r io.Reader) ([]byte, error) {
	line, err := bufio.NewReader(r).ReadBytes('\n')
	switch {
	case err == nil:
		return line, nil
	case errors.Is(err, io.EOF):
		return line, nil
	default:
		return nil, err
	}
}
