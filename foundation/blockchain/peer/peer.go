// Package peer maintains the peer related information such as the set
// of know peers and the default addresses used when none are configured.
package peer

import (
	"fmt"
	"net"
	"sort"
	"strings"
	"sync"
)

// DefaultPorts are the well known ports nodes bind to and look for peers on
// when no peer list is configured.
var DefaultPorts = []int{4000, 4001, 4002, 4003, 4004}

// Loopback is the address used for default peers and bare port peers.
const Loopback = "127.0.0.1"

// Peer represents information about a Node in the network.
type Peer struct {
	Host string
}

// New contructs a new info value.
func New(host string) Peer {
	return Peer{
		Host: host,
	}
}

// String implements the Stringer interface.
func (p Peer) String() string {
	return p.Host
}

// Match validates if the specified host matches this node. A node bound to
// an unspecified address such as 0.0.0.0 matches any host on the same port.
func (p Peer) Match(host string) bool {
	if p.Host == host {
		return true
	}

	pHost, pPort, err := net.SplitHostPort(p.Host)
	if err != nil {
		return false
	}

	hHost, hPort, err := net.SplitHostPort(host)
	if err != nil {
		return false
	}

	if pPort != hPort {
		return false
	}

	return unspecified(pHost) || unspecified(hHost)
}

// =============================================================================

// Defaults returns the set of default peers on the specified ip.
func Defaults(ip string) []Peer {
	peers := make([]Peer, len(DefaultPorts))
	for i, port := range DefaultPorts {
		peers[i] = New(net.JoinHostPort(ip, fmt.Sprint(port)))
	}

	return peers
}

// Parse converts a comma separated list of peers into peer values. A bare
// port is treated as a port on the loopback address.
func Parse(list string) []Peer {
	var peers []Peer
	for _, host := range strings.Split(list, ",") {
		host = strings.TrimSpace(host)
		if host == "" {
			continue
		}

		if !strings.Contains(host, ":") {
			host = net.JoinHostPort(Loopback, host)
		}

		peers = append(peers, New(host))
	}

	return peers
}

// Resolve returns the pool of peers to talk to. When no peers are provided
// the default peers are used. The specified host is always excluded.
func Resolve(peers []Peer, host string) []Peer {
	if len(peers) == 0 {
		peers = Defaults(Loopback)
	}

	var pool []Peer
	for _, peer := range peers {
		if !peer.Match(host) {
			pool = append(pool, peer)
		}
	}

	return pool
}

// unspecified reports if the host is an address that binds all interfaces.
func unspecified(host string) bool {
	if host == "" {
		return true
	}

	ip := net.ParseIP(host)
	return ip != nil && ip.IsUnspecified()
}

// =============================================================================

// PeerSet represents the data representation to maintain a set of known peers.
type PeerSet struct {
	mu  sync.RWMutex
	set map[Peer]struct{}
}

// NewPeerSet constructs a new info set to manage node peer information.
func NewPeerSet() *PeerSet {
	return &PeerSet{
		set: make(map[Peer]struct{}),
	}
}

// Add adds a new node to the set.
func (ps *PeerSet) Add(peer Peer) bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	_, exists := ps.set[peer]
	if !exists {
		ps.set[peer] = struct{}{}
		return true
	}

	return false
}

// Remove removes a node from the set.
func (ps *PeerSet) Remove(peer Peer) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	delete(ps.set, peer)
}

// Len returns the number of peers in the set.
func (ps *PeerSet) Len() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	return len(ps.set)
}

// Copy returns a list of the known peers, sorted by host, that don't
// match the specified host.
func (ps *PeerSet) Copy(host string) []Peer {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	var peers []Peer
	for peer := range ps.set {
		if !peer.Match(host) {
			peers = append(peers, peer)
		}
	}

	sort.Slice(peers, func(i, j int) bool {
		return peers[i].Host < peers[j].Host
	})

	return peers
}
