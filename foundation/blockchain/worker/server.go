package worker

import (
	"errors"
	"fmt"
	"net"

	"github.com/ardanlabs/gossipchain/foundation/blockchain/network"
	"github.com/google/uuid"
)

// serverOperations binds the node, syncs it with a live peer and then
// processes inbound connections one at a time until shutdown.
func (w *Worker) serverOperations(bound chan<- error) {
	w.evHandler("worker: serverOperations: G started")
	defer w.evHandler("worker: serverOperations: G completed")

	l, err := w.bind()
	if err != nil {
		bound <- err
		return
	}

	host := l.Addr().String()
	w.state.SetHost(host)
	w.evHandler("worker: serverOperations: listening on %s", host)

	// Hand the address to the miner before anything else can happen.
	w.announce <- host
	bound <- nil

	w.state.NetRequestSync()

	for {
		conn, err := l.Accept()
		if err != nil {
			if w.isShutdown() || errors.Is(err, net.ErrClosed) {
				w.evHandler("worker: serverOperations: received shut signal")
				return
			}

			w.evHandler("worker: serverOperations: accept: ERROR: %s", err)
			continue
		}

		w.handleConn(conn)
	}
}

// bind listens on the first address that is available.
func (w *Worker) bind() (net.Listener, error) {
	var errs []error
	for _, addr := range w.bindAddrs {
		l, err := net.Listen("tcp", addr)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		w.mu.Lock()
		w.listener = l
		w.mu.Unlock()

		return l, nil
	}

	return nil, fmt.Errorf("no address to bind to %v: %w", w.bindAddrs, errors.Join(errs...))
}

// handleConn reads the single message a connection carries and processes it.
func (w *Worker) handleConn(conn net.Conn) {
	defer conn.Close()

	traceID := uuid.NewString()

	line, err := network.ReadLine(conn)
	if err != nil {
		w.evHandler("worker: handleConn: traceid[%s]: %s: ERROR: %s", traceID, conn.RemoteAddr(), err)
		return
	}

	if err := w.state.ProcessMessage(line); err != nil {
		w.evHandler("worker: handleConn: traceid[%s]: %s: ERROR: %s", traceID, conn.RemoteAddr(), err)
	}
}
