package worker

import (
	"time"

	"github.com/ardanlabs/gossipchain/foundation/blockchain/database"
)

// miningOperations waits for the server to announce the node's address and
// then mines blocks from the mempool until shutdown.
func (w *Worker) miningOperations() {
	w.evHandler("worker: miningOperations: G started")
	defer w.evHandler("worker: miningOperations: G completed")

	select {
	case host := <-w.announce:
		w.evHandler("worker: miningOperations: mining as %s", host)
	case <-w.shut:
		w.evHandler("worker: miningOperations: received shut signal")
		return
	}

	var (
		nonce      uint64
		timeOrigin time.Time
	)

	for {
		if w.isShutdown() {
			w.evHandler("worker: miningOperations: received shut signal")
			return
		}

		trans := w.state.QueryMempool()

		// Not enough work, or a block from a peer took the transactions.
		// Start a new search window once there is enough to mine.
		if !w.state.OkToMine(trans) {
			nonce = 0
			w.waitForWork()
			continue
		}

		if nonce == 0 {
			timeOrigin = time.Now()
		}

		block, ok := w.state.MineNewBlock(nonce, timeOrigin, trans)
		nonce = database.NextNonce(nonce, w.state.ConcurrentHashes())

		if !ok {
			continue
		}

		w.state.ProcessMinedBlock(block)
		nonce = 0
	}
}

// waitForWork blocks until a transaction is admitted, the idle interval
// passes or shutdown is signaled.
func (w *Worker) waitForWork() {
	t := time.NewTimer(w.idleInterval)
	defer t.Stop()

	select {
	case <-w.startMining:
	case <-t.C:
	case <-w.shut:
	}
}
