package database

import (
	"context"
	"errors"
	"math"
	"runtime"
	"sync"
	"time"

	gmath "github.com/ethereum/go-ethereum/common/math"
	"golang.org/x/sync/errgroup"
)

// errSolved is used to stop the search once a worker finds a solution.
var errSolved = errors.New("solved")

// Mine searches the batch of nonces [nonceStart, nonceStart+ConcurrentHashes)
// for a block whose hash solves the difficulty. The candidates are hashed in
// parallel and the first worker to find a solution wins, so which of several
// solving nonces is returned is not deterministic. The boolean is false when
// no nonce in the batch solves the puzzle.
func (db *Database) Mine(origin string, nonceStart uint64, timeOrigin time.Time, trans []Tx) (Block, bool) {
	// The tail is read once. A block appended during the search is not seen.
	prev := db.LatestHash()

	// The nonces in the batch can't run past the end of the range.
	count := db.concurrentHashes
	if nonceStart > math.MaxUint64-count {
		count = math.MaxUint64 - nonceStart
	}

	var (
		found Block
		once  sync.Once
	)

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i := uint64(0); i < count; i++ {
		if ctx.Err() != nil {
			break
		}

		nonce := nonceStart + i
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}

			elapsed := time.Since(timeOrigin).Milliseconds()
			if elapsed < 0 {
				elapsed = 0
			}

			block := NewBlock(origin, prev, trans, nonce, uint64(elapsed))

			hash := block.GenerateHash()
			if !isHashSolved(db.difficulty, hash) {
				return nil
			}

			block.Hash = hash
			once.Do(func() {
				found = block
			})

			return errSolved
		})
	}

	if err := g.Wait(); !errors.Is(err, errSolved) {
		return Block{}, false
	}

	return found, true
}

// NextNonce returns the start of the nonce batch that follows the batch
// starting at nonce. When the counter would overflow it wraps to 1, not 0,
// since a nonce of 0 marks the start of a new search window.
func NextNonce(nonce uint64, concurrentHashes uint64) uint64 {
	next, overflow := gmath.SafeAdd(nonce, concurrentHashes)
	if overflow || next == math.MaxUint64 {
		return 1
	}

	return next
}
