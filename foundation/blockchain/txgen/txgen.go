// Package txgen produces a steady stream of transactions used to drive a
// network of nodes.
package txgen

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"github.com/ardanlabs/gossipchain/foundation/blockchain/database"
)

// alphabet is the set of wallets transactions move value between.
const alphabet = "ABCDEFGHIJKLM"

// fixedDelay is the time between transactions when not random.
const fixedDelay = 3 * time.Second

// EventHandler defines a function that is called when events
// occur while generating transactions.
type EventHandler func(v string, args ...any)

// SendFunc delivers a generated transaction.
type SendFunc func(tx database.Tx) error

// Config represents the settings for the generator.
type Config struct {
	Random    bool
	Rand      *rand.Rand // Optional, seeded from the runtime when nil.
	EvHandler EventHandler
}

// Generator creates transactions. With random off it produces the same
// sequence every run.
type Generator struct {
	random    bool
	rng       *rand.Rand
	count     int
	evHandler EventHandler
}

// New constructs a generator.
func New(cfg Config) *Generator {
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return &Generator{
		random:    cfg.Random,
		rng:       rng,
		evHandler: ev,
	}
}

// Next returns the next transaction in the sequence.
func (g *Generator) Next() database.Tx {
	from, to := g.wallets(g.count)
	g.count++

	if !g.random {
		return database.NewTx(from, to, 1, 0.1)
	}

	amount := int32(1 + g.rng.IntN(19))
	fee := 0.1 + g.rng.Float64()*0.9

	return database.NewTx(from, to, amount, float32(math.Round(fee*100)/100))
}

// Delay returns how long to wait before producing the next transaction.
func (g *Generator) Delay() time.Duration {
	if !g.random {
		return fixedDelay
	}

	return time.Duration(1+g.rng.IntN(4)) * time.Second
}

// Run produces transactions and hands each to send until the context is
// cancelled. A failed send is reported and the generator moves on.
func (g *Generator) Run(ctx context.Context, send SendFunc) error {
	for {
		tx := g.Next()
		g.evHandler("txgen: Run: %v", tx)

		if err := send(tx); err != nil {
			g.evHandler("txgen: Run: send: ERROR: %s", err)
		}

		t := time.NewTimer(g.Delay())
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

// =============================================================================

// wallets returns the pair of neighbouring wallets for the ith transaction.
// With random on the alphabet is shuffled first.
func (g *Generator) wallets(i int) (database.Wallet, database.Wallet) {
	letters := []rune(alphabet)
	if g.random {
		g.rng.Shuffle(len(letters), func(i, j int) {
			letters[i], letters[j] = letters[j], letters[i]
		})
	}

	n := len(letters)
	return database.Wallet(letters[i%n]), database.Wallet(letters[(i+1)%n])
}
