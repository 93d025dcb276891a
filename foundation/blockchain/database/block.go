package database

import (
	"crypto/sha256"
	"encoding/json"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Block represents a group of transactions batched together and sealed by
// a proof of work.
type Block struct {
	Origin    string `json:"origin"`       // Host of the node that mined the block.
	Nonce     uint64 `json:"nonce"`        // Value identified to solve the hash solution.
	Hash      string `json:"hash"`         // Empty until the block is mined.
	Prev      string `json:"prev"`         // Hash of the chain tail at mining time, empty for the first block.
	Trans     []Tx   `json:"transactions"` // Transactions included in this block.
	ElapsedMS uint64 `json:"elapsed_ms"`   // Milliseconds spent searching for the nonce.
}

// NewBlock constructs an unmined block.
func NewBlock(origin string, prev string, trans []Tx, nonce uint64, elapsedMS uint64) Block {
	if trans == nil {
		trans = []Tx{}
	}

	return Block{
		Origin:    origin,
		Nonce:     nonce,
		Prev:      prev,
		Trans:     trans,
		ElapsedMS: elapsedMS,
	}
}

// GenerateHash returns the hash of the block content with the hash field
// cleared. The same content always produces the same hash.
func (b Block) GenerateHash() string {
	b.Hash = ""
	if b.Trans == nil {
		b.Trans = []Tx{}
	}

	data, err := json.Marshal(b)
	if err != nil {
		return ""
	}

	hash := sha256.Sum256(data)
	return common.Bytes2Hex(hash[:])
}

// Len returns the number of transactions in the block.
func (b Block) Len() int {
	return len(b.Trans)
}

// =============================================================================

// isHashSolved checks the hash to make sure it complies with
// the POW rules. We need to match a difficulty number of 0's.
func isHashSolved(difficulty int, hash string) bool {
	if difficulty <= 0 {
		return true
	}

	if len(hash) < difficulty {
		return false
	}

	return strings.Count(hash[:difficulty], "0") == difficulty
}

// short returns the leading characters of a hash for logging. Blocks from
// peers are never validated so the hash can be any length.
func short(hash string) string {
	const size = 8

	if len(hash) < size {
		return hash
	}

	return hash[:size]
}
