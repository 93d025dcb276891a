package public

import (
	"github.com/ardanlabs/gossipchain/foundation/blockchain/database"
)

// status is what the node reports about itself.
type status struct {
	Host          string   `json:"host"`
	ChainHeight   int      `json:"chain_height"`
	LatestHash    string   `json:"latest_hash"`
	MempoolLength int      `json:"mempool_length"`
	Peers         []string `json:"peers"`
}

// submitted is the response to a transaction submission.
type submitted struct {
	Status string      `json:"status"`
	Tx     database.Tx `json:"tx"`
}
