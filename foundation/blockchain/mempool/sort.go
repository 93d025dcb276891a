package mempool

import (
	"github.com/ardanlabs/gossipchain/foundation/blockchain/database"
)

// byFee provides sorting support by the transaction fee value, greatest
// fee first. The order of transactions with equal fees is not defined.
type byFee []database.Tx

// Len returns the length of the transaction list.
func (bf byFee) Len() int {
	return len(bf)
}

// Less helps to sort the list by fee in decending order to pick the
// transactions that pay the most.
func (bf byFee) Less(i, j int) bool {
	return bf[i].Fee > bf[j].Fee
}

// Swap moves transactions in the order of the fee value.
func (bf byFee) Swap(i, j int) {
	bf[i], bf[j] = bf[j], bf[i]
}
