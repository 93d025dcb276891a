package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrInvalidWallet is returned when a wallet id is not exactly one character.
var ErrInvalidWallet = errors.New("wallet id must be a single character")

// =============================================================================

// Wallet represents the single character identity of an account that is
// transacting on the blockchain.
type Wallet rune

// ToWallet converts a string into a wallet id.
func ToWallet(s string) (Wallet, error) {
	if utf8.RuneCountInString(s) != 1 {
		return 0, ErrInvalidWallet
	}

	r, _ := utf8.DecodeRuneInString(s)
	return Wallet(r), nil
}

// String implements the Stringer interface.
func (w Wallet) String() string {
	return string(rune(w))
}

// MarshalJSON writes the wallet as a one character JSON string.
func (w Wallet) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.String())
}

// UnmarshalJSON reads a one character JSON string into the wallet.
func (w *Wallet) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	wallet, err := ToWallet(s)
	if err != nil {
		return err
	}
	*w = wallet

	return nil
}

// =============================================================================

// Tx is the transactional information between two wallets. Two transactions
// with the same field values are the same transaction.
type Tx struct {
	From   Wallet  `json:"from" validate:"required"`
	To     Wallet  `json:"to" validate:"required"`
	Amount int32   `json:"amount"`
	Fee    float32 `json:"fee" validate:"gte=0"`
}

// NewTx constructs a new transaction.
func NewTx(from Wallet, to Wallet, amount int32, fee float32) Tx {
	return Tx{
		From:   from,
		To:     to,
		Amount: amount,
		Fee:    fee,
	}
}

// SamePair reports whether both transactions move value between the same
// ordered pair of wallets.
func (tx Tx) SamePair(other Tx) bool {
	return tx.From == other.From && tx.To == other.To
}

// String implements the Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s->%s:%d(fee %.2f)", tx.From, tx.To, tx.Amount, tx.Fee)
}
