// Package payment simulates payment processing. No gateway is ever
// contacted; results are deterministic apart from the transaction id.
package payment

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"
)

// TransactionPrefix heads every generated transaction id.
const TransactionPrefix = "TXN_"

// NewTransactionID returns "TXN_" followed by 8 uppercase hex
// characters. Randomness is the only uniqueness guarantee; callers
// must tolerate the (negligible) collision probability.
func NewTransactionID() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand only fails if the OS entropy source is broken;
		// fall back to a timestamp-derived id.
		return fmt.Sprintf("%s%08X", TransactionPrefix, uint32(time.Now().UnixNano()))
	}
	return TransactionPrefix + strings.ToUpper(fmt.Sprintf("%x", buf))
}

// Result is the outcome of a simulated payment.
type Result struct {
	TransactionID *string   `json:"transaction_id"`
	Amount        float64   `json:"amount"`
	PaymentMethod string    `json:"payment_method"`
	ProcessedAt   time.Time `json:"processed_at"`
}

// Process settles a payment immediately. A positive amount yields a
// transaction id; a zero amount is reported as method "free" with no
// transaction id.
func Process(amount float64, method string) Result {
	if amount > 0 {
		txn := NewTransactionID()
		return Result{
			TransactionID: &txn,
			Amount:        amount,
			PaymentMethod: method,
			ProcessedAt:   time.Now(),
		}
	}
	return Result{
		Amount:        0,
		PaymentMethod: "free",
		ProcessedAt:   time.Now(),
	}
}
