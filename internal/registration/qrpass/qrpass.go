// Package qrpass renders a registration as a scannable event pass.
package qrpass

import (
	"encoding/json"

	"github.com/skip2/go-qrcode"

	"github.com/KamalSai3/KS-Events/internal/models"
)

// payload is what venue staff scan at check-in. It carries just enough
// to match the pass against the registration record.
type payload struct {
	RegistrationID string  `json:"registration_id"`
	EventID        int64   `json:"event_id"`
	StudentID      string  `json:"student_id"`
	PaymentStatus  string  `json:"payment_status"`
	TransactionID  *string `json:"transaction_id,omitempty"`
}

// Generate encodes the registration pass as a 256x256 QR PNG.
func Generate(reg *models.Registration) ([]byte, error) {
	data, err := json.Marshal(payload{
		RegistrationID: reg.ID,
		EventID:        reg.EventID,
		StudentID:      reg.StudentID,
		PaymentStatus:  reg.PaymentStatus,
		TransactionID:  reg.TransactionID,
	})
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(string(data), qrcode.Medium, 256)
}
