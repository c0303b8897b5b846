package models

import (
	"errors"
	"time"

	"github.com/uptrace/bun"
)

// Payment statuses a registration can carry. The engine settles every
// registration immediately, so "pending" exists only for completeness.
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
)

const DefaultPaymentMethod = "card"

var (
	errSemesterRange = errors.New("Semester must be between 1 and 8")
	errInvalidBranch = errors.New("Invalid branch")
)

// Registration links a student to an event. At most one registration
// exists per (event, student) pair; rows are deleted on cancellation,
// never mutated after creation.
type Registration struct {
	bun.BaseModel `bun:"table:registrations"`

	ID                  string    `bun:"id,pk" json:"id"`
	EventID             int64     `bun:"event_id,notnull,unique:reg_event_student" json:"event_id"`
	StudentID           string    `bun:"student_id,notnull,unique:reg_event_student" json:"student_id"`
	AmountPaid          float64   `bun:"amount_paid,notnull" json:"amount_paid"`
	PaymentStatus       string    `bun:"payment_status,default:'pending'" json:"payment_status"`
	PaymentMethod       string    `bun:"payment_method,default:'card'" json:"payment_method"`
	TransactionID       *string   `bun:"transaction_id" json:"transaction_id"`
	SpecialRequirements string    `bun:"special_requirements" json:"special_requirements"`
	RegisteredAt        time.Time `bun:"registered_at,notnull" json:"registered_at"`
	UpdatedAt           time.Time `bun:"updated_at,notnull" json:"updated_at"`
}
