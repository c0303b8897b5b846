// Package registration implements the event-registration lifecycle:
// capacity enforcement, duplicate rejection, payment settlement and
// the conditional cancellation window.
package registration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/KamalSai3/KS-Events/internal/models"
	"github.com/KamalSai3/KS-Events/internal/payment"
	"github.com/KamalSai3/KS-Events/internal/store"
)

// CancellationWindow is the minimum lead time before an event's start
// within which a registration can no longer be cancelled.
const CancellationWindow = 24 * time.Hour

// DBLayer is the slice of the entity store the engine depends on.
type DBLayer interface {
	GetEventByIDAndStatus(ctx context.Context, id int64, status string) (*models.Event, error)
	GetEventByID(ctx context.Context, id int64) (*models.Event, error)
	GetStudentByID(ctx context.Context, id string) (*models.Student, error)
	GetRegistrationByEventAndStudent(ctx context.Context, eventID int64, studentID string) (*models.Registration, error)
	CountRegistrationsByEvent(ctx context.Context, eventID int64) (int, error)
	CreateRegistrationIfCapacity(ctx context.Context, reg *models.Registration, capacity int) error
	GetRegistrationByID(ctx context.Context, id string) (*models.Registration, error)
	DeleteRegistration(ctx context.Context, id string) error
}

// RegistrationLock is an advisory pre-gate on a (event, student) pair.
// Correctness never depends on it; the store transaction does the real
// enforcement.
type RegistrationLock interface {
	LockRegistration(ctx context.Context, eventID int64, studentID string) (bool, error)
	UnlockRegistration(ctx context.Context, eventID int64, studentID string) error
}

// Publisher streams registration lifecycle events. Publish failures
// are logged, never surfaced to the caller.
type Publisher interface {
	PublishRegistrationCreated(reg models.Registration) error
	PublishRegistrationCancelled(reg models.Registration) error
}

type Service struct {
	DB    DBLayer
	Lock  RegistrationLock
	Kafka Publisher
}

func NewService(db DBLayer, lock RegistrationLock, kafka Publisher) *Service {
	return &Service{DB: db, Lock: lock, Kafka: kafka}
}

// RegisterRequest carries the signup parameters.
type RegisterRequest struct {
	EventID             int64  `json:"event_id"`
	StudentID           string `json:"student_id"`
	PaymentMethod       string `json:"payment_method"`
	SpecialRequirements string `json:"special_requirements"`
}

// Result is the composed outcome of a successful signup.
type Result struct {
	Registration *models.Registration `json:"registration"`
	Event        *models.Event        `json:"event"`
	Student      *models.Student      `json:"student"`
}

// Register signs a student up for an event. Preconditions run in
// order, first failure wins: active event, known student, no existing
// registration, spare capacity. Payment settles immediately: paid
// events get a transaction id, free events are trivially paid.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Result, error) {
	event, err := s.DB.GetEventByIDAndStatus(ctx, req.EventID, models.EventStatusActive)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("load event %d: %w", req.EventID, err)
	}

	student, err := s.DB.GetStudentByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("load student %s: %w", req.StudentID, err)
	}

	_, err = s.DB.GetRegistrationByEventAndStudent(ctx, req.EventID, req.StudentID)
	if err == nil {
		return nil, ErrAlreadyRegistered
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("check existing registration: %w", err)
	}

	count, err := s.DB.CountRegistrationsByEvent(ctx, req.EventID)
	if err != nil {
		return nil, fmt.Errorf("count registrations for event %d: %w", req.EventID, err)
	}
	if count >= event.Capacity {
		return nil, ErrEventFull
	}

	if s.Lock != nil {
		ok, err := s.Lock.LockRegistration(ctx, req.EventID, req.StudentID)
		if err == nil && !ok {
			// Another request for the same pair is in flight.
			return nil, ErrAlreadyRegistered
		}
	}

	method := req.PaymentMethod
	if method == "" {
		method = models.DefaultPaymentMethod
	}

	reg := &models.Registration{
		ID:                  uuid.NewString(),
		EventID:             req.EventID,
		StudentID:           req.StudentID,
		AmountPaid:          event.Price,
		PaymentStatus:       models.PaymentStatusPaid,
		PaymentMethod:       method,
		SpecialRequirements: req.SpecialRequirements,
	}
	if event.Price > 0 {
		txn := payment.NewTransactionID()
		reg.TransactionID = &txn
	}

	err = s.DB.CreateRegistrationIfCapacity(ctx, reg, event.Capacity)
	if err != nil {
		if s.Lock != nil {
			_ = s.Lock.UnlockRegistration(ctx, req.EventID, req.StudentID)
		}
		switch {
		case errors.Is(err, store.ErrCapacityExceeded):
			return nil, ErrEventFull
		case errors.Is(err, store.ErrDuplicate):
			return nil, ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("create registration: %w", err)
	}

	if s.Lock != nil {
		_ = s.Lock.UnlockRegistration(ctx, req.EventID, req.StudentID)
	}
	if s.Kafka != nil {
		_ = s.Kafka.PublishRegistrationCreated(*reg)
	}

	return &Result{Registration: reg, Event: event, Student: student}, nil
}

// Cancel deletes a registration unless its event starts in less than
// 24 hours. A registration whose parent event cannot be found is
// orphaned; it is cancelled with no window check.
func (s *Service) Cancel(ctx context.Context, registrationID string) error {
	reg, err := s.DB.GetRegistrationByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrRegistrationNotFound
		}
		return fmt.Errorf("load registration %s: %w", registrationID, err)
	}

	event, err := s.DB.GetEventByID(ctx, reg.EventID)
	if err == nil {
		if startsAt, perr := event.StartsAt(); perr == nil {
			if time.Until(startsAt) < CancellationWindow {
				return ErrCancellationWindowClosed
			}
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("load event %d: %w", reg.EventID, err)
	}

	if err := s.DB.DeleteRegistration(ctx, registrationID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrRegistrationNotFound
		}
		return fmt.Errorf("delete registration %s: %w", registrationID, err)
	}

	if s.Kafka != nil {
		_ = s.Kafka.PublishRegistrationCancelled(*reg)
	}
	return nil
}

// Get returns a registration by id.
func (s *Service) Get(ctx context.Context, registrationID string) (*models.Registration, error) {
	reg, err := s.DB.GetRegistrationByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}
	return reg, nil
}
