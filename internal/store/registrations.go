package store

import (
	"context"
	"time"

	"github.com/KamalSai3/KS-Events/internal/models"
)

// CreateRegistrationIfCapacity inserts a registration only while the
// event holds fewer registrations than capacity. The capacity check
// and the insert execute as one conditional statement, so two
// concurrent requests near capacity cannot both get in; the unique
// (event_id, student_id) index rejects concurrent duplicates.
func (s *Store) CreateRegistrationIfCapacity(ctx context.Context, reg *models.Registration, capacity int) error {
	now := time.Now().UTC()
	reg.RegisteredAt = now
	reg.UpdatedAt = now

	res, err := s.Bun.NewRaw(`
		INSERT INTO registrations
			(id, event_id, student_id, amount_paid, payment_status,
			 payment_method, transaction_id, special_requirements,
			 registered_at, updated_at)
		SELECT ?, ?, ?, ?, ?, ?, ?, ?, ?, ?
		WHERE (SELECT COUNT(*) FROM registrations WHERE event_id = ?) < ?`,
		reg.ID, reg.EventID, reg.StudentID, reg.AmountPaid, reg.PaymentStatus,
		reg.PaymentMethod, reg.TransactionID, reg.SpecialRequirements,
		reg.RegisteredAt, reg.UpdatedAt,
		reg.EventID, capacity,
	).Exec(ctx)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCapacityExceeded
	}
	return nil
}

func (s *Store) GetRegistrationByID(ctx context.Context, id string) (*models.Registration, error) {
	var reg models.Registration
	err := s.Bun.NewSelect().
		Model(&reg).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &reg, nil
}

func (s *Store) GetRegistrationByEventAndStudent(ctx context.Context, eventID int64, studentID string) (*models.Registration, error) {
	var reg models.Registration
	err := s.Bun.NewSelect().
		Model(&reg).
		Where("event_id = ?", eventID).
		Where("student_id = ?", studentID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &reg, nil
}

func (s *Store) ListRegistrations(ctx context.Context) ([]models.Registration, error) {
	var regs []models.Registration
	err := s.Bun.NewSelect().
		Model(&regs).
		Order("registered_at").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return regs, nil
}

func (s *Store) ListRegistrationsByEvent(ctx context.Context, eventID int64) ([]models.Registration, error) {
	var regs []models.Registration
	err := s.Bun.NewSelect().
		Model(&regs).
		Where("event_id = ?", eventID).
		Order("registered_at").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return regs, nil
}

func (s *Store) ListRegistrationsByStudent(ctx context.Context, studentID string) ([]models.Registration, error) {
	var regs []models.Registration
	err := s.Bun.NewSelect().
		Model(&regs).
		Where("student_id = ?", studentID).
		Order("registered_at").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return regs, nil
}

func (s *Store) CountRegistrationsByEvent(ctx context.Context, eventID int64) (int, error) {
	return s.Bun.NewSelect().
		Model((*models.Registration)(nil)).
		Where("event_id = ?", eventID).
		Count(ctx)
}

func (s *Store) CountRegistrationsByStudent(ctx context.Context, studentID string) (int, error) {
	return s.Bun.NewSelect().
		Model((*models.Registration)(nil)).
		Where("student_id = ?", studentID).
		Count(ctx)
}

func (s *Store) CountRegistrations(ctx context.Context) (int, error) {
	return s.Bun.NewSelect().Model((*models.Registration)(nil)).Count(ctx)
}

func (s *Store) DeleteRegistration(ctx context.Context, id string) error {
	res, err := s.Bun.NewDelete().
		Model((*models.Registration)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SumPaidAmountByEvent totals amount_paid over the event's paid
// registrations. The fallback is a float literal so SQLite reports the
// empty sum as 0.0 rather than an integer zero, which would not scan
// into float64.
func (s *Store) SumPaidAmountByEvent(ctx context.Context, eventID int64) (float64, error) {
	var total float64
	err := s.Bun.NewRaw(`
		SELECT COALESCE(SUM(amount_paid), 0.0) FROM registrations
		WHERE event_id = ? AND payment_status = ?`,
		eventID, models.PaymentStatusPaid,
	).Scan(ctx, &total)
	return total, err
}

// SumPaidAmount totals amount_paid over all paid registrations.
func (s *Store) SumPaidAmount(ctx context.Context) (float64, error) {
	var total float64
	err := s.Bun.NewRaw(`
		SELECT COALESCE(SUM(amount_paid), 0.0) FROM registrations
		WHERE payment_status = ?`,
		models.PaymentStatusPaid,
	).Scan(ctx, &total)
	return total, err
}

// ListRegistrationsSince returns up to limit registrations created
// after the given instant.
func (s *Store) ListRegistrationsSince(ctx context.Context, since time.Time, limit int) ([]models.Registration, error) {
	var regs []models.Registration
	err := s.Bun.NewSelect().
		Model(&regs).
		Where("registered_at > ?", since).
		Order("registered_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return regs, nil
}
