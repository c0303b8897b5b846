package store

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"github.com/KamalSai3/KS-Events/internal/models"
)

func (s *Store) CreateEvent(ctx context.Context, event *models.Event) error {
	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now
	if event.Status == "" {
		event.Status = models.EventStatusActive
	}
	_, err := s.Bun.NewInsert().Model(event).Exec(ctx)
	return err
}

func (s *Store) GetEventByID(ctx context.Context, id int64) (*models.Event, error) {
	var event models.Event
	err := s.Bun.NewSelect().
		Model(&event).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &event, nil
}

// GetEventByIDAndStatus fetches an event only if it carries the given
// status; a status mismatch reads the same as a missing event.
func (s *Store) GetEventByIDAndStatus(ctx context.Context, id int64, status string) (*models.Event, error) {
	var event models.Event
	err := s.Bun.NewSelect().
		Model(&event).
		Where("id = ?", id).
		Where("status = ?", status).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &event, nil
}

func (s *Store) ListEvents(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	err := s.Bun.NewSelect().
		Model(&events).
		Order("id").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (s *Store) ListEventsByStatus(ctx context.Context, status string) ([]models.Event, error) {
	var events []models.Event
	err := s.Bun.NewSelect().
		Model(&events).
		Where("status = ?", status).
		Order("id").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return events, nil
}

// UpdateEvent applies a validated patch to the stored event and
// refreshes updated_at. The patched row is returned.
func (s *Store) UpdateEvent(ctx context.Context, id int64, patch *models.EventPatch) (*models.Event, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	event, err := s.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(event)
	event.UpdatedAt = time.Now().UTC()

	_, err = s.Bun.NewUpdate().
		Model(event).
		Column("title", "description", "date", "time", "duration", "location",
			"category", "capacity", "price", "image", "organizer", "status",
			"tags", "updated_at").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	return event, nil
}

// DeleteEvent removes an event and cascades to its registrations in
// one transaction. A registration cannot outlive its event.
func (s *Store) DeleteEvent(ctx context.Context, id int64) error {
	if _, err := s.GetEventByID(ctx, id); err != nil {
		return err
	}
	return s.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*models.Registration)(nil)).
			Where("event_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewDelete().
			Model((*models.Event)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		return err
	})
}

func (s *Store) CountEvents(ctx context.Context) (int, error) {
	return s.Bun.NewSelect().Model((*models.Event)(nil)).Count(ctx)
}

// CountEventsAfter counts events dated strictly after the given day.
// Dates are stored as YYYY-MM-DD strings, so string comparison orders
// them chronologically.
func (s *Store) CountEventsAfter(ctx context.Context, date string) (int, error) {
	return s.Bun.NewSelect().
		Model((*models.Event)(nil)).
		Where("date > ?", date).
		Count(ctx)
}

// ListEventsBetween returns up to limit events with after < date <= until.
func (s *Store) ListEventsBetween(ctx context.Context, after, until string, limit int) ([]models.Event, error) {
	var events []models.Event
	err := s.Bun.NewSelect().
		Model(&events).
		Where("date > ?", after).
		Where("date <= ?", until).
		Order("date").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (s *Store) ListDistinctCategories(ctx context.Context) ([]string, error) {
	var categories []string
	err := s.Bun.NewSelect().
		Model((*models.Event)(nil)).
		Column("category").
		Distinct().
		Order("category").
		Scan(ctx, &categories)
	if err != nil {
		return nil, err
	}
	return categories, nil
}
