// Package analytics aggregates dashboard and per-entity statistics for
// the admin portal. Everything is computed from the live tables on
// each request.
package analytics

import (
	"context"
	"time"

	"github.com/KamalSai3/KS-Events/internal/models"
	"github.com/KamalSai3/KS-Events/internal/projection"
)

// DBLayer is the slice of the entity store the aggregations need.
type DBLayer interface {
	CountEvents(ctx context.Context) (int, error)
	CountEventsAfter(ctx context.Context, date string) (int, error)
	ListEventsBetween(ctx context.Context, after, until string, limit int) ([]models.Event, error)
	CountRegistrations(ctx context.Context) (int, error)
	CountRegistrationsByEvent(ctx context.Context, eventID int64) (int, error)
	CountRegistrationsByStudent(ctx context.Context, studentID string) (int, error)
	ListRegistrationsSince(ctx context.Context, since time.Time, limit int) ([]models.Registration, error)
	SumPaidAmount(ctx context.Context) (float64, error)
	SumPaidAmountByEvent(ctx context.Context, eventID int64) (float64, error)
}

type Service struct {
	DB DBLayer
}

func NewService(db DBLayer) *Service {
	return &Service{DB: db}
}

// Dashboard is the admin landing-page aggregate.
type Dashboard struct {
	TotalEvents              int                   `json:"total_events"`
	TotalRegistrations       int                   `json:"total_registrations"`
	TotalRevenue             float64               `json:"total_revenue"`
	TotalRevenueFormatted    string                `json:"total_revenue_formatted"`
	UpcomingEventsCount      int                   `json:"upcoming_events_count"`
	RecentRegistrationsCount int                   `json:"recent_registrations_count"`
	UpcomingEvents           []models.Event        `json:"upcoming_events"`
	RecentRegistrations      []models.Registration `json:"recent_registrations"`
}

// EventStats carries the per-event admin listing figures.
type EventStats struct {
	RegistrationCount int     `json:"registration_count"`
	Revenue           float64 `json:"revenue"`
}

const (
	upcomingWindowDays = 30
	recentWindowDays   = 7
	dashboardListLimit = 5
)

// GetDashboard aggregates totals, the next 30 days of events and the
// last 7 days of registrations.
func (s *Service) GetDashboard(ctx context.Context) (*Dashboard, error) {
	totalEvents, err := s.DB.CountEvents(ctx)
	if err != nil {
		return nil, err
	}
	totalRegistrations, err := s.DB.CountRegistrations(ctx)
	if err != nil {
		return nil, err
	}
	totalRevenue, err := s.DB.SumPaidAmount(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	today := now.Format(models.DateLayout)
	horizon := now.AddDate(0, 0, upcomingWindowDays).Format(models.DateLayout)

	upcomingCount, err := s.DB.CountEventsAfter(ctx, today)
	if err != nil {
		return nil, err
	}
	upcoming, err := s.DB.ListEventsBetween(ctx, today, horizon, dashboardListLimit)
	if err != nil {
		return nil, err
	}
	recent, err := s.DB.ListRegistrationsSince(ctx, now.AddDate(0, 0, -recentWindowDays), dashboardListLimit)
	if err != nil {
		return nil, err
	}

	if upcoming == nil {
		upcoming = []models.Event{}
	}
	if recent == nil {
		recent = []models.Registration{}
	}

	return &Dashboard{
		TotalEvents:              totalEvents,
		TotalRegistrations:       totalRegistrations,
		TotalRevenue:             totalRevenue,
		TotalRevenueFormatted:    projection.FormatAmount(totalRevenue),
		UpcomingEventsCount:      upcomingCount,
		RecentRegistrationsCount: len(recent),
		UpcomingEvents:           upcoming,
		RecentRegistrations:      recent,
	}, nil
}

// GetEventStats returns the admin listing figures for one event.
func (s *Service) GetEventStats(ctx context.Context, eventID int64) (*EventStats, error) {
	count, err := s.DB.CountRegistrationsByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	revenue, err := s.DB.SumPaidAmountByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return &EventStats{RegistrationCount: count, Revenue: revenue}, nil
}

// GetStudentRegistrationCount returns how many events a student has
// registered for.
func (s *Service) GetStudentRegistrationCount(ctx context.Context, studentID string) (int, error) {
	return s.DB.CountRegistrationsByStudent(ctx, studentID)
}
