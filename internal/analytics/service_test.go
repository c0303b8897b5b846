package analytics_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/KamalSai3/KS-Events/internal/analytics"
	"github.com/KamalSai3/KS-Events/internal/models"
)

type MockDB struct {
	events        []models.Event
	registrations []models.Registration
	revenue       float64
	eventRevenue  map[int64]float64
	shouldFailOn  string
	errorMsg      string
}

func NewMockDB() *MockDB {
	return &MockDB{eventRevenue: make(map[int64]float64)}
}

func (m *MockDB) CountEvents(ctx context.Context) (int, error) {
	if m.shouldFailOn == "CountEvents" {
		return 0, errors.New(m.errorMsg)
	}
	return len(m.events), nil
}

func (m *MockDB) CountEventsAfter(ctx context.Context, date string) (int, error) {
	if m.shouldFailOn == "CountEventsAfter" {
		return 0, errors.New(m.errorMsg)
	}
	count := 0
	for _, e := range m.events {
		if e.Date > date {
			count++
		}
	}
	return count, nil
}

func (m *MockDB) ListEventsBetween(ctx context.Context, after, until string, limit int) ([]models.Event, error) {
	if m.shouldFailOn == "ListEventsBetween" {
		return nil, errors.New(m.errorMsg)
	}
	var out []models.Event
	for _, e := range m.events {
		if e.Date > after && e.Date <= until && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockDB) CountRegistrations(ctx context.Context) (int, error) {
	if m.shouldFailOn == "CountRegistrations" {
		return 0, errors.New(m.errorMsg)
	}
	return len(m.registrations), nil
}

func (m *MockDB) CountRegistrationsByEvent(ctx context.Context, eventID int64) (int, error) {
	if m.shouldFailOn == "CountRegistrationsByEvent" {
		return 0, errors.New(m.errorMsg)
	}
	count := 0
	for _, r := range m.registrations {
		if r.EventID == eventID {
			count++
		}
	}
	return count, nil
}

func (m *MockDB) CountRegistrationsByStudent(ctx context.Context, studentID string) (int, error) {
	if m.shouldFailOn == "CountRegistrationsByStudent" {
		return 0, errors.New(m.errorMsg)
	}
	count := 0
	for _, r := range m.registrations {
		if r.StudentID == studentID {
			count++
		}
	}
	return count, nil
}

func (m *MockDB) ListRegistrationsSince(ctx context.Context, since time.Time, limit int) ([]models.Registration, error) {
	if m.shouldFailOn == "ListRegistrationsSince" {
		return nil, errors.New(m.errorMsg)
	}
	var out []models.Registration
	for _, r := range m.registrations {
		if r.RegisteredAt.After(since) && len(out) < limit {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MockDB) SumPaidAmount(ctx context.Context) (float64, error) {
	if m.shouldFailOn == "SumPaidAmount" {
		return 0, errors.New(m.errorMsg)
	}
	return m.revenue, nil
}

func (m *MockDB) SumPaidAmountByEvent(ctx context.Context, eventID int64) (float64, error) {
	if m.shouldFailOn == "SumPaidAmountByEvent" {
		return 0, errors.New(m.errorMsg)
	}
	return m.eventRevenue[eventID], nil
}

func TestGetDashboard(t *testing.T) {
	db := NewMockDB()
	svc := analytics.NewService(db)

	now := time.Now()
	db.events = []models.Event{
		{ID: 1, Date: now.AddDate(0, 0, 5).Format(models.DateLayout)},
		{ID: 2, Date: now.AddDate(0, 0, 10).Format(models.DateLayout)},
		{ID: 3, Date: now.AddDate(0, 0, -5).Format(models.DateLayout)}, // past
	}
	db.registrations = []models.Registration{
		{ID: "r1", EventID: 1, RegisteredAt: now.AddDate(0, 0, -1)},
		{ID: "r2", EventID: 2, RegisteredAt: now.AddDate(0, 0, -20)}, // older than a week
	}
	db.revenue = 500.0

	dash, err := svc.GetDashboard(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if dash.TotalEvents != 3 {
		t.Errorf("Expected 3 total events, got %d", dash.TotalEvents)
	}
	if dash.TotalRegistrations != 2 {
		t.Errorf("Expected 2 total registrations, got %d", dash.TotalRegistrations)
	}
	if dash.TotalRevenue != 500.0 {
		t.Errorf("Expected revenue 500.0, got %f", dash.TotalRevenue)
	}
	if dash.TotalRevenueFormatted != "₹500.00" {
		t.Errorf("Expected formatted revenue ₹500.00, got %q", dash.TotalRevenueFormatted)
	}
	if dash.UpcomingEventsCount != 2 {
		t.Errorf("Expected 2 upcoming events, got %d", dash.UpcomingEventsCount)
	}
	if len(dash.UpcomingEvents) != 2 {
		t.Errorf("Expected 2 upcoming events listed, got %d", len(dash.UpcomingEvents))
	}
	if dash.RecentRegistrationsCount != 1 {
		t.Errorf("Expected 1 recent registration, got %d", dash.RecentRegistrationsCount)
	}
}

func TestGetDashboardEmpty(t *testing.T) {
	db := NewMockDB()
	svc := analytics.NewService(db)

	dash, err := svc.GetDashboard(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Lists must be empty slices, never nil, so they encode as [].
	if dash.UpcomingEvents == nil {
		t.Error("Expected empty upcoming events slice, got nil")
	}
	if dash.RecentRegistrations == nil {
		t.Error("Expected empty recent registrations slice, got nil")
	}
	if dash.TotalRevenueFormatted != "₹0.00" {
		t.Errorf("Expected ₹0.00, got %q", dash.TotalRevenueFormatted)
	}
}

func TestGetDashboardDBFailure(t *testing.T) {
	db := NewMockDB()
	svc := analytics.NewService(db)

	db.shouldFailOn = "SumPaidAmount"
	db.errorMsg = "db error"

	_, err := svc.GetDashboard(context.Background())
	if err == nil {
		t.Error("Expected error when DB fails, got nil")
	}
}

func TestGetEventStats(t *testing.T) {
	db := NewMockDB()
	svc := analytics.NewService(db)

	db.registrations = []models.Registration{
		{ID: "r1", EventID: 1},
		{ID: "r2", EventID: 1},
		{ID: "r3", EventID: 2},
	}
	db.eventRevenue[1] = 300.0

	stats, err := svc.GetEventStats(context.Background(), 1)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if stats.RegistrationCount != 2 {
		t.Errorf("Expected 2 registrations, got %d", stats.RegistrationCount)
	}
	if stats.Revenue != 300.0 {
		t.Errorf("Expected revenue 300.0, got %f", stats.Revenue)
	}
}

func TestGetStudentRegistrationCount(t *testing.T) {
	db := NewMockDB()
	svc := analytics.NewService(db)

	db.registrations = []models.Registration{
		{ID: "r1", EventID: 1, StudentID: "1MS21CS001"},
		{ID: "r2", EventID: 2, StudentID: "1MS21CS001"},
	}

	count, err := svc.GetStudentRegistrationCount(context.Background(), "1MS21CS001")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 registrations, got %d", count)
	}
}
