package api_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/KamalSai3/KS-Events/internal/analytics"
	"github.com/KamalSai3/KS-Events/internal/api"
	"github.com/KamalSai3/KS-Events/internal/auth"
	"github.com/KamalSai3/KS-Events/internal/models"
	"github.com/KamalSai3/KS-Events/internal/registration"
	"github.com/KamalSai3/KS-Events/internal/store"
)

func setupServer(t *testing.T) (*chi.Mux, *store.Store) {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	require.NoError(t, err, "Failed to open test database")
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	s := store.New(bunDB)
	require.NoError(t, s.Reset(context.Background()), "Failed to reset test database")
	t.Cleanup(func() { bunDB.Close() })

	handler := api.NewHandler(
		s,
		registration.NewService(s, nil, nil),
		analytics.NewService(s),
		auth.NewVerifier(s),
		nil,
	)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, s
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), "Response body is not a JSON object: %s", rec.Body.String())
	return body
}

func registerStudent(t *testing.T, r http.Handler, usn string) {
	t.Helper()

	rec := doJSON(t, r, http.MethodPost, "/student/register", map[string]interface{}{
		"usn":      usn,
		"name":     "Test Student",
		"email":    usn + "@college.edu",
		"password": "secret123",
		"semester": 4,
		"branch":   "Computer Science",
	})
	require.Equal(t, http.StatusCreated, rec.Code, "Student registration failed: %s", rec.Body.String())
}

func createEvent(t *testing.T, r http.Handler, capacity int, price interface{}) int64 {
	t.Helper()

	starts := time.Now().Add(72 * time.Hour)
	rec := doJSON(t, r, http.MethodPost, "/admin/events", map[string]interface{}{
		"title":       "Tech Talk",
		"description": "An evening of talks",
		"date":        starts.Format(models.DateLayout),
		"time":        starts.Format(models.TimeLayout),
		"location":    "Auditorium",
		"category":    "Technical",
		"capacity":    capacity,
		"price":       price,
	})
	require.Equal(t, http.StatusCreated, rec.Code, "Event creation failed: %s", rec.Body.String())

	body := decodeBody(t, rec)
	event := body["event"].(map[string]interface{})
	return int64(event["id"].(float64))
}

func TestStudentRegisterValidation(t *testing.T) {
	r, _ := setupServer(t)

	// Missing required field.
	rec := doJSON(t, r, http.MethodPost, "/student/register", map[string]interface{}{
		"usn":      "1MS21CS001",
		"name":     "Test Student",
		"email":    "a@college.edu",
		"password": "secret123",
		"semester": 4,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "branch is required", decodeBody(t, rec)["message"])

	// Out-of-range semester.
	rec = doJSON(t, r, http.MethodPost, "/student/register", map[string]interface{}{
		"usn":      "1MS21CS001",
		"name":     "Test Student",
		"email":    "a@college.edu",
		"password": "secret123",
		"semester": 9,
		"branch":   "Computer Science",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Semester must be between 1 and 8", decodeBody(t, rec)["message"])

	// Unknown branch.
	rec = doJSON(t, r, http.MethodPost, "/student/register", map[string]interface{}{
		"usn":      "1MS21CS001",
		"name":     "Test Student",
		"email":    "a@college.edu",
		"password": "secret123",
		"semester": 4,
		"branch":   "Astrology",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid branch", decodeBody(t, rec)["message"])
}

func TestStudentRegisterAndLogin(t *testing.T) {
	r, _ := setupServer(t)

	registerStudent(t, r, "1MS21CS001")

	// Duplicate USN is rejected.
	rec := doJSON(t, r, http.MethodPost, "/student/register", map[string]interface{}{
		"usn":      "1MS21CS001",
		"name":     "Someone Else",
		"email":    "other@college.edu",
		"password": "secret123",
		"semester": 4,
		"branch":   "Computer Science",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "USN or email already exists", decodeBody(t, rec)["message"])

	// Correct credentials.
	rec = doJSON(t, r, http.MethodPost, "/student/login", map[string]interface{}{
		"usn":      "1MS21CS001",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "success", body["status"])
	student := body["student"].(map[string]interface{})
	assert.Equal(t, "1MS21CS001", student["usn"])
	assert.NotContains(t, student, "password_hash", "Password hash must never be serialized")

	// Wrong password.
	rec = doJSON(t, r, http.MethodPost, "/student/login", map[string]interface{}{
		"usn":      "1MS21CS001",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid USN or password", decodeBody(t, rec)["message"])
}

func TestAdminCreateEventValidation(t *testing.T) {
	r, _ := setupServer(t)

	// Missing capacity.
	rec := doJSON(t, r, http.MethodPost, "/admin/events", map[string]interface{}{
		"title":       "Tech Talk",
		"description": "Talks",
		"date":        "2026-10-15",
		"time":        "18:00",
		"location":    "Auditorium",
		"category":    "Technical",
		"price":       100,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "capacity is required", decodeBody(t, rec)["message"])

	// Unparseable price string.
	rec = doJSON(t, r, http.MethodPost, "/admin/events", map[string]interface{}{
		"title":       "Tech Talk",
		"description": "Talks",
		"date":        "2026-10-15",
		"time":        "18:00",
		"location":    "Auditorium",
		"category":    "Technical",
		"capacity":    50,
		"price":       "lots",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid price format", decodeBody(t, rec)["message"])

	// "free" is an accepted price spelling.
	eventID := createEvent(t, r, 50, "free")
	assert.NotZero(t, eventID)
}

func TestEventLifecycle(t *testing.T) {
	r, _ := setupServer(t)

	eventID := createEvent(t, r, 50, 100.0)

	// Public catalog carries the formatted price.
	rec := doJSON(t, r, http.MethodGet, "/events", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var events []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	require.Len(t, events, 1)
	assert.Equal(t, "₹100.00", events[0]["price_formatted"])

	// Update the title.
	rec = doJSON(t, r, http.MethodPut, fmt.Sprintf("/admin/events/%d", eventID), map[string]interface{}{
		"title": "Tech Talk 2.0",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Tech Talk 2.0", body["event"].(map[string]interface{})["title"])

	// Single-event view exposes availability.
	rec = doJSON(t, r, http.MethodGet, fmt.Sprintf("/events/%d", eventID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	assert.Equal(t, float64(50), body["available_spots"])
	assert.Equal(t, false, body["is_full"])

	// Delete, then 404.
	rec = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/admin/events/%d", eventID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Event deleted", decodeBody(t, rec)["message"])

	rec = doJSON(t, r, http.MethodGet, fmt.Sprintf("/events/%d", eventID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRegistrationFlow(t *testing.T) {
	r, _ := setupServer(t)

	registerStudent(t, r, "1MS21CS001")
	eventID := createEvent(t, r, 50, 150.0)

	rec := doJSON(t, r, http.MethodPost, "/student/register-event", map[string]interface{}{
		"event_id":   eventID,
		"student_id": "1MS21CS001",
	})
	require.Equal(t, http.StatusCreated, rec.Code, "Registration failed: %s", rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, "success", body["status"])

	reg := body["registration"].(map[string]interface{})
	assert.Equal(t, float64(150), reg["amount_paid"])
	assert.Equal(t, "paid", reg["payment_status"])
	assert.NotNil(t, reg["transaction_id"])
	regID := reg["id"].(string)

	// The student's registration list joins in the event.
	rec = doJSON(t, r, http.MethodGet, "/student/registrations/1MS21CS001", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var regs []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &regs))
	require.Len(t, regs, 1)
	assert.NotNil(t, regs[0]["event"])

	// The QR pass renders as a PNG.
	rec = doJSON(t, r, http.MethodGet, "/student/registrations/"+regID+"/qr", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	// Duplicate signups are rejected.
	rec = doJSON(t, r, http.MethodPost, "/student/register-event", map[string]interface{}{
		"event_id":   eventID,
		"student_id": "1MS21CS001",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Already registered for this event", decodeBody(t, rec)["message"])

	// The event starts in 72 hours, so cancellation succeeds.
	rec = doJSON(t, r, http.MethodDelete, "/student/registrations/"+regID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Registration cancelled", decodeBody(t, rec)["message"])

	rec = doJSON(t, r, http.MethodDelete, "/student/registrations/"+regID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Registration not found", decodeBody(t, rec)["message"])
}

func TestRegistrationCapacityRace(t *testing.T) {
	r, _ := setupServer(t)

	// Two students, one spot. Exactly one wins.
	registerStudent(t, r, "1MS21CS001")
	registerStudent(t, r, "1MS21CS002")
	eventID := createEvent(t, r, 1, "free")

	rec := doJSON(t, r, http.MethodPost, "/student/register-event", map[string]interface{}{
		"event_id":   eventID,
		"student_id": "1MS21CS001",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	winnerRegID := decodeBody(t, rec)["registration"].(map[string]interface{})["id"].(string)

	rec = doJSON(t, r, http.MethodPost, "/student/register-event", map[string]interface{}{
		"event_id":   eventID,
		"student_id": "1MS21CS002",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Event is full", decodeBody(t, rec)["message"])

	// Catalog now reports the event as full.
	rec = doJSON(t, r, http.MethodGet, fmt.Sprintf("/events/%d", eventID), nil)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["is_full"])
	assert.Equal(t, float64(0), body["available_spots"])

	// The winner cancels (the event is 72 hours out, so the window is
	// open), which frees the spot again.
	rec = doJSON(t, r, http.MethodDelete, "/student/registrations/"+winnerRegID, nil)
	require.Equal(t, http.StatusOK, rec.Code, "Cancellation failed: %s", rec.Body.String())

	rec = doJSON(t, r, http.MethodGet, fmt.Sprintf("/events/%d", eventID), nil)
	body = decodeBody(t, rec)
	assert.Equal(t, false, body["is_full"])
	assert.Equal(t, float64(1), body["available_spots"])

	// The previously rejected student can now take it.
	rec = doJSON(t, r, http.MethodPost, "/student/register-event", map[string]interface{}{
		"event_id":   eventID,
		"student_id": "1MS21CS002",
	})
	assert.Equal(t, http.StatusCreated, rec.Code, "Reregistration failed: %s", rec.Body.String())
}

func TestRegistrationPreconditionErrors(t *testing.T) {
	r, _ := setupServer(t)

	registerStudent(t, r, "1MS21CS001")

	// Unknown event.
	rec := doJSON(t, r, http.MethodPost, "/student/register-event", map[string]interface{}{
		"event_id":   9999,
		"student_id": "1MS21CS001",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Event not found or inactive", decodeBody(t, rec)["message"])

	// Unknown student.
	eventID := createEvent(t, r, 10, "free")
	rec = doJSON(t, r, http.MethodPost, "/student/register-event", map[string]interface{}{
		"event_id":   eventID,
		"student_id": "ghost",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Student not found", decodeBody(t, rec)["message"])

	// Missing body fields.
	rec = doJSON(t, r, http.MethodPost, "/student/register-event", map[string]interface{}{
		"event_id": eventID,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "event_id and student_id are required", decodeBody(t, rec)["message"])
}

func TestCancellationWindow(t *testing.T) {
	r, s := setupServer(t)

	registerStudent(t, r, "1MS21CS001")

	// Event starting in 2 hours, created through the store so the
	// date can sit inside the cancellation window.
	starts := time.Now().Add(2 * time.Hour)
	event := &models.Event{
		Title:       "Last Minute Talk",
		Description: "Soon",
		Date:        starts.Format(models.DateLayout),
		Time:        starts.Format(models.TimeLayout),
		Location:    "Auditorium",
		Category:    "Technical",
		Capacity:    10,
		Status:      models.EventStatusActive,
	}
	require.NoError(t, s.CreateEvent(context.Background(), event))

	rec := doJSON(t, r, http.MethodPost, "/student/register-event", map[string]interface{}{
		"event_id":   event.ID,
		"student_id": "1MS21CS001",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	regID := decodeBody(t, rec)["registration"].(map[string]interface{})["id"].(string)

	rec = doJSON(t, r, http.MethodDelete, "/student/registrations/"+regID, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Cannot cancel within 24 hours of event", decodeBody(t, rec)["message"])
}

func TestAdminDashboardAndListings(t *testing.T) {
	r, _ := setupServer(t)

	registerStudent(t, r, "1MS21CS001")
	eventID := createEvent(t, r, 50, 100.0)

	// With no registrations yet, both admin views must still render
	// with zero revenue.
	rec := doJSON(t, r, http.MethodGet, "/admin/events", nil)
	require.Equal(t, http.StatusOK, rec.Code, "Admin events failed: %s", rec.Body.String())
	var bare []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bare))
	require.Len(t, bare, 1)
	assert.Equal(t, float64(0), bare[0]["revenue"])

	rec = doJSON(t, r, http.MethodGet, "/admin/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code, "Admin dashboard failed: %s", rec.Body.String())
	assert.Equal(t, float64(0), decodeBody(t, rec)["total_revenue"])

	rec = doJSON(t, r, http.MethodPost, "/student/register-event", map[string]interface{}{
		"event_id":   eventID,
		"student_id": "1MS21CS001",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Dashboard totals.
	rec = doJSON(t, r, http.MethodGet, "/admin/dashboard", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(1), body["total_events"])
	assert.Equal(t, float64(1), body["total_registrations"])
	assert.Equal(t, float64(100), body["total_revenue"])
	assert.Equal(t, "₹100.00", body["total_revenue_formatted"])

	// Admin event listing carries per-event stats.
	rec = doJSON(t, r, http.MethodGet, "/admin/events", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var events []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	require.Len(t, events, 1)
	assert.Equal(t, float64(1), events[0]["registration_count"])
	assert.Equal(t, float64(100), events[0]["revenue"])

	// Event details join registrations in.
	rec = doJSON(t, r, http.MethodGet, fmt.Sprintf("/admin/events/%d/details", eventID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	assert.Equal(t, float64(1), body["total_registrations"])
	assert.Equal(t, float64(49), body["available_spots"])

	// Student listing carries registration counts.
	rec = doJSON(t, r, http.MethodGet, "/admin/students", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var students []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &students))
	require.Len(t, students, 1)
	assert.Equal(t, float64(1), students[0]["registration_count"])
}

func TestPublicLookups(t *testing.T) {
	r, _ := setupServer(t)

	rec := doJSON(t, r, http.MethodGet, "/branches", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var branches []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &branches))
	assert.Len(t, branches, 6)

	rec = doJSON(t, r, http.MethodGet, "/semesters", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var semesters []int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &semesters))
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, semesters)

	rec = doJSON(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
}

func TestProcessPayment(t *testing.T) {
	r, _ := setupServer(t)

	rec := doJSON(t, r, http.MethodPost, "/payment/process", map[string]interface{}{
		"amount":         250.0,
		"payment_method": "upi",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, "upi", body["payment_method"])
	assert.NotNil(t, body["transaction_id"])

	// Zero amount settles as free with no transaction id.
	rec = doJSON(t, r, http.MethodPost, "/payment/process", map[string]interface{}{
		"amount": 0,
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	assert.Equal(t, "free", body["payment_method"])
	assert.Nil(t, body["transaction_id"])
}
