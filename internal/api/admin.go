package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/KamalSai3/KS-Events/internal/models"
	"github.com/KamalSai3/KS-Events/internal/projection"
	"github.com/KamalSai3/KS-Events/internal/store"
	"github.com/KamalSai3/KS-Events/internal/utils"
)

func eventIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "eventID"), 10, 64)
}

// parsePrice accepts a JSON number or the literal strings
// "free"/"Free".
func parsePrice(v interface{}) (float64, error) {
	switch p := v.(type) {
	case float64:
		return p, nil
	case string:
		if p == "free" || p == "Free" {
			return 0, nil
		}
		parsed, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, errors.New("Invalid price format")
		}
		return parsed, nil
	default:
		return 0, errors.New("Invalid price format")
	}
}

// eventWithStats is an event plus the admin listing figures.
type eventWithStats struct {
	models.Event
	RegistrationCount int     `json:"registration_count"`
	Revenue           float64 `json:"revenue"`
	PriceFormatted    string  `json:"price_formatted"`
}

// AdminListEvents lists all events with registration counts and
// revenue.
func (h *Handler) AdminListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.Store.ListEvents(r.Context())
	if err != nil {
		h.logError("AdminListEvents", err)
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]eventWithStats, 0, len(events))
	for i := range events {
		stats, err := h.Analytics.GetEventStats(r.Context(), events[i].ID)
		if err != nil {
			h.logError("AdminListEvents", err)
			utils.WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		out = append(out, eventWithStats{
			Event:             events[i],
			RegistrationCount: stats.RegistrationCount,
			Revenue:           stats.Revenue,
			PriceFormatted:    projection.FormatPrice(events[i].Price),
		})
	}
	utils.WriteJSON(w, http.StatusOK, out)
}

type createEventRequest struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Date        string      `json:"date"`
	Time        string      `json:"time"`
	Duration    *int        `json:"duration"`
	Location    string      `json:"location"`
	Category    string      `json:"category"`
	Capacity    int         `json:"capacity"`
	Price       interface{} `json:"price"`
	Image       string      `json:"image"`
	Organizer   string      `json:"organizer"`
	Tags        []string    `json:"tags"`
}

// AdminCreateEvent creates an event with status "active".
func (h *Handler) AdminCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	required := []struct {
		name  string
		empty bool
	}{
		{"title", req.Title == ""},
		{"description", req.Description == ""},
		{"date", req.Date == ""},
		{"time", req.Time == ""},
		{"location", req.Location == ""},
		{"category", req.Category == ""},
		{"capacity", req.Capacity == 0},
		{"price", req.Price == nil || req.Price == float64(0)},
	}
	for _, f := range required {
		if f.empty {
			utils.WriteError(w, http.StatusBadRequest, fmt.Sprintf("%s is required", f.name))
			return
		}
	}

	if _, err := time.Parse(models.DateLayout, req.Date); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "date must be in YYYY-MM-DD format")
		return
	}
	if _, err := time.Parse(models.TimeLayout, req.Time); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "time must be in HH:MM format")
		return
	}

	price, err := parsePrice(req.Price)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	duration := 2
	if req.Duration != nil {
		duration = *req.Duration
	}
	organizer := req.Organizer
	if organizer == "" {
		organizer = "Admin"
	}
	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	event := &models.Event{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Date:        req.Date,
		Time:        req.Time,
		Duration:    duration,
		Location:    strings.TrimSpace(req.Location),
		Category:    strings.TrimSpace(req.Category),
		Capacity:    req.Capacity,
		Price:       price,
		Image:       req.Image,
		Organizer:   organizer,
		Status:      models.EventStatusActive,
		Tags:        tags,
	}
	if err := h.Store.CreateEvent(r.Context(), event); err != nil {
		h.logError("AdminCreateEvent", err)
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.logInfo(fmt.Sprintf("AdminCreateEvent: created event %d", event.ID))
	utils.WriteSuccess(w, http.StatusCreated, utils.Envelope{"event": event})
}

type updateEventRequest struct {
	Title       *string     `json:"title"`
	Description *string     `json:"description"`
	Date        *string     `json:"date"`
	Time        *string     `json:"time"`
	Duration    *int        `json:"duration"`
	Location    *string     `json:"location"`
	Category    *string     `json:"category"`
	Capacity    *int        `json:"capacity"`
	Price       interface{} `json:"price"`
	Image       *string     `json:"image"`
	Organizer   *string     `json:"organizer"`
	Status      *string     `json:"status"`
	Tags        *[]string   `json:"tags"`
}

// AdminUpdateEvent applies a typed patch: only fields present in the
// body change, each validated before anything is written.
func (h *Handler) AdminUpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, err := eventIDParam(r)
	if err != nil {
		utils.WriteError(w, http.StatusNotFound, "Event not found")
		return
	}

	var req updateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	patch := &models.EventPatch{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Time:        req.Time,
		Duration:    req.Duration,
		Location:    req.Location,
		Category:    req.Category,
		Capacity:    req.Capacity,
		Image:       req.Image,
		Organizer:   req.Organizer,
		Status:      req.Status,
		Tags:        req.Tags,
	}
	if req.Price != nil {
		price, perr := parsePrice(req.Price)
		if perr != nil {
			utils.WriteError(w, http.StatusBadRequest, perr.Error())
			return
		}
		patch.Price = &price
	}

	event, err := h.Store.UpdateEvent(r.Context(), id, patch)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.WriteError(w, http.StatusNotFound, "Event not found")
			return
		}
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.WriteSuccess(w, http.StatusOK, utils.Envelope{"event": event})
}

// AdminDeleteEvent removes an event and, by cascade, its
// registrations.
func (h *Handler) AdminDeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := eventIDParam(r)
	if err != nil {
		utils.WriteError(w, http.StatusNotFound, "Event not found")
		return
	}

	if err := h.Store.DeleteEvent(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.WriteError(w, http.StatusNotFound, "Event not found")
			return
		}
		h.logError("AdminDeleteEvent", err)
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.WriteMessage(w, http.StatusOK, "Event deleted")
}

// registrationDetails joins a registration with both parents.
type registrationDetails struct {
	models.Registration
	Event           *models.Event   `json:"event"`
	Student         *models.Student `json:"student"`
	AmountFormatted string          `json:"amount_formatted"`
}

// AdminListRegistrations lists every registration with event and
// student details. Rows with a missing parent are skipped.
func (h *Handler) AdminListRegistrations(w http.ResponseWriter, r *http.Request) {
	regs, err := h.Store.ListRegistrations(r.Context())
	if err != nil {
		h.logError("AdminListRegistrations", err)
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]registrationDetails, 0, len(regs))
	for i := range regs {
		event, eerr := h.Store.GetEventByID(r.Context(), regs[i].EventID)
		student, serr := h.Store.GetStudentByID(r.Context(), regs[i].StudentID)
		if eerr != nil || serr != nil {
			continue
		}
		out = append(out, registrationDetails{
			Registration:    regs[i],
			Event:           event,
			Student:         student,
			AmountFormatted: projection.FormatAmount(regs[i].AmountPaid),
		})
	}
	utils.WriteJSON(w, http.StatusOK, out)
}

// AdminDashboard serves the aggregated statistics payload.
func (h *Handler) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.Analytics.GetDashboard(r.Context())
	if err != nil {
		h.logError("AdminDashboard", err)
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, dashboard)
}

// studentWithStats is a student plus their registration count.
type studentWithStats struct {
	models.Student
	RegistrationCount int `json:"registration_count"`
}

// AdminListStudents lists all students with registration counts.
func (h *Handler) AdminListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.Store.ListStudents(r.Context())
	if err != nil {
		h.logError("AdminListStudents", err)
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]studentWithStats, 0, len(students))
	for i := range students {
		count, err := h.Analytics.GetStudentRegistrationCount(r.Context(), students[i].ID)
		if err != nil {
			h.logError("AdminListStudents", err)
			utils.WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		out = append(out, studentWithStats{Student: students[i], RegistrationCount: count})
	}
	utils.WriteJSON(w, http.StatusOK, out)
}

// registrationWithStudent joins a registration with its student for
// the event details view.
type registrationWithStudent struct {
	models.Registration
	Student         *models.Student `json:"student"`
	AmountFormatted string          `json:"amount_formatted"`
}

type eventDetails struct {
	models.Event
	Registrations      []registrationWithStudent `json:"registrations"`
	TotalRegistrations int                       `json:"total_registrations"`
	AvailableSpots     int                       `json:"available_spots"`
	PriceFormatted     string                    `json:"price_formatted"`
}

// AdminEventDetails returns one event with its full registration list.
func (h *Handler) AdminEventDetails(w http.ResponseWriter, r *http.Request) {
	id, err := eventIDParam(r)
	if err != nil {
		utils.WriteError(w, http.StatusNotFound, "Event not found")
		return
	}

	event, err := h.Store.GetEventByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.WriteError(w, http.StatusNotFound, "Event not found")
			return
		}
		h.logError("AdminEventDetails", err)
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	regs, err := h.Store.ListRegistrationsByEvent(r.Context(), id)
	if err != nil {
		h.logError("AdminEventDetails", err)
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	withStudents := make([]registrationWithStudent, 0, len(regs))
	for i := range regs {
		student, serr := h.Store.GetStudentByID(r.Context(), regs[i].StudentID)
		if serr != nil {
			continue
		}
		withStudents = append(withStudents, registrationWithStudent{
			Registration:    regs[i],
			Student:         student,
			AmountFormatted: projection.FormatAmount(regs[i].AmountPaid),
		})
	}

	utils.WriteJSON(w, http.StatusOK, eventDetails{
		Event:              *event,
		Registrations:      withStudents,
		TotalRegistrations: len(withStudents),
		AvailableSpots:     event.Capacity - len(withStudents),
		PriceFormatted:     projection.FormatPrice(event.Price),
	})
}
