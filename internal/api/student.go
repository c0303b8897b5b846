package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/KamalSai3/KS-Events/internal/auth"
	"github.com/KamalSai3/KS-Events/internal/models"
	"github.com/KamalSai3/KS-Events/internal/projection"
	"github.com/KamalSai3/KS-Events/internal/registration"
	"github.com/KamalSai3/KS-Events/internal/registration/qrpass"
	"github.com/KamalSai3/KS-Events/internal/store"
	"github.com/KamalSai3/KS-Events/internal/utils"
)

type studentRegisterRequest struct {
	USN      string `json:"usn"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Semester int    `json:"semester"`
	Branch   string `json:"branch"`
}

// StudentRegister creates a student account. USN doubles as the
// primary key.
func (h *Handler) StudentRegister(w http.ResponseWriter, r *http.Request) {
	var req studentRegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	required := []struct {
		name  string
		empty bool
	}{
		{"usn", req.USN == ""},
		{"name", req.Name == ""},
		{"email", req.Email == ""},
		{"password", req.Password == ""},
		{"semester", req.Semester == 0},
		{"branch", req.Branch == ""},
	}
	for _, f := range required {
		if f.empty {
			utils.WriteError(w, http.StatusBadRequest, fmt.Sprintf("%s is required", f.name))
			return
		}
	}

	if req.Semester < models.MinSemester || req.Semester > models.MaxSemester {
		utils.WriteError(w, http.StatusBadRequest, "Semester must be between 1 and 8")
		return
	}
	if !models.ValidBranch(req.Branch) {
		utils.WriteError(w, http.StatusBadRequest, "Invalid branch")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logError("StudentRegister", err)
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	student := &models.Student{
		ID:           strings.TrimSpace(req.USN),
		USN:          strings.TrimSpace(req.USN),
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.TrimSpace(req.Email),
		Phone:        req.Phone,
		Semester:     req.Semester,
		Branch:       req.Branch,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := h.Store.CreateStudent(r.Context(), student); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			utils.WriteError(w, http.StatusBadRequest, "USN or email already exists")
			return
		}
		h.logError("StudentRegister", err)
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.logInfo("StudentRegister: created student " + student.USN)
	utils.WriteSuccess(w, http.StatusCreated, utils.Envelope{
		"message": "Registration successful",
		"student": utils.Envelope{
			"id":       student.ID,
			"name":     student.Name,
			"email":    student.Email,
			"usn":      student.USN,
			"semester": student.Semester,
			"branch":   student.Branch,
		},
	})
}

// StudentLogin performs the stateless credential check.
func (h *Handler) StudentLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		USN      string `json:"usn"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.USN == "" || req.Password == "" {
		utils.WriteError(w, http.StatusBadRequest, "USN and password are required")
		return
	}

	student, err := h.Verifier.Login(r.Context(), strings.TrimSpace(req.USN), req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) || errors.Is(err, auth.ErrAccountDeactivated) {
			h.writeDomainError(w, err)
			return
		}
		h.logError("StudentLogin", err)
		utils.WriteError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, utils.Envelope{
		"message": "Login successful",
		"student": student,
	})
}

// eventWithAvailability is an event plus the derived read-time fields.
type eventWithAvailability struct {
	models.Event
	AvailableSpots int    `json:"available_spots"`
	IsFull         bool   `json:"is_full"`
	PriceFormatted string `json:"price_formatted"`
}

// StudentListEvents lists active events with availability.
func (h *Handler) StudentListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.Store.ListEventsByStatus(r.Context(), models.EventStatusActive)
	if err != nil {
		h.logError("StudentListEvents", err)
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]eventWithAvailability, 0, len(events))
	for i := range events {
		count, err := h.Store.CountRegistrationsByEvent(r.Context(), events[i].ID)
		if err != nil {
			h.logError("StudentListEvents", err)
			utils.WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		out = append(out, eventWithAvailability{
			Event:          events[i],
			AvailableSpots: projection.AvailableSpots(events[i].Capacity, count),
			IsFull:         projection.IsFull(events[i].Capacity, count),
			PriceFormatted: projection.FormatPrice(events[i].Price),
		})
	}
	utils.WriteJSON(w, http.StatusOK, out)
}

// RegisterForEvent runs the registration engine for a signup request.
func (h *Handler) RegisterForEvent(w http.ResponseWriter, r *http.Request) {
	var req registration.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.EventID == 0 || req.StudentID == "" {
		utils.WriteError(w, http.StatusBadRequest, "event_id and student_id are required")
		return
	}

	result, err := h.Registration.Register(r.Context(), req)
	if err != nil {
		h.logError("RegisterForEvent", err)
		h.writeDomainError(w, err)
		return
	}

	if h.Logger != nil {
		h.Logger.LogRegistration("CREATE", result.Registration.ID,
			fmt.Sprintf("event=%d student=%s", req.EventID, req.StudentID))
	}
	utils.WriteSuccess(w, http.StatusCreated, utils.Envelope{
		"registration": result.Registration,
		"event":        result.Event,
		"student":      result.Student,
	})
}

// registrationWithEvent is a registration joined with its event.
type registrationWithEvent struct {
	models.Registration
	Event *models.Event `json:"event"`
}

// StudentRegistrations lists a student's registrations with event
// details. Registrations whose event has vanished are omitted.
func (h *Handler) StudentRegistrations(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "studentID")

	regs, err := h.Store.ListRegistrationsByStudent(r.Context(), studentID)
	if err != nil {
		h.logError("StudentRegistrations", err)
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]registrationWithEvent, 0, len(regs))
	for i := range regs {
		event, err := h.Store.GetEventByID(r.Context(), regs[i].EventID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			h.logError("StudentRegistrations", err)
			utils.WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		out = append(out, registrationWithEvent{Registration: regs[i], Event: event})
	}
	utils.WriteJSON(w, http.StatusOK, out)
}

// RegistrationPass serves the registration's QR pass as a PNG.
func (h *Handler) RegistrationPass(w http.ResponseWriter, r *http.Request) {
	registrationID := chi.URLParam(r, "registrationID")

	reg, err := h.Registration.Get(r.Context(), registrationID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	png, err := qrpass.Generate(reg)
	if err != nil {
		h.logError("RegistrationPass", err)
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// CancelRegistration deletes a registration, subject to the 24 hour
// cancellation window.
func (h *Handler) CancelRegistration(w http.ResponseWriter, r *http.Request) {
	registrationID := chi.URLParam(r, "registrationID")

	if err := h.Registration.Cancel(r.Context(), registrationID); err != nil {
		h.logError("CancelRegistration", err)
		h.writeDomainError(w, err)
		return
	}

	if h.Logger != nil {
		h.Logger.LogRegistration("CANCEL", registrationID, "registration cancelled")
	}
	utils.WriteMessage(w, http.StatusOK, "Registration cancelled")
}
