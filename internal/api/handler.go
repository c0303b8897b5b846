// Package api wires the HTTP surface: admin portal, student portal and
// the public endpoints.
package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/KamalSai3/KS-Events/internal/analytics"
	"github.com/KamalSai3/KS-Events/internal/auth"
	"github.com/KamalSai3/KS-Events/internal/logger"
	"github.com/KamalSai3/KS-Events/internal/registration"
	"github.com/KamalSai3/KS-Events/internal/store"
	"github.com/KamalSai3/KS-Events/internal/utils"
)

type Handler struct {
	Store        *store.Store
	Registration *registration.Service
	Analytics    *analytics.Service
	Verifier     *auth.Verifier
	Logger       *logger.Logger
}

func NewHandler(st *store.Store, reg *registration.Service, an *analytics.Service, v *auth.Verifier, log *logger.Logger) *Handler {
	return &Handler{
		Store:        st,
		Registration: reg,
		Analytics:    an,
		Verifier:     v,
		Logger:       log,
	}
}

// RegisterRoutes mounts every endpoint on the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	// Student authentication
	r.Post("/student/register", h.StudentRegister)
	r.Post("/student/login", h.StudentLogin)

	// Admin portal
	r.Route("/admin", func(r chi.Router) {
		r.Get("/events", h.AdminListEvents)
		r.Post("/events", h.AdminCreateEvent)
		r.Put("/events/{eventID}", h.AdminUpdateEvent)
		r.Delete("/events/{eventID}", h.AdminDeleteEvent)
		r.Get("/events/{eventID}/details", h.AdminEventDetails)
		r.Get("/registrations", h.AdminListRegistrations)
		r.Get("/dashboard", h.AdminDashboard)
		r.Get("/students", h.AdminListStudents)
	})

	// Student portal
	r.Get("/student/events", h.StudentListEvents)
	r.Post("/student/register-event", h.RegisterForEvent)
	r.Get("/student/registrations/{studentID}", h.StudentRegistrations)
	r.Get("/student/registrations/{registrationID}/qr", h.RegistrationPass)
	r.Delete("/student/registrations/{registrationID}", h.CancelRegistration)

	// Public
	r.Get("/events", h.ListEvents)
	r.Get("/events/{eventID}", h.GetEvent)
	r.Get("/categories", h.ListCategories)
	r.Get("/branches", h.ListBranches)
	r.Get("/semesters", h.ListSemesters)
	r.Get("/students", h.ListStudents)
	r.Post("/payment/process", h.ProcessPayment)
	r.Get("/health", h.Health)
}

func (h *Handler) logError(context string, err error) {
	if h.Logger != nil {
		h.Logger.Error("API", context+": "+err.Error())
	}
}

func (h *Handler) logInfo(message string) {
	if h.Logger != nil {
		h.Logger.Info("API", message)
	}
}

// writeDomainError maps the error taxonomy onto HTTP statuses. Every
// error body carries the message string the caller should see.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, registration.ErrEventNotFound),
		errors.Is(err, registration.ErrStudentNotFound),
		errors.Is(err, registration.ErrRegistrationNotFound),
		errors.Is(err, store.ErrNotFound):
		utils.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, registration.ErrAlreadyRegistered),
		errors.Is(err, registration.ErrEventFull),
		errors.Is(err, registration.ErrCancellationWindowClosed),
		errors.Is(err, store.ErrDuplicate):
		utils.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrAccountDeactivated):
		utils.WriteError(w, http.StatusUnauthorized, err.Error())
	default:
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}
