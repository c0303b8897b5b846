package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/KamalSai3/KS-Events/internal/models"
	"github.com/KamalSai3/KS-Events/internal/payment"
	"github.com/KamalSai3/KS-Events/internal/projection"
	"github.com/KamalSai3/KS-Events/internal/store"
	"github.com/KamalSai3/KS-Events/internal/utils"
)

// eventWithPrice is an event plus the formatted price string.
type eventWithPrice struct {
	models.Event
	PriceFormatted string `json:"price_formatted"`
}

// ListEvents lists active events for the public catalog.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.Store.ListEventsByStatus(r.Context(), models.EventStatusActive)
	if err != nil {
		h.logError("ListEvents", err)
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]eventWithPrice, 0, len(events))
	for i := range events {
		out = append(out, eventWithPrice{
			Event:          events[i],
			PriceFormatted: projection.FormatPrice(events[i].Price),
		})
	}
	utils.WriteJSON(w, http.StatusOK, out)
}

// GetEvent returns one event with availability, regardless of status.
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
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
		h.logError("GetEvent", err)
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	count, err := h.Store.CountRegistrationsByEvent(r.Context(), id)
	if err != nil {
		h.logError("GetEvent", err)
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, eventWithAvailability{
		Event:          *event,
		AvailableSpots: projection.AvailableSpots(event.Capacity, count),
		IsFull:         projection.IsFull(event.Capacity, count),
		PriceFormatted: projection.FormatPrice(event.Price),
	})
}

// ListCategories returns the distinct event categories.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Store.ListDistinctCategories(r.Context())
	if err != nil {
		h.logError("ListCategories", err)
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if categories == nil {
		categories = []string{}
	}
	utils.WriteJSON(w, http.StatusOK, categories)
}

// ListBranches returns the fixed branch set.
func (h *Handler) ListBranches(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, models.Branches)
}

// ListSemesters returns the valid semester numbers.
func (h *Handler) ListSemesters(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, models.Semesters())
}

// ListStudents lists all students.
func (h *Handler) ListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.Store.ListStudents(r.Context())
	if err != nil {
		h.logError("ListStudents", err)
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if students == nil {
		students = []models.Student{}
	}
	utils.WriteJSON(w, http.StatusOK, students)
}

// ProcessPayment runs the payment simulator.
func (h *Handler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount        float64 `json:"amount"`
		PaymentMethod string  `json:"payment_method"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = models.DefaultPaymentMethod
	}

	result := payment.Process(req.Amount, req.PaymentMethod)
	if h.Logger != nil && result.TransactionID != nil {
		h.Logger.LogPayment("PROCESS", *result.TransactionID, "payment simulated")
	}

	utils.WriteSuccess(w, http.StatusOK, utils.Envelope{
		"transaction_id": result.TransactionID,
		"amount":         result.Amount,
		"payment_method": result.PaymentMethod,
		"processed_at":   result.ProcessedAt.Format(time.RFC3339),
	})
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, utils.Envelope{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
