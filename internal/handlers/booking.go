package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/slotline/slotline/internal/model"
	"github.com/slotline/slotline/internal/scheduler"
)

type BookingHandler struct {
	sched  *scheduler.Scheduler
	logger *slog.Logger
}

func NewBookingHandler(sched *scheduler.Scheduler, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{sched: sched, logger: logger}
}

type slotItem struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type availabilityResponse struct {
	Date            string     `json:"date"`
	Timezone        string     `json:"timezone"`
	DurationMinutes int        `json:"duration_minutes"`
	StepMinutes     int        `json:"step_minutes"`
	Slots           []slotItem `json:"slots"`
}

type createBookingRequest struct {
	BusinessID string `json:"business_id"`
	ServiceID  string `json:"service_id"`
	CustomerID string `json:"customer_id"`
	StaffID    string `json:"staff_id"`
	StartTime  string `json:"start_time"`
	Note       string `json:"note"`
}

type cancelBookingRequest struct {
	AppointmentID string `json:"appointment_id"`
	ActorKind     string `json:"actor_kind"`
	ActorID       string `json:"actor_id"`
}

type appointmentItem struct {
	AppointmentID string `json:"appointment_id"`
	BusinessID    string `json:"business_id"`
	ServiceID     string `json:"service_id"`
	CustomerID    string `json:"customer_id"`
	StaffID       string `json:"staff_id,omitempty"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	Status        string `json:"status"`
	Note          string `json:"note,omitempty"`
	CancelledAt   string `json:"cancelled_at,omitempty"`
	CreatedAt     string `json:"created_at"`
}

func toAppointmentItem(appt model.Appointment) appointmentItem {
	item := appointmentItem{
		AppointmentID: appt.ID,
		BusinessID:    appt.BusinessID,
		ServiceID:     appt.ServiceID,
		CustomerID:    appt.CustomerID,
		StaffID:       appt.StaffID,
		StartTime:     appt.StartAt.UTC().Format(time.RFC3339),
		EndTime:       appt.EndAt.UTC().Format(time.RFC3339),
		Status:        appt.Status,
		Note:          appt.Note,
		CreatedAt:     appt.CreatedAt.UTC().Format(time.RFC3339),
	}
	if appt.CancelledAt != nil {
		item.CancelledAt = appt.CancelledAt.UTC().Format(time.RFC3339)
	}
	return item
}

// writeEngineError maps the scheduler error taxonomy onto HTTP statuses.
// Conflict stays distinct so clients know to re-query availability and retry.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, scheduler.ErrInvalid):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, scheduler.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, scheduler.ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, scheduler.ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (h *BookingHandler) Availability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	businessID := strings.TrimSpace(q.Get("business_id"))
	serviceID := strings.TrimSpace(q.Get("service_id"))
	date := strings.TrimSpace(q.Get("date"))
	staffID := strings.TrimSpace(q.Get("staff_id"))
	if businessID == "" || serviceID == "" || date == "" {
		http.Error(w, "business_id, service_id and date are required", http.StatusBadRequest)
		return
	}

	stepMins := 0
	if raw := strings.TrimSpace(q.Get("step_minutes")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "step_minutes must be a positive integer", http.StatusBadRequest)
			return
		}
		stepMins = n
	}

	avail, err := h.sched.GetAvailability(r.Context(), businessID, serviceID, date, stepMins, staffID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	resp := availabilityResponse{
		Date:            avail.Date,
		Timezone:        avail.Timezone,
		DurationMinutes: avail.DurationMins,
		StepMinutes:     avail.StepMins,
		Slots:           make([]slotItem, 0, len(avail.Slots)),
	}
	for _, s := range avail.Slots {
		resp.Slots = append(resp.Slots, slotItem{
			StartTime: s.Start.UTC().Format(time.RFC3339),
			EndTime:   s.End.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.BusinessID = strings.TrimSpace(req.BusinessID)
	req.ServiceID = strings.TrimSpace(req.ServiceID)
	req.CustomerID = strings.TrimSpace(req.CustomerID)
	req.StaffID = strings.TrimSpace(req.StaffID)
	if req.BusinessID == "" || req.ServiceID == "" || req.CustomerID == "" {
		http.Error(w, "business_id, service_id and customer_id are required", http.StatusBadRequest)
		return
	}

	startAt, err := time.Parse(time.RFC3339, strings.TrimSpace(req.StartTime))
	if err != nil {
		http.Error(w, "invalid start_time", http.StatusBadRequest)
		return
	}

	appt, err := h.sched.CreateAppointment(r.Context(), scheduler.CreateRequest{
		BusinessID: req.BusinessID,
		ServiceID:  req.ServiceID,
		CustomerID: req.CustomerID,
		StaffID:    req.StaffID,
		StartAt:    startAt,
		Note:       strings.TrimSpace(req.Note),
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAppointmentItem(appt))
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req cancelBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	req.ActorID = strings.TrimSpace(req.ActorID)
	kind := scheduler.ActorKind(strings.TrimSpace(req.ActorKind))
	if req.AppointmentID == "" || req.ActorID == "" {
		http.Error(w, "appointment_id and actor_id are required", http.StatusBadRequest)
		return
	}
	if kind != scheduler.ActorCustomer && kind != scheduler.ActorBusiness {
		http.Error(w, "actor_kind must be customer or business", http.StatusBadRequest)
		return
	}

	appt, err := h.sched.CancelAppointment(r.Context(), req.AppointmentID, scheduler.Actor{Kind: kind, ID: req.ActorID})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAppointmentItem(appt))
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	filter := scheduler.AppointmentFilter{
		BusinessID: strings.TrimSpace(q.Get("business_id")),
		CustomerID: strings.TrimSpace(q.Get("customer_id")),
	}
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			filter.Limit = n
		}
	}

	appts, err := h.sched.ListAppointments(r.Context(), filter)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	items := make([]appointmentItem, 0, len(appts))
	for _, appt := range appts {
		items = append(items, toAppointmentItem(appt))
	}
	writeJSON(w, http.StatusOK, items)
}
