package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/slotline/slotline/internal/model"
	"github.com/slotline/slotline/internal/storage"
)

// BusinessHandler serves the admin surface. Every route except business
// creation is scoped by the X-Business-Id header.
type BusinessHandler struct {
	repo   *storage.Repository
	logger *slog.Logger
}

func NewBusinessHandler(repo *storage.Repository, logger *slog.Logger) *BusinessHandler {
	return &BusinessHandler{repo: repo, logger: logger}
}

func businessIDFrom(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-Business-Id"))
}

type createBusinessRequest struct {
	OwnerID  string `json:"owner_id"`
	Name     string `json:"name"`
	Timezone string `json:"timezone"`
}

type businessProfile struct {
	BusinessID string `json:"business_id"`
	OwnerID    string `json:"owner_id"`
	Name       string `json:"name"`
	Timezone   string `json:"timezone"`
	CreatedAt  string `json:"created_at"`
}

func (h *BusinessHandler) CreateBusiness(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req createBusinessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.OwnerID = strings.TrimSpace(req.OwnerID)
	req.Name = strings.TrimSpace(req.Name)
	req.Timezone = strings.TrimSpace(req.Timezone)
	if req.OwnerID == "" || req.Name == "" {
		http.Error(w, "owner_id and name are required", http.StatusBadRequest)
		return
	}
	if req.Timezone == "" {
		req.Timezone = model.DefaultTimezone
	}
	if _, err := time.LoadLocation(req.Timezone); err != nil {
		http.Error(w, "unknown timezone", http.StatusBadRequest)
		return
	}

	id, err := h.repo.CreateBusiness(r.Context(), req.OwnerID, req.Name, req.Timezone)
	if err != nil {
		h.logger.Error("create business failed", "err", err)
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"business_id": id})
}

// Profile handles GET and PUT on the business profile.
func (h *BusinessHandler) Profile(w http.ResponseWriter, r *http.Request) {
	businessID := businessIDFrom(r)
	if businessID == "" {
		http.Error(w, "X-Business-Id header is required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		b, err := h.repo.GetBusiness(r.Context(), businessID)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, businessProfile{
			BusinessID: b.ID,
			OwnerID:    b.OwnerID,
			Name:       b.Name,
			Timezone:   b.Timezone,
			CreatedAt:  b.CreatedAt.UTC().Format(time.RFC3339),
		})
	case http.MethodPut:
		var req struct {
			Name     string `json:"name"`
			Timezone string `json:"timezone"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		req.Timezone = strings.TrimSpace(req.Timezone)
		if req.Name == "" {
			http.Error(w, "name is required", http.StatusBadRequest)
			return
		}
		if req.Timezone == "" {
			req.Timezone = model.DefaultTimezone
		}
		if _, err := time.LoadLocation(req.Timezone); err != nil {
			http.Error(w, "unknown timezone", http.StatusBadRequest)
			return
		}
		if err := h.repo.UpdateBusinessProfile(r.Context(), businessID, req.Name, req.Timezone); err != nil {
			writeEngineError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

type serviceItem struct {
	ServiceID       string `json:"service_id"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"duration_minutes"`
	Price           string `json:"price"`
	Active          bool   `json:"active"`
	CreatedAt       string `json:"created_at"`
}

// Services handles POST (create) and GET (list) on /services.
func (h *BusinessHandler) Services(w http.ResponseWriter, r *http.Request) {
	businessID := businessIDFrom(r)
	if businessID == "" {
		http.Error(w, "X-Business-Id header is required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodPost:
		var req struct {
			Name            string `json:"name"`
			DurationMinutes int    `json:"duration_minutes"`
			Price           string `json:"price"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" || req.DurationMinutes <= 0 {
			http.Error(w, "name and a positive duration_minutes are required", http.StatusBadRequest)
			return
		}
		price := strings.TrimSpace(req.Price)
		if price == "" {
			price = "0"
		}
		id, err := h.repo.CreateService(r.Context(), businessID, req.Name, req.DurationMinutes, price)
		if err != nil {
			h.logger.Error("create service failed", "err", err)
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"service_id": id})
	case http.MethodGet:
		limit := 0
		if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
			limit, _ = strconv.Atoi(raw)
		}
		services, err := h.repo.ListServices(r.Context(), businessID, limit)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		items := make([]serviceItem, 0, len(services))
		for _, s := range services {
			items = append(items, serviceItem{
				ServiceID:       s.ID,
				Name:            s.Name,
				DurationMinutes: s.DurationMins,
				Price:           s.Price,
				Active:          s.Active,
				CreatedAt:       s.CreatedAt.UTC().Format(time.RFC3339),
			})
		}
		writeJSON(w, http.StatusOK, items)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *BusinessHandler) DeactivateService(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	businessID := businessIDFrom(r)
	if businessID == "" {
		http.Error(w, "X-Business-Id header is required", http.StatusBadRequest)
		return
	}

	var req struct {
		ServiceID string `json:"service_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.ServiceID = strings.TrimSpace(req.ServiceID)
	if req.ServiceID == "" {
		http.Error(w, "service_id is required", http.StatusBadRequest)
		return
	}
	if err := h.repo.DeactivateService(r.Context(), businessID, req.ServiceID); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type staffItem struct {
	StaffID   string `json:"staff_id"`
	Name      string `json:"name"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
}

// Staff handles POST (create) and GET (list) on /staff.
func (h *BusinessHandler) Staff(w http.ResponseWriter, r *http.Request) {
	businessID := businessIDFrom(r)
	if businessID == "" {
		http.Error(w, "X-Business-Id header is required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodPost:
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			http.Error(w, "name is required", http.StatusBadRequest)
			return
		}
		id, err := h.repo.CreateStaff(r.Context(), businessID, req.Name, true)
		if err != nil {
			h.logger.Error("create staff failed", "err", err)
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"staff_id": id})
	case http.MethodGet:
		staff, err := h.repo.ListStaff(r.Context(), businessID, 0)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		items := make([]staffItem, 0, len(staff))
		for _, s := range staff {
			items = append(items, staffItem{
				StaffID:   s.ID,
				Name:      s.Name,
				Active:    s.Active,
				CreatedAt: s.CreatedAt.UTC().Format(time.RFC3339),
			})
		}
		writeJSON(w, http.StatusOK, items)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *BusinessHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	id, err := h.repo.CreateCustomer(r.Context(), req.Name, strings.TrimSpace(req.Email), strings.TrimSpace(req.Phone))
	if err != nil {
		h.logger.Error("create customer failed", "err", err)
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"customer_id": id})
}

type ruleItem struct {
	RuleID     string `json:"rule_id"`
	Weekday    int    `json:"weekday"`
	StartClock string `json:"start_clock"`
	EndClock   string `json:"end_clock"`
}

// Hours handles the weekly availability rules: POST adds a window, GET lists
// all of them, DELETE removes one by id.
func (h *BusinessHandler) Hours(w http.ResponseWriter, r *http.Request) {
	businessID := businessIDFrom(r)
	if businessID == "" {
		http.Error(w, "X-Business-Id header is required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodPost:
		var req struct {
			Weekday    int    `json:"weekday"`
			StartClock string `json:"start_clock"`
			EndClock   string `json:"end_clock"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		id, err := h.repo.CreateRule(r.Context(), businessID, req.Weekday,
			strings.TrimSpace(req.StartClock), strings.TrimSpace(req.EndClock))
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"rule_id": id})
	case http.MethodGet:
		rules, err := h.repo.ListAllRules(r.Context(), businessID)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		items := make([]ruleItem, 0, len(rules))
		for _, rule := range rules {
			items = append(items, ruleItem{
				RuleID:     rule.ID,
				Weekday:    rule.Weekday,
				StartClock: rule.StartClock,
				EndClock:   rule.EndClock,
			})
		}
		writeJSON(w, http.StatusOK, items)
	case http.MethodDelete:
		ruleID := strings.TrimSpace(r.URL.Query().Get("rule_id"))
		if ruleID == "" {
			http.Error(w, "rule_id is required", http.StatusBadRequest)
			return
		}
		if err := h.repo.DeleteRule(r.Context(), businessID, ruleID); err != nil {
			writeEngineError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

type closureItem struct {
	ExceptionID string `json:"exception_id"`
	Date        string `json:"date"`
	Closed      bool   `json:"closed"`
	StartClock  string `json:"start_clock,omitempty"`
	EndClock    string `json:"end_clock,omitempty"`
}

// Closures handles per-date exceptions: POST records a closure or an override
// window for one date, GET lists a date range, DELETE removes one by id.
func (h *BusinessHandler) Closures(w http.ResponseWriter, r *http.Request) {
	businessID := businessIDFrom(r)
	if businessID == "" {
		http.Error(w, "X-Business-Id header is required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodPost:
		var req struct {
			Date       string `json:"date"`
			Closed     bool   `json:"closed"`
			StartClock string `json:"start_clock"`
			EndClock   string `json:"end_clock"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		date, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(req.Date), time.UTC)
		if err != nil {
			http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		id, err := h.repo.CreateException(r.Context(), businessID, date, req.Closed,
			strings.TrimSpace(req.StartClock), strings.TrimSpace(req.EndClock))
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"exception_id": id})
	case http.MethodGet:
		q := r.URL.Query()
		from, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(q.Get("from")), time.UTC)
		if err != nil {
			http.Error(w, "from must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		to, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(q.Get("to")), time.UTC)
		if err != nil {
			http.Error(w, "to must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		excs, err := h.repo.ListExceptions(r.Context(), businessID, from, to.AddDate(0, 0, 1))
		if err != nil {
			writeEngineError(w, err)
			return
		}
		items := make([]closureItem, 0, len(excs))
		for _, exc := range excs {
			items = append(items, closureItem{
				ExceptionID: exc.ID,
				Date:        exc.Date.UTC().Format("2006-01-02"),
				Closed:      exc.Closed,
				StartClock:  exc.StartClock,
				EndClock:    exc.EndClock,
			})
		}
		writeJSON(w, http.StatusOK, items)
	case http.MethodDelete:
		exceptionID := strings.TrimSpace(r.URL.Query().Get("exception_id"))
		if exceptionID == "" {
			http.Error(w, "exception_id is required", http.StatusBadRequest)
			return
		}
		if err := h.repo.DeleteException(r.Context(), businessID, exceptionID); err != nil {
			writeEngineError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}
