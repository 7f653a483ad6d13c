package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/quiprentals/lead-market/internal/entity"
	"github.com/quiprentals/lead-market/internal/infra/http/middleware"
	"github.com/quiprentals/lead-market/internal/usecase"
)

type LeadHandler struct {
	CreateLeadUC        *usecase.CreateLeadUseCase
	SetPipelineStatusUC *usecase.SetPipelineStatusUseCase
	LeadRepo            entity.LeadRepositoryInterface
	rateLimiter         *RateLimiter
}

func NewLeadHandler(
	createUC *usecase.CreateLeadUseCase,
	pipelineUC *usecase.SetPipelineStatusUseCase,
	leadRepo entity.LeadRepositoryInterface,
) *LeadHandler {
	return &LeadHandler{
		CreateLeadUC:        createUC,
		SetPipelineStatusUC: pipelineUC,
		LeadRepo:            leadRepo,
		rateLimiter:         NewRateLimiter(10, time.Minute), // 10 req/min per IP
	}
}

// HandleSubmit is the public lead capture endpoint, rate limited per IP.
func (h *LeadHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	clientIP := getClientIP(r)
	if !h.rateLimiter.Allow(clientIP) {
		writeJSON(w, http.StatusTooManyRequests, map[string]string{
			"error": "Too many requests. Please try again later.",
		})
		return
	}

	var input usecase.SubmitLeadInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON"})
		return
	}

	output, err := h.CreateLeadUC.Execute(r.Context(), input)
	if err != nil {
		writeUseCaseError(w, err)
		return
	}

	middleware.RecordLeadCaptured()
	writeJSON(w, http.StatusCreated, output)
}

// HandleList returns the viewer's snapshot of the marketplace. The store
// predicate narrows the set, the visibility filter masks the fields.
func (h *LeadHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.ViewerFrom(r.Context())

	leads, err := h.LeadRepo.ListForViewer(r.Context(), viewer)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to load leads"})
		return
	}

	visible := usecase.FilterLeads(leads, viewer)
	writeJSON(w, http.StatusOK, map[string]interface{}{"leads": visible})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// HandleUpdateStatus sets the sales-pipeline label on a purchased lead.
func (h *LeadHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.ViewerFrom(r.Context())
	if viewer.IsAnonymous() {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Authentication required"})
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON"})
		return
	}

	leadID := chi.URLParam(r, "leadId")
	if err := h.SetPipelineStatusUC.Execute(r.Context(), leadID, viewer, req.Status); err != nil {
		writeUseCaseError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"lead_id": leadID, "lead_status": req.Status})
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    int
	window   time.Duration
}

type visitor struct {
	count     int
	lastReset time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		window:   window,
	}

	go rl.cleanup()
	return rl
}

func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	now := time.Now()

	if !exists {
		rl.visitors[ip] = &visitor{count: 1, lastReset: now}
		return true
	}

	if now.Sub(v.lastReset) > rl.window {
		v.count = 1
		v.lastReset = now
		return true
	}

	v.count++
	return v.count <= rl.limit
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for ip, v := range rl.visitors {
			if now.Sub(v.lastReset) > rl.window*2 {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}
