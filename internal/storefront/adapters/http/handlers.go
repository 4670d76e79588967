package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dejobratic/tdsbot/internal/storefront/catalog"
	"github.com/dejobratic/tdsbot/internal/storefront/domain"
	"github.com/dejobratic/tdsbot/internal/storefront/pricing"
)

// ReadinessCheck probes one backing service for /readyz.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Handler exposes the read-only status and catalog endpoints.
type Handler struct {
	service string
	catalog *catalog.Catalog
	pricing *pricing.Engine
	checks  []ReadinessCheck
	now     func() time.Time
}

// NewHandler constructs a Handler.
func NewHandler(service string, c *catalog.Catalog, p *pricing.Engine, checks ...ReadinessCheck) *Handler {
	return &Handler{
		service: service,
		catalog: c,
		pricing: p,
		checks:  checks,
		now:     time.Now,
	}
}

// Register binds the handlers to the provided ServeMux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.status)
	mux.HandleFunc("GET /healthz", h.healthz)
	mux.HandleFunc("GET /readyz", h.readyz)
	mux.HandleFunc("GET /v1/products", h.listProducts)
	mux.HandleFunc("GET /v1/products/{key}", h.getProduct)
}

type statusResponse struct {
	Status             string    `json:"status"`
	Service            string    `json:"service"`
	Time               time.Time `json:"time"`
	DiscountActive     bool      `json:"discount_active"`
	NextDiscountWindow time.Time `json:"next_discount_window"`
}

type productView struct {
	domain.Product
	Quote domain.Quote `json:"quote"`
}

func (h *Handler) status(w http.ResponseWriter, _ *http.Request) {
	now := h.now()
	writeJSON(w, http.StatusOK, statusResponse{
		Status:             "running",
		Service:            h.service,
		Time:               now.UTC(),
		DiscountActive:     h.pricing.IsDiscountDay(now),
		NextDiscountWindow: h.pricing.NextDiscountWindowStart(now),
	})
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	failures := make(map[string]string)
	for _, check := range h.checks {
		if err := check.Check(r.Context()); err != nil {
			failures[check.Name] = err.Error()
		}
	}
	if len(failures) > 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "not ready", "errors": failures})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *Handler) listProducts(w http.ResponseWriter, _ *http.Request) {
	now := h.now()
	products := h.catalog.List()
	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, productView{Product: p, Quote: h.pricing.Quote(p, now)})
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": views})
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.Get(r.PathValue("key"))
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"product": productView{Product: product, Quote: h.pricing.Quote(product, h.now())},
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
