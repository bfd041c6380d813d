// Package api exposes the classified invoice view as a JSON API for a
// dashboard frontend. Each request runs a fresh pipeline cycle; nothing is
// cached between requests.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"dunning/internal/logger"
	"dunning/internal/pipeline"
	"dunning/pkg/models"
)

// FetchFunc runs one pipeline cycle on behalf of a request.
type FetchFunc func(r *http.Request) (*pipeline.Cycle, error)

// Response is the standard JSON envelope for all API responses.
type Response struct {
	Data  any    `json:"data"`
	Error string `json:"error,omitempty"`
}

type groupView struct {
	Client         string `json:"client"`
	InvoiceCount   int    `json:"invoice_count"`
	TotalCents     int64  `json:"total_cents"`
	Total          string `json:"total"`
	CurrencySymbol string `json:"currency_symbol"`
	MaxDaysOverdue int    `json:"max_days_overdue"`
	Tier           string `json:"tier"`
	HasEmail       bool   `json:"has_email"`
}

type invoiceView struct {
	Number         string `json:"number"`
	Date           string `json:"date,omitempty"`
	DueDate        string `json:"due_date"`
	DaysOverdue    int    `json:"days_overdue"`
	Tier           string `json:"tier"`
	AmountCents    int64  `json:"amount_cents"`
	Amount         string `json:"amount"`
	CurrencySymbol string `json:"currency_symbol"`
	Client         string `json:"client"`
	Company        string `json:"company"`
	Origin         string `json:"origin,omitempty"`
}

// NewRouter builds the API router over the given fetch function.
func NewRouter(fetch FetchFunc) http.Handler {
	h := &handlers{fetch: fetch}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/groups", h.listGroups)
		r.Get("/invoices", h.listInvoices)
		r.Get("/summary", h.getSummary)
	})
	return r
}

type handlers struct {
	fetch FetchFunc
}

func (h *handlers) listGroups(w http.ResponseWriter, r *http.Request) {
	cycle, err := h.fetch(r)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	views := make([]groupView, 0, len(cycle.Groups))
	for _, g := range cycle.Groups {
		views = append(views, groupView{
			Client:         g.ClientName,
			InvoiceCount:   len(g.Invoices),
			TotalCents:     g.TotalAmount(),
			Total:          models.FormatCents(g.TotalAmount()),
			CurrencySymbol: g.CurrencySymbol(),
			MaxDaysOverdue: g.MaxDaysOverdue(),
			Tier:           g.Tier().String(),
			HasEmail:       g.HasEmail(),
		})
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *handlers) listInvoices(w http.ResponseWriter, r *http.Request) {
	cycle, err := h.fetch(r)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	views := make([]invoiceView, 0, len(cycle.Invoices))
	for _, inv := range cycle.Invoices {
		v := invoiceView{
			Number:         inv.Number,
			DueDate:        inv.DueDate.Format(pipeline.DateFormat),
			DaysOverdue:    inv.DaysOverdue,
			Tier:           pipeline.TierFor(inv.DaysOverdue).String(),
			AmountCents:    inv.AmountDue,
			Amount:         models.FormatCents(inv.AmountDue),
			CurrencySymbol: inv.CurrencySymbol,
			Client:         inv.ClientName,
			Company:        inv.CompanyName,
			Origin:         inv.Origin,
		}
		if !inv.InvoiceDate.IsZero() {
			v.Date = inv.InvoiceDate.Format(pipeline.DateFormat)
		}
		views = append(views, v)
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *handlers) getSummary(w http.ResponseWriter, r *http.Request) {
	cycle, err := h.fetch(r)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, cycle.Summary())
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(Response{Data: data}); err != nil {
		log := logger.WithComponent("api")
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{Error: msg})
}
