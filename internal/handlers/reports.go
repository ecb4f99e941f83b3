package handlers

import (
	"net/http"
	"time"

	"remittance/internal/middleware"
	"remittance/internal/models"
	"remittance/internal/money"
	"remittance/internal/websocket"
)

type typeSummary struct {
	TotalAmount money.Minor `json:"totalAmount"`
	Count       int64       `json:"count"`
}

type dailyReport struct {
	Date   string                 `json:"date"`
	ByType map[string]typeSummary `json:"byType"`
	Total  money.Minor            `json:"total"`
	Count  int64                  `json:"count"`
}

func (h *Handler) DailyReport(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		respondError(w, http.StatusBadRequest, "date=YYYY-MM-DD required")
		return
	}
	day, err := time.Parse(dateLayout, raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, "date=YYYY-MM-DD required")
		return
	}
	totals, err := h.Reports.TotalsByType(r.Context(), day, day.AddDate(0, 0, 1))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to build report")
		return
	}
	report := dailyReport{Date: raw, ByType: map[string]typeSummary{}}
	for _, total := range totals {
		report.ByType[total.Type] = typeSummary{TotalAmount: total.TotalAmount, Count: total.Count}
		report.Total += total.TotalAmount
		report.Count += total.Count
	}
	respondJSON(w, http.StatusOK, report)
}

// SummaryReport defaults to everything since 1970 up to the end of today.
func (h *Handler) SummaryReport(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	start, end, err := dateWindow(query.Get("start"), query.Get("end"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	from := time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	if start != nil {
		from = *start
	}
	now := time.Now().UTC()
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	if end != nil {
		to = *end
	}
	totals, err := h.Reports.TotalsByType(r.Context(), from, to)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to build report")
		return
	}
	respondJSON(w, http.StatusOK, totals)
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Reports.Dashboard(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Server Error")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (h *Handler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	limit, offset, page := pagination(r, 50, 200)
	logs, err := h.Audit.List(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load audit logs")
		return
	}
	total, err := h.Audit.Count(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load audit logs")
		return
	}
	if logs == nil {
		logs = []models.AuditLog{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"logs":  logs,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// WSBalances upgrades to the live balance feed. Auth has already resolved the user.
func (h *Handler) WSBalances(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	websocket.ServeWS(w, r, h.Hub, userID, h.checkOrigin)
}
