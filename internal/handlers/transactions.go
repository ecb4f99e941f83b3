package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"remittance/internal/models"
	"remittance/internal/money"
	"remittance/internal/services"
	"remittance/internal/store"

	"github.com/go-chi/chi/v5"
)

type transactionRequest struct {
	Type           string      `json:"type"`
	Amount         money.Minor `json:"amount"`
	SenderClient   string      `json:"senderClient"`
	ReceiverClient string      `json:"receiverClient"`
	ExternalName   string      `json:"externalName"`
	Notes          string      `json:"notes"`
}

type transactionResponse struct {
	models.Transaction
	TaxLog services.SideEffect `json:"taxLog"`
}

func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	actor := actorFrom(r)
	result, err := h.LedgerService.CreateTransaction(r.Context(), services.TransactionRequest{
		Type:             req.Type,
		Amount:           req.Amount,
		SenderClientID:   strings.TrimSpace(req.SenderClient),
		ReceiverClientID: strings.TrimSpace(req.ReceiverClient),
		ExternalName:     strings.TrimSpace(req.ExternalName),
		Notes:            req.Notes,
		ActorID:          actor.UserID,
		IP:               actor.IP,
	})
	if err != nil {
		respondServiceError(w, r, err, "Transaction failed")
		return
	}
	message := "Credit transaction created successfully"
	if result.Transaction.Type == models.TransactionDebit {
		message = "Debit transaction created successfully"
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"message":     message,
		"transaction": transactionResponse{Transaction: result.Transaction, TaxLog: result.TaxLog},
	})
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	start, end, err := dateWindow(query.Get("start"), query.Get("end"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	transactions, err := h.Transactions.List(r.Context(), store.TransactionFilter{
		Start:    start,
		End:      end,
		Type:     query.Get("type"),
		ClientID: query.Get("clientId"),
		Status:   query.Get("status"),
		Limit:    parseInt(query.Get("limit"), 0),
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch transactions")
		return
	}
	respondJSON(w, http.StatusOK, transactions)
}

func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	transaction, err := h.Transactions.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Transaction not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to fetch transaction")
		return
	}
	respondJSON(w, http.StatusOK, transaction)
}

type withdrawRequest struct {
	ClientID string      `json:"clientId"`
	Amount   money.Minor `json:"amount"`
	Notes    string      `json:"notes"`
	Date     string      `json:"date"`
}

type withdrawResponse struct {
	models.Withdraw
	ClientReceives money.Minor `json:"clientReceives"`
}

func (h *Handler) CreateWithdraw(w http.ResponseWriter, r *http.Request) {
	var req withdrawRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var date *time.Time
	if strings.TrimSpace(req.Date) != "" {
		value, _, err := parseDate(req.Date)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		date = &value
	}
	actor := actorFrom(r)
	result, err := h.LedgerService.CreateWithdraw(r.Context(), services.WithdrawRequest{
		ClientID: strings.TrimSpace(req.ClientID),
		Amount:   req.Amount,
		Notes:    req.Notes,
		Date:     date,
		ActorID:  actor.UserID,
		IP:       actor.IP,
	})
	if err != nil {
		respondServiceError(w, r, err, "Withdraw failed")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"message":  "Withdraw successful with tax deducted",
		"withdraw": withdrawResponse{Withdraw: result.Withdraw, ClientReceives: result.ClientReceives},
	})
}

func (h *Handler) ListWithdraws(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	start, end, err := dateWindow(query.Get("start"), query.Get("end"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	withdraws, err := h.Withdraws.List(r.Context(), store.WithdrawFilter{
		Start:    start,
		End:      end,
		ClientID: query.Get("clientId"),
		Search:   strings.TrimSpace(query.Get("search")),
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch withdraws")
		return
	}
	respondJSON(w, http.StatusOK, withdraws)
}

func (h *Handler) WithdrawStats(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	start, end, err := dateWindow(query.Get("start"), query.Get("end"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	stats, err := h.Withdraws.Stats(r.Context(), start, end)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch withdraw stats")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (h *Handler) GetWithdraw(w http.ResponseWriter, r *http.Request) {
	withdraw, err := h.Withdraws.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Withdraw not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to fetch withdraw")
		return
	}
	respondJSON(w, http.StatusOK, withdraw)
}
