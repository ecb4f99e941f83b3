package handlers

import (
	"errors"
	"net/http"

	"remittance/internal/money"
	"remittance/internal/services"
	"remittance/internal/store"

	"github.com/go-chi/chi/v5"
)

type clientRequest struct {
	FullName       string       `json:"fullName"`
	Phone          string       `json:"phone"`
	Address        string       `json:"address"`
	NationalID     string       `json:"nationalId"`
	EducationLevel string       `json:"educationLevel"`
	Guarantor      string       `json:"guarantor"`
	Balance        *money.Minor `json:"balance"`
}

func (req clientRequest) input() services.ClientInput {
	return services.ClientInput{
		FullName:       req.FullName,
		Phone:          req.Phone,
		Address:        req.Address,
		NationalID:     req.NationalID,
		EducationLevel: req.EducationLevel,
		GuarantorID:    req.Guarantor,
	}
}

func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var opening money.Minor
	if req.Balance != nil {
		opening = *req.Balance
	}
	client, err := h.ClientService.CreateClient(r.Context(), req.input(), opening, actorFrom(r))
	if err != nil {
		respondServiceError(w, r, err, "Server error while creating client")
		return
	}
	respondJSON(w, http.StatusCreated, client)
}

func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.Clients.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Server error while fetching clients")
		return
	}
	respondJSON(w, http.StatusOK, clients)
}

func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	client, err := h.Clients.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Client not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Server error while fetching client")
		return
	}
	respondJSON(w, http.StatusOK, client)
}

// UpdateClient edits profile fields. A balance in the body is ignored; use the balance route.
func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	client, err := h.ClientService.UpdateClient(r.Context(), chi.URLParam(r, "id"), req.input(), actorFrom(r))
	if err != nil {
		respondServiceError(w, r, err, "Server error while updating client")
		return
	}
	respondJSON(w, http.StatusOK, client)
}

type balanceRequest struct {
	Balance *money.Minor `json:"balance"`
}

func (h *Handler) UpdateClientBalance(w http.ResponseWriter, r *http.Request) {
	var req balanceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Balance == nil {
		respondError(w, http.StatusBadRequest, "Balance is required")
		return
	}
	client, err := h.ClientService.SetBalance(r.Context(), chi.URLParam(r, "id"), *req.Balance, actorFrom(r))
	if err != nil {
		respondServiceError(w, r, err, "Server error while updating balance")
		return
	}
	respondJSON(w, http.StatusOK, client)
}

func (h *Handler) ClientLedger(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "id")
	if _, err := h.Clients.GetByID(r.Context(), clientID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Client not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load client")
		return
	}
	limit, offset, _ := pagination(r, 50, 500)
	entries, err := h.Ledger.ListByClient(r.Context(), clientID, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load ledger")
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

func (h *Handler) ReconcileClients(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Clients.Reconcile(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to reconcile balances")
		return
	}
	mismatched := 0
	for _, row := range rows {
		if row.Difference != 0 {
			mismatched++
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"clients":    rows,
		"mismatched": mismatched,
	})
}

type guarantorRequest struct {
	FullName   string `json:"fullName"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	NationalID string `json:"nationalId"`
}

func (h *Handler) CreateGuarantor(w http.ResponseWriter, r *http.Request) {
	var req guarantorRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	guarantor, err := h.ClientService.CreateGuarantor(r.Context(), services.GuarantorInput{
		FullName:   req.FullName,
		Phone:      req.Phone,
		Address:    req.Address,
		NationalID: req.NationalID,
	}, actorFrom(r))
	if err != nil {
		respondServiceError(w, r, err, "Failed to create guarantor")
		return
	}
	respondJSON(w, http.StatusCreated, guarantor)
}

func (h *Handler) ListGuarantors(w http.ResponseWriter, r *http.Request) {
	guarantors, err := h.Guarantors.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch guarantors")
		return
	}
	respondJSON(w, http.StatusOK, guarantors)
}
