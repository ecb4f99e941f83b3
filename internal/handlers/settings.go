package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"remittance/internal/models"
	"remittance/internal/settings"
	"remittance/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

func (h *Handler) ListSettings(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Settings.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch settings")
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

// GetSetting returns the stored row, creating it from the defaults on first read.
func (h *Handler) GetSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	var setting models.Setting
	err := h.TxRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		var err error
		setting, err = h.Settings.Ensure(r.Context(), tx, key, h.Defaults.JSON(key))
		return err
	})
	if err != nil {
		zap.L().Error("ensure setting", zap.String("key", key), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to fetch setting")
		return
	}
	respondJSON(w, http.StatusOK, setting)
}

type settingRequest struct {
	Value json.RawMessage `json:"value"`
}

func (h *Handler) UpdateSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if key == settings.KeyReceiptCounter {
		respondError(w, http.StatusBadRequest, "receiptCounter is managed by the server")
		return
	}
	var req settingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	raw := strings.TrimSpace(string(req.Value))
	if raw == "" {
		respondError(w, http.StatusBadRequest, "value is required")
		return
	}
	if err := settings.ValidateValue(key, raw); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	actor := actorFrom(r)
	var setting models.Setting
	err := h.TxRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		var err error
		if setting, err = h.Settings.Upsert(r.Context(), tx, key, raw); err != nil {
			return err
		}
		return h.Audit.Log(r.Context(), tx, store.AuditEntry{
			ActorUserID:      actor.UserID,
			Action:           "update_setting",
			TargetCollection: "Settings",
			TargetID:         key,
			IP:               actor.IP,
			Details:          map[string]any{"key": key, "value": json.RawMessage(raw)},
		})
	})
	if err != nil {
		zap.L().Error("upsert setting", zap.String("key", key), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to upsert setting")
		return
	}
	respondJSON(w, http.StatusOK, setting)
}

func (h *Handler) ListTaxLogs(w http.ResponseWriter, r *http.Request) {
	limit, offset, _ := pagination(r, 1000, 1000)
	logs, err := h.TaxLogs.List(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch tax logs")
		return
	}
	respondJSON(w, http.StatusOK, logs)
}
