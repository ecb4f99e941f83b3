package handlers

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"remittance/internal/db"
	"remittance/internal/middleware"
	"remittance/internal/money"
	"remittance/internal/services"

	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

var errInvalidDate = errors.New("dates must be YYYY-MM-DD or RFC3339")

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}

// decodeJSON reports a 400 itself and returns false when the body is unusable.
func decodeJSON(w http.ResponseWriter, r *http.Request, dest any) bool {
	err := json.NewDecoder(r.Body).Decode(dest)
	switch {
	case err == nil:
		return true
	case errors.Is(err, money.ErrTooManyDecimals):
		respondError(w, http.StatusBadRequest, "amount has too many decimal places")
	case errors.Is(err, money.ErrAmountTooLarge):
		respondError(w, http.StatusBadRequest, money.ErrAmountTooLarge.Error())
	case errors.Is(err, money.ErrInvalidAmount):
		respondError(w, http.StatusBadRequest, "invalid amount")
	default:
		respondError(w, http.StatusBadRequest, "invalid payload")
	}
	return false
}

// respondServiceError maps service errors onto statuses. Anything unknown is
// logged and answered with the generic fallback message.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var insufficient *services.InsufficientBalanceError
	switch {
	case errors.As(err, &insufficient):
		respondError(w, http.StatusBadRequest, insufficient.Error())
	case errors.Is(err, services.ErrSenderNotFound),
		errors.Is(err, services.ErrReceiverNotFound),
		errors.Is(err, services.ErrClientNotFound),
		errors.Is(err, services.ErrGuarantorNotFound):
		respondError(w, http.StatusNotFound, rootMessage(err))
	case errors.Is(err, services.ErrDuplicateClient):
		respondError(w, http.StatusConflict, rootMessage(err))
	case errors.Is(err, services.ErrUnknownType),
		errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrPartiesRequired),
		errors.Is(err, services.ErrReceiverRequired),
		errors.Is(err, services.ErrSameClient),
		errors.Is(err, services.ErrInsufficientBalance),
		errors.Is(err, services.ErrClientRequired),
		errors.Is(err, services.ErrFullNameRequired),
		errors.Is(err, services.ErrNegativeBalance),
		errors.Is(err, services.ErrBalanceLimit):
		respondError(w, http.StatusBadRequest, rootMessage(err))
	case errors.Is(err, db.ErrRetryLimit):
		respondError(w, http.StatusConflict, "request conflicted with concurrent updates, please retry")
	case errors.Is(err, services.ErrTaxRateUnavailable):
		zap.L().Error(fallback, zap.String("path", r.URL.Path), zap.Error(err))
		respondError(w, http.StatusInternalServerError, services.ErrTaxRateUnavailable.Error())
	default:
		zap.L().Error(fallback, zap.String("path", r.URL.Path), zap.Error(err))
		respondError(w, http.StatusInternalServerError, fallback)
	}
}

// rootMessage strips wrapping context so only the sentinel text reaches clients.
func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}

func parseInt(raw string, fallback int) int {
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

// pagination reads page and limit, capping limit at max.
func pagination(r *http.Request, defaultLimit, max int) (limit, offset, page int) {
	query := r.URL.Query()
	page = parseInt(query.Get("page"), 1)
	limit = parseInt(query.Get("limit"), defaultLimit)
	if limit > max {
		limit = max
	}
	return limit, (page - 1) * limit, page
}

// parseDate accepts YYYY-MM-DD (midnight UTC) or RFC3339. dateOnly reports which.
func parseDate(raw string) (t time.Time, dateOnly bool, err error) {
	raw = strings.TrimSpace(raw)
	if day, err := time.Parse(dateLayout, raw); err == nil {
		return day, true, nil
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts.UTC(), false, nil
	}
	return time.Time{}, false, errInvalidDate
}

// dateWindow turns optional start/end query values into a half-open range.
// A date-only end covers that whole day.
func dateWindow(startRaw, endRaw string) (start, end *time.Time, err error) {
	if startRaw != "" {
		value, _, err := parseDate(startRaw)
		if err != nil {
			return nil, nil, err
		}
		start = &value
	}
	if endRaw != "" {
		value, dateOnly, err := parseDate(endRaw)
		if err != nil {
			return nil, nil, err
		}
		if dateOnly {
			value = value.AddDate(0, 0, 1)
		} else {
			value = value.Add(time.Microsecond)
		}
		end = &value
	}
	return start, end, nil
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func actorFrom(r *http.Request) services.Actor {
	userID, _ := middleware.UserIDFromContext(r.Context())
	return services.Actor{UserID: userID, IP: clientIP(r)}
}
