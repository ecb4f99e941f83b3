package handlers

import (
	"errors"
	"net/http"
	"strings"

	"remittance/internal/auth"
	"remittance/internal/db"
	"remittance/internal/middleware"
	"remittance/internal/models"
	"remittance/internal/policy"
	"remittance/internal/store"
	"remittance/internal/validator"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

var errEmailUsed = errors.New("Email already used")

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a staff user. The first user becomes admin; the rest start as cashier.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Email = validator.NormalizeEmail(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Missing fields")
		return
	}
	for _, err := range []error{
		validator.ValidateName(req.Name),
		validator.ValidateEmail(req.Email),
		validator.ValidatePassword(req.Password),
	} {
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if _, err := h.Users.GetByEmail(r.Context(), req.Email); err == nil {
		respondError(w, http.StatusBadRequest, errEmailUsed.Error())
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		zap.L().Error("lookup user by email", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to secure password")
		return
	}
	user := models.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		PasswordHash: passwordHash,
	}
	err = h.TxRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		count, err := h.Users.Count(r.Context(), tx)
		if err != nil {
			return err
		}
		user.Role = string(policy.RoleCashier)
		if count == 0 {
			user.Role = string(policy.RoleAdmin)
		}
		if err := h.Users.Create(r.Context(), tx, user); err != nil {
			if db.IsUniqueViolation(err, "") {
				return errEmailUsed
			}
			return err
		}
		return h.Audit.Log(r.Context(), tx, store.AuditEntry{
			ActorUserID:      user.ID,
			Action:           "register",
			TargetCollection: "User",
			TargetID:         user.ID,
			IP:               clientIP(r),
			Details:          map[string]any{"email": user.Email, "role": user.Role},
		})
	})
	if err != nil {
		if errors.Is(err, errEmailUsed) {
			respondError(w, http.StatusBadRequest, errEmailUsed.Error())
			return
		}
		zap.L().Error("register user", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"message": "User registered"})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.Users.GetByEmail(r.Context(), validator.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		zap.L().Error("lookup user by email", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "login failed")
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	token, err := auth.GenerateToken(h.cfg.JWTSecret, user.ID, user.Role, h.cfg.TokenTTL)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  user,
	})
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	user, err := h.Users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "User not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load user")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

type profileRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfile changes the caller's own name, email or password. Role is not accepted here.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	var req profileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	current, err := h.Users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "User not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load user")
		return
	}
	updated := current
	if name := strings.TrimSpace(req.Name); name != "" {
		if err := validator.ValidateName(name); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		updated.Name = name
	}
	if email := validator.NormalizeEmail(req.Email); email != "" {
		if err := validator.ValidateEmail(email); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		updated.Email = email
	}
	passwordHash := ""
	if req.Password != "" {
		if err := validator.ValidatePassword(req.Password); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if passwordHash, err = auth.HashPassword(req.Password); err != nil {
			respondError(w, http.StatusInternalServerError, "failed to secure password")
			return
		}
	}
	err = h.TxRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if _, err := h.Users.UpdateProfile(r.Context(), tx, userID, updated.Name, updated.Email, passwordHash); err != nil {
			if db.IsUniqueViolation(err, "") {
				return errEmailUsed
			}
			return err
		}
		return h.Audit.Log(r.Context(), tx, store.AuditEntry{
			ActorUserID:      userID,
			Action:           "update_profile",
			TargetCollection: "User",
			TargetID:         userID,
			IP:               clientIP(r),
			Details:          map[string]any{"name": updated.Name, "email": updated.Email, "passwordChanged": passwordHash != ""},
		})
	})
	if err != nil {
		if errors.Is(err, errEmailUsed) {
			respondError(w, http.StatusBadRequest, errEmailUsed.Error())
			return
		}
		zap.L().Error("update profile", zap.String("user_id", userID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "unable to update profile")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"message": "Profile updated", "user": updated})
}

func (h *Handler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	err := h.TxRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.Audit.Log(r.Context(), tx, store.AuditEntry{
			ActorUserID:      userID,
			Action:           "delete_profile",
			TargetCollection: "User",
			TargetID:         userID,
			IP:               clientIP(r),
		}); err != nil {
			return err
		}
		_, err := h.Users.Delete(r.Context(), tx, userID)
		return err
	})
	if err != nil {
		zap.L().Error("delete profile", zap.String("user_id", userID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "unable to delete profile")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Profile deleted successfully"})
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load users")
		return
	}
	respondJSON(w, http.StatusOK, users)
}

type roleRequest struct {
	Role string `json:"role"`
}

func (h *Handler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.UserIDFromContext(r.Context())
	userID := chi.URLParam(r, "id")
	var req roleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validator.ValidateRole(req.Role); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if userID == actorID {
		respondError(w, http.StatusBadRequest, "cannot change your own role")
		return
	}
	user, err := h.Users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "User not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load user")
		return
	}
	previous := user.Role
	err = h.TxRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if _, err := h.Users.UpdateRole(r.Context(), tx, userID, req.Role); err != nil {
			return err
		}
		return h.Audit.Log(r.Context(), tx, store.AuditEntry{
			ActorUserID:      actorID,
			Action:           "change_role",
			TargetCollection: "User",
			TargetID:         userID,
			IP:               clientIP(r),
			Details:          map[string]any{"role": req.Role, "previousRole": previous},
		})
	})
	if err != nil {
		zap.L().Error("change role", zap.String("user_id", userID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "unable to change role")
		return
	}
	user.Role = req.Role
	respondJSON(w, http.StatusOK, user)
}
