package handlers

import (
	"net/http"
	"strings"

	"remittance/internal/config"
	"remittance/internal/db"
	"remittance/internal/middleware"
	"remittance/internal/policy"
	"remittance/internal/settings"
	"remittance/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Deps collects everything the HTTP layer talks to.
type Deps struct {
	TxRunner      db.TxRunner
	Users         UserStore
	Clients       ClientReader
	Guarantors    GuarantorReader
	Ledger        LedgerReader
	Transactions  TransactionReader
	Withdraws     WithdrawReader
	TaxLogs       TaxLogReader
	Settings      SettingStore
	Audit         AuditStore
	Reports       ReportStore
	ClientService ClientService
	LedgerService LedgerService
	Hub           *websocket.Hub
	Defaults      settings.Defaults
}

type Handler struct {
	Deps
	cfg config.Config
}

func New(cfg config.Config, deps Deps) *Handler {
	if deps.Defaults == nil {
		deps.Defaults = settings.BuiltinDefaults()
	}
	return &Handler{Deps: deps, cfg: cfg}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.RequestLogger)
	router.Use(chimiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authenticate := middleware.Auth(h.cfg.JWTSecret, h.Users)
	can := middleware.RequirePermission

	router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Get("/profile", h.GetProfile)
				r.Put("/profile", h.UpdateProfile)
				r.Delete("/profile", h.DeleteProfile)
				r.With(can(policy.ManageUsers)).Get("/users", h.ListUsers)
				r.With(can(policy.ManageUsers)).Put("/users/{id}/role", h.UpdateUserRole)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Route("/clients", func(r chi.Router) {
				r.With(can(policy.ViewRecords)).Get("/", h.ListClients)
				r.With(can(policy.ManageClients)).Post("/", h.CreateClient)
				r.With(can(policy.Reconcile)).Get("/reconcile", h.ReconcileClients)
				r.With(can(policy.AdjustBalance)).Put("/balance/{id}", h.UpdateClientBalance)
				r.With(can(policy.ViewRecords)).Get("/{id}", h.GetClient)
				r.With(can(policy.ManageClients)).Put("/{id}", h.UpdateClient)
				r.With(can(policy.ViewRecords)).Get("/{id}/ledger", h.ClientLedger)
			})

			r.Route("/guarantors", func(r chi.Router) {
				r.With(can(policy.ViewRecords)).Get("/", h.ListGuarantors)
				r.With(can(policy.ManageGuarantors)).Post("/", h.CreateGuarantor)
			})

			r.Route("/transactions", func(r chi.Router) {
				r.With(can(policy.ViewRecords)).Get("/", h.ListTransactions)
				r.With(can(policy.CreateTransaction)).Post("/", h.CreateTransaction)
				r.With(can(policy.ViewRecords)).Get("/{id}", h.GetTransaction)
			})

			r.Route("/withdraw", func(r chi.Router) {
				r.With(can(policy.ViewRecords)).Get("/", h.ListWithdraws)
				r.With(can(policy.CreateWithdraw)).Post("/", h.CreateWithdraw)
				r.With(can(policy.ViewRecords)).Get("/stats", h.WithdrawStats)
				r.With(can(policy.ViewRecords)).Get("/{id}", h.GetWithdraw)
			})

			r.Route("/settings", func(r chi.Router) {
				r.With(can(policy.ViewRecords)).Get("/", h.ListSettings)
				r.With(can(policy.ViewRecords)).Get("/{key}", h.GetSetting)
				r.With(can(policy.UpdateSettings)).Put("/{key}", h.UpdateSetting)
			})

			r.With(can(policy.ViewRecords)).Get("/taxlogs", h.ListTaxLogs)
			r.With(can(policy.ViewRecords)).Get("/dashboard", h.Dashboard)
			r.With(can(policy.ViewReports)).Get("/reports/daily", h.DailyReport)
			r.With(can(policy.ViewReports)).Get("/reports/summary", h.SummaryReport)
			r.With(can(policy.ViewAudit)).Get("/audit", h.ListAuditLogs)
		})
	})

	router.With(authenticate, can(policy.ViewRecords)).Get("/ws/balances", h.WSBalances)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return router
}

// checkOrigin applies the CORS allow-list to websocket upgrades.
func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.cfg.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}
