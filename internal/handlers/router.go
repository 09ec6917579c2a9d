package handlers

import (
	"net/http"

	"stocksim/internal/config"
	"stocksim/internal/db"
	"stocksim/internal/middleware"
	"stocksim/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handler struct {
	txRunner  db.TxRunner
	cfg       config.Config
	users     UserStore
	portfolio PortfolioStore
	history   HistoryStore
	audit     AuditStore
	service   TradingService
	hub       *websocket.Hub
}

func New(txRunner db.TxRunner, cfg config.Config, users UserStore, portfolio PortfolioStore, history HistoryStore, audit AuditStore, service TradingService, hub *websocket.Hub) *Handler {
	return &Handler{
		txRunner:  txRunner,
		cfg:       cfg,
		users:     users,
		portfolio: portfolio,
		history:   history,
		audit:     audit,
		service:   service,
		hub:       hub,
	}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{h.cfg.AllowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Post("/register", h.Register)
	router.Post("/login", h.Login)
	router.Get("/logout", h.Logout)

	authed := router.With(middleware.Auth(h.cfg.JWTSecret))
	authed.Get("/", h.Index)
	authed.Get("/bought", h.Index)
	authed.Get("/sold", h.Index)
	authed.Get("/quote", h.Quote)
	authed.Post("/quote", h.Quote)
	authed.Get("/buy", h.BuyForm)
	authed.Post("/buy", h.Buy)
	authed.Get("/sell", h.SellForm)
	authed.Post("/sell", h.Sell)
	authed.Get("/history", h.History)
	authed.Get("/addcash", h.AddCashForm)
	authed.Post("/addcash", h.AddCash)
	authed.Get("/self-check", h.SelfCheck)

	router.Get("/ws/portfolio", h.WSPortfolio)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return router
}
