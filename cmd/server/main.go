package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"stocksim/internal/config"
	"stocksim/internal/db"
	"stocksim/internal/handlers"
	"stocksim/internal/quotes"
	"stocksim/internal/services"
	"stocksim/internal/store"
	"stocksim/internal/websocket"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer database.Close()

	users := store.NewUserStore(database)
	portfolio := store.NewPortfolioStore(database)
	history := store.NewHistoryStore(database)
	quoteStore := store.NewQuoteStore(database)
	audit := store.NewAuditStore(database)
	txRunner := db.NewTxRunner(database)
	hub := websocket.NewHub()

	var provider quotes.Provider = quotes.NewClient(cfg.QuoteAPIURL, cfg.QuoteAPIToken, cfg.QuoteTimeout)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		provider = quotes.NewCache(provider, redis.NewClient(opts), cfg.QuoteCacheTTL)
	}

	service := services.NewTradingService(txRunner, users, portfolio, history, quoteStore, provider, audit, hub)
	handler := handlers.New(txRunner, cfg, users, portfolio, history, audit, service, hub)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("stocksim API listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
