package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/gridfire/api/internal/auth"
	"github.com/freeeve/gridfire/api/internal/config"
	"github.com/freeeve/gridfire/api/internal/handler"
	"github.com/freeeve/gridfire/api/internal/logger"
	"github.com/freeeve/gridfire/api/internal/middleware"
	"github.com/freeeve/gridfire/api/internal/repository/postgres"
	redisrepo "github.com/freeeve/gridfire/api/internal/repository/redis"
	"github.com/freeeve/gridfire/api/internal/service"
)

func main() {
	logger.Init()
	cfg := config.Load()
	log.Info().Str("databaseURL", cfg.DatabaseURL).Msg("Config loaded")

	// Database
	db, err := postgres.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Database connection failed")
	}
	defer db.Close()

	// Redis
	redisClient, err := redisrepo.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Redis connection failed")
	}
	defer redisClient.Close()

	// Repos
	userRepo := postgres.NewUserRepo(db)
	historyRepo := postgres.NewHistoryRepo(db)
	recipeRepo := postgres.NewRecipeRepo(db)
	policyRepo := postgres.NewPolicyRepo(db)

	// Auth
	jwtMgr := auth.NewJWTManager(cfg.JWTSecret)

	// WebSocket hub
	wsHub := handler.NewHub()

	// Services
	recipeSvc := service.NewRecipeService(recipeRepo)
	if err := recipeSvc.Seed(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Recipe catalog seeding failed")
	}
	matchSvc := service.NewMatchService(redisClient, userRepo, historyRepo, policyRepo, recipeSvc, wsHub)

	// Handlers
	authHandler := handler.NewAuthHandler(jwtMgr, userRepo)
	matchHandler := handler.NewMatchHandler(matchSvc)
	recipeHandler := handler.NewRecipeHandler(recipeSvc)
	wsHandler := handler.NewWSHandler(wsHub, jwtMgr)

	// Router
	mux := http.NewServeMux()
	authMw := auth.Middleware(jwtMgr)
	optionalMw := auth.OptionalMiddleware(jwtMgr)

	// Health
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Auth (public)
	mux.HandleFunc("POST /auth/signup", authHandler.Signup)
	mux.HandleFunc("POST /auth/signin", authHandler.Signin)
	mux.HandleFunc("POST /auth/refresh", authHandler.RefreshToken)

	// Recipe catalog (public, read-only)
	mux.HandleFunc("GET /recipes", recipeHandler.ListRecipes)
	mux.HandleFunc("GET /recipes/{key}", recipeHandler.GetRecipe)

	// Match lifecycle: open to anonymous play, identity attached when a
	// token is presented.
	mux.Handle("POST /initiate_game", optionalMw(http.HandlerFunc(matchHandler.InitiateGame)))
	mux.Handle("GET /matches/{id}", optionalMw(http.HandlerFunc(matchHandler.GetMatch)))
	mux.Handle("POST /update", optionalMw(http.HandlerFunc(matchHandler.UpdateMatch)))
	mux.Handle("POST /end_game", optionalMw(http.HandlerFunc(matchHandler.EndGame)))
	mux.Handle("POST /matches/{id}/resign", optionalMw(http.HandlerFunc(matchHandler.Resign)))

	// Profile routes require a signed-in user.
	api := http.NewServeMux()
	api.HandleFunc("GET /profile/active-matches", matchHandler.ActiveMatches)
	api.HandleFunc("GET /profile/historic-matches", matchHandler.HistoricMatches)
	mux.Handle("GET /profile/", authMw(api))

	// WebSocket (optional auth via query param, not middleware)
	mux.HandleFunc("GET /ws", wsHandler.ServeWS)

	// Apply global middleware
	root := middleware.Chain(mux, middleware.Logger, middleware.CORS("*"), middleware.JSON)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server shutdown error")
	}
	log.Info().Msg("Server stopped")
}
