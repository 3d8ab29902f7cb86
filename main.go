package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"streakpick-go/config"
	"streakpick-go/database"
	"streakpick-go/handlers"
	"streakpick-go/logging"
	"streakpick-go/middleware"
	"streakpick-go/models"
	"streakpick-go/services"

	"github.com/gorilla/mux"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logging.Fatalf("Invalid configuration: %v", err)
	}

	logging.Configure(logging.Config{
		Level:       cfg.Logging.Level,
		Prefix:      cfg.Logging.Prefix,
		EnableColor: cfg.Logging.EnableColor,
	})
	cfg.LogConfiguration()

	logger := logging.WithPrefix("Main")

	// State store: MongoDB with an in-memory shadow, or pure in-memory when
	// the database is unreachable
	var stateStore services.StateStore
	var userRepo services.UserRepository
	var allStates func(ctx context.Context) ([]models.UserStreakState, error)

	db, err := database.NewMongoConnection(cfg.GetMongoURI(), cfg.Database.Database)
	if err != nil {
		logger.Warnf("Database connection failed, running on in-memory state: %v", err)
		stateStore = database.NewMemoryStateRepository()
	} else {
		defer db.Close()
		stateRepo := database.NewMongoStateRepository(db)
		stateStore = database.NewFallbackStateRepository(stateRepo)
		allStates = stateRepo.AllStates

		mongoUsers := database.NewMongoUserRepository(db)
		if err := mongoUsers.EnsureIndexes(); err != nil {
			logger.Warnf("Failed to ensure user indexes: %v", err)
		}
		userRepo = mongoUsers
	}

	// Leaderboard: Redis when configured, otherwise a local no-op
	var leaderboard interface {
		services.LeaderboardSync
		services.LeaderboardReader
	}
	if cfg.Redis.Enabled {
		redisBoard, err := database.NewRedisLeaderboard(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Warnf("Redis unavailable, leaderboard disabled: %v", err)
			leaderboard = services.NoopLeaderboard{}
		} else {
			defer redisBoard.Close()
			leaderboard = redisBoard
		}
	} else {
		leaderboard = services.NoopLeaderboard{}
	}

	// Live feed is optional; without it the simulated tier carries the day
	var feed *services.FeedService
	if cfg.App.LiveFeedEnabled {
		feed = services.NewFeedService(cfg.App.FeedBaseURL)
	}

	calendar := services.NewCalendarService(nil)
	outcomes := services.NewSeededOutcomeProvider(cfg.App.OutcomeSeedSalt)

	var source *services.MatchupSource
	var results services.ResultSource
	if feed != nil {
		source = services.NewMatchupSource(feed, calendar.Now)
		results = feed
	} else {
		source = services.NewMatchupSource(nil, calendar.Now)
	}

	deps := services.SessionDeps{
		Calendar:    calendar,
		Source:      source,
		Store:       stateStore,
		Leaderboard: leaderboard,
		Results:     results,
		Outcomes:    outcomes,
	}

	sseHandler := handlers.NewSSEHandler()
	defer sseHandler.Close()

	sessionManager := handlers.NewSessionManager(deps, sseHandler.Broadcast)

	// Accounts are optional; without a database only guest play is available
	var authService *services.AuthService
	if userRepo != nil {
		authService = services.NewAuthService(userRepo, cfg.Auth.JWTSecret)
	}

	secureCookies := !cfg.App.IsDevelopment
	authMiddleware := middleware.NewAuthMiddleware(authService, secureCookies)
	gameHandler := handlers.NewGameHandler(sessionManager, leaderboard)

	// Maintenance jobs: midnight day rollover, Monday weekly reset sweep
	maintenance := services.NewMaintenanceService()
	if err := maintenance.AddDailyRollover(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		sessionManager.ReevaluateAll(ctx)
	}); err != nil {
		logger.Errorf("Failed to register daily rollover job: %v", err)
	}
	if err := maintenance.AddWeeklyReset(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		sessionManager.ReevaluateAll(ctx)

		// Re-push every known state so the shared board reflects the fresh week
		if allStates == nil {
			return
		}
		states, err := allStates(ctx)
		if err != nil {
			logger.Errorf("Weekly leaderboard sweep failed: %v", err)
			return
		}
		now := calendar.Now()
		for i := range states {
			entry := models.ProjectLeaderboardEntry(services.AnonymizeUserKey(states[i].UserKey), &states[i], now)
			if err := leaderboard.Push(ctx, entry); err != nil {
				logger.Debugf("Weekly push failed for %s: %v", entry.ID, err)
			}
		}
	}); err != nil {
		logger.Errorf("Failed to register weekly reset job: %v", err)
	}
	maintenance.Start()
	defer maintenance.Stop()

	// Routes
	r := mux.NewRouter()
	r.Use(middleware.SecurityMiddleware)

	api := r.PathPrefix("/api").Subrouter()
	if authService != nil {
		authHandler := handlers.NewAuthHandler(authService, secureCookies)
		api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
		api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
		api.HandleFunc("/auth/logout", authHandler.Logout).Methods("POST")
	}

	game := api.NewRoute().Subrouter()
	game.Use(authMiddleware.WithIdentity)
	game.HandleFunc("/today", gameHandler.Today).Methods("GET")
	game.HandleFunc("/picks", gameHandler.SubmitPick).Methods("POST")
	game.HandleFunc("/me/stats", gameHandler.Stats).Methods("GET")
	game.HandleFunc("/me/history", gameHandler.History).Methods("GET")
	game.HandleFunc("/leaderboard", gameHandler.Leaderboard).Methods("GET")
	game.HandleFunc("/session/end", gameHandler.EndSession).Methods("POST")

	events := r.PathPrefix("/events").Subrouter()
	events.Use(authMiddleware.WithIdentity)
	events.HandleFunc("", sseHandler.Handle).Methods("GET")

	server := &http.Server{
		Addr:    cfg.GetServerAddress(),
		Handler: r,
	}

	go func() {
		logger.Infof("Server starting on %s", cfg.GetServerAddress())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")
	sessionManager.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Server shutdown error: %v", err)
	}
	logger.Info("Shutdown complete")
}
