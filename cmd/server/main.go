package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"account_service/internal/config"
	"account_service/internal/handler"
	"account_service/internal/logging"
	"account_service/internal/model"
	"account_service/internal/repository"
	"account_service/internal/service"
	"account_service/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

type storage struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	pinger   handler.Pinger
	close    func()
}

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading, relying on environment variables")
	}

	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	level, _ := cfg.SlogLevel()
	logger := logging.New(os.Stdout, cfg.LogFormat, level)
	slog.SetDefault(logger)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open storage", "storage", cfg.Storage, "error", err)
		os.Exit(1)
	}
	defer store.close()

	// --- Initialize Utilities ---
	hasher, err := utils.NewPasswordHasher(cfg.BcryptCost)
	if err != nil {
		logger.Error("invalid bcrypt cost", "error", err)
		os.Exit(1)
	}
	jwtUtil, err := utils.NewJWTUtil(utils.JWTConfig{
		Secret: cfg.JWTSecret,
		Issuer: cfg.TokenIssuer,
		TTL:    cfg.TokenTTL,
		Leeway: cfg.TokenLeeway,
	})
	if err != nil {
		logger.Error("invalid token settings", "error", err)
		os.Exit(1)
	}

	// --- Initialize Services ---
	authService := service.NewAuthService(store.users, store.sessions, hasher, jwtUtil, logger)
	userService := service.NewUserService(store.users, hasher, logger)

	if cfg.SeedUsersPath != "" {
		created, err := service.SeedUsers(ctx, authService, cfg.SeedUsersPath, logger)
		if err != nil {
			logger.Error("failed to seed users", "path", cfg.SeedUsersPath, "error", err)
			os.Exit(1)
		}
		logger.Info("seeded users", "created", created)
	}
	logAdminStatus(ctx, store.users, logger)

	// --- Setup Gin Router ---
	router := handler.NewRouter(handler.RouterDeps{
		AuthService: authService,
		UserService: userService,
		JWTUtil:     jwtUtil,
		Store:       store.pinger,
		Logger:      logger,
	})

	// --- Start Server ---
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		logger.Info("server starting", "port", cfg.ServerPort, "storage", cfg.Storage, "token_ttl", jwtUtil.TTL())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen failed", "error", err)
			stop()
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		return
	}

	logger.Info("server exiting")
}

func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*storage, error) {
	if cfg.Storage == config.StorageMemory {
		logger.Warn("using in-memory storage, data is lost on restart")
		mem := repository.NewMemoryStore()
		return &storage{users: mem.Users(), sessions: mem.Sessions(), pinger: mem, close: func() {}}, nil
	}

	pool, err := config.ConnectDB(ctx, cfg.DB, logger)
	if err != nil {
		return nil, err
	}
	if err := config.Migrate(ctx, pool, logger); err != nil {
		pool.Close()
		return nil, err
	}
	return &storage{
		users:    repository.NewUserRepository(pool),
		sessions: repository.NewSessionRepository(pool),
		pinger:   pool,
		close:    pool.Close,
	}, nil
}

func logAdminStatus(ctx context.Context, users repository.UserRepository, logger *slog.Logger) {
	admin, err := users.FindAnyByRole(ctx, model.RoleAdmin)
	switch {
	case err != nil:
		logger.Warn("could not check for admin account", "error", err)
	case admin == nil:
		logger.Info("no admin account yet, the next registration becomes admin")
	default:
		logger.Info("admin account present", "user_id", admin.ID)
	}
}
