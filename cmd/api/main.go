package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/cityfix/cityfix-api/internal/config"
	"github.com/cityfix/cityfix-api/internal/domain/activity"
	"github.com/cityfix/cityfix-api/internal/domain/admin"
	"github.com/cityfix/cityfix-api/internal/domain/auth"
	"github.com/cityfix/cityfix-api/internal/domain/comment"
	"github.com/cityfix/cityfix-api/internal/domain/report"
	"github.com/cityfix/cityfix-api/internal/domain/user"
	"github.com/cityfix/cityfix-api/internal/domain/vote"
	"github.com/cityfix/cityfix-api/internal/middleware"
	"github.com/cityfix/cityfix-api/internal/pkg/database"
	"github.com/cityfix/cityfix-api/internal/pkg/imaging"
	"github.com/cityfix/cityfix-api/internal/pkg/jwt"
	"github.com/cityfix/cityfix-api/internal/pkg/logger"
	"github.com/cityfix/cityfix-api/internal/pkg/storage"
)

func main() {
	cfg := config.Load()

	logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Env,
	})

	log.Info().Str("env", cfg.Env).Msg("Starting CityFix API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redisClient, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redisClient)

	store, err := buildStorage(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize storage")
	}

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL)
	processor := imaging.NewProcessor(imaging.DefaultConfig())

	// Repositories
	userRepo := user.NewRepository(db)
	reportRepo := report.NewRepository(db)
	voteRepo := vote.NewRepository(db)
	commentRepo := comment.NewRepository(db)
	activityRepo := activity.NewRepository(db)
	adminRepo := admin.NewRepository(db)

	recorder := activity.NewRecorder(activityRepo)
	reports := &reportChecker{repo: reportRepo}

	// Services
	authService := auth.NewService(userRepo, jwtService)
	voteService := vote.NewService(voteRepo, reports, recorder)
	commentService := comment.NewService(commentRepo, reports, recorder)
	reportService := report.NewService(reportRepo, store, processor, recorder,
		&commentSource{comments: commentService}, voteService, cfg.MaxImagesPerReport)
	adminService := admin.NewService(adminRepo, reportRepo, reportService, userRepo,
		store, recorder, redisClient, cfg.StatsCacheTTL)

	// Handlers
	authHandler := auth.NewHandler(authService)
	reportHandler := report.NewHandler(reportService, cfg.MaxImageSizeMB, cfg.MaxImagesPerReport)
	voteHandler := vote.NewHandler(voteService)
	commentHandler := comment.NewHandler(commentService)
	activityHandler := activity.NewHandler(activityRepo)
	adminHandler := admin.NewHandler(adminService)

	authMW := middleware.Auth(jwtService, userRepo)
	optionalAuthMW := middleware.OptionalAuth(jwtService, userRepo)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/auth", auth.Routes(authHandler))
		r.Mount("/reports", report.Routes(reportHandler, voteHandler.Toggle, commentHandler.Create, authMW, optionalAuthMW))
		r.Mount("/comments", comment.Routes(commentHandler, authMW))
		r.Mount("/admin", admin.Routes(adminHandler, activityHandler.List, authMW))
	})

	if cfg.StorageBackend == "local" {
		fileServer := http.StripPrefix("/files/", http.FileServer(http.Dir(cfg.LocalStorePath)))
		r.Get("/files/*", fileServer.ServeHTTP)
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Forced shutdown")
	}

	log.Info().Msg("Server stopped")
}

func buildStorage(cfg *config.Config) (storage.Storage, error) {
	if cfg.StorageBackend == "s3" {
		return storage.NewS3Storage(storage.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			PublicURL: cfg.PublicFileURL,
		})
	}
	return storage.NewLocalStorage(cfg.LocalStorePath, cfg.PublicFileURL)
}

// reportChecker adapts the report repository to the existence checks
// the vote and comment domains need.
type reportChecker struct {
	repo report.Repository
}

func (c *reportChecker) Exists(ctx context.Context, reportID uuid.UUID) (bool, error) {
	rep, err := c.repo.GetByID(ctx, reportID)
	if err != nil {
		return false, err
	}
	return rep != nil, nil
}

// commentSource adapts the comment service to the view the report
// detail page embeds.
type commentSource struct {
	comments *comment.Service
}

func (c *commentSource) ListForReport(ctx context.Context, reportID uuid.UUID) ([]report.CommentView, error) {
	views, err := c.comments.ListForReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	out := make([]report.CommentView, len(views))
	for i, v := range views {
		out[i] = report.CommentView{
			ID:        v.ID,
			Body:      v.Body,
			User:      v.User,
			CreatedAt: v.CreatedAt,
		}
	}
	return out, nil
}
