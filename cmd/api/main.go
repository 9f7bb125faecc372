// @title HireFlow API
// @version 1.0
// @description Applicant tracking backend: candidate evaluation lifecycle and interview scheduling.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "hireflow/docs"
	"hireflow/internal/auth"
	"hireflow/internal/config"
	"hireflow/internal/database"
	"hireflow/internal/email"
	"hireflow/internal/handlers"
	"hireflow/internal/logger"
	"hireflow/internal/middleware"
	"hireflow/internal/queue"
	"hireflow/internal/repository"
	"hireflow/internal/scheduler"
	"hireflow/internal/service"
	"hireflow/internal/vault"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger.Setup(logger.Config{Level: cfg.Log.Level})

	if err := vault.LoadInto(cfg); err != nil {
		slog.Error("failed to load secrets from vault", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.NewMigrationExecutor(db.DB).RunMigrations("./migrations"); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db.DB)
	sessionRepo := repository.NewSessionRepository(db.DB)
	auditRepo := repository.NewAuditRepository(db.DB)
	jobRepo := repository.NewJobRepository(db.DB)
	resumeRepo := repository.NewResumeRepository(db.DB)
	evalRepo := repository.NewEvaluationRepository(db.DB)
	slotRepo := repository.NewSlotRepository(db.DB)
	detailRepo := repository.NewInterviewDetailRepository(db.DB)
	historyRepo := repository.NewAssignmentHistoryRepository(db.DB)

	// Services
	authCore := auth.NewService(&cfg.JWT)
	authService := service.NewAuthService(authCore, userRepo, sessionRepo)
	mailer := email.NewService(&cfg.Email)
	parser := service.NewParserService(&cfg.Parser)
	scoring := service.NewScoringService(resumeRepo, evalRepo, jobRepo, parser)
	identity := service.NewIdentityService(resumeRepo)
	repair := service.NewRepairService(db.DB, slotRepo, evalRepo, detailRepo)
	slotService := service.NewSlotService(slotRepo, userRepo, jobRepo)
	decisionService := service.NewDecisionService(evalRepo, detailRepo, historyRepo)

	var meetings service.MeetingCreator
	if m := service.NewMeetingService(&cfg.Meeting); m.Enabled() {
		meetings = m
	}
	assignmentService := service.NewAssignmentService(
		db.DB, evalRepo, resumeRepo, jobRepo, userRepo, slotRepo, detailRepo, historyRepo,
		meetings, mailer,
	)

	// Scoring pipeline: broker-backed when configured, inline otherwise.
	var enqueuer service.ScoringEnqueuer
	var queueClient *queue.Client
	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	defer stopConsumer()
	if cfg.Queue.Enabled {
		queueClient, err = queue.New(&cfg.Queue)
		if err != nil {
			slog.Error("failed to connect to queue", "error", err)
			os.Exit(1)
		}
		defer queueClient.Close()
		enqueuer = queueClient

		go func() {
			if err := queueClient.Consume(consumerCtx, scoring); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("scoring consumer exited", "error", err)
			}
		}()
	} else {
		enqueuer = &queue.InlineEnqueuer{Scorer: scoring}
	}

	resumeService := service.NewResumeService(resumeRepo, evalRepo, jobRepo, identity, enqueuer)

	// Background tasks
	sched := scheduler.New(&cfg.Scheduler, repair, detailRepo, sessionRepo, mailer)
	sched.Start()
	defer sched.Stop()

	// HTTP surface
	authMW := middleware.Auth(authCore, sessionRepo, userRepo)
	auditMW := middleware.Audit(auditRepo)

	mux := handlers.NewRouter(handlers.RouterDeps{
		Auth:       handlers.NewAuthHandler(authService),
		Users:      handlers.NewUserHandler(authService, userRepo, auditRepo),
		Jobs:       handlers.NewJobHandler(jobRepo, slotService),
		Resumes:    handlers.NewResumeHandler(resumeService, repair),
		Slots:      handlers.NewSlotHandler(slotService),
		Assign:     handlers.NewAssignmentHandler(assignmentService),
		Evals:      handlers.NewEvaluationHandler(evalRepo),
		Decisions:  handlers.NewDecisionHandler(decisionService, detailRepo),
		Health:     handlers.NewHealthHandler(db, cfg.App.Version),
		AuthMW:     authMW,
		AuditMW:    auditMW,
		EnableDocs: cfg.App.Env != "production",
	})

	handler := middleware.Chain(mux,
		middleware.Logging,
		middleware.SecurityHeaders,
		middleware.CORS(&cfg.CORS),
		middleware.RateLimit(&cfg.RateLimit),
	)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.TimeoutRead,
		WriteTimeout: cfg.Server.TimeoutWrite,
		IdleTimeout:  cfg.Server.TimeoutIdle,
	}

	go func() {
		slog.Info("server starting", "addr", server.Addr, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	stopConsumer()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}
	slog.Info("server stopped")
}
