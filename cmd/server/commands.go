package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/yukikurage/project-task-api/internal/config"
	"github.com/yukikurage/project-task-api/internal/constants"
	"github.com/yukikurage/project-task-api/internal/database"
	"github.com/yukikurage/project-task-api/internal/handlers"
	"github.com/yukikurage/project-task-api/internal/jobs"
	"github.com/yukikurage/project-task-api/internal/middleware"
	"github.com/yukikurage/project-task-api/internal/notify"
	"github.com/yukikurage/project-task-api/internal/repository"
	"github.com/yukikurage/project-task-api/internal/services"
	"github.com/yukikurage/project-task-api/pkg/logger"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

// NewRootCommand builds the CLI. Running it without a subcommand serves the API.
func NewRootCommand(cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "project-task-api",
		Short:         "Project and task tracking API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cfg)
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API and background jobs",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runServe(cmd.Context(), cfg)
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update the database schema",
			RunE: func(_ *cobra.Command, _ []string) error {
				log := logger.New(cfg.LogLevel, cfg.LogEncoding)
				defer log.Sync()

				if err := database.Connect(cfg, log); err != nil {
					return err
				}
				return database.Migrate(database.GetDB(), log)
			},
		},
		&cobra.Command{
			Use:   "reconcile",
			Short: "Recompute every project's progress from its tasks",
			RunE: func(cmd *cobra.Command, _ []string) error {
				log := logger.New(cfg.LogLevel, cfg.LogEncoding)
				defer log.Sync()

				if err := database.Connect(cfg, log); err != nil {
					return err
				}
				store := repository.NewStore(database.GetDB())
				reconciler := services.NewReconcileService(store, services.NewProgressAggregator(cfg.ProgressMaxAttempts), log)

				report, err := reconciler.ReconcileAll(cmd.Context())
				if err != nil {
					return err
				}
				printReport(cmd.OutOrStdout(), report)
				return nil
			},
		},
	)

	return root
}

func printReport(w io.Writer, report *services.ReconcileReport) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Project", "Stored", "Computed"})
	for _, change := range report.Adjusted {
		t.AppendRow(table.Row{change.ProjectID, change.Old, change.New})
	}
	t.AppendFooter(table.Row{
		"checked " + strconv.Itoa(report.Checked),
		"adjusted " + strconv.Itoa(len(report.Adjusted)),
		"failed " + strconv.Itoa(report.Failed),
	})
	t.Render()
}

func runServe(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.New(cfg.LogLevel, cfg.LogEncoding)
	defer log.Sync()

	gin.SetMode(cfg.GinMode)

	if err := database.Connect(cfg, log); err != nil {
		return err
	}
	db := database.GetDB()
	if err := database.Migrate(db, log); err != nil {
		return err
	}

	sessionStore, err := redisStore.NewStore(
		10,    // Redis pool size
		"tcp", // network type
		cfg.RedisAddr(),
		"", // username (empty for default user)
		cfg.RedisPassword,
		[]byte(cfg.SessionSecret),
	)
	if err != nil {
		return fmt.Errorf("failed to create Redis session store: %w", err)
	}
	isProduction := cfg.GinMode == gin.ReleaseMode
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
	})

	var publisher notify.Publisher
	if cfg.NotifyEnabled {
		client, err := notify.NewRedisClient(cfg.RedisAddr(), cfg.RedisPassword)
		if err != nil {
			log.Warn("live notifications disabled", zap.Error(err))
		} else {
			defer client.Close()
			publisher = notify.NewRedisPublisher(client, cfg.NotifyChannelPrefix)
		}
	}

	store := repository.NewStore(db)
	aggregator := services.NewProgressAggregator(cfg.ProgressMaxAttempts)
	emitter := services.NewAuditEmitter(publisher, log)

	projectService := services.NewProjectService(store, emitter, log)
	taskService := services.NewTaskService(store, aggregator, emitter, log)
	notificationService := services.NewNotificationService(store)
	authService := services.NewAuthService(store.Users)
	reconciler := services.NewReconcileService(store, aggregator, log)

	scheduler := jobs.NewScheduler(log, 5*time.Minute)
	err = scheduler.Add("reconcile-progress", cfg.ReconcileSchedule, func(ctx context.Context) error {
		_, err := reconciler.ReconcileAll(ctx)
		return err
	})
	if err != nil {
		return err
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestContext(log))
	r.Use(sessions.Sessions(constants.SessionCookieName, sessionStore))

	handlers.RegisterRoutes(r, handlers.Handlers{
		Auth:          handlers.NewAuthHandler(authService, log),
		Projects:      handlers.NewProjectHandler(projectService, log),
		Tasks:         handlers.NewTaskHandler(taskService, log),
		Notifications: handlers.NewNotificationHandler(notificationService, log),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	scheduler.Start()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			scheduler.Stop(context.Background())
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	scheduler.Stop(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
