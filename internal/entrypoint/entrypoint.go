package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/editions/internal/config"
	http_controllers "github.com/mrlokans/editions/internal/http"
	"github.com/mrlokans/editions/internal/scheduler"
	"github.com/mrlokans/editions/internal/services"
	"github.com/mrlokans/editions/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Wait for SIGINT or SIGTERM, then shut down within the timeout
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server Shutdown: %v", err)
	}

	// Stop background work after the last request has been answered
	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Editions v%s", version)

	app, err := NewApp(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		})
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewExtractEditionQueue(app.Pipeline),
			tasks.NewCleanupAuditEventsQueue(app.Audit),
		)
		go taskClient.Start(bgCtx)
	}

	dispatch := inlineDispatcher(app)
	if taskClient != nil {
		dispatch = queueDispatcher(taskClient)
	}

	var inbox *scheduler.InboxScheduler
	if cfg.Inbox.Enabled {
		inbox = scheduler.NewInboxScheduler(
			scheduler.InboxConfig{Dir: cfg.Inbox.Dir, Schedule: cfg.Inbox.Schedule},
			app.Editions, dispatch, app.Settings, app.Audit,
		)
		if err := inbox.Start(bgCtx); err != nil {
			log.Printf("WARNING: Failed to start inbox scheduler: %v", err)
		}
	}

	cleanup := scheduler.NewJob("Audit cleanup", cfg.Audit.CleanupSchedule, auditCleanup(app, taskClient, cfg.Audit.RetentionDays))
	if err := cleanup.Start(bgCtx); err != nil {
		log.Printf("WARNING: Failed to start audit cleanup: %v", err)
	}

	routerCfg := http_controllers.RouterConfig{
		Database:       app.DB,
		Editions:       app.Editions,
		Articles:       app.Articles,
		Authors:        app.Authors,
		ArticleDetails: services.NewArticleService(app.Articles),
		Importer:       app.Pipeline,
		Audit:          app.Audit,
		Settings:       app.Settings,
		Version:        version,
	}
	if taskClient != nil {
		routerCfg.TaskQueue = taskClient
	}
	if inbox != nil {
		routerCfg.Inbox = inbox
	}
	if app.Media != nil {
		routerCfg.MediaDir = app.Media.MediaDir()
		routerCfg.MediaURLPrefix = cfg.Media.URLPrefix
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		cleanup.Stop()
		if inbox != nil {
			inbox.Stop()
		}
		if taskClient != nil {
			taskClient.Stop(ctx)
		}
		bgCancel()
	}

	Serve(router, cfg, onShutdown)
}

func queueDispatcher(client *tasks.Client) scheduler.Dispatcher {
	return func(_ context.Context, path string) error {
		id, err := client.Enqueue(tasks.ExtractEditionTask{Path: path})
		if err != nil {
			return err
		}
		log.Printf("[INBOX] Enqueued %s as task %s", path, id)
		return nil
	}
}

func inlineDispatcher(app *App) scheduler.Dispatcher {
	return func(ctx context.Context, path string) error {
		_, err := app.Pipeline.Run(ctx, path)
		return err
	}
}

// auditCleanup enqueues the cleanup task, or runs it in place without a
// task queue.
func auditCleanup(app *App, client *tasks.Client, retentionDays int) func(context.Context) {
	task := tasks.CleanupAuditEventsTask{RetentionDays: retentionDays}
	return func(ctx context.Context) {
		if client != nil {
			if _, err := client.Enqueue(task); err != nil {
				log.Printf("[AUDIT] Failed to enqueue cleanup: %v", err)
			}
			return
		}
		if err := tasks.CleanupAuditEventsProcessor(app.Audit)(ctx, task); err != nil {
			log.Printf("[AUDIT] Cleanup failed: %v", err)
		}
	}
}
