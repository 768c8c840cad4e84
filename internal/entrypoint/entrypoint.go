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

	"github.com/mrlokans/identity/internal/auth"
	"github.com/mrlokans/identity/internal/config"
	"github.com/mrlokans/identity/internal/database"
	"github.com/mrlokans/identity/internal/database/codes"
	"github.com/mrlokans/identity/internal/database/sessions"
	"github.com/mrlokans/identity/internal/database/users"
	http_controllers "github.com/mrlokans/identity/internal/http"
	"github.com/mrlokans/identity/internal/mailer"
	"github.com/mrlokans/identity/internal/scheduler"
	"github.com/mrlokans/identity/internal/tasks"
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

	// Graceful shutdown: wait for interrupt, then give in-flight requests
	// and background workers until the timeout to finish.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Identity v%s", version)

	if cfg.Tokens.AccessSecret == "" || cfg.Tokens.RefreshSecret == "" {
		log.Fatalf("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must be set")
	}
	if cfg.Tokens.AccessSecret == cfg.Tokens.RefreshSecret {
		log.Fatalf("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")
	}

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	userRepo := users.NewRepository(db.DB)
	sessionRepo := sessions.NewRepository(db.DB)
	codeRepo := codes.NewRepository(db.DB)

	tokenService := auth.NewTokenService(cfg.Tokens)

	if cfg.Email.ResendAPIKey == "" {
		log.Printf("WARNING: Resend API key is not set. Verification and password-reset emails will fail. Set 'RESEND_API_KEY' to enable delivery.")
	}
	resendMailer := mailer.NewResendMailer(cfg.Email.ResendAPIKey, cfg.Email.Sender)

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	var emailDispatcher auth.VerificationEmailSender
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:           cfg.Tasks.Workers,
			MaxRetries:        cfg.Tasks.MaxRetries,
			RetryDelay:        cfg.Tasks.RetryDelay,
			TaskTimeout:       cfg.Tasks.TaskTimeout,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewVerificationEmailQueue(resendMailer),
		)

		// Start task workers in background
		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		emailDispatcher = tasks.NewEmailDispatcher(taskClient)
	}

	authService := auth.NewService(auth.ServiceConfig{
		Users:              userRepo,
		Sessions:           sessionRepo,
		Codes:              codeRepo,
		Tokens:             tokenService,
		Mailer:             resendMailer,
		VerificationEmails: emailDispatcher,
		ClientURL:          cfg.Global.ClientURL,
		Auth:               cfg.Auth,
	})

	cookies := auth.NewCookieWriter(
		cfg.Global.Development,
		int(cfg.Tokens.AccessTTL.Seconds()),
		int(cfg.Tokens.RefreshTTL.Seconds()),
	)
	authController := auth.NewController(authService, cookies)
	authMiddleware := auth.NewMiddleware(tokenService)

	// Start expired-record sweep if enabled
	var cleanup *scheduler.CleanupScheduler
	if cfg.Cleanup.Enabled {
		cleanup = scheduler.NewCleanupScheduler(sessionRepo, codeRepo)
		if err := cleanup.Start(cfg.Cleanup.Schedule); err != nil {
			log.Fatalf("Failed to start cleanup scheduler: %v", err)
		}
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		AuthController: authController,
		AuthMiddleware: authMiddleware,
		Users:          userRepo,
	})

	// Shutdown callback for graceful cleanup
	onShutdown := func(ctx context.Context) {
		if cleanup != nil {
			cleanup.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
