package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"market-pulse/internal/alert"
	"market-pulse/internal/bot"
	"market-pulse/internal/cache"
	"market-pulse/internal/config"
	"market-pulse/internal/db"
	"market-pulse/internal/handler"
	"market-pulse/internal/job"
	"market-pulse/internal/provider"
	"market-pulse/internal/repository"
	"market-pulse/internal/service"
	"market-pulse/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	_ "market-pulse/docs"
)

var (
	loadEnvFunc         = godotenv.Load
	loadConfigFunc      = config.Load
	initPostgresFunc    = db.InitPostgres
	initRedisFunc       = cache.InitRedis
	initTracerFunc      = tracing.InitTracer
	newCryptoRepoFunc   = repository.NewCryptoRepository
	newEconomicRepoFunc = repository.NewEconomicRepository
	newCredentialsFunc  = provider.NewCredentialStore
	newCalendarProvider = func(tracer trace.Tracer) service.CalendarFetcher {
		return provider.NewCalendarProvider(tracer)
	}
	newAlertServiceFunc    = service.NewAlertService
	startJobFunc           = func(start func(ctx context.Context), ctx context.Context) { go start(ctx) }
	startTelegramBotFunc   = bot.StartTelegramBot
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Market Pulse API
// @version         1.0
// @description     Crypto market dashboard backend with mailbox alert ingestion.

// @host      localhost:8080
// @BasePath  /
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init Postgres and Redis
	os.Setenv("DATABASE_URL", cfg.DatabaseURL)
	os.Setenv("REDIS_URL", cfg.RedisURL)
	initPostgresFunc(ctx)
	initRedisFunc(ctx)

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Create repositories and run migrations. Without a pool the category
	// and calendar reads degrade to cache-only.
	var categoryReader service.CategoryReader
	var economicStore service.EconomicStore
	if db.Pool != nil {
		cryptoRepo := newCryptoRepoFunc(db.Pool, tracer)
		economicRepo := newEconomicRepoFunc(db.Pool, tracer)
		if err := cryptoRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
		if err := economicRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
		categoryReader = cryptoRepo
		economicStore = economicRepo
	}

	// Indicator cache warms from the JSON backup on startup
	indicatorCache := cache.NewIndicatorCache(cfg.BackupFile, cache.Client)

	// Mailbox access: credential store plus Gmail client factory
	var mailboxFactory service.MailboxFactory
	creds, err := newCredentialsFunc(cfg.GmailWebhook, cfg.GmailToken, cfg.EnvPath)
	if err != nil {
		log.Printf("Mailbox disabled: %v", err)
	} else {
		mailboxFactory = service.NewGmailFactory(creds.Acquire,
			func(ctx context.Context, httpClient *http.Client) (service.MailboxClient, error) {
				return provider.NewGmailClient(ctx, httpClient, tracer)
			})
	}

	mode := alert.ModeSubject
	if cfg.ClassifyMode == "body" {
		mode = alert.ModeBody
	}
	alertService := newAlertServiceFunc(tracer, mailboxFactory, indicatorCache, mode,
		time.Duration(cfg.AlertWindowHours)*time.Hour,
		time.Duration(cfg.SignalWindowDays)*24*time.Hour,
		time.Duration(cfg.MailTimeoutSecs)*time.Second,
	)

	indicatorService := service.NewIndicatorService(tracer, categoryReader, indicatorCache,
		time.Duration(cfg.MailTimeoutSecs)*time.Second)

	calendarProvider := newCalendarProvider(tracer)
	if p, ok := calendarProvider.(*provider.CalendarProvider); ok {
		p.SetBaseURL(cfg.CalendarURL)
	}
	calendarService := service.NewCalendarService(tracer, calendarProvider, economicStore,
		indicatorCache, time.Duration(cfg.MailTimeoutSecs)*time.Second)

	// Background jobs, stopped by ctx cancel
	poller := job.NewAlertPoller(tracer, alertService,
		time.Duration(cfg.AlertPollSecs)*time.Second,
		time.Duration(cfg.AlertWindowHours)*time.Hour,
		time.Duration(cfg.BackfillHours)*time.Hour,
	)
	startJobFunc(poller.Start, ctx)

	calendarJob := job.NewCalendarJob(tracer, calendarService, cfg.CalendarCron)
	startJobFunc(calendarJob.Start, ctx)

	// Telegram bot and push notifications
	notifier := startTelegramBotFunc(cfg.TelegramBotToken, indicatorCache, alertService)
	if notifier != nil {
		notifier.SetChatID(cfg.TelegramChatID)
		alertService.SetNotifier(notifier)
	}

	// Create handlers and routes
	h := newHandlerFunc(tracer, indicatorCache, alertService, indicatorService, calendarService)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("market-pulse"))
	r.Use(handler.APIKeyAuth(cfg.APIKey))

	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
