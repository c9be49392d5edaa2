package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/contact"
	"github.com/Zachkp/portfolio/internal/content"
	"github.com/Zachkp/portfolio/internal/logger"
	"github.com/Zachkp/portfolio/internal/store"
	"github.com/Zachkp/portfolio/internal/telemetry"
	"github.com/Zachkp/portfolio/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	logr := logger.New(!cfg.Production(), cfg.LogFile)
	defer logr.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, "portfolio", cfg.OTLPEndpoint, logr)
	if err != nil {
		logr.Fatal("Failed to set up tracing", zap.Error(err))
	}

	site, err := content.Load(cfg.ContentFile)
	if err != nil {
		logr.Fatal("Failed to load site content", zap.Error(err))
	}

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		logr.Fatal("Failed to open database", zap.Error(err))
	}
	defer st.Close()
	if err := st.Migrate(ctx); err != nil {
		logr.Fatal("Failed to migrate database", zap.Error(err))
	}

	rdb := connectRedis(ctx, cfg.RedisURL, logr)
	if rdb != nil {
		defer rdb.Close()
	}

	validator := contact.NewValidator(cfg.MinMessageLength)
	relay := contact.NewFormSubmitRelay(cfg.RelayEndpoint, cfg.RelayAutoresponse, nil)
	launcher := web.MailClientLauncher()
	forms := contact.NewRegistry(func() *contact.Form {
		return contact.NewForm(validator, relay, launcher, contact.Options{
			MailtoAddress: cfg.ContactEmail,
			SuccessDelay:  cfg.SuccessDelay,
			TypingIdle:    cfg.TypingIdle,
			Logger:        logr,
		})
	})
	defer forms.Close()
	go forms.Run(ctx, time.Minute, cfg.FormIdleTimeout)

	go runVisitorRetention(ctx, st, cfg.VisitorRetention, logr)

	router := web.NewRouter(web.Deps{
		Config: cfg,
		Site:   site,
		Forms:  forms,
		Store:  st,
		Redis:  rdb,
		Logger: logr,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("Starting portfolio server",
			zap.String("port", cfg.Port),
			zap.String("env", cfg.Env),
			zap.String("relay", cfg.RelayEndpoint),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Error("Listen failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logr.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logr.Warn("Tracer shutdown failed", zap.Error(err))
	}
	logr.Info("Server exiting")
}

// connectRedis returns nil when Redis is not configured or unreachable; rate
// limiting then stays in memory.
func connectRedis(ctx context.Context, rawURL string, logr *zap.Logger) *redis.Client {
	if rawURL == "" {
		return nil
	}
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		logr.Warn("Invalid REDIS_URL, rate limiting in memory", zap.Error(err))
		return nil
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logr.Warn("Redis unavailable, rate limiting in memory", zap.Error(err))
		client.Close()
		return nil
	}
	logr.Info("Redis connected for rate limiting")
	return client
}

// runVisitorRetention deletes visitor records older than retention at start
// and then daily.
func runVisitorRetention(ctx context.Context, st *store.Store, retention time.Duration, logr *zap.Logger) {
	purge := func() {
		n, err := st.PurgeVisitorsBefore(ctx, time.Now().Add(-retention))
		if err != nil {
			logr.Error("Error cleaning up old visitor data", zap.Error(err))
			return
		}
		if n > 0 {
			logr.Info("Privacy cleanup removed old visitor records", zap.Int64("deleted", n))
		}
	}

	purge()
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purge()
		}
	}
}
