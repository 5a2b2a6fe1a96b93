package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"feedback-backend/internal/archive"
	"feedback-backend/internal/auth"
	"feedback-backend/internal/config"
	"feedback-backend/internal/handlers"
	"feedback-backend/internal/metrics"
	"feedback-backend/internal/notify"
	"feedback-backend/internal/ratelimit"
	"feedback-backend/internal/telemetry"
	"feedback-backend/internal/workflow"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Init(ctx, telemetry.Config{
		Endpoint:    cfg.OTLPEndpoint,
		ServiceName: cfg.ServiceName,
		Environment: cfg.Env,
		SampleRatio: cfg.SampleRatio,
	})
	if err != nil {
		log.Fatalf("❌ Failed to initialise tracing: %v", err)
	}

	backend, err := openStores(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Failed to open %s store: %v", cfg.StoreDriver, err)
	}

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Notifications
	notifiers := notify.Multi{notify.NewLogNotifier(), m}
	if cfg.ResendAPIKey != "" {
		notifiers = append(notifiers, notify.NewEmailNotifier(cfg.ResendAPIKey, cfg.FromEmail, cfg.AppURL))
		log.Println("📧 Email notifications enabled")
	}
	var kafka *notify.KafkaNotifier
	if cfg.KafkaBrokers != "" {
		kafka = notify.NewKafkaNotifier(cfg.KafkaBrokers, cfg.KafkaTopic)
		notifiers = append(notifiers, kafka)
		log.Printf("📨 Publishing events to Kafka topic %s", cfg.KafkaTopic)
	}

	// Login rate limiting
	var limiter auth.Limiter = ratelimit.Noop{}
	if cfg.RedisURL != "" {
		rdb, err := ratelimit.Connect(ctx, cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️  Warning: Redis unavailable, login rate limiting disabled: %v", err)
		} else {
			defer rdb.Close()
			limiter = ratelimit.New(rdb, cfg.LoginLimit, cfg.LoginWindow)
		}
	}

	var opts []workflow.Option
	if cfg.S3Endpoint != "" {
		store, err := archive.New(archive.Config{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			UseSSL:    cfg.S3UseSSL,
			Bucket:    cfg.S3Bucket,
		})
		if err == nil {
			err = store.EnsureBucket(ctx)
		}
		if err != nil {
			log.Printf("⚠️  Warning: export archive disabled: %v", err)
		} else {
			opts = append(opts, workflow.WithArchiver(store))
		}
	}

	wf := workflow.NewService(backend.stores, notifiers, opts...)
	authSvc := auth.NewService(backend.stores.Users, backend.sessions, auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL), limiter)

	router := handlers.NewRouter(handlers.Deps{
		Auth:           authSvc,
		Workflow:       wf,
		Metrics:        m,
		CORSOrigins:    cfg.CORSOrigins,
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           telemetry.Handler(router, cfg.ServiceName),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.RequestTimeout,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("🚀 Feedback backend starting on port %s (%s store)", cfg.Port, cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️  HTTP shutdown: %v", err)
	}
	wf.Wait()
	if kafka != nil {
		if err := kafka.Close(); err != nil {
			log.Printf("⚠️  Kafka writer close: %v", err)
		}
	}
	if err := backend.close(shutdownCtx); err != nil {
		log.Printf("⚠️  Store close: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Printf("⚠️  Tracer shutdown: %v", err)
	}
	log.Println("✅ Server stopped")
}
