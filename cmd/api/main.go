package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"onepath_dispatch_backend/internal/availability"
	"onepath_dispatch_backend/internal/config"
	"onepath_dispatch_backend/internal/dispatch"
	"onepath_dispatch_backend/internal/events"
	apphttp "onepath_dispatch_backend/internal/http"
	"onepath_dispatch_backend/internal/http/router"
	"onepath_dispatch_backend/internal/pricing"
	"onepath_dispatch_backend/internal/reasoning"
	"onepath_dispatch_backend/internal/scheduler"
	"onepath_dispatch_backend/internal/session"
	"onepath_dispatch_backend/platform/logger"
	"onepath_dispatch_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	catalog, err := pricing.Load(cfg.PricingCatalogPath)
	if err != nil {
		log.Error("failed to load pricing catalog", "error", err)
		panic("failed to load pricing catalog: " + err.Error())
	}

	// Session store: Redis when configured, in-process memory otherwise.
	var store session.Store
	if cfg.RedisEnabled() {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Error("invalid REDIS_URL", "error", err)
			panic("invalid REDIS_URL: " + err.Error())
		}
		store = session.NewRedisStore(redis.NewClient(opt), cfg.SessionTTL)
		log.Info("using redis session store", "ttl", cfg.SessionTTL.String())
	} else {
		store = session.NewMemoryStore()
		log.Info("using in-memory session store")
	}

	// Availability collaborator: external API when configured, built-in
	// slot table otherwise.
	var availabilityClient availability.Client
	if cfg.AvailabilityURL != "" {
		availabilityClient = availability.NewHTTPClient(availability.HTTPConfig{
			BaseURL: cfg.AvailabilityURL,
			APIKey:  cfg.AvailabilityAPIKey,
			Timeout: cfg.AvailabilityTimeout,
		})
		log.Info("using external availability API")
	} else {
		availabilityClient = availability.NewStaticClient()
		log.Info("using static availability roster")
	}

	var advisor *reasoning.Advisor
	if cfg.ReasoningEnabled() {
		advisor, err = reasoning.New(reasoning.Config{
			APIKey: cfg.MoonshotAPIKey,
			Model:  cfg.MoonshotModel,
		})
		if err != nil {
			log.Error("failed to initialize reasoning advisor", "error", err)
			advisor = nil
		} else {
			log.Info("reasoning advisor enabled", "model", cfg.MoonshotModel)
		}
	}

	dispatchModule := dispatch.NewModule(dispatch.Deps{
		Store:         store,
		Catalog:       catalog,
		Availability:  availabilityClient,
		Advisor:       advisor,
		EventBus:      eventBus,
		Logger:        log,
		Validator:     val,
		StageTimeout:  cfg.StageTimeout,
		MaxMessageLen: cfg.MaxMessageLen,
	})

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			dispatchModule,
		},
	}

	engine := router.New(app)
	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Session expiry scheduling only applies with Redis-backed sessions.
	if cfg.RedisEnabled() {
		expiryClient, err := scheduler.NewClient(cfg.RedisURL, cfg.SessionTTL)
		if err != nil {
			log.Error("failed to initialize expiry scheduler", "error", err)
			panic("failed to initialize expiry scheduler: " + err.Error())
		}
		defer func() { _ = expiryClient.Close() }()
		expiryClient.SubscribeToRequests(eventBus)

		worker, err := scheduler.NewWorker(cfg.RedisURL, store, eventBus, log)
		if err != nil {
			log.Error("failed to initialize expiry worker", "error", err)
			panic("failed to initialize expiry worker: " + err.Error())
		}
		group.Go(func() error {
			worker.Run(groupCtx)
			return nil
		})
		log.Info("session expiry scheduler enabled", "ttl", cfg.SessionTTL.String())
	}

	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server error", "error", err)
		panic("server error: " + err.Error())
	}
}
