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

	goredis "github.com/redis/go-redis/v9"

	httpadapter "github.com/voyant-travel/voyant-agent/internal/adapters/http"
	"github.com/voyant-travel/voyant-agent/internal/adapters/llm"
	"github.com/voyant-travel/voyant-agent/internal/adapters/secrets"
	memstore "github.com/voyant-travel/voyant-agent/internal/adapters/storage/memory"
	redisstore "github.com/voyant-travel/voyant-agent/internal/adapters/storage/redis"
	"github.com/voyant-travel/voyant-agent/internal/app/admission"
	"github.com/voyant-travel/voyant-agent/internal/app/agentflow"
	"github.com/voyant-travel/voyant-agent/internal/app/planner"
	"github.com/voyant-travel/voyant-agent/internal/app/tools"
	"github.com/voyant-travel/voyant-agent/internal/config"
	"github.com/voyant-travel/voyant-agent/internal/domain"
	"github.com/voyant-travel/voyant-agent/internal/kb"
	"github.com/voyant-travel/voyant-agent/internal/observability"
)

func main() {
	cfg := config.Load()
	observability.InitLogger(cfg.LogFormat, slog.LevelInfo)
	log := observability.Logger()

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := setupTracing(ctx, cfg)
	if err != nil {
		// Tracing is best-effort; the API must come up without it.
		log.Warn("tracing disabled", "error", err)
		shutdownTracing = func(context.Context) error { return nil }
	}

	// Knowledge base and tools
	base, err := kb.Load(cfg.USDToAUD)
	if err != nil {
		log.Error("failed to load knowledge base", "error", err)
		os.Exit(1)
	}
	registry := tools.NewDefaultRegistry(base)

	// Model: Bedrock or mock
	var model domain.ModelClient
	if cfg.UseMockModel {
		log.Info("using mock model client")
		model = llm.NewMockModel()
	} else {
		log.Info("using Bedrock model client", "model_id", cfg.ModelID, "region", cfg.AWSRegion)
		model, err = llm.NewBedrockClient(ctx, llm.BedrockConfig{
			Region:    cfg.AWSRegion,
			ModelID:   cfg.ModelID,
			MaxTokens: cfg.MaxTokens,
		}, registry)
		if err != nil {
			log.Error("failed to initialize Bedrock client", "error", err)
			os.Exit(1)
		}
	}

	// Sessions: Redis or in-memory
	var store domain.SessionStore
	if cfg.RedisAddr != "" {
		log.Info("using Redis session store", "addr", cfg.RedisAddr)
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		rs := redisstore.NewSessionStore(client, cfg.SessionMaxMessages)
		if err := rs.Ping(ctx); err != nil {
			log.Error("failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		store = rs
	} else {
		log.Info("using in-memory session store")
		store = memstore.NewSessionStore(cfg.SessionMaxMessages)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Warn("unknown timezone, falling back to UTC", "timezone", cfg.Timezone)
		loc = time.UTC
	}
	ctrl := admission.New(cfg.DailyLimit, cfg.MonthlyLimit, loc)

	router := agentflow.NewRouter(cfg.FeasibilityKeywords, cfg.MaxToolResults)
	loop := agentflow.NewLoop(model, registry, router, llm.SystemPrompt, log)
	svc := planner.NewService(loop, store, ctrl, cfg.SessionTTL)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpadapter.NewServer(svc, cfg.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Voyant API listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown failed", "error", err)
	}
}

// setupTracing wires the OTLP exporter, pulling its auth header from Secrets
// Manager when configured.
func setupTracing(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	headers := map[string]string{}
	if cfg.TracingSecretName != "" {
		sm, err := secrets.NewClient(ctx, cfg.AWSRegion)
		if err != nil {
			return nil, err
		}
		token, err := sm.Get(ctx, cfg.TracingSecretName)
		if err != nil {
			return nil, err
		}
		headers["Authorization"] = "Bearer " + token
	}

	return observability.InitTracing(ctx, observability.TracingConfig{
		ServiceName: "voyant-agent",
		Endpoint:    cfg.TracingEndpoint,
		Headers:     headers,
		Insecure:    cfg.TracingInsecure,
	})
}
