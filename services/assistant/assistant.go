// Copyright (C) 2025 Classdesk (engineering@classdesk.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package assistant assembles the teacher-assistant service.
//
// It wires together the components the rest of this tree provides:
// the Badger store, the intent/aggregation query engine, the moderated
// generative fallback, HTTP routing, and the observability
// infrastructure (OTLP tracing, Prometheus metrics).
package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/classdesk/classdesk/services/assistant/engine"
	"github.com/classdesk/classdesk/services/assistant/fallback"
	"github.com/classdesk/classdesk/services/assistant/middleware"
	"github.com/classdesk/classdesk/services/assistant/observability"
	"github.com/classdesk/classdesk/services/assistant/routes"
	"github.com/classdesk/classdesk/services/assistant/store"
	"github.com/classdesk/classdesk/services/assistant/store/badgerdb"
	"github.com/classdesk/classdesk/services/llm"
	"github.com/classdesk/classdesk/services/moderation"
)

// Service defines the contract for the assistant service. Run() blocks
// and should only be called once per instance.
type Service interface {
	// Run starts the HTTP server and blocks until shutdown or error.
	Run() error

	// Router returns the underlying Gin engine for testing. Callers
	// must not modify the routes.
	Router() *gin.Engine
}

// Config holds assistant service configuration. All fields have
// defaults applied by New().
type Config struct {
	// Port is the HTTP server port. Default: 12310
	Port int

	// LLMBackend specifies the generative fallback provider.
	// Valid values: "hf", "ollama", "openai". Default: "hf"
	LLMBackend string

	// DataDir is the Badger database directory. Default: "./data"
	DataDir string

	// DataInMemory runs Badger without disk persistence. Intended for
	// tests and demos.
	DataInMemory bool

	// OTelEndpoint is the OpenTelemetry collector endpoint.
	// Default: "classdesk-otel-collector:4317"
	OTelEndpoint string

	// EnableMetrics enables the Prometheus /metrics endpoint.
	// Default: true
	EnableMetrics bool

	// GinMode sets the Gin framework mode ("debug", "release", "test").
	// Default: uses GIN_MODE env var or "debug"
	GinMode string

	// FallbackTimeout bounds one generative call. Default: 60s
	FallbackTimeout time.Duration
}

type service struct {
	config        Config
	router        *gin.Engine
	db            *badgerdb.DB
	storage       *store.Badger
	llmClient     llm.LLMClient
	modEngine     *moderation.Engine
	queryEngine   *engine.Engine
	tracerCleanup func(context.Context)
}

// New initializes all assistant components: tracing, metrics, the
// Badger store, the moderation engine, the LLM client for the chosen
// backend, the query engine, and the HTTP router.
func New(cfg Config) (Service, error) {
	s := &service{
		config: applyConfigDefaults(cfg),
	}

	cleanup, err := s.initTracer()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}
	s.tracerCleanup = cleanup

	var metrics *observability.AssistantMetrics
	if s.config.EnableMetrics {
		metrics = observability.InitMetrics()
		slog.Info("Initialized Prometheus metrics")
	}

	if err := s.initStore(); err != nil {
		s.cleanup()
		return nil, fmt.Errorf("failed to initialize the store: %w", err)
	}

	s.modEngine, err = moderation.NewEngine()
	if err != nil {
		s.cleanup()
		return nil, fmt.Errorf("failed to initialize the moderation engine: %w", err)
	}

	if err := s.initLLMClient(); err != nil {
		s.cleanup()
		return nil, fmt.Errorf("failed to initialize the LLM client: %w", err)
	}

	bridge := fallback.NewBridge(s.llmClient, s.modEngine, s.config.FallbackTimeout)
	s.queryEngine = engine.New(s.storage, s.storage, bridge, metrics)

	s.initRouter()

	return s, nil
}

// Run starts the HTTP server and blocks until it stops. Cleanup is
// automatic on return.
func (s *service) Run() error {
	defer s.cleanup()

	addr := fmt.Sprintf(":%d", s.config.Port)
	slog.Info("Starting assistant server", "port", s.config.Port)

	return s.router.Run(addr)
}

func (s *service) Router() *gin.Engine {
	return s.router
}

func applyConfigDefaults(cfg Config) Config {
	if cfg.Port == 0 {
		cfg.Port = 12310
	}
	if cfg.LLMBackend == "" {
		cfg.LLMBackend = "hf"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "./data"
	}
	if cfg.OTelEndpoint == "" {
		cfg.OTelEndpoint = "classdesk-otel-collector:4317"
	}
	if cfg.FallbackTimeout == 0 {
		cfg.FallbackTimeout = fallback.DefaultTimeout
	}
	return cfg
}

// initTracer sets up the OTLP trace exporter toward the configured
// collector over an insecure gRPC connection, which is appropriate for
// internal networks.
func (s *service) initTracer() (func(context.Context), error) {
	ctx := context.Background()

	conn, err := grpc.NewClient(s.config.OTelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection: %w", err)
	}

	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("assistant-service")))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))

	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))

	cleanup := func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}

	return cleanup, nil
}

func (s *service) initStore() error {
	var err error
	if s.config.DataInMemory {
		s.db, err = badgerdb.OpenInMemory()
		slog.Info("Using in-memory Badger store")
	} else {
		cfg := badgerdb.DefaultConfig()
		cfg.Path = s.config.DataDir
		s.db, err = badgerdb.Open(cfg)
		slog.Info("Using Badger store", "path", s.config.DataDir)
	}
	if err != nil {
		return err
	}
	s.storage = store.NewBadger(s.db)
	return nil
}

func (s *service) initLLMClient() error {
	var err error

	switch s.config.LLMBackend {
	case "hf":
		s.llmClient, err = llm.NewHFInferenceClient()
		slog.Info("Using HuggingFace Inference LLM backend")
	case "openai":
		s.llmClient, err = llm.NewOpenAIClient()
		slog.Info("Using OpenAI LLM backend")
	case "ollama":
		s.llmClient, err = llm.NewOllamaClient()
		slog.Info("Using Ollama LLM backend")
	default:
		slog.Warn("Unknown LLM backend, defaulting to HuggingFace Inference", "backend", s.config.LLMBackend)
		s.llmClient, err = llm.NewHFInferenceClient()
	}

	return err
}

func (s *service) initRouter() {
	if s.config.GinMode != "" {
		gin.SetMode(s.config.GinMode)
	}
	s.router = gin.Default()
	s.router.Use(otelgin.Middleware("assistant-service"))
	s.router.Use(middleware.IdentityMiddleware())

	routes.SetupRoutes(s.router, s.queryEngine, s.storage, s.storage, s.config.EnableMetrics)
}

// cleanup releases resources held by the service. Called when Run()
// exits or on initialization failure.
func (s *service) cleanup() {
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			slog.Warn("Badger close error", "error", err)
		}
	}
	if s.tracerCleanup != nil {
		s.tracerCleanup(context.Background())
	}
}
