// Copyright (C) 2025 Classdesk (engineering@classdesk.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Command assistant starts the Classdesk teacher-assistant HTTP server.
//
// It reads configuration from environment variables (a .env file is
// loaded if present) and starts the server.
//
// # Environment Variables
//
//   - ASSISTANT_PORT: HTTP server port (default: 12310)
//   - LLM_BACKEND_TYPE: fallback provider - hf, openai, ollama (default: hf)
//   - DATA_DIR: Badger database directory (default: ./data)
//   - DATA_IN_MEMORY: "true" to run without disk persistence
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OpenTelemetry collector (default: classdesk-otel-collector:4317)
//   - ENABLE_METRICS: "false" to disable the /metrics endpoint
//   - LOG_DIR: directory for JSON file logs (default: stderr only)
//   - GIN_MODE: debug, release, or test
//   - FALLBACK_TIMEOUT_SECONDS: generative call timeout (default: 60)
//
// # Usage
//
//	# Build
//	go build -o assistant ./cmd/assistant
//
//	# Run
//	./assistant
package main

import (
	"log"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/classdesk/classdesk/pkg/logging"
	"github.com/classdesk/classdesk/services/assistant"
)

func main() {
	// A missing .env file is fine; env vars may come from the runtime.
	_ = godotenv.Load()

	// Setup structured logging
	logger := logging.New(logging.Config{
		Service: "assistant",
		JSON:    true,
		LogDir:  os.Getenv("LOG_DIR"),
	})
	defer logger.Close()
	slog.SetDefault(logger.Slog())

	// Build configuration from environment variables
	cfg := assistant.Config{
		Port:            getEnvInt("ASSISTANT_PORT", 12310),
		LLMBackend:      getEnvString("LLM_BACKEND_TYPE", "hf"),
		DataDir:         getEnvString("DATA_DIR", "./data"),
		DataInMemory:    getEnvBool("DATA_IN_MEMORY", false),
		OTelEndpoint:    getEnvString("OTEL_EXPORTER_OTLP_ENDPOINT", "classdesk-otel-collector:4317"),
		EnableMetrics:   getEnvBool("ENABLE_METRICS", true),
		GinMode:         os.Getenv("GIN_MODE"),
		FallbackTimeout: time.Duration(getEnvInt("FALLBACK_TIMEOUT_SECONDS", 60)) * time.Second,
	}

	slog.Info("Starting assistant",
		"port", cfg.Port,
		"llm_backend", cfg.LLMBackend,
		"data_dir", cfg.DataDir,
	)

	svc, err := assistant.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create the assistant service: %v", err)
	}

	// Run the server (blocks until shutdown)
	if err := svc.Run(); err != nil {
		log.Fatalf("Assistant error: %v", err)
	}
}

// getEnvString returns the environment variable value or a default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as int or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
		slog.Warn("Ignoring non-integer environment variable", "key", key, "value", value)
	}
	return defaultValue
}

// getEnvBool returns the environment variable as bool or a default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
		slog.Warn("Ignoring non-boolean environment variable", "key", key, "value", value)
	}
	return defaultValue
}
