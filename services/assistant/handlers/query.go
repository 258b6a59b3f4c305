// Copyright (C) 2025 Classdesk (engineering@classdesk.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package handlers contains the Gin handlers for the assistant API.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/classdesk/classdesk/services/assistant/datatypes"
	"github.com/classdesk/classdesk/services/assistant/engine"
	"github.com/classdesk/classdesk/services/assistant/middleware"
)

var queryTracer = otel.Tracer("classdesk.assistant.handlers")

// HandleQuery resolves one free-text assistant query.
func HandleQuery(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := queryTracer.Start(c.Request.Context(), "HandleQuery")
		defer span.End()

		var req datatypes.QueryRequest
		if err := c.BindJSON(&req); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Failed to parse the query request", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		req.EnsureDefaults()
		if err := req.Validate(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Warn("Rejected invalid query request", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		identity := req.Identity
		if identity == "" {
			identity = middleware.GetIdentity(c)
		}

		answer, intentName, err := eng.Answer(ctx, identity, req.Message)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Query resolution failed", "intent", intentName, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve the query"})
			return
		}

		c.JSON(http.StatusOK, datatypes.NewQueryResponse(req.RequestID, intentName, answer))
	}
}
