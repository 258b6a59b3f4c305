// Copyright (C) 2025 Classdesk (engineering@classdesk.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classdesk/classdesk/pkg/validation"
	"github.com/classdesk/classdesk/services/assistant/middleware"
	"github.com/classdesk/classdesk/services/assistant/store"
)

// identityFromRequest prefers the explicit query parameter over the
// identity middleware. Identities become storage key fragments and are
// validated here rather than escaped.
func identityFromRequest(c *gin.Context) (string, error) {
	if identity := c.Query("identity"); identity != "" {
		return validation.SanitizeIdentity(identity)
	}
	return middleware.GetIdentity(c), nil
}

// GetHistory returns the stored conversation turns for an identity,
// oldest first.
func GetHistory(hist store.HistoryStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := identityFromRequest(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		turns, err := hist.LoadHistory(c.Request.Context(), identity)
		if err != nil {
			slog.Error("Failed to load conversation history", "identity", identity, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"identity": identity, "history": turns})
	}
}

// DeleteHistory clears an identity's conversation history.
func DeleteHistory(hist store.HistoryStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := identityFromRequest(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := hist.ResetHistory(c.Request.Context(), identity); err != nil {
			slog.Error("Failed to reset conversation history", "identity", identity, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reset history"})
			return
		}
		slog.Info("Reset conversation history", "identity", identity)
		c.JSON(http.StatusOK, gin.H{"status": "success", "identity": identity})
	}
}
