// Copyright (C) 2025 Classdesk (engineering@classdesk.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package middleware provides HTTP middleware for the assistant service.
//
// The identity middleware resolves which teacher a request belongs to.
// Conversation history is partitioned by this identity, so every route
// that touches history runs behind it.
//
// Requests carry the identity in the X-Identity header. When the header
// is absent the request is attributed to a shared default identity,
// which keeps single-teacher deployments configuration-free.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// IdentityHeader is the request header carrying the caller's identity.
const IdentityHeader = "X-Identity"

// DefaultIdentity is used when no identity header is present.
const DefaultIdentity = "default_user"

// identityKey is the Gin context key for the resolved identity.
// Using a prefixed key prevents collisions with other context values.
const identityKey = "classdesk_identity"

// IdentityMiddleware resolves the caller identity from the request and
// stores it in the Gin context for downstream handlers.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := strings.TrimSpace(c.GetHeader(IdentityHeader))
		if identity == "" {
			identity = DefaultIdentity
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

// GetIdentity retrieves the resolved identity from the Gin context.
// Falls back to DefaultIdentity if the middleware did not run.
func GetIdentity(c *gin.Context) string {
	if v, ok := c.Get(identityKey); ok {
		if identity, ok := v.(string); ok && identity != "" {
			return identity
		}
	}
	return DefaultIdentity
}
