// Copyright (C) 2025 Classdesk (engineering@classdesk.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Request and response types for the assistant query endpoint.
package datatypes

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// MaxQueryBytes is the maximum size of one query message. Byte length,
// not rune count, to bound memory on hostile payloads.
const MaxQueryBytes = 8 * 1024

// queryValidate is the shared validator for query datatypes, with
// custom validators registered in init().
var queryValidate *validator.Validate

func init() {
	queryValidate = validator.New()
	_ = queryValidate.RegisterValidation("maxbytes", validateQueryBytes)
}

func validateQueryBytes(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= MaxQueryBytes
}

// QueryRequest is the body of POST /v1/assistant/query.
//
// Identity addresses the per-user conversation history; when empty the
// X-Identity header (or "default_user") is used. RequestID and
// Timestamp exist for audit correlation and are filled server-side when
// the client omits them.
type QueryRequest struct {
	RequestID string `json:"request_id" validate:"omitempty,uuid4"`
	Timestamp int64  `json:"timestamp" validate:"gte=0"`
	Identity  string `json:"identity" validate:"omitempty,max=128"`
	Message   string `json:"message" validate:"required,maxbytes"`
}

// Validate checks the request against its struct tags.
func (r *QueryRequest) Validate() error {
	return queryValidate.Struct(r)
}

// EnsureDefaults fills RequestID and Timestamp when the client left
// them empty.
func (r *QueryRequest) EnsureDefaults() {
	if r.RequestID == "" {
		r.RequestID = uuid.NewString()
	}
	if r.Timestamp == 0 {
		r.Timestamp = time.Now().UnixMilli()
	}
}

// QueryResponse is the answer to a query.
//
// Intent names the structured query that handled the message, or
// "fallback" when the generative model answered.
type QueryResponse struct {
	ResponseID string `json:"response_id"`
	RequestID  string `json:"request_id"`
	Timestamp  int64  `json:"timestamp"`
	Intent     string `json:"intent"`
	Answer     string `json:"answer"`
}

// NewQueryResponse builds a response with generated ID and timestamp.
func NewQueryResponse(requestID, intent, answer string) *QueryResponse {
	return &QueryResponse{
		ResponseID: uuid.NewString(),
		RequestID:  requestID,
		Timestamp:  time.Now().UnixMilli(),
		Intent:     intent,
		Answer:     answer,
	}
}
