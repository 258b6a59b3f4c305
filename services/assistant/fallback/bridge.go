// Copyright (C) 2025 Classdesk (engineering@classdesk.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package fallback turns queries that matched no intent rule into a
// moderated, context-grounded call to the generative backend.
package fallback

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/classdesk/classdesk/services/assistant/datatypes"
	"github.com/classdesk/classdesk/services/llm"
	"github.com/classdesk/classdesk/services/moderation"
)

var tracer = otel.Tracer("classdesk.assistant.fallback")

const (
	maxNewTokens = 300
	temperature  = float32(0.7)
	topP         = float32(0.9)

	// DefaultTimeout bounds one generative call end to end.
	DefaultTimeout = 60 * time.Second
)

// RefusalMessage is returned verbatim when the moderation gate flags
// the input. The model is never called in that case.
const RefusalMessage = "I’m sorry, I can’t respond to that. How can I assist you today in a polite and helpful way?"

// Bridge wraps an LLM backend with the moderation gate and the prompt
// assembly for teacher-assistant conversations.
type Bridge struct {
	client  llm.LLMClient
	mod     *moderation.Engine
	timeout time.Duration
}

func NewBridge(client llm.LLMClient, mod *moderation.Engine, timeout time.Duration) *Bridge {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Bridge{client: client, mod: mod, timeout: timeout}
}

// Answer produces the fallback reply for input that matched no intent.
// Failures are folded into the reply text so the caller always has
// something to show the user.
func (b *Bridge) Answer(ctx context.Context, input, contextData string,
	history []datatypes.ConversationTurn) string {

	ctx, span := tracer.Start(ctx, "Bridge.Answer")
	defer span.End()

	if b.mod != nil && b.mod.Flag(input) {
		span.SetAttributes(attribute.Bool("fallback.moderated", true))
		slog.Info("Moderation gate refused fallback input")
		return RefusalMessage
	}

	prompt := buildPrompt(input, contextData, history)
	params := llm.GenerationParams{}
	maxTokens := maxNewTokens
	temp := temperature
	nucleus := topP
	params.MaxTokens = &maxTokens
	params.Temperature = &temp
	params.TopP = &nucleus

	genCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	reply, err := b.client.Generate(genCtx, prompt, params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.Error("Fallback generation failed", "error", err)
		return "Sorry, I encountered an error: " + err.Error()
	}

	reply = strings.TrimSpace(reply)
	if after, found := strings.CutPrefix(reply, "AI:"); found {
		reply = strings.TrimSpace(after)
	}
	if reply == "" {
		return "Sorry, I couldn’t generate a response."
	}
	return reply
}

// buildPrompt assembles the persona, the dashboard context, the last
// few conversation turns, and the new input into one completion prompt.
func buildPrompt(input, contextData string, history []datatypes.ConversationTurn) string {
	var historyText strings.Builder
	tail := datatypes.TailTurns(history, datatypes.PromptContextTurns)
	for i, turn := range tail {
		if i > 0 {
			historyText.WriteString("\n")
		}
		fmt.Fprintf(&historyText, "User: %s\nAI: %s", turn.User, turn.Bot)
	}

	return fmt.Sprintf(
		"You are a helpful, polite, and accurate AI assistant for a teacher. "+
			"Use the following context to provide insights: %s\n"+
			"Previous conversation (if any): %s\n"+
			"User: %s\n"+
			"AI (be concise, polite, relevant, and list items like schedules, tasks, tests, or deadlines if asked):",
		contextData, historyText.String(), input)
}
