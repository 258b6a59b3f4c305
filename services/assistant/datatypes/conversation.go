// Copyright (C) 2025 Classdesk (engineering@classdesk.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

const (
	// MaxStoredTurns bounds persisted conversation history per identity.
	MaxStoredTurns = 50

	// PromptContextTurns is how many recent turns are embedded in the
	// fallback prompt.
	PromptContextTurns = 5
)

// ConversationTurn is one user/assistant exchange. History is an
// ordered sequence, newest last.
type ConversationTurn struct {
	User string `json:"user"`
	Bot  string `json:"bot"`
}

// TailTurns returns the last n turns of history (all of it when
// shorter).
func TailTurns(history []ConversationTurn, n int) []ConversationTurn {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
