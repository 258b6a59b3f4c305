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
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/classdesk/classdesk/services/assistant/datatypes"
	"github.com/classdesk/classdesk/services/assistant/store"
)

// CreateNoteRequest is the body of POST /v1/notes.
type CreateNoteRequest struct {
	Title    string `json:"title" binding:"required"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

// ListNotes returns all notes.
func ListNotes(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		notes, err := st.Notes(c.Request.Context())
		if err != nil {
			slog.Error("Failed to list notes", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list notes"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"notes": notes})
	}
}

// CreateNote stores a note. Unknown categories fall back to "General".
func CreateNote(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateNoteRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		category := "General"
		for _, known := range datatypes.NoteCategories {
			if req.Category == known {
				category = known
				break
			}
		}
		note := datatypes.Note{
			ID:        uuid.NewString(),
			Title:     req.Title,
			Content:   req.Content,
			Category:  category,
			CreatedAt: time.Now().UTC(),
		}
		if err := st.PutNote(c.Request.Context(), note); err != nil {
			slog.Error("Failed to store the note", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store the note"})
			return
		}
		c.JSON(http.StatusCreated, note)
	}
}

// DeleteNote removes a note.
func DeleteNote(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if err := st.DeleteNote(c.Request.Context(), id); err != nil {
			slog.Error("Failed to delete the note", "note_id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete the note"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success", "deleted_note_id": id})
	}
}
