// Copyright (C) 2025 Classdesk (engineering@classdesk.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/classdesk/classdesk/services/assistant/engine"
	"github.com/classdesk/classdesk/services/assistant/handlers"
	"github.com/classdesk/classdesk/services/assistant/store"
)

func SetupRoutes(router *gin.Engine, eng *engine.Engine, st store.Store, hist store.HistoryStore,
	enableMetrics bool) {

	router.GET("/health", handlers.HealthCheck)
	if enableMetrics {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	// API version 1 group
	v1 := router.Group("/v1")
	{
		assistant := v1.Group("/assistant")
		{
			assistant.POST("/query", handlers.HandleQuery(eng))
			assistant.GET("/history", handlers.GetHistory(hist))
			assistant.DELETE("/history", handlers.DeleteHistory(hist))
		}

		v1.GET("/dashboard", handlers.GetDashboard(eng))

		tasks := v1.Group("/tasks")
		{
			tasks.GET("", handlers.ListTasks(st))
			tasks.POST("", handlers.CreateTask(st))
			tasks.POST("/:id/status", handlers.SetTaskStatus(st))
			tasks.DELETE("/:id", handlers.DeleteTask(st))
		}

		schedule := v1.Group("/schedule")
		{
			schedule.GET("/today", handlers.GetScheduleToday(st))
			schedule.PUT("/today", handlers.PutScheduleToday(st))
		}

		students := v1.Group("/students")
		{
			students.GET("", handlers.ListStudents(st))
			students.POST("", handlers.CreateStudent(st))
			students.POST("/:id/performance", handlers.PutPerformance(st))
		}

		attendance := v1.Group("/attendance")
		{
			attendance.GET("", handlers.GetAttendance(st))
			attendance.PUT("", handlers.PutAttendance(st))
			attendance.POST("/mark", handlers.MarkAttendance(st))
		}

		tests := v1.Group("/tests")
		{
			tests.GET("", handlers.ListTests(st))
			tests.POST("", handlers.CreateTest(st))
		}

		notes := v1.Group("/notes")
		{
			notes.GET("", handlers.ListNotes(st))
			notes.POST("", handlers.CreateNote(st))
			notes.DELETE("/:id", handlers.DeleteNote(st))
		}
	}
}
