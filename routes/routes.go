package routes

import (
	"journal-management-api/controllers"
	"journal-management-api/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Authentication
			public.POST("/login", controllers.Login)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Journal Management API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User profile
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			// Submissions
			submissions := protected.Group("/submissions")
			{
				submissions.GET("", controllers.GetSubmissions)
				submissions.GET("/:id", controllers.GetSubmission)

				// Authors create and withdraw their own submissions
				submissions.POST("", middleware.RequireRole(middleware.RoleAuthor), controllers.CreateSubmission)
				submissions.POST("/:id/withdraw", middleware.RequireRole(middleware.RoleAuthor), controllers.WithdrawSubmission)

				// Managing editors run the editorial pipeline
				submissions.POST("/:id/area-editor", middleware.RequireRole(middleware.RoleManagingEditor), controllers.AssignAreaEditor)
				submissions.POST("/:id/archive", middleware.RequireRole(middleware.RoleManagingEditor), controllers.ArchiveSubmission)
				submissions.POST("/:id/unarchive", middleware.RequireRole(middleware.RoleManagingEditor), controllers.UnarchiveSubmission)
				submissions.GET("/:id/sent-emails", middleware.RequireRole(middleware.RoleManagingEditor, middleware.RoleAreaEditor), controllers.GetSentEmails)

				// Referee invitations
				submissions.POST("/:id/assignments", middleware.RequireRole(middleware.RoleManagingEditor, middleware.RoleAreaEditor), controllers.CreateAssignment)

				// Decisions
				submissions.POST("/:id/decision", middleware.RequireRole(middleware.RoleAreaEditor, middleware.RoleManagingEditor), controllers.EnterDecision)
				submissions.POST("/:id/decision/approve", middleware.RequireRole(middleware.RoleManagingEditor), controllers.ApproveDecision)
			}

			// Referee assignments
			assignments := protected.Group("/assignments")
			{
				assignments.POST("/:id/agree", middleware.RequireRole(middleware.RoleReferee), controllers.AgreeToAssignment)
				assignments.POST("/:id/decline", middleware.RequireRole(middleware.RoleReferee), controllers.DeclineAssignment)
				assignments.POST("/:id/report", middleware.RequireRole(middleware.RoleReferee), controllers.CompleteReport)
				assignments.POST("/:id/cancel", middleware.RequireRole(middleware.RoleManagingEditor, middleware.RoleAreaEditor), controllers.CancelAssignment)
			}

			// Documents
			documents := protected.Group("/documents")
			{
				documents.POST("/upload", controllers.UploadDocument)
				documents.GET("/download/:id", controllers.DownloadDocument)
			}

			// Reminder sweeps, normally driven by the scheduler
			reminders := protected.Group("/reminders")
			reminders.Use(middleware.RequireRole(middleware.RoleManagingEditor))
			{
				reminders.POST("/run", controllers.RunReminders)
				reminders.POST("/run/:kind", controllers.RunReminderSweep)
			}
		}
	}
}
