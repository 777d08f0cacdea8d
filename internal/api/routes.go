package api

import (
	"net/http"

	"vivafit/wellness-app/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	planService service.PlanService,
	checkpointService service.CheckpointService,
	progressService service.ProgressService,
	achievementService service.AchievementService,
	levelService service.LevelService,
) {
	planHandler := NewPlanHandler(planService)
	checkpointHandler := NewCheckpointHandler(checkpointService)
	progressHandler := NewProgressHandler(progressService)
	gamificationHandler := NewGamificationHandler(achievementService, levelService)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	protected := router.Group("/api/v1")
	protected.Use(AuthMiddleware(jwtSecret))
	{
		planGroup := protected.Group("/plans")
		{
			planGroup.POST("", planHandler.CreatePlan)
			planGroup.GET("", planHandler.GetActivePlans)
			planGroup.GET("/:id", planHandler.GetPlan)
			planGroup.POST("/:id/deactivate", planHandler.DeactivatePlan)
			planGroup.DELETE("/:id", planHandler.PurgePlan)
			planGroup.POST("/:id/checkpoints", checkpointHandler.CompleteDaily)
		}

		sessionGroup := protected.Group("/sessions")
		{
			sessionGroup.POST("", checkpointHandler.InitSession)
			sessionGroup.POST("/:id/complete", checkpointHandler.CompleteSession)
		}

		protected.POST("/meal-days", checkpointHandler.InitMeals)
		protected.POST("/exercise-checkpoints/:id/complete", checkpointHandler.CompleteExercise)
		protected.POST("/meal-checkpoints/:id/complete", checkpointHandler.CompleteMeal)
		protected.POST("/meal-checkpoints/:id/photo-url", checkpointHandler.PhotoUploadURL)
		protected.GET("/meal-checkpoints/:id/photo-url", checkpointHandler.PhotoViewURL)

		goalGroup := protected.Group("/nutrition-goals")
		{
			goalGroup.POST("", checkpointHandler.EnsureGoal)
			goalGroup.POST("/:id/water", checkpointHandler.AddWater)
		}

		protected.GET("/progress/daily", progressHandler.GetDaily)

		achievementGroup := protected.Group("/achievements")
		{
			achievementGroup.GET("", gamificationHandler.ListAchievements)
			achievementGroup.POST("/evaluate", gamificationHandler.EvaluateAchievements)
		}

		protected.GET("/level", gamificationHandler.GetLevel)
	}
}
