package api

import (
	"net/http"

	"stridepath/running-app/internal/service"

	"github.com/gin-gonic/gin"
)

// SetupRoutes wires the progression endpoints. Authentication is handled by
// an upstream gateway; this service trusts the user id in the path.
func SetupRoutes(
	router *gin.Engine,
	planService service.PlanService,
	progressionService service.ProgressionService,
) {
	planHandler := NewPlanHandler(planService)
	progressionHandler := NewProgressionHandler(progressionService)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		users := apiV1.Group("/users/:userId")
		{
			users.POST("/plans", planHandler.GeneratePlan)
			users.POST("/plans/:planId/adapt", planHandler.AdaptPlan)
			users.POST("/workouts", progressionHandler.RecordWorkout)
			users.GET("/stats", progressionHandler.GetStats)
		}
	}
}

// abortWithError sends a uniform error envelope and stops the chain.
func abortWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": message})
}
