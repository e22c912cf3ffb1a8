package api

import (
	"errors"
	"net/http"

	"stridepath/running-app/internal/domain"
	"stridepath/running-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProgressionHandler exposes workout completion and stats.
type ProgressionHandler struct {
	progressionService service.ProgressionService
}

func NewProgressionHandler(progressionService service.ProgressionService) *ProgressionHandler {
	return &ProgressionHandler{progressionService: progressionService}
}

// recordWorkoutRequest is the completion payload.
type recordWorkoutRequest struct {
	Type        string  `json:"type" binding:"required"`
	DistanceKm  float64 `json:"distanceKm"`
	DurationMin float64 `json:"durationMin"`
}

// RecordWorkout handles POST /api/v1/users/:userId/workouts.
func (h *ProgressionHandler) RecordWorkout(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID format.")
		return
	}

	var req recordWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid workout payload: "+err.Error())
		return
	}

	workout := &domain.CompletedWorkout{
		Type:        domain.WorkoutType(req.Type),
		DistanceKm:  req.DistanceKm,
		DurationMin: req.DurationMin,
	}

	result, err := h.progressionService.RecordWorkoutCompletion(c.Request.Context(), userID, workout)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidWorkout):
			abortWithError(c, http.StatusBadRequest, "Workout input is invalid.")
		case errors.Is(err, service.ErrUserNotFound):
			abortWithError(c, http.StatusNotFound, "User not found.")
		case errors.Is(err, service.ErrProgressConflict):
			abortWithError(c, http.StatusConflict, "Concurrent update, please retry.")
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to record workout.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "result": result})
}

// GetStats handles GET /api/v1/users/:userId/stats.
func (h *ProgressionHandler) GetStats(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID format.")
		return
	}

	stats, err := h.progressionService.GetProgressionStats(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProgressNotFound), errors.Is(err, service.ErrPhaseNotFound):
			abortWithError(c, http.StatusNotFound, "Progress not found.")
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to load stats.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "stats": stats})
}
