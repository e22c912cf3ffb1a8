package api

import (
	"errors"
	"net/http"

	"stridepath/running-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanHandler exposes plan generation and adaptation.
type PlanHandler struct {
	planService service.PlanService
}

func NewPlanHandler(planService service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// GeneratePlan handles POST /api/v1/users/:userId/plans.
func (h *PlanHandler) GeneratePlan(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID format.")
		return
	}

	result, err := h.planService.GenerateAdaptivePlan(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			abortWithError(c, http.StatusNotFound, "User not found.")
		case errors.Is(err, service.ErrPhaseCatalogEmpty), errors.Is(err, service.ErrNoTemplates):
			abortWithError(c, http.StatusInternalServerError, "Reference data unavailable.")
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to generate plan.")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"plan":       result.Plan,
		"assessment": result.Assessment,
		"warnings":   result.Warnings,
	})
}

// AdaptPlan handles POST /api/v1/users/:userId/plans/:planId/adapt.
func (h *PlanHandler) AdaptPlan(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID format.")
		return
	}
	planID, err := primitive.ObjectIDFromHex(c.Param("planId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid plan ID format.")
		return
	}

	result, err := h.planService.AdaptExistingPlan(c.Request.Context(), userID, planID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPlanNotFound), errors.Is(err, service.ErrProgressNotFound):
			abortWithError(c, http.StatusNotFound, "Plan or progress not found.")
		case errors.Is(err, service.ErrPlanAccessDenied):
			abortWithError(c, http.StatusForbidden, "Plan belongs to another user.")
		case errors.Is(err, service.ErrProgressConflict):
			abortWithError(c, http.StatusConflict, "Concurrent update, please retry.")
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to adapt plan.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"plan":        result.Plan,
		"adaptations": result.Adaptations,
	})
}
