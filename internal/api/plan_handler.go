// internal/api/plan_handler.go
package api

import (
	"errors"
	"net/http"
	"time"

	"vivafit/wellness-app/internal/domain"
	"vivafit/wellness-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PlanHandler struct {
	planService service.PlanService
}

func NewPlanHandler(planService service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// --- DTOs ---

type CreatePlanRequest struct {
	PlanType   string `json:"planType" binding:"required"`
	TemplateID string `json:"templateId" binding:"required"`
	Title      string `json:"title" binding:"required"`
	TargetDays int    `json:"targetDays"`
}

type PlanResponse struct {
	ID              string    `json:"id"`
	PlanType        string    `json:"planType"`
	TemplateID      string    `json:"templateId"`
	Title           string    `json:"title"`
	StartDate       time.Time `json:"startDate"`
	TargetDays      int       `json:"targetDays"`
	CurrentProgress int       `json:"currentProgress"`
	ProgressPercent float64   `json:"progressPercent"`
	IsCompleted     bool      `json:"isCompleted"`
	CreatedAt       time.Time `json:"createdAt"`
}

func mapPlanToResponse(plan *domain.UserPlan) PlanResponse {
	return PlanResponse{
		ID:              plan.ID.Hex(),
		PlanType:        string(plan.PlanType),
		TemplateID:      plan.TemplateID.Hex(),
		Title:           plan.Title,
		StartDate:       plan.StartDate,
		TargetDays:      plan.TargetDays,
		CurrentProgress: plan.CurrentProgress,
		ProgressPercent: service.ProgressPercent(plan),
		IsCompleted:     plan.IsCompleted,
		CreatedAt:       plan.CreatedAt,
	}
}

// mapServiceError translates the service error taxonomy to HTTP codes.
func mapServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrConflict):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrGateway):
		abortWithError(c, http.StatusBadGateway, "Persistence backend unavailable.")
	default:
		abortWithError(c, http.StatusInternalServerError, "Internal server error.")
	}
}

// --- Handler Methods ---

// CreatePlan starts a new plan for the authenticated user.
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	templateID, err := primitive.ObjectIDFromHex(req.TemplateID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid template ID format.")
		return
	}

	plan, err := h.planService.CreatePlan(c.Request.Context(), userID, domain.PlanType(req.PlanType), templateID, req.Title, req.TargetDays)
	if err != nil {
		mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mapPlanToResponse(plan))
}

// GetActivePlans lists the user's plans that are still running.
func (h *PlanHandler) GetActivePlans(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	plans, err := h.planService.GetActivePlans(c.Request.Context(), userID)
	if err != nil {
		mapServiceError(c, err)
		return
	}
	responses := make([]PlanResponse, 0, len(plans))
	for i := range plans {
		responses = append(responses, mapPlanToResponse(&plans[i]))
	}
	c.JSON(http.StatusOK, responses)
}

// GetPlan returns one plan with its derived progress percent.
func (h *PlanHandler) GetPlan(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	planID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid plan ID format.")
		return
	}
	plan, err := h.planService.GetPlan(c.Request.Context(), userID, planID)
	if err != nil {
		mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapPlanToResponse(plan))
}

// DeactivatePlan soft-stops a plan; its history stays queryable.
func (h *PlanHandler) DeactivatePlan(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	planID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid plan ID format.")
		return
	}
	if err := h.planService.DeactivatePlan(c.Request.Context(), userID, planID); err != nil {
		mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deactivated"})
}

// PurgePlan deletes the plan and all dependent records.
func (h *PlanHandler) PurgePlan(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	planID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid plan ID format.")
		return
	}
	if err := h.planService.PurgePlan(c.Request.Context(), userID, planID); err != nil {
		mapServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
