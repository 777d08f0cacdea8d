// internal/api/checkpoint_handler.go
package api

import (
	"net/http"
	"time"

	"vivafit/wellness-app/internal/domain"
	"vivafit/wellness-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CheckpointHandler struct {
	checkpointService service.CheckpointService
}

func NewCheckpointHandler(checkpointService service.CheckpointService) *CheckpointHandler {
	return &CheckpointHandler{checkpointService: checkpointService}
}

// --- DTOs ---

type CompleteDailyRequest struct {
	Date  string `json:"date"` // YYYY-MM-DD, defaults to today
	Notes string `json:"notes"`
}

type CompleteExerciseRequest struct {
	SetsCompleted int      `json:"setsCompleted" binding:"required"`
	RepsCompleted *int     `json:"repsCompleted"`
	WeightUsed    *float64 `json:"weightUsed"`
	Notes         *string  `json:"notes"`
}

type CompleteMealRequest struct {
	QuantityConsumed *float64 `json:"quantityConsumed"`
	CaloriesConsumed *float64 `json:"caloriesConsumed"`
	PhotoURL         *string  `json:"photoUrl"`
	Notes            *string  `json:"notes"`
}

type InitSessionRequest struct {
	PlanID      string `json:"planId" binding:"required"`
	TemplateID  string `json:"templateId" binding:"required"`
	SessionName string `json:"sessionName" binding:"required"`
	Exercises   []struct {
		ExerciseID string `json:"exerciseId" binding:"required"`
		Name       string `json:"name" binding:"required"`
		Points     int    `json:"points"`
	} `json:"exercises" binding:"required"`
}

type InitMealsRequest struct {
	PlanID string `json:"planId" binding:"required"`
	Items  []struct {
		MealItemID string `json:"mealItemId" binding:"required"`
		Name       string `json:"name" binding:"required"`
		Points     int    `json:"points"`
	} `json:"items" binding:"required"`
}

type EnsureGoalRequest struct {
	Date          string  `json:"date"`
	WaterTargetML int     `json:"waterTargetMl"`
	CalorieTarget float64 `json:"calorieTarget"`
}

type AddWaterRequest struct {
	AmountML int `json:"amountMl" binding:"required"`
}

type PhotoUploadURLRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

// parseDateOrToday accepts YYYY-MM-DD; empty means today.
func parseDateOrToday(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Now().UTC(), true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// --- Handler Methods ---

// CompleteDaily records the day as done for a plan; repeat calls on the
// same date are a single logical completion.
func (h *CheckpointHandler) CompleteDaily(c *gin.Context) {
	var req CompleteDailyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
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
	date, ok := parseDateOrToday(req.Date)
	if !ok {
		abortWithError(c, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD.")
		return
	}

	cp, err := h.checkpointService.CompleteDailyCheckpoint(c.Request.Context(), userID, planID, date, req.Notes)
	if err != nil {
		mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cp)
}

// CompleteExercise finishes one exercise checkpoint.
func (h *CheckpointHandler) CompleteExercise(c *gin.Context) {
	var req CompleteExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	checkpointID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid checkpoint ID format.")
		return
	}

	cp, err := h.checkpointService.CompleteExercise(c.Request.Context(), userID, checkpointID, service.ExerciseResult{
		SetsCompleted: req.SetsCompleted,
		RepsCompleted: req.RepsCompleted,
		WeightUsed:    req.WeightUsed,
		Notes:         req.Notes,
	})
	if err != nil {
		mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cp)
}

// CompleteMeal finishes one meal checkpoint.
func (h *CheckpointHandler) CompleteMeal(c *gin.Context) {
	var req CompleteMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	checkpointID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid checkpoint ID format.")
		return
	}

	cp, err := h.checkpointService.CompleteMealItem(c.Request.Context(), userID, checkpointID, service.MealResult{
		QuantityConsumed: req.QuantityConsumed,
		CaloriesConsumed: req.CaloriesConsumed,
		PhotoURL:         req.PhotoURL,
		Notes:            req.Notes,
	})
	if err != nil {
		mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cp)
}

// InitSession creates today's workout session and its exercise
// checkpoints as one unit.
func (h *CheckpointHandler) InitSession(c *gin.Context) {
	var req InitSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	planID, err := primitive.ObjectIDFromHex(req.PlanID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid plan ID format.")
		return
	}
	templateID, err := primitive.ObjectIDFromHex(req.TemplateID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid template ID format.")
		return
	}
	exercises := make([]domain.SessionExercise, 0, len(req.Exercises))
	for _, ex := range req.Exercises {
		exID, err := primitive.ObjectIDFromHex(ex.ExerciseID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format: "+ex.ExerciseID)
			return
		}
		exercises = append(exercises, domain.SessionExercise{ExerciseID: exID, Name: ex.Name, Points: ex.Points})
	}

	session, checkpoints, err := h.checkpointService.InitializeWorkoutSession(c.Request.Context(), userID, planID, templateID, req.SessionName, exercises)
	if err != nil {
		mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": session, "checkpoints": checkpoints})
}

// CompleteSession closes a workout session.
func (h *CheckpointHandler) CompleteSession(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	sessionID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid session ID format.")
		return
	}
	session, err := h.checkpointService.CompleteWorkoutSession(c.Request.Context(), userID, sessionID)
	if err != nil {
		mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// InitMeals creates today's meal checkpoints for a plan.
func (h *CheckpointHandler) InitMeals(c *gin.Context) {
	var req InitMealsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	planID, err := primitive.ObjectIDFromHex(req.PlanID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid plan ID format.")
		return
	}
	items := make([]domain.PlannedMealItem, 0, len(req.Items))
	for _, item := range req.Items {
		itemID, err := primitive.ObjectIDFromHex(item.MealItemID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid meal item ID format: "+item.MealItemID)
			return
		}
		items = append(items, domain.PlannedMealItem{MealItemID: itemID, Name: item.Name, Points: item.Points})
	}

	checkpoints, err := h.checkpointService.InitializeMealCheckpoints(c.Request.Context(), userID, planID, items)
	if err != nil {
		mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, checkpoints)
}

// EnsureGoal upserts the day's nutrition goal row.
func (h *CheckpointHandler) EnsureGoal(c *gin.Context) {
	var req EnsureGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	date, ok := parseDateOrToday(req.Date)
	if !ok {
		abortWithError(c, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD.")
		return
	}
	goal, err := h.checkpointService.EnsureDailyGoal(c.Request.Context(), userID, date, req.WaterTargetML, req.CalorieTarget)
	if err != nil {
		mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, goal)
}

// AddWater increments the consumed-water counter of a goal row.
func (h *CheckpointHandler) AddWater(c *gin.Context) {
	var req AddWaterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	goalID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid goal ID format.")
		return
	}
	goal, err := h.checkpointService.UpdateWaterConsumption(c.Request.Context(), userID, goalID, req.AmountML)
	if err != nil {
		mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, goal)
}

// PhotoUploadURL issues a presigned PUT URL for a meal checkpoint photo.
func (h *CheckpointHandler) PhotoUploadURL(c *gin.Context) {
	var req PhotoUploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	checkpointID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid checkpoint ID format.")
		return
	}
	resp, err := h.checkpointService.RequestMealPhotoUploadURL(c.Request.Context(), userID, checkpointID, req.ContentType)
	if err != nil {
		mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PhotoViewURL issues a presigned GET URL for a stored meal photo.
func (h *CheckpointHandler) PhotoViewURL(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	checkpointID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid checkpoint ID format.")
		return
	}
	viewURL, err := h.checkpointService.RequestMealPhotoViewURL(c.Request.Context(), userID, checkpointID)
	if err != nil {
		mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"viewUrl": viewURL})
}
