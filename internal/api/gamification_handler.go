// internal/api/gamification_handler.go
package api

import (
	"net/http"
	"strconv"

	"vivafit/wellness-app/internal/domain"
	"vivafit/wellness-app/internal/service"

	"github.com/gin-gonic/gin"
)

type GamificationHandler struct {
	achievementService service.AchievementService
	levelService       service.LevelService
}

func NewGamificationHandler(achievementService service.AchievementService, levelService service.LevelService) *GamificationHandler {
	return &GamificationHandler{
		achievementService: achievementService,
		levelService:       levelService,
	}
}

// EvaluateAchievements runs the unlock rules against the user's stored
// stats and returns only the achievements unlocked by this call.
func (h *GamificationHandler) EvaluateAchievements(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	unlocked, err := h.achievementService.EvaluateCurrent(c.Request.Context(), userID)
	if err != nil {
		mapServiceError(c, err)
		return
	}
	if unlocked == nil {
		// Return an empty JSON array, not null.
		unlocked = []domain.UnlockedAchievement{}
	}
	c.JSON(http.StatusOK, unlocked)
}

// ListAchievements returns the catalog annotated with unlock status.
func (h *GamificationHandler) ListAchievements(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	list, err := h.achievementService.ListWithStatus(c.Request.Context(), userID)
	if err != nil {
		mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetLevel resolves the user's current level. An explicit ?points=N
// query resolves an arbitrary total instead (used by previews).
func (h *GamificationHandler) GetLevel(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	if raw := c.Query("points"); raw != "" {
		points, err := strconv.Atoi(raw)
		if err != nil || points < 0 {
			abortWithError(c, http.StatusBadRequest, "Invalid points value.")
			return
		}
		progress, err := h.levelService.ResolveLevel(c.Request.Context(), points)
		if err != nil {
			mapServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, progress)
		return
	}

	progress, err := h.levelService.ResolveForUser(c.Request.Context(), userID)
	if err != nil {
		mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}
