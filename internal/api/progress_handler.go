// internal/api/progress_handler.go
package api

import (
	"net/http"

	"vivafit/wellness-app/internal/service"

	"github.com/gin-gonic/gin"
)

type ProgressHandler struct {
	progressService service.ProgressService
}

func NewProgressHandler(progressService service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressService: progressService}
}

// GetDaily returns the aggregated dashboard snapshot for one day.
// ?date=YYYY-MM-DD, defaulting to today. A snapshot served after a
// gateway failure carries "stale": true.
func (h *ProgressHandler) GetDaily(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	date, ok := parseDateOrToday(c.Query("date"))
	if !ok {
		abortWithError(c, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD.")
		return
	}

	snapshot, err := h.progressService.DailySnapshot(c.Request.Context(), userID, date)
	if err != nil {
		mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}
