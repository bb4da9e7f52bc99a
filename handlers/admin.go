// File: handlers/admin.go
package handlers

import (
	"net/http"
	"strconv"

	activityRepo "chatbook/database/repository/activity"
	pendingRepo "chatbook/database/repository/pending"
	"chatbook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler serves the owner-facing read endpoints.
type AdminHandler struct {
	Pending  pendingRepo.Store
	Activity activityRepo.Recorder
	Logger   *zap.Logger
}

func NewAdminHandler(pending pendingRepo.Store, activity activityRepo.Recorder, logger *zap.Logger) *AdminHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{Pending: pending, Activity: activity, Logger: logger}
}

// ListPendingHandler returns every pending booking, oldest update first.
func (ah *AdminHandler) ListPendingHandler(c *gin.Context) {
	bookings, err := ah.Pending.List(c.Request.Context())
	if err != nil {
		ah.Logger.Error("Failed to list pending bookings", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to fetch pending bookings", "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"pending": bookings, "count": len(bookings)})
}

// ListActivityHandler returns the newest activity events; ?limit caps the count.
func (ah *AdminHandler) ListActivityHandler(c *gin.Context) {
	limit := activityRepo.DefaultLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			utils.JSONError(c, http.StatusBadRequest, "Invalid limit", "limit must be a positive integer")
			return
		}
		limit = n
	}
	events, err := ah.Activity.Recent(c.Request.Context(), limit)
	if err != nil {
		ah.Logger.Error("Failed to list activity", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to fetch activity", "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events, "count": len(events)})
}
