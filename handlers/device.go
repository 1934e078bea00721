package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	deviceRepo "consultly/database/repository/device"
	"consultly/middleware"
	"consultly/utils"
)

// DeviceHandler registers FCM push tokens for the authenticated user.
type DeviceHandler struct {
	Devices deviceRepo.DeviceRepository
}

func NewDeviceHandler(devices deviceRepo.DeviceRepository) *DeviceHandler {
	return &DeviceHandler{Devices: devices}
}

func (h *DeviceHandler) Register(c *gin.Context) {
	var input struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	if err := h.Devices.RegisterToken(c.Request.Context(), middleware.ActorID(c), input.Token); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "registered"})
}

// Remove drops a push token, typically on logout or when FCM reports the
// token as stale.
func (h *DeviceHandler) Remove(c *gin.Context) {
	var input struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	if err := h.Devices.RemoveToken(c.Request.Context(), middleware.ActorID(c), input.Token); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}
