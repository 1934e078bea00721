package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"consultly/middleware"
	"consultly/models"
	"consultly/services/booking"
	"consultly/utils"
)

// BookingHandler exposes availability queries and the booking lifecycle.
type BookingHandler struct {
	Service booking.BookingService
}

func NewBookingHandler(svc booking.BookingService) *BookingHandler {
	return &BookingHandler{Service: svc}
}

// Availability renders the occupancy map for one provider/day.
func (h *BookingHandler) Availability(c *gin.Context) {
	providerID := c.Query("providerId")
	date := c.Query("date")
	if providerID == "" || date == "" {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "providerId and date are required")
		return
	}

	occupancy, err := h.Service.Availability(c.Request.Context(), providerID, date)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"provider_id": providerID,
		"date":        date,
		"slots":       occupancy,
	})
}

// Book creates an appointment for the authenticated client.
func (h *BookingHandler) Book(c *gin.Context) {
	var req models.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	req.ClientID = middleware.ActorID(c)

	apt, err := h.Service.Book(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, apt)
}

func (h *BookingHandler) Get(c *gin.Context) {
	apt, err := h.Service.Get(c.Request.Context(), c.Param("appointmentID"), middleware.ActorID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, apt)
}

func (h *BookingHandler) List(c *gin.Context) {
	appointments, err := h.Service.ListForActor(c.Request.Context(), middleware.ActorID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointments": appointments})
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	err := h.Service.Cancel(c.Request.Context(), c.Param("appointmentID"), middleware.ActorID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}
