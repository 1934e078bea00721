package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"consultly/middleware"
	"consultly/services/session"
	"consultly/utils"
)

// SessionHandler exposes the room lifecycle commands. Create/start/end are
// provider-only; the role check is enforced again in the service against the
// appointment's assigned provider.
type SessionHandler struct {
	Service session.SessionService
}

func NewSessionHandler(svc session.SessionService) *SessionHandler {
	return &SessionHandler{Service: svc}
}

func (h *SessionHandler) CreateRoom(c *gin.Context) {
	room, err := h.Service.CreateRoom(c.Request.Context(), c.Param("appointmentID"), middleware.ActorID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, room)
}

func (h *SessionHandler) Start(c *gin.Context) {
	room, err := h.Service.Start(c.Request.Context(), c.Param("appointmentID"), middleware.ActorID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

func (h *SessionHandler) End(c *gin.Context) {
	room, err := h.Service.End(c.Request.Context(), c.Param("appointmentID"), middleware.ActorID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

func (h *SessionHandler) GetRoom(c *gin.Context) {
	room, err := h.Service.GetRoom(c.Request.Context(), c.Param("roomID"), middleware.ActorID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}
