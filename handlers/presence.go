package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"consultly/middleware"
	"consultly/services/presence"
	"consultly/utils"
)

// PresenceHandler exposes the presence heartbeat and the SSE presence stream.
type PresenceHandler struct {
	Service presence.PresenceService
}

func NewPresenceHandler(svc presence.PresenceService) *PresenceHandler {
	return &PresenceHandler{Service: svc}
}

// Update is the heartbeat endpoint: clients post {"online": true} on connect
// and periodically after, {"online": false} on disconnect.
func (h *PresenceHandler) Update(c *gin.Context) {
	var input struct {
		Online *bool `json:"online" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	roomID := c.Param("roomID")
	actorID := middleware.ActorID(c)

	var err error
	if *input.Online {
		err = h.Service.SetOnline(c.Request.Context(), roomID, actorID)
	} else {
		err = h.Service.SetOffline(c.Request.Context(), roomID, actorID)
	}
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Stream serves the other participant's presence over SSE.
func (h *PresenceHandler) Stream(c *gin.Context) {
	sub, err := h.Service.Subscribe(c.Request.Context(), c.Param("roomID"), middleware.ActorID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	defer sub.Cancel()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case rec, ok := <-sub.C():
			if !ok {
				return false
			}
			c.SSEvent("presence", rec)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
