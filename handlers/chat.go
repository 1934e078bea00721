package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"consultly/middleware"
	"consultly/services/booking"
	"consultly/services/chat"
	"consultly/utils"
)

// ChatHandler exposes publish and the SSE message stream for a room.
type ChatHandler struct {
	Chat    chat.ChatService
	Booking booking.BookingService
}

func NewChatHandler(chatSvc chat.ChatService, bookingSvc booking.BookingService) *ChatHandler {
	return &ChatHandler{Chat: chatSvc, Booking: bookingSvc}
}

// Publish appends one message from the authenticated participant.
func (h *ChatHandler) Publish(c *gin.Context) {
	var input struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	msg, err := h.Chat.Publish(c.Request.Context(), c.Param("roomID"), middleware.ActorID(c), input.Content)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// Stream serves the room's message feed over SSE: full backlog first, then
// live messages. The subscription is released when the client disconnects.
func (h *ChatHandler) Stream(c *gin.Context) {
	roomID := c.Param("roomID")

	// Only the two assigned participants may attach to the stream.
	if _, err := h.Booking.Get(c.Request.Context(), roomID, middleware.ActorID(c)); err != nil {
		utils.RespondError(c, err)
		return
	}

	sub, err := h.Chat.Subscribe(c.Request.Context(), roomID)
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
		case msg, ok := <-sub.C():
			if !ok {
				return false
			}
			c.SSEvent("message", msg)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
