package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"consultly/handlers"
	"consultly/middleware"
)

// HandlerBundle collects the handlers the route groups wire up.
type HandlerBundle struct {
	Booking  *handlers.BookingHandler
	Session  *handlers.SessionHandler
	Chat     *handlers.ChatHandler
	Presence *handlers.PresenceHandler
	Device   *handlers.DeviceHandler
}

// SetupRoutes configures CORS and registers all endpoint groups.
func SetupRoutes(r *gin.Engine, hb *HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterBookingRoutes(r, hb)
	RegisterSessionRoutes(r, hb)
	RegisterRoomRoutes(r, hb)
	RegisterDeviceRoutes(r, hb)
}

// RegisterBookingRoutes registers availability and booking endpoints,
// consumed by the scheduling UI.
func RegisterBookingRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/booking")
	api.Use(middleware.AuthMiddleware())
	{
		api.GET("/availability", hb.Booking.Availability)
		api.POST("", hb.Booking.Book)
		api.GET("", hb.Booking.List)
		api.GET("/:appointmentID", hb.Booking.Get)
		api.POST("/:appointmentID/cancel", hb.Booking.Cancel)
	}
}

// RegisterSessionRoutes registers the room lifecycle commands, consumed by
// the provider-side UI only.
func RegisterSessionRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/sessions")
	api.Use(middleware.AuthMiddleware(), middleware.RequireRole("provider"))
	{
		api.POST("/:appointmentID/room", hb.Session.CreateRoom)
		api.POST("/:appointmentID/start", hb.Session.Start)
		api.POST("/:appointmentID/end", hb.Session.End)
	}
}

// RegisterRoomRoutes registers the message and presence surfaces, consumed by
// both participants' chat UIs.
func RegisterRoomRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/rooms")
	api.Use(middleware.AuthMiddleware())
	{
		api.GET("/:roomID", hb.Session.GetRoom)
		api.POST("/:roomID/messages", hb.Chat.Publish)
		api.GET("/:roomID/messages/stream", hb.Chat.Stream)
		api.POST("/:roomID/presence", hb.Presence.Update)
		api.GET("/:roomID/presence/stream", hb.Presence.Stream)
	}
}

// RegisterDeviceRoutes registers push token registration.
func RegisterDeviceRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/devices")
	api.Use(middleware.AuthMiddleware())
	{
		api.POST("", hb.Device.Register)
		api.DELETE("", hb.Device.Remove)
	}
}
