package router

import (
	"github.com/flavian-jumba/peerly-BE/internal/ai"
	"github.com/flavian-jumba/peerly-BE/internal/config"
	"github.com/flavian-jumba/peerly-BE/internal/events"
	"github.com/flavian-jumba/peerly-BE/internal/handler"
	"github.com/flavian-jumba/peerly-BE/internal/middleware"
	"github.com/flavian-jumba/peerly-BE/internal/presence"
	"github.com/flavian-jumba/peerly-BE/internal/scheduling"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps are the shared collaborators handlers are built from.
type Deps struct {
	DB          *gorm.DB
	Presence    *presence.Tracker
	Broadcaster events.Broadcaster
	AIClient    ai.Client
}

// SetupRouter configures the gin engine and mounts the whole API surface.
func SetupRouter(cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(middleware.RequestLog(), gin.Recovery())

	jwtSecret := cfg.JWT.Secret

	api := r.Group("/api")

	authHandler := handler.NewAuthHandler(deps.DB, jwtSecret, cfg.JWT.ExpireHours, deps.Presence)
	api.POST("/register", authHandler.Register)
	api.POST("/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.Auth(jwtSecret, deps.DB))

	authed.GET("/user", handler.GetMe)
	authed.POST("/logout", authHandler.Logout)

	v1 := authed.Group("/v1")

	scheduler := scheduling.NewService(deps.DB)
	appointmentHandler := handler.NewAppointmentHandler(deps.DB, scheduler, deps.Broadcaster)
	v1.GET("/appointments", appointmentHandler.List)
	v1.POST("/appointments", appointmentHandler.Create)
	v1.GET("/appointments/:id", appointmentHandler.Show)
	v1.PUT("/appointments/:id", appointmentHandler.Update)
	v1.DELETE("/appointments/:id", appointmentHandler.Cancel)

	conversationHandler := handler.NewConversationHandler(deps.DB)
	v1.GET("/conversations", conversationHandler.List)
	v1.POST("/conversations", conversationHandler.Create)
	v1.GET("/conversations/:id", conversationHandler.Show)
	v1.DELETE("/conversations/:id", conversationHandler.Delete)
	v1.POST("/conversations/:id/mark-read", conversationHandler.MarkRead)

	messageHandler := handler.NewMessageHandler(deps.DB, deps.Broadcaster)
	v1.GET("/conversations/:id/messages", messageHandler.List)
	v1.POST("/conversations/:id/messages", messageHandler.Create)
	v1.PUT("/conversations/:id/messages/:messageID", messageHandler.Update)
	v1.DELETE("/conversations/:id/messages/:messageID", messageHandler.Delete)

	groupHandler := handler.NewGroupHandler(deps.DB, deps.Broadcaster)
	v1.GET("/groups", groupHandler.List)
	v1.POST("/groups", groupHandler.Create)
	v1.GET("/groups/:id", groupHandler.Show)
	v1.PUT("/groups/:id", groupHandler.Update)
	v1.DELETE("/groups/:id", groupHandler.Delete)
	v1.POST("/groups/:id/join", groupHandler.Join)
	v1.POST("/groups/:id/leave", groupHandler.Leave)
	v1.POST("/groups/:id/mark-read", groupHandler.MarkRead)
	v1.GET("/groups/:id/messages", groupHandler.Messages)
	v1.POST("/groups/:id/messages", groupHandler.SendMessage)
	v1.DELETE("/groups/:id/messages/:messageID", groupHandler.DeleteMessage)

	notificationHandler := handler.NewNotificationHandler(deps.DB)
	v1.GET("/notifications", notificationHandler.List)
	v1.GET("/notifications/unread-count", notificationHandler.UnreadCount)
	v1.POST("/notifications/mark-all-read", notificationHandler.MarkAllRead)
	v1.POST("/notifications/:id/mark-read", notificationHandler.MarkRead)
	v1.DELETE("/notifications/:id", notificationHandler.Delete)

	profileHandler := handler.NewProfileHandler(deps.DB, deps.Presence)
	v1.GET("/profiles", profileHandler.List)
	v1.GET("/profiles/:id", profileHandler.Show)
	v1.PUT("/profiles", profileHandler.Update)

	reportHandler := handler.NewReportHandler(deps.DB)
	v1.POST("/reports", reportHandler.Create)

	resourceHandler := handler.NewResourceHandler(deps.DB)
	v1.GET("/resources", resourceHandler.List)
	v1.GET("/resources/:id", resourceHandler.Show)

	therapistHandler := handler.NewTherapistHandler(deps.DB)
	v1.GET("/therapists", therapistHandler.List)
	v1.GET("/therapists/:id", therapistHandler.Show)

	statusHandler := handler.NewStatusHandler(deps.DB, deps.Presence)
	v1.POST("/user-status", statusHandler.Set)
	v1.POST("/heartbeat", statusHandler.Heartbeat)
	v1.GET("/user-status/:id", statusHandler.Get)
	v1.GET("/online-users", statusHandler.Online)

	aiHandler := handler.NewAIChatHandler(deps.DB, deps.AIClient)
	v1.GET("/ai-messages", aiHandler.List)
	v1.POST("/ai-messages", aiHandler.Create)
	v1.GET("/ai-messages/:id", aiHandler.Show)
	v1.DELETE("/ai-messages/:id", aiHandler.Delete)
	v1.DELETE("/ai-messages", aiHandler.Clear)

	broadcastHandler := handler.NewBroadcastHandler(events.NewAuthorizer(deps.DB))
	v1.POST("/broadcasting/auth", broadcastHandler.Auth)

	admin := v1.Group("/admin")
	admin.Use(middleware.RequireAdmin())

	adminHandler := handler.NewAdminHandler(deps.DB)
	admin.GET("/users", adminHandler.Users)
	admin.GET("/reports", reportHandler.List)
	admin.POST("/reports/:id/resolve", reportHandler.Resolve)
	admin.POST("/therapists", therapistHandler.Create)
	admin.PUT("/therapists/:id", therapistHandler.Update)
	admin.DELETE("/therapists/:id", therapistHandler.Delete)
	admin.POST("/resources", resourceHandler.Create)
	admin.PUT("/resources/:id", resourceHandler.Update)
	admin.DELETE("/resources/:id", resourceHandler.Delete)

	exportHandler := handler.NewExportHandler(deps.DB)
	admin.GET("/export/appointments.csv", exportHandler.AppointmentsCSV)
	admin.GET("/export/appointments.xlsx", exportHandler.AppointmentsXLSX)

	return r
}
