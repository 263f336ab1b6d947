// Package server wires handlers and middleware into the HTTP router.
package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"chatdesk/api/handlers"
	"chatdesk/api/middleware"
	"chatdesk/api/notify"
	"chatdesk/api/session"
	"chatdesk/api/store"
	"chatdesk/api/utils"
)

// Deps are the collaborators the router needs. Events and EventStats may be
// nil when ClickHouse is not configured.
type Deps struct {
	Stores          *store.Stores
	Gateway         handlers.Completer
	Events          handlers.EventRecorder
	EventStats      handlers.EventQuerier
	Notifier        notify.LeadNotifier
	Tokens          *utils.TokenManager
	Publisher       session.Publisher
	Broker          *session.Broker
	FrontendOrigin  string
	PublicBaseURL   string
	WidgetScriptURL string
	SecureCookies   bool
}

func NewRouter(d Deps) (*gin.Engine, error) {
	if err := handlers.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("failed to register request validators: %w", err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORSMiddleware(d.FrontendOrigin))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	widgetHandlers := handlers.NewWidgetHandlers(d.Stores, d.Gateway, d.Events, d.Notifier)
	authHandlers := handlers.NewAuthHandlers(d.Stores.Profiles, d.Tokens, d.Publisher, d.Broker)
	authHandlers.SecureCookie = d.SecureCookies
	businessHandlers := handlers.NewBusinessHandlers(d.Stores, d.PublicBaseURL, d.WidgetScriptURL)
	knowledgeHandlers := handlers.NewKnowledgeHandlers(d.Stores)
	conversationHandlers := handlers.NewConversationHandlers(d.Stores)
	statsHandlers := handlers.NewStatsHandlers(d.Stores, d.EventStats)

	api := r.Group("/api")
	{
		widget := api.Group("/widget")
		{
			widget.POST("/chat", widgetHandlers.Chat)
			widget.POST("/capture-lead", widgetHandlers.CaptureLead)
			widget.GET("/businesses/:id", widgetHandlers.Config)
			widget.POST("/track", widgetHandlers.Track)
		}

		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandlers.Signup)
			auth.POST("/login", authHandlers.Login)
			auth.POST("/logout", authHandlers.Logout)
		}

		protected := api.Group("/")
		protected.Use(middleware.AuthRequired(d.Tokens))
		{
			protected.POST("/auth/refresh", authHandlers.Refresh)
			protected.GET("/auth/me", authHandlers.Me)
			protected.GET("/auth/events", authHandlers.Events)

			protected.GET("/overview", businessHandlers.Overview)
			protected.GET("/knowledge/template", knowledgeHandlers.Template)

			businesses := protected.Group("/businesses")
			{
				businesses.POST("", businessHandlers.Create)
				businesses.GET("", businessHandlers.List)
				businesses.GET("/:id", businessHandlers.Get)
				businesses.PUT("/:id", businessHandlers.Update)
				businesses.GET("/:id/share", businessHandlers.Share)
				businesses.GET("/:id/qr.png", businessHandlers.QRCode)

				businesses.GET("/:id/knowledge", knowledgeHandlers.List)
				businesses.POST("/:id/knowledge", knowledgeHandlers.Create)
				businesses.POST("/:id/knowledge/import", knowledgeHandlers.Import)
				businesses.GET("/:id/knowledge/export", knowledgeHandlers.Export)
				businesses.PUT("/:id/knowledge/:itemId", knowledgeHandlers.Update)
				businesses.DELETE("/:id/knowledge/:itemId", knowledgeHandlers.Delete)

				businesses.GET("/:id/conversations", conversationHandlers.List)

				stats := businesses.Group("/:id/stats")
				{
					stats.GET("/event-counts", statsHandlers.EventCounts)
					stats.GET("/unique-visitors", statsHandlers.UniqueVisitors)
					stats.GET("/response-time", statsHandlers.ResponseTime)
					stats.GET("/top-questions", statsHandlers.TopQuestions)
				}
			}

			conversations := protected.Group("/conversations")
			{
				conversations.GET("/:id/messages", conversationHandlers.Messages)
				conversations.PATCH("/:id", conversationHandlers.UpdateStatus)
			}
		}
	}

	return r, nil
}
