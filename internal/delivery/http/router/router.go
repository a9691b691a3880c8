// Package router registers the API routes.
package router

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"harbor/internal/delivery/http/middleware"
	"harbor/internal/delivery/http/router/handler"
	"harbor/internal/infra/gateway"
)

type RouterParams struct {
	fx.In

	AuthHandler       *handler.AuthHandler
	ProfileHandler    *handler.ProfileHandler
	CatalogHandler    *handler.CatalogHandler
	OrderHandler      *handler.OrderHandler
	ChatHandler       *handler.ChatHandler
	PortHandler       *handler.PortHandler
	StateHandler      *handler.StateHandler
	SystemHandler     *handler.SystemHandler
	SessionMiddleware *middleware.SessionMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	RouterParams
}

// NewRouter is the constructor for the Router.
func NewRouter(params RouterParams) *router {
	return &router{RouterParams: params}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", r.SystemHandler.HealthCheck)
	e.GET("/metrics", r.SystemHandler.Metrics)
	e.GET(gateway.BlobPathPrefix+"/*", r.SystemHandler.Blob)

	attach := r.SessionMiddleware.Attach
	authenticate := r.SessionMiddleware.Authenticate

	e.GET("/ports", r.PortHandler.GetPorts, attach)

	authGroup := e.Group("/auth", attach)
	{
		authGroup.POST("/signin", r.AuthHandler.SignIn)
		authGroup.GET("/register", r.AuthHandler.GetRegistration)
		authGroup.POST("/register/step", r.AuthHandler.RegisterStep)
		authGroup.POST("/register", r.AuthHandler.Register)
		authGroup.POST("/google", r.AuthHandler.GoogleSignIn)
		authGroup.POST("/signout", r.AuthHandler.SignOut)
	}

	stateGroup := e.Group("/state", attach)
	{
		stateGroup.GET("", r.StateHandler.GetState)
		stateGroup.GET("/ws", r.StateHandler.StreamState)
	}

	profileGroup := e.Group("/profile", authenticate)
	{
		profileGroup.GET("", r.ProfileHandler.GetProfile)
		profileGroup.PUT("", r.ProfileHandler.UpdateProfile)
		profileGroup.POST("/photo", r.ProfileHandler.UpdateProfilePhoto)
		profileGroup.POST("/push-token", r.ProfileHandler.RegisterPushToken)
	}

	catalogGroup := e.Group("/catalog", authenticate)
	{
		catalogGroup.GET("/categories", r.CatalogHandler.GetCategories)
		catalogGroup.GET("/goods", r.CatalogHandler.GetGoods)
		catalogGroup.POST("/goods", r.CatalogHandler.AddGood)
		catalogGroup.PUT("/goods/:id", r.CatalogHandler.UpdateGood)
		catalogGroup.DELETE("/goods/:id", r.CatalogHandler.DeleteGood)
	}

	orderGroup := e.Group("/orders", authenticate)
	{
		orderGroup.GET("", r.OrderHandler.GetOrders)
		orderGroup.PUT("/:id", r.OrderHandler.UpdateOrder)
	}

	chatGroup := e.Group("/chats", authenticate)
	{
		chatGroup.GET("", r.ChatHandler.GetChats)
		chatGroup.POST("/open", r.ChatHandler.OpenChat)
		chatGroup.DELETE("/selected", r.ChatHandler.DeselectChat)
		chatGroup.GET("/:id/messages", r.ChatHandler.GetMessages)
		chatGroup.POST("/:id/messages", r.ChatHandler.SendMessage)
		chatGroup.POST("/:id/select", r.ChatHandler.SelectChat)
	}
}
