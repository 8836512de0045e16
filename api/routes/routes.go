package routes

import (
	"tourbooking/api/handler"
	"tourbooking/api/middleware"
	"tourbooking/internal/entity"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type Router struct {
	Echo          *echo.Echo
	Auth          *handler.AuthHandler
	Authenticator middleware.Authenticator
	Limiter       middleware.Limiter
	Logger        logrus.FieldLogger
}

func NewRouter(
	e *echo.Echo,
	authHandler *handler.AuthHandler,
	authenticator middleware.Authenticator,
	limiter middleware.Limiter,
	logger logrus.FieldLogger,
) *Router {
	return &Router{
		Echo:          e,
		Auth:          authHandler,
		Authenticator: authenticator,
		Limiter:       limiter,
		Logger:        logger,
	}
}

func (r *Router) RegisterRoutes() {
	e := r.Echo

	e.GET("/healthz", handler.Health)

	api := e.Group("/api")
	if r.Limiter != nil {
		api.Use(middleware.Throttle(r.Limiter, r.Logger))
	}

	protect := middleware.Protect(r.Authenticator)
	authenticated := middleware.Chain(protect)
	adminOnly := middleware.Chain(protect, middleware.RestrictTo(entity.RoleAdmin))

	users := api.Group("/v1/users")
	users.POST("/signup", r.Auth.Signup)
	users.POST("/login", r.Auth.Login)
	users.POST("/forgotPassword", r.Auth.ForgotPassword)
	users.PATCH("/resetPassword/:token", r.Auth.ResetPassword)

	users.PATCH("/updateMyPassword", r.Auth.UpdateMyPassword, authenticated)
	users.GET("/me", r.Auth.Me, authenticated)
	users.GET("/me/activity", r.Auth.MyActivity, authenticated)
	users.PATCH("/updateMe", r.Auth.UpdateMe, authenticated)
	users.DELETE("/deleteMe", r.Auth.DeleteMe, authenticated)

	users.GET("", r.Auth.ListUsers, adminOnly)
	users.GET("/", r.Auth.ListUsers, adminOnly)
	users.GET("/:id", r.Auth.GetUser, adminOnly)
}
