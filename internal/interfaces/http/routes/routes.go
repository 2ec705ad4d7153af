package routes

import (
	"github.com/gin-gonic/gin"

	"marketplace/internal/infrastructure/auth"
	"marketplace/internal/interfaces/http/handlers"
	"marketplace/internal/interfaces/http/middleware"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth    *handlers.AuthHandler
	Phone   *handlers.PhoneHandler
	Plan    *handlers.PlanHandler
	Payment *handlers.PaymentHandler
	Webhook *handlers.WebhookHandler
}

// Register mounts all routes under /api/v1.
func Register(router *gin.Engine, h Handlers, jwtService *auth.JWTService) {
	api := router.Group("/api/v1")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.GET("/verify-email", h.Auth.VerifyEmail)
	}

	authenticated := api.Group("")
	authenticated.Use(middleware.Auth(jwtService))
	{
		authenticated.POST("/auth/resend-verification", h.Auth.ResendVerification)

		authenticated.POST("/phone/send-code", h.Phone.SendCode)
		authenticated.POST("/phone/verify", h.Phone.VerifyCode)

		authenticated.POST("/plans/:id/activate", h.Plan.Activate)
		authenticated.GET("/credentials", h.Plan.GetCredentials)

		authenticated.POST("/payments/preference", h.Payment.CreatePreference)
	}

	api.GET("/plans", h.Plan.ListPlans)

	// Provider-facing endpoints are unauthenticated: redirects come
	// from the user's browser, notifications from the provider.
	payments := api.Group("/payments")
	{
		payments.GET("/success", h.Payment.Success)
		payments.GET("/failure", h.Payment.Failure)
		payments.GET("/pending", h.Payment.Pending)
	}
	api.POST("/webhooks/mercadopago", h.Webhook.Receive)
}
