package handlers

import (
	"github.com/Juadebfm/ecorewards-deploy/internal/auth"
	"github.com/Juadebfm/ecorewards-deploy/internal/middleware"
	"github.com/gin-gonic/gin"
)

// Deps bundles everything the API surface needs
type Deps struct {
	JWT         *auth.JWTService
	Auth        *AuthHandler
	Claims      *ClaimHandler
	QRCodes     *QRCodeHandler
	Rewards     *RewardHandler
	Partners    *PartnerHandler
	Points      *PointsHandler
	Leaderboard *LeaderboardHandler
}

// RegisterRoutes wires the API routes and their auth requirements
func RegisterRoutes(r *gin.Engine, deps Deps) {
	api := r.Group("/api")

	api.POST("/auth/login", deps.Auth.Login)

	api.GET("/rewards", deps.Rewards.List)
	api.GET("/qr/:code", deps.QRCodes.Validate)
	api.GET("/qr/:code/image", deps.QRCodes.Image)
	api.GET("/users/:id/points", deps.Points.GetUserPoints)
	api.GET("/users/:id/claims", deps.Points.GetUserClaims)
	api.GET("/leaderboard", deps.Leaderboard.Get)
	api.GET("/partners/:id", deps.Partners.Get)

	authed := api.Group("")
	authed.Use(middleware.RequireAuth(deps.JWT))
	{
		authed.POST("/qr/:code/scan", deps.QRCodes.Scan)
		authed.POST("/qr/:code/claim", deps.Claims.ClaimReward)
		authed.POST("/activities", deps.Points.LogActivity)
	}

	partners := api.Group("")
	partners.Use(middleware.RequireAuth(deps.JWT), middleware.RequirePartnerOrAdmin())
	{
		partners.POST("/rewards", deps.Rewards.Create)
		partners.PUT("/rewards/:id/active", deps.Rewards.SetActive)
		partners.POST("/qr", deps.QRCodes.Create)
		partners.PUT("/qr/:code/active", deps.QRCodes.SetActive)
		partners.GET("/partners/:id/qr", deps.QRCodes.ListByPartner)
	}

	admin := api.Group("")
	admin.Use(middleware.RequireAuth(deps.JWT), middleware.RequireAdmin())
	{
		admin.POST("/users", deps.Auth.CreateUser)
		admin.POST("/partners", deps.Partners.Create)
		admin.PUT("/partners/:id/verification", deps.Partners.SetVerification)
		admin.GET("/claims/:id", deps.Claims.GetClaim)
		admin.POST("/claims/:id/reverse", deps.Claims.ReverseClaim)
		admin.POST("/leaderboard/recompute", deps.Leaderboard.Recompute)
		admin.POST("/admin/reconcile", deps.Leaderboard.Reconcile)
	}
}
