// internal/app/router.go
package app

import (
	assocHandler "estatedesk-service/internal/handlers/association"
	commissionHandler "estatedesk-service/internal/handlers/commission"
	inventoryHandler "estatedesk-service/internal/handlers/inventory"
	otpHandler "estatedesk-service/internal/handlers/otp"
	pricingHandler "estatedesk-service/internal/handlers/pricing"
	"estatedesk-service/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers struct {
	AssociationHandler *assocHandler.AssociationHandler
	OTPHandler         *otpHandler.OTPHandler
	InventoryHandler   *inventoryHandler.InventoryHandler
	PricingHandler     *pricingHandler.PricingHandler
	CommissionHandler  *commissionHandler.CommissionHandler
	AuthMiddleware     *middleware.AuthMiddleware
}

func SetupRouter(r *gin.Engine, logger *zap.Logger, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": "1.0.0"})
	})

	// ==================== Associations ====================
	associations := api.Group("/associations")
	associations.Use(h.AuthMiddleware.Auth())
	{
		// Entry points
		associations.POST("/visit", h.AssociationHandler.CreateVisit)
		associations.POST("/pretag", h.AssociationHandler.Pretag)
		associations.POST("/schedule", h.AssociationHandler.ScheduleVisit)
		associations.POST("/revisit", h.AssociationHandler.Revisit)
		associations.POST("/queue", h.AssociationHandler.QueueVisit)

		// Pipeline movement
		associations.POST("/:id/promote", h.AssociationHandler.PromoteQueued)
		associations.PUT("/:id/status", h.AssociationHandler.UpdateStatus)
		associations.PUT("/:id/override-status", h.AssociationHandler.OverrideStatus)

		// Retrieval
		associations.GET("", h.AssociationHandler.ListAssociations)
		associations.GET("/:id", h.AssociationHandler.GetAssociation)
	}

	// ==================== OTP Verification ====================
	otp := api.Group("/otp")
	otp.Use(h.AuthMiddleware.Auth())
	{
		otp.POST("/send", h.OTPHandler.Send)
		otp.POST("/verify", h.OTPHandler.Verify)
	}

	// ==================== Unit Inventory ====================
	api.GET("/projects/:id/units", h.AuthMiddleware.Auth(), h.InventoryHandler.ListUnits)

	units := api.Group("/units")
	units.Use(h.AuthMiddleware.Auth())
	{
		units.POST("/:id/block", h.InventoryHandler.BlockUnit)
		units.POST("/:id/unblock", h.InventoryHandler.UnblockUnit)
	}

	api.POST("/bookings", h.AuthMiddleware.Auth(), h.InventoryHandler.CreateBooking)

	// ==================== Pricing ====================
	api.GET("/pricing/quote", h.AuthMiddleware.Auth(), h.PricingHandler.Quote)

	// ==================== Commissions ====================
	commissions := api.Group("/commissions")
	commissions.Use(h.AuthMiddleware.Auth())
	{
		commissions.GET("", h.CommissionHandler.ListCommissions)
		commissions.PUT("/:id/approve", h.CommissionHandler.ApproveCommission)
		commissions.PUT("/:id/pay", h.CommissionHandler.PayCommission)
		commissions.POST("/bulk-approve", h.CommissionHandler.BulkApprove)
	}
}
