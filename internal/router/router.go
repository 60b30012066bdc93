package router

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/ikkim/hwawon-backend/config"
	"github.com/ikkim/hwawon-backend/internal/app/controller"
	"github.com/ikkim/hwawon-backend/internal/middleware"
)

type Router struct {
	productController      *controller.ProductController
	storeController        *controller.StoreController
	orderController        *controller.OrderController
	paymentController      *controller.PaymentController
	couponController       *controller.CouponController
	referralController     *controller.ReferralController
	withdrawalController   *controller.WithdrawalController
	memberController       *controller.MemberController
	ledgerStreamController *controller.LedgerStreamController
	adminController        *controller.AdminController
	adminMiddleware        *middleware.AdminMiddleware
	webhookMiddleware      *middleware.WebhookMiddleware
	config                 *config.Config
}

func NewRouter(
	productController *controller.ProductController,
	storeController *controller.StoreController,
	orderController *controller.OrderController,
	paymentController *controller.PaymentController,
	couponController *controller.CouponController,
	referralController *controller.ReferralController,
	withdrawalController *controller.WithdrawalController,
	memberController *controller.MemberController,
	ledgerStreamController *controller.LedgerStreamController,
	adminController *controller.AdminController,
	adminMiddleware *middleware.AdminMiddleware,
	webhookMiddleware *middleware.WebhookMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		productController:      productController,
		storeController:        storeController,
		orderController:        orderController,
		paymentController:      paymentController,
		couponController:       couponController,
		referralController:     referralController,
		withdrawalController:   withdrawalController,
		memberController:       memberController,
		ledgerStreamController: ledgerStreamController,
		adminController:        adminController,
		adminMiddleware:        adminMiddleware,
		webhookMiddleware:      webhookMiddleware,
		config:                 cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))
	// WebSocket 업그레이드는 압축하지 않는다
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/api/v1/admin/ws"})))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "HWAWON API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		products := v1.Group("/products")
		{
			products.GET("", r.productController.GetProducts)
			products.GET("/:id", r.productController.GetProductByID)
		}

		stores := v1.Group("/stores")
		{
			stores.GET("/match", r.storeController.MatchStores)
			stores.GET("/areas", r.storeController.GetAreas)
		}

		orders := v1.Group("/orders")
		{
			orders.POST("", r.orderController.CreateOrder)
			orders.POST("/validate", r.orderController.ValidateOrder)
			orders.GET("/:number", r.orderController.GetOrder)
		}

		payments := v1.Group("/payments")
		{
			payments.POST("/confirm", r.webhookMiddleware.Verify(), r.paymentController.ConfirmPayment)
			payments.POST("/kakao/ready", r.paymentController.KakaoReady)
			payments.GET("/kakao/success", r.paymentController.KakaoSuccess)
			payments.GET("/kakao/fail", r.paymentController.KakaoFail)
			payments.GET("/kakao/cancel", r.paymentController.KakaoFail)
		}

		v1.GET("/coupons/available", r.couponController.GetAvailable)

		referrals := v1.Group("/referrals")
		{
			referrals.GET("/stats", r.referralController.GetStats)
			referrals.GET("/history", r.referralController.GetHistory)
		}

		withdraw := v1.Group("/withdraw")
		{
			withdraw.GET("", r.withdrawalController.GetSummary)
			withdraw.POST("", r.withdrawalController.RequestWithdrawal)
		}

		members := v1.Group("/members")
		{
			members.POST("", r.memberController.Register)
			members.GET("/:phone", r.memberController.GetMember)
		}

		admin := v1.Group("/admin")
		admin.Use(r.adminMiddleware.Authenticate())
		{
			admin.GET("/withdrawals", r.adminController.ListWithdrawals)
			admin.GET("/withdrawals/export", r.adminController.ExportWithdrawals)
			admin.GET("/ws/ledger", r.ledgerStreamController.Stream)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, X-Admin-Key, X-Payment-Signature, X-Request-ID, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
