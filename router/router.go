package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/freelance-market/controllers"
	"github.com/yeremiapane/freelance-market/middlewares"
	"github.com/yeremiapane/freelance-market/models"
	"github.com/yeremiapane/freelance-market/services"
)

// SetupRouter merangkai services dan controllers lalu memetakan route.
// gateway boleh nil (test berjalan tanpa Midtrans).
func SetupRouter(db *gorm.DB, gateway *services.MidtransService) *gin.Engine {
	r := gin.Default()

	// Apply security middlewares
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	// Inisialisasi services
	notifier := services.NewNotificationService(db)
	paymentSvc := services.NewPaymentService(db, gateway, notifier)
	projectSvc := services.NewProjectService(db, notifier, paymentSvc)
	bidSvc := services.NewBidService(db, notifier)
	moderation := services.NewModerationCache()

	// Inisialisasi controllers
	userCtrl := controllers.NewUserController(db)
	projectCtrl := controllers.NewProjectController(db, projectSvc, moderation)
	bidCtrl := controllers.NewBidController(db, bidSvc, projectSvc, moderation)
	notifCtrl := controllers.NewNotificationController(db, notifier)
	moderationCtrl := controllers.NewModerationController(moderation)
	paymentCtrl := controllers.NewPaymentController(db, paymentSvc)
	chatCtrl := controllers.NewChatController(db)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Rate limiter untuk login/register
	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	// Webhook Midtrans; diverifikasi lewat signature, bukan JWT
	r.POST("/payments/callback", paymentCtrl.PaymentCallback)

	// Endpoint WebSocket event (token lewat query string)
	ws := r.Group("/events")
	ws.Use(middlewares.WebSocketAuthMiddleware())
	{
		ws.GET("/ws", controllers.EventsHandler)
	}

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/")
	auth.Use(middlewares.AuthMiddleware())
	{
		auth.GET("/profile", userCtrl.GetProfile)
		auth.POST("/logout", userCtrl.Logout)

		// Projects
		auth.GET("/projects", projectCtrl.GetAllProjects)
		auth.GET("/projects/:project_id", projectCtrl.GetProjectByID)
		auth.GET("/projects/:project_id/reviews", projectCtrl.GetProjectReviews)

		clientOnly := auth.Group("/")
		clientOnly.Use(middlewares.RequireRole(models.RoleClient))
		{
			clientOnly.POST("/projects", projectCtrl.CreateProject)
			clientOnly.POST("/projects/:project_id/publish", projectCtrl.PublishProject)
			clientOnly.POST("/projects/:project_id/cancel", projectCtrl.CancelProject)
			clientOnly.POST("/projects/:project_id/complete", projectCtrl.CompleteProject)
			clientOnly.POST("/projects/:project_id/bids/:bid_id/accept", bidCtrl.AcceptBid)
			clientOnly.POST("/projects/:project_id/bids/:bid_id/reject", bidCtrl.RejectBid)
			clientOnly.POST("/projects/:project_id/payments", paymentCtrl.CreateEscrow)
		}

		// Bids
		auth.GET("/projects/:project_id/bids", bidCtrl.GetProjectBids)

		freelancerOnly := auth.Group("/")
		freelancerOnly.Use(middlewares.RequireRole(models.RoleFreelancer))
		{
			freelancerOnly.POST("/projects/:project_id/bids", bidCtrl.SubmitBid)
			freelancerOnly.POST("/bids/:bid_id/withdraw", bidCtrl.WithdrawBid)
			freelancerOnly.GET("/bids/my", bidCtrl.GetMyBids)
		}

		// Chat project
		auth.GET("/projects/:project_id/chat", chatCtrl.GetProjectChat)
		auth.POST("/projects/:project_id/chat", chatCtrl.PostProjectChat)

		// Notifications
		auth.GET("/notifications", notifCtrl.GetMyNotifications)
		auth.PATCH("/notifications/:notif_id/read", notifCtrl.MarkNotificationRead)

		// Moderation
		auth.POST("/moderation/check", moderationCtrl.CheckText)

		// Payments
		auth.GET("/payments/:payment_id", paymentCtrl.GetPayment)
	}

	return r
}
