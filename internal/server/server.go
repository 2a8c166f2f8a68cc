// Package server wires services and handlers into the HTTP router.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"dompet/internal/config"
	"dompet/internal/events"
	"dompet/internal/handlers"
	"dompet/internal/middleware"
	"dompet/internal/services"
	"dompet/internal/storage"
)

// Services bundles the business services the router depends on.
type Services struct {
	Users      services.UserServicer
	Accounts   services.AccountServicer
	Categories services.CategoryServicer
	Ledger     services.LedgerServicer
	Goals      services.GoalServicer
	Receipts   services.ReceiptServicer
	Audit      services.AuditServicer
}

// NewServices builds every service on top of db.
func NewServices(db *gorm.DB, store storage.ObjectStore, publisher events.Publisher, cfg *config.Config) Services {
	loc := cfg.Timezone
	if loc == nil {
		loc = time.UTC
	}
	return Services{
		Users:      services.NewUserService(db),
		Accounts:   services.NewAccountService(db),
		Categories: services.NewCategoryService(db),
		Ledger:     services.NewLedgerService(db, loc),
		Goals:      services.NewGoalService(db),
		Receipts:   services.NewReceiptService(db, store, cfg.MaxUploadBytes),
		Audit:      services.NewAuditService(db, publisher),
	}
}

// NewRouter registers middleware and every API route. Receipts are served
// from /uploads when store is a *storage.LocalStore.
func NewRouter(cfg *config.Config, svc Services, store storage.ObjectStore) *gin.Engine {
	loc := cfg.Timezone
	if loc == nil {
		loc = time.UTC
	}

	authHandler := handlers.NewAuthHandler(svc.Users, svc.Audit)
	profileHandler := handlers.NewProfileHandler(svc.Accounts, svc.Audit)
	categoryHandler := handlers.NewCategoryHandler(svc.Categories, svc.Audit)
	transactionHandler := handlers.NewTransactionHandler(svc.Ledger, svc.Audit, loc)
	receiptHandler := handlers.NewReceiptHandler(svc.Receipts, svc.Audit, cfg.MaxUploadBytes)
	goalHandler := handlers.NewGoalHandler(svc.Goals, svc.Audit, loc)
	dashboardHandler := handlers.NewDashboardHandler(svc.Accounts, svc.Ledger, svc.Goals, loc)

	router := gin.New()
	if cfg.MaxUploadBytes > 0 {
		router.MaxMultipartMemory = cfg.MaxUploadBytes
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS(cfg.CORSAllowedOrigin))
	router.NoRoute(middleware.NotFound())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if local, ok := store.(*storage.LocalStore); ok {
		router.Static("/uploads", local.Root())
	}

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.POST("/auth/logout", authHandler.Logout)

	protected.GET("/profile", profileHandler.GetProfile)
	protected.PUT("/profile", profileHandler.UpdateProfile)

	transactions := protected.Group("/transaction")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.ListTransactions)
	transactions.POST("/file", receiptHandler.UploadReceipt)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	categories := protected.Group("/categories")
	categories.GET("", categoryHandler.ListCategories)
	categories.POST("", categoryHandler.CreateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)
	protected.GET("/goal-item-categories", categoryHandler.ListGoalItemCategories)

	goals := protected.Group("/goal")
	goals.GET("", goalHandler.GetLatestGoal)
	goals.POST("", goalHandler.CreateGoal)
	goals.POST("/savings", goalHandler.AddDeposit)
	goals.GET("/:id", goalHandler.GetGoal)
	goals.PUT("/:id", goalHandler.ReplaceGoal)
	goals.DELETE("/:id/items/:itemId", goalHandler.DeleteGoalItem)
	goals.GET("/:id/progress", goalHandler.GetProgress)
	goals.GET("/:id/savings", goalHandler.ListDeposits)

	protected.GET("/dashboard", dashboardHandler.GetDashboard)

	return router
}
