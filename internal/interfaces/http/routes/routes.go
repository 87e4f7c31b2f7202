// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/pharmacy-backend/internal/config"
	"github.com/your-org/pharmacy-backend/internal/domain/analytics"
	"github.com/your-org/pharmacy-backend/internal/domain/forecast"
	"github.com/your-org/pharmacy-backend/internal/domain/inventory"
	"github.com/your-org/pharmacy-backend/internal/domain/product"
	"github.com/your-org/pharmacy-backend/internal/domain/returns"
	"github.com/your-org/pharmacy-backend/internal/domain/sale"
	"github.com/your-org/pharmacy-backend/internal/domain/supplier"
	"github.com/your-org/pharmacy-backend/internal/domain/user"
	"github.com/your-org/pharmacy-backend/internal/interfaces/http/handlers"
	"github.com/your-org/pharmacy-backend/internal/interfaces/http/middleware"
	"github.com/your-org/pharmacy-backend/internal/pkg/export"
	"gorm.io/gorm"
)

// Services holds the domain services shared by all route groups
type Services struct {
	Users     *user.Service
	Suppliers *supplier.Service
	Products  *product.Service
	Inventory *inventory.Service
	Sales     *sale.Service
	Returns   *returns.Service
	Forecast  *forecast.Service
	Analytics *analytics.Service
	PDF       *export.PDFService
}

// NewServices wires the domain services. redisClient may be nil.
func NewServices(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, log *logrus.Logger) *Services {
	var predictor forecast.Predictor
	if gp := forecast.NewGeminiPredictor(cfg); gp != nil {
		predictor = gp
	} else {
		log.Info("No forecast API key configured, using moving-average forecasts")
	}

	var cache forecast.Cache = forecast.NoopCache{}
	if redisClient != nil && cfg.Forecast.CacheTTL > 0 {
		cache = forecast.NewRedisCache(redisClient, cfg.Forecast.CacheTTL)
	}

	// stock-changing services drop the cached forecast after each commit
	forecastService := forecast.NewService(db, predictor, cache, log, cfg.Forecast.Concurrency)

	return &Services{
		Users:     user.NewService(db, cfg),
		Suppliers: supplier.NewService(db),
		Products:  product.NewService(db, forecastService),
		Inventory: inventory.NewService(db),
		Sales:     sale.NewService(db, log, forecastService),
		Returns:   returns.NewService(db, log, forecastService),
		Forecast:  forecastService,
		Analytics: analytics.NewService(db),
		PDF:       export.NewPDFService(cfg),
	}
}

// SetupRoutes registers every API route on rg
func SetupRoutes(rg *gin.RouterGroup, svc *Services, cfg *config.Config, log *logrus.Logger) {
	SetupAuthRoutes(rg, svc, cfg, log)
	SetupUserRoutes(rg, svc, cfg, log)
	SetupSupplierRoutes(rg, svc, cfg, log)
	SetupProductRoutes(rg, svc, cfg, log)
	SetupSaleRoutes(rg, svc, cfg, log)
	SetupReturnRoutes(rg, svc, cfg, log)
	SetupReportRoutes(rg, svc, cfg, log)
}

// SetupAuthRoutes sets up authentication routes
func SetupAuthRoutes(rg *gin.RouterGroup, svc *Services, cfg *config.Config, log *logrus.Logger) {
	authHandler := handlers.NewAuthHandler(svc.Users, log)

	auth := rg.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)

		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.GET("/me", authHandler.Me)
		}
	}
}

// SetupUserRoutes sets up staff account routes
func SetupUserRoutes(rg *gin.RouterGroup, svc *Services, cfg *config.Config, log *logrus.Logger) {
	authHandler := handlers.NewAuthHandler(svc.Users, log)

	users := rg.Group("/users")
	users.Use(middleware.AuthMiddleware(cfg), middleware.RequirePermission(user.PermUsersManage))
	{
		users.GET("", authHandler.ListUsers)
		users.POST("", authHandler.CreateUser)
		users.DELETE("/:id", authHandler.DeleteUser)
	}
}

// SetupSupplierRoutes sets up supplier routes
func SetupSupplierRoutes(rg *gin.RouterGroup, svc *Services, cfg *config.Config, log *logrus.Logger) {
	supplierHandler := handlers.NewSupplierHandler(svc.Suppliers, log)

	suppliers := rg.Group("/suppliers")
	suppliers.Use(middleware.AuthMiddleware(cfg))
	{
		read := middleware.RequirePermission(user.PermSuppliersRead)
		write := middleware.RequirePermission(user.PermSuppliersWrite)

		suppliers.GET("", read, supplierHandler.GetSuppliers)
		suppliers.GET("/:id", read, supplierHandler.GetSupplier)
		suppliers.POST("", write, supplierHandler.CreateSupplier)
		suppliers.PUT("/:id", write, supplierHandler.UpdateSupplier)
		suppliers.DELETE("/:id", write, supplierHandler.DeleteSupplier)
	}
}

// SetupProductRoutes sets up catalog and batch routes
func SetupProductRoutes(rg *gin.RouterGroup, svc *Services, cfg *config.Config, log *logrus.Logger) {
	productHandler := handlers.NewProductHandler(svc.Products, svc.Inventory, log)

	products := rg.Group("/products")
	products.Use(middleware.AuthMiddleware(cfg))
	{
		read := middleware.RequirePermission(user.PermInventoryRead)
		write := middleware.RequirePermission(user.PermInventoryWrite)

		products.GET("", read, productHandler.GetProducts)
		products.GET("/categories", read, productHandler.GetCategories)
		products.GET("/:id", read, productHandler.GetProduct)
		products.GET("/:id/next-batch", read, productHandler.GetNextBatch)
		products.GET("/:id/movements", read, productHandler.GetMovements)

		products.POST("", write, productHandler.CreateProduct)
		products.PUT("/:id", write, productHandler.UpdateProduct)
		products.DELETE("/:id", write, productHandler.DeleteProduct)
		products.POST("/:id/batches", write, productHandler.Restock)
	}
}

// SetupSaleRoutes sets up point-of-sale routes
func SetupSaleRoutes(rg *gin.RouterGroup, svc *Services, cfg *config.Config, log *logrus.Logger) {
	saleHandler := handlers.NewSaleHandler(svc.Sales, log)

	sales := rg.Group("/sales")
	sales.Use(middleware.AuthMiddleware(cfg))
	{
		sales.POST("", middleware.RequirePermission(user.PermSalesCreate), saleHandler.ProcessSale)
		sales.GET("", middleware.RequirePermission(user.PermSalesRead), saleHandler.GetSales)
		sales.GET("/:id", middleware.RequirePermission(user.PermSalesRead), saleHandler.GetSale)
	}
}

// SetupReturnRoutes sets up customer return routes
func SetupReturnRoutes(rg *gin.RouterGroup, svc *Services, cfg *config.Config, log *logrus.Logger) {
	returnHandler := handlers.NewReturnHandler(svc.Returns, svc.Sales, log)

	rets := rg.Group("/returns")
	rets.Use(middleware.AuthMiddleware(cfg))
	{
		rets.POST("", middleware.RequirePermission(user.PermReturnsCreate), returnHandler.ProcessReturn)
		rets.GET("", middleware.RequirePermission(user.PermReturnsRead), returnHandler.GetReturns)
		rets.GET("/sales", middleware.RequirePermission(user.PermSalesRead), returnHandler.SearchSales)
	}
}

// SetupReportRoutes sets up forecast and analytics routes
func SetupReportRoutes(rg *gin.RouterGroup, svc *Services, cfg *config.Config, log *logrus.Logger) {
	reportHandler := handlers.NewReportHandler(svc.Forecast, svc.Analytics, svc.PDF, log)

	reports := rg.Group("/reports")
	reports.Use(middleware.AuthMiddleware(cfg), middleware.RequirePermission(user.PermReportsRead))
	{
		reports.GET("/forecast", reportHandler.GetForecast)
		reports.GET("/dashboard", reportHandler.GetDashboard)
		reports.GET("/detailed", reportHandler.GetDetailed)
		reports.GET("/:name/export", reportHandler.Export)
	}
}
