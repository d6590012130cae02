package v1

import (
	"github.com/gin-gonic/gin"

	"atelier/internal/domain/auth"
	"atelier/internal/domain/catalogs/category"
	"atelier/internal/domain/catalogs/customer"
	"atelier/internal/domain/catalogs/location"
	"atelier/internal/domain/catalogs/material"
	"atelier/internal/domain/catalogs/procedure"
	"atelier/internal/domain/catalogs/supplier"
	"atelier/internal/domain/product"
	"atelier/internal/domain/purchase"
	"atelier/internal/domain/sale"
	"atelier/internal/domain/stockledger"
	"atelier/internal/domain/task"
	"atelier/internal/http/v1/dto"
	"atelier/internal/http/v1/handlers"
	"atelier/internal/http/v1/middleware"
	"atelier/internal/storage/postgres"
	"atelier/pkg/logger"
)

// RouterConfig carries everything the HTTP layer depends on.
type RouterConfig struct {
	Logger *logger.Logger
	Pool   *postgres.Pool

	TokenValidator middleware.TokenValidator
	AuthService    *auth.Service

	Categories *category.Service
	Customers  *customer.Service
	Locations  *location.Service
	Materials  *material.Service
	Procedures *procedure.Service
	Suppliers  *supplier.Service

	Products *product.Service
	Ledger   *stockledger.Service
	Stocks   *postgres.StockRepo

	Sales     *sale.Service
	Purchases *purchase.Service
	Tasks     *task.Service

	Audit *postgres.AuditService
}

// NewRouter builds the gin engine with all routes and middleware mounted.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(cfg.Logger),
		middleware.ErrorHandler(),
	)

	base := handlers.NewBaseHandler()

	health := handlers.NewHealthHandler(cfg.Pool)
	router.GET("/health/live", health.Live)
	router.GET("/health/ready", health.Ready)
	router.GET("/health/info", health.Info)

	api := router.Group("/api/v1")

	authHandler := handlers.NewAuthHandler(base, cfg.AuthService)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(middleware.Auth(cfg.TokenValidator))

	protected.POST("/auth/register", middleware.RequireAdmin(), authHandler.Register)
	protected.POST("/auth/change-password", authHandler.ChangePassword)
	protected.GET("/auth/me", authHandler.Me)

	mountCatalogs(protected, base, cfg)

	products := handlers.NewProductHandler(base, cfg.Products, cfg.Ledger, cfg.Stocks, cfg.Audit)
	productGroup := protected.Group("/products")
	productGroup.GET("", products.List)
	productGroup.POST("", products.Create)
	productGroup.POST("/recalculate", products.RecalculateAll)
	productGroup.GET("/reports/mispricing", products.MispricingReport)
	productGroup.GET("/reports/stock-alerts", products.StockAlerts)
	productGroup.GET("/:id", products.Get)
	productGroup.PUT("/:id", products.Update)
	productGroup.DELETE("/:id", products.Delete)
	productGroup.POST("/:id/material-lines", products.AddMaterialLine)
	productGroup.DELETE("/:id/material-lines/:lineId", products.RemoveMaterialLine)
	productGroup.POST("/:id/procedure-lines", products.AddProcedureLine)
	productGroup.DELETE("/:id/procedure-lines/:lineId", products.RemoveProcedureLine)
	productGroup.POST("/:id/stock", products.UpdateStock)
	productGroup.GET("/:id/stock-movements", products.StockMovements)

	sales := handlers.NewSaleHandler(base, cfg.Sales, cfg.Audit)
	saleGroup := protected.Group("/sales")
	saleGroup.GET("", sales.List)
	saleGroup.POST("", sales.Record)
	saleGroup.GET("/:id", sales.Get)
	saleGroup.PUT("/:id", sales.Update)
	saleGroup.DELETE("/:id", sales.Delete)

	purchases := handlers.NewPurchaseHandler(base, cfg.Purchases, cfg.Audit)
	purchaseGroup := protected.Group("/purchases")
	purchaseGroup.GET("", purchases.List)
	purchaseGroup.POST("", purchases.Record)
	purchaseGroup.GET("/:id", purchases.Get)
	purchaseGroup.PUT("/:id", purchases.Update)
	purchaseGroup.DELETE("/:id", purchases.Delete)

	audit := handlers.NewAuditHandler(base, cfg.Audit)
	protected.GET("/audit/:entityType/:id", middleware.RequireAdmin(), audit.History)

	tasks := handlers.NewTaskHandler(base, cfg.Tasks)
	taskGroup := protected.Group("/tasks")
	taskGroup.GET("", tasks.List)
	taskGroup.POST("", tasks.Create)
	taskGroup.GET("/:id", tasks.Get)
	taskGroup.PUT("/:id", tasks.Update)
	taskGroup.POST("/:id/transition", tasks.Transition)
	taskGroup.DELETE("/:id", tasks.Delete)

	return router
}

// mountCatalogs wires one generic reference handler per catalog.
func mountCatalogs(group *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	categories := handlers.NewReferenceHandler(base, handlers.ReferenceHandlerConfig[*category.Category, dto.CreateCategoryRequest, dto.UpdateCategoryRequest]{
		Service: cfg.Categories,
		MapCreate: func(req dto.CreateCategoryRequest) (*category.Category, error) {
			return req.ToEntity(), nil
		},
		MapUpdate: func(req dto.UpdateCategoryRequest, existing *category.Category) (*category.Category, error) {
			return req.Apply(existing), nil
		},
	})
	categories.RegisterRoutes(group.Group("/categories"))

	customers := handlers.NewReferenceHandler(base, handlers.ReferenceHandlerConfig[*customer.Customer, dto.CreateCustomerRequest, dto.UpdateCustomerRequest]{
		Service: cfg.Customers,
		MapCreate: func(req dto.CreateCustomerRequest) (*customer.Customer, error) {
			return req.ToEntity(), nil
		},
		MapUpdate: func(req dto.UpdateCustomerRequest, existing *customer.Customer) (*customer.Customer, error) {
			return req.Apply(existing), nil
		},
	})
	customers.RegisterRoutes(group.Group("/customers"))

	locations := handlers.NewReferenceHandler(base, handlers.ReferenceHandlerConfig[*location.Location, dto.CreateLocationRequest, dto.UpdateLocationRequest]{
		Service: cfg.Locations,
		MapCreate: func(req dto.CreateLocationRequest) (*location.Location, error) {
			return req.ToEntity(), nil
		},
		MapUpdate: func(req dto.UpdateLocationRequest, existing *location.Location) (*location.Location, error) {
			return req.Apply(existing), nil
		},
	})
	locations.RegisterRoutes(group.Group("/locations"))

	materials := handlers.NewReferenceHandler(base, handlers.ReferenceHandlerConfig[*material.Material, dto.CreateMaterialRequest, dto.UpdateMaterialRequest]{
		Service:   cfg.Materials,
		MapCreate: dto.CreateMaterialRequest.ToEntity,
		MapUpdate: dto.UpdateMaterialRequest.Apply,
	})
	materials.RegisterRoutes(group.Group("/materials"))

	procedures := handlers.NewReferenceHandler(base, handlers.ReferenceHandlerConfig[*procedure.Procedure, dto.CreateProcedureRequest, dto.UpdateProcedureRequest]{
		Service: cfg.Procedures,
		MapCreate: func(req dto.CreateProcedureRequest) (*procedure.Procedure, error) {
			return req.ToEntity(), nil
		},
		MapUpdate: func(req dto.UpdateProcedureRequest, existing *procedure.Procedure) (*procedure.Procedure, error) {
			return req.Apply(existing), nil
		},
	})
	procedures.RegisterRoutes(group.Group("/procedures"))

	suppliers := handlers.NewReferenceHandler(base, handlers.ReferenceHandlerConfig[*supplier.Supplier, dto.CreateSupplierRequest, dto.UpdateSupplierRequest]{
		Service: cfg.Suppliers,
		MapCreate: func(req dto.CreateSupplierRequest) (*supplier.Supplier, error) {
			return req.ToEntity(), nil
		},
		MapUpdate: func(req dto.UpdateSupplierRequest, existing *supplier.Supplier) (*supplier.Supplier, error) {
			return req.Apply(existing), nil
		},
	})
	suppliers.RegisterRoutes(group.Group("/suppliers"))
}
