// Package main is the entry point for the atelier API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"atelier/internal/domain"
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
	v1 "atelier/internal/http/v1"
	"atelier/internal/storage/postgres"
	"atelier/internal/storage/postgres/document_repo"
	"atelier/internal/storage/postgres/reference_repo"
	"atelier/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting atelier server")

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(mustEnv("DATABASE_URL"))
	if maxConns := getEnvInt("DB_MAX_CONNS", 0); maxConns > 0 {
		poolCfg.MaxConns = int32(maxConns)
	}

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Repositories ---
	categoryRepo := reference_repo.NewCategoryRepo(txManager)
	customerRepo := reference_repo.NewCustomerRepo(txManager)
	locationRepo := reference_repo.NewLocationRepo(txManager)
	materialRepo := reference_repo.NewMaterialRepo(txManager)
	procedureRepo := reference_repo.NewProcedureRepo(txManager)
	supplierRepo := reference_repo.NewSupplierRepo(txManager)
	productRepo := reference_repo.NewProductRepo(txManager)
	saleRepo := document_repo.NewSaleRepo(txManager)
	purchaseRepo := document_repo.NewPurchaseRepo(txManager)
	stockRepo := postgres.NewStockRepo(txManager)
	taskRepo := postgres.NewTaskRepo(txManager)
	userRepo := postgres.NewUserRepo(txManager)

	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}

	// --- Catalog services ---
	categoryService := category.NewService(categoryRepo, domain.ReferenceServiceConfig[*category.Category]{
		Repo: categoryRepo, TxManager: txManager, EntityName: "category",
	})
	customerService := customer.NewService(customerRepo, domain.ReferenceServiceConfig[*customer.Customer]{
		Repo: customerRepo, TxManager: txManager, EntityName: "customer",
	})
	locationService := location.NewService(locationRepo, domain.ReferenceServiceConfig[*location.Location]{
		Repo: locationRepo, TxManager: txManager, EntityName: "location",
	})
	materialService := material.NewService(materialRepo, domain.ReferenceServiceConfig[*material.Material]{
		Repo: materialRepo, TxManager: txManager, EntityName: "material",
	})
	procedureService := procedure.NewService(procedureRepo, domain.ReferenceServiceConfig[*procedure.Procedure]{
		Repo: procedureRepo, TxManager: txManager, EntityName: "procedure",
	})
	supplierService := supplier.NewService(supplierRepo, domain.ReferenceServiceConfig[*supplier.Supplier]{
		Repo: supplierRepo, TxManager: txManager, EntityName: "supplier",
	})

	// --- Domain services ---
	productService := product.NewService(productRepo, materialRepo, txManager)
	ledgerService := stockledger.NewService(stockRepo, txManager)
	saleService := sale.NewService(saleRepo, productRepo, customerRepo, locationRepo, ledgerService, txManager)
	purchaseService := purchase.NewService(purchaseRepo, supplierRepo, materialRepo, txManager)
	taskService := task.NewService(taskRepo, txManager)

	// --- Auth ---
	jwtSecret := getEnv("JWT_SECRET", "change-me-in-production")
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(jwtSecret))
	authService := auth.NewService(userRepo, txManager, jwtService, auth.DefaultServiceConfig())

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Logger:         log,
		Pool:           pool,
		TokenValidator: jwtService,
		AuthService:    authService,
		Categories:     categoryService,
		Customers:      customerService,
		Locations:      locationService,
		Materials:      materialService,
		Procedures:     procedureService,
		Suppliers:      supplierService,
		Products:       productService,
		Ledger:         ledgerService,
		Stocks:         stockRepo,
		Sales:          saleService,
		Purchases:      purchaseService,
		Tasks:          taskService,
		Audit:          auditService,
	})

	// --- HTTP server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
