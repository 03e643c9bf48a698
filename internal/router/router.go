package router

import (
	"time"

	"github.com/saadullahkhan123123/saeedautobackend/internal/config"
	"github.com/saadullahkhan123123/saeedautobackend/internal/handler"
	"github.com/saadullahkhan123123/saeedautobackend/internal/infra"
	"github.com/saadullahkhan123123/saeedautobackend/internal/middleware"
	"github.com/saadullahkhan123123/saeedautobackend/internal/repository"
	"github.com/saadullahkhan123123/saeedautobackend/internal/service"
	"github.com/saadullahkhan123123/saeedautobackend/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps carries the long-lived pieces main constructs once and the worker pool
// shares with the HTTP surface.
type Deps struct {
	Dispatcher *worker.Dispatcher
	SlipRepo   repository.SlipRepository
	Mailer     *infra.Mailer
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*gin.Engine, *Deps) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Infrastructure ───────────────────────────────────────────────────────
	mailer := infra.NewMailer(cfg)

	// ── Repositories ─────────────────────────────────────────────────────────
	itemRepo := repository.NewItemRepository(db)
	slipRepo := repository.NewSlipRepository(db)
	incomeRepo := repository.NewIncomeRepository(db)
	reportRepo := repository.NewReportRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	itemSvc := service.NewItemService(itemRepo)
	slipSvc := service.NewSlipService(slipRepo, itemRepo, incomeRepo, dispatcher)
	reportSvc := service.NewReportService(reportRepo, incomeRepo, rdb)

	// ── Handlers ─────────────────────────────────────────────────────────────
	itemsH := handler.NewItemsHandler(itemSvc)
	slipsH := handler.NewSlipsHandler(slipSvc, cfg.PDFStoragePath)
	reportsH := handler.NewReportsHandler(reportSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	r.GET("/health", handler.Health(db, rdb))

	v1 := r.Group("/v1")
	{
		slips := v1.Group("/slips")
		{
			slips.POST("", slipsH.CreateSlip)
			slips.GET("", slipsH.ListSlips)
			slips.GET("/:id", slipsH.GetSlip)
			slips.PUT("/:id", slipsH.UpdateSlip)
			slips.DELETE("/:id", slipsH.DeleteSlip)
			slips.PATCH("/cancel/:id", slipsH.CancelSlip)
			slips.GET("/:id/receipt", slipsH.DownloadReceipt)
		}

		items := v1.Group("/items")
		{
			items.POST("", itemsH.CreateItem)
			items.GET("", itemsH.ListItems)
			items.DELETE("", itemsH.WipeItems)
			items.GET("/low-stock", itemsH.ListLowStock)
			items.GET("/:id", itemsH.GetItem)
			items.PUT("/:id", itemsH.UpdateItem)
			items.DELETE("/:id", itemsH.DeleteItem)
			items.POST("/:id/adjust", itemsH.AdjustQuantity)
			items.POST("/:id/reactivate", itemsH.ReactivateItem)
		}

		v1.GET("/income", reportsH.ListIncome)

		reports := v1.Group("/reports")
		{
			reports.GET("/top-products", reportsH.TopProducts)
			reports.GET("/trend", reportsH.IncomeTrend)
			reports.GET("/dashboard", reportsH.Dashboard)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r, &Deps{Dispatcher: dispatcher, SlipRepo: slipRepo, Mailer: mailer}
}
