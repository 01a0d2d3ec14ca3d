package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"etsy_crm_v1/internal/controller"
	"etsy_crm_v1/internal/model"
	"etsy_crm_v1/internal/repository"
	"etsy_crm_v1/internal/router"
	"etsy_crm_v1/internal/service"
	"etsy_crm_v1/internal/task"
	"etsy_crm_v1/pkg/cache"
	"etsy_crm_v1/pkg/config"
	"etsy_crm_v1/pkg/database"
	"etsy_crm_v1/pkg/etsy"
	"etsy_crm_v1/pkg/logger"
)

// @title Etsy 卖家 CRM API
// @version 1.0
// @description 手工艺品卖家的订单同步与客户管理服务
// @BasePath /api/v1

// Dependencies 全部依赖的装配容器
type Dependencies struct {
	Config *config.Config

	ShopRepo     repository.ShopRepository
	OrderRepo    repository.OrderRepository
	ItemRepo     repository.OrderItemRepository
	CustomerRepo repository.CustomerRepository
	FlagRepo     repository.CustomerFlagRepository
	SyncLogRepo  repository.SyncLogRepository

	AuthSvc     *service.AuthService
	ShopSvc     *service.ShopService
	OrderSvc    *service.OrderService
	CustomerSvc *service.CustomerService
	SyncSvc     *service.SyncService
}

func main() {
	cfg := config.Load()

	logger.Init(cfg.GinMode)
	defer logger.Sync()

	// 数据库与建表
	db := database.InitDB(cfg.DatabaseDSN,
		&model.Shop{},
		&model.Customer{},
		&model.CustomerFlag{},
		&model.Order{},
		&model.OrderItem{},
		&model.SyncLog{},
	)

	// Redis（可选，缺省退化为单机模式）
	cache.InitRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	// 仓储
	deps := &Dependencies{Config: cfg}
	deps.ShopRepo = repository.NewShopRepository(db)
	deps.OrderRepo = repository.NewOrderRepository(db)
	deps.ItemRepo = repository.NewOrderItemRepository(db)
	deps.CustomerRepo = repository.NewCustomerRepository(db)
	deps.FlagRepo = repository.NewCustomerFlagRepository(db)
	deps.SyncLogRepo = repository.NewSyncLogRepository(db)

	// 服务
	etsyClient := etsy.NewClient()
	states := cache.NewStateStore(cache.GetClient(), 0)

	deps.AuthSvc = service.NewAuthService(etsyClient, deps.ShopRepo, states, cfg.EtsyAPIKey, cfg.OAuthCallbackURL)
	deps.ShopSvc = service.NewShopService(deps.ShopRepo)
	deps.OrderSvc = service.NewOrderService(deps.OrderRepo, deps.ItemRepo)
	deps.CustomerSvc = service.NewCustomerService(deps.CustomerRepo, deps.FlagRepo, deps.OrderRepo)

	engine := service.NewOrderSyncService(
		deps.ShopRepo, deps.OrderRepo, deps.ItemRepo, deps.CustomerRepo,
		service.NewEtsyReceiptSource(etsyClient, cfg.EtsyAPIKey),
		deps.AuthSvc,
	)
	deps.SyncSvc = service.NewSyncService(engine, deps.ShopRepo, deps.SyncLogRepo, cache.GetLocker())

	// 定时任务
	scheduler := cron.New(cron.WithSeconds())
	if cfg.AutoSyncEnabled {
		syncTask := task.NewOrderSyncTask(deps.ShopRepo, deps.SyncSvc)
		if _, err := scheduler.AddJob(cfg.AutoSyncSpec, syncTask); err != nil {
			zap.S().Fatalw("注册自动同步任务失败", "spec", cfg.AutoSyncSpec, "error", err)
		}
	}
	tokenTask := task.NewTokenKeepAliveTask(deps.ShopRepo, deps.AuthSvc)
	if _, err := scheduler.AddJob("0 */30 * * * *", tokenTask); err != nil {
		zap.S().Fatalw("注册 Token 保活任务失败", "error", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// HTTP
	gin.SetMode(cfg.GinMode)
	ginEngine := gin.Default()
	router.Setup(ginEngine, router.Controllers{
		Auth:     controller.NewAuthController(deps.AuthSvc),
		Shop:     controller.NewShopController(deps.ShopSvc),
		Order:    controller.NewOrderController(deps.OrderSvc),
		Customer: controller.NewCustomerController(deps.CustomerSvc),
		Sync:     controller.NewSyncController(deps.SyncSvc),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: ginEngine,
	}

	go func() {
		zap.S().Infow("服务启动", "port", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.S().Fatalw("服务启动失败", "error", err)
		}
	}()

	// 优雅退出
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.S().Info("收到退出信号，开始关闭")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zap.S().Errorw("服务关闭异常", "error", err)
	}
	zap.S().Info("服务已退出")
}
