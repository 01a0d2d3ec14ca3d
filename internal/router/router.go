package router

import (
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"etsy_crm_v1/internal/controller"
	"etsy_crm_v1/internal/middleware"
)

// Controllers 路由依赖的控制器集合
type Controllers struct {
	Auth     *controller.AuthController
	Shop     *controller.ShopController
	Order    *controller.OrderController
	Customer *controller.CustomerController
	Sync     *controller.SyncController
}

// Setup 注册全部路由
func Setup(engine *gin.Engine, c Controllers) {
	engine.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := engine.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.GET("/shops/:shop_id/login", c.Auth.Login)
			auth.GET("/callback", c.Auth.Callback)
		}

		shops := v1.Group("/shops")
		{
			shops.POST("", c.Shop.Register)
			shops.GET("", c.Shop.List)
			shops.GET("/:shop_id", c.Shop.Detail)
			shops.PUT("/:shop_id", c.Shop.Update)
			shops.POST("/:shop_id/disconnect", c.Shop.Disconnect)

			// 手动同步带限频，挡住连点
			shops.POST("/:shop_id/sync", middleware.SyncRateLimit(30*time.Second), c.Sync.Trigger)
			shops.GET("/:shop_id/sync/logs", c.Sync.Logs)
			shops.GET("/:shop_id/sync/latest", c.Sync.Latest)
		}

		orders := v1.Group("/orders")
		{
			orders.GET("", c.Order.List)
			orders.GET("/stats/stages", c.Order.StageStats)
			orders.GET("/:id", c.Order.Detail)
			orders.PUT("/:id/stage", c.Order.UpdateStage)
			orders.PUT("/:id/notes", c.Order.UpdateNotes)
			orders.PUT("/:id/tags", c.Order.UpdateTags)
		}

		customers := v1.Group("/customers")
		{
			customers.GET("", c.Customer.List)
			customers.GET("/stats", c.Customer.Stats)
			customers.GET("/:id", c.Customer.Detail)
			customers.GET("/:id/orders", c.Customer.Orders)
			customers.POST("/:id/flags", c.Customer.AddFlag)
			customers.PUT("/flags/:flag_id/resolve", c.Customer.ResolveFlag)
		}
	}
}
