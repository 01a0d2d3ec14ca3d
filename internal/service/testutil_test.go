package service

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"etsy_crm_v1/internal/model"
)

// newTestDB 每个测试独立的内存库
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("打开内存库失败: %v", err)
	}

	err = db.AutoMigrate(
		&model.Shop{},
		&model.Customer{},
		&model.CustomerFlag{},
		&model.Order{},
		&model.OrderItem{},
		&model.SyncLog{},
	)
	if err != nil {
		t.Fatalf("建表失败: %v", err)
	}
	return db
}

// newTestShop 写入一个已授权的店铺
func newTestShop(t *testing.T, db *gorm.DB) *model.Shop {
	t.Helper()

	shop := &model.Shop{
		EtsyShopID:      88001122,
		ShopName:        "WoodAndWool",
		CurrencyCode:    "USD",
		Status:          model.ShopStatusActive,
		TokenStatus:     model.TokenStatusValid,
		AccessToken:     "12345678.access-token",
		RefreshToken:    "12345678.refresh-token",
		TokenExpiresAt:  time.Now().Add(time.Hour),
		AutoSyncEnabled: true,
	}
	if err := db.Create(shop).Error; err != nil {
		t.Fatalf("写入测试店铺失败: %v", err)
	}
	return shop
}
