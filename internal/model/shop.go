package model

import (
	"time"
)

// Shop 店铺状态常量
const (
	ShopStatusPending  = 0 // 待授权
	ShopStatusActive   = 1 // 正常
	ShopStatusInactive = 2 // 已停用
)

// Token 状态常量
const (
	TokenStatusValid   = "valid"        // 有效
	TokenStatusExpired = "expired"      // 已过期
	TokenStatusInvalid = "auth_invalid" // 需重新授权
)

// Shop 店铺（一个租户对应一个 Etsy 店铺）
type Shop struct {
	BaseModel

	// 核心身份
	EtsyShopID int64  `gorm:"uniqueIndex"` // 对应 Etsy 平台的 shop_id
	EtsyUserID int64  `gorm:"index"`       // 对应 Etsy 平台的 user_id
	ShopName   string `gorm:"size:100"`

	CurrencyCode string `gorm:"size:20"`

	// 状态
	Status int `gorm:"default:0;comment:状态 0-待授权 1-正常 2-已停用"`

	// API Token（由 OAuth 回调与刷新服务维护）
	TokenStatus    string    `gorm:"index;size:20;default:'auth_invalid'"`
	AccessToken    string    `gorm:"size:255"`
	RefreshToken   string    `gorm:"size:255"`
	TokenExpiresAt time.Time // Token 具体的过期时间点

	// 订单同步
	// LastOrderSyncAt 是增量同步的水位线，仅在一次同步成功结束时由编排层推进
	AutoSyncEnabled bool       `gorm:"default:true"`
	LastOrderSyncAt *time.Time `gorm:"comment:最后一次成功同步订单的时间"`
}

func (Shop) TableName() string {
	return "shops"
}

// IsConnected 是否已完成 Etsy 授权
func (s *Shop) IsConnected() bool {
	return s.AccessToken != ""
}

// TokenExpired 判断 Token 在给定时间点是否已过期
func (s *Shop) TokenExpired(now time.Time) bool {
	return s.TokenExpiresAt.Before(now)
}
