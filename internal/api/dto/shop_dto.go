package dto

import (
	"time"

	"etsy_crm_v1/internal/model"
)

// ==================== 请求 ====================

// RegisterShopRequest 店铺登记请求
type RegisterShopRequest struct {
	EtsyShopID   int64  `json:"etsy_shop_id" binding:"required"`
	ShopName     string `json:"shop_name" binding:"required"`
	CurrencyCode string `json:"currency_code"`
}

// UpdateShopRequest 店铺设置更新请求
type UpdateShopRequest struct {
	ShopName        *string `json:"shop_name"`
	AutoSyncEnabled *bool   `json:"auto_sync_enabled"`
}

// ==================== 响应 ====================

// ShopResponse 店铺响应（不暴露 Token 内容）
type ShopResponse struct {
	ID              int64      `json:"id"`
	EtsyShopID      int64      `json:"etsy_shop_id"`
	EtsyUserID      int64      `json:"etsy_user_id,omitempty"`
	ShopName        string     `json:"shop_name"`
	CurrencyCode    string     `json:"currency_code"`
	Status          int        `json:"status"`
	Connected       bool       `json:"connected"`
	TokenStatus     string     `json:"token_status"`
	AutoSyncEnabled bool       `json:"auto_sync_enabled"`
	LastOrderSyncAt *time.Time `json:"last_order_sync_at"`
	CreatedAt       time.Time  `json:"created_at"`
}

// ToShopResponse 店铺模型转响应
func ToShopResponse(s *model.Shop) *ShopResponse {
	return &ShopResponse{
		ID:              s.ID,
		EtsyShopID:      s.EtsyShopID,
		EtsyUserID:      s.EtsyUserID,
		ShopName:        s.ShopName,
		CurrencyCode:    s.CurrencyCode,
		Status:          s.Status,
		Connected:       s.IsConnected(),
		TokenStatus:     s.TokenStatus,
		AutoSyncEnabled: s.AutoSyncEnabled,
		LastOrderSyncAt: s.LastOrderSyncAt,
		CreatedAt:       s.CreatedAt,
	}
}

// ToShopResponses 店铺列表转响应
func ToShopResponses(shops []model.Shop) []*ShopResponse {
	out := make([]*ShopResponse, 0, len(shops))
	for i := range shops {
		out = append(out, ToShopResponse(&shops[i]))
	}
	return out
}
