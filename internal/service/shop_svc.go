package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"etsy_crm_v1/internal/model"
	"etsy_crm_v1/internal/repository"
)

// ErrShopExists 店铺已存在
var ErrShopExists = errors.New("该 Etsy 店铺已经登记过")

// ==================== ShopService 店铺服务 ====================

// ShopService 店铺登记与设置
type ShopService struct {
	shopRepo repository.ShopRepository
}

// NewShopService 创建店铺服务
func NewShopService(shopRepo repository.ShopRepository) *ShopService {
	return &ShopService{shopRepo: shopRepo}
}

// Register 登记店铺（登记后需走 OAuth 授权才能同步）
func (s *ShopService) Register(ctx context.Context, etsyShopID int64, shopName, currencyCode string) (*model.Shop, error) {
	if _, err := s.shopRepo.GetByEtsyShopID(ctx, etsyShopID); err == nil {
		return nil, ErrShopExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("查询店铺失败: %w", err)
	}

	if currencyCode == "" {
		currencyCode = "USD"
	}
	shop := &model.Shop{
		EtsyShopID:      etsyShopID,
		ShopName:        shopName,
		CurrencyCode:    currencyCode,
		Status:          model.ShopStatusPending,
		AutoSyncEnabled: true,
	}
	if err := s.shopRepo.Create(ctx, shop); err != nil {
		return nil, fmt.Errorf("登记店铺失败: %w", err)
	}
	return shop, nil
}

// Get 查询店铺
func (s *ShopService) Get(ctx context.Context, id int64) (*model.Shop, error) {
	return s.shopRepo.GetByID(ctx, id)
}

// List 查询全部店铺
func (s *ShopService) List(ctx context.Context) ([]model.Shop, error) {
	return s.shopRepo.List(ctx)
}

// UpdateSettings 更新店铺设置
func (s *ShopService) UpdateSettings(ctx context.Context, id int64, shopName *string, autoSyncEnabled *bool) (*model.Shop, error) {
	if _, err := s.shopRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if shopName != nil {
		fields["shop_name"] = *shopName
	}
	if autoSyncEnabled != nil {
		fields["auto_sync_enabled"] = *autoSyncEnabled
	}
	if len(fields) > 0 {
		if err := s.shopRepo.UpdateFields(ctx, id, fields); err != nil {
			return nil, fmt.Errorf("更新店铺设置失败: %w", err)
		}
	}
	return s.shopRepo.GetByID(ctx, id)
}

// Disconnect 断开授权：清空 Token 并停用自动同步
func (s *ShopService) Disconnect(ctx context.Context, id int64) error {
	if _, err := s.shopRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.shopRepo.UpdateFields(ctx, id, map[string]interface{}{
		"access_token":      "",
		"refresh_token":     "",
		"token_status":      "",
		"status":            model.ShopStatusInactive,
		"auto_sync_enabled": false,
	})
}
