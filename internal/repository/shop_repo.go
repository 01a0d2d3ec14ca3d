package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"etsy_crm_v1/internal/model"
)

// ==================== 接口定义 ====================

// ShopRepository 店铺仓储接口
type ShopRepository interface {
	Create(ctx context.Context, shop *model.Shop) error
	GetByID(ctx context.Context, id int64) (*model.Shop, error)
	GetByEtsyShopID(ctx context.Context, etsyShopID int64) (*model.Shop, error)
	Update(ctx context.Context, shop *model.Shop) error
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error

	List(ctx context.Context) ([]model.Shop, error)
	ListAutoSyncShops(ctx context.Context) ([]model.Shop, error)

	// Token 相关
	UpdateToken(ctx context.Context, id int64, accessToken, refreshToken string, expiresAt time.Time) error
	UpdateTokenStatus(ctx context.Context, id int64, tokenStatus string) error
	FindExpiringShops(ctx context.Context, before time.Time) ([]model.Shop, error)

	// 水位线
	UpdateLastOrderSyncAt(ctx context.Context, id int64, at time.Time) error
}

// ==================== 仓储实现 ====================

type shopRepo struct {
	db *gorm.DB
}

// NewShopRepository 创建店铺仓储
func NewShopRepository(db *gorm.DB) ShopRepository {
	return &shopRepo{db: db}
}

func (r *shopRepo) Create(ctx context.Context, shop *model.Shop) error {
	return r.db.WithContext(ctx).Create(shop).Error
}

func (r *shopRepo) GetByID(ctx context.Context, id int64) (*model.Shop, error) {
	var shop model.Shop
	if err := r.db.WithContext(ctx).First(&shop, id).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *shopRepo) GetByEtsyShopID(ctx context.Context, etsyShopID int64) (*model.Shop, error) {
	var shop model.Shop
	if err := r.db.WithContext(ctx).Where("etsy_shop_id = ?", etsyShopID).First(&shop).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *shopRepo) Update(ctx context.Context, shop *model.Shop) error {
	return r.db.WithContext(ctx).Save(shop).Error
}

func (r *shopRepo) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Shop{}).Where("id = ?", id).Updates(fields).Error
}

func (r *shopRepo) List(ctx context.Context) ([]model.Shop, error) {
	var shops []model.Shop
	err := r.db.WithContext(ctx).Order("id ASC").Find(&shops).Error
	return shops, err
}

func (r *shopRepo) ListAutoSyncShops(ctx context.Context) ([]model.Shop, error) {
	var shops []model.Shop
	err := r.db.WithContext(ctx).
		Where("status = ?", model.ShopStatusActive).
		Where("auto_sync_enabled = ?", true).
		Find(&shops).Error
	return shops, err
}

func (r *shopRepo) UpdateToken(ctx context.Context, id int64, accessToken, refreshToken string, expiresAt time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Shop{}).Where("id = ?", id).Updates(map[string]interface{}{
		"access_token":     accessToken,
		"refresh_token":    refreshToken,
		"token_expires_at": expiresAt,
		"token_status":     model.TokenStatusValid,
	}).Error
}

func (r *shopRepo) UpdateTokenStatus(ctx context.Context, id int64, tokenStatus string) error {
	return r.db.WithContext(ctx).Model(&model.Shop{}).Where("id = ?", id).
		Update("token_status", tokenStatus).Error
}

// FindExpiringShops 查询 Token 将在 before 之前过期的正常店铺（保活任务用）
func (r *shopRepo) FindExpiringShops(ctx context.Context, before time.Time) ([]model.Shop, error) {
	var shops []model.Shop
	err := r.db.WithContext(ctx).
		Where("status = ?", model.ShopStatusActive).
		Where("refresh_token <> ''").
		Where("token_expires_at < ?", before).
		Find(&shops).Error
	return shops, err
}

func (r *shopRepo) UpdateLastOrderSyncAt(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Shop{}).Where("id = ?", id).
		Update("last_order_sync_at", at).Error
}
