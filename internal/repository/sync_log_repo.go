package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"etsy_crm_v1/internal/model"
)

// ==================== SyncLogRepository 同步日志仓库 ====================

// SyncCounts 一次同步的计数结果
type SyncCounts struct {
	OrdersCreated    int
	OrdersUpdated    int
	CustomersCreated int
	CustomersUpdated int
}

// SyncLogRepository 同步日志仓库接口
type SyncLogRepository interface {
	Create(ctx context.Context, log *model.SyncLog) error
	GetByID(ctx context.Context, id int64) (*model.SyncLog, error)
	GetByRunID(ctx context.Context, runID string) (*model.SyncLog, error)
	Finalize(ctx context.Context, id int64, status string, counts SyncCounts, errMsg string, finishedAt time.Time) error
	ListByShop(ctx context.Context, shopID int64, limit int) ([]model.SyncLog, error)
	GetLatest(ctx context.Context, shopID int64) (*model.SyncLog, error)
}

type syncLogRepository struct {
	db *gorm.DB
}

// NewSyncLogRepository 创建同步日志仓库
func NewSyncLogRepository(db *gorm.DB) SyncLogRepository {
	return &syncLogRepository{db: db}
}

func (r *syncLogRepository) Create(ctx context.Context, log *model.SyncLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *syncLogRepository) GetByID(ctx context.Context, id int64) (*model.SyncLog, error) {
	var log model.SyncLog
	if err := r.db.WithContext(ctx).First(&log, id).Error; err != nil {
		return nil, err
	}
	return &log, nil
}

func (r *syncLogRepository) GetByRunID(ctx context.Context, runID string) (*model.SyncLog, error) {
	var log model.SyncLog
	if err := r.db.WithContext(ctx).Where("run_id = ?", runID).First(&log).Error; err != nil {
		return nil, err
	}
	return &log, nil
}

// Finalize 终态写入：无论成功失败都只调用一次
func (r *syncLogRepository) Finalize(ctx context.Context, id int64, status string, counts SyncCounts, errMsg string, finishedAt time.Time) error {
	return r.db.WithContext(ctx).Model(&model.SyncLog{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":            status,
		"orders_created":    counts.OrdersCreated,
		"orders_updated":    counts.OrdersUpdated,
		"customers_created": counts.CustomersCreated,
		"customers_updated": counts.CustomersUpdated,
		"error_message":     errMsg,
		"finished_at":       finishedAt,
	}).Error
}

func (r *syncLogRepository) ListByShop(ctx context.Context, shopID int64, limit int) ([]model.SyncLog, error) {
	if limit <= 0 {
		limit = 20
	}
	var logs []model.SyncLog
	err := r.db.WithContext(ctx).
		Where("shop_id = ?", shopID).
		Order("started_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

func (r *syncLogRepository) GetLatest(ctx context.Context, shopID int64) (*model.SyncLog, error) {
	var log model.SyncLog
	err := r.db.WithContext(ctx).
		Where("shop_id = ?", shopID).
		Order("started_at DESC").
		First(&log).Error
	if err != nil {
		return nil, err
	}
	return &log, nil
}
