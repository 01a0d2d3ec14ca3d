package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"etsy_crm_v1/internal/model"
	"etsy_crm_v1/internal/repository"
)

// ==================== 常量与错误 ====================

// syncLockTTL 同步锁持有时长，超过视为任务僵死自动释放
const syncLockTTL = 10 * time.Minute

// ErrSyncInProgress 同一店铺已有同步在进行
var ErrSyncInProgress = errors.New("该店铺已有同步任务在执行中")

// ==================== SyncService 同步编排 ====================

// SyncService 同步编排层：互斥锁 + 审计日志 + 水位线推进
// 引擎本身不感知这些关注点
type SyncService struct {
	engine      *OrderSyncService
	shopRepo    repository.ShopRepository
	syncLogRepo repository.SyncLogRepository
	locker      *redislock.Client // 可为 nil（未接 Redis 时退化为无锁）

	now func() time.Time
}

// NewSyncService 创建同步编排服务
func NewSyncService(
	engine *OrderSyncService,
	shopRepo repository.ShopRepository,
	syncLogRepo repository.SyncLogRepository,
	locker *redislock.Client,
) *SyncService {
	return &SyncService{
		engine:      engine,
		shopRepo:    shopRepo,
		syncLogRepo: syncLogRepo,
		locker:      locker,
		now:         time.Now,
	}
}

// RunSync 执行一轮同步并写审计日志
// 无论成功失败，日志都恰好终结一次；水位线只在成功时推进到本轮开始时刻
func (s *SyncService) RunSync(ctx context.Context, shopID int64, trigger string) (*model.SyncLog, error) {
	// 按店铺互斥，避免手动与定时同步并发写同一批数据
	if s.locker != nil {
		lock, err := s.locker.Obtain(ctx, fmt.Sprintf("sync:order:shop:%d", shopID), syncLockTTL, nil)
		if errors.Is(err, redislock.ErrNotObtained) {
			return nil, ErrSyncInProgress
		}
		if err != nil {
			return nil, fmt.Errorf("获取同步锁失败: %w", err)
		}
		defer func() {
			if err := lock.Release(context.Background()); err != nil {
				zap.S().Warnw("释放同步锁失败", "shop_id", shopID, "error", err)
			}
		}()
	}

	startedAt := s.now()
	syncLog := &model.SyncLog{
		RunID:     uuid.NewString(),
		ShopID:    shopID,
		Trigger:   trigger,
		Status:    model.SyncStatusRunning,
		StartedAt: startedAt,
	}
	if err := s.syncLogRepo.Create(ctx, syncLog); err != nil {
		return nil, fmt.Errorf("创建同步日志失败: %w", err)
	}

	summary, syncErr := s.engine.SyncOrders(ctx, shopID)
	finishedAt := s.now()

	counts := repository.SyncCounts{
		OrdersCreated:    summary.OrdersCreated,
		OrdersUpdated:    summary.OrdersUpdated,
		CustomersCreated: summary.CustomersCreated,
		CustomersUpdated: summary.CustomersUpdated,
	}

	status := model.SyncStatusSucceeded
	errMsg := ""
	if syncErr != nil {
		status = model.SyncStatusFailed
		errMsg = syncErr.Error()
	}

	if err := s.syncLogRepo.Finalize(ctx, syncLog.ID, status, counts, errMsg, finishedAt); err != nil {
		zap.S().Errorw("终结同步日志失败", "run_id", syncLog.RunID, "error", err)
	}

	syncLog.Status = status
	syncLog.OrdersCreated = counts.OrdersCreated
	syncLog.OrdersUpdated = counts.OrdersUpdated
	syncLog.CustomersCreated = counts.CustomersCreated
	syncLog.CustomersUpdated = counts.CustomersUpdated
	syncLog.ErrorMessage = errMsg
	syncLog.FinishedAt = &finishedAt

	if syncErr != nil {
		zap.S().Errorw("订单同步失败",
			"shop_id", shopID, "run_id", syncLog.RunID, "trigger", trigger, "error", syncErr)
		return syncLog, syncErr
	}

	// 水位线推进到开始时刻而非结束时刻，保证同步期间新到的订单下轮仍能覆盖
	if err := s.shopRepo.UpdateLastOrderSyncAt(ctx, shopID, startedAt); err != nil {
		zap.S().Warnw("更新同步水位线失败", "shop_id", shopID, "error", err)
	}

	zap.S().Infow("订单同步完成",
		"shop_id", shopID,
		"run_id", syncLog.RunID,
		"trigger", trigger,
		"orders_created", counts.OrdersCreated,
		"orders_updated", counts.OrdersUpdated,
		"customers_created", counts.CustomersCreated,
		"customers_updated", counts.CustomersUpdated,
		"receipts_failed", summary.ReceiptsFailed,
		"duration", finishedAt.Sub(startedAt).String(),
	)
	return syncLog, nil
}

// ListLogs 查询店铺的同步历史
func (s *SyncService) ListLogs(ctx context.Context, shopID int64, limit int) ([]model.SyncLog, error) {
	return s.syncLogRepo.ListByShop(ctx, shopID, limit)
}

// GetLatestLog 查询店铺最近一次同步
func (s *SyncService) GetLatestLog(ctx context.Context, shopID int64) (*model.SyncLog, error) {
	return s.syncLogRepo.GetLatest(ctx, shopID)
}
