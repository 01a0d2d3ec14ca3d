package task

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"etsy_crm_v1/internal/model"
	"etsy_crm_v1/internal/repository"
	"etsy_crm_v1/internal/service"
)

// maxConcurrentSyncs 单次调度内同时同步的店铺数上限
const maxConcurrentSyncs = 3

// OrderSyncTask 定时订单同步任务
type OrderSyncTask struct {
	shopRepo repository.ShopRepository
	syncSvc  *service.SyncService

	running sync.Mutex // 上一轮未结束时跳过本轮
}

// NewOrderSyncTask 创建定时同步任务
func NewOrderSyncTask(shopRepo repository.ShopRepository, syncSvc *service.SyncService) *OrderSyncTask {
	return &OrderSyncTask{shopRepo: shopRepo, syncSvc: syncSvc}
}

// Run 扫描开启自动同步的店铺并逐个同步（信号量限并发）
func (t *OrderSyncTask) Run() {
	if !t.running.TryLock() {
		zap.S().Warn("上一轮自动同步尚未结束，跳过本轮")
		return
	}
	defer t.running.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	shops, err := t.shopRepo.ListAutoSyncShops(ctx)
	if err != nil {
		zap.S().Errorw("查询自动同步店铺失败", "error", err)
		return
	}
	if len(shops) == 0 {
		return
	}
	zap.S().Infow("自动同步开始", "shop_count", len(shops))

	sem := make(chan struct{}, maxConcurrentSyncs)
	var wg sync.WaitGroup
	for i := range shops {
		shop := shops[i]
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			_, err := t.syncSvc.RunSync(ctx, shop.ID, model.SyncTriggerAuto)
			if errors.Is(err, service.ErrSyncInProgress) {
				zap.S().Infow("店铺同步进行中，跳过", "shop_id", shop.ID)
				return
			}
			if err != nil {
				// 失败详情已写入同步日志，这里只做概要
				zap.S().Warnw("店铺自动同步失败", "shop_id", shop.ID, "error", err)
			}
		}()
	}
	wg.Wait()

	zap.S().Info("自动同步结束")
}
