package service

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"etsy_crm_v1/internal/model"
	"etsy_crm_v1/internal/repository"
	"etsy_crm_v1/pkg/etsy"
)

func newTestSyncService(db *gorm.DB, source ReceiptSource) *SyncService {
	engine := newSyncEngine(db, source, &fakeRefresher{})
	svc := NewSyncService(
		engine,
		repository.NewShopRepository(db),
		repository.NewSyncLogRepository(db),
		nil, // 无 Redis，退化为无锁
	)
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestRunSyncWritesAuditLog(t *testing.T) {
	db := newTestDB(t)
	shop := newTestShop(t, db)

	source := &fakeReceiptSource{pages: [][]etsy.ReceiptData{
		{makeReceipt(8001, 7101, 1999), makeReceipt(8002, 7101, 4500)},
	}}
	svc := newTestSyncService(db, source)

	syncLog, err := svc.RunSync(context.Background(), shop.ID, model.SyncTriggerManual)
	if err != nil {
		t.Fatalf("同步失败: %v", err)
	}

	if syncLog.RunID == "" {
		t.Error("RunID 不应为空")
	}
	if syncLog.Status != model.SyncStatusSucceeded {
		t.Errorf("状态 = %s, 期望 succeeded", syncLog.Status)
	}
	if syncLog.Trigger != model.SyncTriggerManual {
		t.Errorf("触发方式 = %s, 期望 manual", syncLog.Trigger)
	}
	if syncLog.OrdersCreated != 2 || syncLog.CustomersCreated != 1 || syncLog.CustomersUpdated != 1 {
		t.Errorf("日志计数 = {oc:%d, cc:%d, cu:%d}, 期望 {2, 1, 1}",
			syncLog.OrdersCreated, syncLog.CustomersCreated, syncLog.CustomersUpdated)
	}
	if syncLog.FinishedAt == nil {
		t.Error("结束时间应被填充")
	}

	// 落库的日志与返回值一致
	var stored model.SyncLog
	if err := db.Where("run_id = ?", syncLog.RunID).First(&stored).Error; err != nil {
		t.Fatalf("查询同步日志失败: %v", err)
	}
	if stored.Status != model.SyncStatusSucceeded || stored.OrdersCreated != 2 {
		t.Errorf("落库日志 = {status:%s, oc:%d}, 期望 {succeeded, 2}", stored.Status, stored.OrdersCreated)
	}

	// 水位线推进到本轮开始时刻
	var updated model.Shop
	db.First(&updated, shop.ID)
	if updated.LastOrderSyncAt == nil || updated.LastOrderSyncAt.Unix() != testNow.Unix() {
		t.Errorf("水位线 = %v, 期望 %v", updated.LastOrderSyncAt, testNow)
	}
}

func TestRunSyncFinalizesFailure(t *testing.T) {
	db := newTestDB(t)
	shop := newTestShop(t, db)
	// 未授权店铺，引擎直接失败
	db.Model(&model.Shop{}).Where("id = ?", shop.ID).Update("access_token", "")

	svc := newTestSyncService(db, &fakeReceiptSource{})

	syncLog, err := svc.RunSync(context.Background(), shop.ID, model.SyncTriggerAuto)
	if err == nil {
		t.Fatal("期望同步失败")
	}
	if syncLog == nil {
		t.Fatal("失败时也应返回已终结的日志")
	}
	if syncLog.Status != model.SyncStatusFailed {
		t.Errorf("状态 = %s, 期望 failed", syncLog.Status)
	}
	if syncLog.ErrorMessage == "" {
		t.Error("失败原因不应为空")
	}

	// 失败不推进水位线
	var updated model.Shop
	db.First(&updated, shop.ID)
	if updated.LastOrderSyncAt != nil {
		t.Errorf("失败后水位线不应推进: %v", updated.LastOrderSyncAt)
	}
}

func TestRunSyncKeepsPartialCountsOnPageFailure(t *testing.T) {
	db := newTestDB(t)
	shop := newTestShop(t, db)

	// 首页成功，第二页拉取报错
	source := &pageFailSource{
		first: []etsy.ReceiptData{makeReceipt(8101, 7102, 1000), makeReceipt(8102, 7103, 1000)},
	}
	engine := newSyncEngine(db, source, &fakeRefresher{})
	engine.pageSize = 2
	svc := NewSyncService(engine, repository.NewShopRepository(db), repository.NewSyncLogRepository(db), nil)
	svc.now = func() time.Time { return testNow }

	syncLog, err := svc.RunSync(context.Background(), shop.ID, model.SyncTriggerManual)
	if err == nil {
		t.Fatal("期望翻页失败上抛")
	}
	if syncLog.Status != model.SyncStatusFailed {
		t.Errorf("状态 = %s, 期望 failed", syncLog.Status)
	}
	// 出错前已落库的计数保留在日志里
	if syncLog.OrdersCreated != 2 {
		t.Errorf("部分计数 = %d, 期望 2", syncLog.OrdersCreated)
	}
}

func TestSyncLogHistoryOrder(t *testing.T) {
	db := newTestDB(t)
	shop := newTestShop(t, db)
	svc := newTestSyncService(db, &fakeReceiptSource{})

	// 递增时钟，保证 started_at 可排序
	tick := 0
	svc.now = func() time.Time {
		tick++
		return testNow.Add(time.Duration(tick) * time.Second)
	}

	for i := 0; i < 3; i++ {
		if _, err := svc.RunSync(context.Background(), shop.ID, model.SyncTriggerAuto); err != nil {
			t.Fatalf("同步失败: %v", err)
		}
	}

	logs, err := svc.ListLogs(context.Background(), shop.ID, 10)
	if err != nil {
		t.Fatalf("查询历史失败: %v", err)
	}
	if len(logs) != 3 {
		t.Fatalf("历史条数 = %d, 期望 3", len(logs))
	}

	latest, err := svc.GetLatestLog(context.Background(), shop.ID)
	if err != nil {
		t.Fatalf("查询最近记录失败: %v", err)
	}
	if latest.RunID != logs[0].RunID {
		t.Errorf("最近记录 RunID = %s, 期望 %s", latest.RunID, logs[0].RunID)
	}
}

// pageFailSource 首页成功、之后报错的数据源
type pageFailSource struct {
	first []etsy.ReceiptData
	calls int
}

func (s *pageFailSource) ListReceipts(_ context.Context, _ *model.Shop, _ etsy.ReceiptQuery) ([]etsy.ReceiptData, error) {
	s.calls++
	if s.calls == 1 {
		return s.first, nil
	}
	return nil, context.DeadlineExceeded
}
