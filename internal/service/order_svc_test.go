package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"etsy_crm_v1/internal/model"
	"etsy_crm_v1/internal/repository"
)

func newTestOrderService(db *gorm.DB) *OrderService {
	return NewOrderService(
		repository.NewOrderRepository(db),
		repository.NewOrderItemRepository(db),
	)
}

func seedOrder(t *testing.T, db *gorm.DB, shopID int64, receiptID int64, stage string) *model.Order {
	t.Helper()
	createdAt := time.Now().Add(-24 * time.Hour)
	order := &model.Order{
		EtsyReceiptID:    receiptID,
		ShopID:           shopID,
		CustomerID:       1,
		OrderNumber:      "10001",
		Stage:            stage,
		BuyerName:        "Jamie Carter",
		GrandTotalAmount: 1999,
		Currency:         "USD",
		IsPaid:           true,
		EtsyCreatedAt:    &createdAt,
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("写入测试订单失败: %v", err)
	}
	return order
}

func TestUpdateStage(t *testing.T) {
	db := newTestDB(t)
	shop := newTestShop(t, db)
	order := seedOrder(t, db, shop.ID, 9001, model.StageNew)
	svc := newTestOrderService(db)

	updated, err := svc.UpdateStage(context.Background(), order.ID, model.StageProcessing, "开始制作")
	if err != nil {
		t.Fatalf("推进阶段失败: %v", err)
	}
	if updated.Stage != model.StageProcessing {
		t.Errorf("阶段 = %s, 期望 processing", updated.Stage)
	}

	history := updated.GetHistory()
	if len(history) == 0 || history[len(history)-1].Event != "stage_changed" {
		t.Error("阶段调整未写入历史")
	}
}

func TestUpdateStageRejectsInvalid(t *testing.T) {
	db := newTestDB(t)
	shop := newTestShop(t, db)
	order := seedOrder(t, db, shop.ID, 9002, model.StageNew)
	svc := newTestOrderService(db)

	_, err := svc.UpdateStage(context.Background(), order.ID, "archived", "")
	if !errors.Is(err, ErrInvalidStage) {
		t.Errorf("期望 ErrInvalidStage, 实际 %v", err)
	}
}

func TestUpdateStageToShippedMarksShipped(t *testing.T) {
	db := newTestDB(t)
	shop := newTestShop(t, db)
	order := seedOrder(t, db, shop.ID, 9003, model.StageReadyToShip)
	svc := newTestOrderService(db)

	updated, err := svc.UpdateStage(context.Background(), order.ID, model.StageShipped, "")
	if err != nil {
		t.Fatalf("推进阶段失败: %v", err)
	}
	if !updated.IsShipped || updated.ShippedAt == nil {
		t.Error("推进到 shipped 应同步标记发货")
	}
}

func TestUpdateNotesAndTags(t *testing.T) {
	db := newTestDB(t)
	shop := newTestShop(t, db)
	order := seedOrder(t, db, shop.ID, 9004, model.StageNew)
	svc := newTestOrderService(db)

	if _, err := svc.UpdateNotes(context.Background(), order.ID, "客户要求加急"); err != nil {
		t.Fatalf("更新备注失败: %v", err)
	}
	updated, err := svc.UpdateTags(context.Background(), order.ID, []string{"加急", "礼品"})
	if err != nil {
		t.Fatalf("更新标签失败: %v", err)
	}

	if updated.Notes != "客户要求加急" {
		t.Errorf("备注 = %s", updated.Notes)
	}
	tags := updated.GetTags()
	if len(tags) != 2 || tags[0] != "加急" {
		t.Errorf("标签 = %v", tags)
	}
}

func TestStageDistributionFillsZeros(t *testing.T) {
	db := newTestDB(t)
	shop := newTestShop(t, db)
	seedOrder(t, db, shop.ID, 9005, model.StageNew)
	seedOrder(t, db, shop.ID, 9006, model.StageNew)
	seedOrder(t, db, shop.ID, 9007, model.StageShipped)
	svc := newTestOrderService(db)

	stats, err := svc.StageDistribution(context.Background(), shop.ID)
	if err != nil {
		t.Fatalf("查询看板统计失败: %v", err)
	}

	if stats[model.StageNew] != 2 || stats[model.StageShipped] != 1 {
		t.Errorf("统计 = %v", stats)
	}
	// 没有订单的阶段也要出现且为 0
	if v, ok := stats[model.StageDelivered]; !ok || v != 0 {
		t.Errorf("缺失阶段应补零: %v", stats)
	}
	if len(stats) != len(model.AllStages) {
		t.Errorf("阶段数 = %d, 期望 %d", len(stats), len(model.AllStages))
	}
}
