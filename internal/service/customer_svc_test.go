package service

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"etsy_crm_v1/internal/model"
	"etsy_crm_v1/internal/repository"
)

func newTestCustomerService(db *gorm.DB) *CustomerService {
	return NewCustomerService(
		repository.NewCustomerRepository(db),
		repository.NewCustomerFlagRepository(db),
		repository.NewOrderRepository(db),
	)
}

func seedCustomer(t *testing.T, db *gorm.DB, shopID, buyerUserID int64, tier string, repeat bool) *model.Customer {
	t.Helper()
	customer := &model.Customer{
		ShopID:           shopID,
		EtsyBuyerUserID:  buyerUserID,
		Name:             "Jamie Carter",
		Email:            "jamie@example.com",
		Tier:             tier,
		IsRepeatCustomer: repeat,
	}
	if err := db.Create(customer).Error; err != nil {
		t.Fatalf("写入测试客户失败: %v", err)
	}
	return customer
}

func TestAddAndResolveFlag(t *testing.T) {
	db := newTestDB(t)
	shop := newTestShop(t, db)
	customer := seedCustomer(t, db, shop.ID, 7301, model.TierStandard, false)
	svc := newTestCustomerService(db)

	flag, err := svc.AddFlag(context.Background(), customer.ID, model.FlagTypeQualityIssue, "反馈勺柄开裂")
	if err != nil {
		t.Fatalf("打标记失败: %v", err)
	}
	if flag.IsResolved() {
		t.Error("新标记不应是已处理状态")
	}

	if err := svc.ResolveFlag(context.Background(), flag.ID); err != nil {
		t.Fatalf("处理标记失败: %v", err)
	}

	detail, err := svc.GetDetail(context.Background(), customer.ID)
	if err != nil {
		t.Fatalf("查询客户详情失败: %v", err)
	}
	if len(detail.Flags) != 1 {
		t.Fatalf("标记数 = %d, 期望 1", len(detail.Flags))
	}
	if !detail.Flags[0].IsResolved() {
		t.Error("标记应已处理")
	}
}

func TestAddFlagRejectsUnknownType(t *testing.T) {
	db := newTestDB(t)
	shop := newTestShop(t, db)
	customer := seedCustomer(t, db, shop.ID, 7302, model.TierStandard, false)
	svc := newTestCustomerService(db)

	_, err := svc.AddFlag(context.Background(), customer.ID, "blacklist", "")
	if !errors.Is(err, ErrInvalidFlagType) {
		t.Errorf("期望 ErrInvalidFlagType, 实际 %v", err)
	}
}

func TestCustomerStats(t *testing.T) {
	db := newTestDB(t)
	shop := newTestShop(t, db)
	seedCustomer(t, db, shop.ID, 7303, model.TierStandard, false)
	seedCustomer(t, db, shop.ID, 7304, model.TierGold, true)
	seedCustomer(t, db, shop.ID, 7305, model.TierVIP, true)
	seedCustomer(t, db, shop.ID, 7306, model.TierStandard, false)
	svc := newTestCustomerService(db)

	stats, err := svc.Stats(context.Background(), shop.ID)
	if err != nil {
		t.Fatalf("查询统计失败: %v", err)
	}

	if stats.TotalCustomers != 4 || stats.RepeatCustomers != 2 {
		t.Errorf("客户数 = {total:%d, repeat:%d}, 期望 {4, 2}",
			stats.TotalCustomers, stats.RepeatCustomers)
	}
	if stats.RepeatRate.String() != "0.5" {
		t.Errorf("复购率 = %s, 期望 0.5", stats.RepeatRate)
	}
	if stats.TierDistribution[model.TierStandard] != 2 ||
		stats.TierDistribution[model.TierGold] != 1 ||
		stats.TierDistribution[model.TierVIP] != 1 {
		t.Errorf("等级分布 = %v", stats.TierDistribution)
	}
	// 没有客户的等级也要出现且为 0
	if v, ok := stats.TierDistribution[model.TierSilver]; !ok || v != 0 {
		t.Errorf("缺失等级应补零: %v", stats.TierDistribution)
	}
}

func TestCustomerListFilters(t *testing.T) {
	db := newTestDB(t)
	shop := newTestShop(t, db)
	seedCustomer(t, db, shop.ID, 7307, model.TierGold, true)
	seedCustomer(t, db, shop.ID, 7308, model.TierStandard, false)
	svc := newTestCustomerService(db)

	repeat := true
	customers, total, err := svc.List(context.Background(), repository.CustomerFilter{
		ShopID: shop.ID,
		Repeat: &repeat,
	})
	if err != nil {
		t.Fatalf("查询客户失败: %v", err)
	}
	if total != 1 || len(customers) != 1 {
		t.Fatalf("复购筛选结果 = %d, 期望 1", total)
	}
	if customers[0].EtsyBuyerUserID != 7307 {
		t.Errorf("筛选结果错误: %d", customers[0].EtsyBuyerUserID)
	}
}
