package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"etsy_crm_v1/internal/model"
	"etsy_crm_v1/internal/repository"
)

// ErrInvalidFlagType 非法的客户标记类型
var ErrInvalidFlagType = errors.New("非法的客户标记类型")

var validFlagTypes = map[string]bool{
	model.FlagTypeRisk:         true,
	model.FlagTypeVIP:          true,
	model.FlagTypeQualityIssue: true,
}

// ==================== CustomerService 客户 CRM 服务 ====================

// CustomerStats 店铺客户统计
type CustomerStats struct {
	TotalCustomers   int64            `json:"total_customers"`
	RepeatCustomers  int64            `json:"repeat_customers"`
	RepeatRate       decimal.Decimal  `json:"repeat_rate"` // [0,1]，保留四位
	TierDistribution map[string]int64 `json:"tier_distribution"`
}

// CustomerService 客户档案与标记管理
type CustomerService struct {
	customerRepo repository.CustomerRepository
	flagRepo     repository.CustomerFlagRepository
	orderRepo    repository.OrderRepository
}

// NewCustomerService 创建客户服务
func NewCustomerService(
	customerRepo repository.CustomerRepository,
	flagRepo repository.CustomerFlagRepository,
	orderRepo repository.OrderRepository,
) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		flagRepo:     flagRepo,
		orderRepo:    orderRepo,
	}
}

// List 分页查询客户
func (s *CustomerService) List(ctx context.Context, filter repository.CustomerFilter) ([]model.Customer, int64, error) {
	return s.customerRepo.List(ctx, filter)
}

// GetDetail 查询客户详情（含标记）
func (s *CustomerService) GetDetail(ctx context.Context, id int64) (*model.Customer, error) {
	return s.customerRepo.GetByIDWithFlags(ctx, id)
}

// ListOrders 查询客户的历史订单
func (s *CustomerService) ListOrders(ctx context.Context, customerID int64) ([]model.Order, error) {
	if _, err := s.customerRepo.GetByID(ctx, customerID); err != nil {
		return nil, err
	}
	return s.orderRepo.ListByCustomerID(ctx, customerID)
}

// AddFlag 给客户打标记
func (s *CustomerService) AddFlag(ctx context.Context, customerID int64, flagType, reason string) (*model.CustomerFlag, error) {
	if !validFlagTypes[flagType] {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFlagType, flagType)
	}
	if _, err := s.customerRepo.GetByID(ctx, customerID); err != nil {
		return nil, err
	}

	flag := &model.CustomerFlag{
		CustomerID: customerID,
		FlagType:   flagType,
		Reason:     reason,
	}
	if err := s.flagRepo.Create(ctx, flag); err != nil {
		return nil, fmt.Errorf("创建客户标记失败: %w", err)
	}
	return flag, nil
}

// ResolveFlag 标记处理完成
func (s *CustomerService) ResolveFlag(ctx context.Context, flagID int64) error {
	if _, err := s.flagRepo.GetByID(ctx, flagID); err != nil {
		return err
	}
	return s.flagRepo.Resolve(ctx, flagID)
}

// Stats 店铺客户统计：总数、复购数、复购率、等级分布
func (s *CustomerService) Stats(ctx context.Context, shopID int64) (*CustomerStats, error) {
	total, err := s.customerRepo.CountByShop(ctx, shopID)
	if err != nil {
		return nil, err
	}
	repeat, err := s.customerRepo.CountRepeatByShop(ctx, shopID)
	if err != nil {
		return nil, err
	}
	tiers, err := s.customerRepo.TierDistribution(ctx, shopID)
	if err != nil {
		return nil, err
	}

	distribution := map[string]int64{
		model.TierStandard: 0,
		model.TierSilver:   0,
		model.TierGold:     0,
		model.TierVIP:      0,
	}
	for _, t := range tiers {
		distribution[t.Tier] = t.Count
	}

	rate := decimal.Zero
	if total > 0 {
		rate = decimal.NewFromInt(repeat).Div(decimal.NewFromInt(total)).Round(4)
	}

	return &CustomerStats{
		TotalCustomers:   total,
		RepeatCustomers:  repeat,
		RepeatRate:       rate,
		TierDistribution: distribution,
	}, nil
}
