package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"etsy_crm_v1/internal/model"
	"etsy_crm_v1/internal/repository"
)

// ErrInvalidStage 非法的管道阶段
var ErrInvalidStage = errors.New("非法的管道阶段")

// ==================== OrderService 订单 CRM 服务 ====================

// OrderService 订单看板与 CRM 操作
type OrderService struct {
	orderRepo repository.OrderRepository
	itemRepo  repository.OrderItemRepository
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, itemRepo repository.OrderItemRepository) *OrderService {
	return &OrderService{orderRepo: orderRepo, itemRepo: itemRepo}
}

// List 分页查询订单
func (s *OrderService) List(ctx context.Context, filter repository.OrderFilter) ([]model.Order, int64, error) {
	return s.orderRepo.List(ctx, filter)
}

// GetDetail 查询订单详情（含订单项）
func (s *OrderService) GetDetail(ctx context.Context, id int64) (*model.Order, error) {
	return s.orderRepo.GetByIDWithItems(ctx, id)
}

// UpdateStage 人工推进管道阶段
// 人工设置的阶段不会被后续同步覆盖（除非推回 new / needs_attention）
func (s *OrderService) UpdateStage(ctx context.Context, id int64, stage, note string) (*model.Order, error) {
	if !model.IsValidStage(stage) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStage, stage)
	}

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Stage == stage {
		return order, nil
	}

	detail := fmt.Sprintf("人工调整: %s -> %s", order.Stage, stage)
	if note != "" {
		detail += "，备注: " + note
	}
	order.AppendHistory(time.Now(), "stage_changed", detail)
	order.Stage = stage

	if stage == model.StageShipped && !order.IsShipped {
		order.IsShipped = true
		shippedAt := time.Now()
		order.ShippedAt = &shippedAt
	}

	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("更新订单阶段失败: %w", err)
	}
	return order, nil
}

// UpdateNotes 更新内部备注
func (s *OrderService) UpdateNotes(ctx context.Context, id int64, notes string) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Notes = notes
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("更新订单备注失败: %w", err)
	}
	return order, nil
}

// UpdateTags 整体替换标签列表
func (s *OrderService) UpdateTags(ctx context.Context, id int64, tags []string) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	order.SetTags(tags)
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("更新订单标签失败: %w", err)
	}
	return order, nil
}

// StageDistribution 看板各阶段订单数（缺失阶段补零）
func (s *OrderService) StageDistribution(ctx context.Context, shopID int64) (map[string]int64, error) {
	counts, err := s.orderRepo.StageDistribution(ctx, shopID)
	if err != nil {
		return nil, err
	}

	result := make(map[string]int64, len(model.AllStages))
	for _, stage := range model.AllStages {
		result[stage] = 0
	}
	for _, c := range counts {
		result[c.Stage] = c.Count
	}
	return result, nil
}
