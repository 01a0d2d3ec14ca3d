package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"etsy_crm_v1/internal/model"
)

// ==================== 过滤条件 ====================

// OrderFilter 订单过滤条件
type OrderFilter struct {
	ShopID     int64
	CustomerID int64
	Stage      string
	StartDate  *time.Time
	EndDate    *time.Time
	Keyword    string
	Page       int
	PageSize   int
}

// StageCount 管道阶段分布
type StageCount struct {
	Stage string
	Count int64
}

// ==================== OrderRepository 订单仓库 ====================

// OrderRepository 订单仓库接口
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	GetByIDWithItems(ctx context.Context, id int64) (*model.Order, error)
	GetByEtsyReceiptID(ctx context.Context, receiptID int64) (*model.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error)
	ListByCustomerID(ctx context.Context, customerID int64) ([]model.Order, error)
	Update(ctx context.Context, order *model.Order) error
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error

	// 统计
	StageDistribution(ctx context.Context, shopID int64) ([]StageCount, error)
}

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	var order model.Order
	if err := r.db.WithContext(ctx).First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByIDWithItems(ctx context.Context, id int64) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByEtsyReceiptID(ctx context.Context, receiptID int64) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).Where("etsy_receipt_id = ?", receiptID).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Order{})

	if filter.ShopID > 0 {
		db = db.Where("shop_id = ?", filter.ShopID)
	}
	if filter.CustomerID > 0 {
		db = db.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.Stage != "" {
		db = db.Where("stage = ?", filter.Stage)
	}
	if filter.StartDate != nil {
		db = db.Where("etsy_created_at >= ?", filter.StartDate)
	}
	if filter.EndDate != nil {
		db = db.Where("etsy_created_at <= ?", filter.EndDate)
	}
	if filter.Keyword != "" {
		keyword := "%" + filter.Keyword + "%"
		db = db.Where("buyer_name LIKE ? OR buyer_email LIKE ? OR order_number LIKE ?",
			keyword, keyword, keyword)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize

	err := db.
		Preload("Items").
		Order("etsy_created_at DESC").
		Limit(filter.PageSize).
		Offset(offset).
		Find(&orders).Error

	return orders, total, err
}

// ListByCustomerID 查询客户的全部订单（聚合重算用，故意不分页）
func (r *orderRepository) ListByCustomerID(ctx context.Context, customerID int64) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("etsy_created_at ASC").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepository) Update(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Save(order).Error
}

func (r *orderRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", id).Updates(fields).Error
}

func (r *orderRepository) StageDistribution(ctx context.Context, shopID int64) ([]StageCount, error) {
	var counts []StageCount
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("shop_id = ?", shopID).
		Select("stage, COUNT(*) as count").
		Group("stage").
		Scan(&counts).Error
	return counts, err
}

// ==================== OrderItemRepository 订单项仓库 ====================

// OrderItemRepository 订单项仓库接口
type OrderItemRepository interface {
	CreateBatch(ctx context.Context, items []model.OrderItem) error
	GetByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)
}

type orderItemRepository struct {
	db *gorm.DB
}

// NewOrderItemRepository 创建订单项仓库
func NewOrderItemRepository(db *gorm.DB) OrderItemRepository {
	return &orderItemRepository{db: db}
}

func (r *orderItemRepository) CreateBatch(ctx context.Context, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(items, 100).Error
}

func (r *orderItemRepository) GetByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	var items []model.OrderItem
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Find(&items).Error
	return items, err
}
