package repository

import (
	"context"

	"gorm.io/gorm"

	"etsy_crm_v1/internal/model"
)

// ==================== 过滤条件 ====================

// CustomerFilter 客户过滤条件
type CustomerFilter struct {
	ShopID   int64
	Tier     string
	Repeat   *bool // nil 表示不筛选
	Keyword  string
	Page     int
	PageSize int
}

// TierCount 等级分布统计
type TierCount struct {
	Tier  string
	Count int64
}

// ==================== CustomerRepository 客户仓库 ====================

// CustomerRepository 客户仓库接口
type CustomerRepository interface {
	Create(ctx context.Context, customer *model.Customer) error
	GetByID(ctx context.Context, id int64) (*model.Customer, error)
	GetByIDWithFlags(ctx context.Context, id int64) (*model.Customer, error)
	GetByBuyerUserID(ctx context.Context, shopID, buyerUserID int64) (*model.Customer, error)
	List(ctx context.Context, filter CustomerFilter) ([]model.Customer, int64, error)
	Update(ctx context.Context, customer *model.Customer) error

	// 统计
	CountByShop(ctx context.Context, shopID int64) (int64, error)
	CountRepeatByShop(ctx context.Context, shopID int64) (int64, error)
	TierDistribution(ctx context.Context, shopID int64) ([]TierCount, error)
}

type customerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository 创建客户仓库
func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, customer *model.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

func (r *customerRepository) GetByID(ctx context.Context, id int64) (*model.Customer, error) {
	var customer model.Customer
	if err := r.db.WithContext(ctx).First(&customer, id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) GetByIDWithFlags(ctx context.Context, id int64) (*model.Customer, error) {
	var customer model.Customer
	err := r.db.WithContext(ctx).
		Preload("Flags", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		First(&customer, id).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) GetByBuyerUserID(ctx context.Context, shopID, buyerUserID int64) (*model.Customer, error) {
	var customer model.Customer
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND etsy_buyer_user_id = ?", shopID, buyerUserID).
		First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) List(ctx context.Context, filter CustomerFilter) ([]model.Customer, int64, error) {
	var customers []model.Customer
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Customer{})

	if filter.ShopID > 0 {
		db = db.Where("shop_id = ?", filter.ShopID)
	}
	if filter.Tier != "" {
		db = db.Where("tier = ?", filter.Tier)
	}
	if filter.Repeat != nil {
		db = db.Where("is_repeat_customer = ?", *filter.Repeat)
	}
	if filter.Keyword != "" {
		keyword := "%" + filter.Keyword + "%"
		db = db.Where("name LIKE ? OR email LIKE ?", keyword, keyword)
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
		Order("total_spent_amount DESC").
		Limit(filter.PageSize).
		Offset(offset).
		Find(&customers).Error

	return customers, total, err
}

func (r *customerRepository) Update(ctx context.Context, customer *model.Customer) error {
	return r.db.WithContext(ctx).Save(customer).Error
}

func (r *customerRepository) CountByShop(ctx context.Context, shopID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Customer{}).
		Where("shop_id = ?", shopID).Count(&count).Error
	return count, err
}

func (r *customerRepository) CountRepeatByShop(ctx context.Context, shopID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Customer{}).
		Where("shop_id = ? AND is_repeat_customer = ?", shopID, true).Count(&count).Error
	return count, err
}

func (r *customerRepository) TierDistribution(ctx context.Context, shopID int64) ([]TierCount, error) {
	var counts []TierCount
	err := r.db.WithContext(ctx).Model(&model.Customer{}).
		Where("shop_id = ?", shopID).
		Select("tier, COUNT(*) as count").
		Group("tier").
		Scan(&counts).Error
	return counts, err
}

// ==================== CustomerFlagRepository 客户标记仓库 ====================

// CustomerFlagRepository 客户标记仓库接口
type CustomerFlagRepository interface {
	Create(ctx context.Context, flag *model.CustomerFlag) error
	GetByID(ctx context.Context, id int64) (*model.CustomerFlag, error)
	ListByCustomerID(ctx context.Context, customerID int64) ([]model.CustomerFlag, error)
	Resolve(ctx context.Context, id int64) error
}

type customerFlagRepository struct {
	db *gorm.DB
}

// NewCustomerFlagRepository 创建客户标记仓库
func NewCustomerFlagRepository(db *gorm.DB) CustomerFlagRepository {
	return &customerFlagRepository{db: db}
}

func (r *customerFlagRepository) Create(ctx context.Context, flag *model.CustomerFlag) error {
	return r.db.WithContext(ctx).Create(flag).Error
}

func (r *customerFlagRepository) GetByID(ctx context.Context, id int64) (*model.CustomerFlag, error) {
	var flag model.CustomerFlag
	if err := r.db.WithContext(ctx).First(&flag, id).Error; err != nil {
		return nil, err
	}
	return &flag, nil
}

func (r *customerFlagRepository) ListByCustomerID(ctx context.Context, customerID int64) ([]model.CustomerFlag, error) {
	var flags []model.CustomerFlag
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&flags).Error
	return flags, err
}

func (r *customerFlagRepository) Resolve(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&model.CustomerFlag{}).
		Where("id = ?", id).
		Update("resolved_at", gorm.Expr("CURRENT_TIMESTAMP")).Error
}
