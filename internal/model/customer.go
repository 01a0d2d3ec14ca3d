package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ==================== 客户等级常量 ====================

// Tier 客户等级（由累计消费额派生）
const (
	TierStandard = "standard" // 累计消费 < $100
	TierSilver   = "silver"   // [$100, $200)
	TierGold     = "gold"     // [$200, $500)
	TierVIP      = "vip"      // >= $500
)

// ==================== 客户标记常量 ====================

// FlagType 客户标记类型
const (
	FlagTypeRisk         = "risk"          // 风险客户
	FlagTypeVIP          = "vip"           // 重点客户
	FlagTypeQualityIssue = "quality_issue" // 质量问题投诉
)

// ==================== Customer 客户主表 ====================

// Customer 客户
// 买家 ID 按店铺隔离：同一个 Etsy buyer_user_id 在不同店铺对应不同客户记录
type Customer struct {
	BaseModel

	ShopID          int64 `gorm:"not null;uniqueIndex:idx_shop_buyer"`
	EtsyBuyerUserID int64 `gorm:"not null;uniqueIndex:idx_shop_buyer"`

	Name  string `gorm:"size:255"`
	Email string `gorm:"size:255;index"`

	// 聚合统计（由同步引擎全量重算，不做增量维护）
	OrderCount         int   `gorm:"default:0"`
	TotalSpentAmount   int64 // 分为单位
	AverageOrderAmount int64 // 分为单位，orderCount 为 0 时恒为 0

	FirstOrderAt *time.Time
	LastOrderAt  *time.Time

	IsRepeatCustomer bool   `gorm:"default:false"`
	Tier             string `gorm:"size:20;index;default:'standard'"`

	// 关联
	Flags []CustomerFlag `gorm:"foreignKey:CustomerID"`
}

func (Customer) TableName() string {
	return "customers"
}

// GetTotalSpent 获取累计消费额（元）
func (c *Customer) GetTotalSpent() decimal.Decimal {
	return decimal.New(c.TotalSpentAmount, -2)
}

// GetAverageOrderValue 获取平均客单价（元）
func (c *Customer) GetAverageOrderValue() decimal.Decimal {
	return decimal.New(c.AverageOrderAmount, -2)
}

// ==================== CustomerFlag 客户标记 ====================

// CustomerFlag 客户标记（人工 CRM 操作维护，同步流程不触碰）
type CustomerFlag struct {
	BaseModel

	CustomerID int64  `gorm:"index;not null"`
	FlagType   string `gorm:"size:32;not null"`
	Reason     string `gorm:"type:text"`

	ResolvedAt *time.Time
}

func (CustomerFlag) TableName() string {
	return "customer_flags"
}

// IsResolved 标记是否已处理
func (f *CustomerFlag) IsResolved() bool {
	return f.ResolvedAt != nil
}
