package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// ==================== 订单管道阶段常量 ====================

// Stage 看板管道阶段
// new / needs_attention 由同步引擎自动判定；其余阶段只能由人工操作进入，
// 同步不会覆盖已被人工推进的阶段
const (
	StageNew            = "new"             // 新订单
	StageNeedsAttention = "needs_attention" // 待关注（未付款或已逾期）
	StageProcessing     = "processing"      // 制作中
	StageReadyToShip    = "ready_to_ship"   // 待发货
	StageShipped        = "shipped"         // 已发货
	StageDelivered      = "delivered"       // 已签收
)

// AllStages 全部合法阶段
var AllStages = []string{
	StageNew, StageNeedsAttention, StageProcessing,
	StageReadyToShip, StageShipped, StageDelivered,
}

// IsAutoStage 是否为同步引擎可自动覆盖的阶段
func IsAutoStage(stage string) bool {
	return stage == StageNew || stage == StageNeedsAttention
}

// IsValidStage 是否为合法阶段
func IsValidStage(stage string) bool {
	for _, s := range AllStages {
		if s == stage {
			return true
		}
	}
	return false
}

// ==================== 同步触发方式 ====================

const (
	SyncTriggerManual = "manual" // 用户手动触发
	SyncTriggerAuto   = "auto"   // 定时任务触发
)

// ==================== Order 订单主表 ====================

// HistoryEntry 订单历史条目（追加式，不可修改）
type HistoryEntry struct {
	At     time.Time `json:"at"`
	Event  string    `json:"event"`
	Detail string    `json:"detail,omitempty"`
}

// Order 订单
type Order struct {
	ID            int64 `gorm:"primaryKey;autoIncrement"`
	EtsyReceiptID int64 `gorm:"uniqueIndex;not null"` // 幂等键
	ShopID        int64 `gorm:"index;not null"`
	CustomerID    int64 `gorm:"index;not null"`

	OrderNumber string `gorm:"size:32;index"`

	// 看板阶段
	Stage string `gorm:"size:32;index;default:new"`

	// 买家信息
	BuyerName        string `gorm:"size:255"`
	BuyerEmail       string `gorm:"size:255"`
	MessageFromBuyer string `gorm:"type:text"`

	// 礼物
	IsGift      bool   `gorm:"default:false"`
	GiftMessage string `gorm:"type:text"`

	// 收货地址快照（PostgreSQL JSONB）
	ShippingAddress datatypes.JSONMap `gorm:"type:jsonb"`

	// 金额（分为单位存储）
	SubtotalAmount   int64
	ShippingAmount   int64
	TaxAmount        int64
	DiscountAmount   int64
	GrandTotalAmount int64
	Currency         string `gorm:"size:10;default:USD"`

	// 支付与物流
	IsPaid      bool `gorm:"default:false"`
	PaidAt      *time.Time
	IsShipped   bool `gorm:"default:false"`
	ShippedAt   *time.Time
	IsDelivered bool `gorm:"default:false"`

	// 发货期限（来源缺省时为下单时间 + 7 天）
	ShipByDate *time.Time

	// CRM 附加信息
	Tags  datatypes.JSON `gorm:"type:jsonb"` // 字符串数组
	Notes string         `gorm:"type:text"`

	// 历史记录（PostgreSQL JSONB，追加式）
	History datatypes.JSON `gorm:"type:jsonb"`

	// Etsy 时间
	EtsyCreatedAt *time.Time
	EtsyUpdatedAt *time.Time
	EtsySyncedAt  *time.Time

	// 审计字段
	CreatedAt time.Time
	UpdatedAt time.Time

	// 关联
	Items []OrderItem `gorm:"foreignKey:OrderID"`
}

func (*Order) TableName() string {
	return "orders"
}

// GetGrandTotal 获取总金额（元）
func (o *Order) GetGrandTotal() float64 {
	return float64(o.GrandTotalAmount) / 100
}

// GetSubtotal 获取小计金额（元）
func (o *Order) GetSubtotal() float64 {
	return float64(o.SubtotalAmount) / 100
}

// GetShipping 获取运费（元）
func (o *Order) GetShipping() float64 {
	return float64(o.ShippingAmount) / 100
}

// GetTax 获取税费（元）
func (o *Order) GetTax() float64 {
	return float64(o.TaxAmount) / 100
}

// GetDiscount 获取折扣（元）
func (o *Order) GetDiscount() float64 {
	return float64(o.DiscountAmount) / 100
}

// GetShippingAddressField 获取收货地址字段
func (o *Order) GetShippingAddressField(key string) string {
	if o.ShippingAddress == nil {
		return ""
	}
	if v, ok := o.ShippingAddress[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetTags 解析标签列表
func (o *Order) GetTags() []string {
	var tags []string
	if len(o.Tags) > 0 {
		_ = json.Unmarshal(o.Tags, &tags)
	}
	return tags
}

// SetTags 写入标签列表
func (o *Order) SetTags(tags []string) {
	if tags == nil {
		tags = []string{}
	}
	b, _ := json.Marshal(tags)
	o.Tags = datatypes.JSON(b)
}

// GetHistory 解析历史记录
func (o *Order) GetHistory() []HistoryEntry {
	var entries []HistoryEntry
	if len(o.History) > 0 {
		_ = json.Unmarshal(o.History, &entries)
	}
	return entries
}

// AppendHistory 追加一条历史记录
func (o *Order) AppendHistory(at time.Time, event, detail string) {
	entries := append(o.GetHistory(), HistoryEntry{At: at, Event: event, Detail: detail})
	b, _ := json.Marshal(entries)
	o.History = datatypes.JSON(b)
}

// ==================== OrderItem 订单项 ====================

// OrderItem 订单项（仅在订单创建时写入，更新同步不会重建）
type OrderItem struct {
	ID                int64 `gorm:"primaryKey;autoIncrement"`
	OrderID           int64 `gorm:"index;not null"`
	EtsyTransactionID int64 `gorm:"uniqueIndex;not null"`

	// 商品信息
	ListingID int64  `gorm:"index"`
	Title     string `gorm:"size:500"`
	SKU       string `gorm:"size:100;index"`

	// 数量与价格
	Quantity    int `gorm:"default:1"`
	PriceAmount int64
	Currency    string `gorm:"size:10"`

	// 个性化定制内容（从变体中按固定属性 ID 提取）
	Personalization string `gorm:"type:text"`

	// 图片
	ImageURL string `gorm:"size:500"`

	// 变体信息（PostgreSQL JSONB）
	Variations datatypes.JSONMap `gorm:"type:jsonb"`

	// 审计
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (*OrderItem) TableName() string {
	return "order_items"
}

// GetPrice 获取单价（元）
func (i *OrderItem) GetPrice() float64 {
	return float64(i.PriceAmount) / 100
}
