package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"etsy_crm_v1/internal/model"
	"etsy_crm_v1/internal/repository"
	"etsy_crm_v1/pkg/etsy"
)

// ==================== 常量与错误 ====================

const (
	// defaultPageSize 单页拉取数量（Etsy 上限 100）
	defaultPageSize = 100

	// syncLookback 增量同步回溯窗口，覆盖 Etsy 侧迟到的更新
	syncLookback = 24 * time.Hour

	// firstSyncWindow 首次同步拉取的历史窗口
	firstSyncWindow = 30 * 24 * time.Hour

	// defaultShipByDays 来源未提供发货期限时的缺省天数
	defaultShipByDays = 7
)

var (
	// ErrShopNotConnected 店铺尚未完成 Etsy 授权
	ErrShopNotConnected = errors.New("店铺尚未连接 Etsy，请先完成授权")
	// ErrTokenExpired Token 已过期且刷新失败
	ErrTokenExpired = errors.New("店铺 Token 已过期且刷新失败，请重新授权")
)

// ==================== 依赖接口 ====================

// ReceiptSource 订单数据来源（生产为 Etsy API，测试可替换）
type ReceiptSource interface {
	ListReceipts(ctx context.Context, shop *model.Shop, q etsy.ReceiptQuery) ([]etsy.ReceiptData, error)
}

// TokenRefresher Token 刷新器，刷新成功后需原地更新 shop 的 Token 字段并落库
type TokenRefresher interface {
	RefreshAccessToken(ctx context.Context, shop *model.Shop) error
}

// ==================== 同步结果 ====================

// SyncSummary 单轮同步计数
type SyncSummary struct {
	OrdersCreated    int
	OrdersUpdated    int
	CustomersCreated int
	CustomersUpdated int
	ReceiptsFailed   int
}

// ==================== OrderSyncService 订单同步引擎 ====================

// OrderSyncService 订单同步引擎
// 负责分页拉取、转换、幂等落库和客户聚合重算；并发互斥与审计日志由 SyncService 负责
type OrderSyncService struct {
	shopRepo     repository.ShopRepository
	orderRepo    repository.OrderRepository
	itemRepo     repository.OrderItemRepository
	customerRepo repository.CustomerRepository

	source    ReceiptSource
	refresher TokenRefresher

	pageSize int
	now      func() time.Time // 可注入，测试用
}

// NewOrderSyncService 创建订单同步引擎
func NewOrderSyncService(
	shopRepo repository.ShopRepository,
	orderRepo repository.OrderRepository,
	itemRepo repository.OrderItemRepository,
	customerRepo repository.CustomerRepository,
	source ReceiptSource,
	refresher TokenRefresher,
) *OrderSyncService {
	return &OrderSyncService{
		shopRepo:     shopRepo,
		orderRepo:    orderRepo,
		itemRepo:     itemRepo,
		customerRepo: customerRepo,
		source:       source,
		refresher:    refresher,
		pageSize:     defaultPageSize,
		now:          time.Now,
	}
}

// SyncOrders 执行一轮订单同步
// 返回的 SyncSummary 在出错时也包含出错前已累计的计数
func (s *OrderSyncService) SyncOrders(ctx context.Context, shopID int64) (*SyncSummary, error) {
	summary := &SyncSummary{}

	shop, err := s.shopRepo.GetByID(ctx, shopID)
	if err != nil {
		return summary, fmt.Errorf("查询店铺失败: %w", err)
	}
	if !shop.IsConnected() {
		return summary, ErrShopNotConnected
	}

	now := s.now()

	// Token 过期时最多刷新一次，刷新失败直接终止本轮
	if shop.TokenExpired(now) {
		if s.refresher == nil {
			return summary, ErrTokenExpired
		}
		if err := s.refresher.RefreshAccessToken(ctx, shop); err != nil {
			return summary, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
	}

	// 水位线：有记录时回溯 24 小时兜住迟到更新，首次同步拉取近 30 天
	var minCreated time.Time
	if shop.LastOrderSyncAt != nil {
		minCreated = shop.LastOrderSyncAt.Add(-syncLookback)
	} else {
		minCreated = now.Add(-firstSyncWindow)
	}

	offset := 0
	for {
		receipts, err := s.source.ListReceipts(ctx, shop, etsy.ReceiptQuery{
			MinCreated: minCreated.Unix(),
			WasPaid:    true,
			Limit:      s.pageSize,
			Offset:     offset,
		})
		if err != nil {
			return summary, fmt.Errorf("拉取 Etsy 订单失败 (offset=%d): %w", offset, err)
		}

		for i := range receipts {
			if err := s.processReceipt(ctx, shop, &receipts[i], summary, now); err != nil {
				// 单条失败不中断整轮，记录后继续
				summary.ReceiptsFailed++
				zap.S().Warnw("同步单条订单失败",
					"shop_id", shop.ID,
					"receipt_id", receipts[i].ReceiptID,
					"error", err,
				)
			}
		}

		// 短页即末页
		if len(receipts) < s.pageSize {
			break
		}
		offset += s.pageSize
	}

	return summary, nil
}

// ==================== 单条回执处理 ====================

// processReceipt 处理单条回执：客户 upsert -> 订单 upsert -> 聚合重算
func (s *OrderSyncService) processReceipt(ctx context.Context, shop *model.Shop, receipt *etsy.ReceiptData, summary *SyncSummary, now time.Time) error {
	if receipt.ReceiptID == 0 || receipt.BuyerUserID == 0 {
		return fmt.Errorf("回执缺少必要标识 (receipt_id=%d, buyer_user_id=%d)", receipt.ReceiptID, receipt.BuyerUserID)
	}

	// ---------- 客户 upsert（按店铺 + 买家 ID）----------
	customerCreated := false
	prevOrderCount := 0

	customer, err := s.customerRepo.GetByBuyerUserID(ctx, shop.ID, receipt.BuyerUserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		customer = &model.Customer{
			ShopID:          shop.ID,
			EtsyBuyerUserID: receipt.BuyerUserID,
			Name:            receipt.Name,
			Email:           receipt.BuyerEmail,
			Tier:            model.TierStandard,
		}
		if err := s.customerRepo.Create(ctx, customer); err != nil {
			return fmt.Errorf("创建客户失败: %w", err)
		}
		customerCreated = true
	} else if err != nil {
		return fmt.Errorf("查询客户失败: %w", err)
	} else {
		prevOrderCount = customer.OrderCount
		// 买家资料以最新回执为准
		if receipt.Name != "" {
			customer.Name = receipt.Name
		}
		if receipt.BuyerEmail != "" {
			customer.Email = receipt.BuyerEmail
		}
	}

	// ---------- 订单 upsert（按 receipt_id 幂等）----------
	existing, err := s.orderRepo.GetByEtsyReceiptID(ctx, receipt.ReceiptID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		order := s.transformReceipt(shop, receipt, customer.ID, now)
		order.AppendHistory(now, "order_synced", "首次从 Etsy 同步")
		if err := s.orderRepo.Create(ctx, order); err != nil {
			return fmt.Errorf("创建订单失败: %w", err)
		}

		items := s.transformItems(order.ID, receipt)
		if err := s.itemRepo.CreateBatch(ctx, items); err != nil {
			return fmt.Errorf("创建订单项失败: %w", err)
		}
		summary.OrdersCreated++

	case err != nil:
		return fmt.Errorf("查询订单失败: %w", err)

	default:
		if err := s.applyReceiptUpdate(ctx, existing, receipt, now); err != nil {
			return fmt.Errorf("更新订单失败: %w", err)
		}
		summary.OrdersUpdated++
	}

	// ---------- 客户聚合全量重算 ----------
	if err := s.recomputeCustomer(ctx, customer); err != nil {
		return fmt.Errorf("重算客户聚合失败: %w", err)
	}

	if customerCreated {
		summary.CustomersCreated++
	} else if customer.OrderCount != prevOrderCount {
		summary.CustomersUpdated++
	}
	return nil
}

// applyReceiptUpdate 把最新回执整体合并进已存在的订单
// 除阶段外的可变字段全部以回执为准重算；人工推进过的阶段不被覆盖，
// 订单项在创建后不再重建
func (s *OrderSyncService) applyReceiptUpdate(ctx context.Context, order *model.Order, receipt *etsy.ReceiptData, now time.Time) error {
	newStage := ClassifyStage(receipt, now)
	if model.IsAutoStage(order.Stage) && order.Stage != newStage {
		order.AppendHistory(now, "stage_changed",
			fmt.Sprintf("同步推进: %s -> %s", order.Stage, newStage))
		order.Stage = newStage
	}

	if receipt.IsPaid && !order.IsPaid {
		order.IsPaid = true
		paidAt := now
		order.PaidAt = &paidAt
	}
	if receipt.IsShipped && !order.IsShipped {
		order.IsShipped = true
		shippedAt := now
		order.ShippedAt = &shippedAt
	}
	order.IsDelivered = receipt.IsDelivered

	order.BuyerName = receipt.Name
	order.BuyerEmail = receipt.BuyerEmail
	order.ShippingAddress = shippingAddressOf(receipt)

	order.SubtotalAmount = centsOf(receipt.Subtotal)
	order.ShippingAmount = centsOf(receipt.TotalShippingCost)
	order.TaxAmount = centsOf(receipt.TotalTaxCost)
	order.DiscountAmount = centsOf(receipt.DiscountAmt)
	order.GrandTotalAmount = centsOf(receipt.Grandtotal)

	// 买家留言与礼物内容在 Etsy 侧清空时本地也清空
	order.MessageFromBuyer = receipt.MessageFromBuyer
	order.IsGift = receipt.IsGift
	order.GiftMessage = receipt.GiftMessage

	shipBy := shipByOf(receipt)
	order.ShipByDate = &shipBy

	if receipt.UpdateTimestamp > 0 {
		updatedAt := time.Unix(receipt.UpdateTimestamp, 0)
		order.EtsyUpdatedAt = &updatedAt
	}
	syncedAt := now
	order.EtsySyncedAt = &syncedAt

	return s.orderRepo.Update(ctx, order)
}

// recomputeCustomer 全量重算客户聚合（订单数、消费额、复购、等级）
func (s *OrderSyncService) recomputeCustomer(ctx context.Context, customer *model.Customer) error {
	orders, err := s.orderRepo.ListByCustomerID(ctx, customer.ID)
	if err != nil {
		return err
	}

	var totalSpent int64
	var first, last *time.Time
	for i := range orders {
		totalSpent += orders[i].GrandTotalAmount
		if t := orders[i].EtsyCreatedAt; t != nil {
			if first == nil || t.Before(*first) {
				first = t
			}
			if last == nil || t.After(*last) {
				last = t
			}
		}
	}

	customer.OrderCount = len(orders)
	customer.TotalSpentAmount = totalSpent
	if len(orders) > 0 {
		customer.AverageOrderAmount = totalSpent / int64(len(orders))
	} else {
		customer.AverageOrderAmount = 0
	}
	customer.FirstOrderAt = first
	customer.LastOrderAt = last
	customer.IsRepeatCustomer = len(orders) >= 2
	customer.Tier = TierForSpend(decimal.New(totalSpent, -2))

	return s.customerRepo.Update(ctx, customer)
}

// ==================== 回执转换 ====================

// transformReceipt 把 Etsy 回执转换为订单（仅创建时调用）
func (s *OrderSyncService) transformReceipt(shop *model.Shop, receipt *etsy.ReceiptData, customerID int64, now time.Time) *model.Order {
	createdAt := time.Unix(receipt.CreateTimestamp, 0)

	order := &model.Order{
		EtsyReceiptID: receipt.ReceiptID,
		ShopID:        shop.ID,
		CustomerID:    customerID,
		OrderNumber:   strconv.FormatInt(receipt.ReceiptID, 10),
		Stage:         ClassifyStage(receipt, now),

		BuyerName:        receipt.Name,
		BuyerEmail:       receipt.BuyerEmail,
		MessageFromBuyer: receipt.MessageFromBuyer,

		IsGift:      receipt.IsGift,
		GiftMessage: receipt.GiftMessage,

		ShippingAddress: shippingAddressOf(receipt),

		SubtotalAmount:   centsOf(receipt.Subtotal),
		ShippingAmount:   centsOf(receipt.TotalShippingCost),
		TaxAmount:        centsOf(receipt.TotalTaxCost),
		DiscountAmount:   centsOf(receipt.DiscountAmt),
		GrandTotalAmount: centsOf(receipt.Grandtotal),

		IsPaid:      receipt.IsPaid,
		IsShipped:   receipt.IsShipped,
		IsDelivered: receipt.IsDelivered,
	}

	if order.Currency = receipt.Grandtotal.CurrencyCode; order.Currency == "" {
		order.Currency = shop.CurrencyCode
	}

	if receipt.IsPaid {
		paidAt := createdAt
		order.PaidAt = &paidAt
	}
	if receipt.IsShipped {
		shippedAt := now
		order.ShippedAt = &shippedAt
	}

	shipBy := shipByOf(receipt)
	order.ShipByDate = &shipBy

	order.EtsyCreatedAt = &createdAt
	if receipt.UpdateTimestamp > 0 {
		updatedAt := time.Unix(receipt.UpdateTimestamp, 0)
		order.EtsyUpdatedAt = &updatedAt
	}
	syncedAt := now
	order.EtsySyncedAt = &syncedAt

	return order
}

// transformItems 把交易列表转换为订单项
func (s *OrderSyncService) transformItems(orderID int64, receipt *etsy.ReceiptData) []model.OrderItem {
	items := make([]model.OrderItem, 0, len(receipt.Transactions))
	for _, txn := range receipt.Transactions {
		variations := datatypes.JSONMap{}
		for _, v := range txn.Variations {
			if v.FormattedName != "" {
				variations[v.FormattedName] = v.FormattedValue
			}
		}

		items = append(items, model.OrderItem{
			OrderID:           orderID,
			EtsyTransactionID: txn.TransactionID,
			ListingID:         txn.ListingID,
			Title:             txn.Title,
			SKU:               txn.SKU,
			Quantity:          txn.Quantity,
			PriceAmount:       centsOf(txn.Price),
			Currency:          txn.Price.CurrencyCode,
			Personalization:   extractPersonalization(txn.Variations),
			ImageURL:          pickItemImage(&txn),
			Variations:        variations,
		})
	}
	return items
}

// shippingAddressOf 收货地址快照
func shippingAddressOf(receipt *etsy.ReceiptData) datatypes.JSONMap {
	return datatypes.JSONMap{
		"name":        receipt.Name,
		"first_line":  receipt.FirstLine,
		"second_line": receipt.SecondLine,
		"city":        receipt.City,
		"state":       receipt.State,
		"zip":         receipt.Zip,
		"country_iso": receipt.CountryISO,
	}
}

// shipByOf 发货期限，来源缺省时为下单时间 + 7 天
func shipByOf(receipt *etsy.ReceiptData) time.Time {
	if receipt.ExpectedShipDate > 0 {
		return time.Unix(receipt.ExpectedShipDate, 0)
	}
	return time.Unix(receipt.CreateTimestamp, 0).AddDate(0, 0, defaultShipByDays)
}

// extractPersonalization 提取个性化定制内容（固定属性 ID，取首个匹配）
func extractPersonalization(variations []etsy.Variation) string {
	for _, v := range variations {
		if v.PropertyID == etsy.PropertyPersonalization {
			return v.FormattedValue
		}
	}
	return ""
}

// pickItemImage 选择订单项图片：优先首个带图变体，回落到商品主图
func pickItemImage(txn *etsy.TransactionData) string {
	for _, v := range txn.Variations {
		if v.ImageURL != "" {
			return v.ImageURL
		}
	}
	return txn.MainImageURL
}

// centsOf 把 Etsy Money 换算为分；divisor 缺省按 100 处理
func centsOf(m etsy.Money) int64 {
	divisor := m.Divisor
	if divisor <= 0 {
		divisor = 100
	}
	return int64(m.Amount) * 100 / int64(divisor)
}

// ==================== Etsy 数据源适配 ====================

type etsyReceiptSource struct {
	client *etsy.Client
	apiKey string
}

// NewEtsyReceiptSource 基于 Etsy API 客户端创建订单数据源
func NewEtsyReceiptSource(client *etsy.Client, apiKey string) ReceiptSource {
	return &etsyReceiptSource{client: client, apiKey: apiKey}
}

func (s *etsyReceiptSource) ListReceipts(ctx context.Context, shop *model.Shop, q etsy.ReceiptQuery) ([]etsy.ReceiptData, error) {
	return s.client.ListReceipts(ctx, s.apiKey, shop.AccessToken, shop.EtsyShopID, q)
}
