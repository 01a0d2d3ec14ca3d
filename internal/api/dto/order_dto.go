package dto

import (
	"time"

	"etsy_crm_v1/internal/model"
)

// ==================== 请求 ====================

// ListOrdersQuery 订单列表查询参数
type ListOrdersQuery struct {
	ShopID     int64  `form:"shop_id"`
	CustomerID int64  `form:"customer_id"`
	Stage      string `form:"stage"`
	Keyword    string `form:"keyword"`
	StartDate  string `form:"start_date"` // RFC3339
	EndDate    string `form:"end_date"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
}

// UpdateStageRequest 阶段调整请求
type UpdateStageRequest struct {
	Stage string `json:"stage" binding:"required"`
	Note  string `json:"note"`
}

// UpdateNotesRequest 备注更新请求
type UpdateNotesRequest struct {
	Notes string `json:"notes"`
}

// UpdateTagsRequest 标签更新请求
type UpdateTagsRequest struct {
	Tags []string `json:"tags" binding:"required"`
}

// ==================== 响应 ====================

// OrderItemResponse 订单项响应
type OrderItemResponse struct {
	ID              int64                  `json:"id"`
	ListingID       int64                  `json:"listing_id"`
	Title           string                 `json:"title"`
	SKU             string                 `json:"sku"`
	Quantity        int                    `json:"quantity"`
	Price           float64                `json:"price"`
	Currency        string                 `json:"currency"`
	Personalization string                 `json:"personalization"`
	ImageURL        string                 `json:"image_url"`
	Variations      map[string]interface{} `json:"variations"`
}

// OrderResponse 订单响应
type OrderResponse struct {
	ID               int64                  `json:"id"`
	EtsyReceiptID    int64                  `json:"etsy_receipt_id"`
	ShopID           int64                  `json:"shop_id"`
	CustomerID       int64                  `json:"customer_id"`
	OrderNumber      string                 `json:"order_number"`
	Stage            string                 `json:"stage"`
	BuyerName        string                 `json:"buyer_name"`
	BuyerEmail       string                 `json:"buyer_email"`
	MessageFromBuyer string                 `json:"message_from_buyer,omitempty"`
	IsGift           bool                   `json:"is_gift"`
	GiftMessage      string                 `json:"gift_message,omitempty"`
	ShippingAddress  map[string]interface{} `json:"shipping_address"`
	Subtotal         float64                `json:"subtotal"`
	Shipping         float64                `json:"shipping"`
	Tax              float64                `json:"tax"`
	Discount         float64                `json:"discount"`
	GrandTotal       float64                `json:"grand_total"`
	Currency         string                 `json:"currency"`
	IsPaid           bool                   `json:"is_paid"`
	IsShipped        bool                   `json:"is_shipped"`
	IsDelivered      bool                   `json:"is_delivered"`
	ShipByDate       *time.Time             `json:"ship_by_date"`
	Tags             []string               `json:"tags"`
	Notes            string                 `json:"notes"`
	History          []model.HistoryEntry   `json:"history,omitempty"`
	EtsyCreatedAt    *time.Time             `json:"etsy_created_at"`
	EtsySyncedAt     *time.Time             `json:"etsy_synced_at"`
	Items            []OrderItemResponse    `json:"items,omitempty"`
}

// ToOrderResponse 订单模型转响应
func ToOrderResponse(o *model.Order, withDetail bool) *OrderResponse {
	resp := &OrderResponse{
		ID:               o.ID,
		EtsyReceiptID:    o.EtsyReceiptID,
		ShopID:           o.ShopID,
		CustomerID:       o.CustomerID,
		OrderNumber:      o.OrderNumber,
		Stage:            o.Stage,
		BuyerName:        o.BuyerName,
		BuyerEmail:       o.BuyerEmail,
		MessageFromBuyer: o.MessageFromBuyer,
		IsGift:           o.IsGift,
		GiftMessage:      o.GiftMessage,
		ShippingAddress:  o.ShippingAddress,
		Subtotal:         o.GetSubtotal(),
		Shipping:         o.GetShipping(),
		Tax:              o.GetTax(),
		Discount:         o.GetDiscount(),
		GrandTotal:       o.GetGrandTotal(),
		Currency:         o.Currency,
		IsPaid:           o.IsPaid,
		IsShipped:        o.IsShipped,
		IsDelivered:      o.IsDelivered,
		ShipByDate:       o.ShipByDate,
		Tags:             o.GetTags(),
		Notes:            o.Notes,
		EtsyCreatedAt:    o.EtsyCreatedAt,
		EtsySyncedAt:     o.EtsySyncedAt,
	}

	if withDetail {
		resp.History = o.GetHistory()
		resp.Items = make([]OrderItemResponse, 0, len(o.Items))
		for i := range o.Items {
			resp.Items = append(resp.Items, ToOrderItemResponse(&o.Items[i]))
		}
	}
	return resp
}

// ToOrderItemResponse 订单项模型转响应
func ToOrderItemResponse(i *model.OrderItem) OrderItemResponse {
	return OrderItemResponse{
		ID:              i.ID,
		ListingID:       i.ListingID,
		Title:           i.Title,
		SKU:             i.SKU,
		Quantity:        i.Quantity,
		Price:           i.GetPrice(),
		Currency:        i.Currency,
		Personalization: i.Personalization,
		ImageURL:        i.ImageURL,
		Variations:      i.Variations,
	}
}

// ToOrderResponses 订单列表转响应
func ToOrderResponses(orders []model.Order) []*OrderResponse {
	out := make([]*OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, ToOrderResponse(&orders[i], false))
	}
	return out
}
