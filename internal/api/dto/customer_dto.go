package dto

import (
	"time"

	"etsy_crm_v1/internal/model"
)

// ==================== 请求 ====================

// ListCustomersQuery 客户列表查询参数
type ListCustomersQuery struct {
	ShopID   int64  `form:"shop_id"`
	Tier     string `form:"tier"`
	Repeat   *bool  `form:"repeat"`
	Keyword  string `form:"keyword"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// AddFlagRequest 客户标记请求
type AddFlagRequest struct {
	FlagType string `json:"flag_type" binding:"required"`
	Reason   string `json:"reason"`
}

// ==================== 响应 ====================

// CustomerFlagResponse 客户标记响应
type CustomerFlagResponse struct {
	ID         int64      `json:"id"`
	FlagType   string     `json:"flag_type"`
	Reason     string     `json:"reason"`
	ResolvedAt *time.Time `json:"resolved_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

// CustomerResponse 客户响应
type CustomerResponse struct {
	ID                int64                  `json:"id"`
	ShopID            int64                  `json:"shop_id"`
	EtsyBuyerUserID   int64                  `json:"etsy_buyer_user_id"`
	Name              string                 `json:"name"`
	Email             string                 `json:"email"`
	OrderCount        int                    `json:"order_count"`
	TotalSpent        string                 `json:"total_spent"`
	AverageOrderValue string                 `json:"average_order_value"`
	FirstOrderAt      *time.Time             `json:"first_order_at"`
	LastOrderAt       *time.Time             `json:"last_order_at"`
	IsRepeatCustomer  bool                   `json:"is_repeat_customer"`
	Tier              string                 `json:"tier"`
	Flags             []CustomerFlagResponse `json:"flags,omitempty"`
}

// ToCustomerResponse 客户模型转响应
func ToCustomerResponse(c *model.Customer, withFlags bool) *CustomerResponse {
	resp := &CustomerResponse{
		ID:                c.ID,
		ShopID:            c.ShopID,
		EtsyBuyerUserID:   c.EtsyBuyerUserID,
		Name:              c.Name,
		Email:             c.Email,
		OrderCount:        c.OrderCount,
		TotalSpent:        c.GetTotalSpent().StringFixed(2),
		AverageOrderValue: c.GetAverageOrderValue().StringFixed(2),
		FirstOrderAt:      c.FirstOrderAt,
		LastOrderAt:       c.LastOrderAt,
		IsRepeatCustomer:  c.IsRepeatCustomer,
		Tier:              c.Tier,
	}

	if withFlags {
		resp.Flags = make([]CustomerFlagResponse, 0, len(c.Flags))
		for i := range c.Flags {
			resp.Flags = append(resp.Flags, ToCustomerFlagResponse(&c.Flags[i]))
		}
	}
	return resp
}

// ToCustomerFlagResponse 客户标记模型转响应
func ToCustomerFlagResponse(f *model.CustomerFlag) CustomerFlagResponse {
	return CustomerFlagResponse{
		ID:         f.ID,
		FlagType:   f.FlagType,
		Reason:     f.Reason,
		ResolvedAt: f.ResolvedAt,
		CreatedAt:  f.CreatedAt,
	}
}

// ToCustomerResponses 客户列表转响应
func ToCustomerResponses(customers []model.Customer) []*CustomerResponse {
	out := make([]*CustomerResponse, 0, len(customers))
	for i := range customers {
		out = append(out, ToCustomerResponse(&customers[i], false))
	}
	return out
}
