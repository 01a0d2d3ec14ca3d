package dto

import (
	"time"

	"etsy_crm_v1/internal/model"
)

// SyncLogResponse 同步日志响应
type SyncLogResponse struct {
	ID               int64      `json:"id"`
	RunID            string     `json:"run_id"`
	ShopID           int64      `json:"shop_id"`
	Trigger          string     `json:"trigger"`
	Status           string     `json:"status"`
	OrdersCreated    int        `json:"orders_created"`
	OrdersUpdated    int        `json:"orders_updated"`
	CustomersCreated int        `json:"customers_created"`
	CustomersUpdated int        `json:"customers_updated"`
	ErrorMessage     string     `json:"error_message,omitempty"`
	StartedAt        time.Time  `json:"started_at"`
	FinishedAt       *time.Time `json:"finished_at"`
	DurationMs       int64      `json:"duration_ms"`
}

// ToSyncLogResponse 同步日志模型转响应
func ToSyncLogResponse(l *model.SyncLog) *SyncLogResponse {
	return &SyncLogResponse{
		ID:               l.ID,
		RunID:            l.RunID,
		ShopID:           l.ShopID,
		Trigger:          l.Trigger,
		Status:           l.Status,
		OrdersCreated:    l.OrdersCreated,
		OrdersUpdated:    l.OrdersUpdated,
		CustomersCreated: l.CustomersCreated,
		CustomersUpdated: l.CustomersUpdated,
		ErrorMessage:     l.ErrorMessage,
		StartedAt:        l.StartedAt,
		FinishedAt:       l.FinishedAt,
		DurationMs:       l.Duration().Milliseconds(),
	}
}

// ToSyncLogResponses 同步日志列表转响应
func ToSyncLogResponses(logs []model.SyncLog) []*SyncLogResponse {
	out := make([]*SyncLogResponse, 0, len(logs))
	for i := range logs {
		out = append(out, ToSyncLogResponse(&logs[i]))
	}
	return out
}
