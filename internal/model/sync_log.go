package model

import (
	"time"
)

// ==================== 同步状态常量 ====================

const (
	SyncStatusRunning   = "running"   // 进行中
	SyncStatusSucceeded = "succeeded" // 成功
	SyncStatusFailed    = "failed"    // 失败
)

// ==================== SyncLog 同步日志 ====================

// SyncLog 同步审计日志（追加式）
// 每次同步开始时创建，结束时恰好终结一次，之后不再修改
type SyncLog struct {
	ID     int64  `gorm:"primaryKey;autoIncrement"`
	RunID  string `gorm:"size:36;uniqueIndex"` // uuid
	ShopID int64  `gorm:"index;not null"`

	Trigger string `gorm:"size:16;not null"` // manual / auto
	Status  string `gorm:"size:16;index;default:running"`

	// 本轮计数
	OrdersCreated    int `gorm:"default:0"`
	OrdersUpdated    int `gorm:"default:0"`
	CustomersCreated int `gorm:"default:0"`
	CustomersUpdated int `gorm:"default:0"`

	ErrorMessage string `gorm:"type:text"`

	StartedAt  time.Time `gorm:"index"`
	FinishedAt *time.Time

	// 审计
	CreatedAt time.Time
}

func (SyncLog) TableName() string {
	return "sync_logs"
}

// Duration 同步耗时，未结束时返回 0
func (l *SyncLog) Duration() time.Duration {
	if l.FinishedAt == nil {
		return 0
	}
	return l.FinishedAt.Sub(l.StartedAt)
}
