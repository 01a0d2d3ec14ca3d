package service

import (
	"time"

	"github.com/shopspring/decimal"

	"etsy_crm_v1/internal/model"
	"etsy_crm_v1/pkg/etsy"
)

// ==================== 管道阶段分类 ====================

// ClassifyStage 根据回执状态推导订单管道阶段
// 规则按优先级从高到低依次判定:
//  1. 未付款        -> needs_attention
//  2. 已发货且已送达 -> delivered
//  3. 已发货        -> shipped
//  4. 承诺发货日已过 -> needs_attention
//  5. 其余          -> new
func ClassifyStage(receipt *etsy.ReceiptData, now time.Time) string {
	if !receipt.IsPaid {
		return model.StageNeedsAttention
	}
	if receipt.IsShipped && receipt.IsDelivered {
		return model.StageDelivered
	}
	if receipt.IsShipped {
		return model.StageShipped
	}
	if receipt.ExpectedShipDate > 0 && time.Unix(receipt.ExpectedShipDate, 0).Before(now) {
		return model.StageNeedsAttention
	}
	return model.StageNew
}

// ==================== 客户等级计算 ====================

var (
	tierSilverThreshold = decimal.NewFromInt(100)
	tierGoldThreshold   = decimal.NewFromInt(200)
	tierVIPThreshold    = decimal.NewFromInt(500)
)

// TierForSpend 根据累计消费金额计算客户等级
// 阈值(主货币单位): <100 standard, [100,200) silver, [200,500) gold, >=500 vip
func TierForSpend(totalSpent decimal.Decimal) string {
	switch {
	case totalSpent.GreaterThanOrEqual(tierVIPThreshold):
		return model.TierVIP
	case totalSpent.GreaterThanOrEqual(tierGoldThreshold):
		return model.TierGold
	case totalSpent.GreaterThanOrEqual(tierSilverThreshold):
		return model.TierSilver
	default:
		return model.TierStandard
	}
}
