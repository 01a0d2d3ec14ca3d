package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"etsy_crm_v1/internal/model"
	"etsy_crm_v1/pkg/etsy"
)

func TestClassifyStage(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		receipt etsy.ReceiptData
		want    string
	}{
		{
			name:    "未付款优先于一切",
			receipt: etsy.ReceiptData{IsPaid: false, IsShipped: true, IsDelivered: true},
			want:    model.StageNeedsAttention,
		},
		{
			name:    "已发货且已送达",
			receipt: etsy.ReceiptData{IsPaid: true, IsShipped: true, IsDelivered: true},
			want:    model.StageDelivered,
		},
		{
			name:    "已发货未送达",
			receipt: etsy.ReceiptData{IsPaid: true, IsShipped: true},
			want:    model.StageShipped,
		},
		{
			name: "承诺发货日已过",
			receipt: etsy.ReceiptData{
				IsPaid:           true,
				ExpectedShipDate: now.Add(-time.Hour).Unix(),
			},
			want: model.StageNeedsAttention,
		},
		{
			name: "承诺发货日未到",
			receipt: etsy.ReceiptData{
				IsPaid:           true,
				ExpectedShipDate: now.Add(48 * time.Hour).Unix(),
			},
			want: model.StageNew,
		},
		{
			name:    "已付款无发货期限",
			receipt: etsy.ReceiptData{IsPaid: true},
			want:    model.StageNew,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyStage(&tt.receipt, now)
			if got != tt.want {
				t.Errorf("ClassifyStage() = %s, 期望 %s", got, tt.want)
			}
		})
	}
}

func TestTierForSpend(t *testing.T) {
	tests := []struct {
		spent string
		want  string
	}{
		{"0", model.TierStandard},
		{"99.99", model.TierStandard},
		{"100", model.TierSilver},
		{"199.99", model.TierSilver},
		{"200", model.TierGold},
		{"499.99", model.TierGold},
		{"500", model.TierVIP},
		{"1234.56", model.TierVIP},
	}

	for _, tt := range tests {
		spent, err := decimal.NewFromString(tt.spent)
		if err != nil {
			t.Fatalf("解析金额失败: %v", err)
		}
		if got := TierForSpend(spent); got != tt.want {
			t.Errorf("TierForSpend(%s) = %s, 期望 %s", tt.spent, got, tt.want)
		}
	}
}
