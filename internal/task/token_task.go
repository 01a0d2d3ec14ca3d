package task

import (
	"context"
	"time"

	"go.uber.org/zap"

	"etsy_crm_v1/internal/repository"
	"etsy_crm_v1/internal/service"
)

// tokenRefreshAhead 提前刷新窗口：Token 将在此窗口内过期就主动续期
const tokenRefreshAhead = 40 * time.Minute

// TokenKeepAliveTask Token 保活任务
// Etsy access_token 有效期 1 小时，提前续期避免同步时再现场刷新
type TokenKeepAliveTask struct {
	shopRepo repository.ShopRepository
	authSvc  *service.AuthService
}

// NewTokenKeepAliveTask 创建 Token 保活任务
func NewTokenKeepAliveTask(shopRepo repository.ShopRepository, authSvc *service.AuthService) *TokenKeepAliveTask {
	return &TokenKeepAliveTask{shopRepo: shopRepo, authSvc: authSvc}
}

// Run 刷新即将过期的店铺 Token
func (t *TokenKeepAliveTask) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	shops, err := t.shopRepo.FindExpiringShops(ctx, time.Now().Add(tokenRefreshAhead))
	if err != nil {
		zap.S().Errorw("查询待续期店铺失败", "error", err)
		return
	}

	for i := range shops {
		shop := shops[i]
		if err := t.authSvc.RefreshAccessToken(ctx, &shop); err != nil {
			zap.S().Warnw("Token 续期失败", "shop_id", shop.ID, "error", err)
		}
	}
}
