package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"etsy_crm_v1/internal/model"
	"etsy_crm_v1/internal/repository"
	"etsy_crm_v1/pkg/cache"
	"etsy_crm_v1/pkg/etsy"
	"etsy_crm_v1/pkg/utils"
)

// ==================== 常量与错误 ====================

const (
	// etsyConnectURL Etsy 授权页地址
	etsyConnectURL = "https://www.etsy.com/oauth/connect"
	// oauthScopes 读取订单与买家邮箱所需的最小权限
	oauthScopes = "transactions_r email_r"
)

// ErrInvalidState 回调 state 无效或已过期
var ErrInvalidState = errors.New("授权 state 无效或已过期，请重新发起授权")

// ==================== AuthService 授权服务 ====================

// AuthService Etsy OAuth 授权与 Token 维护
type AuthService struct {
	client   *etsy.Client
	shopRepo repository.ShopRepository
	states   *cache.StateStore

	apiKey      string
	callbackURL string
}

// NewAuthService 创建授权服务
func NewAuthService(client *etsy.Client, shopRepo repository.ShopRepository, states *cache.StateStore, apiKey, callbackURL string) *AuthService {
	return &AuthService{
		client:      client,
		shopRepo:    shopRepo,
		states:      states,
		apiKey:      apiKey,
		callbackURL: callbackURL,
	}
}

// GenerateLoginURL 为店铺生成 Etsy 授权跳转地址（PKCE S256）
// state 关联 verifier 与店铺 ID，回调时取回
func (s *AuthService) GenerateLoginURL(ctx context.Context, shopID int64) (string, error) {
	if _, err := s.shopRepo.GetByID(ctx, shopID); err != nil {
		return "", fmt.Errorf("查询店铺失败: %w", err)
	}

	verifier, err := utils.GenerateRandomString(64)
	if err != nil {
		return "", fmt.Errorf("生成 verifier 失败: %w", err)
	}
	state, err := utils.GenerateRandomString(32)
	if err != nil {
		return "", fmt.Errorf("生成 state 失败: %w", err)
	}

	if err := s.states.Set(ctx, state, fmt.Sprintf("%d|%s", shopID, verifier)); err != nil {
		return "", fmt.Errorf("保存授权状态失败: %w", err)
	}

	params := url.Values{}
	params.Set("response_type", "code")
	params.Set("client_id", s.apiKey)
	params.Set("redirect_uri", s.callbackURL)
	params.Set("scope", oauthScopes)
	params.Set("state", state)
	params.Set("code_challenge", utils.GenerateCodeChallenge(verifier))
	params.Set("code_challenge_method", "S256")

	return etsyConnectURL + "?" + params.Encode(), nil
}

// HandleCallback 处理授权回调：校验 state、换取 Token、激活店铺
func (s *AuthService) HandleCallback(ctx context.Context, state, code string) (*model.Shop, error) {
	stored, ok := s.states.Get(ctx, state)
	if !ok {
		return nil, ErrInvalidState
	}
	s.states.Delete(ctx, state) // 用完即焚，防重放

	parts := strings.SplitN(stored, "|", 2)
	if len(parts) != 2 {
		return nil, ErrInvalidState
	}
	shopID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return nil, ErrInvalidState
	}
	verifier := parts[1]

	token, err := s.client.ExchangeCode(ctx, s.apiKey, s.callbackURL, code, verifier)
	if err != nil {
		return nil, fmt.Errorf("换取 Token 失败: %w", err)
	}

	shop, err := s.shopRepo.GetByID(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("查询店铺失败: %w", err)
	}

	expiresAt := time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	if err := s.shopRepo.UpdateToken(ctx, shop.ID, token.AccessToken, token.RefreshToken, expiresAt); err != nil {
		return nil, fmt.Errorf("保存 Token 失败: %w", err)
	}

	fields := map[string]interface{}{
		"status": model.ShopStatusActive,
	}
	// Etsy access_token 以 "用户ID." 开头
	if userID := parseUserIDFromToken(token.AccessToken); userID > 0 {
		fields["etsy_user_id"] = userID
	}
	if err := s.shopRepo.UpdateFields(ctx, shop.ID, fields); err != nil {
		return nil, fmt.Errorf("激活店铺失败: %w", err)
	}

	zap.S().Infow("店铺授权完成", "shop_id", shop.ID, "etsy_shop_id", shop.EtsyShopID)
	return s.shopRepo.GetByID(ctx, shop.ID)
}

// RefreshAccessToken 刷新店铺 Token 并落库，原地更新传入的 shop
// Etsy 明确拒绝时把 token_status 置为 auth_invalid，等待人工重新授权
func (s *AuthService) RefreshAccessToken(ctx context.Context, shop *model.Shop) error {
	if shop.RefreshToken == "" {
		return fmt.Errorf("店铺 %d 没有 refresh_token", shop.ID)
	}

	token, err := s.client.RefreshToken(ctx, s.apiKey, shop.RefreshToken)
	if err != nil {
		if updateErr := s.shopRepo.UpdateTokenStatus(ctx, shop.ID, model.TokenStatusInvalid); updateErr != nil {
			zap.S().Errorw("标记 Token 失效失败", "shop_id", shop.ID, "error", updateErr)
		}
		shop.TokenStatus = model.TokenStatusInvalid
		return fmt.Errorf("刷新 Token 被拒绝: %w", err)
	}

	expiresAt := time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	if err := s.shopRepo.UpdateToken(ctx, shop.ID, token.AccessToken, token.RefreshToken, expiresAt); err != nil {
		return fmt.Errorf("保存新 Token 失败: %w", err)
	}

	shop.AccessToken = token.AccessToken
	shop.RefreshToken = token.RefreshToken
	shop.TokenExpiresAt = expiresAt
	shop.TokenStatus = model.TokenStatusValid

	zap.S().Infow("Token 刷新成功", "shop_id", shop.ID, "expires_at", expiresAt)
	return nil
}

// parseUserIDFromToken 从 access_token 前缀解析 Etsy 用户 ID
func parseUserIDFromToken(accessToken string) int64 {
	idx := strings.Index(accessToken, ".")
	if idx <= 0 {
		return 0
	}
	userID, err := strconv.ParseInt(accessToken[:idx], 10, 64)
	if err != nil {
		return 0
	}
	return userID
}
