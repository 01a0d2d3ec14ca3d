package etsy

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	// DefaultBaseURL Etsy v3 API 地址
	DefaultBaseURL = "https://openapi.etsy.com/v3"
	// DefaultTokenURL Etsy OAuth Token 地址
	DefaultTokenURL = "https://api.etsy.com/v3/public/oauth/token"
)

// Client Etsy API 客户端
type Client struct {
	http     *resty.Client
	baseURL  string
	tokenURL string
}

// Option 客户端可选配置
type Option func(*Client)

// WithBaseURL 覆盖 API 地址（测试用）
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithTokenURL 覆盖 Token 地址（测试用）
func WithTokenURL(tokenURL string) Option {
	return func(c *Client) { c.tokenURL = tokenURL }
}

// NewClient 创建客户端
func NewClient(opts ...Option) *Client {
	httpClient := resty.New().
		SetTimeout(30 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)

	c := &Client{
		http:     httpClient,
		baseURL:  DefaultBaseURL,
		tokenURL: DefaultTokenURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ==================== 订单列表 ====================

// ReceiptQuery 订单查询参数
type ReceiptQuery struct {
	MinCreated int64 // Unix 秒，0 表示不限
	WasPaid    bool
	Limit      int
	Offset     int
}

type receiptListResp struct {
	Count   int           `json:"count"`
	Results []ReceiptData `json:"results"`
}

// ListReceipts 分页拉取店铺订单
// 返回当前页的 receipt 列表；翻页终止由调用方按短页判定
func (c *Client) ListReceipts(ctx context.Context, apiKey, accessToken string, etsyShopID int64, q ReceiptQuery) ([]ReceiptData, error) {
	req := c.http.R().
		SetContext(ctx).
		SetHeader("x-api-key", apiKey).
		SetHeader("Authorization", "Bearer "+accessToken).
		SetQueryParam("limit", strconv.Itoa(q.Limit)).
		SetQueryParam("offset", strconv.Itoa(q.Offset))

	if q.MinCreated > 0 {
		req.SetQueryParam("min_created", strconv.FormatInt(q.MinCreated, 10))
	}
	if q.WasPaid {
		req.SetQueryParam("was_paid", "true")
	}

	var out receiptListResp
	resp, err := req.
		SetResult(&out).
		Get(fmt.Sprintf("%s/application/shops/%d/receipts", c.baseURL, etsyShopID))
	if err != nil {
		return nil, fmt.Errorf("请求 Etsy API 失败: %w", err)
	}
	if resp.StatusCode() >= 400 {
		return nil, fmt.Errorf("Etsy API 错误 [%d]: %s", resp.StatusCode(), resp.String())
	}

	return out.Results, nil
}

// ==================== Token 刷新 ====================

// RefreshToken 用 refresh_token 换取新的 access/refresh 对
func (c *Client) RefreshToken(ctx context.Context, apiKey, refreshToken string) (*TokenResponse, error) {
	var out TokenResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetFormData(map[string]string{
			"grant_type":    "refresh_token",
			"client_id":     apiKey,
			"refresh_token": refreshToken,
		}).
		SetResult(&out).
		Post(c.tokenURL)
	if err != nil {
		return nil, fmt.Errorf("refresh network error: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("refresh denied by ETSY: %d", resp.StatusCode())
	}
	return &out, nil
}

// ==================== 授权码换 Token ====================

// ExchangeCode 授权码 + PKCE verifier 换取 Token（OAuth 回调用）
func (c *Client) ExchangeCode(ctx context.Context, apiKey, redirectURI, code, verifier string) (*TokenResponse, error) {
	var out TokenResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetFormData(map[string]string{
			"grant_type":    "authorization_code",
			"client_id":     apiKey,
			"redirect_uri":  redirectURI,
			"code":          code,
			"code_verifier": verifier,
		}).
		SetResult(&out).
		Post(c.tokenURL)
	if err != nil {
		return nil, fmt.Errorf("换取 Token 失败: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("ETSY refused token exchange: status %d", resp.StatusCode())
	}
	return &out, nil
}
