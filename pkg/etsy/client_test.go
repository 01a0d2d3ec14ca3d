package etsy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestListReceipts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/application/shops/88001122/receipts" {
			t.Errorf("请求路径 = %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("x-api-key = %s", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("Authorization") != "Bearer token-abc" {
			t.Errorf("Authorization = %s", r.Header.Get("Authorization"))
		}
		q := r.URL.Query()
		if q.Get("limit") != "100" || q.Get("offset") != "200" {
			t.Errorf("分页参数 = limit:%s offset:%s", q.Get("limit"), q.Get("offset"))
		}
		if q.Get("was_paid") != "true" {
			t.Errorf("was_paid = %s", q.Get("was_paid"))
		}
		if q.Get("min_created") != "1700000000" {
			t.Errorf("min_created = %s", q.Get("min_created"))
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"count": 1,
			"results": [{
				"receipt_id": 1001,
				"buyer_user_id": 7001,
				"name": "Jamie Carter",
				"is_paid": true,
				"grandtotal": {"amount": 1999, "divisor": 100, "currency_code": "USD"},
				"transactions": [{
					"transaction_id": 10010,
					"title": "Hand-carved walnut spoon",
					"quantity": 1,
					"price": {"amount": 1999, "divisor": 100, "currency_code": "USD"},
					"variations": [{"property_id": 54, "formatted_name": "Personalization", "formatted_value": "For Mom"}]
				}]
			}]
		}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	receipts, err := client.ListReceipts(context.Background(), "test-key", "token-abc", 88001122, ReceiptQuery{
		MinCreated: 1700000000,
		WasPaid:    true,
		Limit:      100,
		Offset:     200,
	})
	if err != nil {
		t.Fatalf("拉取订单失败: %v", err)
	}

	if len(receipts) != 1 {
		t.Fatalf("订单数 = %d, 期望 1", len(receipts))
	}
	r := receipts[0]
	if r.ReceiptID != 1001 || r.BuyerUserID != 7001 {
		t.Errorf("标识 = {receipt:%d, buyer:%d}", r.ReceiptID, r.BuyerUserID)
	}
	if r.Grandtotal.ToFloat() != 19.99 {
		t.Errorf("总金额 = %v, 期望 19.99", r.Grandtotal.ToFloat())
	}
	if len(r.Transactions) != 1 || r.Transactions[0].Variations[0].PropertyID != PropertyPersonalization {
		t.Error("交易与变体解析错误")
	}
}

func TestListReceiptsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "invalid_token"}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.ListReceipts(context.Background(), "k", "bad", 1, ReceiptQuery{Limit: 100})
	if err == nil {
		t.Fatal("401 应返回错误")
	}
}

func TestRefreshToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("解析表单失败: %v", err)
		}
		if r.PostForm.Get("grant_type") != "refresh_token" {
			t.Errorf("grant_type = %s", r.PostForm.Get("grant_type"))
		}
		if r.PostForm.Get("refresh_token") != "old-refresh" {
			t.Errorf("refresh_token = %s", r.PostForm.Get("refresh_token"))
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token": "new-access", "refresh_token": "new-refresh", "expires_in": 3600}`))
	}))
	defer srv.Close()

	client := NewClient(WithTokenURL(srv.URL))
	token, err := client.RefreshToken(context.Background(), "test-key", "old-refresh")
	if err != nil {
		t.Fatalf("刷新失败: %v", err)
	}
	if token.AccessToken != "new-access" || token.ExpiresIn != 3600 {
		t.Errorf("Token = %+v", token)
	}
}

func TestRefreshTokenDenied(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient(WithTokenURL(srv.URL))
	if _, err := client.RefreshToken(context.Background(), "test-key", "revoked"); err == nil {
		t.Fatal("被拒绝时应返回错误")
	}
}

func TestExchangeCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("解析表单失败: %v", err)
		}
		if r.PostForm.Get("grant_type") != "authorization_code" {
			t.Errorf("grant_type = %s", r.PostForm.Get("grant_type"))
		}
		if r.PostForm.Get("code_verifier") != "verifier-xyz" {
			t.Errorf("code_verifier = %s", r.PostForm.Get("code_verifier"))
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token": "12345678.access", "refresh_token": "12345678.refresh", "expires_in": 3600}`))
	}))
	defer srv.Close()

	client := NewClient(WithTokenURL(srv.URL))
	token, err := client.ExchangeCode(context.Background(), "test-key", "http://localhost/cb", "auth-code", "verifier-xyz")
	if err != nil {
		t.Fatalf("换取 Token 失败: %v", err)
	}
	if token.AccessToken != "12345678.access" {
		t.Errorf("AccessToken = %s", token.AccessToken)
	}
}
