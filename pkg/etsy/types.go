package etsy

// PropertyPersonalization Etsy 个性化定制的固定属性 ID
const PropertyPersonalization int64 = 54

// Money Etsy 金额（最小货币单位 + 除数）
type Money struct {
	Amount       int    `json:"amount"`
	Divisor      int    `json:"divisor"`
	CurrencyCode string `json:"currency_code"`
}

// ToFloat 转换为浮点数（元）
func (m Money) ToFloat() float64 {
	if m.Divisor == 0 {
		return 0
	}
	return float64(m.Amount) / float64(m.Divisor)
}

// ReceiptData Etsy 订单原始数据（receipt 级别）
type ReceiptData struct {
	ReceiptID   int64  `json:"receipt_id"`
	BuyerUserID int64  `json:"buyer_user_id"`
	BuyerEmail  string `json:"buyer_email"`
	Name        string `json:"name"`

	// 收货地址
	FirstLine  string `json:"first_line"`
	SecondLine string `json:"second_line"`
	City       string `json:"city"`
	State      string `json:"state"`
	Zip        string `json:"zip"`
	CountryISO string `json:"country_iso"`

	Status string `json:"status"`

	// 支付 / 物流标记
	IsPaid      bool `json:"is_paid"`
	IsShipped   bool `json:"is_shipped"`
	IsDelivered bool `json:"is_delivered"`

	// 礼物与留言
	IsGift           bool   `json:"is_gift"`
	GiftMessage      string `json:"gift_message"`
	MessageFromBuyer string `json:"message_from_buyer"`

	// 时间戳（Unix 秒）
	CreateTimestamp  int64 `json:"create_timestamp"`
	UpdateTimestamp  int64 `json:"update_timestamp"`
	ExpectedShipDate int64 `json:"expected_ship_date"`

	// 金额
	Grandtotal        Money `json:"grandtotal"`
	Subtotal          Money `json:"subtotal"`
	TotalShippingCost Money `json:"total_shipping_cost"`
	TotalTaxCost      Money `json:"total_tax_cost"`
	DiscountAmt       Money `json:"discount_amt"`

	Transactions []TransactionData `json:"transactions"`
}

// TransactionData Etsy 交易数据（订单项级别）
type TransactionData struct {
	TransactionID int64  `json:"transaction_id"`
	ListingID     int64  `json:"listing_id"`
	Title         string `json:"title"`
	SKU           string `json:"sku"`
	Quantity      int    `json:"quantity"`
	Price         Money  `json:"price"`

	// 图片：优先取首个变体图，缺省回落到商品主图
	MainImageURL string `json:"main_image_url"`

	Variations []Variation `json:"variations"`
}

// Variation Etsy 变体
type Variation struct {
	PropertyID     int64  `json:"property_id"`
	FormattedName  string `json:"formatted_name"`
	FormattedValue string `json:"formatted_value"`
	ImageURL       string `json:"image_url"`
}

// TokenResponse Etsy OAuth Token 响应
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	Error        string `json:"error,omitempty"`
}
