package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"etsy_crm_v1/internal/api/dto"
	"etsy_crm_v1/internal/service"
)

// AuthController Etsy 授权接口
type AuthController struct {
	authSvc *service.AuthService
}

// NewAuthController 创建授权控制器
func NewAuthController(authSvc *service.AuthService) *AuthController {
	return &AuthController{authSvc: authSvc}
}

// Login 发起授权
// @Summary 生成 Etsy 授权跳转地址
// @Tags 授权
// @Param shop_id path int true "店铺 ID"
// @Success 200 {object} map[string]string
// @Router /api/v1/auth/shops/{shop_id}/login [get]
func (c *AuthController) Login(ctx *gin.Context) {
	shopID, err := strconv.ParseInt(ctx.Param("shop_id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "店铺 ID 无效"})
		return
	}

	loginURL, err := c.authSvc.GenerateLoginURL(ctx.Request.Context(), shopID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "店铺不存在"})
		return
	}
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "生成授权地址失败"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": gin.H{"login_url": loginURL}})
}

// Callback 授权回调
// @Summary Etsy OAuth 回调
// @Tags 授权
// @Param state query string true "授权 state"
// @Param code query string true "授权码"
// @Success 200 {object} dto.ShopResponse
// @Router /api/v1/auth/callback [get]
func (c *AuthController) Callback(ctx *gin.Context) {
	state := ctx.Query("state")
	code := ctx.Query("code")
	if state == "" || code == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "回调参数缺失"})
		return
	}

	shop, err := c.authSvc.HandleCallback(ctx.Request.Context(), state, code)
	if errors.Is(err, service.ErrInvalidState) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "授权失败: " + err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": dto.ToShopResponse(shop)})
}
