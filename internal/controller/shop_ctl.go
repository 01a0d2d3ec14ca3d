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

// ShopController 店铺接口
type ShopController struct {
	shopSvc *service.ShopService
}

// NewShopController 创建店铺控制器
func NewShopController(shopSvc *service.ShopService) *ShopController {
	return &ShopController{shopSvc: shopSvc}
}

// Register 登记店铺
// @Summary 登记 Etsy 店铺
// @Tags 店铺
// @Param body body dto.RegisterShopRequest true "店铺信息"
// @Success 200 {object} dto.ShopResponse
// @Router /api/v1/shops [post]
func (c *ShopController) Register(ctx *gin.Context) {
	var req dto.RegisterShopRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	shop, err := c.shopSvc.Register(ctx.Request.Context(), req.EtsyShopID, req.ShopName, req.CurrencyCode)
	if errors.Is(err, service.ErrShopExists) {
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "登记店铺失败"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": dto.ToShopResponse(shop)})
}

// List 店铺列表
// @Summary 店铺列表
// @Tags 店铺
// @Success 200 {array} dto.ShopResponse
// @Router /api/v1/shops [get]
func (c *ShopController) List(ctx *gin.Context) {
	shops, err := c.shopSvc.List(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "查询店铺失败"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": dto.ToShopResponses(shops)})
}

// Detail 店铺详情
// @Summary 店铺详情
// @Tags 店铺
// @Param shop_id path int true "店铺 ID"
// @Success 200 {object} dto.ShopResponse
// @Router /api/v1/shops/{shop_id} [get]
func (c *ShopController) Detail(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("shop_id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "店铺 ID 无效"})
		return
	}

	shop, err := c.shopSvc.Get(ctx.Request.Context(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "店铺不存在"})
		return
	}
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "查询店铺失败"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": dto.ToShopResponse(shop)})
}

// Update 更新设置
// @Summary 更新店铺设置
// @Tags 店铺
// @Param shop_id path int true "店铺 ID"
// @Param body body dto.UpdateShopRequest true "设置项"
// @Success 200 {object} dto.ShopResponse
// @Router /api/v1/shops/{shop_id} [put]
func (c *ShopController) Update(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("shop_id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "店铺 ID 无效"})
		return
	}
	var req dto.UpdateShopRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	shop, err := c.shopSvc.UpdateSettings(ctx.Request.Context(), id, req.ShopName, req.AutoSyncEnabled)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "店铺不存在"})
		return
	}
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "更新店铺设置失败"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": dto.ToShopResponse(shop)})
}

// Disconnect 断开授权
// @Summary 断开 Etsy 授权
// @Tags 店铺
// @Param shop_id path int true "店铺 ID"
// @Success 200 {object} map[string]string
// @Router /api/v1/shops/{shop_id}/disconnect [post]
func (c *ShopController) Disconnect(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("shop_id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "店铺 ID 无效"})
		return
	}

	err = c.shopSvc.Disconnect(ctx.Request.Context(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "店铺不存在"})
		return
	}
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "断开授权失败"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "已断开授权"}})
}
