package controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"etsy_crm_v1/internal/api/dto"
	"etsy_crm_v1/internal/repository"
	"etsy_crm_v1/internal/service"
)

// OrderController 订单接口
type OrderController struct {
	orderSvc *service.OrderService
}

// NewOrderController 创建订单控制器
func NewOrderController(orderSvc *service.OrderService) *OrderController {
	return &OrderController{orderSvc: orderSvc}
}

// List 订单列表
// @Summary 订单列表
// @Tags 订单
// @Param shop_id query int false "店铺 ID"
// @Param stage query string false "管道阶段"
// @Param keyword query string false "搜索关键词（买家姓名/邮箱/订单号）"
// @Success 200 {object} dto.PageResult
// @Router /api/v1/orders [get]
func (c *OrderController) List(ctx *gin.Context) {
	var query dto.ListOrdersQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	filter := repository.OrderFilter{
		ShopID:     query.ShopID,
		CustomerID: query.CustomerID,
		Stage:      query.Stage,
		Keyword:    query.Keyword,
		Page:       query.Page,
		PageSize:   query.PageSize,
	}
	if query.StartDate != "" {
		if t, err := time.Parse(time.RFC3339, query.StartDate); err == nil {
			filter.StartDate = &t
		}
	}
	if query.EndDate != "" {
		if t, err := time.Parse(time.RFC3339, query.EndDate); err == nil {
			filter.EndDate = &t
		}
	}

	orders, total, err := c.orderSvc.List(ctx.Request.Context(), filter)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "查询订单失败"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"data": dto.NewPageResult(dto.ToOrderResponses(orders), total, filter.Page, filter.PageSize),
	})
}

// Detail 订单详情
// @Summary 订单详情（含订单项与历史）
// @Tags 订单
// @Param id path int true "订单 ID"
// @Success 200 {object} dto.OrderResponse
// @Router /api/v1/orders/{id} [get]
func (c *OrderController) Detail(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "订单 ID 无效"})
		return
	}

	order, err := c.orderSvc.GetDetail(ctx.Request.Context(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "订单不存在"})
		return
	}
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "查询订单失败"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": dto.ToOrderResponse(order, true)})
}

// UpdateStage 调整管道阶段
// @Summary 人工推进管道阶段
// @Tags 订单
// @Param id path int true "订单 ID"
// @Param body body dto.UpdateStageRequest true "目标阶段"
// @Success 200 {object} dto.OrderResponse
// @Router /api/v1/orders/{id}/stage [put]
func (c *OrderController) UpdateStage(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "订单 ID 无效"})
		return
	}
	var req dto.UpdateStageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	order, err := c.orderSvc.UpdateStage(ctx.Request.Context(), id, req.Stage, req.Note)
	switch {
	case errors.Is(err, service.ErrInvalidStage):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, gorm.ErrRecordNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "订单不存在"})
	case err != nil:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "更新阶段失败"})
	default:
		ctx.JSON(http.StatusOK, gin.H{"data": dto.ToOrderResponse(order, false)})
	}
}

// UpdateNotes 更新备注
// @Summary 更新订单内部备注
// @Tags 订单
// @Param id path int true "订单 ID"
// @Param body body dto.UpdateNotesRequest true "备注内容"
// @Success 200 {object} dto.OrderResponse
// @Router /api/v1/orders/{id}/notes [put]
func (c *OrderController) UpdateNotes(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "订单 ID 无效"})
		return
	}
	var req dto.UpdateNotesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	order, err := c.orderSvc.UpdateNotes(ctx.Request.Context(), id, req.Notes)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "订单不存在"})
		return
	}
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "更新备注失败"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": dto.ToOrderResponse(order, false)})
}

// UpdateTags 更新标签
// @Summary 替换订单标签
// @Tags 订单
// @Param id path int true "订单 ID"
// @Param body body dto.UpdateTagsRequest true "标签列表"
// @Success 200 {object} dto.OrderResponse
// @Router /api/v1/orders/{id}/tags [put]
func (c *OrderController) UpdateTags(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "订单 ID 无效"})
		return
	}
	var req dto.UpdateTagsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	order, err := c.orderSvc.UpdateTags(ctx.Request.Context(), id, req.Tags)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "订单不存在"})
		return
	}
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "更新标签失败"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": dto.ToOrderResponse(order, false)})
}

// StageStats 看板统计
// @Summary 看板各阶段订单数
// @Tags 订单
// @Param shop_id query int true "店铺 ID"
// @Success 200 {object} map[string]int64
// @Router /api/v1/orders/stats/stages [get]
func (c *OrderController) StageStats(ctx *gin.Context) {
	shopID, err := strconv.ParseInt(ctx.Query("shop_id"), 10, 64)
	if err != nil || shopID <= 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "店铺 ID 无效"})
		return
	}

	stats, err := c.orderSvc.StageDistribution(ctx.Request.Context(), shopID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "查询看板统计失败"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": stats})
}
