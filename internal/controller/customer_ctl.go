package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"etsy_crm_v1/internal/api/dto"
	"etsy_crm_v1/internal/repository"
	"etsy_crm_v1/internal/service"
)

// CustomerController 客户接口
type CustomerController struct {
	customerSvc *service.CustomerService
}

// NewCustomerController 创建客户控制器
func NewCustomerController(customerSvc *service.CustomerService) *CustomerController {
	return &CustomerController{customerSvc: customerSvc}
}

// List 客户列表
// @Summary 客户列表（按累计消费额倒序）
// @Tags 客户
// @Param shop_id query int false "店铺 ID"
// @Param tier query string false "客户等级"
// @Param repeat query bool false "是否复购客户"
// @Success 200 {object} dto.PageResult
// @Router /api/v1/customers [get]
func (c *CustomerController) List(ctx *gin.Context) {
	var query dto.ListCustomersQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	filter := repository.CustomerFilter{
		ShopID:   query.ShopID,
		Tier:     query.Tier,
		Repeat:   query.Repeat,
		Keyword:  query.Keyword,
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	customers, total, err := c.customerSvc.List(ctx.Request.Context(), filter)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "查询客户失败"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"data": dto.NewPageResult(dto.ToCustomerResponses(customers), total, filter.Page, filter.PageSize),
	})
}

// Detail 客户详情
// @Summary 客户详情（含标记）
// @Tags 客户
// @Param id path int true "客户 ID"
// @Success 200 {object} dto.CustomerResponse
// @Router /api/v1/customers/{id} [get]
func (c *CustomerController) Detail(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "客户 ID 无效"})
		return
	}

	customer, err := c.customerSvc.GetDetail(ctx.Request.Context(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "客户不存在"})
		return
	}
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "查询客户失败"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": dto.ToCustomerResponse(customer, true)})
}

// Orders 客户订单历史
// @Summary 客户历史订单
// @Tags 客户
// @Param id path int true "客户 ID"
// @Success 200 {array} dto.OrderResponse
// @Router /api/v1/customers/{id}/orders [get]
func (c *CustomerController) Orders(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "客户 ID 无效"})
		return
	}

	orders, err := c.customerSvc.ListOrders(ctx.Request.Context(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "客户不存在"})
		return
	}
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "查询客户订单失败"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": dto.ToOrderResponses(orders)})
}

// AddFlag 添加标记
// @Summary 给客户打标记
// @Tags 客户
// @Param id path int true "客户 ID"
// @Param body body dto.AddFlagRequest true "标记内容"
// @Success 200 {object} dto.CustomerFlagResponse
// @Router /api/v1/customers/{id}/flags [post]
func (c *CustomerController) AddFlag(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "客户 ID 无效"})
		return
	}
	var req dto.AddFlagRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	flag, err := c.customerSvc.AddFlag(ctx.Request.Context(), id, req.FlagType, req.Reason)
	switch {
	case errors.Is(err, service.ErrInvalidFlagType):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, gorm.ErrRecordNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "客户不存在"})
	case err != nil:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "创建标记失败"})
	default:
		ctx.JSON(http.StatusOK, gin.H{"data": dto.ToCustomerFlagResponse(flag)})
	}
}

// ResolveFlag 处理标记
// @Summary 标记处理完成
// @Tags 客户
// @Param flag_id path int true "标记 ID"
// @Success 200 {object} map[string]string
// @Router /api/v1/customers/flags/{flag_id}/resolve [put]
func (c *CustomerController) ResolveFlag(ctx *gin.Context) {
	flagID, err := strconv.ParseInt(ctx.Param("flag_id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "标记 ID 无效"})
		return
	}

	err = c.customerSvc.ResolveFlag(ctx.Request.Context(), flagID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "标记不存在"})
		return
	}
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "处理标记失败"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "已处理"}})
}

// Stats 客户统计
// @Summary 店铺客户统计
// @Tags 客户
// @Param shop_id query int true "店铺 ID"
// @Success 200 {object} service.CustomerStats
// @Router /api/v1/customers/stats [get]
func (c *CustomerController) Stats(ctx *gin.Context) {
	shopID, err := strconv.ParseInt(ctx.Query("shop_id"), 10, 64)
	if err != nil || shopID <= 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "店铺 ID 无效"})
		return
	}

	stats, err := c.customerSvc.Stats(ctx.Request.Context(), shopID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "查询客户统计失败"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": stats})
}
