package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"etsy_crm_v1/internal/api/dto"
	"etsy_crm_v1/internal/model"
	"etsy_crm_v1/internal/service"
)

// SyncController 同步接口
type SyncController struct {
	syncSvc *service.SyncService
}

// NewSyncController 创建同步控制器
func NewSyncController(syncSvc *service.SyncService) *SyncController {
	return &SyncController{syncSvc: syncSvc}
}

// Trigger 手动触发同步
// @Summary 手动触发订单同步
// @Tags 同步
// @Param shop_id path int true "店铺 ID"
// @Success 200 {object} dto.SyncLogResponse
// @Router /api/v1/shops/{shop_id}/sync [post]
func (c *SyncController) Trigger(ctx *gin.Context) {
	shopID, err := strconv.ParseInt(ctx.Param("shop_id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "店铺 ID 无效"})
		return
	}

	syncLog, err := c.syncSvc.RunSync(ctx.Request.Context(), shopID, model.SyncTriggerManual)
	switch {
	case errors.Is(err, service.ErrSyncInProgress):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrShopNotConnected),
		errors.Is(err, service.ErrTokenExpired):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, gorm.ErrRecordNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "店铺不存在"})
	case err != nil:
		// 引擎失败时日志已终结，把失败记录一并返回
		resp := gin.H{"error": "同步失败: " + err.Error()}
		if syncLog != nil {
			resp["data"] = dto.ToSyncLogResponse(syncLog)
		}
		ctx.JSON(http.StatusInternalServerError, resp)
	default:
		ctx.JSON(http.StatusOK, gin.H{"data": dto.ToSyncLogResponse(syncLog)})
	}
}

// Logs 同步历史
// @Summary 店铺同步历史
// @Tags 同步
// @Param shop_id path int true "店铺 ID"
// @Param limit query int false "返回条数，默认 20"
// @Success 200 {array} dto.SyncLogResponse
// @Router /api/v1/shops/{shop_id}/sync/logs [get]
func (c *SyncController) Logs(ctx *gin.Context) {
	shopID, err := strconv.ParseInt(ctx.Param("shop_id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "店铺 ID 无效"})
		return
	}
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	logs, err := c.syncSvc.ListLogs(ctx.Request.Context(), shopID, limit)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "查询同步历史失败"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": dto.ToSyncLogResponses(logs)})
}

// Latest 最近一次同步
// @Summary 店铺最近一次同步
// @Tags 同步
// @Param shop_id path int true "店铺 ID"
// @Success 200 {object} dto.SyncLogResponse
// @Router /api/v1/shops/{shop_id}/sync/latest [get]
func (c *SyncController) Latest(ctx *gin.Context) {
	shopID, err := strconv.ParseInt(ctx.Param("shop_id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "店铺 ID 无效"})
		return
	}

	syncLog, err := c.syncSvc.GetLatestLog(ctx.Request.Context(), shopID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "暂无同步记录"})
		return
	}
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "查询同步记录失败"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": dto.ToSyncLogResponse(syncLog)})
}
