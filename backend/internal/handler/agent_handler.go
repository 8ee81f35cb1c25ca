/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-14 15:12:40
 * @FilePath: \guerrilla-go-app\backend\internal\handler\agent_handler.go
 * @LastEditTime: 2025-10-14 15:12:40
 */
package handler

import (
	"net/http"
	"strconv"

	response "guerrilla-go-app/backend/internal/infra/common"
	appLogger "guerrilla-go-app/backend/internal/infra/logger"
	"guerrilla-go-app/backend/internal/service/actionlog"
	"guerrilla-go-app/backend/internal/service/agent"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AgentHandler 暴露仪表盘轮询的只读接口。
// 动作与指标接口返回裸 JSON（仪表盘脚本直接读取字段），
// 数据层故障一律降级为空列表/零值指标，不向前端抛 5xx。
type AgentHandler struct {
	actions   *actionlog.Service
	scheduler *agent.Scheduler
	demoMode  bool
	logger    *zap.SugaredLogger
}

// NewAgentHandler 构造 handler。
func NewAgentHandler(actions *actionlog.Service, scheduler *agent.Scheduler, demoMode bool) *AgentHandler {
	baseLogger := appLogger.S().With("component", "agent.handler")
	return &AgentHandler{
		actions:   actions,
		scheduler: scheduler,
		demoMode:  demoMode,
		logger:    baseLogger,
	}
}

// Actions 返回最近的动作日志，默认 50 条。
func (h *AgentHandler) Actions(c *gin.Context) {
	rawLimit := c.DefaultQuery("limit", strconv.Itoa(actionlog.DefaultRecentLimit))
	limit, err := strconv.Atoi(rawLimit)
	if err != nil || limit < 0 {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, "limit must be a non-negative integer", nil)
		return
	}

	actions, err := h.actions.RecentActions(c.Request.Context(), limit)
	if err != nil {
		h.logger.Errorw("list actions failed", "error", err, "limit", limit)
		c.JSON(http.StatusOK, []actionlog.Action{})
		return
	}

	c.JSON(http.StatusOK, actions)
}

// Metrics 返回 30 天窗口的聚合指标，查询失败时返回零值结构。
func (h *AgentHandler) Metrics(c *gin.Context) {
	aggregate, err := h.actions.Aggregate(c.Request.Context())
	if err != nil {
		h.logger.Errorw("aggregate metrics failed", "error", err)
		c.JSON(http.StatusOK, actionlog.AggregateMetrics{})
		return
	}

	c.JSON(http.StatusOK, aggregate)
}

// Status 返回调度器运行状态。action_count 沿用周期计数，
// total_actions 是日志表的记录总数，查询失败时降级为 0。
func (h *AgentHandler) Status(c *gin.Context) {
	totalActions, err := h.actions.ActionCount(c.Request.Context())
	if err != nil {
		h.logger.Errorw("count actions failed", "error", err)
		totalActions = 0
	}

	c.JSON(http.StatusOK, gin.H{
		"is_running":    h.scheduler.Running(),
		"demo_mode":     h.demoMode,
		"action_count":  h.scheduler.CycleCount(),
		"total_actions": totalActions,
		"uptime":        "Active",
	})
}

// Health 是存活探针。
func (h *AgentHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "agent": "running"})
}
