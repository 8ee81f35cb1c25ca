/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-14 13:10:45
 * @FilePath: \guerrilla-go-app\backend\internal\service\actionlog\service.go
 * @LastEditTime: 2025-10-14 13:10:45
 */
package actionlog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"guerrilla-go-app/backend/internal/domain/action"
	"guerrilla-go-app/backend/internal/repository"
)

// metricsWindowDays 是聚合指标的统计窗口（滚动 30 天）。
const metricsWindowDays = 30

// DefaultRecentLimit 是动作列表接口的默认条数。
const DefaultRecentLimit = 50

// Service 提供行为日志的读取与聚合视图。
type Service struct {
	logs *repository.ActionLogRepository
}

// NewService 构造日志服务。
func NewService(logs *repository.ActionLogRepository) *Service {
	return &Service{logs: logs}
}

// Action 表示返回给仪表盘的一条动作记录。
type Action struct {
	ID            uint           `json:"id"`
	Timestamp     string         `json:"timestamp"`
	Type          string         `json:"type"`
	Name          string         `json:"action"`
	Description   string         `json:"description"`
	Justification string         `json:"justification"`
	Result        string         `json:"result"`
	Impact        string         `json:"impact"`
	Platform      string         `json:"platform"`
	Metrics       map[string]any `json:"metrics"`
}

// AggregateMetrics 是基于 30 天窗口即时计算的汇总指标。
// 各系数为固定的演示口径，不代表任何真实测量。
type AggregateMetrics struct {
	ViralScore         int64 `json:"viralScore"`
	EngagementRate     int64 `json:"engagementRate"`
	CommunityGrowth    int64 `json:"communityGrowth"`
	ContentCreated     int64 `json:"contentCreated"`
	TrendsIdentified   int64 `json:"trendsIdentified"`
	OpportunitiesFound int64 `json:"opportunitiesFound"`
	TotalReach         int64 `json:"totalReach"`
	EarnedMediaValue   int64 `json:"earnedMediaValue"`
}

// RecentActions 返回最近 limit 条记录，limit 非法时回退默认值。
func (s *Service) RecentActions(ctx context.Context, limit int) ([]Action, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	records, err := s.logs.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("load recent actions: %w", err)
	}

	result := make([]Action, 0, len(records))
	for _, record := range records {
		result = append(result, toAction(record))
	}
	return result, nil
}

// Aggregate 基于 30 天窗口计算汇总指标。
// 公式系数与钳制必须保持不变，它们是仪表盘唯一的数值契约。
func (s *Service) Aggregate(ctx context.Context) (AggregateMetrics, error) {
	total, err := s.logs.CountSince(ctx, "", metricsWindowDays)
	if err != nil {
		return AggregateMetrics{}, fmt.Errorf("count total actions: %w", err)
	}
	created, err := s.logs.CountSince(ctx, action.TypeCreation, metricsWindowDays)
	if err != nil {
		return AggregateMetrics{}, fmt.Errorf("count creation actions: %w", err)
	}
	engaged, err := s.logs.CountSince(ctx, action.TypeEngagement, metricsWindowDays)
	if err != nil {
		return AggregateMetrics{}, fmt.Errorf("count engagement actions: %w", err)
	}

	return AggregateMetrics{
		ViralScore:         clampPercent(total * 2),
		EngagementRate:     clampPercent(engaged * 3),
		CommunityGrowth:    clampPercent(total * 2),
		ContentCreated:     created * 3,
		TrendsIdentified:   total,
		OpportunitiesFound: int64(float64(total) * 0.4),
		TotalReach:         total * 1500,
		EarnedMediaValue:   total * 75,
	}, nil
}

// ActionCount 返回日志总条数。
func (s *Service) ActionCount(ctx context.Context) (int64, error) {
	return s.logs.Count(ctx)
}

// toAction 把存储记录映射为接口 DTO，指标 JSON 解析失败时降级为空映射。
func toAction(record action.Record) Action {
	metrics := map[string]any{}
	if len(record.Metrics) > 0 {
		if err := json.Unmarshal(record.Metrics, &metrics); err != nil {
			metrics = map[string]any{}
		}
	}

	return Action{
		ID:            record.ID,
		Timestamp:     record.Timestamp.Format(time.RFC3339),
		Type:          record.ActionType,
		Name:          record.ActionName,
		Description:   record.Description,
		Justification: record.Justification,
		Result:        record.Result,
		Impact:        record.ImpactLevel,
		Platform:      record.Platform,
		Metrics:       metrics,
	}
}

// clampPercent 把百分比型指标钳制在 100 以内。
func clampPercent(value int64) int64 {
	if value > 100 {
		return 100
	}
	return value
}
