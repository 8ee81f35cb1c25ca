/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-14 11:32:05
 * @FilePath: \guerrilla-go-app\backend\internal\repository\action_log_repository.go
 * @LastEditTime: 2025-10-14 11:32:05
 */
package repository

import (
	"context"
	"fmt"
	"time"

	"guerrilla-go-app/backend/internal/domain/action"

	"gorm.io/gorm"
)

// ActionLogRepository 封装 action_logs 表的追加与查询操作。
// 该表是追加型日志：调度器是唯一写者，HTTP 层只读。
type ActionLogRepository struct {
	db *gorm.DB
}

// NewActionLogRepository 构造仓储实例。
func NewActionLogRepository(db *gorm.DB) *ActionLogRepository {
	return &ActionLogRepository{db: db}
}

// Append 写入一条动作记录并返回分配的主键。
// 时间戳与 ID 均由存储层赋值，调用方不应预填。
func (r *ActionLogRepository) Append(ctx context.Context, record *action.Record) (uint, error) {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return 0, fmt.Errorf("append action log: %w", err)
	}
	return record.ID, nil
}

// Recent 按时间倒序返回最近的记录，同秒记录按 ID 倒序保证顺序稳定。
// 空表返回空切片而不是错误。
func (r *ActionLogRepository) Recent(ctx context.Context, limit int) ([]action.Record, error) {
	var records []action.Record

	query := r.db.WithContext(ctx).
		Model(&action.Record{}).
		Order("timestamp DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list recent actions: %w", err)
	}
	return records, nil
}

// CountSince 统计最近 windowDays 天内的记录数，actionType 非空时只统计该类型。
func (r *ActionLogRepository) CountSince(ctx context.Context, actionType string, windowDays int) (int64, error) {
	boundary := time.Now().AddDate(0, 0, -windowDays)

	query := r.db.WithContext(ctx).
		Model(&action.Record{}).
		Where("timestamp >= ?", boundary)
	if actionType != "" {
		query = query.Where("action_type = ?", actionType)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count actions since %d days: %w", windowDays, err)
	}
	return count, nil
}

// Count 返回日志总条数，供状态接口展示。
func (r *ActionLogRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&action.Record{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count actions: %w", err)
	}
	return count, nil
}
