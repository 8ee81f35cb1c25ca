package action

import (
	"time"

	"gorm.io/datatypes"
)

// 动作类型取值固定，与各生成器一一对应。
const (
	TypeAnalysis     = "analysis"
	TypeCreation     = "creation"
	TypeEngagement   = "engagement"
	TypeExecution    = "execution"
	TypeNetworking   = "networking"
	TypeStrategy     = "strategy"
	TypeOptimization = "optimization"
)

// 影响力标签的固定取值。
const (
	ImpactMedium   = "Medium"
	ImpactHigh     = "High"
	ImpactVeryHigh = "Very High"
)

// Record 对应 action_logs 表里的一条营销动作记录。
// 记录只在生成器执行时插入，之后不会更新或删除。
type Record struct {
	ID            uint           `gorm:"column:id;primaryKey" json:"id"`                                  // 自增主键，插入顺序严格递增
	Timestamp     time.Time      `gorm:"column:timestamp;autoCreateTime;index" json:"timestamp"`          // 入库时间，由存储层赋值
	ActionType    string         `gorm:"column:action_type;size:32;index" json:"type"`                    // 动作类型（analysis/creation/...）
	ActionName    string         `gorm:"column:action_name;size:128" json:"action"`                       // 动作标题
	Description   string         `gorm:"column:description;type:text" json:"description"`                 // 动作说明
	Justification string         `gorm:"column:justification;type:text" json:"justification"`             // 策略论证文案
	Result        string         `gorm:"column:result;type:text" json:"result"`                           // 执行结果文案
	ImpactLevel   string         `gorm:"column:impact_level;size:16" json:"impact"`                       // 影响力标签
	Platform      string         `gorm:"column:platform;size:128" json:"platform"`                        // 模拟的平台名称
	Metrics       datatypes.JSON `gorm:"column:metrics;type:json" json:"metrics"`                         // 生成器自定义的开放指标映射（JSON）
}

// TableName 指定数据库表名，与原型保持一致。
func (Record) TableName() string {
	return "action_logs"
}
