package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	// ModeDemo 表示所有营销动作均为模拟数据（默认）。
	ModeDemo = "demo"
	// ModeLive 为预留模式，当前没有任何真实平台集成，行为与 demo 完全一致。
	ModeLive = "live"

	defaultPort            = "5000"
	defaultCycleInterval   = 600 * time.Second
	defaultErrorBackoff    = 60 * time.Second
	defaultSQLiteDBRelPath = "data/guerrilla-agent.db"
)

// RuntimeFlags 汇总进程启动所需的全部环境配置。
type RuntimeFlags struct {
	// Mode 为 demo 或 live。live 目前只是展示用标记，不会切换任何代码路径。
	Mode string
	// Port 是 HTTP 服务监听端口。
	Port string
	// CycleInterval 是两次营销周期之间的休眠时长。
	CycleInterval time.Duration
	// ErrorBackoff 是调度循环自身出错后的退避时长。
	ErrorBackoff time.Duration
	// SQLitePath 是默认存储介质的文件路径。
	SQLitePath string
	// MySQLDSN 非空时改用 MySQL 作为日志存储。
	MySQLDSN string
}

// DemoMode 返回当前是否运行在模拟模式。
func (f RuntimeFlags) DemoMode() bool {
	return f.Mode != ModeLive
}

// LoadRuntimeFlags 读取环境变量并推导运行配置，缺省值与原型保持一致。
func LoadRuntimeFlags() RuntimeFlags {
	flags := RuntimeFlags{
		Mode:          ModeDemo,
		Port:          defaultPort,
		CycleInterval: defaultCycleInterval,
		ErrorBackoff:  defaultErrorBackoff,
		SQLitePath:    normalisePath(defaultSQLiteDBRelPath),
		MySQLDSN:      strings.TrimSpace(os.Getenv("MYSQL_DSN")),
	}

	// DEMO_MODE 只有等于 "true"（忽略大小写）或未设置才保持 demo，
	// 其余任何取值都切到 live。
	if raw := strings.TrimSpace(os.Getenv("DEMO_MODE")); raw != "" && !strings.EqualFold(raw, "true") {
		flags.Mode = ModeLive
	}
	if raw := strings.TrimSpace(os.Getenv("PORT")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed < 65536 {
			flags.Port = raw
		}
	}
	if interval, ok := positiveSeconds(os.Getenv("CYCLE_INTERVAL_SECONDS")); ok {
		flags.CycleInterval = interval
	}
	if backoff, ok := positiveSeconds(os.Getenv("ERROR_BACKOFF_SECONDS")); ok {
		flags.ErrorBackoff = backoff
	}
	if rawPath := strings.TrimSpace(os.Getenv("SQLITE_PATH")); rawPath != "" {
		flags.SQLitePath = normalisePath(rawPath)
	}

	return flags
}

// positiveSeconds 把环境变量解析为正秒数，非法输入一律忽略。
func positiveSeconds(raw string) (time.Duration, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return 0, false
	}
	return time.Duration(parsed) * time.Second, true
}

// normalisePath 将路径展开为绝对路径，兼容 ~ 前缀与相对路径。
func normalisePath(raw string) string {
	if raw == "" {
		return raw
	}
	if strings.HasPrefix(raw, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			raw = filepath.Join(home, strings.TrimPrefix(raw, "~"))
		}
	}
	if filepath.IsAbs(raw) {
		return raw
	}
	if abs, err := filepath.Abs(raw); err == nil {
		return abs
	}
	return raw
}
