/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-14 15:40:22
 * @FilePath: \guerrilla-go-app\backend\internal\app\app.go
 * @LastEditTime: 2025-10-14 15:40:27
 */
package app

import (
	"context"
	"fmt"

	"guerrilla-go-app/backend/internal/config"
	"guerrilla-go-app/backend/internal/domain/action"
	"guerrilla-go-app/backend/internal/infra/client"

	"gorm.io/gorm"
)

// Resources 汇总进程级资源：运行配置与日志存储连接。
type Resources struct {
	Flags config.RuntimeFlags
	DB    *gorm.DB
}

// Bootstrap 加载环境配置并打开日志存储。
// 默认使用本地 SQLite 文件；设置 MYSQL_DSN 后切换到 MySQL。
func Bootstrap(ctx context.Context) (*Resources, error) {
	config.LoadEnvFiles()
	flags := config.LoadRuntimeFlags()

	var (
		db  *gorm.DB
		err error
	)
	if flags.MySQLDSN != "" {
		db, err = client.NewMySQLDB(flags.MySQLDSN)
		if err != nil {
			return nil, fmt.Errorf("connect mysql: %w", err)
		}
	} else {
		db, err = client.NewSQLiteDB(flags.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
	}

	if err := db.WithContext(ctx).AutoMigrate(&action.Record{}); err != nil {
		return nil, fmt.Errorf("migrate action_logs: %w", err)
	}

	return &Resources{
		Flags: flags,
		DB:    db,
	}, nil
}

// Close 释放底层数据库连接。
func (r *Resources) Close() error {
	if r == nil || r.DB == nil {
		return nil
	}
	sqlDB, err := r.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
