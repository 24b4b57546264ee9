package main

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"unit-one/backend/config"
	"unit-one/backend/internal/model"
	"unit-one/backend/pkg/database"
	applogger "unit-one/backend/pkg/logger"
)

// app 各子命令共用的基础设施
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
}

// bootstrap 加载配置、初始化日志并连接数据库
func bootstrap(opts *rootOptions) (*app, error) {
	// 1. 加载配置
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("加载配置失败: %w", err)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log, "server")
	if err != nil {
		return nil, fmt.Errorf("初始化日志失败: %w", err)
	}

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		return nil, fmt.Errorf("数据库连接失败: %w", err)
	}
	logger.Info("数据库连接成功", zap.String("driver", cfg.Database.Driver))

	return &app{cfg: cfg, logger: logger, db: db}, nil
}

// migrate 执行数据库迁移
func (a *app) migrate() error {
	return database.RunMigrations(a.db, a.cfg.Database.Driver, a.logger, model.All()...)
}

func (a *app) close() {
	if sqlDB, _ := a.db.DB(); sqlDB != nil {
		sqlDB.Close()
	}
	a.logger.Sync()
}
