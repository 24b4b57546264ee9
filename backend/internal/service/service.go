package service

import (
	"go.uber.org/zap"

	"unit-one/backend/config"
	"unit-one/backend/internal/haccp"
	"unit-one/backend/internal/repository"
	"unit-one/backend/pkg/jwt"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth    AuthService
	Journal JournalService
	Export  ExportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	clock haccp.Clock,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:    NewAuthService(repo, jwtMgr, blacklist, logger),
		Journal: NewJournalService(repo, &cfg.Journal, clock, logger),
		Export:  NewExportService(repo, &cfg.Journal, clock, logger),
	}
}
