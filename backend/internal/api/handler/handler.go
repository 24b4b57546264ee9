package handler

import "unit-one/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth    *AuthHandler
	Journal *JournalHandler
	Export  *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:    NewAuthHandler(svc.Auth),
		Journal: NewJournalHandler(svc.Journal),
		Export:  NewExportHandler(svc.Export),
	}
}
