package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"unit-one/backend/internal/dto"
	"unit-one/backend/internal/service"
	pkgerrors "unit-one/backend/pkg/errors"
	"unit-one/backend/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportJournal 导出月度日志
// GET /api/v1/export/journal?establishmentId=&year=&month=&type=&format=xlsx|csv
func (h *ExportHandler) ExportJournal(c *gin.Context) {
	var q dto.ExportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	file, err := h.exportSvc.ExportJournal(c.Request.Context(), caller, &q)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(file.Filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, file.ContentType, file.Content.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportFormat):
		response.BadRequest(c, 21002, err.Error())
	case errors.Is(err, service.ErrJournalDate):
		response.BadRequest(c, 20005, err.Error())
	case errors.Is(err, service.ErrEstablishmentNotFound):
		response.NotFound(c, 20007, err.Error())
	case errors.Is(err, pkgerrors.ErrForbiddenEstablishment):
		response.Forbidden(c, 10003, err.Error())
	case errors.Is(err, service.ErrExportGenerateFail):
		response.Error(c, http.StatusInternalServerError, 21001, err.Error())
	default:
		response.InternalError(c)
	}
}
