package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"unit-one/backend/internal/dto"
	"unit-one/backend/internal/service"
	pkgerrors "unit-one/backend/pkg/errors"
	"unit-one/backend/pkg/response"
)

// JournalHandler HACCP 日志模块 HTTP 处理器
type JournalHandler struct {
	journalSvc service.JournalService
}

// NewJournalHandler 创建 JournalHandler
func NewJournalHandler(journalSvc service.JournalService) *JournalHandler {
	return &JournalHandler{journalSvc: journalSvc}
}

// Roster 门店名册
// GET /api/v1/roster/:establishmentId?kind=equipment|employees
func (h *JournalHandler) Roster(c *gin.Context) {
	var q dto.RosterQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	items, err := h.journalSvc.Roster(c.Request.Context(), caller, c.Param("establishmentId"), q.Kind)
	if err != nil {
		h.handleJournalError(c, err)
		return
	}

	response.OK(c, gin.H{"list": items})
}

// MonthlyLogs 月度日志
// GET /api/v1/logs/monthly?establishmentId=&year=&month=&type=temperature|health
func (h *JournalHandler) MonthlyLogs(c *gin.Context) {
	var q dto.MonthlyLogsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	logs, err := h.journalSvc.MonthlyLogs(c.Request.Context(), caller, &q)
	if err != nil {
		h.handleJournalError(c, err)
		return
	}

	response.OK(c, gin.H{"list": logs})
}

// Record 写入单个单元格
// POST /api/v1/logs
func (h *JournalHandler) Record(c *gin.Context) {
	var req dto.CreateLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	entry, err := h.journalSvc.Record(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleJournalError(c, err)
		return
	}

	response.Created(c, entry)
}

// handleJournalError 将 Service 层错误映射为 HTTP 响应
func (h *JournalHandler) handleJournalError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrJournalTarget):
		response.BadRequest(c, 20001, err.Error())
	case errors.Is(err, service.ErrJournalValue):
		response.BadRequest(c, 20002, err.Error())
	case errors.Is(err, service.ErrJournalFutureDate):
		response.Unprocessable(c, 20003, err.Error())
	case errors.Is(err, service.ErrJournalEntityNotFound):
		response.NotFound(c, 20004, err.Error())
	case errors.Is(err, service.ErrJournalDate):
		response.BadRequest(c, 20005, err.Error())
	case errors.Is(err, service.ErrJournalShift):
		response.BadRequest(c, 20006, err.Error())
	case errors.Is(err, service.ErrEstablishmentNotFound):
		response.NotFound(c, 20007, err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		response.Unauthorized(c, 10002, "未认证")
	case errors.Is(err, pkgerrors.ErrForbiddenEstablishment):
		response.Forbidden(c, 10003, err.Error())
	default:
		response.InternalError(c)
	}
}
