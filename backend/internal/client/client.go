// Package client HACCP 日志 HTTP API 的 Go 客户端
//
// Client 同时实现 haccp.Source 与 haccp.Writer，供 journalctl 驱动表格会话
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"unit-one/backend/internal/dto"
	"unit-one/backend/internal/haccp"
)

const apiPrefix = "/api/v1"

// APIError 服务端返回的业务错误
type APIError struct {
	Status  int // HTTP 状态码
	Code    int // 业务码
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API 错误 %d（业务码 %d）: %s", e.Status, e.Code, e.Message)
}

// IsFutureDate 服务端拒绝了未来日期
func IsFutureDate(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnprocessableEntity
}

// envelope 统一响应结构，data 延迟解码
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Option 客户端选项
type Option func(*Client)

// WithHTTPClient 替换底层 http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger 设置日志
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithLocation 日志时区；写入时 date 发送为该时区的零点
func WithLocation(loc *time.Location) Option {
	return func(c *Client) { c.loc = loc }
}

// Client HACCP 日志 API 客户端
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	loc     *time.Location
	logger  *zap.Logger
}

var (
	_ haccp.Source = (*Client)(nil)
	_ haccp.Writer = (*Client)(nil)
)

// New 创建客户端；baseURL 形如 http://localhost:8080
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
		loc:     time.UTC,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken 更新 Bearer Token（登录后调用）
func (c *Client) SetToken(token string) {
	c.token = token
}

// ── 认证 ──

// Login 登录并保存 Token
func (c *Client) Login(ctx context.Context, login, password string) (*dto.TokenResponse, error) {
	var out dto.TokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, dto.LoginRequest{Login: login, Password: password}, &out); err != nil {
		return nil, err
	}
	c.token = out.AccessToken
	return &out, nil
}

// Me 当前用户（检查人姓氏取自这里）
func (c *Client) Me(ctx context.Context) (*dto.UserResponse, error) {
	var out dto.UserResponse
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ── haccp.Source ──

// Roster 门店名册；温度日志对应设备，健康日志对应员工
func (c *Client) Roster(ctx context.Context, establishmentID string, kind haccp.Kind) ([]haccp.Entity, error) {
	rosterKind := dto.RosterEmployees
	if kind == haccp.KindTemperature {
		rosterKind = dto.RosterEquipment
	}

	var out struct {
		List []dto.RosterItem `json:"list"`
	}
	q := url.Values{"kind": {rosterKind}}
	if err := c.do(ctx, http.MethodGet, "/roster/"+url.PathEscape(establishmentID), q, nil, &out); err != nil {
		return nil, err
	}

	entities := make([]haccp.Entity, 0, len(out.List))
	for _, it := range out.List {
		entities = append(entities, haccp.Entity{
			ID:      it.ID,
			Name:    it.Name,
			Surname: it.Surname,
			Type:    it.Type,
			Zone:    it.Zone,
		})
	}
	return entities, nil
}

// MonthlyLogs 门店某月的日志
func (c *Client) MonthlyLogs(ctx context.Context, establishmentID string, kind haccp.Kind, month haccp.Month) ([]haccp.Entry, error) {
	var out struct {
		List []dto.LogEntryResponse `json:"list"`
	}
	if err := c.do(ctx, http.MethodGet, "/logs/monthly", monthQuery(establishmentID, kind, month), nil, &out); err != nil {
		return nil, err
	}

	entries := make([]haccp.Entry, 0, len(out.List))
	for _, l := range out.List {
		date, err := time.Parse(time.DateOnly, l.Date)
		if err != nil {
			c.logger.Warn("忽略日期无效的日志", zap.String("date", l.Date))
			continue
		}
		e := haccp.Entry{Date: date, RecordedBy: l.InspectorSurname}
		switch kind {
		case haccp.KindTemperature:
			e.EntityID = l.EquipmentID
			if l.Shift != nil {
				e.Shift = haccp.Shift(*l.Shift)
			}
			if l.Value != nil {
				e.Value = *l.Value
			}
		case haccp.KindHealth:
			e.EntityID = l.EmployeeID
			if l.Comment != nil {
				e.Value = *l.Comment
			}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// ── haccp.Writer ──

// WriteEntry 写入单个单元格
func (c *Client) WriteEntry(ctx context.Context, w haccp.Write) error {
	req := dto.CreateLogRequest{
		EstablishmentID: w.EstablishmentID,
		Date:            haccp.LocalMidnight(w.Date, c.loc).Format(time.RFC3339),
	}
	value := w.Value
	switch w.Kind {
	case haccp.KindTemperature:
		shift := int(w.Key.Shift)
		req.EquipmentID = w.Key.EntityID
		req.Value = &value
		req.Shift = &shift
	case haccp.KindHealth:
		req.EmployeeID = w.Key.EntityID
		req.Comment = &value
	default:
		return fmt.Errorf("未知日志类型: %q", w.Kind)
	}
	return c.do(ctx, http.MethodPost, "/logs", nil, req, nil)
}

// ── 导出 ──

// ExportFile 服务端导出的文件
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Export 下载服务端生成的 xlsx / csv
func (c *Client) Export(ctx context.Context, establishmentID string, kind haccp.Kind, month haccp.Month, format string) (*ExportFile, error) {
	q := monthQuery(establishmentID, kind, month)
	if format != "" {
		q.Set("format", format)
	}

	resp, err := c.send(ctx, http.MethodGet, "/export/journal", q, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}
	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取导出文件失败: %w", err)
	}

	file := &ExportFile{ContentType: resp.Header.Get("Content-Type"), Content: content}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		file.Filename = params["filename"]
	}
	return file, nil
}

// ═══════════════════════════════════════════════════════════
// 请求
// ═══════════════════════════════════════════════════════════

func monthQuery(establishmentID string, kind haccp.Kind, month haccp.Month) url.Values {
	return url.Values{
		"establishmentId": {establishmentID},
		"year":            {strconv.Itoa(month.Year)},
		"month":           {strconv.Itoa(int(month.Month))},
		"type":            {string(kind)},
	}
}

// do 发送 JSON 请求并把 data 解码到 out（out 为 nil 时忽略）
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	resp, err := c.send(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("解析响应失败: %w", err)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("解析响应数据失败: %w", err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body interface{}) (*http.Response, error) {
	target := c.baseURL + apiPrefix + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("序列化请求失败: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	rid := uuid.NewString()
	req.Header.Set("X-Request-ID", rid)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求 %s %s 失败: %w", method, path, err)
	}
	c.logger.Debug("API 请求",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", rid),
	)
	return resp, nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err == nil {
		apiErr.Code = env.Code
		if env.Message != "" {
			apiErr.Message = env.Message
		}
	}
	return apiErr
}
