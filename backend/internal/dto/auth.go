package dto

// ── 认证模块 DTO ──

// LoginRequest 登录请求
type LoginRequest struct {
	Login    string `json:"login"    binding:"required,max=100"`
	Password string `json:"password" binding:"required"`
}
