package dto

// ── 认证模块响应 ──

// TokenResponse 登录响应
type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	ExpiresIn   int          `json:"expires_in"` // Access Token 有效期（秒）
	User        UserResponse `json:"user"`
}

// UserResponse 用户信息响应（脱敏，GET /auth/me）
type UserResponse struct {
	ID            string                 `json:"id"`
	Login         string                 `json:"login"`
	Name          string                 `json:"name"`
	Surname       string                 `json:"surname"`
	Role          string                 `json:"role"`
	Establishment *EstablishmentResponse `json:"establishment,omitempty"`
}

// EstablishmentResponse 门店简要信息
type EstablishmentResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
