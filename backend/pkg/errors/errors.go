package errors

import "errors"

// ErrForbiddenEstablishment 当前用户无权访问该门店
var ErrForbiddenEstablishment = errors.New("无权访问该门店")

// ErrTokenRevoked Token 已注销（登出后进入黑名单）
var ErrTokenRevoked = errors.New("token 已注销")
