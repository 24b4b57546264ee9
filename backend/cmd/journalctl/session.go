package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"unit-one/backend/internal/client"
	"unit-one/backend/internal/haccp"
)

// workspace 一次命令执行中用到的会话与客户端
type workspace struct {
	client  *client.Client
	session *haccp.Session
	logger  *zap.Logger
}

// sessionOptions 会话参数
type sessionOptions struct {
	withActor   bool // 需要写入时从 /auth/me 取检查人姓氏
	maxAttempts int
	backoff     time.Duration
}

// openSession 建立客户端与会话并加载目标月份
func openSession(ctx context.Context, opts *rootOptions, so sessionOptions) (*workspace, error) {
	if opts.establishmentID() == "" {
		return nil, fmt.Errorf("未指定门店（--establishment）")
	}
	kind, err := opts.kind()
	if err != nil {
		return nil, err
	}
	loc, err := opts.location()
	if err != nil {
		return nil, err
	}
	month, err := opts.month(loc)
	if err != nil {
		return nil, err
	}
	logger, err := opts.newLogger()
	if err != nil {
		return nil, err
	}
	c, err := opts.newClient(logger, loc)
	if err != nil {
		return nil, err
	}

	var actor haccp.Actor
	if so.withActor {
		me, err := c.Me(ctx)
		if err != nil {
			return nil, fmt.Errorf("获取当前用户失败: %w", err)
		}
		actor = haccp.Actor{UserID: me.ID, Surname: me.Surname}
	}

	session, err := haccp.NewSession(haccp.SessionConfig{
		EstablishmentID: opts.establishmentID(),
		Kind:            kind,
		Source:          c,
		Writer:          c,
		Actor:           actor,
		Location:        loc,
		MaxAttempts:     so.maxAttempts,
		Backoff:         so.backoff,
		Logger:          logger,
	})
	if err != nil {
		return nil, err
	}
	if err := session.Load(ctx, month); err != nil {
		return nil, fmt.Errorf("加载 %s 失败: %w", month, err)
	}
	return &workspace{client: c, session: session, logger: logger}, nil
}
