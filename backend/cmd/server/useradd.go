package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"unit-one/backend/internal/model"
	"unit-one/backend/internal/repository"
)

type userAddOptions struct {
	login           string
	password        string
	name            string
	surname         string
	role            string
	establishmentID string
}

// newUserAddCommand 创建登录用户；名册与门店由外部系统维护，这里只负责账号
func newUserAddCommand(opts *rootOptions) *cobra.Command {
	uo := &userAddOptions{}

	cmd := &cobra.Command{
		Use:   "useradd",
		Short: "创建登录用户",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := uo.validate(); err != nil {
				return err
			}
			a, err := bootstrap(opts)
			if err != nil {
				return err
			}
			defer a.close()
			return runUserAdd(cmd.Context(), repository.NewRepository(a.db), uo, a.logger)
		},
	}
	cmd.Flags().StringVar(&uo.login, "login", "", "登录名")
	cmd.Flags().StringVar(&uo.password, "password", "", "密码")
	cmd.Flags().StringVar(&uo.name, "name", "", "名")
	cmd.Flags().StringVar(&uo.surname, "surname", "", "姓（写日志时作为检查人签名）")
	cmd.Flags().StringVar(&uo.role, "role", model.RoleManager, "角色: admin | partner | manager")
	cmd.Flags().StringVar(&uo.establishmentID, "establishment", "", "所属门店 ID（仅 manager）")
	return cmd
}

func (o *userAddOptions) validate() error {
	if o.login == "" || o.password == "" || o.surname == "" {
		return errors.New("--login、--password 与 --surname 不能为空")
	}
	switch o.role {
	case model.RoleAdmin, model.RolePartner:
	case model.RoleManager:
		if o.establishmentID == "" {
			return errors.New("manager 必须指定 --establishment")
		}
	default:
		return fmt.Errorf("未知角色: %q", o.role)
	}
	return nil
}

func runUserAdd(ctx context.Context, repo *repository.Repository, o *userAddOptions, logger *zap.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if o.establishmentID != "" {
		if _, err := repo.Establishment.GetByID(ctx, o.establishmentID); err != nil {
			return fmt.Errorf("门店 %s 不存在: %w", o.establishmentID, err)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(o.password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("密码加密失败: %w", err)
	}

	user := &model.User{
		Login:        o.login,
		PasswordHash: string(hash),
		Name:         o.name,
		Surname:      o.surname,
		Role:         o.role,
	}
	if o.role == model.RoleManager {
		user.EstablishmentID = &o.establishmentID
	}
	if err := repo.User.Create(ctx, user); err != nil {
		return fmt.Errorf("创建用户失败: %w", err)
	}

	logger.Info("用户已创建", zap.String("user_id", user.UserID), zap.String("login", user.Login), zap.String("role", user.Role))
	return nil
}
