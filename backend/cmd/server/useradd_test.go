package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"unit-one/backend/internal/model"
	"unit-one/backend/internal/repository"
)

func newMemoryRepo(t *testing.T) *repository.Repository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(model.All()...))
	return repository.NewRepository(db)
}

func TestUserAddOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		opts    userAddOptions
		wantErr bool
	}{
		{"admin", userAddOptions{login: "a", password: "p", surname: "S", role: model.RoleAdmin}, false},
		{"manager 缺门店", userAddOptions{login: "m", password: "p", surname: "S", role: model.RoleManager}, true},
		{"manager", userAddOptions{login: "m", password: "p", surname: "S", role: model.RoleManager, establishmentID: "e"}, false},
		{"缺姓氏", userAddOptions{login: "a", password: "p", role: model.RoleAdmin}, true},
		{"未知角色", userAddOptions{login: "a", password: "p", surname: "S", role: "root"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.validate()
			assert.Equal(t, tt.wantErr, err != nil, "err = %v", err)
		})
	}
}

func TestRunUserAdd_Manager(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo(t)

	est := &model.Establishment{Name: "Кафе"}
	require.NoError(t, repo.Establishment.Create(ctx, est))

	opts := &userAddOptions{
		login: "manager", password: "secret", name: "Елена", surname: "Смирнова",
		role: model.RoleManager, establishmentID: est.EstablishmentID,
	}
	require.NoError(t, runUserAdd(ctx, repo, opts, zap.NewNop()))

	user, err := repo.User.GetByLogin(ctx, "manager")
	require.NoError(t, err)
	assert.Equal(t, "Смирнова", user.Surname)
	require.NotNil(t, user.EstablishmentID)
	assert.Equal(t, est.EstablishmentID, *user.EstablishmentID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret")))
}

func TestRunUserAdd_UnknownEstablishment(t *testing.T) {
	repo := newMemoryRepo(t)
	opts := &userAddOptions{login: "m", password: "p", surname: "S", role: model.RoleManager, establishmentID: "missing"}

	err := runUserAdd(context.Background(), repo, opts, zap.NewNop())
	assert.Error(t, err)
}
