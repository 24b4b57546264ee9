package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Establishment EstablishmentRepository
	User          UserRepository
	Roster        RosterRepository
	Journal       JournalRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Establishment: NewEstablishmentRepo(db),
		User:          NewUserRepo(db),
		Roster:        NewRosterRepo(db),
		Journal:       NewJournalRepo(db),
	}
}
