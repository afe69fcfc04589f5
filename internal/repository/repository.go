package repository

import (
	"github.com/pocketmint/pocketmint-api/pkg/database"
)

// Repositories holds all repository interfaces
type Repositories struct {
	User          UserRepository
	Token         TokenRepository
	LinkedAccount LinkedAccountRepository
}

// NewRepositories creates all repositories
func NewRepositories(db *database.Postgres) *Repositories {
	return &Repositories{
		User:          NewUserRepository(db),
		Token:         NewTokenRepository(db),
		LinkedAccount: NewLinkedAccountRepository(db),
	}
}
