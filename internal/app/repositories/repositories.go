package repositories

import (
	"github.com/dcruz/schoolgate/internal/db"
)

// Repositories holds all the repository instances
type Repositories struct {
	PersonRepository      *PersonRepository
	ApplicationRepository *ApplicationRepository
	StudentRepository     *StudentRepository
	UserRepository        *UserRepository
	RoleRepository        *RoleRepository
	TokenRepository       *TokenRepository
}

// NewRepositories initializes all repositories
func NewRepositories(pool db.Pool) *Repositories {
	return &Repositories{
		PersonRepository:      NewPersonRepository(pool),
		ApplicationRepository: NewApplicationRepository(pool),
		StudentRepository:     NewStudentRepository(pool),
		UserRepository:        NewUserRepository(pool),
		RoleRepository:        NewRoleRepository(pool),
		TokenRepository:       NewTokenRepository(pool),
	}
}
