package models

import "time"

// User defines a staff account based on the 'users' table
type User struct {
	ID          int64      `json:"id" db:"id" example:"1"`
	Email       string     `json:"email" db:"email" example:"registrar@schoolgate.local"`
	Password    string     `json:"-" db:"password"` // hashed, excluded from JSON
	FirstName   string     `json:"firstName" db:"first_name" example:"Maria"`
	LastName    string     `json:"lastName" db:"last_name" example:"Santos"`
	RoleID      *int64     `json:"roleId,omitempty" db:"role_id"` // optional primary role
	IsActive    bool       `json:"isActive" db:"is_active" example:"true"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`

	// Relations (populated when needed)
	Roles []Role `json:"roles,omitempty"` // full assigned role set
}
