package dto

// CreateUserRequest creates a staff account.
type CreateUserRequest struct {
	Email     string  `json:"email" binding:"required,email"`
	Password  string  `json:"password" binding:"required,min=8"`
	FirstName string  `json:"firstName" binding:"required"`
	LastName  string  `json:"lastName" binding:"required"`
	RoleID    *int64  `json:"roleId"`
	RoleIDs   []int64 `json:"roleIds"`
}

// UpdateUserRequest updates a staff account. Empty fields are left unchanged;
// RoleIDs, when present, replaces the full assigned role set.
type UpdateUserRequest struct {
	Email     string   `json:"email" binding:"omitempty,email"`
	Password  string   `json:"password" binding:"omitempty,min=8"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	RoleID    *int64   `json:"roleId"`
	RoleIDs   *[]int64 `json:"roleIds"`
	IsActive  *bool    `json:"isActive"`
}
