package dto

// CreateRoleRequest creates a role with an optional initial permission set.
type CreateRoleRequest struct {
	Name          string  `json:"name" binding:"required"`
	Slug          string  `json:"slug" binding:"required"`
	PermissionIDs []int64 `json:"permissionIds"`
}

// UpdateRoleRequest renames a role and/or replaces its permission set.
type UpdateRoleRequest struct {
	Name          string   `json:"name"`
	PermissionIDs *[]int64 `json:"permissionIds"`
}

// AssignStudentNumberRequest sets a student's ID number.
type AssignStudentNumberRequest struct {
	StudentNumber string `json:"studentNumber" binding:"required"`
}
