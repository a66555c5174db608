package dto

// UpdateUserRequest payload; absent fields stay untouched. Password is
// the current password, required when newPassword is supplied.
type UpdateUserRequest struct {
	Name         *string `json:"name"`
	DepartmentID *int64  `json:"departmentId"`
	Password     *string `json:"password"`
	NewPassword  *string `json:"newPassword"`
}
