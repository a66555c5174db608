package dto

// DepartmentListResponse is one ascending keyset page.
type DepartmentListResponse struct {
	Departments []DepartmentRef `json:"departments"`
	HasMore     bool            `json:"hasMore"`
}
