package dto

// SignInRequest payload.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUpRequest payload.
type SignUpRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	DepartmentID int64  `json:"departmentId"`
}

// AuthResponse carries a freshly issued access token.
type AuthResponse struct {
	AccessToken string `json:"accessToken"`
}

// MeResponse mirrors the access-token payload.
type MeResponse struct {
	UserID       int64  `json:"userId"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Admin        bool   `json:"admin"`
	DepartmentID int64  `json:"departmentId"`
}
