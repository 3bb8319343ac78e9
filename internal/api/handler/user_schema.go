package handler

// --- Request / Response types ---

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=8"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	FullName string `json:"fullname,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Gender   string `json:"gender,omitempty"`
	Address  string `json:"address,omitempty"`
	Role     string `json:"role" validate:"required,role"`
	Active   *bool  `json:"is_active,omitempty"`
}

// updateUserRequest is a partial update: absent fields stay unchanged.
type updateUserRequest struct {
	Username *string `json:"username,omitempty" validate:"omitempty,min=3"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8"`
	Email    *string `json:"email,omitempty"    validate:"omitempty,email"`
	FullName *string `json:"fullname,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Gender   *string `json:"gender,omitempty"`
	Address  *string `json:"address,omitempty"`
	Role     *string `json:"role,omitempty"     validate:"omitempty,role"`
	Active   *bool   `json:"is_active,omitempty"`
}

type paginationResponse struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

type listUsersResponse struct {
	Data       []userResponse     `json:"data"`
	Pagination paginationResponse `json:"pagination"`
}
