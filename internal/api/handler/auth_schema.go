package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// messageResponse carries a bare confirmation for operations with no body.
type messageResponse struct {
	Message string `json:"message"`
}

// --- Request / Response types ---

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// loginResponse returns the access token in the body alongside the cookies so
// non-browser clients can authenticate with a bearer header instead.
type loginResponse struct {
	AccessToken string       `json:"access_token"`
	ExpiresIn   int64        `json:"expires_in"`
	User        userResponse `json:"user"`
}

// refreshRequest is the body fallback for clients that do not hold the
// refresh cookie. The cookie wins when both are present.
type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

type updateProfileRequest struct {
	Password *string `json:"password,omitempty" validate:"omitempty,min=8"`
	Email    *string `json:"email,omitempty"    validate:"omitempty,email"`
	FullName *string `json:"fullname,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Gender   *string `json:"gender,omitempty"`
	Address  *string `json:"address,omitempty"`
}

// Response-only types owned by the transport layer.
// These are intentionally separate from ports/domain types so the JSON
// contract is not coupled to internal service changes.

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	FullName  string    `json:"fullname,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Gender    string    `json:"gender,omitempty"`
	Address   string    `json:"address,omitempty"`
	Role      string    `json:"role"`
	Active    bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
