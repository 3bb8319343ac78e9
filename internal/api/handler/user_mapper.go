package handler

import (
	"time"

	"github.com/velora-dev/auth-core/internal/core/domain"
	"github.com/velora-dev/auth-core/internal/core/ports"
)

// --- Request → Service input ---

func toRegisterInput(req registerRequest) ports.RegisterUserInput {
	return ports.RegisterUserInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		FullName: req.FullName,
		Phone:    req.Phone,
		Gender:   req.Gender,
		Address:  req.Address,
		Role:     req.Role,
		Active:   req.Active,
	}
}

func toUpdateInput(req updateUserRequest) ports.UpdateUserInput {
	return ports.UpdateUserInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		FullName: req.FullName,
		Phone:    req.Phone,
		Gender:   req.Gender,
		Address:  req.Address,
		Role:     req.Role,
		Active:   req.Active,
	}
}

func toProfileInput(req updateProfileRequest) ports.UpdateProfileInput {
	return ports.UpdateProfileInput{
		Password: req.Password,
		Email:    req.Email,
		FullName: req.FullName,
		Phone:    req.Phone,
		Gender:   req.Gender,
		Address:  req.Address,
	}
}

// --- Service result → HTTP response ---

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID.String(),
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		Phone:     u.Phone,
		Gender:    u.Gender,
		Address:   u.Address,
		Role:      string(u.Role),
		Active:    u.Active,
		CreatedAt: u.CreatedAt.UTC(),
		UpdatedAt: u.UpdatedAt.UTC(),
	}
}

func toListResponse(p *ports.UserPage) listUsersResponse {
	items := make([]userResponse, len(p.Users))
	for i := range p.Users {
		items[i] = toUserResponse(&p.Users[i])
	}
	return listUsersResponse{
		Data: items,
		Pagination: paginationResponse{
			Total:      p.Total,
			Page:       p.Page,
			Limit:      p.Limit,
			TotalPages: p.TotalPages,
		},
	}
}

// expiresIn converts an absolute expiry into the whole seconds a client may
// cache the token for.
func expiresIn(expiresAt time.Time) int64 {
	return int64(time.Until(expiresAt).Round(time.Second).Seconds())
}
