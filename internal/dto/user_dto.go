package dto

import (
	"time"

	"haley-companion-be/internal/entity"

	"github.com/google/uuid"
)

type CreateUserRequest struct {
	Email       string  `json:"email" validate:"required,email,max=255"`
	Username    *string `json:"username" validate:"omitempty,min=2,max=100"`
	DisplayName *string `json:"display_name" validate:"omitempty,max=255"`
	AvatarURL   *string `json:"avatar_url" validate:"omitempty,url"`
	Role        string  `json:"role" validate:"omitempty,oneof=user admin"`
}

// UpdateUserRequest is a partial update; omitted fields stay as they are.
type UpdateUserRequest struct {
	Email       *string `json:"email" validate:"omitempty,email,max=255"`
	Username    *string `json:"username" validate:"omitempty,min=2,max=100"`
	DisplayName *string `json:"display_name" validate:"omitempty,max=255"`
	AvatarURL   *string `json:"avatar_url" validate:"omitempty,url"`
	Role        *string `json:"role" validate:"omitempty,oneof=user admin"`
}

type UserResponse struct {
	Id          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	Username    *string   `json:"username"`
	DisplayName *string   `json:"display_name"`
	AvatarURL   *string   `json:"avatar_url"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewUserResponse(u *entity.User) *UserResponse {
	return &UserResponse{
		Id:          u.Id,
		Email:       u.Email,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
		Role:        string(u.Role),
		CreatedAt:   u.CreatedAt,
	}
}
