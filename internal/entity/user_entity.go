package entity

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

type User struct {
	Id          uuid.UUID
	Email       string
	Username    *string
	DisplayName *string
	AvatarURL   *string
	Role        UserRole
	CreatedAt   time.Time
}

// UserPatch is a partial profile update; nil fields are left untouched.
type UserPatch struct {
	Email       *string
	Username    *string
	DisplayName *string
	AvatarURL   *string
	Role        *UserRole
}

func (p UserPatch) IsEmpty() bool {
	return p.Email == nil && p.Username == nil && p.DisplayName == nil && p.AvatarURL == nil && p.Role == nil
}
