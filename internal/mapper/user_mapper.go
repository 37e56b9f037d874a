package mapper

import (
	"haley-companion-be/internal/entity"
	"haley-companion-be/internal/model"
)

type UserMapper struct{}

func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

func (m *UserMapper) ToEntity(u *model.User) *entity.User {
	if u == nil {
		return nil
	}
	return &entity.User{
		Id:          u.Id,
		Email:       u.Email,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
		Role:        entity.UserRole(u.Role),
		CreatedAt:   u.CreatedAt.UTC(),
	}
}

func (m *UserMapper) ToModel(u *entity.User) *model.User {
	if u == nil {
		return nil
	}
	return &model.User{
		Id:          u.Id,
		Email:       u.Email,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
		Role:        string(u.Role),
		CreatedAt:   u.CreatedAt,
	}
}

func (m *UserMapper) ToEntities(users []*model.User) []*entity.User {
	entities := make([]*entity.User, len(users))
	for i, u := range users {
		entities[i] = m.ToEntity(u)
	}
	return entities
}

// PatchColumns turns a partial update into the column map gorm's Updates expects.
func (m *UserMapper) PatchColumns(p entity.UserPatch) map[string]interface{} {
	cols := map[string]interface{}{}
	if p.Email != nil {
		cols["email"] = *p.Email
	}
	if p.Username != nil {
		cols["username"] = *p.Username
	}
	if p.DisplayName != nil {
		cols["display_name"] = *p.DisplayName
	}
	if p.AvatarURL != nil {
		cols["avatar_url"] = *p.AvatarURL
	}
	if p.Role != nil {
		cols["role"] = string(*p.Role)
	}
	return cols
}
