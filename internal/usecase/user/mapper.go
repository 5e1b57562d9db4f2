package user

import (
	"errors"

	domain "user-service/internal/domain/user"
)

// ErrMissingID is returned when projecting a user that was never persisted.
var ErrMissingID = errors.New("user has no id")

// ToEntity maps a create request to a new entity without an id.
func ToEntity(in UserRequest) *domain.User {
	return &domain.User{
		Name:     deref(in.Name),
		Email:    deref(in.Email),
		Password: deref(in.Password),
	}
}

// MergeEntity applies the fields present in the request to a copy of existing.
// The id of existing is always kept and existing itself is left untouched.
func MergeEntity(in UserRequest, existing *domain.User) *domain.User {
	merged := existing.Clone()
	if merged == nil {
		merged = &domain.User{}
	}
	if in.Name != nil {
		merged.Name = *in.Name
	}
	if in.Email != nil {
		merged.Email = *in.Email
	}
	if in.Password != nil {
		merged.Password = *in.Password
	}
	return merged
}

// ToResponse projects an entity onto the response DTO.
func ToResponse(u *domain.User) (UserResponse, error) {
	if !u.HasID() {
		return UserResponse{}, ErrMissingID
	}
	return UserResponse{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Password: u.Password,
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
