package services

import (
	"context"
	"strings"
	"time"

	"github.com/gautambamne/ECom-sub000/internal/apperror"
	"github.com/gautambamne/ECom-sub000/internal/model"
	"github.com/gautambamne/ECom-sub000/internal/repository"
)

// UserService reads and updates profiles through the cache-aside repository.
type UserService struct {
	Users repository.UserRepository
}

func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{Users: users}
}

func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.Users.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if user == nil {
		return nil, apperror.NotFound("User not found")
	}
	return user, nil
}

// UpdateProfile changes the display name. The repository writes the full
// post-update record through to both cache keys.
func (s *UserService) UpdateProfile(ctx context.Context, id, name string) (*model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.Validation("Invalid profile data", map[string]string{
			"name": "name is required",
		})
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Name = name
	user.UpdatedAt = time.Now()
	if err := s.Users.Update(ctx, user); err != nil {
		return nil, apperror.Internal(err)
	}
	return user, nil
}
