package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/aromabay/aromabay-backend/pkg/db/models"
	pkgerrors "github.com/aromabay/aromabay-backend/pkg/errors"
)

// Service exposes the profile operations available to a logged-in user.
type Service interface {
	Profile(ctx context.Context, login string) (*UserDTO, error)
	UpdateProfile(ctx context.Context, login string, dto UpdateProfileDTO) (*UserDTO, error)
}

type service struct {
	repo *Repository
}

// NewService builds a profile service with the provided repository.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Profile(ctx context.Context, login string) (*UserDTO, error) {
	user, err := s.findByLogin(ctx, login)
	if err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

func (s *service) UpdateProfile(ctx context.Context, login string, dto UpdateProfileDTO) (*UserDTO, error) {
	user, err := s.findByLogin(ctx, login)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if dto.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*dto.Email))
		updates["email"] = email
	}
	if dto.FirstName != nil {
		updates["first_name"] = strings.TrimSpace(*dto.FirstName)
	}
	if dto.LastName != nil {
		updates["last_name"] = strings.TrimSpace(*dto.LastName)
	}
	if dto.Phone != nil {
		updates["phone"] = strings.TrimSpace(*dto.Phone)
	}
	if len(updates) == 0 {
		return FromModel(user), nil
	}

	if err := s.repo.UpdateProfile(ctx, user.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile")
	}

	updated, err := s.repo.FindByID(ctx, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload user")
	}
	return FromModel(updated), nil
}

func (s *service) findByLogin(ctx context.Context, login string) (*models.User, error) {
	if strings.TrimSpace(login) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	user, err := s.repo.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
	}
	return user, nil
}
