package users

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// Service exposes read access to user profiles.
type Service interface {
	GetUser(ctx context.Context, id int64) (*UserDTO, error)
}

type userReader interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

type service struct {
	repo userReader
}

// NewService builds a users service backed by the provided repository.
func NewService(repo userReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetUser(ctx context.Context, id int64) (*UserDTO, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: lookup user")
	}
	return FromModel(user), nil
}
