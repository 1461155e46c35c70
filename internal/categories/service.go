package categories

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

const maxNameLen = 100

// Service manages the category tree.
type Service interface {
	CreateCategory(ctx context.Context, input CreateCategoryInput) (*CategoryDTO, error)
	ListCategories(ctx context.Context) ([]CategoryDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	tx   txRunner
	repo *Repository
}

// NewService builds a category service. Writes run through tx; reads use repo.
func NewService(tx txRunner, repo *Repository) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	if repo == nil {
		return nil, fmt.Errorf("category repository is required")
	}
	return &service{tx: tx, repo: repo}, nil
}

func (s *service) CreateCategory(ctx context.Context, input CreateCategoryInput) (*CategoryDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if len(name) > maxNameLen {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "name must be at most %d characters", maxNameLen)
	}

	category := &models.Category{Name: name, ParentID: input.ParentID}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		if input.ParentID != nil {
			ok, err := repo.Exists(ctx, *input.ParentID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: lookup parent category")
			}
			if !ok {
				return unknownParent(*input.ParentID)
			}
		}
		if err := repo.Create(ctx, category); err != nil {
			return mapWriteError(err, input.ParentID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(category), nil
}

func (s *service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: list categories")
	}
	out := make([]CategoryDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func unknownParent(id int64) error {
	return pkgerrors.Newf(pkgerrors.CodeValidation, "parent category %d does not exist", id).
		WithDetails(map[string]any{"field": "parent_id"})
}

func mapWriteError(err error, parentID *int64) error {
	switch {
	case db.IsUniqueViolation(err, ""):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "category name already exists")
	case db.IsForeignKeyViolation(err) && parentID != nil:
		return unknownParent(*parentID)
	case db.IsCheckViolation(err):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "category violates a constraint")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: create category")
	}
}
