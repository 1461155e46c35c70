package activity

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// DefaultRecentLimit bounds the activity feed when no limit is supplied.
const DefaultRecentLimit = 10

// Record appends a user log inside the caller's transaction.
func Record(ctx context.Context, tx *gorm.DB, userID int64, action enums.UserAction, productID *int64) error {
	log := &models.UserLog{UserID: userID, Action: action, ProductID: productID}
	if err := NewRepository(tx).CreateLog(ctx, log); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: record "+action.String())
	}
	return nil
}

// RefreshRecommendations rebuilds the user's recommendations inside the caller's transaction.
func RefreshRecommendations(ctx context.Context, tx *gorm.DB, userID int64, limit int) error {
	if limit <= 0 {
		return nil
	}
	repo := NewRepository(tx)
	ids, err := repo.CandidateProductIDs(ctx, userID, limit)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: select recommendations")
	}
	if err := repo.ReplaceRecommendations(ctx, userID, ids); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: store recommendations")
	}
	return nil
}

// Service reads a user's activity feed and recommendations.
type Service interface {
	Recent(ctx context.Context, userID int64, limit int) ([]LogDTO, error)
	Recommendations(ctx context.Context, userID int64) ([]RecommendedProduct, error)
}

type reader interface {
	ListRecent(ctx context.Context, userID int64, limit int) ([]models.UserLog, error)
	ListRecommendations(ctx context.Context, userID int64) ([]RecommendedProduct, error)
}

type service struct {
	repo reader
}

// NewService builds an activity service backed by the provided repository.
func NewService(repo reader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("activity repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Recent(ctx context.Context, userID int64, limit int) ([]LogDTO, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	logs, err := s.repo.ListRecent(ctx, userID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: list activity")
	}
	out := make([]LogDTO, 0, len(logs))
	for _, l := range logs {
		out = append(out, logFromModel(l))
	}
	return out, nil
}

func (s *service) Recommendations(ctx context.Context, userID int64) ([]RecommendedProduct, error) {
	recs, err := s.repo.ListRecommendations(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: list recommendations")
	}
	if recs == nil {
		recs = []RecommendedProduct{}
	}
	return recs, nil
}
