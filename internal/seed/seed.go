package seed

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/security"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Result counts the rows inserted by Run. Rows that already existed are not counted.
type Result struct {
	Users      int64
	Categories int64
	Products   int64
}

// Run inserts the fixture catalog. Existing rows, matched by email or name,
// are left untouched so the call is safe to repeat.
func Run(ctx context.Context, client txRunner, pwCfg config.PasswordConfig, logg *logger.Logger) (Result, error) {
	var res Result
	if client == nil {
		return res, fmt.Errorf("db client is required")
	}

	hash, err := security.HashPassword(SampleUserPassword, pwCfg)
	if err != nil {
		return res, fmt.Errorf("hash sample password: %w", err)
	}

	err = client.WithTx(ctx, func(tx *gorm.DB) error {
		conn := tx.WithContext(ctx)

		user := models.User{Name: SampleUserName, Email: SampleUserEmail, PasswordHash: hash, Role: enums.RoleBuyer}
		created := conn.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).Create(&user)
		if created.Error != nil {
			return fmt.Errorf("seed user: %w", created.Error)
		}
		res.Users = created.RowsAffected

		ids := map[string]int64{}
		insertCategory := func(name string, parentID *int64) error {
			row := models.Category{Name: name, ParentID: parentID}
			out := conn.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).Create(&row)
			if out.Error != nil {
				return fmt.Errorf("seed category %q: %w", name, out.Error)
			}
			res.Categories += out.RowsAffected
			var existing models.Category
			if err := conn.Where("name = ?", name).First(&existing).Error; err != nil {
				return fmt.Errorf("load category %q: %w", name, err)
			}
			ids[name] = existing.ID
			return nil
		}
		for _, parent := range categories {
			if err := insertCategory(parent.Name, nil); err != nil {
				return err
			}
			parentID := ids[parent.Name]
			for _, child := range parent.Children {
				if err := insertCategory(child, &parentID); err != nil {
					return err
				}
			}
		}

		for _, p := range products {
			categoryID, ok := ids[p.Category]
			if !ok {
				return fmt.Errorf("seed product %q: unknown category %q", p.Name, p.Category)
			}
			description := p.Description
			row := models.Product{
				Name:        p.Name,
				Description: &description,
				Price:       decimal.RequireFromString(p.Price),
				Stock:       p.Stock,
				CategoryID:  &categoryID,
				Attributes:  p.Attributes,
			}
			out := conn.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).Create(&row)
			if out.Error != nil {
				return fmt.Errorf("seed product %q: %w", p.Name, out.Error)
			}
			res.Products += out.RowsAffected
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"users":      res.Users,
			"categories": res.Categories,
			"products":   res.Products,
		}), "seed data inserted")
	}
	return res, nil
}
