package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/webprojects1100/rolyo/internal/datamodels/cart"
)

type cartRepo struct {
	db *gorm.DB
}

// NewCartRepository 创建持久化购物车仓储
func NewCartRepository(db *gorm.DB) cart.Repository {
	return &cartRepo{db: db}
}

func (r *cartRepo) ListByUser(ctx context.Context, userID int64) ([]cart.Line, error) {
	var rows []cart.PersistedLine
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	lines := make([]cart.Line, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, cart.Line{
			VariantID: row.VariantID,
			ProductID: row.ProductID,
			Name:      row.Name,
			Price:     row.Price,
			ImageURL:  row.ImageURL,
			Size:      row.Size,
			Color:     row.Color,
			Quantity:  row.Quantity,
			Stock:     row.Stock,
		})
	}
	return lines, nil
}

// ReplaceForUser 先清后插，保证镜像与当前购物车一致
func (r *cartRepo) ReplaceForUser(ctx context.Context, userID int64, lines []cart.Line) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&cart.PersistedLine{}).Error; err != nil {
			return err
		}
		if len(lines) == 0 {
			return nil
		}
		rows := make([]cart.PersistedLine, 0, len(lines))
		for _, l := range lines {
			rows = append(rows, cart.PersistedLine{
				UserID:    userID,
				VariantID: l.VariantID,
				ProductID: l.ProductID,
				Name:      l.Name,
				Price:     l.Price,
				ImageURL:  l.ImageURL,
				Size:      l.Size,
				Color:     l.Color,
				Quantity:  l.Quantity,
				Stock:     l.Stock,
			})
		}
		return tx.Create(&rows).Error
	})
}

func (r *cartRepo) ClearForUser(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&cart.PersistedLine{}).Error
}
