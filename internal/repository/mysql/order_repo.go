package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/webprojects1100/rolyo/internal/datamodels/order"
	"github.com/webprojects1100/rolyo/internal/datamodels/product"
)

type orderRepo struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepo{db: db}
}

// Commit 写订单并扣库存，同一事务内完成。
// 扣减用条件更新 stock = stock - qty WHERE stock >= qty，
// 影响行数为 0 说明库存不够（或尺码已被删除），整单回滚。
func (r *orderRepo) Commit(ctx context.Context, o *order.Order, decs []order.StockDecrement) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(o).Error; err != nil {
			return err
		}

		for _, d := range decs {
			res := tx.Model(&product.Variant{}).
				Where("id = ? AND stock >= ?", d.VariantID, d.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", d.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				// 回读剩余库存用于错误提示
				var v product.Variant
				if err := tx.First(&v, d.VariantID).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return order.ErrVariantNotFound
					}
					return err
				}
				return &order.InsufficientStockError{
					Name:      d.Name,
					Size:      d.Size,
					Remaining: v.Stock,
				}
			}
		}
		return nil
	})
}

func (r *orderRepo) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) ListByUser(ctx context.Context, userID int64) ([]*order.Order, error) {
	var list []*order.Order
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *orderRepo) ListRecent(ctx context.Context, limit int) ([]*order.Order, error) {
	if limit <= 0 {
		limit = 20
	}
	var list []*order.Order
	if err := r.db.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	res := r.db.WithContext(ctx).Model(&order.Order{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
