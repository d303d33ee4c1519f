package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/webprojects1100/rolyo/internal/datamodels/subscription"
)

type subscriptionRepo struct {
	db *gorm.DB
}

// NewSubscriptionRepository 创建订阅仓储
func NewSubscriptionRepository(db *gorm.DB) subscription.Repository {
	return &subscriptionRepo{db: db}
}

func (r *subscriptionRepo) Create(ctx context.Context, s *subscription.Subscription) error {
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return subscription.ErrAlreadySubscribed
		}
		return err
	}
	return nil
}
