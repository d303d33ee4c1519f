package service

import (
	"context"
	"errors"
	"strings"

	"github.com/webprojects1100/rolyo/internal/datamodels/subscription"
)

// SubscriptionService 邮件订阅
type SubscriptionService struct {
	repo subscription.Repository
}

// NewSubscriptionService 创建订阅服务
func NewSubscriptionService(repo subscription.Repository) *SubscriptionService {
	return &SubscriptionService{repo: repo}
}

// Subscribe 登记订阅邮箱，重复订阅返回 subscription.ErrAlreadySubscribed
func (s *SubscriptionService) Subscribe(ctx context.Context, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return errors.New("invalid email address")
	}
	return s.repo.Create(ctx, &subscription.Subscription{Email: email})
}
