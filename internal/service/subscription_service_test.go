package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webprojects1100/rolyo/internal/datamodels/subscription"
)

type fakeSubscriptionRepo struct {
	emails map[string]struct{}
}

func (f *fakeSubscriptionRepo) Create(ctx context.Context, s *subscription.Subscription) error {
	if _, dup := f.emails[s.Email]; dup {
		return subscription.ErrAlreadySubscribed
	}
	f.emails[s.Email] = struct{}{}
	return nil
}

func TestSubscribe(t *testing.T) {
	repo := &fakeSubscriptionRepo{emails: map[string]struct{}{}}
	svc := NewSubscriptionService(repo)
	ctx := context.Background()

	require.NoError(t, svc.Subscribe(ctx, "  Alice@Example.COM "))

	// 归一化后视为同一邮箱
	err := svc.Subscribe(ctx, "alice@example.com")
	assert.ErrorIs(t, err, subscription.ErrAlreadySubscribed)

	assert.Error(t, svc.Subscribe(ctx, ""))
	assert.Error(t, svc.Subscribe(ctx, "not-an-email"))
}
