package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webprojects1100/rolyo/internal/datamodels/order"
)

type statusRecordingRepo struct {
	order.Repository
	updatedID     int64
	updatedStatus string
}

func (f *statusRecordingRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	f.updatedID = id
	f.updatedStatus = status
	return nil
}

func TestUpdateStatusValidation(t *testing.T) {
	repo := &statusRecordingRepo{}
	svc := NewOrderService(repo)

	err := svc.UpdateStatus(context.Background(), 42, "refunded")
	assert.ErrorContains(t, err, "invalid order status")
	assert.Zero(t, repo.updatedID, "非法状态不应落库")

	require.NoError(t, svc.UpdateStatus(context.Background(), 42, order.StatusShipped))
	assert.Equal(t, int64(42), repo.updatedID)
	assert.Equal(t, order.StatusShipped, repo.updatedStatus)
}
