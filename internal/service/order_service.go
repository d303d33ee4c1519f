package service

import (
	"context"
	"fmt"

	"github.com/webprojects1100/rolyo/internal/datamodels/order"
)

// OrderService 订单查询与后台状态推进
type OrderService struct {
	repo order.Repository
}

// NewOrderService 创建订单服务
func NewOrderService(repo order.Repository) *OrderService {
	return &OrderService{repo: repo}
}

// GetByID 查询单个订单
func (s *OrderService) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByUser 查询某用户的订单
func (s *OrderService) ListByUser(ctx context.Context, userID int64) ([]*order.Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

// ListRecent 查询最新的订单记录
func (s *OrderService) ListRecent(ctx context.Context, limit int) ([]*order.Order, error) {
	return s.repo.ListRecent(ctx, limit)
}

// UpdateStatus 推进订单状态，状态必须在枚举内。
// 订单其余字段（收货信息、订单行）一旦创建不可修改。
func (s *OrderService) UpdateStatus(ctx context.Context, id int64, status string) error {
	if !order.ValidStatus(status) {
		return fmt.Errorf("invalid order status %q", status)
	}
	return s.repo.UpdateStatus(ctx, id, status)
}
