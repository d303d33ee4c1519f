package order

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// 订单状态枚举
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

// ValidStatus 校验状态是否在枚举内
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// ShippingInfo 收货信息快照
type ShippingInfo struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	Phone      string `json:"phone"`
	PostalCode string `json:"postalCode"`
}

// LineItem 订单行，下单时从购物车冻结的副本，
// 之后商品怎么改都不影响历史订单展示。
type LineItem struct {
	VariantID int64  `json:"variantId"`
	ProductID int64  `json:"productId"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	ImageURL  string `json:"imageUrl"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Quantity  int64  `json:"quantity"`
}

// Order 订单模型，收货信息和订单行以 JSON 冻结存储
type Order struct {
	ID          int64        `gorm:"primaryKey" json:"id"`
	UserID      int64        `gorm:"index;not null" json:"user_id"`
	Shipping    ShippingInfo `gorm:"serializer:json" json:"shipping"`
	Items       []LineItem   `gorm:"serializer:json" json:"items"`
	TotalAmount int64        `gorm:"not null" json:"total_amount"`
	Status      string       `gorm:"size:32;index;not null" json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// StockDecrement 下单时对某个尺码库存的扣减
type StockDecrement struct {
	VariantID int64
	Quantity  int64
	// 展示字段，用于拼错误信息
	Name string
	Size string
}

// ErrVariantNotFound 尺码库存记录不存在（商品可能已下架）
var ErrVariantNotFound = errors.New("product variant not found")

// InsufficientStockError 库存不足，带剩余数量方便前端提示调整
type InsufficientStockError struct {
	Name      string
	Size      string
	Remaining int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Not enough stock for %s (%s). Only %d left.", e.Name, e.Size, e.Remaining)
}

// Repository 订单仓储接口
type Repository interface {
	// Commit 在同一个事务内写订单并按条件扣减库存，
	// 任何一行扣减失败则整单回滚并返回 InsufficientStockError / ErrVariantNotFound。
	Commit(ctx context.Context, o *Order, decs []StockDecrement) error
	GetByID(ctx context.Context, id int64) (*Order, error)
	ListByUser(ctx context.Context, userID int64) ([]*Order, error)
	ListRecent(ctx context.Context, limit int) ([]*Order, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
}
