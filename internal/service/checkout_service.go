package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/webprojects1100/rolyo/internal/datamodels/cart"
	"github.com/webprojects1100/rolyo/internal/datamodels/order"
	"github.com/webprojects1100/rolyo/internal/datamodels/product"
	"github.com/webprojects1100/rolyo/internal/infra/mq"
)

// ErrEmptyCart 购物车为空不能下单
var ErrEmptyCart = errors.New("cart is empty")

// ErrStockLookup 库存查询失败，区别于“库存不足”，前端提示重试而不是调数量
var ErrStockLookup = errors.New("could not validate stock")

// ValidationError 请求数据不合法，Details 按字段给原因
type ValidationError struct {
	Details map[string]string
}

func (e *ValidationError) Error() string {
	return "invalid input"
}

// OrderPlacedMessage 下单成功后投递给 worker 的消息
type OrderPlacedMessage struct {
	OrderID int64 `json:"order_id"`
	UserID  int64 `json:"user_id"`
}

// CheckoutService 库存校验 + 下单
type CheckoutService struct {
	products product.Repository
	orders   order.Repository
	mqConn   *amqp.Connection
}

// NewCheckoutService 创建结算服务，mqConn 可为 nil（不投递消息）
func NewCheckoutService(products product.Repository, orders order.Repository, mqConn *amqp.Connection) *CheckoutService {
	return &CheckoutService{products: products, orders: orders, mqConn: mqConn}
}

// validateShipping 收货信息校验，返回按字段的错误明细
func validateShipping(sh order.ShippingInfo) map[string]string {
	details := map[string]string{}
	if n := len(sh.Name); n < 2 || n > 100 {
		details["name"] = "name must be 2-100 characters"
	}
	if n := len(sh.Address); n < 5 || n > 200 {
		details["address"] = "address must be 5-200 characters"
	}
	if n := len(sh.Phone); n < 7 || n > 20 {
		details["phone"] = "phone must be 7-20 characters"
	}
	if n := len(sh.PostalCode); n < 1 || n > 20 {
		details["postalCode"] = "postal code is required"
	}
	if len(details) == 0 {
		return nil
	}
	return details
}

// ValidateStock 按 variant 逐行校验库存，任何一行不满足整批失败。
// 只读不扣减；真正的扣减在 PlaceOrder 的事务里做条件更新。
func (s *CheckoutService) ValidateStock(ctx context.Context, lines []cart.Line) error {
	for _, l := range lines {
		v, err := s.products.GetVariant(ctx, l.VariantID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w for %s (%s)", order.ErrVariantNotFound, l.Name, l.Size)
			}
			GetMonitor().RecordDBError()
			return fmt.Errorf("%w for %s (%s)", ErrStockLookup, l.Name, l.Size)
		}
		if l.Quantity > v.Stock {
			return &order.InsufficientStockError{Name: l.Name, Size: l.Size, Remaining: v.Stock}
		}
	}
	return nil
}

// PlaceOrder 下单：校验入参和库存，事务内写订单并条件扣减每行库存，
// 任何一行扣不动则整单回滚。订单行是下单时刻的冻结副本。
func (s *CheckoutService) PlaceOrder(ctx context.Context, userID int64, shipping order.ShippingInfo, lines []cart.Line) (*order.Order, error) {
	GetMonitor().RecordCheckoutRequest()

	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	if details := validateShipping(shipping); details != nil {
		return nil, &ValidationError{Details: details}
	}
	for _, l := range lines {
		if l.Quantity < 1 {
			return nil, &ValidationError{Details: map[string]string{
				"cart": fmt.Sprintf("invalid quantity for %s (%s)", l.Name, l.Size),
			}}
		}
		if l.Price < 0 {
			return nil, &ValidationError{Details: map[string]string{
				"cart": fmt.Sprintf("invalid price for %s (%s)", l.Name, l.Size),
			}}
		}
	}

	// 预校验，拿到对用户友好的报错；并发窗口由下面的条件更新兜底
	if err := s.ValidateStock(ctx, lines); err != nil {
		GetMonitor().RecordStockRejection()
		return nil, err
	}

	items := make([]order.LineItem, 0, len(lines))
	decs := make([]order.StockDecrement, 0, len(lines))
	var total int64
	for _, l := range lines {
		items = append(items, order.LineItem{
			VariantID: l.VariantID,
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.Price,
			ImageURL:  l.ImageURL,
			Size:      l.Size,
			Color:     l.Color,
			Quantity:  l.Quantity,
		})
		decs = append(decs, order.StockDecrement{
			VariantID: l.VariantID,
			Quantity:  l.Quantity,
			Name:      l.Name,
			Size:      l.Size,
		})
		total += l.Price * l.Quantity
	}

	o := &order.Order{
		UserID:      userID,
		Shipping:    shipping,
		Items:       items,
		TotalAmount: total,
		Status:      order.StatusPending,
	}

	if err := s.orders.Commit(ctx, o, decs); err != nil {
		var insufficient *order.InsufficientStockError
		if errors.As(err, &insufficient) || errors.Is(err, order.ErrVariantNotFound) {
			GetMonitor().RecordStockRejection()
		} else {
			GetMonitor().RecordDBError()
		}
		return nil, err
	}

	// 订单已提交，后续都是尽力而为：消息发不出去只记日志，
	// worker 拿不到消息时订单停在 pending，由后台人工推进。
	if err := s.publishOrderPlaced(ctx, o); err != nil {
		GetMonitor().RecordMQError()
		zap.L().Warn("publish order.placed failed",
			zap.Int64("order_id", o.ID),
			zap.Error(err))
	}

	GetMonitor().RecordCheckoutSuccess()
	return o, nil
}

func (s *CheckoutService) publishOrderPlaced(ctx context.Context, o *order.Order) error {
	if s.mqConn == nil {
		return nil
	}
	ch, err := s.mqConn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if _, err = ch.QueueDeclare(mq.OrderQueue, true, false, false, false, nil); err != nil {
		return err
	}

	body, err := json.Marshal(&OrderPlacedMessage{OrderID: o.ID, UserID: o.UserID})
	if err != nil {
		return err
	}
	return ch.PublishWithContext(
		ctx,
		"",
		mq.OrderQueue,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}
