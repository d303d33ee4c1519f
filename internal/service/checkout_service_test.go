package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/webprojects1100/rolyo/internal/datamodels/cart"
	"github.com/webprojects1100/rolyo/internal/datamodels/order"
	"github.com/webprojects1100/rolyo/internal/datamodels/product"
)

// fakeProductRepo 只实现测试需要的 GetVariant，其余接口留空
type fakeProductRepo struct {
	product.Repository
	variants map[int64]*product.Variant
}

func (f *fakeProductRepo) GetVariant(ctx context.Context, id int64) (*product.Variant, error) {
	v, ok := f.variants[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return v, nil
}

type fakeOrderRepo struct {
	order.Repository
	committed  *order.Order
	decrements []order.StockDecrement
	commitErr  error
}

func (f *fakeOrderRepo) Commit(ctx context.Context, o *order.Order, decs []order.StockDecrement) error {
	if f.commitErr != nil {
		return f.commitErr
	}
	o.ID = 42
	f.committed = o
	f.decrements = decs
	return nil
}

func validShipping() order.ShippingInfo {
	return order.ShippingInfo{
		Name:       "Alice Doe",
		Address:    "1 Main Street, Springfield",
		Phone:      "13800138000",
		PostalCode: "100000",
	}
}

func cartLines() []cart.Line {
	return []cart.Line{
		{VariantID: 100, ProductID: 1, Name: "Classic Tee", Price: 2900, Size: "M", Color: "Black", Quantity: 2},
		{VariantID: 101, ProductID: 1, Name: "Classic Tee", Price: 2900, Size: "L", Color: "Black", Quantity: 1},
	}
}

func newCheckout(variants map[int64]*product.Variant, orders *fakeOrderRepo) *CheckoutService {
	return NewCheckoutService(&fakeProductRepo{variants: variants}, orders, nil)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	svc := newCheckout(nil, &fakeOrderRepo{})
	_, err := svc.PlaceOrder(context.Background(), 1, validShipping(), nil)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestPlaceOrderShippingValidation(t *testing.T) {
	svc := newCheckout(nil, &fakeOrderRepo{})

	sh := validShipping()
	sh.Name = "A"
	sh.PostalCode = ""
	_, err := svc.PlaceOrder(context.Background(), 1, sh, cartLines())

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Details, "name")
	assert.Contains(t, ve.Details, "postalCode")
	assert.NotContains(t, ve.Details, "address")
}

func TestPlaceOrderRejectsBadQuantity(t *testing.T) {
	svc := newCheckout(nil, &fakeOrderRepo{})

	lines := cartLines()
	lines[1].Quantity = 0
	_, err := svc.PlaceOrder(context.Background(), 1, validShipping(), lines)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Details["cart"], "Classic Tee (L)")
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	variants := map[int64]*product.Variant{
		100: {ID: 100, Size: "M", Stock: 1}, // 购物车要 2
		101: {ID: 101, Size: "L", Stock: 5},
	}
	orders := &fakeOrderRepo{}
	svc := newCheckout(variants, orders)

	_, err := svc.PlaceOrder(context.Background(), 1, validShipping(), cartLines())

	var insufficient *order.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "Not enough stock for Classic Tee (M). Only 1 left.", err.Error())
	assert.Nil(t, orders.committed, "整批校验失败不应写订单")
}

func TestPlaceOrderVariantGone(t *testing.T) {
	variants := map[int64]*product.Variant{
		100: {ID: 100, Size: "M", Stock: 5},
		// 101 不存在
	}
	svc := newCheckout(variants, &fakeOrderRepo{})

	_, err := svc.PlaceOrder(context.Background(), 1, validShipping(), cartLines())
	assert.ErrorIs(t, err, order.ErrVariantNotFound)
}

func TestPlaceOrderSuccess(t *testing.T) {
	variants := map[int64]*product.Variant{
		100: {ID: 100, Size: "M", Stock: 5},
		101: {ID: 101, Size: "L", Stock: 5},
	}
	orders := &fakeOrderRepo{}
	svc := newCheckout(variants, orders)

	o, err := svc.PlaceOrder(context.Background(), 7, validShipping(), cartLines())
	require.NoError(t, err)

	assert.Equal(t, int64(42), o.ID)
	assert.Equal(t, int64(7), o.UserID)
	assert.Equal(t, order.StatusPending, o.Status)
	assert.Equal(t, int64(3*2900), o.TotalAmount)

	// 订单行是冻结副本，字段逐一带过去
	require.Len(t, o.Items, 2)
	assert.Equal(t, "Classic Tee", o.Items[0].Name)
	assert.Equal(t, int64(2900), o.Items[0].Price)
	assert.Equal(t, int64(2), o.Items[0].Quantity)

	// 扣减清单和购物车行一一对应
	require.Len(t, orders.decrements, 2)
	assert.Equal(t, int64(100), orders.decrements[0].VariantID)
	assert.Equal(t, int64(2), orders.decrements[0].Quantity)
}

// 预校验通过但提交时竞争失败，错误要原样透出
func TestPlaceOrderCommitRace(t *testing.T) {
	variants := map[int64]*product.Variant{
		100: {ID: 100, Size: "M", Stock: 5},
		101: {ID: 101, Size: "L", Stock: 5},
	}
	orders := &fakeOrderRepo{
		commitErr: &order.InsufficientStockError{Name: "Classic Tee", Size: "M", Remaining: 0},
	}
	svc := newCheckout(variants, orders)

	_, err := svc.PlaceOrder(context.Background(), 1, validShipping(), cartLines())

	var insufficient *order.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int64(0), insufficient.Remaining)
}

func TestValidateStockLookupFailure(t *testing.T) {
	repo := &errorProductRepo{err: errors.New("connection refused")}
	svc := NewCheckoutService(repo, &fakeOrderRepo{}, nil)

	err := svc.ValidateStock(context.Background(), cartLines()[:1])
	assert.ErrorIs(t, err, ErrStockLookup)
}

type errorProductRepo struct {
	product.Repository
	err error
}

func (f *errorProductRepo) GetVariant(ctx context.Context, id int64) (*product.Variant, error) {
	return nil, f.err
}
