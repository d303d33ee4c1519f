package cart

import (
	"context"
	"time"
)

// Line 购物车行，按 variant 唯一。展示字段冗余保存，
// Stock 只是加入时的快照，下单时以库存表为准重新校验。
type Line struct {
	VariantID int64  `json:"variantId"`
	ProductID int64  `json:"productId"`
	Name      string `json:"name"`
	Price     int64  `json:"price"` // 分
	ImageURL  string `json:"imageUrl"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Quantity  int64  `json:"quantity"`
	Stock     int64  `json:"stock"`
}

// Cart 购物车，保持加入顺序，每个 variant 只有一行
type Cart struct {
	Lines []Line `json:"lines"`
}

// Add 加入一行；variant 已存在时合并数量而不是重复加行
func (c *Cart) Add(l Line) {
	if l.Quantity < 1 {
		l.Quantity = 1
	}
	for i := range c.Lines {
		if c.Lines[i].VariantID == l.VariantID {
			c.Lines[i].Quantity += l.Quantity
			// 快照字段以最近一次为准
			c.Lines[i].Stock = l.Stock
			return
		}
	}
	c.Lines = append(c.Lines, l)
}

// Remove 删除指定 variant 的行，不存在时为空操作
func (c *Cart) Remove(variantID int64) {
	for i := range c.Lines {
		if c.Lines[i].VariantID == variantID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return
		}
	}
}

// SetQuantity 设置数量，qty <= 0 视为删除该行
func (c *Cart) SetQuantity(variantID, qty int64) {
	if qty <= 0 {
		c.Remove(variantID)
		return
	}
	for i := range c.Lines {
		if c.Lines[i].VariantID == variantID {
			c.Lines[i].Quantity = qty
			return
		}
	}
}

// Clear 清空购物车
func (c *Cart) Clear() {
	c.Lines = nil
}

// Total 合计金额（分）
func (c *Cart) Total() int64 {
	var total int64
	for _, l := range c.Lines {
		total += l.Price * l.Quantity
	}
	return total
}

// TotalItems 合计件数
func (c *Cart) TotalItems() int64 {
	var n int64
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// PersistedLine 登录用户的持久化购物车行
type PersistedLine struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"index;not null" json:"user_id"`
	VariantID int64     `gorm:"not null" json:"variant_id"`
	ProductID int64     `gorm:"not null" json:"product_id"`
	Name      string    `gorm:"size:128" json:"name"`
	Price     int64     `json:"price"`
	ImageURL  string    `gorm:"size:512" json:"image_url"`
	Size      string    `gorm:"size:16" json:"size"`
	Color     string    `gorm:"size:64" json:"color"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	Stock     int64     `json:"stock"`
	CreatedAt time.Time `json:"created_at"`
}

// Repository 持久化购物车仓储接口
type Repository interface {
	ListByUser(ctx context.Context, userID int64) ([]Line, error)
	// ReplaceForUser 先清后插，整体镜像当前购物车
	ReplaceForUser(ctx context.Context, userID int64, lines []Line) error
	ClearForUser(ctx context.Context, userID int64) error
}
