package subscription

import (
	"context"
	"errors"
	"time"
)

// ErrAlreadySubscribed 邮箱已订阅（唯一索引冲突）
var ErrAlreadySubscribed = errors.New("email already subscribed")

// Subscription 订阅邮箱
type Subscription struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Repository 订阅仓储接口
type Repository interface {
	Create(ctx context.Context, s *Subscription) error
}
