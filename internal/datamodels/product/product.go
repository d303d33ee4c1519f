package product

import (
	"context"
	"time"
)

// 商品上架状态
const (
	StatusArchived  = 0 // 已归档，前台不展示
	StatusDisplayed = 1 // 在售
)

// SizeOptions 固定尺码表，后台录入库存时按此顺序展示
var SizeOptions = []string{"S", "M", "L", "XL", "XXL", "XXXL"}

// Product 商品模型
type Product struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:128;not null" json:"name"`
	Description string    `gorm:"size:512" json:"description"`
	Price       int64     `gorm:"not null" json:"price"` // 分
	Status      int       `gorm:"index" json:"status"`   // 0:归档 1:在售
	Colors      []Color   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"colors,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Color 颜色款式，图片和尺码库存都挂在颜色下面
type Color struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	ProductID int64     `gorm:"index;not null" json:"product_id"`
	Name      string    `gorm:"size:64;not null" json:"name"`
	Hex       string    `gorm:"size:16" json:"hex"`
	Images    []Image   `gorm:"foreignKey:ColorID;constraint:OnDelete:CASCADE" json:"images,omitempty"`
	Variants  []Variant `gorm:"foreignKey:ColorID;constraint:OnDelete:CASCADE" json:"variants,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Image 商品图片，Path 存对象存储 key 或外部 URL
type Image struct {
	ID       int64  `gorm:"primaryKey" json:"id"`
	ColorID  int64  `gorm:"index;not null" json:"color_id"`
	Path     string `gorm:"size:512;not null" json:"path"`
	Position int    `gorm:"not null" json:"position"`
}

// Variant 尺码库存记录，库存的唯一权威计数
type Variant struct {
	ID      int64  `gorm:"primaryKey" json:"id"`
	ColorID int64  `gorm:"uniqueIndex:uk_color_size;not null" json:"color_id"`
	Size    string `gorm:"uniqueIndex:uk_color_size;size:16;not null" json:"size"`
	Stock   int64  `gorm:"not null" json:"stock"`
}

// Repository 商品仓储接口
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Product, error)
	// GetDetails 预加载颜色/图片/尺码
	GetDetails(ctx context.Context, id int64) (*Product, error)
	ListDisplayed(ctx context.Context) ([]*Product, error)
	ListAll(ctx context.Context) ([]*Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id int64) error

	CreateColor(ctx context.Context, c *Color) error
	UpdateColor(ctx context.Context, c *Color) error
	DeleteColor(ctx context.Context, id int64) error

	CreateImage(ctx context.Context, img *Image) error
	DeleteImages(ctx context.Context, ids []int64) error

	// ReplaceVariants 整体替换某个颜色下的尺码库存
	ReplaceVariants(ctx context.Context, colorID int64, vs []Variant) error
	GetVariant(ctx context.Context, id int64) (*Variant, error)
}
