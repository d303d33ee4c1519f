package service

import (
	"context"
	"sort"
	"strings"

	"github.com/webprojects1100/rolyo/internal/datamodels/product"
	"github.com/webprojects1100/rolyo/internal/infra/storage"
)

// ProductCard 商品列表卡片，带一张代表图
type ProductCard struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	ImageURL string `json:"imageUrl"`
}

// SizeStock 详情页的尺码库存行
type SizeStock struct {
	VariantID int64  `json:"variantId"`
	Size      string `json:"size"`
	Stock     int64  `json:"stock"`
}

// ColorDetails 颜色款式详情
type ColorDetails struct {
	ID     int64       `json:"id"`
	Name   string      `json:"name"`
	Hex    string      `json:"hex"`
	Images []string    `json:"images"`
	Sizes  []SizeStock `json:"sizes"`
}

// ProductDetails 商品详情
type ProductDetails struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Price       int64          `json:"price"`
	Colors      []ColorDetails `json:"colors"`
}

// CatalogService 前台目录只读服务
type CatalogService struct {
	repo        product.Repository
	store       storage.Store
	placeholder string
}

// NewCatalogService 创建目录服务
func NewCatalogService(repo product.Repository, store storage.Store, placeholder string) *CatalogService {
	return &CatalogService{repo: repo, store: store, placeholder: placeholder}
}

// ResolveImageURL 把图片字段统一成可访问的 URL：
// 已经是完整 URL 或以 / 开头的本地路径原样返回，
// 其余按对象存储 key 处理，为空时给兜底图。
func (s *CatalogService) ResolveImageURL(path string) string {
	if path == "" {
		return s.placeholder
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") || strings.HasPrefix(path, "/") {
		return path
	}
	return s.store.PublicURL(path)
}

// ListDisplayed 在售商品列表，每个商品取第一个颜色的首图做代表图
func (s *CatalogService) ListDisplayed(ctx context.Context) ([]ProductCard, error) {
	list, err := s.repo.ListDisplayed(ctx)
	if err != nil {
		return nil, err
	}
	cards := make([]ProductCard, 0, len(list))
	for _, p := range list {
		var primary string
		if len(p.Colors) > 0 && len(p.Colors[0].Images) > 0 {
			primary = p.Colors[0].Images[0].Path
		}
		cards = append(cards, ProductCard{
			ID:       p.ID,
			Name:     p.Name,
			Price:    p.Price,
			ImageURL: s.ResolveImageURL(primary),
		})
	}
	return cards, nil
}

// sizeOrder 按固定尺码表排序，表外尺码排在最后
func sizeOrder(size string) int {
	for i, s := range product.SizeOptions {
		if s == size {
			return i
		}
	}
	return len(product.SizeOptions)
}

// GetProduct 商品详情：描述字段 + 每个颜色的图片 URL 和尺码库存
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*ProductDetails, error) {
	p, err := s.repo.GetDetails(ctx, id)
	if err != nil {
		return nil, err
	}

	details := &ProductDetails{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Colors:      make([]ColorDetails, 0, len(p.Colors)),
	}
	for _, c := range p.Colors {
		cd := ColorDetails{
			ID:     c.ID,
			Name:   c.Name,
			Hex:    c.Hex,
			Images: make([]string, 0, len(c.Images)),
			Sizes:  make([]SizeStock, 0, len(c.Variants)),
		}
		for _, img := range c.Images {
			cd.Images = append(cd.Images, s.ResolveImageURL(img.Path))
		}
		if len(cd.Images) == 0 {
			cd.Images = append(cd.Images, s.placeholder)
		}
		for _, v := range c.Variants {
			cd.Sizes = append(cd.Sizes, SizeStock{VariantID: v.ID, Size: v.Size, Stock: v.Stock})
		}
		sort.SliceStable(cd.Sizes, func(i, j int) bool {
			return sizeOrder(cd.Sizes[i].Size) < sizeOrder(cd.Sizes[j].Size)
		})
		details.Colors = append(details.Colors, cd)
	}
	return details, nil
}
