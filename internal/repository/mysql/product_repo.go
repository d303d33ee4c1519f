package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/webprojects1100/rolyo/internal/datamodels/product"
)

type productRepo struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) product.Repository {
	return &productRepo{db: db}
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	var p product.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) GetDetails(ctx context.Context, id int64) (*product.Product, error) {
	var p product.Product
	if err := r.db.WithContext(ctx).
		Preload("Colors", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Colors.Images", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Colors.Variants").
		First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) ListDisplayed(ctx context.Context) ([]*product.Product, error) {
	var list []*product.Product
	if err := r.db.WithContext(ctx).
		Where("status = ?", product.StatusDisplayed).
		Preload("Colors", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Colors.Images", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *productRepo) ListAll(ctx context.Context) ([]*product.Product, error) {
	var list []*product.Product
	if err := r.db.WithContext(ctx).
		Preload("Colors", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Colors.Images", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Colors.Variants").
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *productRepo) Create(ctx context.Context, p *product.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) Update(ctx context.Context, p *product.Product) error {
	// 只更新商品自身字段，颜色/图片/尺码由后台服务单独维护
	return r.db.WithContext(ctx).Omit("Colors").Save(p).Error
}

func (r *productRepo) Delete(ctx context.Context, id int64) error {
	// 外键级联删除颜色、图片和尺码记录
	return r.db.WithContext(ctx).Delete(&product.Product{}, id).Error
}

func (r *productRepo) CreateColor(ctx context.Context, c *product.Color) error {
	return r.db.WithContext(ctx).Omit("Images", "Variants").Create(c).Error
}

func (r *productRepo) UpdateColor(ctx context.Context, c *product.Color) error {
	return r.db.WithContext(ctx).Model(&product.Color{ID: c.ID}).
		Updates(map[string]interface{}{"name": c.Name, "hex": c.Hex}).Error
}

func (r *productRepo) DeleteColor(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&product.Color{}, id).Error
}

func (r *productRepo) CreateImage(ctx context.Context, img *product.Image) error {
	return r.db.WithContext(ctx).Create(img).Error
}

func (r *productRepo) DeleteImages(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Delete(&product.Image{}, ids).Error
}

func (r *productRepo) ReplaceVariants(ctx context.Context, colorID int64, vs []product.Variant) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("color_id = ?", colorID).Delete(&product.Variant{}).Error; err != nil {
			return err
		}
		if len(vs) == 0 {
			return nil
		}
		for i := range vs {
			vs[i].ID = 0
			vs[i].ColorID = colorID
		}
		return tx.Create(&vs).Error
	})
}

func (r *productRepo) GetVariant(ctx context.Context, id int64) (*product.Variant, error) {
	var v product.Variant
	if err := r.db.WithContext(ctx).First(&v, id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}
