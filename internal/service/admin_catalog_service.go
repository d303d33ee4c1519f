package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/webprojects1100/rolyo/internal/datamodels/product"
	"github.com/webprojects1100/rolyo/internal/infra/storage"
)

// SizeStockInput 后台提交的尺码库存，Stock 为空串/非正数视为该尺码无库存
type SizeStockInput struct {
	Size  string `json:"size"`
	Stock string `json:"stock"`
}

// ImageUpload 新上传的图片，Data 走 JSON base64
type ImageUpload struct {
	Filename string `json:"filename"`
	Data     []byte `json:"data"`
}

// ColorInput 提交的颜色款式。ID 为 0 表示新增；
// KeepImageIDs 不包含的已有图片会被删除。
type ColorInput struct {
	ID           int64            `json:"id"`
	Name         string           `json:"name"`
	Hex          string           `json:"hex"`
	KeepImageIDs []int64          `json:"keepImageIds"`
	NewImages    []ImageUpload    `json:"newImages"`
	Sizes        []SizeStockInput `json:"sizes"`
}

// ProductInput 后台创建/更新商品的完整提交
type ProductInput struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Price       int64        `json:"price"` // 分
	Status      int          `json:"status"`
	Colors      []ColorInput `json:"colors"`
}

// AdminCatalogService 后台商品维护
type AdminCatalogService struct {
	repo  product.Repository
	store storage.Store
}

// NewAdminCatalogService 创建后台目录服务
func NewAdminCatalogService(repo product.Repository, store storage.Store) *AdminCatalogService {
	return &AdminCatalogService{repo: repo, store: store}
}

func validSize(size string) bool {
	for _, s := range product.SizeOptions {
		if s == size {
			return true
		}
	}
	return false
}

// parseVariants 过滤出有效库存的尺码。空串、非数字、0 和负数
// 都按“该尺码无库存”处理，不产生记录。
func parseVariants(sizes []SizeStockInput) ([]product.Variant, error) {
	var vs []product.Variant
	for _, in := range sizes {
		if !validSize(in.Size) {
			return nil, fmt.Errorf("unknown size %q", in.Size)
		}
		raw := strings.TrimSpace(in.Stock)
		if raw == "" {
			continue
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			continue
		}
		vs = append(vs, product.Variant{Size: in.Size, Stock: n})
	}
	return vs, nil
}

func (s *AdminCatalogService) validate(in *ProductInput, requireImages bool) error {
	if strings.TrimSpace(in.Name) == "" {
		return errors.New("name is required")
	}
	if in.Price < 0 {
		return errors.New("price must be non-negative")
	}
	if len(in.Colors) == 0 {
		return errors.New("at least one color must be added")
	}
	seen := map[string]struct{}{}
	for _, c := range in.Colors {
		key := strings.ToLower(strings.TrimSpace(c.Name))
		if key == "" {
			return errors.New("color name is required")
		}
		if _, dup := seen[key]; dup {
			return errors.New("color names must be unique")
		}
		seen[key] = struct{}{}
		if requireImages && len(c.NewImages) == 0 {
			return fmt.Errorf("color %s must have at least one image", c.Name)
		}
	}
	return nil
}

func colorPrefix(productID, colorID int64) string {
	return fmt.Sprintf("products/%d/%d", productID, colorID)
}

func (s *AdminCatalogService) uploadImages(ctx context.Context, productID, colorID int64, uploads []ImageUpload, startPos int) error {
	for i, img := range uploads {
		key := fmt.Sprintf("%s/%s-%s", colorPrefix(productID, colorID), uuid.NewString(), img.Filename)
		if err := s.store.Upload(ctx, key, img.Data); err != nil {
			return fmt.Errorf("image upload failed for color %d: %w", colorID, err)
		}
		if err := s.repo.CreateImage(ctx, &product.Image{
			ColorID:  colorID,
			Path:     key,
			Position: startPos + i + 1,
		}); err != nil {
			return err
		}
	}
	return nil
}

// Create 创建商品：商品 → 每个颜色 → 图片上传+记录 → 尺码库存
func (s *AdminCatalogService) Create(ctx context.Context, in *ProductInput) (*product.Product, error) {
	if err := s.validate(in, true); err != nil {
		return nil, err
	}

	p := &product.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		Status:      in.Status,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	for _, cin := range in.Colors {
		c := &product.Color{ProductID: p.ID, Name: strings.TrimSpace(cin.Name), Hex: strings.TrimSpace(cin.Hex)}
		if err := s.repo.CreateColor(ctx, c); err != nil {
			return nil, err
		}
		if err := s.uploadImages(ctx, p.ID, c.ID, cin.NewImages, 0); err != nil {
			return nil, err
		}
		vs, err := parseVariants(cin.Sizes)
		if err != nil {
			return nil, err
		}
		if err := s.repo.ReplaceVariants(ctx, c.ID, vs); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// removeColorObjects 删掉某个颜色目录下的所有存储对象。
// 存储不在数据库级联范围内，必须单独清理；失败只记日志不阻塞删除。
func (s *AdminCatalogService) removeColorObjects(ctx context.Context, productID, colorID int64) {
	prefix := colorPrefix(productID, colorID)
	keys, err := s.store.List(ctx, prefix)
	if err != nil {
		zap.L().Warn("list storage objects failed", zap.String("prefix", prefix), zap.Error(err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := s.store.Remove(ctx, keys); err != nil {
		zap.L().Warn("remove storage objects failed", zap.String("prefix", prefix), zap.Error(err))
	}
}

// Update 更新商品：对比提交的颜色/图片集合和库里的集合，
// 少了的删（连带存储对象），多了的增，没动的保留；尺码库存整体替换，
// 所以某尺码留空提交会把旧的库存行删掉而不是留着过期数字。
func (s *AdminCatalogService) Update(ctx context.Context, id int64, in *ProductInput) error {
	if err := s.validate(in, false); err != nil {
		return err
	}

	existing, err := s.repo.GetDetails(ctx, id)
	if err != nil {
		return err
	}

	existing.Name = strings.TrimSpace(in.Name)
	existing.Description = strings.TrimSpace(in.Description)
	existing.Price = in.Price
	existing.Status = in.Status
	if err := s.repo.Update(ctx, existing); err != nil {
		return err
	}

	// 删除提交里已不存在的颜色
	submitted := map[int64]struct{}{}
	for _, cin := range in.Colors {
		if cin.ID != 0 {
			submitted[cin.ID] = struct{}{}
		}
	}
	for _, c := range existing.Colors {
		if _, keep := submitted[c.ID]; keep {
			continue
		}
		s.removeColorObjects(ctx, id, c.ID)
		if err := s.repo.DeleteColor(ctx, c.ID); err != nil {
			return fmt.Errorf("failed to delete color %s: %w", c.Name, err)
		}
	}

	storedColors := map[int64]*product.Color{}
	for i := range existing.Colors {
		storedColors[existing.Colors[i].ID] = &existing.Colors[i]
	}

	for _, cin := range in.Colors {
		colorID := cin.ID
		if colorID == 0 {
			c := &product.Color{ProductID: id, Name: strings.TrimSpace(cin.Name), Hex: strings.TrimSpace(cin.Hex)}
			if err := s.repo.CreateColor(ctx, c); err != nil {
				return fmt.Errorf("failed to create color %s: %w", cin.Name, err)
			}
			colorID = c.ID
		} else {
			if err := s.repo.UpdateColor(ctx, &product.Color{ID: colorID, Name: strings.TrimSpace(cin.Name), Hex: strings.TrimSpace(cin.Hex)}); err != nil {
				return fmt.Errorf("failed to update color %s: %w", cin.Name, err)
			}
		}

		// 对比图片：保留名单之外的删掉，存储对象和记录都要清
		maxPos := 0
		if stored, ok := storedColors[colorID]; ok {
			keep := map[int64]struct{}{}
			for _, kid := range cin.KeepImageIDs {
				keep[kid] = struct{}{}
			}
			var deleteIDs []int64
			var deleteKeys []string
			for _, img := range stored.Images {
				if _, ok := keep[img.ID]; ok {
					if img.Position > maxPos {
						maxPos = img.Position
					}
					continue
				}
				deleteIDs = append(deleteIDs, img.ID)
				deleteKeys = append(deleteKeys, img.Path)
			}
			if len(deleteKeys) > 0 {
				if err := s.store.Remove(ctx, deleteKeys); err != nil {
					zap.L().Warn("remove image objects failed", zap.Int64("color_id", colorID), zap.Error(err))
				}
			}
			if err := s.repo.DeleteImages(ctx, deleteIDs); err != nil {
				return fmt.Errorf("failed to delete image records: %w", err)
			}
		}

		if err := s.uploadImages(ctx, id, colorID, cin.NewImages, maxPos); err != nil {
			return err
		}

		vs, err := parseVariants(cin.Sizes)
		if err != nil {
			return err
		}
		if err := s.repo.ReplaceVariants(ctx, colorID, vs); err != nil {
			return fmt.Errorf("failed to replace variants for color %d: %w", colorID, err)
		}
	}
	return nil
}

// Delete 删除商品：先清每个颜色的存储对象，再删商品行，
// 颜色/图片/尺码记录由数据库级联删除。
func (s *AdminCatalogService) Delete(ctx context.Context, id int64) error {
	existing, err := s.repo.GetDetails(ctx, id)
	if err != nil {
		return err
	}
	for _, c := range existing.Colors {
		s.removeColorObjects(ctx, id, c.ID)
	}
	return s.repo.Delete(ctx, id)
}
