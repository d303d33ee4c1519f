package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webprojects1100/rolyo/internal/datamodels/product"
)

func TestParseVariants(t *testing.T) {
	vs, err := parseVariants([]SizeStockInput{
		{Size: "S", Stock: "12"},
		{Size: "M", Stock: ""},     // 留空=无库存
		{Size: "L", Stock: "0"},    // 0=无库存
		{Size: "XL", Stock: "-3"},  // 负数=无库存
		{Size: "XXL", Stock: "ab"}, // 非数字=无库存
		{Size: "XXXL", Stock: "5"},
	})
	require.NoError(t, err)
	require.Len(t, vs, 2)
	assert.Equal(t, "S", vs[0].Size)
	assert.Equal(t, int64(12), vs[0].Stock)
	assert.Equal(t, "XXXL", vs[1].Size)
	assert.Equal(t, int64(5), vs[1].Stock)
}

func TestParseVariantsRejectsUnknownSize(t *testing.T) {
	_, err := parseVariants([]SizeStockInput{{Size: "XS", Stock: "1"}})
	assert.ErrorContains(t, err, "unknown size")
}

// adminFakeRepo 带内存状态的商品仓储，记录尺码替换调用
type adminFakeRepo struct {
	product.Repository
	nextID   int64
	details  *product.Product
	replaced map[int64][]product.Variant

	deletedColors   []int64
	deletedImages   []int64
	createdColors   []*product.Color
	createdImages   []*product.Image
	deletedProducts []int64
}

func newAdminFakeRepo(details *product.Product) *adminFakeRepo {
	return &adminFakeRepo{nextID: 1000, details: details, replaced: map[int64][]product.Variant{}}
}

func (f *adminFakeRepo) GetDetails(ctx context.Context, id int64) (*product.Product, error) {
	return f.details, nil
}

func (f *adminFakeRepo) Create(ctx context.Context, p *product.Product) error {
	f.nextID++
	p.ID = f.nextID
	return nil
}

func (f *adminFakeRepo) Update(ctx context.Context, p *product.Product) error { return nil }

func (f *adminFakeRepo) Delete(ctx context.Context, id int64) error {
	f.deletedProducts = append(f.deletedProducts, id)
	return nil
}

func (f *adminFakeRepo) CreateColor(ctx context.Context, c *product.Color) error {
	f.nextID++
	c.ID = f.nextID
	f.createdColors = append(f.createdColors, c)
	return nil
}

func (f *adminFakeRepo) UpdateColor(ctx context.Context, c *product.Color) error { return nil }

func (f *adminFakeRepo) DeleteColor(ctx context.Context, id int64) error {
	f.deletedColors = append(f.deletedColors, id)
	return nil
}

func (f *adminFakeRepo) CreateImage(ctx context.Context, img *product.Image) error {
	f.nextID++
	img.ID = f.nextID
	f.createdImages = append(f.createdImages, img)
	return nil
}

func (f *adminFakeRepo) DeleteImages(ctx context.Context, ids []int64) error {
	f.deletedImages = append(f.deletedImages, ids...)
	return nil
}

func (f *adminFakeRepo) ReplaceVariants(ctx context.Context, colorID int64, vs []product.Variant) error {
	f.replaced[colorID] = vs
	return nil
}

func TestCreateValidation(t *testing.T) {
	svc := NewAdminCatalogService(newAdminFakeRepo(nil), newFakeStore())

	_, err := svc.Create(context.Background(), &ProductInput{Name: " ", Price: 100})
	assert.ErrorContains(t, err, "name is required")

	_, err = svc.Create(context.Background(), &ProductInput{Name: "Tee", Price: -1})
	assert.ErrorContains(t, err, "non-negative")

	_, err = svc.Create(context.Background(), &ProductInput{Name: "Tee", Price: 100})
	assert.ErrorContains(t, err, "at least one color")

	// 创建时每个颜色必须带图
	_, err = svc.Create(context.Background(), &ProductInput{
		Name: "Tee", Price: 100,
		Colors: []ColorInput{{Name: "Black"}},
	})
	assert.ErrorContains(t, err, "at least one image")

	// 颜色名不能重复（大小写不敏感）
	_, err = svc.Create(context.Background(), &ProductInput{
		Name: "Tee", Price: 100,
		Colors: []ColorInput{
			{Name: "Black", NewImages: []ImageUpload{{Filename: "a.jpg", Data: []byte{1}}}},
			{Name: "black", NewImages: []ImageUpload{{Filename: "b.jpg", Data: []byte{2}}}},
		},
	})
	assert.ErrorContains(t, err, "unique")
}

func TestCreateUploadsImagesAndVariants(t *testing.T) {
	repo := newAdminFakeRepo(nil)
	store := newFakeStore()
	svc := NewAdminCatalogService(repo, store)

	p, err := svc.Create(context.Background(), &ProductInput{
		Name:  "Classic Tee",
		Price: 2900,
		Colors: []ColorInput{{
			Name: "Black",
			NewImages: []ImageUpload{
				{Filename: "front.jpg", Data: []byte{1}},
				{Filename: "back.jpg", Data: []byte{2}},
			},
			Sizes: []SizeStockInput{{Size: "M", Stock: "20"}},
		}},
	})
	require.NoError(t, err)
	assert.NotZero(t, p.ID)

	require.Len(t, repo.createdColors, 1)
	colorID := repo.createdColors[0].ID

	// 两张图都上传并落记录，位置从 1 开始
	assert.Len(t, store.uploads, 2)
	require.Len(t, repo.createdImages, 2)
	assert.Equal(t, 1, repo.createdImages[0].Position)
	assert.Equal(t, 2, repo.createdImages[1].Position)

	require.Len(t, repo.replaced[colorID], 1)
	assert.Equal(t, int64(20), repo.replaced[colorID][0].Stock)
}

// 编辑时把某尺码库存清空提交，库里的旧记录要被整体替换掉
func TestUpdateRemovesClearedSizes(t *testing.T) {
	existing := &product.Product{
		ID: 1, Name: "Classic Tee", Price: 2900,
		Colors: []product.Color{{
			ID:   10,
			Name: "Black",
			Images: []product.Image{
				{ID: 501, ColorID: 10, Path: "products/1/10/front.jpg", Position: 1},
			},
			Variants: []product.Variant{
				{ID: 100, ColorID: 10, Size: "M", Stock: 20},
				{ID: 101, ColorID: 10, Size: "L", Stock: 18},
			},
		}},
	}
	repo := newAdminFakeRepo(existing)
	svc := NewAdminCatalogService(repo, newFakeStore())

	err := svc.Update(context.Background(), 1, &ProductInput{
		Name: "Classic Tee", Price: 2900,
		Colors: []ColorInput{{
			ID:           10,
			Name:         "Black",
			KeepImageIDs: []int64{501},
			Sizes: []SizeStockInput{
				{Size: "M", Stock: "20"},
				{Size: "L", Stock: ""}, // 清空 L
			},
		}},
	})
	require.NoError(t, err)

	require.Len(t, repo.replaced[10], 1)
	assert.Equal(t, "M", repo.replaced[10][0].Size)
	assert.Empty(t, repo.deletedImages)
}

// 删掉一个颜色：存储对象和数据库记录都要清
func TestUpdateRemovesDroppedColor(t *testing.T) {
	existing := &product.Product{
		ID: 1, Name: "Classic Tee", Price: 2900,
		Colors: []product.Color{
			{ID: 10, Name: "Black"},
			{ID: 11, Name: "White", Images: []product.Image{
				{ID: 502, ColorID: 11, Path: "products/1/11/front.jpg", Position: 1},
			}},
		},
	}
	repo := newAdminFakeRepo(existing)
	store := newFakeStore()
	store.uploads["products/1/11/front.jpg"] = []byte{1}
	svc := NewAdminCatalogService(repo, store)

	err := svc.Update(context.Background(), 1, &ProductInput{
		Name: "Classic Tee", Price: 2900,
		Colors: []ColorInput{{ID: 10, Name: "Black"}},
	})
	require.NoError(t, err)

	assert.Equal(t, []int64{11}, repo.deletedColors)
	assert.Contains(t, store.removed, "products/1/11/front.jpg")
}

// 编辑时从保留名单去掉一张图，新图位置接在保留图之后
func TestUpdateImageDiff(t *testing.T) {
	existing := &product.Product{
		ID: 1, Name: "Classic Tee", Price: 2900,
		Colors: []product.Color{{
			ID:   10,
			Name: "Black",
			Images: []product.Image{
				{ID: 501, ColorID: 10, Path: "products/1/10/front.jpg", Position: 1},
				{ID: 502, ColorID: 10, Path: "products/1/10/back.jpg", Position: 2},
			},
		}},
	}
	repo := newAdminFakeRepo(existing)
	store := newFakeStore()
	store.uploads["products/1/10/front.jpg"] = []byte{1}
	store.uploads["products/1/10/back.jpg"] = []byte{2}
	svc := NewAdminCatalogService(repo, store)

	err := svc.Update(context.Background(), 1, &ProductInput{
		Name: "Classic Tee", Price: 2900,
		Colors: []ColorInput{{
			ID:           10,
			Name:         "Black",
			KeepImageIDs: []int64{502},
			NewImages:    []ImageUpload{{Filename: "side.jpg", Data: []byte{3}}},
		}},
	})
	require.NoError(t, err)

	assert.Equal(t, []int64{501}, repo.deletedImages)
	assert.Contains(t, store.removed, "products/1/10/front.jpg")

	require.Len(t, repo.createdImages, 1)
	assert.Equal(t, 3, repo.createdImages[0].Position) // 保留图最大位置是 2
}

func TestDeleteCleansStorage(t *testing.T) {
	existing := &product.Product{
		ID: 1, Name: "Classic Tee",
		Colors: []product.Color{{ID: 10, Name: "Black"}},
	}
	repo := newAdminFakeRepo(existing)
	store := newFakeStore()
	store.uploads["products/1/10/front.jpg"] = []byte{1}
	svc := NewAdminCatalogService(repo, store)

	require.NoError(t, svc.Delete(context.Background(), 1))
	assert.Equal(t, []int64{1}, repo.deletedProducts)
	assert.Empty(t, store.uploads)
}
