package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"flag"

	"go.uber.org/zap"

	"github.com/webprojects1100/rolyo/internal/config"
	"github.com/webprojects1100/rolyo/internal/datamodels/product"
	"github.com/webprojects1100/rolyo/internal/datamodels/user"
	"github.com/webprojects1100/rolyo/internal/logging"
	"github.com/webprojects1100/rolyo/internal/repository/mysql"
)

type seedVariant struct {
	size  string
	stock int64
}

type seedColor struct {
	name     string
	hex      string
	images   []string
	variants []seedVariant
}

type seedProduct struct {
	name        string
	description string
	price       int64 // 分
	status      int
	colors      []seedColor
}

// 演示数据，图片用外部 URL，不依赖本地对象存储
var seedProducts = []seedProduct{
	{
		name:        "Classic Tee",
		description: "Heavyweight cotton tee with a relaxed fit.",
		price:       2900,
		status:      product.StatusDisplayed,
		colors: []seedColor{
			{
				name:   "Black",
				hex:    "#111111",
				images: []string{"https://images.example.com/classic-tee-black-front.jpg", "https://images.example.com/classic-tee-black-back.jpg"},
				variants: []seedVariant{
					{"S", 12}, {"M", 20}, {"L", 18}, {"XL", 7},
				},
			},
			{
				name:   "White",
				hex:    "#ffffff",
				images: []string{"https://images.example.com/classic-tee-white-front.jpg"},
				variants: []seedVariant{
					{"M", 15}, {"L", 9},
				},
			},
		},
	},
	{
		name:        "Oversized Hoodie",
		description: "Brushed fleece hoodie, drop shoulder cut.",
		price:       6500,
		status:      product.StatusDisplayed,
		colors: []seedColor{
			{
				name:   "Sand",
				hex:    "#d8c6a5",
				images: []string{"https://images.example.com/hoodie-sand-front.jpg"},
				variants: []seedVariant{
					{"M", 10}, {"L", 10}, {"XL", 5}, {"XXL", 3},
				},
			},
		},
	},
	{
		name:        "Archive Jacket",
		description: "Last season's shell jacket, kept for order history demos.",
		price:       12000,
		status:      product.StatusArchived,
		colors: []seedColor{
			{
				name:   "Olive",
				hex:    "#556b2f",
				images: []string{"https://images.example.com/jacket-olive-front.jpg"},
				variants: []seedVariant{
					{"L", 2},
				},
			},
		},
	},
}

// 往数据库灌演示目录和一个管理员账号，方便本地起环境
func main() {
	configPath := flag.String("config", "./config", "配置文件目录")
	flag.Parse()

	logging.Init()

	cfg, err := config.Load(*configPath)
	if err != nil {
		zap.L().Fatal("load config failed", zap.Error(err))
	}

	db := mysql.Init(&cfg.MySQL)
	productRepo := mysql.NewProductRepository(db)
	userRepo := mysql.NewUserRepository(db)

	ctx := context.Background()

	// 管理员账号，密码 admin123
	sum := sha256.Sum256([]byte("admin123" + "rolyo"))
	admin := &user.User{
		Username: "admin",
		Salt:     "rolyo",
		Password: hex.EncodeToString(sum[:]),
		IsAdmin:  true,
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		zap.L().Warn("create admin skipped", zap.Error(err))
	}

	for _, sp := range seedProducts {
		p := &product.Product{
			Name:        sp.name,
			Description: sp.description,
			Price:       sp.price,
			Status:      sp.status,
		}
		if err := productRepo.Create(ctx, p); err != nil {
			zap.L().Fatal("create product failed", zap.String("name", sp.name), zap.Error(err))
		}
		for _, sc := range sp.colors {
			c := &product.Color{ProductID: p.ID, Name: sc.name, Hex: sc.hex}
			if err := productRepo.CreateColor(ctx, c); err != nil {
				zap.L().Fatal("create color failed", zap.String("color", sc.name), zap.Error(err))
			}
			for i, url := range sc.images {
				if err := productRepo.CreateImage(ctx, &product.Image{
					ColorID:  c.ID,
					Path:     url,
					Position: i + 1,
				}); err != nil {
					zap.L().Fatal("create image failed", zap.Error(err))
				}
			}
			vs := make([]product.Variant, 0, len(sc.variants))
			for _, sv := range sc.variants {
				vs = append(vs, product.Variant{Size: sv.size, Stock: sv.stock})
			}
			if err := productRepo.ReplaceVariants(ctx, c.ID, vs); err != nil {
				zap.L().Fatal("create variants failed", zap.Error(err))
			}
		}
		zap.L().Info("seeded product", zap.Int64("id", p.ID), zap.String("name", p.Name))
	}

	zap.L().Info("seed done", zap.Int("products", len(seedProducts)))
}
