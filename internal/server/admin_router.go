package server

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"

	"github.com/webprojects1100/rolyo/internal/auth"
	"github.com/webprojects1100/rolyo/internal/config"
	"github.com/webprojects1100/rolyo/internal/infra/storage"
	"github.com/webprojects1100/rolyo/internal/repository/mysql"
	"github.com/webprojects1100/rolyo/internal/service"
)

// RegisterAdminRoutes 注册后台管理路由，单独一个端口跑
func RegisterAdminRoutes(app *iris.Application, cfg *config.Config) {
	db := mysql.Init(&cfg.MySQL)
	store := storage.Init(&cfg.Storage)

	productRepo := mysql.NewProductRepository(db)
	orderRepo := mysql.NewOrderRepository(db)

	adminSvc := service.NewAdminCatalogService(productRepo, store)
	catalogSvc := service.NewCatalogService(productRepo, store, cfg.Storage.PlaceholderImage)
	orderSvc := service.NewOrderService(orderRepo)

	// 后台所有接口都要管理员身份
	api := app.Party("/api", func(ctx iris.Context) {
		token := ctx.GetHeader("Authorization")
		if token == "" {
			ctx.StopWithJSON(401, iris.Map{"code": 401, "msg": "authorization required"})
			return
		}
		claims, err := auth.ParseToken(&cfg.JWT, token)
		if err != nil {
			ctx.StopWithJSON(401, iris.Map{"code": 401, "msg": "invalid token"})
			return
		}
		if !claims.IsAdmin {
			ctx.StopWithJSON(403, iris.Map{"code": 403, "msg": "admin only"})
			return
		}
		ctx.Values().Set("user_id", claims.UserID)
		ctx.Next()
	})

	// 商品管理：列表含下架商品
	api.Get("/products", func(ctx iris.Context) {
		list, err := productRepo.ListAll(ctx.Request().Context())
		if err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	api.Get("/products/{id:uint64}", func(ctx iris.Context) {
		pid, _ := ctx.Params().GetUint64("id")
		details, err := catalogSvc.GetProduct(ctx.Request().Context(), int64(pid))
		if err != nil {
			ctx.StopWithJSON(404, iris.Map{"code": 404, "msg": "product not found"})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": details})
	})

	api.Post("/products", func(ctx iris.Context) {
		input, err := readProductForm(ctx)
		if err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		p, err := adminSvc.Create(ctx.Request().Context(), input)
		if err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": p})
	})

	api.Put("/products/{id:uint64}", func(ctx iris.Context) {
		pid, _ := ctx.Params().GetUint64("id")
		input, err := readProductForm(ctx)
		if err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		if err := adminSvc.Update(ctx.Request().Context(), int64(pid), input); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				ctx.StopWithJSON(404, iris.Map{"code": 404, "msg": "product not found"})
				return
			}
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "msg": "ok"})
	})

	api.Delete("/products/{id:uint64}", func(ctx iris.Context) {
		pid, _ := ctx.Params().GetUint64("id")
		if err := adminSvc.Delete(ctx.Request().Context(), int64(pid)); err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "msg": "ok"})
	})

	// 订单管理
	api.Get("/orders", func(ctx iris.Context) {
		limit := ctx.URLParamIntDefault("limit", 50)
		list, err := orderSvc.ListRecent(ctx.Request().Context(), limit)
		if err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	api.Put("/orders/{id:uint64}/status", func(ctx iris.Context) {
		oid, _ := ctx.Params().GetUint64("id")
		var req struct {
			Status string `json:"status"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		if err := orderSvc.UpdateStatus(ctx.Request().Context(), int64(oid), req.Status); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				ctx.StopWithJSON(404, iris.Map{"code": 404, "msg": "order not found"})
				return
			}
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "msg": "ok"})
	})

	// 监控面板
	api.Get("/monitor", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"code": 0, "data": service.GetMonitor().Snapshot()})
	})
}

// readProductForm 从 multipart 表单解析商品入参。
// 约定：product 字段是 JSON（名称/价格/状态/颜色及保留图和尺码），
// 新图片按 images:<colorKey> 的文件字段上传，colorKey 对应 JSON 里颜色的 key。
func readProductForm(ctx iris.Context) (*service.ProductInput, error) {
	if err := ctx.Request().ParseMultipartForm(32 << 20); err != nil {
		return nil, err
	}
	raw := ctx.FormValue("product")
	if raw == "" {
		return nil, errors.New("product payload is required")
	}

	var payload struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Price       int64  `json:"price"`
		Status      int    `json:"status"`
		Colors      []struct {
			Key          string                   `json:"key"`
			ID           int64                    `json:"id"`
			Name         string                   `json:"name"`
			Hex          string                   `json:"hex"`
			KeepImageIDs []int64                  `json:"keepImageIds"`
			Sizes        []service.SizeStockInput `json:"sizes"`
		} `json:"colors"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, err
	}

	input := &service.ProductInput{
		Name:        payload.Name,
		Description: payload.Description,
		Price:       payload.Price,
		Status:      payload.Status,
	}
	form := ctx.Request().MultipartForm
	for _, c := range payload.Colors {
		ci := service.ColorInput{
			ID:           c.ID,
			Name:         c.Name,
			Hex:          c.Hex,
			KeepImageIDs: c.KeepImageIDs,
			Sizes:        c.Sizes,
		}
		if form != nil {
			for _, fh := range form.File["images:"+strings.TrimSpace(c.Key)] {
				f, err := fh.Open()
				if err != nil {
					return nil, err
				}
				data, err := io.ReadAll(f)
				f.Close()
				if err != nil {
					return nil, err
				}
				ci.NewImages = append(ci.NewImages, service.ImageUpload{
					Filename: fh.Filename,
					Data:     data,
				})
			}
		}
		input.Colors = append(input.Colors, ci)
	}
	return input, nil
}
