package server

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/kataras/iris/v12"

	"github.com/webprojects1100/rolyo/internal/auth"
	"github.com/webprojects1100/rolyo/internal/config"
	"github.com/webprojects1100/rolyo/internal/datamodels/cart"
	"github.com/webprojects1100/rolyo/internal/datamodels/order"
	"github.com/webprojects1100/rolyo/internal/datamodels/subscription"
	"github.com/webprojects1100/rolyo/internal/infra/mq"
	"github.com/webprojects1100/rolyo/internal/infra/redis"
	"github.com/webprojects1100/rolyo/internal/infra/storage"
	"github.com/webprojects1100/rolyo/internal/middleware"
	"github.com/webprojects1100/rolyo/internal/repository/mysql"
	"github.com/webprojects1100/rolyo/internal/service"
)

const sessionCookie = "cart_session"

// sessionID 取会话标识，没有时种一个新 cookie。
// 购物车在登录前就要能用，所以会话独立于 JWT。
func sessionID(ctx iris.Context) string {
	if v := ctx.GetCookie(sessionCookie); v != "" {
		return v
	}
	v := uuid.NewString()
	ctx.SetCookieKV(sessionCookie, v, iris.CookiePath("/"))
	return v
}

// RegisterRoutes 注册前台 HTTP 路由
func RegisterRoutes(app *iris.Application, cfg *config.Config) {
	// 初始化基础设施
	db := mysql.Init(&cfg.MySQL)
	redisClient := redis.Init(&cfg.Redis)
	mqConn := mq.Init(&cfg.RabbitMQ)
	store := storage.Init(&cfg.Storage)

	// 商品图片直接从本地对象存储目录提供
	app.HandleDir(cfg.Storage.PublicBaseURL, iris.Dir(cfg.Storage.Root))

	// 仓储与服务
	userRepo := mysql.NewUserRepository(db)
	productRepo := mysql.NewProductRepository(db)
	cartRepo := mysql.NewCartRepository(db)
	orderRepo := mysql.NewOrderRepository(db)
	subscriptionRepo := mysql.NewSubscriptionRepository(db)

	userSvc := service.NewUserService(userRepo, &cfg.JWT)
	catalogSvc := service.NewCatalogService(productRepo, store, cfg.Storage.PlaceholderImage)
	cartSvc := service.NewCartService(redisClient, cartRepo)
	checkoutSvc := service.NewCheckoutService(productRepo, orderRepo, mqConn)
	orderSvc := service.NewOrderService(orderRepo)
	subscriptionSvc := service.NewSubscriptionService(subscriptionRepo)

	ring := auth.NewConsistentHashRing(cfg.Auth.Nodes, cfg.Auth.HashReplicas)
	tokenCache := auth.NewTokenCache(redisClient, ring, time.Duration(cfg.Auth.TokenCacheTTLSeconds)*time.Second)

	// parseClaims 解析 Authorization 头，优先走缓存，未登录返回 nil
	parseClaims := func(ctx iris.Context) *auth.Claims {
		token := ctx.GetHeader("Authorization")
		if token == "" {
			return nil
		}
		if claims, ok, _ := tokenCache.Get(ctx.Request().Context(), token); ok {
			return claims
		}
		claims, err := auth.ParseToken(&cfg.JWT, token)
		if err != nil {
			return nil
		}
		_ = tokenCache.Set(ctx.Request().Context(), token, claims)
		return claims
	}

	// session 组装当前请求的会话：cookie + 可选登录身份
	session := func(ctx iris.Context) service.Session {
		sess := service.Session{ID: sessionID(ctx)}
		if claims := parseClaims(ctx); claims != nil {
			sess.UserID = claims.UserID
		}
		return sess
	}

	api := app.Party("/api")

	// 健康检查
	api.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{
			"code": 0,
			"msg":  "ok",
		})
	})

	// 用户注册/登录
	api.Post("/register", func(ctx iris.Context) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		u, err := userSvc.Register(ctx.Request().Context(), req.Username, req.Password)
		if err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": u})
	})

	api.Post("/login", func(ctx iris.Context) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		token, u, err := userSvc.Login(ctx.Request().Context(), req.Username, req.Password)
		if err != nil {
			ctx.StopWithJSON(401, iris.Map{"code": 401, "msg": err.Error()})
			return
		}
		// 登录后账号的持久化购物车接管会话购物车
		activeCart, err := cartSvc.SignIn(ctx.Request().Context(), sessionID(ctx), u.ID)
		if err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": iris.Map{"token": token, "cart": activeCart}})
	})

	api.Post("/logout", func(ctx iris.Context) {
		// 清掉会话购物车，换账号登录不会看到上一个人的内容
		if err := cartSvc.SignOut(ctx.Request().Context(), sessionID(ctx)); err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "msg": "ok"})
	})

	// 邮件订阅
	api.Post("/subscribe", func(ctx iris.Context) {
		var req struct {
			Email string `json:"email"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		if err := subscriptionSvc.Subscribe(ctx.Request().Context(), req.Email); err != nil {
			if errors.Is(err, subscription.ErrAlreadySubscribed) {
				ctx.StopWithJSON(409, iris.Map{"code": 409, "msg": "This email is already subscribed."})
				return
			}
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "msg": "Thank you for subscribing!"})
	})

	// 商品列表（在售）
	api.Get("/products", func(ctx iris.Context) {
		cards, err := catalogSvc.ListDisplayed(ctx.Request().Context())
		if err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": cards})
	})

	// 商品详情
	api.Get("/products/{id:uint64}", func(ctx iris.Context) {
		pid, _ := ctx.Params().GetUint64("id")
		details, err := catalogSvc.GetProduct(ctx.Request().Context(), int64(pid))
		if err != nil {
			ctx.StopWithJSON(404, iris.Map{"code": 404, "msg": "product not found"})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": details})
	})

	// ---------------- 购物车 ----------------

	api.Get("/cart", func(ctx iris.Context) {
		c, err := cartSvc.Get(ctx.Request().Context(), session(ctx))
		if err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": c, "total": c.Total(), "total_items": c.TotalItems()})
	})

	api.Post("/cart/items", func(ctx iris.Context) {
		var line cart.Line
		if err := ctx.ReadJSON(&line); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		if line.VariantID == 0 {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": "variantId is required"})
			return
		}
		c, err := cartSvc.Add(ctx.Request().Context(), session(ctx), line)
		if err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": c})
	})

	api.Put("/cart/items/{variantId:uint64}", func(ctx iris.Context) {
		vid, _ := ctx.Params().GetUint64("variantId")
		var req struct {
			Quantity int64 `json:"quantity"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		c, err := cartSvc.SetQuantity(ctx.Request().Context(), session(ctx), int64(vid), req.Quantity)
		if err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": c})
	})

	api.Delete("/cart/items/{variantId:uint64}", func(ctx iris.Context) {
		vid, _ := ctx.Params().GetUint64("variantId")
		c, err := cartSvc.Remove(ctx.Request().Context(), session(ctx), int64(vid))
		if err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": c})
	})

	api.Delete("/cart", func(ctx iris.Context) {
		c, err := cartSvc.Clear(ctx.Request().Context(), session(ctx))
		if err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": c})
	})

	// ---------------- 需要登录的接口 ----------------

	authAPI := api.Party("/", func(ctx iris.Context) {
		claims := parseClaims(ctx)
		if claims == nil {
			ctx.StopWithJSON(401, iris.Map{"error": "You must be logged in to place an order."})
			return
		}
		ctx.Values().Set("user_id", claims.UserID)
		ctx.Values().Set("username", claims.Username)
		ctx.Next()
	})

	// 下单。响应格式是固定的对外契约：
	// 成功 {success:true, orderId}，失败 {error, details?}
	authAPI.Post("/checkout", middleware.CheckoutRateLimit(), func(ctx iris.Context) {
		var req struct {
			Shipping order.ShippingInfo `json:"shipping"`
			Cart     []cart.Line        `json:"cart"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"error": "Malformed request"})
			return
		}
		userID := ctx.Values().GetInt64Default("user_id", 0)

		o, err := checkoutSvc.PlaceOrder(ctx.Request().Context(), userID, req.Shipping, req.Cart)
		if err != nil {
			var ve *service.ValidationError
			var insufficient *order.InsufficientStockError
			switch {
			case errors.Is(err, service.ErrEmptyCart):
				ctx.StopWithJSON(400, iris.Map{"error": "Cart is empty"})
			case errors.As(err, &ve):
				ctx.StopWithJSON(400, iris.Map{"error": "Invalid input", "details": ve.Details})
			case errors.As(err, &insufficient),
				errors.Is(err, order.ErrVariantNotFound),
				errors.Is(err, service.ErrStockLookup):
				ctx.StopWithJSON(400, iris.Map{"error": err.Error()})
			default:
				ctx.StopWithJSON(500, iris.Map{"error": "Failed to save order.", "details": err.Error()})
			}
			return
		}

		// 下单成功后清空购物车
		if _, err := cartSvc.Clear(ctx.Request().Context(), service.Session{ID: sessionID(ctx), UserID: userID}); err != nil {
			// 不影响下单结果
			ctx.Application().Logger().Warnf("clear cart after checkout failed: %v", err)
		}

		ctx.JSON(iris.Map{"success": true, "orderId": o.ID})
	})

	// 我的订单
	authAPI.Get("/orders", func(ctx iris.Context) {
		userID := ctx.Values().GetInt64Default("user_id", 0)
		list, err := orderSvc.ListByUser(ctx.Request().Context(), userID)
		if err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	authAPI.Get("/orders/{id:uint64}", func(ctx iris.Context) {
		oid, _ := ctx.Params().GetUint64("id")
		userID := ctx.Values().GetInt64Default("user_id", 0)
		o, err := orderSvc.GetByID(ctx.Request().Context(), int64(oid))
		if err != nil || o.UserID != userID {
			ctx.StopWithJSON(404, iris.Map{"code": 404, "msg": "order not found"})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": o})
	})
}
