package mysql

import (
	"log"
	"sync"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/webprojects1100/rolyo/internal/config"
	"github.com/webprojects1100/rolyo/internal/datamodels/cart"
	"github.com/webprojects1100/rolyo/internal/datamodels/order"
	"github.com/webprojects1100/rolyo/internal/datamodels/product"
	"github.com/webprojects1100/rolyo/internal/datamodels/subscription"
	"github.com/webprojects1100/rolyo/internal/datamodels/user"
)

var (
	db   *gorm.DB
	once sync.Once
)

// Init 初始化全局 GORM 实例并自动迁移表结构
func Init(cfg *config.MySQLConfig) *gorm.DB {
	once.Do(func() {
		var err error
		// TranslateError 把唯一索引冲突翻译成 gorm.ErrDuplicatedKey，
		// 订阅去重依赖这个区分。
		db, err = gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{TranslateError: true})
		if err != nil {
			log.Fatalf("failed to connect mysql: %v", err)
		}

		if err = db.AutoMigrate(
			&user.User{},
			&product.Product{},
			&product.Color{},
			&product.Image{},
			&product.Variant{},
			&cart.PersistedLine{},
			&order.Order{},
			&subscription.Subscription{},
		); err != nil {
			log.Fatalf("auto migrate failed: %v", err)
		}
	})
	return db
}

// DB 获取全局 DB
func DB() *gorm.DB {
	return db
}
