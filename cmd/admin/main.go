package main

import (
	"flag"

	"github.com/kataras/iris/v12"
	"go.uber.org/zap"

	"github.com/webprojects1100/rolyo/internal/config"
	"github.com/webprojects1100/rolyo/internal/logging"
	"github.com/webprojects1100/rolyo/internal/server"
)

func main() {
	configPath := flag.String("config", "./config", "配置文件目录")
	flag.Parse()

	logging.Init()

	cfg, err := config.Load(*configPath)
	if err != nil {
		zap.L().Fatal("load config failed", zap.Error(err))
	}

	app := iris.New()
	server.RegisterAdminRoutes(app, cfg)

	zap.L().Info("admin listening", zap.String("addr", cfg.AdminServer.Addr()))
	if err := app.Listen(cfg.AdminServer.Addr()); err != nil {
		zap.L().Fatal("server exited", zap.Error(err))
	}
}
