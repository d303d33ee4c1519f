package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var once sync.Once

// Init 初始化全局 zap logger，之后通过 zap.L() 使用
func Init() {
	once.Do(func() {
		cfg := zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		logger, err := cfg.Build()
		if err != nil {
			panic(err)
		}
		zap.ReplaceGlobals(logger)
	})
}
