package logger

import (
	"log"

	"go.uber.org/zap"
)

// Init 初始化全局 zap logger
// mode 为 "release" 时使用生产配置（JSON），否则为开发配置
func Init(mode string) {
	var (
		l   *zap.Logger
		err error
	)
	if mode == "release" {
		l, err = zap.NewProduction()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("日志初始化失败: %v", err)
	}
	zap.ReplaceGlobals(l)
}

// Sync 刷新缓冲日志（进程退出前调用）
func Sync() {
	_ = zap.L().Sync()
}
