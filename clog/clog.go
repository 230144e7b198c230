package clog

import (
	"fmt"
	"sync"
)

var (
	defaultOnce   sync.Once
	defaultLogger Logger
)

// New 创建一个新的 Logger 实例
//
// config - 日志配置，如果为 nil 会使用默认配置
// opts   - 函数式选项列表，用于命名空间、Context 字段等配置
//
// Logger - 日志实例
func New(config *Config, opts ...Option) (Logger, error) {
	if config == nil {
		config = NewDevDefaultConfig("flake")
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// 应用选项
	options := applyOptions(opts...)

	// 调用内部实现
	return newLogger(config, options)
}

// Default 返回进程级默认 Logger（console 格式，info 级别，输出到 stdout）
//
// 组件在未注入 Logger 时使用它。
func Default() Logger {
	defaultOnce.Do(func() {
		logger, err := New(&Config{Level: "info", Format: "console", Output: "stdout"})
		if err != nil {
			logger = Discard()
		}
		defaultLogger = logger
	})
	return defaultLogger
}
