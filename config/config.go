package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/ceyewan/flake/clog"
)

// Options 加载器选项
type Options struct {
	Name      string      // 配置文件名称（不含扩展名）
	Paths     []string    // 配置文件搜索路径，默认 [".", "./config"]
	FileType  string      // 配置文件类型 (yaml, json, etc.)
	EnvPrefix string      // 环境变量前缀，默认 "FLAKE"
	Logger    clog.Logger // 加载过程中的提示信息，默认静默
}

// Option 配置选项模式
type Option func(*Options)

// defaultOptions 返回默认选项
func defaultOptions() *Options {
	return &Options{
		Name:      "config",
		Paths:     []string{".", "./config"},
		FileType:  "yaml",
		EnvPrefix: "FLAKE",
		Logger:    clog.Discard(),
	}
}

// WithConfigName 设置配置文件名称（不带扩展名）
func WithConfigName(name string) Option {
	return func(o *Options) {
		o.Name = name
	}
}

// WithConfigPath 添加配置文件搜索路径
func WithConfigPath(path string) Option {
	return func(o *Options) {
		o.Paths = append(o.Paths, path)
	}
}

// WithConfigPaths 设置配置文件搜索路径（覆盖默认值）
func WithConfigPaths(paths ...string) Option {
	return func(o *Options) {
		o.Paths = paths
	}
}

// WithConfigType 设置配置文件类型 (yaml, json, etc.)
func WithConfigType(typ string) Option {
	return func(o *Options) {
		o.FileType = typ
	}
}

// WithEnvPrefix 设置环境变量前缀
func WithEnvPrefix(prefix string) Option {
	return func(o *Options) {
		o.EnvPrefix = strings.ToUpper(prefix)
	}
}

// WithLogger 设置 Logger
func WithLogger(logger clog.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.Logger = logger.WithNamespace("config")
		}
	}
}

// New 创建配置加载器（未加载）。
func New(opts ...Option) (Loader, error) {
	return newLoader(opts...)
}

// Load 创建并立即加载配置。
func Load(ctx context.Context, opts ...Option) (Loader, error) {
	l, err := newLoader(opts...)
	if err != nil {
		return nil, err
	}
	if err := l.Load(ctx); err != nil {
		return nil, err
	}
	return l, nil
}

// MustLoad 类似 Load，但出错时 panic。仅用于初始化阶段。
func MustLoad(opts ...Option) Loader {
	l, err := Load(context.Background(), opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return l
}
