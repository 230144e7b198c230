package metrics

import (
	"fmt"
	"strings"
)

// Config 指标配置
//
//	metrics:
//	  enabled: true
//	  service_name: "flake"
//	  version: "v1.2.3"
//	  port: 9090
//	  path: "/metrics"
//	  runtime_metrics: true
type Config struct {
	// Enabled 为 false 时 New 返回 noop Meter
	Enabled bool `mapstructure:"enabled"`

	// ServiceName 写入 Resource 的 service.name，同时作为 otel Meter 名称
	ServiceName string `mapstructure:"service_name"`

	// Version 写入 Resource 的 service.version
	Version string `mapstructure:"version"`

	// Port 大于 0 时在该端口启动 Prometheus HTTP 服务，0 表示只通过 Handler() 暴露
	Port int `mapstructure:"port"`

	// Path 抓取路径，须以 "/" 开头
	Path string `mapstructure:"path"`

	// RuntimeMetrics 采集 Go 运行时指标（GC、goroutine、内存）
	RuntimeMetrics bool `mapstructure:"runtime_metrics"`
}

// NewDevDefaultConfig 开发环境默认配置
func NewDevDefaultConfig(serviceName string) *Config {
	return &Config{
		Enabled:     true,
		ServiceName: serviceName,
		Version:     "dev",
		Port:        9090,
		Path:        "/metrics",
	}
}

// NewProdDefaultConfig 生产环境默认配置，开启运行时指标
func NewProdDefaultConfig(serviceName, version string) *Config {
	return &Config{
		Enabled:        true,
		ServiceName:    serviceName,
		Version:        version,
		Port:           9090,
		Path:           "/metrics",
		RuntimeMetrics: true,
	}
}

func (c *Config) validate() error {
	if c.ServiceName == "" {
		c.ServiceName = "flake"
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.Port > 0 && c.Path == "" {
		c.Path = "/metrics"
	}
	if c.Path != "" && !strings.HasPrefix(c.Path, "/") {
		return fmt.Errorf("invalid path: %s, must start with /", c.Path)
	}
	return nil
}
