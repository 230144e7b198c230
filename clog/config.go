package clog

import (
	"fmt"
	"strings"
)

const timeFormat = "2006-01-02T15:04:05.000Z07:00"

// Config 日志配置结构，定义日志的基本行为
//
// 支持的配置项：
//
//	Level: 日志级别 (debug|info|warn|error|fatal)
//	Format: 输出格式 (json|console)
//	Output: 输出目标 (stdout|stderr|buffer|文件路径)
//	AddSource: 是否显示调用位置信息
//	SourceRoot: 源代码路径前缀，用于裁剪显示的文件路径
//	Rotation: 文件输出时的切割策略，仅在 Output 为文件路径时生效
//
// 示例：
//
//	config := &clog.Config{
//	    Level:     "info",
//	    Format:    "json",
//	    Output:    "/var/log/flake.log",
//	    AddSource: true,
//	    Rotation:  clog.RotationConfig{MaxSizeMB: 100, MaxBackups: 7},
//	}
type Config struct {
	Level      string         `json:"level" yaml:"level" mapstructure:"level"`    // debug|info|warn|error|fatal
	Format     string         `json:"format" yaml:"format" mapstructure:"format"` // json|console
	Output     string         `json:"output" yaml:"output" mapstructure:"output"` // stdout|stderr|buffer|<file path>
	AddSource  bool           `json:"addSource" yaml:"addSource" mapstructure:"add_source"`
	SourceRoot string         `json:"sourceRoot" yaml:"sourceRoot" mapstructure:"source_root"` // 用于裁剪文件路径
	Rotation   RotationConfig `json:"rotation" yaml:"rotation" mapstructure:"rotation"`
}

// RotationConfig 文件日志切割配置（基于 lumberjack）
type RotationConfig struct {
	MaxSizeMB  int  `json:"maxSizeMB" yaml:"maxSizeMB" mapstructure:"max_size_mb"`    // 单文件最大 MB，默认 100
	MaxBackups int  `json:"maxBackups" yaml:"maxBackups" mapstructure:"max_backups"` // 保留的旧文件数量，0 表示全部保留
	MaxAgeDays int  `json:"maxAgeDays" yaml:"maxAgeDays" mapstructure:"max_age_days"` // 旧文件保留天数，0 表示不按时间清理
	Compress   bool `json:"compress" yaml:"compress" mapstructure:"compress"`
}

// NewDevDefaultConfig 返回开发环境默认配置
//
// console 格式、debug 级别、输出到 stdout、显示调用位置。
func NewDevDefaultConfig(sourceRoot string) *Config {
	return &Config{
		Level:      "debug",
		Format:     "console",
		Output:     "stdout",
		AddSource:  true,
		SourceRoot: sourceRoot,
	}
}

// NewProdDefaultConfig 返回生产环境默认配置
//
// json 格式、info 级别、输出到 stdout。
func NewProdDefaultConfig(sourceRoot string) *Config {
	return &Config{
		Level:      "info",
		Format:     "json",
		Output:     "stdout",
		SourceRoot: sourceRoot,
	}
}

// validate 验证配置的有效性（内部使用）
//
// 检查 Level 和 Format 是否在有效范围内，并为空值设置默认值。
//
// 返回的错误：
//   - unknown log level: 不支持的日志级别
//   - invalid format: 不支持的输出格式
func (c *Config) validate() error {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "console"
	}
	if c.Output == "" {
		c.Output = "stdout"
	}

	if _, err := ParseLevel(c.Level); err != nil {
		return err
	}
	format := strings.ToLower(c.Format)
	if format != "json" && format != "console" {
		return fmt.Errorf("invalid format: %s, must be json or console", c.Format)
	}
	if c.Rotation.MaxSizeMB < 0 || c.Rotation.MaxBackups < 0 || c.Rotation.MaxAgeDays < 0 {
		return fmt.Errorf("invalid rotation: values must not be negative")
	}
	// Output 字段可以是 stdout, stderr 或文件路径，不做严格校验
	return nil
}
