// Package clog 是 flake 各组件共用的结构化日志，底层为 log/slog。
//
// 组件通过 WithLogger 注入 Logger，并以 With(clog.String("component", ...)) 派生子 Logger；
// 未注入时使用 Default()，不需要输出时使用 Discard()。
//
//	logger, err := clog.New(&clog.Config{Level: "info", Format: "json", Output: "stdout"},
//	    clog.WithNamespace("flake"),
//	    clog.WithTraceContext(),
//	)
//	logger.Info("id generator created", clog.Int("producer_id", 3))
//
// 文件输出经 lumberjack 按大小切割，见 RotationConfig。
package clog

import "context"

// Logger 结构化日志接口
//
// *Context 方法会从 ctx 中提取配置的字段（WithContextField、WithTraceContext）。
// Fatal 级别写出后退出进程。
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)

	DebugContext(ctx context.Context, msg string, fields ...Field)
	InfoContext(ctx context.Context, msg string, fields ...Field)
	WarnContext(ctx context.Context, msg string, fields ...Field)
	ErrorContext(ctx context.Context, msg string, fields ...Field)
	FatalContext(ctx context.Context, msg string, fields ...Field)

	// With 返回带预设字段的子 Logger，不影响原 Logger
	With(fields ...Field) Logger

	// WithNamespace 在现有命名空间后追加，例如 "flake" + "allocator" = "flake.allocator"
	WithNamespace(parts ...string) Logger

	// SetLevel 运行时调整级别，对共享同一 handler 的所有子 Logger 生效
	SetLevel(level Level) error

	// Flush 文件输出时关闭当前文件，其余输出为空操作
	Flush()
}
