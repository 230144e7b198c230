// Package xerrors 提供标准化错误处理工具。
//
// 除了包装与错误码之外，还提供致命错误分类：被标记为致命的错误表示
// 运行环境已不可信（例如系统时钟回拨），调用方不应自动重试。
package xerrors

import (
	"errors"
	"fmt"
)

// 通用哨兵错误
var (
	// ErrInvalidInput 输入或配置无效
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound 资源未找到
	ErrNotFound = errors.New("not found")
)

// Wrap 用上下文信息包装错误，保留错误链。
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf 用格式化的上下文信息包装错误。
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// WithCode 用错误码包装错误。
func WithCode(err error, code string) error {
	if err == nil {
		return nil
	}
	return &CodedError{Code: code, Cause: err}
}

// Mark 将错误归入哨兵类别，原错误链与错误码保持不变。
//
// errors.Is(Mark(err, sentinel), sentinel) 与 errors.Is(..., err 链上的任意错误) 均成立。
func Mark(err, sentinel error) error {
	if err == nil {
		return nil
	}
	if sentinel == nil || errors.Is(err, sentinel) {
		return err
	}
	return &markedError{cause: err, sentinel: sentinel}
}

type markedError struct {
	cause    error
	sentinel error
}

func (e *markedError) Error() string   { return e.sentinel.Error() + ": " + e.cause.Error() }
func (e *markedError) Unwrap() []error { return []error{e.cause, e.sentinel} }

// CodedError 带有机器可读错误码的错误。
type CodedError struct {
	Code  string
	Cause error
}

func (e *CodedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %v", e.Code, e.Cause)
	}
	return fmt.Sprintf("[%s]", e.Code)
}

func (e *CodedError) Unwrap() error {
	return e.Cause
}

// GetCode 从错误链中提取错误码。
func GetCode(err error) string {
	var coded *CodedError
	if errors.As(err, &coded) {
		return coded.Code
	}
	return ""
}

// ========================================
// 致命错误 (Fatal Errors)
// ========================================

// fataler 由可以声明自身是否致命的错误实现
type fataler interface {
	Fatal() bool
}

// fatalError 将任意错误标记为致命
type fatalError struct {
	cause error
}

func (e *fatalError) Error() string { return "fatal: " + e.cause.Error() }
func (e *fatalError) Unwrap() error { return e.cause }
func (e *fatalError) Fatal() bool   { return true }

// Fatal 将错误标记为不可恢复。
//
// 被标记的错误仍保留原有错误链，errors.Is / errors.As 照常可用。
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	if IsFatal(err) {
		return err
	}
	return &fatalError{cause: err}
}

// IsFatal 判断错误链中是否存在致命错误。
//
// 错误链上任一错误实现了 Fatal() bool 且返回 true 即视为致命。
func IsFatal(err error) bool {
	for err != nil {
		if f, ok := err.(fataler); ok && f.Fatal() {
			return true
		}
		switch x := err.(type) {
		case interface{ Unwrap() error }:
			err = x.Unwrap()
		case interface{ Unwrap() []error }:
			for _, e := range x.Unwrap() {
				if IsFatal(e) {
					return true
				}
			}
			return false
		default:
			return false
		}
	}
	return false
}

// Must 如果 err 不为 nil，则 panic。仅用于初始化阶段。
func Must[T any](v T, err error) T {
	if err != nil {
		panic(fmt.Sprintf("must: %v", err))
	}
	return v
}

// MultiError 合并多个错误。
type MultiError struct {
	Errors []error
}

func (m *MultiError) Error() string {
	if len(m.Errors) == 0 {
		return "no errors"
	}
	if len(m.Errors) == 1 {
		return m.Errors[0].Error()
	}
	return fmt.Sprintf("%v (and %d more errors)", m.Errors[0], len(m.Errors)-1)
}

func (m *MultiError) Unwrap() []error {
	return m.Errors
}

// Combine 将多个错误合并为一个。
func Combine(errs ...error) error {
	var nonNil []error
	for _, err := range errs {
		if err != nil {
			nonNil = append(nonNil, err)
		}
	}
	switch len(nonNil) {
	case 0:
		return nil
	case 1:
		return nonNil[0]
	default:
		return &MultiError{Errors: nonNil}
	}
}

// 标准库函数再导出
var (
	New    = errors.New
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)
