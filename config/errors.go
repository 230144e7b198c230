package config

import "github.com/ceyewan/flake/xerrors"

// ErrValidationFailed 验证失败
var ErrValidationFailed = xerrors.WithCode(xerrors.ErrInvalidInput, "config_validation_failed")

// IsNotFound 检查错误是否为配置未找到
func IsNotFound(err error) bool {
	return xerrors.Is(err, xerrors.ErrNotFound)
}

// IsInvalidInput 检查错误是否为配置格式无效或验证失败
func IsInvalidInput(err error) bool {
	return xerrors.Is(err, xerrors.ErrInvalidInput)
}

// wrapLoadError 包装加载错误
func wrapLoadError(err error, message string) error {
	if err == nil {
		return nil
	}
	return xerrors.Wrapf(err, "failed to load config: %s", message)
}
