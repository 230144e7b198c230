package idgen

import (
	"fmt"

	"github.com/ceyewan/flake/xerrors"
)

var (
	// ErrInvalidLayout 位布局参数非法（构造期错误）
	ErrInvalidLayout = xerrors.New("idgen: invalid layout")

	// ErrInvalidConfig 配置非法（构造期错误）
	ErrInvalidConfig = xerrors.New("idgen: invalid config")

	// ErrClockRegression 时钟回拨，生成器无法在不破坏有序性的前提下继续
	ErrClockRegression = xerrors.New("idgen: clock moved backwards")

	// ErrWorkerStopped Worker 已因致命错误或上下文取消而停止
	ErrWorkerStopped = xerrors.New("idgen: worker stopped")
)

// ClockRegressionError 时钟回拨的具体错误，记录上一次使用的时间戳与本次读到的时间戳
//
// 它始终是致命的：xerrors.IsFatal 返回 true，errors.Is(err, ErrClockRegression) 成立。
type ClockRegressionError struct {
	Since uint64 // 生成器记录的最近一次时间戳（毫秒）
	Now   uint64 // 本次读到的时间戳（毫秒）
}

func (e *ClockRegressionError) Error() string {
	return fmt.Sprintf("%s: since=%d now=%d (%dms behind)", ErrClockRegression.Error(), e.Since, e.Now, e.Since-e.Now)
}

// Is 使 errors.Is(err, ErrClockRegression) 成立
func (e *ClockRegressionError) Is(target error) bool {
	return target == ErrClockRegression
}

// Fatal 时钟回拨不可恢复
func (e *ClockRegressionError) Fatal() bool { return true }
