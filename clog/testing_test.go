package clog

import "bytes"

// withBuffer 将输出写入 buf，仅测试使用
func withBuffer(buf *bytes.Buffer) Option {
	return func(o *options) {
		o.buffer = buf
	}
}
