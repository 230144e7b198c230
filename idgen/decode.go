package idgen

import "time"

// Time 将时间戳部分还原为绝对时间
func (p Parts) Time(epoch time.Time) time.Time {
	return epoch.Add(time.Duration(p.Timestamp) * time.Millisecond)
}

// Decompose 按生成器的布局拆解 ID
func (g *Generator) Decompose(id uint64) Parts {
	return g.layout.Decompose(id)
}
