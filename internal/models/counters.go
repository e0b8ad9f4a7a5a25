package models

// Counters 是投票账本的缓存聚合值，嵌入在 Subject 和 Comment 中。
// 字段为只读 (->)：模型的 Create/Save 永远不会写它们，只有 voting.Maintainer
// 通过按表更新写入。
type Counters struct {
	Likes     int64 `gorm:"->;not null;default:0" json:"likes"`
	Dislikes  int64 `gorm:"->;not null;default:0" json:"dislikes"`
	LikeCount int64 `gorm:"->;not null;default:0" json:"likeCount"` // likes - dislikes
}

// Tally returns the counters as last written by the maintainer.
func (c Counters) Tally() Counters {
	return c
}
