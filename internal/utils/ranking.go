package utils

import (
	"math"
	"time"
)

type RankConfig struct {
	Gravity        float64 // 时间重力 (1.5)
	WeightComment  float64 // 2.0
	WeightUpvote   float64 // 1.0
	WeightDownvote float64 // 1.5
	ScaleFactor    float64 // 放大系数 (100)
}

var DefaultConfig = RankConfig{
	Gravity:        1.5,
	WeightComment:  2.0,
	WeightUpvote:   1.0,
	WeightDownvote: 1.5,
	ScaleFactor:    100.0, // 让分数落在 0-100 区间，像"温度"
}

// HotScore ranks a subject by its vote counters and comment count, decayed by age.
func HotScore(createdAt time.Time, likes, dislikes, comments int64, now time.Time) float64 {
	hours := now.Sub(createdAt).Hours()
	if hours < 0 {
		hours = 0
	}

	weightedSum := (float64(likes) * DefaultConfig.WeightUpvote) +
		(float64(comments) * DefaultConfig.WeightComment) -
		(float64(dislikes) * DefaultConfig.WeightDownvote)

	// 防止负数无法取对数
	if weightedSum < 0 {
		weightedSum = 0
	}

	// log10(sum + 1) -> 确保 sum=0 时结果为 0
	logScore := math.Log10(weightedSum + 1)
	numerator := logScore * DefaultConfig.ScaleFactor

	decay := math.Pow(hours+2, DefaultConfig.Gravity)
	return numerator / decay
}
