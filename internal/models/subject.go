package models

import (
	"time"
)

// Subject 讨论主题
type Subject struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	UserID         uint      `gorm:"not null;index" json:"userId"`
	Title          string    `gorm:"size:100;not null" json:"title"`
	CreatorName    string    `gorm:"size:100;not null" json:"creatorName"`
	InitialMessage string    `gorm:"size:1000;not null" json:"initialMessage"`
	Counters       `gorm:"embedded"`
	CreatedAt      time.Time `gorm:"index" json:"timestamp"`
	UpdatedAt      time.Time `json:"updatedAt"`

	// 非数据库字段，用于查询时填充
	CommentCount int `gorm:"-" json:"commentCount"`
}
