package models

import (
	"time"
)

type Comment struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	SubjectID      string    `gorm:"size:36;not null;index" json:"subjectId"`
	UserID         uint      `gorm:"not null;index" json:"userId"`
	UserName       string    `gorm:"size:100;not null" json:"userName"`
	Text           string    `gorm:"size:1000;not null" json:"text"`
	Counters       `gorm:"embedded"`
	EmojiReactions Reactions `gorm:"type:text;not null" json:"emojiReactions"`
	CreatedAt      time.Time `gorm:"index" json:"timestamp"`
}
