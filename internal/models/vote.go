package models

import (
	"time"
)

type TargetType string

const (
	TargetSubject TargetType = "Subject"
	TargetComment TargetType = "Comment"
)

type VoteKind string

const (
	VoteLike    VoteKind = "like"
	VoteDislike VoteKind = "dislike"
)

// Vote is one user's like/dislike on a subject or comment.
// The unique index is on (user_id, target_id) only: target ids are UUIDs shared
// across both tables, so the target type is not part of the key.
type Vote struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"not null;uniqueIndex:idx_vote_user_target" json:"userId"`
	TargetType TargetType `gorm:"size:16;not null" json:"targetType"`
	TargetID   string     `gorm:"size:36;not null;uniqueIndex:idx_vote_user_target;index" json:"targetId"`
	Kind       VoteKind   `gorm:"size:16;not null" json:"voteType"`
	CreatedAt  time.Time  `json:"timestamp"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}
