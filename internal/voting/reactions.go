package voting

import (
	"strings"

	apperrors "threadboard/internal/errors"
	"threadboard/internal/models"

	"gorm.io/gorm"
)

// Emoji is a recognized reaction symbol.
type Emoji string

const (
	EmojiThumbsUp Emoji = "👍"
	EmojiHeart    Emoji = "❤️"
	EmojiLaugh    Emoji = "😂"
	EmojiWow      Emoji = "😮"
	EmojiSad      Emoji = "😢"
	EmojiAngry    Emoji = "😡"
)

// Emojis lists the recognized reactions in display order.
var Emojis = []Emoji{EmojiThumbsUp, EmojiHeart, EmojiLaugh, EmojiWow, EmojiSad, EmojiAngry}

const variationSelector16 = "\uFE0F"

// ParseEmoji accepts a recognized emoji, with or without the U+FE0F variation selector.
func ParseEmoji(s string) (Emoji, error) {
	bare := strings.TrimSuffix(s, variationSelector16)
	for _, e := range Emojis {
		if s == string(e) || bare == strings.TrimSuffix(string(e), variationSelector16) {
			return e, nil
		}
	}
	return "", apperrors.InvalidReaction(s)
}

// ReactionLedger maintains the per-comment emoji→reactors mapping.
// A user holds at most one emoji per comment.
type ReactionLedger struct{}

func NewReactionLedger() *ReactionLedger {
	return &ReactionLedger{}
}

// Toggle clears userID from every emoji on comment, then adds it to emoji unless
// it was already there. The full mapping is written back to the comment row.
// Callers must hold the comment lock.
func (r *ReactionLedger) Toggle(tx *gorm.DB, comment *models.Comment, userID uint, emoji Emoji) (models.Reactions, error) {
	hadEmoji := comment.EmojiReactions.Has(string(emoji), userID)

	next := comment.EmojiReactions.Without(userID)
	if !hadEmoji {
		next[string(emoji)] = append(next[string(emoji)], userID)
	}

	err := tx.Model(&models.Comment{}).
		Where("id = ?", comment.ID).
		Update("emoji_reactions", next).Error
	if err != nil {
		return nil, apperrors.PersistenceFailure("failed to save reactions", err)
	}

	comment.EmojiReactions = next
	return next, nil
}
