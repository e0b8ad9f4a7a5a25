package voting

import (
	"testing"

	apperrors "threadboard/internal/errors"
	"threadboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestParseEmoji(t *testing.T) {
	tests := []struct {
		in   string
		want Emoji
	}{
		{"👍", EmojiThumbsUp},
		{"❤️", EmojiHeart},
		{"❤", EmojiHeart},
		{"😂", EmojiLaugh},
		{"😮", EmojiWow},
		{"😢", EmojiSad},
		{"😡", EmojiAngry},
	}
	for _, tt := range tests {
		got, err := ParseEmoji(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"", "like", "🙂", "👍👍"} {
		_, err := ParseEmoji(bad)
		assert.ErrorIs(t, err, apperrors.ErrInvalidReaction, bad)
	}
}

func toggle(t *testing.T, f *fixture, commentID string, userID uint, emoji Emoji) models.Reactions {
	t.Helper()
	var out models.Reactions
	err := f.db.Transaction(func(tx *gorm.DB) error {
		entity, err := CommentTarget(commentID).lock(tx)
		if err != nil {
			return err
		}
		out, err = NewReactionLedger().Toggle(tx, entity.(*models.Comment), userID, emoji)
		return err
	})
	require.NoError(t, err)
	return out
}

func TestToggleSetSwitchClear(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner")
	user := f.user(t, "reactor")
	commentID := f.comment(t, f.subject(t, owner), owner)

	got := toggle(t, f, commentID, user, EmojiThumbsUp)
	assert.Equal(t, models.Reactions{"👍": {user}}, got)

	got = toggle(t, f, commentID, user, EmojiHeart)
	assert.Equal(t, models.Reactions{"❤️": {user}}, got)

	got = toggle(t, f, commentID, user, EmojiHeart)
	assert.Empty(t, got)

	stored := f.loadComment(t, commentID)
	assert.Empty(t, stored.EmojiReactions)
}

func TestToggleKeepsOtherReactors(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner")
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	commentID := f.comment(t, f.subject(t, owner), owner)

	toggle(t, f, commentID, alice, EmojiLaugh)
	toggle(t, f, commentID, bob, EmojiLaugh)
	got := toggle(t, f, commentID, alice, EmojiSad)

	assert.Equal(t, models.Reactions{"😂": {bob}, "😢": {alice}}, got)
	assert.Equal(t, got, f.loadComment(t, commentID).EmojiReactions)
}

func TestToggleExclusivity(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner")
	users := []uint{f.user(t, "u1"), f.user(t, "u2"), f.user(t, "u3")}
	commentID := f.comment(t, f.subject(t, owner), owner)

	for i := 0; i < 40; i++ {
		user := users[(i*7)%len(users)]
		emoji := Emojis[(i*5)%len(Emojis)]
		toggle(t, f, commentID, user, emoji)

		stored := f.loadComment(t, commentID).EmojiReactions
		for _, u := range users {
			held := 0
			for _, reactors := range stored {
				for _, r := range reactors {
					if r == u {
						held++
					}
				}
			}
			assert.LessOrEqual(t, held, 1, "user %d holds %d emojis after step %d", u, held, i)
		}
	}
}
