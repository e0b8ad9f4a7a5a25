package handlers_test

import (
	"net/http"
	"testing"

	"threadboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type voteBody struct {
	Message   string `json:"message"`
	Action    string `json:"action"`
	Likes     int64  `json:"likes"`
	Dislikes  int64  `json:"dislikes"`
	LikeCount int64  `json:"likeCount"`
}

func TestVoteScenarios(t *testing.T) {
	s := newServer(t)
	x := s.register("x")
	subjectID := s.createSubject(x, "tabs")

	// A: first like
	w := s.vote(x, "Subject", subjectID, "like")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body voteBody
	decode(t, w, &body)
	assert.Equal(t, voteBody{Message: "Vote added", Action: "added", Likes: 1, LikeCount: 1}, body)

	// B: same like again
	w = s.vote(x, "Subject", subjectID, "like")
	require.Equal(t, http.StatusOK, w.Code)
	body = voteBody{}
	decode(t, w, &body)
	assert.Equal(t, "removed", body.Action)
	assert.Zero(t, body.Likes)

	// C: dislike then like
	w = s.vote(x, "Subject", subjectID, "dislike")
	require.Equal(t, http.StatusOK, w.Code)
	w = s.vote(x, "Subject", subjectID, "like")
	require.Equal(t, http.StatusOK, w.Code)
	body = voteBody{}
	decode(t, w, &body)
	assert.Equal(t, voteBody{Message: "Vote updated", Action: "updated", Likes: 1, LikeCount: 1}, body)
}

func TestVoteReactionScenario(t *testing.T) {
	s := newServer(t)
	x := s.register("x")
	commentID := s.createComment(x, s.createSubject(x, "tabs"), "Tabs.")

	w := s.vote(x, "Comment", commentID, "😡")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.vote(x, "Comment", commentID, "❤️")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Message        string            `json:"message"`
		Action         string            `json:"action"`
		EmojiReactions map[string][]uint `json:"emojiReactions"`
	}
	decode(t, w, &body)
	assert.Equal(t, "Reaction updated", body.Message)
	assert.Empty(t, body.Action)
	assert.NotContains(t, body.EmojiReactions["😡"], x.ID)
	assert.Equal(t, []uint{x.ID}, body.EmojiReactions["❤️"])
}

func TestVoteErrors(t *testing.T) {
	s := newServer(t)
	x := s.register("x")
	subjectID := s.createSubject(x, "tabs")

	tests := []struct {
		name       string
		token      string
		targetType string
		targetID   string
		voteType   string
		status     int
		code       string
	}{
		{"anonymous", "", "Subject", subjectID, "like", http.StatusUnauthorized, "unauthorized"},
		{"bad token", "garbage", "Subject", subjectID, "like", http.StatusUnauthorized, "unauthorized"},
		{"bad target type", x.Token, "Post", subjectID, "like", http.StatusBadRequest, "invalid_target"},
		{"bad vote type", x.Token, "Subject", subjectID, "love", http.StatusBadRequest, "invalid_vote_kind"},
		{"missing target", x.Token, "Subject", "00000000-0000-0000-0000-000000000000", "like", http.StatusNotFound, "not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(http.MethodPost, "/api/likes", tt.token, map[string]string{
				"targetType": tt.targetType,
				"targetId":   tt.targetID,
				"voteType":   tt.voteType,
			})
			require.Equal(t, tt.status, w.Code, w.Body.String())
			var body errorBody
			decode(t, w, &body)
			assert.Equal(t, tt.code, body.Code)
			assert.NotEmpty(t, body.Error)
		})
	}

	// E: nothing was written
	var n int64
	require.NoError(t, s.db.Model(&models.Vote{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestVoteMalformedBody(t *testing.T) {
	s := newServer(t)
	x := s.register("x")

	w := s.do(http.MethodPost, "/api/likes", x.Token, "not an object")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body errorBody
	decode(t, w, &body)
	assert.Equal(t, "invalid_request", body.Code)
}
