package handlers

import (
	"net/http"

	apperrors "threadboard/internal/errors"
	"threadboard/internal/middleware"
	"threadboard/internal/voting"

	"github.com/gin-gonic/gin"
)

type VoteHandler struct {
	votes *voting.Service
}

func NewVoteHandler(votes *voting.Service) *VoteHandler {
	return &VoteHandler{votes: votes}
}

// voteRequest fields are validated by the voting service so that each bad value maps
// to its own error code.
type voteRequest struct {
	TargetType string `json:"targetType"`
	TargetID   string `json:"targetId"`
	VoteType   string `json:"voteType"`
}

// Vote handles POST /api/likes: like/dislike toggling on subjects and comments,
// and emoji reactions on comments.
func (h *VoteHandler) Vote(c *gin.Context) {
	var req voteRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.votes.Cast(c.Request.Context(), middleware.CurrentUserID(c), req.TargetType, req.TargetID, req.VoteType)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	if result.IsReaction() {
		c.JSON(http.StatusOK, gin.H{
			"message":        result.Message(),
			"emojiReactions": result.Reactions,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   result.Message(),
		"action":    result.Action,
		"likes":     result.Counters.Likes,
		"dislikes":  result.Counters.Dislikes,
		"likeCount": result.Counters.LikeCount,
	})
}
