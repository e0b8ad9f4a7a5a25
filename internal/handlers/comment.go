package handlers

import (
	"net/http"

	apperrors "threadboard/internal/errors"
	"threadboard/internal/logging"
	"threadboard/internal/middleware"
	"threadboard/internal/models"
	"threadboard/internal/utils"
	"threadboard/internal/voting"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CommentView is a comment as returned to clients.
type CommentView struct {
	models.Comment
	TextHTML     string          `json:"textHtml"`
	UserVote     models.VoteKind `json:"userVote,omitempty"`
	UserReaction string          `json:"userReaction,omitempty"`
}

type CommentHandler struct {
	db       *gorm.DB
	votes    *voting.Service
	subjects *utils.Cache[SubjectView]
}

func NewCommentHandler(gdb *gorm.DB, votes *voting.Service, subjects *utils.Cache[SubjectView]) *CommentHandler {
	return &CommentHandler{db: gdb, votes: votes, subjects: subjects}
}

type createCommentRequest struct {
	Text     string `json:"text" binding:"required,max=1000"`
	UserName string `json:"userName" binding:"required,max=100"`
}

// List handles GET /api/subjects/:id/comments, oldest first.
func (h *CommentHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	subjectID := c.Param("id")

	var exists int64
	if err := h.db.WithContext(ctx).Model(&models.Subject{}).Where("id = ?", subjectID).Count(&exists).Error; err != nil {
		apperrors.Respond(c, apperrors.PersistenceFailure("failed to fetch subject", err))
		return
	}
	if exists == 0 {
		apperrors.Respond(c, apperrors.NotFound("Subject"))
		return
	}

	var comments []models.Comment
	if err := h.db.WithContext(ctx).Where("subject_id = ?", subjectID).Order("created_at ASC").Find(&comments).Error; err != nil {
		apperrors.Respond(c, apperrors.PersistenceFailure("failed to fetch comments", err))
		return
	}

	ids := make([]string, len(comments))
	for i, cm := range comments {
		ids[i] = cm.ID
	}
	uid := middleware.CurrentUserID(c)
	userVotes, err := h.votes.VotesBy(ctx, uid, ids)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	views := make([]CommentView, len(comments))
	for i, cm := range comments {
		views[i] = h.view(cm, uid)
		views[i].UserVote = userVotes[cm.ID]
	}
	c.JSON(http.StatusOK, views)
}

func (h *CommentHandler) view(cm models.Comment, uid uint) CommentView {
	if cm.EmojiReactions == nil {
		cm.EmojiReactions = models.Reactions{}
	}
	v := CommentView{Comment: cm, TextHTML: utils.RenderMarkdown(cm.Text)}
	if uid != 0 {
		v.UserReaction, _ = cm.EmojiReactions.EmojiOf(uid)
	}
	return v
}

// Create handles POST /api/subjects/:id/comments.
func (h *CommentHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	subjectID := c.Param("id")

	var req createCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	user := middleware.CurrentUser(c)
	comment := models.Comment{
		ID:             uuid.NewString(),
		SubjectID:      subjectID,
		UserID:         user.ID,
		UserName:       req.UserName,
		Text:           req.Text,
		EmojiReactions: models.Reactions{},
	}

	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findSubject(tx, subjectID); err != nil {
			return err
		}
		if err := tx.Create(&comment).Error; err != nil {
			return apperrors.PersistenceFailure("failed to create comment", err)
		}
		return nil
	})
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	h.subjects.Delete(subjectID)
	logging.FromContext(ctx).Info("Comment created", "subject_id", subjectID, "comment_id", comment.ID)
	c.JSON(http.StatusCreated, h.view(comment, user.ID))
}

// Delete handles DELETE /api/comments/:id. Only the author may delete.
func (h *CommentHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	user := middleware.CurrentUser(c)

	var subjectID string
	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entity, err := voting.Lock(tx, voting.CommentTarget(id))
		if err != nil {
			return err
		}
		comment := entity.(*models.Comment)
		if comment.UserID != user.ID {
			return apperrors.Forbidden("Not authorized to delete this comment.")
		}
		subjectID = comment.SubjectID

		if _, err := h.votes.Ledger().PurgeTargets(tx, []string{id}); err != nil {
			return err
		}
		if err := tx.Delete(comment).Error; err != nil {
			return apperrors.PersistenceFailure("failed to delete comment", err)
		}
		return nil
	})
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	h.subjects.Delete(subjectID)
	logging.FromContext(ctx).Info("Comment deleted", "comment_id", id)
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted."})
}
