package handlers

import (
	"errors"
	"net/http"
	"sort"

	apperrors "threadboard/internal/errors"
	"threadboard/internal/logging"
	"threadboard/internal/middleware"
	"threadboard/internal/models"
	"threadboard/internal/utils"
	"threadboard/internal/voting"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	// 热门排序时从最近的这么多条里挑
	hotCandidates = 200
	previewLength = 140
)

// SubjectView is a subject as returned to clients.
type SubjectView struct {
	models.Subject
	Preview     string          `json:"preview,omitempty"`
	MessageHTML string          `json:"messageHtml,omitempty"`
	HotScore    float64         `json:"hotScore,omitempty"`
	UserVote    models.VoteKind `json:"userVote,omitempty"`
}

type SubjectHandler struct {
	db    *gorm.DB
	votes *voting.Service
	cache *utils.Cache[SubjectView]
	clock clockwork.Clock
}

func NewSubjectHandler(gdb *gorm.DB, votes *voting.Service, cache *utils.Cache[SubjectView], clock clockwork.Clock) *SubjectHandler {
	return &SubjectHandler{db: gdb, votes: votes, cache: cache, clock: clock}
}

// Invalidate drops cached reads of a subject after its counters or comments change.
func (h *SubjectHandler) Invalidate(result voting.Result) {
	if result.Target.Type == models.TargetSubject {
		h.cache.Delete(result.Target.ID)
	}
}

type createSubjectRequest struct {
	Title          string `json:"title" binding:"required,max=100"`
	CreatorName    string `json:"creatorName" binding:"required,max=100"`
	InitialMessage string `json:"initialMessage" binding:"required,max=1000"`
}

// List handles GET /api/subjects. ?sort=hot orders by HotScore, otherwise newest first.
func (h *SubjectHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	limit := utils.ClampInt(c.Query("limit"), defaultPageSize, maxPageSize)
	hot := c.Query("sort") == "hot"

	fetch := limit
	if hot {
		fetch = hotCandidates
	}

	var subjects []models.Subject
	if err := h.db.WithContext(ctx).Order("created_at DESC").Limit(fetch).Find(&subjects).Error; err != nil {
		apperrors.Respond(c, apperrors.PersistenceFailure("failed to fetch subjects", err))
		return
	}

	ids := make([]string, len(subjects))
	for i, s := range subjects {
		ids[i] = s.ID
	}

	counts, err := commentCounts(h.db.WithContext(ctx), ids)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	userVotes, err := h.votes.VotesBy(ctx, middleware.CurrentUserID(c), ids)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	now := h.clock.Now()
	views := make([]SubjectView, len(subjects))
	for i, s := range subjects {
		s.CommentCount = counts[s.ID]
		views[i] = SubjectView{
			Subject:  s,
			Preview:  utils.PlainText(utils.RenderMarkdown(s.InitialMessage), previewLength),
			HotScore: utils.HotScore(s.CreatedAt, s.Likes, s.Dislikes, int64(s.CommentCount), now),
			UserVote: userVotes[s.ID],
		}
	}

	if hot {
		sort.SliceStable(views, func(i, j int) bool {
			return views[i].HotScore > views[j].HotScore
		})
		if len(views) > limit {
			views = views[:limit]
		}
	}

	c.JSON(http.StatusOK, views)
}

// Create handles POST /api/subjects.
func (h *SubjectHandler) Create(c *gin.Context) {
	var req createSubjectRequest
	if !bindJSON(c, &req) {
		return
	}

	user := middleware.CurrentUser(c)
	subject := models.Subject{
		ID:             uuid.NewString(),
		UserID:         user.ID,
		Title:          req.Title,
		CreatorName:    req.CreatorName,
		InitialMessage: req.InitialMessage,
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&subject).Error; err != nil {
		apperrors.Respond(c, apperrors.PersistenceFailure("failed to create subject", err))
		return
	}

	logging.FromContext(c.Request.Context()).Info("Subject created", "subject_id", subject.ID)
	c.JSON(http.StatusCreated, SubjectView{
		Subject:     subject,
		MessageHTML: utils.RenderMarkdown(subject.InitialMessage),
	})
}

// Detail handles GET /api/subjects/:id. The shared part is cached; the caller's
// own vote is filled in per request.
func (h *SubjectHandler) Detail(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	view, err := h.cache.GetOrLoad(id, func() (SubjectView, error) {
		return h.load(h.db.WithContext(ctx), id)
	})
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	if uid := middleware.CurrentUserID(c); uid != 0 {
		kind, ok, err := h.votes.Ledger().VoteOf(h.db.WithContext(ctx), uid, id)
		if err != nil {
			apperrors.Respond(c, err)
			return
		}
		if ok {
			view.UserVote = kind
		}
	}

	c.JSON(http.StatusOK, view)
}

func (h *SubjectHandler) load(tx *gorm.DB, id string) (SubjectView, error) {
	var subject models.Subject
	if err := tx.Where("id = ?", id).First(&subject).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SubjectView{}, apperrors.NotFound("Subject")
		}
		return SubjectView{}, apperrors.PersistenceFailure("failed to fetch subject", err)
	}

	counts, err := commentCounts(tx, []string{id})
	if err != nil {
		return SubjectView{}, err
	}
	subject.CommentCount = counts[id]

	return SubjectView{
		Subject:     subject,
		MessageHTML: utils.RenderMarkdown(subject.InitialMessage),
	}, nil
}

// Delete handles DELETE /api/subjects/:id. Only the creator may delete; the subject's
// comments and every vote on the subject or its comments go with it.
func (h *SubjectHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	user := middleware.CurrentUser(c)

	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		subject, err := findSubject(tx, id)
		if err != nil {
			return err
		}
		if subject.UserID != user.ID {
			return apperrors.Forbidden("Not authorized to delete this subject.")
		}

		var commentIDs []string
		if err := tx.Model(&models.Comment{}).Where("subject_id = ?", id).Pluck("id", &commentIDs).Error; err != nil {
			return apperrors.PersistenceFailure("failed to list comments", err)
		}

		if _, err := h.votes.Ledger().PurgeTargets(tx, append(commentIDs, id)); err != nil {
			return err
		}
		if err := tx.Where("subject_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return apperrors.PersistenceFailure("failed to delete comments", err)
		}
		if err := tx.Delete(subject).Error; err != nil {
			return apperrors.PersistenceFailure("failed to delete subject", err)
		}
		return nil
	})
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	h.cache.Delete(id)
	logging.FromContext(ctx).Info("Subject deleted", "subject_id", id)
	c.JSON(http.StatusOK, gin.H{"message": "Subject and related comments deleted."})
}

// findSubject loads a subject under the same row lock the voting service takes,
// so deletes queue behind in-flight votes.
func findSubject(tx *gorm.DB, id string) (*models.Subject, error) {
	entity, err := voting.Lock(tx, voting.SubjectTarget(id))
	if err != nil {
		return nil, err
	}
	return entity.(*models.Subject), nil
}
