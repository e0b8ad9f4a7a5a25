package voting

import (
	"errors"
	"fmt"

	apperrors "threadboard/internal/errors"
	"threadboard/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Target names a votable entity: Subject(id) or Comment(id).
type Target struct {
	Type models.TargetType
	ID   string
}

func SubjectTarget(id string) Target {
	return Target{Type: models.TargetSubject, ID: id}
}

func CommentTarget(id string) Target {
	return Target{Type: models.TargetComment, ID: id}
}

// ParseTargetType accepts exactly "Subject" or "Comment".
func ParseTargetType(s string) (models.TargetType, error) {
	switch models.TargetType(s) {
	case models.TargetSubject, models.TargetComment:
		return models.TargetType(s), nil
	}
	return "", apperrors.InvalidTarget(s)
}

// ParseKind accepts exactly "like" or "dislike".
func ParseKind(s string) (models.VoteKind, error) {
	switch models.VoteKind(s) {
	case models.VoteLike, models.VoteDislike:
		return models.VoteKind(s), nil
	}
	return "", apperrors.InvalidVoteKind(s)
}

// Entity is any stored record that carries aggregate counters.
type Entity interface {
	Tally() models.Counters
}

func (t Target) table() string {
	if t.Type == models.TargetComment {
		return "comments"
	}
	return "subjects"
}

// Lock loads target under the row lock used by Cast. Callers that delete or edit
// votable rows take it so they queue behind in-flight votes.
func Lock(tx *gorm.DB, target Target) (Entity, error) {
	return target.lock(tx)
}

// lock loads the target row with SELECT ... FOR UPDATE. The lock is held until
// the surrounding transaction ends and serializes every writer of this target.
func (t Target) lock(tx *gorm.DB) (Entity, error) {
	locked := tx.Clauses(clause.Locking{Strength: "UPDATE"})

	var (
		entity Entity
		err    error
	)
	switch t.Type {
	case models.TargetSubject:
		var subject models.Subject
		err = locked.Where("id = ?", t.ID).First(&subject).Error
		entity = &subject
	case models.TargetComment:
		var comment models.Comment
		err = locked.Where("id = ?", t.ID).First(&comment).Error
		entity = &comment
	default:
		return nil, apperrors.InvalidTarget(string(t.Type))
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound(string(t.Type)).WithContext("targetId", t.ID)
	}
	if err != nil {
		return nil, apperrors.PersistenceFailure("failed to load target", err)
	}
	return entity, nil
}

func (t Target) String() string {
	return fmt.Sprintf("%s(%s)", t.Type, t.ID)
}
