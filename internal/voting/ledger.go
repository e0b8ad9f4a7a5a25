package voting

import (
	"errors"

	apperrors "threadboard/internal/errors"
	"threadboard/internal/models"

	"gorm.io/gorm"
)

// Outcome is what CastVote did to the voter's row.
type Outcome string

const (
	Added   Outcome = "added"
	Removed Outcome = "removed"
	Updated Outcome = "updated"
)

// Message is the human-readable response text for the outcome.
func (o Outcome) Message() string {
	switch o {
	case Added:
		return "Vote added"
	case Removed:
		return "Vote removed"
	default:
		return "Vote updated"
	}
}

// Tally is the raw like/dislike count for one target.
type Tally struct {
	Likes    int64
	Dislikes int64
}

// Ledger is the authoritative store of votes. It is the only code that
// creates, updates or deletes Vote rows.
type Ledger struct{}

func NewLedger() *Ledger {
	return &Ledger{}
}

// CastVote applies kind for voterID on target:
// no prior vote inserts, the same kind deletes (toggle-off), the other kind flips in place.
// Callers must hold the target lock (see Target.lock).
func (l *Ledger) CastVote(tx *gorm.DB, voterID uint, target Target, kind models.VoteKind) (Outcome, error) {
	var existing models.Vote
	err := tx.Where("user_id = ? AND target_id = ?", voterID, target.ID).First(&existing).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		vote := models.Vote{
			UserID:     voterID,
			TargetType: target.Type,
			TargetID:   target.ID,
			Kind:       kind,
		}
		if err := tx.Create(&vote).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return "", apperrors.PersistenceFailure("concurrent vote for the same target", err)
			}
			return "", apperrors.PersistenceFailure("failed to add vote", err)
		}
		return Added, nil
	case err != nil:
		return "", apperrors.PersistenceFailure("failed to load vote", err)
	}

	if existing.Kind == kind {
		if err := tx.Delete(&existing).Error; err != nil {
			return "", apperrors.PersistenceFailure("failed to remove vote", err)
		}
		return Removed, nil
	}

	if err := tx.Model(&existing).Update("kind", kind).Error; err != nil {
		return "", apperrors.PersistenceFailure("failed to update vote", err)
	}
	return Updated, nil
}

// CountVotes scans every vote on targetID.
func (l *Ledger) CountVotes(tx *gorm.DB, targetID string) (Tally, error) {
	var rows []struct {
		Kind  models.VoteKind
		Total int64
	}
	err := tx.Model(&models.Vote{}).
		Select("kind, COUNT(*) AS total").
		Where("target_id = ?", targetID).
		Group("kind").
		Scan(&rows).Error
	if err != nil {
		return Tally{}, apperrors.PersistenceFailure("failed to count votes", err)
	}

	var tally Tally
	for _, r := range rows {
		switch r.Kind {
		case models.VoteLike:
			tally.Likes = r.Total
		case models.VoteDislike:
			tally.Dislikes = r.Total
		}
	}
	return tally, nil
}

// VoteOf returns voterID's own vote on targetID, if any.
func (l *Ledger) VoteOf(tx *gorm.DB, voterID uint, targetID string) (models.VoteKind, bool, error) {
	votes, err := l.VotesBy(tx, voterID, []string{targetID})
	if err != nil {
		return "", false, err
	}
	kind, ok := votes[targetID]
	return kind, ok, nil
}

// VotesBy returns voterID's vote kind for each of targetIDs that it has voted on.
func (l *Ledger) VotesBy(tx *gorm.DB, voterID uint, targetIDs []string) (map[string]models.VoteKind, error) {
	out := make(map[string]models.VoteKind)
	if voterID == 0 || len(targetIDs) == 0 {
		return out, nil
	}

	var votes []models.Vote
	err := tx.Select("target_id, kind").
		Where("user_id = ? AND target_id IN ?", voterID, targetIDs).
		Find(&votes).Error
	if err != nil {
		return nil, apperrors.PersistenceFailure("failed to load caller votes", err)
	}
	for _, v := range votes {
		out[v.TargetID] = v.Kind
	}
	return out, nil
}

// PurgeTargets deletes every vote on targetIDs. Used when the targets themselves are deleted.
func (l *Ledger) PurgeTargets(tx *gorm.DB, targetIDs []string) (int64, error) {
	if len(targetIDs) == 0 {
		return 0, nil
	}
	res := tx.Where("target_id IN ?", targetIDs).Delete(&models.Vote{})
	if res.Error != nil {
		return 0, apperrors.PersistenceFailure("failed to purge votes", res.Error)
	}
	return res.RowsAffected, nil
}
