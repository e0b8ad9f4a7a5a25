package voting

import (
	"context"
	"errors"

	apperrors "threadboard/internal/errors"
	"threadboard/internal/logging"
	"threadboard/internal/metrics"
	"threadboard/internal/models"

	"gorm.io/gorm"
)

// Result is the committed outcome of one Cast.
// Action is set for like/dislike votes; Reactions is set for emoji reactions.
type Result struct {
	Target    Target
	Action    Outcome
	Counters  models.Counters
	Reactions models.Reactions
	Emoji     Emoji
}

// IsReaction reports whether the request went to the reaction ledger.
func (r *Result) IsReaction() bool {
	return r.Action == ""
}

// Message is the response text for the result.
func (r *Result) Message() string {
	if r.IsReaction() {
		return "Reaction updated"
	}
	return r.Action.Message()
}

// Service validates vote requests and dispatches them to the ledgers.
type Service struct {
	db         *gorm.DB
	ledger     *Ledger
	reactions  *ReactionLedger
	maintainer *Maintainer
	onCommit   []func(Result)
}

func NewService(gdb *gorm.DB) *Service {
	ledger := NewLedger()
	return &Service{
		db:         gdb,
		ledger:     ledger,
		reactions:  NewReactionLedger(),
		maintainer: NewMaintainer(ledger),
	}
}

// Ledger exposes the vote ledger for read paths and cascading deletes.
func (s *Service) Ledger() *Ledger {
	return s.ledger
}

// Maintainer exposes the counter maintainer for reconciliation.
func (s *Service) Maintainer() *Maintainer {
	return s.maintainer
}

// OnCommit registers fn to run after every committed Cast, e.g. to drop cached reads.
func (s *Service) OnCommit(fn func(Result)) {
	s.onCommit = append(s.onCommit, fn)
}

// Cast handles one vote or reaction request from voterID.
//
// Order: authenticated caller, valid target type, target exists, then the branch:
// a recognized emoji on a comment goes to the reaction ledger, anything else must
// be like/dislike and goes to the vote ledger followed by a counter recompute.
// The ledger write and the recompute share one transaction.
func (s *Service) Cast(ctx context.Context, voterID uint, targetType, targetID, voteType string) (*Result, error) {
	if voterID == 0 {
		return nil, apperrors.Unauthorized("authentication required")
	}

	tt, err := ParseTargetType(targetType)
	if err != nil {
		return nil, err
	}
	target := Target{Type: tt, ID: targetID}

	var result Result
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entity, err := target.lock(tx)
		if err != nil {
			return err
		}

		if comment, ok := entity.(*models.Comment); ok {
			if emoji, perr := ParseEmoji(voteType); perr == nil {
				reactions, err := s.reactions.Toggle(tx, comment, voterID, emoji)
				if err != nil {
					return err
				}
				result = Result{Target: target, Counters: comment.Tally(), Reactions: reactions, Emoji: emoji}
				return nil
			}
		}

		kind, err := ParseKind(voteType)
		if err != nil {
			return err
		}

		action, err := s.ledger.CastVote(tx, voterID, target, kind)
		if err != nil {
			return err
		}

		counters, err := s.maintainer.Recompute(tx, target)
		if err != nil {
			return err
		}

		result = Result{Target: target, Action: action, Counters: counters}
		return nil
	})
	if err != nil {
		var structuredErr *apperrors.Error
		if !errors.As(err, &structuredErr) {
			err = apperrors.PersistenceFailure("failed to process vote", err)
		}
		return nil, err
	}

	s.record(ctx, voterID, result)
	for _, fn := range s.onCommit {
		fn(result)
	}
	return &result, nil
}

func (s *Service) record(ctx context.Context, voterID uint, result Result) {
	log := logging.FromContext(ctx).With("user_id", voterID, "target", result.Target.String())

	if result.IsReaction() {
		outcome := "cleared"
		if result.Reactions.Has(string(result.Emoji), voterID) {
			outcome = "set"
		}
		metrics.ReactionsTotal.WithLabelValues(string(result.Emoji), outcome).Inc()
		log.Debug("Reaction toggled", "emoji", result.Emoji, "result", outcome)
		return
	}

	metrics.VotesTotal.WithLabelValues(string(result.Target.Type), string(result.Action)).Inc()
	log.Debug("Vote cast", "action", result.Action, "like_count", result.Counters.LikeCount)
}

// VotesBy returns voterID's own vote kind per target id, for read paths.
func (s *Service) VotesBy(ctx context.Context, voterID uint, targetIDs []string) (map[string]models.VoteKind, error) {
	return s.ledger.VotesBy(s.db.WithContext(ctx), voterID, targetIDs)
}
