package voting

import (
	"context"
	"time"

	apperrors "threadboard/internal/errors"
	"threadboard/internal/logging"
	"threadboard/internal/metrics"
	"threadboard/internal/models"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Maintainer is the single writer of the likes, dislikes and like_count columns.
type Maintainer struct {
	ledger *Ledger
}

func NewMaintainer(ledger *Ledger) *Maintainer {
	return &Maintainer{ledger: ledger}
}

// Recompute re-derives the counters of target from the ledger and writes them back.
// It must run inside the transaction that holds the target lock. Idempotent.
func (m *Maintainer) Recompute(tx *gorm.DB, target Target) (models.Counters, error) {
	start := time.Now()
	defer func() {
		metrics.RecomputeDuration.WithLabelValues(string(target.Type)).Observe(time.Since(start).Seconds())
	}()

	tally, err := m.ledger.CountVotes(tx, target.ID)
	if err != nil {
		return models.Counters{}, err
	}

	counters := models.Counters{
		Likes:     tally.Likes,
		Dislikes:  tally.Dislikes,
		LikeCount: tally.Likes - tally.Dislikes,
	}

	// 模型上的计数字段是只读的，这里按表名写入
	err = tx.Table(target.table()).
		Where("id = ?", target.ID).
		UpdateColumns(map[string]any{
			"likes":      counters.Likes,
			"dislikes":   counters.Dislikes,
			"like_count": counters.LikeCount,
		}).Error
	if err != nil {
		return models.Counters{}, apperrors.PersistenceFailure("failed to update counters", err)
	}
	return counters, nil
}

// recomputeLocked runs Recompute for one target in its own transaction.
func (m *Maintainer) recomputeLocked(ctx context.Context, gdb *gorm.DB, target Target) error {
	return gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := target.lock(tx); err != nil {
			return err
		}
		_, err := m.Recompute(tx, target)
		return err
	})
}

// ReconcileAll recomputes the counters of every subject and comment from the ledger,
// with at most workers recomputes in flight. It returns the number of targets rewritten.
func (m *Maintainer) ReconcileAll(ctx context.Context, gdb *gorm.DB, workers int) (int, error) {
	if workers < 1 {
		workers = 1
	}

	var subjectIDs, commentIDs []string
	if err := gdb.WithContext(ctx).Model(&models.Subject{}).Order("id").Pluck("id", &subjectIDs).Error; err != nil {
		return 0, apperrors.PersistenceFailure("failed to list subjects", err)
	}
	if err := gdb.WithContext(ctx).Model(&models.Comment{}).Order("id").Pluck("id", &commentIDs).Error; err != nil {
		return 0, apperrors.PersistenceFailure("failed to list comments", err)
	}

	targets := make([]Target, 0, len(subjectIDs)+len(commentIDs))
	for _, id := range subjectIDs {
		targets = append(targets, SubjectTarget(id))
	}
	for _, id := range commentIDs {
		targets = append(targets, CommentTarget(id))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, target := range targets {
		g.Go(func() error {
			if err := m.recomputeLocked(gctx, gdb, target); err != nil {
				return err
			}
			metrics.ReconciledTargets.WithLabelValues(string(target.Type)).Inc()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	logging.Logger.Info("Counters reconciled", "subjects", len(subjectIDs), "comments", len(commentIDs))
	return len(targets), nil
}
