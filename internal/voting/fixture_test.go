package voting

import (
	"context"
	"fmt"
	"testing"

	"threadboard/internal/db/dbtest"
	"threadboard/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db  *gorm.DB
	svc *Service
	ctx context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb := dbtest.Open(t)
	return &fixture{db: gdb, svc: NewService(gdb), ctx: context.Background()}
}

func (f *fixture) user(t *testing.T, name string) uint {
	t.Helper()
	u := models.User{Name: name, Email: name + "@example.com", Password: "x"}
	require.NoError(t, f.db.Create(&u).Error)
	return u.ID
}

func (f *fixture) subject(t *testing.T, owner uint) string {
	t.Helper()
	s := models.Subject{
		ID:             uuid.NewString(),
		UserID:         owner,
		Title:          "Tabs or spaces?",
		CreatorName:    "owner",
		InitialMessage: "Settle it.",
	}
	require.NoError(t, f.db.Create(&s).Error)
	return s.ID
}

func (f *fixture) comment(t *testing.T, subjectID string, owner uint) string {
	t.Helper()
	c := models.Comment{
		ID:        uuid.NewString(),
		SubjectID: subjectID,
		UserID:    owner,
		UserName:  fmt.Sprintf("user-%d", owner),
		Text:      "Tabs.",
	}
	require.NoError(t, f.db.Create(&c).Error)
	return c.ID
}

func (f *fixture) loadSubject(t *testing.T, id string) models.Subject {
	t.Helper()
	var s models.Subject
	require.NoError(t, f.db.First(&s, "id = ?", id).Error)
	return s
}

func (f *fixture) loadComment(t *testing.T, id string) models.Comment {
	t.Helper()
	var c models.Comment
	require.NoError(t, f.db.First(&c, "id = ?", id).Error)
	return c
}

func (f *fixture) votes(t *testing.T, voter uint, targetID string) []models.Vote {
	t.Helper()
	var votes []models.Vote
	require.NoError(t, f.db.Where("user_id = ? AND target_id = ?", voter, targetID).Find(&votes).Error)
	return votes
}

func (f *fixture) ledgerCount(t *testing.T, targetID string, kind models.VoteKind) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.Vote{}).Where("target_id = ? AND kind = ?", targetID, kind).Count(&n).Error)
	return n
}
