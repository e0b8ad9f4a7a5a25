package handlers

import (
	"net/http"

	apperrors "threadboard/internal/errors"
	"threadboard/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// bindJSON binds the request body into dst, writing a 400 on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		apperrors.Respond(c, apperrors.FromBindError(err))
		return false
	}
	return true
}

// commentCounts returns the number of comments per subject id.
func commentCounts(tx *gorm.DB, subjectIDs []string) (map[string]int, error) {
	out := make(map[string]int, len(subjectIDs))
	if len(subjectIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		SubjectID string
		Total     int
	}
	err := tx.Model(&models.Comment{}).
		Select("subject_id, COUNT(*) AS total").
		Where("subject_id IN ?", subjectIDs).
		Group("subject_id").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.PersistenceFailure("failed to count comments", err)
	}
	for _, r := range rows {
		out[r.SubjectID] = r.Total
	}
	return out, nil
}

// Health reports whether the database answers.
func Health(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := gdb.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
