package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/student-records-api/internal/models"
)

// appendActivity records an audit entry without blocking the caller. The log
// is display-only, so failures are logged and dropped.
func appendActivity(logger *zap.Logger, sink activitySink, entry *models.ActivityEntry) {
	if sink == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := sink.Append(ctx, entry); err != nil {
			logger.Warn("failed to record activity", zap.Error(err), zap.String("action", entry.Action), zap.String("entity_id", entry.EntityID))
		}
	}()
}
