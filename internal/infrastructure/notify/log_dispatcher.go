package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/profitum/dossier-engine/internal/application/port"
	"github.com/profitum/dossier-engine/internal/domain/entity"
)

// LogDispatcher is the default delivery transport. It writes each notification
// to the structured log; a real transport (email, push) replaces it at wiring
// time without touching the services.
type LogDispatcher struct {
	logger *zap.Logger
}

// NewLogDispatcher creates a new log dispatcher
func NewLogDispatcher(logger *zap.Logger) port.NotificationDispatcher {
	return &LogDispatcher{logger: logger}
}

// Dispatch logs the notification
func (d *LogDispatcher) Dispatch(_ context.Context, n *entity.Notification) error {
	d.logger.Info("Notification dispatched",
		zap.String("notification_id", n.ID),
		zap.String("dossier_id", n.DossierID),
		zap.String("recipient", n.Recipient.String()),
		zap.String("type", n.Type),
		zap.String("title", n.Title))
	return nil
}

// Verify interface compliance
var _ port.NotificationDispatcher = (*LogDispatcher)(nil)
