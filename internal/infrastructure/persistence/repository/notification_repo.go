package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/profitum/dossier-engine/internal/application/port"
	"github.com/profitum/dossier-engine/internal/domain/entity"
	"github.com/profitum/dossier-engine/internal/domain/workflow"
)

// NotificationRepository implements port.NotificationRepository
type NotificationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *sql.DB, logger *zap.Logger) port.NotificationRepository {
	return &NotificationRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new notification record
func (r *NotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	query := `
		INSERT INTO notifications (
			id, dossier_id, recipient, type, title, message, status,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		n.ID,
		n.DossierID,
		n.Recipient.String(),
		n.Type,
		n.Title,
		n.Message,
		n.Status,
		n.CreatedAt,
		n.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create notification", zap.String("id", n.ID), zap.Error(err))
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// GetByDossierID retrieves a dossier's notifications, newest first
func (r *NotificationRepository) GetByDossierID(ctx context.Context, dossierID string) ([]*entity.Notification, error) {
	query := `
		SELECT id, dossier_id, recipient, type, title, message, status,
			created_at, updated_at
		FROM notifications
		WHERE dossier_id = ?
		ORDER BY created_at DESC
	`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, dossierID)
	if err != nil {
		r.logger.Error("Failed to list notifications", zap.String("dossier_id", dossierID), zap.Error(err))
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*entity.Notification
	for rows.Next() {
		var n entity.Notification
		var recipient string

		err := rows.Scan(
			&n.ID,
			&n.DossierID,
			&recipient,
			&n.Type,
			&n.Title,
			&n.Message,
			&n.Status,
			&n.CreatedAt,
			&n.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}

		n.Recipient = workflow.Role(recipient)
		notifications = append(notifications, &n)
	}

	return notifications, rows.Err()
}

// UpdateStatus updates a notification's delivery status
func (r *NotificationRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	query := `UPDATE notifications SET status = ?, updated_at = ? WHERE id = ?`

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		r.logger.Error("Failed to update notification status",
			zap.String("id", id), zap.String("status", status), zap.Error(err))
		return fmt.Errorf("failed to update notification status: %w", err)
	}

	return nil
}

// Verify interface compliance
var _ port.NotificationRepository = (*NotificationRepository)(nil)
