package notifications

import (
	"context"
	"errors"

	"volunhub-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrNotificationNotFound = errors.New("Notification not found")

// Service serves the in-app notification feed.
type Service struct {
	DB *gorm.DB
}

// ListForUser returns the user's notifications, newest first.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Notification, error) {
	var out []domain.Notification
	if err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// MarkRead marks one of the user's notifications as read. Another user's
// notification is reported as not found, not forbidden.
func (s *Service) MarkRead(ctx context.Context, notificationID, userID uuid.UUID) (*domain.Notification, error) {
	var n domain.Notification
	if err := s.DB.WithContext(ctx).
		Where("notification_id = ? AND user_id = ?", notificationID, userID).
		First(&n).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	if !n.Read {
		n.Read = true
		if err := s.DB.WithContext(ctx).Save(&n).Error; err != nil {
			return nil, err
		}
	}
	return &n, nil
}
