package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kiloutout/service-booking/internal/domain/notification"
	"github.com/kiloutout/service-booking/internal/domain/shared"
)

// NotificationModel is the GORM model for the notifications table.
type NotificationModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null"`
	BookingID uuid.UUID `gorm:"type:uuid;index"`
	Kind      string    `gorm:"not null;size:30"`
	Title     string    `gorm:"not null;size:200"`
	Message   string    `gorm:"size:1000"`
	Read      bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (NotificationModel) TableName() string {
	return "notifications"
}

// GormNotificationRepository is the GORM-based implementation of the
// notification Repository.
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GormNotificationRepository.
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// Save persists a new notification.
func (r *GormNotificationRepository) Save(ctx context.Context, n *notification.Notification) error {
	model := toNotificationModel(n)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save notification: %w", err)
	}
	return nil
}

// FindByID retrieves a notification by its unique identifier.
func (r *GormNotificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	var model NotificationModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Notification", id.String())
		}
		return nil, fmt.Errorf("failed to find notification by ID: %w", err)
	}
	return toDomainNotification(&model), nil
}

// FindByUserID retrieves a user's notifications with pagination, newest
// first.
func (r *GormNotificationRepository) FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]*notification.Notification, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&NotificationModel{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	var models []NotificationModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find notifications: %w", err)
	}

	notifications := make([]*notification.Notification, len(models))
	for i := range models {
		notifications[i] = toDomainNotification(&models[i])
	}
	return notifications, total, nil
}

// CountUnread returns the number of unread notifications for a user.
func (r *GormNotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&NotificationModel{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead flags a notification as read.
func (r *GormNotificationRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&NotificationModel{}).
		Where("id = ?", id).
		Update("read", true)
	if result.Error != nil {
		return fmt.Errorf("failed to mark notification read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Notification", id.String())
	}
	return nil
}

// --- Conversion Helpers ---

func toNotificationModel(n *notification.Notification) *NotificationModel {
	return &NotificationModel{
		ID:        n.ID(),
		UserID:    n.UserID(),
		BookingID: n.BookingID(),
		Kind:      string(n.Kind()),
		Title:     n.Title(),
		Message:   n.Message(),
		Read:      n.Read(),
		CreatedAt: n.CreatedAt(),
	}
}

func toDomainNotification(m *NotificationModel) *notification.Notification {
	return notification.Reconstruct(
		m.ID,
		m.UserID,
		m.BookingID,
		notification.Kind(m.Kind),
		m.Title,
		m.Message,
		m.Read,
		m.CreatedAt,
	)
}
