package application

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kiloutout/service-booking/internal/domain/notification"
	"github.com/kiloutout/service-booking/internal/domain/shared"
)

// NotificationDTO is the response representation of a notification.
type NotificationDTO struct {
	ID        uuid.UUID `json:"id"`
	BookingID uuid.UUID `json:"booking_id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// NotificationService serves each user's in-app notification feed.
type NotificationService struct {
	repo notification.Repository
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(repo notification.Repository) *NotificationService {
	return &NotificationService{repo: repo}
}

// GetUserNotifications returns the actor's paginated notification feed.
func (s *NotificationService) GetUserNotifications(ctx context.Context, userID uuid.UUID, page, limit int) (*shared.PaginatedResult[NotificationDTO], error) {
	notifications, total, err := s.repo.FindByUserID(ctx, userID, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]NotificationDTO, len(notifications))
	for i, n := range notifications {
		dtos[i] = toNotificationDTO(n)
	}

	result := shared.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// CountUnread returns the actor's unread notification count.
func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

// MarkRead flags one of the actor's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	n, err := s.repo.FindByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if n.UserID() != userID {
		return shared.NewForbiddenError("notification does not belong to this user")
	}
	return s.repo.MarkRead(ctx, notificationID)
}

func toNotificationDTO(n *notification.Notification) NotificationDTO {
	return NotificationDTO{
		ID:        n.ID(),
		BookingID: n.BookingID(),
		Kind:      string(n.Kind()),
		Title:     n.Title(),
		Message:   n.Message(),
		Read:      n.Read(),
		CreatedAt: n.CreatedAt(),
	}
}
