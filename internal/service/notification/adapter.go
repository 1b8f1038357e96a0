package notification

import (
	"computer-inventory-api/internal/notification"
	"computer-inventory-api/internal/service"
	"context"

	"github.com/google/uuid"
)

// ServiceAdapter adapts the notification client to the service layer interface
type ServiceAdapter struct {
	client notification.Notifier
}

// NewServiceAdapter creates a new notification service adapter
func NewServiceAdapter(client notification.Notifier) *ServiceAdapter {
	return &ServiceAdapter{
		client: client,
	}
}

// SendInventoryNotification converts an inventory event into the client payload.
func (a *ServiceAdapter) SendInventoryNotification(ctx context.Context, n service.InventoryNotification) error {
	metadata := make(map[string]string, len(n.Metadata)+1)
	for k, v := range n.Metadata {
		metadata[k] = v
	}
	metadata["notification_type"] = string(n.Type)

	payload := notification.Notification{
		Level:        mapNotificationLevel(n.Type),
		Event:        string(n.Type),
		SerialNumber: n.SerialNumber,
		UserEmail:    n.UserEmail,
		Message:      n.Message,
		Metadata:     metadata,
	}
	if n.ComputerID != uuid.Nil {
		payload.ComputerID = n.ComputerID.String()
	}

	return a.client.SendNotificationWithContext(ctx, payload)
}

// mapNotificationLevel maps service notification types to client notification levels
func mapNotificationLevel(notificationType service.NotificationType) notification.NotificationLevel {
	switch notificationType {
	case service.NotificationTypeComputerDeleted:
		return notification.LevelWarning
	default:
		return notification.LevelInfo
	}
}
