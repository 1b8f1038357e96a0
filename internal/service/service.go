package service

import (
	"computer-inventory-api/internal/repository"
	"computer-inventory-api/pkg/errors"
	"context"
	stderrors "errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultNotifyTimeout bounds a notification sent after a committed command.
const DefaultNotifyTimeout = 5 * time.Second

var (
	statusTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_status_transitions_total",
		Help: "Status timeline entries appended, by status.",
	}, []string{"status"})

	assignmentEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_assignment_events_total",
		Help: "User assignments opened and closed.",
	}, []string{"event"})
)

// Clock supplies the current time to the services.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

// NotificationService delivers inventory events to an external system.
type NotificationService interface {
	SendInventoryNotification(ctx context.Context, notification InventoryNotification) error
}

// InventoryNotification describes a committed inventory change.
type InventoryNotification struct {
	Type         NotificationType
	ComputerID   uuid.UUID
	SerialNumber string
	UserEmail    string
	Message      string
	Metadata     map[string]string
}

// NotificationType represents the type of notification
type NotificationType string

const (
	NotificationTypeComputerCreated  NotificationType = "computer_created"
	NotificationTypeComputerDeleted  NotificationType = "computer_deleted"
	NotificationTypeStatusChanged    NotificationType = "status_changed"
	NotificationTypeComputerAssigned NotificationType = "computer_assigned"
	NotificationTypeAssignmentEnded  NotificationType = "assignment_ended"
)

// Options carries the collaborators shared by all services. Zero values
// fall back to defaults; a nil Notifier disables notifications.
type Options struct {
	Clock                 Clock
	Notifier              NotificationService
	Logger                *log.Logger
	NotifyTimeout         time.Duration
	WarrantyThresholdDays int
}

type base struct {
	clock         Clock
	notifier      NotificationService
	logger        *log.Logger
	notifyTimeout time.Duration
}

func newBase(opts Options) base {
	b := base{
		clock:         opts.Clock,
		notifier:      opts.Notifier,
		logger:        opts.Logger,
		notifyTimeout: opts.NotifyTimeout,
	}
	if b.clock == nil {
		b.clock = realClock{}
	}
	if b.logger == nil {
		b.logger = log.Default()
	}
	if b.notifyTimeout <= 0 {
		b.notifyTimeout = DefaultNotifyTimeout
	}
	return b
}

func (b base) now() time.Time {
	return b.clock.Now()
}

// notify runs after the write is committed. Failures are logged and never
// reach the caller.
func (b base) notify(ctx context.Context, n InventoryNotification) {
	if b.notifier == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.notifyTimeout)
	defer cancel()

	if err := b.notifier.SendInventoryNotification(ctx, n); err != nil {
		b.logger.Printf("Failed to send %s notification for computer %s: %v", n.Type, n.ComputerID, err)
	}
}

func validationFailure(messages []string) error {
	return errors.ValidationError(strings.Join(messages, "; ")).WithDetail("errors", messages)
}

// storeError translates repository errors that can surface on any write.
func storeError(err error, action string) error {
	switch {
	case stderrors.Is(err, repository.ErrVersionConflict):
		return errors.ConflictError("computer was modified by another request")
	case stderrors.Is(err, repository.ErrComputerAlreadyAssigned):
		return errors.ConflictError("computer is already assigned")
	case stderrors.Is(err, repository.ErrAssignmentClosed):
		return errors.ConflictError("computer is not currently assigned")
	case stderrors.Is(err, repository.ErrDuplicateSerial):
		return errors.ConflictError("computer with this serial number already exists")
	case stderrors.Is(err, repository.ErrDuplicateEmail):
		return errors.ConflictError("user with this email already exists")
	case stderrors.Is(err, repository.ErrComputerNotFound):
		return errors.NotFoundError("computer")
	case stderrors.Is(err, repository.ErrUserNotFound):
		return errors.NotFoundError("user")
	case stderrors.Is(err, repository.ErrManufacturerNotFound):
		return errors.ValidationError("manufacturer not found")
	case stderrors.Is(err, repository.ErrStatusNotFound):
		return errors.NotFoundError("status")
	}
	if errors.IsAppError(err) {
		return err
	}
	return errors.DatabaseError("failed to "+action, err)
}
