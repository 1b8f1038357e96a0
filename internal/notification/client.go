package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// NotificationLevel represents the severity level of a notification
type NotificationLevel string

const (
	LevelInfo     NotificationLevel = "info"
	LevelWarning  NotificationLevel = "warning"
	LevelError    NotificationLevel = "error"
	LevelCritical NotificationLevel = "critical"
)

const (
	userAgent         = "computer-inventory-api/1.0"
	defaultSource     = "computer-inventory-api"
	maxMessageLength  = 1000
	maxSerialLength   = 50
	maxUserEmailLength = 256
)

// Notifier is an interface for sending notifications with context support
type Notifier interface {
	SendNotification(notification Notification) error
	SendNotificationWithContext(ctx context.Context, notification Notification) error
	IsHealthy(ctx context.Context) bool
}

// NotificationConfig holds configuration for the notification client
type NotificationConfig struct {
	URL            string
	Timeout        time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration
	MaxPayloadSize int64
}

// DefaultConfig returns a default configuration for the notification client
func DefaultConfig(url string) NotificationConfig {
	return NotificationConfig{
		URL:            url,
		Timeout:        10 * time.Second,
		RetryAttempts:  3,
		RetryDelay:     time.Second,
		MaxPayloadSize: 1024 * 1024, // 1MB
	}
}

type notificationClient struct {
	config NotificationConfig
	client *http.Client
	logger *log.Logger
}

// NewNotifier creates a new Notifier with default configuration
func NewNotifier(url string, logger *log.Logger) Notifier {
	return NewNotifierWithConfig(DefaultConfig(url), logger)
}

// NewNotifierWithConfig creates a new Notifier with custom configuration
func NewNotifierWithConfig(config NotificationConfig, logger *log.Logger) Notifier {
	if logger == nil {
		logger = log.Default()
	}
	return &notificationClient{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: logger,
	}
}

// Notification is the payload posted to the notification service. Event
// names the inventory change, e.g. "computer_assigned".
type Notification struct {
	Level        NotificationLevel `json:"level"`
	Event        string            `json:"event"`
	ComputerID   string            `json:"computerId,omitempty"`
	SerialNumber string            `json:"serialNumber,omitempty"`
	UserEmail    string            `json:"userEmail,omitempty"`
	Message      string            `json:"message"`
	Timestamp    time.Time         `json:"timestamp,omitempty"`
	Source       string            `json:"source,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// Validate checks if the notification is valid
func (n *Notification) Validate() error {
	if n.Level == "" {
		return fmt.Errorf("notification level is required")
	}
	if n.Event == "" {
		return fmt.Errorf("notification event is required")
	}
	if n.Message == "" {
		return fmt.Errorf("notification message is required")
	}
	if len(n.Message) > maxMessageLength {
		return fmt.Errorf("notification message too long (max %d characters)", maxMessageLength)
	}
	if len(n.SerialNumber) > maxSerialLength {
		return fmt.Errorf("serial number too long (max %d characters)", maxSerialLength)
	}
	if len(n.UserEmail) > maxUserEmailLength {
		return fmt.Errorf("user email too long (max %d characters)", maxUserEmailLength)
	}

	switch n.Level {
	case LevelInfo, LevelWarning, LevelError, LevelCritical:
		return nil
	default:
		return fmt.Errorf("invalid notification level: %s", n.Level)
	}
}

// permanentError marks failures that a retry cannot fix.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// SendNotification sends a notification to the notification service
func (c *notificationClient) SendNotification(notification Notification) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.config.Timeout)
	defer cancel()
	return c.SendNotificationWithContext(ctx, notification)
}

// SendNotificationWithContext posts the notification, retrying transient
// failures with a linear backoff until ctx is done.
func (c *notificationClient) SendNotificationWithContext(ctx context.Context, notification Notification) error {
	if err := notification.Validate(); err != nil {
		return fmt.Errorf("invalid notification: %w", err)
	}

	if notification.Timestamp.IsZero() {
		notification.Timestamp = time.Now().UTC()
	}
	if notification.Source == "" {
		notification.Source = defaultSource
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.RetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.config.RetryDelay * time.Duration(attempt)):
			}
			c.logger.Printf("Retrying notification %s (attempt %d/%d)", notification.Event, attempt+1, c.config.RetryAttempts+1)
		}

		err := c.sendNotificationAttempt(ctx, notification)
		if err == nil {
			return nil
		}
		lastErr = err
		c.logger.Printf("Notification %s attempt %d failed: %v", notification.Event, attempt+1, err)

		var permanent *permanentError
		if errors.As(err, &permanent) {
			return err
		}
	}

	return fmt.Errorf("failed to send notification after %d attempts: %w", c.config.RetryAttempts+1, lastErr)
}

func (c *notificationClient) sendNotificationAttempt(ctx context.Context, notification Notification) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return &permanentError{fmt.Errorf("failed to marshal notification: %w", err)}
	}

	if int64(len(payload)) > c.config.MaxPayloadSize {
		return &permanentError{fmt.Errorf("notification payload too large: %d bytes (max %d)", len(payload), c.config.MaxPayloadSize)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.URL, bytes.NewReader(payload))
	if err != nil {
		return &permanentError{fmt.Errorf("failed to create request: %w", err)}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	switch {
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("notification service returned error status %d: %s", resp.StatusCode, string(body))
	case resp.StatusCode >= 400:
		return &permanentError{fmt.Errorf("notification service rejected request with status %d: %s", resp.StatusCode, string(body))}
	case resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusAccepted:
		c.logger.Printf("Warning: unexpected status code %d from notification service", resp.StatusCode)
	}

	return nil
}

// IsHealthy checks if the notification service is healthy
func (c *notificationClient) IsHealthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.URL+"/health", nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode < 500
}
