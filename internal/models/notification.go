package models

import (
	"fmt"
	"time"
)

// NotificationKind distinguishes the two notification opportunities derived
// from one class occurrence.
type NotificationKind string

const (
	KindClassReminder   NotificationKind = "class-reminder"
	KindAttendanceCheck NotificationKind = "attendance-check"
)

// NotificationPayload is the displayable content of a notification.
type NotificationPayload struct {
	Title string                 `json:"title"`
	Body  string                 `json:"body"`
	Icon  string                 `json:"icon,omitempty"`
	Tag   string                 `json:"tag,omitempty"`
	Data  map[string]interface{} `json:"data,omitempty"`
}

// Instant is a single notification opportunity tied to one concrete future
// occurrence of a weekly class slot. Instants are recomputed on every
// scheduling pass and never persisted on the client side.
type Instant struct {
	ID      string
	Kind    NotificationKind
	Day     Weekday
	Period  string
	At      time.Time
	Payload NotificationPayload

	ClassName string
	Room      string
	Professor string
}

// InstantID builds the stable identifier used for de-duplication and
// cancellation: one outstanding notification per (weekday, period, kind).
func InstantID(day Weekday, period string, kind NotificationKind) string {
	return fmt.Sprintf("%s-%s-%s", day, period, kind)
}

// ScheduledNotification is the durable server-side record awaiting dispatch.
// Unsent records are replaced wholesale on every scheduling pass; sent records
// are retained as a log and never touched again.
type ScheduledNotification struct {
	ID           string           `db:"id" json:"id"`
	Kind         NotificationKind `db:"notification_type" json:"notification_type"`
	Title        string           `db:"title" json:"title"`
	Body         string           `db:"body" json:"body"`
	ScheduledFor time.Time        `db:"scheduled_for" json:"scheduled_for"`
	ClassPeriod  string           `db:"class_period" json:"class_period"`
	ClassName    string           `db:"class_name" json:"class_name"`
	ClassRoom    string           `db:"class_room" json:"class_room"`
	Professor    string           `db:"professor" json:"professor"`
	Sent         bool             `db:"sent" json:"sent"`
	SentAt       *time.Time       `db:"sent_at" json:"sent_at,omitempty"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
}

// PushSubscription is a registered browser push destination.
type PushSubscription struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Endpoint  string    `db:"endpoint" json:"endpoint"`
	P256dh    string    `db:"p256dh" json:"p256dh"`
	Auth      string    `db:"auth" json:"auth"`
	UserAgent string    `db:"user_agent" json:"user_agent"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// NotificationLog records one delivery attempt against one destination.
type NotificationLog struct {
	ID             string    `db:"id" json:"id"`
	SubscriptionID string    `db:"subscription_id" json:"subscription_id"`
	Title          string    `db:"title" json:"title"`
	Body           string    `db:"body" json:"body"`
	Success        bool      `db:"success" json:"success"`
	ErrorMessage   string    `db:"error_message" json:"error_message,omitempty"`
	SentAt         time.Time `db:"sent_at" json:"sent_at"`
}

// DeliveryStatus is the developer-facing snapshot of the delivery adapter.
type DeliveryStatus struct {
	Supported  bool   `json:"supported"`
	Enabled    bool   `json:"enabled"`
	Permission string `json:"permission"`
	CanShow    bool   `json:"can_show"`
}

// SweepSummary reports the outcome of one dispatch sweep.
type SweepSummary struct {
	Processed int `json:"processed"`
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
}
