package entities

import "time"

type NotificationKind string

const (
	NotificationHangoutUpdate NotificationKind = "HANGOUT_UPDATE"
	NotificationFriendRequest NotificationKind = "FRIEND_REQUEST"
)

// Notification is one queued message for one recipient. It is pending until
// either DeliveredAt or FailedAt is set; NextAttemptAt defers a retry.
type Notification struct {
	ID            string
	Recipient     ParticipantRef
	HangoutID     string
	Kind          NotificationKind
	Content       string
	Link          string
	CreatedAt     time.Time
	DeliveredAt   time.Time
	Attempts      int
	NextAttemptAt time.Time
	FailedAt      time.Time
	LastError     string
}

// Due reports whether a pending notification may be attempted at now.
func (n Notification) Due(now time.Time) bool {
	return n.DeliveredAt.IsZero() && n.FailedAt.IsZero() && !n.NextAttemptAt.After(now)
}
