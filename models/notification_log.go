// models/notification_log.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationLog records each message sent to a client about one of
// their appointments.
type NotificationLog struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	SalonID       int64     `gorm:"index;not null" json:"salon"`
	AppointmentID int64     `gorm:"index;not null" json:"appointment"`
	ClientID      int64     `gorm:"index" json:"client"`
	Type          string    `gorm:"type:varchar(20)" json:"type"` // confirmed, cancelled, rescheduled
	Message       string    `gorm:"type:text" json:"message"`
	Status        string    `gorm:"type:varchar(20)" json:"status"` // sent, failed
	ErrorMessage  string    `gorm:"type:text" json:"error_message,omitempty"`
	Channel       string    `gorm:"type:varchar(20)" json:"channel"` // whatsapp, sms
	SentAt        time.Time `json:"sent_at"`
	CreatedAt     time.Time `json:"created_at"`
}

func (n *NotificationLog) BeforeCreate(tx *gorm.DB) (err error) {
	n.ID = uuid.New()
	return
}
