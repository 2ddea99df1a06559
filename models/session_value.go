package models

import "time"

// SessionValue is one persisted key of a browser session, the server-side
// equivalent of a localStorage entry.
type SessionValue struct {
	SessionID string `gorm:"type:varchar(64);primaryKey"`
	Key       string `gorm:"type:varchar(128);primaryKey"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}
