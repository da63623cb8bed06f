package model

import "time"

// PushSubscription holds one browser push registration. A resident
// subscribes per appliance and is notified when its cycle finishes.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	Appliance string    `gorm:"size:32;index;not null"`
	RoomID    string    `gorm:"size:8"`
	CreatedAt time.Time `gorm:"not null"`
}
