package models

import (
	"time"

	"github.com/google/uuid"
)

type ShippingAddress struct {
	ID             uint      `gorm:"primaryKey"             json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	RecipientName  string    `gorm:"size:255;not null"      json:"recipient_name"`
	RecipientPhone string    `gorm:"size:20;not null"       json:"recipient_phone"`
	FullAddress    string    `gorm:"size:500;not null"      json:"full_address"`
	Province       string    `gorm:"size:100"               json:"province"`
	Ward           string    `gorm:"size:100"               json:"ward"`
	IsDefault      bool      `json:"is_default"`
	CreatedAt      time.Time `json:"created_at"`
}
