package models

import (
	"prs/src/types"
	"time"
)

type User struct {
	ID            uint            `gorm:"primarykey" json:"id"`
	Name          string          `json:"name,omitempty"`
	Email         string          `json:"email,omitempty"`
	Role          string          `json:"role,omitempty"`
	UID           string          `json:"uid,omitempty"`
	EmailVerified bool            `json:"email_verified,omitempty"`
	PhoneVerified bool            `json:"phone_verified,omitempty"`
	VerifiedAt    time.Time       `json:"verified_at,omitempty"`
	LastActive    time.Time       `json:"last_active,omitempty"`
	Metadata      *types.Metadata `gorm:"type:jsonb"`

	Properties []Property `gorm:"foreignKey:owner_id" json:"properties,omitempty"`
	Bookings   []Booking  `gorm:"foreignKey:renter_id" json:"bookings,omitempty"`

	types.Timestamps
}
