package models

import (
	"prs/src/types"
	"time"
)

type Booking struct {
	ID         uint                `gorm:"primarykey" json:"id"`
	PropertyID uint                `json:"property_id,omitempty"`
	RenterID   uint                `json:"renter_id,omitempty"`
	Status     types.BookingStatus `gorm:"default:'Pending'" json:"status,omitempty"`
	MoveInDate time.Time           `json:"move_in_date,omitempty"`
	Notes      *string             `json:"notes,omitempty"`
	Metadata   *types.JSONB        `gorm:"type:jsonb" json:"metadata,omitempty"`

	Property  *Property  `gorm:"foreignKey:property_id" json:"property,omitempty"`
	Renter    *User      `gorm:"foreignKey:renter_id" json:"renter,omitempty"`
	Agreement *Agreement `gorm:"foreignKey:booking_id" json:"agreement,omitempty"`

	types.Timestamps
}
