package models

import (
	"prs/src/types"
	"time"
)

type Agreement struct {
	ID          uint                  `gorm:"primarykey" json:"id"`
	BookingID   *uint                 `json:"booking_id,omitempty"`
	StartDate   time.Time             `json:"start_date,omitempty"`
	EndDate     time.Time             `json:"end_date,omitempty"`
	MonthlyRent float64               `json:"monthly_rent,omitempty"`
	Status      types.AgreementStatus `gorm:"default:'Draft'" json:"status,omitempty"`

	Booking *Booking `gorm:"foreignKey:booking_id" json:"booking,omitempty"`

	types.Timestamps
}
