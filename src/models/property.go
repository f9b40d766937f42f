package models

import "prs/src/types"

type Property struct {
	ID          uint                 `gorm:"primarykey" json:"id"`
	Title       string               `json:"title,omitempty"`
	Slug        string               `gorm:"uniqueIndex" json:"slug,omitempty"`
	Description *string              `json:"description,omitempty"`
	Address     string               `json:"address,omitempty"`
	City        string               `json:"city,omitempty"`
	Country     string               `json:"country,omitempty"`
	Lat         *float64             `json:"lat,omitempty"`
	Lng         *float64             `json:"lng,omitempty"`
	RentAmount  float64              `json:"rent_amount,omitempty"`
	Currency    string               `json:"currency,omitempty"`
	PhotoKey    *string              `json:"photo_key,omitempty"`
	Status      types.PropertyStatus `gorm:"default:'Available'" json:"status,omitempty"`
	OwnerID     uint                 `json:"owner_id,omitempty"`

	Owner    *User      `gorm:"foreignKey:owner_id" json:"owner,omitempty"`
	Bookings []*Booking `gorm:"foreignKey:property_id" json:"bookings,omitempty"`

	types.Timestamps
}
