package models

import "prs/src/types"

type Payment struct {
	ID                uint                `gorm:"primarykey" json:"id"`
	AgreementID       *uint               `json:"agreement_id,omitempty"`
	BookingID         *uint               `json:"booking_id,omitempty"`
	Amount            float64             `json:"amount,omitempty"`
	Currency          string              `json:"currency,omitempty"`
	Status            types.PaymentStatus `gorm:"default:'Pending'" json:"status,omitempty"`
	ReferenceID       string              `json:"reference_id,omitempty"`
	CheckoutSessionID *string             `json:"-"`
	PaymentIntentID   *string             `json:"-"`
	Metadata          *types.JSONB        `gorm:"type:jsonb" json:"metadata,omitempty"`

	Agreement *Agreement `gorm:"foreignKey:agreement_id" json:"agreement,omitempty"`
	Booking   *Booking   `gorm:"foreignKey:booking_id" json:"booking,omitempty"`

	types.Timestamps
}
