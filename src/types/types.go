package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any
type JSONBArray []any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

func (a JSONBArray) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONBArray) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type Env string

const (
	Local      Env = "local"
	Test       Env = "test"
	Production Env = "production"
)

// Status values are stored capitalized, matching what the platform
// persists and what clients display verbatim.

type PropertyStatus string

const (
	PROPERTY_AVAILABLE PropertyStatus = "Available"
	PROPERTY_RENTED    PropertyStatus = "Rented"
	PROPERTY_UNLISTED  PropertyStatus = "Unlisted"
)

type BookingStatus string

const (
	BOOKING_PENDING   BookingStatus = "Pending"
	BOOKING_CONFIRMED BookingStatus = "Confirmed"
	BOOKING_ACCEPTED  BookingStatus = "Accepted"
	BOOKING_REJECTED  BookingStatus = "Rejected"
	BOOKING_CANCELLED BookingStatus = "Cancelled"
	BOOKING_EXPIRED   BookingStatus = "Expired"
)

type AgreementStatus string

const (
	AGREEMENT_DRAFT      AgreementStatus = "Draft"
	AGREEMENT_ACTIVE     AgreementStatus = "Active"
	AGREEMENT_EXPIRED    AgreementStatus = "Expired"
	AGREEMENT_TERMINATED AgreementStatus = "Terminated"
)

type PaymentStatus string

const (
	PAYMENT_PENDING   PaymentStatus = "Pending"
	PAYMENT_COMPLETED PaymentStatus = "Completed"
	PAYMENT_FAILED    PaymentStatus = "Failed"
	PAYMENT_CANCELLED PaymentStatus = "Cancelled"
)

const (
	ROLE_RENTER   = "renter"
	ROLE_LANDLORD = "landlord"
)

type ResultCode string

const (
	CODE_OK                    ResultCode = "ok"
	CODE_NOT_FOUND             ResultCode = "not_found"
	CODE_NO_ASSOCIATED_BOOKING ResultCode = "no_associated_booking"
	CODE_INVALID_ARGUMENTS     ResultCode = "invalid_arguments"
	CODE_INVALID_TRANSITION    ResultCode = "invalid_transition"
)

// OperationResult carries the outcome of a status operation back to the
// caller. Expected failures are values here, not errors: only storage
// faults surface as a Go error.
type OperationResult struct {
	Success   bool       `json:"success"`
	Code      ResultCode `json:"code,omitempty"`
	Message   string     `json:"message,omitempty"`
	OldStatus string     `json:"old_status,omitempty"`
	NewStatus string     `json:"new_status,omitempty"`
}

type SweepUpdated struct {
	Agreements []uint `json:"agreements"`
	Bookings   []uint `json:"bookings"`
	Properties []uint `json:"properties"`
}

type SweepReport struct {
	Processed bool         `json:"processed"`
	Updated   SweepUpdated `json:"updated"`
}

type Metadata map[string]any

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type PropertyQueryFilters struct {
	City      string  `form:"city"`
	Country   string  `form:"country"`
	Status    string  `form:"status"`
	MaxRent   float64 `form:"max_rent"`
	Available bool    `form:"available"`
}

type CreatePropertyRequestBody struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description,omitempty"`
	Address     string  `json:"address" binding:"required"`
	City        string  `json:"city" binding:"required"`
	Country     string  `json:"country" binding:"required"`
	RentAmount  float64 `json:"rent_amount" binding:"required,gt=0"`
	Currency    string  `json:"currency" binding:"required"`
}

type CreateBookingRequestBody struct {
	PropertyID uint   `json:"property" binding:"required"`
	MoveInDate string `json:"move_in_date" binding:"required,leasedate" time_format:"2006-01-02 15:04:05 -07:00"`
	Notes      string `json:"notes,omitempty"`
}

type CreateAgreementRequestBody struct {
	BookingID   uint    `json:"booking" binding:"required"`
	StartDate   string  `json:"start_date" binding:"required,leasedate" time_format:"2006-01-02 15:04:05 -07:00"`
	EndDate     string  `json:"end_date" binding:"required,leasedate,gtdate=StartDate" time_format:"2006-01-02 15:04:05 -07:00"`
	MonthlyRent float64 `json:"monthly_rent" binding:"required,gt=0"`
}

type UpdateStatusRequestBody struct {
	Status string `json:"status" binding:"required"`
}

type CheckoutRequestBody struct {
	AgreementID uint `json:"agreement,omitempty"`
	BookingID   uint `json:"booking,omitempty"`
}

type RegisterUserRequestBody struct {
	Email string `json:"email" binding:"required"`
	Role  string `json:"role,omitempty"`
}

type APIResponseProperty struct {
	ID         uint     `json:"id,omitempty"`
	Title      string   `json:"title,omitempty"`
	Slug       string   `json:"slug,omitempty"`
	Address    string   `json:"address,omitempty"`
	City       string   `json:"city,omitempty"`
	Country    string   `json:"country,omitempty"`
	Lat        *float64 `json:"lat,omitempty"`
	Lng        *float64 `json:"lng,omitempty"`
	RentAmount float64  `json:"rent_amount,omitempty"`
	Currency   string   `json:"currency,omitempty"`
	Status     string   `json:"status,omitempty"`
	OwnerID    uint     `json:"owner_id,omitempty"`

	Timestamps
}

type APIResponseBooking struct {
	ID         uint       `json:"id,omitempty"`
	PropertyID uint       `json:"property_id,omitempty"`
	RenterID   uint       `json:"renter_id,omitempty"`
	Status     string     `json:"status,omitempty"`
	MoveInDate *time.Time `json:"move_in_date,omitempty"`

	Property *APIResponseProperty `json:"property,omitempty"`

	Timestamps
}

type APIResponseAgreement struct {
	ID          uint       `json:"id,omitempty"`
	BookingID   uint       `json:"booking_id,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	MonthlyRent float64    `json:"monthly_rent,omitempty"`
	Status      string     `json:"status,omitempty"`

	Booking *APIResponseBooking `json:"booking,omitempty"`

	Timestamps
}

type Handler func(payload string)
