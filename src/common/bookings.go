package common

import (
	"errors"
	"fmt"
	"log"
	"prs/src/db"
	"prs/src/models"
	"prs/src/types"

	"gorm.io/gorm"
)

// OnPaymentCompleted reacts to a completed rent payment: the booking it
// belongs to becomes Accepted and its property becomes Rented. Everything
// runs in one transaction so a failure leaves no partial state behind.
func OnPaymentCompleted(paymentID uint) (*types.OperationResult, error) {
	if paymentID == 0 {
		return &types.OperationResult{
			Code:    types.CODE_INVALID_ARGUMENTS,
			Message: "payment id is required",
		}, nil
	}
	result := &types.OperationResult{}
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		if err := tx.
			Model(&models.Payment{}).
			Where(&models.Payment{ID: paymentID}).
			First(&payment).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				result.Code = types.CODE_NOT_FOUND
				result.Message = fmt.Sprintf("payment [%d] not found", paymentID)
				return nil
			}
			return err
		}

		bookingID := payment.BookingID
		if bookingID == nil && payment.AgreementID != nil {
			var agreement models.Agreement
			if err := tx.
				Model(&models.Agreement{}).
				Where(&models.Agreement{ID: *payment.AgreementID}).
				First(&agreement).
				Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					result.Code = types.CODE_NO_ASSOCIATED_BOOKING
					result.Message = fmt.Sprintf("payment [%d] has no associated booking", paymentID)
					return nil
				}
				return err
			}
			bookingID = agreement.BookingID
		}
		if bookingID == nil {
			result.Code = types.CODE_NO_ASSOCIATED_BOOKING
			result.Message = fmt.Sprintf("payment [%d] has no associated booking", paymentID)
			return nil
		}

		var booking models.Booking
		if err := tx.
			Model(&models.Booking{}).
			Where(&models.Booking{ID: *bookingID}).
			First(&booking).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				result.Code = types.CODE_NOT_FOUND
				result.Message = fmt.Sprintf("booking [%d] not found", *bookingID)
				return nil
			}
			return err
		}
		if err := tx.
			Model(&models.Booking{}).
			Where(&models.Booking{ID: booking.ID}).
			Update("status", types.BOOKING_ACCEPTED).
			Error; err != nil {
			return err
		}
		if err := tx.
			Model(&models.Property{}).
			Where(&models.Property{ID: booking.PropertyID}).
			Update("status", types.PROPERTY_RENTED).
			Error; err != nil {
			return err
		}
		result.Success = true
		result.Code = types.CODE_OK
		result.OldStatus = string(booking.Status)
		result.NewStatus = string(types.BOOKING_ACCEPTED)
		return nil
	})
	if err != nil {
		log.Printf("OnPaymentCompleted failed for payment [%d]: %s\n", paymentID, err.Error())
		return nil, err
	}
	return result, nil
}

// SetBookingStatus writes the status directly. Zero rows matched means
// the booking does not exist.
func SetBookingStatus(bookingID uint, status types.BookingStatus) (*types.OperationResult, error) {
	if bookingID == 0 || status == "" {
		return &types.OperationResult{
			Code:    types.CODE_INVALID_ARGUMENTS,
			Message: "booking id and status are required",
		}, nil
	}
	db := db.GetDb()
	tx := db.
		Model(&models.Booking{}).
		Where(&models.Booking{ID: bookingID}).
		Update("status", status)
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return &types.OperationResult{
			Code:    types.CODE_NOT_FOUND,
			Message: fmt.Sprintf("booking [%d] not found", bookingID),
		}, nil
	}
	return &types.OperationResult{
		Success:   true,
		Code:      types.CODE_OK,
		NewStatus: string(status),
	}, nil
}

// SetStatusByAgreement resolves the agreement's booking and delegates to
// SetBookingStatus. An agreement without a booking reports NotFound.
func SetStatusByAgreement(agreementID uint, status types.BookingStatus) (*types.OperationResult, error) {
	if agreementID == 0 || status == "" {
		return &types.OperationResult{
			Code:    types.CODE_INVALID_ARGUMENTS,
			Message: "agreement id and status are required",
		}, nil
	}
	db := db.GetDb()
	var agreement models.Agreement
	if err := db.
		Model(&models.Agreement{}).
		Where(&models.Agreement{ID: agreementID}).
		First(&agreement).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &types.OperationResult{
				Code:    types.CODE_NOT_FOUND,
				Message: fmt.Sprintf("agreement [%d] not found", agreementID),
			}, nil
		}
		return nil, err
	}
	if agreement.BookingID == nil {
		return &types.OperationResult{
			Code:    types.CODE_NOT_FOUND,
			Message: fmt.Sprintf("agreement [%d] has no booking", agreementID),
		}, nil
	}
	return SetBookingStatus(*agreement.BookingID, status)
}
