package common

import (
	"errors"
	"fmt"
	"prs/src/db"
	"prs/src/models"
	"prs/src/types"

	"gorm.io/gorm"
)

// paymentTransitions lists the statuses each payment status may move to.
// Completed is terminal. Failed and Cancelled payments may be retried.
var paymentTransitions = map[types.PaymentStatus][]types.PaymentStatus{
	types.PAYMENT_PENDING:   {types.PAYMENT_COMPLETED, types.PAYMENT_FAILED, types.PAYMENT_CANCELLED},
	types.PAYMENT_COMPLETED: {},
	types.PAYMENT_FAILED:    {types.PAYMENT_PENDING},
	types.PAYMENT_CANCELLED: {types.PAYMENT_PENDING},
}

func IsValidPaymentTransition(from types.PaymentStatus, to types.PaymentStatus) bool {
	next, ok := paymentTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// UpdatePaymentStatus moves a Payment to newStatus when the transition
// table allows it. Rejections come back as a result value, never a panic.
func UpdatePaymentStatus(paymentID uint, newStatus types.PaymentStatus) (*types.OperationResult, error) {
	if paymentID == 0 || newStatus == "" {
		return &types.OperationResult{
			Code:    types.CODE_INVALID_ARGUMENTS,
			Message: "payment id and status are required",
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
		oldStatus := payment.Status
		if !IsValidPaymentTransition(oldStatus, newStatus) {
			result.Code = types.CODE_INVALID_TRANSITION
			result.Message = fmt.Sprintf("payment [%d] cannot move from %s to %s", paymentID, oldStatus, newStatus)
			result.OldStatus = string(oldStatus)
			result.NewStatus = string(newStatus)
			return nil
		}
		if err := tx.
			Model(&models.Payment{}).
			Where(&models.Payment{ID: paymentID}).
			Update("status", newStatus).
			Error; err != nil {
			return err
		}
		result.Success = true
		result.Code = types.CODE_OK
		result.OldStatus = string(oldStatus)
		result.NewStatus = string(newStatus)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
