package common

import (
	"prs/src/types"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestOnPaymentCompletedThroughAgreement(t *testing.T) {
	_, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "payments"`).
		WithArgs(1, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "agreement_id", "booking_id", "status"}).
			AddRow(1, 2, nil, "Pending"))
	mock.ExpectQuery(`SELECT \* FROM "agreements"`).
		WithArgs(2, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_id", "status"}).
			AddRow(2, 3, "Active"))
	mock.ExpectQuery(`SELECT \* FROM "bookings"`).
		WithArgs(3, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "property_id", "status"}).
			AddRow(3, 4, "Confirmed"))
	mock.ExpectExec(`UPDATE "bookings"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "properties"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := OnPaymentCompleted(1)

	assert.Nil(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, types.CODE_OK, result.Code)
	assert.Equal(t, string(types.BOOKING_CONFIRMED), result.OldStatus)
	assert.Equal(t, string(types.BOOKING_ACCEPTED), result.NewStatus)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestOnPaymentCompletedDirectBooking(t *testing.T) {
	_, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "payments"`).
		WithArgs(1, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "agreement_id", "booking_id", "status"}).
			AddRow(1, nil, 3, "Pending"))
	mock.ExpectQuery(`SELECT \* FROM "bookings"`).
		WithArgs(3, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "property_id", "status"}).
			AddRow(3, 4, "Pending"))
	mock.ExpectExec(`UPDATE "bookings"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "properties"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := OnPaymentCompleted(1)

	assert.Nil(t, err)
	assert.True(t, result.Success)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestOnPaymentCompletedNoAssociatedBooking(t *testing.T) {
	_, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "payments"`).
		WithArgs(1, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "agreement_id", "booking_id", "status"}).
			AddRow(1, nil, nil, "Pending"))
	mock.ExpectCommit()

	result, err := OnPaymentCompleted(1)

	assert.Nil(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, types.CODE_NO_ASSOCIATED_BOOKING, result.Code)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestOnPaymentCompletedNotFound(t *testing.T) {
	_, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "payments"`).
		WithArgs(9, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}))
	mock.ExpectCommit()

	result, err := OnPaymentCompleted(9)

	assert.Nil(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, types.CODE_NOT_FOUND, result.Code)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestSetBookingStatus(t *testing.T) {
	_, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "bookings"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := SetBookingStatus(3, types.BOOKING_REJECTED)

	assert.Nil(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, string(types.BOOKING_REJECTED), result.NewStatus)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestSetBookingStatusNotFound(t *testing.T) {
	_, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "bookings"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	result, err := SetBookingStatus(99, types.BOOKING_ACCEPTED)

	assert.Nil(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, types.CODE_NOT_FOUND, result.Code)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestSetBookingStatusInvalidArguments(t *testing.T) {
	result, err := SetBookingStatus(0, types.BOOKING_ACCEPTED)
	assert.Nil(t, err)
	assert.Equal(t, types.CODE_INVALID_ARGUMENTS, result.Code)

	result, err = SetBookingStatus(1, "")
	assert.Nil(t, err)
	assert.Equal(t, types.CODE_INVALID_ARGUMENTS, result.Code)
}

func TestSetStatusByAgreementWithoutBooking(t *testing.T) {
	_, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "agreements"`).
		WithArgs(5, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_id", "status"}).
			AddRow(5, nil, "Draft"))

	result, err := SetStatusByAgreement(5, types.BOOKING_ACCEPTED)

	assert.Nil(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, types.CODE_NOT_FOUND, result.Code)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestSetStatusByAgreementNotFound(t *testing.T) {
	_, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "agreements"`).
		WithArgs(8, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_id"}))

	result, err := SetStatusByAgreement(8, types.BOOKING_ACCEPTED)

	assert.Nil(t, err)
	assert.Equal(t, types.CODE_NOT_FOUND, result.Code)
	assert.Nil(t, mock.ExpectationsWereMet())
}
