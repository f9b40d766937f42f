package common

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestHandlePaymentStatusUpdateCompleted(t *testing.T) {
	_, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "payments"`).
		WithArgs(1, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).
			AddRow(1, "Pending"))
	mock.ExpectExec(`UPDATE "payments"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "payments"`).
		WithArgs(1, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "agreement_id", "booking_id", "status"}).
			AddRow(1, nil, 3, "Completed"))
	mock.ExpectQuery(`SELECT \* FROM "bookings"`).
		WithArgs(3, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "property_id", "status"}).
			AddRow(3, 4, "Confirmed"))
	mock.ExpectExec(`UPDATE "bookings"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "properties"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	HandlePaymentStatusUpdate("payment-status-updates", `{"id":1,"status":"Completed"}`)

	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestHandlePaymentStatusUpdateRejected(t *testing.T) {
	_, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "payments"`).
		WithArgs(1, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).
			AddRow(1, "Completed"))
	mock.ExpectCommit()

	HandlePaymentStatusUpdate("payment-status-updates", `{"id":1,"status":"Pending"}`)

	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestHandlePaymentStatusUpdateBadPayloads(t *testing.T) {
	_, mock := newMockDB(t)

	HandlePaymentStatusUpdate("payment-status-updates", "not json")
	HandlePaymentStatusUpdate("payment-status-updates", `{"status":"Completed"}`)
	HandlePaymentStatusUpdate("payment-status-updates", `{"id":1}`)

	assert.Nil(t, mock.ExpectationsWereMet())
}
