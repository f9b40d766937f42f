package common

import (
	"prs/src/lib"
	"prs/src/models"
	"prs/src/types"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func mustParse(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatalf("could not parse date %s: %s", value, err.Error())
	}
	return parsed
}

func TestFindExpiredAgreements(t *testing.T) {
	now := mustParse(t, "2024-04-15")
	agreements := []models.Agreement{
		{ID: 1, EndDate: mustParse(t, "2024-03-31"), Status: types.AGREEMENT_ACTIVE},
		{ID: 2, EndDate: mustParse(t, "2024-06-30"), Status: types.AGREEMENT_ACTIVE},
		{ID: 3, EndDate: mustParse(t, "2024-04-10"), Status: types.AGREEMENT_ACTIVE},
		{ID: 4, EndDate: mustParse(t, "2024-01-01"), Status: types.AGREEMENT_EXPIRED},
	}

	expired := FindExpiredAgreements(agreements, now)

	assert.Len(t, expired, 2)
	assert.Equal(t, uint(1), expired[0].ID)
	assert.Equal(t, uint(3), expired[1].ID)
}

func TestFindExpiredAgreementsBoundary(t *testing.T) {
	now := mustParse(t, "2024-04-15")
	agreements := []models.Agreement{
		{ID: 1, EndDate: now, Status: types.AGREEMENT_ACTIVE},
	}

	expired := FindExpiredAgreements(agreements, now)

	assert.Empty(t, expired, "an agreement ending exactly now has not lapsed yet")
}

func TestFindExpiredAgreementsEmpty(t *testing.T) {
	expired := FindExpiredAgreements([]models.Agreement{}, time.Now())
	assert.Empty(t, expired)
}

func sweepFixture(t *testing.T) ([]*models.Agreement, map[uint]*models.Booking, map[uint]*models.Property) {
	t.Helper()
	bookingId1 := uint(10)
	bookingId3 := uint(30)
	agreements := []*models.Agreement{
		{ID: 1, BookingID: &bookingId1, EndDate: mustParse(t, "2024-03-31"), Status: types.AGREEMENT_ACTIVE},
		{ID: 2, BookingID: nil, EndDate: mustParse(t, "2024-06-30"), Status: types.AGREEMENT_ACTIVE},
		{ID: 3, BookingID: &bookingId3, EndDate: mustParse(t, "2024-04-10"), Status: types.AGREEMENT_ACTIVE},
	}
	bookings := map[uint]*models.Booking{
		10: {ID: 10, PropertyID: 100, Status: types.BOOKING_ACCEPTED},
		30: {ID: 30, PropertyID: 300, Status: types.BOOKING_ACCEPTED},
	}
	properties := map[uint]*models.Property{
		100: {ID: 100, Status: types.PROPERTY_RENTED},
		300: {ID: 300, Status: types.PROPERTY_RENTED},
	}
	return agreements, bookings, properties
}

func TestSweepExpiredAgreements(t *testing.T) {
	now := mustParse(t, "2024-04-15")
	agreements, bookings, properties := sweepFixture(t)

	report := SweepExpiredAgreements(agreements, bookings, properties, now)

	assert.True(t, report.Processed)
	assert.Equal(t, []uint{1, 3}, report.Updated.Agreements)
	assert.Equal(t, []uint{10, 30}, report.Updated.Bookings)
	assert.Equal(t, []uint{100, 300}, report.Updated.Properties)

	assert.Equal(t, types.AGREEMENT_EXPIRED, agreements[0].Status)
	assert.Equal(t, types.AGREEMENT_ACTIVE, agreements[1].Status)
	assert.Equal(t, types.AGREEMENT_EXPIRED, agreements[2].Status)
	assert.Equal(t, types.BOOKING_EXPIRED, bookings[10].Status)
	assert.Equal(t, types.PROPERTY_AVAILABLE, properties[100].Status)
}

func TestSweepExpiredAgreementsIdempotent(t *testing.T) {
	now := mustParse(t, "2024-04-15")
	agreements, bookings, properties := sweepFixture(t)

	first := SweepExpiredAgreements(agreements, bookings, properties, now)
	assert.True(t, first.Processed)

	second := SweepExpiredAgreements(agreements, bookings, properties, now)
	assert.False(t, second.Processed)
	assert.Empty(t, second.Updated.Agreements)
	assert.Empty(t, second.Updated.Bookings)
	assert.Empty(t, second.Updated.Properties)
}

func TestSweepExpiredAgreementsEmpty(t *testing.T) {
	report := SweepExpiredAgreements(nil, nil, nil, time.Now())
	assert.False(t, report.Processed)
	assert.Empty(t, report.Updated.Agreements)
}

func TestSweepExpiredAgreementsWithoutBooking(t *testing.T) {
	now := mustParse(t, "2024-04-15")
	agreements := []*models.Agreement{
		{ID: 7, BookingID: nil, EndDate: mustParse(t, "2024-02-01"), Status: types.AGREEMENT_ACTIVE},
	}

	report := SweepExpiredAgreements(agreements, nil, nil, now)

	assert.True(t, report.Processed)
	assert.Equal(t, []uint{7}, report.Updated.Agreements)
	assert.Empty(t, report.Updated.Bookings)
	assert.Equal(t, types.AGREEMENT_EXPIRED, agreements[0].Status)
}

func TestSweepExpiredAgreementsPropertyAlreadyAvailable(t *testing.T) {
	now := mustParse(t, "2024-04-15")
	bookingId := uint(10)
	agreements := []*models.Agreement{
		{ID: 1, BookingID: &bookingId, EndDate: mustParse(t, "2024-03-31"), Status: types.AGREEMENT_ACTIVE},
	}
	bookings := map[uint]*models.Booking{
		10: {ID: 10, PropertyID: 100, Status: types.BOOKING_ACCEPTED},
	}
	properties := map[uint]*models.Property{
		100: {ID: 100, Status: types.PROPERTY_AVAILABLE},
	}

	report := SweepExpiredAgreements(agreements, bookings, properties, now)

	assert.Equal(t, []uint{1}, report.Updated.Agreements)
	assert.Equal(t, []uint{10}, report.Updated.Bookings)
	assert.Empty(t, report.Updated.Properties, "an already available property is not touched")
}

func TestRunExpirationSweepSkipsWhenLockHeld(t *testing.T) {
	mr := miniredis.RunT(t)
	lib.NewRedisClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	mr.Set(sweepLockKey, "1")

	report, err := RunExpirationSweep()

	assert.NoError(t, err)
	assert.False(t, report.Processed)
	assert.Empty(t, report.Updated.Agreements)
	assert.True(t, mr.Exists(sweepLockKey), "a held lock is not released by the skipped run")
}

func TestRunExpirationSweepReleasesLock(t *testing.T) {
	mr := miniredis.RunT(t)
	lib.NewRedisClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	_, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "agreements"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_id", "end_date", "status"}))
	mock.ExpectCommit()

	report, err := RunExpirationSweep()

	assert.NoError(t, err)
	assert.False(t, report.Processed)
	assert.False(t, mr.Exists(sweepLockKey))
	assert.NoError(t, mock.ExpectationsWereMet())
}
