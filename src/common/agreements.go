package common

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"prs/src/db"
	"prs/src/lib"
	"prs/src/models"
	"prs/src/models/scopes"
	"prs/src/types"
	"time"

	"gorm.io/gorm"
)

const sweepLockKey = "agreements:sweep:lock"

// FindExpiredAgreements filters the agreements whose end date has passed
// and that are not already Expired. Input order is preserved.
func FindExpiredAgreements(agreements []models.Agreement, now time.Time) []models.Agreement {
	expired := []models.Agreement{}
	for _, agreement := range agreements {
		if agreement.EndDate.Before(now) && agreement.Status != types.AGREEMENT_EXPIRED {
			expired = append(expired, agreement)
		}
	}
	return expired
}

// SweepExpiredAgreements expires every lapsed agreement in place and
// cascades to its booking and property: the booking becomes Expired and
// the property goes back to Available. Re-running over already-swept
// records changes nothing.
func SweepExpiredAgreements(agreements []*models.Agreement, bookings map[uint]*models.Booking, properties map[uint]*models.Property, now time.Time) types.SweepReport {
	report := types.SweepReport{
		Updated: types.SweepUpdated{
			Agreements: []uint{},
			Bookings:   []uint{},
			Properties: []uint{},
		},
	}
	for _, agreement := range agreements {
		if !agreement.EndDate.Before(now) || agreement.Status == types.AGREEMENT_EXPIRED {
			continue
		}
		agreement.Status = types.AGREEMENT_EXPIRED
		report.Updated.Agreements = append(report.Updated.Agreements, agreement.ID)

		if agreement.BookingID == nil {
			continue
		}
		booking, ok := bookings[*agreement.BookingID]
		if !ok {
			continue
		}
		if booking.Status != types.BOOKING_EXPIRED {
			booking.Status = types.BOOKING_EXPIRED
			report.Updated.Bookings = append(report.Updated.Bookings, booking.ID)
		}
		property, ok := properties[booking.PropertyID]
		if !ok {
			continue
		}
		if property.Status != types.PROPERTY_AVAILABLE {
			property.Status = types.PROPERTY_AVAILABLE
			report.Updated.Properties = append(report.Updated.Properties, property.ID)
		}
	}
	report.Processed = len(report.Updated.Agreements) > 0
	return report
}

// RunExpirationSweep loads lapsed agreements with their bookings and
// properties, applies the cascade, and persists every change in one
// transaction. A redis lock keeps overlapping runs from double-sweeping.
func RunExpirationSweep() (*types.SweepReport, error) {
	rd := lib.GetRedisClient()
	acquired, err := rd.SetNX(context.Background(), sweepLockKey, time.Now().Unix(), 5*time.Minute).Result()
	if err != nil {
		log.Printf("[sweep] Error acquiring lock: %s\n", err.Error())
		return nil, err
	}
	if !acquired {
		log.Println("[sweep] Previous sweep still running. Skipping")
		return &types.SweepReport{}, nil
	}
	defer rd.Del(context.Background(), sweepLockKey)

	now := time.Now().UTC()
	var report types.SweepReport
	db := db.GetDb()
	err = db.Transaction(func(tx *gorm.DB) error {
		var agreements []*models.Agreement
		if err := tx.
			Model(&models.Agreement{}).
			Where("end_date < ?", now).
			Where("status <> ?", types.AGREEMENT_EXPIRED).
			Order("end_date asc").
			Find(&agreements).
			Error; err != nil {
			return err
		}
		bookingIds := []uint{}
		for _, agreement := range agreements {
			if agreement.BookingID != nil {
				bookingIds = append(bookingIds, *agreement.BookingID)
			}
		}
		bookings := map[uint]*models.Booking{}
		propertyIds := []uint{}
		if len(bookingIds) > 0 {
			var rows []*models.Booking
			if err := tx.
				Model(&models.Booking{}).
				Scopes(scopes.WithIDs(bookingIds...)).
				Find(&rows).
				Error; err != nil {
				return err
			}
			for _, booking := range rows {
				bookings[booking.ID] = booking
				propertyIds = append(propertyIds, booking.PropertyID)
			}
		}
		properties := map[uint]*models.Property{}
		if len(propertyIds) > 0 {
			var rows []*models.Property
			if err := tx.
				Model(&models.Property{}).
				Scopes(scopes.WithIDs(propertyIds...)).
				Find(&rows).
				Error; err != nil {
				return err
			}
			for _, property := range rows {
				properties[property.ID] = property
			}
		}

		report = SweepExpiredAgreements(agreements, bookings, properties, now)
		if !report.Processed {
			return nil
		}
		if err := tx.
			Model(&models.Agreement{}).
			Scopes(scopes.WithIDs(report.Updated.Agreements...)).
			Update("status", types.AGREEMENT_EXPIRED).
			Error; err != nil {
			return err
		}
		if len(report.Updated.Bookings) > 0 {
			if err := tx.
				Model(&models.Booking{}).
				Scopes(scopes.WithIDs(report.Updated.Bookings...)).
				Update("status", types.BOOKING_EXPIRED).
				Error; err != nil {
				return err
			}
		}
		if len(report.Updated.Properties) > 0 {
			if err := tx.
				Model(&models.Property{}).
				Scopes(scopes.WithIDs(report.Updated.Properties...)).
				Update("status", types.PROPERTY_AVAILABLE).
				Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("[sweep] Sweep failed: %s\n", err.Error())
		return nil, err
	}
	if report.Processed {
		log.Printf("[sweep] Expired %d agreements (%d bookings, %d properties)\n",
			len(report.Updated.Agreements), len(report.Updated.Bookings), len(report.Updated.Properties))
		go PublishAgreementsExpired(&report)
	}
	return &report, nil
}

// PublishAgreementsExpired fans the sweep result out to the broker for
// the environment.
func PublishAgreementsExpired(report *types.SweepReport) {
	payload := &types.JSONB{
		"agreements": report.Updated.Agreements,
		"bookings":   report.Updated.Bookings,
		"properties": report.Updated.Properties,
	}
	env := os.Getenv("API_ENV")
	if env == "local" {
		if err := lib.KafkaProduceMessage("agreements", "agreements-expired", payload); err != nil {
			log.Printf("[sweep] Error producing message: %s\n", err.Error())
		}
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[sweep] Error serializing payload: %s\n", err.Error())
		return
	}
	if err := lib.SNSPublishMessage("AgreementsExpired", string(body)); err != nil {
		log.Printf("[sweep] Error publishing to topic: %s\n", err.Error())
	}
}
