package common

import (
	"context"
	"fmt"
	"log"
	"os"
	"prs/src/db"
	"prs/src/lib"
	"prs/src/lib/mailer"
	"prs/src/models"

	"firebase.google.com/go/v4/messaging"
	"gorm.io/gorm"
)

type NoticeTemplate struct {
	Title string
	Body  string
}

// Notice templates are declarative: handlers pick a key and supply the
// format arguments, nothing here talks to storage or the mailers.
var noticeTemplates = map[string]NoticeTemplate{
	"agreement-expired": {
		Title: "Your rental agreement has ended",
		Body:  "The rental agreement for %s ended on %s. The property is now listed as available again.",
	},
	"booking-accepted": {
		Title: "Your booking was accepted",
		Body:  "Your booking for %s has been accepted. The property is now reserved for you.",
	},
	"payment-completed": {
		Title: "Payment received",
		Body:  "We received your payment of %.2f %s. Thank you.",
	},
}

func RenderNotice(key string, args ...any) (*NoticeTemplate, error) {
	tpl, ok := noticeTemplates[key]
	if !ok {
		return nil, fmt.Errorf("unknown notice template: %s", key)
	}
	rendered := NoticeTemplate{
		Title: tpl.Title,
		Body:  fmt.Sprintf(tpl.Body, args...),
	}
	return &rendered, nil
}

// NotifyUser stores a dashboard notification, emails the user, and sends
// an FCM push when a token is cached for them.
func NotifyUser(userID uint, key string, refType string, refValue string, args ...any) error {
	notice, err := RenderNotice(key, args...)
	if err != nil {
		return err
	}
	db := db.GetDb()
	var user models.User
	if err := db.
		Model(&models.User{}).
		Where(&models.User{ID: userID}).
		First(&user).
		Error; err != nil {
		return err
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		notification := models.Notification{
			UserID:          userID,
			ReferenceSource: "table",
			ReferenceType:   refType,
			ReferenceValue:  refValue,
			Title:           notice.Title,
			Description:     &notice.Body,
			Type:            key,
		}
		if err := tx.Create(&notification).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	go func() {
		input := &lib.SendMailInput{
			From:     os.Getenv("EMAIL_FROM"),
			FromName: os.Getenv("EMAIL_FROM_NAME"),
			To:       []string{user.Email},
			Subject:  notice.Title,
			Body:     notice.Body,
		}
		if err := mailer.NewMailerMessage(input); err != nil {
			log.Printf("Error queueing email for user [%d]: %s\n", userID, err.Error())
		}
	}()

	go func() {
		rd := lib.GetRedisClient()
		token := rd.JSONGet(context.Background(), fmt.Sprintf("%s:fcm", user.UID), "$.token").Val()
		if token == "" {
			return
		}
		fcm, err := lib.GetFirebaseMessaging()
		if err != nil {
			return
		}
		_, err = fcm.Send(context.Background(), &messaging.Message{
			Token: token,
			Notification: &messaging.Notification{
				Title: notice.Title,
				Body:  notice.Body,
			},
		})
		if err != nil {
			log.Printf("Error sending push to user [%d]: %s\n", userID, err.Error())
		}
	}()
	return nil
}

// NotifyExpiredAgreements emails each renter whose agreement just lapsed.
func NotifyExpiredAgreements(agreementIds []uint) {
	if len(agreementIds) == 0 {
		return
	}
	db := db.GetDb()
	var agreements []models.Agreement
	if err := db.
		Model(&models.Agreement{}).
		Where("id IN (?)", agreementIds).
		Preload("Booking").
		Preload("Booking.Property").
		Find(&agreements).
		Error; err != nil {
		log.Printf("Error loading expired agreements: %s\n", err.Error())
		return
	}
	for _, agreement := range agreements {
		if agreement.Booking == nil || agreement.Booking.Property == nil {
			continue
		}
		title := agreement.Booking.Property.Title
		endDate := agreement.EndDate.Format("2006-01-02")
		if err := NotifyUser(agreement.Booking.RenterID, "agreement-expired", "Agreement", fmt.Sprintf("%d", agreement.ID), title, endDate); err != nil {
			log.Printf("Error notifying renter for agreement [%d]: %s\n", agreement.ID, err.Error())
		}
	}
}
