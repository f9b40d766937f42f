package utils

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"prs/src/config"
	"prs/src/db"
	"prs/src/lib"
	"prs/src/models"
	"prs/src/types"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// WithSuffix appends the environment to a queue or topic name so the
// environments never share a queue.
func WithSuffix(name string) string {
	env := os.Getenv("API_ENV")
	if env == "" {
		return name
	}
	return fmt.Sprintf("%s-%s", name, env)
}

func GenerateJWT(email string, id uint) (string, error) {
	now := time.Now()
	claims := types.Claims{
		Username: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", id),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(24 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

func CreateNewProperty(ctx *gin.Context, params *types.CreatePropertyRequestBody, ownerId uint) (uint, error) {
	propertySlug := fmt.Sprintf("%s-%s", slug.Make(params.Title), uuid.NewString()[:8])
	property := models.Property{
		Title:       params.Title,
		Slug:        propertySlug,
		Description: &params.Description,
		Address:     params.Address,
		City:        params.City,
		Country:     params.Country,
		RentAmount:  params.RentAmount,
		Currency:    params.Currency,
		Status:      types.PROPERTY_AVAILABLE,
		OwnerID:     ownerId,
	}

	lat, lng, err := lib.GeocodeAddress(params.Address, params.City, params.Country)
	if err != nil {
		log.Printf("Could not geocode address for new listing: %s\n", err.Error())
	} else {
		property.Lat = lat
		property.Lng = lng
	}

	db := db.GetDb()
	err = db.Transaction(func(tx *gorm.DB) error {
		var owner models.User
		if err := tx.
			Where(&models.User{ID: ownerId}).
			First(&owner).
			Error; err != nil {
			return err
		}
		if owner.Role != types.ROLE_LANDLORD {
			return errors.New("not enough permissions to perform this action")
		}
		if err := tx.Create(&property).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		log.Printf("Error creating Property: %s\n", err.Error())
		return 0, err
	}
	return property.ID, nil
}

func CreateNewBooking(ctx *gin.Context, params *types.CreateBookingRequestBody, renterId uint) (uint, error) {
	moveInDate, err := time.Parse(config.TIME_PARSE_FORMAT, params.MoveInDate)
	if err != nil {
		log.Printf("Error parsing move_in_date: %s\n", err.Error())
		return 0, err
	}
	booking := models.Booking{
		PropertyID: params.PropertyID,
		RenterID:   renterId,
		MoveInDate: moveInDate,
		Status:     types.BOOKING_PENDING,
	}
	if params.Notes != "" {
		booking.Notes = &params.Notes
	}
	db := db.GetDb()
	err = db.Transaction(func(tx *gorm.DB) error {
		var property models.Property
		if err := tx.
			Where(&models.Property{ID: params.PropertyID}).
			First(&property).
			Error; err != nil {
			return err
		}
		if property.Status != types.PROPERTY_AVAILABLE {
			return fmt.Errorf("property [%d] is not available for booking", property.ID)
		}
		if property.OwnerID == renterId {
			return errors.New("cannot book own property")
		}
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		log.Printf("Error creating Booking: %s\n", err.Error())
		return 0, err
	}
	return booking.ID, nil
}

// CreateNewAgreement activates the agreement and enqueues a one-time job
// for its end date so expiration does not wait for the next full sweep.
func CreateNewAgreement(ctx *gin.Context, params *types.CreateAgreementRequestBody) (uint, error) {
	startDate, err := time.Parse(config.TIME_PARSE_FORMAT, params.StartDate)
	if err != nil {
		log.Printf("Error parsing start_date: %s\n", err.Error())
		return 0, err
	}
	endDate, err := time.Parse(config.TIME_PARSE_FORMAT, params.EndDate)
	if err != nil {
		log.Printf("Error parsing end_date: %s\n", err.Error())
		return 0, err
	}
	bookingId := params.BookingID
	agreement := models.Agreement{
		BookingID:   &bookingId,
		StartDate:   startDate,
		EndDate:     endDate,
		MonthlyRent: params.MonthlyRent,
		Status:      types.AGREEMENT_ACTIVE,
	}
	db := db.GetDb()
	err = db.Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.
			Where(&models.Booking{ID: params.BookingID}).
			First(&booking).
			Error; err != nil {
			return err
		}
		if booking.Status == types.BOOKING_CANCELLED || booking.Status == types.BOOKING_EXPIRED {
			return fmt.Errorf("booking [%d] can no longer be placed under agreement", booking.ID)
		}
		if err := tx.Create(&agreement).Error; err != nil {
			return err
		}
		if err := tx.
			Model(&models.Booking{}).
			Where(&models.Booking{ID: booking.ID}).
			Update("status", types.BOOKING_CONFIRMED).
			Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		log.Printf("Error creating Agreement: %s\n", err.Error())
		return 0, err
	}

	jobTask := models.JobTask{
		Name:       fmt.Sprintf("agreement_%d_expires", agreement.ID),
		JobType:    "OneTimeJobStartDateTime",
		RunsAt:     endDate,
		PayloadID:  uuid.NewString(),
		Source:     "agreements",
		SourceType: "table",
		Topic:      "AgreementsSweep",
		Payload: types.JSONB{
			"agreementId":      agreement.ID,
			"topic":            "AgreementsSweep",
			"producerClientId": "agreements",
		},
	}
	if _, err := jobTask.CreateAndEnqueueJobTask(jobTask); err != nil {
		log.Printf("Could not schedule end-date job for Agreement [%d]: %s\n", agreement.ID, err.Error())
	}
	return agreement.ID, nil
}

// CreateRentCheckoutSession opens a Stripe checkout for an agreement's
// monthly rent and records the pending Payment it pays for.
func CreateRentCheckoutSession(ctx *gin.Context, agreementId uint) (*string, *string, *uint, error) {
	db := db.GetDb()
	var agreement models.Agreement
	if err := db.
		Model(&models.Agreement{}).
		Where(&models.Agreement{ID: agreementId}).
		Preload("Booking").
		Preload("Booking.Property").
		First(&agreement).
		Error; err != nil {
		return nil, nil, nil, err
	}
	if agreement.Booking == nil || agreement.Booking.Property == nil {
		return nil, nil, nil, fmt.Errorf("agreement [%d] has no booking to pay for", agreementId)
	}
	property := agreement.Booking.Property
	requestId := uuid.NewString()
	payment := models.Payment{
		AgreementID: &agreement.ID,
		BookingID:   agreement.BookingID,
		Amount:      agreement.MonthlyRent,
		Currency:    property.Currency,
		Status:      types.PAYMENT_PENDING,
		ReferenceID: requestId,
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		log.Printf("Error while creating Payment: %s\n", err.Error())
		return nil, nil, nil, err
	}

	url, sessionId, err := lib.CreateRentCheckout(&lib.CheckoutInput{
		Title:    fmt.Sprintf("Rent: %s", property.Title),
		Amount:   agreement.MonthlyRent,
		Currency: property.Currency,
		Metadata: map[string]string{
			"paymentId":   fmt.Sprintf("%d", payment.ID),
			"agreementId": fmt.Sprintf("%d", agreement.ID),
			"requestId":   requestId,
		},
	})
	if err != nil {
		return nil, nil, nil, err
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		return tx.
			Model(&models.Payment{}).
			Where(&models.Payment{ID: payment.ID}).
			Updates(&models.Payment{CheckoutSessionID: sessionId}).
			Error
	})
	if err != nil {
		log.Printf("Error storing checkout session for Payment [%d]: %s\n", payment.ID, err.Error())
	}
	rd := lib.GetRedisClient()
	if _, err := rd.SetEx(context.Background(), requestId, fmt.Sprintf("%d", payment.ID), 10*time.Minute).Result(); err != nil {
		log.Printf("Error caching value [%d]: %s\n", payment.ID, err.Error())
	}
	return url, sessionId, &payment.ID, nil
}

func EncryptMessage(key []byte, message string) (string, error) {
	plaintext := []byte(message)

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	cipherText := gcm.Seal(nonce, nonce, plaintext, nil)
	encodedString := hex.EncodeToString(cipherText)

	return encodedString, nil
}

func DecryptMessage(key []byte, message string) (*string, error) {
	cipherText, err := hex.DecodeString(message)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	decryptedData, err := gcm.Open(nil, cipherText[:gcm.NonceSize()], cipherText[gcm.NonceSize():], nil)
	if err != nil {
		return nil, err
	}
	decodedString := string(decryptedData)

	return &decodedString, nil
}
