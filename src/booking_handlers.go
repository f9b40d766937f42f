package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path"
	"prs/src/common"
	"prs/src/db"
	"prs/src/lib"
	"prs/src/models"
	"prs/src/types"
	"prs/src/utils"
	"time"

	awslib "prs/src/lib/aws"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/yeqown/go-qrcode"
	"gorm.io/gorm"
)

// resultStatus maps an operation result to the HTTP status the caller
// should see.
func resultStatus(result *types.OperationResult) int {
	switch result.Code {
	case types.CODE_OK:
		return http.StatusOK
	case types.CODE_NOT_FOUND, types.CODE_NO_ASSOCIATED_BOOKING:
		return http.StatusNotFound
	case types.CODE_INVALID_TRANSITION:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func bookingHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/bookings", func(ctx *gin.Context) {
			renterId := ctx.GetUint("id")
			db := db.GetDb()
			var bookings []models.Booking
			if err := db.
				Model(&models.Booking{}).
				Where(&models.Booking{RenterID: renterId}).
				Preload("Property").
				Preload("Agreement").
				Order("created_at desc").
				Find(&bookings).
				Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": bookings, "count": len(bookings)})
		}).
		GET("/bookings/received", func(ctx *gin.Context) {
			ownerId := ctx.GetUint("id")
			db := db.GetDb()
			var bookings []models.Booking
			if err := db.
				Model(&models.Booking{}).
				Where(&models.Booking{Property: &models.Property{OwnerID: ownerId}}).
				Joins("Property").
				Preload("Renter").
				Order("bookings.created_at desc").
				Find(&bookings).
				Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": bookings, "count": len(bookings)})
		}).
		GET("/bookings/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			var booking models.Booking
			if err := db.
				Model(&models.Booking{}).
				Where(&models.Booking{ID: params.ID}).
				Preload("Property").
				Preload("Agreement").
				First(&booking).
				Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": booking})
		}).
		POST("/bookings", func(ctx *gin.Context) {
			var body types.CreateBookingRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			renterId := ctx.GetUint("id")
			id, err := utils.CreateNewBooking(ctx, &body, renterId)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": id})
		}).
		PUT("/bookings/:id/status", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.UpdateStatusRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			result, err := common.SetBookingStatus(params.ID, types.BookingStatus(body.Status))
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "Error while processing request"})
				return
			}
			ctx.JSON(resultStatus(result), gin.H{"data": result})
		}).
		PUT("/bookings/:id/cancel", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				var booking models.Booking
				if err := tx.
					Model(&models.Booking{}).
					Where("id = ?", params.ID).
					First(&booking).
					Error; err != nil {
					return err
				}
				if booking.Status == types.BOOKING_EXPIRED {
					err := fmt.Errorf("booking [%d] has already expired", params.ID)
					log.Println(err)
					return err
				}
				if err := tx.
					Model(&models.Booking{}).
					Where(&models.Booking{ID: params.ID}).
					Update("status", types.BOOKING_CANCELLED).
					Error; err != nil {
					return err
				}
				if err := tx.
					Model(&models.Agreement{}).
					Where(&models.Agreement{BookingID: &params.ID}).
					Where("status = ?", types.AGREEMENT_ACTIVE).
					Update("status", types.AGREEMENT_TERMINATED).
					Error; err != nil {
					return err
				}
				if err := tx.
					Model(&models.Payment{}).
					Where(&models.Payment{BookingID: &params.ID}).
					Where("status = ?", types.PAYMENT_PENDING).
					Update("status", types.PAYMENT_CANCELLED).
					Error; err != nil {
					return err
				}
				if err := tx.
					Model(&models.Property{}).
					Where(&models.Property{ID: booking.PropertyID}).
					Where("status = ?", types.PROPERTY_RENTED).
					Update("status", types.PROPERTY_AVAILABLE).
					Error; err != nil {
					return err
				}
				return nil
			})
			if err != nil {
				log.Printf("Could not complete request: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "Error while processing request"})
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		GET("/bookings/:id/pass", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			renterId := ctx.GetUint("id")
			filename := fmt.Sprintf("booking_%d_pass", params.ID)

			rd := lib.GetRedisClient()
			content, err := rd.Get(context.Background(), filename).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					log.Printf("No value for key: %s\n", filename)
				} else {
					log.Printf("Error reading from cache: %s\n", err.Error())
					ctx.Status(http.StatusBadRequest)
					return
				}
			}
			if content != "" {
				ctx.JSON(http.StatusOK, gin.H{"url": content})
				return
			}

			var signedURL string
			tempdir := os.Getenv("TEMP_DIR")
			db := db.GetDb()
			err = db.Transaction(func(tx *gorm.DB) error {
				var booking models.Booking
				if err := tx.
					Model(&models.Booking{}).
					Where(&models.Booking{ID: params.ID, RenterID: renterId}).
					First(&booking).
					Error; err != nil {
					return err
				}
				if booking.Status != types.BOOKING_ACCEPTED {
					err := errors.New("pass is only available for accepted bookings")
					log.Printf("Error: %s\n", err.Error())
					return err
				}

				rawData := map[string]any{
					"bookingId": booking.ID,
					"renterId":  booking.RenterID,
				}
				rawBytes, _ := json.Marshal(rawData)
				rawText := string(rawBytes)

				keyEnv := os.Getenv("API_QRC_SECRET")
				key, err := hex.DecodeString(keyEnv)
				if err != nil {
					log.Printf("Could not read key from string: %s\n", err.Error())
					return err
				}
				encryptedMessage, err := utils.EncryptMessage(key, rawText)
				if err != nil {
					log.Printf("Error encrypting message: %s\n", err.Error())
					return err
				}
				qrc, err := qrcode.New(encryptedMessage)
				if err != nil {
					return err
				}
				filepath := path.Join(tempdir, fmt.Sprintf("%s.jpeg", filename))
				if err := qrc.Save(filepath); err != nil {
					log.Printf("Could not save qrcode to file [%s]: %s\n", filepath, err.Error())
					return err
				}
				url, err := awslib.S3UploadPhoto(filename, filepath)
				if err != nil {
					log.Printf("Error uploading pass to S3 bucket: %s\n", err.Error())
					return err
				}
				signedURL = *url
				rd.SetEx(context.Background(), filename, signedURL, 2*time.Hour)
				return nil
			})
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"url": signedURL})
		})
	return g
}
