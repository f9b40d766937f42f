package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"prs/src/db"
	"prs/src/lib"
	"prs/src/models"
	"prs/src/types"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"gorm.io/gorm"
)

// publishPaymentStatusUpdate hands the status change to the broker so
// the consumer applies it through the transition table.
func publishPaymentStatusUpdate(paymentId uint, status types.PaymentStatus) {
	payload := &types.JSONB{
		"id":     paymentId,
		"status": string(status),
	}
	apiEnv := os.Getenv("API_ENV")
	if apiEnv == string(types.Test) || apiEnv == string(types.Production) {
		body, err := json.Marshal(payload)
		if err != nil {
			log.Printf("Error serializing payload: %s\n", err.Error())
			return
		}
		if err := lib.SQSProduceMessage("PaymentStatusUpdates", string(body)); err != nil {
			log.Printf("Could not send message to queue: %s\n", err.Error())
		}
		return
	}
	if err := lib.KafkaProduceMessage("payments", "payment-status-updates", payload); err != nil {
		log.Printf("Error sending message to queue: %s\n", err.Error())
	}
}

// paymentIdFromMetadata resolves the Payment a Stripe object pays for,
// from its metadata or the cached checkout requestId.
func paymentIdFromMetadata(md map[string]string) (uint, error) {
	if id, ok := md["paymentId"]; ok {
		atoi, err := strconv.Atoi(id)
		if err != nil {
			return 0, err
		}
		return uint(atoi), nil
	}
	requestId, ok := md["requestId"]
	if !ok {
		return 0, fmt.Errorf("no payment reference in metadata")
	}
	rd := lib.GetRedisClient()
	val, err := rd.Get(context.Background(), requestId).Result()
	if err != nil {
		return 0, err
	}
	atoi, err := strconv.Atoi(val)
	if err != nil {
		return 0, err
	}
	return uint(atoi), nil
}

func stripeWebhookRoute(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1.POST("/webhook/stripe", func(ctx *gin.Context) {
		payload, err := ctx.GetRawData()
		if err != nil {
			log.Printf("Error reading request body: %s\n", err.Error())
			ctx.Status(http.StatusServiceUnavailable)
			return
		}
		whsecret := os.Getenv("STRIPE_WEBHOOK_SECRET")
		event, err := webhook.ConstructEvent(payload, ctx.GetHeader("Stripe-Signature"), whsecret)
		if err != nil {
			log.Printf("Error verifying webhook signature: %s\n", err.Error())
			ctx.Status(http.StatusBadRequest)
			return
		}
		log.Printf("[StripeEvent] %s\n", event.Type)
		switch event.Type {
		case "checkout.session.completed":
			var cs stripe.CheckoutSession
			if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
				log.Printf("[Stripe] Error parsing CheckoutSession: %s\n", err.Error())
				break
			}
			log.Printf("[CheckoutSession] ID: %s %s\n", cs.ID, cs.Status)
			paymentId, err := paymentIdFromMetadata(cs.Metadata)
			if err != nil {
				log.Printf("Could not resolve payment for session %s: %s\n", cs.ID, err.Error())
				break
			}
			go func() {
				db := db.GetDb()
				err := db.Transaction(func(tx *gorm.DB) error {
					updates := models.Payment{CheckoutSessionID: &cs.ID}
					if cs.PaymentIntent != nil {
						updates.PaymentIntentID = &cs.PaymentIntent.ID
					}
					return tx.
						Model(&models.Payment{}).
						Where(&models.Payment{ID: paymentId}).
						Updates(&updates).
						Error
				})
				if err != nil {
					log.Printf("Error updating Payment [%d]: %s\n", paymentId, err.Error())
				}
			}()
		case "payment_intent.succeeded":
			var pi stripe.PaymentIntent
			if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
				log.Printf("[Stripe] Error parsing PaymentIntent: %s\n", err.Error())
				break
			}
			log.Printf("[PaymentIntent] ID: %s %s\n", pi.ID, pi.Status)
			paymentId, err := paymentIdFromMetadata(pi.Metadata)
			if err != nil {
				log.Printf("Could not resolve payment for intent %s: %s\n", pi.ID, err.Error())
				break
			}
			go func() {
				db := db.GetDb()
				err := db.Transaction(func(tx *gorm.DB) error {
					return tx.
						Model(&models.Payment{}).
						Where(&models.Payment{ID: paymentId}).
						Updates(&models.Payment{PaymentIntentID: &pi.ID}).
						Error
				})
				if err != nil {
					log.Printf("Error updating Payment [%d]: %s\n", paymentId, err.Error())
				}
				publishPaymentStatusUpdate(paymentId, types.PAYMENT_COMPLETED)
			}()
		case "payment_intent.payment_failed":
			var pi stripe.PaymentIntent
			if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
				log.Printf("[Stripe] Error parsing PaymentIntent: %s\n", err.Error())
				break
			}
			paymentId, err := paymentIdFromMetadata(pi.Metadata)
			if err != nil {
				log.Printf("Could not resolve payment for intent %s: %s\n", pi.ID, err.Error())
				break
			}
			go publishPaymentStatusUpdate(paymentId, types.PAYMENT_FAILED)
		case "checkout.session.expired":
			var cs stripe.CheckoutSession
			if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
				log.Printf("[Stripe] Error parsing CheckoutSession: %s\n", err.Error())
				break
			}
			paymentId, err := paymentIdFromMetadata(cs.Metadata)
			if err != nil {
				log.Printf("Could not resolve payment for session %s: %s\n", cs.ID, err.Error())
				break
			}
			go publishPaymentStatusUpdate(paymentId, types.PAYMENT_CANCELLED)
		}
		ctx.Status(http.StatusNoContent)
	})
	return apiv1
}
