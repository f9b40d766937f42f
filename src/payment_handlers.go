package main

import (
	"errors"
	"log"
	"net/http"
	"prs/src/common"
	"prs/src/db"
	"prs/src/models"
	"prs/src/models/scopes"
	"prs/src/types"
	"prs/src/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func paymentHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/checkout", func(ctx *gin.Context) {
			var body types.CheckoutRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if body.AgreementID == 0 {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "agreement is required"})
				return
			}
			url, sessionId, paymentId, err := utils.CreateRentCheckoutSession(ctx, body.AgreementID)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"url": url, "session": sessionId, "payment": paymentId})
		}).
		GET("/payments/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var payment models.Payment
			if err := db.
				Model(&models.Payment{}).
				Scopes(scopes.WithID(params.ID)).
				Preload("Agreement").
				Preload("Booking").
				First(&payment).
				Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": payment})
		}).
		PUT("/payments/:id/status", func(ctx *gin.Context) {
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
			newStatus := types.PaymentStatus(body.Status)
			result, err := common.UpdatePaymentStatus(params.ID, newStatus)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "Error while processing request"})
				return
			}
			if result.Success && newStatus == types.PAYMENT_COMPLETED {
				accepted, err := common.OnPaymentCompleted(params.ID)
				if err != nil {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": "Error while processing request"})
					return
				}
				if !accepted.Success {
					log.Printf("Booking not accepted for payment [%d]: %s\n", params.ID, accepted.Message)
				}
				ctx.JSON(resultStatus(result), gin.H{"data": result, "booking": accepted})
				return
			}
			ctx.JSON(resultStatus(result), gin.H{"data": result})
		})
	return g
}
