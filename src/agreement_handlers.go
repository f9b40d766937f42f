package main

import (
	"errors"
	"log"
	"net/http"
	"prs/src/common"
	"prs/src/db"
	"prs/src/models"
	"prs/src/types"
	"prs/src/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func agreementHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/agreements", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			db := db.GetDb()
			var agreements []models.Agreement
			if err := db.
				Model(&models.Agreement{}).
				Where(&models.Agreement{Booking: &models.Booking{RenterID: userId}}).
				Joins("Booking").
				Order("agreements.created_at desc").
				Find(&agreements).
				Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": agreements, "count": len(agreements)})
		}).
		GET("/agreements/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var agreement models.Agreement
			if err := db.
				Model(&models.Agreement{}).
				Where(&models.Agreement{ID: params.ID}).
				Preload("Booking").
				Preload("Booking.Property").
				First(&agreement).
				Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": agreement})
		}).
		POST("/agreements", func(ctx *gin.Context) {
			var body types.CreateAgreementRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			id, err := utils.CreateNewAgreement(ctx, &body)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": id})
		}).
		PUT("/agreements/:id/status", func(ctx *gin.Context) {
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
			result, err := common.SetStatusByAgreement(params.ID, types.BookingStatus(body.Status))
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "Error while processing request"})
				return
			}
			ctx.JSON(resultStatus(result), gin.H{"data": result})
		}).
		POST("/agreements/sweep", func(ctx *gin.Context) {
			report, err := common.RunExpirationSweep()
			if err != nil {
				log.Printf("Error running sweep: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "Error while processing request"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": report})
		})
	return g
}
