package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path"
	"prs/src/db"
	"prs/src/models"
	"prs/src/models/scopes"
	"prs/src/types"
	"prs/src/utils"

	awslib "prs/src/lib/aws"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func propertyHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/properties/owned", func(ctx *gin.Context) {
			ownerId := ctx.GetUint("id")
			var properties []models.Property
			db := db.GetDb()
			if err := db.
				Model(&models.Property{}).
				Where(&models.Property{OwnerID: ownerId}).
				Order("created_at desc").
				Find(&properties).
				Error; err != nil {
				log.Printf("Error retrieving Properties: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": properties, "count": len(properties)})
		}).
		POST("/properties", func(ctx *gin.Context) {
			var body types.CreatePropertyRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ownerId := ctx.GetUint("id")
			id, err := utils.CreateNewProperty(ctx, &body, ownerId)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": id})
		}).
		POST("/properties/:id/photo", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ownerId := ctx.GetUint("id")
			db := db.GetDb()
			var property models.Property
			if err := db.
				Model(&models.Property{}).
				Where(&models.Property{ID: params.ID, OwnerID: ownerId}).
				First(&property).
				Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.Status(http.StatusBadRequest)
				return
			}
			file, err := ctx.FormFile("photo")
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			tempdir := os.Getenv("TEMP_DIR")
			filepath := path.Join(tempdir, file.Filename)
			if err := ctx.SaveUploadedFile(file, filepath); err != nil {
				log.Printf("Could not save uploaded file: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			key := fmt.Sprintf("properties/%d/photo", property.ID)
			url, err := awslib.S3UploadPhoto(key, filepath)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if err := db.
				Model(&models.Property{}).
				Where(&models.Property{ID: property.ID}).
				Update("photo_key", key).
				Error; err != nil {
				log.Printf("Error storing photo key for Property [%d]: %s\n", property.ID, err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"url": url})
		}).
		PUT("/properties/:id/status", func(ctx *gin.Context) {
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
			switch types.PropertyStatus(body.Status) {
			case types.PROPERTY_AVAILABLE, types.PROPERTY_RENTED, types.PROPERTY_UNLISTED:
			default:
				ctx.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown property status: %s", body.Status)})
				return
			}
			ownerId := ctx.GetUint("id")
			db := db.GetDb()
			tx := db.
				Model(&models.Property{}).
				Where(&models.Property{ID: params.ID, OwnerID: ownerId}).
				Update("status", body.Status)
			if tx.Error != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": tx.Error.Error()})
				return
			}
			if tx.RowsAffected == 0 {
				ctx.Status(http.StatusNotFound)
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}

func publicPropertyHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/properties", func(ctx *gin.Context) {
			var filters types.PropertyQueryFilters
			if err := ctx.ShouldBindQuery(&filters); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			q := db.Model(&models.Property{})
			if filters.City != "" {
				q = q.Where("city = ?", filters.City)
			}
			if filters.Country != "" {
				q = q.Where("country = ?", filters.Country)
			}
			if filters.Status != "" {
				q = q.Scopes(scopes.WithStatus(filters.Status))
			}
			if filters.MaxRent > 0 {
				q = q.Where("rent_amount <= ?", filters.MaxRent)
			}
			if filters.Available {
				q = q.Scopes(scopes.WithStatus(string(types.PROPERTY_AVAILABLE)))
			}
			var properties []models.Property
			if err := q.
				Order("created_at desc").
				Limit(100).
				Find(&properties).
				Error; err != nil {
				log.Printf("Error retrieving Properties: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": properties, "count": len(properties)})
		}).
		GET("/properties/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var property models.Property
			db := db.GetDb()
			if err := db.
				Model(&models.Property{}).
				Where(&models.Property{ID: params.ID}).
				First(&property).
				Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.Status(http.StatusBadRequest)
				return
			}
			if property.PhotoKey != nil {
				if url, err := awslib.S3PresignPhoto(*property.PhotoKey); err == nil {
					property.PhotoKey = url
				}
			}
			ctx.JSON(http.StatusOK, gin.H{"data": property})
		})
	return g
}
