package controllers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"prs/src/db"
	"prs/src/lib"
	"prs/src/models"
	"prs/src/types"
	"prs/src/utils"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func AuthLogin(ctx *gin.Context) (token *string, status int, err error) {
	var body types.RegisterUserRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		return nil, http.StatusBadRequest, err
	}
	auth, err := lib.GetFirebaseAuth()
	if err != nil {
		log.Printf("Error initializing FirebaseAuth client: %s\n", err.Error())
		return nil, http.StatusBadRequest, err
	}
	user, err := auth.GetUserByEmail(context.Background(), body.Email)
	if err != nil {
		log.Printf("error from Firebase: %s\n", err.Error())
		return nil, http.StatusNotFound, err
	}

	db := db.GetDb()
	var muser models.User
	if err = db.
		Model(&models.User{}).
		Select("id", "name", "email", "role").
		Where(&models.User{Email: user.Email}).
		First(&muser).
		Error; err != nil {
		log.Printf("error: %s\n", err.Error())
		return nil, http.StatusNotFound, err
	}

	uid := ctx.GetString("uid")
	rd := lib.GetRedisClient()
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Model(&models.User{}).
			Where("id", muser.ID).
			Update("last_active", time.Now()).
			Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		log.Printf("Error logging in user [%d]: %s\n", muser.ID, err.Error())
		return nil, http.StatusBadRequest, err
	}

	jwt, _ := utils.GenerateJWT(user.Email, muser.ID)

	_, err = rd.JSONSet(ctx, fmt.Sprintf("%d:user", muser.ID), "$", &muser).Result()
	if err != nil {
		log.Printf("[redis] Error updating user cache: %s\n", err.Error())
	}
	val := rd.JSONGet(context.Background(), fmt.Sprintf("%s:fcm", uid), "$.token").Val()
	if val != "" {
		fcm, _ := lib.GetFirebaseMessaging()
		fcm.SubscribeToTopic(ctx, []string{val}, "Notifications")
	}

	return &jwt, http.StatusOK, nil
}

func AuthRegister(ctx *gin.Context) (uid *string, status int, err error) {
	var body types.RegisterUserRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		return nil, http.StatusBadRequest, err
	}
	auth, err := lib.GetFirebaseAuth()
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	user, err := auth.GetUserByEmail(context.Background(), body.Email)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	role := types.ROLE_RENTER
	if body.Role == types.ROLE_LANDLORD {
		role = types.ROLE_LANDLORD
	}

	db := db.GetDb()
	err = db.Transaction(func(tx *gorm.DB) error {
		var muser models.User
		if err := tx.
			Model(&models.User{}).
			Select("id").
			Where("email = ?", body.Email).
			First(&muser).
			Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("could not complete transaction")
			}
		}
		if muser.ID > 0 {
			err := errors.New("user is already registered in the system. Please proceed to Log In")
			log.Printf("error: %s\n", err.Error())
			return err
		}

		newUser := models.User{
			Email: user.Email,
			UID:   user.UID,
			Role:  role,
			Name:  user.DisplayName,
		}
		if err := tx.Create(&newUser).Error; err != nil {
			log.Printf("Error creating user: %s\n", err.Error())
			return fmt.Errorf("error creating user: %s", user.Email)
		}
		return nil
	})
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	return &user.UID, http.StatusOK, nil
}
