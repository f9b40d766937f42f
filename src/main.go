package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"prs/src/boot"
	"prs/src/config"
	"prs/src/controllers"
	"prs/src/db"
	"prs/src/lib"
	"prs/src/middlewares"
	"prs/src/models"
	"regexp"
	"strconv"
	"time"

	awslib "prs/src/lib/aws"

	"github.com/covalenthq/lumberjack"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	_ "github.com/joho/godotenv/autoload"
	"gorm.io/gorm"
)

const (
	apiPrefix string = "/api/v1"
)

// leasedate accepts only dates that are not in the past.
var leaseDateValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	date, ok := fl.Field().Interface().(string)
	datetime, err := time.Parse(config.TIME_PARSE_FORMAT, date)
	if err != nil {
		return false
	}
	today := time.Now()
	log.Printf("%s: ok=%v,v=%v,n=%v", fl.FieldName(), ok, datetime, today)
	if ok {
		if today.After(datetime) {
			return false
		}
	}
	return true
}

// gtdate requires the field to come after the named sibling field.
var gtfield validator.Func = func(fl validator.FieldLevel) bool {
	date, ok := fl.Field().Interface().(string)
	datetime, err := time.Parse(config.TIME_PARSE_FORMAT, date)
	if err != nil {
		return false
	}
	field := fl.Parent().FieldByName(fl.Param())
	fieldValue := field.Interface().(string)
	fielddatetime, err := time.Parse(config.TIME_PARSE_FORMAT, fieldValue)
	if err != nil {
		return false
	}
	log.Printf("%s: param=%s, ok=%v,v=%v,n=%v", fl.FieldName(), fl.Param(), ok, datetime, fielddatetime)
	if ok {
		if fielddatetime.After(datetime) {
			return false
		}
	}
	return true
}

func setupRouter() *gin.Engine {
	router := gin.Default()
	router.Use(middlewares.SecureHeaders)
	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, "ok")
	})
	return router
}

func maintenanceModeMiddleware(g *gin.Engine) *gin.Engine {
	g.Use(func(ctx *gin.Context) {
		mm := os.Getenv("MAINTENANCE_MODE")
		atoi, err := strconv.ParseBool(mm)
		if err != nil || atoi {
			err := errors.New("server is under maintenance")
			log.Println(err.Error())
			ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, err.Error())
			return
		}
	})
	return g
}

func apiv1Group(g *gin.Engine) *gin.RouterGroup {
	apiv1 := g.Group(apiPrefix)
	return apiv1
}

func publicRoutes(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1 = publicPropertyHandlers(apiv1)
	apiv1.
		GET("/share/:filename", func(ctx *gin.Context) {
			apiEnv := os.Getenv("API_ENV")
			if apiEnv != "local" {
				ctx.Status(http.StatusNotFound)
				return
			}
			var params struct {
				Filename string `uri:"filename" binding:"required"`
			}
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			assets := os.Getenv("TEMP_DIR")
			filePath := path.Join(assets, fmt.Sprintf("%s.jpeg", params.Filename))
			log.Printf("filePath: %s", filePath)
			ctx.File(filePath)
		})
	return apiv1
}

func guestAuthRoutes(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	guest := apiv1.Group("/auth")
	guest.Use(middlewares.VerifyIdToken)
	guest.
		POST("/login", func(ctx *gin.Context) {
			token, status, err := controllers.AuthLogin(ctx)
			if err != nil {
				log.Printf("[AuthLogin] error: %s\n", err.Error())
				ctx.Status(status)
				return
			}

			ctx.JSON(http.StatusOK, gin.H{
				"token": token,
			})
		}).
		POST("/register", func(ctx *gin.Context) {
			uid, status, err := controllers.AuthRegister(ctx)
			if err != nil {
				log.Printf("[AuthRegister] error: %s\n", err.Error())
				ctx.JSON(status, gin.H{"error": err.Error()})
				return
			}

			ctx.JSON(http.StatusOK, gin.H{"uid": uid})
		})
	return guest
}

func initLogger() {
	cwd, _ := os.Getwd()
	serverLogs := path.Join(cwd, "logs", "server.log")
	apiLogs := path.Join(cwd, "logs", "api.log")
	gin.ForceConsoleColor()

	f, _ := os.Create(apiLogs)
	gin.DefaultWriter = io.MultiWriter(f, os.Stdout)
	log.SetOutput(&lumberjack.Logger{
		Filename:   serverLogs,
		MaxSize:    500,
		MaxBackups: 3,
		MaxAge:     30,
		Compress:   true,
	})
}

func main() {
	apiEnv := os.Getenv("API_ENV")
	if apiEnv == "local" {
		cwd, _ := os.Getwd()
		if err := godotenv.Load(path.Join(cwd, ".env")); err != nil {
			panic(err)
		}
	} else {
		if err := awslib.GetDatabaseSecret(); err != nil {
			log.Fatalf("Failed to load database credentials: %s", err.Error())
		}
	}
	initLogger()

	boot.InitDb()
	boot.InitScheduler()

	go boot.DownloadSDKFileFromS3()
	go boot.InitBroker()

	router := setupRouter()

	appHost := os.Getenv("APP_HOST")
	if apiEnv == "local" {
		router.Use(cors.Default())
	} else {
		cc := cors.DefaultConfig()
		cc.AllowMethods = append(cc.AllowMethods, "GET", "POST", "PATCH", "PUT", "DELETE", "HEAD")
		cc.AllowHeaders = append(cc.AllowHeaders, "Origin", "Authorization", "x-secret")
		cc.AllowOriginFunc = func(origin string) bool {
			match, _ := regexp.MatchString(`(\w+.?)+\.amazonaws\.com$`, origin)
			log.Printf("Origin matches %s: %v\n", origin, match)
			if match {
				return true
			}
			match, _ = regexp.MatchString(appHost, origin)
			if match {
				return true
			}
			match, _ = regexp.MatchString("app:mobile", origin)
			return match
		}
		cc.AllowCredentials = true
		cc.AllowAllOrigins = false
		router.Use(cors.New(cc))
	}

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("leasedate", leaseDateValidatorFunc)
		v.RegisterValidation("gtdate", gtfield)
	}

	router = maintenanceModeMiddleware(router)

	publicRoutes(router)

	guestAuthRoutes(router)

	stripeWebhookRoute(router)

	authorized := router.Group(apiPrefix)
	authorized.Use(middlewares.AuthMiddleware)
	{
		authorized.
			POST("/fcm", func(ctx *gin.Context) {
				var body struct {
					Token  string   `json:"token" binding:"required"`
					Topics []string `json:"topics" binding:"required"`
				}
				if err := ctx.ShouldBindJSON(&body); err != nil {
					log.Printf("[FCM] error: %v\n", err)
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				fcm, err := lib.GetFirebaseMessaging()
				if err != nil {
					log.Printf("Could not retrieve FCM instance: %v\n", err)
					ctx.Status(http.StatusInternalServerError)
					return
				}
				for _, topic := range body.Topics {
					_, err := fcm.SubscribeToTopic(ctx, []string{body.Token}, topic)
					if err != nil {
						log.Printf("[FCM] error subscribing to topic [%s]: %v\n", topic, err)
						ctx.Status(http.StatusBadRequest)
						return
					}
				}
				uid := ctx.GetString("uid")
				rd := lib.GetRedisClient()
				rd.JSONSet(context.Background(), fmt.Sprintf("%s:fcm", uid), "$", map[string]any{
					"token":  body.Token,
					"topics": body.Topics,
				})

				ctx.Status(http.StatusOK)
			}).
			POST("/auth/logout", func(ctx *gin.Context) {
				db := db.GetDb()
				if err := db.Transaction(func(tx *gorm.DB) error {
					userId := ctx.GetUint("id")
					err := tx.Model(&models.User{}).Where(userId).Update("last_active", time.Now()).Error
					if err != nil {
						return err
					}
					return nil
				}); err != nil {
					log.Printf("Error on user logout: %s\n", err.Error())
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				ctx.Status(http.StatusOK)
			}).
			GET("/users/me", func(ctx *gin.Context) {
				var user models.User
				userId := ctx.GetUint("id")
				db := db.GetDb()
				if err := db.
					Where(&models.User{ID: userId}).
					First(&user).
					Error; err != nil {
					ctx.Status(http.StatusBadRequest)
					return
				}
				ctx.JSON(http.StatusOK, gin.H{"data": user})
			})

		authorized = propertyHandlers(authorized)
		authorized = bookingHandlers(authorized)
		authorized = agreementHandlers(authorized)
		authorized = paymentHandlers(authorized)

		authorized.
			GET("/notifications", func(ctx *gin.Context) {
				userId := ctx.GetUint("id")
				var notifications []models.Notification
				db := db.GetDb()
				if err := db.
					Model(&models.Notification{}).
					Where(&models.Notification{UserID: userId}).
					Order("created_at desc").
					Limit(100).
					Find(&notifications).
					Error; err != nil {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				ctx.JSON(http.StatusOK, gin.H{"data": notifications})
			})
	}

	if os.Getenv("TLS_ENABLE") == "true" {
		cwd, _ := os.Getwd()
		certpath := path.Join(cwd, "certificates", "localhost.pem")
		keypath := path.Join(cwd, "certificates", "localhost-key.pem")
		if err := router.RunTLS(":9090", certpath, keypath); err != nil {
			log.Fatalf("Failed to start server: %s", err)
		}
	}
	if err := router.Run(":9090"); err != nil {
		log.Fatalf("Failed to start server: %s", err)
	}
}
