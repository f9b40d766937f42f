package boot

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"path"
	"prs/src/common"
	"prs/src/db"
	"prs/src/lib"
	"prs/src/models"
	"prs/src/types"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.Property{},
		&models.Booking{},
		&models.Agreement{},
		&models.Payment{},
		&models.Notification{},
		&models.JobTask{},
		&models.Role{},
		&models.Permission{},
		&models.RolePermission{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}
	SeedRoles(db)
	go common.UpdateMissingSlugs()

	return db
}

// SeedRoles keeps the role and permission tables in step with the
// actions the API authorizes.
func SeedRoles(db *gorm.DB) {
	roles := []models.Role{
		{Name: types.ROLE_RENTER},
		{Name: types.ROLE_LANDLORD},
	}
	permissions := []models.Permission{
		{Name: "properties:create"},
		{Name: "properties:status"},
		{Name: "bookings:create"},
		{Name: "bookings:status"},
		{Name: "agreements:create"},
		{Name: "payments:checkout"},
	}
	rolePermissions := []models.RolePermission{
		{Role: types.ROLE_LANDLORD, Permission: "properties:create"},
		{Role: types.ROLE_LANDLORD, Permission: "properties:status"},
		{Role: types.ROLE_LANDLORD, Permission: "bookings:status"},
		{Role: types.ROLE_LANDLORD, Permission: "agreements:create"},
		{Role: types.ROLE_RENTER, Permission: "bookings:create"},
		{Role: types.ROLE_RENTER, Permission: "payments:checkout"},
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&roles).Error; err != nil {
			return err
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&permissions).Error; err != nil {
			return err
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rolePermissions).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		log.Printf("Error seeding roles: %s\n", err.Error())
	}
}

func InitBroker() {
	go RecoverQueuedJobs()
	go UpdateExpiredJobs()
	apiEnv := os.Getenv("API_ENV")
	if apiEnv == string(types.Test) || apiEnv == string(types.Production) {
		go common.SNSSubscribes()
		go common.SQSConsumers()
		return
	}
	go lib.KafkaCreateTopics("AgreementsSweep", "agreements-expired", "payment-status-updates")
	go common.KafkaConsumers()
}

// InitScheduler registers the recurring expiration sweep and starts the
// local scheduler.
func InitScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	interval := 60
	if v := os.Getenv("SWEEP_INTERVAL_MINUTES"); v != "" {
		if atoi, err := strconv.Atoi(v); err == nil && atoi > 0 {
			interval = atoi
		}
	}
	id, err := lib.CreateCronJob(func() {
		if _, err := common.RunExpirationSweep(); err != nil {
			log.Printf("Scheduled sweep failed: %s\n", err.Error())
		}
	}, time.Duration(interval)*time.Minute)
	if err != nil {
		log.Printf("Error running job: %s\n", err.Error())
		return
	}
	jobsWaitingInQueue := len(sched.Jobs())
	log.Println("Jobs in queue:", jobsWaitingInQueue)
	log.Printf("Job ID: %s\n", *id)
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	err = sched.Shutdown()
	if err != nil {
		log.Println("An error has occurred while shutting stopping Scheduler. Check logs for info")
		return
	}
}

// RecoverQueuedJobs reschedules pending end-date jobs after a restart.
func RecoverQueuedJobs() error {
	_, err := lib.GetScheduler()
	if err != nil {
		return err
	}
	db := db.GetDb()
	ss := db.Session(&gorm.Session{PrepareStmt: true})
	var jobTasks []models.JobTask
	today := time.Now()
	in1m := today.Add(1 * time.Minute)
	in3months := today.Add((24 * 30 * 3) * time.Hour)
	err = ss.
		Model(&models.JobTask{}).Select("id", "payload", "runs_at").
		Where(&models.JobTask{Status: "pending", JobType: "OneTimeJobStartDateTime"}).
		Where("runs_at BETWEEN ? AND ?", in1m, in3months).
		Order("runs_at asc").
		Limit(100).
		Find(&jobTasks).
		Error
	if err != nil {
		log.Printf("Error retrieving jobs: %s\n", err.Error())
		return err
	}
	log.Printf("Found %d pending jobs", len(jobTasks))
	for _, jobTask := range jobTasks {
		log.Printf("Queueing: %s\n", jobTask.ID.String())
		payload := jobTask.Payload
		jobDef := gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(jobTask.RunsAt))
		jt := gocron.NewTask(func() {
			log.Println("Running scheduled task")
			err := lib.KafkaProduceMessage(payload["producerClientId"].(string), payload["topic"].(string), &payload)
			if err != nil {
				log.Printf("Error on producing message: %s\n", err.Error())
				return
			}
		})
		jobId, err := lib.CreateOneTimeCronJob(jobDef, jt)
		if err != nil {
			log.Printf("Failed to schedule job [%s]. Skipping: %s\n", jobTask.ID.String(), err.Error())
			continue
		}
		log.Printf("Added job to scheduler: name=%s id=%s job=%s\n", jobTask.Name, jobTask.ID.String(), *jobId)
	}

	return nil
}

// UpdateExpiredJobs marks pending jobs whose run time already passed.
// The recurring sweep covers the agreements they pointed at.
func UpdateExpiredJobs() {
	db := db.GetDb()
	err := db.
		Transaction(func(tx *gorm.DB) error {
			err := tx.Model(&models.JobTask{}).
				Where("status", "pending").
				Where("runs_at < ?", time.Now()).
				Update("status", "expired").Error
			if err != nil {
				return err
			}
			return nil
		})
	if err != nil {
		log.Printf("Error while processing expired jobs: %s\n", err.Error())
	}
}

func DownloadSDKFileFromS3() {
	cwd, _ := os.Getwd()
	log.Printf("[S3] cwd:%s\n", cwd)
	filename := "admin-sdk-credentials.json"
	sdkFilePath := path.Join("/secrets", filename)
	_, err := os.Stat(sdkFilePath)
	if errors.Is(err, os.ErrNotExist) {
		log.Println("File not found. Downloading...")
		client := lib.AWSGetS3Client()
		adminSdkObjectKey := filename
		secretsBucket := os.Getenv("S3_SECRETS_BUCKET")
		object, err := client.GetObject(context.Background(), &s3.GetObjectInput{
			Bucket: aws.String(secretsBucket),
			Key:    aws.String(adminSdkObjectKey),
		})
		if err != nil {
			log.Printf("[S3] Error retrieving object: %s\n", err.Error())
			return
		}
		defer object.Body.Close()
		file, err := os.Create(sdkFilePath)
		if err != nil {
			log.Printf("Could not create file %s: %s\n", filename, err.Error())
			return
		}
		defer file.Close()
		body, err := io.ReadAll(object.Body)
		if err != nil {
			log.Printf("Couldn't read object body from %s: %s\n", filename, err.Error())
			return
		}
		_, err = file.Write(body)
		if err != nil {
			log.Printf("Error writing to file: %s\n", err.Error())
			return
		}
		log.Println("File has been written")
	}
	log.Println("File exists!")
}
