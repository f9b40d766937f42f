package models

import (
	"log"
	"prs/src/db"
	"prs/src/lib"
	"prs/src/types"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type JobTask struct {
	ID uuid.UUID `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`

	Name       string      `json:"-"`
	JobType    string      `json:"-"`
	RunsAt     time.Time   `json:"-"`
	PayloadID  string      `json:"-"`
	Payload    types.JSONB `gorm:"type:jsonb" json:"-"`
	Source     string      `json:"-"`
	SourceType string      `json:"-"`
	Status     string      `gorm:"default:'pending'" json:"-"`
	Topic      string      `json:"-"`
}

// CreateAndEnqueueJobTask persists the task and registers its schedule in
// the same transaction, so a failed schedule leaves no orphan row.
func (self *JobTask) CreateAndEnqueueJobTask(jobTask JobTask) (string, error) {
	var jobID string
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		vars := map[string]string{
			"name":     jobTask.Name,
			"topic":    jobTask.Topic,
			"clientId": jobTask.Source,
		}
		sid, err := lib.NewScheduledJob(jobTask.RunsAt, vars, jobTask.Payload)
		if err != nil {
			log.Printf("Error creating schedule for job %s: %s\n", jobTask.Name, err.Error())
			return err
		}
		jobID = sid.String()
		jobTask.ID = *sid
		jobTask.Payload["JobID"] = jobID
		if err := tx.Create(&jobTask).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	log.Printf("Created schedule for job %s with name %s at %s\n", jobID, jobTask.Name, jobTask.RunsAt.Format("2006-01-02T15:04:05"))
	return jobID, nil
}
