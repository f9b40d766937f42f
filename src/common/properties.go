package common

import (
	"fmt"
	"log"
	"prs/src/db"
	"prs/src/models"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// UpdateMissingSlugs backfills listing slugs for rows created before
// slugs became mandatory.
func UpdateMissingSlugs() {
	db := db.GetDb()
	rows, err := db.
		Model(&models.Property{}).
		Where("slug IS NULL OR slug = ''").
		Rows()
	if err != nil {
		log.Printf("Error querying Properties: %s\n", err.Error())
		return
	}
	if err := db.Transaction(func(tx *gorm.DB) error {
		for rows.Next() {
			var property models.Property
			if err := tx.ScanRows(rows, &property); err != nil {
				return err
			}
			newSlug := slug.Make(property.Title)
			if err := tx.
				Model(&models.Property{}).
				Where("id = ?", property.ID).
				Update("slug", fmt.Sprintf("%s-%d", newSlug, property.ID)).
				Error; err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		log.Printf("Error on update operation: %s\n", err.Error())
	}
}
