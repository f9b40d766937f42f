package main

import (
	"fmt"
	"io"
	"os"
	"prs/src/models"

	"ariga.io/atlas-provider-gorm/gormschema"
)

func main() {
	stmts, err := gormschema.New("postgres").Load(
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
		fmt.Fprintf(os.Stderr, "failed to load gorm schema: %v\n", err)
		os.Exit(1)
	}
	io.WriteString(os.Stdout, stmts)
}
