package main

import (
	"github.com/trezcool/adapt/storage/database"
)

// mockable
var (
	createDBFunc = database.CreateIfNotExist
	migrateFunc  = database.Migrate
)

func (cli *commandLine) migrate() error {
	if err := createDBFunc(cli.conf); err != nil {
		return err
	}
	return migrateFunc(cli.db)
}
