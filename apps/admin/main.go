package main

import (
	"fmt"
	"os"

	"github.com/trezcool/taskbell/apps/shared"
	"github.com/trezcool/taskbell/core"
	"github.com/trezcool/taskbell/storage/database"
)

func main() {
	conf := core.NewConfig()
	logger := shared.NewLogger(conf, "admin")

	// set up DB
	if err := database.CreateIfNotExist(conf); err != nil {
		logger.Fatal(fmt.Sprintf("creating database: %v", err), err)
	}
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}

	// start CLI
	cli := commandLine{
		db:   db,
		svcs: shared.NewServices(conf, db, shared.NewRegistry(conf), logger),
		out:  os.Stdout,
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("admin: %v", err), err)
		}
		os.Exit(1)
	}
}
