package main

import (
	"context"
	"fmt"
	"os"

	"github.com/berkanmatematik/platform/core"
	"github.com/berkanmatematik/platform/core/course"
	"github.com/berkanmatematik/platform/core/session"
	"github.com/berkanmatematik/platform/core/user"
	emailsvc "github.com/berkanmatematik/platform/services/email"
	logsvc "github.com/berkanmatematik/platform/services/logger"
	inmemcache "github.com/berkanmatematik/platform/storage/cache/inmem"
	rediscache "github.com/berkanmatematik/platform/storage/cache/redis"
	"github.com/berkanmatematik/platform/storage/database"
	inmemdb "github.com/berkanmatematik/platform/storage/database/inmem"
	sqlxrepos "github.com/berkanmatematik/platform/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(logsvc.NewStdLogger(os.Stdout, conf).With().Str("component", "ADMIN").Logger(), conf)
	logger.Enable(!conf.Debug)

	cli := commandLine{}
	var courseRepo course.Repository

	// set up DB
	switch conf.Database.Driver {
	case core.DriverPostgres:
		if err := database.CreateIfNotExist(conf); err != nil {
			logger.Fatal(fmt.Sprintf("creating database: %v", err), err)
		}
		db, err := database.Open(conf)
		if err != nil {
			logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
		}
		defer func() { _ = db.Close() }()
		cli.db = db.DB
		cli.usrRepo = sqlxrepos.NewUserRepository(db)
		courseRepo = sqlxrepos.NewCourseRepository(db)
	default:
		db := inmemdb.Open()
		cli.usrRepo = inmemdb.NewUserRepository(db)
		courseRepo = inmemdb.NewCourseRepository(db)
	}

	// user events refresh the sessions cached for the API
	var store session.Store = inmemcache.NewSessionStore()
	if conf.Cache.Driver == core.DriverRedis {
		client, err := rediscache.Open(context.Background(), conf)
		if err != nil {
			logger.Fatal(fmt.Sprintf("opening redis: %v", err), err)
		}
		defer func() { _ = client.Close() }()
		store = rediscache.NewSessionStore(client)
	}

	mailSvc := emailsvc.NewConsoleService(conf, logger)
	cli.usrSvc = user.NewService(cli.usrRepo, mailSvc, conf)
	cli.courseSvc = course.NewService(courseRepo)
	sessions := session.NewManager(store, cli.usrSvc, conf.Cache.SessionTTL, logger)
	defer sessions.Close()

	// start CLI
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			fmt.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
