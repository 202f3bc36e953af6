package main

import (
	"context"
	"expvar"
	"fmt"
	"net/http"
	_ "net/http/pprof" // register the /debug/pprof handlers
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	echoapi "github.com/berkanmatematik/platform/apps/api/echo"
	"github.com/berkanmatematik/platform/core"
	"github.com/berkanmatematik/platform/core/course"
	"github.com/berkanmatematik/platform/core/progress"
	"github.com/berkanmatematik/platform/core/session"
	"github.com/berkanmatematik/platform/core/user"
	appfs "github.com/berkanmatematik/platform/fs"
	emailsvc "github.com/berkanmatematik/platform/services/email"
	logsvc "github.com/berkanmatematik/platform/services/logger"
	inmemcache "github.com/berkanmatematik/platform/storage/cache/inmem"
	rediscache "github.com/berkanmatematik/platform/storage/cache/redis"
	"github.com/berkanmatematik/platform/storage/database"
	inmemdb "github.com/berkanmatematik/platform/storage/database/inmem"
	sqlxrepos "github.com/berkanmatematik/platform/storage/database/sqlx"
)

type repositories struct {
	users    user.Repository
	courses  course.Repository
	progress progress.Repository
}

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(logsvc.NewStdLogger(os.Stdout, conf).With().Str("component", "API").Logger(), conf)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(logsvc.NewStdLogger(os.Stdout, conf).With().Str("component", "DB").Logger(), conf)
	dbLogger.Enable(!conf.Debug)

	// set up storage
	repos, closeDB, err := setUpRepositories(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err := closeDB(); err != nil {
			dbLogger.Error(fmt.Sprintf("closing database: %v", err), err)
		}
	}()

	store, closeCache, err := setUpSessionStore(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up session cache: %v", err), err)
	}
	defer func() {
		if err := closeCache(); err != nil {
			logger.Error(fmt.Sprintf("closing session cache: %v", err), err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	usrSvc := user.NewService(repos.users, mailSvc, conf)
	courseSvc := course.NewService(repos.courses)
	progressSvc := progress.NewService(repos.progress, courseSvc)

	sessions := session.NewManager(store, usrSvc, conf.Cache.SessionTTL, logger)
	defer sessions.Close()

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build), map[string]interface{}{"config": conf.String()})
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	course.InitValidators(validate, translator)

	core.ParseEmailTemplates(appfs.FS, conf, logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugAddress, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:        conf,
		Logger:      logger,
		UserSvc:     usrSvc,
		CourseSvc:   courseSvc,
		ProgressSvc: progressSvc,
		Sessions:    sessions,
		Validate:    validate,
		Translator:  translator,
	})

	go server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Error(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Error(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpRepositories(conf *core.Config) (repositories, func() error, error) {
	switch conf.Database.Driver {
	case core.DriverMemory:
		db := inmemdb.Open()
		return repositories{
			users:    inmemdb.NewUserRepository(db),
			courses:  inmemdb.NewCourseRepository(db),
			progress: inmemdb.NewProgressRepository(db),
		}, func() error { return nil }, nil
	case core.DriverPostgres:
		db, err := setUpDB(conf)
		if err != nil {
			return repositories{}, nil, err
		}
		return repositories{
			users:    sqlxrepos.NewUserRepository(db),
			courses:  sqlxrepos.NewCourseRepository(db),
			progress: sqlxrepos.NewProgressRepository(db),
		}, db.Close, nil
	}
	return repositories{}, nil, fmt.Errorf("unknown database driver %q", conf.Database.Driver)
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db.DB); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func setUpSessionStore(conf *core.Config) (session.Store, func() error, error) {
	switch conf.Cache.Driver {
	case core.DriverMemory:
		return inmemcache.NewSessionStore(), func() error { return nil }, nil
	case core.DriverRedis:
		client, err := rediscache.Open(context.Background(), conf)
		if err != nil {
			return nil, nil, err
		}
		return rediscache.NewSessionStore(client), client.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown cache driver %q", conf.Cache.Driver)
}
