package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ChukwumaKingsley/smart-school-forked/core"
	"github.com/ChukwumaKingsley/smart-school-forked/core/assessment"
	"github.com/ChukwumaKingsley/smart-school-forked/core/course"
	"github.com/ChukwumaKingsley/smart-school-forked/core/user"
	cachesvc "github.com/ChukwumaKingsley/smart-school-forked/services/cache"
	emailsvc "github.com/ChukwumaKingsley/smart-school-forked/services/email"
	eventsvc "github.com/ChukwumaKingsley/smart-school-forked/services/events"
	logsvc "github.com/ChukwumaKingsley/smart-school-forked/services/logger"
	storagesvc "github.com/ChukwumaKingsley/smart-school-forked/services/storage"
	"github.com/ChukwumaKingsley/smart-school-forked/storage/database"
	sqlxrepos "github.com/ChukwumaKingsley/smart-school-forked/storage/database/sqlx"
)

func main() {
	os.Exit(run())
}

func run() int {
	conf := core.NewConfig()

	logger, err := logsvc.NewZapLogger(conf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "setting up logger: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	// set up DB
	if err = database.CreateIfNotExist(conf); err != nil {
		logger.Error("setting up database", err)
		return 1
	}
	db, err := database.Open(conf)
	if err != nil {
		logger.Error("opening database", err)
		return 1
	}
	defer func() { _ = db.Close() }()

	// set up services
	ctx := context.Background()
	storage, err := storagesvc.New(ctx, conf.Storage)
	if err != nil {
		logger.Error("setting up storage", err)
		return 1
	}
	events := eventsvc.New(conf.Kafka, logger)
	defer func() { _ = events.Close() }()

	mailSvc := emailsvc.NewConsoleService(conf, logger)
	usrRepo := sqlxrepos.NewUserRepository(db)
	crsSvc := course.NewService(sqlxrepos.NewCourseRepository(db), usrRepo, mailSvc, events, storage, logger)

	// start CLI
	cli := commandLine{
		db:     db,
		usrSvc: user.NewService(usrRepo, mailSvc, storage, conf),
		asmSvc: assessment.NewService(sqlxrepos.NewAssessmentRepository(db), crsSvc, events, cachesvc.New(conf.Redis), conf, logger),
		logger: logger,
		out:    os.Stdout,
	}
	cli.validate, cli.translator = newValidator()
	if err = cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("%s failed", os.Args[1]), err)
		}
		return 1
	}
	return 0
}
