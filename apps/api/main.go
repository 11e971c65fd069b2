package main

import (
	"context"
	"expvar"
	"fmt"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof on the default mux
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/ChukwumaKingsley/smart-school-forked/apps/api/echo"
	"github.com/ChukwumaKingsley/smart-school-forked/core"
	"github.com/ChukwumaKingsley/smart-school-forked/core/assessment"
	"github.com/ChukwumaKingsley/smart-school-forked/core/course"
	"github.com/ChukwumaKingsley/smart-school-forked/core/timerecord"
	"github.com/ChukwumaKingsley/smart-school-forked/core/user"
	appfs "github.com/ChukwumaKingsley/smart-school-forked/fs"
	cachesvc "github.com/ChukwumaKingsley/smart-school-forked/services/cache"
	emailsvc "github.com/ChukwumaKingsley/smart-school-forked/services/email"
	eventsvc "github.com/ChukwumaKingsley/smart-school-forked/services/events"
	logsvc "github.com/ChukwumaKingsley/smart-school-forked/services/logger"
	storagesvc "github.com/ChukwumaKingsley/smart-school-forked/services/storage"
	"github.com/ChukwumaKingsley/smart-school-forked/storage/database"
	sqlxrepos "github.com/ChukwumaKingsley/smart-school-forked/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up logger
	zl, err := logsvc.NewZapLogger(conf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "setting up logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = zl.Sync() }()
	logger := logsvc.NewRollbarLogger(zl, conf)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal("setting up database", err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error("closing database", err)
		}
	}()

	// set up services
	storage, err := storagesvc.New(context.Background(), conf.Storage)
	if err != nil {
		logger.Fatal("setting up storage", err)
	}
	events := eventsvc.New(conf.Kafka, logger)
	defer func() { _ = events.Close() }()
	cache := cachesvc.New(conf.Redis)

	var mailSvc core.EmailService
	if conf.SendgridApiKey == "" {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	usrRepo := sqlxrepos.NewUserRepository(db)
	asmRepo := sqlxrepos.NewAssessmentRepository(db)
	usrSvc := user.NewService(usrRepo, mailSvc, storage, conf)
	crsSvc := course.NewService(sqlxrepos.NewCourseRepository(db), usrRepo, mailSvc, events, storage, logger)
	asmSvc := assessment.NewService(asmRepo, crsSvc, events, cache, conf, logger)
	trSvc := timerecord.NewService(sqlxrepos.NewTimeRecordRepository(db), crsSvc, asmRepo)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	core.ParseEmailTemplates(appfs.FS, appfs.EmailTemplatesDir, conf, logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugAddress, http.DefaultServeMux); err != nil {
			logger.Error("debug server closed", err)
		}
	}()

	// =========================================================================
	// Start API Service

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	var mediaDir string
	if fss, ok := storage.(*storagesvc.FSStorage); ok {
		mediaDir = fss.BaseDir()
	}
	server := echoapi.NewServer(&echoapi.Options{
		Conf:   conf,
		Logger: logger,
		SignalShutdown: func() {
			select {
			case shutdown <- syscall.SIGTERM:
			default:
			}
		},
		MediaDir:      mediaDir,
		UserSvc:       usrSvc,
		CourseSvc:     crsSvc,
		AssessmentSvc: asmSvc,
		TimeRecordSvc: trSvc,
	})

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("API listening", map[string]interface{}{"address": conf.Server.Address})
		serverErrors <- server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-serverErrors:
		if err != http.ErrServerClosed {
			logger.Error("server error", err)
		}

	case sig := <-shutdown:
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		if err = server.Stop(ctx); err != nil {
			logger.Error("could not stop server gracefully", err)
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db, "up"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
