package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"github.com/ChukwumaKingsley/smart-school-forked/core"
	"github.com/ChukwumaKingsley/smart-school-forked/core/assessment"
	"github.com/ChukwumaKingsley/smart-school-forked/core/course"
	cachesvc "github.com/ChukwumaKingsley/smart-school-forked/services/cache"
	emailsvc "github.com/ChukwumaKingsley/smart-school-forked/services/email"
	eventsvc "github.com/ChukwumaKingsley/smart-school-forked/services/events"
	logsvc "github.com/ChukwumaKingsley/smart-school-forked/services/logger"
	storagesvc "github.com/ChukwumaKingsley/smart-school-forked/services/storage"
	"github.com/ChukwumaKingsley/smart-school-forked/storage/database"
	sqlxrepos "github.com/ChukwumaKingsley/smart-school-forked/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	zl, err := logsvc.NewZapLogger(conf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "setting up logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = zl.Sync() }()
	logger := logsvc.NewRollbarLogger(zl, conf)

	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}
	defer func() { _ = db.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, err := storagesvc.New(ctx, conf.Storage)
	if err != nil {
		logger.Fatal("setting up storage", err)
	}
	events := eventsvc.New(conf.Kafka, logger)
	defer func() { _ = events.Close() }()

	usrRepo := sqlxrepos.NewUserRepository(db)
	crsSvc := course.NewService(
		sqlxrepos.NewCourseRepository(db), usrRepo, emailsvc.NewConsoleService(conf, logger), events, storage, logger,
	)
	asmSvc := assessment.NewService(sqlxrepos.NewAssessmentRepository(db), crsSvc, events, cachesvc.New(conf.Redis), conf, logger)

	c := newScheduler(logger)
	if _, err = c.AddFunc(conf.Worker.EndAssessmentsSchedule, endAssessmentsJob(ctx, asmSvc, logger)); err != nil {
		logger.Fatal(fmt.Sprintf("scheduling %q", conf.Worker.EndAssessmentsSchedule), err)
	}

	logger.Info("worker started", map[string]interface{}{"schedule": conf.Worker.EndAssessmentsSchedule})
	c.Start()
	<-ctx.Done()

	logger.Info("worker stopping")
	<-c.Stop().Done() // wait for the running job
	logger.Info("worker stopped")
}

type cronLogger struct {
	logger core.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, kvMap(keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, err, kvMap(keysAndValues))
}

func kvMap(keysAndValues []interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		m[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return m
}

// newScheduler returns a cron that never overlaps runs of a job and survives job panics.
func newScheduler(logger core.Logger) *cron.Cron {
	cl := cronLogger{logger: logger}
	return cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.SkipIfStillRunning(cl), cron.Recover(cl)),
	)
}

type dueEnder interface {
	EndDue(ctx context.Context) (int, error)
}

func endAssessmentsJob(ctx context.Context, svc dueEnder, logger core.Logger) func() {
	return func() {
		n, err := svc.EndDue(ctx)
		if err != nil {
			logger.Error("ending due assessments", err)
			return
		}
		if n > 0 {
			logger.Info("due assessments ended", map[string]interface{}{"count": n})
		}
	}
}
