package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChukwumaKingsley/smart-school-forked/core"
	"github.com/ChukwumaKingsley/smart-school-forked/core/assessment"
	"github.com/ChukwumaKingsley/smart-school-forked/core/course"
	"github.com/ChukwumaKingsley/smart-school-forked/core/user"
	cachesvc "github.com/ChukwumaKingsley/smart-school-forked/services/cache"
	emailsvc "github.com/ChukwumaKingsley/smart-school-forked/services/email"
	eventsvc "github.com/ChukwumaKingsley/smart-school-forked/services/events"
	logsvc "github.com/ChukwumaKingsley/smart-school-forked/services/logger"
	storagesvc "github.com/ChukwumaKingsley/smart-school-forked/services/storage"
	sqlxrepos "github.com/ChukwumaKingsley/smart-school-forked/storage/database/sqlx"
	testutil "github.com/ChukwumaKingsley/smart-school-forked/tests"
)

type fixture struct {
	cli     *commandLine
	usrRepo user.Repository
	crsRepo course.Repository
	asmRepo assessment.Repository
}

func setup(t *testing.T) fixture {
	conf := &core.Config{AppName: "Academia", SecretKey: "test-secret", TestMode: true, PasswordResetTimeoutDelta: time.Hour}
	logger := logsvc.NewNopLogger()

	// set up DB & repos
	db := testutil.NewDB(t)
	usrRepo := sqlxrepos.NewUserRepository(db)
	crsRepo := sqlxrepos.NewCourseRepository(db)
	asmRepo := sqlxrepos.NewAssessmentRepository(db)

	// set up services
	storage, err := storagesvc.NewFSStorage(t.TempDir(), "http://localhost/media")
	require.NoError(t, err)
	events := eventsvc.NewRecorder()
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)
	crsSvc := course.NewService(crsRepo, usrRepo, mailSvc, events, storage, logger)

	// start CLI
	validate, translator := newValidator()
	return fixture{
		cli: &commandLine{
			validate:   validate,
			translator: translator,
			db:         db,
			usrSvc:     user.NewServiceMock(usrRepo, mailSvc, storage, conf),
			asmSvc:     assessment.NewService(asmRepo, crsSvc, events, cachesvc.NewMemoryCache(), conf, logger),
			logger:     logger,
			out:        &bytes.Buffer{},
		},
		usrRepo: usrRepo,
		crsRepo: crsRepo,
		asmRepo: asmRepo,
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	pwd        string
	wantErr    error
	wantErrStr string
}

func (tt cliTest) run(t *testing.T, cli *commandLine) error {
	readPasswordFunc = func(int) ([]byte, error) { return []byte(tt.pwd), nil }
	err := cli.run(append([]string{"admin"}, tt.args...))
	switch {
	case tt.wantErr != nil:
		assert.True(t, errors.Is(err, tt.wantErr), "cli.run() error = %v, wantErr %v", err, tt.wantErr)
	case tt.wantErrStr != "":
		if assert.Error(t, err) {
			assert.Equal(t, tt.wantErrStr, err.Error())
		}
	default:
		assert.NoError(t, err)
	}
	return err
}

func Test_commandLine_usage(t *testing.T) {
	f := setup(t)
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "migrate without command", args: []string{"migrate"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.run(t, f.cli)
		})
	}
	assert.Contains(t, f.cli.out.(*bytes.Buffer).String(), "Usage:")
}

func Test_commandLine_migrate(t *testing.T) {
	f := setup(t)

	migrateFunc = func(db *sqlx.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.run(t, f.cli)
		})
	}
}

func Test_commandLine_createInstructor(t *testing.T) {
	f := setup(t)
	testutil.CreateStudent(t, f.usrRepo, "20181234567", "Chidi Okeke", "chidi@uni.edu")

	flags := []string{"createinstructor", "-name", "Ngozi Eze", "-department", "CSC", "-faculty", "Physical Sciences", "-title", "Dr."}
	tests := []cliTest{
		{name: "no args", args: []string{"createinstructor"}, wantErr: errHelp},
		{name: "missing email", args: flags, pwd: testutil.Password, wantErr: errHelp},
		{name: "missing password", args: append(flags, "-email", "ngozi@uni.edu"), wantErr: errHelp},
		{
			name: "invalid email", args: append(flags, "-email", "ngozi"), pwd: testutil.Password,
			wantErrStr: "email: email must be a valid email address",
		},
		{name: "email taken", args: append(flags, "-email", "chidi@uni.edu"), pwd: testutil.Password, wantErr: user.ErrEmailExists},
		{name: "created", args: append(flags, "-email", "NGOZI@uni.edu"), pwd: testutil.Password},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.run(t, f.cli)
		})
	}

	usr, err := f.usrRepo.GetUserByEmail(context.Background(), "ngozi@uni.edu")
	require.NoError(t, err)
	assert.True(t, usr.IsInstructor)
	assert.Equal(t, "Dr.", usr.Title.String)
	assert.NoError(t, usr.CheckPassword(testutil.Password))
}

func Test_commandLine_resetPassword(t *testing.T) {
	f := setup(t)
	usr := testutil.CreateStudent(t, f.usrRepo, "20181234567", "Chidi Okeke", "chidi@uni.edu")

	tests := []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "lol@uni.edu"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-email", "lol@uni.edu"}, pwd: "lol", wantErr: user.ErrNotFound},
		{name: "reset", args: []string{"resetpassword", "-email", " CHIDI@uni.edu"}, pwd: "N3w!Secret#"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.run(t, f.cli)
		})
	}

	refreshed, err := f.usrRepo.GetUserByID(context.Background(), usr.ID)
	require.NoError(t, err)
	assert.NotEqual(t, usr.PasswordHash, refreshed.PasswordHash)
	assert.NoError(t, refreshed.CheckPassword("N3w!Secret#"))
}

func Test_commandLine_endAssessments(t *testing.T) {
	f := setup(t)
	coord := testutil.CreateInstructor(t, f.usrRepo, "Ngozi Eze", "ngozi@uni.edu")
	testutil.CreateCourse(t, f.crsRepo, "CSC301", "Algorithms", coord.ID)
	due := testutil.CreateAssessment(t, f.asmRepo, "CSC301", assessment.StatusActive, time.Now().Add(-3*time.Hour), 60)
	running := testutil.CreateAssessment(t, f.asmRepo, "CSC301", assessment.StatusActive, time.Now().Add(-time.Hour), 60)

	cliTest{name: "end", args: []string{"endassessments"}}.run(t, f.cli)
	assert.Contains(t, f.cli.out.(*bytes.Buffer).String(), "1 assessment(s) ended")

	got, err := f.asmRepo.GetAssessment(context.Background(), due.ID)
	require.NoError(t, err)
	assert.Equal(t, assessment.StatusCompleted, got.Status)

	got, err = f.asmRepo.GetAssessment(context.Background(), running.ID)
	require.NoError(t, err)
	assert.Equal(t, assessment.StatusActive, got.Status)
}
