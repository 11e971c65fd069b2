package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"

	. "github.com/ChukwumaKingsley/smart-school-forked/apps/api/echo"
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
	sqlxrepos "github.com/ChukwumaKingsley/smart-school-forked/storage/database/sqlx"
	testutil "github.com/ChukwumaKingsley/smart-school-forked/tests"
)

var errMissingToken = httpErr{Error: "Could not validate credentials"}

type env struct {
	conf    *core.Config
	db      *sqlx.DB
	app     Server
	events  *eventsvc.Recorder
	usrRepo user.Repository
	crsRepo course.Repository
	asmRepo assessment.Repository
}

func setup(t *testing.T) env {
	t.Helper()
	conf := &core.Config{
		AppName:                   "Academia",
		SecretKey:                 "test-secret",
		TestMode:                  true,
		FrontendBaseURL:           "http://front.test",
		PasswordResetTimeoutDelta: time.Hour,
		ReviewAfter:               2 * time.Hour,
		Server: core.ServerConfig{
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 4 * time.Hour,
			DisableReqLogs:            true,
		},
		Redis: core.RedisConfig{StatsTTL: time.Minute},
	}
	logger := logsvc.NewNopLogger()
	core.ParseEmailTemplates(appfs.FS, appfs.EmailTemplatesDir, conf, logger)

	// set up DB & repos
	db := testutil.NewDB(t)
	usrRepo := sqlxrepos.NewUserRepository(db)
	crsRepo := sqlxrepos.NewCourseRepository(db)
	asmRepo := sqlxrepos.NewAssessmentRepository(db)
	trRepo := sqlxrepos.NewTimeRecordRepository(db)

	// set up services
	mediaDir := t.TempDir()
	storage, err := storagesvc.NewFSStorage(mediaDir, "http://localhost/media")
	if err != nil {
		t.Fatalf("NewFSStorage() failed: %v", err)
	}
	recorder := eventsvc.NewRecorder()
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)

	usrSvc := user.NewServiceMock(usrRepo, mailSvc, storage, conf)
	crsSvc := course.NewService(crsRepo, usrRepo, mailSvc, recorder, storage, logger)
	asmSvc := assessment.NewService(asmRepo, crsSvc, recorder, cachesvc.NewMemoryCache(), conf, logger)
	trSvc := timerecord.NewService(trRepo, crsSvc, asmRepo)

	// set up server
	app := NewServer(&Options{
		Conf:          conf,
		Logger:        logger,
		MediaDir:      mediaDir,
		UserSvc:       usrSvc,
		CourseSvc:     crsSvc,
		AssessmentSvc: asmSvc,
		TimeRecordSvc: trSvc,
	})

	return env{
		conf:    conf,
		db:      db,
		app:     app,
		events:  recorder,
		usrRepo: usrRepo,
		crsRepo: crsRepo,
		asmRepo: asmRepo,
	}
}

// do serves the request of tt and checks its response.
func (e env) do(t *testing.T, tt httpTest) *httptest.ResponseRecorder {
	t.Helper()
	method := tt.method
	if method == "" {
		method = http.MethodGet
	}
	req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
	e.app.ServeHTTP(rec, req)
	checkCodeAndData(t, tt, rec)
	return rec
}

func (e env) token(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := GenerateToken(e.conf, usr)
	if err != nil {
		t.Fatalf("token() failed: %v", err)
	}
	return token
}

// reload fetches the stored version of a.
func (e env) reload(t *testing.T, a assessment.Assessment) assessment.Assessment {
	t.Helper()
	a, err := e.asmRepo.GetAssessment(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("reload() failed: %v", err)
	}
	return a
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte // checked when set
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func unmarshal(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("unmarshal(%s) failed: %v", rec.Body.String(), err)
	}
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if _, ok := j1.([]interface{}); !ok {
		return false, nil
	}
	if _, ok := j2.([]interface{}); !ok {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
