package echoapi

import (
	"context"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/ChukwumaKingsley/smart-school-forked/core"
	"github.com/ChukwumaKingsley/smart-school-forked/core/assessment"
	"github.com/ChukwumaKingsley/smart-school-forked/core/course"
	"github.com/ChukwumaKingsley/smart-school-forked/core/timerecord"
	"github.com/ChukwumaKingsley/smart-school-forked/core/user"
)

type (
	Options struct {
		Conf           *core.Config
		Logger         core.Logger
		SignalShutdown func()

		// MediaDir is served under /media when files are stored locally.
		MediaDir string

		UserSvc       user.ServiceInterface
		CourseSvc     *course.Service
		AssessmentSvc *assessment.Service
		TimeRecordSvc *timerecord.Service
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts       *Options
		app        *echo.Echo
		auth       *authenticator
		validate   *validator.Validate
		translator ut.Translator
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	if opts.SignalShutdown == nil {
		opts.SignalShutdown = func() {}
	}
	validate, translator := newValidator()
	s := &server{
		opts:       opts,
		app:        echo.New(),
		auth:       newAuthenticator(opts.Conf),
		validate:   validate,
		translator: translator,
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.opts.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	if !conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{conf.FrontendBaseURL},
		AllowCredentials: true,
	}))

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.translator, s.opts.SignalShutdown)
	s.app.Debug = conf.Debug && !conf.TestMode

	s.app.GET("/", home)
	if s.opts.MediaDir != "" {
		s.app.Static("/media", s.opts.MediaDir)
	}

	jwt := middleware.JWTWithConfig(s.auth.jwtConfig)

	registerUserAPI(s.app.Group(""), jwt, s.auth, s.opts.UserSvc, s.validate, s.opts.Logger)
	registerCourseAPI(s.app.Group("/courses"), jwt, s.opts.CourseSvc, s.opts.AssessmentSvc, s.validate)
	registerInstructorAPI(s.app.Group("/instructors"), jwt, s.opts.CourseSvc, s.validate)
	registerStudentAPI(s.app.Group("/students"), jwt, s.opts.CourseSvc, s.validate)
	registerAssessmentAPI(s.app.Group("/assessments"), jwt, s.opts.AssessmentSvc, s.validate)
	registerTimeRecordAPI(s.app.Group("/assessment_times"), jwt, s.opts.TimeRecordSvc)
}

func (s *server) Start() error {
	return s.app.Start(s.opts.Conf.Server.Address)
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Academia API!")
}
