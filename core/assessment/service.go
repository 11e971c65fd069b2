package assessment

import (
	"context"
	"fmt"
	"time"

	"github.com/ChukwumaKingsley/smart-school-forked/core"
)

var (
	// errors
	ErrNotFound            = core.NewNotFoundError("Assessment not found")
	ErrInstructionNotFound = core.NewNotFoundError("Instruction not found")
	ErrQuestionNotFound    = core.NewNotFoundError("Question not found")
	ErrOptionNotFound      = core.NewNotFoundError("Option not found")
	ErrResultNotFound      = core.NewNotFoundError("Result not found")
	ErrCourseNotFound      = core.NewNotFoundError("Course not found")

	ErrStartInPast         = core.NewNotAllowedError("Start date/time should be in the future.")
	ErrEndBeforeStart      = core.NewNotAllowedError("End date/time should be later than start date/time.")
	ErrScheduleStartInPast = core.NewNotAllowedError("Start date/time must be in the future.")
	ErrLiveSchedule        = core.NewNotAllowedError("Cannot edit schedule of live assessment.")
	ErrEndedSchedule       = core.NewNotAllowedError("Cannot edit schedule of ended assessment.")
	ErrEndedEdit           = core.NewNotAllowedError("Cannot edit ended assessment.")
	ErrNoQuestions         = core.NewNotAllowedError("Assessment must have at least one question")
	ErrStartPassed         = core.NewNotAllowedError("Update start date/time to a later date/time")
	ErrAlreadyStarted      = core.NewNotAllowedError("Assessment has already started.")
	ErrAlreadyEnded        = core.NewNotAllowedError("Assessment has already ended.")
	ErrNotStarted          = core.NewNotAllowedError("Assessment cannot be ended until it has started.")
	ErrNotEnded            = core.NewNotAllowedError("Assessment must be ended before it is marked.")
	ErrStateChanged        = core.NewNotAllowedError("Assessment state changed, retry.")
	ErrNotDraft            = core.NewNotAllowedError("Assessment can only be edited while in draft.")
	ErrOutsideWindow       = core.NewNotAllowedError("Questions are only available during the assessment.")
	ErrReviewNotAvailable  = core.NewNotAllowedError("Review is not available yet.")
	ErrNotOpen             = core.NewNotAllowedError("Assessment is not open for submissions.")
	ErrAlreadySubmitted    = core.NewNotAllowedError("Assessment already submitted.")
)

type (
	Repository interface {
		CreateAssessment(ctx context.Context, a Assessment) (Assessment, error)
		GetAssessment(ctx context.Context, id string) (Assessment, error)
		// UpdateAssessment saves details and schedule, never the status.
		UpdateAssessment(ctx context.Context, a Assessment) (Assessment, error)
		// UpdateStatus sets the status of an assessment currently in one of from.
		// It reports false when no row matched.
		UpdateStatus(ctx context.Context, id string, to Status, from ...Status) (bool, error)
		// MarkAssessment flags a completed assessment as marked. It reports false when no row matched.
		MarkAssessment(ctx context.Context, id string) (bool, error)
		DeleteAssessment(ctx context.Context, id string) error
		QueryCourseAssessments(ctx context.Context, courseID string, status Status, isMarked *bool) ([]Assessment, error)
		QueryOpenAssessments(ctx context.Context) ([]Assessment, error)

		QueryInstructions(ctx context.Context, assessmentID string) ([]Instruction, error)
		CreateInstructions(ctx context.Context, instructions ...Instruction) error
		GetInstruction(ctx context.Context, id string) (Instruction, error)
		UpdateInstruction(ctx context.Context, ins Instruction) error
		DeleteInstruction(ctx context.Context, id string) error

		CountQuestions(ctx context.Context, assessmentID string) (int, error)
		// QueryQuestions returns the questions of an assessment, with their options when withOptions.
		QueryQuestions(ctx context.Context, assessmentID string, withOptions bool) ([]Question, error)
		GetQuestion(ctx context.Context, id string) (Question, error)
		// CreateQuestion inserts q with its options atomically.
		CreateQuestion(ctx context.Context, q Question) error
		UpdateQuestion(ctx context.Context, q Question) error
		DeleteQuestion(ctx context.Context, id string) error

		GetOption(ctx context.Context, id string) (Option, error)
		CreateOptions(ctx context.Context, options ...Option) error
		UpdateOption(ctx context.Context, o Option) error
		DeleteOption(ctx context.Context, id string) error

		CountSubmissions(ctx context.Context, assessmentID, studentID string) (int, error)
		QuerySubmissions(ctx context.Context, assessmentID, studentID string) ([]Submission, error)
		// SaveSubmissions inserts subs, upserts scores and recomputes the student's total, atomically.
		SaveSubmissions(ctx context.Context, assessmentID, studentID string, subs []Submission, scores []Score) (Total, error)
		QueryScores(ctx context.Context, assessmentID, studentID string) ([]Score, error)
		// SaveScores upserts scores and recomputes the totals of every affected student, atomically.
		SaveScores(ctx context.Context, assessmentID string, scores []Score) ([]Total, error)
		GetTotal(ctx context.Context, assessmentID, studentID string) (Total, error)

		QueryResults(ctx context.Context, assessmentID string, filter ResultFilter) ([]Result, error)
		GetResult(ctx context.Context, assessmentID, regNum string) (Result, error)
		GetStatsData(ctx context.Context, a Assessment) (StatsData, error)
	}

	// CourseAccess answers the course membership questions access rules depend on.
	CourseAccess interface {
		CourseExists(ctx context.Context, code string) (bool, error)
		IsAcceptedInstructor(ctx context.Context, instructorID, code string) (bool, error)
		IsEnrolled(ctx context.Context, regNum, code string, acceptedOnly bool) (bool, error)
	}

	Service struct {
		repo        Repository
		courses     CourseAccess
		events      core.EventPublisher
		cache       core.Cache
		logger      core.Logger
		reviewAfter time.Duration
		statsTTL    time.Duration
		now         func() time.Time // mockable
	}
)

func NewService(
	repo Repository,
	courses CourseAccess,
	events core.EventPublisher,
	cache core.Cache,
	conf *core.Config,
	logger core.Logger,
) *Service {
	return &Service{
		repo:        repo,
		courses:     courses,
		events:      events,
		cache:       cache,
		logger:      logger,
		reviewAfter: conf.ReviewAfter,
		statsTTL:    conf.Redis.StatsTTL,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SetNowFunc replaces the clock of the service.
func (svc *Service) SetNowFunc(now func() time.Time) { svc.now = now }

func statsKey(id string) string { return "assessment:" + id + ":stats" }

// Access checks

func (svc *Service) isInstructor(ctx context.Context, p core.Principal, courseID string) (bool, error) {
	if !p.IsInstructor {
		return false, nil
	}
	return svc.courses.IsAcceptedInstructor(ctx, p.ID, courseID)
}

func (svc *Service) requireInstructor(ctx context.Context, p core.Principal, courseID string) error {
	ok, err := svc.isInstructor(ctx, p, courseID)
	if err != nil {
		return err
	}
	if !ok {
		return core.ErrAccessDenied
	}
	return nil
}

// requireMember allows the accepted instructors and the accepted students of the course.
func (svc *Service) requireMember(ctx context.Context, p core.Principal, courseID string) error {
	var (
		ok  bool
		err error
	)
	if p.IsInstructor {
		ok, err = svc.courses.IsAcceptedInstructor(ctx, p.ID, courseID)
	} else {
		ok, err = svc.courses.IsEnrolled(ctx, p.ID, courseID, true)
	}
	if err != nil {
		return err
	}
	if !ok {
		return core.ErrAccessDenied
	}
	return nil
}

func (svc *Service) getForInstructor(ctx context.Context, p core.Principal, id string) (Assessment, error) {
	a, err := svc.repo.GetAssessment(ctx, id)
	if err != nil {
		return Assessment{}, err
	}
	if err := svc.requireInstructor(ctx, p, a.CourseID); err != nil {
		return Assessment{}, err
	}
	return a, nil
}

func (svc *Service) getForMember(ctx context.Context, p core.Principal, id string) (Assessment, error) {
	a, err := svc.repo.GetAssessment(ctx, id)
	if err != nil {
		return Assessment{}, err
	}
	if err := svc.requireMember(ctx, p, a.CourseID); err != nil {
		return Assessment{}, err
	}
	return a, nil
}

// changed invalidates the cached stats of a and publishes event.
func (svc *Service) changed(ctx context.Context, p core.Principal, a Assessment, event string, data map[string]string) {
	if err := svc.cache.Delete(ctx, statsKey(a.ID)); err != nil {
		svc.logger.Warn(fmt.Sprintf("invalidating stats of assessment %s: %v", a.ID, err), err)
	}
	if event == "" {
		return
	}
	if data == nil {
		data = make(map[string]string)
	}
	data["course_id"] = a.CourseID
	data["status"] = a.Status.String()
	if err := svc.events.Publish(ctx, core.NewEvent(event, a.ID, p.ID, data)); err != nil {
		svc.logger.Error(fmt.Sprintf("publishing %s event: %v", event, err), err, p)
	}
}
