package timerecord

import (
	"context"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/ChukwumaKingsley/smart-school-forked/core"
	"github.com/ChukwumaKingsley/smart-school-forked/core/assessment"
)

var (
	// errors
	ErrNotFound           = core.NewNotFoundError("Time record not found")
	ErrCourseNotFound     = core.NewNotFoundError("Course not found")
	ErrAssessmentNotFound = core.NewNotFoundError("Assessment not found")
	ErrNotStudent         = core.NewAccessDeniedError("User must be a student, not instructor!")
	ErrNotEnrolled        = core.NewAccessDeniedError("Student not enrolled!")
)

// TimeRecord tracks when a student started and ended an assessment.
type TimeRecord struct {
	ID            string    `json:"id" db:"id"`
	StudentID     string    `json:"student_id" db:"student_id"`
	AssessmentID  string    `json:"assessment_id" db:"assessment_id"`
	StartDatetime time.Time `json:"start_datetime" db:"start_datetime"`
	EndDatetime   null.Time `json:"end_datetime" db:"end_datetime"`
}

type (
	Repository interface {
		// CreateTimeRecord inserts tr unless the student already has a record for the assessment,
		// and returns the stored record either way.
		CreateTimeRecord(ctx context.Context, tr TimeRecord) (TimeRecord, error)
		GetTimeRecord(ctx context.Context, assessmentID, studentID string) (TimeRecord, error)
		// EndTimeRecord sets the end of an existing record. It reports false when there is none.
		EndTimeRecord(ctx context.Context, assessmentID, studentID string, end time.Time) (bool, error)
	}

	CourseAccess interface {
		CourseExists(ctx context.Context, code string) (bool, error)
		IsEnrolled(ctx context.Context, regNum, code string, acceptedOnly bool) (bool, error)
	}

	AssessmentGetter interface {
		GetAssessment(ctx context.Context, id string) (assessment.Assessment, error)
	}

	Service struct {
		repo        Repository
		courses     CourseAccess
		assessments AssessmentGetter
		now         func() time.Time // mockable
	}
)

func NewService(repo Repository, courses CourseAccess, assessments AssessmentGetter) *Service {
	return &Service{
		repo:        repo,
		courses:     courses,
		assessments: assessments,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SetNowFunc replaces the clock of the service.
func (svc *Service) SetNowFunc(now func() time.Time) { svc.now = now }

// authorize checks that p is an enrolled student of the course the assessment belongs to.
func (svc *Service) authorize(ctx context.Context, p core.Principal, courseCode, assessmentID string) error {
	ok, err := svc.courses.CourseExists(ctx, courseCode)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCourseNotFound
	}
	if p.IsInstructor {
		return ErrNotStudent
	}
	if ok, err = svc.courses.IsEnrolled(ctx, p.ID, courseCode, true); err != nil {
		return err
	}
	if !ok {
		return ErrNotEnrolled
	}

	a, err := svc.assessments.GetAssessment(ctx, assessmentID)
	if err != nil {
		if core.IsNotFound(err) {
			return ErrAssessmentNotFound
		}
		return err
	}
	if a.CourseID != courseCode {
		return ErrAssessmentNotFound
	}
	return nil
}

// Start opens the time record of p for the assessment, or returns the one already open.
func (svc *Service) Start(ctx context.Context, p core.Principal, courseCode, assessmentID string) (TimeRecord, error) {
	if err := svc.authorize(ctx, p, courseCode, assessmentID); err != nil {
		return TimeRecord{}, err
	}
	return svc.repo.CreateTimeRecord(ctx, TimeRecord{
		ID:            core.NewID(),
		StudentID:     p.ID,
		AssessmentID:  assessmentID,
		StartDatetime: svc.now(),
	})
}

// End closes the time record of p for the assessment.
func (svc *Service) End(ctx context.Context, p core.Principal, courseCode, assessmentID string) (TimeRecord, error) {
	if err := svc.authorize(ctx, p, courseCode, assessmentID); err != nil {
		return TimeRecord{}, err
	}
	ok, err := svc.repo.EndTimeRecord(ctx, assessmentID, p.ID, svc.now())
	if err != nil {
		return TimeRecord{}, err
	}
	if !ok {
		return TimeRecord{}, ErrNotFound
	}
	return svc.repo.GetTimeRecord(ctx, assessmentID, p.ID)
}
