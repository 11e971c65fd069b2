package course

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/ChukwumaKingsley/smart-school-forked/core"
	"github.com/ChukwumaKingsley/smart-school-forked/core/user"
)

const photoSize = 400

var (
	// errors
	ErrNotFound             = core.NewNotFoundError("Course not found")
	ErrCourseDoesNotExist   = core.NewNotFoundError("Course does not exist")
	ErrNotCoordinator       = core.NewAccessDeniedError("This can only be performed by course coordinators")
	ErrInstructorNotFound   = core.NewNotFoundError("Course instructor not found")
	ErrEnrollmentNotFound   = core.NewNotFoundError("Join course request not found")
	ErrNoJoinRequests       = core.NewNotFoundError("No Join requests")
	ErrNoRequestsToDelete   = core.NewNotFoundError("No request to delete")
	ErrNotRegistered        = core.NewNotFoundError("not registered to partake in course")
	ErrStudentListForbidden = core.NewForbiddenError("Access denied")

	ErrCoordinatorCannotLeave = core.NewNotAllowedError("Course coordinators cannot cancel their enrollment.")
)

type (
	Repository interface {
		// CreateCourse inserts c and makes coordinatorID its accepted coordinator, atomically.
		CreateCourse(ctx context.Context, c Course, coordinatorID string) (Course, error)
		GetCourse(ctx context.Context, code string) (Course, error)
		UpdateCourse(ctx context.Context, c Course) (Course, error)
		SetCoursePhotoURL(ctx context.Context, code, url string) error
		DeleteCourse(ctx context.Context, code string) error
		QueryCourses(ctx context.Context, filter QueryFilter) ([]Course, error)
		// QueryUserCourses returns the courses p teaches (instructors) or is enrolled in (students).
		QueryUserCourses(ctx context.Context, p core.Principal, filter QueryFilter) ([]Course, error)
		QueryFaculties(ctx context.Context) ([]string, error)

		GetCourseInstructor(ctx context.Context, instructorID, code string) (CourseInstructor, error)
		CreateCourseInstructor(ctx context.Context, ci CourseInstructor) (CourseInstructor, error)
		AcceptCourseInstructor(ctx context.Context, instructorID, code string) (CourseInstructor, error)
		DeleteCourseInstructor(ctx context.Context, instructorID, code string) error
		// CountCourseInstructors counts coordinators and accepted instructors.
		CountCourseInstructors(ctx context.Context, code string) (int, error)
		QueryCourseInstructors(ctx context.Context, code string, group InstructorGroup) ([]CourseInstructorOut, error)

		GetEnrollment(ctx context.Context, regNum, code string) (Enrollment, error)
		// CreateEnrollments inserts every enrollment in a single transaction.
		CreateEnrollments(ctx context.Context, enrollments ...Enrollment) error
		DeleteEnrollment(ctx context.Context, regNum, code string) error
		// AcceptEnrollments accepts the pending enrollments of regNums (all of them when empty)
		// and returns the registration numbers actually accepted.
		AcceptEnrollments(ctx context.Context, code string, regNums ...string) ([]string, error)
		DeletePendingEnrollments(ctx context.Context, code string) (int64, error)
		CountEnrollments(ctx context.Context, code string, accepted bool) (int, error)
		QueryEnrolledStudents(ctx context.Context, code string, accepted bool, filter StudentFilter) ([]EnrolledStudent, error)
	}

	// UserGetter finds the account behind an enrollment.
	UserGetter interface {
		GetUserByID(ctx context.Context, id string) (user.User, error)
	}

	Service struct {
		repo    Repository
		users   UserGetter
		mailSvc core.EmailService
		events  core.EventPublisher
		storage core.FileStorage
		logger  core.Logger
	}
)

func NewService(
	repo Repository,
	users UserGetter,
	mailSvc core.EmailService,
	events core.EventPublisher,
	storage core.FileStorage,
	logger core.Logger,
) *Service {
	return &Service{
		repo:    repo,
		users:   users,
		mailSvc: mailSvc,
		events:  events,
		storage: storage,
		logger:  logger,
	}
}

func photoKey(code string) string { return fmt.Sprintf("course-photos/%s.jpg", code) }

// Access checks

// IsAcceptedInstructor reports whether instructorID teaches the course (accepted link).
func (svc *Service) IsAcceptedInstructor(ctx context.Context, instructorID, code string) (bool, error) {
	ci, err := svc.repo.GetCourseInstructor(ctx, instructorID, code)
	if err != nil {
		if core.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return ci.IsAccepted, nil
}

func (svc *Service) IsCoordinator(ctx context.Context, instructorID, code string) (bool, error) {
	ci, err := svc.repo.GetCourseInstructor(ctx, instructorID, code)
	if err != nil {
		if core.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return ci.IsCoordinator, nil
}

// IsEnrolled reports whether regNum has an enrollment in the course; acceptedOnly ignores pending ones.
func (svc *Service) IsEnrolled(ctx context.Context, regNum, code string, acceptedOnly bool) (bool, error) {
	e, err := svc.repo.GetEnrollment(ctx, regNum, code)
	if err != nil {
		if core.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return e.Accepted || !acceptedOnly, nil
}

func (svc *Service) CourseExists(ctx context.Context, code string) (bool, error) {
	if _, err := svc.repo.GetCourse(ctx, code); err != nil {
		if core.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (svc *Service) requireAcceptedInstructor(ctx context.Context, p core.Principal, code string, denied error) error {
	if !p.IsInstructor {
		return denied
	}
	ok, err := svc.IsAcceptedInstructor(ctx, p.ID, code)
	if err != nil {
		return err
	}
	if !ok {
		return denied
	}
	return nil
}

func (svc *Service) requireCoordinator(ctx context.Context, p core.Principal, code string) error {
	if !p.IsInstructor {
		return ErrNotCoordinator
	}
	ok, err := svc.IsCoordinator(ctx, p.ID, code)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotCoordinator
	}
	return nil
}

// Courses

func (svc *Service) Create(ctx context.Context, p core.Principal, in CourseInput) (Course, error) {
	if !p.IsInstructor {
		return Course{}, core.ErrAccessDenied
	}
	if exists, err := svc.CourseExists(ctx, in.Code); err != nil {
		return Course{}, err
	} else if exists {
		return Course{}, core.NewForbiddenError(fmt.Sprintf("course with code %s already exists", in.Code))
	}
	return svc.repo.CreateCourse(ctx, in.course(in.Code), p.ID)
}

func (svc *Service) Get(ctx context.Context, code string) (Course, error) {
	return svc.repo.GetCourse(ctx, code)
}

func (svc *Service) Update(ctx context.Context, p core.Principal, code string, in CourseInput) (Course, error) {
	if err := svc.requireAcceptedInstructor(ctx, p, code, core.ErrAccessDenied); err != nil {
		return Course{}, err
	}
	orig, err := svc.repo.GetCourse(ctx, code)
	if err != nil {
		return Course{}, err
	}
	c := in.course(code)
	c.PhotoURL = orig.PhotoURL
	return svc.repo.UpdateCourse(ctx, c)
}

func (svc *Service) UploadPhoto(ctx context.Context, p core.Principal, code string, r io.Reader) (Course, error) {
	if err := svc.requireAcceptedInstructor(ctx, p, code, core.ErrAccessDenied); err != nil {
		return Course{}, err
	}
	c, err := svc.repo.GetCourse(ctx, code)
	if err != nil {
		return Course{}, err
	}

	buf, err := core.ProcessPhoto(r, photoSize, photoSize, core.PhotoFill)
	if err != nil {
		return Course{}, err
	}
	url, err := svc.storage.Put(ctx, photoKey(code), core.PhotoContentType, buf)
	if err != nil {
		return Course{}, errors.Wrap(err, "storing photo")
	}
	if err := svc.repo.SetCoursePhotoURL(ctx, code, url); err != nil {
		return Course{}, err
	}
	c.PhotoURL.SetValid(url)
	return c, nil
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Course, error) {
	filter.Clean()
	return svc.repo.QueryCourses(ctx, filter)
}

// QueryEnrollments lists the courses of the caller.
func (svc *Service) QueryEnrollments(ctx context.Context, p core.Principal, filter QueryFilter) ([]Course, error) {
	filter.Clean()
	return svc.repo.QueryUserCourses(ctx, p, filter)
}

func (svc *Service) Faculties(ctx context.Context) ([]string, error) {
	return svc.repo.QueryFaculties(ctx)
}

func (svc *Service) EnrollmentStatus(ctx context.Context, p core.Principal, code string) (EnrollmentStatus, error) {
	var status EnrollmentStatus
	if p.IsInstructor {
		ci, err := svc.repo.GetCourseInstructor(ctx, p.ID, code)
		if err != nil {
			if core.IsNotFound(err) {
				return status, nil
			}
			return status, err
		}
		status.InstructorEnrollmentPending = !ci.IsAccepted
		if ci.IsAccepted || ci.IsCoordinator {
			status.IsCourseInstructor = ci.IsAccepted
			status.IsCourseCoordinator = ci.IsCoordinator
		}
		return status, nil
	}

	e, err := svc.repo.GetEnrollment(ctx, p.ID, code)
	if err != nil {
		if core.IsNotFound(err) {
			return status, nil
		}
		return status, err
	}
	status.IsEnrolled = e.Accepted
	status.EnrollmentPending = !e.Accepted
	return status, nil
}

// Delete removes the course with everything attached to it, including its stored photo.
func (svc *Service) Delete(ctx context.Context, p core.Principal, code string) error {
	if err := svc.requireCoordinator(ctx, p, code); err != nil {
		if err == ErrNotCoordinator {
			return core.ErrAccessDenied
		}
		return err
	}
	c, err := svc.repo.GetCourse(ctx, code)
	if err != nil {
		return err
	}
	if err := svc.repo.DeleteCourse(ctx, code); err != nil {
		return err
	}
	if c.PhotoURL.Valid {
		if err := svc.storage.Delete(ctx, photoKey(code)); err != nil {
			svc.logger.Error(fmt.Sprintf("deleting photo of course %s: %v", code, err), err)
		}
	}
	return nil
}
