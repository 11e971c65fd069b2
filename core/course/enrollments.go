package course

import (
	"context"
	"fmt"
	"io"
	"net/mail"

	"github.com/ChukwumaKingsley/smart-school-forked/core"
)

func (svc *Service) CountStudents(ctx context.Context, code string) (int, error) {
	if exists, err := svc.CourseExists(ctx, code); err != nil {
		return 0, err
	} else if !exists {
		return 0, ErrCourseDoesNotExist
	}
	return svc.repo.CountEnrollments(ctx, code, true)
}

// ListStudents lists the accepted (or pending) students of a course to its instructors.
func (svc *Service) ListStudents(ctx context.Context, p core.Principal, code string, accepted bool, filter StudentFilter) ([]EnrolledStudent, error) {
	if err := svc.requireAcceptedInstructor(ctx, p, code, ErrStudentListForbidden); err != nil {
		return nil, err
	}
	filter.Clean()
	return svc.repo.QueryEnrolledStudents(ctx, code, accepted, filter)
}

// ImportStudents enrolls (pending) every registration number of a CSV class list.
// Either all rows are inserted or none.
func (svc *Service) ImportStudents(ctx context.Context, p core.Principal, code string, r io.Reader) (int, error) {
	if err := svc.requireAcceptedInstructor(ctx, p, code, core.ErrAccessDenied); err != nil {
		return 0, err
	}
	regNums, err := parseRegNums(r)
	if err != nil {
		return 0, err
	}

	enrollments := make([]Enrollment, 0, len(regNums))
	for _, regNum := range regNums {
		enrollments = append(enrollments, Enrollment{ID: core.NewID(), CourseCode: code, RegNum: regNum})
	}
	if err := svc.repo.CreateEnrollments(ctx, enrollments...); err != nil {
		return 0, err
	}
	return len(enrollments), nil
}

// ToggleEnrollmentRequest creates a pending enrollment for the calling student, or cancels the existing one.
// It reports whether a request was created.
func (svc *Service) ToggleEnrollmentRequest(ctx context.Context, p core.Principal, code string) (bool, error) {
	if !p.IsStudent() {
		return false, core.ErrAccessDenied
	}
	if _, err := svc.repo.GetEnrollment(ctx, p.ID, code); err == nil {
		return false, svc.repo.DeleteEnrollment(ctx, p.ID, code)
	} else if !core.IsNotFound(err) {
		return false, err
	}

	if _, err := svc.repo.GetCourse(ctx, code); err != nil {
		return false, err
	}
	err := svc.repo.CreateEnrollments(ctx, Enrollment{ID: core.NewID(), CourseCode: code, RegNum: p.ID})
	return err == nil, err
}

// Enroll adds one student to a course on behalf of one of its instructors.
func (svc *Service) Enroll(ctx context.Context, p core.Principal, ne NewEnrollment) (Enrollment, error) {
	if err := svc.requireAcceptedInstructor(ctx, p, ne.CourseCode, core.ErrAccessDenied); err != nil {
		return Enrollment{}, err
	}
	e := Enrollment{ID: core.NewID(), CourseCode: ne.CourseCode, RegNum: ne.RegNum, Accepted: ne.Accepted}
	if err := svc.repo.CreateEnrollments(ctx, e); err != nil {
		return Enrollment{}, err
	}
	return e, nil
}

func (svc *Service) ApproveEnrollment(ctx context.Context, p core.Principal, code, regNum string) error {
	if err := svc.requireAcceptedInstructor(ctx, p, code, core.ErrAccessDenied); err != nil {
		return err
	}
	if _, err := svc.repo.GetEnrollment(ctx, regNum, code); err != nil {
		if core.IsNotFound(err) {
			return ErrEnrollmentNotFound
		}
		return err
	}
	accepted, err := svc.repo.AcceptEnrollments(ctx, code, regNum)
	if err != nil {
		return err
	}
	svc.notifyApproved(ctx, p, code, accepted)
	return nil
}

// ApproveAllEnrollments accepts every pending enrollment of a course and returns how many were accepted.
func (svc *Service) ApproveAllEnrollments(ctx context.Context, p core.Principal, code string) (int, error) {
	if err := svc.requireAcceptedInstructor(ctx, p, code, core.ErrAccessDenied); err != nil {
		return 0, err
	}
	accepted, err := svc.repo.AcceptEnrollments(ctx, code)
	if err != nil {
		return 0, err
	}
	if len(accepted) == 0 {
		return 0, ErrNoJoinRequests
	}
	svc.notifyApproved(ctx, p, code, accepted)
	return len(accepted), nil
}

// Accept lets a student accept the enrollment an instructor made for them.
func (svc *Service) Accept(ctx context.Context, p core.Principal, code string) (Enrollment, error) {
	if !p.IsStudent() {
		return Enrollment{}, core.ErrAccessDenied
	}
	if _, err := svc.repo.GetEnrollment(ctx, p.ID, code); err != nil {
		if core.IsNotFound(err) {
			return Enrollment{}, ErrNotRegistered
		}
		return Enrollment{}, err
	}
	if _, err := svc.repo.AcceptEnrollments(ctx, code, p.ID); err != nil {
		return Enrollment{}, err
	}
	return svc.repo.GetEnrollment(ctx, p.ID, code)
}

func (svc *Service) RemoveStudent(ctx context.Context, p core.Principal, code, regNum string) error {
	if err := svc.requireAcceptedInstructor(ctx, p, code, core.ErrAccessDenied); err != nil {
		return err
	}
	if _, err := svc.repo.GetEnrollment(ctx, regNum, code); err != nil {
		if core.IsNotFound(err) {
			return core.NewNotFoundError("Enrollment not found")
		}
		return err
	}
	return svc.repo.DeleteEnrollment(ctx, regNum, code)
}

// RemovePendingStudents deletes every pending enrollment of a course.
func (svc *Service) RemovePendingStudents(ctx context.Context, p core.Principal, code string) error {
	if err := svc.requireAcceptedInstructor(ctx, p, code, core.ErrAccessDenied); err != nil {
		return err
	}
	n, err := svc.repo.DeletePendingEnrollments(ctx, code)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNoRequestsToDelete
	}
	return nil
}

// notifyApproved emails the approved students that have an account and publishes one event per student.
func (svc *Service) notifyApproved(ctx context.Context, p core.Principal, code string, regNums []string) {
	if len(regNums) == 0 {
		return
	}
	c, err := svc.repo.GetCourse(ctx, code)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("notifying approved enrollments of %s: %v", code, err), err, p)
		return
	}

	msgs := make([]*core.EmailMessage, 0, len(regNums))
	events := make([]core.Event, 0, len(regNums))
	for _, regNum := range regNums {
		events = append(events, core.NewEvent(core.EventEnrollmentApproved, code, p.ID, map[string]string{"reg_num": regNum}))

		stu, err := svc.users.GetUserByID(ctx, regNum)
		if err != nil {
			if !core.IsNotFound(err) {
				svc.logger.Error(fmt.Sprintf("getting student %s: %v", regNum, err), err, p)
			}
			continue
		}
		msgs = append(msgs, &core.EmailMessage{
			To:           []mail.Address{{Name: stu.Name, Address: stu.Email}},
			Subject:      fmt.Sprintf("%s: enrollment approved", c.Code),
			TemplateName: "enrollment_approved",
			TemplateData: map[string]string{
				"Name":        stu.Name,
				"CourseCode":  c.Code,
				"CourseTitle": c.Title,
			},
		})
	}

	if len(msgs) > 0 {
		svc.mailSvc.SendMessages(msgs...)
	}
	if err := svc.events.Publish(ctx, events...); err != nil {
		svc.logger.Error(fmt.Sprintf("publishing %s events: %v", core.EventEnrollmentApproved, err), err, p)
	}
}
