package course

import (
	"context"

	"github.com/ChukwumaKingsley/smart-school-forked/core"
)

func (svc *Service) CountInstructors(ctx context.Context, code string) (int, error) {
	return svc.repo.CountCourseInstructors(ctx, code)
}

// ToggleInstructorRequest creates a pending join request for the caller, or cancels the existing one.
// It reports whether a request was created.
func (svc *Service) ToggleInstructorRequest(ctx context.Context, p core.Principal, code string) (bool, error) {
	if !p.IsInstructor {
		return false, core.ErrAccessDenied
	}
	if ci, err := svc.repo.GetCourseInstructor(ctx, p.ID, code); err == nil {
		if ci.IsCoordinator {
			return false, ErrCoordinatorCannotLeave
		}
		return false, svc.repo.DeleteCourseInstructor(ctx, p.ID, code)
	} else if !core.IsNotFound(err) {
		return false, err
	}

	if _, err := svc.repo.GetCourse(ctx, code); err != nil {
		return false, err
	}
	_, err := svc.repo.CreateCourseInstructor(ctx, CourseInstructor{InstructorID: p.ID, CourseCode: code})
	return err == nil, err
}

// Join files a pending join request for the caller.
func (svc *Service) Join(ctx context.Context, p core.Principal, code string) (CourseInstructor, error) {
	if !p.IsInstructor {
		return CourseInstructor{}, core.ErrAccessDenied
	}
	if _, err := svc.repo.GetCourse(ctx, code); err != nil {
		return CourseInstructor{}, err
	}
	return svc.repo.CreateCourseInstructor(ctx, CourseInstructor{InstructorID: p.ID, CourseCode: code})
}

// ListInstructors lists the instructors of group, flagging the caller.
func (svc *Service) ListInstructors(ctx context.Context, p core.Principal, code string, group InstructorGroup) ([]CourseInstructorOut, error) {
	instructors, err := svc.repo.QueryCourseInstructors(ctx, code, group)
	if err != nil {
		return nil, err
	}
	for i := range instructors {
		instructors[i].IsCurrentUser = instructors[i].InstructorID == p.ID
	}
	return instructors, nil
}

func (svc *Service) ApproveInstructor(ctx context.Context, p core.Principal, instructorID, code string) (CourseInstructor, error) {
	if err := svc.requireCoordinator(ctx, p, code); err != nil {
		return CourseInstructor{}, err
	}
	ci, err := svc.repo.AcceptCourseInstructor(ctx, instructorID, code)
	if core.IsNotFound(err) {
		return CourseInstructor{}, ErrInstructorNotFound
	}
	return ci, err
}

func (svc *Service) RemoveInstructor(ctx context.Context, p core.Principal, instructorID, code string) error {
	if err := svc.requireCoordinator(ctx, p, code); err != nil {
		return err
	}
	if _, err := svc.repo.GetCourseInstructor(ctx, instructorID, code); err != nil {
		if core.IsNotFound(err) {
			return ErrInstructorNotFound
		}
		return err
	}
	return svc.repo.DeleteCourseInstructor(ctx, instructorID, code)
}
