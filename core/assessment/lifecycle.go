package assessment

import (
	"context"

	"github.com/pkg/errors"

	"github.com/ChukwumaKingsley/smart-school-forked/core"
)

// Create schedules a new draft assessment.
func (svc *Service) Create(ctx context.Context, p core.Principal, na NewAssessment) (Assessment, error) {
	if err := svc.requireInstructor(ctx, p, na.CourseID); err != nil {
		return Assessment{}, err
	}
	if !na.StartDate.After(svc.now()) {
		return Assessment{}, ErrStartInPast
	}
	if !na.StartDate.Before(na.EndDate) {
		return Assessment{}, ErrEndBeforeStart
	}

	a, err := svc.repo.CreateAssessment(ctx, Assessment{
		ID:        core.NewID(),
		Title:     na.Title,
		StartDate: na.StartDate,
		EndDate:   na.EndDate,
		Duration:  na.Duration,
		TotalMark: na.TotalMark,
		Type:      na.Type,
		Status:    StatusDraft,
		CourseID:  na.CourseID,
	})
	if err != nil {
		return Assessment{}, err
	}
	svc.changed(ctx, p, a, core.EventAssessmentCreated, nil)
	return a, nil
}

func (svc *Service) Update(ctx context.Context, p core.Principal, id string, ua UpdateAssessment) (Assessment, error) {
	a, err := svc.getForInstructor(ctx, p, id)
	if err != nil {
		return Assessment{}, err
	}
	if a.Status == StatusCompleted {
		return Assessment{}, ErrEndedEdit
	}

	a.Title = ua.Title
	a.Duration = ua.Duration
	a.TotalMark = ua.TotalMark
	a.Type = ua.Type
	if a, err = svc.repo.UpdateAssessment(ctx, a); err != nil {
		return Assessment{}, err
	}
	svc.changed(ctx, p, a, "", nil)
	return a, nil
}

func (svc *Service) EditSchedule(ctx context.Context, p core.Principal, id string, s Schedule) (Assessment, error) {
	a, err := svc.getForInstructor(ctx, p, id)
	if err != nil {
		return Assessment{}, err
	}

	now := svc.now()
	switch {
	case !s.StartDate.After(now):
		return Assessment{}, ErrScheduleStartInPast
	case a.Status == StatusActive && a.StartDate.Before(now):
		return Assessment{}, ErrLiveSchedule
	case a.Status == StatusCompleted || a.IsMarked:
		return Assessment{}, ErrEndedSchedule
	case !s.StartDate.Before(s.EndDate):
		return Assessment{}, ErrEndBeforeStart
	}

	a.StartDate = s.StartDate
	a.EndDate = s.EndDate
	a.Duration = s.Duration
	if a, err = svc.repo.UpdateAssessment(ctx, a); err != nil {
		return Assessment{}, err
	}
	svc.changed(ctx, p, a, "", nil)
	return a, nil
}

// transition moves a to the status `to` as long as it is still in one of from.
// Losing a race is fine when the row already reached `to`.
func (svc *Service) transition(ctx context.Context, p core.Principal, a Assessment, event string, to Status, from ...Status) (Assessment, error) {
	ok, err := svc.repo.UpdateStatus(ctx, a.ID, to, from...)
	if err != nil {
		return Assessment{}, err
	}
	if !ok {
		cur, err := svc.repo.GetAssessment(ctx, a.ID)
		if err != nil {
			return Assessment{}, err
		}
		if cur.Status == to {
			return cur, nil
		}
		return Assessment{}, ErrStateChanged
	}

	a.Status = to
	a.SyncFlags()
	svc.changed(ctx, p, a, event, nil)
	return a, nil
}

// Activate publishes a draft assessment to the students of its course.
func (svc *Service) Activate(ctx context.Context, p core.Principal, id string) (Assessment, error) {
	a, err := svc.getForInstructor(ctx, p, id)
	if err != nil {
		return Assessment{}, err
	}
	n, err := svc.repo.CountQuestions(ctx, id)
	if err != nil {
		return Assessment{}, err
	}

	switch {
	case n == 0:
		return Assessment{}, ErrNoQuestions
	case a.StartDate.Before(svc.now()):
		return Assessment{}, ErrStartPassed
	case a.Status == StatusCompleted:
		return Assessment{}, ErrAlreadyEnded
	case a.Status == StatusActive:
		return a, nil
	}
	return svc.transition(ctx, p, a, core.EventAssessmentActivated, StatusActive, StatusDraft)
}

// Deactivate sends an active assessment back to draft before it starts.
func (svc *Service) Deactivate(ctx context.Context, p core.Principal, id string) (Assessment, error) {
	a, err := svc.getForInstructor(ctx, p, id)
	if err != nil {
		return Assessment{}, err
	}

	switch {
	case svc.now().After(a.StartDate):
		return Assessment{}, ErrAlreadyStarted
	case a.Status == StatusCompleted:
		return Assessment{}, ErrAlreadyEnded
	case a.Status == StatusDraft:
		return a, nil
	}
	return svc.transition(ctx, p, a, core.EventAssessmentDeactivated, StatusDraft, StatusActive)
}

// EndAutomatic completes the assessment once its end date is reached, and does nothing before.
// Any authenticated caller may trigger it.
func (svc *Service) EndAutomatic(ctx context.Context, p core.Principal, id string) (Assessment, error) {
	a, err := svc.repo.GetAssessment(ctx, id)
	if err != nil {
		return Assessment{}, err
	}
	if a.Status == StatusCompleted || svc.now().Before(a.EndDate) {
		return a, nil
	}
	return svc.transition(ctx, p, a, core.EventAssessmentCompleted, StatusCompleted, StatusCompleted.sources()...)
}

// EndManual lets an instructor complete a started assessment before its end date.
func (svc *Service) EndManual(ctx context.Context, p core.Principal, id string) (Assessment, error) {
	a, err := svc.getForInstructor(ctx, p, id)
	if err != nil {
		return Assessment{}, err
	}
	if !a.StartDate.Before(svc.now()) {
		return Assessment{}, ErrNotStarted
	}
	if a.Status == StatusCompleted {
		return a, nil
	}
	return svc.transition(ctx, p, a, core.EventAssessmentCompleted, StatusCompleted, StatusCompleted.sources()...)
}

// Mark flags a completed assessment as marked.
func (svc *Service) Mark(ctx context.Context, p core.Principal, id string) (Assessment, error) {
	a, err := svc.getForInstructor(ctx, p, id)
	if err != nil {
		return Assessment{}, err
	}
	if a.Status != StatusCompleted {
		return Assessment{}, ErrNotEnded
	}
	if a.IsMarked {
		return a, nil
	}

	ok, err := svc.repo.MarkAssessment(ctx, id)
	if err != nil {
		return Assessment{}, err
	}
	if !ok {
		return Assessment{}, ErrStateChanged
	}
	a.IsMarked = true
	svc.changed(ctx, p, a, core.EventAssessmentMarked, nil)
	return a, nil
}

// Delete removes the assessment with its content, submissions, scores, totals and time records.
func (svc *Service) Delete(ctx context.Context, p core.Principal, id string) error {
	a, err := svc.getForInstructor(ctx, p, id)
	if err != nil {
		return err
	}
	if err := svc.repo.DeleteAssessment(ctx, id); err != nil {
		return err
	}
	svc.changed(ctx, p, a, core.EventAssessmentDeleted, nil)
	return nil
}

// EndDue completes every open assessment whose end date has passed and returns how many were completed.
func (svc *Service) EndDue(ctx context.Context) (int, error) {
	open, err := svc.repo.QueryOpenAssessments(ctx)
	if err != nil {
		return 0, err
	}

	var (
		ended int
		now   = svc.now()
		p     = core.Principal{}
	)
	for _, a := range open {
		if now.Before(a.EndDate) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return ended, err
		}
		if _, err := svc.transition(ctx, p, a, core.EventAssessmentCompleted, StatusCompleted, StatusCompleted.sources()...); err != nil {
			if core.IsNotAllowed(err) || core.IsNotFound(err) {
				continue
			}
			return ended, errors.Wrapf(err, "ending assessment %s", a.ID)
		}
		ended++
	}
	return ended, nil
}
