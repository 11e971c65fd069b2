package assessment

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/ChukwumaKingsley/smart-school-forked/core"
)

func (svc *Service) questionsByID(ctx context.Context, id string, withOptions bool) (map[string]Question, error) {
	questions, err := svc.repo.QueryQuestions(ctx, id, withOptions)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	return byID, nil
}

// autoScore awards the mark of an objective question when the chosen option is one of its correct options.
func autoScore(q Question, optionID string) float64 {
	for _, o := range q.Options {
		if o.ID == optionID && o.IsCorrect != nil && *o.IsCorrect {
			return float64(q.Mark)
		}
	}
	return 0
}

// Submit records the answers of a student. Objective questions are scored right away.
func (svc *Service) Submit(ctx context.Context, p core.Principal, id string, ns NewSubmissions) (Total, error) {
	if !p.IsStudent() {
		return Total{}, core.ErrAccessDenied
	}
	a, err := svc.getForMember(ctx, p, id)
	if err != nil {
		return Total{}, err
	}
	now := svc.now()
	if a.Status != StatusActive || now.Before(a.StartDate) || now.After(a.WindowEnd()) {
		return Total{}, ErrNotOpen
	}
	n, err := svc.repo.CountSubmissions(ctx, id, p.ID)
	if err != nil {
		return Total{}, err
	}
	if n > 0 {
		return Total{}, ErrAlreadySubmitted
	}

	questions, err := svc.questionsByID(ctx, id, true)
	if err != nil {
		return Total{}, err
	}
	var (
		subs   = make([]Submission, 0, len(ns.Submissions))
		scores []Score
		seen   = make(map[string]bool, len(ns.Submissions))
	)
	for _, in := range ns.Submissions {
		q, ok := questions[in.QuestionID]
		if !ok {
			return Total{}, ErrQuestionNotFound
		}
		if seen[q.ID] {
			msg := fmt.Sprintf("question %s answered more than once", q.ID)
			return Total{}, core.NewValidationError(errors.New(msg), core.FieldError{Field: "submissions", Error: msg})
		}
		seen[q.ID] = true

		sub := Submission{
			ID:           core.NewID(),
			StudentID:    p.ID,
			QuestionID:   q.ID,
			AssessmentID: id,
		}
		if in.StuAnswer != "" {
			sub.StuAnswer = null.StringFrom(in.StuAnswer)
		}
		if in.StuAnswerID != "" {
			sub.StuAnswerID = null.StringFrom(in.StuAnswerID)
		}
		subs = append(subs, sub)

		if q.IsObjective() {
			scores = append(scores, Score{
				ID:           core.NewID(),
				StudentID:    p.ID,
				QuestionID:   q.ID,
				AssessmentID: id,
				Score:        autoScore(q, in.StuAnswerID),
			})
		}
	}

	total, err := svc.repo.SaveSubmissions(ctx, id, p.ID, subs, scores)
	if err != nil {
		return Total{}, err
	}
	svc.changed(ctx, p, a, core.EventSubmissionReceived, map[string]string{
		"student_id": p.ID,
		"total":      fmt.Sprintf("%g", total.Total),
	})
	return total, nil
}

// SetScores saves the scores given by an instructor and returns the updated totals.
func (svc *Service) SetScores(ctx context.Context, p core.Principal, id string, ns NewScores) ([]Total, error) {
	a, err := svc.getForInstructor(ctx, p, id)
	if err != nil {
		return nil, err
	}
	questions, err := svc.questionsByID(ctx, id, false)
	if err != nil {
		return nil, err
	}

	enrolled := make(map[string]bool)
	scores := make([]Score, 0, len(ns.Scores))
	for _, in := range ns.Scores {
		q, ok := questions[in.QuestionID]
		if !ok {
			return nil, ErrQuestionNotFound
		}
		if in.Score > float64(q.Mark) {
			msg := fmt.Sprintf("score must not exceed the question mark (%d)", q.Mark)
			return nil, core.NewValidationError(errors.New(msg), core.FieldError{Field: "score", Error: msg})
		}
		if _, checked := enrolled[in.StudentID]; !checked {
			ok, err := svc.courses.IsEnrolled(ctx, in.StudentID, a.CourseID, true)
			if err != nil {
				return nil, err
			}
			enrolled[in.StudentID] = ok
		}
		if !enrolled[in.StudentID] {
			msg := fmt.Sprintf("student %s is not enrolled in %s", in.StudentID, a.CourseID)
			return nil, core.NewValidationError(errors.New(msg), core.FieldError{Field: "student_id", Error: msg})
		}

		scores = append(scores, Score{
			ID:           core.NewID(),
			StudentID:    in.StudentID,
			QuestionID:   q.ID,
			AssessmentID: id,
			Score:        in.Score,
		})
	}

	totals, err := svc.repo.SaveScores(ctx, id, scores)
	if err != nil {
		return nil, err
	}
	svc.changed(ctx, p, a, "", nil)
	return totals, nil
}
