package assessment

import (
	"context"

	"github.com/ChukwumaKingsley/smart-school-forked/core"
)

func (svc *Service) Get(ctx context.Context, p core.Principal, id string) (Assessment, error) {
	return svc.getForMember(ctx, p, id)
}

func (svc *Service) paper(ctx context.Context, a Assessment, withOptions bool) (Paper, error) {
	instructions, err := svc.repo.QueryInstructions(ctx, a.ID)
	if err != nil {
		return Paper{}, err
	}
	questions, err := svc.repo.QueryQuestions(ctx, a.ID, withOptions)
	if err != nil {
		return Paper{}, err
	}
	return Paper{Assessment: a, Instructions: instructions, Questions: questions}, nil
}

// hideAnswers strips is_correct from every option of questions.
func hideAnswers(questions []Question) {
	for i := range questions {
		for j := range questions[i].Options {
			questions[i].Options[j].IsCorrect = nil
		}
	}
}

// AssessmentQuestions returns the paper of an assessment. Students who already submitted only get its instructions.
func (svc *Service) AssessmentQuestions(ctx context.Context, p core.Principal, id string) (Paper, error) {
	a, err := svc.getForMember(ctx, p, id)
	if err != nil {
		return Paper{}, err
	}

	if !p.IsInstructor {
		n, err := svc.repo.CountSubmissions(ctx, id, p.ID)
		if err != nil {
			return Paper{}, err
		}
		if n > 0 {
			instructions, err := svc.repo.QueryInstructions(ctx, id)
			if err != nil {
				return Paper{}, err
			}
			return Paper{Assessment: a, Instructions: instructions, Questions: []Question{}}, nil
		}
	}

	paper, err := svc.paper(ctx, a, true)
	if err != nil {
		return Paper{}, err
	}
	for i, q := range paper.Questions {
		if !q.IsObjective() {
			paper.Questions[i].Options = []Option{}
		}
	}
	if !p.IsInstructor {
		hideAnswers(paper.Questions)
	}
	return paper, nil
}

// Questions returns the questions without options. Students only see them while the window is open.
func (svc *Service) Questions(ctx context.Context, p core.Principal, id string) ([]Question, error) {
	a, err := svc.getForMember(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if !p.IsInstructor {
		now := svc.now()
		if a.Status != StatusActive || now.Before(a.StartDate) || now.After(a.WindowEnd()) {
			return nil, ErrOutsideWindow
		}
	}
	return svc.repo.QueryQuestions(ctx, id, false)
}

func (svc *Service) reviewOpen(a Assessment) bool {
	opensAt := a.StartDate.Add(a.durationMinutes()).Add(svc.reviewAfter)
	return !svc.now().Before(opensAt)
}

// Review returns the full paper with the answers. Students only get it once the review delay has passed.
func (svc *Service) Review(ctx context.Context, p core.Principal, id string) (Paper, error) {
	a, err := svc.getForMember(ctx, p, id)
	if err != nil {
		return Paper{}, err
	}
	if !p.IsInstructor && !svc.reviewOpen(a) {
		return Paper{}, ErrReviewNotAvailable
	}
	return svc.paper(ctx, a, true)
}

func (svc *Service) ListByCourse(ctx context.Context, p core.Principal, courseID string, qf QueryFilter) ([]Assessment, error) {
	ok, err := svc.courses.CourseExists(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCourseNotFound
	}
	if err := svc.requireMember(ctx, p, courseID); err != nil {
		return nil, err
	}

	qf.Clean()
	var status Status
	if qf.Status != "" {
		if status, err = ParseStatus(qf.Status); err != nil {
			return nil, core.NewValidationError(err, core.FieldError{Field: "status", Error: "invalid status"})
		}
	}
	return svc.repo.QueryCourseAssessments(ctx, courseID, status, qf.IsMarked)
}

// Results lists the ranked results of every enrolled student.
func (svc *Service) Results(ctx context.Context, p core.Principal, id string, filter ResultFilter) ([]Result, error) {
	if _, err := svc.getForInstructor(ctx, p, id); err != nil {
		return nil, err
	}
	filter.Clean()
	return svc.repo.QueryResults(ctx, id, filter)
}

// getForResult allows the accepted instructors of the course and the student the result belongs to.
func (svc *Service) getForResult(ctx context.Context, p core.Principal, id, regNum string) (Assessment, error) {
	a, err := svc.repo.GetAssessment(ctx, id)
	if err != nil {
		return Assessment{}, err
	}
	if p.IsInstructor {
		return a, svc.requireInstructor(ctx, p, a.CourseID)
	}
	if p.ID != regNum {
		return Assessment{}, core.ErrAccessDenied
	}
	return a, svc.requireMember(ctx, p, a.CourseID)
}

// ResultStats returns the leaderboard row of one student.
func (svc *Service) ResultStats(ctx context.Context, p core.Principal, id, regNum string) (Result, error) {
	if _, err := svc.getForResult(ctx, p, id, regNum); err != nil {
		return Result{}, err
	}
	return svc.repo.GetResult(ctx, id, regNum)
}

// StudentResult returns the paper of an assessment annotated with the answers and marks of one student.
func (svc *Service) StudentResult(ctx context.Context, p core.Principal, id, regNum string) (Paper, error) {
	a, err := svc.getForResult(ctx, p, id, regNum)
	if err != nil {
		return Paper{}, err
	}
	if !p.IsInstructor && !svc.reviewOpen(a) {
		return Paper{}, ErrReviewNotAvailable
	}

	total, err := svc.repo.GetTotal(ctx, id, regNum)
	if err != nil {
		if core.IsNotFound(err) {
			return Paper{}, ErrResultNotFound
		}
		return Paper{}, err
	}
	paper, err := svc.paper(ctx, a, true)
	if err != nil {
		return Paper{}, err
	}
	subs, err := svc.repo.QuerySubmissions(ctx, id, regNum)
	if err != nil {
		return Paper{}, err
	}
	scores, err := svc.repo.QueryScores(ctx, id, regNum)
	if err != nil {
		return Paper{}, err
	}

	answers := make(map[string]*StudentAnswer, len(subs))
	for _, sub := range subs {
		answers[sub.QuestionID] = &StudentAnswer{StuAnswer: sub.StuAnswer, StuAnswerID: sub.StuAnswerID}
	}
	marks := make(map[string]float64, len(scores))
	for _, sc := range scores {
		marks[sc.QuestionID] = sc.Score
	}
	for i, q := range paper.Questions {
		paper.Questions[i].StuAnswers = answers[q.ID]
		if mark, ok := marks[q.ID]; ok {
			mark := mark
			paper.Questions[i].StuMark = &mark
		}
	}
	paper.Total = &total.Total
	return paper, nil
}

// stats computes the statistics of a, memoized in the cache until a changes or the TTL expires.
func (svc *Service) stats(ctx context.Context, a Assessment) (Stats, error) {
	var stats Stats
	key := statsKey(a.ID)
	found, err := svc.cache.Get(ctx, key, &stats)
	if err != nil {
		svc.logger.Warn("reading cached stats of assessment "+a.ID, err)
	} else if found {
		return stats, nil
	}

	data, err := svc.repo.GetStatsData(ctx, a)
	if err != nil {
		return Stats{}, err
	}
	stats = ComputeStats(a, data)
	if err := svc.cache.Set(ctx, key, stats, svc.statsTTL); err != nil {
		svc.logger.Warn("caching stats of assessment "+a.ID, err)
	}
	return stats, nil
}

func (svc *Service) Stats(ctx context.Context, p core.Principal, id string) (Stats, error) {
	a, err := svc.getForInstructor(ctx, p, id)
	if err != nil {
		return Stats{}, err
	}
	return svc.stats(ctx, a)
}

// CourseStats returns the statistics of every assessment of a course.
func (svc *Service) CourseStats(ctx context.Context, p core.Principal, courseID string) ([]CourseAssessmentStats, error) {
	ok, err := svc.courses.CourseExists(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCourseNotFound
	}
	if err := svc.requireInstructor(ctx, p, courseID); err != nil {
		return nil, err
	}

	asmts, err := svc.repo.QueryCourseAssessments(ctx, courseID, "", nil)
	if err != nil {
		return nil, err
	}
	out := make([]CourseAssessmentStats, 0, len(asmts))
	for _, a := range asmts {
		stats, err := svc.stats(ctx, a)
		if err != nil {
			return nil, err
		}
		out = append(out, CourseAssessmentStats{ID: a.ID, Title: a.Title, Type: a.Type, Stats: stats})
	}
	return out, nil
}
