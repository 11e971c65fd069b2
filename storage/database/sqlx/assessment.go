package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/ChukwumaKingsley/smart-school-forked/core"
	"github.com/ChukwumaKingsley/smart-school-forked/core/assessment"
)

var (
	assessmentColumns  = []string{"id", "title", "start_date", "end_date", "duration", "total_mark", "assessment_type", "status", "is_marked", "course_id"}
	instructionColumns = []string{"id", "assessment_id", "instruction"}
	questionColumns    = []string{"id", "assessment_id", "question", "mark", "is_multi_choice", "question_type", "tolerance", "num_answer"}
	optionColumns      = []string{"id", "question_id", "option_text", "is_correct"}
	submissionColumns  = []string{"id", "student_id", "question_id", "assessment_id", "stu_answer", "stu_answer_id"}
	scoreColumns       = []string{"id", "student_id", "question_id", "assessment_id", "score"}
	totalColumns       = []string{"id", "student_id", "assessment_id", "total"}

	resultColumns = map[string]string{
		"name":    "s.name",
		"total":   "t.total",
		"reg_num": "s.id",
	}
)

type assessmentRepository struct {
	repo
}

var _ assessment.Repository = (*assessmentRepository)(nil) // interface compliance check

func NewAssessmentRepository(db *sqlx.DB) *assessmentRepository {
	return &assessmentRepository{repo: newRepo(db)}
}

// Assessments

func (repo assessmentRepository) CreateAssessment(ctx context.Context, a assessment.Assessment) (assessment.Assessment, error) {
	q := repo.sb.Insert("assessments").Columns(assessmentColumns...).Values(
		a.ID, a.Title, a.StartDate.UTC(), a.EndDate.UTC(), a.Duration, a.TotalMark, a.Type, a.Status.String(), a.IsMarked, a.CourseID,
	)
	if _, err := repo.exec(ctx, repo.db, q); err != nil {
		return assessment.Assessment{}, trapErr(err, assessment.ErrCourseNotFound, "inserting assessment")
	}
	a.SyncFlags()
	return a, nil
}

func (repo assessmentRepository) GetAssessment(ctx context.Context, id string) (assessment.Assessment, error) {
	var a assessment.Assessment
	q := repo.sb.Select(assessmentColumns...).From("assessments").Where(sq.Eq{"id": id})
	if err := repo.get(ctx, repo.db, &a, q); err != nil {
		return assessment.Assessment{}, trapErr(err, assessment.ErrNotFound, "getting assessment")
	}
	a.StartDate, a.EndDate = a.StartDate.UTC(), a.EndDate.UTC()
	a.SyncFlags()
	return a, nil
}

func (repo assessmentRepository) UpdateAssessment(ctx context.Context, a assessment.Assessment) (assessment.Assessment, error) {
	q := repo.sb.Update("assessments").
		Set("title", a.Title).
		Set("start_date", a.StartDate.UTC()).
		Set("end_date", a.EndDate.UTC()).
		Set("duration", a.Duration).
		Set("total_mark", a.TotalMark).
		Set("assessment_type", a.Type).
		Where(sq.Eq{"id": a.ID})
	n, err := repo.exec(ctx, repo.db, q)
	if err != nil {
		return assessment.Assessment{}, trapErr(err, assessment.ErrNotFound, "updating assessment")
	}
	if n == 0 {
		return assessment.Assessment{}, assessment.ErrNotFound
	}
	a.SyncFlags()
	return a, nil
}

func (repo assessmentRepository) UpdateStatus(ctx context.Context, id string, to assessment.Status, from ...assessment.Status) (bool, error) {
	if len(from) == 0 {
		return false, nil
	}
	statuses := make([]string, len(from))
	for i, st := range from {
		statuses[i] = st.String()
	}
	q := repo.sb.Update("assessments").
		Set("status", to.String()).
		Where(sq.Eq{"id": id, "status": statuses})
	n, err := repo.exec(ctx, repo.db, q)
	if err != nil {
		return false, trapErr(err, assessment.ErrNotFound, "updating assessment status")
	}
	return n > 0, nil
}

func (repo assessmentRepository) MarkAssessment(ctx context.Context, id string) (bool, error) {
	q := repo.sb.Update("assessments").
		Set("is_marked", true).
		Where(sq.Eq{"id": id, "status": assessment.StatusCompleted.String()})
	n, err := repo.exec(ctx, repo.db, q)
	if err != nil {
		return false, trapErr(err, assessment.ErrNotFound, "marking assessment")
	}
	return n > 0, nil
}

func (repo assessmentRepository) DeleteAssessment(ctx context.Context, id string) error {
	n, err := repo.exec(ctx, repo.db, repo.sb.Delete("assessments").Where(sq.Eq{"id": id}))
	if err != nil {
		return trapErr(err, assessment.ErrNotFound, "deleting assessment")
	}
	if n == 0 {
		return assessment.ErrNotFound
	}
	return nil
}

func (repo assessmentRepository) queryAssessments(ctx context.Context, where sq.Sqlizer) ([]assessment.Assessment, error) {
	asmts := make([]assessment.Assessment, 0)
	q := repo.sb.Select(assessmentColumns...).From("assessments").Where(where).OrderBy("start_date", "id")
	if err := repo.sel(ctx, repo.db, &asmts, q); err != nil {
		return nil, trapErr(err, assessment.ErrNotFound, "querying assessments")
	}
	for i := range asmts {
		asmts[i].StartDate, asmts[i].EndDate = asmts[i].StartDate.UTC(), asmts[i].EndDate.UTC()
		asmts[i].SyncFlags()
	}
	return asmts, nil
}

func (repo assessmentRepository) QueryCourseAssessments(ctx context.Context, courseID string, status assessment.Status, isMarked *bool) ([]assessment.Assessment, error) {
	where := sq.Eq{"course_id": courseID}
	if status != "" {
		where["status"] = status.String()
	}
	if isMarked != nil {
		where["is_marked"] = *isMarked
	}
	return repo.queryAssessments(ctx, where)
}

func (repo assessmentRepository) QueryOpenAssessments(ctx context.Context) ([]assessment.Assessment, error) {
	return repo.queryAssessments(ctx, sq.NotEq{"status": assessment.StatusCompleted.String()})
}

// Instructions

func (repo assessmentRepository) QueryInstructions(ctx context.Context, assessmentID string) ([]assessment.Instruction, error) {
	instructions := make([]assessment.Instruction, 0)
	q := repo.sb.Select(instructionColumns...).From("instructions").Where(sq.Eq{"assessment_id": assessmentID}).OrderBy("id")
	if err := repo.sel(ctx, repo.db, &instructions, q); err != nil {
		return nil, trapErr(err, assessment.ErrInstructionNotFound, "querying instructions")
	}
	return instructions, nil
}

func (repo assessmentRepository) CreateInstructions(ctx context.Context, instructions ...assessment.Instruction) error {
	if len(instructions) == 0 {
		return nil
	}
	q := repo.sb.Insert("instructions").Columns(instructionColumns...)
	for _, ins := range instructions {
		q = q.Values(ins.ID, ins.AssessmentID, ins.Instruction)
	}
	_, err := repo.exec(ctx, repo.db, q)
	return trapErr(err, assessment.ErrNotFound, "inserting instructions")
}

func (repo assessmentRepository) GetInstruction(ctx context.Context, id string) (assessment.Instruction, error) {
	var ins assessment.Instruction
	q := repo.sb.Select(instructionColumns...).From("instructions").Where(sq.Eq{"id": id})
	if err := repo.get(ctx, repo.db, &ins, q); err != nil {
		return assessment.Instruction{}, trapErr(err, assessment.ErrInstructionNotFound, "getting instruction")
	}
	return ins, nil
}

func (repo assessmentRepository) UpdateInstruction(ctx context.Context, ins assessment.Instruction) error {
	q := repo.sb.Update("instructions").Set("instruction", ins.Instruction).Where(sq.Eq{"id": ins.ID})
	n, err := repo.exec(ctx, repo.db, q)
	if err != nil {
		return trapErr(err, assessment.ErrInstructionNotFound, "updating instruction")
	}
	if n == 0 {
		return assessment.ErrInstructionNotFound
	}
	return nil
}

func (repo assessmentRepository) DeleteInstruction(ctx context.Context, id string) error {
	n, err := repo.exec(ctx, repo.db, repo.sb.Delete("instructions").Where(sq.Eq{"id": id}))
	if err != nil {
		return trapErr(err, assessment.ErrInstructionNotFound, "deleting instruction")
	}
	if n == 0 {
		return assessment.ErrInstructionNotFound
	}
	return nil
}

// Questions

func (repo assessmentRepository) CountQuestions(ctx context.Context, assessmentID string) (int, error) {
	var n int
	q := repo.sb.Select("COUNT(*)").From("questions").Where(sq.Eq{"assessment_id": assessmentID})
	if err := repo.get(ctx, repo.db, &n, q); err != nil {
		return 0, trapErr(err, assessment.ErrNotFound, "counting questions")
	}
	return n, nil
}

func (repo assessmentRepository) QueryQuestions(ctx context.Context, assessmentID string, withOptions bool) ([]assessment.Question, error) {
	questions := make([]assessment.Question, 0)
	q := repo.sb.Select(questionColumns...).From("questions").Where(sq.Eq{"assessment_id": assessmentID}).OrderBy("id")
	if err := repo.sel(ctx, repo.db, &questions, q); err != nil {
		return nil, trapErr(err, assessment.ErrQuestionNotFound, "querying questions")
	}
	if !withOptions || len(questions) == 0 {
		return questions, nil
	}

	var options []assessment.Option
	oq := repo.sb.Select(prefixed("o", optionColumns)...).
		From("options o").
		Join("questions q ON q.id = o.question_id").
		Where(sq.Eq{"q.assessment_id": assessmentID}).
		OrderBy("o.id")
	if err := repo.sel(ctx, repo.db, &options, oq); err != nil {
		return nil, trapErr(err, assessment.ErrOptionNotFound, "querying options")
	}

	byQuestion := make(map[string][]assessment.Option, len(questions))
	for _, o := range options {
		byQuestion[o.QuestionID] = append(byQuestion[o.QuestionID], o)
	}
	for i := range questions {
		questions[i].Options = byQuestion[questions[i].ID]
		if questions[i].Options == nil {
			questions[i].Options = []assessment.Option{}
		}
	}
	return questions, nil
}

func (repo assessmentRepository) GetQuestion(ctx context.Context, id string) (assessment.Question, error) {
	var qn assessment.Question
	q := repo.sb.Select(questionColumns...).From("questions").Where(sq.Eq{"id": id})
	if err := repo.get(ctx, repo.db, &qn, q); err != nil {
		return assessment.Question{}, trapErr(err, assessment.ErrQuestionNotFound, "getting question")
	}
	return qn, nil
}

func (repo assessmentRepository) insertOptions(ctx context.Context, e sqlx.ExecerContext, options []assessment.Option) error {
	if len(options) == 0 {
		return nil
	}
	q := repo.sb.Insert("options").Columns(optionColumns...)
	for _, o := range options {
		q = q.Values(o.ID, o.QuestionID, o.Option, o.IsCorrect != nil && *o.IsCorrect)
	}
	_, err := repo.exec(ctx, e, q)
	return trapErr(err, assessment.ErrQuestionNotFound, "inserting options")
}

func (repo assessmentRepository) CreateQuestion(ctx context.Context, qn assessment.Question) error {
	return repo.withTx(ctx, func(tx *sqlx.Tx) error {
		q := repo.sb.Insert("questions").Columns(questionColumns...).Values(
			qn.ID, qn.AssessmentID, qn.Question, qn.Mark, qn.IsMultiChoice, qn.QuestionType, qn.Tolerance, qn.NumAnswer,
		)
		if _, err := repo.exec(ctx, tx, q); err != nil {
			return trapErr(err, assessment.ErrNotFound, "inserting question")
		}
		return repo.insertOptions(ctx, tx, qn.Options)
	})
}

func (repo assessmentRepository) UpdateQuestion(ctx context.Context, qn assessment.Question) error {
	q := repo.sb.Update("questions").
		Set("question", qn.Question).
		Set("mark", qn.Mark).
		Set("is_multi_choice", qn.IsMultiChoice).
		Set("question_type", qn.QuestionType).
		Set("tolerance", qn.Tolerance).
		Set("num_answer", qn.NumAnswer).
		Where(sq.Eq{"id": qn.ID})
	n, err := repo.exec(ctx, repo.db, q)
	if err != nil {
		return trapErr(err, assessment.ErrQuestionNotFound, "updating question")
	}
	if n == 0 {
		return assessment.ErrQuestionNotFound
	}
	return nil
}

func (repo assessmentRepository) DeleteQuestion(ctx context.Context, id string) error {
	n, err := repo.exec(ctx, repo.db, repo.sb.Delete("questions").Where(sq.Eq{"id": id}))
	if err != nil {
		return trapErr(err, assessment.ErrQuestionNotFound, "deleting question")
	}
	if n == 0 {
		return assessment.ErrQuestionNotFound
	}
	return nil
}

// Options

func (repo assessmentRepository) GetOption(ctx context.Context, id string) (assessment.Option, error) {
	var o assessment.Option
	q := repo.sb.Select(optionColumns...).From("options").Where(sq.Eq{"id": id})
	if err := repo.get(ctx, repo.db, &o, q); err != nil {
		return assessment.Option{}, trapErr(err, assessment.ErrOptionNotFound, "getting option")
	}
	return o, nil
}

func (repo assessmentRepository) CreateOptions(ctx context.Context, options ...assessment.Option) error {
	return repo.insertOptions(ctx, repo.db, options)
}

func (repo assessmentRepository) UpdateOption(ctx context.Context, o assessment.Option) error {
	q := repo.sb.Update("options").
		Set("option_text", o.Option).
		Set("is_correct", o.IsCorrect != nil && *o.IsCorrect).
		Where(sq.Eq{"id": o.ID})
	n, err := repo.exec(ctx, repo.db, q)
	if err != nil {
		return trapErr(err, assessment.ErrOptionNotFound, "updating option")
	}
	if n == 0 {
		return assessment.ErrOptionNotFound
	}
	return nil
}

func (repo assessmentRepository) DeleteOption(ctx context.Context, id string) error {
	n, err := repo.exec(ctx, repo.db, repo.sb.Delete("options").Where(sq.Eq{"id": id}))
	if err != nil {
		return trapErr(err, assessment.ErrOptionNotFound, "deleting option")
	}
	if n == 0 {
		return assessment.ErrOptionNotFound
	}
	return nil
}

// Submissions & scores

func (repo assessmentRepository) CountSubmissions(ctx context.Context, assessmentID, studentID string) (int, error) {
	var n int
	q := repo.sb.Select("COUNT(*)").From("submissions").Where(sq.Eq{"assessment_id": assessmentID, "student_id": studentID})
	if err := repo.get(ctx, repo.db, &n, q); err != nil {
		return 0, trapErr(err, assessment.ErrNotFound, "counting submissions")
	}
	return n, nil
}

func (repo assessmentRepository) QuerySubmissions(ctx context.Context, assessmentID, studentID string) ([]assessment.Submission, error) {
	subs := make([]assessment.Submission, 0)
	q := repo.sb.Select(submissionColumns...).From("submissions").Where(sq.Eq{"assessment_id": assessmentID, "student_id": studentID})
	if err := repo.sel(ctx, repo.db, &subs, q); err != nil {
		return nil, trapErr(err, assessment.ErrNotFound, "querying submissions")
	}
	return subs, nil
}

func (repo assessmentRepository) upsertScores(ctx context.Context, e sqlx.ExecerContext, scores []assessment.Score) error {
	if len(scores) == 0 {
		return nil
	}
	q := repo.sb.Insert("scores").Columns(scoreColumns...)
	for _, sc := range scores {
		q = q.Values(sc.ID, sc.StudentID, sc.QuestionID, sc.AssessmentID, sc.Score)
	}
	q = q.Suffix("ON CONFLICT (assessment_id, student_id, question_id) DO UPDATE SET score = excluded.score")
	_, err := repo.exec(ctx, e, q)
	return trapErr(err, assessment.ErrQuestionNotFound, "saving scores")
}

// refreshTotal recomputes the total of a student from their scores.
func (repo assessmentRepository) refreshTotal(ctx context.Context, tx *sqlx.Tx, assessmentID, studentID string) (assessment.Total, error) {
	var sum float64
	sumQ := repo.sb.Select("COALESCE(SUM(score), 0)").From("scores").Where(sq.Eq{"assessment_id": assessmentID, "student_id": studentID})
	if err := repo.get(ctx, tx, &sum, sumQ); err != nil {
		return assessment.Total{}, trapErr(err, assessment.ErrNotFound, "summing scores")
	}

	q := repo.sb.Insert("totals").Columns(totalColumns...).
		Values(core.NewID(), studentID, assessmentID, sum).
		Suffix("ON CONFLICT (assessment_id, student_id) DO UPDATE SET total = excluded.total")
	if _, err := repo.exec(ctx, tx, q); err != nil {
		return assessment.Total{}, trapErr(err, assessment.ErrNotFound, "saving total")
	}

	var t assessment.Total
	getQ := repo.sb.Select(totalColumns...).From("totals").Where(sq.Eq{"assessment_id": assessmentID, "student_id": studentID})
	if err := repo.get(ctx, tx, &t, getQ); err != nil {
		return assessment.Total{}, trapErr(err, assessment.ErrResultNotFound, "getting total")
	}
	return t, nil
}

func (repo assessmentRepository) SaveSubmissions(ctx context.Context, assessmentID, studentID string, subs []assessment.Submission, scores []assessment.Score) (assessment.Total, error) {
	var total assessment.Total
	err := repo.withTx(ctx, func(tx *sqlx.Tx) error {
		if len(subs) > 0 {
			q := repo.sb.Insert("submissions").Columns(submissionColumns...)
			for _, sub := range subs {
				q = q.Values(sub.ID, sub.StudentID, sub.QuestionID, sub.AssessmentID, sub.StuAnswer, sub.StuAnswerID)
			}
			if _, err := repo.exec(ctx, tx, q); err != nil {
				return trapErr(err, assessment.ErrQuestionNotFound, "inserting submissions")
			}
		}
		if err := repo.upsertScores(ctx, tx, scores); err != nil {
			return err
		}

		var err error
		total, err = repo.refreshTotal(ctx, tx, assessmentID, studentID)
		return err
	})
	return total, err
}

func (repo assessmentRepository) QueryScores(ctx context.Context, assessmentID, studentID string) ([]assessment.Score, error) {
	scores := make([]assessment.Score, 0)
	q := repo.sb.Select(scoreColumns...).From("scores").Where(sq.Eq{"assessment_id": assessmentID, "student_id": studentID})
	if err := repo.sel(ctx, repo.db, &scores, q); err != nil {
		return nil, trapErr(err, assessment.ErrNotFound, "querying scores")
	}
	return scores, nil
}

func (repo assessmentRepository) SaveScores(ctx context.Context, assessmentID string, scores []assessment.Score) ([]assessment.Total, error) {
	totals := make([]assessment.Total, 0)
	err := repo.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := repo.upsertScores(ctx, tx, scores); err != nil {
			return err
		}

		seen := make(map[string]bool)
		for _, sc := range scores {
			if seen[sc.StudentID] {
				continue
			}
			seen[sc.StudentID] = true
			t, err := repo.refreshTotal(ctx, tx, assessmentID, sc.StudentID)
			if err != nil {
				return err
			}
			totals = append(totals, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return totals, nil
}

func (repo assessmentRepository) GetTotal(ctx context.Context, assessmentID, studentID string) (assessment.Total, error) {
	var t assessment.Total
	q := repo.sb.Select(totalColumns...).From("totals").Where(sq.Eq{"assessment_id": assessmentID, "student_id": studentID})
	if err := repo.get(ctx, repo.db, &t, q); err != nil {
		return assessment.Total{}, trapErr(err, assessment.ErrResultNotFound, "getting total")
	}
	return t, nil
}

// Results & stats

func (repo assessmentRepository) resultsQuery(assessmentID string) sq.SelectBuilder {
	return repo.sb.Select("s.id AS reg_num", "s.name", "s.photo_url", "t.total", "tr.start_datetime", "tr.end_datetime").
		From("enrollments e").
		Join("assessments a ON a.course_id = e.course_code").
		Join("students s ON s.id = e.reg_num").
		Join("totals t ON t.student_id = s.id AND t.assessment_id = a.id").
		LeftJoin("assessment_time_records tr ON tr.student_id = s.id AND tr.assessment_id = a.id").
		Where(sq.Eq{"a.id": assessmentID, "e.accepted": true})
}

func (repo assessmentRepository) QueryResults(ctx context.Context, assessmentID string, filter assessment.ResultFilter) ([]assessment.Result, error) {
	q := repo.resultsQuery(assessmentID)
	if filter.Search != "" {
		val := like(filter.Search)
		q = q.Where(sq.Or{sq.Like{"LOWER(s.name)": val}, sq.Like{"LOWER(s.id)": val}})
	}
	q = q.OrderBy(orderBy(core.MapOrderings(filter.Orderings(), resultColumns))...).OrderBy("s.id")

	results := make([]assessment.Result, 0)
	if err := repo.sel(ctx, repo.db, &results, q); err != nil {
		return nil, trapErr(err, assessment.ErrResultNotFound, "querying results")
	}
	for i := range results {
		results[i].SyncTime()
	}
	return results, nil
}

func (repo assessmentRepository) GetResult(ctx context.Context, assessmentID, regNum string) (assessment.Result, error) {
	var r assessment.Result
	q := repo.resultsQuery(assessmentID).Where(sq.Eq{"s.id": regNum})
	if err := repo.get(ctx, repo.db, &r, q); err != nil {
		return assessment.Result{}, trapErr(err, assessment.ErrResultNotFound, "getting result")
	}
	r.SyncTime()
	return r, nil
}

// GetStatsData only aggregates students with at least one score, so unmarked subjective work is left out.
func (repo assessmentRepository) GetStatsData(ctx context.Context, a assessment.Assessment) (assessment.StatsData, error) {
	var data assessment.StatsData
	q := repo.sb.Select(
		"COUNT(*) AS num_students",
		"AVG(total) AS avg_score",
		"MAX(total) AS highest_score",
		"MIN(total) AS lowest_score",
	).From("totals").
		Where(sq.Eq{"assessment_id": a.ID}).
		Where(sq.Expr("student_id IN (SELECT DISTINCT student_id FROM scores WHERE assessment_id = ?)", a.ID))
	if err := repo.get(ctx, repo.db, &data, q); err != nil {
		return assessment.StatsData{}, trapErr(err, assessment.ErrNotFound, "aggregating totals")
	}

	enrolledQ := repo.sb.Select("COUNT(*)").From("enrollments").Where(sq.Eq{"course_code": a.CourseID, "accepted": true})
	if err := repo.get(ctx, repo.db, &data.NumEnrolled, enrolledQ); err != nil {
		return assessment.StatsData{}, trapErr(err, assessment.ErrNotFound, "counting enrollments")
	}

	spansQ := repo.sb.Select("start_datetime", "end_datetime").From("assessment_time_records").Where(sq.Eq{"assessment_id": a.ID})
	if err := repo.sel(ctx, repo.db, &data.TimeSpans, spansQ); err != nil {
		return assessment.StatsData{}, trapErr(err, assessment.ErrNotFound, "querying time records")
	}
	return data, nil
}
