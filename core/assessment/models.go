package assessment

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/ChukwumaKingsley/smart-school-forked/core"
)

// Assessment types
const (
	TypeAssignment = "Assignment"
	TypeTest       = "Test"
	TypeExam       = "Exam"
)

// Question types
const (
	QuestionObj    = "obj"
	QuestionSubObj = "sub_obj"
	QuestionNLP    = "nlp"
	QuestionMaths  = "maths"
)

type Assessment struct {
	ID        string    `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	StartDate time.Time `json:"start_date" db:"start_date"` // UTC
	EndDate   time.Time `json:"end_date" db:"end_date"`     // UTC
	Duration  int       `json:"duration" db:"duration"`     // minutes
	TotalMark int       `json:"total_mark" db:"total_mark"`
	Type      string    `json:"assessment_type" db:"assessment_type"`
	Status    Status    `json:"status" db:"status"`
	IsMarked  bool      `json:"is_marked" db:"is_marked"`
	CourseID  string    `json:"course_id" db:"course_id"`

	// derived from Status
	IsActive    bool `json:"is_active" db:"-"`
	IsCompleted bool `json:"is_completed" db:"-"`
}

// SyncFlags refreshes the fields derived from Status.
func (a *Assessment) SyncFlags() {
	a.IsActive = a.Status == StatusActive
	a.IsCompleted = a.Status == StatusCompleted
}

func (a Assessment) durationMinutes() time.Duration {
	return time.Duration(a.Duration) * time.Minute
}

// WindowEnd is the end of the answering window: start + duration, capped by the end date.
func (a Assessment) WindowEnd() time.Time {
	end := a.StartDate.Add(a.durationMinutes())
	if a.EndDate.Before(end) {
		return a.EndDate
	}
	return end
}

type NewAssessment struct {
	Title     string    `json:"title" validate:"required,notblank"`
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required"`
	Duration  int       `json:"duration" validate:"gt=0"`
	TotalMark int       `json:"total_mark" validate:"gt=0"`
	Type      string    `json:"assessment_type" validate:"required,oneof=Assignment Test Exam"`
	CourseID  string    `json:"course_id" validate:"required,notblank"`
}

func (na *NewAssessment) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	na.CourseID = core.CleanString(na.CourseID)
	na.StartDate = na.StartDate.UTC()
	na.EndDate = na.EndDate.UTC()
	return validate.Struct(na)
}

// UpdateAssessment holds the details that may change outside of the schedule.
type UpdateAssessment struct {
	Title     string `json:"title" validate:"required,notblank"`
	Duration  int    `json:"duration" validate:"gt=0"`
	TotalMark int    `json:"total_mark" validate:"gt=0"`
	Type      string `json:"assessment_type" validate:"required,oneof=Assignment Test Exam"`
}

func (ua *UpdateAssessment) Validate(validate *validator.Validate) error {
	ua.Title = core.CleanString(ua.Title)
	return validate.Struct(ua)
}

type Schedule struct {
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required"`
	Duration  int       `json:"duration" validate:"gt=0"`
}

func (s *Schedule) Validate(validate *validator.Validate) error {
	s.StartDate = s.StartDate.UTC()
	s.EndDate = s.EndDate.UTC()
	return validate.Struct(s)
}

type QueryFilter struct {
	Status   string `query:"status"`
	IsMarked *bool  `query:"is_marked"`
}

func (qf *QueryFilter) Clean() {
	qf.Status = core.CleanString(qf.Status, true /* lower */)
}

type Instruction struct {
	ID           string `json:"id" db:"id"`
	AssessmentID string `json:"assessment_id" db:"assessment_id"`
	Instruction  string `json:"instruction" db:"instruction"`
}

type NewInstructions struct {
	Instructions []string `json:"instructions" validate:"required,min=1,dive,required,notblank"`
}

func (ni *NewInstructions) Validate(validate *validator.Validate) error {
	for i := range ni.Instructions {
		ni.Instructions[i] = core.CleanString(ni.Instructions[i])
	}
	return validate.Struct(ni)
}

type UpdateInstruction struct {
	Instruction string `json:"instruction" validate:"required,notblank"`
}

func (ui *UpdateInstruction) Validate(validate *validator.Validate) error {
	ui.Instruction = core.CleanString(ui.Instruction)
	return validate.Struct(ui)
}

type Question struct {
	ID            string       `json:"id" db:"id"`
	AssessmentID  string       `json:"assessment_id" db:"assessment_id"`
	Question      string       `json:"question" db:"question"`
	Mark          int          `json:"mark" db:"mark"`
	IsMultiChoice bool         `json:"is_multi_choice" db:"is_multi_choice"`
	QuestionType  string       `json:"question_type" db:"question_type"`
	Tolerance     null.Float64 `json:"tolerance" db:"tolerance"`
	NumAnswer     null.Int     `json:"num_answer" db:"num_answer"`
	Options       []Option     `json:"options" db:"-"`

	// student result only
	StuAnswers *StudentAnswer `json:"stu_answers,omitempty" db:"-"`
	StuMark    *float64       `json:"stu_mark,omitempty" db:"-"`
}

func (q Question) IsObjective() bool { return q.QuestionType == QuestionObj }

type StudentAnswer struct {
	StuAnswer   null.String `json:"stu_answer"`
	StuAnswerID null.String `json:"stu_answer_id"`
}

type QuestionInput struct {
	Question      string        `json:"question" validate:"required,notblank"`
	Mark          int           `json:"mark" validate:"gte=0"`
	IsMultiChoice bool          `json:"is_multi_choice"`
	QuestionType  string        `json:"question_type" validate:"required,oneof=obj sub_obj nlp maths"`
	Tolerance     null.Float64  `json:"tolerance"`
	NumAnswer     null.Int      `json:"num_answer"`
	Options       []OptionInput `json:"options" validate:"omitempty,dive"`
}

func (qi *QuestionInput) Validate(validate *validator.Validate) error {
	qi.Question = core.CleanString(qi.Question)
	for i := range qi.Options {
		qi.Options[i].Option = core.CleanString(qi.Options[i].Option)
	}
	return validate.Struct(qi)
}

func (qi QuestionInput) question(id, assessmentID string) Question {
	q := Question{
		ID:            id,
		AssessmentID:  assessmentID,
		Question:      qi.Question,
		Mark:          qi.Mark,
		IsMultiChoice: qi.IsMultiChoice,
		QuestionType:  qi.QuestionType,
		Tolerance:     qi.Tolerance,
		NumAnswer:     qi.NumAnswer,
	}
	for _, oi := range qi.Options {
		q.Options = append(q.Options, oi.option(core.NewID(), id))
	}
	return q
}

type Option struct {
	ID         string `json:"id" db:"id"`
	QuestionID string `json:"question_id" db:"question_id"`
	Option     string `json:"option" db:"option_text"`
	IsCorrect  *bool  `json:"is_correct,omitempty" db:"is_correct"` // hidden from students
}

type OptionInput struct {
	Option    string `json:"option" validate:"required,notblank"`
	IsCorrect bool   `json:"is_correct"`
}

func (oi *OptionInput) Validate(validate *validator.Validate) error {
	oi.Option = core.CleanString(oi.Option)
	return validate.Struct(oi)
}

func (oi OptionInput) option(id, questionID string) Option {
	isCorrect := oi.IsCorrect
	return Option{ID: id, QuestionID: questionID, Option: oi.Option, IsCorrect: &isCorrect}
}

type NewOptions struct {
	Options []OptionInput `json:"options" validate:"required,min=1,dive"`
}

func (no *NewOptions) Validate(validate *validator.Validate) error {
	for i := range no.Options {
		no.Options[i].Option = core.CleanString(no.Options[i].Option)
	}
	return validate.Struct(no)
}

// Paper is an assessment with its instructions and questions.
type Paper struct {
	Assessment
	Instructions []Instruction `json:"instructions"`
	Questions    []Question    `json:"questions"`
	Total        *float64      `json:"total,omitempty"` // student result only
}

type Submission struct {
	ID           string      `json:"id" db:"id"`
	StudentID    string      `json:"student_id" db:"student_id"`
	QuestionID   string      `json:"question_id" db:"question_id"`
	AssessmentID string      `json:"assessment_id" db:"assessment_id"`
	StuAnswer    null.String `json:"stu_answer" db:"stu_answer"`
	StuAnswerID  null.String `json:"stu_answer_id" db:"stu_answer_id"`
}

type SubmissionInput struct {
	QuestionID  string `json:"question_id" validate:"required"`
	StuAnswer   string `json:"stu_answer"`
	StuAnswerID string `json:"stu_answer_id"`
}

type NewSubmissions struct {
	Submissions []SubmissionInput `json:"submissions" validate:"required,min=1,dive"`
}

func (ns *NewSubmissions) Validate(validate *validator.Validate) error {
	for i := range ns.Submissions {
		ns.Submissions[i].StuAnswer = core.CleanString(ns.Submissions[i].StuAnswer)
		ns.Submissions[i].StuAnswerID = core.CleanString(ns.Submissions[i].StuAnswerID)
	}
	return validate.Struct(ns)
}

type Score struct {
	ID           string  `json:"id" db:"id"`
	StudentID    string  `json:"student_id" db:"student_id"`
	QuestionID   string  `json:"question_id" db:"question_id"`
	AssessmentID string  `json:"assessment_id" db:"assessment_id"`
	Score        float64 `json:"score" db:"score"`
}

type ScoreInput struct {
	StudentID  string  `json:"student_id" validate:"required"`
	QuestionID string  `json:"question_id" validate:"required"`
	Score      float64 `json:"score" validate:"gte=0"`
}

type NewScores struct {
	Scores []ScoreInput `json:"scores" validate:"required,min=1,dive"`
}

func (ns *NewScores) Validate(validate *validator.Validate) error { return validate.Struct(ns) }

type Total struct {
	ID           string  `json:"id" db:"id"`
	StudentID    string  `json:"student_id" db:"student_id"`
	AssessmentID string  `json:"assessment_id" db:"assessment_id"`
	Total        float64 `json:"total" db:"total"`
}

// Result is one leaderboard row.
type Result struct {
	RegNum         string      `json:"reg_num" db:"reg_num"`
	Name           string      `json:"name" db:"name"`
	PhotoURL       null.String `json:"photo_url" db:"photo_url"`
	Total          float64     `json:"total" db:"total"`
	StartDatetime  null.Time   `json:"start_datetime" db:"start_datetime"`
	EndDatetime    null.Time   `json:"end_datetime" db:"end_datetime"`
	AssessmentTime float64     `json:"assessment_time" db:"-"` // minutes
}

// SyncTime computes AssessmentTime from the time record, 0 when it is missing or open.
func (r *Result) SyncTime() {
	r.AssessmentTime = 0
	if r.StartDatetime.Valid && r.EndDatetime.Valid {
		r.AssessmentTime = core.Round1(r.EndDatetime.Time.Sub(r.StartDatetime.Time).Minutes())
	}
}

// Result orderings
var resultOrderings = map[string]core.DBOrdering{
	"name":    {Field: "name", Ascending: true},
	"-name":   {Field: "name"},
	"total":   {Field: "total", Ascending: true},
	"-total":  {Field: "total"},
	"reg_num": {Field: "reg_num", Ascending: true},
}

type ResultFilter struct {
	Search   string `query:"search"`
	Ordering string `query:"ordering"`
}

func (rf *ResultFilter) Clean() {
	rf.Search = core.CleanString(rf.Search, true /* lower */)
	rf.Ordering = core.CleanString(rf.Ordering)
}

// Orderings returns the requested ordering, by name by default.
func (rf ResultFilter) Orderings() []core.DBOrdering {
	if ord, ok := resultOrderings[rf.Ordering]; ok {
		return []core.DBOrdering{ord}
	}
	return []core.DBOrdering{resultOrderings["name"]}
}

// TimeSpan is the start/end of one time record.
type TimeSpan struct {
	Start time.Time `db:"start_datetime"`
	End   null.Time `db:"end_datetime"`
}

// StatsData holds the raw aggregates Stats are computed from.
type StatsData struct {
	NumStudents  int          `db:"num_students"` // distinct students with a score
	AvgScore     null.Float64 `db:"avg_score"`
	HighestScore null.Float64 `db:"highest_score"`
	LowestScore  null.Float64 `db:"lowest_score"`
	NumEnrolled  int          `db:"num_enrolled"` // accepted enrollments
	TimeSpans    []TimeSpan   `db:"-"`
}

type Stats struct {
	NumStudents           int          `json:"num_students"`
	AvgScore              float64      `json:"avg_score"`
	TotalPossibleScore    int          `json:"total_possible_score"`
	AvgScorePercentage    float64      `json:"avg_score_percentage"`
	AvgTime               float64      `json:"avg_time"` // minutes
	HighestScore          null.Float64 `json:"highest_score"`
	LowestScore           null.Float64 `json:"lowest_score"`
	PercentageSubmissions float64      `json:"percentage_submissions"`
}

type CourseAssessmentStats struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Type  string `json:"type"`
	Stats
}
