package course

import (
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/ChukwumaKingsley/smart-school-forked/core"
)

const (
	titleMaxLen       = 60
	descriptionMaxLen = 300
)

type Course struct {
	Code        string      `json:"course_code" db:"course_code"`
	Title       string      `json:"title" db:"title"`
	Description string      `json:"description" db:"description"`
	Units       int         `json:"units" db:"units"`
	Faculty     string      `json:"faculty" db:"faculty"`
	Semester    int         `json:"semester" db:"semester"`
	Level       int         `json:"level" db:"level"`
	PhotoURL    null.String `json:"course_photo_url" db:"course_photo_url"`
}

// CourseInput contains the information needed to create or replace a Course.
// Code is ignored on update.
type CourseInput struct {
	Code        string `json:"course_code" validate:"required,notblank"`
	Title       string `json:"title" validate:"required,notblank"`
	Description string `json:"description"`
	Units       int    `json:"units" validate:"gt=0"`
	Faculty     string `json:"faculty" validate:"required,notblank"`
	Semester    int    `json:"semester" validate:"min=1,max=2"`
	Level       int    `json:"level" validate:"gt=0"`
}

func (in *CourseInput) Validate(validate *validator.Validate) error {
	in.Code = core.CleanString(in.Code)
	in.Title = core.Truncate(core.CleanString(in.Title), titleMaxLen)
	in.Description = core.Truncate(core.CleanString(in.Description), descriptionMaxLen)
	in.Faculty = core.CleanString(in.Faculty)
	return validate.Struct(in)
}

func (in CourseInput) course(code string) Course {
	return Course{
		Code:        code,
		Title:       in.Title,
		Description: in.Description,
		Units:       in.Units,
		Faculty:     in.Faculty,
		Semester:    in.Semester,
		Level:       in.Level,
	}
}

type QueryFilter struct {
	Semester int    `query:"semester"`
	Search   string `query:"search"`
	Title    string `query:"title"`
	Faculty  string `query:"faculty"`
	Level    int    `query:"level"`
	core.Page
}

func (qf *QueryFilter) Clean() {
	if qf.Semester == 0 {
		qf.Semester = 1
	}
	qf.Search = core.CleanString(qf.Search, true /* lower */)
	qf.Title = core.CleanString(qf.Title, true /* lower */)
	qf.Faculty = core.CleanString(qf.Faculty)
	qf.Page = qf.Page.Clean()
}

type EnrollmentStatus struct {
	IsCourseInstructor          bool `json:"is_course_instructor"`
	IsCourseCoordinator         bool `json:"is_course_coordinator"`
	InstructorEnrollmentPending bool `json:"instructor_enrollment_pending"`
	IsEnrolled                  bool `json:"is_enrolled"`
	EnrollmentPending           bool `json:"enrollment_pending"`
}

type CourseInstructor struct {
	InstructorID  string `json:"instructor_id" db:"instructor_id"`
	CourseCode    string `json:"course_code" db:"course_code"`
	IsCoordinator bool   `json:"is_coordinator" db:"is_coordinator"`
	IsAccepted    bool   `json:"is_accepted" db:"is_accepted"`
}

// InstructorGroup selects the course instructors to list.
type InstructorGroup int

const (
	GroupCoordinators InstructorGroup = iota + 1 // is_coordinator
	GroupInstructors                             // accepted, not coordinator
	GroupRequests                                // pending, not coordinator
)

type CourseInstructorOut struct {
	InstructorID  string      `json:"instructor_id" db:"instructor_id"`
	Name          string      `json:"name" db:"name"`
	Department    string      `json:"department" db:"department"`
	Title         null.String `json:"title" db:"title"`
	PhotoURL      null.String `json:"photo_url" db:"photo_url"`
	IsCurrentUser bool        `json:"is_current_user" db:"-"`
}

type Enrollment struct {
	ID         string `json:"id" db:"id"`
	CourseCode string `json:"course_code" db:"course_code"`
	RegNum     string `json:"reg_num" db:"reg_num"`
	Accepted   bool   `json:"accepted" db:"accepted"`
}

type NewEnrollment struct {
	CourseCode string `json:"course_code" validate:"required,notblank"`
	RegNum     string `json:"reg_num" validate:"required,notblank"`
	Accepted   bool   `json:"accepted"`
}

func (ne *NewEnrollment) Validate(validate *validator.Validate) error {
	ne.CourseCode = core.CleanString(ne.CourseCode)
	ne.RegNum = core.CleanString(ne.RegNum)
	return validate.Struct(ne)
}

type EnrolledStudent struct {
	RegNum     string      `json:"reg_num" db:"reg_num"`
	Name       string      `json:"name" db:"name"`
	Department string      `json:"department" db:"department"`
	Level      int         `json:"level" db:"level"`
	Accepted   bool        `json:"accepted" db:"accepted"`
	PhotoURL   null.String `json:"photo_url" db:"photo_url"`
}

type StudentFilter struct {
	Search string `query:"search"`
	Level  int    `query:"level"`
}

func (sf *StudentFilter) Clean() {
	sf.Search = core.CleanString(sf.Search, true /* lower */)
}
