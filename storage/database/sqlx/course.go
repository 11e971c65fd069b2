package sqlxrepos

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/ChukwumaKingsley/smart-school-forked/core"
	"github.com/ChukwumaKingsley/smart-school-forked/core/course"
)

var courseColumns = []string{"course_code", "title", "description", "units", "faculty", "semester", "level", "course_photo_url"}

type courseRepository struct {
	repo
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sqlx.DB) *courseRepository {
	return &courseRepository{repo: newRepo(db)}
}

func prefixed(prefix string, cols []string) []string {
	out := make([]string, len(cols))
	for i, col := range cols {
		out[i] = prefix + "." + col
	}
	return out
}

// Courses

func (repo courseRepository) CreateCourse(ctx context.Context, c course.Course, coordinatorID string) (course.Course, error) {
	err := repo.withTx(ctx, func(tx *sqlx.Tx) error {
		q := repo.sb.Insert("courses").Columns(courseColumns...).
			Values(c.Code, c.Title, c.Description, c.Units, c.Faculty, c.Semester, c.Level, c.PhotoURL)
		if _, err := repo.exec(ctx, tx, q); err != nil {
			return trapErr(err, course.ErrNotFound, "inserting course")
		}

		q = repo.sb.Insert("course_instructors").
			Columns("instructor_id", "course_code", "is_coordinator", "is_accepted").
			Values(coordinatorID, c.Code, true, true)
		_, err := repo.exec(ctx, tx, q)
		return trapErr(err, course.ErrNotFound, "inserting course coordinator")
	})
	if err != nil {
		return course.Course{}, err
	}
	return c, nil
}

func (repo courseRepository) GetCourse(ctx context.Context, code string) (course.Course, error) {
	var c course.Course
	err := repo.get(ctx, repo.db, &c, repo.sb.Select(courseColumns...).From("courses").Where(sq.Eq{"course_code": code}))
	if err != nil {
		return course.Course{}, trapErr(err, course.ErrNotFound, "getting course")
	}
	return c, nil
}

func (repo courseRepository) UpdateCourse(ctx context.Context, c course.Course) (course.Course, error) {
	q := repo.sb.Update("courses").
		Set("title", c.Title).
		Set("description", c.Description).
		Set("units", c.Units).
		Set("faculty", c.Faculty).
		Set("semester", c.Semester).
		Set("level", c.Level).
		Where(sq.Eq{"course_code": c.Code})
	n, err := repo.exec(ctx, repo.db, q)
	if err != nil {
		return course.Course{}, trapErr(err, course.ErrNotFound, "updating course")
	}
	if n == 0 {
		return course.Course{}, course.ErrNotFound
	}
	return c, nil
}

func (repo courseRepository) SetCoursePhotoURL(ctx context.Context, code, url string) error {
	q := repo.sb.Update("courses").Set("course_photo_url", url).Where(sq.Eq{"course_code": code})
	_, err := repo.exec(ctx, repo.db, q)
	return trapErr(err, course.ErrNotFound, "setting course photo")
}

func (repo courseRepository) DeleteCourse(ctx context.Context, code string) error {
	n, err := repo.exec(ctx, repo.db, repo.sb.Delete("courses").Where(sq.Eq{"course_code": code}))
	if err != nil {
		return trapErr(err, course.ErrNotFound, "deleting course")
	}
	if n == 0 {
		return course.ErrNotFound
	}
	return nil
}

func filterCourses(q sq.SelectBuilder, filter course.QueryFilter) sq.SelectBuilder {
	q = q.Where(sq.Eq{"c.semester": filter.Semester})
	if filter.Search != "" {
		val := like(filter.Search)
		q = q.Where(sq.Or{
			sq.Like{"LOWER(c.title)": val},
			sq.Like{"LOWER(c.course_code)": val},
		})
	}
	if filter.Title != "" {
		q = q.Where(sq.Like{"LOWER(c.title)": like(filter.Title)})
	}
	if filter.Faculty != "" {
		q = q.Where(sq.Eq{"c.faculty": filter.Faculty})
	}
	if filter.Level > 0 {
		q = q.Where(sq.Eq{"c.level": filter.Level})
	}
	return q.OrderBy("c.course_code").
		Limit(uint64(filter.Limit)).
		Offset(filter.Offset())
}

func (repo courseRepository) QueryCourses(ctx context.Context, filter course.QueryFilter) ([]course.Course, error) {
	q := filterCourses(repo.sb.Select(prefixed("c", courseColumns)...).From("courses c"), filter)

	courses := make([]course.Course, 0)
	if err := repo.sel(ctx, repo.db, &courses, q); err != nil {
		return nil, trapErr(err, course.ErrNotFound, "querying courses")
	}
	return courses, nil
}

func (repo courseRepository) QueryUserCourses(ctx context.Context, p core.Principal, filter course.QueryFilter) ([]course.Course, error) {
	q := repo.sb.Select(prefixed("c", courseColumns)...).From("courses c")
	if p.IsInstructor {
		q = q.Join("course_instructors ci ON ci.course_code = c.course_code").
			Where(sq.Eq{"ci.instructor_id": p.ID, "ci.is_accepted": true})
	} else {
		q = q.Join("enrollments e ON e.course_code = c.course_code").
			Where(sq.Eq{"e.reg_num": p.ID, "e.accepted": true})
	}
	q = filterCourses(q, filter)

	courses := make([]course.Course, 0)
	if err := repo.sel(ctx, repo.db, &courses, q); err != nil {
		return nil, trapErr(err, course.ErrNotFound, "querying user courses")
	}
	return courses, nil
}

func (repo courseRepository) QueryFaculties(ctx context.Context) ([]string, error) {
	faculties := make([]string, 0)
	q := repo.sb.Select("faculty").Distinct().From("courses").OrderBy("faculty")
	if err := repo.sel(ctx, repo.db, &faculties, q); err != nil {
		return nil, trapErr(err, course.ErrNotFound, "querying faculties")
	}
	return faculties, nil
}

// Course instructors

var courseInstructorColumns = []string{"instructor_id", "course_code", "is_coordinator", "is_accepted"}

func (repo courseRepository) GetCourseInstructor(ctx context.Context, instructorID, code string) (course.CourseInstructor, error) {
	var ci course.CourseInstructor
	q := repo.sb.Select(courseInstructorColumns...).From("course_instructors").
		Where(sq.Eq{"instructor_id": instructorID, "course_code": code})
	if err := repo.get(ctx, repo.db, &ci, q); err != nil {
		return course.CourseInstructor{}, trapErr(err, course.ErrInstructorNotFound, "getting course instructor")
	}
	return ci, nil
}

func (repo courseRepository) CreateCourseInstructor(ctx context.Context, ci course.CourseInstructor) (course.CourseInstructor, error) {
	q := repo.sb.Insert("course_instructors").Columns(courseInstructorColumns...).
		Values(ci.InstructorID, ci.CourseCode, ci.IsCoordinator, ci.IsAccepted)
	if _, err := repo.exec(ctx, repo.db, q); err != nil {
		return course.CourseInstructor{}, trapErr(err, course.ErrNotFound, "inserting course instructor")
	}
	return ci, nil
}

func (repo courseRepository) AcceptCourseInstructor(ctx context.Context, instructorID, code string) (course.CourseInstructor, error) {
	q := repo.sb.Update("course_instructors").Set("is_accepted", true).
		Where(sq.Eq{"instructor_id": instructorID, "course_code": code})
	n, err := repo.exec(ctx, repo.db, q)
	if err != nil {
		return course.CourseInstructor{}, trapErr(err, course.ErrInstructorNotFound, "accepting course instructor")
	}
	if n == 0 {
		return course.CourseInstructor{}, course.ErrInstructorNotFound
	}
	return repo.GetCourseInstructor(ctx, instructorID, code)
}

func (repo courseRepository) DeleteCourseInstructor(ctx context.Context, instructorID, code string) error {
	q := repo.sb.Delete("course_instructors").Where(sq.Eq{"instructor_id": instructorID, "course_code": code})
	n, err := repo.exec(ctx, repo.db, q)
	if err != nil {
		return trapErr(err, course.ErrInstructorNotFound, "deleting course instructor")
	}
	if n == 0 {
		return course.ErrInstructorNotFound
	}
	return nil
}

func (repo courseRepository) CountCourseInstructors(ctx context.Context, code string) (int, error) {
	var n int
	q := repo.sb.Select("COUNT(*)").From("course_instructors").
		Where(sq.Eq{"course_code": code}).
		Where(sq.Or{sq.Eq{"is_coordinator": true}, sq.Eq{"is_accepted": true}})
	if err := repo.get(ctx, repo.db, &n, q); err != nil {
		return 0, trapErr(err, course.ErrNotFound, "counting course instructors")
	}
	return n, nil
}

func (repo courseRepository) QueryCourseInstructors(ctx context.Context, code string, group course.InstructorGroup) ([]course.CourseInstructorOut, error) {
	q := repo.sb.Select("ci.instructor_id", "i.name", "i.department", "i.title", "i.photo_url").
		From("course_instructors ci").
		Join("instructors i ON i.id = ci.instructor_id").
		Where(sq.Eq{"ci.course_code": code}).
		OrderBy("i.name")
	switch group {
	case course.GroupCoordinators:
		q = q.Where(sq.Eq{"ci.is_coordinator": true})
	case course.GroupInstructors:
		q = q.Where(sq.Eq{"ci.is_coordinator": false, "ci.is_accepted": true})
	case course.GroupRequests:
		q = q.Where(sq.Eq{"ci.is_coordinator": false, "ci.is_accepted": false})
	default:
		return nil, fmt.Errorf("unknown instructor group %d", group)
	}

	instructors := make([]course.CourseInstructorOut, 0)
	if err := repo.sel(ctx, repo.db, &instructors, q); err != nil {
		return nil, trapErr(err, course.ErrNotFound, "querying course instructors")
	}
	return instructors, nil
}

// Enrollments

var enrollmentColumns = []string{"id", "course_code", "reg_num", "accepted"}

func (repo courseRepository) GetEnrollment(ctx context.Context, regNum, code string) (course.Enrollment, error) {
	var e course.Enrollment
	q := repo.sb.Select(enrollmentColumns...).From("enrollments").Where(sq.Eq{"reg_num": regNum, "course_code": code})
	if err := repo.get(ctx, repo.db, &e, q); err != nil {
		return course.Enrollment{}, trapErr(err, course.ErrEnrollmentNotFound, "getting enrollment")
	}
	return e, nil
}

func (repo courseRepository) CreateEnrollments(ctx context.Context, enrollments ...course.Enrollment) error {
	if len(enrollments) == 0 {
		return nil
	}
	return repo.withTx(ctx, func(tx *sqlx.Tx) error {
		for _, e := range enrollments {
			q := repo.sb.Insert("enrollments").Columns(enrollmentColumns...).Values(e.ID, e.CourseCode, e.RegNum, e.Accepted)
			if _, err := repo.exec(ctx, tx, q); err != nil {
				if isUniqueViolation(err) {
					return core.NewForbiddenError(fmt.Sprintf("%s is already enrolled in %s", e.RegNum, e.CourseCode))
				}
				return trapErr(err, course.ErrNotFound, "inserting enrollment")
			}
		}
		return nil
	})
}

func (repo courseRepository) DeleteEnrollment(ctx context.Context, regNum, code string) error {
	n, err := repo.exec(ctx, repo.db, repo.sb.Delete("enrollments").Where(sq.Eq{"reg_num": regNum, "course_code": code}))
	if err != nil {
		return trapErr(err, course.ErrEnrollmentNotFound, "deleting enrollment")
	}
	if n == 0 {
		return course.ErrEnrollmentNotFound
	}
	return nil
}

func (repo courseRepository) AcceptEnrollments(ctx context.Context, code string, regNums ...string) ([]string, error) {
	pending := sq.Eq{"course_code": code, "accepted": false}
	if len(regNums) > 0 {
		pending["reg_num"] = regNums
	}

	accepted := make([]string, 0)
	err := repo.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := repo.sel(ctx, tx, &accepted, repo.sb.Select("reg_num").From("enrollments").Where(pending).OrderBy("reg_num")); err != nil {
			return trapErr(err, course.ErrEnrollmentNotFound, "querying pending enrollments")
		}
		if len(accepted) == 0 {
			return nil
		}
		q := repo.sb.Update("enrollments").Set("accepted", true).Where(sq.Eq{"course_code": code, "reg_num": accepted})
		_, err := repo.exec(ctx, tx, q)
		return trapErr(err, course.ErrEnrollmentNotFound, "accepting enrollments")
	})
	if err != nil {
		return nil, err
	}
	return accepted, nil
}

func (repo courseRepository) DeletePendingEnrollments(ctx context.Context, code string) (int64, error) {
	n, err := repo.exec(ctx, repo.db, repo.sb.Delete("enrollments").Where(sq.Eq{"course_code": code, "accepted": false}))
	if err != nil {
		return 0, trapErr(err, course.ErrEnrollmentNotFound, "deleting pending enrollments")
	}
	return n, nil
}

func (repo courseRepository) CountEnrollments(ctx context.Context, code string, accepted bool) (int, error) {
	var n int
	q := repo.sb.Select("COUNT(*)").From("enrollments").Where(sq.Eq{"course_code": code, "accepted": accepted})
	if err := repo.get(ctx, repo.db, &n, q); err != nil {
		return 0, trapErr(err, course.ErrNotFound, "counting enrollments")
	}
	return n, nil
}

func (repo courseRepository) QueryEnrolledStudents(ctx context.Context, code string, accepted bool, filter course.StudentFilter) ([]course.EnrolledStudent, error) {
	q := repo.sb.Select("e.reg_num", "s.name", "s.department", "s.level", "e.accepted", "s.photo_url").
		From("enrollments e").
		Join("students s ON s.id = e.reg_num").
		Where(sq.Eq{"e.course_code": code, "e.accepted": accepted}).
		OrderBy("s.name")
	if filter.Search != "" {
		val := like(filter.Search)
		q = q.Where(sq.Or{sq.Like{"LOWER(s.name)": val}, sq.Like{"LOWER(s.id)": val}})
	}
	if filter.Level > 0 {
		q = q.Where(sq.Eq{"s.level": filter.Level})
	}

	students := make([]course.EnrolledStudent, 0)
	if err := repo.sel(ctx, repo.db, &students, q); err != nil {
		return nil, trapErr(err, course.ErrNotFound, "querying enrolled students")
	}
	return students, nil
}
