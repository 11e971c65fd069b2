package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/ChukwumaKingsley/smart-school-forked/core"
	"github.com/ChukwumaKingsley/smart-school-forked/core/assessment"
	"github.com/ChukwumaKingsley/smart-school-forked/core/course"
	"github.com/ChukwumaKingsley/smart-school-forked/core/user"
	"github.com/ChukwumaKingsley/smart-school-forked/storage/database"
)

const Password = "Passw0rd!Strong"

// OpenDB creates a migrated sqlite database in a new temporary directory.
func OpenDB() (*sqlx.DB, func(), error) {
	dir, err := os.MkdirTemp("", "academia-test-")
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { _ = os.RemoveAll(dir) }

	conf := &core.Config{Database: core.DatabaseConfig{Engine: database.SQLite, Path: filepath.Join(dir, "test.db")}}
	db, err := database.Open(conf)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	if err = database.Migrate(db, "up"); err != nil {
		_ = db.Close()
		cleanup()
		return nil, nil, err
	}
	return db, func() { _ = db.Close(); cleanup() }, nil
}

// NewDB returns a migrated sqlite database closed at the end of the test.
func NewDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, cleanup, err := OpenDB()
	if err != nil {
		t.Fatalf("OpenDB() failed: %v", err)
	}
	t.Cleanup(cleanup)
	return db
}

func CreateInstructor(t *testing.T, repo user.Repository, name, email string) user.User {
	t.Helper()
	usr := user.User{
		ID:           core.NewID(),
		Title:        null.StringFrom("Dr."),
		Name:         name,
		Email:        email,
		Department:   "CSC",
		Faculty:      "Physical Sciences",
		IsInstructor: true,
	}
	return createUser(t, repo, usr)
}

func CreateStudent(t *testing.T, repo user.Repository, regNum, name, email string) user.User {
	t.Helper()
	usr := user.User{
		ID:         regNum,
		Name:       name,
		Email:      email,
		Department: "CSC",
		Faculty:    "Physical Sciences",
		Level:      null.IntFrom(300),
	}
	return createUser(t, repo, usr)
}

func createUser(t *testing.T, repo user.Repository, usr user.User) user.User {
	t.Helper()
	if err := usr.SetPassword(Password); err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

// CreateCourse creates a first semester course coordinated by coordinatorID.
func CreateCourse(t *testing.T, repo course.Repository, code, title, coordinatorID string) course.Course {
	t.Helper()
	c := course.Course{
		Code:        code,
		Title:       title,
		Description: title + " description",
		Units:       3,
		Faculty:     "Physical Sciences",
		Semester:    1,
		Level:       300,
	}
	c, err := repo.CreateCourse(context.Background(), c, coordinatorID)
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return c
}

func AddInstructor(t *testing.T, repo course.Repository, code, instructorID string, accepted bool) {
	t.Helper()
	ci := course.CourseInstructor{InstructorID: instructorID, CourseCode: code, IsAccepted: accepted}
	if _, err := repo.CreateCourseInstructor(context.Background(), ci); err != nil {
		t.Fatalf("AddInstructor() failed: %v", err)
	}
}

func Enroll(t *testing.T, repo course.Repository, code, regNum string, accepted bool) {
	t.Helper()
	e := course.Enrollment{ID: core.NewID(), CourseCode: code, RegNum: regNum, Accepted: accepted}
	if err := repo.CreateEnrollments(context.Background(), e); err != nil {
		t.Fatalf("Enroll() failed: %v", err)
	}
}

// CreateAssessment creates an assessment of courseID running from start for duration minutes, ending 2 hours later.
func CreateAssessment(
	t *testing.T,
	repo assessment.Repository,
	courseID string,
	status assessment.Status,
	start time.Time,
	duration int,
) assessment.Assessment {
	t.Helper()
	a := assessment.Assessment{
		ID:        core.NewID(),
		Title:     "Assessment " + courseID,
		StartDate: start.UTC().Truncate(time.Second),
		EndDate:   start.UTC().Truncate(time.Second).Add(2 * time.Hour),
		Duration:  duration,
		TotalMark: 100,
		Type:      assessment.TypeTest,
		Status:    status,
		CourseID:  courseID,
	}
	a, err := repo.CreateAssessment(context.Background(), a)
	if err != nil {
		t.Fatalf("CreateAssessment() failed: %v", err)
	}
	return a
}

// CreateQuestion creates an objective question whose first option is the correct one.
func CreateQuestion(t *testing.T, repo assessment.Repository, assessmentID string, mark int, options ...string) assessment.Question {
	t.Helper()
	q := assessment.Question{
		ID:           core.NewID(),
		AssessmentID: assessmentID,
		Question:     "Pick one",
		Mark:         mark,
		QuestionType: assessment.QuestionObj,
	}
	for i, text := range options {
		isCorrect := i == 0
		q.Options = append(q.Options, assessment.Option{
			ID:         core.NewID(),
			QuestionID: q.ID,
			Option:     text,
			IsCorrect:  &isCorrect,
		})
	}
	if err := repo.CreateQuestion(context.Background(), q); err != nil {
		t.Fatalf("CreateQuestion() failed: %v", err)
	}
	return q
}
