package assessment

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/ChukwumaKingsley/smart-school-forked/core"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) CreateAssessment(ctx context.Context, a Assessment) (Assessment, error) {
	args := m.Called(ctx, a)
	if fn, ok := args.Get(0).(func(context.Context, Assessment) Assessment); ok {
		return fn(ctx, a), args.Error(1)
	}
	return args.Get(0).(Assessment), args.Error(1)
}

func (m *mockRepo) GetAssessment(ctx context.Context, id string) (Assessment, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Assessment), args.Error(1)
}

func (m *mockRepo) UpdateAssessment(ctx context.Context, a Assessment) (Assessment, error) {
	args := m.Called(ctx, a)
	if fn, ok := args.Get(0).(func(context.Context, Assessment) Assessment); ok {
		return fn(ctx, a), args.Error(1)
	}
	return args.Get(0).(Assessment), args.Error(1)
}

func (m *mockRepo) UpdateStatus(ctx context.Context, id string, to Status, from ...Status) (bool, error) {
	args := m.Called(ctx, id, to, from)
	return args.Bool(0), args.Error(1)
}

func (m *mockRepo) MarkAssessment(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockRepo) DeleteAssessment(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRepo) QueryCourseAssessments(ctx context.Context, courseID string, status Status, isMarked *bool) ([]Assessment, error) {
	args := m.Called(ctx, courseID, status, isMarked)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Assessment), args.Error(1)
}

func (m *mockRepo) QueryOpenAssessments(ctx context.Context) ([]Assessment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Assessment), args.Error(1)
}

func (m *mockRepo) QueryInstructions(ctx context.Context, assessmentID string) ([]Instruction, error) {
	args := m.Called(ctx, assessmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Instruction), args.Error(1)
}

func (m *mockRepo) CreateInstructions(ctx context.Context, instructions ...Instruction) error {
	return m.Called(ctx, instructions).Error(0)
}

func (m *mockRepo) GetInstruction(ctx context.Context, id string) (Instruction, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Instruction), args.Error(1)
}

func (m *mockRepo) UpdateInstruction(ctx context.Context, ins Instruction) error {
	return m.Called(ctx, ins).Error(0)
}

func (m *mockRepo) DeleteInstruction(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRepo) CountQuestions(ctx context.Context, assessmentID string) (int, error) {
	args := m.Called(ctx, assessmentID)
	return args.Int(0), args.Error(1)
}

func (m *mockRepo) QueryQuestions(ctx context.Context, assessmentID string, withOptions bool) ([]Question, error) {
	args := m.Called(ctx, assessmentID, withOptions)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Question), args.Error(1)
}

func (m *mockRepo) GetQuestion(ctx context.Context, id string) (Question, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Question), args.Error(1)
}

func (m *mockRepo) CreateQuestion(ctx context.Context, q Question) error {
	return m.Called(ctx, q).Error(0)
}

func (m *mockRepo) UpdateQuestion(ctx context.Context, q Question) error {
	return m.Called(ctx, q).Error(0)
}

func (m *mockRepo) DeleteQuestion(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRepo) GetOption(ctx context.Context, id string) (Option, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Option), args.Error(1)
}

func (m *mockRepo) CreateOptions(ctx context.Context, options ...Option) error {
	return m.Called(ctx, options).Error(0)
}

func (m *mockRepo) UpdateOption(ctx context.Context, o Option) error {
	return m.Called(ctx, o).Error(0)
}

func (m *mockRepo) DeleteOption(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRepo) CountSubmissions(ctx context.Context, assessmentID, studentID string) (int, error) {
	args := m.Called(ctx, assessmentID, studentID)
	return args.Int(0), args.Error(1)
}

func (m *mockRepo) QuerySubmissions(ctx context.Context, assessmentID, studentID string) ([]Submission, error) {
	args := m.Called(ctx, assessmentID, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Submission), args.Error(1)
}

func (m *mockRepo) SaveSubmissions(ctx context.Context, assessmentID, studentID string, subs []Submission, scores []Score) (Total, error) {
	args := m.Called(ctx, assessmentID, studentID, subs, scores)
	return args.Get(0).(Total), args.Error(1)
}

func (m *mockRepo) QueryScores(ctx context.Context, assessmentID, studentID string) ([]Score, error) {
	args := m.Called(ctx, assessmentID, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Score), args.Error(1)
}

func (m *mockRepo) SaveScores(ctx context.Context, assessmentID string, scores []Score) ([]Total, error) {
	args := m.Called(ctx, assessmentID, scores)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Total), args.Error(1)
}

func (m *mockRepo) GetTotal(ctx context.Context, assessmentID, studentID string) (Total, error) {
	args := m.Called(ctx, assessmentID, studentID)
	return args.Get(0).(Total), args.Error(1)
}

func (m *mockRepo) QueryResults(ctx context.Context, assessmentID string, filter ResultFilter) ([]Result, error) {
	args := m.Called(ctx, assessmentID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Result), args.Error(1)
}

func (m *mockRepo) GetResult(ctx context.Context, assessmentID, regNum string) (Result, error) {
	args := m.Called(ctx, assessmentID, regNum)
	return args.Get(0).(Result), args.Error(1)
}

func (m *mockRepo) GetStatsData(ctx context.Context, a Assessment) (StatsData, error) {
	args := m.Called(ctx, a)
	return args.Get(0).(StatsData), args.Error(1)
}

// fakeCourses grants access from static membership sets.
type fakeCourses struct {
	courses     map[string]bool
	instructors map[string]bool // instructorID/code
	students    map[string]bool // regNum/code
}

func (f fakeCourses) CourseExists(_ context.Context, code string) (bool, error) {
	return f.courses[code], nil
}

func (f fakeCourses) IsAcceptedInstructor(_ context.Context, instructorID, code string) (bool, error) {
	return f.instructors[instructorID+"/"+code], nil
}

func (f fakeCourses) IsEnrolled(_ context.Context, regNum, code string, _ bool) (bool, error) {
	return f.students[regNum+"/"+code], nil
}

type memCache struct {
	mu    sync.Mutex
	items map[string][]byte
	sets  int
}

func (c *memCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.items[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dest)
}

func (c *memCache) Set(_ context.Context, key string, val interface{}, _ time.Duration) error {
	b, err := json.Marshal(val)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = b
	c.sets++
	return nil
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.items, k)
	}
	return nil
}

type eventRecorder struct {
	events []core.Event
}

func (r *eventRecorder) Publish(_ context.Context, events ...core.Event) error {
	r.events = append(r.events, events...)
	return nil
}

func (r *eventRecorder) Close() error { return nil }

func (r *eventRecorder) names() []string {
	names := make([]string, len(r.events))
	for i, e := range r.events {
		names[i] = e.Name
	}
	return names
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}
