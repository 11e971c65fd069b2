package assessment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/ChukwumaKingsley/smart-school-forked/core"
)

var (
	now        = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	instructor = core.Principal{ID: "ins1", IsInstructor: true}
	outsider   = core.Principal{ID: "ins2", IsInstructor: true}
	student    = core.Principal{ID: "20181234567"}
	stranger   = core.Principal{ID: "20187654321"}
)

type fixture struct {
	svc    *Service
	repo   *mockRepo
	cache  *memCache
	events *eventRecorder
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	repo := new(mockRepo)
	cache := &memCache{items: make(map[string][]byte)}
	events := &eventRecorder{}
	courses := fakeCourses{
		courses:     map[string]bool{"CSC101": true, "CSC102": true},
		instructors: map[string]bool{"ins1/CSC101": true},
		students:    map[string]bool{"20181234567/CSC101": true},
	}
	conf := &core.Config{ReviewAfter: 2 * time.Hour, Redis: core.RedisConfig{StatsTTL: time.Minute}}

	svc := NewService(repo, courses, events, cache, conf, nopLogger{})
	svc.SetNowFunc(func() time.Time { return now })
	t.Cleanup(func() { repo.AssertExpectations(t) })
	return fixture{svc: svc, repo: repo, cache: cache, events: events}
}

func asmt(status Status, start time.Time) Assessment {
	a := Assessment{
		ID:        "a1",
		Title:     "Midterm",
		StartDate: start,
		EndDate:   start.Add(2 * time.Hour),
		Duration:  60,
		TotalMark: 100,
		Type:      TypeTest,
		Status:    status,
		CourseID:  "CSC101",
	}
	a.SyncFlags()
	return a
}

func TestService_Create(t *testing.T) {
	na := NewAssessment{
		Title:     "Midterm",
		StartDate: now.Add(time.Hour),
		EndDate:   now.Add(3 * time.Hour),
		Duration:  60,
		TotalMark: 100,
		Type:      TypeTest,
		CourseID:  "CSC101",
	}

	t.Run("created as draft", func(t *testing.T) {
		f := newFixture(t)
		f.repo.On("CreateAssessment", mock.Anything, mock.MatchedBy(func(a Assessment) bool {
			return a.Status == StatusDraft && len(a.ID) == 15 && a.CourseID == "CSC101"
		})).Return(func(_ context.Context, a Assessment) Assessment { return a }, nil)

		a, err := f.svc.Create(context.Background(), instructor, na)
		require.NoError(t, err)
		assert.Equal(t, StatusDraft, a.Status)
		assert.Equal(t, []string{core.EventAssessmentCreated}, f.events.names())
	})

	tests := []struct {
		name    string
		p       core.Principal
		modify  func(na *NewAssessment)
		wantErr error
	}{
		{"not an instructor of the course", outsider, func(*NewAssessment) {}, core.ErrAccessDenied},
		{"student", student, func(*NewAssessment) {}, core.ErrAccessDenied},
		{"start in the past", instructor, func(na *NewAssessment) { na.StartDate = now.Add(-time.Minute) }, ErrStartInPast},
		{"start now", instructor, func(na *NewAssessment) { na.StartDate = now }, ErrStartInPast},
		{"end before start", instructor, func(na *NewAssessment) { na.EndDate = na.StartDate }, ErrEndBeforeStart},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			in := na
			tt.modify(&in)
			_, err := f.svc.Create(context.Background(), tt.p, in)
			assert.Equal(t, tt.wantErr, err)
		})
	}
}

func TestService_EditSchedule(t *testing.T) {
	valid := Schedule{StartDate: now.Add(2 * time.Hour), EndDate: now.Add(4 * time.Hour), Duration: 30}

	tests := []struct {
		name     string
		existing Assessment
		schedule Schedule
		wantErr  error
	}{
		{"start in the past", asmt(StatusDraft, now.Add(time.Hour)), Schedule{StartDate: now.Add(-time.Hour), EndDate: now.Add(time.Hour)}, ErrScheduleStartInPast},
		{"start now", asmt(StatusDraft, now.Add(time.Hour)), Schedule{StartDate: now, EndDate: now.Add(time.Hour)}, ErrScheduleStartInPast},
		{"live", asmt(StatusActive, now.Add(-time.Minute)), valid, ErrLiveSchedule},
		{"ended", asmt(StatusCompleted, now.Add(-3*time.Hour)), valid, ErrEndedSchedule},
		{"end before start", asmt(StatusDraft, now.Add(time.Hour)), Schedule{StartDate: now.Add(2 * time.Hour), EndDate: now.Add(time.Hour)}, ErrEndBeforeStart},
		{"draft", asmt(StatusDraft, now.Add(time.Hour)), valid, nil},
		{"active not started", asmt(StatusActive, now.Add(time.Hour)), valid, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.repo.On("GetAssessment", mock.Anything, "a1").Return(tt.existing, nil)
			if tt.wantErr == nil {
				f.repo.On("UpdateAssessment", mock.Anything, mock.Anything).
					Return(func(_ context.Context, a Assessment) Assessment { return a }, nil)
			}

			a, err := f.svc.EditSchedule(context.Background(), instructor, "a1", tt.schedule)
			assert.Equal(t, tt.wantErr, err)
			if err == nil {
				assert.Equal(t, tt.schedule.StartDate, a.StartDate)
				assert.Equal(t, 30, a.Duration)
			}
		})
	}
}

func TestService_Update(t *testing.T) {
	f := newFixture(t)
	f.repo.On("GetAssessment", mock.Anything, "a1").Return(asmt(StatusCompleted, now.Add(-3*time.Hour)), nil)

	_, err := f.svc.Update(context.Background(), instructor, "a1", UpdateAssessment{Title: "x", Duration: 1, TotalMark: 1, Type: TypeExam})
	assert.Equal(t, ErrEndedEdit, err)
}

func TestService_Activate(t *testing.T) {
	tests := []struct {
		name      string
		existing  Assessment
		questions int
		wantErr   error
		wantCall  bool
	}{
		{"no questions", asmt(StatusDraft, now.Add(time.Hour)), 0, ErrNoQuestions, false},
		{"start passed", asmt(StatusDraft, now.Add(-time.Minute)), 2, ErrStartPassed, false},
		{"already active", asmt(StatusActive, now.Add(time.Hour)), 2, nil, false},
		{"draft", asmt(StatusDraft, now.Add(time.Hour)), 2, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.repo.On("GetAssessment", mock.Anything, "a1").Return(tt.existing, nil)
			f.repo.On("CountQuestions", mock.Anything, "a1").Return(tt.questions, nil)
			if tt.wantCall {
				f.repo.On("UpdateStatus", mock.Anything, "a1", StatusActive, []Status{StatusDraft}).Return(true, nil)
			}

			a, err := f.svc.Activate(context.Background(), instructor, "a1")
			assert.Equal(t, tt.wantErr, err)
			if err == nil {
				assert.Equal(t, StatusActive, a.Status)
				assert.True(t, a.IsActive)
			}
			if tt.wantCall {
				assert.Equal(t, []string{core.EventAssessmentActivated}, f.events.names())
			} else {
				assert.Empty(t, f.events.events)
			}
		})
	}

	t.Run("lost race to a deactivation", func(t *testing.T) {
		f := newFixture(t)
		a := asmt(StatusDraft, now.Add(time.Hour))
		f.repo.On("GetAssessment", mock.Anything, "a1").Return(a, nil).Once()
		f.repo.On("CountQuestions", mock.Anything, "a1").Return(1, nil)
		f.repo.On("UpdateStatus", mock.Anything, "a1", StatusActive, []Status{StatusDraft}).Return(false, nil)
		f.repo.On("GetAssessment", mock.Anything, "a1").Return(asmt(StatusCompleted, now.Add(time.Hour)), nil).Once()

		_, err := f.svc.Activate(context.Background(), instructor, "a1")
		assert.Equal(t, ErrStateChanged, err)
	})

	t.Run("lost race to the same activation", func(t *testing.T) {
		f := newFixture(t)
		f.repo.On("GetAssessment", mock.Anything, "a1").Return(asmt(StatusDraft, now.Add(time.Hour)), nil).Once()
		f.repo.On("CountQuestions", mock.Anything, "a1").Return(1, nil)
		f.repo.On("UpdateStatus", mock.Anything, "a1", StatusActive, []Status{StatusDraft}).Return(false, nil)
		f.repo.On("GetAssessment", mock.Anything, "a1").Return(asmt(StatusActive, now.Add(time.Hour)), nil).Once()

		a, err := f.svc.Activate(context.Background(), instructor, "a1")
		require.NoError(t, err)
		assert.Equal(t, StatusActive, a.Status)
	})
}

func TestService_Deactivate(t *testing.T) {
	t.Run("started", func(t *testing.T) {
		f := newFixture(t)
		f.repo.On("GetAssessment", mock.Anything, "a1").Return(asmt(StatusActive, now.Add(-time.Minute)), nil)
		_, err := f.svc.Deactivate(context.Background(), instructor, "a1")
		assert.Equal(t, ErrAlreadyStarted, err)
	})

	t.Run("already draft", func(t *testing.T) {
		f := newFixture(t)
		f.repo.On("GetAssessment", mock.Anything, "a1").Return(asmt(StatusDraft, now.Add(time.Hour)), nil)
		a, err := f.svc.Deactivate(context.Background(), instructor, "a1")
		require.NoError(t, err)
		assert.Equal(t, StatusDraft, a.Status)
	})

	t.Run("active", func(t *testing.T) {
		f := newFixture(t)
		f.repo.On("GetAssessment", mock.Anything, "a1").Return(asmt(StatusActive, now.Add(time.Hour)), nil)
		f.repo.On("UpdateStatus", mock.Anything, "a1", StatusDraft, []Status{StatusActive}).Return(true, nil)
		a, err := f.svc.Deactivate(context.Background(), instructor, "a1")
		require.NoError(t, err)
		assert.Equal(t, StatusDraft, a.Status)
		assert.False(t, a.IsActive)
	})
}

func TestService_EndAutomatic(t *testing.T) {
	t.Run("before end is a no-op", func(t *testing.T) {
		f := newFixture(t)
		f.repo.On("GetAssessment", mock.Anything, "a1").Return(asmt(StatusActive, now.Add(-time.Hour)), nil)
		a, err := f.svc.EndAutomatic(context.Background(), stranger, "a1")
		require.NoError(t, err)
		assert.Equal(t, StatusActive, a.Status)
	})

	t.Run("after end", func(t *testing.T) {
		f := newFixture(t)
		f.repo.On("GetAssessment", mock.Anything, "a1").Return(asmt(StatusActive, now.Add(-2*time.Hour)), nil)
		f.repo.On("UpdateStatus", mock.Anything, "a1", StatusCompleted, []Status{StatusDraft, StatusActive}).Return(true, nil)
		a, err := f.svc.EndAutomatic(context.Background(), stranger, "a1")
		require.NoError(t, err)
		assert.True(t, a.IsCompleted)
		assert.Equal(t, []string{core.EventAssessmentCompleted}, f.events.names())
	})

	t.Run("already completed", func(t *testing.T) {
		f := newFixture(t)
		f.repo.On("GetAssessment", mock.Anything, "a1").Return(asmt(StatusCompleted, now.Add(-5*time.Hour)), nil)
		a, err := f.svc.EndAutomatic(context.Background(), stranger, "a1")
		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, a.Status)
		assert.Empty(t, f.events.events)
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture(t)
		f.repo.On("GetAssessment", mock.Anything, "zz").Return(Assessment{}, ErrNotFound)
		_, err := f.svc.EndAutomatic(context.Background(), stranger, "zz")
		assert.True(t, core.IsNotFound(err))
	})
}

func TestService_EndManual(t *testing.T) {
	t.Run("not started", func(t *testing.T) {
		f := newFixture(t)
		f.repo.On("GetAssessment", mock.Anything, "a1").Return(asmt(StatusActive, now.Add(time.Hour)), nil)
		_, err := f.svc.EndManual(context.Background(), instructor, "a1")
		assert.Equal(t, ErrNotStarted, err)
	})

	t.Run("student", func(t *testing.T) {
		f := newFixture(t)
		f.repo.On("GetAssessment", mock.Anything, "a1").Return(asmt(StatusActive, now.Add(-time.Minute)), nil)
		_, err := f.svc.EndManual(context.Background(), student, "a1")
		assert.Equal(t, core.ErrAccessDenied, err)
	})

	t.Run("live", func(t *testing.T) {
		f := newFixture(t)
		f.repo.On("GetAssessment", mock.Anything, "a1").Return(asmt(StatusActive, now.Add(-time.Minute)), nil)
		f.repo.On("UpdateStatus", mock.Anything, "a1", StatusCompleted, []Status{StatusDraft, StatusActive}).Return(true, nil)
		a, err := f.svc.EndManual(context.Background(), instructor, "a1")
		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, a.Status)
	})
}

func TestService_Mark(t *testing.T) {
	t.Run("not ended", func(t *testing.T) {
		f := newFixture(t)
		f.repo.On("GetAssessment", mock.Anything, "a1").Return(asmt(StatusActive, now.Add(-time.Minute)), nil)
		_, err := f.svc.Mark(context.Background(), instructor, "a1")
		assert.Equal(t, ErrNotEnded, err)
	})

	t.Run("ended", func(t *testing.T) {
		f := newFixture(t)
		f.repo.On("GetAssessment", mock.Anything, "a1").Return(asmt(StatusCompleted, now.Add(-3*time.Hour)), nil)
		f.repo.On("MarkAssessment", mock.Anything, "a1").Return(true, nil)
		a, err := f.svc.Mark(context.Background(), instructor, "a1")
		require.NoError(t, err)
		assert.True(t, a.IsMarked)
		assert.Equal(t, []string{core.EventAssessmentMarked}, f.events.names())
	})
}

func TestService_EndDue(t *testing.T) {
	f := newFixture(t)
	due := asmt(StatusActive, now.Add(-3*time.Hour))
	due.ID = "due"
	draftDue := asmt(StatusDraft, now.Add(-2*time.Hour))
	draftDue.ID = "draft-due"
	running := asmt(StatusActive, now.Add(-time.Hour))
	running.ID = "running"

	f.repo.On("QueryOpenAssessments", mock.Anything).Return([]Assessment{due, draftDue, running}, nil)
	f.repo.On("UpdateStatus", mock.Anything, "due", StatusCompleted, []Status{StatusDraft, StatusActive}).Return(true, nil)
	f.repo.On("UpdateStatus", mock.Anything, "draft-due", StatusCompleted, []Status{StatusDraft, StatusActive}).Return(true, nil)

	n, err := f.svc.EndDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	f.repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, "running", mock.Anything, mock.Anything)
}

func TestService_AssessmentQuestions(t *testing.T) {
	yes, no := true, false
	questions := func() []Question {
		return []Question{
			{ID: "q1", QuestionType: QuestionObj, Options: []Option{{ID: "o1", IsCorrect: &yes}, {ID: "o2", IsCorrect: &no}}},
			{ID: "q2", QuestionType: QuestionNLP, Options: []Option{{ID: "o3", IsCorrect: &yes}}},
		}
	}

	t.Run("instructor sees answers", func(t *testing.T) {
		f := newFixture(t)
		f.repo.On("GetAssessment", mock.Anything, "a1").Return(asmt(StatusDraft, now.Add(time.Hour)), nil)
		f.repo.On("QueryInstructions", mock.Anything, "a1").Return([]Instruction{{ID: "i1"}}, nil)
		f.repo.On("QueryQuestions", mock.Anything, "a1", true).Return(questions(), nil)

		paper, err := f.svc.AssessmentQuestions(context.Background(), instructor, "a1")
		require.NoError(t, err)
		require.Len(t, paper.Questions, 2)
		assert.NotNil(t, paper.Questions[0].Options[0].IsCorrect)
		assert.Empty(t, paper.Questions[1].Options)
	})

	t.Run("student does not", func(t *testing.T) {
		f := newFixture(t)
		f.repo.On("GetAssessment", mock.Anything, "a1").Return(asmt(StatusActive, now.Add(-time.Minute)), nil)
		f.repo.On("CountSubmissions", mock.Anything, "a1", student.ID).Return(0, nil)
		f.repo.On("QueryInstructions", mock.Anything, "a1").Return([]Instruction{}, nil)
		f.repo.On("QueryQuestions", mock.Anything, "a1", true).Return(questions(), nil)

		paper, err := f.svc.AssessmentQuestions(context.Background(), student, "a1")
		require.NoError(t, err)
		for _, o := range paper.Questions[0].Options {
			assert.Nil(t, o.IsCorrect)
		}
	})

	t.Run("student who submitted", func(t *testing.T) {
		f := newFixture(t)
		f.repo.On("GetAssessment", mock.Anything, "a1").Return(asmt(StatusActive, now.Add(-time.Minute)), nil)
		f.repo.On("CountSubmissions", mock.Anything, "a1", student.ID).Return(3, nil)
		f.repo.On("QueryInstructions", mock.Anything, "a1").Return([]Instruction{{ID: "i1"}}, nil)

		paper, err := f.svc.AssessmentQuestions(context.Background(), student, "a1")
		require.NoError(t, err)
		assert.Len(t, paper.Instructions, 1)
		assert.Empty(t, paper.Questions)
	})

	t.Run("student of another course", func(t *testing.T) {
		f := newFixture(t)
		f.repo.On("GetAssessment", mock.Anything, "a1").Return(asmt(StatusActive, now.Add(-time.Minute)), nil)
		_, err := f.svc.AssessmentQuestions(context.Background(), stranger, "a1")
		assert.Equal(t, core.ErrAccessDenied, err)
	})
}

func TestService_Questions(t *testing.T) {
	tests := []struct {
		name    string
		p       core.Principal
		a       Assessment
		wantErr error
	}{
		{"student inside window", student, asmt(StatusActive, now.Add(-30*time.Minute)), nil},
		{"student before start", student, asmt(StatusActive, now.Add(time.Minute)), ErrOutsideWindow},
		{"student after duration", student, asmt(StatusActive, now.Add(-61*time.Minute)), ErrOutsideWindow},
		{"student on draft", student, asmt(StatusDraft, now.Add(-30*time.Minute)), ErrOutsideWindow},
		{"instructor any time", instructor, asmt(StatusDraft, now.Add(time.Hour)), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.repo.On("GetAssessment", mock.Anything, "a1").Return(tt.a, nil)
			if tt.wantErr == nil {
				f.repo.On("QueryQuestions", mock.Anything, "a1", false).Return([]Question{{ID: "q1"}}, nil)
			}
			_, err := f.svc.Questions(context.Background(), tt.p, "a1")
			assert.Equal(t, tt.wantErr, err)
		})
	}
}

func TestService_Review(t *testing.T) {
	// start + 60m duration + 2h review delay
	tests := []struct {
		name    string
		start   time.Time
		wantErr error
	}{
		{"too early", now.Add(-2*time.Hour - 59*time.Minute), ErrReviewNotAvailable},
		{"open", now.Add(-3 * time.Hour), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.repo.On("GetAssessment", mock.Anything, "a1").Return(asmt(StatusCompleted, tt.start), nil)
			if tt.wantErr == nil {
				f.repo.On("QueryInstructions", mock.Anything, "a1").Return([]Instruction{}, nil)
				f.repo.On("QueryQuestions", mock.Anything, "a1", true).Return([]Question{}, nil)
			}
			_, err := f.svc.Review(context.Background(), student, "a1")
			assert.Equal(t, tt.wantErr, err)
		})
	}
}

func TestService_ListByCourse(t *testing.T) {
	t.Run("missing course", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.ListByCourse(context.Background(), instructor, "NOPE", QueryFilter{})
		assert.Equal(t, ErrCourseNotFound, err)
	})

	t.Run("invalid status", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.ListByCourse(context.Background(), student, "CSC101", QueryFilter{Status: "pending"})
		var verr *core.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("by status", func(t *testing.T) {
		f := newFixture(t)
		marked := true
		f.repo.On("QueryCourseAssessments", mock.Anything, "CSC101", StatusCompleted, &marked).
			Return([]Assessment{asmt(StatusCompleted, now.Add(-5*time.Hour))}, nil)
		list, err := f.svc.ListByCourse(context.Background(), student, "CSC101", QueryFilter{Status: " Completed ", IsMarked: &marked})
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})
}

func TestService_StudentResult(t *testing.T) {
	yes := true
	ended := asmt(StatusCompleted, now.Add(-4*time.Hour))

	t.Run("another student", func(t *testing.T) {
		f := newFixture(t)
		f.repo.On("GetAssessment", mock.Anything, "a1").Return(ended, nil)
		_, err := f.svc.StudentResult(context.Background(), stranger, "a1", student.ID)
		assert.Equal(t, core.ErrAccessDenied, err)
	})

	t.Run("no result", func(t *testing.T) {
		f := newFixture(t)
		f.repo.On("GetAssessment", mock.Anything, "a1").Return(ended, nil)
		f.repo.On("GetTotal", mock.Anything, "a1", student.ID).Return(Total{}, core.NewNotFoundError("Total not found"))
		_, err := f.svc.StudentResult(context.Background(), instructor, "a1", student.ID)
		assert.Equal(t, ErrResultNotFound, err)
	})

	t.Run("annotated", func(t *testing.T) {
		f := newFixture(t)
		f.repo.On("GetAssessment", mock.Anything, "a1").Return(ended, nil)
		f.repo.On("GetTotal", mock.Anything, "a1", student.ID).Return(Total{Total: 5}, nil)
		f.repo.On("QueryInstructions", mock.Anything, "a1").Return([]Instruction{}, nil)
		f.repo.On("QueryQuestions", mock.Anything, "a1", true).Return([]Question{
			{ID: "q1", Mark: 5, QuestionType: QuestionObj, Options: []Option{{ID: "o1", IsCorrect: &yes}}},
			{ID: "q2", Mark: 5, QuestionType: QuestionNLP},
		}, nil)
		f.repo.On("QuerySubmissions", mock.Anything, "a1", student.ID).Return([]Submission{
			{QuestionID: "q1", StuAnswerID: null.StringFrom("o1")},
			{QuestionID: "q2", StuAnswer: null.StringFrom("because")},
		}, nil)
		f.repo.On("QueryScores", mock.Anything, "a1", student.ID).Return([]Score{{QuestionID: "q1", Score: 5}}, nil)

		paper, err := f.svc.StudentResult(context.Background(), student, "a1", student.ID)
		require.NoError(t, err)
		require.NotNil(t, paper.Total)
		assert.Equal(t, 5.0, *paper.Total)
		assert.Equal(t, "o1", paper.Questions[0].StuAnswers.StuAnswerID.String)
		assert.Equal(t, 5.0, *paper.Questions[0].StuMark)
		assert.Equal(t, "because", paper.Questions[1].StuAnswers.StuAnswer.String)
		assert.Nil(t, paper.Questions[1].StuMark)
	})
}

func TestService_Stats_Cached(t *testing.T) {
	f := newFixture(t)
	a := asmt(StatusCompleted, now.Add(-4*time.Hour))
	f.repo.On("GetAssessment", mock.Anything, "a1").Return(a, nil)
	f.repo.On("GetStatsData", mock.Anything, a).Return(StatsData{
		NumStudents:  2,
		AvgScore:     null.Float64From(70),
		HighestScore: null.Float64From(80),
		LowestScore:  null.Float64From(60),
		NumEnrolled:  2,
	}, nil).Once()

	stats, err := f.svc.Stats(context.Background(), instructor, "a1")
	require.NoError(t, err)
	assert.Equal(t, 70.0, stats.AvgScorePercentage)

	again, err := f.svc.Stats(context.Background(), instructor, "a1")
	require.NoError(t, err)
	assert.Equal(t, stats, again)
	assert.Equal(t, 1, f.cache.sets)

	_, err = f.svc.Stats(context.Background(), student, "a1")
	assert.Equal(t, core.ErrAccessDenied, err)
}

func TestService_Submit(t *testing.T) {
	yes, no := true, false
	live := asmt(StatusActive, now.Add(-10*time.Minute))
	questions := []Question{
		{ID: "q1", Mark: 4, QuestionType: QuestionObj, Options: []Option{{ID: "o1", IsCorrect: &yes}, {ID: "o2", IsCorrect: &no}}},
		{ID: "q2", Mark: 6, QuestionType: QuestionObj, Options: []Option{{ID: "o3", IsCorrect: &yes}, {ID: "o4", IsCorrect: &no}}},
		{ID: "q3", Mark: 10, QuestionType: QuestionNLP},
	}

	t.Run("auto scores objective answers", func(t *testing.T) {
		f := newFixture(t)
		f.repo.On("GetAssessment", mock.Anything, "a1").Return(live, nil)
		f.repo.On("CountSubmissions", mock.Anything, "a1", student.ID).Return(0, nil)
		f.repo.On("QueryQuestions", mock.Anything, "a1", true).Return(questions, nil)
		f.repo.On("SaveSubmissions", mock.Anything, "a1", student.ID,
			mock.MatchedBy(func(subs []Submission) bool { return len(subs) == 3 }),
			mock.MatchedBy(func(scores []Score) bool {
				return len(scores) == 2 && scores[0].Score == 4 && scores[1].Score == 0
			}),
		).Return(Total{StudentID: student.ID, AssessmentID: "a1", Total: 4}, nil)

		total, err := f.svc.Submit(context.Background(), student, "a1", NewSubmissions{Submissions: []SubmissionInput{
			{QuestionID: "q1", StuAnswerID: "o1"},
			{QuestionID: "q2", StuAnswerID: "o4"},
			{QuestionID: "q3", StuAnswer: "an essay"},
		}})
		require.NoError(t, err)
		assert.Equal(t, 4.0, total.Total)
		assert.Equal(t, []string{core.EventSubmissionReceived}, f.events.names())
	})

	t.Run("option of another question", func(t *testing.T) {
		assert.Equal(t, 0.0, autoScore(questions[0], "o3"))
	})

	t.Run("already submitted", func(t *testing.T) {
		f := newFixture(t)
		f.repo.On("GetAssessment", mock.Anything, "a1").Return(live, nil)
		f.repo.On("CountSubmissions", mock.Anything, "a1", student.ID).Return(1, nil)
		_, err := f.svc.Submit(context.Background(), student, "a1", NewSubmissions{Submissions: []SubmissionInput{{QuestionID: "q1"}}})
		assert.Equal(t, ErrAlreadySubmitted, err)
	})

	t.Run("window closed", func(t *testing.T) {
		f := newFixture(t)
		f.repo.On("GetAssessment", mock.Anything, "a1").Return(asmt(StatusActive, now.Add(-90*time.Minute)), nil)
		_, err := f.svc.Submit(context.Background(), student, "a1", NewSubmissions{Submissions: []SubmissionInput{{QuestionID: "q1"}}})
		assert.Equal(t, ErrNotOpen, err)
	})

	t.Run("unknown question", func(t *testing.T) {
		f := newFixture(t)
		f.repo.On("GetAssessment", mock.Anything, "a1").Return(live, nil)
		f.repo.On("CountSubmissions", mock.Anything, "a1", student.ID).Return(0, nil)
		f.repo.On("QueryQuestions", mock.Anything, "a1", true).Return(questions, nil)
		_, err := f.svc.Submit(context.Background(), student, "a1", NewSubmissions{Submissions: []SubmissionInput{{QuestionID: "zz"}}})
		assert.Equal(t, ErrQuestionNotFound, err)
	})

	t.Run("instructor", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Submit(context.Background(), instructor, "a1", NewSubmissions{})
		assert.Equal(t, core.ErrAccessDenied, err)
	})
}

func TestService_SetScores(t *testing.T) {
	ended := asmt(StatusCompleted, now.Add(-4*time.Hour))
	questions := []Question{{ID: "q3", Mark: 10, QuestionType: QuestionNLP}}

	t.Run("above mark", func(t *testing.T) {
		f := newFixture(t)
		f.repo.On("GetAssessment", mock.Anything, "a1").Return(ended, nil)
		f.repo.On("QueryQuestions", mock.Anything, "a1", false).Return(questions, nil)
		_, err := f.svc.SetScores(context.Background(), instructor, "a1", NewScores{Scores: []ScoreInput{
			{StudentID: student.ID, QuestionID: "q3", Score: 11},
		}})
		var verr *core.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "score", verr.Fields[0].Field)
	})

	t.Run("saved", func(t *testing.T) {
		f := newFixture(t)
		f.repo.On("GetAssessment", mock.Anything, "a1").Return(ended, nil)
		f.repo.On("QueryQuestions", mock.Anything, "a1", false).Return(questions, nil)
		f.repo.On("SaveScores", mock.Anything, "a1", mock.MatchedBy(func(scores []Score) bool {
			return len(scores) == 1 && scores[0].Score == 7.5
		})).Return([]Total{{StudentID: student.ID, Total: 11.5}}, nil)

		totals, err := f.svc.SetScores(context.Background(), instructor, "a1", NewScores{Scores: []ScoreInput{
			{StudentID: student.ID, QuestionID: "q3", Score: 7.5},
		}})
		require.NoError(t, err)
		assert.Equal(t, 11.5, totals[0].Total)
	})
}

func TestService_ContentRequiresDraft(t *testing.T) {
	f := newFixture(t)
	f.repo.On("GetAssessment", mock.Anything, "a1").Return(asmt(StatusActive, now.Add(time.Hour)), nil)

	_, err := f.svc.AddInstructions(context.Background(), instructor, "a1", NewInstructions{Instructions: []string{"Answer all"}})
	assert.Equal(t, ErrNotDraft, err)
	_, err = f.svc.AddQuestion(context.Background(), instructor, "a1", QuestionInput{Question: "Why?", QuestionType: QuestionNLP})
	assert.Equal(t, ErrNotDraft, err)
}

func TestService_AddQuestion(t *testing.T) {
	f := newFixture(t)
	f.repo.On("GetAssessment", mock.Anything, "a1").Return(asmt(StatusDraft, now.Add(time.Hour)), nil)
	f.repo.On("CreateQuestion", mock.Anything, mock.MatchedBy(func(q Question) bool {
		return q.AssessmentID == "a1" && len(q.Options) == 2 && q.Options[0].QuestionID == q.ID
	})).Return(nil)

	q, err := f.svc.AddQuestion(context.Background(), instructor, "a1", QuestionInput{
		Question:     "2 + 2?",
		Mark:         2,
		QuestionType: QuestionObj,
		Options:      []OptionInput{{Option: "4", IsCorrect: true}, {Option: "5"}},
	})
	require.NoError(t, err)
	assert.True(t, *q.Options[0].IsCorrect)
	assert.False(t, *q.Options[1].IsCorrect)
}
