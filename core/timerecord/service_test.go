package timerecord

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/ChukwumaKingsley/smart-school-forked/core"
	"github.com/ChukwumaKingsley/smart-school-forked/core/assessment"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) CreateTimeRecord(ctx context.Context, tr TimeRecord) (TimeRecord, error) {
	args := m.Called(ctx, tr)
	return args.Get(0).(TimeRecord), args.Error(1)
}

func (m *mockRepo) GetTimeRecord(ctx context.Context, assessmentID, studentID string) (TimeRecord, error) {
	args := m.Called(ctx, assessmentID, studentID)
	return args.Get(0).(TimeRecord), args.Error(1)
}

func (m *mockRepo) EndTimeRecord(ctx context.Context, assessmentID, studentID string, end time.Time) (bool, error) {
	args := m.Called(ctx, assessmentID, studentID, end)
	return args.Bool(0), args.Error(1)
}

type mockCourses struct {
	mock.Mock
}

func (m *mockCourses) CourseExists(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *mockCourses) IsEnrolled(ctx context.Context, regNum, code string, acceptedOnly bool) (bool, error) {
	args := m.Called(ctx, regNum, code, acceptedOnly)
	return args.Bool(0), args.Error(1)
}

type mockAssessments struct {
	mock.Mock
}

func (m *mockAssessments) GetAssessment(ctx context.Context, id string) (assessment.Assessment, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(assessment.Assessment), args.Error(1)
}

var (
	now     = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	student = core.Principal{ID: "20181234567"}
)

func newTestService(t *testing.T) (*Service, *mockRepo, *mockCourses, *mockAssessments) {
	repo, courses, asmts := new(mockRepo), new(mockCourses), new(mockAssessments)
	svc := NewService(repo, courses, asmts)
	svc.SetNowFunc(func() time.Time { return now })
	t.Cleanup(func() {
		repo.AssertExpectations(t)
		courses.AssertExpectations(t)
		asmts.AssertExpectations(t)
	})
	return svc, repo, courses, asmts
}

func allow(courses *mockCourses, asmts *mockAssessments) {
	courses.On("CourseExists", mock.Anything, "CSC101").Return(true, nil)
	courses.On("IsEnrolled", mock.Anything, student.ID, "CSC101", true).Return(true, nil)
	asmts.On("GetAssessment", mock.Anything, "a1").Return(assessment.Assessment{ID: "a1", CourseID: "CSC101"}, nil)
}

func TestService_Start(t *testing.T) {
	t.Run("first call creates the record", func(t *testing.T) {
		svc, repo, courses, asmts := newTestService(t)
		allow(courses, asmts)
		repo.On("CreateTimeRecord", mock.Anything, mock.MatchedBy(func(tr TimeRecord) bool {
			return tr.StudentID == student.ID && tr.AssessmentID == "a1" && tr.StartDatetime.Equal(now) && !tr.EndDatetime.Valid
		})).Return(TimeRecord{ID: "t1", StudentID: student.ID, AssessmentID: "a1", StartDatetime: now}, nil)

		tr, err := svc.Start(context.Background(), student, "CSC101", "a1")
		require.NoError(t, err)
		assert.Equal(t, "t1", tr.ID)
	})

	t.Run("second call returns the existing record", func(t *testing.T) {
		svc, repo, courses, asmts := newTestService(t)
		allow(courses, asmts)
		earlier := TimeRecord{ID: "t1", StudentID: student.ID, AssessmentID: "a1", StartDatetime: now.Add(-time.Hour)}
		repo.On("CreateTimeRecord", mock.Anything, mock.Anything).Return(earlier, nil)

		tr, err := svc.Start(context.Background(), student, "CSC101", "a1")
		require.NoError(t, err)
		assert.Equal(t, earlier, tr)
	})
}

func TestService_Authorization(t *testing.T) {
	tests := []struct {
		name    string
		p       core.Principal
		setup   func(courses *mockCourses, asmts *mockAssessments)
		wantErr error
	}{
		{
			name: "course not found",
			p:    student,
			setup: func(courses *mockCourses, _ *mockAssessments) {
				courses.On("CourseExists", mock.Anything, "CSC101").Return(false, nil)
			},
			wantErr: ErrCourseNotFound,
		},
		{
			name: "instructor",
			p:    core.Principal{ID: "ins1", IsInstructor: true},
			setup: func(courses *mockCourses, _ *mockAssessments) {
				courses.On("CourseExists", mock.Anything, "CSC101").Return(true, nil)
			},
			wantErr: ErrNotStudent,
		},
		{
			name: "not enrolled",
			p:    student,
			setup: func(courses *mockCourses, _ *mockAssessments) {
				courses.On("CourseExists", mock.Anything, "CSC101").Return(true, nil)
				courses.On("IsEnrolled", mock.Anything, student.ID, "CSC101", true).Return(false, nil)
			},
			wantErr: ErrNotEnrolled,
		},
		{
			name: "assessment of another course",
			p:    student,
			setup: func(courses *mockCourses, asmts *mockAssessments) {
				courses.On("CourseExists", mock.Anything, "CSC101").Return(true, nil)
				courses.On("IsEnrolled", mock.Anything, student.ID, "CSC101", true).Return(true, nil)
				asmts.On("GetAssessment", mock.Anything, "a1").Return(assessment.Assessment{ID: "a1", CourseID: "CSC102"}, nil)
			},
			wantErr: ErrAssessmentNotFound,
		},
		{
			name: "missing assessment",
			p:    student,
			setup: func(courses *mockCourses, asmts *mockAssessments) {
				courses.On("CourseExists", mock.Anything, "CSC101").Return(true, nil)
				courses.On("IsEnrolled", mock.Anything, student.ID, "CSC101", true).Return(true, nil)
				asmts.On("GetAssessment", mock.Anything, "a1").Return(assessment.Assessment{}, assessment.ErrNotFound)
			},
			wantErr: ErrAssessmentNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, courses, asmts := newTestService(t)
			tt.setup(courses, asmts)
			_, err := svc.Start(context.Background(), tt.p, "CSC101", "a1")
			assert.Equal(t, tt.wantErr, err)
		})
	}
}

func TestService_End(t *testing.T) {
	t.Run("closes the record", func(t *testing.T) {
		svc, repo, courses, asmts := newTestService(t)
		allow(courses, asmts)
		repo.On("EndTimeRecord", mock.Anything, "a1", student.ID, now).Return(true, nil)
		repo.On("GetTimeRecord", mock.Anything, "a1", student.ID).Return(TimeRecord{
			ID: "t1", StartDatetime: now.Add(-30 * time.Minute), EndDatetime: null.TimeFrom(now),
		}, nil)

		tr, err := svc.End(context.Background(), student, "CSC101", "a1")
		require.NoError(t, err)
		assert.True(t, tr.EndDatetime.Time.Equal(now))
	})

	t.Run("no record", func(t *testing.T) {
		svc, repo, courses, asmts := newTestService(t)
		allow(courses, asmts)
		repo.On("EndTimeRecord", mock.Anything, "a1", student.ID, now).Return(false, nil)

		_, err := svc.End(context.Background(), student, "CSC101", "a1")
		assert.Equal(t, ErrNotFound, err)
		assert.True(t, core.IsNotFound(err))
	})
}
