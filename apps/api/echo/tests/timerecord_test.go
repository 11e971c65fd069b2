package tests

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChukwumaKingsley/smart-school-forked/core/assessment"
	"github.com/ChukwumaKingsley/smart-school-forked/core/timerecord"
	testutil "github.com/ChukwumaKingsley/smart-school-forked/tests"
)

func Test_timeRecordApi(t *testing.T) {
	e := setup(t)
	coord := testutil.CreateInstructor(t, e.usrRepo, "Ngozi Eze", "ngozi@uni.edu")
	chidi := testutil.CreateStudent(t, e.usrRepo, "20181234567", "Chidi Okeke", "chidi@uni.edu")
	amaka := testutil.CreateStudent(t, e.usrRepo, "20181234568", "Amaka Obi", "amaka@uni.edu")
	emeka := testutil.CreateStudent(t, e.usrRepo, "20181234569", "Emeka Nwosu", "emeka@uni.edu")
	testutil.CreateCourse(t, e.crsRepo, "CSC301", "Algorithms", coord.ID)
	testutil.CreateCourse(t, e.crsRepo, "MTH101", "Calculus", coord.ID)
	testutil.Enroll(t, e.crsRepo, "CSC301", chidi.ID, true)
	testutil.Enroll(t, e.crsRepo, "CSC301", amaka.ID, true)
	testutil.Enroll(t, e.crsRepo, "CSC301", emeka.ID, false)

	a := testutil.CreateAssessment(t, e.asmRepo, "CSC301", assessment.StatusActive, time.Now().Add(-5*time.Minute), 60)
	other := testutil.CreateAssessment(t, e.asmRepo, "MTH101", assessment.StatusActive, time.Now().Add(-5*time.Minute), 60)
	path := "/assessment_times/CSC301/" + a.ID
	endPath := "/assessment_times/end_assessment_time/CSC301/" + a.ID
	chidiToken := e.token(t, chidi)

	tests := []httpTest{
		{name: "Auth required", method: http.MethodPost, path: path, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Unknown course", method: http.MethodPost, path: "/assessment_times/NOPE/" + a.ID, token: chidiToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "Course not found"}),
		},
		{
			name: "Instructors are not timed", method: http.MethodPost, path: path, token: e.token(t, coord),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, httpErr{Error: "User must be a student, not instructor!"}),
		},
		{
			name: "Pending enrollment", method: http.MethodPost, path: path, token: e.token(t, emeka),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, httpErr{Error: "Student not enrolled!"}),
		},
		{
			name: "Assessment of another course", method: http.MethodPost, path: "/assessment_times/CSC301/" + other.ID, token: chidiToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "Assessment not found"}),
		},
		{
			name: "End without a record", method: http.MethodPut, path: endPath, token: e.token(t, amaka),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "Time record not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e.do(t, tt)
		})
	}

	t.Run("Start, get & end", func(t *testing.T) {
		rec := e.do(t, httpTest{method: http.MethodPost, path: path, token: chidiToken, wantCode: http.StatusCreated})
		var started timerecord.TimeRecord
		unmarshal(t, rec, &started)
		require.NotEmpty(t, started.ID)
		assert.Equal(t, chidi.ID, started.StudentID)
		assert.False(t, started.EndDatetime.Valid)

		// starting again keeps the first record
		rec = e.do(t, httpTest{method: http.MethodPost, path: path, token: chidiToken, wantCode: http.StatusCreated})
		var again timerecord.TimeRecord
		unmarshal(t, rec, &again)
		assert.Equal(t, started.ID, again.ID)
		assert.True(t, again.StartDatetime.Equal(started.StartDatetime))

		rec = e.do(t, httpTest{path: path, token: chidiToken, wantCode: http.StatusOK})
		var got timerecord.TimeRecord
		unmarshal(t, rec, &got)
		assert.Equal(t, started.ID, got.ID)

		rec = e.do(t, httpTest{method: http.MethodPut, path: endPath, token: chidiToken, wantCode: http.StatusCreated})
		var ended timerecord.TimeRecord
		unmarshal(t, rec, &ended)
		assert.Equal(t, started.ID, ended.ID)
		require.True(t, ended.EndDatetime.Valid)
		assert.False(t, ended.EndDatetime.Time.Before(ended.StartDatetime))
	})

	t.Run("GET opens the record", func(t *testing.T) {
		amakaToken := e.token(t, amaka)
		e.do(t, httpTest{path: path, token: amakaToken, wantCode: http.StatusOK})
		e.do(t, httpTest{method: http.MethodPut, path: endPath, token: amakaToken, wantCode: http.StatusCreated})
	})
}
