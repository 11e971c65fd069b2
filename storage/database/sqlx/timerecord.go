package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/ChukwumaKingsley/smart-school-forked/core/timerecord"
)

var timeRecordColumns = []string{"id", "student_id", "assessment_id", "start_datetime", "end_datetime"}

type timeRecordRepository struct {
	repo
}

var _ timerecord.Repository = (*timeRecordRepository)(nil) // interface compliance check

func NewTimeRecordRepository(db *sqlx.DB) *timeRecordRepository {
	return &timeRecordRepository{repo: newRepo(db)}
}

func (repo timeRecordRepository) CreateTimeRecord(ctx context.Context, tr timerecord.TimeRecord) (timerecord.TimeRecord, error) {
	q := repo.sb.Insert("assessment_time_records").Columns(timeRecordColumns...).
		Values(tr.ID, tr.StudentID, tr.AssessmentID, tr.StartDatetime.UTC(), tr.EndDatetime).
		Suffix("ON CONFLICT (student_id, assessment_id) DO NOTHING")
	if _, err := repo.exec(ctx, repo.db, q); err != nil {
		return timerecord.TimeRecord{}, trapErr(err, timerecord.ErrAssessmentNotFound, "inserting time record")
	}
	return repo.GetTimeRecord(ctx, tr.AssessmentID, tr.StudentID)
}

func (repo timeRecordRepository) GetTimeRecord(ctx context.Context, assessmentID, studentID string) (timerecord.TimeRecord, error) {
	var tr timerecord.TimeRecord
	q := repo.sb.Select(timeRecordColumns...).From("assessment_time_records").
		Where(sq.Eq{"assessment_id": assessmentID, "student_id": studentID})
	if err := repo.get(ctx, repo.db, &tr, q); err != nil {
		return timerecord.TimeRecord{}, trapErr(err, timerecord.ErrNotFound, "getting time record")
	}
	tr.StartDatetime = tr.StartDatetime.UTC()
	if tr.EndDatetime.Valid {
		tr.EndDatetime.Time = tr.EndDatetime.Time.UTC()
	}
	return tr, nil
}

func (repo timeRecordRepository) EndTimeRecord(ctx context.Context, assessmentID, studentID string, end time.Time) (bool, error) {
	q := repo.sb.Update("assessment_time_records").
		Set("end_datetime", end.UTC()).
		Where(sq.Eq{"assessment_id": assessmentID, "student_id": studentID})
	n, err := repo.exec(ctx, repo.db, q)
	if err != nil {
		return false, trapErr(err, timerecord.ErrNotFound, "ending time record")
	}
	return n > 0, nil
}
