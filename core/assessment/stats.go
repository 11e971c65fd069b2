package assessment

import (
	"github.com/volatiletech/null/v8"

	"github.com/ChukwumaKingsley/smart-school-forked/core"
)

// ComputeStats derives the statistics of a from its raw aggregates. Every ratio is rounded to one decimal.
func ComputeStats(a Assessment, data StatsData) Stats {
	stats := Stats{
		NumStudents:        data.NumStudents,
		TotalPossibleScore: a.TotalMark,
		AvgTime:            avgMinutes(data.TimeSpans),
		HighestScore:       roundNull(data.HighestScore),
		LowestScore:        roundNull(data.LowestScore),
	}
	if data.AvgScore.Valid {
		stats.AvgScore = core.Round1(data.AvgScore.Float64)
		if a.TotalMark > 0 {
			stats.AvgScorePercentage = core.Round1(data.AvgScore.Float64 / float64(a.TotalMark) * 100)
		}
	}
	if data.NumEnrolled > 0 {
		stats.PercentageSubmissions = core.Round1(float64(data.NumStudents) / float64(data.NumEnrolled) * 100)
	}
	return stats
}

// avgMinutes averages the closed time spans, in minutes.
func avgMinutes(spans []TimeSpan) float64 {
	var (
		sum   float64
		count int
	)
	for _, span := range spans {
		if !span.End.Valid {
			continue
		}
		sum += span.End.Time.Sub(span.Start).Minutes()
		count++
	}
	if count == 0 {
		return 0
	}
	return core.Round1(sum / float64(count))
}

func roundNull(f null.Float64) null.Float64 {
	if !f.Valid {
		return f
	}
	return null.Float64From(core.Round1(f.Float64))
}
