package grading

import (
	"sort"

	"github.com/noah-isme/student-records-api/internal/models"
)

type semesterKey struct {
	year     int
	semester int
}

type semesterTotals struct {
	points  float64
	credits int
}

// ComputeAggregates derives the chronological CGPA history from a student's
// results. Only completed results with a recorded grade point contribute.
// Results are grouped by (year, semester), groups are ordered year ascending
// then semester ascending, and running credit-weighted totals accumulate
// across groups. A group with zero qualifying credits produces no snapshot
// but does not reset the running totals. With no qualifying results the
// returned slice is empty and the caller must not write any record.
func ComputeAggregates(results []models.ResultWithModule) []models.SemesterSnapshot {
	groups := make(map[semesterKey]*semesterTotals)
	for _, r := range results {
		if !r.Qualifies() {
			continue
		}
		key := semesterKey{year: r.Year, semester: r.Semester}
		totals, ok := groups[key]
		if !ok {
			totals = &semesterTotals{}
			groups[key] = totals
		}
		totals.points += *r.GradePoint * float64(r.ModuleCredits)
		totals.credits += r.ModuleCredits
	}
	if len(groups) == 0 {
		return nil
	}

	keys := make([]semesterKey, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].semester < keys[j].semester
	})

	snapshots := make([]models.SemesterSnapshot, 0, len(keys))
	var runningPoints float64
	var runningCredits int
	for _, key := range keys {
		totals := groups[key]
		runningPoints += totals.points
		runningCredits += totals.credits
		if totals.credits == 0 {
			continue
		}
		snapshot := models.SemesterSnapshot{
			Semester:                   key.semester,
			Year:                       key.year,
			SemesterGPA:                totals.points / float64(totals.credits),
			CumulativeCreditsEarned:    runningCredits,
			CumulativeCreditsAttempted: runningCredits,
		}
		if runningCredits > 0 {
			snapshot.CumulativeCGPA = runningPoints / float64(runningCredits)
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots
}
