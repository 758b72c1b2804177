package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/student-records-api/internal/models"
)

func newExportFixture() (*ExportService, *mockStudentRepo) {
	repo := &mockStudentRepo{
		students: map[string]models.Student{
			"STU-001": {ID: "STU-001", FirstName: "Amina", LastName: "Yusof", Email: "amina@uni.edu", Programme: "Computer Science", IntakeYear: 2023, CurrentSemester: 3, Status: models.StatusActive},
		},
		total: 1,
	}
	students := newStudentService(repo, &mockCgpaHistory{records: map[string][]models.CgpaRecord{
		"STU-001": {{Semester: 1, Year: 2023, CumulativeCGPA: 3.5, TotalCreditsEarned: 18}},
	}})
	return NewExportService(students, students, students, nil, nil), repo
}

func TestExportStudentsCSV(t *testing.T) {
	svc, _ := newExportFixture()

	payload, filename, err := svc.StudentsCSV(context.Background(), models.StudentFilter{})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filename, "students-"))

	content := string(payload)
	lines := strings.Split(strings.TrimSpace(content), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "id,first_name,last_name,email,programme,intake_year,current_semester,status", lines[0])
	assert.Contains(t, lines[1], "STU-001")
	assert.Contains(t, lines[1], "Computer Science")
}

func TestImportStudentsCSV(t *testing.T) {
	svc, repo := newExportFixture()

	csv := strings.Join([]string{
		"id,first_name,last_name,email,programme,intake_year,current_semester",
		"STU-010,Ben,Tan,ben@uni.edu,Software Engineering,2024,1",
		"STU-011,,Lim,no-first-name@uni.edu,Software Engineering,2024,1",
		"STU-012,Cara,Ng,cara@uni.edu,Software Engineering,2024,1",
	}, "\n")

	report, err := svc.ImportStudentsCSV(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, report.Success)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "row 3")

	_, ok := repo.students["STU-010"]
	assert.True(t, ok)
	_, ok = repo.students["STU-011"]
	assert.False(t, ok)
}

func TestImportStudentsCSVEmptyUpload(t *testing.T) {
	svc, _ := newExportFixture()

	_, err := svc.ImportStudentsCSV(context.Background(), strings.NewReader(""))
	require.Error(t, err)
}

func TestTranscriptPDF(t *testing.T) {
	svc, _ := newExportFixture()

	payload, filename, err := svc.TranscriptPDF(context.Background(), "STU-001")
	require.NoError(t, err)
	assert.Equal(t, "transcript-STU-001.pdf", filename)
	assert.True(t, strings.HasPrefix(string(payload), "%PDF"))
}

func TestTranscriptPDFUnknownStudent(t *testing.T) {
	svc, _ := newExportFixture()

	_, _, err := svc.TranscriptPDF(context.Background(), "missing")
	require.Error(t, err)
}
