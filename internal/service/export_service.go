package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/student-records-api/internal/dto"
	"github.com/noah-isme/student-records-api/internal/models"
	appErrors "github.com/noah-isme/student-records-api/pkg/errors"
	"github.com/noah-isme/student-records-api/pkg/export"
)

type studentLister interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error)
}

type studentDetailer interface {
	Get(ctx context.Context, id string) (*models.StudentDetail, error)
}

type studentCreator interface {
	Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string, summary []string) ([]byte, error)
}

// exportPageSize caps how many students one export query fetches.
const exportPageSize = 100

// maxImportRows bounds a single CSV import.
const maxImportRows = 1000

// ExportService renders student data to CSV and PDF and ingests CSV imports.
type ExportService struct {
	students studentLister
	details  studentDetailer
	creator  studentCreator
	activity activitySink
	csv      csvRenderer
	pdf      pdfRenderer
	logger   *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(students studentLister, details studentDetailer, creator studentCreator, activity activitySink, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		students: students,
		details:  details,
		creator:  creator,
		activity: activity,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
	}
}

var studentCSVHeaders = []string{"id", "first_name", "last_name", "email", "programme", "intake_year", "current_semester", "status"}

// StudentsCSV renders the filtered student roster as CSV, paging through the
// full result set.
func (s *ExportService) StudentsCSV(ctx context.Context, filter models.StudentFilter) ([]byte, string, error) {
	filter.PageSize = exportPageSize
	var rows []map[string]string
	for page := 1; ; page++ {
		filter.Page = page
		students, pagination, err := s.students.List(ctx, filter)
		if err != nil {
			return nil, "", err
		}
		for _, st := range students {
			rows = append(rows, map[string]string{
				"id":               st.ID,
				"first_name":       st.FirstName,
				"last_name":        st.LastName,
				"email":            st.Email,
				"programme":        st.Programme,
				"intake_year":      strconv.Itoa(st.IntakeYear),
				"current_semester": strconv.Itoa(st.CurrentSemester),
				"status":           string(st.Status),
			})
		}
		if pagination == nil || page*exportPageSize >= pagination.TotalCount || len(students) == 0 {
			break
		}
	}

	payload, err := s.csv.Render(export.Dataset{Headers: studentCSVHeaders, Rows: rows})
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	filename := fmt.Sprintf("students-%s.csv", time.Now().UTC().Format("20060102-150405"))
	return payload, filename, nil
}

// ImportStudentsCSV registers students from a CSV upload. Rows are processed
// independently; a bad row is reported and skipped, never aborting the rest.
func (s *ExportService) ImportStudentsCSV(ctx context.Context, r io.Reader) (*dto.ImportReport, error) {
	rows, err := export.ParseCSV(r)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid csv upload")
	}
	if len(rows) > maxImportRows {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("import limited to %d rows", maxImportRows))
	}

	report := &dto.ImportReport{Errors: []string{}}
	for i, row := range rows {
		req := CreateStudentRequest{
			ID:        strings.TrimSpace(row["id"]),
			FirstName: strings.TrimSpace(row["first_name"]),
			LastName:  strings.TrimSpace(row["last_name"]),
			Email:     strings.TrimSpace(row["email"]),
			Programme: strings.TrimSpace(row["programme"]),
		}
		req.IntakeYear, _ = strconv.Atoi(strings.TrimSpace(row["intake_year"]))
		req.CurrentSemester, _ = strconv.Atoi(strings.TrimSpace(row["current_semester"]))

		if _, err := s.creator.Create(ctx, req); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("row %d: %v", i+2, err))
			continue
		}
		report.Success++
	}

	appendActivity(s.logger, s.activity, &models.ActivityEntry{
		Action:      models.ActivityActionBulkImport,
		EntityType:  models.ActivityEntityStudent,
		EntityID:    "*",
		Description: fmt.Sprintf("Imported %d students from CSV (%d rows rejected)", report.Success, len(report.Errors)),
	})
	return report, nil
}

// TranscriptPDF renders a student's full transcript with their results and
// cumulative figures.
func (s *ExportService) TranscriptPDF(ctx context.Context, studentID string) ([]byte, string, error) {
	detail, err := s.details.Get(ctx, studentID)
	if err != nil {
		return nil, "", err
	}

	headers := []string{"Module", "Title", "Credits", "Semester", "Year", "Grade", "Status"}
	rows := make([]map[string]string, 0, len(detail.Results))
	for _, result := range detail.Results {
		grade := "-"
		if result.Grade != nil {
			grade = *result.Grade
		}
		rows = append(rows, map[string]string{
			"Module":   result.ModuleCode,
			"Title":    result.ModuleName,
			"Credits":  strconv.Itoa(result.ModuleCredits),
			"Semester": strconv.Itoa(result.Semester),
			"Year":     strconv.Itoa(result.Year),
			"Grade":    grade,
			"Status":   string(result.Status),
		})
	}
	summary := []string{
		fmt.Sprintf("Student: %s %s (%s)", detail.FirstName, detail.LastName, detail.ID),
		fmt.Sprintf("Programme: %s, intake %d", detail.Programme, detail.IntakeYear),
		fmt.Sprintf("Cumulative CGPA: %.2f", detail.CurrentCGPA),
		fmt.Sprintf("Credits earned: %d of %d", detail.TotalCreditsEarned, models.ProgrammeCreditTarget),
		fmt.Sprintf("Standing: %s", detail.Status),
	}

	payload, err := s.pdf.Render(export.Dataset{Headers: headers, Rows: rows}, "Academic Transcript", summary)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render transcript")
	}
	filename := fmt.Sprintf("transcript-%s.pdf", detail.ID)
	return payload, filename, nil
}
