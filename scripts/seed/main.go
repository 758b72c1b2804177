// Command seed populates a development database with a sample cohort:
// a module catalogue, randomly generated students, per-semester results
// and the recomputed CGPA ledger derived from them.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/noah-isme/student-records-api/internal/grading"
	"github.com/noah-isme/student-records-api/internal/models"
	"github.com/noah-isme/student-records-api/internal/repository"
	"github.com/noah-isme/student-records-api/internal/service"
	"github.com/noah-isme/student-records-api/pkg/config"
	"github.com/noah-isme/student-records-api/pkg/database"
)

var firstNames = []string{"Aisha", "Budi", "Citra", "Dewi", "Eko", "Farid", "Gita", "Hana", "Indra", "Joko", "Kartika", "Lukman", "Maya", "Nadia", "Omar", "Putri", "Rizky", "Sari", "Taufik", "Wulan"}

var lastNames = []string{"Pratama", "Santoso", "Wijaya", "Kusuma", "Hidayat", "Lestari", "Saputra", "Utami", "Nugroho", "Rahayu"}

var catalogue = []models.Module{
	{Code: "CS101", Name: "Programming Fundamentals", Credits: 4, Semester: 1, Programme: "Computer Science", IsCore: true},
	{Code: "CS102", Name: "Discrete Mathematics", Credits: 3, Semester: 1, Programme: "Computer Science", IsCore: true},
	{Code: "CS103", Name: "Computer Organisation", Credits: 3, Semester: 1, Programme: "Computer Science", IsCore: true},
	{Code: "CS201", Name: "Data Structures", Credits: 4, Semester: 2, Programme: "Computer Science", IsCore: true},
	{Code: "CS202", Name: "Database Systems", Credits: 3, Semester: 2, Programme: "Computer Science", IsCore: true},
	{Code: "CS203", Name: "Operating Systems", Credits: 3, Semester: 2, Programme: "Computer Science", IsCore: true},
	{Code: "CS301", Name: "Algorithms", Credits: 4, Semester: 3, Programme: "Computer Science", IsCore: true},
	{Code: "CS302", Name: "Software Engineering", Credits: 3, Semester: 3, Programme: "Computer Science", IsCore: true},
	{Code: "CS303", Name: "Computer Networks", Credits: 3, Semester: 3, Programme: "Computer Science", IsCore: false},
	{Code: "CS401", Name: "Distributed Systems", Credits: 4, Semester: 4, Programme: "Computer Science", IsCore: false},
	{Code: "CS402", Name: "Machine Learning", Credits: 3, Semester: 4, Programme: "Computer Science", IsCore: false},
}

var grades = []string{"A+", "A", "A-", "B+", "B", "B-", "C+", "C", "C-", "D", "F"}

func main() {
	var (
		count    int
		truncate bool
		seed     int64
	)

	flag.IntVar(&count, "students", 25, "Number of students to generate")
	flag.BoolVar(&truncate, "truncate", false, "Empty all tables before seeding")
	flag.Int64Var(&seed, "seed", time.Now().UnixNano(), "Random seed")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close() //nolint:errcheck

	ctx := context.Background()
	rng := rand.New(rand.NewSource(seed))

	if truncate {
		if _, err := db.ExecContext(ctx, `TRUNCATE activity_log, academic_alerts, cgpa_records, student_results, modules, students`); err != nil {
			log.Fatalf("failed to truncate tables: %v", err)
		}
		log.Println("tables truncated")
	}

	moduleRepo := repository.NewModuleRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	resultRepo := repository.NewResultRepository(db)
	cgpaRepo := repository.NewCgpaRepository(db)
	reconciler := service.NewReconcileService(resultRepo, studentRepo, cgpaRepo, nil, nil, nil)

	modules := make([]models.Module, len(catalogue))
	copy(modules, catalogue)
	for i := range modules {
		if err := moduleRepo.Create(ctx, &modules[i]); err != nil {
			log.Fatalf("failed to create module %s: %v", modules[i].Code, err)
		}
	}
	log.Printf("created %d modules", len(modules))

	for i := 0; i < count; i++ {
		first := firstNames[rng.Intn(len(firstNames))]
		last := lastNames[rng.Intn(len(lastNames))]
		intake := 2021 + rng.Intn(3)
		semester := 1 + rng.Intn(4)

		student := &models.Student{
			ID:              fmt.Sprintf("STU-%d-%03d", intake, i+1),
			FirstName:       first,
			LastName:        last,
			Email:           fmt.Sprintf("%s.%s%d@campus.example", first, last, i+1),
			Programme:       "Computer Science",
			IntakeYear:      intake,
			CurrentSemester: semester,
			Status:          models.StatusActive,
		}
		if err := studentRepo.Create(ctx, student); err != nil {
			log.Fatalf("failed to create student %s: %v", student.ID, err)
		}

		if err := seedResults(ctx, rng, resultRepo, student, modules); err != nil {
			log.Fatalf("failed to seed results for %s: %v", student.ID, err)
		}
		if _, err := reconciler.Recompute(ctx, student.ID, "seed"); err != nil {
			log.Fatalf("failed to recompute %s: %v", student.ID, err)
		}
	}

	log.Printf("seeded %d students", count)
}

// seedResults records completed results for every semester the student has
// passed through, and in-progress entries for the current one.
func seedResults(ctx context.Context, rng *rand.Rand, repo *repository.ResultRepository, student *models.Student, modules []models.Module) error {
	for _, m := range modules {
		if m.Semester > student.CurrentSemester {
			continue
		}

		result := &models.Result{
			StudentID: student.ID,
			ModuleID:  m.ID,
			Semester:  m.Semester,
			Year:      student.IntakeYear + (m.Semester-1)/2,
		}

		if m.Semester == student.CurrentSemester {
			result.Status = models.ResultInProgress
		} else {
			grade := grades[rng.Intn(len(grades))]
			point, _ := grading.PointForGrade(grade)
			result.Status = models.ResultCompleted
			result.Grade = &grade
			result.GradePoint = &point
		}

		if err := repo.Create(ctx, result); err != nil {
			return err
		}
	}
	return nil
}
