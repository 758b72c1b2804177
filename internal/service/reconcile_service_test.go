package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/student-records-api/internal/models"
)

func ptrStr(v string) *string   { return &v }
func ptrF64(v float64) *float64 { return &v }

func completedResult(semester, year int, grade string, point float64, credits int) models.ResultWithModule {
	return models.ResultWithModule{
		Result: models.Result{
			Semester:   semester,
			Year:       year,
			Grade:      ptrStr(grade),
			GradePoint: ptrF64(point),
			Status:     models.ResultCompleted,
		},
		ModuleCredits: credits,
	}
}

type mockResultSource struct {
	results map[string][]models.ResultWithModule
	err     error
}

func (m *mockResultSource) ListByStudent(ctx context.Context, studentID string) ([]models.ResultWithModule, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.results[studentID], nil
}

type mockStudentStatus struct {
	status models.StatusLabel
}

func (m *mockStudentStatus) GetStatus(ctx context.Context, id string) (models.StatusLabel, error) {
	return m.status, nil
}

type mockCgpaStore struct {
	mu           sync.Mutex
	applied      []models.CgpaRecord
	statuses     []models.StatusLabel
	statusWrites []bool
	err          error
}

func (m *mockCgpaStore) ApplyReconciliation(ctx context.Context, studentID string, record *models.CgpaRecord, status models.StatusLabel, updateStatus bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.applied = append(m.applied, *record)
	m.statuses = append(m.statuses, status)
	m.statusWrites = append(m.statusWrites, updateStatus)
	return nil
}

type mockActivitySink struct {
	mu      sync.Mutex
	entries []models.ActivityEntry
}

func (m *mockActivitySink) Append(ctx context.Context, entry *models.ActivityEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockActivitySink) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func TestRecomputeNoQualifyingResultsIsNoOp(t *testing.T) {
	store := &mockCgpaStore{}
	svc := NewReconcileService(
		&mockResultSource{results: map[string][]models.ResultWithModule{}},
		&mockStudentStatus{status: models.StatusActive},
		store, nil, nil, nil)

	record, err := svc.Recompute(context.Background(), "STU-001", "")
	require.NoError(t, err)
	assert.Nil(t, record)
	assert.Empty(t, store.applied)
}

func TestRecomputeWritesLatestSnapshot(t *testing.T) {
	results := map[string][]models.ResultWithModule{
		"STU-001": {
			completedResult(1, 2023, "A", 4.0, 3),
			completedResult(2, 2023, "B", 3.0, 3),
		},
	}
	store := &mockCgpaStore{}
	svc := NewReconcileService(
		&mockResultSource{results: results},
		&mockStudentStatus{status: models.StatusActive},
		store, nil, nil, nil)

	record, err := svc.Recompute(context.Background(), "STU-001", "")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, 2, record.Semester)
	assert.Equal(t, 2023, record.Year)
	assert.InDelta(t, 3.0, record.SemesterGPA, 1e-9)
	assert.InDelta(t, 3.5, record.CumulativeCGPA, 1e-9)
	assert.Equal(t, 6, record.TotalCreditsEarned)
	require.Len(t, store.applied, 1)
}

func TestRecomputeIsIdempotent(t *testing.T) {
	results := map[string][]models.ResultWithModule{
		"STU-001": {
			completedResult(1, 2023, "A", 4.0, 3),
			completedResult(2, 2023, "B", 3.0, 3),
		},
	}
	store := &mockCgpaStore{}
	svc := NewReconcileService(
		&mockResultSource{results: results},
		&mockStudentStatus{status: models.StatusActive},
		store, nil, nil, nil)

	first, err := svc.Recompute(context.Background(), "STU-001", "")
	require.NoError(t, err)
	second, err := svc.Recompute(context.Background(), "STU-001", "")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.Len(t, store.applied, 2)
	assert.Equal(t, store.applied[0], store.applied[1])
	assert.Equal(t, store.statuses[0], store.statuses[1])
}

func TestRecomputeDerivesDeansList(t *testing.T) {
	results := map[string][]models.ResultWithModule{
		"STU-002": {
			completedResult(1, 2023, "A", 4.0, 6),
			completedResult(1, 2023, "A", 4.0, 6),
		},
	}
	store := &mockCgpaStore{}
	svc := NewReconcileService(
		&mockResultSource{results: results},
		&mockStudentStatus{status: models.StatusActive},
		store, nil, nil, nil)

	_, err := svc.Recompute(context.Background(), "STU-002", "")
	require.NoError(t, err)
	require.Len(t, store.statuses, 1)
	assert.Equal(t, models.StatusDeansList, store.statuses[0])
	assert.True(t, store.statusWrites[0])
}

func TestRecomputeNeverOverwritesAdministrativeStatus(t *testing.T) {
	results := map[string][]models.ResultWithModule{
		"STU-003": {completedResult(1, 2023, "A", 4.0, 18)},
	}
	store := &mockCgpaStore{}
	svc := NewReconcileService(
		&mockResultSource{results: results},
		&mockStudentStatus{status: models.StatusSuspended},
		store, nil, nil, nil)

	record, err := svc.Recompute(context.Background(), "STU-003", "")
	require.NoError(t, err)
	require.NotNil(t, record)
	require.Len(t, store.statusWrites, 1)
	assert.False(t, store.statusWrites[0], "suspended students keep their status")
}

func TestRecomputeSkipsStatusWriteWhenUnchanged(t *testing.T) {
	results := map[string][]models.ResultWithModule{
		"STU-004": {completedResult(1, 2023, "B", 3.0, 12)},
	}
	store := &mockCgpaStore{}
	svc := NewReconcileService(
		&mockResultSource{results: results},
		&mockStudentStatus{status: models.StatusActive},
		store, nil, nil, nil)

	_, err := svc.Recompute(context.Background(), "STU-004", "")
	require.NoError(t, err)
	require.Len(t, store.statusWrites, 1)
	assert.False(t, store.statusWrites[0])
}

func TestRecomputeRecordsActivity(t *testing.T) {
	results := map[string][]models.ResultWithModule{
		"STU-005": {completedResult(1, 2023, "C", 2.0, 3)},
	}
	sink := &mockActivitySink{}
	svc := NewReconcileService(
		&mockResultSource{results: results},
		&mockStudentStatus{status: models.StatusActive},
		&mockCgpaStore{}, sink, nil, nil)

	_, err := svc.Recompute(context.Background(), "STU-005", "registrar")
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return sink.count() == 1 }, time.Second, 10*time.Millisecond)
}

func TestRecomputeSerialisesPerStudent(t *testing.T) {
	results := map[string][]models.ResultWithModule{
		"STU-006": {completedResult(1, 2023, "B", 3.0, 3)},
	}
	store := &mockCgpaStore{}
	svc := NewReconcileService(
		&mockResultSource{results: results},
		&mockStudentStatus{status: models.StatusActive},
		store, nil, nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Recompute(context.Background(), "STU-006", "")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Len(t, store.applied, 16)
}
