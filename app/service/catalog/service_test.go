package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	svc, err := Open(filepath.Join(t.TempDir(), "nested", "catalog.db"))
	require.NoError(t, err)
	require.NoError(t, svc.Migrate(context.Background()))

	t.Cleanup(func() {
		_ = svc.Shutdown()
	})

	return svc
}

func errorCode(err error) string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}

	return fmt.Sprint(oopsErr.Code())
}

func TestCourses_CRUD(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	course := &Course{
		Code:    "CS101",
		Title:   "Introduction to Programming",
		Credits: 3,
		Core:    true,
	}
	require.NoError(t, svc.Courses.Create(ctx, course))
	assert.NotZero(t, course.ID)

	got, err := svc.Courses.Get(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, *course, *got)

	course.Title = "Programming I"
	course.Group = "A"
	require.NoError(t, svc.Courses.Update(ctx, course.ID, course))

	got, err = svc.Courses.Get(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, "Programming I", got.Title)
	assert.Equal(t, "A", got.Group)
	assert.True(t, got.Core)

	list, err := svc.Courses.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.Courses.Delete(ctx, course.ID))

	_, err = svc.Courses.Get(ctx, course.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, CodeNotFound, errorCode(err))
}

func TestRepo_MissingRows(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.Faculty.Get(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)

	err = svc.Faculty.Update(ctx, 42, &Faculty{Name: "Nobody"})
	assert.ErrorIs(t, err, ErrNotFound)

	err = svc.Faculty.Delete(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, CodeNotFound, errorCode(err))
}

func TestRepo_EmptyListIsNotNil(t *testing.T) {
	list, err := newTestService(t).GraduatePrograms.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestRepo_UniqueConflict(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	require.NoError(t, svc.GraduatePrograms.Create(ctx, &GraduateProgram{Name: "MSc Computer Science", Degree: "MSc"}))

	err := svc.GraduatePrograms.Create(ctx, &GraduateProgram{Name: "MSc Computer Science", Degree: "MSc"})
	require.Error(t, err)
	assert.Equal(t, CodeConflict, errorCode(err))
}

func TestResearchAreas_LeadFaculty(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	lead := &Faculty{Name: "Dr. Ada Lovelace", Email: "ada@example.edu"}
	require.NoError(t, svc.Faculty.Create(ctx, lead))

	area := &ResearchArea{Name: "Machine Learning", LeadFacultyID: &lead.ID}
	require.NoError(t, svc.ResearchAreas.Create(ctx, area))

	got, err := svc.ResearchAreas.Get(ctx, area.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LeadFacultyID)
	assert.Equal(t, lead.ID, *got.LeadFacultyID)

	require.NoError(t, svc.DeleteFaculty(ctx, lead.ID))

	got, err = svc.ResearchAreas.Get(ctx, area.ID)
	require.NoError(t, err)
	assert.Nil(t, got.LeadFacultyID)
}

func TestResearchAreas_UnknownLeadIsInvalid(t *testing.T) {
	missing := int64(999)

	err := newTestService(t).ResearchAreas.Create(context.Background(), &ResearchArea{
		Name:          "Networks",
		LeadFacultyID: &missing,
	})
	require.Error(t, err)
	assert.Equal(t, CodeInvalid, errorCode(err))
}

func TestUploads_CreatedAtRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	createdAt := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	upload := &Upload{
		OriginalName: "transcript.pdf",
		StoredName:   "abc.pdf",
		ContentType:  "application/pdf",
		Size:         1024,
		CreatedAt:    createdAt,
	}
	require.NoError(t, svc.Uploads.Create(ctx, upload))

	got, err := svc.Uploads.Get(ctx, upload.ID)
	require.NoError(t, err)
	assert.True(t, createdAt.Equal(got.CreatedAt))
	assert.Equal(t, "abc.pdf", got.StoredName)
}

func TestMigrate_Idempotent(t *testing.T) {
	svc := newTestService(t)

	assert.NoError(t, svc.Migrate(context.Background()))
	assert.NoError(t, svc.Ping(context.Background()))
}

func TestTable_SQL(t *testing.T) {
	assert.Equal(t,
		"INSERT INTO graduate_programs (name, degree, duration, description) VALUES (?, ?, ?, ?)",
		graduateProgramTable.insertSQL())
	assert.Equal(t,
		"UPDATE faculty SET name = ?, title = ?, email = ?, office = ?, research_interests = ? WHERE id = ?",
		facultyTable.updateSQL())
}

func TestRepo_ReadStartedBeforeWriteIsNotCached(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	repo := svc.Courses

	course := &Course{Code: "CS301", Title: "Operating Systems", Credits: 3}
	require.NoError(t, repo.Create(ctx, course))

	// a reader loads the old row, then a writer commits before the reader caches it
	generation := repo.currentGeneration()
	stale := *course

	course.Title = "Operating Systems Design"
	require.NoError(t, repo.Update(ctx, course.ID, course))

	repo.remember(generation, course.ID, stale)

	got, err := repo.Get(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, "Operating Systems Design", got.Title)
}

func TestResearchAreas_CachedLeadIsNotShared(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	lead := &Faculty{Name: "Dr. Alan Turing"}
	require.NoError(t, svc.Faculty.Create(ctx, lead))

	area := &ResearchArea{Name: "Theory of Computation", LeadFacultyID: &lead.ID}
	require.NoError(t, svc.ResearchAreas.Create(ctx, area))

	first, err := svc.ResearchAreas.Get(ctx, area.ID)
	require.NoError(t, err)
	*first.LeadFacultyID = 999

	second, err := svc.ResearchAreas.Get(ctx, area.ID)
	require.NoError(t, err)
	require.NotNil(t, second.LeadFacultyID)
	assert.Equal(t, lead.ID, *second.LeadFacultyID)

	*second.LeadFacultyID = 998

	third, err := svc.ResearchAreas.Get(ctx, area.ID)
	require.NoError(t, err)
	assert.Equal(t, lead.ID, *third.LeadFacultyID)
}
