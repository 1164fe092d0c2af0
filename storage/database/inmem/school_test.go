package inmemdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core/school"
)

func seedSchool(t *testing.T, repo school.Repository) (school.Student, school.Class, school.Section) {
	t.Helper()
	ctx := context.Background()

	std, err := repo.CreateStudent(ctx, school.Student{Name: "Amy", Age: 7})
	require.NoError(t, err)
	cls, err := repo.CreateClass(ctx, school.Class{Name: "Nursery"})
	require.NoError(t, err)
	sec, err := repo.CreateSection(ctx, school.Section{Name: "A"})
	require.NoError(t, err)
	return std, cls, sec
}

func Test_schoolRepository_CreateAllotment(t *testing.T) {
	repo := NewSchoolRepository(NewDB())
	ctx := context.Background()
	std, cls, sec := seedSchool(t, repo)

	alt, err := repo.CreateAllotment(ctx, school.Allotment{
		StudentID: std.ID, ClassID: cls.ID, SectionID: sec.ID, CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	assert.Greater(t, alt.ID, 0)

	// the unique triple rejects a second insert
	_, err = repo.CreateAllotment(ctx, school.Allotment{StudentID: std.ID, ClassID: cls.ID, SectionID: sec.ID})
	assert.Equal(t, school.ErrAllotmentExists, err)

	views, err := repo.QueryAllotments(ctx)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Amy", views[0].StudentName)
	assert.Equal(t, "Nursery", views[0].ClassName)
	assert.Equal(t, "A", views[0].SectionName)
}

func Test_schoolRepository_UpdateAllotment(t *testing.T) {
	repo := NewSchoolRepository(NewDB())
	ctx := context.Background()
	std, cls, sec := seedSchool(t, repo)
	cls2, err := repo.CreateClass(ctx, school.Class{Name: "1st Grade"})
	require.NoError(t, err)

	alt, err := repo.CreateAllotment(ctx, school.Allotment{StudentID: std.ID, ClassID: cls.ID, SectionID: sec.ID})
	require.NoError(t, err)
	alt2, err := repo.CreateAllotment(ctx, school.Allotment{StudentID: std.ID, ClassID: cls2.ID, SectionID: sec.ID})
	require.NoError(t, err)

	_, err = repo.UpdateAllotment(ctx, school.Allotment{ID: 999, ClassID: cls.ID, SectionID: sec.ID})
	assert.Equal(t, school.ErrNotFound, err)

	// moving onto an existing triple conflicts
	_, err = repo.UpdateAllotment(ctx, school.Allotment{ID: alt2.ID, ClassID: cls.ID, SectionID: sec.ID})
	assert.Equal(t, school.ErrAllotmentExists, err)

	// re-asserting a row's own triple is not a conflict
	got, err := repo.UpdateAllotment(ctx, school.Allotment{ID: alt.ID, ClassID: cls.ID, SectionID: sec.ID})
	require.NoError(t, err)
	assert.Equal(t, alt.ID, got.ID)
	assert.Equal(t, std.ID, got.StudentID)
}

func Test_schoolRepository_DeleteStudentsByID_cascades(t *testing.T) {
	repo := NewSchoolRepository(NewDB())
	ctx := context.Background()
	std, cls, sec := seedSchool(t, repo)
	ben, err := repo.CreateStudent(ctx, school.Student{Name: "Ben", Age: 8})
	require.NoError(t, err)

	_, err = repo.CreateAllotment(ctx, school.Allotment{StudentID: std.ID, ClassID: cls.ID, SectionID: sec.ID})
	require.NoError(t, err)
	kept, err := repo.CreateAllotment(ctx, school.Allotment{StudentID: ben.ID, ClassID: cls.ID, SectionID: sec.ID})
	require.NoError(t, err)

	cnt, err := repo.DeleteStudentsByID(ctx, std.ID, 999)
	require.NoError(t, err)
	assert.Equal(t, 1, cnt)

	// the deleted student's allotment went with it
	views, err := repo.QueryAllotments(ctx)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, kept.ID, views[0].ID)
}

func Test_schoolRepository_ordering(t *testing.T) {
	repo := NewSchoolRepository(NewDB())
	ctx := context.Background()

	for _, name := range []string{"Amy", "Ben", "Cleo"} {
		_, err := repo.CreateStudent(ctx, school.Student{Name: name, Age: 7})
		require.NoError(t, err)
	}
	cls, err := repo.CreateClass(ctx, school.Class{Name: "Nursery"})
	require.NoError(t, err)
	sec, err := repo.CreateSection(ctx, school.Section{Name: "A"})
	require.NoError(t, err)

	// reference data comes back newest first
	students, err := repo.QueryStudents(ctx)
	require.NoError(t, err)
	require.Len(t, students, 3)
	assert.Equal(t, "Cleo", students[0].Name)
	assert.Equal(t, "Amy", students[2].Name)

	for _, std := range students {
		_, err = repo.CreateAllotment(ctx, school.Allotment{StudentID: std.ID, ClassID: cls.ID, SectionID: sec.ID})
		require.NoError(t, err)
	}

	// allotments come back in insertion order
	views, err := repo.QueryAllotments(ctx)
	require.NoError(t, err)
	require.Len(t, views, 3)
	for i := 1; i < len(views); i++ {
		assert.Less(t, views[i-1].ID, views[i].ID)
	}
}
