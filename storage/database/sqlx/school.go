package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core/school"
)

type schoolRepository struct {
	db *sqlx.DB
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db *sqlx.DB) *schoolRepository {
	return &schoolRepository{db: db}
}

// allotmentViewQuery joins allotments with the rows they reference.
// LEFT JOINs keep the allotment visible even mid-cascade; joined columns are nullable.
const allotmentViewQuery = `
SELECT a.id, a.created_at,
       s.id AS student_id, s.name AS student_name, s.age AS student_age,
       c.id AS class_id, c.name AS class_name,
       sec.id AS section_id, sec.name AS section_name
FROM allotments a
LEFT JOIN students s ON s.id = a.student_id
LEFT JOIN classes c ON c.id = a.class_id
LEFT JOIN sections sec ON sec.id = a.section_id`

type (
	studentRow struct {
		ID   int    `db:"id"`
		Name string `db:"name"`
		Age  int    `db:"age"`
	}

	refRow struct {
		ID   int    `db:"id"`
		Name string `db:"name"`
	}

	allotmentRow struct {
		ID        int       `db:"id"`
		StudentID int       `db:"student_id"`
		ClassID   int       `db:"class_id"`
		SectionID int       `db:"section_id"`
		CreatedAt time.Time `db:"created_at"`
	}

	allotmentViewRow struct {
		ID          int         `db:"id"`
		CreatedAt   time.Time   `db:"created_at"`
		StudentID   null.Int    `db:"student_id"`
		StudentName null.String `db:"student_name"`
		StudentAge  null.Int    `db:"student_age"`
		ClassID     null.Int    `db:"class_id"`
		ClassName   null.String `db:"class_name"`
		SectionID   null.Int    `db:"section_id"`
		SectionName null.String `db:"section_name"`
	}
)

func (row allotmentRow) allotment() school.Allotment {
	return school.Allotment{
		ID:        row.ID,
		StudentID: row.StudentID,
		ClassID:   row.ClassID,
		SectionID: row.SectionID,
		CreatedAt: row.CreatedAt.UTC(),
	}
}

func (row allotmentViewRow) view() school.AllotmentView {
	return school.AllotmentView{
		ID:          row.ID,
		CreatedAt:   row.CreatedAt.UTC(),
		StudentID:   row.StudentID.Int,
		StudentName: row.StudentName.String,
		StudentAge:  row.StudentAge.Int,
		ClassID:     row.ClassID.Int,
		ClassName:   row.ClassName.String,
		SectionID:   row.SectionID.Int,
		SectionName: row.SectionName.String,
	}
}

// trapNoRowsErr maps psql "no rows" err to school.ErrNotFound
func (repo schoolRepository) trapNoRowsErr(err error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return school.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

// isUniqueViolation reports whether err is a psql unique_violation (23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

func (repo schoolRepository) QueryStudents(ctx context.Context) ([]school.Student, error) {
	var rows []studentRow
	if err := repo.db.SelectContext(ctx, &rows, "SELECT id, name, age FROM students ORDER BY id DESC"); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	students := make([]school.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, school.Student{ID: row.ID, Name: row.Name, Age: row.Age})
	}
	return students, nil
}

func (repo schoolRepository) QueryClasses(ctx context.Context) ([]school.Class, error) {
	var rows []refRow
	if err := repo.db.SelectContext(ctx, &rows, "SELECT id, name FROM classes ORDER BY id DESC"); err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}
	classes := make([]school.Class, 0, len(rows))
	for _, row := range rows {
		classes = append(classes, school.Class{ID: row.ID, Name: row.Name})
	}
	return classes, nil
}

func (repo schoolRepository) QuerySections(ctx context.Context) ([]school.Section, error) {
	var rows []refRow
	if err := repo.db.SelectContext(ctx, &rows, "SELECT id, name FROM sections ORDER BY id DESC"); err != nil {
		return nil, errors.Wrap(err, "querying sections")
	}
	sections := make([]school.Section, 0, len(rows))
	for _, row := range rows {
		sections = append(sections, school.Section{ID: row.ID, Name: row.Name})
	}
	return sections, nil
}

func (repo schoolRepository) QueryAllotments(ctx context.Context) ([]school.AllotmentView, error) {
	var rows []allotmentViewRow
	if err := repo.db.SelectContext(ctx, &rows, allotmentViewQuery+" ORDER BY a.id"); err != nil {
		return nil, errors.Wrap(err, "querying allotments")
	}
	views := make([]school.AllotmentView, 0, len(rows))
	for _, row := range rows {
		views = append(views, row.view())
	}
	return views, nil
}

func (repo schoolRepository) GetAllotmentView(ctx context.Context, id int) (school.AllotmentView, error) {
	var row allotmentViewRow
	if err := repo.db.GetContext(ctx, &row, allotmentViewQuery+" WHERE a.id = $1", id); err != nil {
		return school.AllotmentView{}, repo.trapNoRowsErr(err, "finding allotment by ID")
	}
	return row.view(), nil
}

func (repo schoolRepository) CreateAllotment(ctx context.Context, alt school.Allotment) (school.Allotment, error) {
	err := repo.db.QueryRowxContext(ctx,
		"INSERT INTO allotments (student_id, class_id, section_id, created_at) VALUES ($1, $2, $3, $4) RETURNING id, created_at",
		alt.StudentID, alt.ClassID, alt.SectionID, alt.CreatedAt,
	).Scan(&alt.ID, &alt.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return school.Allotment{}, school.ErrAllotmentExists
		}
		return school.Allotment{}, errors.Wrap(err, "inserting allotment")
	}
	alt.CreatedAt = alt.CreatedAt.UTC()
	return alt, nil
}

func (repo schoolRepository) UpdateAllotment(ctx context.Context, alt school.Allotment) (school.Allotment, error) {
	var row allotmentRow
	err := repo.db.GetContext(ctx, &row,
		"UPDATE allotments SET class_id = $1, section_id = $2 WHERE id = $3 RETURNING id, student_id, class_id, section_id, created_at",
		alt.ClassID, alt.SectionID, alt.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return school.Allotment{}, school.ErrAllotmentExists
		}
		return school.Allotment{}, repo.trapNoRowsErr(err, "updating allotment")
	}
	return row.allotment(), nil
}

func (repo schoolRepository) DeleteAllotment(ctx context.Context, id int) (school.Allotment, error) {
	var row allotmentRow
	err := repo.db.GetContext(ctx, &row,
		"DELETE FROM allotments WHERE id = $1 RETURNING id, student_id, class_id, section_id, created_at", id)
	if err != nil {
		return school.Allotment{}, repo.trapNoRowsErr(err, "deleting allotment")
	}
	return row.allotment(), nil
}

func (repo schoolRepository) CreateStudent(ctx context.Context, std school.Student) (school.Student, error) {
	err := repo.db.QueryRowxContext(ctx,
		"INSERT INTO students (name, age) VALUES ($1, $2) RETURNING id", std.Name, std.Age).Scan(&std.ID)
	if err != nil {
		return school.Student{}, errors.Wrap(err, "inserting student")
	}
	return std, nil
}

func (repo schoolRepository) CreateClass(ctx context.Context, cls school.Class) (school.Class, error) {
	err := repo.db.QueryRowxContext(ctx,
		"INSERT INTO classes (name) VALUES ($1) RETURNING id", cls.Name).Scan(&cls.ID)
	if err != nil {
		return school.Class{}, errors.Wrap(err, "inserting class")
	}
	return cls, nil
}

func (repo schoolRepository) CreateSection(ctx context.Context, sec school.Section) (school.Section, error) {
	err := repo.db.QueryRowxContext(ctx,
		"INSERT INTO sections (name) VALUES ($1) RETURNING id", sec.Name).Scan(&sec.ID)
	if err != nil {
		return school.Section{}, errors.Wrap(err, "inserting section")
	}
	return sec, nil
}

func (repo schoolRepository) DeleteStudentsByID(ctx context.Context, ids ...int) (int, error) {
	idArr := make([]int64, 0, len(ids))
	for _, id := range ids {
		idArr = append(idArr, int64(id))
	}
	res, err := repo.db.ExecContext(ctx, "DELETE FROM students WHERE id = ANY($1)", pq.Array(idArr))
	if err != nil {
		return 0, errors.Wrap(err, "deleting students")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting students")
	}
	return int(cnt), nil
}
