package school

import (
	"context"
	"time"
)

type (
	Repository interface {
		QueryStudents(ctx context.Context) ([]Student, error)
		QueryClasses(ctx context.Context) ([]Class, error)
		QuerySections(ctx context.Context) ([]Section, error)
		// QueryAllotments returns every allotment joined with student/class/section,
		// ordered by ascending allotment ID.
		QueryAllotments(ctx context.Context) ([]AllotmentView, error)
		GetAllotmentView(ctx context.Context, id int) (AllotmentView, error)
		// CreateAllotment inserts the row and relies on the store's unique index
		// to reject a duplicate (StudentID, ClassID, SectionID) triple with
		// ErrAllotmentExists. No pre-check: the index closes the check-then-act race.
		CreateAllotment(ctx context.Context, alt Allotment) (Allotment, error)
		UpdateAllotment(ctx context.Context, alt Allotment) (Allotment, error)
		DeleteAllotment(ctx context.Context, id int) (Allotment, error)

		CreateStudent(ctx context.Context, std Student) (Student, error)
		CreateClass(ctx context.Context, cls Class) (Class, error)
		CreateSection(ctx context.Context, sec Section) (Section, error)
		// DeleteStudentsByID cascades: allotments referencing a deleted student go with it.
		DeleteStudentsByID(ctx context.Context, ids ...int) (int, error)
	}

	ServiceInterface interface {
		Students(ctx context.Context) ([]Student, error)
		Classes(ctx context.Context) ([]Class, error)
		Sections(ctx context.Context) ([]Section, error)
		Allotments(ctx context.Context) ([]AllotmentView, error)
		CreateAllotment(ctx context.Context, na NewAllotment) (AllotmentView, error)
		UpdateAllotment(ctx context.Context, id int, ua UpdateAllotment) (AllotmentView, error)
		DeleteAllotment(ctx context.Context, id int) (Allotment, error)
	}

	Service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Students(ctx context.Context) ([]Student, error) {
	return svc.repo.QueryStudents(ctx)
}

func (svc *Service) Classes(ctx context.Context) ([]Class, error) {
	return svc.repo.QueryClasses(ctx)
}

func (svc *Service) Sections(ctx context.Context) ([]Section, error) {
	return svc.repo.QuerySections(ctx)
}

func (svc *Service) Allotments(ctx context.Context) ([]AllotmentView, error) {
	return svc.repo.QueryAllotments(ctx)
}

func (svc *Service) CreateAllotment(ctx context.Context, na NewAllotment) (AllotmentView, error) {
	alt := Allotment{
		StudentID: na.StudentID,
		ClassID:   na.ClassID,
		SectionID: na.SectionID,
		CreatedAt: time.Now().UTC(),
	}
	alt, err := svc.repo.CreateAllotment(ctx, alt)
	if err != nil {
		return AllotmentView{}, err
	}
	// the write is a single atomic statement; the follow-up join is read-only
	return svc.repo.GetAllotmentView(ctx, alt.ID)
}

func (svc *Service) UpdateAllotment(ctx context.Context, id int, ua UpdateAllotment) (AllotmentView, error) {
	alt := Allotment{
		ID:        id,
		ClassID:   ua.ClassID,
		SectionID: ua.SectionID,
	}
	alt, err := svc.repo.UpdateAllotment(ctx, alt)
	if err != nil {
		return AllotmentView{}, err
	}
	return svc.repo.GetAllotmentView(ctx, alt.ID)
}

func (svc *Service) DeleteAllotment(ctx context.Context, id int) (Allotment, error) {
	return svc.repo.DeleteAllotment(ctx, id)
}

func (svc *Service) CreateStudent(ctx context.Context, name string, age int) (Student, error) {
	return svc.repo.CreateStudent(ctx, Student{Name: name, Age: age})
}

func (svc *Service) CreateClass(ctx context.Context, name string) (Class, error) {
	return svc.repo.CreateClass(ctx, Class{Name: name})
}

func (svc *Service) CreateSection(ctx context.Context, name string) (Section, error) {
	return svc.repo.CreateSection(ctx, Section{Name: name})
}

func (svc *Service) DeleteStudents(ctx context.Context, ids ...int) (int, error) {
	return svc.repo.DeleteStudentsByID(ctx, ids...)
}
