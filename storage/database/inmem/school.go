package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/shule/core/school"
)

type schoolRepository struct {
	db *DB
}

var _ school.Repository = (*schoolRepository)(nil)

func NewSchoolRepository(db *DB) *schoolRepository {
	return &schoolRepository{db: db}
}

func (repo *schoolRepository) view(alt school.Allotment) school.AllotmentView {
	v := school.AllotmentView{ID: alt.ID, CreatedAt: alt.CreatedAt}
	// absent references stay zero-valued, like the LEFT JOIN's NULL columns
	if std, ok := repo.db.students[alt.StudentID]; ok {
		v.StudentID, v.StudentName, v.StudentAge = std.ID, std.Name, std.Age
	}
	if cls, ok := repo.db.classes[alt.ClassID]; ok {
		v.ClassID, v.ClassName = cls.ID, cls.Name
	}
	if sec, ok := repo.db.sections[alt.SectionID]; ok {
		v.SectionID, v.SectionName = sec.ID, sec.Name
	}
	return v
}

func (repo *schoolRepository) QueryStudents(_ context.Context) ([]school.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	students := make([]school.Student, 0, len(repo.db.students))
	for _, std := range repo.db.students {
		students = append(students, *std)
	}
	sort.Slice(students, func(i, j int) bool { return students[i].ID > students[j].ID })
	return students, nil
}

func (repo *schoolRepository) QueryClasses(_ context.Context) ([]school.Class, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	classes := make([]school.Class, 0, len(repo.db.classes))
	for _, cls := range repo.db.classes {
		classes = append(classes, *cls)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].ID > classes[j].ID })
	return classes, nil
}

func (repo *schoolRepository) QuerySections(_ context.Context) ([]school.Section, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	sections := make([]school.Section, 0, len(repo.db.sections))
	for _, sec := range repo.db.sections {
		sections = append(sections, *sec)
	}
	sort.Slice(sections, func(i, j int) bool { return sections[i].ID > sections[j].ID })
	return sections, nil
}

func (repo *schoolRepository) QueryAllotments(_ context.Context) ([]school.AllotmentView, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	views := make([]school.AllotmentView, 0, len(repo.db.allotments))
	for _, alt := range repo.db.allotments {
		views = append(views, repo.view(*alt))
	}
	sort.Slice(views, func(i, j int) bool { return views[i].ID < views[j].ID })
	return views, nil
}

func (repo *schoolRepository) GetAllotmentView(_ context.Context, id int) (school.AllotmentView, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	alt, ok := repo.db.allotments[id]
	if !ok {
		return school.AllotmentView{}, school.ErrNotFound
	}
	return repo.view(*alt), nil
}

func (repo *schoolRepository) CreateAllotment(_ context.Context, alt school.Allotment) (school.Allotment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, existing := range repo.db.allotments {
		if existing.StudentID == alt.StudentID && existing.ClassID == alt.ClassID && existing.SectionID == alt.SectionID {
			return school.Allotment{}, school.ErrAllotmentExists
		}
	}

	repo.db.allotmentPK++
	alt.ID = repo.db.allotmentPK
	repo.db.allotments[alt.ID] = &alt
	return alt, nil
}

func (repo *schoolRepository) UpdateAllotment(_ context.Context, alt school.Allotment) (school.Allotment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.allotments[alt.ID]
	if !ok {
		return school.Allotment{}, school.ErrNotFound
	}
	for _, existing := range repo.db.allotments {
		if existing.ID != alt.ID &&
			existing.StudentID == orig.StudentID && existing.ClassID == alt.ClassID && existing.SectionID == alt.SectionID {
			return school.Allotment{}, school.ErrAllotmentExists
		}
	}

	orig.ClassID = alt.ClassID
	orig.SectionID = alt.SectionID
	return *orig, nil
}

func (repo *schoolRepository) DeleteAllotment(_ context.Context, id int) (school.Allotment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	alt, ok := repo.db.allotments[id]
	if !ok {
		return school.Allotment{}, school.ErrNotFound
	}
	delete(repo.db.allotments, id)
	return *alt, nil
}

func (repo *schoolRepository) CreateStudent(_ context.Context, std school.Student) (school.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.studentPK++
	std.ID = repo.db.studentPK
	repo.db.students[std.ID] = &std
	return std, nil
}

func (repo *schoolRepository) CreateClass(_ context.Context, cls school.Class) (school.Class, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.classPK++
	cls.ID = repo.db.classPK
	repo.db.classes[cls.ID] = &cls
	return cls, nil
}

func (repo *schoolRepository) CreateSection(_ context.Context, sec school.Section) (school.Section, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.sectionPK++
	sec.ID = repo.db.sectionPK
	repo.db.sections[sec.ID] = &sec
	return sec, nil
}

func (repo *schoolRepository) DeleteStudentsByID(_ context.Context, ids ...int) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.students[id]; !ok {
			continue
		}
		delete(repo.db.students, id)
		cnt++
		// cascade
		for altID, alt := range repo.db.allotments {
			if alt.StudentID == id {
				delete(repo.db.allotments, altID)
			}
		}
	}
	return cnt, nil
}
