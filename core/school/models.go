package school

import (
	"time"

	"github.com/pkg/errors"
)

var (
	// errors
	ErrNotFound        = errors.New("allotment not found")
	ErrAllotmentExists = errors.New("this student is already allotted to the same class and section")
	ErrStudentNotFound = errors.New("student not found")
)

type (
	// Student is reference data; students are created by the admin tooling,
	// never through the allotment API.
	Student struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
		Age  int    `json:"age"`
	}

	Class struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}

	Section struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}

	// Allotment assigns one student to one (class, section) pair.
	// The (StudentID, ClassID, SectionID) triple is unique store-wide.
	Allotment struct {
		ID        int       `json:"id"`
		StudentID int       `json:"studentId"`
		ClassID   int       `json:"classId"`
		SectionID int       `json:"sectionId"`
		CreatedAt time.Time `json:"createdAt"` // UTC
	}

	// AllotmentView is the denormalized read model: an allotment joined with
	// the student/class/section it references.
	AllotmentView struct {
		ID          int       `json:"id"`
		CreatedAt   time.Time `json:"createdAt"` // UTC
		StudentID   int       `json:"studentId"`
		StudentName string    `json:"studentName"`
		StudentAge  int       `json:"studentAge"`
		ClassID     int       `json:"classId"`
		ClassName   string    `json:"className"`
		SectionID   int       `json:"sectionId"`
		SectionName string    `json:"sectionName"`
	}

	NewAllotment struct {
		StudentID int `json:"studentId" validate:"required"`
		ClassID   int `json:"classId" validate:"required"`
		SectionID int `json:"sectionId" validate:"required"`
	}

	// UpdateAllotment re-allots an existing allotment to a new class/section.
	// StudentID and CreatedAt are immutable.
	UpdateAllotment struct {
		ClassID   int `json:"classId" validate:"required"`
		SectionID int `json:"sectionId" validate:"required"`
	}
)
