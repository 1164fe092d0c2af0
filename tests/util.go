package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/shule/core/school"
	"github.com/trezcool/shule/core/user"
)

func CreateStudent(t *testing.T, repo school.Repository, name string, age int) school.Student {
	t.Helper()

	std, err := repo.CreateStudent(context.Background(), school.Student{Name: name, Age: age})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return std
}

func CreateClass(t *testing.T, repo school.Repository, name string) school.Class {
	t.Helper()

	cls, err := repo.CreateClass(context.Background(), school.Class{Name: name})
	if err != nil {
		t.Fatalf("CreateClass() failed: %v", err)
	}
	return cls
}

func CreateSection(t *testing.T, repo school.Repository, name string) school.Section {
	t.Helper()

	sec, err := repo.CreateSection(context.Background(), school.Section{Name: name})
	if err != nil {
		t.Fatalf("CreateSection() failed: %v", err)
	}
	return sec
}

func CreateAllotment(t *testing.T, repo school.Repository, std school.Student, cls school.Class, sec school.Section) school.Allotment {
	t.Helper()

	alt := school.Allotment{
		StudentID: std.ID,
		ClassID:   cls.ID,
		SectionID: sec.ID,
		CreatedAt: time.Now().UTC(),
	}
	alt, err := repo.CreateAllotment(context.Background(), alt)
	if err != nil {
		t.Fatalf("CreateAllotment() failed: %v", err)
	}
	return alt
}

func CreateUser(t *testing.T, repo user.Repository, name string, age int, email string) user.User {
	t.Helper()

	usr, err := repo.CreateUser(context.Background(), user.User{Name: name, Age: age, Email: email})
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}
