package main

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/school"
	"github.com/trezcool/shule/core/user"
)

var (
	seedUsers = []user.User{
		{Name: "Alice Johnson", Age: 25, Email: "alice@example.com"},
		{Name: "Bob Smith", Age: 30, Email: "bob@example.com"},
		{Name: "Charlie Brown", Age: 22, Email: "charlie@example.com"},
		{Name: "David Lee", Age: 28, Email: "david@example.com"},
		{Name: "Eva Green", Age: 35, Email: "eva@example.com"},
		{Name: "Frank White", Age: 40, Email: "frank@example.com"},
		{Name: "Grace Kim", Age: 27, Email: "grace@example.com"},
		{Name: "Henry Adams", Age: 32, Email: "henry@example.com"},
		{Name: "Isla Moore", Age: 29, Email: "isla@example.com"},
		{Name: "Jack Wilson", Age: 24, Email: "jack@example.com"},
		{Name: "Karen Taylor", Age: 31, Email: "karen@example.com"},
		{Name: "Liam Scott", Age: 26, Email: "liam@example.com"},
		{Name: "Mia Davis", Age: 33, Email: "mia@example.com"},
		{Name: "Noah Clark", Age: 23, Email: "noah@example.com"},
		{Name: "Olivia Lewis", Age: 34, Email: "olivia@example.com"},
	}

	seedClasses  = []string{"Nursery", "1st Grade", "2nd Grade", "3rd Grade"}
	seedSections = []string{"A", "B"}

	seedStudents = []school.Student{
		{Name: "Amy Santiago", Age: 6},
		{Name: "Terry Jeffords", Age: 7},
		{Name: "Jake Peralta", Age: 6},
		{Name: "Rosa Diaz", Age: 8},
		{Name: "Charles Boyle", Age: 7},
	}
)

// seed loads sample data, skipping rows that already exist.
func (cli *commandLine) seed() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, usr := range seedUsers {
		if _, err := cli.usrRepo.CreateUser(ctx, usr); err != nil {
			if errors.Cause(err) == user.ErrEmailExists {
				continue
			}
			return errors.Wrapf(err, "seeding user %q", usr.Email)
		}
	}

	classes, err := cli.schoolRepo.QueryClasses(ctx)
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	if len(classes) == 0 {
		for _, name := range seedClasses {
			if _, err = cli.schoolRepo.CreateClass(ctx, school.Class{Name: name}); err != nil {
				return errors.Wrapf(err, "seeding class %q", name)
			}
		}
	}

	sections, err := cli.schoolRepo.QuerySections(ctx)
	if err != nil {
		return errors.Wrap(err, "querying sections")
	}
	if len(sections) == 0 {
		for _, name := range seedSections {
			if _, err = cli.schoolRepo.CreateSection(ctx, school.Section{Name: name}); err != nil {
				return errors.Wrapf(err, "seeding section %q", name)
			}
		}
	}

	students, err := cli.schoolRepo.QueryStudents(ctx)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if len(students) == 0 {
		for _, std := range seedStudents {
			if _, err = cli.schoolRepo.CreateStudent(ctx, std); err != nil {
				return errors.Wrapf(err, "seeding student %q", std.Name)
			}
		}
	}
	return nil
}
