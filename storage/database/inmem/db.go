package inmemdb

import (
	"sync"

	"github.com/trezcool/shule/core/school"
	"github.com/trezcool/shule/core/user"
)

// DB is a mutex-guarded in-memory stand-in for the relational store,
// used by tests and local tooling. It enforces the same constraints as
// the real schema: unique allotment triples, unique user emails and
// cascading student deletes.
type DB struct {
	mutex sync.RWMutex

	students   map[int]*school.Student
	classes    map[int]*school.Class
	sections   map[int]*school.Section
	allotments map[int]*school.Allotment
	users      map[int]*user.User

	studentPK   int
	classPK     int
	sectionPK   int
	allotmentPK int
	userPK      int
}

func NewDB() *DB {
	return &DB{
		students:   make(map[int]*school.Student),
		classes:    make(map[int]*school.Class),
		sections:   make(map[int]*school.Section),
		allotments: make(map[int]*school.Allotment),
		users:      make(map[int]*user.User),
	}
}
