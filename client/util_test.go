package client_test

import (
	"net/http/httptest"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/trezcool/shule/apps/api/echo"
	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/school"
	"github.com/trezcool/shule/core/user"
	inmemdb "github.com/trezcool/shule/storage/database/inmem"
)

var schoolRepo school.Repository

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

// recordingNotifier captures operator notifications for assertions.
type recordingNotifier struct {
	successes []string
	errors    []string
}

func (n *recordingNotifier) Success(msg string) { n.successes = append(n.successes, msg) }
func (n *recordingNotifier) Error(msg string)   { n.errors = append(n.errors, msg) }

// setupServer runs the real API over an in-memory store and returns its URL.
func setupServer(t *testing.T) string {
	t.Helper()

	db := inmemdb.NewDB()
	schoolRepo = inmemdb.NewSchoolRepository(db)

	validate := validator.New()
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	core.InitValidators(validate, translator)

	conf := &core.Config{
		Env:            "TEST",
		TestMode:       true,
		FrontendOrigin: "http://localhost:3000",
	}

	app := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     nopLogger{},
			SchoolSvc:  school.NewService(schoolRepo),
			UserSvc:    user.NewService(inmemdb.NewUserRepository(db)),
			Validate:   validate,
			Translator: translator,
		},
	)

	ts := httptest.NewServer(app)
	t.Cleanup(ts.Close)
	return ts.URL
}
